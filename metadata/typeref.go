package metadata

import "strings"

// TypeKind distinguishes the structural shape of a TypeRef.
type TypeKind int

const (
	KindClass TypeKind = iota
	KindValueType
	KindArray
	KindPointer
	KindByRef
	KindGenericParam
)

// TypeRef is a resolved type reference handed over by the metadata
// layer. TypeRefs are identity-stable: the metadata reader returns the
// same instance for the same type, so pointer equality is meaningful.
type TypeRef struct {
	Namespace string
	Name      string
	Kind      TypeKind
	// GenericArgs holds the type arguments of a generic instantiation,
	// nil for non-generic types.
	GenericArgs []*TypeRef
	// Element is the element type for arrays, pointers and byrefs.
	Element *TypeRef
}

func (t *TypeRef) FullName() string {
	if t == nil {
		return "<nil>"
	}
	if t.Namespace == "" {
		return t.Name
	}
	return t.Namespace + "." + t.Name
}

func (t *TypeRef) String() string {
	sb := &strings.Builder{}
	FormatTypeName(sb, t)
	return sb.String()
}

// IsAnonymous reports whether the type is compiler-generated
// anonymous-type construction support (the "<>f__AnonymousType" family).
func (t *TypeRef) IsAnonymous() bool {
	if t == nil {
		return false
	}
	name := t.Name
	// mcs uses <>__AnonType, csc uses <>f__AnonymousType
	return strings.HasPrefix(name, "<>f__AnonymousType") || strings.HasPrefix(name, "<>__AnonType")
}

// NewType is a convenience constructor for a plain class reference.
func NewType(namespace, name string) *TypeRef {
	return &TypeRef{Namespace: namespace, Name: name}
}

// ArrayOf returns a one-dimensional array type over element.
func ArrayOf(element *TypeRef) *TypeRef {
	return &TypeRef{Name: element.Name + "[]", Kind: KindArray, Element: element}
}
