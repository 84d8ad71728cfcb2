package astexpr

import (
	"github.com/cottand/decomp/metadata"
)

// All expression types implement the Expr interface. The set of
// variants is closed: the converter switches over it exhaustively.
//
// Nodes carry an open annotation list used to attach side-channel
// information (resolved members, checked-context markers, parameter
// declarations) without widening the node structs themselves.
type Expr interface {
	GetAnnotations() []any
	AddAnnotation(a any)
	exprNode() // Marker method to distinguish expressions
}

type node struct {
	annotations []any
}

func (n *node) GetAnnotations() []any { return n.annotations }
func (n *node) AddAnnotation(a any)   { n.annotations = append(n.annotations, a) }
func (n *node) exprNode()             {}

// Annotation returns the first annotation of type T attached to e.
func Annotation[T any](e Expr) (T, bool) {
	var zero T
	if e == nil {
		return zero, false
	}
	for _, a := range e.GetAnnotations() {
		if t, ok := a.(T); ok {
			return t, true
		}
	}
	return zero, false
}

// Identifier represents a variable or parameter name.
type Identifier struct {
	node
	Name string
}

// Primitive represents a literal value. A nil Value is the null literal.
type Primitive struct {
	node
	Value any
}

// TypeRefExpr names a type in expression position (static member
// targets, typeof operands).
type TypeRefExpr struct {
	node
	Type *metadata.TypeRef
}

// MemberAccess represents a field/property selection (a.B). For static
// members Target is a TypeRefExpr.
type MemberAccess struct {
	node
	Target Expr
	Member string
}

// Invocation represents a call (f(x), a.M(x)).
type Invocation struct {
	node
	Target Expr
	Args   []Expr
}

// Indexer represents indexer access (a[i]).
type Indexer struct {
	node
	Target Expr
	Args   []Expr
}

// Binary represents a binary operation (a + b, a ?? b).
type Binary struct {
	node
	Op    BinaryOp
	Left  Expr
	Right Expr
}

// Unary represents a unary operation (-a, !a, ~a).
type Unary struct {
	node
	Op      UnaryOp
	Operand Expr
}

// Cast represents an explicit conversion ((T)a).
type Cast struct {
	node
	Type *metadata.TypeRef
	Arg  Expr
}

// Conditional represents the ternary operator (c ? a : b).
type Conditional struct {
	node
	Cond Expr
	Then Expr
	Else Expr
}

// LambdaParam is one typed lambda parameter.
type LambdaParam struct {
	Name string
	Type *metadata.TypeRef
}

// Lambda represents a lambda expression ((x, y) => body).
type Lambda struct {
	node
	Params []LambdaParam
	Body   Expr
}

// ObjectCreate represents constructor invocation, optionally with an
// object or collection initializer.
type ObjectCreate struct {
	node
	Type *metadata.TypeRef
	Args []Expr
	// Initializer entries are Named values (object initializer) or
	// element expressions / InitBlocks (collection initializer). A nil
	// slice means no initializer.
	Initializer []Expr
}

// ArrayCreate represents array construction: either with explicit
// Bounds (new T[n]) or with an Init list (new T[] { ... }). Init may be
// empty but non-nil for an empty initializer.
type ArrayCreate struct {
	node
	Element *metadata.TypeRef
	Bounds  []Expr
	Init    []Expr
}

// AnonymousCreate represents anonymous-type construction. Entries are
// plain expressions when property names are inferable from them, or
// Named entries otherwise.
type AnonymousCreate struct {
	node
	Entries []Expr
}

// Named binds a name to a value inside initializers and anonymous-type
// construction.
type Named struct {
	node
	Name  string
	Value Expr
}

// InitBlock groups several expressions inside an initializer: the
// arguments of one collection-add, or the entries of a nested
// object/collection initializer.
type InitBlock struct {
	node
	Elements []Expr
}

// IsExpr represents a type test (a is T).
type IsExpr struct {
	node
	Arg  Expr
	Type *metadata.TypeRef
}

// AsExpr represents a safe cast (a as T).
type AsExpr struct {
	node
	Arg  Expr
	Type *metadata.TypeRef
}
