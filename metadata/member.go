package metadata

// Member is implemented by all resolved member references (fields,
// methods, properties). Like TypeRef, member references are
// identity-stable.
type Member interface {
	MemberName() string
	DeclaringType() *TypeRef
}

var _ Member = (*MethodRef)(nil)
var _ Member = (*FieldRef)(nil)
var _ Member = (*PropertyRef)(nil)

// MethodRef is a resolved method or constructor reference.
type MethodRef struct {
	Name      string
	Declaring *TypeRef
	Params    []*ParamDef
	Return    *TypeRef
	// TypeArgs holds explicit generic-method type arguments for a
	// generic instantiation, nil otherwise.
	TypeArgs []*TypeRef
	Static   bool
	// SpecialName marks accessor methods (get_/set_ pairs and operators).
	SpecialName bool
}

func (m *MethodRef) MemberName() string      { return m.Name }
func (m *MethodRef) DeclaringType() *TypeRef { return m.Declaring }
func (m *MethodRef) String() string {
	return m.Declaring.FullName() + "::" + m.Name
}

// IsConstructor reports whether the method is an instance constructor.
func (m *MethodRef) IsConstructor() bool {
	return m.Name == ".ctor"
}

// IsGetter reports whether the method is a property/indexer get accessor.
func (m *MethodRef) IsGetter() bool {
	return m.SpecialName && len(m.Name) > 4 && m.Name[:4] == "get_"
}

// FieldRef is a resolved field reference.
type FieldRef struct {
	Name      string
	Declaring *TypeRef
	Type      *TypeRef
	Static    bool
}

func (f *FieldRef) MemberName() string      { return f.Name }
func (f *FieldRef) DeclaringType() *TypeRef { return f.Declaring }
func (f *FieldRef) String() string {
	return f.Declaring.FullName() + "::" + f.Name
}

// PropertyRef is a resolved property reference.
type PropertyRef struct {
	Name      string
	Declaring *TypeRef
	Type      *TypeRef
	Getter    *MethodRef
}

func (p *PropertyRef) MemberName() string      { return p.Name }
func (p *PropertyRef) DeclaringType() *TypeRef { return p.Declaring }
func (p *PropertyRef) String() string {
	return p.Declaring.FullName() + "::" + p.Name
}
