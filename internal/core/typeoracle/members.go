package typeoracle

// MethodKind distinguishes methods, constructors and annotation members.
type MethodKind uint8

const (
	KindMethod MethodKind = iota
	KindConstructor
	KindAnnotationMethod
)

// Method is a declared method, constructor or annotation member.
type Method struct {
	name        string
	enclosing   *ClassType
	kind        MethodKind
	modifiers   Modifier
	returnType  Type
	params      []*Parameter
	typeParams  []*TypeParameter
	thrown      []Type
	varargs     bool
	annotations []*Annotation
}

// NewMethod creates a method and attaches it to enclosing.
func NewMethod(enclosing *ClassType, name string, kind MethodKind) *Method {
	m := &Method{name: name, enclosing: enclosing, kind: kind}
	if kind == KindConstructor {
		enclosing.constructors = append(enclosing.constructors, m)
	} else {
		enclosing.methods = append(enclosing.methods, m)
	}
	return m
}

// Name returns the method name; constructors use the simple name of their class.
func (m *Method) Name() string { return m.name }

// Enclosing returns the declaring type.
func (m *Method) Enclosing() *ClassType { return m.enclosing }

// Kind returns the method kind.
func (m *Method) Kind() MethodKind { return m.kind }

// Modifiers returns the modifier bitset.
func (m *Method) Modifiers() Modifier { return m.modifiers }

// AddModifiers sets bits in the modifier bitset.
func (m *Method) AddModifiers(mod Modifier) { m.modifiers |= mod }

// ReturnType returns the return type; nil for constructors.
func (m *Method) ReturnType() Type { return m.returnType }

// SetReturnType records the return type.
func (m *Method) SetReturnType(t Type) { m.returnType = t }

// Parameters returns the parameters in declaration order.
func (m *Method) Parameters() []*Parameter { return m.params }

// AddParameter appends a parameter.
func (m *Method) AddParameter(p *Parameter) { m.params = append(m.params, p) }

// TypeParameters returns the method's own type parameters.
func (m *Method) TypeParameters() []*TypeParameter { return m.typeParams }

// SetTypeParameters records the method's own type parameters.
func (m *Method) SetTypeParameters(tps []*TypeParameter) { m.typeParams = tps }

// Thrown returns the declared exception types.
func (m *Method) Thrown() []Type { return m.thrown }

// AddThrown appends a declared exception type.
func (m *Method) AddThrown(t Type) { m.thrown = append(m.thrown, t) }

// IsVarargs reports whether the last parameter is variadic.
func (m *Method) IsVarargs() bool { return m.varargs }

// SetVarargs marks the method variadic.
func (m *Method) SetVarargs(v bool) { m.varargs = v }

// Annotations returns the resolved annotations.
func (m *Method) Annotations() []*Annotation { return m.annotations }

// AddAnnotation attaches a resolved annotation.
func (m *Method) AddAnnotation(a *Annotation) { m.annotations = append(m.annotations, a) }

// Parameter is one method parameter.
type Parameter struct {
	Name string
	Type Type
}

// Field is a declared field or enum constant.
type Field struct {
	name        string
	enclosing   *ClassType
	modifiers   Modifier
	typ         Type
	ordinal     int
	annotations []*Annotation
}

// NewField creates a plain field and attaches it to enclosing.
func NewField(enclosing *ClassType, name string) *Field {
	f := &Field{name: name, enclosing: enclosing, ordinal: -1}
	enclosing.fields = append(enclosing.fields, f)
	return f
}

// NewEnumConstant creates an enum constant with the given ordinal.
func NewEnumConstant(enclosing *ClassType, name string, ordinal int) *Field {
	f := NewField(enclosing, name)
	f.ordinal = ordinal
	return f
}

// Name returns the field name.
func (f *Field) Name() string { return f.name }

// Enclosing returns the declaring type.
func (f *Field) Enclosing() *ClassType { return f.enclosing }

// Modifiers returns the modifier bitset.
func (f *Field) Modifiers() Modifier { return f.modifiers }

// AddModifiers sets bits in the modifier bitset.
func (f *Field) AddModifiers(m Modifier) { f.modifiers |= m }

// Type returns the field type.
func (f *Field) Type() Type { return f.typ }

// SetType records the field type.
func (f *Field) SetType(t Type) { f.typ = t }

// IsEnumConstant reports whether the field is an enum constant.
func (f *Field) IsEnumConstant() bool { return f.ordinal >= 0 }

// Ordinal returns the enum ordinal, or -1 for plain fields.
func (f *Field) Ordinal() int { return f.ordinal }

// Annotations returns the resolved annotations.
func (f *Field) Annotations() []*Annotation { return f.annotations }

// AddAnnotation attaches a resolved annotation.
func (f *Field) AddAnnotation(a *Annotation) { f.annotations = append(f.annotations, a) }
