package domain

// TypeKind classifies a declared type.
type TypeKind uint8

const (
	KindClass TypeKind = iota
	KindInterface
	KindEnum
	KindAnnotation
)

func (k TypeKind) String() string {
	switch k {
	case KindInterface:
		return "interface"
	case KindEnum:
		return "enum"
	case KindAnnotation:
		return "annotation"
	default:
		return "class"
	}
}

// Declaration is what the foreign compiler produces for one source file: its type
// declaration tree, diagnostics and reference tables. It is attached to a unit while the
// unit is COMPILED and released once the unit is CHECKED.
type Declaration struct {
	Package string
	// PackageAnnotations are the annotations of a package-info declaration.
	PackageAnnotations []Annotation
	Source             []byte
	Types              []*TypeDecl

	Problems []Problem

	// QualifiedRefs and SimpleRefs are the type names the source refers to, as written
	// after import resolution.
	QualifiedRefs []string
	SimpleRefs    []string
	// APIRefs lists every referenced type name, for missing-reference reporting.
	APIRefs []string
	// FileRefs holds the display locations of other units this one refers to.
	FileRefs []string
	// BinaryRefs lists references to types that exist only as bytecode.
	BinaryRefs []BinaryRef
	// TypeRefs records every type reference with its position.
	TypeRefs []TypeRef

	MethodArgs MethodArgNames
	Classes    []*CompiledClass
}

// TypeRef is one reference to a type name in source.
type TypeRef struct {
	// Name is the dotted name, qualified when Qualified is set.
	Name      string
	Line      int
	Qualified bool
	// InAnnotation is set when the reference appears inside an annotation.
	InAnnotation bool
	// AnnotationType is set when the name is used as an annotation.
	AnnotationType bool
}

// BinaryRef is a reference from source to a type that is only available as bytecode.
type BinaryRef struct {
	TypeName string
	Line     int
	// InAnnotation is set when the reference appears inside an annotation.
	InAnnotation bool
	// IsAnnotationType is set when the referenced type is itself an annotation.
	IsAnnotationType bool
}

// AddProblem appends a diagnostic to the compile result.
func (d *Declaration) AddProblem(p Problem) {
	d.Problems = append(d.Problems, p)
}

// HasErrors reports whether the compile result carries errors.
func (d *Declaration) HasErrors() bool {
	return HasErrors(d.Problems)
}

// Walk visits every type declaration depth first, parents before nested types.
// Returning false from fn skips the nested types of that declaration.
func (d *Declaration) Walk(fn func(t *TypeDecl) bool) {
	var visit func(ts []*TypeDecl)
	visit = func(ts []*TypeDecl) {
		for _, t := range ts {
			if fn(t) {
				visit(t.Nested)
			}
		}
	}
	visit(d.Types)
}

// TypeDecl is one declared class, interface, enum or annotation type.
type TypeDecl struct {
	// Name is the simple name; empty for anonymous classes.
	Name string
	// InternalName is the slash separated binary name, e.g. pkg/Outer$Inner.
	InternalName string
	Kind         TypeKind
	Modifiers    AccessFlags
	// Local is set for anonymous and method-local classes.
	Local bool
	Line  int

	Annotations []Annotation
	TypeParams  []string
	Super       string
	Interfaces  []string

	Methods []*MethodDecl
	Fields  []*FieldDecl
	Nested  []*TypeDecl
}

// SourceName returns the dotted source name of the type.
func (t *TypeDecl) SourceName() string {
	return SourceName(t.InternalName)
}

// IsStatic reports whether the declaration carries the static modifier. Nested
// interfaces, enums and annotations are implicitly static.
func (t *TypeDecl) IsStatic() bool {
	return t.Modifiers.Has(AccStatic) || t.Kind != KindClass
}

// MethodDecl is one declared method or constructor.
type MethodDecl struct {
	Name        string
	Constructor bool
	Modifiers   AccessFlags
	Params      []ParamDecl
	ReturnType  string
	Annotations []Annotation
	Line        int
	// EmptyBody is set for constructors and methods whose body has no statements.
	EmptyBody bool
	// Overrides is set when the method carries @Override.
	Overrides bool
	// ParamsEnd and End are byte offsets into the source: the closing parenthesis of
	// the parameter list and the end of the declaration.
	ParamsEnd int
	End       int
}

// IsNative reports whether the method is declared native.
func (m *MethodDecl) IsNative() bool {
	return m.Modifiers.Has(AccNative)
}

// ParamDecl is one method parameter.
type ParamDecl struct {
	Name    string
	Type    string
	Varargs bool
}

// FieldDecl is one declared field or enum constant.
type FieldDecl struct {
	Name         string
	Type         string
	Modifiers    AccessFlags
	Annotations  []Annotation
	Line         int
	EnumConstant bool
}
