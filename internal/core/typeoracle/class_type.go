package typeoracle

import (
	"go.trai.ch/javelin/internal/core/domain"
)

// ClassKind classifies a ClassType.
type ClassKind uint8

const (
	KindClass ClassKind = iota
	KindInterface
	KindEnum
	KindAnnotation
)

func (k ClassKind) String() string {
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

// ClassType is a class, interface, enum or annotation type. Generic classes carry their
// type parameters.
type ClassType struct {
	pkg          *Package
	name         string
	internalName string
	enclosing    *ClassType
	kind         ClassKind
	modifiers    Modifier
	lastModified int64

	typeParams []*TypeParameter
	// generic is set for inner classes of generic types.
	generic    bool
	superclass Type
	interfaces []Type

	methods      []*Method
	constructors []*Method
	fields       []*Field
	nested       []*ClassType
	annotations  []*Annotation
}

// NewClassType builds an unlinked class shell. name is the nested source name relative to
// the package (Outer.Inner).
func NewClassType(pkg *Package, enclosing *ClassType, name, internalName string, kind ClassKind) *ClassType {
	ct := &ClassType{
		pkg:          pkg,
		name:         name,
		internalName: internalName,
		enclosing:    enclosing,
		kind:         kind,
	}
	if enclosing != nil {
		enclosing.nested = append(enclosing.nested, ct)
	}
	pkg.addType(ct)
	return ct
}

func (c *ClassType) isType() {}

// QualifiedSourceName returns the dotted source name.
func (c *ClassType) QualifiedSourceName() string {
	if c.pkg == nil || c.pkg.Name == "" {
		return c.name
	}
	return c.pkg.Name + "." + c.name
}

// Name returns the nested source name relative to the package.
func (c *ClassType) Name() string { return c.name }

// SimpleSourceName returns the last segment of the name.
func (c *ClassType) SimpleSourceName() string { return domain.SimpleName(c.name) }

// InternalName returns the slash separated binary name.
func (c *ClassType) InternalName() string { return c.internalName }

// Package returns the declaring package.
func (c *ClassType) Package() *Package { return c.pkg }

// Enclosing returns the enclosing type, or nil.
func (c *ClassType) Enclosing() *ClassType { return c.enclosing }

// Kind returns the class kind.
func (c *ClassType) Kind() ClassKind { return c.kind }

// IsInterface reports whether the type is an interface or annotation type.
func (c *ClassType) IsInterface() bool {
	return c.kind == KindInterface || c.kind == KindAnnotation
}

// IsGeneric reports whether the type declares type parameters or is a non-static inner
// class of a generic type.
func (c *ClassType) IsGeneric() bool { return len(c.typeParams) > 0 || c.generic }

// MarkGeneric flags an inner class whose enclosing type is generic.
func (c *ClassType) MarkGeneric() { c.generic = true }

// Modifiers returns the modifier bitset.
func (c *ClassType) Modifiers() Modifier { return c.modifiers }

// AddModifiers sets bits in the modifier bitset.
func (c *ClassType) AddModifiers(m Modifier) { c.modifiers |= m }

// LastModified returns the source modification time in UnixNano.
func (c *ClassType) LastModified() int64 { return c.lastModified }

// SetLastModified records the source modification time.
func (c *ClassType) SetLastModified(t int64) { c.lastModified = t }

// TypeParameters returns the declared type parameters.
func (c *ClassType) TypeParameters() []*TypeParameter { return c.typeParams }

// SetTypeParameters records the declared type parameters.
func (c *ClassType) SetTypeParameters(tps []*TypeParameter) { c.typeParams = tps }

// TypeParameter finds a declared type parameter by name.
func (c *ClassType) TypeParameter(name string) *TypeParameter {
	for _, tp := range c.typeParams {
		if tp.Name == name {
			return tp
		}
	}
	return nil
}

// Superclass returns the superclass, nil for java.lang.Object and interfaces.
func (c *ClassType) Superclass() Type { return c.superclass }

// SetSuperclass links the superclass.
func (c *ClassType) SetSuperclass(t Type) { c.superclass = t }

// Interfaces returns the implemented or extended interfaces.
func (c *ClassType) Interfaces() []Type { return c.interfaces }

// AddInterface links an implemented interface.
func (c *ClassType) AddInterface(t Type) { c.interfaces = append(c.interfaces, t) }

// Methods returns the declared methods, constructors excluded.
func (c *ClassType) Methods() []*Method { return c.methods }

// Constructors returns the declared constructors.
func (c *ClassType) Constructors() []*Method { return c.constructors }

// Method finds a declared method by name and parameter count.
func (c *ClassType) Method(name string, arity int) *Method {
	for _, m := range c.methods {
		if m.name == name && len(m.params) == arity {
			return m
		}
	}
	return nil
}

// Fields returns the declared fields, enum constants included.
func (c *ClassType) Fields() []*Field { return c.fields }

// Field finds a declared field by name.
func (c *ClassType) Field(name string) *Field {
	for _, f := range c.fields {
		if f.name == name {
			return f
		}
	}
	return nil
}

// EnumConstants returns the enum constant fields in ordinal order.
func (c *ClassType) EnumConstants() []*Field {
	var out []*Field
	for _, f := range c.fields {
		if f.ordinal >= 0 {
			out = append(out, f)
		}
	}
	return out
}

// NestedTypes returns the member types.
func (c *ClassType) NestedTypes() []*ClassType { return c.nested }

// Annotations returns the resolved annotations.
func (c *ClassType) Annotations() []*Annotation { return c.annotations }

// AddAnnotation attaches a resolved annotation.
func (c *ClassType) AddAnnotation(a *Annotation) { c.annotations = append(c.annotations, a) }

// Annotation finds an annotation by its type's qualified name.
func (c *ClassType) Annotation(qualifiedName string) *Annotation {
	return findAnnotation(c.annotations, qualifiedName)
}

// IsAssignableTo reports whether c is other or one of its subtypes, walking
// superclasses and interfaces by erasure.
func (c *ClassType) IsAssignableTo(other *ClassType) bool {
	seen := map[*ClassType]bool{}
	var walk func(t *ClassType) bool
	walk = func(t *ClassType) bool {
		if t == nil || seen[t] {
			return false
		}
		if t == other {
			return true
		}
		seen[t] = true
		if walk(Erasure(t.superclass)) {
			return true
		}
		for _, i := range t.interfaces {
			if walk(Erasure(i)) {
				return true
			}
		}
		return false
	}
	return walk(c)
}

// detach removes c from its package and enclosing type.
func (c *ClassType) detach() {
	c.pkg.removeType(c)
	if c.enclosing != nil {
		nested := c.enclosing.nested[:0]
		for _, n := range c.enclosing.nested {
			if n != c {
				nested = append(nested, n)
			}
		}
		c.enclosing.nested = nested
	}
}
