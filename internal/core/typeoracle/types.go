// Package typeoracle holds the resolved type graph: packages, classes, generics,
// methods, fields and annotations.
package typeoracle

import (
	"strings"
)

// Type is any node that can appear where a Java type is expected.
type Type interface {
	// QualifiedSourceName renders the type as it would be written in source.
	QualifiedSourceName() string
	isType()
}

// PrimitiveType is one of the Java primitive types, or void.
type PrimitiveType struct {
	name       string
	descriptor byte
}

// Primitive types.
var (
	Boolean = &PrimitiveType{"boolean", 'Z'}
	Byte    = &PrimitiveType{"byte", 'B'}
	Char    = &PrimitiveType{"char", 'C'}
	Short   = &PrimitiveType{"short", 'S'}
	Int     = &PrimitiveType{"int", 'I'}
	Long    = &PrimitiveType{"long", 'J'}
	Float   = &PrimitiveType{"float", 'F'}
	Double  = &PrimitiveType{"double", 'D'}
	Void    = &PrimitiveType{"void", 'V'}
)

// PrimitiveByDescriptor returns the primitive for a descriptor character.
func PrimitiveByDescriptor(c byte) (*PrimitiveType, bool) {
	for _, p := range []*PrimitiveType{Boolean, Byte, Char, Short, Int, Long, Float, Double, Void} {
		if p.descriptor == c {
			return p, true
		}
	}
	return nil, false
}

func (p *PrimitiveType) QualifiedSourceName() string { return p.name }
func (p *PrimitiveType) isType()                     {}

// ArrayType is an array of Component.
type ArrayType struct {
	Component Type
}

func (a *ArrayType) QualifiedSourceName() string { return a.Component.QualifiedSourceName() + "[]" }
func (a *ArrayType) isType()                     {}

// Rank returns the number of array dimensions.
func (a *ArrayType) Rank() int {
	if inner, ok := a.Component.(*ArrayType); ok {
		return inner.Rank() + 1
	}
	return 1
}

// ParameterizedType is a generic class applied to type arguments.
type ParameterizedType struct {
	Base *ClassType
	// Enclosing is set for inner classes of parameterized types.
	Enclosing Type
	Args      []Type
}

func (p *ParameterizedType) QualifiedSourceName() string {
	args := make([]string, len(p.Args))
	for i, a := range p.Args {
		args[i] = a.QualifiedSourceName()
	}
	return p.Base.QualifiedSourceName() + "<" + strings.Join(args, ", ") + ">"
}
func (p *ParameterizedType) isType() {}

// RawType is a generic class used without type arguments.
type RawType struct {
	Base *ClassType
}

func (r *RawType) QualifiedSourceName() string { return r.Base.QualifiedSourceName() }
func (r *RawType) isType()                     {}

// WildcardKind is the bound direction of a wildcard.
type WildcardKind uint8

const (
	WildcardUnbound WildcardKind = iota
	WildcardExtends
	WildcardSuper
)

// WildcardType is ?, ? extends T or ? super T.
type WildcardType struct {
	Kind  WildcardKind
	Bound Type
}

func (w *WildcardType) QualifiedSourceName() string {
	switch w.Kind {
	case WildcardExtends:
		return "? extends " + w.Bound.QualifiedSourceName()
	case WildcardSuper:
		return "? super " + w.Bound.QualifiedSourceName()
	default:
		return "?"
	}
}
func (w *WildcardType) isType() {}

// TypeParameter is a type variable declared by a class or method.
type TypeParameter struct {
	Name   string
	Index  int
	Bounds []Type
}

func (t *TypeParameter) QualifiedSourceName() string { return t.Name }
func (t *TypeParameter) isType()                     {}

// Erasure returns the class a type erases to, or nil for primitives and arrays.
func Erasure(t Type) *ClassType {
	switch v := t.(type) {
	case *ClassType:
		return v
	case *ParameterizedType:
		return v.Base
	case *RawType:
		return v.Base
	case *TypeParameter:
		if len(v.Bounds) > 0 {
			return Erasure(v.Bounds[0])
		}
	case *WildcardType:
		if v.Kind == WildcardExtends {
			return Erasure(v.Bound)
		}
	}
	return nil
}
