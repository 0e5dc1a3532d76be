// Package checks runs restriction checkers over compiled declarations.
//
// A declaration is flattened into a stream of events. Each checker consumes its own
// pass over the stream and returns the problems it found; checkers share nothing but
// the State they are given.
package checks

import (
	"iter"

	"go.trai.ch/javelin/internal/core/domain"
)

// EventKind identifies what an Event describes.
type EventKind uint8

const (
	// EnterType opens a type declaration. Its members and nested types follow.
	EnterType EventKind = iota + 1
	// ExitType closes the type opened by the matching EnterType.
	ExitType
	// Field is a field or enum constant of the current type.
	Field
	// Method is a method or constructor of the current type.
	Method
	// Annotation is an annotation on the current type, or on the field or method
	// set in the event.
	Annotation
	// BinaryReference is a reference to a type that only exists as bytecode.
	BinaryReference
)

func (k EventKind) String() string {
	switch k {
	case EnterType:
		return "enter"
	case ExitType:
		return "exit"
	case Field:
		return "field"
	case Method:
		return "method"
	case Annotation:
		return "annotation"
	case BinaryReference:
		return "binary-ref"
	default:
		return "unknown"
	}
}

// Event is one step of the traversal of a declaration.
type Event struct {
	Kind EventKind
	Decl *domain.Declaration
	// Type is the current type; nil for BinaryReference.
	Type *domain.TypeDecl
	// Outer is the type enclosing Type, nil for top-level types.
	Outer      *domain.TypeDecl
	Field      *domain.FieldDecl
	Method     *domain.MethodDecl
	Annotation *domain.Annotation
	BinaryRef  *domain.BinaryRef
}

// Events returns the traversal of decl: every type depth first with its annotations,
// fields and methods, followed by the binary references of the unit.
func Events(decl *domain.Declaration) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		var walk func(types []*domain.TypeDecl, outer *domain.TypeDecl) bool
		walk = func(types []*domain.TypeDecl, outer *domain.TypeDecl) bool {
			for _, t := range types {
				base := Event{Decl: decl, Type: t, Outer: outer}
				if !yield(with(base, EnterType)) {
					return false
				}
				if !yieldAnnotations(yield, base, t.Annotations) {
					return false
				}
				for _, f := range t.Fields {
					ev := base
					ev.Field = f
					if !yield(with(ev, Field)) || !yieldAnnotations(yield, ev, f.Annotations) {
						return false
					}
				}
				for _, m := range t.Methods {
					ev := base
					ev.Method = m
					if !yield(with(ev, Method)) || !yieldAnnotations(yield, ev, m.Annotations) {
						return false
					}
				}
				if !walk(t.Nested, t) {
					return false
				}
				if !yield(with(base, ExitType)) {
					return false
				}
			}
			return true
		}
		if !walk(decl.Types, nil) {
			return
		}
		for i := range decl.BinaryRefs {
			if !yield(Event{Kind: BinaryReference, Decl: decl, BinaryRef: &decl.BinaryRefs[i]}) {
				return
			}
		}
	}
}

func with(ev Event, kind EventKind) Event {
	ev.Kind = kind
	return ev
}

func yieldAnnotations(yield func(Event) bool, base Event, anns []domain.Annotation) bool {
	for i := range anns {
		ev := with(base, Annotation)
		ev.Annotation = &anns[i]
		if !yield(ev) {
			return false
		}
	}
	return true
}
