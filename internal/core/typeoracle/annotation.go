package typeoracle

import "go.trai.ch/javelin/internal/core/domain"

// Annotation is a resolved annotation: its declaring type and member values.
// Members are looked up by name; no proxy object is involved.
type Annotation struct {
	Type   *ClassType
	Values map[string]domain.AnnotationValue
}

// Value returns a member value.
func (a *Annotation) Value(member string) (domain.AnnotationValue, bool) {
	v, ok := a.Values[member]
	return v, ok
}

// String returns a string member value.
func (a *Annotation) String(member string) (string, bool) {
	v, ok := a.Values[member]
	if !ok || v.Kind != domain.ValueString {
		return "", false
	}
	return v.Str, true
}

// Int returns an integer member value.
func (a *Annotation) Int(member string) (int64, bool) {
	v, ok := a.Values[member]
	if !ok || v.Kind != domain.ValueInt {
		return 0, false
	}
	return v.Int, true
}

// Bool returns a boolean member value.
func (a *Annotation) Bool(member string) (bool, bool) {
	v, ok := a.Values[member]
	if !ok || v.Kind != domain.ValueBool {
		return false, false
	}
	return v.Bool, true
}

// Enum returns the constant name of an enum member value.
func (a *Annotation) Enum(member string) (string, bool) {
	v, ok := a.Values[member]
	if !ok || v.Kind != domain.ValueEnum {
		return "", false
	}
	return v.Str, true
}

func findAnnotation(as []*Annotation, qualifiedName string) *Annotation {
	for _, a := range as {
		if a.Type != nil && a.Type.QualifiedSourceName() == qualifiedName {
			return a
		}
	}
	return nil
}
