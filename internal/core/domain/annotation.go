package domain

import "strings"

// ValueKind tags the variant held by an AnnotationValue.
type ValueKind uint8

const (
	ValueString ValueKind = iota + 1
	ValueInt
	ValueBool
	ValueEnum
	ValueAnnotation
	ValueArray
	ValueClass
)

func (k ValueKind) String() string {
	switch k {
	case ValueString:
		return "string"
	case ValueInt:
		return "int"
	case ValueBool:
		return "bool"
	case ValueEnum:
		return "enum"
	case ValueAnnotation:
		return "annotation"
	case ValueArray:
		return "array"
	case ValueClass:
		return "class"
	default:
		return "unknown"
	}
}

// AnnotationValue is the value of one annotation member.
// Only the fields matching Kind are meaningful.
type AnnotationValue struct {
	Kind ValueKind `json:"kind"`
	// Str holds string literals, enum constant names and class literal type names.
	Str  string `json:"str,omitempty"`
	Int  int64  `json:"int,omitempty"`
	Bool bool   `json:"bool,omitempty"`
	// EnumType is the declaring type of an enum constant.
	EnumType string            `json:"enumType,omitempty"`
	Nested   *Annotation       `json:"nested,omitempty"`
	Elems    []AnnotationValue `json:"elems,omitempty"`
}

// StringValue builds a string value.
func StringValue(s string) AnnotationValue { return AnnotationValue{Kind: ValueString, Str: s} }

// IntValue builds an integer value.
func IntValue(i int64) AnnotationValue { return AnnotationValue{Kind: ValueInt, Int: i} }

// BoolValue builds a boolean value.
func BoolValue(b bool) AnnotationValue { return AnnotationValue{Kind: ValueBool, Bool: b} }

// EnumValue builds an enum constant value.
func EnumValue(enumType, constant string) AnnotationValue {
	return AnnotationValue{Kind: ValueEnum, EnumType: enumType, Str: constant}
}

// ClassValue builds a class literal value.
func ClassValue(typeName string) AnnotationValue { return AnnotationValue{Kind: ValueClass, Str: typeName} }

// NestedValue builds a nested annotation value.
func NestedValue(a *Annotation) AnnotationValue { return AnnotationValue{Kind: ValueAnnotation, Nested: a} }

// ArrayValue builds an array value.
func ArrayValue(elems ...AnnotationValue) AnnotationValue {
	return AnnotationValue{Kind: ValueArray, Elems: elems}
}

// Strings flattens a string value or an array of string values.
// Annotation members declared as arrays accept a single element, so both shapes
// are common.
func (v AnnotationValue) Strings() ([]string, bool) {
	switch v.Kind {
	case ValueString, ValueClass:
		return []string{v.Str}, true
	case ValueArray:
		out := make([]string, 0, len(v.Elems))
		for _, e := range v.Elems {
			if e.Kind != ValueString && e.Kind != ValueClass {
				return nil, false
			}
			out = append(out, e.Str)
		}
		return out, true
	default:
		return nil, false
	}
}

// Annotation is an annotation instance: its type and member values.
type Annotation struct {
	// TypeName is the source name of the annotation type, qualified when the front end
	// could resolve it through the unit's imports.
	TypeName string                     `json:"typeName"`
	Values   map[string]AnnotationValue `json:"values,omitempty"`
	Line     int                        `json:"line,omitempty"`
}

// Value returns the value of member name.
func (a *Annotation) Value(name string) (AnnotationValue, bool) {
	v, ok := a.Values[name]
	return v, ok
}

// SimpleName returns the last segment of the annotation type name.
func (a *Annotation) SimpleName() string {
	return SimpleName(a.TypeName)
}

// FindAnnotation returns the first annotation in as of type name. An unqualified
// annotation type name matches on its simple name.
func FindAnnotation(as []Annotation, name string) *Annotation {
	for i := range as {
		t := as[i].TypeName
		if t == name || (!IsQualified(t) && t == SimpleName(name)) {
			return &as[i]
		}
	}
	return nil
}

// FieldKey is the member annotation key of a field.
func FieldKey(name string) string { return name }

// MethodKey is the member annotation key of a method: its name and erased simple
// parameter types. Constructors are named "<init>".
func MethodKey(name string, paramTypes []string) string {
	return name + "(" + strings.Join(paramTypes, ",") + ")"
}
