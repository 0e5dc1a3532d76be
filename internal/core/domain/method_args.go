package domain

import (
	"strings"
)

// MethodArgNames maps a method key to its source-level parameter names. It backs
// parameter names for payloads compiled without them.
type MethodArgNames map[string][]string

// MethodArgKey builds the lookup key of a method. paramTypes are erased simple type
// names with "[]" per array dimension.
func MethodArgKey(internalName, method string, paramTypes []string) string {
	return internalName + "." + method + "(" + strings.Join(paramTypes, ",") + ")"
}

// Add records the parameter names of a method.
func (m MethodArgNames) Add(internalName, method string, paramTypes, names []string) {
	m[MethodArgKey(internalName, method, paramTypes)] = names
}

// Lookup returns the parameter names of a method. When no entry has the exact key it
// falls back to the only overload of the same arity, since source and bytecode disagree
// on erased type variables.
func (m MethodArgNames) Lookup(internalName, method string, paramTypes []string) ([]string, bool) {
	if names, ok := m[MethodArgKey(internalName, method, paramTypes)]; ok {
		return names, true
	}

	prefix := internalName + "." + method + "("
	var found []string
	matches := 0
	for k, names := range m {
		if strings.HasPrefix(k, prefix) && len(names) == len(paramTypes) {
			found = names
			matches++
		}
	}
	if matches == 1 {
		return found, true
	}
	return nil, false
}

// Merge copies every entry of other into m.
func (m MethodArgNames) Merge(other MethodArgNames) {
	for k, v := range other {
		m[k] = v
	}
}

// ErasedSimpleName normalizes a source type as written (java.util.List<String>[],
// T..., int) to the form used in method keys (List[], T[], int).
func ErasedSimpleName(sourceType string) string {
	t := strings.TrimSpace(sourceType)
	dims := 0
	if strings.HasSuffix(t, "...") {
		t = strings.TrimSuffix(t, "...")
		dims++
	}
	for strings.HasSuffix(t, "[]") {
		t = strings.TrimSpace(strings.TrimSuffix(t, "[]"))
		dims++
	}
	if i := strings.IndexByte(t, '<'); i >= 0 {
		t = t[:i]
	}
	return SimpleName(strings.TrimSpace(t)) + strings.Repeat("[]", dims)
}

// DescriptorSimpleNames splits a method descriptor into erased simple parameter type
// names, e.g. "(ILjava/lang/String;[J)V" gives [int String long[]].
func DescriptorSimpleNames(desc string) []string {
	var out []string
	i := strings.IndexByte(desc, '(') + 1
	end := strings.IndexByte(desc, ')')
	if i <= 0 || end < i {
		return nil
	}
	for i < end {
		dims := 0
		for desc[i] == '[' {
			dims++
			i++
		}
		var name string
		if desc[i] == 'L' {
			semi := strings.IndexByte(desc[i:], ';')
			if semi < 0 {
				return out
			}
			name = SimpleName(desc[i+1 : i+semi])
			i += semi + 1
		} else {
			name = PrimitiveName(desc[i])
			i++
		}
		out = append(out, name+strings.Repeat("[]", dims))
	}
	return out
}

// PrimitiveName maps a descriptor character to its Java keyword.
func PrimitiveName(c byte) string {
	switch c {
	case 'Z':
		return "boolean"
	case 'B':
		return "byte"
	case 'C':
		return "char"
	case 'S':
		return "short"
	case 'I':
		return "int"
	case 'J':
		return "long"
	case 'F':
		return "float"
	case 'D':
		return "double"
	case 'V':
		return "void"
	default:
		return string(c)
	}
}
