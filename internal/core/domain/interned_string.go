package domain

import "unique"

// InternedString wraps a unique.Handle[string].
// Type names are repeated across every unit that references them, so dependency tables
// and class indexes store them interned.
type InternedString struct {
	h unique.Handle[string]
}

// NewInternedString interns s.
func NewInternedString(s string) InternedString {
	return InternedString{h: unique.Make(s)}
}

// NewInternedStrings interns every element of s.
func NewInternedStrings(s []string) []InternedString {
	res := make([]InternedString, len(s))
	for i, v := range s {
		res[i] = NewInternedString(v)
	}
	return res
}

// String returns the underlying string value.
func (is InternedString) String() string {
	var zero unique.Handle[string]
	if is.h == zero {
		return ""
	}
	return is.h.Value()
}

// MarshalText implements encoding.TextMarshaler.
func (is InternedString) MarshalText() ([]byte, error) {
	return []byte(is.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (is *InternedString) UnmarshalText(text []byte) error {
	is.h = unique.Make(string(text))
	return nil
}
