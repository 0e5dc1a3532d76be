package typeoracle

import "strings"

// Modifier is the type model's modifier bitset. Its layout is independent of the JVM
// access flags; the builder translates between the two.
type Modifier uint16

const (
	ModPublic Modifier = 1 << iota
	ModProtected
	ModPrivate
	ModStatic
	ModFinal
	ModAbstract
	ModVolatile
	ModTransient
	ModNative
	ModSynchronized
)

var modifierNames = []struct {
	mod  Modifier
	name string
}{
	{ModPublic, "public"},
	{ModProtected, "protected"},
	{ModPrivate, "private"},
	{ModAbstract, "abstract"},
	{ModStatic, "static"},
	{ModFinal, "final"},
	{ModTransient, "transient"},
	{ModVolatile, "volatile"},
	{ModSynchronized, "synchronized"},
	{ModNative, "native"},
}

// Has reports whether every bit of m is set.
func (m Modifier) Has(mask Modifier) bool {
	return m&mask == mask
}

// String lists the modifiers in source order.
func (m Modifier) String() string {
	parts := make([]string, 0, 4)
	for _, mn := range modifierNames {
		if m.Has(mn.mod) {
			parts = append(parts, mn.name)
		}
	}
	return strings.Join(parts, " ")
}
