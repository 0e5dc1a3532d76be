package domain

import (
	"slices"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// AccessFlags is the JVM access_flags bit layout.
type AccessFlags uint16

// JVM access flags. Some bits are shared between classes, fields and methods.
const (
	AccPublic       AccessFlags = 0x0001
	AccPrivate      AccessFlags = 0x0002
	AccProtected    AccessFlags = 0x0004
	AccStatic       AccessFlags = 0x0008
	AccFinal        AccessFlags = 0x0010
	AccSynchronized AccessFlags = 0x0020
	AccVolatile     AccessFlags = 0x0040
	AccBridge       AccessFlags = 0x0040
	AccTransient    AccessFlags = 0x0080
	AccVarargs      AccessFlags = 0x0080
	AccNative       AccessFlags = 0x0100
	AccInterface    AccessFlags = 0x0200
	AccAbstract     AccessFlags = 0x0400
	AccStrict       AccessFlags = 0x0800
	AccSynthetic    AccessFlags = 0x1000
	AccAnnotation   AccessFlags = 0x2000
	AccEnum         AccessFlags = 0x4000
)

// Has reports whether every bit of mask is set.
func (f AccessFlags) Has(mask AccessFlags) bool {
	return f&mask == mask
}

// ClassData is the decoded form of a class payload.
type ClassData struct {
	InternalName string
	Access       AccessFlags
	SuperName    string
	Interfaces   []string
	Signature    string
	SourceFile   string
	Deprecated   bool
	Fields       []MemberData
	Methods      []MemberData
}

// MemberData describes one field or method of a class.
type MemberData struct {
	Name       string
	Descriptor string
	Signature  string
	Access     AccessFlags
	Exceptions []string
	// ParamNames holds parameter names when the payload records them.
	ParamNames []string
}

// IsInterface reports whether the class is an interface (annotation types included).
func (c *ClassData) IsInterface() bool {
	return c.Access.Has(AccInterface)
}

// IsPackageInfo reports whether the class is a package-info pseudo type.
func (c *ClassData) IsPackageInfo() bool {
	return c.InternalName == "package-info" || strings.HasSuffix(c.InternalName, "/package-info")
}

// StructuralSignature hashes the externally visible shape of a class.
// Private and synthetic members are ignored, as is member ordering, so two versions
// of a class that differ only in implementation produce the same value.
func StructuralSignature(c *ClassData) string {
	h := xxhash.New()
	write := func(parts ...string) {
		for _, p := range parts {
			_, _ = h.WriteString(p)
			_, _ = h.WriteString("\x00")
		}
	}

	write(c.InternalName, strconv.Itoa(int(c.Access&^AccSynthetic)), c.SuperName, c.Signature)
	ifaces := slices.Clone(c.Interfaces)
	slices.Sort(ifaces)
	write(ifaces...)

	for _, group := range [][]MemberData{c.Fields, c.Methods} {
		visible := make([]string, 0, len(group))
		for _, m := range group {
			if m.Access.Has(AccPrivate) || m.Access.Has(AccSynthetic) {
				continue
			}
			exc := slices.Clone(m.Exceptions)
			slices.Sort(exc)
			visible = append(visible, strings.Join([]string{
				m.Name,
				m.Descriptor,
				m.Signature,
				strconv.Itoa(int(m.Access)),
				strings.Join(exc, ","),
			}, "|"))
		}
		slices.Sort(visible)
		write("--")
		write(visible...)
	}

	return strconv.FormatUint(h.Sum64(), 16)
}
