package domain

import "strings"

// SimpleName returns the segment after the last '.', '/' or '$'.
func SimpleName(name string) string {
	if i := strings.LastIndexAny(name, "./$"); i >= 0 {
		return name[i+1:]
	}
	return name
}

// IsQualified reports whether name carries a package or enclosing type prefix.
func IsQualified(name string) bool {
	return strings.ContainsAny(name, "./")
}

// SourceName converts an internal name (pkg/Outer$Inner) to a source name (pkg.Outer.Inner).
func SourceName(internalName string) string {
	return strings.NewReplacer("/", ".", "$", ".").Replace(internalName)
}

// BinaryName converts an internal name (pkg/Outer$Inner) to a binary name (pkg.Outer$Inner).
func BinaryName(internalName string) string {
	return strings.ReplaceAll(internalName, "/", ".")
}

// PackageOf returns the package of an internal name in dotted form.
func PackageOf(internalName string) string {
	if i := strings.LastIndexByte(internalName, '/'); i >= 0 {
		return strings.ReplaceAll(internalName[:i], "/", ".")
	}
	return ""
}

// PackageOfTypeName returns the package of a dotted top-level type name.
func PackageOfTypeName(typeName string) string {
	if i := strings.LastIndexByte(typeName, '.'); i >= 0 {
		return typeName[:i]
	}
	return ""
}

// EnclosingInternalName returns the internal name of the enclosing class, derived from
// the '$' separator, or "" for top-level classes.
func EnclosingInternalName(internalName string) string {
	slash := strings.LastIndexByte(internalName, '/')
	if i := strings.LastIndexByte(internalName, '$'); i > slash+1 {
		return internalName[:i]
	}
	return ""
}

// IsLocalName reports whether the internal name denotes an anonymous or method-local
// class (a '$' segment starting with a digit).
func IsLocalName(internalName string) bool {
	for _, seg := range strings.Split(internalName[strings.LastIndexByte(internalName, '/')+1:], "$")[1:] {
		if seg != "" && seg[0] >= '0' && seg[0] <= '9' {
			return true
		}
	}
	return false
}
