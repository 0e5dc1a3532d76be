package typemodel

import (
	"strings"

	"go.trai.ch/javelin/internal/core/domain"
	"go.trai.ch/javelin/internal/core/typeoracle"
)

var validationPrefixes = []string{"javax.validation.", "com.google.gwt.validation."}

// resolveAnnotations binds source annotations to their declaring types. Annotations
// whose type cannot be found are reported and dropped; they never fail the annotated
// element.
func (b *Builder) resolveAnnotations(as []domain.Annotation, pkg string) []*typeoracle.Annotation {
	if len(as) == 0 {
		return nil
	}
	out := make([]*typeoracle.Annotation, 0, len(as))
	for _, a := range as {
		ct := b.annotationType(a.TypeName, pkg)
		if ct == nil {
			b.reportUnresolvable(a.TypeName)
			continue
		}
		if ct.Kind() != typeoracle.KindAnnotation {
			b.logger.Warn("Type " + ct.QualifiedSourceName() + " is not an annotation")
			continue
		}
		out = append(out, &typeoracle.Annotation{Type: ct, Values: a.Values})
	}
	return out
}

// annotationType looks an annotation type up by the name written in source. Simple
// names are tried in the annotated element's package and then in java.lang.
func (b *Builder) annotationType(name, pkg string) *typeoracle.ClassType {
	candidates := []string{name}
	if !domain.IsQualified(name) {
		candidates = candidates[:0]
		if pkg != "" {
			candidates = append(candidates, pkg+"."+name)
		}
		candidates = append(candidates, "java.lang."+name)
	}

	for _, c := range candidates {
		if e := b.declaredType(c); e != nil {
			if b.resolveClass(e) {
				return e.typ
			}
			return nil
		}
		if b.resolver != nil {
			if ct, ok := b.resolver.ResolveAnnotationType(c); ok {
				return ct
			}
		}
		if ct := b.oracle.FindType(c); ct != nil && b.shells[ct.InternalName()] == nil {
			return ct
		}
	}
	return nil
}

// declaredType finds an indexed type by its dotted source name, whether or not it has
// been resolved yet.
func (b *Builder) declaredType(sourceName string) *entry {
	for i := strings.LastIndexByte(sourceName, '.'); ; i = strings.LastIndexByte(sourceName[:i], '.') {
		pkgName, nested := "", sourceName
		if i >= 0 {
			pkgName, nested = sourceName[:i], sourceName[i+1:]
		}
		if pkg := b.oracle.FindPackage(pkgName); pkg != nil {
			if ct := pkg.Type(nested); ct != nil {
				if e, ok := b.types[ct.InternalName()]; ok && e.typ == ct {
					return e
				}
			}
		}
		if i <= 0 {
			return nil
		}
	}
}

// reportUnresolvable logs a missing annotation type. Names under a suppressed prefix are
// reported once with a hint and then only at debug level.
func (b *Builder) reportUnresolvable(name string) {
	msg := "Ignoring unresolvable annotation type " + name
	prefix, suppressed := b.suppressedPrefix(name)
	if !suppressed {
		b.logger.Warn(msg)
		return
	}
	if b.hinted[prefix] {
		b.logger.Debug(msg)
		return
	}
	b.hinted[prefix] = true
	b.logger.Warn("Detected warnings related to '" + name + "'. " + missingJarHint(prefix))
	b.logger.Info("Run with --verbose to see every unresolvable annotation.")
	b.logger.Warn(msg)
}

func (b *Builder) suppressedPrefix(name string) (string, bool) {
	for _, p := range b.opts.SuppressMissing {
		if strings.HasPrefix(name, p) {
			return p, true
		}
	}
	return "", false
}

func missingJarHint(prefix string) string {
	for _, p := range validationPrefixes {
		if p == prefix {
			return "Is validation-<version>.jar on the classpath?"
		}
	}
	return "Is the library providing " + strings.TrimSuffix(prefix, ".") + " on the classpath?"
}
