package typemodel

import (
	"strings"
	"sync"

	"go.trai.ch/javelin/internal/core/domain"
	"go.trai.ch/javelin/internal/core/ports"
	"go.trai.ch/javelin/internal/core/typeoracle"
)

// platformAnnotations are the annotation types of the Java platform that sources may
// use without compiling them.
var platformAnnotations = map[string]bool{
	"java.lang.Deprecated":                  true,
	"java.lang.FunctionalInterface":         true,
	"java.lang.Override":                    true,
	"java.lang.SafeVarargs":                 true,
	"java.lang.SuppressWarnings":            true,
	"java.lang.annotation.Documented":       true,
	"java.lang.annotation.Inherited":        true,
	"java.lang.annotation.Native":           true,
	"java.lang.annotation.Repeatable":       true,
	"java.lang.annotation.Retention":        true,
	"java.lang.annotation.Target":           true,
	"javax.annotation.Generated":            true,
	"javax.annotation.processing.Generated": true,
}

var _ ports.AnnotationTypeResolver = (*PlatformResolver)(nil)

// PlatformResolver resolves the Java platform's own annotation types. The types live
// in a private oracle and carry no members.
type PlatformResolver struct {
	mu     sync.Mutex
	oracle *typeoracle.TypeOracle
}

// NewPlatformResolver returns an empty PlatformResolver.
func NewPlatformResolver() *PlatformResolver {
	return &PlatformResolver{oracle: typeoracle.New()}
}

// ResolveAnnotationType implements ports.AnnotationTypeResolver.
func (r *PlatformResolver) ResolveAnnotationType(name string) (*typeoracle.ClassType, bool) {
	if !platformAnnotations[name] {
		return nil, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if ct := r.oracle.FindType(name); ct != nil {
		return ct, true
	}
	pkg := r.oracle.GetOrCreatePackage(domain.PackageOfTypeName(name))
	ct := typeoracle.NewClassType(pkg, nil, domain.SimpleName(name), strings.ReplaceAll(name, ".", "/"), typeoracle.KindAnnotation)
	ct.AddModifiers(typeoracle.ModPublic | typeoracle.ModAbstract | typeoracle.ModStatic)
	r.oracle.Publish(ct)
	return ct, true
}
