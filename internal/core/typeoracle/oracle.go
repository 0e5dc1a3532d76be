package typeoracle

import (
	"slices"
	"strings"
)

// ObjectInternalName is the internal name of java.lang.Object.
const ObjectInternalName = "java/lang/Object"

// Package groups the types declared in one Java package.
type Package struct {
	Name        string
	types       map[string]*ClassType
	annotations []*Annotation
}

func newPackage(name string) *Package {
	return &Package{Name: name, types: make(map[string]*ClassType)}
}

// Types returns the package's types sorted by name.
func (p *Package) Types() []*ClassType {
	out := make([]*ClassType, 0, len(p.types))
	for _, t := range p.types {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b *ClassType) int { return strings.Compare(a.name, b.name) })
	return out
}

// Type finds a type by its nested source name (Outer.Inner).
func (p *Package) Type(name string) *ClassType { return p.types[name] }

// Annotations returns the package-level annotations from package-info.
func (p *Package) Annotations() []*Annotation { return p.annotations }

// AddAnnotation attaches a package-level annotation.
func (p *Package) AddAnnotation(a *Annotation) { p.annotations = append(p.annotations, a) }

// Annotation finds a package annotation by its type's qualified name.
func (p *Package) Annotation(qualifiedName string) *Annotation {
	return findAnnotation(p.annotations, qualifiedName)
}

func (p *Package) addType(ct *ClassType)    { p.types[ct.name] = ct }
func (p *Package) removeType(ct *ClassType) { delete(p.types, ct.name) }

// TypeOracle is the queryable type graph. Only fully resolved types are visible through
// its lookups.
type TypeOracle struct {
	packages   map[string]*Package
	byInternal map[string]*ClassType
}

// New returns an empty oracle.
func New() *TypeOracle {
	return &TypeOracle{
		packages:   make(map[string]*Package),
		byInternal: make(map[string]*ClassType),
	}
}

// GetOrCreatePackage returns the package called name, creating it if needed.
func (o *TypeOracle) GetOrCreatePackage(name string) *Package {
	if p, ok := o.packages[name]; ok {
		return p
	}
	p := newPackage(name)
	o.packages[name] = p
	return p
}

// FindPackage returns a package by name.
func (o *TypeOracle) FindPackage(name string) *Package { return o.packages[name] }

// Packages returns every package sorted by name.
func (o *TypeOracle) Packages() []*Package {
	out := make([]*Package, 0, len(o.packages))
	for _, p := range o.packages {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b *Package) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Publish makes a resolved type visible.
func (o *TypeOracle) Publish(ct *ClassType) {
	o.byInternal[ct.internalName] = ct
}

// Discard removes a type that failed to resolve from its package and enclosing type.
func (o *TypeOracle) Discard(ct *ClassType) {
	delete(o.byInternal, ct.internalName)
	ct.detach()
}

// TypeByInternalName returns a published type.
func (o *TypeOracle) TypeByInternalName(internalName string) *ClassType {
	return o.byInternal[internalName]
}

// FindType returns a published type by its dotted source name.
func (o *TypeOracle) FindType(sourceName string) *ClassType {
	// Try each split between package and nested name, longest package first.
	for i := strings.LastIndexByte(sourceName, '.'); ; i = strings.LastIndexByte(sourceName[:i], '.') {
		pkgName, name := "", sourceName
		if i >= 0 {
			pkgName, name = sourceName[:i], sourceName[i+1:]
		}
		if p := o.packages[pkgName]; p != nil {
			if ct := p.types[name]; ct != nil && o.byInternal[ct.internalName] == ct {
				return ct
			}
		}
		if i <= 0 {
			return nil
		}
	}
}

// TypesByInternalName returns a copy of the published index.
func (o *TypeOracle) TypesByInternalName() map[string]*ClassType {
	out := make(map[string]*ClassType, len(o.byInternal))
	for k, v := range o.byInternal {
		out[k] = v
	}
	return out
}

// Types returns every published type sorted by qualified name.
func (o *TypeOracle) Types() []*ClassType {
	out := make([]*ClassType, 0, len(o.byInternal))
	for _, t := range o.byInternal {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b *ClassType) int {
		return strings.Compare(a.QualifiedSourceName(), b.QualifiedSourceName())
	})
	return out
}

// JavaLangObject returns java.lang.Object once it is published.
func (o *TypeOracle) JavaLangObject() *ClassType {
	return o.byInternal[ObjectInternalName]
}
