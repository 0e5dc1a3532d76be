package domain

import (
	"slices"
)

// ClassIndex maps source names to the currently valid compiled classes.
type ClassIndex map[string]*CompiledClass

// depRef is one binding in a dependency table.
type depRef struct {
	class *CompiledClass
	// signature is the structural signature of the bound class. It is only populated for
	// tables restored from the persistent cache, where the class instance is gone.
	signature string
	resolved  bool
}

func (r *depRef) present() bool {
	return r.class != nil || r.signature != ""
}

// Dependencies records the types one unit refers to and the classes they were bound to
// when the unit was last validated.
type Dependencies struct {
	pkg       string
	qualified map[InternedString]*depRef
	simple    map[InternedString]*depRef
	apiRefs   []string
}

// NewDependencies builds an unresolved dependency table.
func NewDependencies(pkg string, qualified, simple, apiRefs []string) *Dependencies {
	d := &Dependencies{
		pkg:       pkg,
		qualified: make(map[InternedString]*depRef, len(qualified)),
		simple:    make(map[InternedString]*depRef, len(simple)),
		apiRefs:   slices.Clone(apiRefs),
	}
	for _, q := range qualified {
		d.qualified[NewInternedString(q)] = &depRef{}
	}
	for _, s := range simple {
		d.simple[NewInternedString(s)] = &depRef{}
	}
	return d
}

// Package returns the package of the owning unit.
func (d *Dependencies) Package() string { return d.pkg }

// APIRefs returns every referenced type name.
func (d *Dependencies) APIRefs() []string { return d.apiRefs }

// Len returns the number of qualified and simple references.
func (d *Dependencies) Len() int { return len(d.qualified) + len(d.simple) }

// Resolve binds every unresolved name against valid. Qualified names are looked up
// directly; simple names are tried in the unit's package, then in java.lang.
func (d *Dependencies) Resolve(valid ClassIndex) {
	for name, ref := range d.qualified {
		if !ref.resolved {
			ref.class = valid[name.String()]
			ref.resolved = true
		}
	}
	for name, ref := range d.simple {
		if !ref.resolved {
			ref.class = d.lookupSimple(valid, name.String())
			ref.resolved = true
		}
	}
}

// Validate reports whether every binding still matches valid. A binding matches when it
// is the same class, or a structurally equivalent one; in the latter case the binding
// moves to the new class so the next comparison is an identity check.
func (d *Dependencies) Validate(valid ClassIndex, cache *StructuralCache) bool {
	for name, ref := range d.qualified {
		if !d.validateRef(ref, valid[name.String()], cache) {
			return false
		}
	}
	for name, ref := range d.simple {
		if !d.validateRef(ref, d.lookupSimple(valid, name.String()), cache) {
			return false
		}
	}
	return true
}

// Lookup returns the class bound to a qualified or simple name.
func (d *Dependencies) Lookup(name string) (*CompiledClass, bool) {
	key := NewInternedString(name)
	if ref, ok := d.qualified[key]; ok {
		return ref.class, ref.resolved
	}
	if ref, ok := d.simple[key]; ok {
		return ref.class, ref.resolved
	}
	return nil, false
}

func (d *Dependencies) validateRef(ref *depRef, current *CompiledClass, cache *StructuralCache) bool {
	if !ref.resolved {
		return true
	}
	if ref.class != nil && ref.class == current {
		return true
	}
	localPresent, currentPresent := ref.present(), current != nil
	if !localPresent && !currentPresent {
		return true
	}
	if localPresent != currentPresent {
		return false
	}

	var same bool
	if ref.class != nil {
		same = cache.Same(ref.class, current)
	} else {
		sig, err := current.SignatureHash()
		same = err == nil && sig == ref.signature
	}
	if same {
		ref.class = current
		ref.signature = ""
	}
	return same
}

func (d *Dependencies) lookupSimple(valid ClassIndex, name string) *CompiledClass {
	qualified := name
	if d.pkg != "" {
		qualified = d.pkg + "." + name
	}
	if c, ok := valid[qualified]; ok {
		return c
	}
	return valid["java.lang."+name]
}

// DependenciesSnapshot is the persisted form of a dependency table. Each name maps to
// the structural signature of its binding, or "" when the name did not resolve.
type DependenciesSnapshot struct {
	Package   string            `json:"package,omitempty"`
	Qualified map[string]string `json:"qualified,omitempty"`
	Simple    map[string]string `json:"simple,omitempty"`
	APIRefs   []string          `json:"apiRefs,omitempty"`
}

// Snapshot captures the table for persistence.
func (d *Dependencies) Snapshot() DependenciesSnapshot {
	snap := DependenciesSnapshot{
		Package:   d.pkg,
		Qualified: make(map[string]string, len(d.qualified)),
		Simple:    make(map[string]string, len(d.simple)),
		APIRefs:   d.apiRefs,
	}
	for name, ref := range d.qualified {
		snap.Qualified[name.String()] = ref.persistedSignature()
	}
	for name, ref := range d.simple {
		snap.Simple[name.String()] = ref.persistedSignature()
	}
	return snap
}

func (r *depRef) persistedSignature() string {
	if r.class == nil {
		return r.signature
	}
	sig, err := r.class.SignatureHash()
	if err != nil {
		return ""
	}
	return sig
}

// RestoreDependencies rebuilds a table from a snapshot. Every restored name counts as
// resolved; validation compares the recorded signatures with the current classes.
func RestoreDependencies(snap DependenciesSnapshot) *Dependencies {
	d := &Dependencies{
		pkg:       snap.Package,
		qualified: make(map[InternedString]*depRef, len(snap.Qualified)),
		simple:    make(map[InternedString]*depRef, len(snap.Simple)),
		apiRefs:   snap.APIRefs,
	}
	for name, sig := range snap.Qualified {
		d.qualified[NewInternedString(name)] = &depRef{signature: sig, resolved: true}
	}
	for name, sig := range snap.Simple {
		d.simple[NewInternedString(name)] = &depRef{signature: sig, resolved: true}
	}
	return d
}
