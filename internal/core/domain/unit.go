package domain

import (
	"slices"

	"go.trai.ch/zerr"
)

// UnitState is the lifecycle state of a CompilationUnit.
type UnitState uint8

const (
	// StateFresh means only the unit's identity is known.
	StateFresh UnitState = iota
	// StateCompiled means a compiled declaration is attached.
	StateCompiled
	// StateError means compilation failed; only diagnostics are retained.
	StateError
	// StateChecked means every restriction passed and the classes are frozen.
	StateChecked
)

func (s UnitState) String() string {
	switch s {
	case StateFresh:
		return "FRESH"
	case StateCompiled:
		return "COMPILED"
	case StateError:
		return "ERROR"
	case StateChecked:
		return "CHECKED"
	default:
		return "UNKNOWN"
	}
}

// Provenance records where a unit instance came from.
type Provenance uint8

const (
	// ProvenanceRuntime marks units compiled by this process.
	ProvenanceRuntime Provenance = iota
	// ProvenancePersistent marks units replayed from the persistent cache.
	ProvenancePersistent
	// ProvenanceArchive marks units loaded from a precompiled archive.
	ProvenanceArchive
)

func (p Provenance) String() string {
	switch p {
	case ProvenancePersistent:
		return "persistent"
	case ProvenanceArchive:
		return "archive"
	default:
		return "runtime"
	}
}

// UnitSource identifies the source behind a unit.
type UnitSource struct {
	TypeName        string
	DisplayLocation string
	ResourcePath    string
	ContentID       ContentID
	// LastModified is the source modification time in UnixNano.
	LastModified int64
	Generated    bool
}

// CompilationUnit tracks the compile lifecycle of one source file.
type CompilationUnit struct {
	src        UnitSource
	provenance Provenance
	state      UnitState

	decl       *Declaration
	classes    []*CompiledClass
	deps       *Dependencies
	problems   []Problem
	jsni       []JsniMethod
	methodArgs MethodArgNames
	fileRefs   []string
}

// NewCompilationUnit returns a FRESH unit for src.
func NewCompilationUnit(src UnitSource) *CompilationUnit {
	return &CompilationUnit{src: src, state: StateFresh}
}

// CheckedUnitParts holds the derived state of a unit restored in the CHECKED state.
type CheckedUnitParts struct {
	Classes      []*CompiledClass
	Dependencies *Dependencies
	Problems     []Problem
	JsniMethods  []JsniMethod
	MethodArgs   MethodArgNames
	FileRefs     []string
}

// NewCheckedUnit rebuilds a CHECKED unit from persisted parts.
func NewCheckedUnit(src UnitSource, provenance Provenance, parts CheckedUnitParts) (*CompilationUnit, error) {
	u := &CompilationUnit{
		src:        src,
		provenance: provenance,
		state:      StateChecked,
		deps:       parts.Dependencies,
		problems:   parts.Problems,
		jsni:       parts.JsniMethods,
		methodArgs: parts.MethodArgs,
		fileRefs:   parts.FileRefs,
	}
	if err := u.adoptClasses(parts.Classes); err != nil {
		return nil, err
	}
	for _, c := range u.classes {
		c.check()
	}
	if u.deps == nil {
		u.deps = NewDependencies(PackageOfTypeName(src.TypeName), nil, nil, nil)
	}
	return u, nil
}

// TypeName returns the dotted name of the unit's main type.
func (u *CompilationUnit) TypeName() string { return u.src.TypeName }

// DisplayLocation returns the location shown in diagnostics.
func (u *CompilationUnit) DisplayLocation() string { return u.src.DisplayLocation }

// ResourcePath returns the resource path the unit was read from.
func (u *CompilationUnit) ResourcePath() string { return u.src.ResourcePath }

// ContentID returns the identity of the unit's source revision.
func (u *CompilationUnit) ContentID() ContentID { return u.src.ContentID }

// LastModified returns the source modification time in UnixNano.
func (u *CompilationUnit) LastModified() int64 { return u.src.LastModified }

// IsGenerated reports whether the unit came from a generator.
func (u *CompilationUnit) IsGenerated() bool { return u.src.Generated }

// Source returns the unit's identity record.
func (u *CompilationUnit) Source() UnitSource { return u.src }

// Package returns the dotted package of the unit.
func (u *CompilationUnit) Package() string {
	if u.deps != nil {
		return u.deps.Package()
	}
	if u.decl != nil {
		return u.decl.Package
	}
	return PackageOfTypeName(u.src.TypeName)
}

// Restamp records a new modification time and location for a source whose content is
// unchanged, e.g. after a checkout touched the file. The restamped unit belongs to this
// process, so a persistent cache logs it again.
func (u *CompilationUnit) Restamp(lastModified int64, displayLocation string) {
	u.src.LastModified = lastModified
	u.src.DisplayLocation = displayLocation
	u.provenance = ProvenanceRuntime
}

// Provenance returns where the unit came from.
func (u *CompilationUnit) Provenance() Provenance { return u.provenance }

// SetProvenance records where the unit came from.
func (u *CompilationUnit) SetProvenance(p Provenance) { u.provenance = p }

// State returns the lifecycle state.
func (u *CompilationUnit) State() UnitState { return u.state }

// IsCompiled reports whether the unit is COMPILED or CHECKED.
func (u *CompilationUnit) IsCompiled() bool {
	return u.state == StateCompiled || u.state == StateChecked
}

// IsError reports whether the unit is in the ERROR state.
func (u *CompilationUnit) IsError() bool { return u.state == StateError }

// IsChecked reports whether the unit is CHECKED.
func (u *CompilationUnit) IsChecked() bool { return u.state == StateChecked }

// Declaration returns the compiled declaration; nil unless COMPILED.
func (u *CompilationUnit) Declaration() *Declaration { return u.decl }

// Classes returns the compiled classes; empty unless COMPILED or CHECKED.
func (u *CompilationUnit) Classes() []*CompiledClass { return u.classes }

// ClassByInternalName returns the owned class with the given internal name.
func (u *CompilationUnit) ClassByInternalName(name string) *CompiledClass {
	for _, c := range u.classes {
		if c.internalName == name {
			return c
		}
	}
	return nil
}

// Dependencies returns the dependency table; nil unless COMPILED or CHECKED.
func (u *CompilationUnit) Dependencies() *Dependencies { return u.deps }

// Problems returns the diagnostics of the unit.
func (u *CompilationUnit) Problems() []Problem {
	if u.decl != nil {
		return u.decl.Problems
	}
	return u.problems
}

// HasErrors reports whether any diagnostic is an error.
func (u *CompilationUnit) HasErrors() bool {
	return HasErrors(u.Problems())
}

// AddProblem attaches a diagnostic to the compile result. Only COMPILED units accept
// new diagnostics.
func (u *CompilationUnit) AddProblem(p Problem) error {
	if u.state != StateCompiled || u.decl == nil {
		return u.illegal(u.state)
	}
	u.decl.AddProblem(p)
	return nil
}

// FileRefs returns the display locations of the units this unit refers to.
func (u *CompilationUnit) FileRefs() []string {
	if u.decl != nil {
		return u.decl.FileRefs
	}
	return u.fileRefs
}

// JsniMethods returns the extracted native method bodies.
func (u *CompilationUnit) JsniMethods() []JsniMethod { return u.jsni }

// SetJsniMethods attaches extracted native method bodies to a COMPILED unit.
func (u *CompilationUnit) SetJsniMethods(ms []JsniMethod) error {
	if u.state != StateCompiled {
		return u.illegal(u.state)
	}
	u.jsni = ms
	return nil
}

// MethodArgs returns the source-level parameter names of the unit's methods.
func (u *CompilationUnit) MethodArgs() MethodArgNames { return u.methodArgs }

// SetCompiledDeclaration attaches the compiler output and moves the unit to COMPILED.
// The unit must be FRESH or ERROR.
func (u *CompilationUnit) SetCompiledDeclaration(decl *Declaration) error {
	if u.state != StateFresh && u.state != StateError {
		return u.illegal(StateCompiled)
	}
	if err := u.adoptClasses(decl.Classes); err != nil {
		return err
	}
	u.decl = decl
	u.deps = NewDependencies(decl.Package, decl.QualifiedRefs, decl.SimpleRefs, decl.APIRefs)
	u.problems = nil
	u.jsni = nil
	u.methodArgs = decl.MethodArgs
	u.fileRefs = nil
	u.state = StateCompiled
	return nil
}

// SetState moves the unit to state. COMPILED is only reachable through
// SetCompiledDeclaration.
func (u *CompilationUnit) SetState(state UnitState) error {
	switch state {
	case StateChecked:
		if u.state != StateCompiled {
			return u.illegal(state)
		}
		if u.decl == nil {
			return zerr.With(ErrMissingDeclaration, "unit", u.src.TypeName)
		}
		u.fileRefs = slices.Clone(u.decl.FileRefs)
		u.problems = u.decl.Problems
		for _, c := range u.classes {
			c.check()
		}
		u.decl = nil
		u.state = StateChecked
	case StateError:
		if u.state != StateCompiled && u.state != StateError {
			return u.illegal(state)
		}
		if u.decl != nil {
			u.problems = u.decl.Problems
		}
		u.Invalidate()
		u.state = StateError
	case StateFresh:
		u.problems = nil
		u.Invalidate()
		u.state = StateFresh
	default:
		return u.illegal(state)
	}
	return nil
}

// Invalidate drops every derived structure and invalidates the owned classes.
// It is idempotent. SetState calls it when moving to FRESH or ERROR.
func (u *CompilationUnit) Invalidate() {
	u.decl = nil
	u.fileRefs = nil
	for _, c := range u.classes {
		c.invalidate()
	}
	u.classes = nil
	u.deps = nil
	u.jsni = nil
	u.methodArgs = nil
}

func (u *CompilationUnit) adoptClasses(classes []*CompiledClass) error {
	for _, c := range classes {
		if err := c.initUnit(u); err != nil {
			return err
		}
	}
	// Each chain must reach a top-level class within len(classes) steps.
	for _, c := range classes {
		idx := c.enclosing
		for steps := 0; idx != NoEnclosing; steps++ {
			if steps >= len(classes) || idx < 0 || idx >= len(classes) {
				return zerr.With(ErrEnclosingCycle, "class", c.internalName)
			}
			idx = classes[idx].enclosing
		}
	}
	u.classes = classes
	return nil
}

func (u *CompilationUnit) illegal(to UnitState) error {
	return zerr.With(zerr.With(zerr.With(ErrIllegalTransition,
		"unit", u.src.TypeName),
		"from", u.state.String()),
		"to", to.String())
}
