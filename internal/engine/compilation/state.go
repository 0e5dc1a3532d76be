// Package compilation keeps the incremental compilation state: the units of a project,
// the classes that are currently valid, and the type oracle built from them.
package compilation

import (
	"slices"
	"strings"

	"go.trai.ch/javelin/internal/core/domain"
	"go.trai.ch/javelin/internal/core/ports"
	"go.trai.ch/javelin/internal/core/typeoracle"
	"go.trai.ch/javelin/internal/engine/checks"
	"go.trai.ch/javelin/internal/engine/invalidator"
	"go.trai.ch/javelin/internal/engine/typemodel"
)

// Options configures a State.
type Options struct {
	// Strict fails the build when any unit has errors.
	Strict bool
	// Verbose reports every unit error instead of a summary.
	Verbose bool
	// DumpErrorSources writes the source of failing units to a temp file.
	DumpErrorSources bool
	// SuppressMissing lists annotation name prefixes whose absence is expected.
	SuppressMissing []string
	// Workers bounds payload decoding in the type model builder.
	Workers int
}

// Deps are the collaborators of a State.
type Deps struct {
	Compiler ports.Compiler
	Cache    ports.UnitCache
	Reader   ports.ClassReader
	// Resolver finds annotation types that are not compiled from source. May be nil.
	Resolver ports.AnnotationTypeResolver
	Logger   ports.Logger
	Tracer   ports.Tracer
	// Checkers default to checks.Default().
	Checkers []checks.Checker
}

// Stats counts how a State was assembled.
type Stats struct {
	Sources         int
	CachedSources   int
	Generated       int
	CachedGenerated int
	// Errors is the number of units in the ERROR state after the last batch.
	Errors int
}

// State is the result of compiling a set of sources. Generated sources can be added to
// it later; the type oracle grows with them.
type State struct {
	deps        Deps
	opts        Options
	invalidator *invalidator.Invalidator

	units      map[string]*domain.CompilationUnit
	valid      domain.ClassIndex
	structural *domain.StructuralCache
	checks     *checks.State
	types      *typemodel.Builder
	stats      Stats
}

func newState(deps Deps, opts Options) *State {
	if deps.Checkers == nil {
		deps.Checkers = checks.Default()
	}
	s := &State{
		deps: deps,
		opts: opts,
		invalidator: invalidator.New(deps.Logger, invalidator.Options{
			DumpSources:    opts.DumpErrorSources,
			SuppressErrors: !opts.Strict && !opts.Verbose,
		}),
		units:      make(map[string]*domain.CompilationUnit),
		valid:      make(domain.ClassIndex),
		structural: domain.NewStructuralCache(),
		types: typemodel.New(deps.Reader, deps.Resolver, deps.Logger, deps.Tracer, typemodel.Options{
			SuppressMissing: opts.SuppressMissing,
			Workers:         opts.Workers,
		}),
	}
	s.checks = checks.NewState(newClassHierarchy(s.valid, deps.Reader, deps.Logger))
	return s
}

// TypeOracle returns the resolved type model.
func (s *State) TypeOracle() *typeoracle.TypeOracle { return s.types.Oracle() }

// Unit returns the unit for a dotted type name.
func (s *State) Unit(typeName string) (*domain.CompilationUnit, bool) {
	u, ok := s.units[typeName]
	return u, ok
}

// Units returns every unit sorted by type name, including those with errors.
func (s *State) Units() []*domain.CompilationUnit {
	out := make([]*domain.CompilationUnit, 0, len(s.units))
	for _, u := range s.units {
		out = append(out, u)
	}
	sortUnits(out)
	return out
}

// ValidClasses returns the classes of every valid unit, by source name.
func (s *State) ValidClasses() domain.ClassIndex {
	out := make(domain.ClassIndex, len(s.valid))
	for k, v := range s.valid {
		out[k] = v
	}
	return out
}

// ClassesByInternalName returns the compiled classes of every checked unit.
func (s *State) ClassesByInternalName() map[string]*domain.CompiledClass {
	out := make(map[string]*domain.CompiledClass)
	for _, u := range s.units {
		if !u.IsChecked() {
			continue
		}
		for _, c := range u.Classes() {
			out[c.InternalName()] = c
		}
	}
	return out
}

// Stats returns the counters of the state.
func (s *State) Stats() Stats { return s.stats }

func sortUnits(units []*domain.CompilationUnit) {
	slices.SortFunc(units, func(a, b *domain.CompilationUnit) int {
		if c := strings.Compare(a.TypeName(), b.TypeName()); c != 0 {
			return c
		}
		return strings.Compare(a.ResourcePath(), b.ResourcePath())
	})
}
