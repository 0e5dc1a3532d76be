package compilation

import (
	"context"
	"fmt"
	"time"

	"go.trai.ch/javelin/internal/core/domain"
	"go.trai.ch/javelin/internal/core/ports"
	"go.trai.ch/javelin/internal/engine/jsni"
	"go.trai.ch/javelin/internal/engine/typemodel"
	"go.trai.ch/zerr"
)

// cachedUnit pairs a reused unit with the input it stands for, so the input can be
// compiled again when the unit turns out to be stale.
type cachedUnit struct {
	input *domain.SourceInput
	unit  *domain.CompilationUnit
}

// Build compiles inputs into a new State. Units found in the cache are reused as long
// as the classes they were compiled against are still valid.
//
// In strict mode Build returns domain.ErrCompilationErrors when any unit has errors;
// the State is returned with it so the failures can be inspected.
func Build(ctx context.Context, deps Deps, opts Options, inputs []*domain.SourceInput) (*State, error) {
	s := newState(deps, opts)

	// The first lookup waits for a persistent cache to finish replaying.
	_, span := s.deps.Tracer.Start(ctx, "cache.lookup", ports.WithAttribute("sources", len(inputs)))
	var pending []*domain.SourceInput
	var cached []cachedUnit
	for _, in := range inputs {
		if u, ok := s.lookupSource(in); ok {
			cached = append(cached, cachedUnit{input: in, unit: u})
			s.addValidUnit(u)
			continue
		}
		pending = append(pending, in)
	}
	span.SetAttribute("hits", len(cached))
	span.End()
	s.stats.Sources = len(inputs)
	s.stats.CachedSources = len(cached)
	s.deps.Logger.Debug(fmt.Sprintf("Found %d cached units. Used %d / %d units from cache.",
		len(cached), len(cached), len(inputs)))

	units, err := s.compile(ctx, pending, cached)
	if err != nil {
		return nil, err
	}
	if err := s.assimilate(ctx, units); err != nil {
		return nil, err
	}
	return s, s.report(units)
}

// AddGeneratedUnits compiles generator output against the state and adds the resulting
// types to the type oracle. Generated units are reused from the cache by content id.
// Strict mode reports errors the way Build does.
func (s *State) AddGeneratedUnits(ctx context.Context, inputs []*domain.SourceInput) error {
	var pending []*domain.SourceInput
	var cached []cachedUnit
	for _, in := range inputs {
		in.Unit.Generated = true
		if u, ok := s.deps.Cache.FindByContentID(in.Unit.ContentID); ok && u.IsChecked() {
			cached = append(cached, cachedUnit{input: in, unit: u})
			s.addValidUnit(u)
			continue
		}
		pending = append(pending, in)
	}
	s.stats.Generated += len(inputs)
	s.stats.CachedGenerated += len(cached)

	units, err := s.compile(ctx, pending, cached)
	if err != nil {
		return err
	}
	if err := s.assimilate(ctx, units); err != nil {
		return err
	}
	return s.report(units)
}

// lookupSource finds a reusable unit for in. A unit whose source was touched without
// changing is restamped; any other mismatch is a miss.
func (s *State) lookupSource(in *domain.SourceInput) (*domain.CompilationUnit, bool) {
	u, ok := s.deps.Cache.FindByPath(in.Unit.ResourcePath)
	if !ok {
		return nil, false
	}
	if !u.IsChecked() || u.ContentID() != in.Unit.ContentID {
		s.deps.Cache.Remove(u)
		return nil, false
	}
	if u.LastModified() != in.Unit.LastModified || u.DisplayLocation() != in.Unit.DisplayLocation {
		s.deps.Cache.Remove(u)
		u.Restamp(in.Unit.LastModified, in.Unit.DisplayLocation)
		s.deps.Cache.Add(u)
	}
	return u, true
}

func (s *State) addValidUnit(u *domain.CompilationUnit) {
	for _, c := range u.Classes() {
		s.valid[c.SourceName()] = c
	}
}

func (s *State) removeValidUnit(u *domain.CompilationUnit) {
	for _, c := range u.Classes() {
		if s.valid[c.SourceName()] == c {
			delete(s.valid, c.SourceName())
		}
	}
}

// compile builds pending and revalidates cached until no cached unit needs to be
// recompiled. It returns the units of the batch: newly built ones and the cached ones
// that stayed valid.
func (s *State) compile(ctx context.Context, pending []*domain.SourceInput, cached []cachedUnit) ([]*domain.CompilationUnit, error) {
	var results []*domain.CompilationUnit
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		built, err := s.compileBatch(ctx, pending)
		if err != nil {
			return nil, err
		}
		results = append(results, built...)

		for _, u := range built {
			if deps := u.Dependencies(); deps != nil {
				deps.Resolve(s.valid)
			}
		}

		pending, cached = s.rescheduleInvalid(cached)
		if len(pending) == 0 {
			break
		}
	}

	for _, c := range cached {
		results = append(results, c.unit)
	}
	return results, nil
}

// compileBatch runs the compiler over inputs and takes the units through restriction
// checks and error invalidation. The classes of units without errors become valid.
func (s *State) compileBatch(ctx context.Context, inputs []*domain.SourceInput) ([]*domain.CompilationUnit, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	start := time.Now()
	cctx, span := s.deps.Tracer.Start(ctx, "compile", ports.WithAttribute("units", len(inputs)))
	outputs, err := s.deps.Compiler.Compile(cctx, inputs, s.valid)
	if err != nil {
		span.RecordError(err)
		span.End()
		return nil, domain.InternalError(err, "failed to compile units")
	}
	if len(outputs) != len(inputs) {
		span.End()
		return nil, zerr.With(zerr.With(domain.ErrInternalCompiler, "inputs", len(inputs)), "outputs", len(outputs))
	}

	built := make([]*domain.CompilationUnit, 0, len(outputs))
	for i, out := range outputs {
		if out == nil || out.Declaration == nil {
			span.End()
			return nil, zerr.With(domain.ErrInternalCompiler, "unit", inputs[i].Unit.TypeName)
		}
		u, err := newCompiledUnit(inputs[i], out.Declaration)
		if err != nil {
			span.End()
			return nil, err
		}
		built = append(built, u)
	}
	span.End()
	sortUnits(built)

	_, span = s.deps.Tracer.Start(ctx, "check", ports.WithAttribute("units", len(built)))
	found := s.invalidator.ValidateRestrictions(built, s.deps.Checkers, s.checks)
	span.SetAttribute("problems", found)
	span.End()

	_, span = s.deps.Tracer.Start(ctx, "invalidate")
	_, err = s.invalidator.InvalidateUnitsWithErrors(built)
	span.End()
	if err != nil {
		return nil, err
	}

	for _, u := range built {
		if u.IsCompiled() {
			s.addValidUnit(u)
		}
	}
	s.deps.Logger.Debug(fmt.Sprintf("Compilation completed in %.02f seconds", time.Since(start).Seconds()))
	return built, nil
}

func newCompiledUnit(in *domain.SourceInput, decl *domain.Declaration) (*domain.CompilationUnit, error) {
	if len(decl.Source) == 0 {
		decl.Source = in.Source
	}
	u := domain.NewCompilationUnit(in.Unit)
	if err := u.SetCompiledDeclaration(decl); err != nil {
		return nil, domain.InternalError(err, "failed to attach compiled declaration")
	}
	if decl.HasErrors() {
		return u, nil
	}
	if err := u.SetJsniMethods(jsni.Extract(decl)); err != nil {
		return nil, domain.InternalError(err, "failed to attach native methods")
	}
	return u, nil
}

// rescheduleInvalid splits cached into the units that still validate and the inputs of
// those that must be compiled again. The classes of the latter stop being valid.
func (s *State) rescheduleInvalid(cached []cachedUnit) ([]*domain.SourceInput, []cachedUnit) {
	var pending []*domain.SourceInput
	var invalid []*domain.CompilationUnit
	keep := cached[:0]
	for _, c := range cached {
		if c.unit.Dependencies().Validate(s.valid, s.structural) {
			keep = append(keep, c)
			continue
		}
		s.deps.Logger.Debug("Invalid unit: " + c.unit.TypeName())
		invalid = append(invalid, c.unit)
		pending = append(pending, c.input)
	}
	if len(invalid) > 0 {
		s.deps.Logger.Debug(fmt.Sprintf("Invalid units found: %d", len(invalid)))
	}
	for _, u := range invalid {
		s.removeValidUnit(u)
	}
	return pending, keep
}

// assimilate makes the units of a batch part of the state: it drops units with invalid
// references, checks and caches the rest, reports errors and updates the type oracle.
func (s *State) assimilate(ctx context.Context, batch []*domain.CompilationUnit) error {
	rebuild := false
	inBatch := make(map[*domain.CompilationUnit]bool, len(batch))
	for _, u := range batch {
		inBatch[u] = true
		if prev, ok := s.units[u.TypeName()]; ok && prev != u {
			s.removeValidUnit(prev)
			rebuild = true
		}
	}

	all := make([]*domain.CompilationUnit, 0, len(s.units)+len(batch))
	wasChecked := make(map[*domain.CompilationUnit]bool, len(s.units))
	for _, u := range s.units {
		wasChecked[u] = u.IsChecked()
		if !inBatch[u] {
			all = append(all, u)
		}
	}
	all = append(all, batch...)
	sortUnits(all)

	_, span := s.deps.Tracer.Start(ctx, "invalidate", ports.WithAttribute("units", len(all)))
	_, err := s.invalidator.InvalidateUnitsWithInvalidRefs(all)
	span.End()
	if err != nil {
		return err
	}

	for _, u := range all {
		if wasChecked[u] && !u.IsChecked() {
			rebuild = true
		}
		switch u.State() {
		case domain.StateCompiled:
			if err := u.SetState(domain.StateChecked); err != nil {
				return domain.InternalError(err, "failed to check unit")
			}
			s.deps.Cache.Add(u)
		case domain.StateChecked:
		default:
			if cur, ok := s.deps.Cache.FindByPath(u.ResourcePath()); ok && cur == u {
				s.deps.Cache.Remove(u)
			}
		}
	}
	s.deps.Cache.Cleanup()

	// Invalidated units have already released their classes, so the index is pruned by
	// owner state.
	for name, c := range s.valid {
		if u := c.Unit(); u == nil || !u.IsChecked() {
			delete(s.valid, name)
		}
	}

	for _, u := range batch {
		s.units[u.TypeName()] = u
	}

	return s.updateTypes(ctx, batch, rebuild)
}

// updateTypes adds the checked units of batch to the type oracle. When units the
// oracle already knows were replaced or invalidated, the oracle is built again from
// every checked unit.
func (s *State) updateTypes(ctx context.Context, batch []*domain.CompilationUnit, rebuild bool) error {
	units := batch
	if rebuild {
		s.types = typemodel.New(s.deps.Reader, s.deps.Resolver, s.deps.Logger, s.deps.Tracer, typemodel.Options{
			SuppressMissing: s.opts.SuppressMissing,
			Workers:         s.opts.Workers,
		})
		units = s.Units()
	} else {
		sortUnits(units)
	}

	var types []domain.TypeData
	argNames := domain.MethodArgNames{}
	for _, u := range units {
		if !u.IsChecked() {
			continue
		}
		for _, c := range u.Classes() {
			types = append(types, domain.TypeData{
				Class:        c,
				LastModified: u.LastModified(),
				Generated:    u.IsGenerated(),
			})
		}
		argNames.Merge(u.MethodArgs())
	}
	return s.types.AddNewTypes(ctx, types, argNames)
}

// report counts the units of batch with errors. Outside strict mode the individual
// errors are only logged at debug level, so a summary is printed instead.
func (s *State) report(batch []*domain.CompilationUnit) error {
	n := 0
	for _, u := range batch {
		if u.IsError() {
			n++
		}
	}
	s.stats.Errors = 0
	for _, u := range s.units {
		if u.IsError() {
			s.stats.Errors++
		}
	}
	if n == 0 {
		return nil
	}
	if s.opts.Strict {
		return zerr.With(domain.ErrCompilationErrors, "units", n)
	}
	if !s.opts.Verbose {
		plural := "s"
		if n == 1 {
			plural = ""
		}
		s.deps.Logger.Info(fmt.Sprintf("Ignored %d unit%s with compilation errors in first pass.\n"+
			"Compile with --strict or with --verbose to see all errors.", n, plural))
	}
	return nil
}
