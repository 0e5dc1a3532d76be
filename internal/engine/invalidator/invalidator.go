// Package invalidator moves compilation units out of the COMPILED state when they, or
// the units they refer to, cannot be used.
package invalidator

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/javelin/internal/core/domain"
	"go.trai.ch/javelin/internal/core/ports"
	"go.trai.ch/javelin/internal/engine/checks"
	"go.trai.ch/zerr"
)

// Options configures an Invalidator.
type Options struct {
	// DumpSources writes the source of every failing unit to a temp file.
	DumpSources bool
	// DumpDir is where sources are dumped. Empty means os.TempDir().
	DumpDir string
	// SuppressErrors logs unit errors at debug level instead of as errors.
	SuppressErrors bool
}

// Invalidator applies error, reference and restriction based invalidation.
type Invalidator struct {
	logger ports.Logger
	opts   Options
}

// New returns an Invalidator that reports through logger.
func New(logger ports.Logger, opts Options) *Invalidator {
	return &Invalidator{logger: logger, opts: opts}
}

// InvalidateUnitsWithErrors moves every COMPILED unit whose compile result reports an
// error to ERROR, logging its errors first. It reports whether any unit changed.
func (v *Invalidator) InvalidateUnitsWithErrors(units []*domain.CompilationUnit) (bool, error) {
	changed := false
	for _, u := range units {
		if u.State() != domain.StateCompiled || !u.HasErrors() {
			continue
		}
		v.logErrors(u)
		if v.opts.DumpSources {
			v.dumpSource(u)
		}
		if err := u.SetState(domain.StateError); err != nil {
			return changed, domain.InternalError(err, "invalidate unit with errors")
		}
		changed = true
	}
	return changed, nil
}

// InvalidateUnitsWithInvalidRefs moves compiled units that refer to a unit which is no
// longer compiled back to FRESH. Removing a unit can invalidate the units that refer to
// it, so the pass repeats until nothing changes. It reports whether any unit changed.
func (v *Invalidator) InvalidateUnitsWithInvalidRefs(units []*domain.CompilationUnit) (bool, error) {
	valid := make(map[*domain.CompilationUnit]struct{}, len(units))
	for _, u := range units {
		if u.IsCompiled() {
			valid[u] = struct{}{}
		}
	}

	changed := false
	for {
		locations := make(map[string]struct{}, len(valid))
		for u := range valid {
			locations[u.DisplayLocation()] = struct{}{}
		}

		removed := false
		// Iterate the input slice so removals are logged in a stable order.
		for _, u := range units {
			if _, ok := valid[u]; !ok {
				continue
			}
			var missing []string
			for _, ref := range u.FileRefs() {
				if _, ok := locations[ref]; !ok {
					missing = append(missing, ref)
				}
			}
			if len(missing) == 0 {
				continue
			}
			delete(valid, u)
			v.logger.Warn(fmt.Sprintf("Compilation unit '%s' is removed due to invalid reference(s): %s",
				u.DisplayLocation(), strings.Join(missing, ", ")))
			if err := u.SetState(domain.StateFresh); err != nil {
				return changed, domain.InternalError(err, "invalidate unit with invalid refs")
			}
			removed = true
			changed = true
		}
		if !removed {
			return changed, nil
		}
	}
}

// ValidateRestrictions runs checkers over every COMPILED unit whose compile result is
// free of errors. Every declaration is registered with state before the first check, so
// checkers see the whole batch. It returns the number of problems found.
func (v *Invalidator) ValidateRestrictions(units []*domain.CompilationUnit, checkers []checks.Checker, state *checks.State) int {
	var decls []*domain.Declaration
	for _, u := range units {
		if u.State() != domain.StateCompiled || u.HasErrors() {
			continue
		}
		if d := u.Declaration(); d != nil {
			decls = append(decls, d)
			state.Declare(d)
		}
	}

	n := 0
	for _, d := range decls {
		n += checks.Run(d, checkers, state)
	}
	return n
}

func (v *Invalidator) logErrors(u *domain.CompilationUnit) {
	var lines []string
	for _, p := range u.Problems() {
		if p.IsError() {
			lines = append(lines, p.String())
		}
	}
	if v.opts.SuppressErrors {
		v.logger.Debug(domain.ErrUnitHasErrors.Error() + " " + u.DisplayLocation() + ":\n" + strings.Join(lines, "\n"))
		return
	}
	err := zerr.Wrap(errors.New(strings.Join(lines, "\n")), domain.ErrUnitHasErrors.Error())
	v.logger.Error(zerr.With(err, "unit", u.DisplayLocation()))
}

// dumpSource writes the unit's source to a temp file so it can be inspected after the
// build. Failures are plumbing noise and only logged at debug level.
func (v *Invalidator) dumpSource(u *domain.CompilationUnit) {
	d := u.Declaration()
	if d == nil || len(d.Source) == 0 {
		return
	}
	dir := v.opts.DumpDir
	if dir == "" {
		dir = os.TempDir()
	}
	f, err := os.CreateTemp(dir, strings.ReplaceAll(u.TypeName(), ".", "_")+"-*.java")
	if err != nil {
		v.logger.Debug("cannot dump source of " + u.TypeName() + ": " + err.Error())
		return
	}
	defer func() { _ = f.Close() }()
	if _, err := f.Write(d.Source); err != nil {
		v.logger.Debug("cannot dump source of " + u.TypeName() + ": " + err.Error())
		return
	}
	v.logger.Info("See snapshot: " + filepath.Clean(f.Name()))
}
