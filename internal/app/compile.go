package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"go.trai.ch/javelin/internal/core/typeoracle"
	"go.trai.ch/javelin/internal/engine/compilation"
	"go.trai.ch/zerr"
)

// Summary is the result of a compile as printed by the compile command.
type Summary struct {
	Sources         int            `json:"sources"`
	CachedSources   int            `json:"cachedSources"`
	Errors          int            `json:"errors"`
	Types           int            `json:"types"`
	Packages        int            `json:"packages"`
	CacheEntries    int            `json:"cacheEntries"`
	PersistentCache bool           `json:"persistentCache"`
	Phases          map[string]int `json:"phasesMillis,omitempty"`
}

// Compile compiles every source of the project and prints a summary.
func (a *App) Compile(ctx context.Context, opts CompileOptions) (err error) {
	s, err := a.openSession(opts)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, s.close(ctx))
	}()

	state, _, err := a.build(ctx, s)
	if state == nil {
		return err
	}
	if perr := a.printSummary(s, state); perr != nil {
		return errors.Join(err, perr)
	}
	return err
}

func (a *App) summarize(s *session, state *compilation.State) Summary {
	stats := state.Stats()
	sum := Summary{
		Sources:         stats.Sources,
		CachedSources:   stats.CachedSources,
		Errors:          stats.Errors,
		CacheEntries:    s.cache.Len(),
		PersistentCache: s.cfg.Cache.Persistent,
	}
	for _, p := range state.TypeOracle().Packages() {
		if n := len(p.Types()); n > 0 {
			sum.Packages++
			sum.Types += n
		}
	}
	for _, t := range s.bridge.Timings() {
		if sum.Phases == nil {
			sum.Phases = make(map[string]int)
		}
		sum.Phases[t.Name] += int(t.Duration / time.Millisecond)
	}
	return sum
}

func (a *App) printSummary(s *session, state *compilation.State) error {
	sum := a.summarize(s, state)
	if s.opts.JSON {
		enc := json.NewEncoder(a.out)
		return enc.Encode(sum)
	}
	_, err := fmt.Fprintf(a.out, "Compiled %d %s (%d from cache), %d with errors; %d %s in %d %s\n",
		sum.Sources, plural(sum.Sources, "unit", "units"),
		sum.CachedSources,
		sum.Errors,
		sum.Types, plural(sum.Types, "type", "types"),
		sum.Packages, plural(sum.Packages, "package", "packages"))
	return err
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// Types compiles the project and prints the resolved types whose qualified name matches
// pattern. An empty pattern matches every type.
func (a *App) Types(ctx context.Context, pattern string, opts CompileOptions) (err error) {
	if pattern != "" {
		if _, err := path.Match(pattern, ""); err != nil {
			return zerr.With(zerr.Wrap(err, "invalid type pattern"), "pattern", pattern)
		}
	}

	s, err := a.openSession(opts)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, s.close(ctx))
	}()

	state, _, err := a.build(ctx, s)
	if state == nil {
		return err
	}
	for _, p := range state.TypeOracle().Packages() {
		for _, ct := range p.Types() {
			name := ct.QualifiedSourceName()
			if pattern != "" {
				if ok, _ := path.Match(pattern, name); !ok {
					continue
				}
			}
			if _, werr := fmt.Fprintln(a.out, describe(ct)); werr != nil {
				return errors.Join(err, werr)
			}
		}
	}
	return err
}

// describe renders a type the way it would be declared.
func describe(ct *typeoracle.ClassType) string {
	var b strings.Builder
	if mods := ct.Modifiers().String(); mods != "" {
		b.WriteString(mods)
		b.WriteByte(' ')
	}
	b.WriteString(ct.Kind().String())
	b.WriteByte(' ')
	b.WriteString(ct.QualifiedSourceName())

	if tps := ct.TypeParameters(); len(tps) > 0 {
		names := make([]string, len(tps))
		for i, tp := range tps {
			names[i] = tp.Name
		}
		b.WriteString("<" + strings.Join(names, ", ") + ">")
	}
	if sc := ct.Superclass(); sc != nil && !isObject(sc) {
		b.WriteString(" extends " + sc.QualifiedSourceName())
	}
	if ifaces := ct.Interfaces(); len(ifaces) > 0 {
		names := make([]string, len(ifaces))
		for i, t := range ifaces {
			names[i] = t.QualifiedSourceName()
		}
		keyword := " implements "
		if ct.IsInterface() {
			keyword = " extends "
		}
		b.WriteString(keyword + strings.Join(names, ", "))
	}
	return b.String()
}

func isObject(t typeoracle.Type) bool {
	ct := typeoracle.Erasure(t)
	return ct != nil && ct.InternalName() == typeoracle.ObjectInternalName
}
