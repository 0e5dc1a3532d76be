package checks

import (
	"iter"
	"strings"

	"go.trai.ch/javelin/internal/core/domain"
)

// Artificial rescue annotation types.
const (
	ArtificialRescue = "com.google.gwt.core.client.impl.ArtificialRescue"
	Rescue           = "com.google.gwt.core.client.impl.ArtificialRescue.Rescue"
)

var primitives = map[string]bool{
	"boolean": true, "byte": true, "char": true, "short": true,
	"int": true, "long": true, "float": true, "double": true,
}

// ArtificialRescueChecker validates @ArtificialRescue: every rescue must name a known
// type and rescue at least one member.
type ArtificialRescueChecker struct{}

// Name implements Checker.
func (ArtificialRescueChecker) Name() string { return "artificial-rescue" }

// Check implements Checker.
func (ArtificialRescueChecker) Check(events iter.Seq[Event], state *State) []domain.Problem {
	var problems []domain.Problem
	for ev := range events {
		if ev.Kind != Annotation || ev.Field != nil || ev.Method != nil {
			continue
		}
		for _, r := range rescues(ev.Annotation) {
			problems = append(problems, checkRescue(r, ev.Type, state)...)
		}
	}
	return problems
}

// rescues returns the Rescue entries of a, which is either a single Rescue or the
// ArtificialRescue container.
func rescues(a *domain.Annotation) []*domain.Annotation {
	switch a.SimpleName() {
	case "Rescue":
		return []*domain.Annotation{a}
	case "ArtificialRescue":
		v, ok := a.Value("value")
		if !ok {
			return nil
		}
		if v.Kind == domain.ValueAnnotation && v.Nested != nil {
			return []*domain.Annotation{v.Nested}
		}
		var out []*domain.Annotation
		for _, e := range v.Elems {
			if e.Kind == domain.ValueAnnotation && e.Nested != nil {
				out = append(out, e.Nested)
			}
		}
		return out
	}
	return nil
}

func checkRescue(r *domain.Annotation, t *domain.TypeDecl, state *State) []domain.Problem {
	line := r.Line
	if line == 0 {
		line = t.Line
	}

	v, ok := r.Value("className")
	if !ok || v.Kind != domain.ValueString || v.Str == "" {
		return []domain.Problem{domain.NewError(domain.CategoryRestriction, line,
			"@ArtificialRescue requires a className")}
	}
	className := v.Str
	for strings.HasSuffix(className, "[]") {
		className = strings.TrimSuffix(className, "[]")
	}

	var problems []domain.Problem
	if !primitives[className] && !state.Known(className) {
		problems = append(problems, domain.NewError(domain.CategoryRestriction, line,
			"Unable to find type '"+v.Str+"' named in @ArtificialRescue"))
	}

	members := 0
	for _, key := range []string{"fields", "methods"} {
		mv, ok := r.Value(key)
		if !ok {
			continue
		}
		names, ok := mv.Strings()
		if !ok {
			problems = append(problems, domain.NewError(domain.CategoryRestriction, line,
				"@ArtificialRescue "+key+" must be strings"))
			continue
		}
		for _, n := range names {
			if strings.TrimSpace(n) == "" {
				problems = append(problems, domain.NewError(domain.CategoryRestriction, line,
					"@ArtificialRescue names an empty member of "+v.Str))
				continue
			}
			members++
		}
	}
	if inst, ok := r.Value("instantiable"); ok && inst.Kind == domain.ValueBool && inst.Bool {
		members++
	}
	if members == 0 {
		problems = append(problems, domain.NewError(domain.CategoryRestriction, line,
			"@ArtificialRescue of "+v.Str+" rescues no members"))
	}
	return problems
}
