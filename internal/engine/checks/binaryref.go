package checks

import (
	"iter"

	"go.trai.ch/javelin/internal/core/domain"
)

// BinaryRefChecker rejects references to types that are only available as bytecode.
// Annotation types, and references made inside annotations, need no source.
type BinaryRefChecker struct{}

// Name implements Checker.
func (BinaryRefChecker) Name() string { return "binary-ref" }

// Check implements Checker.
func (BinaryRefChecker) Check(events iter.Seq[Event], _ *State) []domain.Problem {
	var problems []domain.Problem
	for ev := range events {
		if ev.Kind != BinaryReference {
			continue
		}
		ref := ev.BinaryRef
		if ref.InAnnotation || ref.IsAnnotationType {
			continue
		}
		problems = append(problems, domain.NewError(domain.CategoryRestriction, ref.Line,
			"No source code is available for type "+ref.TypeName+
				"; only annotation types may be referenced in binary form"))
	}
	return problems
}
