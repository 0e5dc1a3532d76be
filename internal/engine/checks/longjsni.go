package checks

import (
	"iter"
	"strings"

	"go.trai.ch/javelin/internal/core/domain"
)

// UnsafeNativeLong allows long values in the JSNI methods it annotates, directly or
// through an enclosing type.
const UnsafeNativeLong = "com.google.gwt.core.client.UnsafeNativeLong"

// LongJsniChecker rejects long parameters and return values on native methods.
type LongJsniChecker struct{}

// Name implements Checker.
func (LongJsniChecker) Name() string { return "long-jsni" }

// Check implements Checker.
func (LongJsniChecker) Check(events iter.Seq[Event], _ *State) []domain.Problem {
	var problems []domain.Problem
	var unsafe typeStack[bool]

	for ev := range events {
		switch ev.Kind {
		case EnterType:
			outer, _ := unsafe.top()
			unsafe.push(outer || domain.FindAnnotation(ev.Type.Annotations, UnsafeNativeLong) != nil)
		case ExitType:
			unsafe.pop()
		case Method:
			m := ev.Method
			if !m.IsNative() {
				continue
			}
			if allowed, _ := unsafe.top(); allowed || domain.FindAnnotation(m.Annotations, UnsafeNativeLong) != nil {
				continue
			}
			if isLong(m.ReturnType) {
				problems = append(problems, domain.NewError(domain.CategoryJsni, m.Line,
					"Type '"+m.ReturnType+"' may not be returned from a JSNI method"))
			}
			for _, p := range m.Params {
				if isLong(p.Type) {
					problems = append(problems, domain.NewError(domain.CategoryJsni, m.Line,
						"Parameter '"+p.Name+"': type '"+p.Type+"' is not safe to access in JSNI code"))
				}
			}
		}
	}
	return problems
}

// isLong reports whether t is long or an array of long.
func isLong(t string) bool {
	t = strings.TrimSuffix(strings.TrimSpace(t), "...")
	for strings.HasSuffix(t, "[]") {
		t = strings.TrimSpace(strings.TrimSuffix(t, "[]"))
	}
	return t == "long"
}
