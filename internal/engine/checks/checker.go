package checks

import (
	"iter"

	"go.trai.ch/javelin/internal/core/domain"
)

// Checker validates one unit. Check consumes the unit's events and returns the
// problems found; it must not depend on other checkers having run.
type Checker interface {
	Name() string
	Check(events iter.Seq[Event], state *State) []domain.Problem
}

// Default returns the standard checker pipeline in its fixed order.
func Default() []Checker {
	return []Checker{
		JSOChecker{},
		LongJsniChecker{},
		BinaryRefChecker{},
		ArtificialRescueChecker{},
	}
}

// Run runs every checker over decl and attaches the problems to it. It returns the
// number of problems added.
func Run(decl *domain.Declaration, checkers []Checker, state *State) int {
	n := 0
	for _, c := range checkers {
		for _, p := range c.Check(Events(decl), state) {
			if p.Category == "" {
				p.Category = domain.CategoryRestriction
			}
			decl.AddProblem(p)
			n++
		}
	}
	return n
}

// typeStack tracks the types enclosing the current event.
type typeStack[T any] []T

func (s *typeStack[T]) push(v T) { *s = append(*s, v) }

func (s *typeStack[T]) pop() {
	if len(*s) > 0 {
		*s = (*s)[:len(*s)-1]
	}
}

func (s typeStack[T]) top() (T, bool) {
	if len(s) == 0 {
		var zero T
		return zero, false
	}
	return s[len(s)-1], true
}
