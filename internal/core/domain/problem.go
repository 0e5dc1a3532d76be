package domain

import (
	"strconv"
)

// Severity classifies a Problem.
type Severity uint8

const (
	// SeverityError blocks a unit from reaching the checked state.
	SeverityError Severity = iota
	// SeverityWarning is advisory.
	SeverityWarning
	// SeverityInfo carries notes attached by the compiler.
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "info"
	}
}

// Problem categories.
const (
	CategoryCompile     = "compile"
	CategoryRestriction = "restriction"
	CategoryJsni        = "jsni"
	CategoryInternal    = "internal"
)

// Problem is a diagnostic attached to a compilation unit.
type Problem struct {
	Line     int      `json:"line,omitempty"`
	Column   int      `json:"column,omitempty"`
	Start    int      `json:"start,omitempty"`
	End      int      `json:"end,omitempty"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	Category string   `json:"category,omitempty"`
}

// IsError reports whether the problem blocks the unit.
func (p Problem) IsError() bool {
	return p.Severity == SeverityError
}

// String formats the problem as "Line <n>: <message>" when the line is known.
func (p Problem) String() string {
	if p.Line > 0 {
		return "Line " + strconv.Itoa(p.Line) + ": " + p.Message
	}
	return p.Message
}

// NewError builds an error-severity problem.
func NewError(category string, line int, msg string) Problem {
	return Problem{Line: line, Message: msg, Severity: SeverityError, Category: category}
}

// NewWarning builds a warning-severity problem.
func NewWarning(category string, line int, msg string) Problem {
	return Problem{Line: line, Message: msg, Severity: SeverityWarning, Category: category}
}

// HasErrors reports whether any problem in ps is an error.
func HasErrors(ps []Problem) bool {
	for _, p := range ps {
		if p.IsError() {
			return true
		}
	}
	return false
}
