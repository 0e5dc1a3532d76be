package checks

import (
	"iter"
	"slices"

	"go.trai.ch/javelin/internal/core/domain"
)

// Overlay type diagnostics.
const (
	ErrConstructorWithParameters = "Constructors must not have parameters in subclasses of JavaScriptObject"
	ErrNonProtectedConstructor   = "Constructors must be 'protected' in subclasses of JavaScriptObject"
	ErrNonEmptyConstructor       = "Constructors must be totally empty in subclasses of JavaScriptObject"
	ErrInstanceField             = "Instance fields cannot be used in subclasses of JavaScriptObject"
	ErrInstanceMethodNonFinal    = "Instance methods must be 'final' in non-final subclasses of JavaScriptObject"
	ErrOverriddenMethod          = "Methods cannot be overridden in JavaScriptObject subclasses"
	ErrNonStaticNested           = "Nested classes must be 'static' if they extend JavaScriptObject"
)

// ErrAlreadyImplemented formats the diagnostic for an interface implemented by two
// overlay types.
func ErrAlreadyImplemented(intf, first, second string) string {
	return "Only one JavaScriptObject type may implement the methods of an interface that declared methods. " +
		"The interface (" + intf + ") is implemented by both (" + first + ") and (" + second + ")"
}

// JSOChecker enforces the overlay type rules on subclasses of JavaScriptObject.
type JSOChecker struct{}

type jsoFrame struct {
	jso        bool
	final      bool
	ifaceNames []string
}

// Name implements Checker.
func (JSOChecker) Name() string { return "jso" }

// Check implements Checker.
func (JSOChecker) Check(events iter.Seq[Event], state *State) []domain.Problem {
	var problems []domain.Problem
	errorAt := func(line int, msg string) {
		problems = append(problems, domain.NewError(domain.CategoryRestriction, line, msg))
	}

	var stack typeStack[jsoFrame]
	for ev := range events {
		switch ev.Kind {
		case EnterType:
			stack.push(enterJso(ev, state, errorAt))
		case ExitType:
			stack.pop()
		case Field:
			if f, ok := stack.top(); ok && f.jso && !ev.Field.Modifiers.Has(domain.AccStatic) {
				errorAt(ev.Field.Line, ErrInstanceField)
			}
		case Method:
			if f, ok := stack.top(); ok && f.jso {
				checkJsoMethod(f, ev.Method, errorAt)
			}
		}
	}
	return problems
}

func enterJso(ev Event, state *State, errorAt func(int, string)) jsoFrame {
	t := ev.Type
	pkg := ev.Decl.Package
	frame := jsoFrame{final: t.Modifiers.Has(domain.AccFinal)}
	if t.Kind != domain.KindClass || t.Super == "" {
		return frame
	}
	if !state.IsJso(state.Resolve(pkg, t.Super)) {
		return frame
	}
	frame.jso = true

	if ev.Outer != nil && !t.Local && !t.IsStatic() {
		errorAt(t.Line, ErrNonStaticNested)
	}

	for _, name := range t.Interfaces {
		intf := state.Resolve(pkg, name)
		info, ok := state.Lookup(intf)
		if !ok {
			continue
		}
		frame.ifaceNames = append(frame.ifaceNames, info.Methods...)
		if len(info.Methods) == 0 || t.Local {
			continue
		}
		if prev, ok := state.claimInterface(intf, t.SourceName()); !ok {
			errorAt(t.Line, ErrAlreadyImplemented(intf, prev, t.SourceName()))
		}
	}
	return frame
}

func checkJsoMethod(f jsoFrame, m *domain.MethodDecl, errorAt func(int, string)) {
	if m.Constructor {
		if len(m.Params) > 0 {
			errorAt(m.Line, ErrConstructorWithParameters)
		}
		if !m.Modifiers.Has(domain.AccProtected) {
			errorAt(m.Line, ErrNonProtectedConstructor)
		}
		if !m.EmptyBody {
			errorAt(m.Line, ErrNonEmptyConstructor)
		}
		return
	}

	static := m.Modifiers.Has(domain.AccStatic)
	overridable := m.Modifiers&(domain.AccFinal|domain.AccPrivate|domain.AccStatic) == 0
	if overridable && !f.final {
		errorAt(m.Line, ErrInstanceMethodNonFinal)
	}
	// Implementing an interface method is allowed; overriding a superclass one is not.
	if !static && m.Overrides && !slices.Contains(f.ifaceNames, m.Name) {
		errorAt(m.Line, ErrOverriddenMethod)
	}
}
