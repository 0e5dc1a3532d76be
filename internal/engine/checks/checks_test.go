package checks_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/javelin/internal/core/domain"
	"go.trai.ch/javelin/internal/engine/checks"
)

type fakeHierarchy map[string]checks.TypeInfo

func (h fakeHierarchy) Lookup(name string) (checks.TypeInfo, bool) {
	info, ok := h[name]
	return info, ok
}

func newState(decls ...*domain.Declaration) *checks.State {
	state := checks.NewState(fakeHierarchy{
		checks.JavaScriptObject: {Package: "com.google.gwt.core.client", Super: "java.lang.Object"},
		"java.lang.Object":      {Package: "java.lang"},
		"java.lang.String":      {Package: "java.lang", Super: "java.lang.Object", Final: true},
	})
	for _, d := range decls {
		state.Declare(d)
	}
	return state
}

func messages(ps []domain.Problem) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Message
	}
	return out
}

func overlay(name string, members ...any) *domain.TypeDecl {
	t := &domain.TypeDecl{
		Name:         name,
		InternalName: "com/example/" + name,
		Kind:         domain.KindClass,
		Modifiers:    domain.AccPublic,
		Super:        "com.google.gwt.core.client.JavaScriptObject",
		Line:         1,
	}
	for _, m := range members {
		switch v := m.(type) {
		case *domain.MethodDecl:
			t.Methods = append(t.Methods, v)
		case *domain.FieldDecl:
			t.Fields = append(t.Fields, v)
		case *domain.TypeDecl:
			t.Nested = append(t.Nested, v)
		}
	}
	return t
}

func TestEvents_Order(t *testing.T) {
	ann := domain.Annotation{TypeName: "Deprecated"}
	decl := &domain.Declaration{
		Package: "p",
		Types: []*domain.TypeDecl{{
			Name:         "A",
			InternalName: "p/A",
			Annotations:  []domain.Annotation{ann},
			Fields:       []*domain.FieldDecl{{Name: "f", Annotations: []domain.Annotation{ann}}},
			Methods:      []*domain.MethodDecl{{Name: "m"}},
			Nested:       []*domain.TypeDecl{{Name: "B", InternalName: "p/A$B"}},
		}},
		BinaryRefs: []domain.BinaryRef{{TypeName: "q.Lib", Line: 3}},
	}

	var kinds []checks.EventKind
	var outers []string
	for ev := range checks.Events(decl) {
		kinds = append(kinds, ev.Kind)
		if ev.Kind == checks.EnterType && ev.Outer != nil {
			outers = append(outers, ev.Outer.Name+">"+ev.Type.Name)
		}
	}

	assert.Equal(t, []checks.EventKind{
		checks.EnterType,
		checks.Annotation,
		checks.Field, checks.Annotation,
		checks.Method,
		checks.EnterType, checks.ExitType,
		checks.ExitType,
		checks.BinaryReference,
	}, kinds)
	assert.Equal(t, []string{"A>B"}, outers)
}

func TestEvents_StopsEarly(t *testing.T) {
	decl := &domain.Declaration{Types: []*domain.TypeDecl{{Name: "A"}, {Name: "B"}}}
	n := 0
	for range checks.Events(decl) {
		n++
		break
	}
	assert.Equal(t, 1, n)
}

func TestJSOChecker(t *testing.T) {
	decl := &domain.Declaration{
		Package: "com.example",
		Types: []*domain.TypeDecl{overlay("Element",
			&domain.MethodDecl{Name: "<init>", Constructor: true, Modifiers: domain.AccPublic, Line: 2,
				Params: []domain.ParamDecl{{Name: "x", Type: "int"}}},
			&domain.FieldDecl{Name: "count", Type: "int", Line: 3},
			&domain.FieldDecl{Name: "MAX", Type: "int", Modifiers: domain.AccStatic | domain.AccFinal, Line: 4},
			&domain.MethodDecl{Name: "size", Modifiers: domain.AccPublic, Line: 5, EmptyBody: true},
			&domain.MethodDecl{Name: "toString", Modifiers: domain.AccPublic | domain.AccFinal, Overrides: true, Line: 6},
			&domain.MethodDecl{Name: "of", Modifiers: domain.AccStatic, Line: 7},
			&domain.TypeDecl{
				Name:         "Inner",
				InternalName: "com/example/Element$Inner",
				Kind:         domain.KindClass,
				Super:        "Element",
				Line:         8,
			},
		)},
	}
	state := newState(decl)

	got := checks.JSOChecker{}.Check(checks.Events(decl), state)
	assert.Equal(t, []string{
		checks.ErrInstanceField,
		checks.ErrConstructorWithParameters,
		checks.ErrNonProtectedConstructor,
		checks.ErrNonEmptyConstructor,
		checks.ErrInstanceMethodNonFinal,
		checks.ErrOverriddenMethod,
		checks.ErrNonStaticNested,
	}, messages(got))
	assert.Equal(t, 3, got[0].Line)
	assert.Equal(t, 2, got[1].Line)
	assert.Equal(t, 8, got[len(got)-1].Line)
}

func TestJSOChecker_ValidOverlay(t *testing.T) {
	decl := &domain.Declaration{
		Package: "com.example",
		Types: []*domain.TypeDecl{overlay("Point",
			&domain.MethodDecl{Name: "<init>", Constructor: true, Modifiers: domain.AccProtected, EmptyBody: true},
			&domain.MethodDecl{Name: "x", Modifiers: domain.AccPublic | domain.AccFinal | domain.AccNative},
			&domain.MethodDecl{Name: "helper", Modifiers: domain.AccPrivate},
		)},
	}
	assert.Empty(t, checks.JSOChecker{}.Check(checks.Events(decl), newState(decl)))
}

func TestJSOChecker_NotAnOverlay(t *testing.T) {
	decl := &domain.Declaration{
		Package: "com.example",
		Types: []*domain.TypeDecl{{
			Name:         "Plain",
			InternalName: "com/example/Plain",
			Kind:         domain.KindClass,
			Super:        "String",
			Fields:       []*domain.FieldDecl{{Name: "f", Type: "int"}},
		}},
	}
	assert.Empty(t, checks.JSOChecker{}.Check(checks.Events(decl), newState(decl)))
}

func TestJSOChecker_InterfaceImplementedOnce(t *testing.T) {
	iface := &domain.Declaration{
		Package: "com.example",
		Types: []*domain.TypeDecl{{
			Name:         "HasName",
			InternalName: "com/example/HasName",
			Kind:         domain.KindInterface,
			Methods:      []*domain.MethodDecl{{Name: "getName"}},
		}},
	}
	first := &domain.Declaration{Package: "com.example", Types: []*domain.TypeDecl{overlay("First",
		&domain.MethodDecl{Name: "getName", Modifiers: domain.AccPublic | domain.AccFinal, Overrides: true},
	)}}
	first.Types[0].Interfaces = []string{"HasName"}
	second := &domain.Declaration{Package: "com.example", Types: []*domain.TypeDecl{overlay("Second")}}
	second.Types[0].Interfaces = []string{"com.example.HasName"}

	state := newState(iface, first, second)

	assert.Empty(t, checks.JSOChecker{}.Check(checks.Events(first), state),
		"implementing an interface method is not an override")
	impl, ok := state.JsoImplementor("com.example.HasName")
	require.True(t, ok)
	assert.Equal(t, "com.example.First", impl)

	got := checks.JSOChecker{}.Check(checks.Events(second), state)
	require.Len(t, got, 1)
	assert.Equal(t, checks.ErrAlreadyImplemented("com.example.HasName", "com.example.First", "com.example.Second"),
		got[0].Message)

	assert.Empty(t, checks.JSOChecker{}.Check(checks.Events(first), state), "re-checking the holder is fine")
}

func TestLongJsniChecker(t *testing.T) {
	unsafe := []domain.Annotation{{TypeName: "UnsafeNativeLong"}}
	decl := &domain.Declaration{
		Package: "p",
		Types: []*domain.TypeDecl{
			{
				Name:         "A",
				InternalName: "p/A",
				Methods: []*domain.MethodDecl{
					{Name: "bad", Modifiers: domain.AccNative, ReturnType: "long", Line: 2,
						Params: []domain.ParamDecl{{Name: "a", Type: "long[]"}, {Name: "b", Type: "int"}}},
					{Name: "allowed", Modifiers: domain.AccNative, ReturnType: "long", Annotations: unsafe},
					{Name: "javaOnly", ReturnType: "long"},
				},
			},
			{
				Name:         "B",
				InternalName: "p/B",
				Annotations:  unsafe,
				Nested: []*domain.TypeDecl{{
					Name:         "C",
					InternalName: "p/B$C",
					Methods: []*domain.MethodDecl{
						{Name: "inherited", Modifiers: domain.AccNative, ReturnType: "long"},
					},
				}},
			},
		},
	}

	got := checks.LongJsniChecker{}.Check(checks.Events(decl), newState())
	assert.Equal(t, []string{
		"Type 'long' may not be returned from a JSNI method",
		"Parameter 'a': type 'long[]' is not safe to access in JSNI code",
	}, messages(got))
	for _, p := range got {
		assert.Equal(t, domain.CategoryJsni, p.Category)
		assert.Equal(t, 2, p.Line)
	}
}

func TestBinaryRefChecker(t *testing.T) {
	decl := &domain.Declaration{
		BinaryRefs: []domain.BinaryRef{
			{TypeName: "lib.Helper", Line: 4},
			{TypeName: "lib.Marker", Line: 5, IsAnnotationType: true},
			{TypeName: "lib.Constant", Line: 6, InAnnotation: true},
		},
	}

	got := checks.BinaryRefChecker{}.Check(checks.Events(decl), newState())
	require.Len(t, got, 1)
	assert.Equal(t, 4, got[0].Line)
	assert.Contains(t, got[0].Message, "lib.Helper")
	assert.True(t, got[0].IsError())
}

func TestArtificialRescueChecker(t *testing.T) {
	rescue := func(values map[string]domain.AnnotationValue) domain.AnnotationValue {
		return domain.NestedValue(&domain.Annotation{TypeName: "Rescue", Values: values, Line: 2})
	}
	decl := &domain.Declaration{
		Package: "com.example",
		Types: []*domain.TypeDecl{{
			Name:         "Gen",
			InternalName: "com/example/Gen",
			Line:         1,
			Annotations: []domain.Annotation{{
				TypeName: "com.google.gwt.core.client.impl.ArtificialRescue",
				Values: map[string]domain.AnnotationValue{
					"value": domain.ArrayValue(
						rescue(map[string]domain.AnnotationValue{
							"className": domain.StringValue("com.example.Gen$Inner"),
							"methods":   domain.StringValue("run()"),
						}),
						rescue(map[string]domain.AnnotationValue{
							"className":    domain.StringValue("int[]"),
							"instantiable": domain.BoolValue(true),
						}),
						rescue(map[string]domain.AnnotationValue{
							"className": domain.StringValue("com.example.Missing"),
							"fields":    domain.StringValue("x"),
						}),
						rescue(map[string]domain.AnnotationValue{
							"className": domain.StringValue("java.lang.String"),
						}),
					),
				},
			}},
			Nested: []*domain.TypeDecl{{Name: "Inner", InternalName: "com/example/Gen$Inner"}},
		}},
	}

	got := checks.ArtificialRescueChecker{}.Check(checks.Events(decl), newState(decl))
	assert.Equal(t, []string{
		"Unable to find type 'com.example.Missing' named in @ArtificialRescue",
		"@ArtificialRescue of java.lang.String rescues no members",
	}, messages(got))
}

func TestRun(t *testing.T) {
	decl := &domain.Declaration{
		Package: "com.example",
		Types: []*domain.TypeDecl{overlay("Element",
			&domain.FieldDecl{Name: "count", Type: "int", Line: 3},
		)},
		BinaryRefs: []domain.BinaryRef{{TypeName: "lib.Helper", Line: 4}},
	}
	state := newState(decl)

	n := checks.Run(decl, checks.Default(), state)
	assert.Equal(t, 2, n)
	require.Len(t, decl.Problems, 2)
	assert.Equal(t, checks.ErrInstanceField, decl.Problems[0].Message)
	assert.Equal(t, domain.CategoryRestriction, decl.Problems[0].Category)
	assert.True(t, decl.HasErrors())
}

func TestState_Resolve(t *testing.T) {
	decl := &domain.Declaration{
		Package: "com.example",
		Types:   []*domain.TypeDecl{{Name: "Local", InternalName: "com/example/Local"}},
	}
	state := newState(decl)

	assert.Equal(t, "com.example.Local", state.Resolve("com.example", "Local"))
	assert.Equal(t, "java.lang.String", state.Resolve("com.example", "String"))
	assert.Equal(t, "Unknown", state.Resolve("com.example", "Unknown"))
	assert.True(t, state.IsJso(checks.JavaScriptObject))
	assert.False(t, state.IsJso("java.lang.String"))
	assert.True(t, state.Known("com.example.Local"))
}
