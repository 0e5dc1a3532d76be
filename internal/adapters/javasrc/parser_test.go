package javasrc_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/javelin/internal/adapters/javasrc"
	"go.trai.ch/javelin/internal/core/domain"
)

const widgetSource = `package com.example.ui;

import com.google.gwt.core.client.JavaScriptObject;
import java.util.List;

@Deprecated
public class Widget<T> extends Base implements Comparable<Widget<T>> {
    private static final int SIZE = 3;
    private List<String> names;

    public Widget(String id, int... sizes) {
        super(id);
    }

    @Override
    public int compareTo(Widget<T> other) {
        return 0;
    }

    public native long nativeSize(JavaScriptObject handle) /*-{
        return handle.size;
    }-*/;

    public static class Inner {
        void run() {
            Runnable r = new Runnable() {
                public void run() {}
            };
        }
    }

    interface Listener {
        void changed(T value);
    }
}
`

func parse(t *testing.T, src string) *domain.Declaration {
	t.Helper()
	p := javasrc.NewParser()
	decl, err := p.Parse(context.Background(), &domain.SourceInput{
		Unit:   domain.UnitSource{TypeName: "test"},
		Source: []byte(src),
	})
	require.NoError(t, err)
	return decl
}

func findType(decl *domain.Declaration, internalName string) *domain.TypeDecl {
	var found *domain.TypeDecl
	decl.Walk(func(td *domain.TypeDecl) bool {
		if td.InternalName == internalName {
			found = td
		}
		return found == nil
	})
	return found
}

func findMethod(td *domain.TypeDecl, name string) *domain.MethodDecl {
	for _, m := range td.Methods {
		if m.Name == name {
			return m
		}
	}
	return nil
}

func TestParse_TypeTree(t *testing.T) {
	t.Parallel()

	decl := parse(t, widgetSource)

	assert.Equal(t, "com.example.ui", decl.Package)
	require.Len(t, decl.Types, 1)

	widget := decl.Types[0]
	assert.Equal(t, "Widget", widget.Name)
	assert.Equal(t, "com/example/ui/Widget", widget.InternalName)
	assert.Equal(t, domain.KindClass, widget.Kind)
	assert.True(t, widget.Modifiers.Has(domain.AccPublic))
	assert.Equal(t, []string{"T"}, widget.TypeParams)
	assert.Equal(t, "Base", widget.Super)
	assert.Equal(t, []string{"Comparable"}, widget.Interfaces)
	require.NotNil(t, domain.FindAnnotation(widget.Annotations, "java.lang.Deprecated"))

	inner := findType(decl, "com/example/ui/Widget$Inner")
	require.NotNil(t, inner)
	assert.True(t, inner.IsStatic())
	assert.False(t, inner.Local)

	anon := findType(decl, "com/example/ui/Widget$Inner$1")
	require.NotNil(t, anon)
	assert.True(t, anon.Local)
	assert.Equal(t, "Runnable", anon.Super)

	listener := findType(decl, "com/example/ui/Widget$Listener")
	require.NotNil(t, listener)
	assert.Equal(t, domain.KindInterface, listener.Kind)
	changed := findMethod(listener, "changed")
	require.NotNil(t, changed)
	assert.True(t, changed.Modifiers.Has(domain.AccAbstract|domain.AccPublic))
}

func TestParse_Members(t *testing.T) {
	t.Parallel()

	decl := parse(t, widgetSource)
	widget := decl.Types[0]

	require.Len(t, widget.Fields, 2)
	assert.Equal(t, "SIZE", widget.Fields[0].Name)
	assert.Equal(t, "int", widget.Fields[0].Type)
	assert.True(t, widget.Fields[0].Modifiers.Has(domain.AccPrivate|domain.AccStatic|domain.AccFinal))
	assert.Equal(t, "List<String>", widget.Fields[1].Type)

	var ctor *domain.MethodDecl
	for _, m := range widget.Methods {
		if m.Constructor {
			ctor = m
		}
	}
	require.NotNil(t, ctor)
	require.Len(t, ctor.Params, 2)
	assert.Equal(t, domain.ParamDecl{Name: "id", Type: "String"}, ctor.Params[0])
	assert.Equal(t, domain.ParamDecl{Name: "sizes", Type: "int", Varargs: true}, ctor.Params[1])
	assert.True(t, ctor.EmptyBody, "an explicit super call does not count as a statement")

	cmp := findMethod(widget, "compareTo")
	require.NotNil(t, cmp)
	assert.True(t, cmp.Overrides)
	assert.Equal(t, "int", cmp.ReturnType)
	assert.False(t, cmp.EmptyBody)

	names, ok := decl.MethodArgs.Lookup("com/example/ui/Widget", "<init>", []string{"String", "int[]"})
	require.True(t, ok)
	assert.Equal(t, []string{"id", "sizes"}, names)
}

func TestParse_NativeMethodOffsets(t *testing.T) {
	t.Parallel()

	decl := parse(t, widgetSource)
	m := findMethod(decl.Types[0], "nativeSize")
	require.NotNil(t, m)

	assert.True(t, m.IsNative())
	assert.Equal(t, "long", m.ReturnType)
	assert.Equal(t, byte(')'), widgetSource[m.ParamsEnd-1])
	tail := widgetSource[m.ParamsEnd:m.End]
	assert.Contains(t, tail, "/*-{")
	assert.Contains(t, tail, "}-*/")
}

func TestParse_References(t *testing.T) {
	t.Parallel()

	decl := parse(t, widgetSource)

	assert.Contains(t, decl.QualifiedRefs, "com.google.gwt.core.client.JavaScriptObject")
	assert.Contains(t, decl.QualifiedRefs, "java.util.List")
	assert.Contains(t, decl.QualifiedRefs, "com.example.ui.Widget")
	assert.Contains(t, decl.SimpleRefs, "Base")
	assert.Contains(t, decl.SimpleRefs, "String")
	assert.NotContains(t, decl.SimpleRefs, "T", "type variables are not references")
	assert.Contains(t, decl.APIRefs, "Base")

	var deprecated *domain.TypeRef
	for i := range decl.TypeRefs {
		if decl.TypeRefs[i].Name == "Deprecated" {
			deprecated = &decl.TypeRefs[i]
		}
	}
	require.NotNil(t, deprecated)
	assert.True(t, deprecated.AnnotationType)
	assert.True(t, deprecated.InAnnotation)
	assert.Equal(t, 6, deprecated.Line)
}

func TestParse_AnnotationValues(t *testing.T) {
	t.Parallel()

	src := `package p;

import java.lang.annotation.RetentionPolicy;

@Config(name = "main", size = 0x10, enabled = true, policy = RetentionPolicy.RUNTIME,
        type = String.class, tags = {"a", "b"}, nested = @Tag("x"))
class A {}
`
	decl := parse(t, src)
	require.Len(t, decl.Types, 1)
	ann := domain.FindAnnotation(decl.Types[0].Annotations, "p.Config")
	require.NotNil(t, ann)

	v, ok := ann.Value("name")
	require.True(t, ok)
	assert.Equal(t, domain.StringValue("main"), v)

	v, _ = ann.Value("size")
	assert.Equal(t, domain.IntValue(16), v)

	v, _ = ann.Value("enabled")
	assert.Equal(t, domain.BoolValue(true), v)

	v, _ = ann.Value("policy")
	assert.Equal(t, domain.EnumValue("java.lang.annotation.RetentionPolicy", "RUNTIME"), v)

	v, _ = ann.Value("type")
	assert.Equal(t, domain.ClassValue("String"), v)

	v, _ = ann.Value("tags")
	tags, ok := v.Strings()
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, tags)

	v, _ = ann.Value("nested")
	require.Equal(t, domain.ValueAnnotation, v.Kind)
	inner, ok := v.Nested.Value("value")
	require.True(t, ok)
	assert.Equal(t, "x", inner.Str)
}

func TestParse_EnumAndLocalClasses(t *testing.T) {
	t.Parallel()

	src := `package p;

enum Color {
    RED,
    GREEN {
        @Override public String toString() { return "g"; }
    };

    void paint() {
        class Brush {}
        new Object() {};
    }
}
`
	decl := parse(t, src)
	color := findType(decl, "p/Color")
	require.NotNil(t, color)
	assert.Equal(t, domain.KindEnum, color.Kind)

	var consts []string
	for _, fd := range color.Fields {
		if fd.EnumConstant {
			consts = append(consts, fd.Name)
		}
	}
	assert.Equal(t, []string{"RED", "GREEN"}, consts)

	green := findType(decl, "p/Color$1")
	require.NotNil(t, green)
	assert.True(t, green.Local)
	assert.Equal(t, "p.Color", green.Super)

	brush := findType(decl, "p/Color$1Brush")
	require.NotNil(t, brush)
	assert.True(t, brush.Local)
	assert.NotNil(t, findType(decl, "p/Color$2"))

	for _, td := range []*domain.TypeDecl{green, brush} {
		assert.True(t, domain.IsLocalName(td.InternalName), td.InternalName)
	}
}

func TestParse_DefaultPackageAndStaticImports(t *testing.T) {
	t.Parallel()

	src := strings.Join([]string{
		"import static org.junit.Assert.assertTrue;",
		"import java.util.*;",
		"class Main { Map<String, Integer> m; }",
	}, "\n")

	decl := parse(t, src)
	require.Len(t, decl.Types, 1)
	assert.Equal(t, "Main", decl.Types[0].InternalName)
	assert.Empty(t, decl.Package)
	assert.Contains(t, decl.QualifiedRefs, "org.junit.Assert")
	assert.Contains(t, decl.SimpleRefs, "Map")
	assert.Contains(t, decl.SimpleRefs, "Integer")
}
