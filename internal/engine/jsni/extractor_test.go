package jsni_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/javelin/internal/core/domain"
	"go.trai.ch/javelin/internal/engine/jsni"
)

// nativeMethod locates a native method declaration by name in src.
func nativeMethod(t *testing.T, src, name string, params ...string) *domain.MethodDecl {
	t.Helper()
	at := strings.Index(src, " "+name+"(")
	require.GreaterOrEqual(t, at, 0, "method %s not found", name)
	paramsEnd := at + strings.Index(src[at:], ")") + 1
	end := paramsEnd + strings.Index(src[paramsEnd:], ";") + 1
	if closeAt := strings.Index(src[paramsEnd:], jsni.Close+";"); closeAt >= 0 {
		end = paramsEnd + closeAt + len(jsni.Close) + 1
	}

	m := &domain.MethodDecl{
		Name:      name,
		Modifiers: domain.AccPublic | domain.AccNative,
		Line:      strings.Count(src[:at], "\n") + 1,
		ParamsEnd: paramsEnd,
		End:       end,
	}
	for _, p := range params {
		m.Params = append(m.Params, domain.ParamDecl{Name: p, Type: "int"})
	}
	return m
}

func declFor(src string, methods ...*domain.MethodDecl) *domain.Declaration {
	return &domain.Declaration{
		Package: "com.example",
		Source:  []byte(src),
		Types: []*domain.TypeDecl{{
			Name:         "Outer",
			InternalName: "com/example/Outer",
			Nested: []*domain.TypeDecl{{
				Name:         "Inner",
				InternalName: "com/example/Outer$Inner",
				Methods:      methods,
			}},
		}},
	}
}

func TestExtract(t *testing.T) {
	src := `package com.example;
class Outer {
  static class Inner {
    public native int add(int a, int b) /*-{
      var o = { sum: a + b };
      return o.sum; // }
    }-*/;
  }
}
`
	m := nativeMethod(t, src, "add", "a", "b")
	decl := declFor(src, m, &domain.MethodDecl{Name: "plain", Modifiers: domain.AccPublic})

	got := jsni.Extract(decl)
	require.Len(t, got, 1)
	assert.Empty(t, decl.Problems)

	jm := got[0]
	assert.Equal(t, "com.example.Outer$Inner::add", jm.Name)
	assert.Equal(t, []string{"a", "b"}, jm.Params)
	assert.Equal(t, 4, jm.Line)

	body := src[jm.Start:jm.End]
	assert.Contains(t, body, "return o.sum;")
	assert.NotContains(t, body, jsni.Open)
	assert.NotContains(t, body, jsni.Close)
	assert.Equal(t, "function (a, b) {"+body+"}", jm.Function)
}

func TestExtract_Malformed(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "missing body",
			src:  "class Outer { public native void f(); }",
			want: jsni.MsgMissingBody,
		},
		{
			name: "unterminated",
			src:  "class Outer { public native void f() /*-{ return; */; }",
			want: jsni.MsgUnterminated,
		},
		{
			name: "unbalanced braces",
			src:  "class Outer { public native void f() /*-{ if (x) { return; }-*/; }",
			want: jsni.MsgUnbalanced,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decl := declFor(tt.src, nativeMethod(t, tt.src, "f"))

			got := jsni.Extract(decl)
			assert.Empty(t, got)
			require.Len(t, decl.Problems, 1)
			assert.Equal(t, tt.want, decl.Problems[0].Message)
			assert.Equal(t, domain.CategoryJsni, decl.Problems[0].Category)
			assert.True(t, decl.HasErrors())
		})
	}
}

func TestExtract_BracesInStrings(t *testing.T) {
	src := `class Outer { public native String f() /*-{ return "}" + '{' + "\"}"; }-*/; }`
	decl := declFor(src, nativeMethod(t, src, "f"))

	got := jsni.Extract(decl)
	require.Len(t, got, 1)
	assert.Empty(t, decl.Problems)
	assert.Equal(t, "function () {"+src[got[0].Start:got[0].End]+"}", got[0].Function)
}

func TestMethodName(t *testing.T) {
	assert.Equal(t, "a.b.C$D::run", jsni.MethodName("a/b/C$D", "run"))
	assert.Equal(t, "Top::run", jsni.MethodName("Top", "run"))
}
