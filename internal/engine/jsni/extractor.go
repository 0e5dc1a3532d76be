// Package jsni extracts the JavaScript bodies of native methods from Java source.
package jsni

import (
	"bytes"
	"strings"

	"go.trai.ch/javelin/internal/core/domain"
)

// Block delimiters around a native method body.
const (
	Open  = "/*-{"
	Close = "}-*/"
)

// Diagnostics reported for malformed blocks.
const (
	MsgMissingBody  = "Native methods require a JavaScript implementation enclosed with /*-{ and }-*/"
	MsgUnterminated = "Unterminated JSNI block: missing }-*/"
	MsgUnbalanced   = "Malformed JSNI block: unbalanced braces"
)

// Extract returns the JSNI body of every native method declared in decl, in
// declaration order. Malformed blocks are reported as problems on decl and produce no
// method.
func Extract(decl *domain.Declaration) []domain.JsniMethod {
	var out []domain.JsniMethod
	decl.Walk(func(t *domain.TypeDecl) bool {
		for _, m := range t.Methods {
			if !m.IsNative() {
				continue
			}
			jm, p, ok := extractMethod(decl.Source, t, m)
			if !ok {
				decl.AddProblem(p)
				continue
			}
			out = append(out, jm)
		}
		return true
	})
	return out
}

func extractMethod(src []byte, t *domain.TypeDecl, m *domain.MethodDecl) (domain.JsniMethod, domain.Problem, bool) {
	start, end := m.ParamsEnd, m.End
	if start <= 0 || end > len(src) || start > end {
		return domain.JsniMethod{}, domain.NewError(domain.CategoryJsni, m.Line, MsgMissingBody), false
	}
	tail := src[start:end]

	open := bytes.Index(tail, []byte(Open))
	if open < 0 {
		return domain.JsniMethod{}, domain.NewError(domain.CategoryJsni, m.Line, MsgMissingBody), false
	}
	bodyStart := start + open + len(Open)

	closeAt := bytes.LastIndex(tail, []byte(Close))
	if closeAt < 0 || start+closeAt < bodyStart {
		return domain.JsniMethod{}, domain.NewError(domain.CategoryJsni, lineAt(src, bodyStart), MsgUnterminated), false
	}
	bodyEnd := start + closeAt

	body := src[bodyStart:bodyEnd]
	if !balanced(body) {
		return domain.JsniMethod{}, domain.NewError(domain.CategoryJsni, lineAt(src, bodyStart), MsgUnbalanced), false
	}

	params := make([]string, len(m.Params))
	for i, p := range m.Params {
		params[i] = p.Name
	}

	return domain.JsniMethod{
		Name:     MethodName(t.InternalName, m.Name),
		Params:   params,
		Line:     lineAt(src, bodyStart),
		Start:    bodyStart,
		End:      bodyEnd,
		Function: "function (" + strings.Join(params, ", ") + ") {" + string(body) + "}",
	}, domain.Problem{}, true
}

// MethodName returns the JSNI name of a method, e.g. pkg.Outer$Inner::method.
func MethodName(internalName, method string) string {
	return strings.ReplaceAll(internalName, "/", ".") + "::" + method
}

// balanced reports whether the braces in a JavaScript fragment match. String
// literals and comments are skipped.
func balanced(js []byte) bool {
	depth := 0
	for i := 0; i < len(js); i++ {
		switch c := js[i]; c {
		case '"', '\'', '`':
			i = skipString(js, i)
		case '/':
			if i+1 < len(js) && js[i+1] == '/' {
				for i < len(js) && js[i] != '\n' {
					i++
				}
			} else if i+1 < len(js) && js[i+1] == '*' {
				end := bytes.Index(js[i+2:], []byte("*/"))
				if end < 0 {
					return false
				}
				i += end + 3
			}
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

// skipString returns the index of the quote closing the literal opened at i, or the
// last index when the literal is unterminated.
func skipString(js []byte, i int) int {
	quote := js[i]
	for i++; i < len(js); i++ {
		switch js[i] {
		case '\\':
			i++
		case quote:
			return i
		}
	}
	return len(js) - 1
}

func lineAt(src []byte, offset int) int {
	return bytes.Count(src[:offset], []byte{'\n'}) + 1
}
