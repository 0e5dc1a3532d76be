package javasrc

import (
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"go.trai.ch/javelin/internal/core/domain"
)

func (f *file) annotation(n *sitter.Node) domain.Annotation {
	a := domain.Annotation{Line: line(n)}
	if name := n.ChildByFieldName("name"); name != nil {
		a.TypeName, _ = f.qualify(f.text(name))
	}
	args := n.ChildByFieldName("arguments")
	if args == nil {
		return a
	}
	a.Values = make(map[string]domain.AnnotationValue)
	for i := 0; i < int(args.NamedChildCount()); i++ {
		c := args.NamedChild(i)
		switch c.Type() {
		case "line_comment", "block_comment":
		case "element_value_pair":
			key := f.text(c.ChildByFieldName("key"))
			a.Values[key] = f.value(c.ChildByFieldName("value"))
		default:
			a.Values["value"] = f.value(c)
		}
	}
	return a
}

// value decodes a constant annotation member. Expressions the front end cannot fold are
// kept as their source text.
func (f *file) value(n *sitter.Node) domain.AnnotationValue {
	if n == nil {
		return domain.StringValue("")
	}
	text := f.text(n)
	switch n.Type() {
	case "string_literal":
		if s, err := strconv.Unquote(text); err == nil {
			return domain.StringValue(s)
		}
		return domain.StringValue(strings.Trim(text, `"`))
	case "character_literal":
		return domain.StringValue(strings.Trim(text, "'"))
	case "decimal_integer_literal", "hex_integer_literal", "octal_integer_literal", "binary_integer_literal":
		if i, ok := parseInt(text); ok {
			return domain.IntValue(i)
		}
	case "unary_expression":
		if i, ok := parseInt(strings.ReplaceAll(text, " ", "")); ok {
			return domain.IntValue(i)
		}
	case "true":
		return domain.BoolValue(true)
	case "false":
		return domain.BoolValue(false)
	case "class_literal":
		name, _ := f.qualify(stripTypeArgs(strings.TrimSuffix(text, ".class")))
		return domain.ClassValue(strings.TrimSpace(name))
	case "field_access":
		typ, _ := f.qualify(f.text(n.ChildByFieldName("object")))
		return domain.EnumValue(typ, f.text(n.ChildByFieldName("field")))
	case "identifier":
		return domain.EnumValue("", text)
	case "marker_annotation", "annotation":
		nested := f.annotation(n)
		return domain.NestedValue(&nested)
	case "element_value_array_initializer":
		var elems []domain.AnnotationValue
		for i := 0; i < int(n.NamedChildCount()); i++ {
			c := n.NamedChild(i)
			if c.Type() == "line_comment" || c.Type() == "block_comment" {
				continue
			}
			elems = append(elems, f.value(c))
		}
		return domain.ArrayValue(elems...)
	case "parenthesized_expression":
		if n.NamedChildCount() > 0 {
			return f.value(n.NamedChild(0))
		}
	}
	return domain.StringValue(text)
}

func parseInt(text string) (int64, bool) {
	s := strings.ReplaceAll(text, "_", "")
	s = strings.TrimRight(s, "lL")
	if len(s) > 1 && s[0] == '0' && s[1] >= '0' && s[1] <= '9' {
		s = "0o" + s[1:]
	}
	i, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, false
	}
	return i, true
}
