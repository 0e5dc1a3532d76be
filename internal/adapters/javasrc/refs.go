package javasrc

import (
	"slices"
	"strings"
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"
	"go.trai.ch/javelin/internal/core/domain"
)

// refSet accumulates type references in source order and deduplicates the name tables.
type refSet struct {
	all       []domain.TypeRef
	qualified map[string]struct{}
	simple    map[string]struct{}
}

func newRefSet() refSet {
	return refSet{
		qualified: make(map[string]struct{}),
		simple:    make(map[string]struct{}),
	}
}

func (r *refSet) add(ref domain.TypeRef) {
	r.all = append(r.all, ref)
	if ref.Qualified {
		r.qualified[ref.Name] = struct{}{}
	} else {
		r.simple[ref.Name] = struct{}{}
	}
}

func (r *refSet) fill(d *domain.Declaration) {
	d.TypeRefs = r.all
	d.QualifiedRefs = sortedKeys(r.qualified)
	d.SimpleRefs = sortedKeys(r.simple)

	api := make(map[string]struct{}, len(r.qualified)+len(r.simple))
	for k := range r.qualified {
		api[k] = struct{}{}
	}
	for k := range r.simple {
		api[k] = struct{}{}
	}
	d.APIRefs = sortedKeys(api)
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// collectRefs walks the whole tree and records every type name it meets. Names that only
// the compiler could resolve (on-demand imports, inherited member types) stay simple.
func (f *file) collectRefs(n *sitter.Node, inAnnotation bool) {
	switch n.Type() {
	case "package_declaration", "import_declaration", "line_comment", "block_comment":
		return
	case "type_identifier":
		f.addRef(n, f.text(n), inAnnotation, false)
		return
	case "scoped_type_identifier":
		f.addRef(n, stripTypeArgs(f.text(n)), inAnnotation, false)
		f.collectTypeArgs(n, inAnnotation)
		return
	case "marker_annotation", "annotation":
		if name := n.ChildByFieldName("name"); name != nil {
			f.addRef(name, f.text(name), true, true)
		}
		if args := n.ChildByFieldName("arguments"); args != nil {
			f.collectRefs(args, true)
		}
		return
	case "type_parameter":
		// The declared name is not a reference; its bounds are.
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if c := n.NamedChild(i); c.Type() == "type_bound" {
				f.collectRefs(c, inAnnotation)
			}
		}
		return
	case "method_invocation", "field_access":
		// Foo.bar() and Foo.BAR name a type when Foo looks like a class name.
		if obj := n.ChildByFieldName("object"); obj != nil && obj.Type() == "identifier" && looksLikeType(f.text(obj)) {
			f.addRef(obj, f.text(obj), inAnnotation, false)
		}
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		f.collectRefs(n.NamedChild(i), inAnnotation)
	}
}

func (f *file) collectTypeArgs(n *sitter.Node, inAnnotation bool) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() == "type_arguments" {
			f.collectRefs(c, inAnnotation)
			continue
		}
		f.collectTypeArgs(c, inAnnotation)
	}
}

func (f *file) addRef(n *sitter.Node, name string, inAnnotation, annotationType bool) {
	if name == "" || name == "var" || f.typeVars[name] {
		return
	}
	q, ok := f.qualify(name)
	f.refs.add(domain.TypeRef{
		Name:           q,
		Line:           line(n),
		Qualified:      ok,
		InAnnotation:   inAnnotation,
		AnnotationType: annotationType,
	})
}

// qualify resolves the first segment of a dotted name through the types declared in
// this file and the single-type imports. A lower-case first segment is taken to be a
// package. The second result reports whether the name is fully qualified.
func (f *file) qualify(name string) (string, bool) {
	first, rest := name, ""
	if i := strings.IndexByte(name, '.'); i >= 0 {
		first, rest = name[:i], name[i:]
	}
	if q, ok := f.declared[first]; ok {
		return q + rest, true
	}
	if q, ok := f.imports[first]; ok {
		return q + rest, true
	}
	if rest != "" && first != "" && unicode.IsLower(rune(first[0])) {
		return name, true
	}
	return name, false
}

// stripTypeArgs removes every <...> group from a type as written.
func stripTypeArgs(s string) string {
	if !strings.ContainsRune(s, '<') {
		return strings.TrimSpace(s)
	}
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '<':
			depth++
		case r == '>':
			depth--
		case depth == 0 && !unicode.IsSpace(r):
			b.WriteRune(r)
		}
	}
	return b.String()
}

// looksLikeType accepts CamelCase identifiers and rejects CONSTANT_CASE ones.
func looksLikeType(s string) bool {
	if s == "" || !unicode.IsUpper(rune(s[0])) {
		return false
	}
	return strings.IndexFunc(s, unicode.IsLower) >= 0
}
