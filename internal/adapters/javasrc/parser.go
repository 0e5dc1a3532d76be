// Package javasrc implements the Java source front end on top of tree-sitter.
//
// It recovers everything the compilation engine needs from source that bytecode does not
// carry: the declaration tree with annotations and parameter names, byte offsets for
// native method bodies, and the type names a unit refers to.
package javasrc

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
	"go.trai.ch/javelin/internal/core/domain"
	"go.trai.ch/zerr"
)

// Parser implements ports.SourceParser. A tree-sitter parser is not safe for concurrent
// use, so each call builds its own.
type Parser struct{}

// NewParser creates a new source parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse builds the declaration of one source file. Syntax errors are left to the
// compiler; the returned declaration covers whatever tree-sitter could recover.
func (p *Parser) Parse(ctx context.Context, input *domain.SourceInput) (*domain.Declaration, error) {
	ts := sitter.NewParser()
	ts.SetLanguage(java.GetLanguage())

	tree, err := ts.ParseCtx(ctx, nil, input.Source)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrSourceParseFailed.Error()), "unit", input.Unit.TypeName)
	}
	defer tree.Close()

	f := newFile(input.Source, tree.RootNode())
	return f.declaration(), nil
}

// file holds the per-source state shared by the declaration and reference passes.
type file struct {
	src  []byte
	root *sitter.Node
	pkg  string

	// imports maps simple names to single-type imports.
	imports map[string]string
	// declared maps simple names of member types in this file to qualified names.
	declared map[string]string
	// typeVars holds every type variable name declared in the file.
	typeVars map[string]bool

	decl *domain.Declaration
	refs refSet

	// anon and locals number anonymous and local classes per enclosing type.
	anon   map[*domain.TypeDecl]int
	locals map[string]int
}

func newFile(src []byte, root *sitter.Node) *file {
	return &file{
		src:      src,
		root:     root,
		imports:  make(map[string]string),
		declared: make(map[string]string),
		typeVars: make(map[string]bool),
		anon:     make(map[*domain.TypeDecl]int),
		locals:   make(map[string]int),
		decl: &domain.Declaration{
			Source:     src,
			MethodArgs: make(domain.MethodArgNames),
		},
		refs: newRefSet(),
	}
}

func (f *file) declaration() *domain.Declaration {
	f.header()
	f.declareTypes(f.root, "")
	f.collectTypeVars(f.root)

	for i := 0; i < int(f.root.NamedChildCount()); i++ {
		n := f.root.NamedChild(i)
		if isTypeDeclaration(n.Type()) {
			f.decl.Types = append(f.decl.Types, f.typeDecl(n, nil, false, false))
		}
	}

	f.collectRefs(f.root, false)
	f.refs.fill(f.decl)
	return f.decl
}

// header reads the package declaration and the imports.
func (f *file) header() {
	for i := 0; i < int(f.root.NamedChildCount()); i++ {
		n := f.root.NamedChild(i)
		switch n.Type() {
		case "package_declaration":
			if name := firstNamedOfType(n, "scoped_identifier", "identifier"); name != nil {
				f.pkg = f.text(name)
				f.decl.Package = f.pkg
			}
			for j := 0; j < int(n.NamedChildCount()); j++ {
				if c := n.NamedChild(j); c.Type() == "marker_annotation" || c.Type() == "annotation" {
					f.decl.PackageAnnotations = append(f.decl.PackageAnnotations, f.annotation(c))
				}
			}
		case "import_declaration":
			f.importDecl(n)
		}
	}
}

func (f *file) importDecl(n *sitter.Node) {
	name := firstNamedOfType(n, "scoped_identifier", "identifier")
	if name == nil {
		return
	}
	path := f.text(name)
	static := hasChildOfType(n, "static")
	onDemand := hasChildOfType(n, "asterisk")

	switch {
	case static && !onDemand:
		// import static a.b.C.member refers to a.b.C.
		if i := strings.LastIndexByte(path, '.'); i > 0 {
			f.refs.add(domain.TypeRef{Name: path[:i], Line: line(n), Qualified: true})
		}
	case static:
		f.refs.add(domain.TypeRef{Name: path, Line: line(n), Qualified: true})
	case !onDemand:
		f.imports[domain.SimpleName(path)] = path
		f.refs.add(domain.TypeRef{Name: path, Line: line(n), Qualified: true})
	}
}

// declareTypes records the qualified names of member types so references to them can be
// resolved without the compiler. Local classes are not visible outside their block.
func (f *file) declareTypes(n *sitter.Node, outer string) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch {
		case isTypeDeclaration(c.Type()):
			name := c.ChildByFieldName("name")
			if name == nil {
				continue
			}
			q := f.text(name)
			switch {
			case outer != "":
				q = outer + "." + q
			case f.pkg != "":
				q = f.pkg + "." + q
			}
			if _, ok := f.declared[f.text(name)]; !ok {
				f.declared[f.text(name)] = q
			}
			if body := c.ChildByFieldName("body"); body != nil {
				f.declareTypes(body, q)
			}
		case c.Type() == "enum_body_declarations":
			f.declareTypes(c, outer)
		}
	}
}

func (f *file) collectTypeVars(n *sitter.Node) {
	if n.Type() == "type_parameter" {
		if id := firstNamedOfType(n, "type_identifier", "identifier"); id != nil {
			f.typeVars[f.text(id)] = true
		}
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		f.collectTypeVars(n.NamedChild(i))
	}
}

func (f *file) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return string(f.src[n.StartByte():n.EndByte()])
}

func line(n *sitter.Node) int {
	return int(n.StartPoint().Row) + 1
}

func isTypeDeclaration(t string) bool {
	switch t {
	case "class_declaration", "interface_declaration", "enum_declaration",
		"annotation_type_declaration", "record_declaration":
		return true
	}
	return false
}

func firstNamedOfType(n *sitter.Node, types ...string) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		for _, t := range types {
			if c.Type() == t {
				return c
			}
		}
	}
	return nil
}

func hasChildOfType(n *sitter.Node, t string) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == t {
			return true
		}
	}
	return false
}

func childOfType(n *sitter.Node, t string) *sitter.Node {
	for i := 0; i < int(n.ChildCount()); i++ {
		if c := n.Child(i); c.Type() == t {
			return c
		}
	}
	return nil
}
