package javasrc

import (
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"go.trai.ch/javelin/internal/core/domain"
)

var modifierFlags = map[string]domain.AccessFlags{
	"public":       domain.AccPublic,
	"private":      domain.AccPrivate,
	"protected":    domain.AccProtected,
	"static":       domain.AccStatic,
	"final":        domain.AccFinal,
	"synchronized": domain.AccSynchronized,
	"volatile":     domain.AccVolatile,
	"transient":    domain.AccTransient,
	"native":       domain.AccNative,
	"abstract":     domain.AccAbstract,
	"strictfp":     domain.AccStrict,
}

// typeDecl builds a declaration. inBlock is set for classes declared inside a method or
// initializer body.
func (f *file) typeDecl(n *sitter.Node, outer *domain.TypeDecl, local, inBlock bool) *domain.TypeDecl {
	td := &domain.TypeDecl{Local: local, Line: line(n)}
	if name := n.ChildByFieldName("name"); name != nil {
		td.Name = f.text(name)
	}

	var implied domain.AccessFlags
	switch n.Type() {
	case "interface_declaration":
		td.Kind = domain.KindInterface
		implied = domain.AccInterface | domain.AccAbstract
	case "annotation_type_declaration":
		td.Kind = domain.KindAnnotation
		implied = domain.AccInterface | domain.AccAbstract | domain.AccAnnotation
	case "enum_declaration":
		td.Kind = domain.KindEnum
		implied = domain.AccEnum
	case "record_declaration":
		implied = domain.AccFinal
	}
	if outer != nil && isInterfaceLike(outer) {
		implied |= domain.AccPublic | domain.AccStatic
	}

	mods, anns, _ := f.modifiers(n)
	td.Modifiers = mods | implied
	td.Annotations = anns
	td.InternalName = f.internalName(td, outer, inBlock)
	td.TypeParams = f.typeParams(n)

	switch n.Type() {
	case "class_declaration":
		if sc := n.ChildByFieldName("superclass"); sc != nil && sc.NamedChildCount() > 0 {
			td.Super = f.typeName(sc.NamedChild(0))
		}
		td.Interfaces = f.typeList(n.ChildByFieldName("interfaces"))
	case "interface_declaration":
		td.Interfaces = f.typeList(childOfType(n, "extends_interfaces"))
	case "enum_declaration", "record_declaration":
		td.Interfaces = f.typeList(n.ChildByFieldName("interfaces"))
	}

	if n.Type() == "record_declaration" {
		if ps := n.ChildByFieldName("parameters"); ps != nil {
			for _, p := range f.params(ps) {
				td.Fields = append(td.Fields, &domain.FieldDecl{
					Name:      p.Name,
					Type:      p.Type,
					Modifiers: domain.AccPrivate | domain.AccFinal,
					Line:      line(ps),
				})
			}
		}
	}

	f.body(td, n.ChildByFieldName("body"))
	return td
}

// internalName derives the binary name javac gives a declaration: anonymous classes are
// numbered per enclosing type and local classes carry an index before their name.
func (f *file) internalName(td *domain.TypeDecl, outer *domain.TypeDecl, inBlock bool) string {
	if outer == nil {
		if f.pkg == "" {
			return td.Name
		}
		return packagePath(f.pkg) + "/" + td.Name
	}
	if td.Name == "" {
		f.anon[outer]++
		return outer.InternalName + "$" + strconv.Itoa(f.anon[outer])
	}
	if inBlock {
		key := outer.InternalName + "$" + td.Name
		f.locals[key]++
		return outer.InternalName + "$" + strconv.Itoa(f.locals[key]) + td.Name
	}
	return outer.InternalName + "$" + td.Name
}

func (f *file) body(td *domain.TypeDecl, body *sitter.Node) {
	if body == nil {
		return
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		c := body.NamedChild(i)
		switch c.Type() {
		case "field_declaration", "constant_declaration":
			f.fields(td, c)
		case "method_declaration", "constructor_declaration", "compact_constructor_declaration",
			"annotation_type_element_declaration":
			td.Methods = append(td.Methods, f.method(td, c))
		case "enum_constant":
			f.enumConstant(td, c)
		case "enum_body_declarations":
			f.body(td, c)
		case "static_initializer", "block":
			f.scanLocal(td, c)
		default:
			if isTypeDeclaration(c.Type()) {
				td.Nested = append(td.Nested, f.typeDecl(c, td, td.Local, false))
			}
		}
	}
}

func (f *file) fields(td *domain.TypeDecl, n *sitter.Node) {
	mods, anns, _ := f.modifiers(n)
	if isInterfaceLike(td) {
		mods |= domain.AccPublic | domain.AccStatic | domain.AccFinal
	}
	typ := f.text(n.ChildByFieldName("type"))
	for i := 0; i < int(n.NamedChildCount()); i++ {
		d := n.NamedChild(i)
		if d.Type() != "variable_declarator" {
			continue
		}
		td.Fields = append(td.Fields, &domain.FieldDecl{
			Name:        f.text(d.ChildByFieldName("name")),
			Type:        typ + f.text(d.ChildByFieldName("dimensions")),
			Modifiers:   mods,
			Annotations: anns,
			Line:        line(d),
		})
		if v := d.ChildByFieldName("value"); v != nil {
			f.scanLocal(td, v)
		}
	}
}

func (f *file) enumConstant(td *domain.TypeDecl, n *sitter.Node) {
	_, anns, _ := f.modifiers(n)
	td.Fields = append(td.Fields, &domain.FieldDecl{
		Name:         f.text(n.ChildByFieldName("name")),
		Type:         td.Name,
		Modifiers:    domain.AccPublic | domain.AccStatic | domain.AccFinal | domain.AccEnum,
		Annotations:  anns,
		Line:         line(n),
		EnumConstant: true,
	})
	if args := n.ChildByFieldName("arguments"); args != nil {
		f.scanLocal(td, args)
	}
	if body := n.ChildByFieldName("body"); body != nil {
		anon := &domain.TypeDecl{Kind: domain.KindClass, Local: true, Line: line(body), Super: td.SourceName()}
		anon.InternalName = f.internalName(anon, td, true)
		td.Nested = append(td.Nested, anon)
		f.body(anon, body)
	}
}

func (f *file) method(td *domain.TypeDecl, n *sitter.Node) *domain.MethodDecl {
	m := &domain.MethodDecl{Line: line(n), End: int(n.EndByte())}
	m.Constructor = n.Type() == "constructor_declaration" || n.Type() == "compact_constructor_declaration"
	m.Name = f.text(n.ChildByFieldName("name"))

	mods, anns, isDefault := f.modifiers(n)
	m.Modifiers = mods
	m.Annotations = anns
	m.Overrides = domain.FindAnnotation(anns, "java.lang.Override") != nil

	if t := n.ChildByFieldName("type"); t != nil && !m.Constructor {
		m.ReturnType = f.text(t) + f.text(n.ChildByFieldName("dimensions"))
	}
	if ps := n.ChildByFieldName("parameters"); ps != nil {
		m.ParamsEnd = int(ps.EndByte())
		m.Params = f.params(ps)
	}

	body := n.ChildByFieldName("body")
	if isInterfaceLike(td) && !mods.Has(domain.AccPrivate) {
		m.Modifiers |= domain.AccPublic
		if body == nil && !isDefault && !mods.Has(domain.AccStatic) {
			m.Modifiers |= domain.AccAbstract
		}
	}
	m.EmptyBody = body == nil || statementCount(body) == 0
	if body != nil {
		f.scanLocal(td, body)
	}

	if td.InternalName != "" && len(m.Params) > 0 {
		name := m.Name
		if m.Constructor {
			name = "<init>"
		}
		types := make([]string, len(m.Params))
		names := make([]string, len(m.Params))
		for i, p := range m.Params {
			t := p.Type
			if p.Varargs {
				t += "..."
			}
			types[i] = domain.ErasedSimpleName(t)
			names[i] = p.Name
		}
		f.decl.MethodArgs.Add(td.InternalName, name, types, names)
	}
	return m
}

func (f *file) params(ps *sitter.Node) []domain.ParamDecl {
	var out []domain.ParamDecl
	for i := 0; i < int(ps.NamedChildCount()); i++ {
		c := ps.NamedChild(i)
		switch c.Type() {
		case "formal_parameter":
			out = append(out, domain.ParamDecl{
				Name: f.text(c.ChildByFieldName("name")),
				Type: f.text(c.ChildByFieldName("type")) + f.text(c.ChildByFieldName("dimensions")),
			})
		case "spread_parameter":
			p := domain.ParamDecl{Varargs: true}
			for j := 0; j < int(c.NamedChildCount()); j++ {
				part := c.NamedChild(j)
				switch part.Type() {
				case "modifiers", "marker_annotation", "annotation":
				case "variable_declarator":
					p.Name = f.text(part.ChildByFieldName("name"))
				default:
					if p.Type == "" {
						p.Type = f.text(part)
					}
				}
			}
			out = append(out, p)
		}
	}
	return out
}

// modifiers reads the modifier keywords and annotations of a declaration. The third
// result reports the default keyword of interface methods.
func (f *file) modifiers(n *sitter.Node) (domain.AccessFlags, []domain.Annotation, bool) {
	mods := firstNamedOfType(n, "modifiers")
	if mods == nil {
		return 0, nil, false
	}
	var flags domain.AccessFlags
	var anns []domain.Annotation
	isDefault := false
	for i := 0; i < int(mods.ChildCount()); i++ {
		c := mods.Child(i)
		switch c.Type() {
		case "marker_annotation", "annotation":
			anns = append(anns, f.annotation(c))
		case "default":
			isDefault = true
		default:
			flags |= modifierFlags[c.Type()]
		}
	}
	return flags, anns, isDefault
}

func (f *file) typeParams(n *sitter.Node) []string {
	tps := n.ChildByFieldName("type_parameters")
	if tps == nil {
		return nil
	}
	var out []string
	for i := 0; i < int(tps.NamedChildCount()); i++ {
		tp := tps.NamedChild(i)
		if tp.Type() != "type_parameter" {
			continue
		}
		if id := firstNamedOfType(tp, "type_identifier", "identifier"); id != nil {
			out = append(out, f.text(id))
		}
	}
	return out
}

func (f *file) typeList(n *sitter.Node) []string {
	if n == nil {
		return nil
	}
	list := firstNamedOfType(n, "type_list")
	if list == nil {
		list = n
	}
	var out []string
	for i := 0; i < int(list.NamedChildCount()); i++ {
		out = append(out, f.typeName(list.NamedChild(i)))
	}
	return out
}

// typeName resolves a type node to a dotted name without type arguments, qualified when
// the file's imports or declarations allow it.
func (f *file) typeName(n *sitter.Node) string {
	if n.Type() == "generic_type" && n.NamedChildCount() > 0 {
		n = n.NamedChild(0)
	}
	name, _ := f.qualify(stripTypeArgs(f.text(n)))
	return name
}

// scanLocal finds anonymous and local classes inside a member body. Their own bodies
// are handled by typeDecl, so the scan stops at each class it finds.
func (f *file) scanLocal(td *domain.TypeDecl, n *sitter.Node) {
	switch {
	case isTypeDeclaration(n.Type()):
		td.Nested = append(td.Nested, f.typeDecl(n, td, true, true))
		return
	case n.Type() == "object_creation_expression":
		if body := childOfType(n, "class_body"); body != nil {
			for i := 0; i < int(n.NamedChildCount()); i++ {
				if c := n.NamedChild(i); c.Type() == "argument_list" {
					f.scanLocal(td, c)
				}
			}
			anon := &domain.TypeDecl{Kind: domain.KindClass, Local: true, Line: line(body)}
			if t := n.ChildByFieldName("type"); t != nil {
				anon.Super = f.typeName(t)
			}
			anon.InternalName = f.internalName(anon, td, true)
			td.Nested = append(td.Nested, anon)
			f.body(anon, body)
			return
		}
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		f.scanLocal(td, n.NamedChild(i))
	}
}

// statementCount counts the statements of a block, ignoring comments and an explicit
// super or this call.
func statementCount(body *sitter.Node) int {
	count := 0
	for i := 0; i < int(body.NamedChildCount()); i++ {
		switch body.NamedChild(i).Type() {
		case "line_comment", "block_comment", "explicit_constructor_invocation":
		default:
			count++
		}
	}
	return count
}

func isInterfaceLike(td *domain.TypeDecl) bool {
	return td.Kind == domain.KindInterface || td.Kind == domain.KindAnnotation
}

func packagePath(pkg string) string {
	return strings.ReplaceAll(pkg, ".", "/")
}
