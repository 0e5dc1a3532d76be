package typemodel

import (
	"go.trai.ch/javelin/internal/core/domain"
	"go.trai.ch/javelin/internal/core/typeoracle"
)

// scope is one level of the type-parameter scope stack.
type scope struct {
	params []*typeoracle.TypeParameter
	parent *scope
}

func (s *scope) push(params []*typeoracle.TypeParameter) *scope {
	if len(params) == 0 {
		return s
	}
	return &scope{params: params, parent: s}
}

func (s *scope) lookup(name string) *typeoracle.TypeParameter {
	for cur := s; cur != nil; cur = cur.parent {
		for _, p := range cur.params {
			if p.Name == name {
				return p
			}
		}
	}
	return nil
}

// classScope returns the type parameters visible in ct's body. Static nested types do
// not see the parameters of their enclosing type.
func classScope(ct *typeoracle.ClassType) *scope {
	var parent *scope
	if outer := ct.Enclosing(); outer != nil && !ct.Modifiers().Has(typeoracle.ModStatic) {
		parent = classScope(outer)
	}
	return parent.push(ct.TypeParameters())
}

func (b *Builder) resolvePackage(e *entry) {
	pkg := b.oracle.GetOrCreatePackage(domain.PackageOf(e.class.InternalName))
	for _, a := range b.resolveAnnotations(e.data.Class.Annotations(), pkg.Name) {
		pkg.AddAnnotation(a)
	}
}

// resolveClass links supertypes, members and annotations. It marks the entry before
// descending so that cyclic references terminate. Supertypes and the enclosing type
// are resolved before they are linked.
func (b *Builder) resolveClass(e *entry) bool {
	switch e.state {
	case stateResolving, stateResolved:
		return true
	case stateFailed:
		return false
	}
	e.state = stateResolving
	ct := e.typ

	if ok := b.resolveClassBody(e); !ok {
		e.state = stateFailed
		return false
	}
	e.state = stateResolved
	b.oracle.Publish(ct)
	return true
}

func (b *Builder) resolveClassBody(e *entry) bool {
	ct := e.typ
	cd := e.class
	name := ct.QualifiedSourceName()

	if outer := ct.Enclosing(); outer != nil {
		if oe, ok := b.types[outer.InternalName()]; ok && !b.resolveClass(oe) {
			return b.fail("Unable to resolve enclosing type " + outer.QualifiedSourceName() + " of " + name)
		}
	}
	if e.sigErr != nil {
		return b.fail("Unable to parse the signature of " + name + ": " + e.sigErr.Error())
	}

	for _, a := range b.resolveAnnotations(e.data.Class.Annotations(), ct.Package().Name) {
		ct.AddAnnotation(a)
	}

	sc := classScope(ct)
	if e.sig != nil {
		if !b.resolveBounds(ct.TypeParameters(), e.sig.typeParams, sc) {
			return b.fail("Unable to resolve type parameter bounds of " + name)
		}
	}

	if !b.resolveSupertypes(e, sc) {
		return false
	}

	if ct.Superclass() == nil && !ct.IsInterface() && ct.InternalName() != typeoracle.ObjectInternalName {
		return b.fail("Unable to resolve supertype of " + name)
	}

	for _, m := range cd.Methods {
		if !b.resolveMethod(e, m, sc) {
			return b.fail("Unable to resolve method " + m.Name + m.Descriptor + " of " + name)
		}
	}

	ordinal := 0
	for _, f := range cd.Fields {
		if f.Access.Has(domain.AccSynthetic) {
			continue
		}
		if !b.resolveField(e, f, sc, &ordinal) {
			return b.fail("Unable to resolve field " + f.Name + " of " + name)
		}
	}
	return true
}

func (b *Builder) resolveSupertypes(e *entry, sc *scope) bool {
	ct := e.typ
	cd := e.class
	name := ct.QualifiedSourceName()

	if e.sig != nil {
		if !ct.IsInterface() {
			super, ok := b.resolveSupertype(e.sig.super, sc)
			if !ok {
				return b.fail("Unable to resolve supertype " + domain.SourceName(e.sig.super.internalName()) + " of " + name)
			}
			ct.SetSuperclass(super)
		}
		for _, i := range e.sig.interfaces {
			iface, ok := b.resolveSupertype(i, sc)
			if !ok {
				return b.fail("Unable to resolve interface " + domain.SourceName(i.internalName()) + " of " + name)
			}
			ct.AddInterface(iface)
		}
		return true
	}

	if !ct.IsInterface() && cd.SuperName != "" {
		super, ok := b.resolveSupertype(descriptorType(cd.SuperName), sc)
		if !ok {
			return b.fail("Unable to resolve supertype " + domain.SourceName(cd.SuperName) + " of " + name)
		}
		ct.SetSuperclass(super)
	}
	for _, i := range cd.Interfaces {
		iface, ok := b.resolveSupertype(descriptorType(i), sc)
		if !ok {
			return b.fail("Unable to resolve interface " + domain.SourceName(i) + " of " + name)
		}
		ct.AddInterface(iface)
	}
	return true
}

// resolveSupertype resolves the referenced class before binding it.
func (b *Builder) resolveSupertype(t *sigType, sc *scope) (typeoracle.Type, bool) {
	if e, ok := b.types[t.internalName()]; ok && !b.resolveClass(e) {
		return nil, false
	}
	return b.bind(t, sc)
}

func (b *Builder) resolveBounds(params []*typeoracle.TypeParameter, parsed []sigTypeParam, sc *scope) bool {
	for i, p := range parsed {
		for _, bound := range p.bounds {
			t, ok := b.bind(bound, sc)
			if !ok {
				return false
			}
			params[i].Bounds = append(params[i].Bounds, t)
		}
	}
	return true
}

// bind turns a parsed type into a type model node. Class references must be indexed,
// published or covered by the platform prefixes; pending indexed types are resolved
// first.
func (b *Builder) bind(t *sigType, sc *scope) (typeoracle.Type, bool) {
	switch t.kind {
	case sigPrimitive:
		p, ok := typeoracle.PrimitiveByDescriptor(t.prim)
		return p, ok
	case sigArray:
		component, ok := b.bind(t.component, sc)
		if !ok {
			return nil, false
		}
		return &typeoracle.ArrayType{Component: component}, true
	case sigVariable:
		tp := sc.lookup(t.name)
		if tp == nil {
			b.logger.Debug("type variable " + t.name + " is not in scope")
			return nil, false
		}
		return tp, true
	}

	var outer typeoracle.Type
	name := ""
	for i, seg := range t.segments {
		if i == 0 {
			name = seg.name
		} else {
			name += "$" + seg.name
		}
		last := i == len(t.segments)-1
		ct := b.classRef(name)
		if ct == nil {
			if last {
				return nil, false
			}
			continue
		}
		if len(seg.args) == 0 {
			if last && outer != nil {
				return &typeoracle.ParameterizedType{Base: ct, Enclosing: outer}, true
			}
			if last && ct.IsGeneric() {
				return &typeoracle.RawType{Base: ct}, true
			}
			outer = nil
			if last {
				return ct, true
			}
			continue
		}
		args := make([]typeoracle.Type, 0, len(seg.args))
		for _, a := range seg.args {
			arg, ok := b.bindArg(a, sc)
			if !ok {
				return nil, false
			}
			args = append(args, arg)
		}
		pt := &typeoracle.ParameterizedType{Base: ct, Enclosing: outer, Args: args}
		if last {
			return pt, true
		}
		outer = pt
	}
	return nil, false
}

func (b *Builder) bindArg(a sigArg, sc *scope) (typeoracle.Type, bool) {
	switch a.wildcard {
	case '*':
		return &typeoracle.WildcardType{Kind: typeoracle.WildcardUnbound}, true
	case '+', '-':
		bound, ok := b.bind(a.typ, sc)
		if !ok {
			return nil, false
		}
		kind := typeoracle.WildcardExtends
		if a.wildcard == '-' {
			kind = typeoracle.WildcardSuper
		}
		return &typeoracle.WildcardType{Kind: kind, Bound: bound}, true
	default:
		return b.bind(a.typ, sc)
	}
}

// hasOuterInstance reports whether ct's constructors take the enclosing instance as a
// leading synthetic parameter.
func hasOuterInstance(ct *typeoracle.ClassType) bool {
	return ct.Enclosing() != nil &&
		ct.Kind() == typeoracle.KindClass &&
		!ct.Modifiers().Has(typeoracle.ModStatic)
}

func (b *Builder) resolveMethod(e *entry, m domain.MemberData, sc *scope) bool {
	ct := e.typ
	if m.Name == "<clinit>" || m.Access.Has(domain.AccSynthetic) {
		return true
	}
	ctor := m.Name == "<init>"
	if ctor && ct.Kind() == typeoracle.KindEnum {
		return true
	}

	desc, err := parseMethodSignature(m.Descriptor)
	if err != nil {
		b.logger.Debug(err.Error())
		return false
	}
	keyTypes := domain.DescriptorSimpleNames(m.Descriptor)
	paramNames := m.ParamNames
	if ctor && hasOuterInstance(ct) && len(desc.params) > 0 {
		desc.params = desc.params[1:]
		if len(keyTypes) > 0 {
			keyTypes = keyTypes[1:]
		}
		if len(paramNames) == len(desc.params)+1 {
			paramNames = paramNames[1:]
		}
	}

	kind := typeoracle.KindMethod
	name := m.Name
	switch {
	case ctor:
		kind = typeoracle.KindConstructor
		name = ct.SimpleSourceName()
	case ct.Kind() == typeoracle.KindAnnotation:
		kind = typeoracle.KindAnnotationMethod
	}

	method := typeoracle.NewMethod(ct, name, kind)
	method.AddModifiers(mapModifiers(methodModifiers, m.Access))
	if ct.IsInterface() {
		method.AddModifiers(typeoracle.ModPublic)
	}
	method.SetVarargs(m.Access.Has(domain.AccVarargs))

	params, ret, throws := desc.params, desc.ret, desc.throws
	msc := sc
	if m.Signature != "" {
		sig, err := parseMethodSignature(m.Signature)
		if err != nil {
			b.logger.Debug(err.Error())
			return false
		}
		tps := newTypeParameters(sig.typeParams)
		method.SetTypeParameters(tps)
		msc = sc.push(tps)
		if !b.resolveBounds(tps, sig.typeParams, msc) {
			return false
		}
		params, ret = sig.params, sig.ret
		if len(sig.throws) > 0 {
			throws = sig.throws
		}
	}

	if !ctor {
		rt, ok := b.bind(ret, msc)
		if !ok {
			return false
		}
		method.SetReturnType(rt)
	}

	names := b.parameterNames(ct, m.Name, keyTypes, paramNames, len(params))
	for i, p := range params {
		pt, ok := b.bind(p, msc)
		if !ok {
			return false
		}
		method.AddParameter(&typeoracle.Parameter{Name: names[i], Type: pt})
	}

	if len(throws) == 0 {
		for _, exc := range m.Exceptions {
			throws = append(throws, descriptorType(exc))
		}
	}
	for _, t := range throws {
		tt, ok := b.bind(t, msc)
		if !ok {
			return false
		}
		method.AddThrown(tt)
	}

	for _, a := range b.resolveAnnotations(e.data.Class.MethodAnnotations(m.Name, keyTypes), ct.Package().Name) {
		method.AddAnnotation(a)
	}
	return true
}

// parameterNames takes names from the class data, then from the argument-name table,
// then falls back to argN.
func (b *Builder) parameterNames(ct *typeoracle.ClassType, method string, keyTypes, fromClass []string, n int) []string {
	if len(fromClass) == n {
		return fromClass
	}
	if names, ok := b.argNames.Lookup(ct.InternalName(), method, keyTypes); ok && len(names) == n {
		return names
	}
	out := make([]string, n)
	for i := range out {
		out[i] = argName(i)
	}
	return out
}

func (b *Builder) resolveField(e *entry, f domain.MemberData, sc *scope, ordinal *int) bool {
	ct := e.typ
	var field *typeoracle.Field
	if f.Access.Has(domain.AccEnum) {
		field = typeoracle.NewEnumConstant(ct, f.Name, *ordinal)
		*ordinal++
	} else {
		field = typeoracle.NewField(ct, f.Name)
	}
	field.AddModifiers(mapModifiers(fieldModifiers, f.Access))

	raw := f.Descriptor
	if f.Signature != "" {
		raw = f.Signature
	}
	st, err := parseFieldSignature(raw)
	if err != nil {
		b.logger.Debug(err.Error())
		return false
	}
	t, ok := b.bind(st, sc)
	if !ok {
		return false
	}
	field.SetType(t)

	for _, a := range b.resolveAnnotations(e.data.Class.MemberAnnotations(domain.FieldKey(f.Name)), ct.Package().Name) {
		field.AddAnnotation(a)
	}
	return true
}

// fail logs a resolution failure and reports false.
func (b *Builder) fail(msg string) bool {
	b.logger.Warn(msg)
	return false
}
