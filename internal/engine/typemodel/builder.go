// Package typemodel builds the type oracle from compiled class payloads.
package typemodel

import (
	"context"
	"runtime"
	"strconv"
	"strings"

	"go.trai.ch/javelin/internal/core/domain"
	"go.trai.ch/javelin/internal/core/ports"
	"go.trai.ch/javelin/internal/core/typeoracle"
	"golang.org/x/sync/errgroup"
)

// DefaultPlatform lists the internal-name prefixes of types that come from the Java
// platform rather than from compilation units.
func DefaultPlatform() []string {
	return []string{"java/", "javax/"}
}

// Options configures a Builder.
type Options struct {
	// SuppressMissing lists name prefixes whose unresolvable annotations are reported
	// once and then only at debug level.
	SuppressMissing []string
	// Platform lists internal-name prefixes of types that may be missing from the batch.
	// A reference to such a type produces an opaque shell instead of a failure.
	Platform []string
	// Workers bounds payload decoding. Zero means GOMAXPROCS.
	Workers int
}

type entryState uint8

const (
	statePending entryState = iota
	stateResolving
	stateResolved
	stateFailed
)

// entry is the builder's record of one type it created.
type entry struct {
	data  domain.TypeData
	class *domain.ClassData
	sig   *classSignature
	// sigErr is set when the class signature could not be parsed in the identity pass.
	sigErr error
	typ    *typeoracle.ClassType
	state  entryState
}

// Builder adds compiled classes to a TypeOracle. It remembers every type it has
// indexed, so each AddNewTypes call only resolves what is new.
type Builder struct {
	oracle   *typeoracle.TypeOracle
	reader   ports.ClassReader
	resolver ports.AnnotationTypeResolver
	logger   ports.Logger
	tracer   ports.Tracer
	opts     Options

	types  map[string]*entry
	shells map[string]*typeoracle.ClassType
	hinted map[string]bool

	// argNames is only set while AddNewTypes runs.
	argNames domain.MethodArgNames
}

// New returns a Builder over an empty oracle. resolver may be nil, in which case only
// annotation types declared in the batch resolve.
func New(
	reader ports.ClassReader,
	resolver ports.AnnotationTypeResolver,
	logger ports.Logger,
	tracer ports.Tracer,
	opts Options,
) *Builder {
	if opts.Platform == nil {
		opts.Platform = DefaultPlatform()
	}
	return &Builder{
		oracle:   typeoracle.New(),
		reader:   reader,
		resolver: resolver,
		logger:   logger,
		tracer:   tracer,
		opts:     opts,
		types:    make(map[string]*entry),
		shells:   make(map[string]*typeoracle.ClassType),
		hinted:   make(map[string]bool),
	}
}

// Oracle returns the type oracle being built.
func (b *Builder) Oracle() *typeoracle.TypeOracle { return b.oracle }

// AddNewTypes indexes and resolves types. Classes that are local, whose enclosing class
// is skipped, or that are already indexed are ignored. A type that cannot be resolved
// is logged and left out of the oracle; it does not fail the call.
func (b *Builder) AddNewTypes(ctx context.Context, types []domain.TypeData, argNames domain.MethodArgNames) error {
	b.argNames = argNames
	defer func() { b.argNames = nil }()

	idCtx, span := b.tracer.Start(ctx, "typemodel.identity", ports.WithAttribute("types", len(types)))
	decoded, err := b.decode(idCtx, types)
	if err != nil {
		span.RecordError(err)
		span.End()
		return err
	}
	added, packageInfos := b.identity(decoded)
	span.SetAttribute("indexed", len(added))
	span.End()

	_, span = b.tracer.Start(ctx, "typemodel.resolve", ports.WithAttribute("types", len(added)))
	defer span.End()

	for _, e := range packageInfos {
		b.resolvePackage(e)
	}
	for _, e := range added {
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			return err
		}
		b.resolveClass(e)
	}
	discarded := b.prune(added)
	span.SetAttribute("discarded", discarded)
	return nil
}

// decode reads every payload concurrently. Results keep the input order so the
// identity pass sees the classes in a deterministic sequence.
func (b *Builder) decode(ctx context.Context, types []domain.TypeData) ([]*entry, error) {
	out := make([]*entry, len(types))
	workers := b.opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, td := range types {
		if td.Class == nil || td.Class.IsLocal() || domain.IsLocalName(td.Class.InternalName()) {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := td.Class.Bytes()
			if err != nil {
				b.logger.Warn("Unable to read class " + td.Class.SourceName() + ": " + err.Error())
				return nil
			}
			cd, err := b.reader.Read(data)
			if err != nil {
				b.logger.Warn("Unable to decode class " + td.Class.SourceName() + ": " + err.Error())
				return nil
			}
			out[i] = &entry{data: td, class: cd}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// identity creates a type shell for every new class, enclosing types first.
func (b *Builder) identity(decoded []*entry) (added, packageInfos []*entry) {
	batch := make(map[string]*entry, len(decoded))
	for _, e := range decoded {
		if e == nil {
			continue
		}
		if e.class.IsPackageInfo() {
			packageInfos = append(packageInfos, e)
			continue
		}
		batch[e.class.InternalName] = e
	}

	var create func(name string) *entry
	create = func(name string) *entry {
		if e, ok := b.types[name]; ok {
			return e
		}
		e, ok := batch[name]
		if !ok {
			return nil
		}
		delete(batch, name)

		var enclosing *entry
		if outer := enclosingName(e); outer != "" {
			if enclosing = create(outer); enclosing == nil {
				b.logger.Debug("skipping " + domain.SourceName(name) + ": enclosing type " + domain.SourceName(outer) + " is not indexed")
				return nil
			}
		}
		b.createType(e, enclosing)
		b.types[name] = e
		added = append(added, e)
		return e
	}

	for _, e := range decoded {
		if e == nil || e.class.IsPackageInfo() {
			continue
		}
		if _, ok := b.types[e.class.InternalName]; ok {
			continue
		}
		create(e.class.InternalName)
	}
	return added, packageInfos
}

func enclosingName(e *entry) string {
	if outer := e.data.Class.Enclosing(); outer != nil {
		return outer.InternalName()
	}
	return domain.EnclosingInternalName(e.class.InternalName)
}

const nestedFlags = domain.AccPublic | domain.AccPrivate | domain.AccProtected | domain.AccStatic

func (b *Builder) createType(e *entry, enclosing *entry) {
	cd := e.class
	name := cd.InternalName
	if shell, ok := b.shells[name]; ok {
		b.oracle.Discard(shell)
		delete(b.shells, name)
	}

	pkg := b.oracle.GetOrCreatePackage(domain.PackageOf(name))
	access := cd.Access
	var outer *typeoracle.ClassType
	nestedName := name[strings.LastIndexByte(name, '/')+1:]
	if enclosing != nil {
		outer = enclosing.typ
		nestedName = outer.Name() + "." + strings.TrimPrefix(name, enclosing.class.InternalName+"$")
		access = access&^nestedFlags | e.data.Class.Modifiers()&nestedFlags
	}

	kind := typeoracle.KindClass
	switch {
	case access.Has(domain.AccAnnotation):
		kind = typeoracle.KindAnnotation
	case access.Has(domain.AccEnum):
		kind = typeoracle.KindEnum
	case access.Has(domain.AccInterface):
		kind = typeoracle.KindInterface
	}

	ct := typeoracle.NewClassType(pkg, outer, nestedName, name, kind)
	ct.AddModifiers(mapModifiers(classModifiers, access))
	if kind == typeoracle.KindInterface || kind == typeoracle.KindAnnotation {
		ct.AddModifiers(typeoracle.ModStatic | typeoracle.ModAbstract)
	} else if kind == typeoracle.KindEnum && outer != nil {
		ct.AddModifiers(typeoracle.ModStatic)
	}
	ct.SetLastModified(e.data.LastModified)

	if cd.Signature != "" {
		sig, err := parseClassSignature(cd.Signature)
		if err != nil {
			e.sigErr = err
		} else {
			e.sig = sig
			ct.SetTypeParameters(newTypeParameters(sig.typeParams))
		}
	}
	if outer != nil && outer.IsGeneric() && kind == typeoracle.KindClass && !access.Has(domain.AccStatic) {
		ct.MarkGeneric()
	}
	e.typ = ct
}

func newTypeParameters(params []sigTypeParam) []*typeoracle.TypeParameter {
	if len(params) == 0 {
		return nil
	}
	out := make([]*typeoracle.TypeParameter, len(params))
	for i, p := range params {
		out[i] = &typeoracle.TypeParameter{Name: p.name, Index: i}
	}
	return out
}

// prune discards every type of the batch that failed, then every type that refers to a
// discarded type, until nothing changes. It returns the number of types discarded.
func (b *Builder) prune(added []*entry) int {
	gone := make(map[*typeoracle.ClassType]bool)
	for _, e := range added {
		if e.state == stateFailed {
			gone[e.typ] = true
		}
	}

	for changed := true; changed; {
		changed = false
		for _, e := range added {
			if gone[e.typ] {
				continue
			}
			if dep := brokenDependency(e.typ, gone); dep != nil {
				b.logger.Warn("Type " + e.typ.QualifiedSourceName() + " depends on unresolvable type " + dep.QualifiedSourceName())
				e.state = stateFailed
				gone[e.typ] = true
				changed = true
			}
		}
	}

	for _, e := range added {
		if e.state == stateFailed {
			b.oracle.Discard(e.typ)
			delete(b.types, e.class.InternalName)
		}
	}
	return len(gone)
}

// brokenDependency returns a discarded type that ct refers to from its enclosing type,
// supertypes, type parameter bounds, fields or members.
func brokenDependency(ct *typeoracle.ClassType, gone map[*typeoracle.ClassType]bool) *typeoracle.ClassType {
	if ct.Enclosing() != nil && gone[ct.Enclosing()] {
		return ct.Enclosing()
	}
	w := depWalker{gone: gone, seen: make(map[*typeoracle.TypeParameter]bool)}
	if d := w.params(ct.TypeParameters()); d != nil {
		return d
	}
	if ct.Superclass() != nil {
		if d := w.walk(ct.Superclass()); d != nil {
			return d
		}
	}
	if d := w.all(ct.Interfaces()); d != nil {
		return d
	}
	for _, f := range ct.Fields() {
		if d := w.walk(f.Type()); d != nil {
			return d
		}
	}
	for _, group := range [][]*typeoracle.Method{ct.Constructors(), ct.Methods()} {
		for _, m := range group {
			if d := w.method(m); d != nil {
				return d
			}
		}
	}
	return nil
}

type depWalker struct {
	gone map[*typeoracle.ClassType]bool
	seen map[*typeoracle.TypeParameter]bool
}

func (w depWalker) method(m *typeoracle.Method) *typeoracle.ClassType {
	if d := w.params(m.TypeParameters()); d != nil {
		return d
	}
	if m.ReturnType() != nil {
		if d := w.walk(m.ReturnType()); d != nil {
			return d
		}
	}
	for _, p := range m.Parameters() {
		if d := w.walk(p.Type); d != nil {
			return d
		}
	}
	return w.all(m.Thrown())
}

func (w depWalker) params(tps []*typeoracle.TypeParameter) *typeoracle.ClassType {
	for _, tp := range tps {
		if d := w.walk(tp); d != nil {
			return d
		}
	}
	return nil
}

func (w depWalker) all(ts []typeoracle.Type) *typeoracle.ClassType {
	for _, t := range ts {
		if d := w.walk(t); d != nil {
			return d
		}
	}
	return nil
}

func (w depWalker) walk(t typeoracle.Type) *typeoracle.ClassType {
	switch v := t.(type) {
	case *typeoracle.ClassType:
		if w.gone[v] {
			return v
		}
	case *typeoracle.ParameterizedType:
		if w.gone[v.Base] {
			return v.Base
		}
		if v.Enclosing != nil {
			if d := w.walk(v.Enclosing); d != nil {
				return d
			}
		}
		return w.all(v.Args)
	case *typeoracle.RawType:
		if w.gone[v.Base] {
			return v.Base
		}
	case *typeoracle.ArrayType:
		return w.walk(v.Component)
	case *typeoracle.WildcardType:
		if v.Bound != nil {
			return w.walk(v.Bound)
		}
	case *typeoracle.TypeParameter:
		if w.seen[v] {
			return nil
		}
		w.seen[v] = true
		return w.all(v.Bounds)
	}
	return nil
}

// classRef finds the type with an internal name: one indexed by the builder, one
// already published, or a platform shell. A pending indexed type is resolved first so a
// failed one is never bound.
func (b *Builder) classRef(internalName string) *typeoracle.ClassType {
	if e, ok := b.types[internalName]; ok {
		if e.state == statePending && !b.resolveClass(e) {
			return nil
		}
		if e.state == stateFailed {
			return nil
		}
		return e.typ
	}
	if ct := b.oracle.TypeByInternalName(internalName); ct != nil {
		return ct
	}
	if b.isPlatform(internalName) {
		return b.shell(internalName)
	}
	return nil
}

func (b *Builder) isPlatform(internalName string) bool {
	for _, p := range b.opts.Platform {
		if strings.HasPrefix(internalName, p) {
			return true
		}
	}
	return false
}

// shell publishes an opaque type for a platform class. Shells have no members; their
// superclass is java.lang.Object.
func (b *Builder) shell(internalName string) *typeoracle.ClassType {
	if ct, ok := b.shells[internalName]; ok {
		return ct
	}
	var outer *typeoracle.ClassType
	nestedName := internalName[strings.LastIndexByte(internalName, '/')+1:]
	if enc := domain.EnclosingInternalName(internalName); enc != "" {
		outer = b.classRef(enc)
		if outer != nil {
			nestedName = outer.Name() + "." + strings.TrimPrefix(internalName, enc+"$")
		}
	}
	pkg := b.oracle.GetOrCreatePackage(domain.PackageOf(internalName))
	ct := typeoracle.NewClassType(pkg, outer, nestedName, internalName, typeoracle.KindClass)
	ct.AddModifiers(typeoracle.ModPublic)
	b.shells[internalName] = ct
	if internalName != typeoracle.ObjectInternalName {
		ct.SetSuperclass(b.classRef(typeoracle.ObjectInternalName))
	}
	b.oracle.Publish(ct)
	return ct
}

// argName is the fallback name of the i-th parameter.
func argName(i int) string {
	return "arg" + strconv.Itoa(i)
}
