package compilation_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/javelin/internal/adapters/telemetry"
	"go.trai.ch/javelin/internal/adapters/unitcache"
	"go.trai.ch/javelin/internal/core/domain"
	"go.trai.ch/javelin/internal/core/ports/mocks"
	"go.trai.ch/javelin/internal/engine/compilation"
	"go.uber.org/mock/gomock"
)

// memBlobs stores JSON encoded class data by content hash.
type memBlobs map[string][]byte

func (m memBlobs) Read(t domain.BlobToken) ([]byte, error) {
	b, ok := m[t.Hash]
	if !ok {
		return nil, domain.ErrBlobNotFound
	}
	return b, nil
}

func decode(payload []byte) (*domain.ClassData, error) {
	var cd domain.ClassData
	if err := json.Unmarshal(payload, &cd); err != nil {
		return nil, err
	}
	return &cd, nil
}

func jsonSigner(payload []byte) (string, error) {
	cd, err := decode(payload)
	if err != nil {
		return "", err
	}
	return domain.StructuralSignature(cd), nil
}

// source describes one unit of the fake project in package p.
type source struct {
	refs    []string
	methods []string
	broken  bool
	// native adds a native method with the given body, or without one when empty.
	native *string
	// body only changes the content id.
	body string
}

func (s source) text(name string) string {
	return fmt.Sprintf("package p; class %s { refs=%v methods=%v broken=%v body=%q }",
		name, s.refs, s.methods, s.broken, s.body)
}

type project struct {
	t     *testing.T
	blobs memBlobs
	cache *unitcache.MemoryCache
	deps  compilation.Deps

	mu      sync.Mutex
	sources map[string]source
	calls   [][]string
	warns   []string
	infos   []string
	errs    []error
}

func newProject(t *testing.T) *project {
	t.Helper()
	ctrl := gomock.NewController(t)
	p := &project{t: t, blobs: memBlobs{}, sources: map[string]source{}}

	cache, err := unitcache.NewMemoryCache(64)
	require.NoError(t, err)
	p.cache = cache

	reader := mocks.NewMockClassReader(ctrl)
	reader.EXPECT().Read(gomock.Any()).DoAndReturn(decode).AnyTimes()

	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	log.EXPECT().Info(gomock.Any()).Do(func(msg string) {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.infos = append(p.infos, msg)
	}).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).Do(func(msg string) {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.warns = append(p.warns, msg)
	}).AnyTimes()
	log.EXPECT().Error(gomock.Any()).Do(func(err error) {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.errs = append(p.errs, err)
	}).AnyTimes()

	compiler := mocks.NewMockCompiler(ctrl)
	compiler.EXPECT().Compile(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(p.compile).AnyTimes()

	p.deps = compilation.Deps{
		Compiler: compiler,
		Cache:    cache,
		Reader:   reader,
		Logger:   log,
		Tracer:   telemetry.NewNoOpTracer(),
	}
	return p
}

func location(name string) string { return "/src/p/" + name + ".java" }

func (p *project) input(name string, lastModified int64) *domain.SourceInput {
	text := []byte(p.sources[name].text(name))
	return &domain.SourceInput{
		Unit: domain.UnitSource{
			TypeName:        "p." + name,
			DisplayLocation: location(name),
			ResourcePath:    "p/" + name + ".java",
			ContentID:       domain.NewContentID("p."+name, text),
			LastModified:    lastModified,
		},
		Source: text,
	}
}

func (p *project) inputs(names ...string) []*domain.SourceInput {
	out := make([]*domain.SourceInput, len(names))
	for i, n := range names {
		out[i] = p.input(n, 1)
	}
	return out
}

func (p *project) compile(
	_ context.Context,
	inputs []*domain.SourceInput,
	_ domain.ClassIndex,
) ([]*domain.CompileOutput, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var names []string
	out := make([]*domain.CompileOutput, len(inputs))
	for i, in := range inputs {
		name := domain.SimpleName(in.Unit.TypeName)
		names = append(names, name)
		out[i] = &domain.CompileOutput{Input: in, Declaration: p.declare(name, in.Source)}
	}
	p.calls = append(p.calls, names)
	return out, nil
}

func (p *project) declare(name string, text []byte) *domain.Declaration {
	src := p.sources[name]
	internal := "p/" + name
	td := &domain.TypeDecl{Name: name, InternalName: internal, Kind: domain.KindClass, Modifiers: domain.AccPublic}
	decl := &domain.Declaration{Package: "p", Types: []*domain.TypeDecl{td}}

	for _, r := range src.refs {
		decl.QualifiedRefs = append(decl.QualifiedRefs, "p."+r)
		decl.FileRefs = append(decl.FileRefs, location(r))
	}
	if src.broken {
		decl.Source = text
		decl.AddProblem(domain.NewError(domain.CategoryCompile, 1, "cannot find symbol"))
		return decl
	}

	cd := &domain.ClassData{InternalName: internal, SuperName: "java/lang/Object", Access: domain.AccPublic}
	for _, m := range src.methods {
		cd.Methods = append(cd.Methods, domain.MemberData{Name: m, Descriptor: "()V", Access: domain.AccPublic})
	}
	if src.native != nil {
		code := "class " + name + " { native void f()" + *src.native + "; }"
		decl.Source = []byte(code)
		td.Methods = append(td.Methods, &domain.MethodDecl{
			Name:       "f",
			Modifiers:  domain.AccNative,
			ReturnType: "void",
			Line:       1,
			ParamsEnd:  strings.Index(code, ")") + 1,
			End:        len(code) - 2,
		})
	}

	payload, err := json.Marshal(cd)
	require.NoError(p.t, err)
	hash := domain.HashBytes(payload)
	p.blobs[hash] = payload
	decl.Classes = []*domain.CompiledClass{domain.NewCompiledClass(domain.ClassSpec{
		InternalName: internal,
		Enclosing:    domain.NoEnclosing,
		Payload:      domain.BlobToken{Length: int64(len(payload)), Hash: hash},
		Blobs:        p.blobs,
		Signer:       jsonSigner,
	})}
	return decl
}

func (p *project) build(opts compilation.Options, names ...string) (*compilation.State, error) {
	p.calls = nil
	return compilation.Build(context.Background(), p.deps, opts, p.inputs(names...))
}

func state(t *testing.T, s *compilation.State, name string) domain.UnitState {
	t.Helper()
	u, ok := s.Unit("p." + name)
	require.True(t, ok, "unit %s", name)
	return u.State()
}

func TestBuild_InvalidationChain(t *testing.T) {
	p := newProject(t)
	p.sources["A"] = source{refs: []string{"B"}}
	p.sources["B"] = source{refs: []string{"C"}}
	p.sources["C"] = source{broken: true}

	s, err := p.build(compilation.Options{}, "A", "B", "C")
	require.NoError(t, err)

	assert.Equal(t, domain.StateError, state(t, s, "C"))
	assert.Equal(t, domain.StateFresh, state(t, s, "B"))
	assert.Equal(t, domain.StateFresh, state(t, s, "A"))
	assert.Empty(t, s.ValidClasses())
	assert.Nil(t, s.TypeOracle().FindType("p.A"))
	assert.Equal(t, 1, s.Stats().Errors)

	require.Len(t, p.warns, 2)
	assert.Contains(t, p.warns[0], location("B"))
	assert.Contains(t, p.warns[1], location("A"))
	require.Len(t, p.infos, 1)
	assert.Contains(t, p.infos[0], "Ignored 1 unit with compilation errors in first pass.")
	assert.Empty(t, p.errs, "errors are summarized outside strict mode")
	assert.Equal(t, 0, p.cache.Len(), "only checked units are cached")

	p.sources["C"] = source{}
	p.warns, p.infos = nil, nil
	s, err = p.build(compilation.Options{}, "A", "B", "C")
	require.NoError(t, err)

	for _, n := range []string{"A", "B", "C"} {
		assert.Equal(t, domain.StateChecked, state(t, s, n), n)
		assert.NotNil(t, s.TypeOracle().FindType("p."+n), n)
	}
	assert.Empty(t, p.warns)
	assert.Empty(t, p.infos)
	assert.Equal(t, 3, p.cache.Len())
	assert.Len(t, s.ValidClasses(), 3)
}

func TestBuild_ReusesCachedUnits(t *testing.T) {
	p := newProject(t)
	p.sources["A"] = source{refs: []string{"B"}}
	p.sources["B"] = source{}

	_, err := p.build(compilation.Options{}, "A", "B")
	require.NoError(t, err)
	require.Len(t, p.calls, 1)

	s, err := p.build(compilation.Options{}, "A", "B")
	require.NoError(t, err)
	assert.Empty(t, p.calls, "nothing changed")
	assert.Equal(t, 2, s.Stats().CachedSources)
	assert.Equal(t, domain.StateChecked, state(t, s, "A"))
	assert.NotNil(t, s.TypeOracle().FindType("p.A"))
}

func TestBuild_RecompilesStructurallyChangedDependents(t *testing.T) {
	p := newProject(t)
	p.sources["A"] = source{refs: []string{"B"}}
	p.sources["B"] = source{refs: []string{"C"}}
	p.sources["C"] = source{methods: []string{"run"}}

	_, err := p.build(compilation.Options{}, "A", "B", "C")
	require.NoError(t, err)

	p.sources["C"] = source{methods: []string{"run", "stop"}}
	s, err := p.build(compilation.Options{}, "A", "B", "C")
	require.NoError(t, err)

	// B was bound to the old C and is compiled again. The new B has the same shape, so
	// A keeps its cached unit.
	assert.Equal(t, [][]string{{"C"}, {"B"}}, p.calls)
	for _, n := range []string{"A", "B", "C"} {
		assert.Equal(t, domain.StateChecked, state(t, s, n), n)
	}
	a, _ := s.Unit("p.A")
	b, _ := s.Unit("p.B")
	bound, ok := a.Dependencies().Lookup("p.B")
	require.True(t, ok)
	assert.Same(t, b.Classes()[0], bound, "A is rebound to the equivalent class")
}

func TestBuild_KeepsDependentsOfImplementationChanges(t *testing.T) {
	p := newProject(t)
	p.sources["A"] = source{refs: []string{"B"}}
	p.sources["B"] = source{methods: []string{"run"}}

	_, err := p.build(compilation.Options{}, "A", "B")
	require.NoError(t, err)

	p.sources["B"] = source{methods: []string{"run"}, body: "changed"}
	s, err := p.build(compilation.Options{}, "A", "B")
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"B"}}, p.calls)
	assert.Equal(t, 1, s.Stats().CachedSources)
	assert.Equal(t, domain.StateChecked, state(t, s, "A"))
}

func TestBuild_RecompilesDependentsOfRemovedUnits(t *testing.T) {
	p := newProject(t)
	p.sources["A"] = source{refs: []string{"B"}}
	p.sources["B"] = source{}

	_, err := p.build(compilation.Options{}, "A", "B")
	require.NoError(t, err)

	s, err := p.build(compilation.Options{}, "A")
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"A"}}, p.calls)
	assert.Equal(t, domain.StateFresh, state(t, s, "A"), "A refers to a unit that is gone")
	_, ok := s.Unit("p.B")
	assert.False(t, ok)
}

func TestBuild_RestampsTouchedSources(t *testing.T) {
	p := newProject(t)
	p.sources["A"] = source{}

	_, err := compilation.Build(context.Background(), p.deps, compilation.Options{}, []*domain.SourceInput{p.input("A", 1)})
	require.NoError(t, err)
	p.calls = nil

	s, err := compilation.Build(context.Background(), p.deps, compilation.Options{}, []*domain.SourceInput{p.input("A", 2)})
	require.NoError(t, err)
	assert.Empty(t, p.calls)

	u, _ := s.Unit("p.A")
	assert.Equal(t, int64(2), u.LastModified())
	cached, ok := p.cache.FindByPath("p/A.java")
	require.True(t, ok)
	assert.Same(t, u, cached)
}

func TestBuild_Strict(t *testing.T) {
	p := newProject(t)
	p.sources["A"] = source{}
	p.sources["B"] = source{broken: true}

	s, err := p.build(compilation.Options{Strict: true}, "A", "B")
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ErrCompilationErrors.Error())
	require.NotNil(t, s)
	assert.Equal(t, domain.StateChecked, state(t, s, "A"))
	assert.Len(t, p.errs, 1, "strict mode logs every unit error")
	assert.Empty(t, p.infos)
}

func TestBuild_Jsni(t *testing.T) {
	p := newProject(t)
	good := " /*-{ return this.x; }-*/"
	missing := ""
	p.sources["Good"] = source{native: &good}
	p.sources["Bad"] = source{native: &missing}

	s, err := p.build(compilation.Options{}, "Good", "Bad")
	require.NoError(t, err)

	g, _ := s.Unit("p.Good")
	require.Len(t, g.JsniMethods(), 1)
	assert.Equal(t, "p.Good::f", g.JsniMethods()[0].Name)
	assert.Contains(t, g.JsniMethods()[0].Function, "return this.x;")

	bad, _ := s.Unit("p.Bad")
	assert.Equal(t, domain.StateError, bad.State())
	require.NotEmpty(t, bad.Problems())
	assert.Equal(t, domain.CategoryJsni, bad.Problems()[0].Category)
}

func TestBuild_CompilerFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	compiler := mocks.NewMockCompiler(ctrl)
	compiler.EXPECT().Compile(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("javac not found"))

	p := newProject(t)
	p.sources["A"] = source{}
	p.deps.Compiler = compiler

	_, err := p.build(compilation.Options{})
	require.NoError(t, err, "an empty batch never reaches the compiler")

	_, err = p.build(compilation.Options{}, "A")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInternalCompiler)
}

func TestAddGeneratedUnits(t *testing.T) {
	p := newProject(t)
	p.sources["A"] = source{}
	p.sources["Gen"] = source{refs: []string{"A"}, methods: []string{"create"}}

	s, err := p.build(compilation.Options{}, "A")
	require.NoError(t, err)
	p.calls = nil

	require.NoError(t, s.AddGeneratedUnits(context.Background(), p.inputs("Gen")))
	assert.Equal(t, [][]string{{"Gen"}}, p.calls)
	assert.Equal(t, domain.StateChecked, state(t, s, "Gen"))
	gen, _ := s.Unit("p.Gen")
	assert.True(t, gen.IsGenerated())
	assert.NotNil(t, s.TypeOracle().FindType("p.Gen"))
	assert.NotNil(t, s.TypeOracle().FindType("p.A"))
	assert.Equal(t, 1, s.Stats().Generated)

	// A fresh state finds the generated unit by content id.
	s, err = p.build(compilation.Options{}, "A")
	require.NoError(t, err)
	p.calls = nil
	require.NoError(t, s.AddGeneratedUnits(context.Background(), p.inputs("Gen")))
	assert.Empty(t, p.calls)
	assert.Equal(t, 1, s.Stats().CachedGenerated)
	assert.NotNil(t, s.TypeOracle().FindType("p.Gen"))
}

func TestBuild_Cancelled(t *testing.T) {
	p := newProject(t)
	p.sources["A"] = source{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := compilation.Build(ctx, p.deps, compilation.Options{}, p.inputs("A"))
	require.ErrorIs(t, err, context.Canceled)
}
