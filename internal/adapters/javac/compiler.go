// Package javac implements the foreign compiler port by driving the JDK's javac.
//
// Declarations come from the tree-sitter front end; bytecode, diagnostics and the final
// binary names come from javac. Each batch runs in a scratch directory that is removed
// when Compile returns.
package javac

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"go.trai.ch/javelin/internal/core/domain"
	"go.trai.ch/javelin/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Compiler = (*Compiler)(nil)

// Options configures the compiler.
type Options struct {
	// Javac is the javac executable, looked up on PATH when not absolute.
	Javac string
	// Classpath lists extra jars and class directories.
	Classpath []string
	// WorkDir is where scratch directories are created; the system temp dir when empty.
	WorkDir string
}

// Compiler implements ports.Compiler.
type Compiler struct {
	opts   Options
	parser ports.SourceParser
	reader ports.ClassReader
	blobs  ports.BlobStore
	tracer ports.Tracer
	logger ports.Logger
	runner *runner
}

// New creates a compiler that stores class bytes in blobs.
func New(
	opts Options,
	parser ports.SourceParser,
	reader ports.ClassReader,
	blobs ports.BlobStore,
	tracer ports.Tracer,
	logger ports.Logger,
) *Compiler {
	if opts.Javac == "" {
		opts.Javac = domain.DefaultJavac
	}
	return &Compiler{
		opts:   opts,
		parser: parser,
		reader: reader,
		blobs:  blobs,
		tracer: tracer,
		logger: logger,
		runner: &runner{logger: logger},
	}
}

// batchFile ties one input to its scratch path and declaration.
type batchFile struct {
	input *domain.SourceInput
	path  string
	decl  *domain.Declaration
}

// Compile parses every input, runs javac over the batch and attaches the produced
// classes to the declarations.
func (c *Compiler) Compile(
	ctx context.Context,
	inputs []*domain.SourceInput,
	valid domain.ClassIndex,
) ([]*domain.CompileOutput, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	scratch, err := os.MkdirTemp(c.opts.WorkDir, "javelin-javac-*")
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrCompilerFailed.Error())
	}
	defer func() { _ = os.RemoveAll(scratch) }()

	srcDir := filepath.Join(scratch, "src")
	cpDir := filepath.Join(scratch, "classpath")

	files := make([]*batchFile, len(inputs))
	byPath := make(map[string]*batchFile, len(inputs))
	for i, in := range inputs {
		decl, err := c.parser.Parse(ctx, in)
		if err != nil {
			return nil, err
		}
		path := filepath.Join(srcDir, filepath.FromSlash(sourcePath(in, decl)))
		if err := writeFile(path, in.Source); err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrCompilerFailed.Error()), "unit", in.Unit.TypeName)
		}
		files[i] = &batchFile{input: in, path: path, decl: decl}
		byPath[path] = files[i]
	}

	if err := c.writeClasspath(cpDir, inputs, valid); err != nil {
		return nil, err
	}

	pending := files
	for attempt := 0; len(pending) > 0; attempt++ {
		outDir := filepath.Join(scratch, "out", strconv.Itoa(attempt))
		failed, err := c.runJavac(ctx, pending, byPath, cpDir, outDir)
		if err != nil {
			return nil, err
		}
		if len(failed) == 0 {
			if err := c.collectClasses(outDir, pending); err != nil {
				return nil, err
			}
			break
		}
		// javac writes no class files when any input fails, so the inputs without
		// errors are compiled again on their own.
		next := make([]*batchFile, 0, len(pending))
		for _, f := range pending {
			if !failed[f] {
				f.decl.Problems = nil
				next = append(next, f)
			}
		}
		if len(next) == len(pending) {
			break
		}
		pending = next
	}

	index := newRefIndex(files, valid)
	out := make([]*domain.CompileOutput, len(files))
	for i, f := range files {
		index.annotate(f)
		out[i] = &domain.CompileOutput{Input: f.input, Declaration: f.decl}
	}
	return out, nil
}

// runJavac compiles files and attaches diagnostics. It returns the files with errors.
func (c *Compiler) runJavac(
	ctx context.Context,
	files []*batchFile,
	byPath map[string]*batchFile,
	cpDir, outDir string,
) (map[*batchFile]bool, error) {
	if err := os.MkdirAll(outDir, domain.DirPerm); err != nil {
		return nil, zerr.Wrap(err, domain.ErrCompilerFailed.Error())
	}

	ctx, span := c.tracer.Start(ctx, "javac", ports.WithAttribute("files", len(files)))
	defer span.End()

	classpath := append([]string{cpDir}, c.opts.Classpath...)
	args := []string{
		"-d", outDir,
		"-g",
		"-parameters",
		"-proc:none",
		"-implicit:none",
		"-encoding", "UTF-8",
		"-Xmaxerrs", "100000",
		"-Xmaxwarns", "100000",
		"-sourcepath", "",
		"-cp", strings.Join(classpath, string(os.PathListSeparator)),
	}
	for _, f := range files {
		args = append(args, f.path)
	}

	output, err := c.runner.run(ctx, c.opts.Javac, args, filepath.Dir(outDir), span)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	failed := make(map[*batchFile]bool)
	for _, d := range parseDiagnostics(output) {
		f := byPath[d.path]
		if f == nil {
			f = byPath[filepath.Clean(d.path)]
		}
		if f == nil {
			c.logger.Debug("javac reported a problem in an unknown file: " + d.path)
			continue
		}
		f.decl.AddProblem(d.problem)
		if d.problem.IsError() {
			failed[f] = true
		}
	}
	span.SetAttribute("failed", len(failed))
	return failed, nil
}

// writeClasspath materializes the classes of valid units that are not being recompiled.
func (c *Compiler) writeClasspath(dir string, inputs []*domain.SourceInput, valid domain.ClassIndex) error {
	recompiled := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		recompiled[in.Unit.TypeName] = true
	}

	seen := make(map[*domain.CompiledClass]bool, len(valid))
	for _, cc := range valid {
		if seen[cc] {
			continue
		}
		seen[cc] = true
		if u := cc.Unit(); u != nil && recompiled[u.TypeName()] {
			continue
		}
		data, err := cc.Bytes()
		if err != nil {
			c.logger.Debug("skipping class without payload: " + cc.InternalName())
			continue
		}
		path := filepath.Join(dir, filepath.FromSlash(cc.InternalName())+".class")
		if err := writeFile(path, data); err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrCompilerFailed.Error()), "class", cc.InternalName())
		}
	}
	return nil
}

// sourcePath is the path javac expects for a unit, relative to the source root.
func sourcePath(in *domain.SourceInput, decl *domain.Declaration) string {
	if in.Unit.ResourcePath != "" {
		return filepath.ToSlash(in.Unit.ResourcePath)
	}
	name := domain.SimpleName(in.Unit.TypeName) + ".java"
	if decl.Package == "" {
		return name
	}
	return strings.ReplaceAll(decl.Package, ".", "/") + "/" + name
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return err
	}
	return os.WriteFile(path, data, domain.FilePerm)
}

// topLevelNames returns the internal names of a file's top-level types, or the
// package-info name for package-info.java.
func topLevelNames(f *batchFile) []string {
	names := make([]string, 0, len(f.decl.Types))
	for _, td := range f.decl.Types {
		names = append(names, td.InternalName)
	}
	if len(names) == 0 && strings.HasSuffix(f.path, "package-info.java") {
		names = append(names, strings.TrimPrefix(
			strings.ReplaceAll(f.decl.Package, ".", "/")+"/package-info", "/"))
	}
	slices.Sort(names)
	return names
}
