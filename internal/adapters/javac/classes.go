package javac

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/javelin/internal/adapters/classfile"
	"go.trai.ch/javelin/internal/core/domain"
	"go.trai.ch/zerr"
)

// collectClasses reads the class files javac wrote and hands each one to the file that
// declares its top-level type.
func (c *Compiler) collectClasses(outDir string, files []*batchFile) error {
	owners := make(map[string]*batchFile)
	for _, f := range files {
		for _, name := range topLevelNames(f) {
			owners[name] = f
		}
	}

	grouped := make(map[*batchFile][]string)
	err := filepath.WalkDir(outDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".class") {
			return nil
		}
		rel, err := filepath.Rel(outDir, path)
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(filepath.ToSlash(rel), ".class")
		f := owners[topLevelOf(name)]
		if f == nil {
			c.logger.Debug("javac produced a class no input declares: " + name)
			return nil
		}
		grouped[f] = append(grouped[f], name)
		return nil
	})
	if err != nil {
		return zerr.Wrap(err, domain.ErrCompilerFailed.Error())
	}

	signer := classfile.Signer(c.reader)
	for _, f := range files {
		names, ok := grouped[f]
		if !ok {
			continue
		}
		classes, err := c.buildClasses(outDir, f, names, signer)
		if err != nil {
			return err
		}
		f.decl.Classes = classes
	}
	return nil
}

// buildClasses stores the class bytes and builds the unit's class arena, enclosing
// classes first.
func (c *Compiler) buildClasses(
	outDir string,
	f *batchFile,
	names []string,
	signer domain.SignatureFunc,
) ([]*domain.CompiledClass, error) {
	slices.SortFunc(names, func(a, b string) int {
		if d := strings.Count(a, "$") - strings.Count(b, "$"); d != 0 {
			return d
		}
		return strings.Compare(a, b)
	})

	decls := make(map[string]*domain.TypeDecl)
	f.decl.Walk(func(td *domain.TypeDecl) bool {
		decls[td.InternalName] = td
		return true
	})

	index := make(map[string]int, len(names))
	classes := make([]*domain.CompiledClass, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(outDir, filepath.FromSlash(name)+".class"))
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrCompilerFailed.Error()), "class", name)
		}
		tok, err := c.blobs.Put(data)
		if err != nil {
			return nil, zerr.With(err, "class", name)
		}

		enclosing := domain.NoEnclosing
		if idx, ok := index[domain.EnclosingInternalName(name)]; ok {
			enclosing = idx
		}
		spec := domain.ClassSpec{
			InternalName: name,
			Enclosing:    enclosing,
			Local:        domain.IsLocalName(name),
			Payload:      tok,
			Blobs:        c.blobs,
			Signer:       signer,
		}
		if td := decls[name]; td != nil {
			spec.Annotations = td.Annotations
			spec.Modifiers = td.Modifiers
			spec.MemberAnnotations = memberAnnotations(td)
		}
		if strings.HasSuffix(name, "package-info") {
			spec.Annotations = f.decl.PackageAnnotations
		}

		index[name] = len(classes)
		classes = append(classes, domain.NewCompiledClass(spec))
	}
	return classes, nil
}

// memberAnnotations collects the annotations of a type's fields and methods.
func memberAnnotations(td *domain.TypeDecl) map[string][]domain.Annotation {
	var out map[string][]domain.Annotation
	put := func(key string, as []domain.Annotation) {
		if len(as) == 0 {
			return
		}
		if out == nil {
			out = make(map[string][]domain.Annotation)
		}
		out[key] = as
	}
	for _, fd := range td.Fields {
		put(domain.FieldKey(fd.Name), fd.Annotations)
	}
	for _, m := range td.Methods {
		name := m.Name
		if m.Constructor {
			name = "<init>"
		}
		types := make([]string, 0, len(m.Params))
		for _, p := range m.Params {
			t := p.Type
			if p.Varargs {
				t += "..."
			}
			types = append(types, domain.ErasedSimpleName(t))
		}
		put(domain.MethodKey(name, types), m.Annotations)
	}
	return out
}

// topLevelOf strips nested class segments from an internal name.
func topLevelOf(internalName string) string {
	slash := strings.LastIndexByte(internalName, '/')
	if i := strings.IndexByte(internalName[slash+1:], '$'); i > 0 {
		return internalName[:slash+1+i]
	}
	return internalName
}
