package javac

import (
	"slices"
	"strings"

	"go.trai.ch/javelin/internal/core/domain"
)

// refIndex maps source names to the display location of the unit declaring them, over
// both the batch and the previously valid units.
type refIndex struct {
	locations map[string]string
}

func newRefIndex(files []*batchFile, valid domain.ClassIndex) *refIndex {
	idx := &refIndex{locations: make(map[string]string, len(valid))}
	for name, cc := range valid {
		if u := cc.Unit(); u != nil {
			idx.locations[name] = u.DisplayLocation()
		}
	}
	for _, f := range files {
		loc := f.input.Unit.DisplayLocation
		f.decl.Walk(func(td *domain.TypeDecl) bool {
			if !td.Local {
				idx.locations[td.SourceName()] = loc
			}
			return !td.Local
		})
	}
	return idx
}

// lookup resolves a referenced name the way the dependency table does: qualified names
// directly, simple names in the unit's package and then in java.lang.
func (r *refIndex) lookup(pkg, name string, qualified bool) (string, bool) {
	if qualified {
		loc, ok := r.locations[name]
		return loc, ok
	}
	if pkg != "" {
		if loc, ok := r.locations[pkg+"."+name]; ok {
			return loc, true
		}
	} else if loc, ok := r.locations[name]; ok {
		return loc, true
	}
	loc, ok := r.locations["java.lang."+name]
	return loc, ok
}

// annotate fills the file references and binary-only references of a declaration.
// A qualified reference that no source unit declares, outside the JRE packages, can
// only have been satisfied from the classpath.
func (r *refIndex) annotate(f *batchFile) {
	own := f.input.Unit.DisplayLocation
	fileRefs := make(map[string]struct{})
	binary := make(map[string]bool)

	for _, ref := range f.decl.TypeRefs {
		loc, ok := r.lookup(f.decl.Package, ref.Name, ref.Qualified)
		if ok {
			if loc != own && loc != "" {
				fileRefs[loc] = struct{}{}
			}
			continue
		}
		if !ref.Qualified || isJRE(ref.Name) || binary[ref.Name] {
			continue
		}
		binary[ref.Name] = true
		f.decl.BinaryRefs = append(f.decl.BinaryRefs, domain.BinaryRef{
			TypeName:         ref.Name,
			Line:             ref.Line,
			InAnnotation:     ref.InAnnotation,
			IsAnnotationType: ref.AnnotationType,
		})
	}

	f.decl.FileRefs = make([]string, 0, len(fileRefs))
	for loc := range fileRefs {
		f.decl.FileRefs = append(f.decl.FileRefs, loc)
	}
	slices.Sort(f.decl.FileRefs)
}

func isJRE(name string) bool {
	return strings.HasPrefix(name, "java.") || strings.HasPrefix(name, "javax.") ||
		strings.HasPrefix(name, "jdk.") || strings.HasPrefix(name, "sun.")
}
