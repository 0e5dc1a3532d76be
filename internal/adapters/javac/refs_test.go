package javac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/javelin/internal/core/domain"
)

func newBatchFile(loc, pkg string, types []*domain.TypeDecl, refs ...domain.TypeRef) *batchFile {
	return &batchFile{
		input: &domain.SourceInput{Unit: domain.UnitSource{DisplayLocation: loc}},
		decl:  &domain.Declaration{Package: pkg, Types: types, TypeRefs: refs},
	}
}

func TestRefIndex_Lookup(t *testing.T) {
	a := newBatchFile("src/p/A.java", "p", []*domain.TypeDecl{{
		Name:         "A",
		InternalName: "p/A",
		Nested: []*domain.TypeDecl{
			{Name: "Inner", InternalName: "p/A$Inner"},
			{InternalName: "p/A$1", Local: true},
		},
	}})
	str := newBatchFile("src/java/lang/String.java", "java.lang", []*domain.TypeDecl{{
		Name: "String", InternalName: "java/lang/String",
	}})
	top := newBatchFile("src/Top.java", "", []*domain.TypeDecl{{Name: "Top", InternalName: "Top"}})
	idx := newRefIndex([]*batchFile{a, str, top}, nil)

	tests := []struct {
		name      string
		pkg       string
		ref       string
		qualified bool
		want      string
		found     bool
	}{
		{"qualified", "q", "p.A", true, "src/p/A.java", true},
		{"qualified nested", "q", "p.A.Inner", true, "src/p/A.java", true},
		{"same package", "p", "A", false, "src/p/A.java", true},
		{"java.lang", "p", "String", false, "src/java/lang/String.java", true},
		{"default package", "", "Top", false, "src/Top.java", true},
		{"other package simple name", "q", "A", false, "", false},
		{"local classes are not indexed", "p", "p.A.1", true, "", false},
		{"unknown", "p", "x.Y", true, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, ok := idx.lookup(tt.pkg, tt.ref, tt.qualified)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, loc)
		})
	}
}

func TestRefIndex_Annotate(t *testing.T) {
	b := newBatchFile("src/p/B.java", "p", []*domain.TypeDecl{{Name: "B", InternalName: "p/B"}})
	c := newBatchFile("src/q/C.java", "q", []*domain.TypeDecl{{Name: "C", InternalName: "q/C"}})
	a := newBatchFile("src/p/A.java", "p", []*domain.TypeDecl{{Name: "A", InternalName: "p/A"}},
		domain.TypeRef{Name: "q.C", Qualified: true, Line: 2},
		domain.TypeRef{Name: "B", Line: 3},
		domain.TypeRef{Name: "A", Line: 4},
		domain.TypeRef{Name: "lib.Ext", Qualified: true, Line: 5, AnnotationType: true},
		domain.TypeRef{Name: "lib.Ext", Qualified: true, Line: 9},
		domain.TypeRef{Name: "java.util.List", Qualified: true, Line: 6},
		domain.TypeRef{Name: "Unknown", Line: 7},
	)
	idx := newRefIndex([]*batchFile{a, b, c}, nil)

	idx.annotate(a)

	assert.Equal(t, []string{"src/p/B.java", "src/q/C.java"}, a.decl.FileRefs)
	assert.Equal(t, []domain.BinaryRef{{TypeName: "lib.Ext", Line: 5, IsAnnotationType: true}}, a.decl.BinaryRefs)
}

func TestRefIndex_AnnotateWithoutReferences(t *testing.T) {
	a := newBatchFile("src/p/A.java", "p", []*domain.TypeDecl{{Name: "A", InternalName: "p/A"}})
	newRefIndex([]*batchFile{a}, nil).annotate(a)

	assert.NotNil(t, a.decl.FileRefs)
	assert.Empty(t, a.decl.FileRefs)
	assert.Empty(t, a.decl.BinaryRefs)
}

func TestIsJRE(t *testing.T) {
	assert.True(t, isJRE("java.util.List"))
	assert.True(t, isJRE("javax.annotation.Nullable"))
	assert.True(t, isJRE("jdk.internal.Foo"))
	assert.True(t, isJRE("sun.misc.Unsafe"))
	assert.False(t, isJRE("javalike.Thing"))
	assert.False(t, isJRE("com.example.Thing"))
}
