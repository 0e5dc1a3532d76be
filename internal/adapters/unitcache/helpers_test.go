package unitcache_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/javelin/internal/adapters/blobcache"
	"go.trai.ch/javelin/internal/core/domain"
)

func hashSigner(payload []byte) (string, error) {
	return domain.HashBytes(payload), nil
}

func newBlobs(t *testing.T) *blobcache.Store {
	t.Helper()
	blobs, err := blobcache.OpenTemp()
	require.NoError(t, err)
	t.Cleanup(func() { _ = blobs.Close() })
	return blobs
}

// checkedUnit builds a CHECKED unit for typeName with one class and the given
// qualified references.
func checkedUnit(
	t *testing.T,
	blobs *blobcache.Store,
	typeName string,
	lastModified int64,
	refs ...string,
) *domain.CompilationUnit {
	t.Helper()

	payload := []byte("class " + typeName + " rev " + string(rune('a'+lastModified%26)))
	tok, err := blobs.Put(payload)
	require.NoError(t, err)

	internal := strings.ReplaceAll(typeName, ".", "/")
	class := domain.NewCompiledClass(domain.ClassSpec{
		InternalName: internal,
		Enclosing:    domain.NoEnclosing,
		Payload:      tok,
		Blobs:        blobs,
		Signer:       hashSigner,
	})
	path := internal + ".java"
	src := domain.UnitSource{
		TypeName:        typeName,
		DisplayLocation: "/work/src/" + path,
		ResourcePath:    path,
		ContentID:       domain.NewContentID(typeName, payload),
		LastModified:    lastModified,
	}
	u, err := domain.NewCheckedUnit(src, domain.ProvenanceRuntime, domain.CheckedUnitParts{
		Classes:      []*domain.CompiledClass{class},
		Dependencies: domain.NewDependencies(domain.PackageOfTypeName(typeName), refs, nil, refs),
		Problems:     []domain.Problem{domain.NewWarning(domain.CategoryCompile, 3, "unchecked call")},
		MethodArgs:   domain.MethodArgNames{internal + ".run(int)": {"count"}},
	})
	require.NoError(t, err)
	return u
}

func bytesReader(data []byte) *bytes.Reader { return bytes.NewReader(data) }
