package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/javelin/internal/core/domain"
)

// memBlobs is an in-memory payload store keyed by token hash.
type memBlobs map[string][]byte

func (m memBlobs) Read(t domain.BlobToken) ([]byte, error) {
	b, ok := m[t.Hash]
	if !ok {
		return nil, domain.ErrBlobNotFound
	}
	return b, nil
}

func (m memBlobs) put(t *testing.T, data *domain.ClassData) domain.BlobToken {
	t.Helper()
	b, err := json.Marshal(data)
	require.NoError(t, err)
	h := domain.HashBytes(b)
	m[h] = b
	return domain.BlobToken{Length: int64(len(b)), Hash: h}
}

func jsonSigner(payload []byte) (string, error) {
	var cd domain.ClassData
	if err := json.Unmarshal(payload, &cd); err != nil {
		return "", err
	}
	return domain.StructuralSignature(&cd), nil
}

func newClass(t *testing.T, blobs memBlobs, data *domain.ClassData) *domain.CompiledClass {
	t.Helper()
	return domain.NewCompiledClass(domain.ClassSpec{
		InternalName: data.InternalName,
		Enclosing:    domain.NoEnclosing,
		Payload:      blobs.put(t, data),
		Blobs:        blobs,
		Signer:       jsonSigner,
	})
}

func classData(name string, methods ...domain.MemberData) *domain.ClassData {
	return &domain.ClassData{
		InternalName: name,
		Access:       domain.AccPublic,
		SuperName:    "java/lang/Object",
		Methods:      methods,
	}
}

func publicMethod(name, desc string) domain.MemberData {
	return domain.MemberData{Name: name, Descriptor: desc, Access: domain.AccPublic}
}

func privateMethod(name, desc string) domain.MemberData {
	return domain.MemberData{Name: name, Descriptor: desc, Access: domain.AccPrivate}
}
