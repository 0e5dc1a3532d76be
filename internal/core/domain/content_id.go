package domain

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// ContentID identifies one revision of a compilation unit's source.
// Two ids are equal only when both the type name and the content hash match.
type ContentID struct {
	TypeName    string `json:"typeName"`
	ContentHash string `json:"contentHash"`
}

// NewContentID hashes source and pairs the digest with typeName.
func NewContentID(typeName string, source []byte) ContentID {
	return ContentID{
		TypeName:    typeName,
		ContentHash: HashBytes(source),
	}
}

// HashBytes returns the hex xxhash64 digest of data.
func HashBytes(data []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}

// IsZero reports whether id was never assigned.
func (id ContentID) IsZero() bool {
	return id.TypeName == "" && id.ContentHash == ""
}

func (id ContentID) String() string {
	return id.TypeName + ":" + id.ContentHash
}
