package ports

import (
	"io"

	"go.trai.ch/javelin/internal/core/domain"
)

// BlobStore is a disk-backed store that hands out tokens for byte blobs.
//
//go:generate mockgen -source=blob_store.go -destination=mocks/mock_blob_store.go -package=mocks
type BlobStore interface {
	// Put stores data and returns its token. Identical content yields the same token.
	Put(data []byte) (domain.BlobToken, error)
	// Read returns the blob for tok.
	Read(tok domain.BlobToken) ([]byte, error)
	// Transfer streams the blob for tok to w.
	Transfer(tok domain.BlobToken, w io.Writer) (int64, error)
	// Close releases the backing file.
	Close() error
}
