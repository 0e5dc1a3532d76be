// Package blobcache implements a disk-backed, content-addressed blob store.
package blobcache

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/javelin/internal/core/domain"
	"go.trai.ch/zerr"
)

// headerSize is the record header: 8 bytes of xxhash followed by 8 bytes of length.
const headerSize = 16

// Store appends blobs to a single file. Each record is a header followed by the data;
// tokens point at the data. Identical content is written once.
type Store struct {
	mu        sync.Mutex
	file      *os.File
	size      int64
	index     map[string]domain.BlobToken
	temporary bool
}

// Open opens or creates the blob file at path and indexes the records it holds.
// A partially written trailing record is cut off.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrBlobStoreOpenFailed.Error()), "path", path)
	}
	//nolint:gosec // path is the configured cache location
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, domain.FilePerm)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrBlobStoreOpenFailed.Error()), "path", path)
	}
	s := &Store{file: f, index: make(map[string]domain.BlobToken)}
	if err := s.scan(); err != nil {
		_ = f.Close()
		return nil, zerr.With(err, "path", path)
	}
	return s, nil
}

// OpenTemp creates a store in a temporary file that is removed on Close.
func OpenTemp() (*Store, error) {
	f, err := os.CreateTemp("", "javelin-blobs-*.bin")
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrBlobStoreOpenFailed.Error())
	}
	return &Store{file: f, index: make(map[string]domain.BlobToken), temporary: true}, nil
}

func (s *Store) scan() error {
	info, err := s.file.Stat()
	if err != nil {
		return zerr.Wrap(err, domain.ErrBlobStoreOpenFailed.Error())
	}
	end := info.Size()
	var (
		header [headerSize]byte
		off    int64
	)
	for off+headerSize <= end {
		if _, err := s.file.ReadAt(header[:], off); err != nil {
			return zerr.Wrap(err, domain.ErrBlobStoreOpenFailed.Error())
		}
		length := int64(binary.BigEndian.Uint64(header[8:]))
		if length < 0 || off+headerSize+length > end {
			break
		}
		tok := domain.BlobToken{
			Offset: off + headerSize,
			Length: length,
			Hash:   formatHash(binary.BigEndian.Uint64(header[:8])),
		}
		s.index[tok.Hash] = tok
		off += headerSize + length
	}
	if off != end {
		if err := s.file.Truncate(off); err != nil {
			return zerr.Wrap(err, domain.ErrBlobStoreOpenFailed.Error())
		}
	}
	s.size = off
	return nil
}

// Put stores data and returns its token.
func (s *Store) Put(data []byte) (domain.BlobToken, error) {
	sum := xxhash.Sum64(data)
	hash := formatHash(sum)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return domain.BlobToken{}, domain.ErrBlobWriteFailed
	}
	if tok, ok := s.index[hash]; ok && tok.Length == int64(len(data)) {
		return tok, nil
	}

	record := make([]byte, headerSize+len(data))
	binary.BigEndian.PutUint64(record[:8], sum)
	binary.BigEndian.PutUint64(record[8:headerSize], uint64(len(data)))
	copy(record[headerSize:], data)
	if _, err := s.file.WriteAt(record, s.size); err != nil {
		return domain.BlobToken{}, zerr.Wrap(err, domain.ErrBlobWriteFailed.Error())
	}
	tok := domain.BlobToken{Offset: s.size + headerSize, Length: int64(len(data)), Hash: hash}
	s.size += int64(len(record))
	s.index[hash] = tok
	return tok, nil
}

// Read returns the blob for tok.
func (s *Store) Read(tok domain.BlobToken) ([]byte, error) {
	r, err := s.section(tok)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, tok.Length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrBlobReadFailed.Error()), "offset", tok.Offset)
	}
	return buf, nil
}

// Transfer streams the blob for tok to w.
func (s *Store) Transfer(tok domain.BlobToken, w io.Writer) (int64, error) {
	r, err := s.section(tok)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(w, r)
	if err != nil {
		return n, zerr.With(zerr.Wrap(err, domain.ErrBlobReadFailed.Error()), "offset", tok.Offset)
	}
	return n, nil
}

func (s *Store) section(tok domain.BlobToken) (*io.SectionReader, error) {
	s.mu.Lock()
	f, size := s.file, s.size
	s.mu.Unlock()
	if f == nil {
		return nil, domain.ErrBlobReadFailed
	}
	if tok.Offset < headerSize || tok.Length < 0 || tok.Offset+tok.Length > size {
		return nil, zerr.With(zerr.With(domain.ErrBlobNotFound, "offset", tok.Offset), "length", tok.Length)
	}
	return io.NewSectionReader(f, tok.Offset, tok.Length), nil
}

// Len returns the number of distinct blobs.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.index)
}

// Size returns the number of bytes in the backing file.
func (s *Store) Size() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

// Close closes the backing file, removing it if it was temporary.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	name := s.file.Name()
	err := s.file.Close()
	s.file = nil
	if s.temporary {
		if rmErr := os.Remove(name); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			err = errors.Join(err, rmErr)
		}
	}
	return err
}

func formatHash(sum uint64) string {
	return fmt.Sprintf("%016x", sum)
}
