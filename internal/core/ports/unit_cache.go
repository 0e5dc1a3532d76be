package ports

import (
	"context"

	"go.trai.ch/javelin/internal/core/domain"
)

// UnitCache stores compilation units by resource path and by content id.
//
//go:generate mockgen -source=unit_cache.go -destination=mocks/mock_unit_cache.go -package=mocks
type UnitCache interface {
	// Add stores u, replacing any entry for the same resource path.
	Add(u *domain.CompilationUnit)
	// FindByPath returns the newest unit for a resource path.
	FindByPath(path string) (*domain.CompilationUnit, bool)
	// FindByContentID returns the unit for a specific source revision.
	FindByContentID(id domain.ContentID) (*domain.CompilationUnit, bool)
	// Remove drops u from both indexes.
	Remove(u *domain.CompilationUnit)
	// Cleanup compacts backing storage. It is never needed for correctness.
	Cleanup()
	// Len returns the number of cached units.
	Len() int
	// Close flushes pending writes and releases resources.
	Close(ctx context.Context) error
}
