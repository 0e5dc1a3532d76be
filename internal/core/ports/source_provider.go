package ports

import (
	"context"

	"go.trai.ch/javelin/internal/core/domain"
)

// SourceProvider discovers the source files of a project.
//
//go:generate mockgen -source=source_provider.go -destination=mocks/mock_source_provider.go -package=mocks
type SourceProvider interface {
	// Discover returns every .java file under roots with its content id, sorted by
	// type name.
	Discover(ctx context.Context, roots []string) ([]*domain.SourceInput, error)
}
