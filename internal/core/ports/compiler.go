// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/javelin/internal/core/domain"
)

// Compiler is the foreign compiler. It turns source files into declarations with
// compiled classes and diagnostics.
//
//go:generate mockgen -source=compiler.go -destination=mocks/mock_compiler.go -package=mocks
type Compiler interface {
	// Compile compiles inputs against the classes of previously valid units.
	// One output is returned per input, in input order. Compile errors are reported as
	// problems on the declaration; an error return means the batch could not run.
	Compile(ctx context.Context, inputs []*domain.SourceInput, valid domain.ClassIndex) ([]*domain.CompileOutput, error)
}

// SourceParser is the source front end. It extracts the declaration tree of a single
// file without compiling it.
type SourceParser interface {
	Parse(ctx context.Context, input *domain.SourceInput) (*domain.Declaration, error)
}
