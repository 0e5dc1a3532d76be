package ports

import "go.trai.ch/javelin/internal/core/typeoracle"

// AnnotationTypeResolver finds the declaring type of an annotation.
//
//go:generate mockgen -source=annotation_resolver.go -destination=mocks/mock_annotation_resolver.go -package=mocks
type AnnotationTypeResolver interface {
	// ResolveAnnotationType returns the annotation type for a dotted binary name.
	ResolveAnnotationType(binaryName string) (*typeoracle.ClassType, bool)
}
