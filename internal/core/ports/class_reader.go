package ports

import "go.trai.ch/javelin/internal/core/domain"

// ClassReader decodes class payloads.
//
//go:generate mockgen -source=class_reader.go -destination=mocks/mock_class_reader.go -package=mocks
type ClassReader interface {
	Read(data []byte) (*domain.ClassData, error)
}
