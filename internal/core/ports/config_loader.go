package ports

import "go.trai.ch/javelin/internal/core/domain"

// ConfigLoader defines the interface for loading the project configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads javelin.yaml from cwd or the nearest parent and applies the
	// environment overrides. Defaults are returned when no file exists.
	Load(cwd string) (*domain.Config, error)

	// DiscoverRoot walks up from cwd to the directory holding javelin.yaml.
	// It returns cwd when no file is found.
	DiscoverRoot(cwd string) (string, error)
}
