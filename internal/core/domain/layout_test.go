package domain_test

import (
	"path/filepath"
	"testing"

	"go.trai.ch/javelin/internal/core/domain"
)

func TestLayoutPaths(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{
			name:     "DefaultJavelinPath",
			got:      domain.DefaultJavelinPath(),
			expected: ".javelin",
		},
		{
			name:     "DefaultUnitCachePath",
			got:      domain.DefaultUnitCachePath(),
			expected: filepath.Join(".javelin", "cache", "units"),
		},
		{
			name:     "DefaultClassOutputPath",
			got:      domain.DefaultClassOutputPath(),
			expected: filepath.Join(".javelin", "classes"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("%s() = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}
}
