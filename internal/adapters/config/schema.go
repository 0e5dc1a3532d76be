package config

// Javelinfile represents the structure of the javelin.yaml configuration file.
type Javelinfile struct {
	Version          string         `yaml:"version"`
	SourceRoots      []string       `yaml:"sourceRoots"`
	Classpath        []string       `yaml:"classpath"`
	Javac            string         `yaml:"javac"`
	Cache            CacheDTO       `yaml:"cache"`
	Annotations      AnnotationsDTO `yaml:"annotations"`
	Strict           bool           `yaml:"strict"`
	DumpErrorSources bool           `yaml:"dumpErrorSources"`
}

// CacheDTO represents the cache section of the configuration.
type CacheDTO struct {
	Dir                  string `yaml:"dir"`
	Persistent           bool   `yaml:"persistent"`
	MemoryEntries        *int   `yaml:"memoryEntries"`
	ConsolidateThreshold *int   `yaml:"consolidateThreshold"`
}

// AnnotationsDTO represents the annotations section of the configuration.
type AnnotationsDTO struct {
	// SuppressMissing replaces the default list when set.
	SuppressMissing []string `yaml:"suppressMissing"`
}
