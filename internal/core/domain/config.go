package domain

// Defaults applied when javelin.yaml leaves a setting out.
const (
	DefaultMemoryEntries         = 4096
	DefaultConsolidateThreshold  = 40
	DefaultJavac                 = "javac"
	DefaultCacheShutdownTimeoutS = 5
)

// Config is the resolved project configuration.
type Config struct {
	// Root is the directory holding javelin.yaml, or the working directory.
	Root string
	// SourceRoots are absolute directories scanned for .java files.
	SourceRoots []string
	// Classpath lists extra jars and class directories handed to the compiler.
	Classpath []string
	Javac     string
	Cache     CacheConfig
	// SuppressMissing lists annotation package prefixes whose absence is expected.
	SuppressMissing []string
	// Strict makes any unit with errors fail the build.
	Strict bool
	// DumpErrorSources writes the source of failing units to a temp file.
	DumpErrorSources bool
}

// CacheConfig controls the unit cache.
type CacheConfig struct {
	// Persistent enables the on-disk unit cache.
	Persistent bool
	// Dir is the persistent cache directory.
	Dir string
	// MemoryEntries bounds the in-memory cache.
	MemoryEntries int
	// ConsolidateThreshold is the log file count above which Cleanup rewrites the cache.
	ConsolidateThreshold int
}

// DefaultSuppressMissing lists the annotation packages that are commonly absent.
func DefaultSuppressMissing() []string {
	return []string{"javax.validation.", "com.google.gwt.validation."}
}
