package domain

import "path/filepath"

const (
	// JavelinDirName is the name of the internal workspace directory.
	JavelinDirName = ".javelin"

	// CacheDirName is the name of the cache directory.
	CacheDirName = "cache"

	// UnitCacheDirName is the name of the persistent unit cache directory.
	UnitCacheDirName = "units"

	// ClassOutputDirName is the name of the directory compiled class files are written to.
	ClassOutputDirName = "classes"

	// BlobFileName is the name of the append-only blob store file.
	BlobFileName = "blobs.bin"

	// UnitCacheFilePrefix prefixes every persistent unit cache log file.
	UnitCacheFilePrefix = "unit-cache-"

	// UnitCacheFileSuffix is the extension of persistent unit cache log files.
	UnitCacheFileSuffix = ".log"

	// ConfigFileName is the name of the project configuration file.
	ConfigFileName = "javelin.yaml"

	// EnvPersistentCache toggles the persistent unit cache.
	EnvPersistentCache = "JAVELIN_PERSISTENT_UNIT_CACHE"

	// EnvPersistentCacheDir overrides the directory of the persistent unit cache.
	EnvPersistentCacheDir = "JAVELIN_PERSISTENT_UNIT_CACHE_DIR"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultJavelinPath returns the default root directory for javelin metadata.
func DefaultJavelinPath() string {
	return JavelinDirName
}

// DefaultUnitCachePath returns the default path for the persistent unit cache.
// It joins .javelin, cache, and units.
func DefaultUnitCachePath() string {
	return filepath.Join(JavelinDirName, CacheDirName, UnitCacheDirName)
}

// DefaultClassOutputPath returns the default path for compiled class files.
// It joins .javelin and classes.
func DefaultClassOutputPath() string {
	return filepath.Join(JavelinDirName, ClassOutputDirName)
}
