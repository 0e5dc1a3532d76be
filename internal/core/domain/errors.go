package domain

import (
	"errors"

	"go.trai.ch/zerr"
)

var (
	// ErrIllegalTransition is returned when a compilation unit is asked to move to a state
	// its current state does not allow.
	ErrIllegalTransition = zerr.New("illegal compilation unit state transition")

	// ErrMissingDeclaration is returned when a unit is checked without a compiled declaration.
	ErrMissingDeclaration = zerr.New("compilation unit has no compiled declaration")

	// ErrClassAlreadyOwned is returned when a compiled class is attached to a second unit.
	ErrClassAlreadyOwned = zerr.New("compiled class already belongs to a unit")

	// ErrEnclosingCycle is returned when a unit's classes form an enclosing-class cycle.
	ErrEnclosingCycle = zerr.New("enclosing class chain is cyclic")

	// ErrInternalCompiler marks a failure caused by an internal inconsistency rather than by
	// the user's sources. It aborts the current batch.
	ErrInternalCompiler = zerr.New("internal compiler error")

	// ErrCompilerFailed is returned when the foreign compiler cannot be run at all.
	ErrCompilerFailed = zerr.New("failed to run compiler")

	// ErrCompilationErrors is returned when a strict build finishes with units in error.
	ErrCompilationErrors = zerr.New("compilation finished with errors")

	// ErrUnitHasErrors is logged for each compilation unit whose compile result carries errors.
	ErrUnitHasErrors = zerr.New("errors in compilation unit")

	// ErrClassReadFailed is returned when a class payload cannot be decoded.
	ErrClassReadFailed = zerr.New("failed to read class payload")

	// ErrBlobNotFound is returned when a blob token does not refer to stored data.
	ErrBlobNotFound = zerr.New("blob not found")

	// ErrBlobStoreOpenFailed is returned when the blob store backing file cannot be opened.
	ErrBlobStoreOpenFailed = zerr.New("failed to open blob store")

	// ErrBlobWriteFailed is returned when a blob cannot be appended to the store.
	ErrBlobWriteFailed = zerr.New("failed to write blob")

	// ErrBlobReadFailed is returned when a blob cannot be read back.
	ErrBlobReadFailed = zerr.New("failed to read blob")

	// ErrCacheDirCreateFailed is returned when the unit cache directory cannot be created.
	ErrCacheDirCreateFailed = zerr.New("failed to create unit cache directory")

	// ErrCacheWriteFailed is returned when a unit cannot be appended to the cache log.
	ErrCacheWriteFailed = zerr.New("failed to write unit cache")

	// ErrCacheReadFailed is returned when a unit cache log cannot be replayed.
	ErrCacheReadFailed = zerr.New("failed to read unit cache")

	// ErrCacheClosed is returned when the unit cache is used after Close.
	ErrCacheClosed = zerr.New("unit cache is closed")

	// ErrCacheShutdownTimeout is returned when the cache writer does not stop in time.
	ErrCacheShutdownTimeout = zerr.New("timed out waiting for unit cache writer")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidConfig is returned when the config file holds values that cannot be used.
	ErrInvalidConfig = zerr.New("invalid configuration")

	// ErrSourceReadFailed is returned when a source resource cannot be read.
	ErrSourceReadFailed = zerr.New("failed to read source")

	// ErrSourceParseFailed is returned when the source front end cannot parse a file.
	ErrSourceParseFailed = zerr.New("failed to parse source")

	// ErrWatcherFailed is returned when the file system watcher cannot be started.
	ErrWatcherFailed = zerr.New("failed to start watcher")

	// ErrMalformedSignature is returned when a generic signature cannot be parsed.
	ErrMalformedSignature = zerr.New("malformed generic signature")

	// ErrMalformedAnnotation is returned when an annotation value has an unexpected shape.
	ErrMalformedAnnotation = zerr.New("malformed annotation value")
)

// InternalError marks err as an internal compiler error so callers can match it with
// errors.Is(err, ErrInternalCompiler).
func InternalError(err error, msg string) error {
	return errors.Join(ErrInternalCompiler, zerr.Wrap(err, msg))
}
