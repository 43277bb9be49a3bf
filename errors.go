package packarc

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/packarc/packarc/internal/indexfile"
	"github.com/packarc/packarc/internal/scanner"
)

// Errors re-exported from internal packages.
var (
	// ErrCorrupt is returned when a container's structural markers are
	// missing or inconsistent.
	ErrCorrupt = scanner.ErrCorrupt

	// ErrBadIndexVersion is returned when an inline container's index
	// document has a missing or unsupported version marker.
	ErrBadIndexVersion = indexfile.ErrBadVersion
)

// Sentinel errors specific to the packarc package.
var (
	// ErrMissingIndex is returned when an inline-layout container has no
	// index document to drive lazy resolution.
	ErrMissingIndex = errors.New("packarc: missing index document")

	// ErrIsNamespace is returned when opening a locator that denotes a
	// namespace rather than bytes.
	ErrIsNamespace = errors.New("packarc: namespace has no byte stream")

	// ErrNotNative is returned when Materialize is asked for a path
	// without a recognized native-library suffix.
	ErrNotNative = errors.New("packarc: not a native library path")

	// ErrClosed is returned when using an archive after Close.
	ErrClosed = errors.New("packarc: archive closed")
)

// ErrNotExist reports resolution misses. It aliases fs.ErrNotExist so
// callers can use errors.Is with either sentinel.
var ErrNotExist = fs.ErrNotExist

// ArchiveError reports a structural failure in a specific archive,
// naming the locator of the archive that could not be parsed.
type ArchiveError struct {
	Locator string
	Err     error
}

func (e *ArchiveError) Error() string {
	return fmt.Sprintf("packarc: archive %s: %v", e.Locator, e.Err)
}

func (e *ArchiveError) Unwrap() error {
	return e.Err
}
