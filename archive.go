package packarc

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/packarc/packarc/internal/mmap"
	"github.com/packarc/packarc/internal/pathutil"
	"github.com/packarc/packarc/internal/scanner"
)

// defaultArchiveSuffix marks entries of a nested container that are
// themselves archives.
const defaultArchiveSuffix = ".pkg"

// Resolver is the contract shared by an Archive and any fallback in a
// resolution chain: resolve a logical path to bytes, or report whether
// it would resolve.
//
// Resolve returns fs.ErrNotExist when the path is absent everywhere; a
// miss is not a failure.
type Resolver interface {
	Resolve(name string) ([]byte, error)
	Exists(name string) bool
}

// Lister is optionally implemented by chained resolvers that can
// enumerate every candidate location for a path.
type Lister interface {
	ListAll(name string) []Locator
}

// NativeResolver is optionally implemented by chained resolvers that
// can produce an on-disk path for a native library.
type NativeResolver interface {
	Materialize(name string) (string, error)
}

// strategy is one resolution scheme over the outer container. Both
// implementations build their tables at construction and are read-only
// afterward.
type strategy interface {
	resolve(name string) ([]byte, error)
	exists(name string) bool
	locators(name string) []Locator
}

// Archive resolves logical paths against a nested packed container.
//
// An Archive is immutable after construction apart from the record of
// materialized native libraries, and is safe for concurrent use.
type Archive struct {
	header   Header
	strategy strategy
	reg      *Registrar
	next     Resolver
	logger   *slog.Logger

	suffix  string
	tempDir string
	regFn   RegisterFunc

	file   *mmap.File
	closed atomic.Bool

	matMu    sync.Mutex
	matGroup singleflight.Group
	matFiles map[string]string
}

var (
	_ Resolver       = (*Archive)(nil)
	_ Lister         = (*Archive)(nil)
	_ NativeResolver = (*Archive)(nil)
)

// Open opens the outer container at path, reads its descriptor entry,
// and builds the resolution strategy its layout selects. The returned
// archive holds the file open until Close.
func Open(path string, opts ...Option) (*Archive, error) {
	f, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	c, err := scanner.Open(f.ReaderAt(), f.Size())
	if err != nil {
		f.Close()
		return nil, &ArchiveError{Locator: path, Err: err}
	}

	hdr := Header{}
	if e, ok := c.Lookup(DescriptorEntry); ok {
		rc, err := e.Open()
		if err != nil {
			f.Close()
			return nil, &ArchiveError{Locator: path, Err: err}
		}
		hdr, err = ParseHeader(rc)
		rc.Close()
		if err != nil {
			f.Close()
			return nil, err
		}
	}

	a, err := newArchive(c, filepath.Base(path), hdr, opts)
	if err != nil {
		f.Close()
		return nil, err
	}
	a.file = f
	return a, nil
}

// New builds an archive over an already-open container stream with
// header metadata supplied by the caller. The reader must remain valid
// for the archive's lifetime.
func New(r io.ReaderAt, size int64, hdr Header, opts ...Option) (*Archive, error) {
	c, err := scanner.Open(r, size)
	if err != nil {
		return nil, &ArchiveError{Locator: "outer", Err: err}
	}
	return newArchive(c, "outer", hdr, opts)
}

func newArchive(c *scanner.Container, name string, hdr Header, opts []Option) (*Archive, error) {
	a := &Archive{
		header:   hdr,
		suffix:   defaultArchiveSuffix,
		matFiles: make(map[string]string),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.reg == nil {
		a.reg = NewRegistrar(a.regFn)
	}

	var err error
	switch hdr.Layout {
	case LayoutInline:
		a.strategy, err = newLazyIndex(c, hdr, a.reg, a.log())
	default:
		a.strategy, err = newEagerIndex(c, name, hdr, a.reg, a.suffix, a.log())
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Archive) log() *slog.Logger {
	if a.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.logger
}

// Header returns the container's governing descriptor fields.
func (a *Archive) Header() Header {
	return a.header
}

// Conflicts returns the divergent duplicate definitions found while
// indexing. Only nested containers detect conflicts; inline containers
// return nil.
func (a *Archive) Conflicts() []Conflict {
	if idx, ok := a.strategy.(*eagerIndex); ok {
		return idx.conflicts
	}
	return nil
}

// Resolve returns the bytes the logical path resolves to. When the
// active strategy has no match the chained fallback is consulted; a
// path absent everywhere reports fs.ErrNotExist.
func (a *Archive) Resolve(name string) ([]byte, error) {
	if a.closed.Load() {
		return nil, ErrClosed
	}
	name = pathutil.Normalize(name)
	a.log().Debug("resolving", "path", name)

	data, err := a.strategy.resolve(name)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	if a.next != nil {
		return a.next.Resolve(name)
	}
	return nil, &fs.PathError{Op: "resolve", Path: name, Err: fs.ErrNotExist}
}

// OpenResource returns a reader over the bytes the logical path
// resolves to, with the same search order as Resolve.
func (a *Archive) OpenResource(name string) (io.ReadCloser, error) {
	data, err := a.Resolve(name)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Exists reports whether Resolve would succeed for name, or whether
// name denotes a known namespace with no direct entry.
func (a *Archive) Exists(name string) bool {
	if a.closed.Load() {
		return false
	}
	name = pathutil.Normalize(name)
	if a.strategy.exists(name) {
		return true
	}
	if a.reg.Known(name) {
		return true
	}
	if a.next != nil {
		return a.next.Exists(name)
	}
	return false
}

// ListAll enumerates every candidate location for name: one locator per
// providing archive, a namespace placeholder when name is a known
// namespace, and whatever a chained fallback enumerates. Unlike
// Resolve, the search does not stop at the first match.
func (a *Archive) ListAll(name string) []Locator {
	if a.closed.Load() {
		return nil
	}
	name = pathutil.Normalize(name)
	out := a.strategy.locators(name)
	if a.reg.Known(name) {
		out = append(out, NamespaceLocator(pathutil.Namespace(name)))
	}
	if l, ok := a.next.(Lister); ok {
		out = append(out, l.ListAll(name)...)
	}
	return out
}

// Close removes materialized native-library files (best effort) and
// releases the container. The archive must not be used afterward.
func (a *Archive) Close() error {
	if a.closed.Swap(true) {
		return nil
	}
	a.removeMaterialized()
	if a.file != nil {
		return a.file.Close()
	}
	return nil
}
