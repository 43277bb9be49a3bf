// Package scanner streams entries out of a packed container's central
// directory.
//
// A Container wraps one parsed archive and yields its entries in
// physical order. Entry payloads are opened on demand so callers decide
// how much of the archive becomes resident: the eager index reads every
// payload up front, the lazy index re-opens individual entries by name.
package scanner

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/klauspost/compress/flate"
)

// ErrCorrupt is returned when a container's structural markers are
// missing or inconsistent.
var ErrCorrupt = errors.New("packarc: corrupt archive")

// Entry describes a single container entry.
type Entry struct {
	Name  string
	IsDir bool
	Size  int64

	open func() (io.ReadCloser, error)
}

// Open returns a reader over the entry's payload. Directory entries
// have no payload and cannot be opened.
func (e Entry) Open() (io.ReadCloser, error) {
	if e.open == nil {
		return nil, fmt.Errorf("packarc: entry %s has no payload", e.Name)
	}
	return e.open()
}

// Bytes reads the entry's full payload.
func (e Entry) Bytes() ([]byte, error) {
	rc, err := e.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Container provides ordered and random access to a parsed archive.
type Container struct {
	zr     *zip.Reader
	byName map[string]*zip.File
}

// Open parses the central directory of the archive backed by r.
// Structural failures are reported as ErrCorrupt.
func Open(r io.ReaderAt, size int64) (*Container, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	zr.RegisterDecompressor(zip.Deflate, func(r io.Reader) io.ReadCloser {
		return flate.NewReader(r)
	})

	byName := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		if _, ok := byName[f.Name]; !ok {
			byName[f.Name] = f
		}
	}
	return &Container{zr: zr, byName: byName}, nil
}

// Entries yields the container's entries in archive physical order.
func (c *Container) Entries() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for _, f := range c.zr.File {
			if !yield(c.entry(f)) {
				return
			}
		}
	}
}

// Lookup returns the entry with the exact name, if present.
func (c *Container) Lookup(name string) (Entry, bool) {
	f, ok := c.byName[name]
	if !ok {
		return Entry{}, false
	}
	return c.entry(f), true
}

// Len returns the number of entries in the container.
func (c *Container) Len() int {
	return len(c.zr.File)
}

func (c *Container) entry(f *zip.File) Entry {
	e := Entry{
		Name:  f.Name,
		IsDir: f.FileInfo().IsDir(),
		Size:  int64(f.UncompressedSize64),
	}
	if !e.IsDir {
		e.open = f.Open
	}
	return e
}
