package packarc

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
)

type locatorKind uint8

const (
	locatorFile locatorKind = iota + 1
	locatorBuffer
	locatorEntry
	locatorNamespace
)

// Locator addresses resolved bytes wherever they live: a file on disk,
// an owned in-memory buffer, an entry of the outer container, or a
// namespace placeholder that carries no bytes at all.
//
// A single Open call dispatches on the variant, so callers never need
// to distinguish in-memory from on-disk origin. Opening a namespace
// placeholder fails with ErrIsNamespace, mirroring platforms where a
// directory handle cannot be read as a byte stream.
type Locator struct {
	kind locatorKind
	name string
	path string
	data []byte
	open func() (io.ReadCloser, error)
}

// FileLocator returns a locator for bytes stored at an on-disk path.
func FileLocator(name, path string) Locator {
	return Locator{kind: locatorFile, name: name, path: path}
}

// BufferLocator returns a locator owning in-memory bytes.
func BufferLocator(name string, data []byte) Locator {
	return Locator{kind: locatorBuffer, name: name, data: data}
}

// NamespaceLocator returns a placeholder locator for a known namespace
// with no direct entry.
func NamespaceLocator(namespace string) Locator {
	return Locator{kind: locatorNamespace, name: namespace}
}

func entryLocator(name string, open func() (io.ReadCloser, error)) Locator {
	return Locator{kind: locatorEntry, name: name, open: open}
}

// Name returns the logical path or namespace the locator addresses.
func (l Locator) Name() string {
	return l.name
}

// IsNamespace reports whether the locator is a namespace placeholder.
func (l Locator) IsNamespace() bool {
	return l.kind == locatorNamespace
}

// Open returns a reader over the located bytes.
func (l Locator) Open() (io.ReadCloser, error) {
	switch l.kind {
	case locatorFile:
		return os.Open(l.path)
	case locatorBuffer:
		return io.NopCloser(bytes.NewReader(l.data)), nil
	case locatorEntry:
		return l.open()
	case locatorNamespace:
		return nil, &fs.PathError{Op: "open", Path: l.name, Err: ErrIsNamespace}
	default:
		return nil, &fs.PathError{Op: "open", Path: l.name, Err: fs.ErrInvalid}
	}
}

func (l Locator) String() string {
	switch l.kind {
	case locatorFile:
		return "file:" + l.path
	case locatorBuffer:
		return fmt.Sprintf("buffer:%s(%d bytes)", l.name, len(l.data))
	case locatorEntry:
		return "entry:" + l.name
	case locatorNamespace:
		return "namespace:" + l.name
	default:
		return "invalid"
	}
}
