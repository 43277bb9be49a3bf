// Package mmap provides read-only random access to container files,
// memory-mapped where the platform supports it.
package mmap

import "io"

// File is an open container file with random access.
type File struct {
	ra    io.ReaderAt
	size  int64
	close func() error
}

// ReaderAt returns the file's random-access reader.
func (f *File) ReaderAt() io.ReaderAt {
	return f.ra
}

// Size returns the file's length in bytes.
func (f *File) Size() int64 {
	return f.size
}

// Close releases the mapping and the underlying descriptor.
func (f *File) Close() error {
	if f.close == nil {
		return nil
	}
	err := f.close()
	f.close = nil
	return err
}
