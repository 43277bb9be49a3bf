//go:build !unix

package mmap

import "os"

// Open opens path for random-access reads.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &File{ra: f, size: fi.Size(), close: f.Close}, nil
}
