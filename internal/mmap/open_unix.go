//go:build unix

package mmap

import (
	"bytes"
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// Open maps path read-only. Empty files and mapping failures fall back
// to plain descriptor reads.
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
	size := fi.Size()
	if size == 0 {
		return &File{ra: f, size: 0, close: f.Close}, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return &File{ra: f, size: size, close: f.Close}, nil
	}
	return &File{
		ra:   bytes.NewReader(data),
		size: size,
		close: func() error {
			return errors.Join(unix.Munmap(data), f.Close())
		},
	}, nil
}
