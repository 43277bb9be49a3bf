// Package testutil builds packed containers for tests.
package testutil

import (
	"archive/zip"
	"bytes"
	"strings"
)

// Entry describes one container entry to build.
type Entry struct {
	Name  string
	Data  []byte
	Dir   bool
	Store bool
}

// File returns a regular file entry.
func File(name string, data []byte) Entry {
	return Entry{Name: name, Data: data}
}

// Text returns a regular file entry with string content.
func Text(name, content string) Entry {
	return Entry{Name: name, Data: []byte(content)}
}

// Stored returns a regular file entry written without compression, so
// its payload appears verbatim in the container bytes.
func Stored(name string, data []byte) Entry {
	return Entry{Name: name, Data: data, Store: true}
}

// Dir returns a directory marker entry.
func Dir(name string) Entry {
	if !strings.HasSuffix(name, "/") {
		name += "/"
	}
	return Entry{Name: name, Dir: true}
}

// Nested returns a file entry whose payload is itself a container built
// from the given entries.
func Nested(name string, entries ...Entry) Entry {
	return Entry{Name: name, Data: Container(entries...)}
}

// Container assembles a zip container from the given entries, preserving
// their order.
func Container(entries ...Entry) []byte {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		name := e.Name
		if e.Dir && !strings.HasSuffix(name, "/") {
			name += "/"
		}
		method := zip.Deflate
		if e.Store {
			method = zip.Store
		}
		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: method})
		if err != nil {
			panic(err)
		}
		if !e.Dir {
			if _, err := w.Write(e.Data); err != nil {
				panic(err)
			}
		}
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
