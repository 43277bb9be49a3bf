package packarc

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/packarc/packarc/internal/pathutil"
)

// nativeSuffixes are the shared-library extensions eligible for
// materialization, one per major desktop platform.
var nativeSuffixes = [...]string{".so", ".dll", ".dylib"}

// IsNativeLibrary reports whether name carries a recognized
// native-library suffix.
func IsNativeLibrary(name string) bool {
	for _, s := range nativeSuffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

// Materialize resolves name and writes its bytes to a uniquely named
// temporary file the operating system's library loader can consume.
// The file is owner read-and-execute only and is removed by Close.
//
// Materialization is at-most-once per path: concurrent and repeated
// requests for the same path share one file. When the archive has no
// match, a chained NativeResolver is consulted; a path absent
// everywhere reports fs.ErrNotExist. I/O failures while writing the
// file surface as materialization errors distinct from a miss.
func (a *Archive) Materialize(name string) (string, error) {
	if a.closed.Load() {
		return "", ErrClosed
	}
	name = pathutil.Normalize(name)
	if !IsNativeLibrary(name) {
		return "", &fs.PathError{Op: "materialize", Path: name, Err: ErrNotNative}
	}
	a.log().Debug("materializing native library", "path", name)

	v, err, _ := a.matGroup.Do(name, func() (any, error) {
		a.matMu.Lock()
		path, ok := a.matFiles[name]
		a.matMu.Unlock()
		if ok {
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
			// The file vanished underneath us; write it again.
		}

		data, err := a.strategy.resolve(name)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
			if nr, ok := a.next.(NativeResolver); ok {
				return nr.Materialize(name)
			}
			return nil, &fs.PathError{Op: "materialize", Path: name, Err: fs.ErrNotExist}
		}

		path, err = a.writeNative(name, data)
		if err != nil {
			return nil, err
		}
		a.matMu.Lock()
		if a.matFiles == nil {
			// Closed while we were writing.
			a.matMu.Unlock()
			os.Remove(path)
			return nil, ErrClosed
		}
		a.matFiles[name] = path
		a.matMu.Unlock()
		return path, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// writeNative writes data to a fresh temporary file named after the
// path's stem and extension, then drops the write bit.
func (a *Archive) writeNative(name string, data []byte) (string, error) {
	stem, suffix := pathutil.StemSuffix(name)
	f, err := os.CreateTemp(a.tempDir, stem+"-*"+suffix)
	if err != nil {
		return "", &fs.PathError{Op: "materialize", Path: name, Err: err}
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", &fs.PathError{Op: "materialize", Path: name, Err: err}
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", &fs.PathError{Op: "materialize", Path: name, Err: err}
	}
	if err := os.Chmod(f.Name(), 0o500); err != nil {
		os.Remove(f.Name())
		return "", &fs.PathError{Op: "materialize", Path: name, Err: err}
	}
	return f.Name(), nil
}

// removeMaterialized deletes every temp file Materialize created.
// Removal is best effort; a file already gone is not an error.
func (a *Archive) removeMaterialized() {
	a.matMu.Lock()
	files := a.matFiles
	a.matFiles = nil
	a.matMu.Unlock()
	for name, path := range files {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			a.log().Warn("leaving materialized file behind",
				"path", name, "file", path, "error", err)
		}
	}
}
