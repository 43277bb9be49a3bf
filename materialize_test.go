package packarc

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packarc/packarc/internal/testutil"
)

var elfMagic = []byte{0x7F, 0x45, 0x4C, 0x46}

func nativeFixture(t *testing.T, opts ...Option) *Archive {
	t.Helper()
	container := testutil.Container(
		testutil.Nested("dep.pkg",
			testutil.File("native/libdemo.so", elfMagic),
		),
	)
	opts = append([]Option{WithTempDir(t.TempDir())}, opts...)
	return newArchiveFrom(t, container, Header{Layout: LayoutNested}, opts...)
}

func TestIsNativeLibrary(t *testing.T) {
	assert.True(t, IsNativeLibrary("native/libdemo.so"))
	assert.True(t, IsNativeLibrary("demo.dll"))
	assert.True(t, IsNativeLibrary("lib/demo.dylib"))
	assert.False(t, IsNativeLibrary("util/Helper.bin"))
	assert.False(t, IsNativeLibrary("notes.txt"))
}

func TestMaterializeRoundTrip(t *testing.T) {
	a := nativeFixture(t)

	path, err := a.Materialize("native/libdemo.so")
	require.NoError(t, err)

	resolved, err := a.Resolve("native/libdemo.so")
	require.NoError(t, err)
	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, resolved, written)

	base := filepath.Base(path)
	assert.True(t, strings.HasPrefix(base, "libdemo-"))
	assert.True(t, strings.HasSuffix(base, ".so"))
}

func TestMaterializePermissions(t *testing.T) {
	a := nativeFixture(t)

	path, err := a.Materialize("native/libdemo.so")
	require.NoError(t, err)

	fi, err := os.Stat(path)
	require.NoError(t, err)
	mode := fi.Mode().Perm()
	assert.Equal(t, os.FileMode(0o500), mode)
	assert.Zero(t, mode&0o222, "file must not be writable")
	assert.NotZero(t, mode&0o100, "file must be executable")
}

func TestMaterializeIdempotent(t *testing.T) {
	a := nativeFixture(t)

	first, err := a.Materialize("native/libdemo.so")
	require.NoError(t, err)
	second, err := a.Materialize("native/libdemo.so")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestMaterializeRecreatesVanishedFile(t *testing.T) {
	a := nativeFixture(t)

	first, err := a.Materialize("native/libdemo.so")
	require.NoError(t, err)
	require.NoError(t, os.Remove(first))

	second, err := a.Materialize("native/libdemo.so")
	require.NoError(t, err)
	data, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, elfMagic, data)
}

func TestMaterializeConcurrent(t *testing.T) {
	a := nativeFixture(t)

	paths := make([]string, 16)
	var wg sync.WaitGroup
	for i := range paths {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := a.Materialize("native/libdemo.so")
			assert.NoError(t, err)
			paths[i] = p
		}()
	}
	wg.Wait()

	for _, p := range paths[1:] {
		assert.Equal(t, paths[0], p)
	}
}

func TestMaterializeNotNative(t *testing.T) {
	a := nativeFixture(t)

	_, err := a.Materialize("notes.txt")
	assert.ErrorIs(t, err, ErrNotNative)
}

func TestMaterializeMiss(t *testing.T) {
	a := nativeFixture(t)

	_, err := a.Materialize("native/libother.so")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

type stubNativeResolver struct {
	path string
}

func (s *stubNativeResolver) Resolve(string) ([]byte, error) { return nil, fs.ErrNotExist }
func (s *stubNativeResolver) Exists(string) bool             { return false }
func (s *stubNativeResolver) Materialize(string) (string, error) {
	return s.path, nil
}

func TestMaterializeFallback(t *testing.T) {
	stub := &stubNativeResolver{path: "/usr/lib/libsystem.so"}
	a := nativeFixture(t, WithNext(stub))

	path, err := a.Materialize("native/libsystem.so")
	require.NoError(t, err)
	assert.Equal(t, "/usr/lib/libsystem.so", path)
}

func TestCloseRemovesMaterializedFiles(t *testing.T) {
	a := nativeFixture(t)

	path, err := a.Materialize("native/libdemo.so")
	require.NoError(t, err)
	require.FileExists(t, path)

	require.NoError(t, a.Close())
	assert.NoFileExists(t, path)
}

func TestMaterializeAfterClose(t *testing.T) {
	a := nativeFixture(t)
	require.NoError(t, a.Close())

	_, err := a.Materialize("native/libdemo.so")
	assert.ErrorIs(t, err, ErrClosed)
}
