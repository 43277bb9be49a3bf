package packarc

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packarc/packarc/internal/indexfile"
	"github.com/packarc/packarc/internal/testutil"
)

func writeContainer(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.pkg")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestOpenReadsDescriptor(t *testing.T) {
	container := testutil.Container(
		testutil.Text(DescriptorEntry, "Pack-Version: 1.0.7\nPack-Layout: inline\n"),
		testutil.File(IndexEntry, indexDoc([]string{indexfile.OuterSentinel, "app/"})),
		testutil.Text("app/config.txt", "k=v"),
	)
	a, err := Open(writeContainer(t, container))
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, "1.0.7", a.Header().Version)
	assert.Equal(t, LayoutInline, a.Header().Layout)

	data, err := a.Resolve("app/config.txt")
	require.NoError(t, err)
	assert.Equal(t, "k=v", string(data))
}

func TestOpenDefaultsToNestedLayout(t *testing.T) {
	container := testutil.Container(
		testutil.Nested("dep.pkg", testutil.Text("x.txt", "x")),
	)
	a, err := Open(writeContainer(t, container))
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, LayoutNested, a.Header().Layout)
	data, err := a.Resolve("x.txt")
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}

func TestOpenSearchPathHeader(t *testing.T) {
	container := testutil.Container(
		testutil.Text(DescriptorEntry,
			"Pack-Layout: nested\nPack-Search-Path: lib/a.pkg lib/b.pkg\n"),
	)
	a, err := Open(writeContainer(t, container))
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, []string{"lib/a.pkg", "lib/b.pkg"}, a.Header().SearchPath)
}

func TestOpenCorruptContainer(t *testing.T) {
	path := writeContainer(t, []byte("definitely not a container"))
	_, err := Open(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCorrupt)

	var ae *ArchiveError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, path, ae.Locator)
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.pkg"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestResolveNormalizesPath(t *testing.T) {
	a := nestedFixture(t)

	data, err := a.Resolve("/util/Helper.bin")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, data)
}

func TestOpenResource(t *testing.T) {
	a := nestedFixture(t)

	rc, err := a.OpenResource("app/config.txt")
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "k=v", string(b))

	_, err = a.OpenResource("missing/Thing.bin")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestResolverChain(t *testing.T) {
	fallback := nestedFixture(t)
	head := newArchiveFrom(t, testutil.Container(
		testutil.Nested("app.pkg",
			testutil.File("util/Helper.bin", []byte{0xAA}),
		),
	), Header{Layout: LayoutNested}, WithNext(fallback))

	// The head archive shadows the fallback for paths it defines.
	data, err := head.Resolve("util/Helper.bin")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAA}, data)

	// Unmatched paths flow down the chain.
	data, err = head.Resolve("app/config.txt")
	require.NoError(t, err)
	assert.Equal(t, "k=v", string(data))

	_, err = head.Resolve("missing/Thing.bin")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	assert.True(t, head.Exists("app/config.txt"))
	assert.False(t, head.Exists("missing/Thing.bin"))
}

func TestResolverChainListAll(t *testing.T) {
	fallback := nestedFixture(t)
	head := newArchiveFrom(t, testutil.Container(
		testutil.Nested("app.pkg",
			testutil.File("util/Helper.bin", []byte{0xAA}),
		),
	), Header{Layout: LayoutNested}, WithNext(fallback))

	locs := head.ListAll("util/Helper.bin")
	require.Len(t, locs, 3)

	head0, err := readLocator(locs[0])
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAA}, head0)
}

func TestSharedRegistrar(t *testing.T) {
	var declared []string
	reg := NewRegistrar(func(ns string, _ Header) {
		declared = append(declared, ns)
	})

	nestedFixture(t, WithRegistrar(reg))
	// A second archive declaring the same namespaces adds nothing.
	nestedFixture(t, WithRegistrar(reg))

	assert.Equal(t, []string{"app", "util"}, declared)
}

func TestStrategyEquivalence(t *testing.T) {
	// Both strategies must answer identically for well-formed input.
	for _, tt := range []struct {
		name string
		make func(*testing.T, ...Option) *Archive
	}{
		{"eager", nestedFixture},
		{"lazy", inlineFixture},
	} {
		t.Run(tt.name, func(t *testing.T) {
			a := tt.make(t)

			data, err := a.Resolve("util/Helper.bin")
			require.NoError(t, err)
			assert.Equal(t, []byte{0x01, 0x02}, data)

			data, err = a.Resolve("app/config.txt")
			require.NoError(t, err)
			assert.Equal(t, "k=v", string(data))

			_, err = a.Resolve("missing/Thing.bin")
			assert.ErrorIs(t, err, fs.ErrNotExist)

			assert.True(t, a.Exists("util/"))
			assert.Len(t, a.ListAll("util/Helper.bin"), 2)
		})
	}
}

func TestClosedArchive(t *testing.T) {
	container := testutil.Container(testutil.Text("a.txt", "a"))
	a, err := Open(writeContainer(t, container))
	require.NoError(t, err)
	require.NoError(t, a.Close())

	_, err = a.Resolve("a.txt")
	assert.ErrorIs(t, err, ErrClosed)
	assert.False(t, a.Exists("a.txt"))
	assert.Nil(t, a.ListAll("a.txt"))

	assert.NoError(t, a.Close())
}
