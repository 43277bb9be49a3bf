package packarc

import (
	"bytes"
	_ "crypto/sha256" // registers the canonical digest algorithm
	"io/fs"
	"log/slog"
	"strings"

	"github.com/opencontainers/go-digest"

	"github.com/packarc/packarc/internal/scanner"
)

// Conflict records a divergent duplicate definition found while
// indexing a nested container: two archives defined the same path with
// different bytes. The first-seen bytes are retained.
type Conflict struct {
	// Path is the logical path defined more than once.
	Path string

	// First names the archive whose bytes were retained.
	First string

	// Second names the archive whose bytes were ignored.
	Second string

	// FirstDigest and SecondDigest identify the diverging contents.
	FirstDigest  digest.Digest
	SecondDigest digest.Digest
}

type eagerEntry struct {
	data   []byte
	dig    digest.Digest
	origin string
}

// originEntries preserves which archive contributed which bytes, in
// archive enumeration order, for multi-result queries.
type originEntries struct {
	name    string
	entries map[string][]byte
}

// eagerIndex fully materializes every entry of a nested container and
// its inner archives into memory at construction time. After that it is
// read-only and safe for concurrent lookups.
type eagerIndex struct {
	entries   map[string]eagerEntry
	origins   []originEntries
	conflicts []Conflict
	logger    *slog.Logger
}

func newEagerIndex(c *scanner.Container, outerName string, hdr Header, reg *Registrar, suffix string, logger *slog.Logger) (*eagerIndex, error) {
	idx := &eagerIndex{
		entries: make(map[string]eagerEntry),
		logger:  logger,
	}
	if err := idx.walk(c, outerName, hdr, reg, suffix); err != nil {
		return nil, err
	}
	logger.Debug("indexed nested container",
		"entries", len(idx.entries),
		"archives", len(idx.origins),
		"conflicts", len(idx.conflicts))
	return idx, nil
}

// walk indexes one archive, recursing into every entry that is itself
// an archive.
func (idx *eagerIndex) walk(c *scanner.Container, origin string, hdr Header, reg *Registrar, suffix string) error {
	idx.origins = append(idx.origins, originEntries{
		name:    origin,
		entries: make(map[string][]byte),
	})
	org := len(idx.origins) - 1

	for e := range c.Entries() {
		switch {
		case e.IsDir:
			reg.RegisterOnce(e.Name, hdr)

		case strings.HasSuffix(e.Name, suffix):
			data, err := e.Bytes()
			if err != nil {
				return &ArchiveError{Locator: e.Name, Err: err}
			}
			inner, err := scanner.Open(bytes.NewReader(data), int64(len(data)))
			if err != nil {
				return &ArchiveError{Locator: e.Name, Err: err}
			}
			if err := idx.walk(inner, e.Name, hdr, reg, suffix); err != nil {
				return err
			}

		default:
			data, err := e.Bytes()
			if err != nil {
				return &ArchiveError{Locator: origin, Err: err}
			}
			idx.origins[org].entries[e.Name] = data
			idx.store(e.Name, data, origin)
		}
	}
	return nil
}

// store records data under path, keeping the first definition when the
// path was already seen. Identical duplicates are benign; divergent
// ones produce one conflict record each.
func (idx *eagerIndex) store(path string, data []byte, origin string) {
	dig := digest.FromBytes(data)

	prev, ok := idx.entries[path]
	if !ok {
		idx.entries[path] = eagerEntry{data: data, dig: dig, origin: origin}
		return
	}

	if prev.dig == dig {
		idx.logger.Debug("duplicate identical entry",
			"path", path, "first", prev.origin, "duplicate", origin)
		return
	}
	idx.conflicts = append(idx.conflicts, Conflict{
		Path:         path,
		First:        prev.origin,
		Second:       origin,
		FirstDigest:  prev.dig,
		SecondDigest: dig,
	})
	idx.logger.Warn("duplicate divergent entry, keeping first",
		"path", path, "first", prev.origin, "duplicate", origin)
}

func (idx *eagerIndex) resolve(name string) ([]byte, error) {
	e, ok := idx.entries[name]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return e.data, nil
}

func (idx *eagerIndex) exists(name string) bool {
	_, ok := idx.entries[name]
	return ok
}

// locators enumerates every archive that defines name, in archive
// enumeration order, each carrying that archive's own bytes.
func (idx *eagerIndex) locators(name string) []Locator {
	var out []Locator
	for _, org := range idx.origins {
		if data, ok := org.entries[name]; ok {
			out = append(out, BufferLocator(name, data))
		}
	}
	return out
}
