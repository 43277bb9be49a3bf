package packarc

import (
	"io/fs"
	"log/slog"

	"github.com/packarc/packarc/internal/indexfile"
	"github.com/packarc/packarc/internal/pathutil"
	"github.com/packarc/packarc/internal/scanner"
)

// lazyIndex resolves entries of an inline container on demand. At
// construction it only parses the index document into a table mapping
// namespace prefixes to ordered archive locators; no entry bytes are
// read until a request arrives. The table is read-only afterward and
// safe for concurrent lookups.
type lazyIndex struct {
	c      *scanner.Container
	table  map[string][]string
	logger *slog.Logger
}

func newLazyIndex(c *scanner.Container, hdr Header, reg *Registrar, logger *slog.Logger) (*lazyIndex, error) {
	e, ok := c.Lookup(IndexEntry)
	if !ok {
		return nil, ErrMissingIndex
	}
	rc, err := e.Open()
	if err != nil {
		return nil, &ArchiveError{Locator: IndexEntry, Err: err}
	}
	defer rc.Close()

	mappings, err := indexfile.Parse(rc)
	if err != nil {
		return nil, err
	}

	idx := &lazyIndex{
		c:      c,
		table:  make(map[string][]string),
		logger: logger,
	}
	for _, m := range mappings {
		idx.table[m.Prefix] = append(idx.table[m.Prefix], m.Locator)
		if m.Prefix != "" {
			reg.RegisterOnce(m.Prefix, hdr)
		}
	}
	logger.Debug("indexed inline container", "prefixes", len(idx.table))
	return idx, nil
}

// resolve searches the candidate archives for name's namespace prefix
// in index order; the first archive holding the entry wins. A failure
// to read one candidate's bytes is a miss for that candidate only.
func (idx *lazyIndex) resolve(name string) ([]byte, error) {
	for _, loc := range idx.table[pathutil.Prefix(name)] {
		e, ok := idx.c.Lookup(loc + name)
		if !ok {
			continue
		}
		data, err := e.Bytes()
		if err != nil {
			idx.logger.Warn("unreadable entry, trying next candidate",
				"entry", loc+name, "error", err)
			continue
		}
		return data, nil
	}
	return nil, fs.ErrNotExist
}

func (idx *lazyIndex) exists(name string) bool {
	for _, loc := range idx.table[pathutil.Prefix(name)] {
		if _, ok := idx.c.Lookup(loc + name); ok {
			return true
		}
	}
	return false
}

// locators enumerates every candidate archive holding name, not just
// the first match.
func (idx *lazyIndex) locators(name string) []Locator {
	var out []Locator
	for _, loc := range idx.table[pathutil.Prefix(name)] {
		if e, ok := idx.c.Lookup(loc + name); ok {
			out = append(out, entryLocator(loc+name, e.Open))
		}
	}
	return out
}
