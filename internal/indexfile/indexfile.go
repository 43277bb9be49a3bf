// Package indexfile parses the index document that drives lazy
// resolution in inline-layout containers.
//
// The document is line-oriented text. The first line is a literal
// version marker, followed by a blank line, then repeated blocks: an
// archive-locator line followed by one namespace-prefix line per line,
// terminated by a blank line. The sentinel locator denotes the outer
// container itself and maps to the empty prefix.
package indexfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// VersionMarker is the required first line of an index document.
const VersionMarker = "PackIndex-Version: 1.0"

// OuterSentinel is the locator line denoting the outer container.
const OuterSentinel = "_PACKARC_OUTER_.pkg"

// ErrBadVersion is returned when the version marker is missing or not
// a supported version.
var ErrBadVersion = errors.New("packarc: unsupported index document version")

// Mapping associates one namespace prefix with one archive locator.
// Prefix is "/"-terminated or empty for the top level. Locator is
// "/"-terminated, or empty for the outer container.
type Mapping struct {
	Prefix  string
	Locator string
}

// Parse reads an index document and returns its mappings in document
// order. Document order defines candidate priority: the first locator
// listed for a prefix is searched first.
func Parse(r io.Reader) ([]Mapping, error) {
	sc := bufio.NewScanner(r)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("packarc: reading index document: %w", err)
		}
		return nil, ErrBadVersion
	}
	if sc.Text() != VersionMarker {
		return nil, fmt.Errorf("%w: %q", ErrBadVersion, sc.Text())
	}

	var mappings []Mapping
	locator := ""
	inBlock := false
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			inBlock = false
			continue
		}
		if !inBlock {
			// First non-blank line of a block names the archive.
			if line == OuterSentinel {
				locator = ""
			} else {
				locator = line + "/"
			}
			inBlock = true
			continue
		}
		prefix := strings.TrimPrefix(line, "/")
		mappings = append(mappings, Mapping{Prefix: prefix, Locator: locator})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("packarc: reading index document: %w", err)
	}
	return mappings, nil
}
