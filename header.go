package packarc

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Well-known entry names inside the outer container.
const (
	// DescriptorEntry holds the container's governing header metadata.
	DescriptorEntry = "META/PACK.MF"

	// IndexEntry holds the index document used by inline-layout
	// containers.
	IndexEntry = "META/PACK.IDX"
)

// Layout selects how inner archives are stored in the outer container,
// and with it the resolution strategy.
type Layout int

const (
	// LayoutNested stores each inner archive whole as a single entry.
	// Resolution is eager: every inner archive is parsed at open time
	// and all entry bytes are held in memory.
	LayoutNested Layout = iota

	// LayoutInline explodes each inner archive under a directory prefix
	// named after it. Resolution is lazy: a prebuilt index document maps
	// namespace prefixes to archives and bytes are read per request.
	LayoutInline
)

func (l Layout) String() string {
	switch l {
	case LayoutNested:
		return "nested"
	case LayoutInline:
		return "inline"
	default:
		return fmt.Sprintf("layout(%d)", int(l))
	}
}

// ParseLayout maps a descriptor value to a Layout. Unknown values
// select LayoutNested, matching the packer's default.
func ParseLayout(s string) Layout {
	if strings.EqualFold(s, "inline") {
		return LayoutInline
	}
	return LayoutNested
}

// Header carries the outer container's governing descriptor fields.
type Header struct {
	// Version is the container format version string.
	Version string

	// Layout selects the resolution strategy.
	Layout Layout

	// SearchPath lists auxiliary relative paths consulted when
	// assembling the effective lookup order. Only produced for nested
	// containers.
	SearchPath []string
}

// Descriptor field names.
const (
	versionField    = "Pack-Version"
	layoutField     = "Pack-Layout"
	searchPathField = "Pack-Search-Path"
)

// ParseHeader reads a manifest-style descriptor of "Name: Value" lines.
// Unknown fields are ignored. The search path value is space-separated.
func ParseHeader(r io.Reader) (Header, error) {
	var hdr Header
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return Header{}, fmt.Errorf("packarc: malformed descriptor line %q", line)
		}
		value = strings.TrimSpace(value)
		switch name {
		case versionField:
			hdr.Version = value
		case layoutField:
			hdr.Layout = ParseLayout(value)
		case searchPathField:
			hdr.SearchPath = strings.Fields(value)
		}
	}
	if err := sc.Err(); err != nil {
		return Header{}, fmt.Errorf("packarc: reading descriptor: %w", err)
	}
	return hdr, nil
}
