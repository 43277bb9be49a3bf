// Package pathutil provides path manipulation for slash-separated
// container paths.
package pathutil

import "strings"

// Normalize converts name to canonical form: leading slashes are
// stripped and repeated internal slashes are collapsed. Logical paths
// never begin with a separator.
func Normalize(name string) string {
	name = strings.TrimLeft(name, "/")
	for strings.Contains(name, "//") {
		name = strings.ReplaceAll(name, "//", "/")
	}
	return name
}

// Prefix returns the namespace prefix of a slash path, including the
// trailing slash. Top-level paths have the empty prefix.
func Prefix(name string) string {
	i := strings.LastIndex(name, "/")
	if i < 0 {
		return ""
	}
	return name[:i+1]
}

// Namespace converts a directory-like entry name to its canonical
// namespace form: no leading or trailing slash.
func Namespace(name string) string {
	return strings.Trim(name, "/")
}

// Base returns the last element of a slash-separated path.
func Base(name string) string {
	name = strings.TrimSuffix(name, "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[i+1:]
	}
	return name
}

// StemSuffix splits the final path element into its stem and extension.
// The extension includes the leading dot and is empty when the element
// has none.
func StemSuffix(name string) (stem, suffix string) {
	base := Base(name)
	if i := strings.LastIndex(base, "."); i > 0 {
		return base[:i], base[i:]
	}
	return base, ""
}
