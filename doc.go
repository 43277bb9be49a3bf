// Package packarc resolves resources out of a nested packed container: a
// single outer zip archive that carries other archives inside it.
//
// A container is built in one of two layouts. In the nested layout every
// inner archive is stored whole as a single .pkg entry; opening such a
// container eagerly parses every inner archive and materializes all entry
// bytes into an in-memory index. In the inline layout every inner archive
// is exploded under a directory prefix named after it, and a prebuilt
// index document maps namespace prefixes to the archives that provide
// them; entry bytes are then read on demand, per request.
//
// Both layouts answer the same questions through the same façade:
//
//	a, err := packarc.Open("app.pkg")
//	if err != nil {
//	    return err
//	}
//	defer a.Close()
//	data, err := a.Resolve("util/Helper.bin")
//
// Lookups are ordered: when several inner archives provide the same path,
// the first archive in search order wins. Misses are reported as
// fs.ErrNotExist, and an archive can be chained to a fallback resolver
// with WithNext so unresolved paths flow to the surrounding environment.
//
// Native libraries (.so, .dll, .dylib) cannot be loaded from memory; the
// operating system's loader needs a real file. Materialize writes the
// resolved bytes to a read-and-execute-only temporary file and returns its
// path. Files created this way are removed by Close.
package packarc
