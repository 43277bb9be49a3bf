package packarc

import "log/slog"

// Option configures an Archive.
type Option func(*Archive)

// WithLogger sets the logger used for resolution and indexing events.
// When unset, logging is discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Archive) {
		a.logger = logger
	}
}

// WithNext chains a fallback resolver consulted when the archive has no
// match for a path. Chains of any length are built by passing another
// Archive, or any Resolver, here.
func WithNext(next Resolver) Option {
	return func(a *Archive) {
		a.next = next
	}
}

// WithRegistrar shares a namespace registrar across archives so each
// namespace is declared to the host environment at most once globally.
// By default every archive owns its own registrar.
func WithRegistrar(reg *Registrar) Option {
	return func(a *Archive) {
		a.reg = reg
	}
}

// WithRegisterFunc sets the callback invoked the first time each
// namespace is declared. Ignored when WithRegistrar is also given.
func WithRegisterFunc(fn RegisterFunc) Option {
	return func(a *Archive) {
		a.regFn = fn
	}
}

// WithArchiveSuffix overrides the entry-name suffix that marks inner
// archives in nested containers (default ".pkg").
func WithArchiveSuffix(suffix string) Option {
	return func(a *Archive) {
		a.suffix = suffix
	}
}

// WithTempDir sets the directory Materialize writes native libraries
// to. When unset, the system temporary directory is used.
func WithTempDir(dir string) Option {
	return func(a *Archive) {
		a.tempDir = dir
	}
}
