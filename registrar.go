package packarc

import (
	"sync"

	"github.com/packarc/packarc/internal/pathutil"
)

// RegisterFunc is invoked the first time a namespace is declared,
// carrying the header metadata governing the declaring container.
type RegisterFunc func(namespace string, hdr Header)

// Registrar declares each namespace to the host environment at most
// once, no matter how many inner archives claim it. The first
// registration wins; later calls for the same namespace are no-ops,
// not errors, so callers never need to track what was already declared.
//
// Registrar is safe for concurrent use.
type Registrar struct {
	mu   sync.Mutex
	seen map[string]struct{}
	fn   RegisterFunc
}

// NewRegistrar returns a registrar that invokes fn once per namespace.
// A nil fn records namespaces without notifying anyone.
func NewRegistrar(fn RegisterFunc) *Registrar {
	return &Registrar{seen: make(map[string]struct{}), fn: fn}
}

// RegisterOnce declares namespace with the given header metadata.
// It reports whether this call was the first for the namespace.
func (g *Registrar) RegisterOnce(namespace string, hdr Header) bool {
	namespace = pathutil.Namespace(namespace)

	g.mu.Lock()
	if _, ok := g.seen[namespace]; ok {
		g.mu.Unlock()
		return false
	}
	g.seen[namespace] = struct{}{}
	g.mu.Unlock()

	if g.fn != nil {
		g.fn(namespace, hdr)
	}
	return true
}

// Known reports whether namespace has been registered.
func (g *Registrar) Known(namespace string) bool {
	namespace = pathutil.Namespace(namespace)
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.seen[namespace]
	return ok
}
