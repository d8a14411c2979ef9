// Package weakref breaks the cyclic parent/child references // calls out (BuildStage <-> BuildPipeline, Service <-> Context) without
// relying on GC timing: a Ref is explicitly invalidated by its owner, and
// any later Resolve returns ferr.Disposed rather than a stale pointer.
package weakref

import (
	"sync"

	"github.com/containifyci/foundry/pkg/ferr"
)

// Owner holds the strong value and hands out weak references to it.
type Owner[T any] struct {
	mu    sync.RWMutex
	value *T
	live  bool
}

// NewOwner wraps value as the strong side of a weak-reference pair.
func NewOwner[T any](value *T) *Owner[T] {
	return &Owner[T]{value: value, live: true}
}

// Ref returns a weak handle to the owner's value.
func (o *Owner[T]) Ref() *Ref[T] {
	return &Ref[T]{owner: o}
}

// Invalidate marks the owner disposed; every outstanding Ref now resolves
// to ferr.Disposed. Idempotent.
func (o *Owner[T]) Invalidate() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.live = false
}

// Ref is a weak, invalidation-aware handle to a value owned elsewhere.
type Ref[T any] struct {
	owner *Owner[T]
}

// Resolve returns the referenced value, or ferr.Disposed if the owner has
// been invalidated.
func (r *Ref[T]) Resolve() (*T, error) {
	r.owner.mu.RLock()
	defer r.owner.mu.RUnlock()
	if !r.owner.live {
		return nil, ferr.New(ferr.Disposed, "referenced owner is no longer live")
	}
	return r.owner.value, nil
}
