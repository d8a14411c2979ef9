package foundry

import (
	"sync"

	"github.com/containifyci/foundry/pkg/async"
)

// inhibitorState is the per-operation-kind serialization point a Context
// keeps so at most one BuildProgress of a given kind (build/clean/purge)
// runs at a time.
type inhibitorState struct {
	mu      sync.Mutex
	holders *async.Future[struct{}] // settles when the current holder releases
}

// Inhibit acquires a scoped inhibitor for operationKind on c, blocking
// until any prior holder for the same kind has released. The returned
// release function must be called exactly once on every exit path; it is
// idempotent.
func (c *Context) Inhibit(operationKind string) (release func()) {
	c.mu.Lock()
	st, ok := c.inhibitors[operationKind]
	if !ok {
		st = &inhibitorState{}
		c.inhibitors[operationKind] = st
	}
	c.mu.Unlock()

	st.mu.Lock()
	for st.holders != nil {
		waiting := st.holders
		st.mu.Unlock()
		_, _ = waiting.Await()
		st.mu.Lock()
	}
	p, f := async.NewPromise[struct{}]()
	st.holders = f
	st.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			st.mu.Lock()
			st.holders = nil
			st.mu.Unlock()
			p.Resolve(struct{}{})
		})
	}
}

// ActiveOperations returns the operation kinds currently inhibited
// (held) on c, for the loopback control server's read-only status view.
func (c *Context) ActiveOperations() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]string, 0, len(c.inhibitors))
	for kind, st := range c.inhibitors {
		st.mu.Lock()
		held := st.holders != nil
		st.mu.Unlock()
		if held {
			out = append(out, kind)
		}
	}
	return out
}
