package async

import (
	"sync"
	"time"

	"github.com/containifyci/foundry/pkg/ferr"
)

// Cancellable is itself a future that rejects with ferr.Cancelled when
// cancelled. Callees race their primary work against
// it and propagate its rejection.
type Cancellable struct {
	*Future[struct{}]
	once   sync.Once
	cancel func()
}

// NewCancellable returns an un-cancelled Cancellable.
func NewCancellable() *Cancellable {
	p, f := NewPromise[struct{}]()
	c := &Cancellable{Future: f}
	c.cancel = func() { p.Reject(ferr.New(ferr.Cancelled, "operation cancelled")) }
	return c
}

// Cancel rejects the cancellable. Idempotent.
func (c *Cancellable) Cancel() {
	c.once.Do(c.cancel)
}

// IsCancelled reports whether Cancel has already settled this
// cancellable.
func (c *Cancellable) IsCancelled() bool {
	return c.Future.Done()
}

// WithTimeout returns a Cancellable that cancels itself after d unless
// stopped first; stop releases the backing timer.
func WithTimeout(d time.Duration) (c *Cancellable, stop func()) {
	c = NewCancellable()
	timer := time.AfterFunc(d, c.Cancel)
	return c, func() { timer.Stop() }
}
