package foundry

import (
	"sync"

	"github.com/containifyci/foundry/pkg/async"
	"github.com/containifyci/foundry/pkg/ferr"
)

// Operation is a cancellable progress object: a title/subtitle/progress
// triple plus a completion promise. Progress mutations after completion
// are silently ignored.
type Operation struct {
	mu       sync.Mutex
	title    string
	subtitle string
	progress float64
	done     bool

	promise *async.Promise[struct{}]
	future  *async.Future[struct{}]

	onChange []func()
}

// NewOperation creates an Operation with the given initial title.
func NewOperation(title string) *Operation {
	p, f := async.NewPromise[struct{}]()
	return &Operation{title: title, promise: p, future: f}
}

// Future is the handle callers await for completion or cancellation.
func (o *Operation) Future() *async.Future[struct{}] {
	return o.future
}

// SetProgress updates subtitle/progress, clamped to [0,1]; a no-op once
// the operation has completed or been cancelled.
func (o *Operation) SetProgress(subtitle string, progress float64) {
	o.mu.Lock()
	if o.done {
		o.mu.Unlock()
		return
	}
	if progress < 0 {
		progress = 0
	} else if progress > 1 {
		progress = 1
	}
	o.subtitle = subtitle
	o.progress = progress
	handlers := append([]func(){}, o.onChange...)
	o.mu.Unlock()
	for _, h := range handlers {
		h()
	}
}

// Snapshot returns the current title/subtitle/progress/done state.
func (o *Operation) Snapshot() (title, subtitle string, progress float64, done bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.title, o.subtitle, o.progress, o.done
}

// OnChange registers a handler that SetProgress invokes, on the caller's
// goroutine, after updating the subtitle and progress. Complete and
// Cancel do not invoke the registered handlers. Property
// change notifications are the caller's responsibility to marshal to
// whatever scheduler it runs on.
func (o *Operation) OnChange(fn func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onChange = append(o.onChange, fn)
}

// Complete resolves the operation's future exactly once.
func (o *Operation) Complete() {
	o.mu.Lock()
	if o.done {
		o.mu.Unlock()
		return
	}
	o.done = true
	o.progress = 1
	o.mu.Unlock()
	o.promise.Resolve(struct{}{})
}

// Cancel rejects the operation's future with ferr.Cancelled exactly
// once.
func (o *Operation) Cancel() {
	o.mu.Lock()
	if o.done {
		o.mu.Unlock()
		return
	}
	o.done = true
	o.mu.Unlock()
	o.promise.Reject(ferr.New(ferr.Cancelled, "operation cancelled"))
}
