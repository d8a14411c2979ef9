// Package async implements the cooperative future/scheduler runtime every
// long-running Foundry operation suspends into: a generic Future/Promise
// pair, a single-threaded cooperative Scheduler for fiber-style
// coroutines, and a ThreadPoolScheduler for CPU-bound or blocking work.
//
// Grounded on a worker-pool job/result channel design, generalized from
// container operations to arbitrary typed results via generics, and on
// a wg.Wait()/fan-out pattern for future.All.
package async

import "sync"

// Future represents the eventual outcome of an asynchronous operation.
// A Future is created already attached to its Promise; it settles exactly
// once, either with a value or with an error.
type Future[T any] struct {
	mu      sync.Mutex
	waiters []chan struct{}
	thenFns []func()
	val     T
	err     error
	done    bool
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{}
}

func (f *Future[T]) settle(val T, err error) {
	f.mu.Lock()
	if f.done {
		f.mu.Unlock()
		return
	}
	f.val, f.err, f.done = val, err, true
	waiters := f.waiters
	fns := f.thenFns
	f.waiters, f.thenFns = nil, nil
	f.mu.Unlock()

	for _, w := range waiters {
		close(w)
	}
	for _, fn := range fns {
		fn()
	}
}

// Await blocks the calling goroutine until the future settles and
// returns its value or error. Outside a fiber, this is how library code
// synchronizes with an asynchronous result.
func (f *Future[T]) Await() (T, error) {
	f.mu.Lock()
	if f.done {
		v, e := f.val, f.err
		f.mu.Unlock()
		return v, e
	}
	ch := make(chan struct{})
	f.waiters = append(f.waiters, ch)
	f.mu.Unlock()

	<-ch

	f.mu.Lock()
	v, e := f.val, f.err
	f.mu.Unlock()
	return v, e
}

// Peek returns the settled value/error without blocking; ok is false if
// the future has not yet settled.
func (f *Future[T]) Peek() (val T, err error, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.val, f.err, f.done
}

// Done reports whether the future has settled.
func (f *Future[T]) Done() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.done
}

// onSettle registers fn to run once the future settles, immediately if
// it already has. Registration order is preserved for fns registered
// before settlement.
func (f *Future[T]) onSettle(fn func()) {
	f.mu.Lock()
	if f.done {
		f.mu.Unlock()
		fn()
		return
	}
	f.thenFns = append(f.thenFns, fn)
	f.mu.Unlock()
}

// Resolved returns an already-settled future carrying val.
func Resolved[T any](val T) *Future[T] {
	f := newFuture[T]()
	f.settle(val, nil)
	return f
}

// Rejected returns an already-settled future carrying err.
func Rejected[T any](err error) *Future[T] {
	var zero T
	f := newFuture[T]()
	f.settle(zero, err)
	return f
}

// Then runs fn on f's result once it resolves, posting fn's execution
// onto sched so continuations are serialized on the scheduler's main
// dispatch loop. A nil sched runs fn inline on whichever
// goroutine settles f, which is acceptable for pure-computation
// continuations that touch no shared state.
func Then[T any, R any](sched *Scheduler, f *Future[T], fn func(T) (R, error)) *Future[R] {
	rf := newFuture[R]()
	f.onSettle(func() {
		run := func() {
			if f.err != nil {
				var zero R
				rf.settle(zero, f.err)
				return
			}
			v, err := fn(f.val)
			rf.settle(v, err)
		}
		if sched != nil {
			sched.Post(run)
		} else {
			run()
		}
	})
	return rf
}

// Finally runs fn after f settles (success or failure) and forwards f's
// outcome unchanged.
func Finally[T any](sched *Scheduler, f *Future[T], fn func()) *Future[T] {
	rf := newFuture[T]()
	f.onSettle(func() {
		run := func() {
			fn()
			rf.settle(f.val, f.err)
		}
		if sched != nil {
			sched.Post(run)
		} else {
			run()
		}
	})
	return rf
}

// All resolves once every future in fs has settled, with the results in
// input order; it rejects with the first error encountered.
func All[T any](fs []*Future[T]) *Future[[]T] {
	rf := newFuture[[]T]()
	if len(fs) == 0 {
		rf.settle([]T{}, nil)
		return rf
	}

	var mu sync.Mutex
	results := make([]T, len(fs))
	remaining := len(fs)
	var firstErr error

	for i, fut := range fs {
		i, fut := i, fut
		fut.onSettle(func() {
			mu.Lock()
			defer mu.Unlock()
			if fut.err != nil {
				if firstErr == nil {
					firstErr = fut.err
				}
			} else {
				results[i] = fut.val
			}
			remaining--
			if remaining == 0 {
				if firstErr != nil {
					rf.settle(nil, firstErr)
				} else {
					rf.settle(results, nil)
				}
			}
		})
	}
	return rf
}
