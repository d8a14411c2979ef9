package async

import "sync"

// Scheduler is the single-threaded cooperative dispatch loop every
// observable state transition runs on: every future
// continuation (Then/Finally) posted to a Scheduler executes strictly
// serially and in post order, on one dedicated goroutine, so property
// changes and signal emissions never race each other.
//
// Fiber bodies spawned with Spawn run on their own goroutine (Go has no
// first-class coroutine yield), but a fiber only ever *resumes* after an
// Await by way of a future settling, and settlement callbacks are always
// posted back through a Scheduler — so from the perspective of anything
// observing Foundry state, resumption is serialized exactly as the
// cooperative model requires.
type Scheduler struct {
	tasks chan func()
	wg    sync.WaitGroup
}

// NewScheduler starts a Scheduler's dispatch goroutine.
func NewScheduler() *Scheduler {
	s := &Scheduler{tasks: make(chan func(), 256)}
	s.wg.Add(1)
	go s.run()
	return s
}

func (s *Scheduler) run() {
	defer s.wg.Done()
	for fn := range s.tasks {
		fn()
	}
}

// Post enqueues fn to run on the scheduler's dispatch goroutine.
func (s *Scheduler) Post(fn func()) {
	s.tasks <- fn
}

// Stop closes the dispatch queue and waits until every task already
// queued has run. No further Post calls may be made afterward.
func (s *Scheduler) Stop() {
	close(s.tasks)
	s.wg.Wait()
}

// Spawn starts fn as a fiber: fn runs on its own goroutine and may call
// Await to suspend on other futures without blocking the scheduler's
// dispatch loop. The returned future settles with fn's result, with the
// settlement itself posted through s so downstream Then/Finally
// continuations observe it on the scheduler thread.
func Spawn[T any](s *Scheduler, fn func() (T, error)) *Future[T] {
	p, f := NewPromise[T]()
	go func() {
		v, err := fn()
		s.Post(func() {
			if err != nil {
				p.Reject(err)
			} else {
				p.Resolve(v)
			}
		})
	}()
	return f
}

// Await suspends the calling fiber until f settles. It is simply
// Future.Await — exported here under the name this design uses for
// in-fiber suspension points.
func Await[T any](f *Future[T]) (T, error) {
	return f.Await()
}
