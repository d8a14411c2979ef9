package async

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/containifyci/foundry/pkg/ferr"
)

// Default sizing mirrors a worker-pool design, generalized from
// container-specific job types to arbitrary work closures.
const (
	DefaultPoolSize      = 5
	DefaultJobBufferSize = 100
)

// job is a type-erased unit of work: the Execute closure captures its own
// typed Promise internally so the queue itself stays generic-free.
type job struct {
	Execute     func(ctx context.Context)
	SubmittedAt time.Time
	ID          string
}

// ThreadPoolScheduler runs CPU-bound or blocking work off the main
// scheduler, resuming the awaiter on a designated Scheduler once done.
type ThreadPoolScheduler struct {
	ctx             context.Context
	cancel          context.CancelFunc
	jobQueue        chan job
	size            int
	jobsSubmitted   int64
	jobsCompleted   int64
	jobsFailed      int64
	currentQueueLen int64
	peakQueueDepth  int64
	mu              sync.RWMutex
	wg              sync.WaitGroup
	started         bool
	shutdown        bool
}

// NewThreadPoolScheduler creates a pool sized to size workers. A size of
// zero or less falls back to DefaultPoolSize, and the result is capped at
// 2*NumCPU.
func NewThreadPoolScheduler(size int) *ThreadPoolScheduler {
	if size <= 0 {
		size = DefaultPoolSize
	}
	if max := runtime.NumCPU() * 2; size > max {
		size = max
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &ThreadPoolScheduler{
		size:     size,
		jobQueue: make(chan job, DefaultJobBufferSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the worker goroutines. Idempotent.
func (tp *ThreadPoolScheduler) Start() {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	if tp.started {
		return
	}
	for i := 0; i < tp.size; i++ {
		tp.wg.Add(1)
		go tp.worker()
	}
	tp.started = true
}

// Stop drains in-flight jobs and shuts the pool down. Idempotent.
func (tp *ThreadPoolScheduler) Stop() {
	tp.mu.Lock()
	if tp.shutdown {
		tp.mu.Unlock()
		return
	}
	tp.shutdown = true
	tp.mu.Unlock()

	tp.cancel()
	close(tp.jobQueue)
	tp.wg.Wait()
}

func (tp *ThreadPoolScheduler) worker() {
	defer tp.wg.Done()
	for {
		select {
		case j, ok := <-tp.jobQueue:
			if !ok {
				return
			}
			atomic.AddInt64(&tp.currentQueueLen, -1)
			j.Execute(tp.ctx)
		case <-tp.ctx.Done():
			return
		}
	}
}

func (tp *ThreadPoolScheduler) submit(j job) error {
	tp.mu.RLock()
	if tp.shutdown {
		tp.mu.RUnlock()
		return ferr.New(ferr.InShutdown, "thread pool scheduler is shut down")
	}
	tp.mu.RUnlock()

	atomic.AddInt64(&tp.jobsSubmitted, 1)
	cur := atomic.AddInt64(&tp.currentQueueLen, 1)
	for {
		peak := atomic.LoadInt64(&tp.peakQueueDepth)
		if cur <= peak || atomic.CompareAndSwapInt64(&tp.peakQueueDepth, peak, cur) {
			break
		}
	}

	select {
	case tp.jobQueue <- j:
		return nil
	case <-tp.ctx.Done():
		atomic.AddInt64(&tp.currentQueueLen, -1)
		return ferr.Wrap(ferr.Cancelled, tp.ctx.Err(), "")
	}
}

// Metrics mirrors WorkerPoolMetrics, minus the per-job-type
// timing fields that no longer apply to generic work.
type Metrics struct {
	PoolSize        int
	JobsSubmitted   int64
	JobsCompleted   int64
	JobsFailed      int64
	CurrentQueueLen int64
	PeakQueueDepth  int64
}

func (tp *ThreadPoolScheduler) Metrics() Metrics {
	return Metrics{
		PoolSize:        tp.size,
		JobsSubmitted:   atomic.LoadInt64(&tp.jobsSubmitted),
		JobsCompleted:   atomic.LoadInt64(&tp.jobsCompleted),
		JobsFailed:      atomic.LoadInt64(&tp.jobsFailed),
		CurrentQueueLen: atomic.LoadInt64(&tp.currentQueueLen),
		PeakQueueDepth:  atomic.LoadInt64(&tp.peakQueueDepth),
	}
}

// SpawnPooled submits fn to run on the pool and resolves the returned
// future on resume (the scheduler whose dispatch loop should observe
// the settlement, marshaling resumption back to the awaiter's
// registered scheduler).
func SpawnPooled[T any](tp *ThreadPoolScheduler, resume *Scheduler, fn func(context.Context) (T, error)) *Future[T] {
	p, f := NewPromise[T]()
	err := tp.submit(job{
		SubmittedAt: time.Now(),
		Execute: func(ctx context.Context) {
			v, err := fn(ctx)
			if err != nil {
				atomic.AddInt64(&tp.jobsFailed, 1)
			} else {
				atomic.AddInt64(&tp.jobsCompleted, 1)
			}
			post := func() {
				if err != nil {
					p.Reject(err)
				} else {
					p.Resolve(v)
				}
			}
			if resume != nil {
				resume.Post(post)
			} else {
				post()
			}
		},
	})
	if err != nil {
		p.Reject(err)
	}
	return f
}
