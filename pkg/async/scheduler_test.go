package async_test

import (
	"context"
	"testing"
	"time"

	"github.com/containifyci/foundry/pkg/async"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerSpawnAndAwait(t *testing.T) {
	sched := async.NewScheduler()
	defer sched.Stop()

	f := async.Spawn(sched, func() (int, error) {
		return 7, nil
	})
	v, err := async.Await(f)
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestSchedulerPostOrdering(t *testing.T) {
	sched := async.NewScheduler()
	defer sched.Stop()

	var order []int
	done := make(chan struct{})
	for i := 0; i < 5; i++ {
		i := i
		sched.Post(func() {
			order = append(order, i)
			if i == 4 {
				close(done)
			}
		})
	}
	<-done
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestThreadPoolSchedulerSpawnPooled(t *testing.T) {
	tp := async.NewThreadPoolScheduler(2)
	tp.Start()
	defer tp.Stop()

	sched := async.NewScheduler()
	defer sched.Stop()

	f := async.SpawnPooled(tp, sched, func(ctx context.Context) (string, error) {
		return "done", nil
	})
	v, err := f.Await()
	require.NoError(t, err)
	assert.Equal(t, "done", v)

	time.Sleep(5 * time.Millisecond)
	m := tp.Metrics()
	assert.Equal(t, int64(1), m.JobsSubmitted)
	assert.Equal(t, int64(1), m.JobsCompleted)
}

func TestThreadPoolSchedulerRejectsAfterStop(t *testing.T) {
	tp := async.NewThreadPoolScheduler(1)
	tp.Start()
	tp.Stop()

	f := async.SpawnPooled[int](tp, nil, func(ctx context.Context) (int, error) {
		return 0, nil
	})
	_, err := f.Await()
	require.Error(t, err)
}

func TestCancellableCancel(t *testing.T) {
	c := async.NewCancellable()
	assert.False(t, c.IsCancelled())
	c.Cancel()
	c.Cancel() // idempotent
	assert.True(t, c.IsCancelled())
	_, err := c.Await()
	require.Error(t, err)
}

func TestWithTimeoutCancelsAfterDuration(t *testing.T) {
	c, stop := async.WithTimeout(10 * time.Millisecond)
	defer stop()
	_, err := c.Await()
	require.Error(t, err)
}

func TestWithTimeoutStoppedBeforeFiring(t *testing.T) {
	c, stop := async.WithTimeout(50 * time.Millisecond)
	stop()
	select {
	case <-timeoutChan(c):
		t.Fatal("should not have cancelled")
	case <-time.After(80 * time.Millisecond):
	}
}

// timeoutChan adapts a Cancellable's settlement to a channel for the
// negative test above without exposing internals.
func timeoutChan(c *async.Cancellable) <-chan struct{} {
	ch := make(chan struct{})
	go func() {
		_, _ = c.Await()
		close(ch)
	}()
	return ch
}
