package async_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/containifyci/foundry/pkg/async"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromiseResolveAwait(t *testing.T) {
	p, f := async.NewPromise[int]()
	go func() {
		time.Sleep(10 * time.Millisecond)
		p.Resolve(42)
	}()
	v, err := f.Await()
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestPromiseRejectAfterResolveIgnored(t *testing.T) {
	p, f := async.NewPromise[int]()
	p.Resolve(1)
	p.Reject(fmt.Errorf("too late"))
	v, err := f.Await()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestThenChains(t *testing.T) {
	f := async.Resolved(2)
	doubled := async.Then(nil, f, func(v int) (int, error) {
		return v * 2, nil
	})
	v, err := doubled.Await()
	require.NoError(t, err)
	assert.Equal(t, 4, v)
}

func TestThenPropagatesRejection(t *testing.T) {
	f := async.Rejected[int](fmt.Errorf("boom"))
	next := async.Then(nil, f, func(v int) (int, error) {
		t.Fatal("should not run")
		return 0, nil
	})
	_, err := next.Await()
	require.Error(t, err)
	assert.Equal(t, "boom", err.Error())
}

func TestFinallyRunsOnSuccessAndFailure(t *testing.T) {
	var ran int
	f := async.Resolved(1)
	out := async.Finally(nil, f, func() { ran++ })
	_, _ = out.Await()

	f2 := async.Rejected[int](fmt.Errorf("x"))
	out2 := async.Finally(nil, f2, func() { ran++ })
	_, _ = out2.Await()

	assert.Equal(t, 2, ran)
}

func TestAllResolvesInOrder(t *testing.T) {
	fs := []*async.Future[int]{async.Resolved(1), async.Resolved(2), async.Resolved(3)}
	all := async.All(fs)
	v, err := all.Await()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, v)
}

func TestAllRejectsWithFirstError(t *testing.T) {
	fs := []*async.Future[int]{
		async.Resolved(1),
		async.Rejected[int](fmt.Errorf("first")),
		async.Rejected[int](fmt.Errorf("second")),
	}
	all := async.All(fs)
	_, err := all.Await()
	require.Error(t, err)
}

func TestPeekBeforeAndAfterSettle(t *testing.T) {
	p, f := async.NewPromise[string]()
	_, _, ok := f.Peek()
	assert.False(t, ok)

	p.Resolve("done")
	v, err, ok := f.Peek()
	require.True(t, ok)
	require.NoError(t, err)
	assert.Equal(t, "done", v)
}
