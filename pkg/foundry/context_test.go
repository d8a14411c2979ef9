package foundry_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/containifyci/foundry/pkg/async"
	"github.com/containifyci/foundry/pkg/ferr"
	"github.com/containifyci/foundry/pkg/foundry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingAddin struct {
	name    string
	log     *[]string
	loadErr error
}

func (a *recordingAddin) Load() *async.Future[struct{}] {
	*a.log = append(*a.log, "load:"+a.name)
	if a.loadErr != nil {
		return async.Rejected[struct{}](a.loadErr)
	}
	return async.Resolved(struct{}{})
}

func (a *recordingAddin) Unload() *async.Future[struct{}] {
	*a.log = append(*a.log, "unload:"+a.name)
	return async.Resolved(struct{}{})
}

func newContext(t *testing.T) *foundry.Context {
	t.Helper()
	dir := t.TempDir()
	ctx, err := foundry.New(filepath.Join(dir, "state"), dir, foundry.FlagCreate, nil).Await()
	require.NoError(t, err)
	return ctx
}

func TestNewCreatesStateDir(t *testing.T) {
	ctx := newContext(t)
	assert.DirExists(t, ctx.StateDir)
}

func TestDupConstructsLazilyAndOnce(t *testing.T) {
	ctx := newContext(t)
	calls := 0
	ctx.Register("build", func(c *foundry.Context) *foundry.Service {
		calls++
		return foundry.NewService("build", c.Owner(), foundry.NewExtensionSet("build"))
	})
	svc1, err := ctx.Dup("build")
	require.NoError(t, err)
	svc2, err := ctx.Dup("build")
	require.NoError(t, err)
	assert.Same(t, svc1, svc2)
	assert.Equal(t, 1, calls)
}

func TestDupUnregisteredTypeIsNotSupported(t *testing.T) {
	ctx := newContext(t)
	_, err := ctx.Dup("missing")
	require.Error(t, err)
	assert.Equal(t, ferr.NotSupported, ferr.Of(err))
}

func TestShutdownRejectsFurtherDup(t *testing.T) {
	ctx := newContext(t)
	ctx.Register("build", func(c *foundry.Context) *foundry.Service {
		return foundry.NewService("build", c.Owner(), foundry.NewExtensionSet("build"))
	})
	_, err := ctx.Dup("build")
	require.NoError(t, err)

	_, err = ctx.Shutdown().Await()
	require.NoError(t, err)

	_, err = ctx.Dup("build")
	require.Error(t, err)
	assert.Equal(t, ferr.InShutdown, ferr.Of(err))
}

func TestServiceOwnerRefDisposedAfterShutdown(t *testing.T) {
	ctx := newContext(t)
	ctx.Register("build", func(c *foundry.Context) *foundry.Service {
		return foundry.NewService("build", c.Owner(), foundry.NewExtensionSet("build"))
	})
	svc, err := ctx.Dup("build")
	require.NoError(t, err)

	_, err = ctx.Shutdown().Await()
	require.NoError(t, err)

	_, err = svc.Context()
	require.Error(t, err)
	assert.Equal(t, ferr.Disposed, ferr.Of(err))
}

func TestServiceStartLoadsExistingAddinsBeforeReady(t *testing.T) {
	ctx := newContext(t)
	var log []string
	es := foundry.NewExtensionSet("build")
	es.Add("plugin-a", 10, "a", &recordingAddin{name: "a", log: &log})

	ctx.Register("build", func(c *foundry.Context) *foundry.Service {
		return foundry.NewService("build", c.Owner(), es)
	})
	svc, err := ctx.Dup("build")
	require.NoError(t, err)

	_, err = svc.Start().Await()
	require.NoError(t, err)
	_, err = svc.WhenReady().Await()
	require.NoError(t, err)
	assert.Contains(t, log, "load:a")
	assert.Len(t, svc.Addins(), 1)
}

func TestServiceStopUnloadsAllAddins(t *testing.T) {
	ctx := newContext(t)
	var log []string
	es := foundry.NewExtensionSet("build")
	es.Add("plugin-a", 10, "a", &recordingAddin{name: "a", log: &log})

	ctx.Register("build", func(c *foundry.Context) *foundry.Service {
		return foundry.NewService("build", c.Owner(), es)
	})
	svc, err := ctx.Dup("build")
	require.NoError(t, err)
	_, err = svc.Start().Await()
	require.NoError(t, err)

	_, err = svc.Stop().Await()
	require.NoError(t, err)
	assert.Contains(t, log, "unload:a")
	assert.Empty(t, svc.Addins())
}

func TestServiceAddinsPreservesPriorityOrderNotKeyOrder(t *testing.T) {
	ctx := newContext(t)
	var log []string
	es := foundry.NewExtensionSet("build")
	// Registered in ascending pluginID order ("aaa-low" < "zzz-high"), so a
	// sort by key would put the low-priority addin first; priority order
	// must still put "zzz-high" first.
	es.Add("aaa-low", 1, "aaa", &recordingAddin{name: "aaa-low", log: &log})
	es.Add("zzz-high", 10, "zzz", &recordingAddin{name: "zzz-high", log: &log})

	ctx.Register("build", func(c *foundry.Context) *foundry.Service {
		return foundry.NewService("build", c.Owner(), es)
	})
	svc, err := ctx.Dup("build")
	require.NoError(t, err)
	_, err = svc.Start().Await()
	require.NoError(t, err)
	_, err = svc.WhenReady().Await()
	require.NoError(t, err)

	addins := svc.Addins()
	require.Len(t, addins, 2)
	assert.Equal(t, "zzz-high", addins[0].(*recordingAddin).name)
	assert.Equal(t, "aaa-low", addins[1].(*recordingAddin).name)

	// A third addin loaded later via handleAdd must slot into priority
	// order too, not just get appended.
	es.Add("mid", 5, "mid", &recordingAddin{name: "mid", log: &log})
	require.Eventually(t, func() bool { return len(svc.Addins()) == 3 }, time.Second, time.Millisecond)
	addins = svc.Addins()
	assert.Equal(t, "zzz-high", addins[0].(*recordingAddin).name)
	assert.Equal(t, "mid", addins[1].(*recordingAddin).name)
	assert.Equal(t, "aaa-low", addins[2].(*recordingAddin).name)
}

func TestExtensionSetSnapshotOrderedByPriorityThenModule(t *testing.T) {
	var log []string
	es := foundry.NewExtensionSet("build")
	es.Add("low", 1, "zzz", &recordingAddin{name: "low", log: &log})
	es.Add("high", 10, "aaa", &recordingAddin{name: "high", log: &log})
	es.Add("high-tie", 10, "bbb", &recordingAddin{name: "high-tie", log: &log})

	snap := es.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, "high/build", snap[0].Key())
	assert.Equal(t, "high-tie/build", snap[1].Key())
	assert.Equal(t, "low/build", snap[2].Key())
}

func TestOperationCompleteResolvesOnce(t *testing.T) {
	op := foundry.NewOperation("build")
	op.SetProgress("compiling", 0.5)
	op.Complete()
	op.SetProgress("ignored", 0.9) // no-op after completion

	_, err := op.Future().Await()
	require.NoError(t, err)
	_, subtitle, progress, done := op.Snapshot()
	assert.True(t, done)
	assert.Equal(t, "compiling", subtitle)
	assert.Equal(t, 1.0, progress)
}

func TestOperationCancelRejects(t *testing.T) {
	op := foundry.NewOperation("build")
	op.Cancel()
	_, err := op.Future().Await()
	require.Error(t, err)
	assert.Equal(t, ferr.Cancelled, ferr.Of(err))
}

func TestInhibitSerializesOverlappingHolders(t *testing.T) {
	ctx := newContext(t)
	var order []int
	release1 := ctx.Inhibit("build")
	order = append(order, 1)

	done := make(chan struct{})
	go func() {
		release2 := ctx.Inhibit("build")
		order = append(order, 2)
		release2()
		close(done)
	}()

	release1()
	<-done
	assert.Equal(t, []int{1, 2}, order)
}
