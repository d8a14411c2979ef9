package plugin

import (
	"context"

	"github.com/containifyci/foundry/pkg/async"
)

// remoteAddin adapts a loaded plugin's Extension RPC stub to
// foundry.Addin: Load/Unload invoke the "load"/"unload" methods on the
// plugin's declared iface over the (blocking) RPC connection, run on
// the engine's thread pool so the RPC round-trip never blocks the main
// scheduler.
type remoteAddin struct {
	tp    *async.ThreadPoolScheduler
	sched *async.Scheduler
	ext   Extension
	iface string
}

func (a *remoteAddin) Load() *async.Future[struct{}] {
	return invokeVoid(a.tp, a.sched, a.ext, a.iface, "load")
}

func (a *remoteAddin) Unload() *async.Future[struct{}] {
	return invokeVoid(a.tp, a.sched, a.ext, a.iface, "unload")
}

func invokeVoid(tp *async.ThreadPoolScheduler, sched *async.Scheduler, ext Extension, iface, method string) *async.Future[struct{}] {
	f := async.SpawnPooled(tp, sched, func(context.Context) (struct{}, error) {
		_, err := ext.Invoke(InvokeArgs{Interface: iface, Method: method})
		return struct{}{}, err
	})
	return f
}
