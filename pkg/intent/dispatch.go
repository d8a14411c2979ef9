package intent

import (
	"github.com/containifyci/foundry/pkg/async"
	"github.com/containifyci/foundry/pkg/ferr"
	"github.com/containifyci/foundry/pkg/foundry"
)

// handlerInterface is the declared capability name plugins register
// intent handlers under, and the criterion key the bus filters on.
const handlerInterface = "IntentHandler"
const handlerCriterionKey = "Intent-Handler"

// Handler is the IntentHandler capability: a plugin-contributed addin
// that may claim an Intent.
type Handler interface {
	foundry.Addin
	Dispatch(i *Intent) *async.Future[any]
}

// Dispatch enumerates ctx's IntentHandler extensions in descending
// priority order and awaits each in turn: the first
// handler to resolve wins; a NotSupported rejection continues to the
// next handler; any other error is remembered as the first real error.
// If every handler fails, the remembered real error is raised, or
// NotSupported if none occurred.
func Dispatch(ctx *foundry.Context, i *Intent) *async.Future[any] {
	p, f := async.NewPromise[any]()
	if ctx == nil {
		p.Reject(ferr.New(ferr.InvalidArgument, "dispatch requires a context"))
		return f
	}

	set := ctx.Plugins.ExtensionSet(handlerInterface, map[string]string{handlerCriterionKey: "*"})
	entries := set.Snapshot()

	go func() {
		var firstErr error
		for _, e := range entries {
			handler, ok := e.Addin().(Handler)
			if !ok {
				continue
			}
			val, err := handler.Dispatch(i).Await()
			if err == nil {
				p.Resolve(val)
				return
			}
			if ferr.Of(err) == ferr.NotSupported {
				continue
			}
			if firstErr == nil {
				firstErr = err
			}
		}
		if firstErr != nil {
			p.Reject(firstErr)
			return
		}
		p.Reject(ferr.New(ferr.NotSupported, "no handler claimed the intent"))
	}()
	return f
}
