package dap_test

import (
	"context"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/containifyci/foundry/pkg/async"
	"github.com/containifyci/foundry/pkg/dap"
	"github.com/containifyci/foundry/pkg/ferr"
	"github.com/containifyci/foundry/pkg/foundry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	languages []string
}

func (p *fakeProvider) Load() *async.Future[struct{}]   { return async.Resolved(struct{}{}) }
func (p *fakeProvider) Unload() *async.Future[struct{}] { return async.Resolved(struct{}{}) }
func (p *fakeProvider) Languages() []string             { return p.languages }
func (p *fakeProvider) Command(string) (*exec.Cmd, error) {
	return exec.Command("true"), nil
}

type fakeEngine struct {
	sets map[string]*foundry.ExtensionSet
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{sets: make(map[string]*foundry.ExtensionSet)}
}

func (e *fakeEngine) ExtensionSet(iface string, _ map[string]string) *foundry.ExtensionSet {
	if set, ok := e.sets[iface]; ok {
		return set
	}
	set := foundry.NewExtensionSet(iface)
	e.sets[iface] = set
	return set
}

func newTestContext(t *testing.T, engine *fakeEngine) *foundry.Context {
	t.Helper()
	dir := t.TempDir()
	ctx, err := foundry.New(filepath.Join(dir, "state"), dir, foundry.FlagCreate, engine).Await()
	require.NoError(t, err)
	return ctx
}

func TestManagerListsLoadedProviders(t *testing.T) {
	engine := newFakeEngine()
	engine.ExtensionSet("DebuggerProvider", nil).Add("gdb-plugin", 1, "gdb-dap", &fakeProvider{languages: []string{"c"}})

	ctx := newTestContext(t, engine)
	mgr := dap.NewManager(ctx)
	_, err := mgr.Start().Await()
	require.NoError(t, err)

	providers := mgr.Providers()
	require.Len(t, providers, 1)
	assert.Equal(t, []string{"c"}, providers[0].Languages())
}

func TestRunRejectsNotFoundForUnclaimedLanguage(t *testing.T) {
	engine := newFakeEngine()
	ctx := newTestContext(t, engine)
	mgr := dap.NewManager(ctx)
	_, err := mgr.Start().Await()
	require.NoError(t, err)

	runCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err = dap.Run(runCtx, mgr, "c")
	require.Error(t, err)
	assert.Equal(t, ferr.NotFound, ferr.Of(err))
}
