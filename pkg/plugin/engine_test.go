package plugin

import (
	"testing"

	"github.com/containifyci/foundry/pkg/async"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExtension struct {
	manifest Manifest
	calls    []string
}

func (f *fakeExtension) Manifest() Manifest { return f.manifest }

func (f *fakeExtension) Invoke(args InvokeArgs) (any, error) {
	f.calls = append(f.calls, args.Interface+":"+args.Method)
	return nil, nil
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	tp := async.NewThreadPoolScheduler(2)
	tp.Start()
	t.Cleanup(tp.Stop)
	sched := async.NewScheduler()
	t.Cleanup(sched.Stop)
	return NewEngine(tp, sched)
}

func (e *Engine) injectForTest(path string, ext *fakeExtension) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.plugins[path] = &loadedPlugin{path: path, ext: ext, manifest: ext.manifest}
}

func TestListOrdersByPriorityThenModuleName(t *testing.T) {
	e := newTestEngine(t)
	e.injectForTest("/a", &fakeExtension{manifest: Manifest{ModuleName: "zzz", Priority: 10, Interfaces: []string{"IntentHandler"}}})
	e.injectForTest("/b", &fakeExtension{manifest: Manifest{ModuleName: "aaa", Priority: 10, Interfaces: []string{"IntentHandler"}}})
	e.injectForTest("/c", &fakeExtension{manifest: Manifest{ModuleName: "mid", Priority: 5, Interfaces: []string{"IntentHandler"}}})

	list := e.List()
	require.Len(t, list, 3)
	assert.Equal(t, "aaa", list[0].ModuleName)
	assert.Equal(t, "zzz", list[1].ModuleName)
	assert.Equal(t, "mid", list[2].ModuleName)
}

func TestMatchesCriteriaKeyGlob(t *testing.T) {
	m := Manifest{ModuleName: "docs-plugin", Interfaces: []string{"Intent-Handler"}}
	assert.True(t, matchesCriteria(m, "Intent-Handler", map[string]string{"Intent-Handler": "*"}))
	assert.True(t, matchesCriteria(m, "Intent-Handler", map[string]string{"Intent-Handler": "docs-*"}))
	assert.False(t, matchesCriteria(m, "Intent-Handler", map[string]string{"Intent-Handler": "lsp-*"}))
	assert.False(t, matchesCriteria(m, "BuildStage", map[string]string{"BuildStage": "*"}))
}

func TestExtensionSetPopulatedFromMatchingPlugins(t *testing.T) {
	e := newTestEngine(t)
	e.injectForTest("/docs", &fakeExtension{manifest: Manifest{ModuleName: "docs", Priority: 1, Interfaces: []string{"Intent-Handler"}}})
	e.injectForTest("/lsp", &fakeExtension{manifest: Manifest{ModuleName: "lsp", Priority: 1, Interfaces: []string{"BuildStage"}}})

	set := e.ExtensionSet("Intent-Handler", map[string]string{"Intent-Handler": "*"})
	snap := set.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "/docs", snap[0].PluginID())
}

func TestRefreshRemovesUnloadedPlugin(t *testing.T) {
	e := newTestEngine(t)
	e.injectForTest("/docs", &fakeExtension{manifest: Manifest{ModuleName: "docs", Priority: 1, Interfaces: []string{"Intent-Handler"}}})
	set := e.ExtensionSet("Intent-Handler", map[string]string{"Intent-Handler": "*"})
	require.Len(t, set.Snapshot(), 1)

	e.mu.Lock()
	delete(e.plugins, "/docs")
	e.mu.Unlock()

	e.Refresh(set, map[string]string{"Intent-Handler": "*"})
	assert.Empty(t, set.Snapshot())
}

func TestRemoteAddinLoadInvokesExtension(t *testing.T) {
	tp := async.NewThreadPoolScheduler(2)
	tp.Start()
	defer tp.Stop()
	sched := async.NewScheduler()
	defer sched.Stop()

	fake := &fakeExtension{manifest: Manifest{ModuleName: "docs"}}
	addin := &remoteAddin{tp: tp, sched: sched, ext: fake, iface: "Intent-Handler"}

	_, err := addin.Load().Await()
	require.NoError(t, err)
	_, err = addin.Unload().Await()
	require.NoError(t, err)
	assert.Equal(t, []string{"Intent-Handler:load", "Intent-Handler:unload"}, fake.calls)
}
