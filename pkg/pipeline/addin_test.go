package pipeline

import (
	"path/filepath"
	"testing"

	"github.com/containifyci/foundry/pkg/async"
	"github.com/containifyci/foundry/pkg/foundry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStageProvider struct {
	stages []*Stage
}

func (p *fakeStageProvider) Load() *async.Future[struct{}]   { return async.Resolved(struct{}{}) }
func (p *fakeStageProvider) Unload() *async.Future[struct{}] { return async.Resolved(struct{}{}) }
func (p *fakeStageProvider) Stages() []*Stage                { return p.stages }

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

func TestManagerCollectsStagesFromLoadedAddins(t *testing.T) {
	engine := newFakeEngine()
	engine.ExtensionSet("StageProvider", nil).Add("custom-plugin", 1, "custom-stage",
		&fakeStageProvider{stages: []*Stage{{Title: "lint", Phase: PhaseBuild}}})

	dir := t.TempDir()
	ctx, err := foundry.New(filepath.Join(dir, "state"), dir, foundry.FlagCreate, engine).Await()
	require.NoError(t, err)

	mgr := NewManager(ctx)
	_, err = mgr.Start().Await()
	require.NoError(t, err)

	stages := mgr.CollectStages()
	require.Len(t, stages, 1)
	assert.Equal(t, "lint", stages[0].Title)
}
