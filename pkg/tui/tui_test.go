package tui_test

import (
	"context"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/containifyci/foundry/pkg/foundry"
	"github.com/containifyci/foundry/pkg/team"
	"github.com/containifyci/foundry/pkg/tui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

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

func newTestContext(t *testing.T) *foundry.Context {
	t.Helper()
	dir := t.TempDir()
	ctx, err := foundry.New(filepath.Join(dir, "state"), dir, foundry.FlagCreate, newFakeEngine()).Await()
	require.NoError(t, err)
	return ctx
}

func newTestStore(t *testing.T) team.Store {
	t.Helper()
	store, err := team.OpenSQLite(filepath.Join(t.TempDir(), "team.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seedStandup(t *testing.T, store team.Store, id, name string) {
	t.Helper()
	bg := context.Background()
	require.NoError(t, store.CreatePersona(bg, team.Persona{ID: id + "-persona", Name: name}))
	require.NoError(t, store.CreateStandup(bg, team.Standup{
		ID:           id,
		PersonaID:    id + "-persona",
		Name:         name,
		Prompt:       "say hi",
		CronSchedule: "0 9 * * *",
		Enabled:      true,
	}))
}

func TestNewListsStandupsFromStore(t *testing.T) {
	store := newTestStore(t)
	seedStandup(t, store, "standup-1", "Backend")
	seedStandup(t, store, "standup-2", "Frontend")

	m, err := tui.New(newTestContext(t), store)
	require.NoError(t, err)
	assert.Contains(t, m.View(), "Backend")
	assert.Contains(t, m.View(), "Frontend")
}

func TestUpdateCursorNavigation(t *testing.T) {
	store := newTestStore(t)
	seedStandup(t, store, "standup-1", "Backend")
	seedStandup(t, store, "standup-2", "Frontend")

	m, err := tui.New(newTestContext(t), store)
	require.NoError(t, err)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(tui.Model)
	assert.Contains(t, m.View(), "> ")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = next.(tui.Model)
	assert.Contains(t, m.View(), "> ")
}

func TestUpdateQuitReturnsQuitCmd(t *testing.T) {
	store := newTestStore(t)
	m, err := tui.New(newTestContext(t), store)
	require.NoError(t, err)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
}

func TestUpdateEnterWithNoStandupsIsNoop(t *testing.T) {
	store := newTestStore(t)
	m, err := tui.New(newTestContext(t), store)
	require.NoError(t, err)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(tui.Model)
	assert.Nil(t, cmd)
	assert.Equal(t, "dispatching...", m.Status())
}

func TestViewShowsEmptyState(t *testing.T) {
	store := newTestStore(t)
	m, err := tui.New(newTestContext(t), store)
	require.NoError(t, err)
	assert.Contains(t, m.View(), "no standups registered")
}
