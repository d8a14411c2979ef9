package team_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/containifyci/foundry/pkg/ferr"
	"github.com/containifyci/foundry/pkg/team"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) team.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "team.db")
	store, err := team.OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCreateAndGetPersona(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	p := team.Persona{ID: "p1", Name: "Release Manager", Description: "tracks release readiness", CreatedAt: time.Now()}
	require.NoError(t, store.CreatePersona(ctx, p))

	got, err := store.GetPersona(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, p.Name, got.Name)
	assert.Equal(t, p.Description, got.Description)
}

func TestGetPersonaNotFound(t *testing.T) {
	store := openTestStore(t)
	_, err := store.GetPersona(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, ferr.NotFound, ferr.Of(err))
}

func TestListPersonasOrdersByName(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.CreatePersona(ctx, team.Persona{ID: "p2", Name: "Zed", CreatedAt: time.Now()}))
	require.NoError(t, store.CreatePersona(ctx, team.Persona{ID: "p1", Name: "Abe", CreatedAt: time.Now()}))

	personas, err := store.ListPersonas(ctx)
	require.NoError(t, err)
	require.Len(t, personas, 2)
	assert.Equal(t, "Abe", personas[0].Name)
}

func TestCreateAndListStandups(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.CreatePersona(ctx, team.Persona{ID: "p1", Name: "Lead", CreatedAt: time.Now()}))

	enabled := team.Standup{ID: "s1", PersonaID: "p1", Name: "daily", Prompt: "status?", CronSchedule: "0 0 9 * * *", Enabled: true, CreatedAt: time.Now()}
	disabled := team.Standup{ID: "s2", PersonaID: "p1", Name: "weekly", Prompt: "blockers?", CronSchedule: "0 0 9 * * 1", Enabled: false, CreatedAt: time.Now()}
	require.NoError(t, store.CreateStandup(ctx, enabled))
	require.NoError(t, store.CreateStandup(ctx, disabled))

	all, err := store.ListStandups(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onlyEnabled, err := store.ListEnabledStandups(ctx)
	require.NoError(t, err)
	require.Len(t, onlyEnabled, 1)
	assert.Equal(t, "daily", onlyEnabled[0].Name)
}

func TestRecordAndListRuns(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.CreatePersona(ctx, team.Persona{ID: "p1", Name: "Lead", CreatedAt: time.Now()}))
	require.NoError(t, store.CreateStandup(ctx, team.Standup{ID: "s1", PersonaID: "p1", Name: "daily", CronSchedule: "0 0 9 * * *", Enabled: true, CreatedAt: time.Now()}))

	run := team.Run{ID: "r1", StandupID: "s1", StartedAt: time.Now(), FinishedAt: time.Now(), Output: "all clear"}
	require.NoError(t, store.RecordRun(ctx, run))

	runs, err := store.ListRuns(ctx, "s1", 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "all clear", runs[0].Output)
}
