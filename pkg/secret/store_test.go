package secret_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/containifyci/foundry/pkg/ferr"
	"github.com/containifyci/foundry/pkg/secret"
	"github.com/containifyci/foundry/pkg/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) secret.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	s, err := settings.Load(path)
	require.NoError(t, err)
	return secret.NewYAMLStore(s)
}

func TestSetThenGetAPIKey(t *testing.T) {
	store := newStore(t)
	key := secret.Key{Host: "api.example.com", Service: "deploy"}

	require.NoError(t, store.SetAPIKey(key, "sk-123"))
	got, err := store.GetAPIKey(key)
	require.NoError(t, err)
	assert.Equal(t, "sk-123", got)
}

func TestGetAPIKeyMissingReturnsNotFound(t *testing.T) {
	store := newStore(t)
	_, err := store.GetAPIKey(secret.Key{Host: "x", Service: "y"})
	require.Error(t, err)
	assert.Equal(t, ferr.NotFound, ferr.Of(err))
}

func TestRotateUpdatesKeyAndExpiry(t *testing.T) {
	store := newStore(t)
	key := secret.Key{Host: "api.example.com", Service: "deploy"}
	require.NoError(t, store.SetAPIKey(key, "sk-old"))

	expiry := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Rotate(key, "sk-new", expiry))

	got, err := store.GetAPIKey(key)
	require.NoError(t, err)
	assert.Equal(t, "sk-new", got)

	gotExpiry, err := store.CheckExpiresAt(key)
	require.NoError(t, err)
	assert.True(t, expiry.Equal(gotExpiry))
}

func TestCheckExpiresAtZeroWhenUnset(t *testing.T) {
	store := newStore(t)
	key := secret.Key{Host: "api.example.com", Service: "deploy"}
	require.NoError(t, store.SetAPIKey(key, "sk-123"))

	gotExpiry, err := store.CheckExpiresAt(key)
	require.NoError(t, err)
	assert.True(t, gotExpiry.IsZero())
}
