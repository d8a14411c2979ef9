package control_test

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/containifyci/foundry/pkg/control"
	"github.com/containifyci/foundry/pkg/foundry"
	"github.com/containifyci/foundry/pkg/settings"
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

func TestHealthzReturnsOK(t *testing.T) {
	store, err := settings.Load(filepath.Join(t.TempDir(), "settings.yaml"))
	require.NoError(t, err)

	srv := control.New(newTestContext(t), store)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestInhibitorsReportsActiveOperations(t *testing.T) {
	store, err := settings.Load(filepath.Join(t.TempDir(), "settings.yaml"))
	require.NoError(t, err)

	ctx := newTestContext(t)
	release := ctx.Inhibit("build")
	defer release()

	srv := control.New(ctx, store)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/inhibitors", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "build")
}

func TestPipelineRunWithoutTriggerReturnsNotImplemented(t *testing.T) {
	store, err := settings.Load(filepath.Join(t.TempDir(), "settings.yaml"))
	require.NoError(t, err)

	srv := control.New(newTestContext(t), store)
	w := httptest.NewRecorder()
	body := strings.NewReader(`{"phases":["build"]}`)
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/pipeline/run", body))
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestPipelineRunInvokesBuildTrigger(t *testing.T) {
	store, err := settings.Load(filepath.Join(t.TempDir(), "settings.yaml"))
	require.NoError(t, err)

	var gotPhases []string
	srv := control.New(newTestContext(t), store).WithBuildTrigger(func(phases []string) error {
		gotPhases = phases
		return nil
	})

	w := httptest.NewRecorder()
	body := strings.NewReader(`{"phases":["build","install"]}`)
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/pipeline/run", body))
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, []string{"build", "install"}, gotPhases)
}

func TestSettingsGetMissingKeyReturns404(t *testing.T) {
	store, err := settings.Load(filepath.Join(t.TempDir(), "settings.yaml"))
	require.NoError(t, err)

	srv := control.New(newTestContext(t), store)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/settings/sdk/registry", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
