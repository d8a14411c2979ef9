package compilecommands_test

import (
	"path/filepath"
	"testing"

	"github.com/containifyci/foundry/pkg/compilecommands"
	"github.com/containifyci/foundry/pkg/ferr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupFiltersCxxFlags(t *testing.T) {
	dir := t.TempDir()
	path := writeCompileCommands(t, dir, []map[string]any{
		{
			"file":      "main.c",
			"directory": dir,
			"command":   "cc -Wall -O2 -Dfoo=1 -Iinclude -Mdep.d -std=c11 -pthread -c main.c",
		},
	})
	cc, err := compilecommands.New(path).Await()
	require.NoError(t, err)

	argv, err := cc.Lookup(filepath.Join(dir, "main.c"), []string{"/usr/sys"})
	require.NoError(t, err)

	require.NotEmpty(t, argv)
	assert.Equal(t, "cc", argv[0])
	assert.Contains(t, argv, "-I/usr/sys")
	assert.Contains(t, argv, "-Wall")
	assert.Contains(t, argv, "-O2")
	assert.Contains(t, argv, "-Dfoo=1")
	assert.Contains(t, argv, "-I"+filepath.Join(dir, "include"))
	assert.Contains(t, argv, "-std=c11")
	assert.Contains(t, argv, "-pthread")
	for _, a := range argv {
		assert.NotContains(t, a, "-Mdep.d")
	}
}

func TestLookupHeaderPrivateFallsBackToC(t *testing.T) {
	dir := t.TempDir()
	path := writeCompileCommands(t, dir, []map[string]any{
		{"file": "widget.c", "directory": dir, "command": "cc -Wall widget.c"},
	})
	cc, err := compilecommands.New(path).Await()
	require.NoError(t, err)

	argv, err := cc.Lookup(filepath.Join(dir, "widget-private.h"), nil)
	require.NoError(t, err)
	assert.Contains(t, argv, "-Wall")
}

func TestLookupHeaderFallsBackThroughSourceSuffixes(t *testing.T) {
	dir := t.TempDir()
	path := writeCompileCommands(t, dir, []map[string]any{
		{"file": "thing.cpp", "directory": dir, "command": "c++ -Wextra thing.cpp"},
	})
	cc, err := compilecommands.New(path).Await()
	require.NoError(t, err)

	argv, err := cc.Lookup(filepath.Join(dir, "thing.h"), nil)
	require.NoError(t, err)
	assert.Contains(t, argv, "-Wextra")
}

func TestLookupNotFoundWhenNoEntryOrFallback(t *testing.T) {
	dir := t.TempDir()
	path := writeCompileCommands(t, dir, []map[string]any{
		{"file": "main.c", "directory": dir, "command": "cc main.c"},
	})
	cc, err := compilecommands.New(path).Await()
	require.NoError(t, err)

	_, err = cc.Lookup(filepath.Join(dir, "other.h"), nil)
	require.Error(t, err)
	assert.Equal(t, ferr.NotFound, ferr.Of(err))
}

func TestLookupValaFiltersArgs(t *testing.T) {
	dir := t.TempDir()
	path := writeCompileCommands(t, dir, []map[string]any{
		{
			"file":      "app.vala",
			"directory": dir,
			"command":   "valac --pkg gtk+-3.0 --vapidir vapi --target-glib=2.0 app.vala",
		},
	})
	cc, err := compilecommands.New(path).Await()
	require.NoError(t, err)

	argv, err := cc.Lookup(filepath.Join(dir, "app.vala"), nil)
	require.NoError(t, err)
	assert.Contains(t, argv, "--pkg")
	assert.Contains(t, argv, "gtk+-3.0")
	assert.Contains(t, argv, "--vapidir")
	assert.Contains(t, argv, filepath.Join(dir, "vapi"))
}
