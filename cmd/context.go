package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/containifyci/foundry/pkg/async"
	"github.com/containifyci/foundry/pkg/foundry"
	"github.com/containifyci/foundry/pkg/fsutil"
	"github.com/containifyci/foundry/pkg/plugin"
	"github.com/containifyci/foundry/pkg/settings"
	"github.com/containifyci/foundry/pkg/team"
)

const teamSubtree = "team"

// configDir returns the foundry state directory under the user's home
// (~/.config/foundry), creating it if absent.
func configDir() (string, error) {
	home, err := fsutil.HomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".config", "foundry")
	if err := fsutil.EnsureDirectory(dir); err != nil {
		return "", err
	}
	return dir, nil
}

// openSettings loads the process-wide settings.Store from
// ~/.config/foundry/settings.yaml.
func openSettings() (*settings.Store, error) {
	dir, err := configDir()
	if err != nil {
		return nil, err
	}
	return settings.Load(filepath.Join(dir, "settings.yaml"))
}

// openContext opens (creating it if absent) the .foundry state directory
// directly under the current working directory, without searching parent
// directories, and returns a live Context backed by a freshly
// constructed plugin.Engine.
func openContext() (*foundry.Context, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	stateDir := filepath.Join(wd, ".foundry")
	tp := async.NewThreadPoolScheduler(4)
	tp.Start()
	sched := async.NewScheduler()
	engine := plugin.NewEngine(tp, sched)
	return foundry.New(stateDir, wd, foundry.FlagCreate, engine).Await()
}

// openTeamStore opens the team/persona workflow engine's store: a
// postgres store when settings.team.database-url is set (or its
// FOUNDRY_TEAM_DATABASE_URL environment override), the single-user
// sqlite store under ~/.config/foundry otherwise.
func openTeamStore() (team.Store, error) {
	settingsStore, err := openSettings()
	if err != nil {
		return nil, err
	}
	if connString, ok := settingsStore.GetString(teamSubtree, "database-url"); ok && connString != "" {
		return team.OpenPostgres(context.Background(), connString)
	}

	dir, err := configDir()
	if err != nil {
		return nil, err
	}
	return team.OpenSQLite(filepath.Join(dir, "team.db"))
}
