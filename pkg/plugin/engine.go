package plugin

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"sync"

	"github.com/containifyci/foundry/pkg/async"
	"github.com/containifyci/foundry/pkg/ferr"
	"github.com/containifyci/foundry/pkg/foundry"
	"github.com/hashicorp/go-hclog"
	goplugin "github.com/hashicorp/go-plugin"
)

// loadedPlugin tracks one discovered, launched plugin process.
type loadedPlugin struct {
	path     string
	client   *goplugin.Client
	ext      Extension
	manifest Manifest
}

// Engine is the process-wide plugin registry: a directory scan finds
// candidate binaries, Load launches one as a go-plugin subprocess and
// fetches its Manifest, Unload terminates it. ExtensionSet dispenses a
// live-updating foundry.ExtensionSet for a capability interface, filtered
// by a key-glob criterion.
type Engine struct {
	tp    *async.ThreadPoolScheduler
	sched *async.Scheduler

	mu      sync.Mutex
	plugins map[string]*loadedPlugin // keyed by path
}

// NewEngine creates an Engine that runs blocking plugin RPC calls on tp
// and marshals their completion through sched.
func NewEngine(tp *async.ThreadPoolScheduler, sched *async.Scheduler) *Engine {
	return &Engine{tp: tp, sched: sched, plugins: make(map[string]*loadedPlugin)}
}

// Discover scans dir (non-recursively) for executable files and returns
// their absolute paths as load candidates.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, ferr.Wrap(ferr.Io, err, "reading plugin search path")
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil || info.Mode()&0o111 == 0 {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

// List returns every loaded plugin's Manifest, ordered by priority
// (descending) then module name, per "list plugins".
func (e *Engine) List() []Manifest {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Manifest, 0, len(e.plugins))
	for _, lp := range e.plugins {
		out = append(out, lp.manifest)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].ModuleName < out[j].ModuleName
	})
	return out
}

// Load launches path as a go-plugin subprocess, idempotent: loading an
// already-loaded path returns the existing manifest without relaunching.
func (e *Engine) Load(path string) *async.Future[Manifest] {
	return async.SpawnPooled(e.tp, e.sched, func(context.Context) (Manifest, error) {
		e.mu.Lock()
		if lp, ok := e.plugins[path]; ok {
			e.mu.Unlock()
			return lp.manifest, nil
		}
		e.mu.Unlock()

		client := goplugin.NewClient(&goplugin.ClientConfig{
			HandshakeConfig: Handshake,
			Plugins: map[string]goplugin.Plugin{
				pluginMapKey: &ExtensionPlugin{},
			},
			Cmd:              exec.Command(path),
			Logger:           hclog.New(&hclog.LoggerOptions{Name: "foundry-plugin", Level: hclog.Error}),
			AllowedProtocols: []goplugin.Protocol{goplugin.ProtocolNetRPC},
		})

		rpcClient, err := client.Client()
		if err != nil {
			client.Kill()
			return Manifest{}, ferr.Wrap(ferr.Io, err, "connecting to plugin "+path)
		}
		raw, err := rpcClient.Dispense(pluginMapKey)
		if err != nil {
			client.Kill()
			return Manifest{}, ferr.Wrap(ferr.Io, err, "dispensing plugin "+path)
		}
		ext, ok := raw.(Extension)
		if !ok {
			client.Kill()
			return Manifest{}, ferr.New(ferr.InvalidData, "plugin "+path+" does not implement Extension")
		}
		manifest := ext.Manifest()

		e.mu.Lock()
		e.plugins[path] = &loadedPlugin{path: path, client: client, ext: ext, manifest: manifest}
		e.mu.Unlock()
		return manifest, nil
	})
}

// Unload terminates the plugin at path. Idempotent.
func (e *Engine) Unload(path string) *async.Future[struct{}] {
	return async.SpawnPooled(e.tp, e.sched, func(context.Context) (struct{}, error) {
		e.mu.Lock()
		lp, ok := e.plugins[path]
		if ok {
			delete(e.plugins, path)
		}
		e.mu.Unlock()
		if ok {
			lp.client.Kill()
		}
		return struct{}{}, nil
	})
}

// matchesCriteria implements "trivial key-glob criterion"
// (e.g. "Intent-Handler=*"): criteria maps a key to a glob pattern; an
// entry matches if the manifest declares the key's interface and the
// pattern matches the manifest's ModuleName (filepath.Match semantics).
func matchesCriteria(m Manifest, iface string, criteria map[string]string) bool {
	has := false
	for _, i := range m.Interfaces {
		if i == iface {
			has = true
			break
		}
	}
	if !has {
		return false
	}
	for key, pattern := range criteria {
		if key != iface {
			continue
		}
		if pattern == "*" {
			continue
		}
		if ok, _ := filepath.Match(pattern, m.ModuleName); !ok {
			return false
		}
	}
	return true
}

// ExtensionSet dispenses a foundry.ExtensionSet for iface, populated from
// every currently-loaded plugin whose manifest declares iface and
// matches criteria. Newly loaded/unloaded plugins after this call are
// NOT retroactively reflected — callers that need the live-updating
// contract from should call Refresh on the returned set
// after each Load/Unload.
func (e *Engine) ExtensionSet(iface string, criteria map[string]string) *foundry.ExtensionSet {
	set := foundry.NewExtensionSet(iface)
	e.refresh(set, iface, criteria)
	return set
}

// Refresh re-synchronizes set against the engine's currently loaded
// plugins for iface, adding newly matching plugins and removing ones
// that no longer qualify (unloaded, or no longer matching criteria).
func (e *Engine) Refresh(set *foundry.ExtensionSet, criteria map[string]string) {
	e.refresh(set, set.Interface, criteria)
}

func (e *Engine) refresh(set *foundry.ExtensionSet, iface string, criteria map[string]string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	present := make(map[string]bool, len(e.plugins))
	for path, lp := range e.plugins {
		if !matchesCriteria(lp.manifest, iface, criteria) {
			continue
		}
		present[path] = true
		set.Add(path, lp.manifest.Priority, lp.manifest.ModuleName, &remoteAddin{tp: e.tp, sched: e.sched, ext: lp.ext, iface: iface})
	}
	for _, entry := range set.Snapshot() {
		if !present[entry.PluginID()] {
			set.Remove(entry.PluginID())
		}
	}
}
