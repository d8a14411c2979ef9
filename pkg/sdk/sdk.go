// Package sdk implements the SDK registry named in `foundry
// sdk switch|which|list` commands: a flat list of named toolchain roots
// (each an absolute directory containing a `bin/` of programs), with one
// entry persisted as "active" via pkg/settings. Grounded on the original
// GNOME source's FoundrySdkManager semantics
// (foundry-cli-builtin-sdk-which.c, foundry-cli-builtin-sdk-switch.c):
// `which` resolves PROGRAM inside SDK's bin directory, `switch` persists
// the active SDK id, and both report the original CLI's error text:
// "No such SDK" / "No such command ... in SDK" from `which`, and
// "No such sdk" from `switch`.
package sdk

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/containifyci/foundry/pkg/ferr"
	"github.com/containifyci/foundry/pkg/settings"
)

// SDK is one registered toolchain root.
type SDK struct {
	ID   string
	Root string
}

const (
	subtree       = "sdk"
	registryKey   = "registry"
	activeIDKey   = "active-id"
)

// Manager is the SDK registry backed by a settings.Store.
type Manager struct {
	settings *settings.Store
}

// NewManager wraps s as an SDK registry.
func NewManager(s *settings.Store) *Manager {
	return &Manager{settings: s}
}

// Register adds or replaces the SDK entry for id.
func (m *Manager) Register(id, root string) error {
	list := m.list()
	found := false
	for i, s := range list {
		if s.ID == id {
			list[i].Root = root
			found = true
			break
		}
	}
	if !found {
		list = append(list, SDK{ID: id, Root: root})
	}
	return m.save(list)
}

// List returns every registered SDK, sorted by id.
func (m *Manager) List() []SDK {
	list := m.list()
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// Find returns the SDK registered under id, or NotFound.
func (m *Manager) Find(id string) (SDK, error) {
	for _, s := range m.list() {
		if s.ID == id {
			return s, nil
		}
	}
	return SDK{}, ferr.New(ferr.NotFound, "No such SDK \""+id+"\"")
}

// Which resolves program inside the named SDK's bin directory, mirroring
// foundry_sdk_contains_program.
func (m *Manager) Which(id, program string) (string, error) {
	s, err := m.Find(id)
	if err != nil {
		return "", err
	}
	path := filepath.Join(s.Root, "bin", program)
	if info, statErr := os.Stat(path); statErr != nil || info.IsDir() {
		return "", ferr.New(ferr.NotFound, "No such command \""+program+"\" in SDK \""+id+"\"")
	}
	return path, nil
}

// ActiveID returns the persisted active SDK id, if any.
func (m *Manager) ActiveID() (string, bool) {
	return m.settings.GetString(subtree, activeIDKey)
}

// Switch persists id as the active SDK, failing NotFound if id isn't
// registered, mirroring foundry_sdk_manager_set_sdk's "No such sdk"
// error text.
func (m *Manager) Switch(id string) error {
	if _, err := m.Find(id); err != nil {
		return ferr.New(ferr.NotFound, "No such sdk \""+id+"\"")
	}
	return m.settings.Set(subtree, activeIDKey, id)
}

func (m *Manager) list() []SDK {
	raw, ok := m.settings.Get(subtree, registryKey)
	if !ok {
		return nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]SDK, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		id, _ := entry["id"].(string)
		root, _ := entry["root"].(string)
		if id != "" {
			out = append(out, SDK{ID: id, Root: root})
		}
	}
	return out
}

func (m *Manager) save(list []SDK) error {
	encoded := make([]any, 0, len(list))
	for _, s := range list {
		encoded = append(encoded, map[string]any{"id": s.ID, "root": s.Root})
	}
	return m.settings.Set(subtree, registryKey, encoded)
}
