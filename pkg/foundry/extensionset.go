package foundry

import (
	"reflect"
	"sort"
	"sync"
)

// extEntry pairs a plugin-contributed Addin with the key its ExtensionSet
// indexes it under: "<plugin-id>/<interface>".
type extEntry struct {
	key      string
	pluginID string
	priority int
	module   string
	addin    Addin
}

// Key returns the entry's "<plugin-id>/<interface>" identity, exported so
// callers can compare ExtensionSet.Snapshot ordering without reaching
// into unexported fields.
func (e extEntry) Key() string { return e.key }

// PluginID returns the identity Add registered this entry under.
func (e extEntry) PluginID() string { return e.pluginID }

// Addin returns the registered extension instance itself.
func (e extEntry) Addin() Addin { return e.addin }

// ExtensionSet is a live-updating mapping from plugin identity to an
// extension instance for a single declared capability interface.
// Iteration order is by plugin-declared priority, ties broken by module
// name.
type ExtensionSet struct {
	Interface string

	mu      sync.Mutex
	entries map[string]extEntry
	onAdds  []func(extEntry)
	onRems  []func(extEntry)
}

// NewExtensionSet creates an empty set for the named capability
// interface.
func NewExtensionSet(iface string) *ExtensionSet {
	return &ExtensionSet{Interface: iface, entries: make(map[string]extEntry)}
}

// Add registers an extension for pluginID with the given priority and
// module name (used as the tie-breaker), replacing any prior extension
// for the same plugin. Signals registered add handlers.
func (es *ExtensionSet) Add(pluginID string, priority int, module string, addin Addin) {
	e := extEntry{key: pluginID + "/" + es.Interface, pluginID: pluginID, priority: priority, module: module, addin: addin}
	es.mu.Lock()
	es.entries[e.key] = e
	handlers := append([]func(extEntry){}, es.onAdds...)
	es.mu.Unlock()
	for _, h := range handlers {
		h(e)
	}
}

// Remove unregisters pluginID's extension, if present, and signals
// registered remove handlers.
func (es *ExtensionSet) Remove(pluginID string) {
	key := pluginID + "/" + es.Interface
	es.mu.Lock()
	e, ok := es.entries[key]
	if ok {
		delete(es.entries, key)
	}
	handlers := append([]func(extEntry){}, es.onRems...)
	es.mu.Unlock()
	if ok {
		for _, h := range handlers {
			h(e)
		}
	}
}

// Snapshot returns the currently registered extensions ordered by
// priority, ties broken by module name.
func (es *ExtensionSet) Snapshot() []extEntry {
	es.mu.Lock()
	defer es.mu.Unlock()
	out := make([]extEntry, 0, len(es.entries))
	for _, e := range es.entries {
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].priority != out[j].priority {
			return out[i].priority > out[j].priority
		}
		return out[i].module < out[j].module
	})
	return out
}

func (es *ExtensionSet) onAdd(fn func(extEntry)) {
	es.mu.Lock()
	defer es.mu.Unlock()
	es.onAdds = append(es.onAdds, fn)
}

func (es *ExtensionSet) onRemove(fn func(extEntry)) {
	es.mu.Lock()
	defer es.mu.Unlock()
	es.onRems = append(es.onRems, fn)
}

func (es *ExtensionSet) offAdd(fn func(extEntry)) {
	es.removeHandler(&es.onAdds, fn)
}

func (es *ExtensionSet) offRemove(fn func(extEntry)) {
	es.removeHandler(&es.onRems, fn)
}

func (es *ExtensionSet) removeHandler(slice *[]func(extEntry), fn func(extEntry)) {
	es.mu.Lock()
	defer es.mu.Unlock()
	target := reflect.ValueOf(fn).Pointer()
	filtered := make([]func(extEntry), 0, len(*slice))
	for _, h := range *slice {
		if reflect.ValueOf(h).Pointer() != target {
			filtered = append(filtered, h)
		}
	}
	*slice = filtered
}
