// Package settings implements the app.devsuite.foundry.<subtree> schema
// namespace as a YAML-backed key-value tree, adapted from
// pkg/config stack: environment.go's prefixed env-var
// override idiom and validation.go's schema-checked field idea,
// generalized from a fixed Config struct to an arbitrary subtree/key
// path so plugin-contributed schemas can register without a recompile.
package settings

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/containifyci/foundry/pkg/ferr"
	"gopkg.in/yaml.v3"
)

// RootSchema is the namespace prefix every Foundry settings key lives
// under.
const RootSchema = "app.devsuite.foundry"

// EnvPrefix is the prefix environment-variable overrides use, following
// a FOUNDRY_<SECTION>_<KEY> naming scheme.
const EnvPrefix = "FOUNDRY"

// Store is a YAML-backed settings tree. One subtree (e.g. "build") maps
// to one top-level YAML key; keys within a subtree are dash-cased.
type Store struct {
	mu   sync.Mutex
	path string
	tree map[string]map[string]any
}

// Load reads path (creating an empty tree if it does not exist yet).
func Load(path string) (*Store, error) {
	s := &Store{path: path, tree: make(map[string]map[string]any)}
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, ferr.Wrap(ferr.Io, err, "reading settings file")
	}
	if err := yaml.Unmarshal(raw, &s.tree); err != nil {
		return nil, ferr.Wrap(ferr.InvalidData, err, "parsing settings YAML")
	}
	if s.tree == nil {
		s.tree = make(map[string]map[string]any)
	}
	return s, nil
}

// Save persists the current tree back to path.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := yaml.Marshal(s.tree)
	if err != nil {
		return ferr.Wrap(ferr.Io, err, "marshaling settings")
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return ferr.Wrap(ferr.Io, err, "writing settings file")
	}
	return nil
}

// Get returns the value at subtree.key, preferring an environment
// variable override (FOUNDRY_<SUBTREE>_<KEY>, uppercased, dashes
// converted to underscores) over the stored YAML value.
func (s *Store) Get(subtree, key string) (any, bool) {
	if raw, ok := os.LookupEnv(envVarName(subtree, key)); ok {
		return raw, true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	section, ok := s.tree[subtree]
	if !ok {
		return nil, false
	}
	v, ok := section[key]
	return v, ok
}

// GetString is Get with a string type assertion.
func (s *Store) GetString(subtree, key string) (string, bool) {
	v, ok := s.Get(subtree, key)
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	return str, ok
}

// GetStringList is Get with a []string coercion, accepting both a YAML
// sequence (unmarshaled as []any) and a comma-separated environment
// variable override.
func (s *Store) GetStringList(subtree, key string) ([]string, bool) {
	if raw, ok := os.LookupEnv(envVarName(subtree, key)); ok {
		if raw == "" {
			return nil, true
		}
		return strings.Split(raw, ","), true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	section, ok := s.tree[subtree]
	if !ok {
		return nil, false
	}
	v, ok := section[key]
	if !ok {
		return nil, false
	}
	switch list := v.(type) {
	case []string:
		return list, true
	case []any:
		out := make([]string, 0, len(list))
		for _, e := range list {
			if str, ok := e.(string); ok {
				out = append(out, str)
			}
		}
		return out, true
	default:
		return nil, false
	}
}

// Set writes subtree.key, validating against a registered schema first
// if one exists for subtree.
func (s *Store) Set(subtree, key string, value any) error {
	if err := s.validate(subtree, key, value); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tree[subtree] == nil {
		s.tree[subtree] = make(map[string]any)
	}
	s.tree[subtree][key] = value
	return nil
}

func envVarName(subtree, key string) string {
	sanitize := func(s string) string {
		return strings.ToUpper(strings.ReplaceAll(s, "-", "_"))
	}
	return fmt.Sprintf("%s_%s_%s", EnvPrefix, sanitize(subtree), sanitize(key))
}
