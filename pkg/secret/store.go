// Package secret implements the secret store and key rotation named in
// `foundry secret` commands. Store is an interface so a
// future encrypted-at-rest backend can replace the reference
// implementation without touching callers; see DESIGN.md for why the
// reference implementation is plaintext YAML.
package secret

import (
	"time"

	"github.com/containifyci/foundry/pkg/ferr"
	"github.com/containifyci/foundry/pkg/settings"
)

// Key identifies one stored secret by the host and service it
// authenticates against (e.g. host "api.example.com", service
// "deploy").
type Key struct {
	Host    string
	Service string
}

func (k Key) settingsKey() string {
	return k.Host + "/" + k.Service
}

// Record is one stored API key plus its rotation metadata.
type Record struct {
	APIKey   string
	ExpireAt time.Time // zero value means no expiry set
}

// Store set/gets/rotates API keys.
type Store interface {
	SetAPIKey(k Key, apiKey string) error
	GetAPIKey(k Key) (string, error)
	Rotate(k Key, newAPIKey string, expireAt time.Time) error
	CheckExpiresAt(k Key) (time.Time, error)
}

const secretsSubtree = "secrets"

// yamlStore is the reference Store implementation: secrets live in the
// same YAML-backed settings tree as everything else, under the
// "secrets" subtree, one entry per "host/service" key, 0600-permissioned
// on disk by pkg/settings.Store.Save. No pack dependency provides an
// at-rest encryption primitive (see DESIGN.md), so this is plaintext by
// design and documented as such rather than faked.
type yamlStore struct {
	settings *settings.Store
}

// NewYAMLStore wraps a settings.Store as a secret Store.
func NewYAMLStore(s *settings.Store) Store {
	return &yamlStore{settings: s}
}

func (y *yamlStore) SetAPIKey(k Key, apiKey string) error {
	rec := Record{APIKey: apiKey}
	return y.put(k, rec)
}

func (y *yamlStore) GetAPIKey(k Key) (string, error) {
	rec, err := y.get(k)
	if err != nil {
		return "", err
	}
	return rec.APIKey, nil
}

func (y *yamlStore) Rotate(k Key, newAPIKey string, expireAt time.Time) error {
	rec := Record{APIKey: newAPIKey, ExpireAt: expireAt}
	return y.put(k, rec)
}

func (y *yamlStore) CheckExpiresAt(k Key) (time.Time, error) {
	rec, err := y.get(k)
	if err != nil {
		return time.Time{}, err
	}
	return rec.ExpireAt, nil
}

func (y *yamlStore) put(k Key, rec Record) error {
	encoded := map[string]any{
		"api-key": rec.APIKey,
	}
	if !rec.ExpireAt.IsZero() {
		encoded["expire-at"] = rec.ExpireAt.Format(time.RFC3339)
	}
	return y.settings.Set(secretsSubtree, k.settingsKey(), encoded)
}

func (y *yamlStore) get(k Key) (Record, error) {
	raw, ok := y.settings.Get(secretsSubtree, k.settingsKey())
	if !ok {
		return Record{}, ferr.New(ferr.NotFound, "no secret for "+k.Host+"/"+k.Service)
	}
	encoded, ok := raw.(map[string]any)
	if !ok {
		return Record{}, ferr.New(ferr.InvalidData, "malformed secret entry for "+k.Host+"/"+k.Service)
	}
	rec := Record{}
	if apiKey, ok := encoded["api-key"].(string); ok {
		rec.APIKey = apiKey
	}
	if expireRaw, ok := encoded["expire-at"].(string); ok {
		t, err := time.Parse(time.RFC3339, expireRaw)
		if err != nil {
			return Record{}, ferr.Wrap(ferr.InvalidData, err, "parsing expire-at for "+k.Host+"/"+k.Service)
		}
		rec.ExpireAt = t
	}
	return rec, nil
}
