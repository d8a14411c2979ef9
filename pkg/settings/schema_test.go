package settings_test

import (
	"path/filepath"
	"testing"

	"github.com/containifyci/foundry/pkg/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterSchemaRejectsInvalidValue(t *testing.T) {
	schemaDoc := []byte(`{
		"type": "object",
		"properties": {
			"arch": {"type": "string", "enum": ["x86_64", "aarch64"]}
		}
	}`)
	require.NoError(t, settings.RegisterSchema("validated-build", schemaDoc))

	path := filepath.Join(t.TempDir(), "settings.yaml")
	s, err := settings.Load(path)
	require.NoError(t, err)

	err = s.Set("validated-build", "arch", "not-a-real-arch")
	assert.Error(t, err)
}

func TestRegisterSchemaAllowsValidValue(t *testing.T) {
	schemaDoc := []byte(`{
		"type": "object",
		"properties": {
			"arch": {"type": "string", "enum": ["x86_64", "aarch64"]}
		}
	}`)
	require.NoError(t, settings.RegisterSchema("validated-build-ok", schemaDoc))

	path := filepath.Join(t.TempDir(), "settings.yaml")
	s, err := settings.Load(path)
	require.NoError(t, err)

	assert.NoError(t, s.Set("validated-build-ok", "arch", "x86_64"))
}
