package intent_test

import (
	"testing"

	"github.com/containifyci/foundry/pkg/intent"
	"github.com/stretchr/testify/assert"
)

func TestSetAndGetAttributeRoundTrip(t *testing.T) {
	i := intent.New()
	i.SetAttribute("enabled", intent.AttrBool, true)
	i.SetAttribute("title", intent.AttrString, "hello")
	i.SetAttribute("tags", intent.AttrStringList, []string{"a", "b"})

	b, ok := i.GetAttributeBool("enabled")
	assert.True(t, ok)
	assert.True(t, b)

	s, ok := i.GetAttributeString("title")
	assert.True(t, ok)
	assert.Equal(t, "hello", s)

	list, ok := i.GetAttributeStringList("tags")
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, list)
}

func TestGetAttributeMissingReturnsFalse(t *testing.T) {
	i := intent.New()
	_, ok := i.GetAttributeString("absent")
	assert.False(t, ok)
}

func TestGetAttributeKindMismatchReturnsFalse(t *testing.T) {
	i := intent.New()
	i.SetAttribute("name", intent.AttrString, "widget")

	_, ok := i.GetAttributeBool("name")
	assert.False(t, ok)
}

func TestNewOpenFileSetsFileAndContentType(t *testing.T) {
	i := intent.NewOpenFile("/tmp/a.vala", "text/x-vala")

	file, ok := i.GetAttributeString("file")
	assert.True(t, ok)
	assert.Equal(t, "/tmp/a.vala", file)

	ct, ok := i.GetAttributeString("content-type")
	assert.True(t, ok)
	assert.Equal(t, "text/x-vala", ct)
}

func TestNewWebSetsURI(t *testing.T) {
	i := intent.NewWeb("https://example.com")
	uri, ok := i.GetAttributeString("uri")
	assert.True(t, ok)
	assert.Equal(t, "https://example.com", uri)
}

func TestNewActionWithoutParameterOmitsVariant(t *testing.T) {
	i := intent.NewAction("open-terminal", nil)
	name, ok := i.GetAttributeString("action-name")
	assert.True(t, ok)
	assert.Equal(t, "open-terminal", name)

	_, ok = i.GetAttributeVariant("parameter")
	assert.False(t, ok)
}

func TestNewActionWithParameterSetsVariant(t *testing.T) {
	i := intent.NewAction("reveal", "/tmp/file")
	v, ok := i.GetAttributeVariant("parameter")
	assert.True(t, ok)
	assert.Equal(t, "/tmp/file", v)
}
