package fuzzyindex_test

import (
	"testing"

	"github.com/containifyci/foundry/pkg/fuzzyindex"
	"github.com/stretchr/testify/assert"
)

func TestHighlightWrapsMatchingRuns(t *testing.T) {
	out := fuzzyindex.Highlight("widget.vala", "wva", false)
	assert.Equal(t, "<b>w</b>idget.<b>va</b>la", out)
}

func TestHighlightEscapesHTML(t *testing.T) {
	out := fuzzyindex.Highlight("a<b>&c", "", false)
	assert.Equal(t, "a&lt;b&gt;&amp;c", out)
}

func TestHighlightCaseInsensitiveByDefault(t *testing.T) {
	out := fuzzyindex.Highlight("Widget", "wi", false)
	assert.Equal(t, "<b>Wi</b>dget", out)
}

func TestHighlightCaseSensitiveNoMatch(t *testing.T) {
	out := fuzzyindex.Highlight("Widget", "wi", true)
	assert.Equal(t, "Widget", out)
}
