package grep_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/containifyci/foundry/pkg/grep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSearchSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.c", "int main() {\n  widget_new();\n  return 0;\n}\n")

	matches, err := grep.Search("widget", []string{path}, grep.Options{})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 2, matches[0].LineNumber)
}

func TestSearchCaseInsensitiveByDefault(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.c", "WIDGET\n")

	matches, err := grep.Search("widget", []string{path}, grep.Options{})
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestSearchCaseSensitive(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.c", "WIDGET\n")

	matches, err := grep.Search("widget", []string{path}, grep.Options{CaseSensitive: true})
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestSearchWholeWord(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.c", "widgetfactory\nwidget\n")

	matches, err := grep.Search("widget", []string{path}, grep.Options{WholeWord: true, CaseSensitive: true})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 2, matches[0].LineNumber)
}

func TestSearchRecursiveRequiresFlag(t *testing.T) {
	dir := t.TempDir()
	_, err := grep.Search("widget", []string{dir}, grep.Options{})
	assert.Error(t, err)
}

func TestSearchRecursiveWalksSubdirectories(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	writeFile(t, sub, "a.c", "widget\n")

	matches, err := grep.Search("widget", []string{dir}, grep.Options{Recursive: true})
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestSearchMaxMatches(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.c", "widget\nwidget\nwidget\n")

	matches, err := grep.Search("widget", []string{path}, grep.Options{MaxMatches: 2})
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestSearchContextLines(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.c", "a\nb\nwidget\nc\nd\n")

	matches, err := grep.Search("widget", []string{path}, grep.Options{ContextLines: 1})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, []string{"b"}, matches[0].Before)
	assert.Equal(t, []string{"c"}, matches[0].After)
}

func TestFormatRendersLineNumberPrefix(t *testing.T) {
	m := grep.Match{Path: "main.c", LineNumber: 2, Line: "widget"}
	out := grep.Format(m)
	assert.Equal(t, "main.c:2:widget", out)
}
