// Package doc implements the documentation-bundle registry named in
// `foundry doc query|bundle list` commands. Grounded on
// the original GNOME source's FoundryDocumentationManager semantics
// (foundry-cli-builtin-doc-bundle-list.c lists bundles with fields id,
// title, installed, subtitle; foundry-cli-builtin-doc-query.c joins all
// trailing argv words into a single search string and returns title,
// uri pairs). Query is served by pkg/fuzzyindex rather than the
// original's SQLite FTS, matching fuzzy-match design.
package doc

import (
	"sort"
	"strings"

	"github.com/containifyci/foundry/pkg/fuzzyindex"
)

// Bundle is one registered documentation bundle.
type Bundle struct {
	ID        string
	Title     string
	Subtitle  string
	Installed bool
}

// Page is one indexed documentation page within a bundle.
type Page struct {
	Title string
	URI   string
}

// Result is one doc query match.
type Result struct {
	Title string
	URI   string
	Score float64
}

// Manager holds the registered bundles and their page index.
type Manager struct {
	bundles map[string]Bundle
	index   *fuzzyindex.Index
}

// NewManager constructs an empty documentation registry.
func NewManager() *Manager {
	return &Manager{
		bundles: make(map[string]Bundle),
		index:   fuzzyindex.New(false),
	}
}

// AddBundle registers a bundle, replacing any existing entry with the
// same ID.
func (m *Manager) AddBundle(b Bundle) {
	m.bundles[b.ID] = b
}

// Bundles returns every registered bundle, sorted by id, matching the
// original's doc-bundle-list field order (id, title, installed,
// subtitle).
func (m *Manager) Bundles() []Bundle {
	out := make([]Bundle, 0, len(m.bundles))
	for _, b := range m.bundles {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// IndexPage adds a page to the query index.
func (m *Manager) IndexPage(p Page) {
	m.index.Insert(p.Title, p)
}

// Query joins words and returns matches ranked by pkg/fuzzyindex's score.
func (m *Manager) Query(words []string, maxMatches int) []Result {
	text := strings.Join(words, " ")
	matches := m.index.Match(text, maxMatches)
	out := make([]Result, 0, len(matches))
	for _, match := range matches {
		page, ok := match.Value.(Page)
		if !ok {
			continue
		}
		out = append(out, Result{Title: page.Title, URI: page.URI, Score: match.Score})
	}
	return out
}
