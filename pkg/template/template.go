// Package template implements the project-template registry named in
// `foundry template create TEMPLATE_ID` command, grounded
// on the original GNOME source's FoundryTemplateManager flow
// (foundry-cli-builtin-template-create.c: find template by id,
// optionally collect input, expand) and on own
// text/template usage in cmd/init.go for scaffold rendering.
package template

import (
	"bytes"
	"text/template"

	"github.com/containifyci/foundry/pkg/ferr"
)

// Template is one registered project scaffold: a named text/template
// body plus the input keys it expects.
type Template struct {
	ID     string
	Name   string
	Inputs []string // keys the caller must supply before Expand
	Body   string
}

// Manager holds the registered templates.
type Manager struct {
	templates map[string]Template
}

// NewManager constructs an empty template registry.
func NewManager() *Manager {
	return &Manager{templates: make(map[string]Template)}
}

// Register adds or replaces a template.
func (m *Manager) Register(t Template) {
	m.templates[t.ID] = t
}

// Find looks up a template by id, mirroring
// foundry_template_manager_find_template's error path.
func (m *Manager) Find(id string) (Template, error) {
	t, ok := m.templates[id]
	if !ok {
		return Template{}, ferr.New(ferr.NotFound, "no such template \""+id+"\"")
	}
	return t, nil
}

// Expand renders t's body against input, failing InvalidArgument if a
// declared input key is missing.
func Expand(t Template, input map[string]string) (string, error) {
	for _, key := range t.Inputs {
		if _, ok := input[key]; !ok {
			return "", ferr.New(ferr.InvalidArgument, "missing template input \""+key+"\"")
		}
	}
	tmpl, err := template.New(t.ID).Parse(t.Body)
	if err != nil {
		return "", ferr.Wrap(ferr.InvalidData, err, "parsing template "+t.ID)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, input); err != nil {
		return "", ferr.Wrap(ferr.InvalidData, err, "expanding template "+t.ID)
	}
	return buf.String(), nil
}
