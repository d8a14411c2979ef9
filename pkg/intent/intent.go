// Package intent implements Intent and the Intent bus: an attributed message dispatched to priority-ordered handlers
// until one claims it.
package intent

import "sync"

// AttrKind tags the type of a stored attribute value.
type AttrKind int

const (
	AttrUnknown AttrKind = iota
	AttrBool
	AttrString
	AttrStringList
	AttrObject
	AttrVariant
)

type attrValue struct {
	kind AttrKind
	val  any
}

// Intent is an attributed message, inert until dispatched.
type Intent struct {
	mu    sync.Mutex
	attrs map[string]attrValue
}

// New creates an empty Intent.
func New() *Intent {
	return &Intent{attrs: make(map[string]attrValue)}
}

// SetAttribute copies value in under name, tagged with kind.
func (i *Intent) SetAttribute(name string, kind AttrKind, value any) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.attrs[name] = attrValue{kind: kind, val: value}
}

func (i *Intent) get(name string, kind AttrKind) (any, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	v, ok := i.attrs[name]
	if !ok || v.kind != kind {
		return nil, false
	}
	return v.val, true
}

// GetAttributeBool returns the named bool attribute, or false/false if
// missing or of a different kind.
func (i *Intent) GetAttributeBool(name string) (bool, bool) {
	v, ok := i.get(name, AttrBool)
	if !ok {
		return false, false
	}
	return v.(bool), true
}

// GetAttributeString returns the named string attribute, or ""/false
// if missing or of a different kind.
func (i *Intent) GetAttributeString(name string) (string, bool) {
	v, ok := i.get(name, AttrString)
	if !ok {
		return "", false
	}
	return v.(string), true
}

// GetAttributeStringList returns the named string-list attribute.
func (i *Intent) GetAttributeStringList(name string) ([]string, bool) {
	v, ok := i.get(name, AttrStringList)
	if !ok {
		return nil, false
	}
	return v.([]string), true
}

// GetAttributeObject returns the named object attribute.
func (i *Intent) GetAttributeObject(name string) (any, bool) {
	return i.get(name, AttrObject)
}

// GetAttributeVariant returns the named variant attribute.
func (i *Intent) GetAttributeVariant(name string) (any, bool) {
	return i.get(name, AttrVariant)
}

// NewOpenFile builds the open-file specialized intent.
func NewOpenFile(file, contentType string) *Intent {
	i := New()
	i.SetAttribute("file", AttrString, file)
	i.SetAttribute("content-type", AttrString, contentType)
	return i
}

// NewWeb builds the web specialized intent.
func NewWeb(uri string) *Intent {
	i := New()
	i.SetAttribute("uri", AttrString, uri)
	return i
}

// NewAction builds the action specialized intent. parameter may be nil.
func NewAction(name string, parameter any) *Intent {
	i := New()
	i.SetAttribute("action-name", AttrString, name)
	if parameter != nil {
		i.SetAttribute("parameter", AttrVariant, parameter)
	}
	return i
}
