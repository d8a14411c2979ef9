package settings

const (
	buildSubtree        = "build"
	linkedWorkspacesKey = "linked-workspaces"
)

// LinkedWorkspace is one entry in the app.devsuite.foundry.build
// linked-workspaces array: a sibling project's pipeline
// phase wired to run as part of this project's own phase.
type LinkedWorkspace struct {
	ProjectDirectory string
	StateDirectory   string
	Phase            []string
	LinkedPhase      []string

	// ControlAddr is the sibling workspace's loopback control server
	// address (host:port). Empty means the default control.DefaultAddr.
	ControlAddr string
}

func (w LinkedWorkspace) encode() map[string]any {
	return map[string]any{
		"project-directory": w.ProjectDirectory,
		"state-directory":   w.StateDirectory,
		"phase":             w.Phase,
		"linked-phase":      w.LinkedPhase,
		"control-addr":      w.ControlAddr,
	}
}

func decodeLinkedWorkspace(raw any) (LinkedWorkspace, bool) {
	m, ok := raw.(map[string]any)
	if !ok {
		return LinkedWorkspace{}, false
	}
	w := LinkedWorkspace{}
	w.ProjectDirectory, _ = m["project-directory"].(string)
	w.StateDirectory, _ = m["state-directory"].(string)
	w.Phase = decodeStringList(m["phase"])
	w.LinkedPhase = decodeStringList(m["linked-phase"])
	w.ControlAddr, _ = m["control-addr"].(string)
	return w, true
}

func decodeStringList(raw any) []string {
	switch list := raw.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, e := range list {
			if str, ok := e.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}

func samePhaseSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]bool, len(a))
	for _, p := range a {
		seen[p] = true
	}
	for _, p := range b {
		if !seen[p] {
			return false
		}
	}
	return true
}

// LinkedWorkspaces returns every linked-workspaces entry, used by the `pipeline
// link`/`unlink` CLI nodes.
func (s *Store) LinkedWorkspaces() []LinkedWorkspace {
	raw, ok := s.Get(buildSubtree, linkedWorkspacesKey)
	if !ok {
		return nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]LinkedWorkspace, 0, len(list))
	for _, entry := range list {
		if w, ok := decodeLinkedWorkspace(entry); ok {
			out = append(out, w)
		}
	}
	return out
}

// LinkWorkspace appends w to the linked-workspaces list.
func (s *Store) LinkWorkspace(w LinkedWorkspace) error {
	current := s.LinkedWorkspaces()
	encoded := make([]any, 0, len(current)+1)
	for _, existing := range current {
		encoded = append(encoded, existing.encode())
	}
	encoded = append(encoded, w.encode())
	return s.Set(buildSubtree, linkedWorkspacesKey, encoded)
}

// UnlinkWorkspace removes every entry whose ProjectDirectory and Phase
// both match projectDirectory and phase.
func (s *Store) UnlinkWorkspace(projectDirectory string, phase []string) error {
	current := s.LinkedWorkspaces()
	encoded := make([]any, 0, len(current))
	for _, existing := range current {
		if existing.ProjectDirectory == projectDirectory && samePhaseSet(existing.Phase, phase) {
			continue
		}
		encoded = append(encoded, existing.encode())
	}
	return s.Set(buildSubtree, linkedWorkspacesKey, encoded)
}
