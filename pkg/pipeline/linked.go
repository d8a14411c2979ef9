package pipeline

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/containifyci/foundry/pkg/control"
	"github.com/containifyci/foundry/pkg/settings"
)

// WithSettings attaches store, so NotifyLinked can consult the
// app.devsuite.foundry.build linked-workspaces list. A Pipeline with no
// settings attached treats NotifyLinked as a no-op.
func (p *Pipeline) WithSettings(store *settings.Store) *Pipeline {
	p.settings = store
	return p
}

// NotifyLinked is called once a stage declared under phase completes.
// For every linked-workspaces entry whose Phase list contains phase's
// name, it posts that entry's LinkedPhase list to the sibling
// workspace's loopback control server, triggering its own build-manager
// asynchronously. An unreachable sibling control server is only logged;
// this fan-out never fails this pipeline's own build.
func (p *Pipeline) NotifyLinked(phase Phase) {
	if p.settings == nil {
		return
	}
	name := phase.String()
	for _, w := range p.settings.LinkedWorkspaces() {
		if !containsString(w.Phase, name) {
			continue
		}
		go notifyLinkedWorkspace(w)
	}
}

func notifyLinkedWorkspace(w settings.LinkedWorkspace) {
	addr := w.ControlAddr
	if addr == "" {
		addr = control.DefaultAddr
	}

	body, err := json.Marshal(struct {
		Phases []string `json:"phases"`
	}{Phases: w.LinkedPhase})
	if err != nil {
		slog.Error("encoding linked-workspace trigger", "workspace", w.ProjectDirectory, "error", err)
		return
	}

	client := http.Client{Timeout: 5 * time.Second}
	resp, err := client.Post("http://"+addr+"/pipeline/run", "application/json", bytes.NewReader(body))
	if err != nil {
		slog.Warn("linked workspace control server unreachable", "workspace", w.ProjectDirectory, "addr", addr, "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		slog.Warn("linked workspace rejected build trigger", "workspace", w.ProjectDirectory, "status", resp.Status)
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
