// Package dap exposes the DebuggerProvider capability: a Service whose
// addins each claim one or more languages and, when asked, launch a
// debug adapter process speaking Content-Length-framed JSON (pkg/rpc)
// over its stdio. No concrete debug adapter ships with Foundry; this
// package is purely the manager surface plugins attach to, mirroring
// pkg/lsp's shape for the DAP side of the same editor-tooling story.
package dap

import (
	"context"
	"os/exec"

	"github.com/containifyci/foundry/pkg/async"
	"github.com/containifyci/foundry/pkg/ferr"
	"github.com/containifyci/foundry/pkg/foundry"
	"github.com/containifyci/foundry/pkg/rpc"
)

// ServiceType is the foundry.ServiceType this package registers under.
const ServiceType foundry.ServiceType = "dap"

const interfaceName = "DebuggerProvider"
const criterionKey = "Debugger-Language"

// Provider is the DebuggerProvider capability: a plugin-contributed
// addin that can launch a debug adapter for one or more languages.
type Provider interface {
	foundry.Addin
	Languages() []string
	Command(language string) (*exec.Cmd, error)
}

// Manager wraps a foundry.Service exposing the currently registered
// DebuggerProvider addins.
type Manager struct {
	svc *foundry.Service
}

// NewManager constructs the DAP service against ctx's plugin engine.
func NewManager(ctx *foundry.Context) *Manager {
	es := ctx.Plugins.ExtensionSet(interfaceName, map[string]string{criterionKey: "*"})
	svc := foundry.NewService(ServiceType, ctx.Owner(), es)
	return &Manager{svc: svc}
}

// Start begins the underlying Service.
func (m *Manager) Start() *async.Future[struct{}] { return m.svc.Start() }

// Stop tears down the underlying Service.
func (m *Manager) Stop() *async.Future[struct{}] { return m.svc.Stop() }

// Providers returns every currently loaded DebuggerProvider addin.
func (m *Manager) Providers() []Provider {
	addins := m.svc.Addins()
	out := make([]Provider, 0, len(addins))
	for _, a := range addins {
		if p, ok := a.(Provider); ok {
			out = append(out, p)
		}
	}
	return out
}

// Run launches the first provider that claims language and blocks
// until ctx is cancelled or the adapter process exits. Returns
// NotFound if no loaded provider claims the language.
func Run(ctx context.Context, m *Manager, language string) error {
	var chosen Provider
	for _, p := range m.Providers() {
		for _, l := range p.Languages() {
			if l == language {
				chosen = p
				break
			}
		}
		if chosen != nil {
			break
		}
	}
	if chosen == nil {
		return ferr.New(ferr.NotFound, "no debug adapter registered for "+language)
	}

	cmd, err := chosen.Command(language)
	if err != nil {
		return err
	}
	cmd = exec.CommandContext(ctx, cmd.Path, cmd.Args[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return ferr.Wrap(ferr.Io, err, "opening debug adapter stdout")
	}
	if err := cmd.Start(); err != nil {
		return ferr.Wrap(ferr.Io, err, "starting debug adapter")
	}

	reader := rpc.NewReader(stdout)
	go func() {
		for {
			if _, err := reader.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := cmd.Wait(); err != nil && ctx.Err() == nil {
		return ferr.Wrap(ferr.Io, err, "debug adapter exited")
	}
	return nil
}
