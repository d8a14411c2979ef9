package pipeline

import (
	"github.com/containifyci/foundry/pkg/async"
	"github.com/containifyci/foundry/pkg/foundry"
)

// ServiceType is the foundry.ServiceType the pipeline's addin manager
// registers under.
const ServiceType foundry.ServiceType = "pipeline"

const interfaceName = "StageProvider"

// StageProvider is a plugin-contributed addin that inserts its own
// Stages into the running Pipeline once loaded.
type StageProvider interface {
	foundry.Addin
	Stages() []*Stage
}

// Manager wraps a foundry.Service exposing the currently registered
// StageProvider addins, mirroring pkg/lsp and pkg/dap's manager shape.
type Manager struct {
	svc *foundry.Service
}

// NewManager constructs the pipeline addin manager against ctx's plugin
// engine.
func NewManager(ctx *foundry.Context) *Manager {
	es := ctx.Plugins.ExtensionSet(interfaceName, map[string]string{"Stage-Phase": "*"})
	svc := foundry.NewService(ServiceType, ctx.Owner(), es)
	return &Manager{svc: svc}
}

// Start loads every registered StageProvider addin.
func (m *Manager) Start() *async.Future[struct{}] { return m.svc.Start() }

// Stop unloads every loaded StageProvider addin, in reverse load order.
func (m *Manager) Stop() *async.Future[struct{}] { return m.svc.Stop() }

// CollectStages gathers every Stage contributed by a loaded
// StageProvider addin.
func (m *Manager) CollectStages() []*Stage {
	var out []*Stage
	for _, a := range m.svc.Addins() {
		if p, ok := a.(StageProvider); ok {
			out = append(out, p.Stages()...)
		}
	}
	return out
}
