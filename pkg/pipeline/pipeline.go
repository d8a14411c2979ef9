package pipeline

import (
	"os"
	"sort"
	"sync"

	"github.com/containifyci/foundry/pkg/ferr"
	"github.com/containifyci/foundry/pkg/settings"
	"github.com/containifyci/foundry/pkg/weakref"
	"github.com/creack/pty"
)

// Pipeline is an ordered sequence of Stages sharing a build directory,
// architecture string, and an intercepting PTY. Exactly one
// pipeline exists per Context build manager.
type Pipeline struct {
	BuildDir string
	Arch     string

	ptyMaster *os.File
	ptySlave  *os.File

	mu     sync.Mutex
	stages []*Stage
	self   *weakref.Owner[Pipeline]

	settings *settings.Store

	onResetCompileCommands []func()
}

// New constructs a Pipeline rooted at builddir for the given
// architecture triple, allocating its intercepting PTY pair.
func New(builddir, arch string) (*Pipeline, error) {
	master, slave, err := pty.Open()
	if err != nil {
		return nil, ferr.Wrap(ferr.Io, err, "allocating pipeline PTY")
	}
	p := &Pipeline{BuildDir: builddir, Arch: arch, ptyMaster: master, ptySlave: slave}
	p.self = weakref.NewOwner(p)
	return p, nil
}

// Owner returns the weak-reference owner wrapping this Pipeline, so
// Stages constructed against it can hold a back-reference.
func (p *Pipeline) Owner() *weakref.Owner[Pipeline] {
	return p.self
}

// PTYConsumer is the side a diagnostic extractor reads from and that's
// cloned to child processes wanting stdio.
func (p *Pipeline) PTYConsumer() *os.File { return p.ptyMaster }

// PTYProducer is the side stage subprocesses write their stdio to.
func (p *Pipeline) PTYProducer() *os.File { return p.ptySlave }

// Close releases both sides of the pipeline's PTY.
func (p *Pipeline) Close() error {
	err1 := p.ptySlave.Close()
	err2 := p.ptyMaster.Close()
	if err1 != nil {
		return ferr.Wrap(ferr.Io, err1, "closing pty slave")
	}
	if err2 != nil {
		return ferr.Wrap(ferr.Io, err2, "closing pty master")
	}
	return nil
}

// AddStage adds a built-in stage, binding its weak back-reference to
// this pipeline. The stage list stays sorted by phase; stages of equal
// phase keep their insertion order.
func (p *Pipeline) AddStage(s *Stage) {
	s.pipeline = p.self.Ref()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stages = append(p.stages, s)
	sort.SliceStable(p.stages, func(i, j int) bool {
		return p.stages[i].Phase < p.stages[j].Phase
	})
}

// AddinStages inserts plugin-contributed stages, re-sorting the full
// stage list by phase so built-in, pre-addin-contributed order is
// preserved for equal phases while addin stages land at their declared
// phase.
func (p *Pipeline) AddinStages(stages ...*Stage) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range stages {
		s.pipeline = p.self.Ref()
	}
	p.stages = append(p.stages, stages...)
	sort.SliceStable(p.stages, func(i, j int) bool {
		return p.stages[i].Phase < p.stages[j].Phase
	})
}

// Stages returns the stage list in phase order (ascending).
func (p *Pipeline) Stages() []*Stage {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*Stage, len(p.stages))
	copy(out, p.stages)
	return out
}

// OnResetCompileCommands registers a handler invoked by
// ResetCompileCommands — the compile-commands index subscribes here to
// invalidate its cache.
func (p *Pipeline) OnResetCompileCommands(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onResetCompileCommands = append(p.onResetCompileCommands, fn)
}

// ResetCompileCommands invalidates any cached compile-commands view;
// called automatically after any stage whose declared phase equals
// CONFIGURE completes.
func (p *Pipeline) ResetCompileCommands() {
	p.mu.Lock()
	handlers := append([]func(){}, p.onResetCompileCommands...)
	p.mu.Unlock()
	for _, h := range handlers {
		h()
	}
}
