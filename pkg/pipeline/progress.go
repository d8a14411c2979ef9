package pipeline

import (
	"bufio"
	"log/slog"
	"os"
	"sync"

	"github.com/containifyci/foundry/pkg/async"
	"github.com/containifyci/foundry/pkg/ferr"
	"github.com/containifyci/foundry/pkg/weakref"
)

// Progress is a handle representing one execution of a pipeline against
// a target phase mask. build()/clean()/purge() may be
// invoked at most once per instance.
type Progress struct {
	Mask Phase

	pipelineRef *weakref.Ref[Pipeline]
	release     func() // inhibitor release, set once acquired
	cancellable *async.Cancellable

	mu           sync.Mutex
	currentStage *Stage
	artifacts    []string
	invoked      bool

	Extractor *Extractor
}

// NewProgress creates a Progress targeting mask against pipeline, using
// release as the inhibitor's release function (already acquired by the
// caller via Context.Inhibit before constructing this Progress).
func NewProgress(owner *weakref.Owner[Pipeline], mask Phase, release func()) *Progress {
	return &Progress{
		Mask:        mask,
		pipelineRef: owner.Ref(),
		release:     release,
		cancellable: async.NewCancellable(),
	}
}

// Cancel marks the progress cancelled. Build checks this before starting
// each stage and then rejects its future; a stage already running is not
// interrupted, and Clean and Purge do not check it.
func (pr *Progress) Cancel() { pr.cancellable.Cancel() }

// CurrentStage returns the stage presently executing, or nil.
func (pr *Progress) CurrentStage() *Stage {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	return pr.currentStage
}

// SelectedStages returns, in phase order, every stage this Progress's
// mask selects. Full-screen progress reporters use this for the whole
// plan, not just the stage presently running.
func (pr *Progress) SelectedStages() []*Stage {
	pipeline, err := pr.pipelineRef.Resolve()
	if err != nil {
		return nil
	}
	all := pipeline.Stages()
	out := make([]*Stage, 0, len(all))
	for _, s := range all {
		if s.Phase.Selects(pr.Mask) {
			out = append(out, s)
		}
	}
	return out
}

// Artifacts returns the paths recorded by AddArtifact so far.
func (pr *Progress) Artifacts() []string {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	out := make([]string, len(pr.artifacts))
	copy(out, pr.artifacts)
	return out
}

// AddArtifact records an artifact path produced by the currently running
// stage.
func (pr *Progress) AddArtifact(path string) {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	pr.artifacts = append(pr.artifacts, path)
}

func (pr *Progress) setCurrentStage(s *Stage) {
	pr.mu.Lock()
	pr.currentStage = s
	pr.mu.Unlock()
}

// Build runs: acquire inhibitor (already held by caller), resolve the
// pipeline, mkdir the build dir, then walk selected stages in increasing
// phase order. Any stage Build failure rejects the
// returned future with that stage's error.
func (pr *Progress) Build() *async.Future[struct{}] {
	p, f := async.NewPromise[struct{}]()
	if pr.markInvoked() {
		p.Reject(ferr.New(ferr.InvalidArgument, "progress already invoked"))
		return f
	}

	go func() {
		defer pr.release()

		pipeline, err := pr.pipelineRef.Resolve()
		if err != nil {
			p.Reject(err)
			return
		}
		if err := os.MkdirAll(pipeline.BuildDir, 0o750); err != nil {
			p.Reject(ferr.Wrap(ferr.Io, err, "creating build directory"))
			return
		}

		for _, s := range pipeline.Stages() {
			if !s.Phase.Selects(pr.Mask) {
				continue
			}
			if pr.cancellable.IsCancelled() {
				_, cancelErr := pr.cancellable.Await()
				p.Reject(cancelErr)
				return
			}
			pr.setCurrentStage(s)

			if qerr := s.Query(pr); qerr != nil {
				slog.Warn("stage query failed, proceeding as incomplete", "stage", s.Title, "error", qerr)
				s.SetCompleted(false)
			}
			if s.Completed() {
				pipeline.NotifyLinked(s.Phase)
				continue
			}
			if berr := s.Build(pr); berr != nil {
				p.Reject(berr)
				return
			}
			if s.Phase == PhaseConfigure {
				pipeline.ResetCompileCommands()
			}
			pipeline.NotifyLinked(s.Phase)
		}
		pr.setCurrentStage(nil)
		p.Resolve(struct{}{})
	}()
	return f
}

// Clean iterates selected stages in reverse phase order, calling Clean
// on each.
func (pr *Progress) Clean() *async.Future[struct{}] {
	return pr.runReverse(func(s *Stage) error { return s.Clean(pr) })
}

// Purge iterates selected stages in reverse phase order, calling Purge
// on each, then runs a directory reaper over the build directory.
func (pr *Progress) Purge() *async.Future[struct{}] {
	p, f := async.NewPromise[struct{}]()
	if pr.markInvoked() {
		p.Reject(ferr.New(ferr.InvalidArgument, "progress already invoked"))
		return f
	}
	go func() {
		defer pr.release()
		pipeline, err := pr.pipelineRef.Resolve()
		if err != nil {
			p.Reject(err)
			return
		}
		stages := pipeline.Stages()
		for i := len(stages) - 1; i >= 0; i-- {
			s := stages[i]
			if !s.Phase.Selects(pr.Mask) {
				continue
			}
			pr.setCurrentStage(s)
			if perr := s.Purge(pr); perr != nil {
				p.Reject(perr)
				return
			}
		}
		pr.setCurrentStage(nil)
		if err := reapDirectory(pipeline.BuildDir); err != nil {
			p.Reject(err)
			return
		}
		p.Resolve(struct{}{})
	}()
	return f
}

func (pr *Progress) runReverse(action func(*Stage) error) *async.Future[struct{}] {
	p, f := async.NewPromise[struct{}]()
	if pr.markInvoked() {
		p.Reject(ferr.New(ferr.InvalidArgument, "progress already invoked"))
		return f
	}
	go func() {
		defer pr.release()
		pipeline, err := pr.pipelineRef.Resolve()
		if err != nil {
			p.Reject(err)
			return
		}
		stages := pipeline.Stages()
		for i := len(stages) - 1; i >= 0; i-- {
			s := stages[i]
			if !s.Phase.Selects(pr.Mask) {
				continue
			}
			pr.setCurrentStage(s)
			if err := action(s); err != nil {
				p.Reject(err)
				return
			}
		}
		pr.setCurrentStage(nil)
		p.Resolve(struct{}{})
	}()
	return f
}

func (pr *Progress) markInvoked() (already bool) {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	already = pr.invoked
	pr.invoked = true
	return already
}

// reapDirectory removes builddir's contents without removing builddir
// itself, leaving it ready for the next build.
func reapDirectory(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return ferr.Wrap(ferr.Io, err, "reading build directory for purge")
	}
	for _, e := range entries {
		if err := os.RemoveAll(dir + string(os.PathSeparator) + e.Name()); err != nil {
			return ferr.Wrap(ferr.Io, err, "purging "+e.Name())
		}
	}
	return nil
}

// ScanPTY wires a Progress's Extractor to the owning pipeline's PTY
// consumer, processing lines synchronously with reads so diagnostic
// ordering is preserved.
func (pr *Progress) ScanPTY() {
	pipeline, err := pr.pipelineRef.Resolve()
	if err != nil || pr.Extractor == nil {
		return
	}
	pr.Extractor.Scan(bufio.NewScanner(pipeline.PTYConsumer()))
}
