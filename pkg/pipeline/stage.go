package pipeline

import (
	"github.com/containifyci/foundry/pkg/weakref"
)

// Stage is a named unit that participates in one phase and implements,
// at minimum, Build. Query/Clean/Purge default to no-ops.
//
// Modeled as a function-field struct the way pkg/build/
// wrapper.go Stepper implements BuildStepv3: a plugin or built-in stage
// is constructed by filling in the fields it cares about rather than
// declaring a new named type per stage.
type Stage struct {
	Title string
	Kind  string
	Phase Phase

	QueryFn func(p *Progress) error
	BuildFn func(p *Progress) error
	CleanFn func(p *Progress) error
	PurgeFn func(p *Progress) error

	completed bool
	pipeline  *weakref.Ref[Pipeline]
}

// Query runs the stage's precheck, if any, possibly flipping Completed.
// A Query failure is non-fatal: the pipeline logs and proceeds as if
// Completed were false.
func (s *Stage) Query(p *Progress) error {
	if s.QueryFn == nil {
		return nil
	}
	return s.QueryFn(p)
}

// Build performs the stage's work. Skipped by the pipeline runner when
// Completed is true after Query.
func (s *Stage) Build(p *Progress) error {
	if s.BuildFn == nil {
		return nil
	}
	return s.BuildFn(p)
}

// Clean undoes artifacts; a no-op unless CleanFn is set.
func (s *Stage) Clean(p *Progress) error {
	if s.CleanFn == nil {
		return nil
	}
	return s.CleanFn(p)
}

// Purge removes everything the stage produced on disk; a no-op unless
// PurgeFn is set.
func (s *Stage) Purge(p *Progress) error {
	if s.PurgeFn == nil {
		return nil
	}
	return s.PurgeFn(p)
}

// Completed reports the stage's cached completion flag.
func (s *Stage) Completed() bool { return s.completed }

// SetCompleted is how a stage's QueryFn reports whether Build may be
// skipped.
func (s *Stage) SetCompleted(v bool) { s.completed = v }

// Pipeline resolves the stage's weak back-reference to its owning
// pipeline, or ferr.Disposed if the pipeline has been torn down.
func (s *Stage) Pipeline() (*Pipeline, error) {
	return s.pipeline.Resolve()
}
