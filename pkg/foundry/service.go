package foundry

import (
	"sort"
	"sync"

	"github.com/containifyci/foundry/pkg/async"
	"github.com/containifyci/foundry/pkg/ferr"
	"github.com/containifyci/foundry/pkg/weakref"
)

// byPriorityThenModule sorts entries the same way ExtensionSet.Snapshot
// does: highest priority first, ties broken by module name.
func byPriorityThenModule(order []extEntry) {
	sort.SliceStable(order, func(i, j int) bool {
		if order[i].priority != order[j].priority {
			return order[i].priority > order[j].priority
		}
		return order[i].module < order[j].module
	})
}

// Addin is a plugin-contributed implementation of a capability interface
// attached to a Service. Concrete capability interfaces embed Addin.
type Addin interface {
	Load() *async.Future[struct{}]
	Unload() *async.Future[struct{}]
}

// Service is a polymorphic container that is simultaneously a list model
// of its loaded addins. It is itself a Service Provider for whichever
// domain (build, LSP, docs, …) its concrete wrapper exposes.
type Service struct {
	Type ServiceType

	ctxRef *weakref.Ref[Context]

	extensions *ExtensionSet

	mu       sync.Mutex
	started  bool
	stopped  bool
	readyP   *async.Promise[struct{}]
	readyF   *async.Future[struct{}]
	loaded   map[string]Addin // keyed by extension key
	order    []extEntry       // priority/module order, see byPriorityThenModule
}

// NewService creates a Service bound to ctx via a weak back-reference,
// backed by the given ExtensionSet. start()/stop() are invoked by the
// owning Context.
func NewService(t ServiceType, owner *weakref.Owner[Context], extensions *ExtensionSet) *Service {
	p, f := async.NewPromise[struct{}]()
	return &Service{
		Type:       t,
		ctxRef:     owner.Ref(),
		extensions: extensions,
		readyP:     p,
		readyF:     f,
		loaded:     make(map[string]Addin),
	}
}

// Context resolves the service's weak back-reference, returning Disposed
// if the owning Context has since been invalidated.
func (s *Service) Context() (*Context, error) {
	return s.ctxRef.Resolve()
}

// WhenReady resolves once Start has completed successfully. Every
// consumer must await this before touching the addin list or issuing
// work against the service.
func (s *Service) WhenReady() *async.Future[struct{}] {
	return s.readyF
}

// Start runs at most once per Service lifetime. It subscribes to the
// extension set's add/remove signals, loads every addin currently
// present, awaits their completion, then resolves ready.
func (s *Service) Start() *async.Future[struct{}] {
	p, f := async.NewPromise[struct{}]()
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		p.Reject(ferr.New(ferr.InvalidArgument, "service already started"))
		return f
	}
	s.started = true
	s.mu.Unlock()

	s.extensions.onAdd(s.handleAdd)
	s.extensions.onRemove(s.handleRemove)

	existing := s.extensions.Snapshot()
	loads := make([]*async.Future[struct{}], 0, len(existing))
	for _, e := range existing {
		loads = append(loads, s.load(e))
	}
	go func() {
		if _, err := async.All(loads).Await(); err != nil {
			p.Reject(err)
			return
		}
		s.readyP.Resolve(struct{}{})
		p.Resolve(struct{}{})
	}()
	return f
}

// Stop runs at most once per Service lifetime: it unsubscribes from the
// extension set, unloads every addin, and clears the addin list. After
// Stop, WhenReady's future must be treated as invalid by callers.
func (s *Service) Stop() *async.Future[struct{}] {
	p, f := async.NewPromise[struct{}]()
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		p.Resolve(struct{}{})
		return f
	}
	s.stopped = true
	order := make([]extEntry, len(s.order))
	copy(order, s.order)
	s.mu.Unlock()

	s.extensions.offAdd(s.handleAdd)
	s.extensions.offRemove(s.handleRemove)

	go func() {
		for _, e := range order {
			s.mu.Lock()
			addin, ok := s.loaded[e.key]
			s.mu.Unlock()
			if !ok {
				continue
			}
			if _, err := addin.Unload().Await(); err != nil {
				p.Reject(err)
				return
			}
		}
		s.mu.Lock()
		s.loaded = make(map[string]Addin)
		s.order = nil
		s.mu.Unlock()
		p.Resolve(struct{}{})
	}()
	return f
}

// Addins returns the currently loaded addins in plugin-priority order,
// satisfying the "Service is itself a list model" invariant.
func (s *Service) Addins() []Addin {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Addin, 0, len(s.order))
	for _, e := range s.order {
		out = append(out, s.loaded[e.key])
	}
	return out
}

func (s *Service) load(e extEntry) *async.Future[struct{}] {
	s.mu.Lock()
	s.loaded[e.key] = e.addin
	s.order = append(s.order, e)
	byPriorityThenModule(s.order)
	s.mu.Unlock()
	return e.addin.Load()
}

func (s *Service) handleAdd(e extEntry) {
	// Fire-and-forget per : load happens off the main flow
	// but must be visible before the addin list is next iterated.
	go func() { _, _ = s.load(e).Await() }()
}

func (s *Service) handleRemove(e extEntry) {
	go func() {
		_, _ = e.addin.Unload().Await()
		s.mu.Lock()
		delete(s.loaded, e.key)
		for i, existing := range s.order {
			if existing.key == e.key {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
	}()
}
