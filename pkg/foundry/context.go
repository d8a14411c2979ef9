// Package foundry implements the process-wide composition root: Context,
// the per-domain Service container, its ExtensionSet of plugin-supplied
// addins, cancellable Operations, and the scoped Inhibitor used to
// serialize mutually exclusive work on a Context.
//
// The lifecycle ordering here is reworked from a Pre/Post build-step
// registration sequence and a container.Build-shaped object: construction
// is lazy (dup_* accessors), start order is construction order, stop
// order is its reverse, exactly as that command wired up its build
// steps before running them.
package foundry

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/containifyci/foundry/pkg/async"
	"github.com/containifyci/foundry/pkg/ferr"
	"github.com/containifyci/foundry/pkg/weakref"
	"github.com/google/uuid"
)

// Flags authorize optional behavior of Context construction.
type Flags uint8

const (
	// FlagCreate permits New to create the state directory if absent.
	FlagCreate Flags = 1 << iota
)

// ServiceType identifies a Service implementation within a Context's
// service map. Concrete service packages register their own typed
// constructors against a ServiceType value.
type ServiceType string

// ServiceFactory lazily constructs the named service for ctx the first
// time it's requested.
type ServiceFactory func(ctx *Context) *Service

// Context is an open project: it owns the state directory, the project
// directory, and a lazily-populated map from ServiceType to its single
// Service instance.
type Context struct {
	ID          string
	StateDir    string
	ProjectDir  string
	Plugins     PluginEngine

	mu          sync.Mutex
	factories   map[ServiceType]ServiceFactory
	services    map[ServiceType]*Service
	constructed []ServiceType // construction order, for reverse-order shutdown
	shutdown    bool

	inhibitors map[string]*inhibitorState

	self *weakref.Owner[Context]
}

// Owner returns the weak-reference owner wrapping this Context, for
// services constructed against it to hold a back-reference with.
func (c *Context) Owner() *weakref.Owner[Context] {
	return c.self
}

// PluginEngine is the process-wide plugin registry a Context consults
// when constructing services' ExtensionSets. Defined here to avoid an
// import cycle with pkg/plugin; pkg/plugin.Engine satisfies it.
type PluginEngine interface {
	ExtensionSet(iface string, criteria map[string]string) *ExtensionSet
}

// Discover scans upward from path looking for a Foundry state directory
// (a ".foundry" directory) adjacent to a project directory, returning
// NotFound if none exists up to the filesystem root.
func Discover(path string) *async.Future[string] {
	p, f := async.NewPromise[string]()
	dir, err := filepath.Abs(path)
	if err != nil {
		p.Reject(ferr.Wrap(ferr.InvalidArgument, err, ""))
		return f
	}
	for {
		candidate := filepath.Join(dir, ".foundry")
		if info, statErr := os.Stat(candidate); statErr == nil && info.IsDir() {
			p.Resolve(candidate)
			return f
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			p.Reject(ferr.New(ferr.NotFound, "no .foundry state directory found above "+path))
			return f
		}
		dir = parent
	}
}

// New constructs a Context rooted at stateDir/projectDir. If FlagCreate
// is set and stateDir does not exist, it is created with 0700
// permissions.
func New(stateDir, projectDir string, flags Flags, plugins PluginEngine) *async.Future[*Context] {
	p, f := async.NewPromise[*Context]()
	if flags&FlagCreate != 0 {
		if err := os.MkdirAll(stateDir, 0o700); err != nil {
			p.Reject(ferr.Wrap(ferr.Io, err, "creating state directory"))
			return f
		}
	} else if _, err := os.Stat(stateDir); err != nil {
		p.Reject(ferr.Wrap(ferr.NotFound, err, "state directory does not exist"))
		return f
	}
	ctx := &Context{
		ID:         uuid.NewString(),
		StateDir:   stateDir,
		ProjectDir: projectDir,
		Plugins:    plugins,
		factories:  make(map[ServiceType]ServiceFactory),
		services:   make(map[ServiceType]*Service),
		inhibitors: make(map[string]*inhibitorState),
	}
	ctx.self = weakref.NewOwner(ctx)
	p.Resolve(ctx)
	return f
}

// Register associates a ServiceFactory with a ServiceType so that a
// later Dup(t) call can lazily construct it. Must be called before any
// Dup(t) for that type; not safe to call concurrently with Dup.
func (c *Context) Register(t ServiceType, factory ServiceFactory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.factories[t] = factory
}

// Dup returns the named service, constructing it via its registered
// factory on first access. Returns InShutdown if the Context has already
// been shut down, and NotSupported if no factory was registered for t.
func (c *Context) Dup(t ServiceType) (*Service, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.shutdown {
		return nil, ferr.New(ferr.InShutdown, "context is shutting down")
	}
	if svc, ok := c.services[t]; ok {
		return svc, nil
	}
	factory, ok := c.factories[t]
	if !ok {
		return nil, ferr.New(ferr.NotSupported, "no service registered for type "+string(t))
	}
	svc := factory(c)
	c.services[t] = svc
	c.constructed = append(c.constructed, t)
	return svc, nil
}

// Shutdown stops every constructed service in the reverse order of
// construction and marks the Context terminal. Subsequent Dup calls
// reject with InShutdown.
func (c *Context) Shutdown() *async.Future[struct{}] {
	p, f := async.NewPromise[struct{}]()
	c.mu.Lock()
	if c.shutdown {
		c.mu.Unlock()
		p.Resolve(struct{}{})
		return f
	}
	c.shutdown = true
	order := make([]ServiceType, len(c.constructed))
	copy(order, c.constructed)
	services := c.services
	c.mu.Unlock()

	go func() {
		for i := len(order) - 1; i >= 0; i-- {
			svc := services[order[i]]
			if _, err := svc.Stop().Await(); err != nil {
				p.Reject(err)
				return
			}
		}
		c.self.Invalidate()
		p.Resolve(struct{}{})
	}()
	return f
}
