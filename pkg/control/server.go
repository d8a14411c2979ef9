// Package control implements a loopback HTTP control server: a view
// over a Context's inhibitor state and the settings store, plus a
// POST /pipeline/run endpoint that triggers a build, for local tools and
// linked workspaces to use without going through the cobra CLI.
package control

import (
	"encoding/json"
	"net/http"

	"github.com/containifyci/foundry/pkg/foundry"
	"github.com/containifyci/foundry/pkg/settings"
	"github.com/gorilla/mux"
)

// DefaultAddr is the loopback control server's default listen address,
// and the address a LinkedWorkspace with no ControlAddr override is
// assumed to be reachable at.
const DefaultAddr = "127.0.0.1:8642"

// BuildTrigger runs this Context's pipeline against the named phases
// (pipeline.Phase.String() values), used to serve /pipeline/run.
type BuildTrigger func(phases []string) error

// Server is the loopback control server's handler set.
type Server struct {
	ctx      *foundry.Context
	settings *settings.Store
	trigger  BuildTrigger
}

// New constructs a Server reading ctx's inhibitor state and store's
// settings tree.
func New(ctx *foundry.Context, store *settings.Store) *Server {
	return &Server{ctx: ctx, settings: store}
}

// WithBuildTrigger attaches the build-manager hook /pipeline/run
// invokes. A Server with no trigger attached answers /pipeline/run with
// 501 Not Implemented.
func (s *Server) WithBuildTrigger(trigger BuildTrigger) *Server {
	s.trigger = trigger
	return s
}

// Handler returns the gorilla/mux router serving this control server's
// routes.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/inhibitors", s.handleInhibitors).Methods(http.MethodGet)
	r.HandleFunc("/settings/{schema}/{key}", s.handleSettingsGet).Methods(http.MethodGet)
	r.HandleFunc("/pipeline/run", s.handlePipelineRun).Methods(http.MethodPost)
	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleInhibitors(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"active": s.ctx.ActiveOperations(),
	})
}

// pipelineRunRequest is the /pipeline/run request body: the phase names
// (pipeline.Phase.String() values) a linked workspace asks this
// Context's build-manager to run.
type pipelineRunRequest struct {
	Phases []string `json:"phases"`
}

func (s *Server) handlePipelineRun(w http.ResponseWriter, r *http.Request) {
	if s.trigger == nil {
		http.Error(w, "no build-manager trigger attached to this context", http.StatusNotImplemented)
		return
	}
	var req pipelineRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.trigger(req.Phases); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"triggered": req.Phases})
}

func (s *Server) handleSettingsGet(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	value, ok := s.settings.Get(vars["schema"], vars["key"])
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"value": value})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
