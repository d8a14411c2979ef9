package team

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/containifyci/foundry/pkg/async"
	"github.com/containifyci/foundry/pkg/ferr"
	"github.com/containifyci/foundry/pkg/foundry"
	"github.com/containifyci/foundry/pkg/intent"
)

// RunStandupIntentName is the Intent bus action name dispatched for a
// Standup, whether triggered interactively (foundry tui) or by the
// Scheduler's cron timer.
const RunStandupIntentName = "foundry.team.run-standup"

// IntentRunFunc adapts the Intent bus into a RunFunc: it dispatches
// RunStandupIntentName with the standup id as parameter and awaits
// whichever plugin-registered IntentHandler claims it, rendering the
// result as a string. No handler claiming the intent is a plain error,
// not a silent no-op.
func IntentRunFunc(ctx *foundry.Context) RunFunc {
	return func(_ context.Context, s Standup, _ Persona) (string, error) {
		i := intent.NewAction(RunStandupIntentName, s.ID)
		val, err := async.Await(intent.Dispatch(ctx, i))
		if err != nil {
			return "", err
		}
		if str, ok := val.(string); ok {
			return str, nil
		}
		return fmt.Sprint(val), nil
	}
}

// RunFunc executes a Standup's prompt against its Persona and returns
// the rendered output, or an error if the run failed.
type RunFunc func(ctx context.Context, s Standup, p Persona) (string, error)

// Scheduler drives Standup jobs on their cron schedules, persisting
// every run to a Store, grounded on the pack's own cron-backed job
// scheduler idiom (6-field expressions, a periodic resync of entries
// from durable storage rather than trusting an in-memory list alone).
type Scheduler struct {
	mu sync.Mutex

	store  Store
	run    RunFunc
	logger *slog.Logger

	parser cron.Parser
	cron   *cron.Cron
	entry  map[string]cron.EntryID

	syncInterval time.Duration
	cancel       context.CancelFunc
	wg           sync.WaitGroup
}

// NewScheduler builds a Scheduler that loads enabled Standups from
// store and executes them with run when their cron schedule fires.
func NewScheduler(store Store, run RunFunc) *Scheduler {
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	return &Scheduler{
		store:        store,
		run:          run,
		logger:       slog.Default(),
		parser:       parser,
		cron:         cron.New(cron.WithParser(parser), cron.WithChain(cron.Recover(cron.DefaultLogger))),
		entry:        make(map[string]cron.EntryID),
		syncInterval: time.Minute,
	}
}

// WithLogger overrides the default slog logger.
func (s *Scheduler) WithLogger(logger *slog.Logger) *Scheduler {
	s.logger = logger
	return s
}

// WithSyncInterval overrides how often Start resyncs Standups from the
// Store (default one minute).
func (s *Scheduler) WithSyncInterval(d time.Duration) *Scheduler {
	if d > 0 {
		s.syncInterval = d
	}
	return s
}

// Start loads enabled standups and begins the cron timer and periodic
// resync loop. Cancel ctx or call Stop to shut down.
func (s *Scheduler) Start(ctx context.Context) error {
	if err := s.sync(ctx); err != nil {
		s.logger.Error("initial standup sync failed", slog.Any("error", err))
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.cron.Start()

	s.wg.Add(1)
	go s.syncLoop(runCtx)
	return nil
}

// Stop halts the cron timer (waiting for in-flight jobs) and the
// resync loop.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.wg.Wait()
}

func (s *Scheduler) syncLoop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.syncInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.sync(ctx); err != nil {
				s.logger.Error("standup sync failed", slog.Any("error", err))
			}
		}
	}
}

func (s *Scheduler) sync(ctx context.Context) error {
	standups, err := s.store.ListEnabledStandups(ctx)
	if err != nil {
		return ferr.Wrap(ferr.Io, err, "listing enabled standups")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool, len(standups))
	for _, st := range standups {
		seen[st.ID] = true
		if existing, ok := s.entry[st.ID]; ok {
			s.cron.Remove(existing)
		}

		standup := st
		entryID, err := s.cron.AddFunc(standup.CronSchedule, s.jobFunc(standup))
		if err != nil {
			s.logger.Error("invalid standup cron schedule",
				slog.String("standup", standup.Name), slog.String("cron", standup.CronSchedule), slog.Any("error", err))
			continue
		}
		s.entry[st.ID] = entryID
	}

	for id, entryID := range s.entry {
		if !seen[id] {
			s.cron.Remove(entryID)
			delete(s.entry, id)
		}
	}
	return nil
}

func (s *Scheduler) jobFunc(standup Standup) func() {
	return func() {
		ctx := context.Background()

		persona, err := s.store.GetPersona(ctx, standup.PersonaID)
		if err != nil {
			s.logger.Error("standup persona lookup failed", slog.String("standup", standup.Name), slog.Any("error", err))
			return
		}

		started := time.Now()
		output, runErr := s.run(ctx, standup, persona)
		finished := time.Now()

		record := Run{
			ID:         uuid.NewString(),
			StandupID:  standup.ID,
			StartedAt:  started,
			FinishedAt: finished,
			Output:     output,
		}
		if runErr != nil {
			record.Err = runErr.Error()
			s.logger.Error("standup run failed", slog.String("standup", standup.Name), slog.Any("error", runErr))
		}

		if err := s.store.RecordRun(ctx, record); err != nil {
			s.logger.Error("recording standup run failed", slog.String("standup", standup.Name), slog.Any("error", err))
		}
	}
}

// EntryCount reports how many standups currently have a live cron
// entry.
func (s *Scheduler) EntryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entry)
}
