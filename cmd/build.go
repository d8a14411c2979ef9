package cmd

import (
	"log/slog"
	"net"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/containifyci/foundry/pkg/buildstream"
	"github.com/containifyci/foundry/pkg/logger"
	"github.com/containifyci/foundry/pkg/pipeline"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var buildProgress string

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Load the project pipeline and run phase BUILD",
	RunE:  runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringVar(&buildProgress, "progress", "text", "progress reporting: text, stream, pterm, or alt")
}

func runBuild(cmd *cobra.Command, _ []string) error {
	ctx, err := openContext()
	if err != nil {
		return err
	}
	defer ctx.Shutdown()

	p, err := pipeline.New(ctx.StateDir, runtime.GOARCH)
	if err != nil {
		return err
	}
	defer p.Close()

	if settingsStore, err := openSettings(); err == nil {
		p.WithSettings(settingsStore)
	}

	mgr := pipeline.NewManager(ctx)
	if _, err := mgr.Start().Await(); err != nil {
		return err
	}
	p.AddinStages(mgr.CollectStages()...)

	p.OnResetCompileCommands(func() {
		slog.Info("compile_commands.json invalidated, re-run \"foundry compile-commands lookup\" to refresh")
	})

	release := ctx.Inhibit("build")
	defer release()

	progress := pipeline.NewProgress(p.Owner(), pipeline.PhaseBuild, release)

	stopWatch, err := watchBuildProgress(buildProgress, progress)
	if err != nil {
		return err
	}
	defer stopWatch()

	if _, err := progress.Build().Await(); err != nil {
		return err
	}

	return formatter().Value(map[string]any{
		"artifacts": progress.Artifacts(),
	})
}

// watchBuildProgress starts the reporter named by mode, polling
// progress.CurrentStage() until the returned stop function is called.
// "text" is a no-op: runBuild's final formatter().Value report is
// sufficient. "stream" serves buildCmd's BuildProgress live-log stream
// over a loopback websocket. "pterm" drives a terminal spinner.
func watchBuildProgress(mode string, progress *pipeline.Progress) (stop func(), err error) {
	switch mode {
	case "stream":
		hub := buildstream.NewHub()
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return nil, err
		}
		srv := &http.Server{Handler: hub}
		go func() { _ = srv.Serve(ln) }()
		slog.Info("build progress stream", "url", "ws://"+ln.Addr().String())
		return pollStages(progress, func(title string, done bool) {
			hub.Broadcast(buildstream.Event{Stage: title, Done: done})
		}, func() { _ = srv.Close() }), nil
	case "pterm":
		spinner, _ := pterm.DefaultSpinner.Start("starting build")
		return pollStages(progress, func(title string, done bool) {
			if done {
				spinner.Success("build complete")
				return
			}
			spinner.UpdateText(title)
		}, nil), nil
	case "alt":
		return pollStagesFullScreen(progress), nil
	default:
		return func() {}, nil
	}
}

// pollStagesFullScreen redraws the whole selected stage plan into the
// terminal's alternate screen every tick, marking each stage done once
// Stage.Completed() reports true, until the returned stop function is
// called.
func pollStagesFullScreen(progress *pipeline.Progress) func() {
	screen := logger.NewAlt(os.Stdout)
	screen.Enter()
	stages := progress.SelectedStages()

	stopCh := make(chan struct{})
	go func() {
		ticker := time.NewTicker(150 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stopCh:
				return
			case <-ticker.C:
				statuses := make([]logger.StageStatus, len(stages))
				for i, s := range stages {
					statuses[i] = logger.StageStatus{Title: s.Title, Done: s.Completed()}
				}
				screen.RenderStages(statuses)
			}
		}
	}()
	return func() {
		close(stopCh)
		screen.Exit()
	}
}

// pollStages polls progress.CurrentStage() every tick, invoking report
// with each newly observed stage title, until stop() is called; extra is
// invoked once on stop after the final report.
func pollStages(progress *pipeline.Progress, report func(title string, done bool), extra func()) func() {
	stopCh := make(chan struct{})
	go func() {
		ticker := time.NewTicker(150 * time.Millisecond)
		defer ticker.Stop()
		last := ""
		for {
			select {
			case <-stopCh:
				return
			case <-ticker.C:
				s := progress.CurrentStage()
				if s == nil {
					continue
				}
				if s.Title != last {
					last = s.Title
					report(s.Title, false)
				}
			}
		}
	}()
	return func() {
		close(stopCh)
		report("", true)
		if extra != nil {
			extra()
		}
	}
}
