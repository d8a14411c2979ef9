package cmd

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"strings"

	"github.com/containifyci/foundry/pkg/control"
	"github.com/containifyci/foundry/pkg/foundry"
	"github.com/containifyci/foundry/pkg/pipeline"
	"github.com/containifyci/foundry/pkg/team"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the loopback HTTP control server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", control.DefaultAddr, "address to listen on")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, err := openContext()
	if err != nil {
		return err
	}
	store, err := openSettings()
	if err != nil {
		return err
	}

	p, err := pipeline.New(ctx.StateDir, runtime.GOARCH)
	if err != nil {
		return err
	}
	defer p.Close()
	p.WithSettings(store)

	mgr := pipeline.NewManager(ctx)
	if _, err := mgr.Start().Await(); err != nil {
		return err
	}
	p.AddinStages(mgr.CollectStages()...)

	teamStore, err := openTeamStore()
	if err != nil {
		return err
	}
	defer teamStore.Close()

	sched := team.NewScheduler(teamStore, team.IntentRunFunc(ctx))
	if err := sched.Start(context.Background()); err != nil {
		return err
	}
	defer sched.Stop()

	srv := control.New(ctx, store).WithBuildTrigger(buildTrigger(ctx, p))
	return http.ListenAndServe(serveAddr, srv.Handler())
}

// buildTrigger adapts a Pipeline into the control.BuildTrigger this
// Context's /pipeline/run endpoint invokes on behalf of a linked
// sibling workspace.
func buildTrigger(ctx *foundry.Context, p *pipeline.Pipeline) control.BuildTrigger {
	return func(phases []string) error {
		mask, unknown := pipeline.ParsePhases(phases)
		if len(unknown) > 0 {
			return fmt.Errorf("unknown phase(s): %s", strings.Join(unknown, ", "))
		}
		release := ctx.Inhibit("build")
		progress := pipeline.NewProgress(p.Owner(), mask, release)
		_, err := progress.Build().Await()
		return err
	}
}
