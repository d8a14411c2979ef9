package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	_ "net/http/pprof"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/containifyci/foundry/pkg/clitree"
	"github.com/containifyci/foundry/pkg/logger"

	"github.com/spf13/cobra"
)

// formatter builds a clitree.Formatter from the root --format flag's
// current value; every cmd/*.go RunE calls this instead of fmt.Println
// directly, giving every node --format=text|json contract.
var formatter func() *clitree.Formatter

type rootCmdArgs struct {
	cpuProfileFile *os.File
	httpSrv        *http.Server
	version        VersionInfo
	CPUProfile     string
	MemProfile     string
	Progress       string
	PProfPort      int
	PProfHTTP      bool
	Verbose        bool
}

type VersionInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Repo    string `json:"repo"`
}

const skipRootHooks = "skipRootHooks"

var RootArgs = &rootCmdArgs{}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "foundry",
	Short: "A developer-tooling platform CLI",
	Long: `foundry drives a project-aware Context: a phased build pipeline,
a plugin-hosted addin system, language-server/debugger orchestration,
a compile-commands index, and an intent-dispatch bus.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Annotations[skipRootHooks] == "true" {
			return nil
		}
		logOpts := slog.HandlerOptions{
			Level:       slog.LevelInfo,
			AddSource:   false,
			ReplaceAttr: nil,
		}

		if RootArgs.Verbose {
			logOpts.Level = slog.LevelDebug
			logOpts.AddSource = true
		}
		logger := slog.New(logger.New(RootArgs.Progress, logOpts))
		slog.SetDefault(logger)
		slog.Info("Version", "version", RootArgs.version)

		if RootArgs.CPUProfile != "" {
			f, err := os.Create(RootArgs.CPUProfile)
			if err != nil {
				return fmt.Errorf("could not create CPU profile: %w", err)
			}
			if err := pprof.StartCPUProfile(f); err != nil {
				_ = f.Close()
				return fmt.Errorf("could not start CPU profile: %w", err)
			}
			RootArgs.cpuProfileFile = f
			slog.Info("CPU profiling started", "file", RootArgs.CPUProfile)
		}

		if RootArgs.PProfHTTP {
			addr := fmt.Sprintf("localhost:%d", RootArgs.PProfPort)
			RootArgs.httpSrv = &http.Server{Addr: addr}
			go func() {
				slog.Info("Starting pprof HTTP server", "addr", addr)
				if err := RootArgs.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					slog.Error("pprof server failed", "error", err)
				}
			}()
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Annotations[skipRootHooks] == "true" {
			return nil
		}
		slog.Info("Flushing logs")
		logger.GetLogAggregator().Flush()

		if RootArgs.CPUProfile != "" {
			pprof.StopCPUProfile()
			slog.Info("CPU profiling stopped", "file", RootArgs.CPUProfile)
			if RootArgs.cpuProfileFile != nil {
				if err := RootArgs.cpuProfileFile.Close(); err != nil {
					slog.Warn("Failed to close CPU profile file", "error", err)
				}
			}
		}

		if RootArgs.MemProfile != "" {
			f, err := os.Create(RootArgs.MemProfile)
			if err != nil {
				return fmt.Errorf("could not create memory profile: %w", err)
			}
			defer f.Close()

			runtime.GC()
			if err := pprof.WriteHeapProfile(f); err != nil {
				return fmt.Errorf("could not write memory profile: %w", err)
			}
			slog.Info("Memory profile written", "file", RootArgs.MemProfile)
		}

		if RootArgs.httpSrv != nil {
			ctx := cmd.Context()
			shutdownCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			defer cancel()
			if err := RootArgs.httpSrv.Shutdown(shutdownCtx); err != nil {
				slog.Warn("Failed to shutdown pprof server", "error", err)
			}
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	logOpts := slog.HandlerOptions{
		Level:       slog.LevelInfo,
		AddSource:   false,
		ReplaceAttr: nil,
	}

	slogger := slog.New(logger.NewRootLog(logOpts))
	slog.SetDefault(slogger)
	rootCmd.PersistentFlags().BoolVarP(&RootArgs.Verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&RootArgs.Progress, "progress", "plain", "The progress logging format to use. Options are: progress, plain")

	rootCmd.PersistentFlags().StringVar(&RootArgs.CPUProfile, "cpuprofile", "", "write cpu profile to file")
	rootCmd.PersistentFlags().StringVar(&RootArgs.MemProfile, "memprofile", "", "write memory profile to file")
	rootCmd.PersistentFlags().BoolVar(&RootArgs.PProfHTTP, "pprof-http", false, "enable HTTP pprof endpoint")
	rootCmd.PersistentFlags().IntVar(&RootArgs.PProfPort, "pprof-port", 6060, "HTTP pprof port")

	formatter = clitree.Register(rootCmd, os.Stdout)
}

func SetVersionInfo(version, commit, date, repo string) string {
	rootCmd.Version = fmt.Sprintf("%s (Built on %s from Git SHA %s of %s)", version, date, commit, repo)
	RootArgs.version = VersionInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
		Repo:    repo,
	}
	return rootCmd.Version
}

func RootCmd() *cobra.Command {
	return rootCmd
}
