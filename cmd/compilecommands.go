package cmd

import (
	"path/filepath"
	"runtime"

	"github.com/containifyci/foundry/pkg/compilecommands"
	"github.com/containifyci/foundry/pkg/pipeline"
	"github.com/spf13/cobra"
)

var compileCommandsCmd = &cobra.Command{
	Use:   "compile-commands",
	Short: "Query the project's compile_commands.json index",
}

var compileCommandsLookupCmd = &cobra.Command{
	Use:   "lookup FILE",
	Short: "Print the compiler flags indexed for FILE",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompileCommandsLookup,
}

func init() {
	rootCmd.AddCommand(compileCommandsCmd)
	compileCommandsCmd.AddCommand(compileCommandsLookupCmd)
}

func runCompileCommandsLookup(cmd *cobra.Command, args []string) error {
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

	ccFile := filepath.Join(p.BuildDir, "compile_commands.json")
	cc, err := compilecommands.New(ccFile).Await()
	if err != nil {
		return err
	}

	flags, err := cc.Lookup(args[0], nil)
	if err != nil {
		return err
	}
	return formatter().Value(map[string]any{"flags": flags})
}
