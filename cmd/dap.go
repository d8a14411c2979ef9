package cmd

import (
	"github.com/containifyci/foundry/pkg/dap"
	"github.com/spf13/cobra"
)

var dapCmd = &cobra.Command{
	Use:   "dap",
	Short: "Run a debug adapter",
}

var dapRunCmd = &cobra.Command{
	Use:   "run LANGUAGE",
	Short: "Launch the debug adapter claiming LANGUAGE and proxy its stdio",
	Args:  cobra.ExactArgs(1),
	RunE:  runDAPRun,
}

func init() {
	rootCmd.AddCommand(dapCmd)
	dapCmd.AddCommand(dapRunCmd)
}

func runDAPRun(cmd *cobra.Command, args []string) error {
	ctx, err := openContext()
	if err != nil {
		return err
	}
	mgr := dap.NewManager(ctx)
	if _, err := mgr.Start().Await(); err != nil {
		return err
	}
	defer mgr.Stop().Await()

	return dap.Run(cmd.Context(), mgr, args[0])
}
