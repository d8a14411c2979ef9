package cmd

import (
	"github.com/containifyci/foundry/pkg/lsp"
	"github.com/spf13/cobra"
)

var lspCmd = &cobra.Command{
	Use:   "lsp run LANGUAGE",
	Short: "Run a language server for LANGUAGE",
}

var lspRunCmd = &cobra.Command{
	Use:   "run LANGUAGE",
	Short: "Launch the language server claiming LANGUAGE and proxy its stdio",
	Args:  cobra.ExactArgs(1),
	RunE:  runLSPRun,
}

func init() {
	rootCmd.AddCommand(lspCmd)
	lspCmd.AddCommand(lspRunCmd)
}

func runLSPRun(cmd *cobra.Command, args []string) error {
	ctx, err := openContext()
	if err != nil {
		return err
	}
	mgr := lsp.NewManager(ctx)
	if _, err := mgr.Start().Await(); err != nil {
		return err
	}
	defer mgr.Stop().Await()

	return lsp.Run(cmd.Context(), mgr, args[0])
}
