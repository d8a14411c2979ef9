package cmd

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/containifyci/foundry/pkg/tui"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Interactively browse and run team standups",
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	ctx, err := openContext()
	if err != nil {
		return err
	}

	store, err := openTeamStore()
	if err != nil {
		return err
	}
	defer store.Close()

	model, err := tui.New(ctx, store)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(model).Run()
	return err
}
