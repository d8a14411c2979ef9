package cmd

import (
	"strings"

	"github.com/containifyci/foundry/pkg/settings"
	"github.com/spf13/cobra"
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Manage linked sibling-workspace pipelines",
}

var pipelineLinkCmd = &cobra.Command{
	Use:   "link PHASE PROJECT_DIRECTORY LINKED_PHASE",
	Short: "Link a sibling workspace's pipeline phase to this project's phase",
	Args:  cobra.ExactArgs(3),
	RunE:  runPipelineLink,
}

var pipelineUnlinkCmd = &cobra.Command{
	Use:   "unlink PHASE PROJECT_DIRECTORY",
	Short: "Remove a linked sibling-workspace pipeline entry",
	Args:  cobra.ExactArgs(2),
	RunE:  runPipelineUnlink,
}

func init() {
	rootCmd.AddCommand(pipelineCmd)
	pipelineCmd.AddCommand(pipelineLinkCmd, pipelineUnlinkCmd)
}

func splitPhases(s string) []string {
	return strings.Split(s, ",")
}

func runPipelineLink(cmd *cobra.Command, args []string) error {
	phase, projectDirectory, linkedPhase := args[0], args[1], args[2]

	store, err := openSettings()
	if err != nil {
		return err
	}

	w := settings.LinkedWorkspace{
		ProjectDirectory: projectDirectory,
		Phase:            splitPhases(phase),
		LinkedPhase:      splitPhases(linkedPhase),
	}
	if err := store.LinkWorkspace(w); err != nil {
		return err
	}
	if err := store.Save(); err != nil {
		return err
	}
	return formatter().Value(w)
}

func runPipelineUnlink(cmd *cobra.Command, args []string) error {
	phase, projectDirectory := args[0], args[1]

	store, err := openSettings()
	if err != nil {
		return err
	}
	if err := store.UnlinkWorkspace(projectDirectory, splitPhases(phase)); err != nil {
		return err
	}
	if err := store.Save(); err != nil {
		return err
	}
	return formatter().Value(map[string]string{"unlinked": projectDirectory})
}
