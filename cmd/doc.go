package cmd

import (
	"github.com/containifyci/foundry/pkg/clitree"
	"github.com/containifyci/foundry/pkg/doc"
	"github.com/spf13/cobra"
)

var docCmd = &cobra.Command{
	Use:   "doc",
	Short: "Query and manage documentation bundles",
}

var docQueryCmd = &cobra.Command{
	Use:   "query SEARCH_TEXT...",
	Short: "Search indexed documentation",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDocQuery,
}

var docBundleCmd = &cobra.Command{
	Use:   "bundle",
	Short: "Manage documentation bundles",
}

var docBundleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered documentation bundles",
	Args:  cobra.NoArgs,
	RunE:  runDocBundleList,
}

func init() {
	rootCmd.AddCommand(docCmd)
	docCmd.AddCommand(docQueryCmd, docBundleCmd)
	docBundleCmd.AddCommand(docBundleListCmd)
}

// docManager is process-global and held in memory only, matching the
// original's in-memory FoundryDocumentationManager list model. Nothing in
// this command tree registers bundles or pages into it, so every run
// starts with an empty registry, and nothing is persisted.
var docManager = doc.NewManager()

func runDocQuery(cmd *cobra.Command, args []string) error {
	results := docManager.Query(args, 0)
	rows := make([]clitree.Row, 0, len(results))
	for _, r := range results {
		rows = append(rows, clitree.Row{
			Columns: []string{"title", "uri"},
			Values:  []string{r.Title, r.URI},
		})
	}
	return formatter().Rows(rows)
}

func runDocBundleList(cmd *cobra.Command, _ []string) error {
	bundles := docManager.Bundles()
	rows := make([]clitree.Row, 0, len(bundles))
	for _, b := range bundles {
		rows = append(rows, clitree.Row{
			Columns: []string{"id", "title", "installed", "subtitle"},
			Values:  []string{b.ID, b.Title, boolString(b.Installed), b.Subtitle},
		})
	}
	return formatter().Rows(rows)
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
