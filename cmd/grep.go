package cmd

import (
	"github.com/containifyci/foundry/pkg/clitree"
	"github.com/containifyci/foundry/pkg/grep"
	"github.com/spf13/cobra"
)

var (
	grepOpts       grep.Options
	grepIgnoreCase bool
)

var grepCmd = &cobra.Command{
	Use:   "grep PATTERN [TARGETS...]",
	Short: "Search files for a regular expression",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runGrep,
}

func init() {
	rootCmd.AddCommand(grepCmd)
	grepCmd.Flags().BoolVarP(&grepOpts.Recursive, "recursive", "r", false, "recurse into directories")
	grepCmd.Flags().BoolVarP(&grepIgnoreCase, "ignore-case", "i", false, "ignore case distinctions")
	grepCmd.Flags().BoolVarP(&grepOpts.ExtendedRegex, "extended-regexp", "E", false, "pattern is an extended regular expression")
	grepCmd.Flags().BoolVarP(&grepOpts.WholeWord, "word-regexp", "w", false, "match whole words only")
	grepCmd.Flags().IntVarP(&grepOpts.MaxMatches, "max-count", "m", 0, "stop after COUNT matches")
	grepCmd.Flags().IntVarP(&grepOpts.ContextLines, "context", "C", 0, "print LINES lines of context")
}

func runGrep(cmd *cobra.Command, args []string) error {
	pattern := args[0]
	targets := args[1:]
	if len(targets) == 0 {
		targets = []string{"."}
	}

	grepOpts.CaseSensitive = !grepIgnoreCase
	matches, err := grep.Search(pattern, targets, grepOpts)
	if err != nil {
		return err
	}

	rows := make([]clitree.Row, 0, len(matches))
	for _, m := range matches {
		rows = append(rows, clitree.Row{
			Columns: []string{"match"},
			Values:  []string{grep.Format(m)},
		})
	}
	return formatter().Rows(rows)
}
