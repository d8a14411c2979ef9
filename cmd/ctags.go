package cmd

import (
	"os"

	"github.com/containifyci/foundry/pkg/ctags"
	"github.com/spf13/cobra"
)

var ctagsBinary string

var ctagsCmd = &cobra.Command{
	Use:   "ctags FILE",
	Short: "Index FILE with ctags and print the raw tag data",
	Args:  cobra.ExactArgs(1),
	RunE:  runCtags,
}

func init() {
	rootCmd.AddCommand(ctagsCmd)
	ctagsCmd.Flags().StringVar(&ctagsBinary, "binary", "", "ctags binary to run (defaults to \"ctags\" on PATH)")
}

func runCtags(cmd *cobra.Command, args []string) error {
	idx := ctags.NewIndexer(ctagsBinary)
	tags, err := idx.Index(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(tags)
	return err
}
