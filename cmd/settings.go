package cmd

import (
	"github.com/containifyci/foundry/pkg/ferr"
	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Read app.devsuite.foundry settings",
}

var settingsGetCmd = &cobra.Command{
	Use:   "get SCHEMA KEY",
	Short: "Read app.devsuite.foundry.SCHEMA[KEY]",
	Args:  cobra.ExactArgs(2),
	RunE:  runSettingsGet,
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsGetCmd)
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	schema, key := args[0], args[1]

	store, err := openSettings()
	if err != nil {
		return err
	}
	value, ok := store.Get(schema, key)
	if !ok {
		return ferr.New(ferr.NotFound, "no value for app.devsuite.foundry."+schema+"["+key+"]")
	}
	return formatter().Value(value)
}
