package cmd

import (
	"github.com/containifyci/foundry/pkg/clitree"
	"github.com/containifyci/foundry/pkg/sdk"
	"github.com/spf13/cobra"
)

var sdkCmd = &cobra.Command{
	Use:   "sdk",
	Short: "Manage registered SDK toolchains",
}

var sdkSwitchCmd = &cobra.Command{
	Use:   "switch SDK_ID",
	Short: "Switch current SDK",
	Args:  cobra.ExactArgs(1),
	RunE:  runSDKSwitch,
}

var sdkWhichCmd = &cobra.Command{
	Use:   "which SDK PROGRAM",
	Short: "Look for PROGRAM in SDK",
	Args:  cobra.ExactArgs(2),
	RunE:  runSDKWhich,
}

var sdkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered SDKs",
	Args:  cobra.NoArgs,
	RunE:  runSDKList,
}

func init() {
	rootCmd.AddCommand(sdkCmd)
	sdkCmd.AddCommand(sdkSwitchCmd, sdkWhichCmd, sdkListCmd)
}

func sdkManager() (*sdk.Manager, error) {
	store, err := openSettings()
	if err != nil {
		return nil, err
	}
	return sdk.NewManager(store), nil
}

func runSDKSwitch(cmd *cobra.Command, args []string) error {
	m, err := sdkManager()
	if err != nil {
		return err
	}
	if err := m.Switch(args[0]); err != nil {
		return err
	}
	return formatter().Value(map[string]string{"active": args[0]})
}

func runSDKWhich(cmd *cobra.Command, args []string) error {
	m, err := sdkManager()
	if err != nil {
		return err
	}
	path, err := m.Which(args[0], args[1])
	if err != nil {
		return err
	}
	return formatter().Value(map[string]string{"path": path})
}

func runSDKList(cmd *cobra.Command, _ []string) error {
	m, err := sdkManager()
	if err != nil {
		return err
	}
	list := m.List()
	rows := make([]clitree.Row, 0, len(list))
	for _, s := range list {
		rows = append(rows, clitree.Row{
			Columns: []string{"id", "root"},
			Values:  []string{s.ID, s.Root},
		})
	}
	return formatter().Rows(rows)
}
