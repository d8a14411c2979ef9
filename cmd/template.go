package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/containifyci/foundry/pkg/ferr"
	"github.com/containifyci/foundry/pkg/template"
	"github.com/spf13/cobra"
)

// templateManager is process-global and seeded with the built-in
// scaffolds at startup, matching docManager's in-memory registry model.
var templateManager = template.NewManager()

func init() {
	templateManager.Register(template.Template{
		ID:     "go-module",
		Name:   "Go module",
		Inputs: []string{"module"},
		Body: `module {{.module}}

go 1.25
`,
	})

	rootCmd.AddCommand(templateCmd)
	templateCmd.AddCommand(templateCreateCmd)
	templateCreateCmd.Flags().StringArrayVar(&templateInputs, "input", nil, "KEY=VALUE input for the template, repeatable")
	templateCreateCmd.Flags().StringVar(&templateOutput, "output", "", "file to write the expanded template to (default: stdout)")
}

var (
	templateInputs []string
	templateOutput string
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Create projects from registered scaffolds",
}

var templateCreateCmd = &cobra.Command{
	Use:   "create TEMPLATE_ID",
	Short: "Expand a registered template",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplateCreate,
}

func runTemplateCreate(cmd *cobra.Command, args []string) error {
	t, err := templateManager.Find(args[0])
	if err != nil {
		return err
	}

	input := make(map[string]string, len(templateInputs))
	for _, kv := range templateInputs {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return ferr.New(ferr.InvalidArgument, fmt.Sprintf("--input %q: expected KEY=VALUE", kv))
		}
		input[key] = value
	}

	out, err := template.Expand(t, input)
	if err != nil {
		return err
	}

	if templateOutput == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), out)
		return err
	}
	return os.WriteFile(templateOutput, []byte(out), 0o644)
}
