package cmd

import (
	"time"

	"github.com/containifyci/foundry/pkg/ferr"
	"github.com/containifyci/foundry/pkg/secret"
	"github.com/spf13/cobra"
)

var secretExpireAt string

var secretCmd = &cobra.Command{
	Use:   "secret",
	Short: "Manage host/service API keys",
}

var secretSetAPIKeyCmd = &cobra.Command{
	Use:   "set-api-key HOST SERVICE KEY",
	Short: "Store an API key for HOST/SERVICE",
	Args:  cobra.ExactArgs(3),
	RunE:  runSecretSetAPIKey,
}

var secretGetAPIKeyCmd = &cobra.Command{
	Use:   "get-api-key HOST SERVICE",
	Short: "Read the stored API key for HOST/SERVICE",
	Args:  cobra.ExactArgs(2),
	RunE:  runSecretGetAPIKey,
}

var secretRotateCmd = &cobra.Command{
	Use:   "rotate HOST SERVICE [--expire-at YYYY-MM-DD]",
	Short: "Rotate expiry metadata for an already-stored API key",
	Args:  cobra.ExactArgs(2),
	RunE:  runSecretRotate,
}

var secretCheckExpiresAtCmd = &cobra.Command{
	Use:   "check-expires-at HOST SERVICE",
	Short: "Print the stored expiry date for HOST/SERVICE",
	Args:  cobra.ExactArgs(2),
	RunE:  runSecretCheckExpiresAt,
}

func init() {
	rootCmd.AddCommand(secretCmd)
	secretCmd.AddCommand(secretSetAPIKeyCmd, secretGetAPIKeyCmd, secretRotateCmd, secretCheckExpiresAtCmd)
	secretRotateCmd.Flags().StringVar(&secretExpireAt, "expire-at", "", "new expiration date, YYYY-MM-DD")
}

func secretStore() (secret.Store, error) {
	store, err := openSettings()
	if err != nil {
		return nil, err
	}
	return secret.NewYAMLStore(store), nil
}

func runSecretSetAPIKey(cmd *cobra.Command, args []string) error {
	s, err := secretStore()
	if err != nil {
		return err
	}
	key := secret.Key{Host: args[0], Service: args[1]}
	if err := s.SetAPIKey(key, args[2]); err != nil {
		return err
	}
	return formatter().Value(map[string]string{"host": key.Host, "service": key.Service})
}

func runSecretGetAPIKey(cmd *cobra.Command, args []string) error {
	s, err := secretStore()
	if err != nil {
		return err
	}
	key := secret.Key{Host: args[0], Service: args[1]}
	apiKey, err := s.GetAPIKey(key)
	if err != nil {
		return err
	}
	return formatter().Value(map[string]string{"api-key": apiKey})
}

// runSecretRotate mirrors foundry-cli-builtin-secret-rotate.c's
// argv shape (HOST SERVICE [--expire-at YYYY-MM-DD]): an API key must
// already be stored; rotate re-persists it with the new expiry.
func runSecretRotate(cmd *cobra.Command, args []string) error {
	s, err := secretStore()
	if err != nil {
		return err
	}
	key := secret.Key{Host: args[0], Service: args[1]}

	apiKey, err := s.GetAPIKey(key)
	if err != nil {
		return err
	}

	var expireAt time.Time
	if secretExpireAt != "" {
		expireAt, err = time.Parse("2006-01-02", secretExpireAt)
		if err != nil {
			return ferr.Wrap(ferr.InvalidArgument, err, "invalid date format, expected YYYY-MM-DD")
		}
	}

	if err := s.Rotate(key, apiKey, expireAt); err != nil {
		return err
	}
	return formatter().Value(map[string]string{"host": key.Host, "service": key.Service})
}

func runSecretCheckExpiresAt(cmd *cobra.Command, args []string) error {
	s, err := secretStore()
	if err != nil {
		return err
	}
	key := secret.Key{Host: args[0], Service: args[1]}
	expireAt, err := s.CheckExpiresAt(key)
	if err != nil {
		return err
	}
	if expireAt.IsZero() {
		return formatter().Value(map[string]string{"expire-at": ""})
	}
	return formatter().Value(map[string]string{"expire-at": expireAt.Format("2006-01-02")})
}
