package cmd

import (
	"fmt"

	"roost/internal/login/providers"

	"github.com/spf13/cobra"
)

// Logout-specific flags.
var (
	logoutAll bool
)

// authLogoutCmd represents the auth logout command.
var authLogoutCmd = &cobra.Command{
	Use:   "logout [provider]",
	Short: "Remove stored credentials",
	Long: `Remove the stored credential for a provider.

Environment overrides are not affected; unset the corresponding
environment variable to stop using one.

Examples:
  roost auth logout                    # Remove the default provider's credential
  roost auth logout openAICodex        # Remove a specific provider's credential
  roost auth logout --all              # Remove all stored credentials`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAuthLogout,
}

func init() {
	authLogoutCmd.Flags().BoolVar(&logoutAll, "all", false, "remove credentials for all providers")
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfigOrDefaults()
	if err != nil {
		return err
	}

	store, err := newStore(cfg)
	if err != nil {
		return err
	}

	if logoutAll {
		for _, p := range providers.All() {
			if err := store.Delete(p.ID()); err != nil {
				return err
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Removed all stored credentials")
		return nil
	}

	providerID := resolveProvider(cfg, args)
	if err := store.Delete(providerID); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed credential for %s\n", providerID)
	return nil
}
