package cmd

import (
	"github.com/spf13/cobra"
)

// Auth-specific flags.
var (
	authQuiet bool
)

// authCmd represents the auth command group.
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage provider authentication",
	Long: `Manage provider credentials for roost.

The auth command group provides subcommands to login, logout, and check
credential status for the supported providers.

Examples:
  roost auth login                     # Login to the default provider
  roost auth login githubCopilot      # Login to a specific provider
  roost auth status                    # Show credential status
  roost auth logout                    # Remove the default provider's credential
  roost auth logout --all              # Remove all stored credentials`,
}

func init() {
	authCmd.PersistentFlags().BoolVarP(&authQuiet, "quiet", "q", false, "suppress progress output")

	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}
