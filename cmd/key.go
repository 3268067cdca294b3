package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// keyCmd represents the key command group for direct API key management.
var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage API keys directly",
	Long: `Store or remove provider API keys without an OAuth login.

Examples:
  roost key set anthropic              # Prompt for the key on stdin
  roost key rm anthropic               # Remove the stored key`,
}

// keySetCmd stores an API key for a provider.
var keySetCmd = &cobra.Command{
	Use:   "set <provider>",
	Short: "Store an API key for a provider",
	Args:  cobra.ExactArgs(1),
	RunE:  runKeySet,
}

// keyRmCmd removes a stored key.
var keyRmCmd = &cobra.Command{
	Use:   "rm <provider>",
	Short: "Remove a stored API key",
	Args:  cobra.ExactArgs(1),
	RunE:  runKeyRm,
}

func init() {
	keyCmd.AddCommand(keySetCmd)
	keyCmd.AddCommand(keyRmCmd)
	rootCmd.AddCommand(keyCmd)
}

func runKeySet(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfigOrDefaults()
	if err != nil {
		return err
	}

	store, err := newStore(cfg)
	if err != nil {
		return err
	}
	providerID := args[0]

	fmt.Fprintf(cmd.OutOrStdout(), "API key for %s: ", providerID)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read key: %w", err)
	}

	if err := store.Set(providerID, strings.TrimSpace(line)); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Stored key for %s\n", providerID)
	return nil
}

func runKeyRm(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfigOrDefaults()
	if err != nil {
		return err
	}

	store, err := newStore(cfg)
	if err != nil {
		return err
	}
	providerID := args[0]

	if err := store.Delete(providerID); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed key for %s\n", providerID)
	return nil
}
