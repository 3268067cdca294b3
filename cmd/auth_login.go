package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"roost/internal/cli"
	"roost/internal/login"

	"github.com/spf13/cobra"
)

// authLoginCmd represents the auth login command.
var authLoginCmd = &cobra.Command{
	Use:   "login [provider]",
	Short: "Authenticate a provider",
	Long: `Run the interactive login for a provider and store the
resulting credential.

Depending on the provider this opens a browser for authorization and
asks you to paste a code back, or shows a short code to enter on the
provider's device page.

Examples:
  roost auth login                     # Login to the default provider
  roost auth login googleGeminiCli     # Login to a specific provider`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAuthLogin,
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfigOrDefaults()
	if err != nil {
		return err
	}

	store, err := newStore(cfg)
	if err != nil {
		return err
	}
	coordinator := newCoordinator(store)
	providerID := resolveProvider(cfg, args)

	logger := cli.NewLogger(flagVerbose, true)
	reader := bufio.NewReader(os.Stdin)
	flow := cli.NewLoginFlow(coordinator, logger, func(spec login.PromptSpec) (string, error) {
		prompt := spec.Message
		if spec.Placeholder != "" {
			prompt = fmt.Sprintf("%s (%s)", spec.Message, spec.Placeholder)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s ", prompt)
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(line), nil
	})
	flow.SetQuiet(authQuiet)

	return flow.Run(cmd.Context(), providerID)
}
