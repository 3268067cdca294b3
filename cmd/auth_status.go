package cmd

import (
	"roost/internal/credstore"
	"roost/internal/login/providers"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

// maskedSecretPrefix is how many characters of a secret the status table
// reveals.
const maskedSecretPrefix = 4

// authStatusCmd represents the auth status command.
var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show credential status",
	Long: `Show where each provider's credential comes from.

Credentials can come from an environment variable (which always wins) or
from the store. Secrets are shown masked.

Examples:
  roost auth status                    # Show status for all providers`,
	RunE: runAuthStatus,
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfigOrDefaults()
	if err != nil {
		return err
	}

	store, err := newStore(cfg)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Provider", "Source", "Credential"})

	for _, p := range providers.All() {
		cred, source := store.Resolve(p.ID())
		t.AppendRow(table.Row{p.ID(), formatSource(source), maskSecret(cred)})
	}

	t.Render()
	return nil
}

func formatSource(source credstore.Source) string {
	switch source {
	case credstore.SourceEnvironment:
		return text.FgYellow.Sprint("environment")
	case credstore.SourceStored:
		return text.FgGreen.Sprint("stored")
	default:
		return text.FgHiBlack.Sprint("none")
	}
}

func maskSecret(cred *credstore.Credential) string {
	if cred == nil {
		return text.FgHiBlack.Sprint("not authenticated")
	}
	secret := cred.Secret
	if len(secret) <= maskedSecretPrefix {
		return "****"
	}
	return secret[:maskedSecretPrefix] + "****"
}
