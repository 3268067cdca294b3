package cmd

import (
	"os"

	"roost/internal/config"
	"roost/internal/credstore"
	"roost/internal/login"
	"roost/internal/login/providers"
	"roost/pkg/logging"

	"github.com/spf13/cobra"
)

// Global flags shared across commands.
var (
	flagConfigPath string
	flagVerbose    bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "config directory (default: ~/.config/roost)")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "enable debug logging")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		level := logging.LevelInfo
		if flagVerbose {
			level = logging.LevelDebug
		}
		logging.Init(level, os.Stderr)
	}
}

// loadConfigOrDefaults loads the configuration from --config or the
// default location.
func loadConfigOrDefaults() (config.RoostConfig, error) {
	path := flagConfigPath
	if path == "" {
		path = config.GetDefaultConfigPathOrPanic()
	}
	return config.LoadConfig(path)
}

// newStore builds the credential store over file-backed storage.
func newStore(cfg config.RoostConfig) (*credstore.Store, error) {
	backend, err := credstore.NewFileBackend(cfg.Credentials.Dir)
	if err != nil {
		return nil, err
	}
	return credstore.New(backend), nil
}

// newCoordinator builds the login coordinator with every supported
// provider registered.
func newCoordinator(store *credstore.Store) *login.Coordinator {
	return login.NewCoordinator(store, providers.All())
}

// resolveProvider picks the provider id from the args or the config
// default.
func resolveProvider(cfg config.RoostConfig, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return cfg.Agent.Provider
}
