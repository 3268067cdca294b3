package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"roost/internal/cli"
	"roost/internal/credstore"
	"roost/internal/runtime"
	"roost/pkg/logging"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// Chat-specific flags.
var (
	chatEndpoint string
)

// chatCmd represents the chat command.
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start an interactive chat session with the agent runtime.

Assistant replies stream to the terminal as they are generated. Slash
commands manage credentials without leaving the session; type /help
inside the session for the full list.

Examples:
  roost chat                           # Connect to the configured runtime
  roost chat --endpoint http://host:8090/sse`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatEndpoint, "endpoint", "", "agent runtime SSE endpoint (default from config)")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfigOrDefaults()
	if err != nil {
		return err
	}
	if !flagVerbose {
		logging.Init(logging.ParseLevel(cfg.LogLevel), os.Stderr)
	}

	endpoint := cfg.Agent.Endpoint
	if chatEndpoint != "" {
		endpoint = chatEndpoint
	}

	backend, err := credstore.NewFileBackend(cfg.Credentials.Dir)
	if err != nil {
		return err
	}
	store := credstore.New(backend)
	coordinator := newCoordinator(store)
	logger := cli.NewLogger(flagVerbose, true)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handle := runtime.NewMCPHandle(endpoint)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " Connecting to agent runtime..."
	s.Start()
	err = handle.Connect(ctx)
	s.Stop()
	if err != nil {
		return fmt.Errorf("failed to connect to agent runtime at %s: %w", endpoint, err)
	}
	defer handle.Close()

	// Notice logins and logouts performed by another roost process while
	// this session runs.
	watcher := credstore.NewWatcher(credstore.WatcherConfig{
		Dir: backend.Dir(),
		OnChange: func(providerID string) {
			logging.Info("CredWatcher", "Credential for %s changed on disk", providerID)
		},
	})
	if err := watcher.Start(); err != nil {
		logging.Warn("CredWatcher", "Credential watcher unavailable: %v", err)
	}

	repl := cli.NewREPL(cli.REPLConfig{
		Handle:          handle,
		Coordinator:     coordinator,
		Store:           store,
		Logger:          logger,
		DefaultProvider: cfg.Agent.Provider,
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return repl.Run(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		watcher.Stop()
		return nil
	})
	return g.Wait()
}
