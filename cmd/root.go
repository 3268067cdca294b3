package cmd

import (
	"errors"
	"os"

	"roost/internal/login"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands. These follow common conventions and keep
// scripting against roost predictable.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeAuthRequired indicates a credential is required but not available.
	ExitCodeAuthRequired = 2
	// ExitCodeAuthFailed indicates the login flow failed.
	ExitCodeAuthFailed = 3
)

// ErrAuthRequired is returned by commands that need a credential none of
// the sources can provide.
var ErrAuthRequired = errors.New("authentication required")

// rootCmd represents the base command for the roost application.
var rootCmd = &cobra.Command{
	Use:   "roost",
	Short: "Chat with an agent runtime from your terminal",
	Long: `roost is a terminal chat client for agent runtimes. It streams
assistant replies as they are generated and manages per-provider
credentials, acquired either by pasting an API key or through an
interactive OAuth login.`,
	// SilenceUsage prevents Cobra from printing the usage message on
	// errors that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command. Called from the main
// package to inject the build version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "roost version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error
// type. This provides semantic exit codes for scripting and automation.
func getExitCode(err error) int {
	if errors.Is(err, ErrAuthRequired) {
		return ExitCodeAuthRequired
	}

	var loginFailed *login.LoginFailedError
	if errors.As(err, &loginFailed) {
		return ExitCodeAuthFailed
	}

	return ExitCodeError
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}
