package cli

import (
	"context"
	"errors"
	"time"

	"github.com/briandowns/spinner"

	"roost/internal/login"
)

// loginPollInterval is how often the flow checks the session for new
// user-facing steps while the provider routine runs.
const loginPollInterval = 100 * time.Millisecond

// PromptFunc reads one value from the user for a pending input request.
type PromptFunc func(spec login.PromptSpec) (string, error)

// LoginFlow drives an interactive login on a terminal: it prints the
// authorization URL when the provider surfaces one, collects pending
// input through the prompt function, and reports the outcome.
type LoginFlow struct {
	coordinator  *login.Coordinator
	logger       *Logger
	prompt       PromptFunc
	pollInterval time.Duration
	quiet        bool
}

// NewLoginFlow creates a LoginFlow over the coordinator.
func NewLoginFlow(coordinator *login.Coordinator, logger *Logger, prompt PromptFunc) *LoginFlow {
	return &LoginFlow{
		coordinator:  coordinator,
		logger:       logger,
		prompt:       prompt,
		pollInterval: loginPollInterval,
	}
}

// SetQuiet disables the progress spinner. Used when output is not a
// terminal.
func (f *LoginFlow) SetQuiet(quiet bool) {
	f.quiet = quiet
}

// Run executes the full login for a provider and blocks until it
// reaches a terminal state. Cancellation of ctx cancels the login.
func (f *LoginFlow) Run(ctx context.Context, providerID string) error {
	done := make(chan error, 1)
	go func() {
		_, err := f.coordinator.Login(ctx, providerID)
		done <- err
	}()

	var sp *spinner.Spinner
	stopSpinner := func() {
		if sp != nil {
			sp.Stop()
			sp = nil
		}
	}
	startSpinner := func(suffix string) {
		if f.quiet || sp != nil {
			return
		}
		sp = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		sp.Suffix = suffix
		sp.Start()
	}
	defer stopSpinner()

	var printedAuth bool
	var lastPrompted *login.PendingRequest

	ticker := time.NewTicker(f.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			stopSpinner()
			f.coordinator.Cancel()
			return <-done

		case err := <-done:
			stopSpinner()
			return f.report(providerID, err)

		case <-ticker.C:
			sess := f.coordinator.Session()
			if sess == nil || sess.ProviderID() != providerID {
				continue
			}

			if !printedAuth {
				if url, instructions := sess.AuthorizationURL(); url != "" {
					stopSpinner()
					f.logger.OutputLine("Open this URL to authorize:")
					f.logger.OutputLine("  %s", url)
					if instructions != "" {
						f.logger.OutputLine("%s", instructions)
					}
					printedAuth = true
					startSpinner(" Waiting for authorization...")
				}
			}

			req := f.coordinator.Pending()
			if req == nil || req == lastPrompted {
				continue
			}
			lastPrompted = req

			stopSpinner()
			value, err := f.prompt(req.Spec)
			if err != nil {
				f.coordinator.Cancel()
				continue
			}

			if err := f.coordinator.Submit(value); err != nil {
				if errors.Is(err, login.ErrEmptyValue) {
					f.logger.Error("A value is required.")
					lastPrompted = nil
					continue
				}
				f.logger.Debug("Submit failed: %v", err)
				continue
			}
			startSpinner(" Completing login...")
		}
	}
}

func (f *LoginFlow) report(providerID string, err error) error {
	switch {
	case err == nil:
		f.logger.Success("Logged in to %s", providerID)
		return nil
	case errors.Is(err, login.ErrLoginCancelled):
		f.logger.Info("Login cancelled")
		return err
	default:
		f.logger.Error("Login failed: %v", err)
		return err
	}
}
