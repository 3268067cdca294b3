package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/chzyer/readline"

	"roost/internal/conversation"
	"roost/internal/credstore"
	"roost/internal/login"
	"roost/internal/runtime"
)

// promptChevronUnicode is the guillemet separator used in the prompt.
const promptChevronUnicode = "»"

// promptChevronASCII is the fallback chevron for terminals without
// unicode support.
const promptChevronASCII = ">"

// promptPrefix brands the REPL prompt.
const promptPrefix = "roost"

// REPL is the interactive chat loop. Plain input goes to the agent as a
// conversation turn; slash commands control credentials and the session.
type REPL struct {
	controller  *conversation.Controller
	handle      runtime.Handle
	coordinator *login.Coordinator
	store       *credstore.Store
	logger      *Logger
	rl          *readline.Instance

	transcript      conversation.Transcript
	defaultProvider string
	useUnicode      bool

	mu       sync.Mutex
	streamed strings.Builder
	spinner  *spinner.Spinner
}

// REPLConfig bundles the dependencies of a REPL.
type REPLConfig struct {
	Handle          runtime.Handle
	Coordinator     *login.Coordinator
	Store           *credstore.Store
	Logger          *Logger
	DefaultProvider string
}

// NewREPL creates a new chat REPL.
func NewREPL(cfg REPLConfig) *REPL {
	r := &REPL{
		handle:          cfg.Handle,
		coordinator:     cfg.Coordinator,
		store:           cfg.Store,
		logger:          cfg.Logger,
		defaultProvider: cfg.DefaultProvider,
		useUnicode:      detectUnicodeSupport(),
	}
	r.controller = conversation.NewController(conversation.WithDeltaHandler(r.onDelta))
	return r
}

// detectUnicodeSupport checks if the terminal likely supports unicode
// characters.
func detectUnicodeSupport() bool {
	term := os.Getenv("TERM")
	if term == "" || term == "dumb" {
		return false
	}

	for _, v := range []string{os.Getenv("LANG"), os.Getenv("LC_ALL")} {
		lower := strings.ToLower(v)
		if strings.Contains(lower, "utf-8") || strings.Contains(lower, "utf8") {
			return true
		}
	}

	return true
}

// buildPrompt creates the REPL prompt. Format examples:
//   - "roost » "            - credential present
//   - "roost [no auth] » "  - no credential for the default provider
func (r *REPL) buildPrompt() string {
	chevron := promptChevronASCII
	if r.useUnicode {
		chevron = promptChevronUnicode
	}

	parts := []string{promptPrefix}
	if !r.store.Has(r.defaultProvider) {
		parts = append(parts, "[no auth]")
	}
	parts = append(parts, chevron)

	return strings.Join(parts, " ") + " "
}

func (r *REPL) updatePrompt() {
	if r.rl != nil {
		r.rl.SetPrompt(r.buildPrompt())
	}
}

// Run starts the REPL and processes input until EOF, interrupt, or an
// exit command.
func (r *REPL) Run(ctx context.Context) error {
	historyFile := filepath.Join(os.TempDir(), ".roost_history")

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            r.buildPrompt(),
		HistoryFile:       historyFile,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create readline instance: %w", err)
	}
	defer rl.Close()
	r.rl = rl

	r.logger.Info("Chat session started. Type /help for commands.")
	if !r.store.Has(r.defaultProvider) {
		r.logger.Info("No credential for %s. Run /login to authenticate.", r.defaultProvider)
	}
	fmt.Fprintln(rl.Stdout())

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Shutting down...")
			return nil
		default:
		}

		line, err := r.rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				continue
			}
		} else if err == io.EOF {
			r.logger.Info("Goodbye!")
			return nil
		} else if err != nil {
			return fmt.Errorf("readline error: %w", err)
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			exit, err := r.executeCommand(ctx, input)
			if err != nil {
				r.logger.Error("Error: %v", err)
			}
			if exit {
				r.logger.Info("Goodbye!")
				return nil
			}
			continue
		}

		r.sendMessage(ctx, input)
		fmt.Fprintln(rl.Stdout())
	}
}

// executeCommand dispatches a slash command. The bool result reports
// whether the REPL should exit.
func (r *REPL) executeCommand(ctx context.Context, input string) (bool, error) {
	parts := strings.Fields(input)
	name := strings.ToLower(strings.TrimPrefix(parts[0], "/"))
	args := parts[1:]

	switch name {
	case "help", "?":
		r.printHelp()
		return false, nil

	case "login":
		providerID := r.defaultProvider
		if len(args) > 0 {
			providerID = args[0]
		}
		flow := NewLoginFlow(r.coordinator, r.logger, r.readlinePrompt)
		err := flow.Run(ctx, providerID)
		r.updatePrompt()
		if err != nil {
			// Already reported by the flow.
			return false, nil
		}
		return false, nil

	case "logout":
		providerID := r.defaultProvider
		if len(args) > 0 {
			providerID = args[0]
		}
		if err := r.store.Delete(providerID); err != nil {
			return false, err
		}
		r.logger.Success("Removed credential for %s", providerID)
		r.updatePrompt()
		return false, nil

	case "status":
		r.printStatus()
		return false, nil

	case "exit", "quit":
		return true, nil

	default:
		return false, fmt.Errorf("unknown command: %s. Type /help for available commands", parts[0])
	}
}

func (r *REPL) printHelp() {
	r.logger.OutputLine("Commands:")
	r.logger.OutputLine("  /login [provider]   authenticate a provider (default: %s)", r.defaultProvider)
	r.logger.OutputLine("  /logout [provider]  remove a stored credential")
	r.logger.OutputLine("  /status             show credential status per provider")
	r.logger.OutputLine("  /exit               leave the chat")
	r.logger.OutputLine("Anything else is sent to the agent as a message.")
}

func (r *REPL) printStatus() {
	ids := r.coordinator.Providers()
	sort.Strings(ids)
	for _, id := range ids {
		_, source := r.store.Resolve(id)
		r.logger.OutputLine("  %-20s %s", id, string(source))
	}
}

// readlinePrompt collects one value for a pending login request using
// the REPL's readline instance.
func (r *REPL) readlinePrompt(spec login.PromptSpec) (string, error) {
	prompt := spec.Message + " "
	if spec.Placeholder != "" {
		prompt = fmt.Sprintf("%s (%s) ", spec.Message, spec.Placeholder)
	}

	r.rl.SetPrompt(prompt)
	defer r.updatePrompt()

	line, err := r.rl.Readline()
	if err != nil {
		return "", err
	}
	return line, nil
}

// sendMessage runs one conversation turn and streams the assistant
// reply to the terminal as deltas arrive.
func (r *REPL) sendMessage(ctx context.Context, text string) {
	r.mu.Lock()
	r.streamed.Reset()
	r.spinner = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	r.spinner.Suffix = " Thinking..."
	r.spinner.Start()
	r.mu.Unlock()

	transcript, err := r.controller.Send(ctx, r.transcript, text, r.handle)
	r.transcript = transcript

	r.mu.Lock()
	if r.spinner != nil {
		r.spinner.Stop()
		r.spinner = nil
	}
	streamed := r.streamed.String()
	r.mu.Unlock()

	if err != nil {
		r.logger.Error("Error: %v", err)
		return
	}

	// A reply that arrived only in the final message was never streamed;
	// print whatever the deltas did not cover.
	if last := r.transcript.Last(); last != nil && last.Role == conversation.RoleAssistant {
		if remainder, ok := strings.CutPrefix(last.Text, streamed); ok && remainder != "" {
			r.logger.Output("%s", remainder)
		}
	}
	r.logger.Output("\n")
}

// onDelta prints one streamed chunk, stopping the spinner on the first.
func (r *REPL) onDelta(delta string) {
	r.mu.Lock()
	if r.spinner != nil {
		r.spinner.Stop()
		r.spinner = nil
	}
	r.streamed.WriteString(delta)
	r.mu.Unlock()

	r.logger.Output("%s", delta)
}
