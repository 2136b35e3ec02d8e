package cli

import (
	"bufio"
	"context"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dwizi/concierge/internal/app"
	"github.com/dwizi/concierge/internal/config"
	"github.com/dwizi/concierge/internal/resolver"
	"github.com/dwizi/concierge/internal/sanitize"
	"github.com/dwizi/concierge/internal/widget"
)

type chatSessions interface {
	Submit(ctx context.Context, sessionID, text string) (string, resolver.Outcome)
}

func newChatCommand(logger *slog.Logger) *cobra.Command {
	var (
		message   string
		sessionID string
		verbose   bool
	)

	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Ask the concierge a question from the terminal",
		Long:  "Send one message and print the reply, or start a line-based conversation when no message is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			runtime, err := app.New(config.FromEnv(), version, interactiveLogger(cmd.ErrOrStderr(), logger))
			if err != nil {
				return err
			}
			defer runtime.Close()

			text := strings.TrimSpace(message)
			if text == "" && len(args) > 0 {
				text = strings.TrimSpace(strings.Join(args, " "))
			}
			if text != "" {
				_, outcome := ask(cmd.Context(), runtime.Sessions(), sessionID, text)
				printReply(cmd, outcome, verbose)
				return nil
			}

			cmd.Println("assistant> " + widget.Greeting)
			cmd.Println("Type /exit to quit.")
			return runInteractiveChat(cmd, runtime.Sessions(), sessionID, verbose)
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "single message to send (non-interactive mode)")
	cmd.Flags().StringVar(&sessionID, "session-id", "", "session id to continue (generated when empty)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print the tier that produced each reply")
	return cmd
}

func ask(ctx context.Context, sessions chatSessions, sessionID, text string) (string, resolver.Outcome) {
	if ctx == nil {
		ctx = context.Background()
	}
	return sessions.Submit(ctx, sessionID, sanitize.Text(text))
}

func runInteractiveChat(cmd *cobra.Command, sessions chatSessions, sessionID string, verbose bool) error {
	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		cmd.Print("you> ")
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "/exit" || text == "/quit" {
			return nil
		}

		var outcome resolver.Outcome
		sessionID, outcome = ask(cmd.Context(), sessions, sessionID, text)
		printReply(cmd, outcome, verbose)
	}

	return scanner.Err()
}

func printReply(cmd *cobra.Command, outcome resolver.Outcome, verbose bool) {
	lines := strings.Split(strings.TrimSpace(outcome.Reply), "\n")
	for index, line := range lines {
		line = strings.TrimRight(line, "\r")
		if index == 0 {
			cmd.Printf("assistant> %s\n", line)
			continue
		}
		cmd.Printf("           %s\n", line)
	}
	if verbose {
		cmd.Printf("           (source: %s, attempts: %d)\n", outcome.Source, outcome.Attempts)
	}
}
