package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dwizi/concierge/internal/app"
	"github.com/dwizi/concierge/internal/config"
	"github.com/dwizi/concierge/internal/mcpserver"
	"github.com/dwizi/concierge/internal/widget"
)

const version = "0.1.0"

func NewRoot(logger *slog.Logger) *cobra.Command {
	if logger == nil {
		logger = slog.Default()
	}
	root := &cobra.Command{
		Use:           "concierge",
		Short:         "Concierge answers website visitors for Azayd IT Consulting",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCommand(logger))
	root.AddCommand(newChatCommand(logger))
	root.AddCommand(newWidgetCommand(logger))
	root.AddCommand(newMCPCommand())
	root.AddCommand(newKnowledgeCommand())
	root.AddCommand(newTasksCommand())
	root.AddCommand(newVersionCommand())

	return root
}

func newServeCommand(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the chat API, websocket endpoint and background services",
		RunE: func(cmd *cobra.Command, args []string) error {
			runtime, err := app.New(config.FromEnv(), version, logger)
			if err != nil {
				return err
			}
			defer runtime.Close()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return runtime.Run(ctx)
		},
	}
}

func newWidgetCommand(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "widget",
		Short: "Open the chat window in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			runtime, err := app.New(config.FromEnv(), version, interactiveLogger(cmd.ErrOrStderr(), logger))
			if err != nil {
				return err
			}
			defer runtime.Close()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			go runtime.RunBackground(ctx)
			return widget.Run(ctx, runtime.Sessions(), "", cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func newMCPCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the chat tools over MCP stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			// stdout carries the protocol, so logs go to stderr.
			logger := slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))
			runtime, err := app.New(config.FromEnv(), version, logger)
			if err != nil {
				return err
			}
			defer runtime.Close()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			go runtime.RunBackground(ctx)
			return mcpserver.New(runtime.Sessions(), runtime.Knowledge(), version).Run(ctx)
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print CLI version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(version)
		},
	}
}

// interactiveLogger writes to w, never to the stdout logger, at Warn or the
// configured level when that is stricter.
func interactiveLogger(w io.Writer, logger *slog.Logger) *slog.Logger {
	level := slog.LevelWarn
	if !logger.Enabled(context.Background(), slog.LevelWarn) {
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
