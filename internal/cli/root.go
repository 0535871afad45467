// Package cli holds the educator-assistant commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yungbote/educator-assistant-backend/internal/app"
	"github.com/yungbote/educator-assistant-backend/internal/platform/logger"
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "educator-assistant",
		Short:         "Educator assistant backend",
		Long:          "REST API and chat assistant for managing students, grades, schedules and parent communication.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.AddCommand(newServeCmd(), newMigrateCmd(), newSeedCmd())
	return root
}

// Execute runs the root command with SIGINT/SIGTERM cancelling its context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err := NewRootCmd().ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	return err
}

// bootstrap loads .env and config and builds the logger.
func bootstrap() (app.Config, *logger.Logger, error) {
	if err := app.LoadDotEnv(); err != nil {
		return app.Config{}, nil, fmt.Errorf("load .env: %w", err)
	}
	cfg := app.LoadConfig(nil)
	log, err := app.NewLogger(cfg)
	if err != nil {
		return app.Config{}, nil, err
	}
	return app.LoadConfig(log), log, nil
}
