package cli

import (
	"github.com/spf13/cobra"

	"github.com/yungbote/educator-assistant-backend/internal/app"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		RunE:  runServe,
	}
	cmd.Flags().String("port", "", "listen port (overrides PORT)")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()
	if f := cmd.Flags().Lookup("port"); f != nil && f.Value.String() != "" {
		cfg.Port = f.Value.String()
	}

	ctx := cmd.Context()
	application, err := app.New(ctx, log, cfg)
	if err != nil {
		log.Error("init app failed", "error", err)
		return err
	}
	defer application.Close()

	application.Start(ctx)
	if err := application.Run(ctx); err != nil {
		log.Error("server stopped with error", "error", err)
		return err
	}
	log.Info("server stopped")
	return nil
}
