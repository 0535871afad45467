package cli

import (
	"github.com/spf13/cobra"

	"github.com/yungbote/educator-assistant-backend/internal/app"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()

			dbService, err := app.OpenDatabase(log, cfg)
			if err != nil {
				log.Error("migrate failed", "error", err)
				return err
			}
			defer dbService.Close()
			log.Info("schema migrated", "driver", dbService.Driver())
			return nil
		},
	}
}
