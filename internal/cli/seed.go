package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/yungbote/educator-assistant-backend/internal/app"
	"github.com/yungbote/educator-assistant-backend/internal/seed"
)

func newSeedCmd() *cobra.Command {
	opts := seed.DefaultOptions()
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate the database with a demo classroom",
		Long: "Creates a demo educator with sections, subjects, students, grade histories and a weekly timetable.\n" +
			"Running it again for the same educator does nothing.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()
			if !cmd.Flags().Changed("email") {
				opts.EducatorEmail = cfg.DemoEducatorEmail
			}

			dbService, err := app.OpenDatabase(log, cfg)
			if err != nil {
				log.Error("seed failed", "error", err)
				return err
			}
			defer dbService.Close()

			sum, err := seed.New(dbService.DB(), log).Run(cmd.Context(), opts)
			if err != nil {
				log.Error("seed failed", "error", err)
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(sum)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.EducatorEmail, "email", opts.EducatorEmail, "demo educator email (defaults to DEMO_EDUCATOR_EMAIL)")
	f.StringVar(&opts.Password, "password", opts.Password, "demo educator password")
	f.StringVar(&opts.School, "school", opts.School, "school name")
	f.IntVar(&opts.Sections, "sections", opts.Sections, "number of sections")
	f.IntVar(&opts.StudentsPerSection, "students", opts.StudentsPerSection, "students per section")
	f.IntVar(&opts.GradesPerStudent, "grades", opts.GradesPerStudent, "grades per student")
	f.Uint64Var(&opts.RandSeed, "rand-seed", opts.RandSeed, "random seed")
	return cmd
}
