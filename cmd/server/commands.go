package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/asventura96/testcenter/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.Connect(&cfg.Database, log)
		if err != nil {
			return err
		}
		defer db.Close()

		return database.RunMigrations(cmd.Context(), db, cfg.App.MigrationsPath, log)
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the default admin account if none exists",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.Connect(&cfg.Database, log)
		if err != nil {
			return err
		}
		defer db.Close()

		return database.NewSeeder(db, log).SeedAdminUser(cmd.Context())
	},
}

var loadDataCmd = &cobra.Command{
	Use:   "loaddata <file.json>",
	Short: "Migrate, import a fixture dump and resync id counters",
	Long: `Import a JSON fixture dump (a list of {"model", "pk", "fields"} records)
in one transaction. Serial ids and the per-certifier certification
counters are advanced past the imported rows afterwards.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		db, err := database.Connect(&cfg.Database, log)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := database.RunMigrations(cmd.Context(), db, cfg.App.MigrationsPath, log); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}

		counts, err := database.LoadFixtures(cmd.Context(), db, f, log)
		if err != nil {
			return fmt.Errorf("loaddata %s: %w", args[0], err)
		}

		models := make([]string, 0, len(counts))
		for m := range counts {
			models = append(models, m)
		}
		sort.Strings(models)

		total := 0
		for _, m := range models {
			log.Info("fixtures loaded", zap.String("model", m), zap.Int("rows", counts[m]))
			total += counts[m]
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Installed %d object(s) from %s\n", total, args[0])
		return nil
	},
}
