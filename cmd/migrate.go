package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-id/internal/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Enroll faces from an existing user database",
	Long: `Populate the face store from an existing user database.
Reads identity rows from the configured source (MIGRATE_DB_DRIVER,
MIGRATE_DB_DSN), downloads each user's reference photo and enrolls it.
Rows whose image cannot be downloaded or contains no face are skipped.`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if cfg.Migrate.DSN == "" {
		return errors.New("MIGRATE_DB_DSN environment variable is required")
	}

	rec, err := newRecognizer(cfg)
	if err != nil {
		return err
	}
	fmt.Printf("Face store loaded with %d faces from %s\n", rec.Count(), cfg.Store.SnapshotPath)

	runner, cleanup, err := newMigrateRunner(cfg, rec, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to set up migration source: %w", err)
	}
	defer cleanup()

	summary, err := runner.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if summary.Failed > 0 {
		return fmt.Errorf("migration finished with %d failed row(s)", summary.Failed)
	}
	return nil
}
