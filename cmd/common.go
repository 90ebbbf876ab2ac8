package cmd

import (
	"errors"
	"io"
	"time"

	"github.com/kozaktomas/face-id/internal/config"
	"github.com/kozaktomas/face-id/internal/encoder"
	"github.com/kozaktomas/face-id/internal/migrate"
	"github.com/kozaktomas/face-id/internal/recognizer"
	"github.com/kozaktomas/face-id/internal/store"
)

// newRecognizer wires the store and the encoder client from configuration.
func newRecognizer(cfg *config.Config) (*recognizer.Recognizer, error) {
	if cfg.Encoder.URL == "" {
		return nil, errors.New("ENCODER_URL environment variable is required")
	}

	st := store.Open(cfg.Store.SnapshotPath)
	enc := encoder.NewClient(cfg.Encoder.URL, time.Duration(cfg.Defaults.Encoder.TimeoutSeconds)*time.Second)
	return recognizer.New(enc, st, cfg.Defaults.Encoder.MaxImageSize), nil
}

// newMigrateRunner builds the database migration runner. Returns a nil runner
// without error when no source database is configured.
func newMigrateRunner(cfg *config.Config, rec *recognizer.Recognizer, progress io.Writer) (*migrate.Runner, func(), error) {
	if cfg.Migrate.DSN == "" {
		return nil, func() {}, nil
	}

	source, err := migrate.OpenSQLSource(cfg.Migrate.Driver, cfg.Migrate.DSN, cfg.Migrate.Query)
	if err != nil {
		return nil, nil, err
	}

	downloadTimeout := time.Duration(cfg.Defaults.Migrate.DownloadTimeoutSeconds) * time.Second
	runner := migrate.NewRunner(source, rec, downloadTimeout, progress)
	cleanup := func() { _ = source.Close() }
	return runner, cleanup, nil
}
