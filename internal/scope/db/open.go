package db

import (
	"context"
	"fmt"

	"github.com/dsjohal14/promptlib/internal/libs/config"
	"github.com/rs/zerolog"
)

// Open creates the store selected by STORE_DRIVER. The postgres driver
// applies pending migrations before connecting.
func Open(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (Storage, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		version, err := Migrate(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		logger.Info().Uint("schema_version", version).Msg("migrations applied")

		store, err := NewPGStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		logger.Info().Msg("using Postgres store")
		return store, nil

	case config.DriverFile, "":
		store, err := NewFileStore(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("data_dir", cfg.DataDir).Msg("using file store")
		return store, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
