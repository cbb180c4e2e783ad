// Command seed upserts the fixed sample catalog into the configured store.
// It is safe to run more than once.
package main

import (
	"context"

	_ "github.com/joho/godotenv/autoload"

	"cinelog/internal/config"
	"cinelog/internal/logging"
	"cinelog/internal/seed"
	"cinelog/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("invalid configuration")
	}

	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	if cfg.DataPath == "" {
		logging.Fatal().Msg("seeding needs a data path (set CINELOG_DATA_PATH)")
	}

	st, err := store.OpenSQLite(cfg.DataPath)
	if err != nil {
		logging.Fatal().Err(err).Str("path", cfg.DataPath).Msg("failed to open store")
	}
	defer st.Close()

	if err := seed.Run(context.Background(), st); err != nil {
		logging.Fatal().Err(err).Msg("seeding failed")
	}

	movies, series := seed.Counts()
	logging.Info().Int("movies", movies).Int("series", series).Msg("catalog seeded")
}
