package app

import (
	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/tasklist/internal/config"
)

// MustReadConfig reads the config file at path, or the environment only
// when path is empty.
func MustReadConfig(logger zerolog.Logger, path string) *config.Config {
	cfg, err := config.NewReader(path).Read()
	if err != nil {
		logger.Error().
			Err(err).
			Str("path", path).
			Msg("failed to read config")
		panic(err)
	}
	logger.Info().
		Str("env", cfg.Env).
		Msg("read config")

	return cfg
}
