package app

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/tasklist/internal/config"
)

func NewDefaultLogger() zerolog.Logger {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	zerolog.TimestampFieldName = "timestamp"

	logger := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Caller().
		Int("pid", os.Getpid()).
		Logger()

	logger.Info().Msg("initialized default logger")
	return logger
}

// NewApplicationLogger switches the level and output of logger to the
// ones of the given env.
func NewApplicationLogger(logger zerolog.Logger, env string) (zerolog.Logger, error) {
	w := io.Writer(os.Stdout)
	switch env {
	case config.EnvDev:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case config.EnvProd:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case config.EnvLocal:
		zerolog.SetGlobalLevel(zerolog.TraceLevel)

		consoleWriter := zerolog.NewConsoleWriter()
		consoleWriter.TimeFormat = time.DateTime
		consoleWriter.Out = os.Stdout
		w = consoleWriter
	default:
		return logger, fmt.Errorf("unknown env: %s", env)
	}

	return logger.Output(w), nil
}

func MustInitApplicationLogger(logger zerolog.Logger, env string) zerolog.Logger {
	appLogger, err := NewApplicationLogger(logger, env)
	if err != nil {
		logger.Error().
			Err(err).
			Str("env", env).
			Msg("unknown env")
		panic(err)
	}

	appLogger.Info().Msg("initialized application logger")
	return appLogger
}
