package main

import (
	"github.com/spf13/pflag"

	"github.com/adanyl0v/tasklist/internal/app"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "path to a YAML config file; the environment is used when empty")
	pflag.Parse()

	logger := app.NewDefaultLogger()
	cfg := app.MustReadConfig(logger, *configPath)
	logger = app.MustInitApplicationLogger(logger, cfg.Env)

	pool := app.MustConnectPostgres(logger, cfg.Postgres)
	defer app.DisconnectPostgres(logger, pool)

	app.MustMigratePostgres(logger, pool)
	app.MustListenAndServeHTTP(logger, cfg, pool)
}
