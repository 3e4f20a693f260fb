package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/tasklist/internal/config"
	"github.com/adanyl0v/tasklist/internal/dbx"
	v1 "github.com/adanyl0v/tasklist/internal/delivery/http/v1"
	"github.com/adanyl0v/tasklist/internal/repositories/sessions"
	"github.com/adanyl0v/tasklist/internal/repositories/tasks"
	"github.com/adanyl0v/tasklist/internal/repositories/users"
	"github.com/adanyl0v/tasklist/internal/services"
)

// Database is satisfied by *pgxpool.Pool.
type Database interface {
	dbx.DBTX
	Ping(ctx context.Context) error
}

func MustListenAndServeHTTP(logger zerolog.Logger, cfg *config.Config, db Database) {
	if cfg.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	router, err := NewRouter(logger, cfg, db)
	if err != nil {
		logger.Error().
			Err(err).
			Msg("failed to build router")
		panic(err)
	}

	httpCfg := cfg.HTTP
	server := &http.Server{
		Addr:    net.JoinHostPort(httpCfg.Host, httpCfg.Port),
		Handler: router,
	}

	go func() {
		logger.Info().
			Str("host", httpCfg.Host).
			Str("port", httpCfg.Port).
			Msg("setting up http server")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().
				Err(err).
				Msg("failed to listen and serve http")
			panic(err)
		}
	}()

	// kill (no params) by default sends syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	// kill -9 is syscall.SIGKILL but can't be caught, so don't need to add it
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().
		Msg("shutting down http server")

	ctx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
	defer cancel()

	err = server.Shutdown(ctx)
	if err != nil {
		logger.Error().
			Err(err).
			Msg("failed to shutdown http server")
		panic(err)
	}
	logger.Info().Msg("shut down http server")
}

// NewRouter wires the repositories, services and handlers on top of db.
func NewRouter(logger zerolog.Logger, cfg *config.Config, db Database) (*gin.Engine, error) {
	userRepo := users.NewPostgresRepository(db)
	taskRepo := tasks.NewPostgresRepository(db)
	sessionRepo := sessions.NewPostgresRepository(db)

	hasher := services.NewPasswordHasher(nil)
	verifier, err := services.NewPasswordVerifier(logger, userRepo, hasher)
	if err != nil {
		return nil, err
	}

	authService := services.NewAuthService(logger, userRepo, sessionRepo, hasher, verifier, services.TokenConfig{
		Issuer:          cfg.JWT.Issuer,
		SigningKey:      []byte(cfg.JWT.SigningKey),
		AccessTokenTTL:  cfg.JWT.AccessTokenTTL,
		RefreshTokenTTL: cfg.JWT.RefreshTokenTTL,
	})
	taskService := services.NewTaskService(logger, taskRepo)

	router := gin.New()
	router.Use(v1.RequestLogger(logger))
	router.Use(gin.Recovery())

	router.GET("/healthz", handleHealth(logger, db))
	v1.RegisterRoutes(router, v1.New(logger, authService, taskService, cfg.HTTP.SecureCookies))

	return router, nil
}

func handleHealth(logger zerolog.Logger, db Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := db.Ping(c)
		if err != nil {
			logger.Error().
				Err(err).
				Msg("failed to ping postgres")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error": http.StatusText(http.StatusServiceUnavailable),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
