package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm/logger"

	"promptvault/internal/auth"
	"promptvault/internal/config"
	"promptvault/internal/db"
	httpx "promptvault/internal/http"
	"promptvault/internal/logging"
	"promptvault/internal/prompt"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Setup("info", "console")
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	lg := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gormLevel := logger.Silent
	if cfg.LogLevel == "debug" {
		gormLevel = logger.Info
	}
	gdb, err := db.Connect(ctx, cfg.DatabaseURL, db.Options{MaxConns: cfg.DBMaxConns, LogLevel: gormLevel})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer func() { _ = db.Close(gdb) }()

	if err := db.Migrate(gdb); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate schema")
	}

	jwtSvc := auth.NewJWT(cfg.JWTSecret, cfg.SessionTTL)
	authSvc, err := auth.NewService(&auth.UserStore{DB: gdb}, jwtSvc, cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build auth service")
	}
	promptSvc := prompt.NewService(&prompt.Store{DB: gdb})

	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: httpx.NewRouter(cfg, httpx.Deps{
			Auth:    authSvc,
			JWT:     jwtSvc,
			Prompts: promptSvc,
			Logger:  lg,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("Listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server error")
		os.Exit(1)
	}
}
