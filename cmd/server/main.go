package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/soaringjerry/Sanctuary/internal/api"
	"github.com/soaringjerry/Sanctuary/internal/config"
	"github.com/soaringjerry/Sanctuary/internal/logging"
	"github.com/soaringjerry/Sanctuary/internal/middleware"
	"github.com/soaringjerry/Sanctuary/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (default: $SANCTUARY_CONFIG or ./config.yaml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("load config")
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Caller: cfg.Logging.Caller})

	middleware.SetSecret(cfg.Auth.JWTSecret)
	if cfg.UsesDevSecret() {
		logging.Warn().Msg("auth.jwt_secret is the built-in development secret; set SANCTUARY_AUTH_JWT_SECRET in production")
	}

	store, err := openStore(cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("open store")
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logging.Warn().Err(cerr).Msg("close store")
		}
	}()

	files := storage.New(cfg.Storage.APIURL, cfg.Storage.APIKey, cfg.Storage.Timeout)
	if cfg.Storage.APIKey == "" {
		logging.Warn().Msg("storage.api_key not set; uploaded files are not deleted with their tracks")
	}

	svc, err := api.NewServices(cfg, api.Deps{Store: store, Files: files})
	if err != nil {
		logging.Fatal().Err(err).Msg("init services")
	}
	if err := bootstrap(context.Background(), cfg, svc); err != nil {
		logging.Fatal().Err(err).Msg("bootstrap")
	}

	// Static frontend when server.static_dir is set (fullstack image).
	var root http.Handler
	if dir := cfg.Server.StaticDir; dir != "" {
		root = http.FileServer(http.Dir(dir))
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.NewRouter(svc, cfg).Handler(root),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go runSessionPruner(ctx, cfg, svc, time.Hour)

	go func() {
		logging.Info().Str("addr", cfg.Server.Addr).Str("commit", cfg.Server.Commit).Msg("Sanctuary server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error().Err(err).Msg("server error")
			stop()
		}
	}()

	<-ctx.Done()
	logging.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("graceful shutdown")
	}
}
