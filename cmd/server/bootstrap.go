package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"

	"github.com/soaringjerry/Sanctuary/internal/api"
	"github.com/soaringjerry/Sanctuary/internal/config"
	dbstore "github.com/soaringjerry/Sanctuary/internal/db"
	"github.com/soaringjerry/Sanctuary/internal/logging"
	"github.com/soaringjerry/Sanctuary/internal/services"
)

// openStore returns the configured store. The sqlite store runs its
// migrations before it is handed out.
func openStore(cfg config.DatabaseConfig) (api.Store, error) {
	switch cfg.Driver {
	case "memory":
		logging.Warn().Msg("using in-memory store; data is lost on restart")
		return api.NewMemoryStore(), nil
	case "sqlite":
		st, err := dbstore.OpenStore(cfg.Path, cfg.MigrationsDir)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		logging.Info().Str("path", cfg.Path).Msg("sqlite store ready")
		return st, nil
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}

// bootstrap creates the configured admin account, drops stale prompt sessions
// and seeds an empty catalog.
func bootstrap(ctx context.Context, cfg *config.Config, svc *api.Services) error {
	created, err := svc.Auth.EnsureAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword)
	if err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}
	if created {
		logging.Info().Str("email", cfg.Auth.AdminEmail).Msg("admin account created")
	}
	pruneSessions(ctx, cfg, svc)

	if cfg.Database.SeedCatalog == "" {
		return nil
	}
	seed, err := loadSeedCatalog(cfg.Database.SeedCatalog)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Warn().Str("path", cfg.Database.SeedCatalog).Msg("seed catalog not found, skipping")
			return nil
		}
		return err
	}
	n, err := svc.Tracks.SeedIfEmpty(ctx, seed)
	if err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	if n > 0 {
		logging.Info().Int("tracks", n).Msg("catalog seeded")
	}
	return nil
}

func pruneSessions(ctx context.Context, cfg *config.Config, svc *api.Services) {
	n, err := svc.Mood.PruneSessions(ctx, cfg.Auth.TokenTTL)
	if err != nil {
		logging.Warn().Err(err).Msg("prune prompt sessions")
		return
	}
	if n > 0 {
		logging.Debug().Int("sessions", n).Msg("pruned prompt sessions")
	}
}

// runSessionPruner repeats pruneSessions every interval until ctx is done.
func runSessionPruner(ctx context.Context, cfg *config.Config, svc *api.Services, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			pruneSessions(ctx, cfg, svc)
		}
	}
}

// loadSeedCatalog reads a JSON array of {title, artist, genre, audio_url}.
func loadSeedCatalog(path string) ([]services.TrackInput, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		Title    string `json:"title"`
		Artist   string `json:"artist"`
		Genre    string `json:"genre"`
		AudioURL string `json:"audio_url"`
	}
	if err := json.Unmarshal(b, &rows); err != nil {
		return nil, fmt.Errorf("parse seed catalog %s: %w", path, err)
	}
	out := make([]services.TrackInput, 0, len(rows))
	for _, r := range rows {
		out = append(out, services.TrackInput{Title: r.Title, Artist: r.Artist, Genre: r.Genre, AudioURL: r.AudioURL})
	}
	return out, nil
}
