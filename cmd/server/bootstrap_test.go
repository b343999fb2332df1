package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/soaringjerry/Sanctuary/internal/api"
	"github.com/soaringjerry/Sanctuary/internal/config"
)

func TestBootstrapSeedsCatalogOnce(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	seedPath := filepath.Join(dir, "catalog.json")
	seed := `[
  {"title": "Rain on Leaves", "artist": "Field", "genre": "nature", "audio_url": "https://utfs.io/f/rain"},
  {"title": "Night Drive", "artist": "Lo", "genre": "Lofi", "audio_url": "https://utfs.io/f/night"},
  {"title": "Broken", "artist": "X", "genre": "polka", "audio_url": "https://utfs.io/f/bad"}
]`
	if err := os.WriteFile(seedPath, []byte(seed), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{
		Database: config.DatabaseConfig{Driver: "memory", SeedCatalog: seedPath},
		Auth:     config.AuthConfig{TokenTTL: time.Hour, OTPTTL: time.Minute, AdminEmail: "admin@example.com", AdminPassword: "admin-password"},
		Mood:     config.MoodConfig{Strategy: "per_subscale", PlaylistSize: 9, RepromptAfter: time.Hour},
	}
	store, err := openStore(cfg.Database)
	if err != nil {
		t.Fatalf("openStore: %v", err)
	}
	svc, err := api.NewServices(cfg, api.Deps{Store: store})
	if err != nil {
		t.Fatalf("NewServices: %v", err)
	}

	if err := bootstrap(ctx, cfg, svc); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if n, _ := store.CountTracks(ctx); n != 2 {
		t.Fatalf("expected 2 valid seed tracks, got %d", n)
	}
	admin, _ := store.FindUserByEmail(ctx, "admin@example.com")
	if admin == nil || admin.Role != "admin" {
		t.Fatalf("admin not created: %+v", admin)
	}

	if err := bootstrap(ctx, cfg, svc); err != nil {
		t.Fatalf("second bootstrap: %v", err)
	}
	if n, _ := store.CountTracks(ctx); n != 2 {
		t.Fatalf("seed must only apply to an empty catalog, got %d", n)
	}
	if n, _ := store.CountUsers(ctx); n != 1 {
		t.Fatalf("admin created twice: %d users", n)
	}
}

func TestBootstrapMissingSeedIsSkipped(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{
		Database: config.DatabaseConfig{Driver: "memory", SeedCatalog: filepath.Join(t.TempDir(), "missing.json")},
		Mood:     config.MoodConfig{Strategy: "max_severity"},
	}
	store, _ := openStore(cfg.Database)
	svc, err := api.NewServices(cfg, api.Deps{Store: store})
	if err != nil {
		t.Fatalf("NewServices: %v", err)
	}
	if err := bootstrap(ctx, cfg, svc); err != nil {
		t.Fatalf("missing seed file should not fail: %v", err)
	}
}

func TestOpenStoreRejectsUnknownDriver(t *testing.T) {
	if _, err := openStore(config.DatabaseConfig{Driver: "postgres"}); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}
