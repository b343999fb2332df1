// Package config loads Sanctuary settings with koanf: built-in defaults, then an
// optional YAML file, then SANCTUARY_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Auth     AuthConfig     `koanf:"auth"`
	Storage  StorageConfig  `koanf:"storage"`
	Mood     MoodConfig     `koanf:"mood"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

type ServerConfig struct {
	Addr            string        `koanf:"addr"`
	StaticDir       string        `koanf:"static_dir"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Commit          string        `koanf:"commit"`
	BuildTime       string        `koanf:"build_time"`
}

type DatabaseConfig struct {
	// Driver is "sqlite" or "memory".
	Driver        string `koanf:"driver"`
	Path          string `koanf:"path"`
	MigrationsDir string `koanf:"migrations_dir"`
	// SeedCatalog is a JSON file of tracks imported when the catalog is empty.
	SeedCatalog string `koanf:"seed_catalog"`
}

type AuthConfig struct {
	JWTSecret     string        `koanf:"jwt_secret"`
	TokenTTL      time.Duration `koanf:"token_ttl"`
	OTPTTL        time.Duration `koanf:"otp_ttl"`
	AdminEmail    string        `koanf:"admin_email"`
	AdminPassword string        `koanf:"admin_password"`
}

type StorageConfig struct {
	APIURL  string        `koanf:"api_url"`
	APIKey  string        `koanf:"api_key"`
	Timeout time.Duration `koanf:"timeout"`
}

type MoodConfig struct {
	RepromptAfter   time.Duration `koanf:"reprompt_after"`
	PlaylistSize    int           `koanf:"playlist_size"`
	Strategy        string        `koanf:"strategy"`
	RequireComplete bool          `koanf:"require_complete"`
}

type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	LoginLimit        int           `koanf:"login_limit"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

const devSecret = "sanctuary-dev-secret"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			Path:   "data/sanctuary.db",
		},
		Auth: AuthConfig{
			JWTSecret: devSecret,
			TokenTTL:  7 * 24 * time.Hour,
			OTPTTL:    10 * time.Minute,
		},
		Storage: StorageConfig{
			APIURL:  "https://api.uploadthing.com",
			Timeout: 10 * time.Second,
		},
		Mood: MoodConfig{
			RepromptAfter: 7 * 24 * time.Hour,
			PlaylistSize:  9,
			Strategy:      "per_subscale",
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 300,
			RateLimitWindow:   time.Minute,
			LoginLimit:        10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	switch c.Database.Driver {
	case "sqlite":
		if strings.TrimSpace(c.Database.Path) == "" {
			errs = append(errs, errors.New("database.path is required for the sqlite driver"))
		}
	case "memory":
	default:
		errs = append(errs, fmt.Errorf("database.driver must be sqlite or memory, got %q", c.Database.Driver))
	}
	if len(c.Auth.JWTSecret) < 16 {
		errs = append(errs, errors.New("auth.jwt_secret must be at least 16 characters"))
	}
	if c.Auth.TokenTTL <= 0 || c.Auth.OTPTTL <= 0 {
		errs = append(errs, errors.New("auth.token_ttl and auth.otp_ttl must be positive"))
	}
	if (c.Auth.AdminEmail == "") != (c.Auth.AdminPassword == "") {
		errs = append(errs, errors.New("auth.admin_email and auth.admin_password must be set together"))
	}
	if c.Storage.APIKey != "" {
		if u, err := url.Parse(c.Storage.APIURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("storage.api_url %q is not an absolute URL", c.Storage.APIURL))
		}
	}
	if c.Mood.RepromptAfter <= 0 {
		errs = append(errs, errors.New("mood.reprompt_after must be positive"))
	}
	if c.Mood.PlaylistSize <= 0 || c.Mood.PlaylistSize > 50 {
		errs = append(errs, errors.New("mood.playlist_size must be between 1 and 50"))
	}
	if c.Mood.Strategy != "per_subscale" && c.Mood.Strategy != "max_severity" {
		errs = append(errs, fmt.Errorf("mood.strategy must be per_subscale or max_severity, got %q", c.Mood.Strategy))
	}
	if c.Security.RateLimitRequests < 0 || c.Security.LoginLimit < 0 {
		errs = append(errs, errors.New("security rate limits must not be negative"))
	}
	return errors.Join(errs...)
}

// UsesDevSecret reports whether the built-in JWT secret is still in place.
func (c *Config) UsesDevSecret() bool {
	return c.Auth.JWTSecret == devSecret
}
