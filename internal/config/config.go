// Package config loads pyfetch settings from the environment. A .env file in
// the working directory is read first; variables already set in the process
// environment win over it.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/matzehuels/pyfetch/pkg/python"
)

// Defaults for settings that are not configured.
const (
	DefaultCacheTTL = 24 * time.Hour
	DefaultAddr     = ":8080"
)

// Config holds the environment-derived settings. Command-line flags override
// individual fields.
type Config struct {
	GitHubToken    string        // GITHUB_TOKEN, falling back to GH_TOKEN
	GitHubAPIURL   string        // GITHUB_API_URL, "" for api.github.com
	GitHubClientID string        // GITHUB_CLIENT_ID, OAuth App used by "auth login"
	GitHubApp      GitHubApp     // PYFETCH_GITHUB_APP_*
	RedisURL       string        // PYFETCH_REDIS_URL
	CacheTTL       time.Duration // PYFETCH_CACHE_TTL
	Concurrency    int           // PYFETCH_CONCURRENCY
	Addr           string        // PYFETCH_ADDR
}

// GitHubApp identifies a GitHub App installation used instead of a token.
type GitHubApp struct {
	AppID          int64
	InstallationID int64
	PrivateKeyPath string
}

// Enabled reports whether every App setting is present.
func (a GitHubApp) Enabled() bool {
	return a.AppID != 0 && a.InstallationID != 0 && a.PrivateKeyPath != ""
}

// Load reads the given env files (".env" when none are named), then the
// process environment. Missing files are ignored; malformed values are not.
func Load(files ...string) (*Config, error) {
	_ = godotenv.Load(files...)

	cfg := &Config{
		GitHubToken:    firstNonEmpty(env("GITHUB_TOKEN"), env("GH_TOKEN")),
		GitHubAPIURL:   env("GITHUB_API_URL"),
		GitHubClientID: env("GITHUB_CLIENT_ID"),
		RedisURL:       env("PYFETCH_REDIS_URL"),
		CacheTTL:       DefaultCacheTTL,
		Concurrency:    python.DefaultConcurrency,
		Addr:           firstNonEmpty(env("PYFETCH_ADDR"), DefaultAddr),
	}

	var err error
	if v := env("PYFETCH_CACHE_TTL"); v != "" {
		if cfg.CacheTTL, err = time.ParseDuration(v); err != nil || cfg.CacheTTL < 0 {
			return nil, fmt.Errorf("PYFETCH_CACHE_TTL: invalid duration %q", v)
		}
	}
	if v := env("PYFETCH_CONCURRENCY"); v != "" {
		if cfg.Concurrency, err = strconv.Atoi(v); err != nil || cfg.Concurrency < 1 {
			return nil, fmt.Errorf("PYFETCH_CONCURRENCY: must be a positive integer, got %q", v)
		}
	}
	if cfg.GitHubApp, err = loadGitHubApp(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadGitHubApp() (GitHubApp, error) {
	var app GitHubApp
	var err error
	if v := env("PYFETCH_GITHUB_APP_ID"); v != "" {
		if app.AppID, err = strconv.ParseInt(v, 10, 64); err != nil {
			return GitHubApp{}, fmt.Errorf("PYFETCH_GITHUB_APP_ID: %w", err)
		}
	}
	if v := env("PYFETCH_GITHUB_INSTALLATION_ID"); v != "" {
		if app.InstallationID, err = strconv.ParseInt(v, 10, 64); err != nil {
			return GitHubApp{}, fmt.Errorf("PYFETCH_GITHUB_INSTALLATION_ID: %w", err)
		}
	}
	app.PrivateKeyPath = env("PYFETCH_GITHUB_PRIVATE_KEY")
	return app, nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
