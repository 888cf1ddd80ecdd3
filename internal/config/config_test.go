package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var configKeys = []string{
	"GITHUB_TOKEN", "GH_TOKEN", "GITHUB_API_URL", "GITHUB_CLIENT_ID",
	"PYFETCH_REDIS_URL", "PYFETCH_CACHE_TTL", "PYFETCH_CONCURRENCY", "PYFETCH_ADDR",
	"PYFETCH_GITHUB_APP_ID", "PYFETCH_GITHUB_INSTALLATION_ID", "PYFETCH_GITHUB_PRIVATE_KEY",
}

// clearEnv blanks every variable Load reads; t.Setenv restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.CacheTTL != DefaultCacheTTL {
		t.Errorf("CacheTTL = %v, want %v", cfg.CacheTTL, DefaultCacheTTL)
	}
	if cfg.Concurrency != 4 {
		t.Errorf("Concurrency = %d, want 4", cfg.Concurrency)
	}
	if cfg.Addr != DefaultAddr {
		t.Errorf("Addr = %q, want %q", cfg.Addr, DefaultAddr)
	}
	if cfg.GitHubApp.Enabled() {
		t.Error("GitHubApp should be disabled")
	}
}

func TestLoadEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("GH_TOKEN", "gh-token")
	t.Setenv("PYFETCH_CACHE_TTL", "90m")
	t.Setenv("PYFETCH_CONCURRENCY", "8")
	t.Setenv("PYFETCH_REDIS_URL", "redis://localhost:6379/1")
	t.Setenv("PYFETCH_GITHUB_APP_ID", "42")
	t.Setenv("PYFETCH_GITHUB_INSTALLATION_ID", "7")
	t.Setenv("PYFETCH_GITHUB_PRIVATE_KEY", "/keys/app.pem")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.GitHubToken != "gh-token" {
		t.Errorf("GitHubToken = %q, want GH_TOKEN fallback", cfg.GitHubToken)
	}
	if cfg.CacheTTL != 90*time.Minute {
		t.Errorf("CacheTTL = %v, want 90m", cfg.CacheTTL)
	}
	if cfg.Concurrency != 8 {
		t.Errorf("Concurrency = %d, want 8", cfg.Concurrency)
	}
	if cfg.RedisURL != "redis://localhost:6379/1" {
		t.Errorf("RedisURL = %q", cfg.RedisURL)
	}
	want := GitHubApp{AppID: 42, InstallationID: 7, PrivateKeyPath: "/keys/app.pem"}
	if cfg.GitHubApp != want || !cfg.GitHubApp.Enabled() {
		t.Errorf("GitHubApp = %+v, want %+v", cfg.GitHubApp, want)
	}
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("GITHUB_TOKEN")
	os.Unsetenv("PYFETCH_ADDR")
	t.Setenv("GITHUB_API_URL", "https://ghe.example.com/api/v3")

	file := filepath.Join(t.TempDir(), ".env")
	content := "GITHUB_TOKEN=from-file\nPYFETCH_ADDR=:9090\nGITHUB_API_URL=https://ignored.example.com\n"
	if err := os.WriteFile(file, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.GitHubToken != "from-file" {
		t.Errorf("GitHubToken = %q, want from-file", cfg.GitHubToken)
	}
	if cfg.Addr != ":9090" {
		t.Errorf("Addr = %q, want :9090", cfg.Addr)
	}
	if cfg.GitHubAPIURL != "https://ghe.example.com/api/v3" {
		t.Errorf("GitHubAPIURL = %q, process environment should win", cfg.GitHubAPIURL)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"PYFETCH_CACHE_TTL", "soon"},
		{"PYFETCH_CACHE_TTL", "-1h"},
		{"PYFETCH_CONCURRENCY", "0"},
		{"PYFETCH_CONCURRENCY", "many"},
		{"PYFETCH_GITHUB_APP_ID", "abc"},
		{"PYFETCH_GITHUB_INSTALLATION_ID", "1.5"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
				t.Errorf("Load() with %s=%q should fail", tt.key, tt.value)
			}
		})
	}
}
