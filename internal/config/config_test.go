package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestFindConfig_Explicit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	os.WriteFile(path, []byte("odoo:\n  url: http://localhost:8069\n"), 0600)

	got, err := FindConfig(path)
	if err != nil {
		t.Fatalf("FindConfig(%q) error: %v", path, err)
	}
	if got != path {
		t.Errorf("FindConfig(%q) = %q, want %q", path, got, path)
	}
}

func TestFindConfig_ExplicitMissing(t *testing.T) {
	_, err := FindConfig("/nonexistent/config.yaml")
	if err == nil {
		t.Fatal("FindConfig with missing explicit path should error")
	}
}

func TestFindConfig_CWD(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	os.WriteFile(path, []byte("log_level: debug\n"), 0600)

	orig, _ := os.Getwd()
	os.Chdir(dir)
	defer os.Chdir(orig)

	got, err := FindConfig("")
	if err != nil {
		t.Fatalf("FindConfig(\"\") error: %v", err)
	}
	if got != "config.yaml" {
		t.Errorf("FindConfig(\"\") = %q, want %q", got, "config.yaml")
	}
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	os.WriteFile(path, []byte("odoo:\n  url: http://localhost:8069\n  database: prod\n"), 0600)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Odoo.TimeoutSec != 30 {
		t.Errorf("TimeoutSec = %d, want 30", cfg.Odoo.TimeoutSec)
	}
	if cfg.Odoo.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.Odoo.MaxRetries)
	}
	if cfg.Odoo.RetryDelaySec != 1.0 {
		t.Errorf("RetryDelaySec = %v, want 1.0", cfg.Odoo.RetryDelaySec)
	}
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	os.WriteFile(path, []byte("odoo:\n  api_key: ${ODOO_MCP_TEST_KEY}\n"), 0600)
	os.Setenv("ODOO_MCP_TEST_KEY", "secret123")
	defer os.Unsetenv("ODOO_MCP_TEST_KEY")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Odoo.APIKey != "secret123" {
		t.Errorf("api_key = %q, want %q", cfg.Odoo.APIKey, "secret123")
	}
}

func TestApplyEnv_Overrides(t *testing.T) {
	t.Setenv("ODOO_URL", "https://env.odoo.com")
	t.Setenv("ODOO_DATABASE", "envdb")
	t.Setenv("ODOO_MAX_RETRIES", "5")
	t.Setenv("ODOO_RETRY_DELAY", "0.5")

	cfg := Default()
	cfg.Odoo.URL = "http://file.example"
	if err := ApplyEnv(cfg); err != nil {
		t.Fatalf("ApplyEnv error: %v", err)
	}

	if cfg.Odoo.URL != "https://env.odoo.com" {
		t.Errorf("URL = %q, want env value", cfg.Odoo.URL)
	}
	if cfg.Odoo.Database != "envdb" {
		t.Errorf("Database = %q, want %q", cfg.Odoo.Database, "envdb")
	}
	if cfg.Odoo.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d, want 5", cfg.Odoo.MaxRetries)
	}
	if cfg.Odoo.RetryDelaySec != 0.5 {
		t.Errorf("RetryDelaySec = %v, want 0.5", cfg.Odoo.RetryDelaySec)
	}
}

func TestApplyEnv_BadNumber(t *testing.T) {
	t.Setenv("ODOO_TIMEOUT", "soon")

	if err := ApplyEnv(Default()); err == nil {
		t.Fatal("ApplyEnv with non-numeric ODOO_TIMEOUT should error")
	}
}

func TestHasCredentials(t *testing.T) {
	tests := []struct {
		name string
		cfg  OdooConfig
		want bool
	}{
		{"empty", OdooConfig{}, false},
		{"url only", OdooConfig{URL: "http://x"}, false},
		{"password", OdooConfig{URL: "http://x", Database: "db", Password: "pw"}, true},
		{"api key", OdooConfig{URL: "http://x", Database: "db", APIKey: "k"}, true},
		{"no secret", OdooConfig{URL: "http://x", Database: "db", Username: "admin"}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.cfg.HasCredentials(); got != tc.want {
				t.Errorf("HasCredentials() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"info", slog.LevelInfo, false},
		{"TRACE", LevelTrace, false},
		{"Debug", slog.LevelDebug, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseLogLevel(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseLogLevel(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}
