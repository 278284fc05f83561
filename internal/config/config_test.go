package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNew_Defaults(t *testing.T) {
	for _, key := range []string{EnvPort, EnvBackendURL, EnvAutosaveSeconds, EnvHTTPTimeout, EnvHeadless, EnvAllowedOrigins} {
		t.Setenv(key, "")
	}

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port() != DefaultPort {
		t.Errorf("Port() = %d, want %d", cfg.Port(), DefaultPort)
	}
	if !cfg.Offline() {
		t.Error("no backend URL should mean offline")
	}
	if cfg.AutosaveInterval() != 30*time.Second {
		t.Errorf("AutosaveInterval() = %v", cfg.AutosaveInterval())
	}
	if cfg.HTTPTimeout() != 60*time.Second {
		t.Errorf("HTTPTimeout() = %v", cfg.HTTPTimeout())
	}
	if cfg.Headless() || len(cfg.AllowedOrigins()) != 0 {
		t.Errorf("headless = %v, origins = %v", cfg.Headless(), cfg.AllowedOrigins())
	}
}

func TestNew_FromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvPort, "9100")
	t.Setenv(EnvDataDir, dir)
	t.Setenv(EnvBackendURL, "https://editor.example.com/")
	t.Setenv(EnvBackendToken, "secret")
	t.Setenv(EnvAutosaveSeconds, "5")
	t.Setenv(EnvHeadless, "true")
	t.Setenv(EnvAllowedOrigins, "http://localhost:5173, https://app.example.com")

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port() != 9100 {
		t.Errorf("Port() = %d", cfg.Port())
	}
	if cfg.DBPath() != filepath.Join(dir, DBFilename) {
		t.Errorf("DBPath() = %q", cfg.DBPath())
	}
	if cfg.BackendURL() != "https://editor.example.com" || cfg.Offline() {
		t.Errorf("BackendURL() = %q, offline = %v", cfg.BackendURL(), cfg.Offline())
	}
	if cfg.BackendToken() != "secret" {
		t.Errorf("BackendToken() = %q", cfg.BackendToken())
	}
	if cfg.AutosaveInterval() != 5*time.Second {
		t.Errorf("AutosaveInterval() = %v", cfg.AutosaveInterval())
	}
	if !cfg.Headless() {
		t.Error("Headless() = false")
	}
	origins := cfg.AllowedOrigins()
	if len(origins) != 2 || origins[1] != "https://app.example.com" {
		t.Errorf("AllowedOrigins() = %v", origins)
	}
}

func TestNew_InvalidValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{EnvPort, "abc"},
		{EnvPort, "70000"},
		{EnvAutosaveSeconds, "0"},
		{EnvHTTPTimeout, "soon"},
		{EnvHeadless, "maybe"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := New(); err == nil {
				t.Errorf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("EDITOR_PORT=9333\n"), 0644); err != nil {
		t.Fatal(err)
	}
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })

	t.Setenv(EnvAppEnv, "production")
	os.Unsetenv(EnvPort)
	LoadDotEnv()
	if v := os.Getenv(EnvPort); v != "" {
		t.Fatalf("production should skip .env, got %s=%q", EnvPort, v)
	}

	t.Setenv(EnvAppEnv, "")
	t.Setenv(EnvPort, "")
	os.Unsetenv(EnvPort)
	LoadDotEnv()
	if v := os.Getenv(EnvPort); v != "9333" {
		t.Errorf("%s = %q, want 9333 from .env", EnvPort, v)
	}
}
