package config

import (
	"path/filepath"
	"testing"
)

func TestLoadFromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("WORKWAY_DB_PATH", filepath.Join(dir, "w.db"))
	t.Setenv("WORKWAY_LOG_LEVEL", "DEBUG")
	t.Setenv("WORKWAY_LOG_FILE", "")
	t.Setenv("WORKWAY_LOCALE", " ru ")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DBPath != filepath.Join(dir, "w.db") {
		t.Fatalf("DBPath = %q", cfg.DBPath)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.LogFile != filepath.Join(dir, "workway.log") {
		t.Fatalf("LogFile should default next to the database, got %q", cfg.LogFile)
	}
	if cfg.Locale != "ru" {
		t.Fatalf("Locale = %q, want ru", cfg.Locale)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("WORKWAY_DB_PATH", "")
	t.Setenv("WORKWAY_LOG_LEVEL", "")
	t.Setenv("WORKWAY_LOCALE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(cfg.DBPath) != "workway.db" {
		t.Fatalf("unexpected default db path %q", cfg.DBPath)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.Locale != "" {
		t.Fatalf("Locale should be empty by default, got %q", cfg.Locale)
	}
}
