// ABOUTME: Tests for study configuration management.
// ABOUTME: Covers load, save, defaults, env overrides, timezone and path expansion.
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := &Config{}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"listen addr", cfg.GetListenAddr(), DefaultListenAddr},
		{"log mode", cfg.GetLogMode(), DefaultLogMode},
		{"check schedule", cfg.GetCheckSchedule(), "5 0 * * *"},
		{"static dir", cfg.GetStaticDir(), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}

	if origins := cfg.GetCORSOrigins(); len(origins) != 1 || origins[0] != "*" {
		t.Errorf("GetCORSOrigins() = %v, want [*]", origins)
	}
	if cfg.Telegram.Enabled() {
		t.Error("Telegram should be disabled without token and chat id")
	}
}

func TestGetDataDirDefault(t *testing.T) {
	cfg := &Config{}
	if got := cfg.GetDataDir(); got == "" {
		t.Error("GetDataDir() returned empty string")
	}
}

func TestGetDataDirExpandsTilde(t *testing.T) {
	home, _ := os.UserHomeDir()

	cfg := &Config{DataDir: "~/study-data"}
	want := filepath.Join(home, "study-data")
	if got := cfg.GetDataDir(); got != want {
		t.Errorf("GetDataDir() = %q, want %q", got, want)
	}
	if got := cfg.GetDBPath(); got != filepath.Join(want, "study.db") {
		t.Errorf("GetDBPath() = %q", got)
	}
}

func TestGetSpreadsheetPath(t *testing.T) {
	cfg := &Config{DataDir: "/tmp/study"}
	if got := cfg.GetSpreadsheetPath(); got != "/tmp/study/plano.xlsx" {
		t.Errorf("default spreadsheet = %q", got)
	}

	cfg.Spreadsheet = "/srv/cycle.xlsx"
	if got := cfg.GetSpreadsheetPath(); got != "/srv/cycle.xlsx" {
		t.Errorf("absolute spreadsheet = %q", got)
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"/tmp/foo", "/tmp/foo"},
		{"~", home},
		{"~/data/study", filepath.Join(home, "data/study")},
		{"data/study", "data/study"},
	}
	for _, tt := range tests {
		if got := ExpandPath(tt.in); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLocation(t *testing.T) {
	cfg := &Config{}
	loc, err := cfg.Location()
	if err != nil || loc != time.Local {
		t.Errorf("empty timezone should be local, got %v, %v", loc, err)
	}

	cfg.Timezone = "America/Sao_Paulo"
	loc, err = cfg.Location()
	if err != nil {
		t.Fatalf("Location() failed: %v", err)
	}
	if loc.String() != "America/Sao_Paulo" {
		t.Errorf("Location() = %q", loc)
	}

	cfg.Timezone = "Nowhere/Special"
	if _, err := cfg.Location(); err == nil {
		t.Error("expected error for unknown timezone")
	}
}

func TestLoadNonExistentConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() with no config file should not error: %v", err)
	}
	if cfg.DataDir != "" {
		t.Errorf("Expected empty DataDir, got %q", cfg.DataDir)
	}
}

func TestSaveAndLoad(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := &Config{
		DataDir:     "/tmp/study-data",
		ListenAddr:  ":8080",
		Timezone:    "UTC",
		CORSOrigins: []string{"http://localhost:3000"},
		Telegram:    Telegram{Token: "abc", ChatID: 42},
	}
	if err := cfg.Save(""); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	loaded, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if loaded.DataDir != "/tmp/study-data" {
		t.Errorf("DataDir mismatch: got %q", loaded.DataDir)
	}
	if loaded.GetListenAddr() != ":8080" {
		t.Errorf("ListenAddr mismatch: got %q", loaded.ListenAddr)
	}
	if len(loaded.CORSOrigins) != 1 || loaded.CORSOrigins[0] != "http://localhost:3000" {
		t.Errorf("CORSOrigins mismatch: got %v", loaded.CORSOrigins)
	}
	if !loaded.Telegram.Enabled() || loaded.Telegram.ChatID != 42 {
		t.Errorf("Telegram mismatch: got %+v", loaded.Telegram)
	}
}

func TestLoadExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "study.json")
	if err := (&Config{LogMode: "prod"}).Save(path); err != nil {
		t.Fatalf("Save() should create directory: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.GetLogMode() != "prod" {
		t.Errorf("LogMode = %q, want prod", cfg.LogMode)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("invalid json"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Expected error for invalid JSON config")
	}
}

func TestEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := (&Config{DataDir: "/from/file", LogMode: "dev"}).Save(path); err != nil {
		t.Fatal(err)
	}
	t.Setenv("STUDY_DATA_DIR", "/from/env")
	t.Setenv("STUDY_TIMEZONE", "UTC")
	t.Setenv("STUDY_TELEGRAM_TOKEN", "token")
	t.Setenv("STUDY_TELEGRAM_CHAT_ID", "-100123")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.DataDir != "/from/env" {
		t.Errorf("DataDir = %q, want env override", cfg.DataDir)
	}
	if cfg.LogMode != "dev" {
		t.Errorf("LogMode = %q, want file value", cfg.LogMode)
	}
	if cfg.Timezone != "UTC" {
		t.Errorf("Timezone = %q", cfg.Timezone)
	}
	if cfg.Telegram.ChatID != -100123 || !cfg.Telegram.Enabled() {
		t.Errorf("Telegram = %+v", cfg.Telegram)
	}
}

func TestEnvOverrideBadChatID(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("STUDY_TELEGRAM_CHAT_ID", "not-a-number")
	if _, err := Load(""); err == nil {
		t.Error("expected error for non-numeric chat id")
	}
}

func TestGetConfigPath(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	want := filepath.Join(tmpDir, "study", "config.json")
	if got := GetConfigPath(); got != want {
		t.Errorf("GetConfigPath() = %q, want %q", got, want)
	}
}

func TestOpenStorage(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := &Config{DataDir: tmpDir}

	db, err := cfg.OpenStorage()
	if err != nil {
		t.Fatalf("OpenStorage() failed: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(filepath.Join(tmpDir, "study.db")); os.IsNotExist(err) {
		t.Error("Expected study.db to be created")
	}
}
