// ABOUTME: Study configuration: data directory, server, timezone and delivery settings.
// ABOUTME: Loaded from a JSON file with environment overrides and defaulting accessors.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/harperreed/study/internal/storage"
)

const (
	DefaultListenAddr    = "127.0.0.1:5000"
	DefaultLogMode       = "dev"
	DefaultCheckSchedule = "5 0 * * *"
	DefaultSpreadsheet   = "plano.xlsx"
)

// Config stores study tool configuration.
type Config struct {
	// DataDir is the root directory for data storage; study.db lives here.
	// Supports ~ expansion. Defaults to ~/.local/share/study.
	DataDir string `json:"data_dir,omitempty"`

	ListenAddr string `json:"listen_addr,omitempty"`

	// LogMode is "dev", "prod" or "quiet".
	LogMode string `json:"log_mode,omitempty"`

	// Timezone is an IANA name used for day boundaries. Empty means the local zone.
	Timezone string `json:"timezone,omitempty"`

	CORSOrigins []string `json:"cors_origins,omitempty"`

	// StaticDir, when set, is served as the web client at /.
	StaticDir string `json:"static_dir,omitempty"`

	// CheckSchedule is a cron expression for the periodic notification check.
	CheckSchedule string `json:"check_schedule,omitempty"`

	// Spreadsheet is the workbook read by sync. Relative paths resolve against DataDir.
	Spreadsheet string `json:"spreadsheet,omitempty"`

	Telegram Telegram `json:"telegram,omitempty"`
}

// Telegram enables notification delivery to a chat when both fields are set.
type Telegram struct {
	Token  string `json:"token,omitempty"`
	ChatID int64  `json:"chat_id,omitempty"`
}

// Enabled reports whether Telegram delivery is configured.
func (t Telegram) Enabled() bool {
	return t.Token != "" && t.ChatID != 0
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetDBPath returns the SQLite database path inside the data directory.
func (c *Config) GetDBPath() string {
	return filepath.Join(c.GetDataDir(), "study.db")
}

func (c *Config) GetListenAddr() string {
	if c.ListenAddr == "" {
		return DefaultListenAddr
	}
	return c.ListenAddr
}

func (c *Config) GetLogMode() string {
	if c.LogMode == "" {
		return DefaultLogMode
	}
	return c.LogMode
}

func (c *Config) GetCheckSchedule() string {
	if c.CheckSchedule == "" {
		return DefaultCheckSchedule
	}
	return c.CheckSchedule
}

func (c *Config) GetCORSOrigins() []string {
	if len(c.CORSOrigins) == 0 {
		return []string{"*"}
	}
	return c.CORSOrigins
}

func (c *Config) GetStaticDir() string {
	return ExpandPath(c.StaticDir)
}

// GetSpreadsheetPath returns the workbook path used by sync.
func (c *Config) GetSpreadsheetPath() string {
	path := c.Spreadsheet
	if path == "" {
		path = DefaultSpreadsheet
	}
	path = ExpandPath(path)
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.GetDataDir(), path)
	}
	return path
}

// Location resolves Timezone. An unknown name is an error rather than a silent UTC.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenStorage opens the SQLite database in the data directory.
func (c *Config) OpenStorage() (*storage.DB, error) {
	return storage.Open(c.GetDBPath())
}

// GetConfigPath returns the default config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "study", "config.json")
}

// Load reads config from path (the default path when empty) and applies
// environment overrides. A missing file yields defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = GetConfigPath()
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"STUDY_DATA_DIR":       &c.DataDir,
		"STUDY_LISTEN_ADDR":    &c.ListenAddr,
		"STUDY_LOG_MODE":       &c.LogMode,
		"STUDY_TIMEZONE":       &c.Timezone,
		"STUDY_STATIC_DIR":     &c.StaticDir,
		"STUDY_SPREADSHEET":    &c.Spreadsheet,
		"STUDY_TELEGRAM_TOKEN": &c.Telegram.Token,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	if v, ok := lookup("STUDY_TELEGRAM_CHAT_ID"); ok && v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("STUDY_TELEGRAM_CHAT_ID: %w", err)
		}
		c.Telegram.ChatID = id
	}
	return nil
}

// Save writes config to path, the default path when empty.
func (c *Config) Save(path string) error {
	if path == "" {
		path = GetConfigPath()
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
