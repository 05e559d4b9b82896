package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the launch parameters that used to be hardcoded in the shell
// launcher, plus the dashboard server settings. Values resolve in order:
// defaults, config file, SASHBOARD_* environment variables, flags.
type Config struct {
	// SessionName is the tmux session the dashboard runs in.
	SessionName string `yaml:"session_name"`
	// VenvActivate is the activation script sourced before the server starts.
	// Empty disables activation.
	VenvActivate string `yaml:"venv_activate"`
	// ServerCommand is the argv run inside the session. Empty means
	// "<this binary> serve".
	ServerCommand []string `yaml:"server_command"`
	// EntryPath, when set, is appended to ServerCommand as its final argument.
	EntryPath string `yaml:"entry_path"`

	ListenAddr       string `yaml:"listen_addr"`
	TradeHistoryPath string `yaml:"trade_history_path"`
	BinanceBaseURL   string `yaml:"binance_base_url"`
	LogLevel         string `yaml:"log_level"`
	SessionLogLines  int    `yaml:"session_log_lines"`
}

const (
	DefaultSessionName     = "sashboard"
	DefaultListenAddr      = "127.0.0.1:8501"
	DefaultBinanceBaseURL  = "https://fapi.binance.com"
	DefaultSessionLogLines = 200

	defaultTradeHistory = "~/Downloads/Export Trade History.xlsx"
)

func Default() Config {
	return Config{
		SessionName:      DefaultSessionName,
		ListenAddr:       DefaultListenAddr,
		TradeHistoryPath: defaultTradeHistory,
		BinanceBaseURL:   DefaultBinanceBaseURL,
		LogLevel:         "info",
		SessionLogLines:  DefaultSessionLogLines,
	}
}

// DefaultPath returns the config file location under the user config dir.
func DefaultPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "sashboard", "config.yaml")
}

// Load reads the config file at path, applying defaults first. A missing file
// is not an error; the defaults stand.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overlays SASHBOARD_* environment variables onto cfg.
func ApplyEnv(cfg Config, getenv func(string) string) Config {
	if getenv == nil {
		getenv = os.Getenv
	}
	if value := strings.TrimSpace(getenv("SASHBOARD_SESSION")); value != "" {
		cfg.SessionName = value
	}
	if value := strings.TrimSpace(getenv("SASHBOARD_LISTEN")); value != "" {
		cfg.ListenAddr = value
	}
	if value := strings.TrimSpace(getenv("SASHBOARD_VENV_ACTIVATE")); value != "" {
		cfg.VenvActivate = value
	}
	if value := strings.TrimSpace(getenv("SASHBOARD_ENTRY")); value != "" {
		cfg.EntryPath = value
	}
	if value := strings.TrimSpace(getenv("SASHBOARD_TRADE_HISTORY")); value != "" {
		cfg.TradeHistoryPath = value
	}
	if value := strings.TrimSpace(getenv("SASHBOARD_BINANCE_URL")); value != "" {
		cfg.BinanceBaseURL = value
	}
	if value := strings.TrimSpace(getenv("SASHBOARD_LOG_LEVEL")); value != "" {
		cfg.LogLevel = value
	}
	return cfg
}

// ExpandHome resolves a leading ~ against the invoking user's home directory.
func ExpandHome(path string) string {
	if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return path
	}
	if strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// Normalize expands home-relative paths and validates required fields.
func Normalize(cfg Config) (Config, error) {
	if strings.TrimSpace(cfg.SessionName) == "" {
		return cfg, errors.New("session name is required")
	}
	cfg.VenvActivate = ExpandHome(cfg.VenvActivate)
	cfg.EntryPath = ExpandHome(cfg.EntryPath)
	cfg.TradeHistoryPath = ExpandHome(cfg.TradeHistoryPath)
	if cfg.SessionLogLines <= 0 {
		cfg.SessionLogLines = DefaultSessionLogLines
	}
	return cfg, nil
}

// Credentials are read from the environment only, never from the config file.
type Credentials struct {
	APIKey    string
	APISecret string
}

func CredentialsFromEnv(getenv func(string) string) Credentials {
	if getenv == nil {
		getenv = os.Getenv
	}
	return Credentials{
		APIKey:    strings.TrimSpace(getenv("API_KEY")),
		APISecret: strings.TrimSpace(getenv("API_SECRET")),
	}
}
