package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds jobdeck's resolved settings.
type Config struct {
	APIURL       string
	Timeout      time.Duration
	PollInterval time.Duration
	LogFile      string
	SessionFile  string
	PrefsFile    string
}

// EnvAPIURL overrides api_url when set.
const EnvAPIURL = "JOBDECK_API_URL"

const (
	defaultConfigPath  = "~/.config/jobdeck/config.toml"
	defaultPrefsPath   = "~/.config/jobdeck/prefs.toml"
	defaultLogFile     = "~/.local/share/jobdeck/jobdeck.log"
	defaultSessionFile = "~/.local/share/jobdeck/session.toml"
	defaultAPIURL      = "http://localhost:3000/api"
	defaultTimeout     = 10
	defaultPollSeconds = 15
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIURL:       defaultAPIURL,
		Timeout:      defaultTimeout * time.Second,
		PollInterval: defaultPollSeconds * time.Second,
		LogFile:      mustExpand(defaultLogFile),
		SessionFile:  mustExpand(defaultSessionFile),
		PrefsFile:    mustExpand(defaultPrefsPath),
	}
}

// Load locates and parses the jobdeck config, falling back to defaults when
// the file or individual values are missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIURL         string `toml:"api_url"`
		TimeoutSeconds int    `toml:"timeout_seconds"`
		PollSeconds    int    `toml:"poll_seconds"`
		LogFile        string `toml:"log_file"`
		SessionFile    string `toml:"session_file"`
		PrefsFile      string `toml:"prefs_file"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIURL); v != "" {
		cfg.APIURL = v
	}
	if raw.TimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(raw.TimeoutSeconds) * time.Second
	}
	if raw.PollSeconds > 0 {
		cfg.PollInterval = time.Duration(raw.PollSeconds) * time.Second
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.SessionFile); v != "" {
		cfg.SessionFile = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.PrefsFile); v != "" {
		cfg.PrefsFile = mustExpand(v)
	}
	applyEnv(&cfg)

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		cfg.APIURL = v
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return ExpandPath(defaultConfigPath)
	}
	return ExpandPath(path)
}

func mustExpand(path string) string {
	expanded, err := ExpandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath resolves a leading ~ to the home directory and returns an
// absolute path.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
