package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Settings holds user preferences read from config.toml. Every field is
// optional; command-line flags take precedence.
type Settings struct {
	Offline        bool   `toml:"offline"`
	LogLevel       string `toml:"log_level"`
	LogFile        string `toml:"log_file"`
	AccountsFile   string `toml:"accounts_file"`
	RequestTimeout string `toml:"request_timeout"`
	OfflineLatency string `toml:"offline_latency"`
}

// DefaultSettings returns the settings used when no file exists.
func DefaultSettings() Settings {
	return Settings{
		LogFile:        DefaultLogPath(),
		AccountsFile:   DefaultAccountsPath(),
		RequestTimeout: "15s",
	}
}

// LoadSettings reads settings from path. A missing file yields the defaults;
// fields left empty in the file keep their default value.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return s, fmt.Errorf("reading settings %s: %w", path, err)
	}

	var fromFile Settings
	if err := toml.Unmarshal(data, &fromFile); err != nil {
		return s, fmt.Errorf("parsing settings %s: %w", path, err)
	}
	s.merge(fromFile)

	if _, err := s.Timeout(); err != nil {
		return s, err
	}
	if _, err := s.Latency(); err != nil {
		return s, err
	}
	return s, nil
}

// SaveSettings writes s to path, creating parent directories.
func SaveSettings(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}
	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *Settings) merge(o Settings) {
	s.Offline = o.Offline
	if o.LogLevel != "" {
		s.LogLevel = o.LogLevel
	}
	if o.LogFile != "" {
		s.LogFile = o.LogFile
	}
	if o.AccountsFile != "" {
		s.AccountsFile = o.AccountsFile
	}
	if o.RequestTimeout != "" {
		s.RequestTimeout = o.RequestTimeout
	}
	if o.OfflineLatency != "" {
		s.OfflineLatency = o.OfflineLatency
	}
}

// Timeout parses RequestTimeout. Empty or "0" means no timeout.
func (s Settings) Timeout() (time.Duration, error) {
	return parseDuration("request_timeout", s.RequestTimeout)
}

// Latency parses OfflineLatency.
func (s Settings) Latency() (time.Duration, error) {
	return parseDuration("offline_latency", s.OfflineLatency)
}

func parseDuration(key, v string) (time.Duration, error) {
	if v == "" || v == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s %q: must not be negative", key, v)
	}
	return d, nil
}
