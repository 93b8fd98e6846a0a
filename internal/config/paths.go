package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "nyxflare"

// LegacyAccountsPath is read when no accounts file exists at the default location.
const LegacyAccountsPath = "config/accounts.json"

// Dir returns the platform-specific configuration directory.
func Dir() string {
	if runtime.GOOS == "windows" {
		base := os.Getenv("APPDATA")
		if base == "" {
			base = os.Getenv("HOME")
		}
		if base == "" {
			base = "."
		}
		return filepath.Join(base, appName)
	}

	// On Unix-like systems, use XDG_CONFIG_HOME or ~/.config
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		if home := os.Getenv("HOME"); home != "" {
			base = filepath.Join(home, ".config")
		} else {
			base = filepath.Join(".", ".config")
		}
	}
	return filepath.Join(base, appName)
}

// DefaultSettingsPath returns the default location of config.toml.
func DefaultSettingsPath() string {
	return filepath.Join(Dir(), "config.toml")
}

// DefaultAccountsPath returns the default location of accounts.json.
func DefaultAccountsPath() string {
	return filepath.Join(Dir(), "accounts.json")
}

// DefaultLogPath returns the default log file location.
func DefaultLogPath() string {
	return filepath.Join(Dir(), appName+".log")
}
