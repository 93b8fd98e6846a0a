package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/Azahorscak/nyxflare/internal/api"
	"github.com/Azahorscak/nyxflare/internal/config"
	"github.com/Azahorscak/nyxflare/internal/logging"
	"github.com/Azahorscak/nyxflare/internal/tui"
)

// offlineEnvVars enable offline mode when set to a true-ish value. The
// second one is kept for older setups.
var offlineEnvVars = []string{"NYXFLARE_OFFLINE", "CF_TUI_OFFLINE"}

// options are the resolved command-line and settings inputs.
type options struct {
	settings   config.Settings
	accounts   string
	offline    bool
	secret     string
	kubeconfig string
	logLevel   string
}

func runTUI(cmd *cobra.Command, _ []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("nyxflare needs an interactive terminal")
	}

	opts, err := resolveOptions(cmd, os.Getenv)
	if err != nil {
		return err
	}

	if err := logging.Initialize(opts.logLevel, opts.settings.LogFile); err != nil {
		return err
	}
	defer logging.Sync()

	store, err := config.OpenAccountStore(opts.accounts)
	if err != nil {
		return fmt.Errorf("loading accounts: %w", err)
	}
	if opts.secret != "" {
		account, err := config.AccountFromSecret(cmd.Context(), opts.secret, opts.kubeconfig)
		if err != nil {
			return err
		}
		store.AddSession(account)
	}

	provider, err := newProvider(opts, store)
	if err != nil {
		return err
	}
	logging.Info("starting",
		zap.Bool("offline", opts.offline),
		zap.String("accounts", store.Path()),
		zap.Int("configured", len(store.Accounts())),
	)

	model := tui.New(provider, store.Append)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// runInit writes the default settings so users have a file to edit.
func runInit(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("config")
	force, _ := cmd.Flags().GetBool("force")

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.SaveSettings(path, config.DefaultSettings()); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

// resolveOptions layers flags over the environment over the settings file.
// getenv is os.Getenv outside tests.
func resolveOptions(cmd *cobra.Command, getenv func(string) string) (options, error) {
	flags := cmd.Flags()
	path, _ := flags.GetString("config")
	settings, err := config.LoadSettings(path)
	if err != nil {
		return options{}, err
	}

	opts := options{settings: settings, accounts: settings.AccountsFile, logLevel: settings.LogLevel}
	if v, _ := flags.GetString("accounts"); v != "" {
		opts.accounts = v
	}
	if v := getenv(logging.LogLevelEnvVar); v != "" {
		opts.logLevel = v
	}
	if v, _ := flags.GetString("log-level"); v != "" {
		opts.logLevel = v
	}
	opts.secret, _ = flags.GetString("secret")
	opts.kubeconfig, _ = flags.GetString("kubeconfig")

	offlineFlag, _ := flags.GetBool("offline")
	opts.offline = offlineFlag || settings.Offline || offlineFromEnv(getenv)
	return opts, nil
}

func offlineFromEnv(getenv func(string) string) bool {
	for _, name := range offlineEnvVars {
		switch strings.ToLower(strings.TrimSpace(getenv(name))) {
		case "", "0", "false", "no", "off":
			continue
		default:
			return true
		}
	}
	return false
}

// newProvider picks the data provider once for the whole run.
func newProvider(opts options, accounts api.AccountSource) (api.Provider, error) {
	if opts.offline {
		latency, err := opts.settings.Latency()
		if err != nil {
			return nil, err
		}
		return api.NewOffline(accounts, latency), nil
	}
	timeout, err := opts.settings.Timeout()
	if err != nil {
		return nil, err
	}
	return api.NewClient(accounts, timeout), nil
}
