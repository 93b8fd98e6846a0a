// Nyxflare is a terminal DNS manager for Cloudflare accounts.
//
// It lists the zones of each configured account and lets you browse,
// filter, create, edit and delete their DNS records.
//
// Usage:
//
//	nyxflare [flags]
//
// Accounts are read from accounts.json in the config directory. With
// --offline (or NYXFLARE_OFFLINE=1) a built-in fixture replaces the
// Cloudflare API.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Azahorscak/nyxflare/internal/config"
	"github.com/Azahorscak/nyxflare/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "nyxflare",
	Short: "Terminal DNS manager for Cloudflare",
	Long: `Browse and edit the DNS records of your Cloudflare accounts.

Accounts come from accounts.json in the config directory, or from a
Kubernetes secret with --secret. Use --offline to try the interface
against built-in demo data.`,
	Version:       version.Full(),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("nyxflare %s (commit: %s)\n", version.Version, version.Commit)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a settings file with the default values",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	addFlags(rootCmd)

	initCmd.Flags().String("config", config.DefaultSettingsPath(), "path of the settings file to write")
	initCmd.Flags().Bool("force", false, "overwrite an existing settings file")

	rootCmd.AddCommand(versionCmd, initCmd)
}

func addFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("config", config.DefaultSettingsPath(), "path to the settings file")
	flags.String("accounts", "", "path to accounts.json (overrides the settings file)")
	flags.Bool("offline", false, "use built-in demo data instead of the Cloudflare API")
	flags.String("secret", "", "import an account from a Kubernetes secret (namespace/name)")
	flags.String("kubeconfig", "", "path to kubeconfig used with --secret")
	flags.String("log-level", "", "log level: debug, info, warn, error (logging is off by default)")
}
