// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-elev.
//
// go-elev is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-elev/internal/config"
)

// Flags bound on the root command.
var (
	flagTargetUser     string
	flagLogin          bool
	flagClearTimestamp bool
	flagVerbose        bool
	flagNonInteractive bool
	flagConfig         string
)

// rootCmd represents the elev command
var rootCmd = &cobra.Command{
	Use:   "elev [flags] command [args...]",
	Short: "elev - execute a command as another user",
	Long: `elev executes a command as another user, subject to the rules in
the policy file. Rules are evaluated in descending priority order and
the first match decides; when no rule matches the request is denied.

A successful authentication is remembered for the policy timeout, so
closely spaced invocations do not prompt again.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Everything after the first non-flag token belongs to the
	// requested command, not to elev.
	rootCmd.Flags().SetInterspersed(false)

	rootCmd.Flags().StringVarP(&flagTargetUser, "user", "u", "root",
		"target user to run the command as")
	rootCmd.Flags().BoolVarP(&flagLogin, "login", "i", false,
		"run the target user's shell as a login shell")
	rootCmd.Flags().BoolVarP(&flagClearTimestamp, "clear-timestamp", "K", false,
		"remove the cached authentication and exit")
	rootCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false,
		"verbose (debug) logging")
	rootCmd.Flags().BoolVarP(&flagNonInteractive, "non-interactive", "n", false,
		"fail instead of prompting for a password")
	rootCmd.Flags().StringVar(&flagConfig, "config", "",
		fmt.Sprintf("config file (default %s)", config.DefaultConfigPath))

	rootCmd.Version = versionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

// resolveConfigPath picks the settings file: --config flag, then the
// ELEV_CONFIG environment variable, then the built-in default.
func resolveConfigPath() string {
	if flagConfig != "" {
		return flagConfig
	}
	if env := os.Getenv("ELEV_CONFIG"); env != "" {
		return env
	}
	return config.DefaultConfigPath
}
