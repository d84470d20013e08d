// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the tapfetch CLI.
// tapfetch finds Virtual-Observatory TAP archives, runs ADQL queries against
// them, and saves the resulting dataset URLs or files.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/tapfetch/internal/registry"
	"github.com/pdiddy/tapfetch/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

const defaultUserAgent = "tapfetch/0.1"

// rootCmd is the base command for the tapfetch CLI.
var rootCmd = &cobra.Command{
	Use:   "tapfetch",
	Short: "Retrieve datasets from Virtual-Observatory TAP archives",
	Long: `tapfetch discovers TAP archives through a VO registry search, or takes
an archive URL directly, runs an ObsCore or raw ADQL query, and writes the
resulting dataset URLs to a file. In files mode the datasets themselves are
downloaded too.

Use "tables" to inspect the schema of an archive before writing a raw query,
and "history" to list earlier runs when a ledger is configured.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./tapfetch.yaml or ~/.config/tapfetch/tapfetch.yaml)")
	pf.Duration("timeout", 0, "HTTP request timeout (default none)")
	pf.String("registry-endpoint", "", "RegTAP service used for registry searches")
	pf.String("ledger", "", "SQLite file recording run history (default disabled)")

	viper.BindPFlag("http.timeout", pf.Lookup("timeout"))
	viper.BindPFlag("registry.endpoint", pf.Lookup("registry-endpoint"))
	viper.BindPFlag("ledger.path", pf.Lookup("ledger"))
}

func initConfig() {
	viper.SetDefault("http.timeout", time.Duration(0))
	viper.SetDefault("http.user_agent", defaultUserAgent)
	viper.SetDefault("http.max_retries", 5)
	viper.SetDefault("registry.endpoint", registry.DefaultEndpoint)
	viper.SetDefault("registry.max_registries", 1)
	viper.SetDefault("output.download_dir", "fits")
	viper.SetDefault("output.download_delay", time.Duration(0))
	viper.SetDefault("ledger.path", "")

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("tapfetch")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "tapfetch"))
		}
	}

	viper.SetEnvPrefix("TAPFETCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig assembles the run configuration from flags, environment,
// config file and defaults, in that order of precedence.
func loadConfig() types.Config {
	return types.Config{
		HTTP: types.HTTPConfig{
			Timeout:    viper.GetDuration("http.timeout"),
			UserAgent:  viper.GetString("http.user_agent"),
			MaxRetries: viper.GetInt("http.max_retries"),
		},
		Registry: types.RegistryConfig{
			Endpoint:      viper.GetString("registry.endpoint"),
			MaxRegistries: viper.GetInt("registry.max_registries"),
		},
		Output: types.OutputConfig{
			DownloadDir:   viper.GetString("output.download_dir"),
			DownloadDelay: viper.GetDuration("output.download_delay"),
		},
		Ledger: types.LedgerConfig{
			Path: viper.GetString("ledger.path"),
		},
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
