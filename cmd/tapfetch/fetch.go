// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/tapfetch/internal/archive"
	"github.com/pdiddy/tapfetch/internal/ledger"
	"github.com/pdiddy/tapfetch/internal/pipeline"
	"github.com/pdiddy/tapfetch/internal/registry"
	"github.com/pdiddy/tapfetch/internal/tap"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <output> <urls|files> <limit> <registry|archive> [args...]",
	Short: "Query TAP archives and save the matching dataset URLs or files",
	Long: `Fetch resolves one or more TAP archives, runs an ADQL query against them,
and writes up to <limit> dataset URLs to <output> as a comma-terminated list.
In files mode each URL is also downloaded into the download directory.
When nothing matches, <output> contains "No files matching parameters".

Arguments:
` + pipeline.Usage,
	Args: cobra.MinimumNArgs(4),
	RunE: runFetch,
}

func init() {
	// Flags go before <output>; query values such as "-1e-9" are positional.
	fetchCmd.Flags().SetInterspersed(false)
	fetchCmd.Flags().Int("max-registries", 0, "maximum archives taken from a registry search (default 1)")
	fetchCmd.Flags().String("download-dir", "", "directory for downloaded files (default ./fits)")
	fetchCmd.Flags().Duration("delay", 0, "delay between consecutive downloads")

	viper.BindPFlag("registry.max_registries", fetchCmd.Flags().Lookup("max-registries"))
	viper.BindPFlag("output.download_dir", fetchCmd.Flags().Lookup("download-dir"))
	viper.BindPFlag("output.download_delay", fetchCmd.Flags().Lookup("delay"))

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	req, err := pipeline.ParseArgs(args)
	if err != nil {
		return err
	}

	cfg := loadConfig()
	client := tap.NewClient(cfg.HTTP)
	connector := archive.TAPConnector{Client: client}

	runner := &pipeline.Runner{
		Connector:  connector,
		HTTPClient: client.HTTP,
		Config:     cfg,
		Log:        os.Stderr,
	}

	if req.Selection == pipeline.SelectRegistry {
		regService, err := client.Open(cfg.Registry.Endpoint)
		if err != nil {
			return fmt.Errorf("registry endpoint: %w", err)
		}
		runner.Resolver = &registry.Resolver{
			Searcher:  &registry.RegTAPSearcher{Service: regService},
			Connector: connector,
		}
	}

	if cfg.Ledger.Path != "" {
		l, err := ledger.Open(cfg.Ledger.Path)
		if err != nil {
			return err
		}
		defer l.Close()
		runner.Ledger = l
	}

	res, err := runner.Run(context.Background(), req)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "wrote %s (%d URL(s))\n", req.Output, len(res.URLs))
	if res.RunID != "" {
		fmt.Fprintf(os.Stderr, "recorded run %s\n", res.RunID)
	}
	return nil
}
