// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/tapfetch/internal/ledger"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List earlier runs recorded in the ledger",
	Long: `History reads the run ledger (see --ledger or ledger.path) and lists the
most recent runs. Use --run with a run ID to list the URLs and download
outcomes of that run.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of runs to list")
	historyCmd.Flags().String("run", "", "show the resources of one run")
	historyCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if cfg.Ledger.Path == "" {
		return fmt.Errorf("no ledger configured: set --ledger or ledger.path")
	}

	l, err := ledger.Open(cfg.Ledger.Path)
	if err != nil {
		return err
	}
	defer l.Close()

	jsonOutput, _ := cmd.Flags().GetBool("json")
	ctx := context.Background()

	if runID, _ := cmd.Flags().GetString("run"); runID != "" {
		resources, err := l.Resources(ctx, runID)
		if err != nil {
			return err
		}
		if jsonOutput {
			return encodeJSON(resources)
		}
		if len(resources) == 0 {
			fmt.Println("No resources recorded.")
			return nil
		}
		for _, r := range resources {
			status := r.FilePath
			if r.Error != "" {
				status = "error: " + r.Error
			}
			fmt.Printf("%-4d  %s  %s\n", r.Position, r.URL, status)
		}
		return nil
	}

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := l.Runs(ctx, limit)
	if err != nil {
		return err
	}
	if jsonOutput {
		return encodeJSON(runs)
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	fmt.Printf("%-36s  %-20s  %-8s  %-5s  %-6s  %s\n", "Run", "Started", "Select", "Mode", "URLs", "Query")
	fmt.Println(strings.Repeat("-", 110))
	for _, r := range runs {
		query := strings.TrimSpace(r.Query)
		if len(query) > 40 {
			query = query[:37] + "..."
		}
		fmt.Printf("%-36s  %-20s  %-8s  %-5s  %-6d  %s\n",
			r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), r.Selection, r.DownloadMode, r.URLCount, query)
	}
	return nil
}

func encodeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
