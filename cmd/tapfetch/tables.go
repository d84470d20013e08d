// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/tapfetch/internal/archive"
	"github.com/pdiddy/tapfetch/internal/tap"
	"github.com/pdiddy/tapfetch/pkg/types"
)

var tablesCmd = &cobra.Command{
	Use:   "tables <access-url>",
	Short: "List the tables and columns a TAP archive exposes",
	Long: `Tables connects to a TAP archive and prints the tables it publishes,
optionally with their columns. Use --output to save the schema as YAML for
offline reference when composing raw_query arguments.`,
	Args: cobra.ExactArgs(1),
	RunE: runTables,
}

func init() {
	tablesCmd.Flags().Bool("columns", false, "also list the columns of each table")
	tablesCmd.Flags().String("output", "", "write the schema to this YAML file")
	tablesCmd.Flags().Bool("json", false, "print the schema as JSON")

	rootCmd.AddCommand(tablesCmd)
}

func runTables(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	client := tap.NewClient(cfg.HTTP)

	a := archive.New("", "", "", args[0], archive.TAPConnector{Client: client})
	if err := a.Initialize(context.Background()); err != nil {
		return err
	}

	if path, _ := cmd.Flags().GetString("output"); path != "" {
		if err := archive.WriteSchema(path, a); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", path)
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return encodeJSON(a.Tables())
	}

	withColumns, _ := cmd.Flags().GetBool("columns")
	formatTables(a.Tables(), withColumns)
	return nil
}

func formatTables(tables []types.TableSchema, withColumns bool) {
	if len(tables) == 0 {
		fmt.Println("No tables found.")
		return
	}

	fmt.Printf("%-40s  %-8s  %s\n", "Table", "Type", "Columns")
	fmt.Println(strings.Repeat("-", 60))
	for _, t := range tables {
		fmt.Printf("%-40s  %-8s  %d\n", t.Name, t.Type, len(t.Fields))
		if !withColumns {
			continue
		}
		for _, f := range t.Fields {
			unit := ""
			if f.Unit != "" {
				unit = " [" + f.Unit + "]"
			}
			fmt.Printf("    %-32s  %-8s%s  %s\n", f.Name, f.Datatype, unit, f.Description)
		}
	}
	fmt.Printf("\n%d tables\n", len(tables))
}
