// ABOUTME: CLI command exporting study data.
// ABOUTME: Supports JSON, YAML and Markdown report formats.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/study/internal/models"
)

var (
	exportOutput string
	exportSince  string
)

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export study data",
	Long: `Export study data in various formats.

FORMATS:

  json       Full JSON export of facts, derived tables and notifications
  yaml       YAML export (human-readable)
  markdown   Evolution, goals and performance history report

OPTIONS:

  --output, -o   Write to file instead of stdout
  --since        Only include history since this date (markdown only, YYYY-MM-DD)

EXAMPLES:

  study export json -o backup.json
  study export yaml
  study export markdown --since 2025-06-01`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"json", "yaml", "markdown"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		var (
			data []byte
			err  error
		)

		switch args[0] {
		case "json":
			data, err = current.db.ExportJSON(ctx)
		case "yaml":
			data, err = current.db.ExportYAML(ctx)
		case "markdown", "md":
			var since models.Date
			if exportSince != "" {
				if since, err = models.ParseDate(exportSince); err != nil {
					return fmt.Errorf("invalid date format: %s (use YYYY-MM-DD)", exportSince)
				}
			}
			var md string
			md, err = current.db.ExportMarkdown(ctx, since)
			data = []byte(md)
		default:
			return fmt.Errorf("unknown format: %s (use json, yaml, or markdown)", args[0])
		}
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, data, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			color.Green("✓ Exported to %s", exportOutput)
			return nil
		}
		fmt.Println(string(data))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	exportCmd.Flags().StringVar(&exportSince, "since", "", "only include history since date (YYYY-MM-DD)")
	rootCmd.AddCommand(exportCmd)
}
