// ABOUTME: CLI command importing the study cycle spreadsheet.
// ABOUTME: Reads sheet CICLO and applies it in one transaction.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/study/internal/importer"
)

var importCmd = &cobra.Command{
	Use:     "import [file.xlsx]",
	Aliases: []string{"sync"},
	Short:   "Import the study cycle spreadsheet",
	Long: `Import tasks, sessions and results from the study cycle workbook.

The sheet CICLO is read with its header on row 3. New disciplines and tracks are
created as needed. Tasks already imported (same TAREFA number) are skipped.
Everything is applied in one transaction: a failing row leaves the database
unchanged.

Without a file argument the configured spreadsheet is used
(default ~/.local/share/study/plano.xlsx).

EXAMPLES:

  study import
  study import ~/Downloads/plano.xlsx`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := current
		path := a.cfg.GetSpreadsheetPath()
		if len(args) == 1 {
			path = args[0]
		}

		rows, err := importer.ReadFile(path, importer.Options{Location: a.loc})
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		summary, err := a.svc.Import(cmd.Context(), rows)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		color.Green("✓ Imported %s", path)
		faint := color.New(color.Faint)
		fmt.Printf("  %d rows read, %d tasks added, %d skipped\n", summary.Rows, summary.TasksAdded, summary.TasksSkipped)
		faint.Printf("  %d disciplines, %d tracks, %d sessions, %d results added\n",
			summary.SubjectsAdded, summary.TracksAdded, summary.SessionsAdded, summary.ResultsAdded)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
