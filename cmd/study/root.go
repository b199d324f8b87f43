// ABOUTME: Root Cobra command for study CLI.
// ABOUTME: Loads config and builds the app in PersistentPreRunE; Execute closes it.
package main

import (
	"github.com/spf13/cobra"

	"github.com/harperreed/study/internal/config"
)

var (
	configPath string
	current    *app
)

var rootCmd = &cobra.Command{
	Use:   "study",
	Short: "Personal study tracker",
	Long: `Study tracks disciplines, tasks, study sessions and exercise results,
keeps per-discipline evolution up to date, and raises notifications about goals,
performance, achievements and due reviews.

QUICK START:

  $ study import plano.xlsx            # Import the study cycle spreadsheet
  $ study record result 12 8 10        # 8 of 10 correct on task 12
  $ study record session 12 45         # 45 minutes studied on task 12
  $ study evolution                    # Per-discipline totals
  $ study notifications --unread       # What needs attention

SERVER:

  $ study serve                        # HTTP API for the web client

MCP INTEGRATION:

  Run 'study mcp' to start the Model Context Protocol server:

  {
    "mcpServers": {
      "study": { "command": "study", "args": ["mcp"] }
    }
  }

CONFIGURATION:

  ~/.config/study/config.json, overridable with STUDY_* environment variables.
  Data is stored in ~/.local/share/study/study.db by default.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" {
			return nil
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		current, err = newApp(cfg)
		return err
	},
}

// Execute runs the root command and closes the app it built, even when the
// command failed.
func Execute() error {
	err := rootCmd.Execute()
	if current != nil {
		if cerr := current.Close(); err == nil {
			err = cerr
		}
		current = nil
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/study/config.json)")
}
