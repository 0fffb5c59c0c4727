package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/reviewfleet/reviewfleet/pkg/version"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the reviewfleet version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Full())
		},
	}
}

const configTemplate = `# reviewfleet project configuration.
# Every key is optional; unset keys fall back to the user config
# (~/.config/hachimoku/config.toml), pyproject.toml [tool.hachimoku],
# and the built-in defaults.

# model = "claude-sonnet-4-5"
# timeout = 600
# max_turns = 30
# parallel = true
# base_branch = "main"
# output_format = "markdown"
# save_reviews = true
# show_cost = false
# max_files_per_review = 100

# [selector]
# referenced_content_max_chars = 2000
# convention_files = ["CLAUDE.md", ".hachimoku/config.toml"]

# [aggregation]
# enabled = true

# [agents.code-reviewer]
# enabled = true
# timeout = 300
`

func newInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Scaffold .hachimoku/ in the current project",
		RunE: func(cmd *cobra.Command, _ []string) error {
			workDir, err := os.Getwd()
			if err != nil {
				return err
			}

			agentsDir := filepath.Join(workDir, ".hachimoku", "agents")
			if err := os.MkdirAll(agentsDir, 0o755); err != nil {
				return fmt.Errorf("creating %s: %w", agentsDir, err)
			}

			configPath := filepath.Join(workDir, ".hachimoku", "config.toml")
			if _, err := os.Stat(configPath); err == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already exists, leaving it untouched\n", configPath)
				return nil
			}
			if err := os.WriteFile(configPath, []byte(configTemplate), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", configPath, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "initialized %s\n", filepath.Join(workDir, ".hachimoku"))
			return nil
		},
	}
}
