package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ashureev/interview-coach/internal/questionbank"
)

const defaultQuestionsDir = "./data/questions"

var bankCmd = &cobra.Command{
	Use:   "bank",
	Short: "Inspect question bank files",
}

var bankLintCmd = &cobra.Command{
	Use:   "lint [dir]",
	Short: "Validate every question bank file in a directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := questionsDir(args)
		roles, err := questionbank.Lint(dir)
		if err != nil {
			return fmt.Errorf("lint %s: %w", dir, err)
		}
		total := 0
		for _, r := range roles {
			for _, l := range r.Levels {
				total += l.Count
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ok: %d roles, %d questions in %s\n", len(roles), total, dir)
		return nil
	},
}

var bankListCmd = &cobra.Command{
	Use:   "list [dir]",
	Short: "List roles, levels and question counts",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		roles, err := questionbank.Lint(questionsDir(args))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-20s  %-20s  %-12s  %5s\n", "Role", "Domain", "Level", "Count")
		fmt.Fprintln(out, strings.Repeat("─", 63))
		for _, r := range roles {
			for _, l := range r.Levels {
				fmt.Fprintf(out, "%-20s  %-20s  %-12s  %5d\n", r.Role, r.Domain, l.Name, l.Count)
			}
		}
		fmt.Fprintf(out, "\n%d roles\n", len(roles))
		return nil
	},
}

func init() {
	bankCmd.AddCommand(bankLintCmd)
	bankCmd.AddCommand(bankListCmd)
}

// questionsDir resolves the bank directory: argument, then QUESTIONS_DIR, then the default.
func questionsDir(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	if dir := os.Getenv("QUESTIONS_DIR"); dir != "" {
		return dir
	}
	return defaultQuestionsDir
}
