package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Sharawey74/PhishSniffer/internal/config"
	"github.com/Sharawey74/PhishSniffer/internal/database"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent analysis history",
		Long: `History lists the most recent email analyses stored in the database.

The history keeps the last ` + fmt.Sprint(config.DefaultHistoryLimit) + ` analyses; older entries are pruned
automatically when new analyses are saved.

Examples:
  # Show the analysis history
  phishsniffer history

  # Show the full stored report for one analysis
  phishsniffer history --show 1a2b3c4d5e6f

  # Clear the analysis history
  phishsniffer history --clear`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().Bool("clear", false,
		"Delete all history entries")
	cmd.Flags().String("show", "",
		"Print the full stored report for the given analysis ID as JSON")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	clearFlag, err := cmd.Flags().GetBool("clear")
	if err != nil {
		return err
	}

	showID, err := cmd.Flags().GetString("show")
	if err != nil {
		return err
	}

	db, err := database.Open(config.XDGDataDir(), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close() //nolint:errcheck // Best effort cleanup

	ctx := context.Background()

	if clearFlag {
		if err := db.ClearHistory(ctx); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		fmt.Println("Analysis history cleared.")
		return nil
	}

	if showID != "" {
		return showStoredReport(ctx, db, showID)
	}

	return listHistory(ctx, db)
}

// listHistory prints the stored history entries, newest first.
func listHistory(ctx context.Context, db *database.AnalysisDB) error {
	entries, err := db.History(ctx)
	if err != nil {
		return fmt.Errorf("failed to get history: %w", err)
	}

	if len(entries) == 0 {
		fmt.Println("No analyses found in the database.")
		fmt.Println("\nUse 'phishsniffer analyze <file>' to analyze an email.")
		return nil
	}

	fmt.Printf("Analysis history (%d entries):\n\n", len(entries))
	fmt.Printf("  %-14s  %-20s  %-10s  %-6s  %s\n",
		"ID", "Date", "Verdict", "Prob", "Source")
	fmt.Println("  " + strings.Repeat("-", 72))

	for _, entry := range entries {
		verdict := "clean"
		if entry.IsPhishing {
			verdict = "PHISHING"
		}
		fmt.Printf("  %-14s  %-20s  %-10s  %5.1f%%  %s\n",
			entry.AnalysisID,
			entry.Timestamp.Format("2006-01-02 15:04:05"),
			verdict,
			entry.Probability*100,
			entry.Source,
		)
	}

	fmt.Println("\nUse 'phishsniffer history --show <id>' to see the full report.")

	return nil
}

// showStoredReport prints the full stored report for one analysis.
func showStoredReport(ctx context.Context, db *database.AnalysisDB, analysisID string) error {
	stored, err := db.GetReport(ctx, analysisID)
	if err != nil {
		return fmt.Errorf("failed to get report: %w", err)
	}
	if stored == nil {
		return fmt.Errorf("no stored report with analysis ID %q", analysisID)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(stored)
}
