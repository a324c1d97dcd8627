package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Sharawey74/PhishSniffer/internal/config"
	"github.com/Sharawey74/PhishSniffer/internal/database"
)

// NewURLsCmd creates the urls command.
func NewURLsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "urls",
		Short: "Manage suspicious URLs found during analysis",
		Long: `URLs lists the suspicious URLs collected from analyzed emails.

Each URL keeps the highest risk level it was ever assessed at, so a URL
flagged High in one email stays High even if a later analysis rates it
lower. URLs can be marked safe after manual review, or deleted.

Examples:
  # List collected suspicious URLs
  phishsniffer urls

  # Mark a URL as safe after review
  phishsniffer urls --mark-safe http://example.top/login

  # Remove a URL from the database
  phishsniffer urls --delete http://example.top/login`,
		Args: cobra.NoArgs,
		RunE: runURLsCmd,
	}

	cmd.Flags().String("mark-safe", "",
		"Mark the given URL as safe (sets risk to Low)")
	cmd.Flags().String("delete", "",
		"Delete the given URL from the database")

	return cmd
}

// runURLsCmd executes the urls command.
func runURLsCmd(cmd *cobra.Command, _ []string) error {
	markSafe, err := cmd.Flags().GetString("mark-safe")
	if err != nil {
		return err
	}

	deleteURL, err := cmd.Flags().GetString("delete")
	if err != nil {
		return err
	}

	if markSafe != "" && deleteURL != "" {
		return errors.New("--mark-safe and --delete cannot be used together")
	}

	db, err := database.Open(config.XDGDataDir(), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close() //nolint:errcheck // Best effort cleanup

	ctx := context.Background()

	if markSafe != "" {
		if err := db.MarkURLSafe(ctx, markSafe); err != nil {
			return fmt.Errorf("failed to mark URL safe: %w", err)
		}
		fmt.Printf("Marked as safe: %s\n", markSafe)
		return nil
	}

	if deleteURL != "" {
		if err := db.DeleteURL(ctx, deleteURL); err != nil {
			return fmt.Errorf("failed to delete URL: %w", err)
		}
		fmt.Printf("Deleted: %s\n", deleteURL)
		return nil
	}

	return listURLs(ctx, db)
}

// listURLs prints the collected URLs ordered by risk.
func listURLs(ctx context.Context, db *database.AnalysisDB) error {
	records, err := db.URLs(ctx)
	if err != nil {
		return fmt.Errorf("failed to get URLs: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("No suspicious URLs found in the database.")
		fmt.Println("\nURLs are collected automatically when emails are analyzed.")
		return nil
	}

	fmt.Printf("Suspicious URLs (%d):\n\n", len(records))
	fmt.Printf("  %-8s  %-20s  %s\n", "Risk", "Date", "URL")
	fmt.Println("  " + strings.Repeat("-", 72))

	for _, record := range records {
		fmt.Printf("  %-8s  %-20s  %s\n",
			record.RiskLevel,
			record.DateAdded.Format("2006-01-02 15:04:05"),
			record.URL,
		)
	}

	fmt.Println("\nUse 'phishsniffer urls --mark-safe <url>' after reviewing a URL.")

	return nil
}
