package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ternarybob/stackscout/internal/app"
)

var exportCmd = &cobra.Command{
	Use:   "export [username]",
	Short: "Render a user's tech profile as a PDF",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

var exportOutput string

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output path (default: <username>_tech_profile.pdf)")
}

func runExport(cmd *cobra.Command, args []string) error {
	username := args[0]

	return withApp(func(a *app.App) error {
		records, err := a.ScannerService.ScanUser(cmd.Context(), username)
		if err != nil {
			return fmt.Errorf("failed to fetch repos: %w", err)
		}

		report, err := a.PDFService.TechProfile(cmd.Context(), username, records)
		if err != nil {
			return err
		}

		path := exportOutput
		if path == "" {
			path = report.Filename
		}
		if err := os.WriteFile(path, report.Content, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}

		fmt.Printf("Wrote %s (%d repositories)\n", path, len(records))
		if report.ArchiveURL != "" {
			fmt.Printf("Archived at %s\n", report.ArchiveURL)
		}
		return nil
	})
}
