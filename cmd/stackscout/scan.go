package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ternarybob/stackscout/internal/app"
	"github.com/ternarybob/stackscout/internal/models"
)

var scanCmd = &cobra.Command{
	Use:   "scan [username]",
	Short: "Scan a user's public repositories for languages and frameworks",
	Args:  cobra.ExactArgs(1),
	RunE:  runScan,
}

var scanJSON bool

func init() {
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "Print records as JSON")
}

func runScan(cmd *cobra.Command, args []string) error {
	username := args[0]

	return withApp(func(a *app.App) error {
		records, err := a.ScannerService.ScanUser(cmd.Context(), username)
		if err != nil {
			return fmt.Errorf("failed to fetch repos: %w", err)
		}

		if scanJSON {
			return printJSON(records)
		}
		printRepoTable(records)
		return nil
	})
}

func printRepoTable(records []models.RepoRecord) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "REPOSITORY\tLANGUAGES\tFRAMEWORKS")
	for _, r := range records {
		languages := r.LanguageNames()
		sort.Strings(languages)
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.RepoName, strings.Join(languages, ", "), strings.Join(r.Frameworks, ", "))
	}
	tw.Flush()
	fmt.Printf("\n%d repositories\n", len(records))
}
