package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ternarybob/stackscout/internal/app"
	"github.com/ternarybob/stackscout/internal/models"
)

var extractCmd = &cobra.Command{
	Use:   "extract [owner/repo]",
	Short: "Extract design patterns and concepts from a repository into a searchable collection",
	Long: `Runs the knowledge extraction pipeline over a GitHub repository, or over a
local directory with --path, and stores the analyzed files as a vector collection.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtract,
}

var extractPath string

func init() {
	extractCmd.Flags().StringVar(&extractPath, "path", "", "Local directory to extract instead of a GitHub repository")
}

func runExtract(cmd *cobra.Command, args []string) error {
	if extractPath == "" && len(args) == 0 {
		return fmt.Errorf("specify owner/repo or --path")
	}

	return withApp(func(a *app.App) error {
		var result *models.ExtractionResult
		var err error
		if extractPath != "" {
			result, err = a.KnowledgeService.ExtractPath(cmd.Context(), extractPath)
		} else {
			owner, repo, ok := strings.Cut(args[0], "/")
			if !ok || owner == "" || repo == "" {
				return fmt.Errorf("repository must be owner/repo, got %q", args[0])
			}
			result, err = a.KnowledgeService.ExtractRepo(cmd.Context(), owner, repo)
		}
		if err != nil {
			return err
		}
		return printJSON(result)
	})
}
