package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ternarybob/stackscout/internal/app"
	"github.com/ternarybob/stackscout/internal/models"
	"github.com/ternarybob/stackscout/internal/services/jobsearch"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Search the web for job postings matching a tech stack",
	Long: `Runs the searcher, analyzer and formatter agents for the given criteria.
The tech stack comes from --tech, or from a scan of --user's repositories.`,
	Args: cobra.NoArgs,
	RunE: runJobs,
}

var (
	jobsTech     []string
	jobsUser     string
	jobsLocation string
	jobsLevel    string
	jobsRole     string
	jobsProfile  string
	jobsPDF      string
)

func init() {
	jobsCmd.Flags().StringSliceVar(&jobsTech, "tech", nil, "Technologies to search for (comma separated)")
	jobsCmd.Flags().StringVar(&jobsUser, "user", "", "Derive the tech stack from this GitHub user's repositories")
	jobsCmd.Flags().StringVar(&jobsLocation, "location", "", "Location filter")
	jobsCmd.Flags().StringVar(&jobsLevel, "level", "", "Experience level filter")
	jobsCmd.Flags().StringVar(&jobsRole, "role", "", "Role filter")
	jobsCmd.Flags().StringVar(&jobsProfile, "profile", "", "YAML search profile (overrides the other criteria flags)")
	jobsCmd.Flags().StringVar(&jobsPDF, "pdf", "", "Also write the results as a PDF report to this path")
}

func runJobs(cmd *cobra.Command, args []string) error {
	return withApp(func(a *app.App) error {
		ctx := cmd.Context()

		criteria := models.SearchCriteria{
			TechStack:       jobsTech,
			Location:        jobsLocation,
			ExperienceLevel: jobsLevel,
			Role:            jobsRole,
		}

		if jobsProfile != "" {
			profile, err := jobsearch.LoadProfile(jobsProfile)
			if err != nil {
				return err
			}
			criteria = profile
		} else if len(criteria.TechStack) == 0 {
			if jobsUser == "" {
				return fmt.Errorf("specify --tech, --user or --profile")
			}
			records, err := a.ScannerService.ScanUser(ctx, jobsUser)
			if err != nil {
				return fmt.Errorf("failed to fetch repos: %w", err)
			}
			criteria.TechStack = jobsearch.CriteriaFromRepos(records).TechStack
			if len(criteria.TechStack) == 0 {
				return fmt.Errorf("no languages or frameworks found for %s", jobsUser)
			}
		}

		logger.Info().
			Strs("tech_stack", criteria.TechStack).
			Str("location", criteria.Location).
			Msg("Searching for jobs")

		result, err := a.JobSearchService.Search(ctx, criteria)
		if err != nil {
			return err
		}

		if jobsPDF != "" {
			report, err := a.PDFService.JobResults(ctx, result)
			if err != nil {
				return err
			}
			if err := os.WriteFile(jobsPDF, report.Content, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", jobsPDF, err)
			}
			logger.Info().Str("path", jobsPDF).Str("archive_url", report.ArchiveURL).Msg("Job report written")
		}

		return printJSON(result)
	})
}
