package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ternarybob/stackscout/internal/app"
)

var searchCmd = &cobra.Command{
	Use:   "search [question]",
	Short: "Semantic search over extracted repository collections",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

var (
	searchCollection string
	searchAll        bool
	searchK          int
	searchThreshold  float64
)

func init() {
	searchCmd.Flags().StringVar(&searchCollection, "collection", "", "Collection to search (default: first collection)")
	searchCmd.Flags().BoolVar(&searchAll, "all", false, "Search every collection")
	searchCmd.Flags().IntVarP(&searchK, "limit", "k", 0, "Results per collection (0 uses the configured default)")
	searchCmd.Flags().Float64Var(&searchThreshold, "threshold", 0, "Maximum distance score (0 uses the configured default)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	question := args[0]

	return withApp(func(a *app.App) error {
		ctx := cmd.Context()
		vs := a.VectorSearchService

		if searchAll {
			response, err := vs.SearchAll(ctx, question, searchK, searchThreshold)
			if err != nil {
				return err
			}
			return printJSON(response)
		}

		collection := searchCollection
		if collection == "" {
			collections, err := vs.ListCollections(ctx)
			if err != nil {
				return err
			}
			if len(collections) == 0 {
				return fmt.Errorf("no collections found; run extract first")
			}
			collection = collections[0]
		}

		return printJSON(vs.SearchCollection(ctx, question, collection, searchK, searchThreshold))
	})
}
