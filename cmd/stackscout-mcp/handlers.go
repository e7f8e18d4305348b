package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stackscout/internal/models"
	"github.com/ternarybob/stackscout/internal/services/vectorsearch"
)

// contributionSearcher is the slice of the vector search service the tools use
type contributionSearcher interface {
	ListCollections(ctx context.Context) ([]string, error)
	CollectionInfo(ctx context.Context, name string) (*models.CollectionInfo, error)
	SearchAll(ctx context.Context, question string, kPerCollection int, threshold float64) (*models.SearchAllResponse, error)
}

type userScanner interface {
	ScanUser(ctx context.Context, username string) ([]models.RepoRecord, error)
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

// handleGetExample implements the get_example tool
func handleGetExample(searcher contributionSearcher, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		topic, err := request.RequireString("topic")
		if err != nil || topic == "" {
			return textResult("Error: topic parameter is required"), nil
		}

		limit := request.GetInt("limit", 5)
		if limit <= 0 {
			limit = 5
		}
		if limit > 20 {
			limit = 20
		}

		response, err := searcher.SearchAll(ctx, topic, 0, 0)
		if err != nil {
			if errors.Is(err, vectorsearch.ErrNoCollections) {
				return textResult("No repositories have been extracted yet."), nil
			}
			logger.Error().Err(err).Str("topic", topic).Msg("get_example search failed")
			return textResult(fmt.Sprintf("Search error: %v", err)), nil
		}

		return textResult(formatExamples(topic, response.Results, limit)), nil
	}
}

// handleSearchAll implements the search_all tool
func handleSearchAll(searcher contributionSearcher, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil || query == "" {
			return textResult("Error: query parameter is required"), nil
		}

		k := request.GetInt("max_results_per_collection", 0)
		if k > 50 {
			k = 50
		}

		response, err := searcher.SearchAll(ctx, query, k, 0)
		if err != nil {
			if errors.Is(err, vectorsearch.ErrNoCollections) {
				return textResult("No collections found. Extract a repository first."), nil
			}
			logger.Error().Err(err).Str("query", query).Msg("search_all failed")
			return textResult(fmt.Sprintf("Search error: %v", err)), nil
		}

		return textResult(formatSearchAll(response)), nil
	}
}

// handleListCollections implements the list_collections tool
func handleListCollections(searcher contributionSearcher, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		names, err := searcher.ListCollections(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("list_collections failed")
			return textResult(fmt.Sprintf("List error: %v", err)), nil
		}

		infos := make([]*models.CollectionInfo, 0, len(names))
		for _, name := range names {
			info, err := searcher.CollectionInfo(ctx, name)
			if err != nil {
				logger.Warn().Err(err).Str("collection", name).Msg("Collection info failed")
				info = &models.CollectionInfo{CollectionName: name}
			}
			infos = append(infos, info)
		}

		return textResult(formatCollections(infos)), nil
	}
}

// handleScanUser implements the scan_user tool
func handleScanUser(scanner userScanner, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		username, err := request.RequireString("username")
		if err != nil || username == "" {
			return textResult("Error: username parameter is required"), nil
		}

		records, err := scanner.ScanUser(ctx, username)
		if err != nil {
			logger.Error().Err(err).Str("username", username).Msg("scan_user failed")
			return textResult(fmt.Sprintf("Failed to fetch repos: %v", err)), nil
		}

		return textResult(formatRepos(username, records)), nil
	}
}
