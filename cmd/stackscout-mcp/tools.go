package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createGetExampleTool returns the get_example tool definition
func createGetExampleTool() mcp.Tool {
	return mcp.NewTool("get_example",
		mcp.WithDescription("Get examples of when the user used this topic or concept in one of their projects"),
		mcp.WithString("topic",
			mcp.Required(),
			mcp.Description("Concept, pattern or technology, e.g. \"message queues\" or \"dependency injection\""),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum examples to return (default: 5, max: 20)"),
		),
	)
}

// createSearchAllTool returns the search_all tool definition
func createSearchAllTool() mcp.Tool {
	return mcp.NewTool("search_all",
		mcp.WithDescription("Semantic search across every extracted repository collection"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Natural language question about the user's code"),
		),
		mcp.WithNumber("max_results_per_collection",
			mcp.Description("Results per collection (default from configuration, max: 50)"),
		),
	)
}

// createListCollectionsTool returns the list_collections tool definition
func createListCollectionsTool() mcp.Tool {
	return mcp.NewTool("list_collections",
		mcp.WithDescription("List the repository collections available for search"),
	)
}

// createScanUserTool returns the scan_user tool definition
func createScanUserTool() mcp.Tool {
	return mcp.NewTool("scan_user",
		mcp.WithDescription("Scan a GitHub user's public repositories for languages and frameworks"),
		mcp.WithString("username",
			mcp.Required(),
			mcp.Description("GitHub username"),
		),
	)
}
