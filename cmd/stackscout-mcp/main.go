package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	arbor_models "github.com/ternarybob/arbor/models"

	"github.com/ternarybob/stackscout/internal/common"
	"github.com/ternarybob/stackscout/internal/connectors/github"
	"github.com/ternarybob/stackscout/internal/registry"
	"github.com/ternarybob/stackscout/internal/services/embeddings"
	"github.com/ternarybob/stackscout/internal/services/llm"
	"github.com/ternarybob/stackscout/internal/services/scanner"
	"github.com/ternarybob/stackscout/internal/services/vectorsearch"
	"github.com/ternarybob/stackscout/internal/storage"
)

func main() {
	// STACKSCOUT_CONFIG may list several files separated by commas
	var configFiles []string
	if env := os.Getenv("STACKSCOUT_CONFIG"); env != "" {
		configFiles = strings.Split(env, ",")
	} else if _, err := os.Stat("stackscout.toml"); err == nil {
		configFiles = []string{"stackscout.toml"}
	}

	config, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Minimal logging to avoid cluttering MCP stdio
	logger := arbor.NewLogger().WithConsoleWriter(arbor_models.WriterConfiguration{
		Type:             arbor_models.LogWriterTypeConsole,
		TimeFormat:       "15:04:05",
		DisableTimestamp: false,
	}).WithLevelFromString("warn")

	ctx := context.Background()

	storageManager, err := storage.NewStorageManager(ctx, logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize storage")
	}
	defer storageManager.Close()

	providers := llm.NewProviderFactory(&config.Gemini, &config.Claude, &config.LLM, logger)
	defer providers.Close()

	embedder := embeddings.NewService(providers, config.Embeddings, logger)
	searchService := vectorsearch.NewService(storageManager.VectorStorage(), embedder, config.VectorSearch, logger)

	connector, err := github.NewConnector(config.GitHub, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create GitHub connector")
	}
	scannerService := scanner.NewService(connector, registry.Default(), logger)

	mcpServer := server.NewMCPServer(
		"StackScout Interview Prep",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	// Interview prep tools
	mcpServer.AddTool(createGetExampleTool(), handleGetExample(searchService, logger))
	mcpServer.AddTool(createSearchAllTool(), handleSearchAll(searchService, logger))
	mcpServer.AddTool(createListCollectionsTool(), handleListCollections(searchService, logger))

	// Repository tools
	mcpServer.AddTool(createScanUserTool(), handleScanUser(scannerService, logger))

	// Voice assistants connect over SSE; everything else uses stdio
	if addr := os.Getenv("STACKSCOUT_MCP_SSE_ADDR"); addr != "" {
		logger.Warn().Str("address", addr).Msg("MCP server listening on SSE")
		if err := server.NewSSEServer(mcpServer).Start(addr); err != nil {
			logger.Fatal().Err(err).Msg("MCP SSE server failed")
		}
		return
	}

	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Fatal().Err(err).Msg("MCP server failed")
	}
}
