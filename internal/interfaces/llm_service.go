package interfaces

import (
	"context"
)

// Message represents a single message in a conversation
type Message struct {
	// Role identifies the message sender: "user", "assistant", or "system"
	Role string

	// Content contains the text content of the message
	Content string
}

// ContentRequest describes one generation call to a language model provider.
type ContentRequest struct {
	Messages          []Message
	Model             string // Empty uses the provider default
	Temperature       float32
	MaxTokens         int
	SystemInstruction string

	// OutputSchema, when set, asks the provider for JSON matching this schema.
	// The map uses JSON-schema keys: type, properties, items, required, description.
	OutputSchema map[string]interface{}
}

// ContentResponse is the provider-neutral generation result
type ContentResponse struct {
	Text     string
	Provider string
	Model    string
}

// LLMService generates text completions. It is the classifier used by the
// knowledge pipeline and the agents of the job-search pipeline.
type LLMService interface {
	// GenerateContent runs one completion. Implementations do not retry unless
	// explicitly configured to.
	GenerateContent(ctx context.Context, req *ContentRequest) (*ContentResponse, error)

	// Provider returns the configured provider name ("gemini" or "claude")
	Provider() string
}
