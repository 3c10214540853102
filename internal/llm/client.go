// Package llm wraps the generative model providers used by the interview agent.
package llm

import (
	"context"
	"fmt"
	"strings"
)

// Client generates text from a prompt
type Client interface {
	// GenerateContent sends a prompt to the model and returns the text response
	GenerateContent(ctx context.Context, prompt string) (string, error)
	// Close releases any resources held by the client
	Close() error
}

// Provider names
const (
	ProviderVertex = "vertex"
	ProviderGemini = "gemini"
)

// Options configures a provider client
type Options struct {
	Provider        string
	Model           string
	ProjectID       string
	Location        string
	CredentialsPath string
	APIKey          string
	Temperature     float32
	MaxOutputTokens int32
	JSONResponse    bool
}

// NewClient creates the client for the configured provider
func NewClient(ctx context.Context, opts Options) (Client, error) {
	switch strings.ToLower(opts.Provider) {
	case ProviderVertex, "":
		return NewVertexAIClient(ctx, opts)
	case ProviderGemini:
		return NewGeminiClient(ctx, opts)
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", opts.Provider)
	}
}
