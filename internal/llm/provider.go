package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/wikiprov/wikiprov/internal/model"
)

// Provider defines the interface for the external model services the
// pipeline consumes: chat completion for judging and embeddings for
// indexing and retrieval.
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete runs a single-turn completion and returns the raw text
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// Embed returns one embedding vector per input text, in input order
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// CompletionRequest contains the input for a completion call
type CompletionRequest struct {
	// System is the system instruction (optional)
	System string

	// Prompt is the user-turn content
	Prompt string

	// Model overrides the configured default model
	Model string

	// MaxTokens limits the response length
	MaxTokens int

	// Temperature controls sampling (judging wants it near zero)
	Temperature float32
}

// CompletionResponse contains the completion output
type CompletionResponse struct {
	// Text is the raw response text
	Text string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama"
	Provider string

	// Model is the default completion model (provider-specific)
	Model string

	// EmbeddingModel is the default embedding model
	EmbeddingModel string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:       "openai",
		Model:          "gpt-4o-mini",
		EmbeddingModel: "text-embedding-3-small",
		Timeout:        30,
		MaxTokens:      16,
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config. The judge model
// lives in the judge section of the app config, so it is passed separately.
func ConfigFromModel(mc model.LLMConfig, judgeModel string) Config {
	cfg := Config{
		Provider:       mc.Provider,
		Model:          judgeModel,
		EmbeddingModel: mc.EmbeddingModel,
		APIKey:         mc.APIKey,
		BaseURL:        mc.BaseURL,
		Timeout:        mc.Timeout,
		MaxTokens:      mc.MaxTokens,
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = "text-embedding-3-small"
	}
	return cfg
}

// serviceErr wraps a transport or API failure as a surfaced,
// retryable-by-caller error.
func serviceErr(provider string, err error) error {
	return fmt.Errorf("%w: %s: %v", model.ErrServiceUnavailable, provider, err)
}

// embedErr wraps an embedding failure.
func embedErr(provider string, err error) error {
	return fmt.Errorf("%w: %s: %v", model.ErrEmbeddingService, provider, err)
}

// normalizeProviderName lowercases and maps aliases.
func normalizeProviderName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "claude" {
		name = "anthropic"
	}
	return name
}
