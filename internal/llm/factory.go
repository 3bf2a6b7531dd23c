package llm

import (
	"fmt"

	"github.com/wikiprov/wikiprov/internal/model"
)

// NewProvider creates a new LLM provider based on configuration
func NewProvider(config Config) (Provider, error) {
	switch normalizeProviderName(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)

	case "anthropic":
		return NewAnthropicProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "":
		return nil, fmt.Errorf("%w: llm provider is required", model.ErrInvalidConfiguration)

	default:
		return nil, fmt.Errorf("%w: unknown LLM provider: %s (supported: openai, anthropic, ollama)",
			model.ErrInvalidConfiguration, config.Provider)
	}
}

// NewProviders builds the judge and embedding providers from the app
// configuration. The embedding provider defaults to the judge provider;
// anthropic cannot embed, so it requires an explicit embed_provider.
func NewProviders(mc model.LLMConfig, judgeModel string) (judge Provider, embed Provider, err error) {
	cfg := ConfigFromModel(mc, judgeModel)

	judge, err = NewProvider(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("judge provider: %w", err)
	}

	embedName := normalizeProviderName(mc.EmbedProvider)
	if embedName == "" {
		embedName = normalizeProviderName(mc.Provider)
	}
	if embedName == "anthropic" {
		return nil, nil, fmt.Errorf("%w: anthropic has no embeddings endpoint; set llm.embed_provider to openai or ollama",
			model.ErrInvalidConfiguration)
	}

	if embedName == normalizeProviderName(mc.Provider) {
		return judge, judge, nil
	}

	embedCfg := cfg
	embedCfg.Provider = embedName
	if mc.EmbedAPIKey != "" {
		embedCfg.APIKey = mc.EmbedAPIKey
	}
	embed, err = NewProvider(embedCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("embed provider: %w", err)
	}

	return judge, embed, nil
}
