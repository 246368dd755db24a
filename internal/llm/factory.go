package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/greenlens/internal/model"
)

// DefaultOllamaURL is Ollama's OpenAI-compatible endpoint on a local install
const DefaultOllamaURL = "http://localhost:11434/v1"

// NewProvider creates a new LLM provider based on configuration.
// An empty provider name disables summaries and returns (nil, nil).
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai", "ollama":
		if strings.EqualFold(config.Provider, "ollama") && config.BaseURL == "" {
			config.BaseURL = DefaultOllamaURL
		}
		p, err := NewOpenAIProvider(config)
		if err != nil {
			return nil, err
		}
		return p, nil

	case "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, ollama)", config.Provider)
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(modelConfig model.LLMConfig) Config {
	return Config{
		Provider:    modelConfig.Provider,
		Model:       modelConfig.Model,
		APIKey:      modelConfig.APIKey,
		BaseURL:     modelConfig.BaseURL,
		Timeout:     modelConfig.Timeout,
		NoCitations: true,
		MaxTokens:   modelConfig.MaxTokens,
	}
}
