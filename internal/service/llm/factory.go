package llm

import (
	"fmt"

	"advice-app/internal/config"
)

// Known provider names, matching the provider field of the model catalog.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// NewProvider creates the StreamProvider implementation for a provider name,
// bound to the caller's API key.
func NewProvider(provider, apiKey string, appConfig *config.AppConfig) (StreamProvider, error) {
	switch provider {
	case ProviderGemini:
		return NewGeminiProvider(apiKey, &appConfig.Advice, appConfig.Models), nil
	case ProviderOpenAI:
		return NewOpenAIProvider(apiKey, &appConfig.Advice, appConfig.Models), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
}
