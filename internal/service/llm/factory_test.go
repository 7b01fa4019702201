package llm

import (
	"testing"

	"advice-app/internal/config"
)

func factoryAppConfig() *config.AppConfig {
	return &config.AppConfig{
		Advice: *testAdviceConfig("http://unused"),
		Models: testModelsConfig(),
	}
}

func TestNewProvider(t *testing.T) {
	appConfig := factoryAppConfig()

	provider, err := NewProvider(ProviderGemini, "key", appConfig)
	if err != nil {
		t.Fatalf("Expected gemini provider, got error: %v", err)
	}
	if _, ok := provider.(*GeminiProvider); !ok {
		t.Errorf("Expected *GeminiProvider, got %T", provider)
	}

	provider, err = NewProvider(ProviderOpenAI, "key", appConfig)
	if err != nil {
		t.Fatalf("Expected openai provider, got error: %v", err)
	}
	if _, ok := provider.(*OpenAIProvider); !ok {
		t.Errorf("Expected *OpenAIProvider, got %T", provider)
	}
}

func TestNewProvider_Unknown(t *testing.T) {
	if _, err := NewProvider("mystery", "key", factoryAppConfig()); err == nil {
		t.Error("Expected error for unknown provider")
	}
}
