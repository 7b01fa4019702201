package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeModelsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "models.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write models file: %v", err)
	}
	return path
}

func TestNewModelsConfig(t *testing.T) {
	path := writeModelsFile(t, `[
		{"id": "gemini-2.0-flash", "name": "Gemini 2.0 Flash", "provider": "gemini", "default": true},
		{"id": "gemini-1.5-pro", "name": "Gemini 1.5 Pro", "provider": "gemini"},
		{"id": "gpt-4o-mini", "name": "GPT-4o mini", "provider": "openai"}
	]`)

	mc, err := NewModelsConfig(path)
	if err != nil {
		t.Fatalf("Failed to load models config: %v", err)
	}

	if len(mc.GetAvailableModels()) != 3 {
		t.Errorf("Expected 3 models, got %d", len(mc.GetAvailableModels()))
	}
}

func TestNewModelsConfig_MissingFile(t *testing.T) {
	if _, err := NewModelsConfig("/nonexistent/models.json"); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestNewModelsConfig_InvalidJSON(t *testing.T) {
	path := writeModelsFile(t, `{not json`)
	if _, err := NewModelsConfig(path); err == nil {
		t.Error("Expected error for invalid JSON")
	}
}

func TestIsValidModel(t *testing.T) {
	mc := NewModelsConfigFromModels([]Model{
		{ID: "gemini-2.0-flash", Provider: "gemini"},
	})

	if !mc.IsValidModel("gemini-2.0-flash") {
		t.Error("Expected known model to be valid")
	}
	if mc.IsValidModel("unknown-model") {
		t.Error("Expected unknown model to be invalid")
	}
}

func TestGetModel(t *testing.T) {
	mc := NewModelsConfigFromModels([]Model{
		{ID: "gpt-4o-mini", Provider: "openai"},
	})

	entry := mc.GetModel("gpt-4o-mini")
	if entry == nil || entry.Provider != "openai" {
		t.Errorf("Expected openai model entry, got %+v", entry)
	}
	if mc.GetModel("missing") != nil {
		t.Error("Expected nil for unknown model")
	}
}

func TestGetDefaultModel(t *testing.T) {
	mc := NewModelsConfigFromModels([]Model{
		{ID: "gemini-1.5-pro", Provider: "gemini"},
		{ID: "gemini-2.0-flash", Provider: "gemini", Default: true},
		{ID: "gpt-4o-mini", Provider: "openai"},
	})

	if got := mc.GetDefaultModel("gemini"); got != "gemini-2.0-flash" {
		t.Errorf("Expected flagged default, got %q", got)
	}
	// No default flag falls back to the first listed model
	if got := mc.GetDefaultModel("openai"); got != "gpt-4o-mini" {
		t.Errorf("Expected first model fallback, got %q", got)
	}
	if got := mc.GetDefaultModel("missing"); got != "" {
		t.Errorf("Expected empty for unknown provider, got %q", got)
	}
}

func TestProviders(t *testing.T) {
	mc := NewModelsConfigFromModels([]Model{
		{ID: "a", Provider: "gemini"},
		{ID: "b", Provider: "openai"},
		{ID: "c", Provider: "gemini"},
	})

	providers := mc.Providers()
	if len(providers) != 2 || providers[0] != "gemini" || providers[1] != "openai" {
		t.Errorf("Expected [gemini openai] in listing order, got %v", providers)
	}
}
