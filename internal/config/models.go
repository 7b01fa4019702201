package config

import (
	"encoding/json"
	"os"
)

// Model represents an available LLM model
type Model struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
	Default  bool   `json:"default,omitempty"`
}

// ModelsConfig holds the available models configuration
type ModelsConfig struct {
	models []Model
}

// NewModelsConfig creates a new models configuration from a file
func NewModelsConfig(configPath string) (*ModelsConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var models []Model
	err = json.Unmarshal(data, &models)
	if err != nil {
		return nil, err
	}

	return &ModelsConfig{models: models}, nil
}

// NewModelsConfigFromModels creates a models configuration from an in-memory
// list, used by tests and tools that bypass the config file
func NewModelsConfigFromModels(models []Model) *ModelsConfig {
	return &ModelsConfig{models: models}
}

// GetAvailableModels returns the list of available models
func (mc *ModelsConfig) GetAvailableModels() []Model {
	return mc.models
}

// IsValidModel checks if a model ID is in the list of available models
func (mc *ModelsConfig) IsValidModel(modelID string) bool {
	for _, model := range mc.models {
		if model.ID == modelID {
			return true
		}
	}
	return false
}

// GetModel returns the model with the given ID, or nil if unknown
func (mc *ModelsConfig) GetModel(modelID string) *Model {
	for i := range mc.models {
		if mc.models[i].ID == modelID {
			return &mc.models[i]
		}
	}
	return nil
}

// GetDefaultModel returns the model flagged as default for a provider,
// falling back to the provider's first listed model
func (mc *ModelsConfig) GetDefaultModel(provider string) string {
	var first string
	for _, model := range mc.models {
		if model.Provider != provider {
			continue
		}
		if model.Default {
			return model.ID
		}
		if first == "" {
			first = model.ID
		}
	}
	return first
}

// Providers returns the distinct provider names in listing order
func (mc *ModelsConfig) Providers() []string {
	seen := map[string]bool{}
	var providers []string
	for _, model := range mc.models {
		if !seen[model.Provider] {
			seen[model.Provider] = true
			providers = append(providers, model.Provider)
		}
	}
	return providers
}
