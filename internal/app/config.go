package app

import (
	"advice-app/internal/broadcast"
	"advice-app/internal/config"
	"advice-app/internal/repository/db"
)

// Config holds all application dependencies and configuration
type Config struct {
	// Database interface for data persistence
	DB db.Database
	// Broadcaster fans out streaming progress to live subscribers
	Broadcaster broadcast.Broadcaster
	// Centralized application configuration
	AppConfig *config.AppConfig
}

// NewConfig creates a new application configuration
func NewConfig(database db.Database, broadcaster broadcast.Broadcaster, appConfig *config.AppConfig) *Config {
	return &Config{
		DB:          database,
		Broadcaster: broadcaster,
		AppConfig:   appConfig,
	}
}

// ModelsConfig returns the model catalog
func (c *Config) ModelsConfig() *config.ModelsConfig {
	return c.AppConfig.Models
}
