package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"advice-app/internal/logger"

	"github.com/sirupsen/logrus"
)

// AppConfig holds all application configuration
type AppConfig struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Advice   AdviceConfig
	Models   *ModelsConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port string
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig holds the broadcast backend connection configuration
type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
}

// AdviceConfig holds the advice streaming pipeline configuration
type AdviceConfig struct {
	// DailyLimit is the number of advice requests a non-exempt user may
	// submit per calendar day.
	DailyLimit int
	// CheckpointInterval is the number of fragments between durable
	// persists of the accumulated response.
	CheckpointInterval int
	// GeminiBaseURL is the endpoint prefix for the raw-HTTP provider.
	GeminiBaseURL string
	// OpenAIBaseURL overrides the SDK provider endpoint when set.
	OpenAIBaseURL string
	// ConnectTimeout bounds connection establishment to a provider.
	ConnectTimeout time.Duration
	// ReadTimeout bounds the total lifetime of one streaming response.
	ReadTimeout time.Duration
	// MaxTokens is passed to providers that require an output bound.
	MaxTokens int
}

// LoadConfig loads and validates application configuration from environment
func LoadConfig() (*AppConfig, error) {
	config := &AppConfig{}

	config.Server = ServerConfig{
		Port: getEnvOrDefault("SERVER_PORT", "8080"),
	}

	config.Database = DatabaseConfig{
		Host:     getEnvOrDefault("DB_HOST", "postgres"),
		Port:     getEnvOrDefault("DB_PORT", "5432"),
		User:     getEnvOrDefault("DB_USER", "postgres"),
		Password: getEnvOrDefault("DB_PASSWORD", "postgres"),
		Name:     getEnvOrDefault("DB_NAME", "adviceapp"),
		SSLMode:  getEnvOrDefault("DB_SSLMODE", "disable"),
	}

	config.Redis = RedisConfig{
		Addr:     getEnvOrDefault("REDIS_ADDR", "redis:6379"),
		Username: os.Getenv("REDIS_USERNAME"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       getEnvAsInt("REDIS_DB", 0),
	}

	config.Advice = AdviceConfig{
		DailyLimit:         getEnvAsInt("ADVICE_DAILY_LIMIT", 20),
		CheckpointInterval: getEnvAsInt("ADVICE_CHECKPOINT_INTERVAL", 10),
		GeminiBaseURL:      getEnvOrDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		OpenAIBaseURL:      os.Getenv("OPENAI_BASE_URL"),
		ConnectTimeout:     getEnvAsDuration("PROVIDER_CONNECT_TIMEOUT", 10*time.Second),
		ReadTimeout:        getEnvAsDuration("PROVIDER_READ_TIMEOUT", 300*time.Second),
		MaxTokens:          getEnvAsInt("PROVIDER_MAX_TOKENS", 4096),
	}

	if config.Advice.DailyLimit <= 0 {
		return nil, fmt.Errorf("ADVICE_DAILY_LIMIT must be positive, got %d", config.Advice.DailyLimit)
	}
	if config.Advice.CheckpointInterval <= 0 {
		return nil, fmt.Errorf("ADVICE_CHECKPOINT_INTERVAL must be positive, got %d", config.Advice.CheckpointInterval)
	}

	modelsConfigPath := getEnvOrDefault("MODELS_CONFIG_PATH", filepath.Join("config", "models.json"))
	modelsConfig, err := NewModelsConfig(modelsConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load models config: %w", err)
	}
	config.Models = modelsConfig

	return config, nil
}

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Helper functions for environment variable parsing

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{"key": key, "default": defaultValue}).Warn("Invalid integer value, using default")
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{"key": key, "default": defaultValue}).Warn("Invalid duration value, using default")
		return defaultValue
	}
	return value
}
