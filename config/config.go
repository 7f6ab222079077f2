package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server configuration
	Port        int
	Environment string

	// PriceLabs configuration
	PriceLabs PriceLabsConfig

	// LLM configuration
	LLM LLMConfig

	// Database configuration
	DatabaseHost     string
	DatabasePort     string
	DatabaseName     string
	DatabaseUser     string
	DatabasePassword string

	// Redis configuration
	RedisHost     string
	RedisPassword string
	RedisPort     string

	// Chat configuration
	Chat ChatConfig
}

// PriceLabsConfig holds external pricing API configuration
type PriceLabsConfig struct {
	BaseURL   string
	APIKey    string
	ListingID string
	PMS       string
	// Bedrooms is the preferred bedroom-category key for market lookups
	Bedrooms string
}

// LLMConfig holds LLM service configuration
type LLMConfig struct {
	Enabled  bool
	Endpoint string
	APIKey   string
	Model    string

	// MaxNightsPerRequest caps how many nights a single analyze call sends to the LLM
	MaxNightsPerRequest int

	// RequestsPerSecond throttles outbound LLM calls
	RequestsPerSecond float64
}

// ChatConfig holds conversation handling parameters
type ChatConfig struct {
	// MaxHistoryMessages is the per-conversation retention window
	MaxHistoryMessages int
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	// Load .env file if exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		Port:        getEnvInt("PORT", 8080),
		Environment: getEnvOrDefault("ENVIRONMENT", "development"),

		PriceLabs: PriceLabsConfig{
			BaseURL:   getEnvOrDefault("PRICELABS_BASE_URL", "https://api.pricelabs.co"),
			APIKey:    os.Getenv("PRICELABS_API_KEY"),
			ListingID: os.Getenv("PRICELABS_LISTING_ID"),
			PMS:       getEnvOrDefault("PRICELABS_PMS", "airbnb"),
			Bedrooms:  getEnvOrDefault("PROPERTY_BEDROOMS", "3"),
		},

		LLM: LLMConfig{
			Enabled:             getEnvOrDefault("LLM_ENABLED", "true") == "true",
			Endpoint:            getEnvOrDefault("LLM_ENDPOINT", "https://api.openai.com/v1"),
			APIKey:              os.Getenv("LLM_API_KEY"),
			Model:               getEnvOrDefault("LLM_MODEL", "gpt-4"),
			MaxNightsPerRequest: getEnvInt("LLM_MAX_NIGHTS_PER_REQUEST", 5),
			RequestsPerSecond:   getEnvFloat("LLM_REQUESTS_PER_SECOND", 1.0),
		},

		DatabaseHost:     getEnvOrDefault("DB_HOST", "localhost"),
		DatabasePort:     getEnvOrDefault("DB_PORT", "5432"),
		DatabaseName:     getEnvOrDefault("DB_NAME", "rental_pricing"),
		DatabaseUser:     getEnvOrDefault("DB_USER", "rental"),
		DatabasePassword: getEnvOrDefault("DB_PASSWORD", "rental123"),

		RedisHost:     getEnvOrDefault("REDIS_HOST", "localhost"),
		RedisPort:     getEnvOrDefault("REDIS_PORT", "6379"),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),

		Chat: ChatConfig{
			MaxHistoryMessages: getEnvInt("CHAT_MAX_HISTORY_MESSAGES", 20),
		},
	}
}

// IsProduction reports whether the service runs with production settings
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnvInt gets environment variable as int or returns default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var intValue int
	if _, err := fmt.Sscanf(value, "%d", &intValue); err != nil {
		return defaultValue
	}
	return intValue
}

// getEnvFloat gets environment variable as float64 or returns default value
func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var floatValue float64
	if _, err := fmt.Sscanf(value, "%f", &floatValue); err != nil {
		return defaultValue
	}
	return floatValue
}

// getEnvOrDefault gets environment variable or returns default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
