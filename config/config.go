package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log" // Use global logger
)

// Config holds all configuration fields for the application.
// Evolution and N8N values act as first-boot seeds for the options store;
// once seeded, the store is the source of truth (it plays the wp_options role).
type Config struct {
	EvolutionBaseURL  string
	EvolutionAPIKey   string
	EvolutionInstance string
	N8NWebhookURL     string
	DatabaseURL       string
	Port              string
	LogLevel          string
	LogFormat         string // Controls log format (e.g., "console" or "json")
}

// LoadConfig loads configuration from environment variables.
// It attempts to load a .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, but don't fail if it's not present.
	// Environment variables will take precedence.
	err := godotenv.Load()
	if err != nil {
		log.Info().Err(err).Msg("No .env file found or error loading it, relying on environment variables")
	} else {
		log.Info().Msg("Loaded configuration from .env file (if present)")
	}

	cfg := &Config{
		EvolutionBaseURL:  os.Getenv("EVOLUTION_BASE_URL"),
		EvolutionAPIKey:   os.Getenv("EVOLUTION_API_KEY"),
		EvolutionInstance: os.Getenv("EVOLUTION_INSTANCE"),
		N8NWebhookURL:     os.Getenv("N8N_WEBHOOK_URL"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		Port:              os.Getenv("PORT"),
		LogLevel:          os.Getenv("LOG_LEVEL"),
		LogFormat:         os.Getenv("LOG_FORMAT"),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "wpain.db" // Default sqlite file
		log.Info().Str("database_url", cfg.DatabaseURL).Msg("DATABASE_URL not set, using default")
	}

	log.Info().Msg("Configuration loading attempt complete.")
	return cfg, nil
}
