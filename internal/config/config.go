package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	JWKSURL     string
	CORSOrigins string
	TablePrefix string
	// Embedding configuration
	EmbeddingBaseURL string
	EmbeddingAPIKey  string
	EmbeddingModel   string
	EmbeddingDim     int
	// Generation configuration
	AnthropicAPIKey string
	GenerationModel string
	VisionModel     string
	// Ingestion and retrieval tuning
	ChunkTargetSize int
	MatchThreshold  float64
	MatchCount      int
	// Debug flags
	Debug bool // Includes internal error detail in failure responses
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		DatabaseURL: getEnv("DATABASE_URL", ""),
		JWKSURL:     getEnv("JWKS_URL", ""),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix: getTablePrefix(env),
		// Embedding configuration
		EmbeddingBaseURL: getEnv("EMBEDDING_BASE_URL", "https://api.openai.com/v1"),
		EmbeddingAPIKey:  getEnv("EMBEDDING_API_KEY", ""),
		EmbeddingModel:   getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
		EmbeddingDim:     getEnvInt("EMBEDDING_DIM", DefaultEmbeddingDim),
		// Generation configuration
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		GenerationModel: getEnv("GENERATION_MODEL", "claude-haiku-4-5-20251001"),
		VisionModel:     getEnv("VISION_MODEL", "claude-haiku-4-5-20251001"),
		// Ingestion and retrieval tuning
		ChunkTargetSize: getEnvInt("CHUNK_TARGET_SIZE", DefaultChunkTargetSize),
		MatchThreshold:  getEnvFloat("MATCH_THRESHOLD", DefaultMatchThreshold),
		MatchCount:      getEnvInt("MATCH_COUNT", DefaultMatchCount),
		// Debug flag - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
