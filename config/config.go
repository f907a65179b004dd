package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration for the application, loaded from the
// environment. API keys may come from *_FILE secret paths instead of plain
// variables.
type Config struct {
	// Server
	Port         string
	FrontendURLs []string
	FrontendDist string
	Environment  string
	LocalDev     bool

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Identity
	JWTSecret string

	// LLM provider
	LLMModel  string
	LLMAPIKey string
	LLMAPIURL string

	// Image provider
	ImageModel  string
	ImageAPIKey string
	ImageAPIURL string

	// Blob storage
	S3Bucket string

	// Feature flags
	EnableImageGeneration bool
	MockMode              bool
}

// New loads configuration from environment variables.
func New() *Config {
	cfg := &Config{
		Port:         loadEnv("PORT", "5001"),
		FrontendURLs: splitList(loadEnv("FRONTEND_URLS", "http://localhost:5173")),
		FrontendDist: loadEnv("FRONTEND_DIST", "../frontend/dist"),
		Environment:  loadEnv("GO_ENV", "development"),
		LocalDev:     loadEnvAsBool("LOCAL_DEV", false),

		DBHost:     loadEnv("DB_HOST", "localhost"),
		DBPort:     loadEnv("DB_PORT", "5432"),
		DBUser:     loadEnv("DB_USER", "postgres"),
		DBPassword: loadEnv("DB_PASSWORD", ""),
		DBName:     loadEnv("DB_NAME", "recipelab"),
		DBSSLMode:  loadEnv("DB_SSL_MODE", "disable"),

		RedisAddr:     loadEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: loadEnv("REDIS_PASSWORD", ""),
		RedisDB:       loadEnvAsInt("REDIS_DB", 0),

		JWTSecret: loadKey("JWT_SECRET"),

		LLMModel:  loadEnv("LLM_MODEL", "deepseek-chat"),
		LLMAPIKey: loadKey("LLM_API_KEY"),
		LLMAPIURL: loadEnv("LLM_API_URL", "https://api.deepseek.com/v1/chat/completions"),

		ImageModel:  loadEnv("IMAGE_MODEL", "dall-e-3"),
		ImageAPIKey: loadKey("IMAGE_API_KEY"),
		ImageAPIURL: loadEnv("IMAGE_API_URL", "https://api.openai.com/v1/images/generations"),

		S3Bucket: loadEnv("S3_BUCKET_NAME", ""),

		EnableImageGeneration: loadEnvAsBool("ENABLE_IMAGE_GENERATION", false),
		MockMode:              loadEnvAsBool("MOCK_MODE", false),
	}

	return cfg
}

// IsLocal reports whether rate limiting and similar production guards
// should be disabled.
func (c *Config) IsLocal() bool {
	return c.LocalDev || c.Environment == "development"
}

func loadEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func loadEnvAsInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func loadEnvAsBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.EqualFold(v, "true") || v == "1"
	}
	return fallback
}

// loadKey reads a secret from KEY, falling back to the file named by
// KEY_FILE (Docker secrets style).
func loadKey(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	if path := os.Getenv(key + "_FILE"); path != "" {
		if data, err := os.ReadFile(path); err == nil {
			return strings.TrimSpace(string(data))
		}
	}
	return ""
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
