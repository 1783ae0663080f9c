// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the binaries need to wire the data-source
// chain. All fields come from environment variables, with an optional
// .env file loaded first.
type Config struct {
	Port     string
	Platform string
	Version  string

	APIBaseURL string

	// Azure blob storage holding the data lake CSV exports.
	StorageAccount string
	Container      string
	SASToken       string

	// Optional GCS mirror of the same exports.
	GCSBucket string

	UseDataLake     bool
	UseMockFallback bool

	FailureThreshold int
	TableTTL         time.Duration

	GeminiModel string
	UseGemini   bool
}

// Load reads the environment (and a .env file when present) into a
// Config. A missing .env file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		Platform:         getEnv("PLATFORM", "web"),
		Version:          getEnv("APP_VERSION", "dev"),
		APIBaseURL:       getEnv("API_BASE_URL", ""),
		StorageAccount:   getEnv("AZURE_STORAGE_ACCOUNT", ""),
		Container:        getEnv("AZURE_CONTAINER", ""),
		SASToken:         getEnv("AZURE_SAS_TOKEN", ""),
		GCSBucket:        getEnv("GCS_BUCKET", ""),
		UseDataLake:      getBool("USE_DATA_LAKE", true),
		UseMockFallback:  getBool("USE_MOCK_FALLBACK", true),
		FailureThreshold: getInt("FAILURE_THRESHOLD", 3),
		TableTTL:         getDuration("TABLE_TTL", 15*time.Minute),
		GeminiModel:      getEnv("GEMINI_MODEL", ""),
		UseGemini:        os.Getenv("GEMINI_API_KEY") != "",
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("config: API_BASE_URL is required")
	}
	if c.UseDataLake && c.GCSBucket == "" {
		if c.StorageAccount == "" || c.Container == "" {
			return fmt.Errorf("config: USE_DATA_LAKE requires AZURE_STORAGE_ACCOUNT and AZURE_CONTAINER (or GCS_BUCKET)")
		}
	}
	if c.FailureThreshold < 1 {
		return fmt.Errorf("config: FAILURE_THRESHOLD must be at least 1, got %d", c.FailureThreshold)
	}
	if c.TableTTL <= 0 {
		return fmt.Errorf("config: TABLE_TTL must be positive, got %s", c.TableTTL)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
