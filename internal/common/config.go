package common

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Vision  VisionConfig
	Extract ExtractConfig
}

// VisionConfig holds provider-related configuration
type VisionConfig struct {
	Provider    string // "openai" or "gemini"
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

// ExtractConfig holds pipeline thresholds. VerifyThreshold and
// HeuristicConfidence default to 70 and 75, so heuristic results pass
// verification out of the box; set HEURISTIC_CONFIDENCE at or below
// VERIFY_THRESHOLD to change that.
type ExtractConfig struct {
	VerifyThreshold     int
	HeuristicConfidence int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	provider := getEnv("DOCUSCAN_PROVIDER", "openai")

	apiKeyVar := "OPENAI_API_KEY"
	model := getEnv("OPENAI_MODEL", "gpt-4o-mini")
	if provider == "gemini" {
		apiKeyVar = "GEMINI_API_KEY"
		model = getEnv("GEMINI_MODEL", "gemini-2.0-flash")
	}

	return &Config{
		Vision: VisionConfig{
			Provider:    provider,
			APIKey:      getEnv(apiKeyVar, ""),
			BaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Model:       model,
			Temperature: getEnvAsFloat32("OPENAI_TEMPERATURE", 0.0),
			Timeout:     getEnvAsDuration("VISION_TIMEOUT", 45*time.Second),
		},
		Extract: ExtractConfig{
			VerifyThreshold:     getEnvAsInt("VERIFY_THRESHOLD", 70),
			HeuristicConfidence: getEnvAsInt("HEURISTIC_CONFIDENCE", 75),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration. The credential is checked
// again at call time by the provider client; validating here lets commands
// fail fast before touching any image.
func (c *Config) Validate() error {
	if c.Vision.Provider != "openai" && c.Vision.Provider != "gemini" {
		return ConfigError(fmt.Sprintf("unsupported provider %q", c.Vision.Provider))
	}
	if c.Vision.APIKey == "" {
		if c.Vision.Provider == "gemini" {
			return ConfigError("GEMINI_API_KEY is required")
		}
		return ConfigError("OPENAI_API_KEY is required")
	}
	if c.Extract.VerifyThreshold < 0 || c.Extract.VerifyThreshold > 100 {
		return ConfigError("VERIFY_THRESHOLD must be within [0,100]")
	}
	if c.Extract.HeuristicConfidence < 0 || c.Extract.HeuristicConfidence > 100 {
		return ConfigError("HEURISTIC_CONFIDENCE must be within [0,100]")
	}
	return nil
}
