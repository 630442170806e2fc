package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Settings holds environment-driven defaults for the CLI. Command-line
// flags take precedence over all of these.
type Settings struct {
	// Provider names a registered provider, or "auto" for cost-ranked
	// selection among available providers.
	Provider string
	// Model overrides the provider's default model. A bare integer picks
	// a model by position in the provider's model list.
	Model string
	// APIKey overrides the provider's environment credential lookup.
	APIKey string
	// BaseURL points the provider at an alternate endpoint.
	BaseURL string
	// CacheEnabled turns on response caching for repeat conversions.
	CacheEnabled bool
	// CacheDir overrides the default cache location.
	CacheDir string
}

// Load reads settings from the environment, pulling in a .env file from
// the working directory when one exists.
func Load() *Settings {
	// Missing .env is the common case and not an error.
	_ = godotenv.Load()

	return &Settings{
		Provider:     envOr("CONFMORPH_LLM_PROVIDER", "auto"),
		Model:        os.Getenv("CONFMORPH_LLM_MODEL"),
		APIKey:       os.Getenv("CONFMORPH_LLM_API_KEY"),
		BaseURL:      os.Getenv("CONFMORPH_LLM_BASE_URL"),
		CacheEnabled: envBool("CONFMORPH_LLM_CACHE"),
		CacheDir:     os.Getenv("CONFMORPH_CACHE_DIR"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}
