// internal/appconfig/appconfig.go
// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DefaultConfigPath is the default path to the application's configuration file.
	DefaultConfigPath = "config/config.json"
	// defaultRequestTimeout is the default timeout for HTTP requests.
	defaultRequestTimeout = 120 * time.Second
	// defaultSampleLimit caps how many test samples a single experiment accepts.
	// The same limit is enforced by the run command and the API server.
	defaultSampleLimit = 10
	// defaultListenAddr is where the API server listens when none is configured.
	defaultListenAddr = "0.0.0.0:8000"
	// defaultAPIBase is where the CLI reaches the API server by default.
	defaultAPIBase = "http://localhost:8000"

	openAIKeyPrefix    = "sk-"
	anthropicKeyPrefix = "sk-ant-"
)

// Config represents the top-level application configuration.
type Config struct {
	ListenAddr     string   `json:"listenAddr,omitempty"`
	APIBase        string   `json:"apiBase,omitempty"`
	DatabasePath   string   `json:"databasePath,omitempty"`
	RatingsFile    string   `json:"ratingsFile,omitempty"`
	PricingFile    string   `json:"pricingFile,omitempty"`
	LogFile        string   `json:"logFile,omitempty"`
	TimeoutSeconds int      `json:"timeout,omitempty"`
	SampleLimit    int      `json:"sampleLimit,omitempty"`
	PreloadRatings bool     `json:"preloadRatings"`
	CORSOrigins    []string `json:"corsOrigins,omitempty"`
	Debug          bool     `json:"debug"`
	ConfigPath     string   `json:"-"`
}

// Keys holds the per-provider API credentials sourced from the environment.
type Keys struct {
	OpenAI    string
	Anthropic string
	Together  string
}

// RequestTimeout returns the timeout duration for HTTP requests, falling back to the default if not specified.
func (c Config) RequestTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultRequestTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// MaxSamples returns the per-experiment sample cap.
func (c Config) MaxSamples() int {
	if c.SampleLimit <= 0 {
		return defaultSampleLimit
	}
	return c.SampleLimit
}

// ListenAddress returns the address the API server binds to.
func (c Config) ListenAddress() string {
	if addr := strings.TrimSpace(c.ListenAddr); addr != "" {
		return addr
	}
	return defaultListenAddr
}

// APIBaseURL returns the base URL the CLI uses to reach the API server.
func (c Config) APIBaseURL() string {
	if base := strings.TrimSpace(c.APIBase); base != "" {
		return strings.TrimRight(base, "/")
	}
	return defaultAPIBase
}

// LogFilePath returns the path to the application log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if path := c.LogFile; strings.TrimSpace(path) != "" {
		return path
	}
	return "promptlab.log"
}

// DatabaseFilePath returns the sqlite database location for the API server.
func (c Config) DatabaseFilePath() string {
	if path := strings.TrimSpace(c.DatabasePath); path != "" {
		return path
	}
	return "promptlabData/experiments.db"
}

// RatingsFilePath returns where the local manual-rating overlay is persisted.
func (c Config) RatingsFilePath() string {
	if path := strings.TrimSpace(c.RatingsFile); path != "" {
		return path
	}
	return "promptlabData/ratings.json"
}

// AllowedOrigins returns the CORS origins the API server accepts.
func (c Config) AllowedOrigins() []string {
	if len(c.CORSOrigins) > 0 {
		return c.CORSOrigins
	}
	return []string{
		"http://localhost:3000",
		"http://localhost:5173",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
	}
}

// Load reads a JSON configuration file into a Config. A missing file is not an
// error; defaults apply for every field.
func Load(path string) (*Config, error) {
	cfg := &Config{ConfigPath: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.ConfigPath = path
	return cfg, nil
}

// LoadKeys reads provider credentials from the environment, loading a local
// .env file first when one exists.
func LoadKeys() Keys {
	_ = godotenv.Load()
	return Keys{
		OpenAI:    strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		Anthropic: strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY")),
		Together:  strings.TrimSpace(os.Getenv("TOGETHER_API_KEY")),
	}
}

// ValidateKey checks the stored credential for a provider before it is sent
// anywhere. An empty or malformed key is a validation problem, not a network
// one, so it is reported immediately.
func ValidateKey(provider, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("%s API key is not configured", provider)
	}
	switch provider {
	case "openai":
		if strings.HasPrefix(key, anthropicKeyPrefix) || !strings.HasPrefix(key, openAIKeyPrefix) {
			return fmt.Errorf("openai API key must start with %q", openAIKeyPrefix)
		}
	case "anthropic":
		if !strings.HasPrefix(key, anthropicKeyPrefix) {
			return fmt.Errorf("anthropic API key must start with %q", anthropicKeyPrefix)
		}
	}
	return nil
}
