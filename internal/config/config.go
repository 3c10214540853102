package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fmuoria/AI-Interview-agent/internal/llm"
)

// Supported session store backends
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config holds application configuration
type Config struct {
	Port                    string `json:"port" yaml:"port"`
	LLMProvider             string `json:"llm_provider" yaml:"llm_provider"`
	Model                   string `json:"model" yaml:"model"`
	GoogleCloudProject      string `json:"google_cloud_project" yaml:"google_cloud_project"`
	GoogleCloudLocation     string `json:"google_cloud_location" yaml:"google_cloud_location"`
	GoogleCredentialsPath   string `json:"google_credentials_path" yaml:"google_credentials_path"`
	GeminiAPIKey            string `json:"gemini_api_key,omitempty" yaml:"gemini_api_key,omitempty"`
	MaxTurns                int    `json:"max_turns" yaml:"max_turns"`
	GeneratorTimeoutSeconds int    `json:"generator_timeout_seconds" yaml:"generator_timeout_seconds"`
	ThreeWayCategories      bool   `json:"three_way_categories" yaml:"three_way_categories"`
	StoreBackend            string `json:"store_backend" yaml:"store_backend"`
	SessionTTLMinutes       int    `json:"session_ttl_minutes" yaml:"session_ttl_minutes"`
	RedisAddr               string `json:"redis_addr" yaml:"redis_addr"`
	RedisPassword           string `json:"redis_password,omitempty" yaml:"redis_password,omitempty"`
	RedisDB                 int    `json:"redis_db" yaml:"redis_db"`
	RateLimitPerMinute      int    `json:"rate_limit_per_minute" yaml:"rate_limit_per_minute"`
	MaxUploadMB             int    `json:"max_upload_mb" yaml:"max_upload_mb"`
}

// DefaultConfig returns a new config with default values
func DefaultConfig() *Config {
	return &Config{
		Port:                    "8080",
		LLMProvider:             llm.ProviderVertex,
		Model:                   "gemini-1.5-flash",
		GoogleCloudLocation:     "us-central1",
		MaxTurns:                11,
		GeneratorTimeoutSeconds: 30,
		StoreBackend:            StoreMemory,
		SessionTTLMinutes:       120,
		RedisAddr:               "localhost:6379",
		RateLimitPerMinute:      60,
		MaxUploadMB:             32,
	}
}

// GetConfigPath returns the path to the configuration file
// On Windows: %APPDATA%/InterviewAgent/config.json
// On Unix: ~/.config/InterviewAgent/config.json
func GetConfigPath() (string, error) {
	var configDir string

	if os.Getenv("APPDATA") != "" {
		configDir = filepath.Join(os.Getenv("APPDATA"), "InterviewAgent")
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", "InterviewAgent")
	}

	return filepath.Join(configDir, "config.json"), nil
}

// Load loads configuration from the default config path, then applies
// environment overrides
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	return LoadFrom(configPath)
}

// LoadFrom loads configuration from a specific path. JSON and YAML files are
// both accepted; the format is chosen by extension.
func LoadFrom(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(path, data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case os.IsNotExist(err):
		// Defaults plus environment when the file doesn't exist
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}
	return config, nil
}

func decode(path string, data []byte, config *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, config)
	default:
		return json.Unmarshal(data, config)
	}
}

// Save saves the configuration to the default config path
func (c *Config) Save() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	return c.SaveTo(configPath)
}

// SaveTo saves the configuration to a specific path
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides configuration values from environment variables
func (c *Config) ApplyEnv() error {
	strVars := map[string]*string{
		"PORT":                           &c.Port,
		"LLM_PROVIDER":                   &c.LLMProvider,
		"LLM_MODEL":                      &c.Model,
		"GOOGLE_CLOUD_PROJECT":           &c.GoogleCloudProject,
		"GOOGLE_CLOUD_LOCATION":          &c.GoogleCloudLocation,
		"GOOGLE_APPLICATION_CREDENTIALS": &c.GoogleCredentialsPath,
		"GEMINI_API_KEY":                 &c.GeminiAPIKey,
		"STORE_BACKEND":                  &c.StoreBackend,
		"REDIS_ADDR":                     &c.RedisAddr,
		"REDIS_PASSWORD":                 &c.RedisPassword,
	}
	for name, dst := range strVars {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	intVars := map[string]*int{
		"MAX_TURNS":                 &c.MaxTurns,
		"GENERATOR_TIMEOUT_SECONDS": &c.GeneratorTimeoutSeconds,
		"SESSION_TTL_MINUTES":       &c.SessionTTLMinutes,
		"RATE_LIMIT_PER_MINUTE":     &c.RateLimitPerMinute,
		"REDIS_DB":                  &c.RedisDB,
	}
	for name, dst := range intVars {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, v, err)
		}
		*dst = n
	}

	if v := os.Getenv("THREE_WAY_CATEGORIES"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid THREE_WAY_CATEGORIES %q: %w", v, err)
		}
		c.ThreeWayCategories = b
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case llm.ProviderVertex:
		if c.GoogleCloudProject == "" {
			return fmt.Errorf("google_cloud_project is required for the vertex provider")
		}
		if c.GoogleCloudLocation == "" {
			return fmt.Errorf("google_cloud_location is required for the vertex provider")
		}
	case llm.ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("gemini_api_key is required for the gemini provider")
		}
	default:
		return fmt.Errorf("unknown llm_provider %q", c.LLMProvider)
	}

	if c.GoogleCredentialsPath != "" {
		if _, err := os.Stat(c.GoogleCredentialsPath); err != nil {
			return fmt.Errorf("google credentials file not found: %w", err)
		}
	}

	switch c.StoreBackend {
	case StoreMemory:
	case StoreRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("redis_addr is required for the redis store")
		}
	default:
		return fmt.Errorf("unknown store_backend %q", c.StoreBackend)
	}

	if c.MaxTurns < 1 {
		return fmt.Errorf("max_turns must be at least 1")
	}
	if c.GeneratorTimeoutSeconds < 1 {
		return fmt.Errorf("generator_timeout_seconds must be at least 1")
	}
	if c.SessionTTLMinutes < 0 {
		return fmt.Errorf("session_ttl_minutes must be non-negative")
	}

	return nil
}

// GeneratorTimeout returns the question generator call budget
func (c *Config) GeneratorTimeout() time.Duration {
	return time.Duration(c.GeneratorTimeoutSeconds) * time.Second
}

// SessionTTL returns the idle lifetime of a session; zero disables eviction
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// MaxUploadBytes returns the multipart form size limit
func (c *Config) MaxUploadBytes() int64 {
	if c.MaxUploadMB <= 0 {
		return 32 << 20
	}
	return int64(c.MaxUploadMB) << 20
}

// Redacted returns a copy with secrets masked, suitable for printing
func (c *Config) Redacted() *Config {
	r := *c
	if r.GeminiAPIKey != "" {
		r.GeminiAPIKey = "****"
	}
	if r.RedisPassword != "" {
		r.RedisPassword = "****"
	}
	return &r
}
