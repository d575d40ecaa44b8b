package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like LLM_OPENAI_API_KEY
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment-specific overlay, ignored if not present
	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig()

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	// Try multiple paths (for running from different directories)
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string config values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// overrideEmptyConfig fills credential fields from well-known env vars if the
// config file left them empty.
func overrideEmptyConfig(cfg *Config) {
	if cfg.LLM.OpenAIAPIKey == "" {
		if val := os.Getenv("OPENAI_API_KEY"); val != "" {
			cfg.LLM.OpenAIAPIKey = val
		}
	}
	if cfg.LLM.AnthropicAPIKey == "" {
		if val := os.Getenv("ANTHROPIC_API_KEY"); val != "" {
			cfg.LLM.AnthropicAPIKey = val
		}
	}
	if val := os.Getenv("OPENAI_MODEL"); val != "" && cfg.LLM.OpenAIModel == "" {
		cfg.LLM.OpenAIModel = val
	}
	if val := os.Getenv("ANTHROPIC_MODEL"); val != "" && cfg.LLM.AnthropicModel == "" {
		cfg.LLM.AnthropicModel = val
	}
	if cfg.Database.SQLite.Path == "" {
		if val := os.Getenv("DATABASE_PATH"); val != "" {
			cfg.Database.SQLite.Path = val
		}
	}
	if cfg.Charts.Dir == "" {
		if val := os.Getenv("CHART_DIR"); val != "" {
			cfg.Charts.Dir = val
		}
	}
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "data-copilot"
	}

	// Server defaults
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8000"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 120000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10000
	}

	// Database defaults
	if cfg.Database.SQLite.Path == "" {
		cfg.Database.SQLite.Path = "./app.db"
	}
	if cfg.Database.SQLite.MaxConnections == 0 {
		cfg.Database.SQLite.MaxConnections = 10
	}
	if cfg.Database.SQLite.MaxIdle == 0 {
		cfg.Database.SQLite.MaxIdle = 2
	}
	if cfg.Database.SQLite.QueryTimeout == 0 {
		cfg.Database.SQLite.QueryTimeout = 30000
	}

	// LLM defaults
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "openai"
	}
	if cfg.LLM.OpenAIModel == "" {
		cfg.LLM.OpenAIModel = "gpt-4o"
	}
	if cfg.LLM.AnthropicModel == "" {
		cfg.LLM.AnthropicModel = "claude-sonnet-4-20250514"
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 1024
	}

	// Chart defaults
	if cfg.Charts.Dir == "" {
		cfg.Charts.Dir = "./charts"
	}
	if cfg.Charts.WidthCM == 0 {
		cfg.Charts.WidthCM = 25
	}
	if cfg.Charts.HeightCM == 0 {
		cfg.Charts.HeightCM = 15
	}

	// History defaults
	if cfg.History.MaxTurnsPerSession == 0 {
		cfg.History.MaxTurnsPerSession = 50
	}
	if cfg.History.CacheTTL == 0 {
		cfg.History.CacheTTL = 1800000
	}
	if cfg.History.ResultCacheTTL == 0 {
		cfg.History.ResultCacheTTL = 60000
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	// Stage defaults
	for key, stage := range cfg.Agents {
		if stage.Timeout == 0 {
			stage.Timeout = 30000
		}
		if stage.MaxRetries == 0 {
			stage.MaxRetries = 3
		}
		cfg.Agents[key] = stage
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	switch cfg.LLM.Provider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("llm.provider must be \"openai\" or \"anthropic\", got %q", cfg.LLM.Provider)
	}

	if cfg.Database.SQLite.Path == "" {
		return fmt.Errorf("database.sqlite.path is required")
	}

	if cfg.Database.Redis.Enabled && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required when redis is enabled")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetStageConfig retrieves stage-specific configuration with fallback to
// defaults. The fallback temperature is -1 so llm.New keeps the provider
// default instead of treating an unconfigured stage as temperature 0.
func GetStageConfig(cfg *Config, stageName string) StageConfig {
	if stage, exists := cfg.Agents[stageName]; exists {
		return stage
	}

	return StageConfig{
		Enabled:     true,
		Timeout:     30000,
		MaxRetries:  3,
		Temperature: -1,
	}
}
