package config

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig              `mapstructure:"app"`
	Server   ServerConfig           `mapstructure:"server"`
	Database DatabaseConfig         `mapstructure:"database"`
	LLM      LLMConfig              `mapstructure:"llm"`
	Agents   map[string]StageConfig `mapstructure:"agents"`
	Charts   ChartConfig            `mapstructure:"charts"`
	History  HistoryConfig          `mapstructure:"history"`
	Logging  LoggingConfig          `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address         string `mapstructure:"address"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

type DatabaseConfig struct {
	SQLite SQLiteConfig `mapstructure:"sqlite"`
	Redis  RedisConfig  `mapstructure:"redis"`
}

type SQLiteConfig struct {
	Path           string `mapstructure:"path"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	QueryTimeout   int    `mapstructure:"query_timeout"` // milliseconds
	Seed           bool   `mapstructure:"seed"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// --- LLM Configuration ---

// LLMConfig holds provider credentials and per-stage model selection.
type LLMConfig struct {
	Provider        string  `mapstructure:"provider"` // "openai" or "anthropic"
	OpenAIAPIKey    string  `mapstructure:"openai_api_key"`
	OpenAIModel     string  `mapstructure:"openai_model"`
	AnthropicAPIKey string  `mapstructure:"anthropic_api_key"`
	AnthropicModel  string  `mapstructure:"anthropic_model"`
	MaxTokens       int     `mapstructure:"max_tokens"`
	Temperature     float64 `mapstructure:"temperature"`
}

// StageConfig holds the core settings applicable to every pipeline stage.
type StageConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Timeout     int     `mapstructure:"timeout"`     // milliseconds
	MaxRetries  int     `mapstructure:"max_retries"` // For error handling
	Temperature float64 `mapstructure:"temperature"`
}

// --- Domain Configuration Sections ---

// ChartConfig holds settings for the chart rendering stage.
type ChartConfig struct {
	Dir      string  `mapstructure:"dir"`
	WidthCM  float64 `mapstructure:"width_cm"`
	HeightCM float64 `mapstructure:"height_cm"`
}

// HistoryConfig holds settings for conversation turn persistence.
type HistoryConfig struct {
	MaxTurnsPerSession int `mapstructure:"max_turns_per_session"`
	CacheTTL           int `mapstructure:"cache_ttl"`        // milliseconds
	ResultCacheTTL     int `mapstructure:"result_cache_ttl"` // milliseconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
