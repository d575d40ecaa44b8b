package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetStageConfig(t *testing.T) {
	cfg := &Config{Agents: map[string]StageConfig{
		"sql": {Enabled: true, Timeout: 15000, MaxRetries: 2, Temperature: 0.2},
	}}

	sql := GetStageConfig(cfg, "sql")
	assert.Equal(t, 0.2, sql.Temperature)
	assert.Equal(t, 15000, sql.Timeout)

	missing := GetStageConfig(cfg, "chart")
	assert.Equal(t, -1.0, missing.Temperature, "unconfigured stages keep the provider default temperature")
	assert.Equal(t, 30000, missing.Timeout)
	assert.Equal(t, 3, missing.MaxRetries)
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	assert.Equal(t, ":8000", cfg.Server.Address)
	assert.Equal(t, "./app.db", cfg.Database.SQLite.Path)
	assert.Equal(t, 30000, cfg.Database.SQLite.QueryTimeout)
	assert.Equal(t, "gpt-4o", cfg.LLM.OpenAIModel)
	assert.Equal(t, 50, cfg.History.MaxTurnsPerSession)
}
