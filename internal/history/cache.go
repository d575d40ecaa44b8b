package history

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"data-copilot/internal/common/database"
	"data-copilot/internal/common/logger"
	"data-copilot/internal/models"
)

const (
	historyKeyPrefix = "copilot:history:"
	resultKeyPrefix  = "copilot:result:"
)

// SessionCache keeps each session's recent history in Redis so prompts stay
// history-aware without a SQLite round trip per request. Cache failures are
// logged and ignored; SQLite remains the source of truth.
type SessionCache struct {
	redis  *database.RedisClient
	ttl    time.Duration
	logger logger.Logger
}

func NewSessionCache(redis *database.RedisClient, ttl time.Duration, log logger.Logger) *SessionCache {
	return &SessionCache{
		redis:  redis,
		ttl:    ttl,
		logger: log.With(map[string]interface{}{"component": "session-cache"}),
	}
}

// History returns the cached entries for a session, or nil on miss.
func (c *SessionCache) History(ctx context.Context, sessionID string) []models.HistoryEntry {
	raw, err := c.redis.Get(ctx, historyKeyPrefix+sessionID)
	if err != nil || raw == "" {
		return nil
	}

	var entries []models.HistoryEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		c.logger.WithError(err).Warn("discarding corrupt cached history", map[string]interface{}{
			"sessionId": sessionID,
		})
		return nil
	}
	return entries
}

// SaveHistory replaces a session's cached entries.
func (c *SessionCache) SaveHistory(ctx context.Context, sessionID string, entries []models.HistoryEntry) {
	encoded, err := json.Marshal(entries)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, historyKeyPrefix+sessionID, string(encoded), c.ttl); err != nil {
		c.logger.WithError(err).Warn("failed to cache session history", map[string]interface{}{
			"sessionId": sessionID,
		})
	}
}

// cachedResult is the stored shape of one SELECT's outcome.
type cachedResult struct {
	Rows    []map[string]any        `json:"rows"`
	Summary *database.ResultSummary `json:"summary"`
}

// ResultCache memoizes SELECT results for identical statements. TTLs are
// short; the sample dataset only changes on reseed.
type ResultCache struct {
	redis  *database.RedisClient
	ttl    time.Duration
	logger logger.Logger
}

func NewResultCache(redis *database.RedisClient, ttl time.Duration, log logger.Logger) *ResultCache {
	return &ResultCache{
		redis:  redis,
		ttl:    ttl,
		logger: log.With(map[string]interface{}{"component": "result-cache"}),
	}
}

func resultKey(query string) string {
	digest := sha256.Sum256([]byte(query))
	return resultKeyPrefix + hex.EncodeToString(digest[:])
}

func (c *ResultCache) Get(ctx context.Context, query string) ([]map[string]any, *database.ResultSummary, bool) {
	raw, err := c.redis.Get(ctx, resultKey(query))
	if err != nil || raw == "" {
		return nil, nil, false
	}

	var cached cachedResult
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		return nil, nil, false
	}
	return cached.Rows, cached.Summary, true
}

func (c *ResultCache) Set(ctx context.Context, query string, rows []map[string]any, summary *database.ResultSummary) {
	encoded, err := json.Marshal(cachedResult{Rows: rows, Summary: summary})
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, resultKey(query), string(encoded), c.ttl); err != nil {
		c.logger.WithError(err).Warn("failed to cache query result", nil)
	}
}

// Executor matches the SQL stage's executor dependency.
type Executor interface {
	RunSelect(ctx context.Context, query string) ([]map[string]any, *database.ResultSummary, error)
}

// CachingExecutor serves repeated identical SELECTs from the result cache.
type CachingExecutor struct {
	inner Executor
	cache *ResultCache
}

func NewCachingExecutor(inner Executor, cache *ResultCache) *CachingExecutor {
	return &CachingExecutor{inner: inner, cache: cache}
}

func (e *CachingExecutor) RunSelect(ctx context.Context, query string) ([]map[string]any, *database.ResultSummary, error) {
	if rows, summary, ok := e.cache.Get(ctx, query); ok {
		return rows, summary, nil
	}

	rows, summary, err := e.inner.RunSelect(ctx, query)
	if err != nil {
		return nil, nil, err
	}
	e.cache.Set(ctx, query, rows, summary)
	return rows, summary, nil
}
