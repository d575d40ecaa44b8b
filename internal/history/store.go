// Package history persists conversation turns and caches session context.
// The durable record lives in SQLite; Redis carries the hot session history
// and a short-lived cache of repeated query results.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"data-copilot/internal/common/database"
	apperrors "data-copilot/internal/common/errors"
	"data-copilot/internal/common/logger"
	"data-copilot/internal/models"
)

// Store reads and writes conversation turns in SQLite.
type Store struct {
	db     *database.SQLiteClient
	logger logger.Logger
}

func NewStore(db *database.SQLiteClient, log logger.Logger) *Store {
	return &Store{
		db:     db,
		logger: log.With(map[string]interface{}{"component": "history"}),
	}
}

// SaveTurn appends one completed turn.
func (s *Store) SaveTurn(ctx context.Context, turn models.Turn) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO conversation_turns
			(session_id, query, sql_text, row_count, chart_path, answer, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		turn.SessionID, turn.Query, turn.SQL, turn.RowCount,
		turn.ChartPath, turn.Answer, turn.Error,
		turn.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return apperrors.NewHistoryStoreFailedError(err)
	}
	return nil
}

// TurnsBySession returns a session's turns, newest first.
func (s *Store) TurnsBySession(ctx context.Context, sessionID string, limit int) ([]models.Turn, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, session_id, query, sql_text, row_count, chart_path, answer, error, created_at
		FROM conversation_turns
		WHERE session_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer rows.Close()

	var turns []models.Turn
	for rows.Next() {
		var t models.Turn
		var sqlText, chartPath, errText sql.NullString
		var createdAt string
		if err := rows.Scan(&t.ID, &t.SessionID, &t.Query, &sqlText, &t.RowCount,
			&chartPath, &t.Answer, &errText, &createdAt); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		t.SQL = sqlText.String
		t.ChartPath = chartPath.String
		t.Error = errText.String
		if parsed, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			t.CreatedAt = parsed
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// RecentHistory returns a session's last turns as prompt-ready history
// entries, oldest first.
func (s *Store) RecentHistory(ctx context.Context, sessionID string, limit int) ([]models.HistoryEntry, error) {
	turns, err := s.TurnsBySession(ctx, sessionID, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]models.HistoryEntry, 0, len(turns))
	for i := len(turns) - 1; i >= 0; i-- {
		entries = append(entries, models.HistoryEntry{
			Query:     turns[i].Query,
			Answer:    turns[i].Answer,
			ChartPath: turns[i].ChartPath,
			Timestamp: turns[i].CreatedAt,
		})
	}
	return entries, nil
}
