package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"data-copilot/internal/common/config"
	apperrors "data-copilot/internal/common/errors"
	"data-copilot/pkg/schema"

	_ "modernc.org/sqlite"
)

// MaxRows caps the number of rows returned to callers from any query.
const MaxRows = 50

// SQLiteClient wraps the SQL database connection
type SQLiteClient struct {
	DB *sql.DB

	// QueryTimeout bounds each RunSelect call. Zero disables the deadline.
	QueryTimeout time.Duration
}

// NewSQLite opens (and creates if needed) the sample dataset database.
func NewSQLite(cfg config.SQLiteConfig) (*SQLiteClient, error) {
	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	if strings.Contains(cfg.Path, ":memory:") {
		// A pooled in-memory database is a different database per connection.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(cfg.MaxConnections)
		db.SetMaxIdleConns(cfg.MaxIdle)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	return &SQLiteClient{
		DB:           db,
		QueryTimeout: config.GetDuration(cfg.QueryTimeout),
	}, nil
}

// NewSQLiteFromDB wraps an existing handle; used by tests.
func NewSQLiteFromDB(db *sql.DB) *SQLiteClient {
	return &SQLiteClient{DB: db}
}

// Init creates the dataset tables and, if seed is requested and the dataset is
// empty, loads the sample rows. Also creates the conversation_turns table.
func (c *SQLiteClient) Init(ctx context.Context, seed bool) error {
	for _, stmt := range splitStatements(schema.DDL) {
		if _, err := c.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create tables: %w", err)
		}
	}

	for _, stmt := range splitStatements(turnsDDL) {
		if _, err := c.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create conversation_turns: %w", err)
		}
	}

	if !seed {
		return nil
	}

	var count int
	if err := c.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM regions").Scan(&count); err != nil {
		return fmt.Errorf("check seed state: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, stmt := range splitStatements(schema.Seed) {
		if _, err := c.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("seed data: %w", err)
		}
	}
	return nil
}

const turnsDDL = `
CREATE TABLE IF NOT EXISTS conversation_turns (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id TEXT NOT NULL,
    query TEXT NOT NULL,
    sql_text TEXT,
    row_count INTEGER DEFAULT 0,
    chart_path TEXT,
    answer TEXT,
    error TEXT,
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_turns_session ON conversation_turns(session_id, created_at)`

func splitStatements(script string) []string {
	parts := strings.Split(script, ";")
	stmts := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}

// Ping tests the database connection
func (c *SQLiteClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// Close closes the database connection
func (c *SQLiteClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// Query executes a query that returns rows
func (c *SQLiteClient) Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return c.DB.QueryContext(ctx, query, args...)
}

// QueryRow executes a query that returns at most one row
func (c *SQLiteClient) QueryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return c.DB.QueryRowContext(ctx, query, args...)
}

// Exec executes a query that doesn't return rows
func (c *SQLiteClient) Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return c.DB.ExecContext(ctx, query, args...)
}

// GetDB returns the underlying *sql.DB for compatibility
func (c *SQLiteClient) GetDB() *sql.DB {
	return c.DB
}

// CheckHealth verifies the dataset is reachable and the orders table exists.
func (c *SQLiteClient) CheckHealth(ctx context.Context) error {
	var count int
	if err := c.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM orders").Scan(&count); err != nil {
		return apperrors.NewDatabaseConnectionFailedError(fmt.Errorf("health query failed: %w", err))
	}
	return nil
}

// TableInfo describes one column as reported by the live database.
type TableInfo struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Nullable   bool   `json:"nullable"`
	PrimaryKey bool   `json:"primaryKey"`
}

// DescribeTable introspects a table via PRAGMA table_info.
func (c *SQLiteClient) DescribeTable(ctx context.Context, table string) ([]TableInfo, error) {
	if _, ok := schema.Lookup(table); !ok && table != "conversation_turns" {
		return nil, fmt.Errorf("table %q does not exist", table)
	}

	rows, err := c.DB.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%q)", table))
	if err != nil {
		return nil, fmt.Errorf("describe table: %w", err)
	}
	defer rows.Close()

	var cols []TableInfo
	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("scan table info: %w", err)
		}
		cols = append(cols, TableInfo{
			Name:       name,
			Type:       ctype,
			Nullable:   notNull == 0,
			PrimaryKey: pk > 0,
		})
	}
	return cols, rows.Err()
}
