package database

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ResultSummary mirrors the shape callers expect under df_summary: column
// names, inferred types, row/column counts, the first rows, and null counts.
type ResultSummary struct {
	Columns    []string          `json:"columns"`
	Types      map[string]string `json:"dtypes"`
	Shape      [2]int            `json:"shape"`
	Head       []map[string]any  `json:"head"`
	NullCounts map[string]int    `json:"null_counts"`
}

const summaryHeadRows = 5

// RunSelect executes a read-only query and returns up to MaxRows rows. The
// summary is computed over the full result, so shape, dtypes, and null counts
// describe everything the query matched, not just the returned rows.
func (c *SQLiteClient) RunSelect(ctx context.Context, query string) ([]map[string]any, *ResultSummary, error) {
	if c.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.QueryTimeout)
		defer cancel()
	}

	rows, err := c.DB.QueryContext(ctx, query)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, nil, context.DeadlineExceeded
		}
		return nil, nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	out := make([]map[string]any, 0, 16)
	nulls := make(map[string]int, len(cols))
	types := make(map[string]string, len(cols))
	total := 0

	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		total++

		keep := len(out) < MaxRows
		var row map[string]any
		if keep {
			row = make(map[string]any, len(cols))
		}
		for i, col := range cols {
			v := normalizeValue(values[i])
			if v == nil {
				nulls[col]++
			} else if _, seen := types[col]; !seen {
				types[col] = typeName(v)
			}
			if keep {
				row[col] = v
			}
		}
		if keep {
			out = append(out, row)
		}
	}
	if err := rows.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, nil, context.DeadlineExceeded
		}
		return nil, nil, err
	}

	for _, col := range cols {
		if _, ok := nulls[col]; !ok {
			nulls[col] = 0
		}
		if _, ok := types[col]; !ok {
			types[col] = "null"
		}
	}

	head := out
	if len(head) > summaryHeadRows {
		head = head[:summaryHeadRows]
	}

	summary := &ResultSummary{
		Columns:    cols,
		Types:      types,
		Shape:      [2]int{total, len(cols)},
		Head:       head,
		NullCounts: nulls,
	}
	return out, summary, nil
}

// normalizeValue converts driver values into JSON-friendly types.
func normalizeValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(x)
	case time.Time:
		return x.Format(time.RFC3339)
	case sql.RawBytes:
		return string(x)
	default:
		return v
	}
}

func typeName(v any) string {
	switch v.(type) {
	case int, int32, int64:
		return "integer"
	case float32, float64:
		return "float"
	case bool:
		return "boolean"
	case string:
		return "text"
	default:
		return "object"
	}
}
