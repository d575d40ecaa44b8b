package sqlgen

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"data-copilot/internal/common/database"
	apperrors "data-copilot/internal/common/errors"
	"data-copilot/internal/common/logger"
	"data-copilot/internal/models"
)

type fakeLLM struct {
	response string
	err      error
}

func (f *fakeLLM) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return f.response, f.err
}

type fakeExecutor struct {
	rows    []map[string]any
	summary *database.ResultSummary
	err     error
	gotSQL  string
}

func (f *fakeExecutor) RunSelect(ctx context.Context, query string) ([]map[string]any, *database.ResultSummary, error) {
	f.gotSQL = query
	return f.rows, f.summary, f.err
}

func TestExtractSQL(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
		wantErr  bool
	}{
		{
			name:     "sql code block",
			response: "Here you go:\n```sql\nSELECT * FROM orders;\n```",
			want:     "SELECT * FROM orders",
		},
		{
			name:     "generic code block",
			response: "```\nSELECT COUNT(*) FROM customers\n```",
			want:     "SELECT COUNT(*) FROM customers",
		},
		{
			name:     "json response",
			response: `{"sql": "SELECT product_name FROM products", "explanation": "lists products"}`,
			want:     "SELECT product_name FROM products",
		},
		{
			name:     "raw sql",
			response: "SELECT region_name FROM regions;",
			want:     "SELECT region_name FROM regions",
		},
		{
			name:     "prose only",
			response: "I cannot answer that question.",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractSQL(tt.response)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateSQL(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantErr string
	}{
		{"plain select", "SELECT * FROM orders", ""},
		{"trailing semicolon", "SELECT * FROM orders;", ""},
		{"select with subquery", "SELECT * FROM orders WHERE order_id IN (SELECT order_id FROM order_items)", ""},
		{"column named created_at", "SELECT created_at FROM conversation_turns", ""},
		{"empty", "   ", "empty"},
		{"insert", "INSERT INTO orders VALUES (1)", "must start with SELECT"},
		{"chained statements", "SELECT 1; DROP TABLE orders", "multiple statements"},
		{"embedded delete", "SELECT * FROM orders WHERE 1=1 OR delete FROM x", "forbidden keyword found: delete"},
		{"pragma", "SELECT * FROM orders UNION SELECT * FROM pragma_table_info('orders')", "forbidden keyword"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSQL(tt.query)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestExecute_HappyPath(t *testing.T) {
	fake := &fakeLLM{response: "```sql\nSELECT region_name FROM regions\n```"}
	exec := &fakeExecutor{
		rows:    []map[string]any{{"region_name": "West"}},
		summary: &database.ResultSummary{Columns: []string{"region_name"}, Shape: [2]int{1, 1}},
	}
	h := NewHandler(fake, exec, logger.NewTestLogger(t))

	state := &models.PipelineState{
		UserQuery:      "list regions",
		Classification: models.ClassificationDataQuery,
		Plan: []models.PlanStep{
			{StepNumber: 1, Description: "Create SQL query", RequiresSQL: true},
		},
	}
	require.NoError(t, h.Execute(context.Background(), state))

	assert.Equal(t, "SELECT region_name FROM regions", state.SQL)
	assert.Equal(t, state.SQL, exec.gotSQL)
	assert.Empty(t, state.SQLError)
	assert.Len(t, state.Rows, 1)
	assert.Equal(t, models.StageExplainer, state.NextAgent)
	assert.Contains(t, state.CompletedAgents, StageName)
}

func TestExecute_RoutesToChartWhenPlanned(t *testing.T) {
	fake := &fakeLLM{response: "```sql\nSELECT region_name, COUNT(*) AS n FROM regions GROUP BY region_name\n```"}
	exec := &fakeExecutor{
		rows:    []map[string]any{{"region_name": "West", "n": int64(3)}},
		summary: &database.ResultSummary{Columns: []string{"region_name", "n"}, Shape: [2]int{1, 2}},
	}
	h := NewHandler(fake, exec, logger.NewTestLogger(t))

	state := &models.PipelineState{
		UserQuery: "chart of regions",
		Plan: []models.PlanStep{
			{StepNumber: 1, RequiresSQL: true},
			{StepNumber: 2, RequiresChart: true},
		},
	}
	require.NoError(t, h.Execute(context.Background(), state))
	assert.Equal(t, models.StageChart, state.NextAgent)
}

func TestExecute_InvalidSQLRoutesToExplainer(t *testing.T) {
	fake := &fakeLLM{response: "```sql\nDROP TABLE orders\n```"}
	exec := &fakeExecutor{}
	h := NewHandler(fake, exec, logger.NewTestLogger(t))

	state := &models.PipelineState{UserQuery: "drop everything"}
	err := h.Execute(context.Background(), state)
	require.Error(t, err)

	assert.Equal(t, apperrors.ErrCodeSQLValidationFailed, apperrors.CodeOf(err))
	assert.Contains(t, state.SQLError, "Invalid SQL query")
	assert.Empty(t, exec.gotSQL, "invalid SQL must never execute")
	assert.Equal(t, models.StageExplainer, state.NextAgent)
}

func TestExecute_ExecutionErrorRecorded(t *testing.T) {
	fake := &fakeLLM{response: "SELECT flavor FROM orders"}
	exec := &fakeExecutor{err: errors.New("no such column: flavor")}
	h := NewHandler(fake, exec, logger.NewTestLogger(t))

	state := &models.PipelineState{UserQuery: "revenue by flavor"}
	err := h.Execute(context.Background(), state)
	require.Error(t, err)

	assert.Equal(t, apperrors.ErrCodeSQLExecutionFailed, apperrors.CodeOf(err))
	assert.Contains(t, state.SQLError, "no such column")
	assert.Equal(t, models.StageExplainer, state.NextAgent)
}

func TestExecute_TimeoutRecorded(t *testing.T) {
	fake := &fakeLLM{response: "SELECT * FROM orders"}
	exec := &fakeExecutor{err: context.DeadlineExceeded}
	h := NewHandler(fake, exec, logger.NewTestLogger(t))

	state := &models.PipelineState{UserQuery: "everything"}
	err := h.Execute(context.Background(), state)
	require.Error(t, err)

	assert.Equal(t, apperrors.ErrCodeSQLTimeout, apperrors.CodeOf(err))
	assert.Equal(t, "query timed out", state.SQLError)
	assert.Equal(t, models.StageExplainer, state.NextAgent)
}

func TestExecute_LLMFailurePropagates(t *testing.T) {
	fake := &fakeLLM{err: errors.New("upstream unavailable")}
	h := NewHandler(fake, &fakeExecutor{}, logger.NewTestLogger(t))

	state := &models.PipelineState{UserQuery: "list regions"}
	err := h.Execute(context.Background(), state)
	require.Error(t, err)
	assert.NotEmpty(t, state.SQLError)
}

func TestExecute_AgainstSQLMock(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT region_name FROM regions").
		WillReturnRows(sqlmock.NewRows([]string{"region_name"}).
			AddRow("West").AddRow("East"))

	client := database.NewSQLiteFromDB(db)
	fake := &fakeLLM{response: "```sql\nSELECT region_name FROM regions\n```"}
	h := NewHandler(fake, client, logger.NewTestLogger(t))

	state := &models.PipelineState{UserQuery: "list regions"}
	require.NoError(t, h.Execute(context.Background(), state))

	assert.Empty(t, state.SQLError)
	require.Len(t, state.Rows, 2)
	assert.Equal(t, "West", state.Rows[0]["region_name"])
	require.NotNil(t, state.DFSummary)
	assert.Equal(t, [2]int{2, 1}, state.DFSummary.Shape)
	assert.NoError(t, mock.ExpectationsWereMet())
}

var _ Executor = (*database.SQLiteClient)(nil)
