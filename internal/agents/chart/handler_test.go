package chart

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

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

var regionRows = []map[string]any{
	{"region_name": "West", "revenue": 1200.0},
	{"region_name": "East", "revenue": 900.0},
	{"region_name": "North", "revenue": 450.5},
}

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer(t.TempDir(), 25, 15)
	require.NoError(t, err)
	return r
}

func TestExtractConfig(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     models.ChartConfig
	}{
		{
			name:     "json code block",
			response: "```json\n{\"chart_type\": \"line\", \"x_column\": \"order_date\", \"y_column\": \"revenue\", \"title\": \"Revenue over time\"}\n```",
			want:     models.ChartConfig{ChartType: "line", XColumn: "order_date", YColumn: "revenue", Title: "Revenue over time"},
		},
		{
			name:     "bare json",
			response: `{"chart_type": "pie", "x_column": "category_name", "y_column": "total"}`,
			want:     models.ChartConfig{ChartType: "pie", XColumn: "category_name", YColumn: "total", Title: "Data Analysis Chart"},
		},
		{
			name:     "prose fallback",
			response: "Use a bar chart.\nchart_type: bar\nx_column: region_name\ny_column: revenue\ntitle: Revenue by Region",
			want:     models.ChartConfig{ChartType: "bar", XColumn: "region_name", YColumn: "revenue", Title: "Revenue by Region"},
		},
		{
			name:     "unusable response keeps defaults",
			response: "I think a visualization would be nice here.",
			want:     models.ChartConfig{ChartType: "bar", Title: "Data Analysis Chart"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractConfig(tt.response))
		})
	}
}

func TestValidate_ReturnsStructuredCode(t *testing.T) {
	err := Validate(models.ChartConfig{ChartType: "treemap", XColumn: "a", YColumn: "b"}, regionRows)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeChartConfigInvalid, apperrors.CodeOf(err))

	assert.NoError(t, Validate(models.ChartConfig{ChartType: "bar", XColumn: "region_name", YColumn: "revenue"}, regionRows))
}

func TestInferChartType(t *testing.T) {
	dateRows := []map[string]any{
		{"order_date": "2024-01-01", "revenue": 10.0},
		{"order_date": "2024-01-02", "revenue": 20.0},
	}
	assert.Equal(t, "line", InferChartType("order_date", "revenue", dateRows))
	assert.Equal(t, "bar", InferChartType("region_name", "revenue", regionRows))

	numericRows := []map[string]any{
		{"price": 10.0, "quantity": 3.0},
		{"price": 25.0, "quantity": 1.0},
	}
	assert.Equal(t, "scatter", InferChartType("price", "quantity", numericRows))
}

func TestRenderer_AllChartTypes(t *testing.T) {
	r := newTestRenderer(t)

	for _, chartType := range []string{"bar", "line", "scatter", "pie"} {
		t.Run(chartType, func(t *testing.T) {
			filename, err := r.Render(models.ChartConfig{
				ChartType: chartType,
				XColumn:   "region_name",
				YColumn:   "revenue",
				Title:     "Revenue by Region",
			}, regionRows)
			require.NoError(t, err)
			assert.Equal(t, ".png", filepath.Ext(filename))

			full, ok := r.Path(filename)
			require.True(t, ok)
			info, err := os.Stat(full)
			require.NoError(t, err)
			assert.Greater(t, info.Size(), int64(0))
		})
	}

	t.Run("histogram", func(t *testing.T) {
		filename, err := r.Render(models.ChartConfig{
			ChartType: "histogram",
			XColumn:   "revenue",
			YColumn:   "revenue",
		}, regionRows)
		require.NoError(t, err)
		_, ok := r.Path(filename)
		assert.True(t, ok)
	})
}

func TestRenderer_Errors(t *testing.T) {
	r := newTestRenderer(t)

	_, err := r.Render(models.ChartConfig{ChartType: "bar", XColumn: "region_name", YColumn: "revenue"}, nil)
	assert.Error(t, err)

	_, err = r.Render(models.ChartConfig{ChartType: "bar", XColumn: "missing", YColumn: "revenue"}, regionRows)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found in data")

	_, err = r.Render(models.ChartConfig{ChartType: "treemap", XColumn: "region_name", YColumn: "revenue"}, regionRows)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported chart type")
}

func TestRenderer_PathRejectsTraversal(t *testing.T) {
	r := newTestRenderer(t)

	_, ok := r.Path("../secrets.png")
	assert.False(t, ok)
	_, ok = r.Path("chart.txt")
	assert.False(t, ok)
	_, ok = r.Path("unknown.png")
	assert.False(t, ok)
}

func TestExecute_RendersFromLLMConfig(t *testing.T) {
	fake := &fakeLLM{response: `{"chart_type": "bar", "x_column": "region_name", "y_column": "revenue", "title": "Revenue"}`}
	h := NewHandler(fake, newTestRenderer(t), logger.NewTestLogger(t))

	state := &models.PipelineState{
		UserQuery: "chart revenue by region",
		SQL:       "SELECT region_name, revenue FROM t",
		Rows:      regionRows,
		DFSummary: &database.ResultSummary{Columns: []string{"region_name", "revenue"}},
	}
	require.NoError(t, h.Execute(context.Background(), state))

	assert.NotEmpty(t, state.ChartPath)
	assert.Empty(t, state.ChartError)
	assert.Equal(t, models.StageExplainer, state.NextAgent)
	assert.Contains(t, state.CompletedAgents, StageName)
}

func TestExecute_FallsBackOnLLMFailure(t *testing.T) {
	fake := &fakeLLM{err: errors.New("upstream unavailable")}
	h := NewHandler(fake, newTestRenderer(t), logger.NewTestLogger(t))

	state := &models.PipelineState{
		UserQuery: "chart revenue by region",
		Rows:      regionRows,
		DFSummary: &database.ResultSummary{Columns: []string{"region_name", "revenue"}},
	}
	require.NoError(t, h.Execute(context.Background(), state))

	assert.NotEmpty(t, state.ChartPath, "inference fallback should still render")
	assert.Empty(t, state.ChartError)
}

func TestExecute_RenderFailureSurfacesCode(t *testing.T) {
	// The suggested config names a column the rows do not have, and the rows
	// carry no numeric column for inference to fall back on.
	fake := &fakeLLM{response: `{"chart_type": "bar", "x_column": "label", "y_column": "missing"}`}
	h := NewHandler(fake, newTestRenderer(t), logger.NewTestLogger(t))

	state := &models.PipelineState{
		UserQuery: "chart the labels",
		Rows:      []map[string]any{{"label": "alpha"}},
		DFSummary: &database.ResultSummary{Columns: []string{"label"}},
	}
	err := h.Execute(context.Background(), state)
	require.Error(t, err)

	assert.Equal(t, apperrors.ErrCodeChartRenderFailed, apperrors.CodeOf(err))
	assert.NotEmpty(t, state.ChartError)
	assert.Empty(t, state.ChartPath)
	assert.Equal(t, models.StageExplainer, state.NextAgent, "the explainer still answers the turn")
}

func TestExecute_SkipsWithoutRows(t *testing.T) {
	fake := &fakeLLM{}
	h := NewHandler(fake, newTestRenderer(t), logger.NewTestLogger(t))

	state := &models.PipelineState{UserQuery: "chart nothing"}
	require.NoError(t, h.Execute(context.Background(), state))

	assert.Empty(t, state.ChartPath)
	assert.Empty(t, state.ChartError)
	assert.Equal(t, models.StageExplainer, state.NextAgent)
}
