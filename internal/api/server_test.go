package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"data-copilot/internal/common/config"
	"data-copilot/internal/common/database"
	"data-copilot/internal/common/logger"
	"data-copilot/internal/models"
)

type fakeProcessor struct {
	response models.QueryResponse
	got      models.QueryRequest
}

func (f *fakeProcessor) Process(ctx context.Context, request models.QueryRequest) models.QueryResponse {
	f.got = request
	return f.response
}

type fakeCharts struct {
	files map[string]string
}

func (f *fakeCharts) Path(filename string) (string, bool) {
	path, ok := f.files[filename]
	return path, ok
}

type fakeTurns struct {
	turns []models.Turn
	err   error
}

func (f *fakeTurns) TurnsBySession(ctx context.Context, sessionID string, limit int) ([]models.Turn, error) {
	return f.turns, f.err
}

func newTestServer(t *testing.T, processor Processor) (*Server, *database.SQLiteClient) {
	t.Helper()

	db, err := database.NewSQLite(config.SQLiteConfig{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Init(context.Background(), true))

	return NewServer(processor, db, &fakeCharts{files: map[string]string{}}, &fakeTurns{}, logger.NewTestLogger(t)), db
}

func TestHandleInfer(t *testing.T) {
	processor := &fakeProcessor{
		response: models.QueryResponse{
			Answer:           "West leads with 1200.",
			SQL:              "SELECT 1",
			ChartURL:         "/api/charts/abc.png",
			ProcessingTimeMS: 42,
		},
	}
	server, _ := newTestServer(t, processor)
	handler := server.Routes()

	body := strings.NewReader(`{"query": "revenue by region", "session_id": "s1"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/infer", body)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "revenue by region", processor.got.Query)
	assert.Equal(t, "s1", processor.got.SessionID)

	var response models.QueryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "West leads with 1200.", response.Answer)
	assert.Equal(t, "/api/charts/abc.png", response.ChartURL)
	assert.Equal(t, float64(42), response.ProcessingTimeMS)
}

func TestHandleInfer_BadRequests(t *testing.T) {
	server, _ := newTestServer(t, &fakeProcessor{})
	handler := server.Routes()

	tests := []struct {
		name string
		body string
	}{
		{"not json", "not json at all"},
		{"missing query", `{"session_id": "s1"}`},
		{"empty query", `{"query": ""}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/infer", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "INVALID_REQUEST")
		})
	}
}

func TestHandleChart(t *testing.T) {
	dir := t.TempDir()
	chartFile := filepath.Join(dir, "abc.png")
	require.NoError(t, os.WriteFile(chartFile, []byte("\x89PNG\r\n"), 0o644))

	server, _ := newTestServer(t, &fakeProcessor{})
	server.charts = &fakeCharts{files: map[string]string{"abc.png": chartFile}}
	handler := server.Routes()

	req := httptest.NewRequest(http.MethodGet, "/api/charts/abc.png", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/charts/missing.png", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "CHART_NOT_FOUND")
}

func TestHandleHealth(t *testing.T) {
	server, db := newTestServer(t, &fakeProcessor{})
	handler := server.Routes()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")

	// Break the database and expect 503.
	require.NoError(t, db.Close())
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleSchemaAndTables(t *testing.T) {
	server, _ := newTestServer(t, &fakeProcessor{})
	handler := server.Routes()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/schema", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "order_items")

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tables", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var tables struct {
		Tables []string `json:"tables"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tables))
	assert.Len(t, tables.Tables, 7)
	assert.Contains(t, tables.Tables, "orders")
}

func TestHandleTable(t *testing.T) {
	server, _ := newTestServer(t, &fakeProcessor{})
	handler := server.Routes()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tables/orders", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "customer_id")
	assert.Contains(t, rec.Body.String(), "liveColumns")

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tables/unknown", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "TABLE_NOT_FOUND")
}

func TestHandleHistory(t *testing.T) {
	server, _ := newTestServer(t, &fakeProcessor{})
	server.turns = &fakeTurns{turns: []models.Turn{
		{SessionID: "s1", Query: "revenue by region", Answer: "West leads"},
	}}
	handler := server.Routes()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history/s1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "revenue by region")
}

func TestMetricsAndUI(t *testing.T) {
	server, _ := newTestServer(t, &fakeProcessor{})
	handler := server.Routes()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Data Copilot")
}
