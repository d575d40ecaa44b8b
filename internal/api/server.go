// Package api exposes the HTTP surface: the inference endpoint, chart
// serving, schema introspection, session history, health, metrics, and the
// embedded single-page UI.
package api

import (
	"context"
	"embed"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"data-copilot/internal/common/database"
	apperrors "data-copilot/internal/common/errors"
	"data-copilot/internal/common/logger"
	"data-copilot/internal/common/validation"
	"data-copilot/internal/models"
	"data-copilot/pkg/schema"
)

//go:embed static
var staticFiles embed.FS

// maxRequestBody caps the infer request body at 64 KiB.
const maxRequestBody = 64 << 10

// Processor runs one query through the pipeline.
type Processor interface {
	Process(ctx context.Context, request models.QueryRequest) models.QueryResponse
}

// ChartResolver maps chart filenames to servable paths.
type ChartResolver interface {
	Path(filename string) (string, bool)
}

// TurnReader surfaces persisted session history.
type TurnReader interface {
	TurnsBySession(ctx context.Context, sessionID string, limit int) ([]models.Turn, error)
}

type Server struct {
	processor Processor
	db        *database.SQLiteClient
	charts    ChartResolver
	turns     TurnReader
	errors    *apperrors.ErrorHandler
	logger    logger.Logger
}

func NewServer(processor Processor, db *database.SQLiteClient, charts ChartResolver, turns TurnReader, log logger.Logger) *Server {
	return &Server{
		processor: processor,
		db:        db,
		charts:    charts,
		turns:     turns,
		errors:    apperrors.NewErrorHandler(log),
		logger:    log.With(map[string]interface{}{"component": "api"}),
	}
}

// Routes builds the full handler tree.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/infer", s.handleInfer)
	mux.HandleFunc("GET /api/charts/{filename}", s.handleChart)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/schema", s.handleSchema)
	mux.HandleFunc("GET /api/tables", s.handleTables)
	mux.HandleFunc("GET /api/tables/{name}", s.handleTable)
	mux.HandleFunc("GET /api/history/{session_id}", s.handleHistory)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("GET /", s.uiHandler())

	return s.logRequests(mux)
}

func (s *Server) handleInfer(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	var raw map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		s.errors.WriteHTTP(w, apperrors.NewInvalidRequestError("body must be a JSON object"))
		return
	}
	if err := validation.ValidateInferRequest(raw); err != nil {
		s.errors.WriteHTTP(w, apperrors.NewInvalidRequestError(err.Error()))
		return
	}

	request := models.QueryRequest{}
	if q, ok := raw["query"].(string); ok {
		request.Query = q
	}
	if sid, ok := raw["session_id"].(string); ok {
		request.SessionID = sid
	}

	response := s.processor.Process(r.Context(), request)
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("filename")
	path, ok := s.charts.Path(filename)
	if !ok {
		s.errors.WriteHTTP(w, apperrors.NewChartNotFoundError(filename))
		return
	}
	http.ServeFile(w, r, path)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.CheckHealth(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  err.Error(),
			"time":   time.Now().Format(time.RFC3339),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tables": schema.Tables,
	})
}

func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tables": schema.TableNames(),
	})
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	table, ok := schema.Lookup(name)
	if !ok {
		s.errors.WriteHTTP(w, apperrors.NewTableNotFoundError(name))
		return
	}

	columns, err := s.db.DescribeTable(r.Context(), name)
	if err != nil {
		s.errors.WriteHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"table":       table,
		"liveColumns": columns,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session_id")
	turns, err := s.turns.TurnsBySession(r.Context(), sessionID, 50)
	if err != nil {
		s.errors.WriteHTTP(w, err)
		return
	}
	if turns == nil {
		turns = []models.Turn{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"turns":      turns,
	})
}

func (s *Server) uiHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		content, err := staticFiles.ReadFile("static/index.html")
		if err != nil {
			http.Error(w, "ui unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(content)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request handled", map[string]interface{}{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start).String(),
		})
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
