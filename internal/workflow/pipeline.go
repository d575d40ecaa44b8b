// Package workflow runs a query through the staged pipeline: plan, SQL,
// chart, explain. Routing between stages follows each stage's next_agent
// hint with a deterministic fallback order.
package workflow

import (
	"context"
	"time"

	"github.com/google/uuid"

	apperrors "data-copilot/internal/common/errors"
	"data-copilot/internal/common/logger"
	"data-copilot/internal/common/metrics"
	"data-copilot/internal/common/observability"
	"data-copilot/internal/models"
)

// Stage is one pipeline step operating on the shared state.
type Stage interface {
	Execute(ctx context.Context, state *models.PipelineState) error
}

// TurnRecorder persists finished turns and supplies prior context.
type TurnRecorder interface {
	SaveTurn(ctx context.Context, turn models.Turn) error
	RecentHistory(ctx context.Context, sessionID string, limit int) ([]models.HistoryEntry, error)
}

// HistoryCache is the optional hot cache in front of the TurnRecorder.
type HistoryCache interface {
	History(ctx context.Context, sessionID string) []models.HistoryEntry
	SaveHistory(ctx context.Context, sessionID string, entries []models.HistoryEntry)
}

type Pipeline struct {
	stages       map[string]Stage
	recorder     TurnRecorder
	cache        HistoryCache
	obs          *observability.Observability
	historyLimit int
	logger       logger.Logger
}

type Options struct {
	Planner   Stage
	SQL       Stage
	Chart     Stage
	Explainer Stage

	Recorder TurnRecorder
	// Cache is nil when Redis is disabled.
	Cache HistoryCache

	Observability *observability.Observability
	HistoryLimit  int
}

func New(opts Options, log logger.Logger) *Pipeline {
	limit := opts.HistoryLimit
	if limit <= 0 {
		limit = 10
	}

	p := &Pipeline{
		stages: map[string]Stage{
			models.StagePlanner:   opts.Planner,
			models.StageSQL:       opts.SQL,
			models.StageChart:     opts.Chart,
			models.StageExplainer: opts.Explainer,
		},
		recorder:     opts.Recorder,
		cache:        opts.Cache,
		obs:          opts.Observability,
		historyLimit: limit,
		logger:       log.With(map[string]interface{}{"component": "pipeline"}),
	}
	return p
}

// Process answers one query. Stage failures degrade the answer rather than
// abort; the first structured error is surfaced in the response alongside
// whatever answer the pipeline still produced.
func (p *Pipeline) Process(ctx context.Context, request models.QueryRequest) models.QueryResponse {
	state := &models.PipelineState{
		UserQuery:       request.Query,
		SessionID:       request.SessionID,
		ProcessingStart: time.Now(),
	}
	if state.SessionID == "" {
		state.SessionID = uuid.New().String()
	}

	p.loadHistory(ctx, state)

	var firstErr error
	for stage := NextStage(state); stage != End; stage = NextStage(state) {
		handler, ok := p.stages[stage]
		if !ok {
			p.logger.Error("no handler for stage", map[string]interface{}{"stage": stage})
			break
		}

		start := time.Now()
		err := handler.Execute(ctx, state)
		metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if state.ProcessingEnd.IsZero() {
		state.ProcessingEnd = time.Now()
	}
	elapsed := state.ProcessingEnd.Sub(state.ProcessingStart)

	metrics.QueriesProcessed.WithLabelValues(string(state.Classification)).Inc()
	if p.obs != nil {
		p.obs.RecordQueryProcessed(ctx, string(state.Classification))
		p.obs.RecordQueryDuration(ctx, elapsed, string(state.Classification))
	}

	response := p.buildResponse(state, firstErr, elapsed)
	p.recordTurn(ctx, state, response)
	return response
}

func (p *Pipeline) buildResponse(state *models.PipelineState, stageErr error, elapsed time.Duration) models.QueryResponse {
	response := models.QueryResponse{
		Answer:           state.Answer,
		SQL:              state.SQL,
		Rows:             state.Rows,
		DFSummary:        state.DFSummary,
		ProcessingTimeMS: float64(elapsed.Milliseconds()),
	}
	if state.ChartPath != "" {
		response.ChartURL = "/api/charts/" + state.ChartPath
	}

	if stageErr != nil {
		response.Error = stageErr.Error()
		code := apperrors.CodeOf(stageErr)
		response.ErrorCode = string(code)
		metrics.QueriesFailed.WithLabelValues(string(code)).Inc()
	}
	return response
}

func (p *Pipeline) loadHistory(ctx context.Context, state *models.PipelineState) {
	if p.cache != nil {
		if entries := p.cache.History(ctx, state.SessionID); entries != nil {
			state.History = entries
			return
		}
	}
	if p.recorder == nil {
		return
	}
	entries, err := p.recorder.RecentHistory(ctx, state.SessionID, p.historyLimit)
	if err != nil {
		p.logger.WithError(err).Warn("failed to load session history", map[string]interface{}{
			"sessionId": state.SessionID,
		})
		return
	}
	state.History = entries
}

func (p *Pipeline) recordTurn(ctx context.Context, state *models.PipelineState, response models.QueryResponse) {
	if p.recorder != nil {
		turn := models.Turn{
			SessionID: state.SessionID,
			Query:     state.UserQuery,
			SQL:       state.SQL,
			RowCount:  len(state.Rows),
			ChartPath: state.ChartPath,
			Answer:    state.Answer,
			Error:     response.Error,
			CreatedAt: time.Now(),
		}
		if err := p.recorder.SaveTurn(ctx, turn); err != nil {
			p.logger.WithError(err).Warn("failed to persist turn", map[string]interface{}{
				"sessionId": state.SessionID,
			})
		}
	}

	if p.cache != nil {
		// The explainer appends the finished turn to state.History.
		entries := state.History
		if len(entries) > p.historyLimit {
			entries = entries[len(entries)-p.historyLimit:]
		}
		p.cache.SaveHistory(ctx, state.SessionID, entries)
	}
}
