// Package chart asks an LLM how to visualize a result set, validates the
// suggestion, and renders it to a PNG. A failed chart never blocks the
// answer; the error is recorded on the state and surfaced as a structured
// code while the pipeline moves on to the explainer.
package chart

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	apperrors "data-copilot/internal/common/errors"
	"data-copilot/internal/common/llm"
	"data-copilot/internal/common/logger"
	"data-copilot/internal/common/metrics"
	"data-copilot/internal/models"
)

const StageName = models.StageChart

const systemPrompt = "You are a data visualization assistant. Given a question, the SQL that " +
	"answered it, and sample rows, reply with a JSON object: " +
	`{"chart_type": one of bar|line|scatter|pie|histogram, "x_column": ..., "y_column": ..., "title": ...}. ` +
	"Column names must come from the sample rows."

type Handler struct {
	client   llm.Client
	renderer *Renderer
	logger   logger.Logger
}

func NewHandler(client llm.Client, renderer *Renderer, log logger.Logger) *Handler {
	return &Handler{
		client:   client,
		renderer: renderer,
		logger:   log.With(map[string]interface{}{"stage": StageName}),
	}
}

// Execute renders a chart for the current rows. Always routes to the
// explainer afterwards.
func (h *Handler) Execute(ctx context.Context, state *models.PipelineState) error {
	defer state.MarkCompleted(StageName)
	state.NextAgent = models.StageExplainer

	// Nothing to chart when SQL produced no data.
	if len(state.Rows) == 0 || state.SQLError != "" {
		return nil
	}

	config := h.resolveConfig(ctx, state)
	filename, err := h.renderer.Render(config, state.Rows)
	if err != nil {
		state.ChartError = err.Error()
		h.logger.WithError(err).Warn("chart rendering failed", map[string]interface{}{
			"chartType": config.ChartType,
		})
		return apperrors.NewChartRenderFailedError(err)
	}

	state.ChartPath = filename
	metrics.ChartsRendered.Inc()
	h.logger.Debug("chart rendered", map[string]interface{}{
		"chartType": config.ChartType,
		"file":      filename,
	})
	return nil
}

// resolveConfig asks the LLM for a chart config and falls back to data-driven
// inference when the response is unusable.
func (h *Handler) resolveConfig(ctx context.Context, state *models.PipelineState) models.ChartConfig {
	columns := resultColumns(state)

	response, err := h.client.Complete(ctx, systemPrompt, h.buildPrompt(state))
	if err == nil {
		config := ExtractConfig(response)
		if Validate(config, state.Rows) == nil && hasColumns(config, state.Rows) {
			return config
		}
		h.logger.Warn("chart config from model unusable, inferring from data", map[string]interface{}{
			"response": response,
		})
	} else {
		h.logger.WithError(err).Warn("chart config request failed, inferring from data", nil)
	}

	return InferConfig(columns, state.Rows)
}

func (h *Handler) buildPrompt(state *models.PipelineState) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Question: %s\n", state.UserQuery)
	fmt.Fprintf(&b, "SQL: %s\n", state.SQL)

	sample := state.Rows
	if len(sample) > 5 {
		sample = sample[:5]
	}
	if encoded, err := json.Marshal(sample); err == nil {
		fmt.Fprintf(&b, "Sample rows: %s\n", encoded)
	}
	return b.String()
}

func hasColumns(config models.ChartConfig, rows []map[string]any) bool {
	if len(rows) == 0 {
		return false
	}
	if _, ok := rows[0][config.XColumn]; !ok {
		return false
	}
	if config.ChartType == "histogram" {
		return true
	}
	_, ok := rows[0][config.YColumn]
	return ok
}

func resultColumns(state *models.PipelineState) []string {
	if state.DFSummary != nil && len(state.DFSummary.Columns) > 0 {
		return state.DFSummary.Columns
	}
	if len(state.Rows) == 0 {
		return nil
	}
	columns := make([]string, 0, len(state.Rows[0]))
	for column := range state.Rows[0] {
		columns = append(columns, column)
	}
	return columns
}
