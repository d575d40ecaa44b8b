// Package sqlgen generates and executes the SQL for a data question. The
// model's response is treated as hostile input: it is parsed, validated as
// a single read-only SELECT, and only then run against the database.
package sqlgen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"data-copilot/internal/common/database"
	apperrors "data-copilot/internal/common/errors"
	"data-copilot/internal/common/llm"
	"data-copilot/internal/common/logger"
	"data-copilot/internal/models"
	"data-copilot/pkg/schema"
)

const StageName = models.StageSQL

const systemPrompt = "You are a SQL generation assistant for a SQLite e-commerce database. " +
	"Return exactly one SELECT statement that answers the user's question, inside a " +
	"```sql code block. Never modify data, never use multiple statements."

// Executor runs validated SELECT statements. Satisfied by SQLiteClient;
// tests substitute failures through it.
type Executor interface {
	RunSelect(ctx context.Context, query string) ([]map[string]any, *database.ResultSummary, error)
}

type Handler struct {
	client   llm.Client
	executor Executor
	logger   logger.Logger
}

func NewHandler(client llm.Client, executor Executor, log logger.Logger) *Handler {
	return &Handler{
		client:   client,
		executor: executor,
		logger:   log.With(map[string]interface{}{"stage": StageName}),
	}
}

// Execute generates SQL for the question, validates it, and runs it. Every
// failure is recorded on the state and routed to the explainer so the turn
// still gets a narrated answer; the returned structured error carries the
// code the response and failure metrics report.
func (h *Handler) Execute(ctx context.Context, state *models.PipelineState) error {
	defer state.MarkCompleted(StageName)
	state.NextAgent = models.StageExplainer

	response, err := h.client.Complete(ctx, systemPrompt, h.buildPrompt(state))
	if err != nil {
		state.SQLError = fmt.Sprintf("SQL generation failed: %v", err)
		return apperrors.NewSQLGenerationFailedError(err)
	}

	sql, err := ExtractSQL(response)
	if err != nil {
		state.SQLError = fmt.Sprintf("SQL generation failed: %v", err)
		return apperrors.NewLLMResponseInvalidError(StageName, err.Error())
	}
	state.SQL = sql

	if err := ValidateSQL(sql); err != nil {
		state.SQLError = fmt.Sprintf("Invalid SQL query: %v", err)
		h.logger.Warn("generated SQL rejected", map[string]interface{}{
			"sql":    sql,
			"reason": err.Error(),
		})
		return apperrors.NewSQLValidationFailedError(sql, err.Error())
	}

	rows, summary, err := h.executor.RunSelect(ctx, sql)
	if err != nil {
		h.logger.WithError(err).Warn("SQL execution failed", map[string]interface{}{"sql": sql})
		if errors.Is(err, context.DeadlineExceeded) {
			state.SQLError = "query timed out"
			return apperrors.NewSQLTimeoutError(sql)
		}
		state.SQLError = err.Error()
		return apperrors.NewSQLExecutionFailedError(sql, err)
	}

	state.Rows = rows
	state.DFSummary = summary
	if planRequiresChart(state.Plan) {
		state.NextAgent = models.StageChart
	}

	h.logger.Debug("SQL executed", map[string]interface{}{
		"sql":  sql,
		"rows": len(rows),
	})
	return nil
}

func (h *Handler) buildPrompt(state *models.PipelineState) string {
	var b strings.Builder

	b.WriteString("Database schema:\n")
	b.WriteString(schema.PromptDescription())
	b.WriteString("\n\n")

	if len(state.Plan) > 0 {
		b.WriteString("Execution plan:\n")
		for _, step := range state.Plan {
			fmt.Fprintf(&b, "%d. %s\n", step.StepNumber, step.Description)
		}
		b.WriteString("\n")
	}

	if len(state.History) > 0 {
		recent := state.History
		if len(recent) > 3 {
			recent = recent[len(recent)-3:]
		}
		b.WriteString("Recent conversation for context:\n")
		for _, entry := range recent {
			fmt.Fprintf(&b, "Q: %s\nA: %s\n", entry.Query, entry.Answer)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Question: %s\n", state.UserQuery)
	return b.String()
}

func planRequiresChart(plan []models.PlanStep) bool {
	for _, step := range plan {
		if step.RequiresChart {
			return true
		}
	}
	return false
}
