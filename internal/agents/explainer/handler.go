// Package explainer produces the final answer for a turn. Arithmetic and
// off-topic questions are answered locally; data queries are narrated by
// an LLM over the executed SQL and its sample rows.
package explainer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"data-copilot/internal/common/llm"
	"data-copilot/internal/common/logger"
	"data-copilot/internal/models"
)

const StageName = models.StageExplainer

const systemPrompt = "You are a data explanation assistant for an e-commerce analytics service. " +
	"Answer the user's question using only the SQL result provided. Be concise, " +
	"mention concrete numbers from the data, and note the chart when one exists. " +
	"If the SQL failed, explain the failure in plain language and suggest a rephrasing."

// sampleRowLimit bounds how many result rows go into the prompt.
const sampleRowLimit = 5

type Handler struct {
	client llm.Client
	logger logger.Logger
}

func NewHandler(client llm.Client, log logger.Logger) *Handler {
	return &Handler{
		client: client,
		logger: log.With(map[string]interface{}{"stage": StageName}),
	}
}

// Execute fills state.Answer. It always marks the stage completed, even on
// LLM failure, because the router treats the explainer as terminal.
func (h *Handler) Execute(ctx context.Context, state *models.PipelineState) error {
	defer func() {
		state.MarkCompleted(StageName)
		state.ProcessingEnd = time.Now()
	}()

	switch state.Classification {
	case models.ClassificationArithmetic:
		state.Answer = EvaluateArithmetic(state.UserQuery)
		h.appendHistory(state)
		return nil
	case models.ClassificationOffTopic:
		state.Answer = HandleOffTopic(state.UserQuery)
		h.appendHistory(state)
		return nil
	}

	userPrompt := h.buildPrompt(state)
	answer, err := h.client.Complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		h.logger.WithError(err).Error("explanation failed, falling back to summary answer", nil)
		state.Answer = h.fallbackAnswer(state)
		return err
	}

	state.Answer = strings.TrimSpace(answer)
	h.appendHistory(state)
	return nil
}

func (h *Handler) buildPrompt(state *models.PipelineState) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Question: %s\n\n", state.UserQuery)

	if state.SQLError != "" {
		fmt.Fprintf(&b, "The SQL stage failed: %s\n", state.SQLError)
		if state.SQL != "" {
			fmt.Fprintf(&b, "Attempted SQL: %s\n", state.SQL)
		}
		return b.String()
	}

	fmt.Fprintf(&b, "Executed SQL: %s\n\n", state.SQL)

	if state.DFSummary != nil {
		fmt.Fprintf(&b, "Result shape: %d rows, %d columns (%s)\n",
			state.DFSummary.Shape[0], state.DFSummary.Shape[1],
			strings.Join(state.DFSummary.Columns, ", "))
	}

	sample := state.Rows
	if len(sample) > sampleRowLimit {
		sample = sample[:sampleRowLimit]
	}
	if len(sample) > 0 {
		if encoded, err := json.Marshal(sample); err == nil {
			fmt.Fprintf(&b, "Sample rows: %s\n", encoded)
		}
	} else {
		b.WriteString("The query returned no rows.\n")
	}

	if state.ChartPath != "" {
		fmt.Fprintf(&b, "A chart was rendered at %s; mention it.\n", state.ChartPath)
	}

	if len(state.History) > 0 {
		recent := state.History
		if len(recent) > 3 {
			recent = recent[len(recent)-3:]
		}
		b.WriteString("\nRecent conversation:\n")
		for _, entry := range recent {
			fmt.Fprintf(&b, "Q: %s\nA: %s\n", entry.Query, entry.Answer)
		}
	}

	return b.String()
}

// fallbackAnswer gives the user something useful when narration fails.
func (h *Handler) fallbackAnswer(state *models.PipelineState) string {
	if state.SQLError != "" {
		return fmt.Sprintf("I ran into a problem answering that: %s. Try rephrasing the question.", state.SQLError)
	}
	if state.DFSummary != nil {
		return fmt.Sprintf("The query returned %d rows across columns %s, but I couldn't generate a narrative explanation.",
			state.DFSummary.Shape[0], strings.Join(state.DFSummary.Columns, ", "))
	}
	return "I couldn't generate an explanation for this query. Please try again."
}

func (h *Handler) appendHistory(state *models.PipelineState) {
	state.History = append(state.History, models.HistoryEntry{
		Query:     state.UserQuery,
		Answer:    state.Answer,
		ChartPath: state.ChartPath,
		Timestamp: time.Now(),
	})
}
