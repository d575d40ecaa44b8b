// Package models defines the shared types passed between pipeline stages
// and across the API boundary.
package models

import (
	"time"

	"data-copilot/internal/common/database"
)

// Classification labels the kind of question a user asked.
type Classification string

const (
	ClassificationArithmetic Classification = "arithmetic"
	ClassificationOffTopic   Classification = "off_topic"
	ClassificationDataQuery  Classification = "data_query"
)

// Stage names used by the router and metrics.
const (
	StagePlanner   = "planner"
	StageSQL       = "sql"
	StageChart     = "chart"
	StageExplainer = "explainer"
)

// PlanStep is a single step in the execution plan.
type PlanStep struct {
	StepNumber    int    `json:"step_number"`
	Action        string `json:"action"`
	Description   string `json:"description"`
	RequiresSQL   bool   `json:"requires_sql"`
	RequiresChart bool   `json:"requires_chart"`
}

// HistoryEntry is one prior turn of the conversation, used for
// history-aware prompting.
type HistoryEntry struct {
	Query     string    `json:"query"`
	Answer    string    `json:"answer"`
	ChartPath string    `json:"chart_path,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// PipelineState is the mutable state threaded through the pipeline stages.
type PipelineState struct {
	// Input
	UserQuery string `json:"user_query"`
	SessionID string `json:"session_id,omitempty"`

	// Classification
	Classification Classification `json:"classification,omitempty"`
	RequiresChart  bool           `json:"requires_chart,omitempty"`

	// Planning
	Plan []PlanStep `json:"plan,omitempty"`

	// SQL execution
	SQL       string                   `json:"sql,omitempty"`
	SQLError  string                   `json:"sql_error,omitempty"`
	Rows      []map[string]interface{} `json:"rows,omitempty"`
	DFSummary *database.ResultSummary  `json:"df_summary,omitempty"`

	// Chart generation
	ChartPath  string `json:"chart_path,omitempty"`
	ChartError string `json:"chart_error,omitempty"`

	// Final output
	Answer string `json:"answer"`

	// Conversation memory
	History []HistoryEntry `json:"history,omitempty"`

	// Routing
	NextAgent       string   `json:"next_agent,omitempty"`
	CompletedAgents []string `json:"completed_agents,omitempty"`

	// Metadata
	ProcessingStart time.Time `json:"processing_start_time,omitempty"`
	ProcessingEnd   time.Time `json:"processing_end_time,omitempty"`
}

// Completed reports whether the named stage has already run.
func (s *PipelineState) Completed(stage string) bool {
	for _, name := range s.CompletedAgents {
		if name == stage {
			return true
		}
	}
	return false
}

// MarkCompleted records that the named stage has run.
func (s *PipelineState) MarkCompleted(stage string) {
	if !s.Completed(stage) {
		s.CompletedAgents = append(s.CompletedAgents, stage)
	}
}

// QueryRequest is the POST /api/infer request body.
type QueryRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id,omitempty"`
}

// QueryResponse is the POST /api/infer response body.
type QueryResponse struct {
	Answer           string                   `json:"answer"`
	SQL              string                   `json:"sql,omitempty"`
	ChartURL         string                   `json:"chart_url,omitempty"`
	Rows             []map[string]interface{} `json:"rows,omitempty"`
	DFSummary        *database.ResultSummary  `json:"df_summary,omitempty"`
	ProcessingTimeMS float64                  `json:"processing_time_ms"`
	Error            string                   `json:"error,omitempty"`
	ErrorCode        string                   `json:"error_code,omitempty"`
}

// Turn is a persisted conversation turn.
type Turn struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Query     string    `json:"query"`
	SQL       string    `json:"sql,omitempty"`
	RowCount  int       `json:"row_count"`
	ChartPath string    `json:"chart_path,omitempty"`
	Answer    string    `json:"answer"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ChartConfig describes how to render a chart from result rows.
type ChartConfig struct {
	ChartType string `json:"chart_type"`
	XColumn   string `json:"x_column"`
	YColumn   string `json:"y_column"`
	Title     string `json:"title,omitempty"`
}
