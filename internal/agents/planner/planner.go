// Package planner turns a classified query into an ordered execution plan
// and sets the first routing hop. Planning is fully deterministic; the LLM
// only enters the pipeline at the SQL and explanation stages.
package planner

import (
	"context"

	"data-copilot/internal/agents/classifier"
	"data-copilot/internal/common/logger"
	"data-copilot/internal/models"
)

const StageName = models.StagePlanner

type Handler struct {
	logger logger.Logger
}

func NewHandler(log logger.Logger) *Handler {
	return &Handler{
		logger: log.With(map[string]interface{}{"stage": StageName}),
	}
}

// Execute classifies the query, builds the plan, and routes to either the
// SQL stage or straight to the explainer.
func (h *Handler) Execute(ctx context.Context, state *models.PipelineState) error {
	state.Classification = classifier.Classify(state.UserQuery)
	state.RequiresChart = classifier.RequiresChart(state.UserQuery)

	switch state.Classification {
	case models.ClassificationArithmetic:
		state.Plan = []models.PlanStep{{
			StepNumber:  1,
			Action:      "Answer directly",
			Description: "Answer the arithmetic question directly",
		}}
		state.NextAgent = models.StageExplainer

	case models.ClassificationOffTopic:
		state.Plan = []models.PlanStep{{
			StepNumber:  1,
			Action:      "Handle off-topic",
			Description: "Provide helpful response for off-topic query and guide back to data analysis",
		}}
		state.NextAgent = models.StageExplainer

	default:
		state.Plan = buildDataQueryPlan(state.RequiresChart)
		state.NextAgent = models.StageSQL
	}

	state.MarkCompleted(StageName)
	h.logger.Debug("plan created", map[string]interface{}{
		"classification": string(state.Classification),
		"steps":          len(state.Plan),
		"nextAgent":      state.NextAgent,
	})
	return nil
}

func buildDataQueryPlan(needsChart bool) []models.PlanStep {
	chartAction := "Skip chart"
	chartDescription := "No chart requested"
	if needsChart {
		chartAction = "Generate chart"
		chartDescription = "Create visualization of the data"
	}

	return []models.PlanStep{
		{
			StepNumber:  1,
			Action:      "Generate SQL query",
			Description: "Create SQL query to retrieve data for analysis",
			RequiresSQL: true,
		},
		{
			StepNumber:    2,
			Action:        chartAction,
			Description:   chartDescription,
			RequiresChart: needsChart,
		},
		{
			StepNumber:  3,
			Action:      "Explain results",
			Description: "Provide natural language explanation of the analysis",
		},
	}
}
