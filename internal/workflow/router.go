package workflow

import "data-copilot/internal/models"

// End terminates the stage loop.
const End = "end"

// maxStages bounds a turn to one visit per stage. Anything past this is a
// routing bug, not a longer conversation.
const maxStages = 4

// NextStage picks the stage to run next. An explicit next_agent hint wins
// unless that stage already ran; otherwise the order is planner, sql (when
// planned), chart (when planned), explainer.
func NextStage(state *models.PipelineState) string {
	if len(state.CompletedAgents) >= maxStages {
		return End
	}

	if state.NextAgent != "" && state.NextAgent != End {
		if !state.Completed(state.NextAgent) {
			return state.NextAgent
		}
	}
	if state.NextAgent == End {
		return End
	}

	switch {
	case !state.Completed(models.StagePlanner):
		return models.StagePlanner
	case !state.Completed(models.StageSQL) && planRequires(state, func(s models.PlanStep) bool { return s.RequiresSQL }):
		return models.StageSQL
	case !state.Completed(models.StageChart) && planRequires(state, func(s models.PlanStep) bool { return s.RequiresChart }):
		return models.StageChart
	case !state.Completed(models.StageExplainer):
		return models.StageExplainer
	default:
		return End
	}
}

func planRequires(state *models.PipelineState, pred func(models.PlanStep) bool) bool {
	for _, step := range state.Plan {
		if pred(step) {
			return true
		}
	}
	return false
}
