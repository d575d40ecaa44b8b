package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"data-copilot/internal/models"
)

func TestNextStage_FreshStateStartsAtPlanner(t *testing.T) {
	state := &models.PipelineState{UserQuery: "total revenue"}
	assert.Equal(t, models.StagePlanner, NextStage(state))
}

func TestNextStage_FollowsHint(t *testing.T) {
	state := &models.PipelineState{
		NextAgent:       models.StageSQL,
		CompletedAgents: []string{models.StagePlanner},
	}
	assert.Equal(t, models.StageSQL, NextStage(state))
}

func TestNextStage_HintToCompletedStageFallsThrough(t *testing.T) {
	state := &models.PipelineState{
		NextAgent:       models.StageSQL,
		CompletedAgents: []string{models.StagePlanner, models.StageSQL},
		Plan: []models.PlanStep{
			{RequiresSQL: true},
			{RequiresChart: true},
		},
	}
	assert.Equal(t, models.StageChart, NextStage(state))
}

func TestNextStage_SkipsChartWhenNotPlanned(t *testing.T) {
	state := &models.PipelineState{
		CompletedAgents: []string{models.StagePlanner, models.StageSQL},
		Plan:            []models.PlanStep{{RequiresSQL: true}},
	}
	assert.Equal(t, models.StageExplainer, NextStage(state))
}

func TestNextStage_EndsAfterExplainer(t *testing.T) {
	state := &models.PipelineState{
		NextAgent:       models.StageExplainer,
		CompletedAgents: []string{models.StagePlanner, models.StageSQL, models.StageExplainer},
		Plan:            []models.PlanStep{{RequiresSQL: true}},
	}
	assert.Equal(t, End, NextStage(state))
}

func TestNextStage_StageCapStopsRouting(t *testing.T) {
	state := &models.PipelineState{
		NextAgent: models.StagePlanner,
		CompletedAgents: []string{
			models.StagePlanner, models.StageSQL, models.StageChart, models.StageExplainer,
		},
	}
	assert.Equal(t, End, NextStage(state))
}

func TestNextStage_ExplicitEnd(t *testing.T) {
	state := &models.PipelineState{NextAgent: End}
	assert.Equal(t, End, NextStage(state))
}
