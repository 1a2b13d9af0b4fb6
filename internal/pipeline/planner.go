package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rahul/rasoi/internal/llm"
	"github.com/rahul/rasoi/internal/observability"
	"github.com/tmc/langchaingo/llms"
)

// Planner turns the raw user message into an intent, a shopping plan and a
// servings count. It runs once per pipeline, so its call is not cached.
type Planner struct {
	LLM     llm.Reasoner
	Prompts *PromptManager
	Logger  *observability.Logger
}

type planResult struct {
	Intent   string `json:"intent"`
	Plan     string `json:"plan"`
	Servings string `json:"servings"`
}

var planSchema = llms.FunctionDefinition{
	Name:        "submit_plan",
	Description: "Submit the structured meal plan derived from the user's message.",
	Parameters: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"intent": map[string]any{
				"type":        "string",
				"description": "A brief, clear description of the user's goal based on their message.",
			},
			"plan": map[string]any{
				"type":        "string",
				"description": "A high-level plan for selecting recipes: meal type, number of dishes, dietary preferences, constraints.",
			},
			"servings": map[string]any{
				"type":        "string",
				"description": "The number of servings or people the meal is for. \"1\" if unspecified.",
			},
		},
		"required": []string{"intent", "plan", "servings"},
	},
}

func (a *Planner) Run(ctx context.Context, runID string, s *State) error {
	prompt := strings.Join([]string{
		a.Prompts.Get(StepPlanner),
		fmt.Sprintf("User's input: %s", s.UserInput),
	}, "\n")

	raw, err := a.LLM.GenerateStructured(ctx, prompt, planSchema)
	if err != nil {
		return externalErr(StepPlanner, err)
	}
	a.Logger.LogLLM(runID, string(StepPlanner), prompt, string(raw))

	var result planResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return externalErr(StepPlanner, fmt.Errorf("malformed structured response: %w", err))
	}
	if result.Plan == "" {
		return fmt.Errorf("%w: planner returned an empty plan", ErrContractViolation)
	}
	if result.Servings == "" {
		result.Servings = "1"
	}

	s.Plan = result.Plan
	s.UserIntent = result.Intent
	s.Servings = result.Servings
	return nil
}
