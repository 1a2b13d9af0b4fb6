package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rahul/rasoi/internal/cache"
	"github.com/rahul/rasoi/internal/llm"
	"github.com/rahul/rasoi/internal/observability"
	"github.com/tmc/langchaingo/llms"
)

// Budgeting sums the product prices in Go and asks the model only for the
// within-budget verdict on that total. The verdict and total are memoized
// per (products, budget) pair.
type Budgeting struct {
	LLM     llm.Reasoner
	Cache   *cache.Cache
	Prompts *PromptManager
	Logger  *observability.Logger
}

type budgetResult struct {
	WithinBudget bool `json:"within_budget"`
}

type budgetCacheEntry struct {
	WithinBudget bool    `json:"within_budget"`
	TotalCost    float64 `json:"total_cost"`
}

type budgetCacheInput struct {
	Products []ProductInfo `json:"products"`
	Budget   float64       `json:"budget"`
}

var budgetSchema = llms.FunctionDefinition{
	Name:        "judge_budget",
	Description: "Report whether the selected products fit the user's budget.",
	Parameters: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"within_budget": map[string]any{
				"type":        "boolean",
				"description": "True if the total cost is within or equal to the budget, false if over.",
			},
		},
		"required": []string{"within_budget"},
	},
}

func (a *Budgeting) Run(ctx context.Context, runID string, s *State) error {
	key := cache.Key("budgeting", budgetCacheInput{Products: s.Products, Budget: s.Budget})

	if data, ok := a.Cache.Get(key); ok {
		var cached budgetCacheEntry
		if err := json.Unmarshal(data, &cached); err == nil {
			a.Logger.LogCache(runID, string(StepBudgeting), key, true)
			s.WithinBudget = &cached.WithinBudget
			s.TotalCost = &cached.TotalCost
			return nil
		}
	}
	a.Logger.LogCache(runID, string(StepBudgeting), key, false)

	var total float64
	for _, p := range s.Products {
		total += p.Price
	}

	prompt := strings.Join([]string{
		a.Prompts.Get(StepBudgeting),
		fmt.Sprintf("Products total cost: %.2f", total),
		fmt.Sprintf("The user's budget: %.2f", s.Budget),
	}, "\n")

	raw, err := a.LLM.GenerateStructured(ctx, prompt, budgetSchema)
	if err != nil {
		return externalErr(StepBudgeting, err)
	}
	a.Logger.LogLLM(runID, string(StepBudgeting), prompt, string(raw))

	var result budgetResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return externalErr(StepBudgeting, fmt.Errorf("malformed structured response: %w", err))
	}

	if data, err := json.Marshal(budgetCacheEntry{WithinBudget: result.WithinBudget, TotalCost: total}); err == nil {
		a.Cache.Set(key, data)
	}

	s.WithinBudget = &result.WithinBudget
	s.TotalCost = &total
	return nil
}
