package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rahul/rasoi/internal/llm"
	"github.com/rahul/rasoi/internal/observability"
	"github.com/rahul/rasoi/internal/store"
	"github.com/tmc/langchaingo/llms"
)

// RecipeSelector picks recipe names from the catalog that satisfy the plan.
// The catalog (names and categories) is supplied to the model as context.
type RecipeSelector struct {
	LLM     llm.Reasoner
	Store   *store.Store
	Prompts *PromptManager
	Logger  *observability.Logger
}

type recipeResult struct {
	Names []string `json:"names"`
}

var recipeSchema = llms.FunctionDefinition{
	Name:        "select_recipes",
	Description: "Submit the recipe names selected for the user's plan.",
	Parameters: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"names": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Unique recipe names matching the plan, servings and budget. At least one.",
			},
		},
		"required": []string{"names"},
	},
}

func (a *RecipeSelector) Run(ctx context.Context, runID string, s *State) error {
	catalog, err := a.Store.ListRecipes()
	if err != nil {
		return fmt.Errorf("agent %s: list recipes: %w", StepRecipe, err)
	}

	var available []string
	for _, r := range catalog {
		available = append(available, fmt.Sprintf("- %s (%s)", r.Name, r.Category))
	}

	prompt := strings.Join([]string{
		a.Prompts.Get(StepRecipe),
		fmt.Sprintf("Shopping plan: %s", s.Plan),
		fmt.Sprintf("Servings: %s", s.Servings),
		fmt.Sprintf("Budget: %.2f", s.Budget),
		"Available recipes:",
		strings.Join(available, "\n"),
	}, "\n")

	raw, err := a.LLM.GenerateStructured(ctx, prompt, recipeSchema)
	if err != nil {
		return externalErr(StepRecipe, err)
	}
	a.Logger.LogLLM(runID, string(StepRecipe), prompt, string(raw))

	var result recipeResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return externalErr(StepRecipe, fmt.Errorf("malformed structured response: %w", err))
	}

	names := dedupe(result.Names)
	if len(names) == 0 {
		return fmt.Errorf("%w: recipe selector returned zero recipe names", ErrContractViolation)
	}

	s.Recipes = names
	return nil
}

// dedupe drops duplicates and blanks, preserving first-seen order.
func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	var out []string
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
