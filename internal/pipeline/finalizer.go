package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/rahul/rasoi/internal/llm"
	"github.com/rahul/rasoi/internal/observability"
)

// Finalizer writes the closing message to the user. Its output is the run's
// termination signal, so it must never leave FinalMessage empty.
type Finalizer struct {
	LLM     llm.Reasoner
	Prompts *PromptManager
	Logger  *observability.Logger
}

func (a *Finalizer) Run(ctx context.Context, runID string, s *State) error {
	budgetCheck := "over budget"
	if s.IsWithinBudget() {
		budgetCheck = "within budget"
	}

	lines := []string{
		a.Prompts.Get(StepFinalizer),
		fmt.Sprintf("Budget check: %s", budgetCheck),
		fmt.Sprintf("Total cost: %.2f", s.TotalCostValue()),
		fmt.Sprintf("Budget: %.2f", s.Budget),
		fmt.Sprintf("Recipes selected: %s", strings.Join(s.Recipes, ", ")),
		fmt.Sprintf("Products selected: %s", formatProducts(s.Products)),
		fmt.Sprintf("Plan for the user: %s", s.Plan),
	}
	if s.FinalBudgetStatus != "" {
		lines = append(lines, fmt.Sprintf("Budget status note: %s", s.FinalBudgetStatus))
	}
	lines = append(lines, "Generate a final message for the user based on this data.")
	prompt := strings.Join(lines, "\n")

	message, err := a.LLM.Generate(ctx, prompt)
	if err != nil {
		return externalErr(StepFinalizer, err)
	}
	a.Logger.LogLLM(runID, string(StepFinalizer), prompt, message)

	message = strings.TrimSpace(message)
	if message == "" {
		return fmt.Errorf("%w: finalizer produced an empty message", ErrContractViolation)
	}

	s.FinalMessage = message
	return nil
}

func formatProducts(products []ProductInfo) string {
	var parts []string
	for _, p := range products {
		parts = append(parts, fmt.Sprintf("%s (%.2f, %s)", p.Name, p.Price, p.Manufacturer))
	}
	return strings.Join(parts, "; ")
}
