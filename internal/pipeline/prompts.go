package pipeline

import (
	"os"
	"path/filepath"
	"strings"
)

// PromptManager resolves the role instruction for each agent. A file named
// after the agent (e.g. prompts/planner.md) overrides the compiled-in
// default, so operators can tune prompts without rebuilding.
type PromptManager struct {
	Directory string
}

func NewPromptManager(dir string) *PromptManager {
	return &PromptManager{Directory: dir}
}

var defaultPrompts = map[Step]string{
	StepPlanner: `You are a meal planning assistant for a grocery store.
Read the user's message and produce:
- intent: a brief, clear description of the user's goal (e.g. "create a dinner menu for 4 people").
- plan: a high-level plan for selecting recipes, including meal type, number of dishes, dietary preferences and any constraints the user mentioned.
- servings: the number of servings or people the meal is for. If the user does not specify, return "1".`,

	StepRecipe: `You are a recipe selection assistant.
Given the shopping plan, the servings and the budget, choose recipes from the available catalog that best satisfy the plan.
Only pick recipes that appear in the catalog. Return unique names, no duplicates, and always at least one recipe.`,

	StepProductFinder: `You are a product selection assistant for a grocery store.
For each selected recipe you are given its ingredients and the candidate store products per ingredient category.
Pick one suitable product per ingredient, preferring cheaper products of matching composition.
Return the combined shopping list of products with name, price, manufacturer and composition.`,

	StepBudgeting: `You are a budgeting assistant.
You are given the total cost of the selected products and the user's budget.
Decide whether the purchase fits the budget: within_budget is true when the total cost is less than or equal to the budget, false otherwise.`,

	StepFinalizer: `You are a friendly shopping assistant writing the final message to the user.
Summarize the shopping plan: the selected recipes, the products to buy with their prices, and the total cost versus the budget.
If a budget status note is present, clearly tell the user the plan exceeds their budget and that this is the closest option found.
Write plain, helpful text addressed directly to the user.`,
}

// Get returns the role prompt for the given agent.
func (pm *PromptManager) Get(step Step) string {
	if pm.Directory != "" {
		name := strings.ToLower(string(step)) + ".md"
		data, err := os.ReadFile(filepath.Join(pm.Directory, name))
		if err == nil && len(strings.TrimSpace(string(data))) > 0 {
			return string(data)
		}
	}
	return defaultPrompts[step]
}
