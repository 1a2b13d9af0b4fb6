package pipeline

// Step names a pipeline worker. The supervisor writes one of these into the
// state each turn and the run loop dispatches on it.
type Step string

const (
	StepPlanner       Step = "Planner"
	StepRecipe        Step = "Recipe"
	StepProductFinder Step = "ProductFinder"
	StepBudgeting     Step = "Budgeting"
	StepFinalizer     Step = "Finalizer"
)

// ProductInfo is a store product selected for the shopping list.
type ProductInfo struct {
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Manufacturer string  `json:"manufacturer"`
	Composition  string  `json:"composition"`
}

// State is the mutable record threaded through one end-to-end run. Fields
// fill in the order plan -> recipes -> products -> budget verdict -> final
// message and never revert to unset; products and the budget verdict may be
// overwritten while the supervisor retries product selection.
//
// TotalCost and WithinBudget are pointers because the supervisor must
// distinguish "not yet computed" from zero/false.
type State struct {
	UserInput string  `json:"user_input"`
	Budget    float64 `json:"budget"`

	Plan       string `json:"plan,omitempty"`
	UserIntent string `json:"user_intent,omitempty"`
	Servings   string `json:"servings,omitempty"`

	Recipes  []string      `json:"recipes,omitempty"`
	Products []ProductInfo `json:"products,omitempty"`

	TotalCost    *float64 `json:"total_cost,omitempty"`
	WithinBudget *bool    `json:"within_budget,omitempty"`

	RetryAttempts     int    `json:"retry_attempts"`
	FinalBudgetStatus string `json:"final_budget_status,omitempty"`
	FinalMessage      string `json:"final_message,omitempty"`

	NextStep Step `json:"-"`
}

// TotalCostValue returns the computed total, or 0 if budgeting has not run.
func (s *State) TotalCostValue() float64 {
	if s.TotalCost == nil {
		return 0
	}
	return *s.TotalCost
}

// IsWithinBudget reports the budget verdict, treating "not yet judged" as false.
func (s *State) IsWithinBudget() bool {
	return s.WithinBudget != nil && *s.WithinBudget
}
