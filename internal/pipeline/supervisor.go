package pipeline

// maxBudgetRetries bounds how many times an over-budget verdict may send the
// run back to product selection. With the initial attempt this allows three
// product selections in total.
const maxBudgetRetries = 2

// budgetExhaustedStatus is surfaced to the finalizer once retries run out.
const budgetExhaustedStatus = "Recipe does not fit into budget after 3 attempts"

// Supervise inspects the state and sets NextStep. It is a pure decision
// function: deterministic, total, no external calls, and the only fields it
// ever touches are NextStep, RetryAttempts and FinalBudgetStatus.
//
// The first matching rule wins:
//  1. no plan            -> Planner
//  2. no recipes         -> Recipe
//  3. no products        -> ProductFinder
//  4. no budget verdict  -> Budgeting
//  5. over budget        -> ProductFinder while retries remain, else Finalizer
//  6. otherwise          -> Finalizer
func Supervise(s *State) {
	switch {
	case s.Plan == "":
		s.NextStep = StepPlanner

	case len(s.Recipes) == 0:
		s.NextStep = StepRecipe

	case len(s.Products) == 0:
		s.NextStep = StepProductFinder

	case s.WithinBudget == nil || s.TotalCost == nil:
		s.NextStep = StepBudgeting

	case !*s.WithinBudget:
		if s.RetryAttempts < maxBudgetRetries {
			s.RetryAttempts++
			s.NextStep = StepProductFinder
		} else {
			s.FinalBudgetStatus = budgetExhaustedStatus
			s.NextStep = StepFinalizer
		}

	default:
		s.NextStep = StepFinalizer
	}
}
