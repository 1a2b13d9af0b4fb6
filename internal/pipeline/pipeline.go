package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/rahul/rasoi/internal/cache"
	"github.com/rahul/rasoi/internal/llm"
	"github.com/rahul/rasoi/internal/observability"
	"github.com/rahul/rasoi/internal/store"
)

// Worker is one pipeline step: a single reasoning-service interaction that
// mutates the shared state.
type Worker interface {
	Run(ctx context.Context, runID string, s *State) error
}

// Pipeline drives the supervisor/worker loop for one request at a time.
// Instances are safe for concurrent runs; each run owns its own State and
// the cache is the only shared resource.
type Pipeline struct {
	workers map[Step]Worker
	logger  *observability.Logger
}

func New(reasoner llm.Reasoner, st *store.Store, c *cache.Cache, prompts *PromptManager, logger *observability.Logger) *Pipeline {
	return &Pipeline{
		workers: map[Step]Worker{
			StepPlanner:       &Planner{LLM: reasoner, Prompts: prompts, Logger: logger},
			StepRecipe:        &RecipeSelector{LLM: reasoner, Store: st, Prompts: prompts, Logger: logger},
			StepProductFinder: &ProductFinder{LLM: reasoner, Store: st, Cache: c, Prompts: prompts, Logger: logger},
			StepBudgeting:     &Budgeting{LLM: reasoner, Cache: c, Prompts: prompts, Logger: logger},
			StepFinalizer:     &Finalizer{LLM: reasoner, Prompts: prompts, Logger: logger},
		},
		logger: logger,
	}
}

// Run executes the full supervisor loop for one user request and returns the
// terminal state. Termination is guaranteed: every turn either advances a
// monotonic state field or increments the bounded retry counter, and the
// no-progress guard catches a worker that breaks that invariant.
func (p *Pipeline) Run(ctx context.Context, userInput string, budget float64) (*State, error) {
	runID := uuid.NewString()
	s := &State{UserInput: userInput, Budget: budget}

	var lastStep Step
	var lastFingerprint string

	for {
		if err := ctx.Err(); err != nil {
			p.logger.LogRunFailure(runID, err)
			return nil, err
		}

		Supervise(s)
		p.logger.LogSupervisor(runID, string(s.NextStep), s.RetryAttempts)

		fp := fingerprint(s)
		if s.NextStep == lastStep && fp == lastFingerprint {
			p.logger.LogRunFailure(runID, ErrNoProgress)
			return nil, fmt.Errorf("%w (step %s)", ErrNoProgress, s.NextStep)
		}
		lastStep, lastFingerprint = s.NextStep, fp

		worker, ok := p.workers[s.NextStep]
		if !ok {
			err := fmt.Errorf("%w: supervisor selected unknown step %q", ErrContractViolation, s.NextStep)
			p.logger.LogRunFailure(runID, err)
			return nil, err
		}

		p.logger.LogAgent(runID, string(s.NextStep), "start")
		if err := worker.Run(ctx, runID, s); err != nil {
			p.logger.LogRunFailure(runID, err)
			return nil, err
		}
		p.logger.LogAgent(runID, string(s.NextStep), "done")

		if s.NextStep == StepFinalizer {
			log.Printf("run %s finished after %d retries", runID, s.RetryAttempts)
			return s, nil
		}
	}
}

// fingerprint captures every state field the supervisor keys on, so a worker
// that mutates nothing is detected on the next turn.
func fingerprint(s *State) string {
	data, err := json.Marshal(s)
	if err != nil {
		return ""
	}
	return string(data)
}
