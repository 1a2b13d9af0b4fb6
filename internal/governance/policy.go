package governance

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Effect defines the result of a policy evaluation.
type Effect string

const (
	EffectAllow Effect = "allow"
	EffectDeny  Effect = "deny"
)

// Request contains the context of a shopping run to be evaluated.
type Request struct {
	UserInput string
	Budget    float64
	Source    string
}

// Result contains the outcome of a policy evaluation.
type Result struct {
	Effect Effect
	Reason string
}

// PolicyEngine screens run requests before the pipeline starts.
type PolicyEngine interface {
	Evaluate(ctx context.Context, req Request) (Result, error)
}

// DefaultPolicyEngine is a basic implementation of PolicyEngine.
type DefaultPolicyEngine struct {
	DeniedPatterns []*regexp.Regexp
	MaxBudget      float64
}

func NewDefaultPolicyEngine() *DefaultPolicyEngine {
	return &DefaultPolicyEngine{
		DeniedPatterns: make([]*regexp.Regexp, 0),
	}
}

// DenyInput blocks requests whose input matches the pattern.
func (e *DefaultPolicyEngine) DenyInput(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	e.DeniedPatterns = append(e.DeniedPatterns, re)
	return nil
}

// LimitBudget caps the budget a single request may claim. Zero means no cap.
func (e *DefaultPolicyEngine) LimitBudget(max float64) {
	e.MaxBudget = max
}

func (e *DefaultPolicyEngine) Evaluate(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.UserInput) == "" {
		return Result{
			Effect: EffectDeny,
			Reason: "Request input is empty",
		}, nil
	}

	if req.Budget <= 0 {
		return Result{
			Effect: EffectDeny,
			Reason: "Budget must be a positive amount",
		}, nil
	}

	if e.MaxBudget > 0 && req.Budget > e.MaxBudget {
		return Result{
			Effect: EffectDeny,
			Reason: fmt.Sprintf("Budget exceeds the allowed maximum of %.2f", e.MaxBudget),
		}, nil
	}

	for _, re := range e.DeniedPatterns {
		if re.MatchString(req.UserInput) {
			return Result{
				Effect: EffectDeny,
				Reason: fmt.Sprintf("Input matches restricted pattern: %s", re.String()),
			}, nil
		}
	}

	return Result{
		Effect: EffectAllow,
		Reason: "Approved by default policy",
	}, nil
}
