package pipeline

import (
	"errors"
	"fmt"
)

// ErrContractViolation marks responses or states that break an agent's
// contract (e.g. zero recipes selected). Never coerced to a default.
var ErrContractViolation = errors.New("contract violation")

// ErrNoProgress marks a run where the supervisor picked the same step twice
// without any state change, which would otherwise loop forever.
var ErrNoProgress = fmt.Errorf("%w: supervisor repeated a step with no state change", ErrContractViolation)

// externalErr wraps a failed reasoning-service or transcription call with
// the agent that made it. The run fails; there is no automatic retry.
func externalErr(agent Step, err error) error {
	return fmt.Errorf("agent %s: external call failed: %w", agent, err)
}
