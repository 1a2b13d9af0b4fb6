package gateway

import (
	"context"

	"github.com/rahul/rasoi/internal/pipeline"
)

// DefaultBudget is the sentinel used when a gateway cannot collect a budget
// from the user (voice uploads, plain chat messages).
const DefaultBudget = 9999

// Runner executes one shopping pipeline run. Satisfied by *pipeline.Pipeline.
type Runner interface {
	Run(ctx context.Context, userInput string, budget float64) (*pipeline.State, error)
}

// Messenger defines the interface for communication gateways (Telegram, Discord, etc.)
type Messenger interface {
	// Start begins the message listening loop
	Start() error
	// Send sends a message to a specific chat
	Send(chatID string, text string) error
	// Stop gracefully shuts down the gateway
	Stop() error
}
