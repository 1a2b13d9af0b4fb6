package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rahul/rasoi/pkg/config"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// Reasoner is the single capability the pipeline agents need from a language
// model: free-text generation, or generation constrained to a declared
// function schema.
type Reasoner interface {
	Generate(ctx context.Context, prompt string) (string, error)
	GenerateStructured(ctx context.Context, prompt string, schema llms.FunctionDefinition) (json.RawMessage, error)
}

// Client wraps a langchaingo model behind the Reasoner interface.
type Client struct {
	Model llms.Model
}

// New selects the backing provider from config. OpenAI-compatible providers
// (openai, openrouter) and ollama are interchangeable to callers.
func New(provider string, cfg config.ProviderConfig) (*Client, error) {
	var model llms.Model
	var err error

	switch provider {
	case "openai", "openrouter":
		opts := []openai.Option{
			openai.WithToken(cfg.APIKey),
			openai.WithModel(cfg.Model),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		model, err = openai.New(opts...)
	case "ollama":
		opts := []ollama.Option{
			ollama.WithModel(cfg.Model),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
		}
		model, err = ollama.New(opts...)
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}

	if err != nil {
		return nil, fmt.Errorf("init provider %s: %w", provider, err)
	}
	return &Client{Model: model}, nil
}

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	out, err := llms.GenerateFromSinglePrompt(ctx, c.Model, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// GenerateStructured asks the model to answer by calling the given function
// and returns the raw JSON arguments of that call. Models that answer with a
// bare JSON body instead of a tool call are tolerated as long as the body
// parses as a JSON object.
func (c *Client) GenerateStructured(ctx context.Context, prompt string, schema llms.FunctionDefinition) (json.RawMessage, error) {
	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(prompt)},
		},
	}

	tools := []llms.Tool{
		{
			Type:     "function",
			Function: &schema,
		},
	}

	resp, err := c.Model.GenerateContent(ctx, messages, llms.WithTools(tools))
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("model returned no choices")
	}

	choice := resp.Choices[0]
	for _, tc := range choice.ToolCalls {
		if tc.FunctionCall != nil && tc.FunctionCall.Name == schema.Name {
			return json.RawMessage(tc.FunctionCall.Arguments), nil
		}
	}

	content := strings.TrimSpace(choice.Content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)
	if json.Valid([]byte(content)) && strings.HasPrefix(content, "{") {
		return json.RawMessage(content), nil
	}

	return nil, fmt.Errorf("model did not call %s and returned no parsable JSON", schema.Name)
}
