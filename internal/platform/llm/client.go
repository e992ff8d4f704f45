package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/fx"
	"go.uber.org/zap"

	cfgpkg "github.com/billhound/billhound/pkg/config"
)

// Client is a thin wrapper over the completion endpoint. Callers must treat
// the returned text as free-form and parse defensively.
type Client struct {
	api   *openai.Client
	model string
	log   *zap.SugaredLogger
}

func NewClient(cfg *cfgpkg.Config, log *zap.SugaredLogger) *Client {
	return &Client{
		api:   openai.NewClient(cfg.OpenAI.APIKey),
		model: cfg.OpenAI.Model,
		log:   log,
	}
}

// Complete submits a single-turn prompt and returns the raw completion text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0.1,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

var Module = fx.Options(
	fx.Provide(NewClient),
)
