package review

import (
	"context"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/hyperjump/shinsa/internal/config"
	"github.com/hyperjump/shinsa/internal/models"
	"github.com/hyperjump/shinsa/pkg/utils"
)

const systemPrompt = `You are an expert peer reviewer for a machine learning conference.
Read the paper and respond with a single JSON object of the form
{"rates": [soundness, presentation, contribution, overall], "decision": "Accept" or "Reject"}.
Each rate is a number from 1 to 10. Respond with the JSON object only.`

// Client is a Reviewer backed by an OpenAI-compatible chat completion
// endpoint (the review model is typically served locally behind one).
type Client struct {
	api    *openai.Client
	model  string
	logger *zap.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger sets a logger for debug output of raw model responses.
func WithLogger(l *zap.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// NewClient builds a client from config. The API key is read from the
// environment variable named by cfg.APIKeyEnv; a missing key is an error
// only when no custom base URL is set, since local endpoints rarely
// require one.
func NewClient(cfg *config.ReviewConfig, opts ...ClientOption) (*Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" && cfg.BaseURL == "" {
		return nil, fmt.Errorf("reviewer API key not set (environment variable %s)", cfg.APIKeyEnv)
	}
	conf := openai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		conf.BaseURL = cfg.BaseURL
	}
	c := &Client{
		api:    openai.NewClientWithConfig(conf),
		model:  cfg.Model,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Review sends text to the model and parses the returned rates/decision.
func (c *Client) Review(ctx context.Context, text string) (*models.Review, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("review request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrNoReview
	}
	raw := resp.Choices[0].Message.Content
	c.logger.Debug("review response", zap.String("content", utils.Truncate(raw, 200)))
	return ParseReview(raw)
}
