package extraction

import (
	"context"
	"errors"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/meridian-legal/docaudit/internal/config"
	"github.com/meridian-legal/docaudit/internal/resilience"
)

// claudeClient implements Client on the official anthropic-sdk-go.
type claudeClient struct {
	client    sdk.Client
	model     string
	maxTokens int64
}

// NewClaude creates the Claude-backed extraction client.
func NewClaude(cfg config.AnthropicConfig) Client {
	return &claudeClient{
		client:    sdk.NewClient(option.WithAPIKey(cfg.Key)),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}
}

func (c *claudeClient) Method() string { return "claude" }

func (c *claudeClient) Extract(ctx context.Context, req Request) (*Response, error) {
	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: c.maxTokens,
		System: []sdk.TextBlockParam{
			{Text: req.PromptTemplate},
		},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(UserContent(req))),
		},
	})
	if err != nil {
		return nil, classifyAPIError(err)
	}

	text := ""
	for _, block := range msg.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	zap.L().Debug("extraction: claude response",
		zap.String("document_type", string(req.DocumentType)),
		zap.Int64("input_tokens", msg.Usage.InputTokens),
		zap.Int64("output_tokens", msg.Usage.OutputTokens),
	)

	fields, err := ParseResponse(text)
	if err != nil {
		return nil, err
	}
	return &Response{Fields: fields, Method: c.Method()}, nil
}

// classifyAPIError sorts SDK failures into transient (retryable) and
// permanent buckets. Rate limits and server errors retry; a 4xx contract
// violation does not. Plain network errors pass through untouched — the
// resilience package recognizes timeouts on its own.
func classifyAPIError(err error) error {
	var apierr *sdk.Error
	if errors.As(err, &apierr) {
		wrapped := eris.Wrap(err, "extraction: claude api")
		if resilience.IsTransientHTTPStatus(apierr.StatusCode) {
			return resilience.NewTransientError(wrapped, apierr.StatusCode)
		}
		return resilience.NewPermanentError(wrapped)
	}
	return eris.Wrap(err, "extraction: claude request")
}
