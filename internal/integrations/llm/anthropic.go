package llm

import (
	"context"
	"errors"
	"log"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const DefaultAnthropicModel = "claude-sonnet-4-5-20250929"

const maxResponseTokens = 4096

// AnthropicCaller adapts the Anthropic Messages API to the Caller interface.
type AnthropicCaller struct {
	client anthropic.Client
	model  string
}

func NewAnthropicCaller(apiKey, model string) *AnthropicCaller {
	if model == "" {
		model = DefaultAnthropicModel
	}
	return &AnthropicCaller{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (c *AnthropicCaller) Call(ctx context.Context, systemPrompt, userPrompt string) (string, Usage, error) {
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: maxResponseTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt, CacheControl: anthropic.NewCacheControlEphemeralParam()},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", Usage{}, &ProviderError{Status: apiErr.StatusCode, Message: apiErr.Error()}
		}
		return "", Usage{}, &ProviderError{Message: err.Error()}
	}

	usage := Usage{
		InputTokens:  message.Usage.InputTokens,
		OutputTokens: message.Usage.OutputTokens,
	}
	for _, block := range message.Content {
		if block.Type == "text" {
			log.Printf("llm anthropic model=%s response size=%d tokens_in=%d tokens_out=%d", c.model, len(block.Text), usage.InputTokens, usage.OutputTokens)
			return block.Text, usage, nil
		}
	}
	return "", usage, &ProviderError{Message: "no text content in Anthropic response"}
}
