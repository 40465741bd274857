package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
)

const DefaultOpenAIModel = "gpt-4o-mini"

const openAIEndpoint = "https://api.openai.com/v1/chat/completions"

type openAIRequest struct {
	Model    string          `json:"model"`
	Messages []openAIMessage `json:"messages"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// OpenAICaller adapts the OpenAI chat-completions API to the Caller
// interface over a shared HTTP client.
type OpenAICaller struct {
	apiKey string
	model  string
	client *http.Client
}

func NewOpenAICaller(apiKey, model string, client *http.Client) *OpenAICaller {
	if model == "" {
		model = DefaultOpenAIModel
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &OpenAICaller{apiKey: apiKey, model: model, client: client}
}

func (c *OpenAICaller) Call(ctx context.Context, systemPrompt, userPrompt string) (string, Usage, error) {
	reqBody := openAIRequest{
		Model: c.model,
		Messages: []openAIMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", Usage{}, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openAIEndpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", Usage{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", Usage{}, &ProviderError{Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", Usage{}, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", Usage{}, &ProviderError{Status: resp.StatusCode, Message: string(respBody)}
	}

	var openAIResp openAIResponse
	if err := json.Unmarshal(respBody, &openAIResp); err != nil {
		return "", Usage{}, fmt.Errorf("parsing OpenAI response: %w", err)
	}
	if openAIResp.Error != nil {
		return "", Usage{}, &ProviderError{Message: openAIResp.Error.Message}
	}
	if len(openAIResp.Choices) == 0 {
		return "", Usage{}, &ProviderError{Message: "no choices in OpenAI response"}
	}

	usage := Usage{}
	if openAIResp.Usage != nil {
		usage.InputTokens = openAIResp.Usage.PromptTokens
		usage.OutputTokens = openAIResp.Usage.CompletionTokens
	}
	log.Printf("llm openai model=%s response size=%d tokens_in=%d tokens_out=%d", c.model, len(openAIResp.Choices[0].Message.Content), usage.InputTokens, usage.OutputTokens)
	return openAIResp.Choices[0].Message.Content, usage, nil
}
