package execution

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// chatCompleter is the subset of *openai.Client used here.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIConfig configures an OpenAIGenerator.
type OpenAIConfig struct {
	// BaseURL of an OpenAI-compatible API. Empty means api.openai.com.
	BaseURL string
	APIKey  string
	// RemoteIDs maps registry model names onto the endpoint's model IDs.
	// Unmapped names are sent unchanged.
	RemoteIDs   map[string]string
	MaxTokens   int
	Temperature float32
}

// OpenAIGenerator calls any OpenAI-compatible chat completions endpoint.
type OpenAIGenerator struct {
	client      chatCompleter
	remoteIDs   map[string]string
	maxTokens   int
	temperature float32
}

// NewOpenAIGenerator builds a generator from cfg.
func NewOpenAIGenerator(cfg OpenAIConfig) *OpenAIGenerator {
	key := cfg.APIKey
	if key == "" {
		// local OpenAI-compatible servers ignore the key
		key = "n/a"
	}
	clientConfig := openai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return newOpenAIGenerator(openai.NewClientWithConfig(clientConfig), cfg)
}

func newOpenAIGenerator(client chatCompleter, cfg OpenAIConfig) *OpenAIGenerator {
	ids := make(map[string]string, len(cfg.RemoteIDs))
	for k, v := range cfg.RemoteIDs {
		ids[k] = v
	}
	return &OpenAIGenerator{
		client:      client,
		remoteIDs:   ids,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
}

// RemoteID returns the endpoint model ID used for model.
func (g *OpenAIGenerator) RemoteID(model string) string {
	if id, ok := g.remoteIDs[model]; ok && id != "" {
		return id
	}
	return model
}

// Generate implements Generator.
func (g *OpenAIGenerator) Generate(ctx context.Context, model, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: g.RemoteID(model),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: g.temperature,
	}
	if g.maxTokens > 0 {
		req.MaxTokens = g.maxTokens
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", inferenceError(model, fmt.Errorf("api error %d: %s", apiErr.HTTPStatusCode, apiErr.Message))
		}
		return "", inferenceError(model, err)
	}
	if len(resp.Choices) == 0 {
		return "", inferenceError(model, errors.New("no choices in completion"))
	}
	return checkResponse(model, resp.Choices[0].Message.Content)
}
