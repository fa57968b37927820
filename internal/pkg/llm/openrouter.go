package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

const openRouterURL = "https://openrouter.ai/api/v1"

// popular models shown when the account can't list models
var popularModels = []string{
	"openai/gpt-4o-mini",
	"openai/gpt-4o",
	"anthropic/claude-3.5-sonnet",
	"anthropic/claude-3-haiku",
	"google/gemini-pro-1.5",
	"google/gemini-flash-1.5",
	"meta-llama/llama-3.1-70b-instruct",
	"meta-llama/llama-3.1-8b-instruct",
	"deepseek/deepseek-chat",
	"qwen/qwen-2.5-72b-instruct",
	"qwen/qwen-2.5-7b-instruct",
	"mistralai/mistral-large",
}

// OpenRouter talks to openrouter.ai through its OpenAI compatible API
type OpenRouter struct {
	client      openai.Client
	apiKey      string
	probeTimout time.Duration
}

// NewOpenRouter creates an OpenRouter provider. An empty key gives an unavailable provider
func NewOpenRouter(apiKey string) *OpenRouter {
	res := &OpenRouter{apiKey: apiKey, probeTimout: time.Second * 10}
	res.client = openai.NewClient(option.WithAPIKey(apiKey), option.WithBaseURL(openRouterURL))
	return res
}

// Name implements Provider
func (sp *OpenRouter) Name() string {
	return "openrouter"
}

// CheckStatus probes the models endpoint
func (sp *OpenRouter) CheckStatus(ctx context.Context) *StatusData {
	res := &StatusData{Provider: sp.Name(), URL: openRouterURL}
	if sp.apiKey == "" {
		res.Error = "API key not configured"
		return res
	}
	ctx, cancelF := context.WithTimeout(ctx, sp.probeTimout)
	defer cancelF()
	page, err := sp.client.Models.List(ctx)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Available = true
	res.ModelsCount = len(page.Data)
	return res
}

// ListModels returns model IDs, or a popular subset if the call fails
func (sp *OpenRouter) ListModels(ctx context.Context) ([]string, error) {
	if sp.apiKey == "" {
		return popularModels, nil
	}
	ctx, cancelF := context.WithTimeout(ctx, sp.probeTimout)
	defer cancelF()
	page, err := sp.client.Models.List(ctx)
	if err != nil {
		return popularModels, nil
	}
	res := make([]string, 0, len(page.Data))
	for _, m := range page.Data {
		res = append(res, m.ID)
	}
	if len(res) == 0 {
		return popularModels, nil
	}
	return res, nil
}

// Generate runs a chat completion with a single user message
func (sp *OpenRouter) Generate(ctx context.Context, model, prompt string) (string, error) {
	if sp.apiKey == "" {
		return "", fmt.Errorf("API key not configured")
	}
	completion, err := sp.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("can't call: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}
	return completion.Choices[0].Message.Content, nil
}
