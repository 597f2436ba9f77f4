package llm

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ChatProvider serves every OpenAI-compatible endpoint
type ChatProvider struct {
	name        string
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

func newChatProvider(name string, config openai.ClientConfig, model string, temperature float32, maxTokens int) *ChatProvider {
	if temperature == 0 {
		temperature = 0.7
	}
	if maxTokens == 0 {
		maxTokens = 300
	}
	return &ChatProvider{
		name:        name,
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

func NewOpenAIProvider(apiKey string, model string, temperature float32, maxTokens int) *ChatProvider {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return newChatProvider("OpenAI", openai.DefaultConfig(apiKey), model, temperature, maxTokens)
}

func (p *ChatProvider) GetProviderName() string {
	return p.name
}

func (p *ChatProvider) GenerateResponse(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMessage},
		},
		Temperature: p.temperature,
		MaxTokens:   p.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%s error: %w", strings.ToLower(p.name), err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from %s", p.name)
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
