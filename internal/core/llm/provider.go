// Package llm generates reply bodies with an OpenAI-compatible chat model.
package llm

import (
	"context"
	"fmt"
)

// LLMProvider is a chat completion backend
type LLMProvider interface {
	GenerateResponse(ctx context.Context, systemPrompt, userMessage string) (string, error)
	GetProviderName() string
}

// ProviderType untuk factory
type ProviderType string

const (
	ProviderOpenAI   ProviderType = "openai"
	ProviderGroq     ProviderType = "groq"
	ProviderDeepSeek ProviderType = "deepseek"
)

// ProviderConfig untuk create provider
type ProviderConfig struct {
	Type ProviderType

	OpenAIKey   string
	GroqKey     string
	DeepSeekKey string

	Model       string
	Temperature float32
	MaxTokens   int
}

// NewProvider factory untuk create LLM provider
func NewProvider(cfg *ProviderConfig) (LLMProvider, error) {
	switch cfg.Type {
	case ProviderOpenAI, "":
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required")
		}
		return NewOpenAIProvider(cfg.OpenAIKey, cfg.Model, cfg.Temperature, cfg.MaxTokens), nil

	case ProviderGroq:
		if cfg.GroqKey == "" {
			return nil, fmt.Errorf("GROQ_API_KEY is required")
		}
		return NewGroqProvider(cfg.GroqKey, cfg.Model, cfg.Temperature, cfg.MaxTokens), nil

	case ProviderDeepSeek:
		if cfg.DeepSeekKey == "" {
			return nil, fmt.Errorf("DEEPSEEK_API_KEY is required")
		}
		return NewDeepSeekProvider(cfg.DeepSeekKey, cfg.Model, cfg.Temperature, cfg.MaxTokens), nil

	default:
		return nil, fmt.Errorf("unknown LLM provider type: %s", cfg.Type)
	}
}
