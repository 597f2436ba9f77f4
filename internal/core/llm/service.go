package llm

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Service wraps LLM provider untuk dependency injection
type Service struct {
	provider LLMProvider
}

// NewService creates the LLM service. A config without any API key
// yields a nil service and AI replies fall back to their templates.
func NewService(cfg *ProviderConfig) (*Service, error) {
	if cfg.OpenAIKey == "" && cfg.GroqKey == "" && cfg.DeepSeekKey == "" {
		log.Warn().Msg("⚠️ No LLM API key configured, AI replies use fallback templates")
		return nil, nil
	}

	provider, err := NewProvider(cfg)
	if err != nil {
		return nil, err
	}

	log.Info().Str("provider", provider.GetProviderName()).Str("model", cfg.Model).Msg("🤖 LLM provider ready")
	return &Service{provider: provider}, nil
}

// NewServiceWithProvider creates service with custom provider (for testing)
func NewServiceWithProvider(provider LLMProvider) *Service {
	return &Service{provider: provider}
}

// GenerateResponse generates AI response
func (s *Service) GenerateResponse(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	if s == nil || s.provider == nil {
		return "", fmt.Errorf("no LLM provider configured")
	}
	return s.provider.GenerateResponse(ctx, systemPrompt, userMessage)
}

// GetProviderName returns current provider name
func (s *Service) GetProviderName() string {
	if s == nil || s.provider == nil {
		return "none"
	}
	return s.provider.GetProviderName()
}
