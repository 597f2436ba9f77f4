package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/wisemantransports-ux/retail-assist-sub005/internal/core/automation"
	"github.com/wisemantransports-ux/retail-assist-sub005/internal/core/llm"
)

// Body sources stored with outbound messages
const (
	SourceTemplate = "template"
	SourceAI       = "ai"
	SourceFallback = "fallback"
)

// Generator produces AI reply text
type Generator interface {
	GenerateResponse(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

// BodyResolver turns a ReplyBody into the text to send
type BodyResolver struct {
	ai Generator
}

// NewBodyResolver creates a resolver. ai may be nil, in which case AI
// bodies always use their fallback template.
func NewBodyResolver(ai Generator) *BodyResolver {
	return &BodyResolver{ai: ai}
}

// Resolve returns the rendered body and where it came from
func (r *BodyResolver) Resolve(ctx context.Context, body automation.ReplyBody, event automation.InboundEvent) (string, string, error) {
	if !body.UseAI {
		text := strings.TrimSpace(automation.Render(body.Template, event))
		if text == "" {
			return "", "", fmt.Errorf("%w: template rendered an empty body", automation.ErrRuleEvaluation)
		}
		return text, SourceTemplate, nil
	}

	if r != nil && r.ai != nil {
		system, user := llm.BuildReplyPrompt(llm.ReplyContext{
			Platform:    string(event.Platform),
			Channel:     string(event.Kind),
			AuthorName:  event.AuthorName,
			Text:        event.Text,
			Instruction: automation.Render(body.AIPrompt, event),
		})
		text, err := r.ai.GenerateResponse(ctx, system, user)
		if err == nil && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text), SourceAI, nil
		}
		if ctx.Err() != nil {
			return "", "", ctx.Err()
		}
		log.Warn().Err(err).Msg("⚠️ AI reply failed, using fallback template")
	}

	fallback := body.FallbackTemplate
	if fallback == "" {
		fallback = body.Template
	}
	text := strings.TrimSpace(automation.Render(fallback, event))
	if text == "" {
		return "", "", fmt.Errorf("%w: AI reply unavailable and no fallback template", automation.ErrActionProvider)
	}
	return text, SourceFallback, nil
}
