package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/wisemantransports-ux/retail-assist-sub005/internal/core/automation"
	"github.com/wisemantransports-ux/retail-assist-sub005/internal/core/signature"
)

const (
	// HeaderWebhookSignature carries the HMAC of the delivered body
	HeaderWebhookSignature = "X-Automation-Signature"

	responseSnippetLimit = 512
)

type webhookRule struct {
	ID          uuid.UUID              `json:"id"`
	Name        string                 `json:"name"`
	WorkspaceID uuid.UUID              `json:"workspace_id"`
	AgentID     uuid.UUID              `json:"agent_id"`
	TriggerType automation.TriggerType `json:"trigger_type"`
	ActionType  automation.ActionType  `json:"action_type"`
}

type webhookPayload struct {
	Event  automation.InboundEvent `json:"event"`
	Rule   webhookRule             `json:"rule"`
	SentAt time.Time               `json:"sent_at"`
}

// Webhook executes send_webhook: one POST attempt, no retries
type Webhook struct {
	client *resty.Client
	now    func() time.Time
}

func NewWebhook() *Webhook {
	client := resty.New().
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "retail-assist-automation/1.0").
		SetRetryCount(0)
	return &Webhook{client: client, now: time.Now}
}

func (w *Webhook) Execute(ctx context.Context, rule automation.Rule, event automation.InboundEvent) (automation.Outcome, error) {
	action, ok := rule.Action.(automation.WebhookAction)
	if !ok {
		return automation.Outcome{}, wrongConfig(rule)
	}

	body, err := json.Marshal(webhookPayload{
		Event: event,
		Rule: webhookRule{
			ID:          rule.ID,
			Name:        rule.Name,
			WorkspaceID: rule.WorkspaceID,
			AgentID:     rule.AgentID,
			TriggerType: rule.TriggerType,
			ActionType:  rule.ActionType,
		},
		SentAt: w.now().UTC(),
	})
	if err != nil {
		return automation.Outcome{}, providerError(err)
	}

	callCtx, cancel := context.WithTimeout(ctx, action.Timeout())
	defer cancel()

	req := w.client.R().
		SetContext(callCtx).
		SetHeaders(action.Headers).
		SetBody(body).
		SetDoNotParseResponse(true)
	if action.Secret != "" {
		req.SetHeader(HeaderWebhookSignature, signature.Sign(body, action.Secret))
	}

	resp, err := req.Post(action.URL)
	if err != nil {
		if callCtx.Err() != nil {
			return automation.Outcome{}, fmt.Errorf("%w: webhook %s: %v", automation.ErrActionTimeout, action.URL, err)
		}
		return automation.Outcome{}, providerError(err)
	}

	raw := resp.RawBody()
	defer raw.Close()
	head, _ := io.ReadAll(io.LimitReader(raw, responseSnippetLimit))

	detail := fmt.Sprintf("status=%d body=%s", resp.StatusCode(), snippet(head))
	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return automation.Outcome{Detail: detail}, fmt.Errorf("%w: webhook %s returned status %d", automation.ErrActionProvider, action.URL, resp.StatusCode())
	}

	log.Info().Str("rule_id", rule.ID.String()).Int("status", resp.StatusCode()).Msg("🔔 Webhook delivered")
	return automation.Outcome{Executed: true, ProviderRef: fmt.Sprintf("%d", resp.StatusCode()), Detail: detail}, nil
}

// snippet truncates b to responseSnippetLimit bytes without splitting a
// rune. Other invalid UTF-8 is replaced so the detail stays storable.
func snippet(b []byte) string {
	if len(b) > responseSnippetLimit {
		b = b[:responseSnippetLimit]
	}
	for i := 1; i < utf8.UTFMax && i <= len(b); i++ {
		if start := len(b) - i; utf8.RuneStart(b[start]) {
			if !utf8.FullRune(b[start:]) {
				b = b[:start]
			}
			break
		}
	}
	return strings.ToValidUTF8(string(b), "\uFFFD")
}
