// Package actions implements the side effects of matched automation rules.
package actions

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/wisemantransports-ux/retail-assist-sub005/internal/core/automation"
)

// SendLedger answers whether a rule already acted on an event
type SendLedger interface {
	HasSuccessfulSend(ctx context.Context, ruleID uuid.UUID, externalID string) (bool, error)
}

// OutboundMessage is the persisted copy of something an executor sent
type OutboundMessage struct {
	RuleID          uuid.UUID
	WorkspaceID     uuid.UUID
	AgentID         uuid.UUID
	Platform        automation.Platform
	ActionType      automation.ActionType
	EventExternalID string
	Recipient       string
	Subject         string
	Body            string
	BodySource      string
	ProviderRef     string
	SentAt          time.Time
}

// MessageLog stores outbound messages
type MessageLog interface {
	SaveOutbound(ctx context.Context, msg OutboundMessage) error
}

// checkDuplicate returns ErrDuplicateSuppressed when the rule already
// succeeded for this event. A ledger failure lets the send proceed.
func checkDuplicate(ctx context.Context, ledger SendLedger, rule automation.Rule, event automation.InboundEvent) error {
	if ledger == nil || event.ExternalID == "" {
		return nil
	}
	sent, err := ledger.HasSuccessfulSend(ctx, rule.ID, event.ExternalID)
	if err != nil {
		log.Warn().Err(err).Str("rule_id", rule.ID.String()).Msg("⚠️ Send ledger unavailable, continuing")
		return nil
	}
	if sent {
		return fmt.Errorf("%w: rule %s already acted on %s", automation.ErrDuplicateSuppressed, rule.ID, event.ExternalID)
	}
	return nil
}

// saveOutbound persists msg. Failures are logged only; the send already happened.
func saveOutbound(ctx context.Context, messages MessageLog, msg OutboundMessage) {
	if messages == nil {
		return
	}
	msg.SentAt = time.Now().UTC()
	if err := messages.SaveOutbound(context.WithoutCancel(ctx), msg); err != nil {
		log.Error().Err(err).Str("rule_id", msg.RuleID.String()).Msg("❌ Failed to save outbound message")
	}
}

func wrongConfig(rule automation.Rule) error {
	return fmt.Errorf("%w: action config %T does not match %s", automation.ErrRuleEvaluation, rule.Action, rule.ActionType)
}

func providerError(err error) error {
	return fmt.Errorf("%w: %v", automation.ErrActionProvider, err)
}
