package actions

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/wisemantransports-ux/retail-assist-sub005/internal/core/automation"
	"github.com/wisemantransports-ux/retail-assist-sub005/internal/core/email"
)

// Mailer delivers one email and returns the provider message id
type Mailer interface {
	Send(ctx context.Context, msg email.Message) (string, error)
}

// Email executes send_email
type Email struct {
	mailer   Mailer
	bodies   *BodyResolver
	ledger   SendLedger
	messages MessageLog
}

func NewEmail(mailer Mailer, bodies *BodyResolver, ledger SendLedger, messages MessageLog) *Email {
	return &Email{mailer: mailer, bodies: bodies, ledger: ledger, messages: messages}
}

func (e *Email) Execute(ctx context.Context, rule automation.Rule, event automation.InboundEvent) (automation.Outcome, error) {
	action, ok := rule.Action.(automation.EmailAction)
	if !ok {
		return automation.Outcome{}, wrongConfig(rule)
	}

	to, toName := recipientFor(action, event)
	if to == "" {
		return automation.Outcome{SkipReason: automation.SkipNoRecipient}, nil
	}

	if err := checkDuplicate(ctx, e.ledger, rule, event); err != nil {
		return automation.Outcome{}, err
	}

	text, source, err := e.bodies.Resolve(ctx, action.ReplyBody, event)
	if err != nil {
		return automation.Outcome{}, err
	}
	subject := strings.TrimSpace(automation.Render(action.Subject, event))

	messageID, err := e.mailer.Send(ctx, email.Message{
		To:      to,
		ToName:  toName,
		Subject: subject,
		Text:    text,
	})
	if err != nil {
		return automation.Outcome{}, providerError(err)
	}

	log.Info().Str("rule_id", rule.ID.String()).Str("message_id", messageID).Msg("📧 Email sent")

	saveOutbound(ctx, e.messages, OutboundMessage{
		RuleID:          rule.ID,
		WorkspaceID:     rule.WorkspaceID,
		AgentID:         rule.AgentID,
		Platform:        event.Platform,
		ActionType:      automation.ActionSendEmail,
		EventExternalID: event.ExternalID,
		Recipient:       to,
		Subject:         subject,
		Body:            text,
		BodySource:      source,
		ProviderRef:     messageID,
	})

	return automation.Outcome{Executed: true, ProviderRef: messageID, Detail: source}, nil
}

// recipientFor picks the author address unless the action pins a fixed one
func recipientFor(action automation.EmailAction, event automation.InboundEvent) (string, string) {
	if action.Recipient != automation.EmailRecipientFixed && event.AuthorEmail != "" {
		return event.AuthorEmail, event.AuthorName
	}
	return strings.TrimSpace(automation.Render(action.To, event)), ""
}
