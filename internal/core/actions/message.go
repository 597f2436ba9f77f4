package actions

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/wisemantransports-ux/retail-assist-sub005/internal/core/automation"
	"github.com/wisemantransports-ux/retail-assist-sub005/internal/core/platform"
)

// DirectMessage executes send_dm. Comment events get a private reply
// addressed by comment id, message events a DM to the author.
type DirectMessage struct {
	sender   platform.Sender
	bodies   *BodyResolver
	ledger   SendLedger
	messages MessageLog
}

func NewDirectMessage(sender platform.Sender, bodies *BodyResolver, ledger SendLedger, messages MessageLog) *DirectMessage {
	return &DirectMessage{sender: sender, bodies: bodies, ledger: ledger, messages: messages}
}

func (d *DirectMessage) Execute(ctx context.Context, rule automation.Rule, event automation.InboundEvent) (automation.Outcome, error) {
	action, ok := rule.Action.(automation.DirectMessageAction)
	if !ok {
		return automation.Outcome{}, wrongConfig(rule)
	}

	req := platform.SendRequest{
		Platform:    event.Platform,
		ChannelID:   event.ChannelID,
		RecipientID: event.AuthorID,
	}
	if action.Platform != "" {
		req.Platform = action.Platform
	}
	if action.ChannelID != "" {
		req.ChannelID = action.ChannelID
	}
	if action.RecipientID != "" {
		req.RecipientID = action.RecipientID
	}

	switch req.Platform {
	case automation.PlatformFacebook, automation.PlatformInstagram, automation.PlatformWhatsApp:
	default:
		return automation.Outcome{SkipReason: automation.SkipUnsupportedPlatform}, nil
	}

	if event.Kind == automation.KindComment && action.RecipientID == "" && req.Platform != automation.PlatformWhatsApp {
		req.CommentID = event.ExternalID
	}
	if req.RecipientID == "" && req.CommentID == "" {
		return automation.Outcome{SkipReason: automation.SkipNoRecipient}, nil
	}

	if err := checkDuplicate(ctx, d.ledger, rule, event); err != nil {
		return automation.Outcome{}, err
	}

	text, source, err := d.bodies.Resolve(ctx, action.ReplyBody, event)
	if err != nil {
		return automation.Outcome{}, err
	}
	req.Text = text

	res, err := d.sender.SendMessage(ctx, req)
	if err != nil {
		return automation.Outcome{}, providerError(err)
	}

	log.Info().
		Str("rule_id", rule.ID.String()).
		Str("platform", string(req.Platform)).
		Str("message_id", res.ExternalMessageID).
		Msg("📤 Direct message sent")

	recipient := req.RecipientID
	if req.CommentID != "" {
		recipient = "comment:" + req.CommentID
	}
	saveOutbound(ctx, d.messages, OutboundMessage{
		RuleID:          rule.ID,
		WorkspaceID:     rule.WorkspaceID,
		AgentID:         rule.AgentID,
		Platform:        req.Platform,
		ActionType:      automation.ActionSendDM,
		EventExternalID: event.ExternalID,
		Recipient:       recipient,
		Body:            text,
		BodySource:      source,
		ProviderRef:     res.ExternalMessageID,
	})

	return automation.Outcome{Executed: true, ProviderRef: res.ExternalMessageID, Detail: source}, nil
}

// PublicReply executes send_public_reply under Facebook and Instagram comments
type PublicReply struct {
	sender   platform.Sender
	bodies   *BodyResolver
	ledger   SendLedger
	messages MessageLog
}

func NewPublicReply(sender platform.Sender, bodies *BodyResolver, ledger SendLedger, messages MessageLog) *PublicReply {
	return &PublicReply{sender: sender, bodies: bodies, ledger: ledger, messages: messages}
}

func (p *PublicReply) Execute(ctx context.Context, rule automation.Rule, event automation.InboundEvent) (automation.Outcome, error) {
	action, ok := rule.Action.(automation.PublicReplyAction)
	if !ok {
		return automation.Outcome{}, wrongConfig(rule)
	}

	switch event.Platform {
	case automation.PlatformFacebook, automation.PlatformInstagram:
	case automation.PlatformWebsiteForm:
		return automation.Outcome{SkipReason: automation.SkipUnsupportedPlatform}, nil
	default:
		return automation.Outcome{SkipReason: automation.SkipNotAComment}, nil
	}
	if event.Kind != automation.KindComment || event.ExternalID == "" {
		return automation.Outcome{SkipReason: automation.SkipNotAComment}, nil
	}

	if err := checkDuplicate(ctx, p.ledger, rule, event); err != nil {
		return automation.Outcome{}, err
	}

	text, source, err := p.bodies.Resolve(ctx, action.ReplyBody, event)
	if err != nil {
		return automation.Outcome{}, err
	}

	res, err := p.sender.ReplyToComment(ctx, platform.SendRequest{
		Platform:  event.Platform,
		ChannelID: event.ChannelID,
		CommentID: event.ExternalID,
		Text:      text,
	})
	if err != nil {
		return automation.Outcome{}, providerError(err)
	}

	log.Info().
		Str("rule_id", rule.ID.String()).
		Str("platform", string(event.Platform)).
		Str("reply_id", res.ExternalMessageID).
		Msg("💬 Public reply posted")

	saveOutbound(ctx, p.messages, OutboundMessage{
		RuleID:          rule.ID,
		WorkspaceID:     rule.WorkspaceID,
		AgentID:         rule.AgentID,
		Platform:        event.Platform,
		ActionType:      automation.ActionSendPublicReply,
		EventExternalID: event.ExternalID,
		Recipient:       "comment:" + event.ExternalID,
		Body:            text,
		BodySource:      source,
		ProviderRef:     res.ExternalMessageID,
	})

	return automation.Outcome{Executed: true, ProviderRef: res.ExternalMessageID, Detail: source}, nil
}
