package actions

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/wisemantransports-ux/retail-assist-sub005/internal/core/automation"
	"github.com/wisemantransports-ux/retail-assist-sub005/internal/core/email"
	"github.com/wisemantransports-ux/retail-assist-sub005/internal/core/platform"
)

type fakeSender struct {
	mu       sync.Mutex
	messages []platform.SendRequest
	replies  []platform.SendRequest
	err      error
}

func (f *fakeSender) SendMessage(ctx context.Context, req platform.SendRequest) (platform.SendResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return platform.SendResult{}, f.err
	}
	f.messages = append(f.messages, req)
	return platform.SendResult{ExternalMessageID: "mid-1"}, nil
}

func (f *fakeSender) ReplyToComment(ctx context.Context, req platform.SendRequest) (platform.SendResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return platform.SendResult{}, f.err
	}
	f.replies = append(f.replies, req)
	return platform.SendResult{ExternalMessageID: "reply-1"}, nil
}

type fakeLedger struct {
	sent map[string]bool
	err  error
}

func (f *fakeLedger) HasSuccessfulSend(ctx context.Context, ruleID uuid.UUID, externalID string) (bool, error) {
	return f.sent[ruleID.String()+"|"+externalID], f.err
}

type fakeMessageLog struct {
	saved []OutboundMessage
}

func (f *fakeMessageLog) SaveOutbound(ctx context.Context, msg OutboundMessage) error {
	f.saved = append(f.saved, msg)
	return nil
}

type fakeMailer struct {
	sent []email.Message
	err  error
}

func (f *fakeMailer) Send(ctx context.Context, msg email.Message) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, msg)
	return "email-1", nil
}

type fakeGenerator struct {
	reply string
	err   error
	calls int
}

func (f *fakeGenerator) GenerateResponse(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	f.calls++
	return f.reply, f.err
}

func commentEvent() automation.InboundEvent {
	return automation.InboundEvent{
		Platform:   automation.PlatformFacebook,
		Kind:       automation.KindComment,
		ExternalID: "c-1",
		AuthorID:   "user-1",
		AuthorName: "Jane Doe",
		Text:       "Price please",
		ChannelID:  "page-1",
	}
}

func dmRule(action automation.DirectMessageAction) automation.Rule {
	return automation.Rule{
		ID:         uuid.New(),
		ActionType: automation.ActionSendDM,
		Action:     action,
	}
}

func TestDirectMessageToCommentIsPrivateReply(t *testing.T) {
	sender := &fakeSender{}
	messages := &fakeMessageLog{}
	exec := NewDirectMessage(sender, NewBodyResolver(nil), &fakeLedger{}, messages)

	rule := dmRule(automation.DirectMessageAction{ReplyBody: automation.ReplyBody{Template: "Hi {first_name}, check your inbox"}})
	out, err := exec.Execute(context.Background(), rule, commentEvent())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !out.Executed || out.ProviderRef != "mid-1" {
		t.Fatalf("outcome = %+v", out)
	}
	if len(sender.messages) != 1 {
		t.Fatalf("sent %d messages", len(sender.messages))
	}
	req := sender.messages[0]
	if req.CommentID != "c-1" || req.ChannelID != "page-1" || req.Text != "Hi Jane, check your inbox" {
		t.Fatalf("request = %+v", req)
	}
	if len(messages.saved) != 1 || messages.saved[0].ProviderRef != "mid-1" || messages.saved[0].BodySource != SourceTemplate {
		t.Fatalf("saved = %+v", messages.saved)
	}
}

func TestDirectMessageToMessageAuthor(t *testing.T) {
	sender := &fakeSender{}
	exec := NewDirectMessage(sender, NewBodyResolver(nil), nil, nil)

	event := commentEvent()
	event.Platform = automation.PlatformWhatsApp
	event.Kind = automation.KindMessage
	event.AuthorID = "6281234"

	_, err := exec.Execute(context.Background(), dmRule(automation.DirectMessageAction{ReplyBody: automation.ReplyBody{Template: "ok"}}), event)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if sender.messages[0].RecipientID != "6281234" || sender.messages[0].CommentID != "" {
		t.Fatalf("request = %+v", sender.messages[0])
	}
}

func TestDirectMessageSkips(t *testing.T) {
	exec := NewDirectMessage(&fakeSender{}, NewBodyResolver(nil), nil, nil)
	rule := dmRule(automation.DirectMessageAction{ReplyBody: automation.ReplyBody{Template: "ok"}})

	form := commentEvent()
	form.Platform = automation.PlatformWebsiteForm
	form.Kind = automation.KindFormSubmission
	out, err := exec.Execute(context.Background(), rule, form)
	if err != nil || out.SkipReason != automation.SkipUnsupportedPlatform {
		t.Fatalf("form: out = %+v, err = %v", out, err)
	}

	tick := automation.InboundEvent{Kind: automation.KindScheduleTick, Platform: automation.PlatformFacebook}
	out, err = exec.Execute(context.Background(), rule, tick)
	if err != nil || out.SkipReason != automation.SkipNoRecipient {
		t.Fatalf("tick: out = %+v, err = %v", out, err)
	}
}

func TestDirectMessageRecipientOverride(t *testing.T) {
	sender := &fakeSender{}
	exec := NewDirectMessage(sender, NewBodyResolver(nil), nil, nil)
	rule := dmRule(automation.DirectMessageAction{
		ReplyBody:   automation.ReplyBody{Template: "weekly promo"},
		RecipientID: "psid-9",
		Platform:    automation.PlatformInstagram,
		ChannelID:   "ig-1",
	})

	tick := automation.InboundEvent{Kind: automation.KindScheduleTick, ExternalID: "schedule:x"}
	out, err := exec.Execute(context.Background(), rule, tick)
	if err != nil || !out.Executed {
		t.Fatalf("out = %+v, err = %v", out, err)
	}
	req := sender.messages[0]
	if req.Platform != automation.PlatformInstagram || req.RecipientID != "psid-9" || req.ChannelID != "ig-1" {
		t.Fatalf("request = %+v", req)
	}
}

func TestDirectMessageDuplicateSuppressed(t *testing.T) {
	sender := &fakeSender{}
	rule := dmRule(automation.DirectMessageAction{ReplyBody: automation.ReplyBody{Template: "ok"}})
	ledger := &fakeLedger{sent: map[string]bool{rule.ID.String() + "|c-1": true}}
	exec := NewDirectMessage(sender, NewBodyResolver(nil), ledger, nil)

	_, err := exec.Execute(context.Background(), rule, commentEvent())
	if !errors.Is(err, automation.ErrDuplicateSuppressed) {
		t.Fatalf("err = %v, want ErrDuplicateSuppressed", err)
	}
	if len(sender.messages) != 0 {
		t.Fatalf("duplicate was sent")
	}
}

func TestDirectMessageLedgerErrorDoesNotBlock(t *testing.T) {
	sender := &fakeSender{}
	exec := NewDirectMessage(sender, NewBodyResolver(nil), &fakeLedger{err: errors.New("db down")}, nil)
	rule := dmRule(automation.DirectMessageAction{ReplyBody: automation.ReplyBody{Template: "ok"}})

	if _, err := exec.Execute(context.Background(), rule, commentEvent()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(sender.messages) != 1 {
		t.Fatalf("sent %d messages", len(sender.messages))
	}
}

func TestDirectMessageProviderError(t *testing.T) {
	exec := NewDirectMessage(&fakeSender{err: errors.New("graph 500")}, NewBodyResolver(nil), nil, nil)
	rule := dmRule(automation.DirectMessageAction{ReplyBody: automation.ReplyBody{Template: "ok"}})

	_, err := exec.Execute(context.Background(), rule, commentEvent())
	if automation.KindOf(err) != automation.KindActionProviderError {
		t.Fatalf("kind = %s, err = %v", automation.KindOf(err), err)
	}
}

func TestBodyResolverAI(t *testing.T) {
	event := commentEvent()

	gen := &fakeGenerator{reply: "  Hello from AI  "}
	text, source, err := NewBodyResolver(gen).Resolve(context.Background(), automation.ReplyBody{UseAI: true, AIPrompt: "Be brief"}, event)
	if err != nil || text != "Hello from AI" || source != SourceAI {
		t.Fatalf("text=%q source=%q err=%v", text, source, err)
	}

	failing := &fakeGenerator{err: errors.New("quota")}
	text, source, err = NewBodyResolver(failing).Resolve(context.Background(), automation.ReplyBody{UseAI: true, FallbackTemplate: "Thanks {author_name}"}, event)
	if err != nil || text != "Thanks Jane Doe" || source != SourceFallback {
		t.Fatalf("text=%q source=%q err=%v", text, source, err)
	}

	_, _, err = NewBodyResolver(nil).Resolve(context.Background(), automation.ReplyBody{UseAI: true}, event)
	if !errors.Is(err, automation.ErrActionProvider) {
		t.Fatalf("err = %v, want ErrActionProvider", err)
	}

	_, _, err = NewBodyResolver(nil).Resolve(context.Background(), automation.ReplyBody{Template: "   "}, event)
	if !errors.Is(err, automation.ErrRuleEvaluation) {
		t.Fatalf("err = %v, want ErrRuleEvaluation", err)
	}
}

func TestPublicReply(t *testing.T) {
	sender := &fakeSender{}
	messages := &fakeMessageLog{}
	exec := NewPublicReply(sender, NewBodyResolver(nil), nil, messages)
	rule := automation.Rule{
		ID:         uuid.New(),
		ActionType: automation.ActionSendPublicReply,
		Action:     automation.PublicReplyAction{ReplyBody: automation.ReplyBody{Template: "Sent you a DM, {first_name}!"}},
	}

	out, err := exec.Execute(context.Background(), rule, commentEvent())
	if err != nil || !out.Executed || out.ProviderRef != "reply-1" {
		t.Fatalf("out = %+v, err = %v", out, err)
	}
	if sender.replies[0].CommentID != "c-1" || sender.replies[0].Text != "Sent you a DM, Jane!" {
		t.Fatalf("reply = %+v", sender.replies[0])
	}
	if len(messages.saved) != 1 {
		t.Fatalf("saved %d messages", len(messages.saved))
	}

	msg := commentEvent()
	msg.Kind = automation.KindMessage
	out, err = exec.Execute(context.Background(), rule, msg)
	if err != nil || out.SkipReason != automation.SkipNotAComment {
		t.Fatalf("message event: out = %+v, err = %v", out, err)
	}

	wa := commentEvent()
	wa.Platform = automation.PlatformWhatsApp
	wa.Kind = automation.KindMessage
	out, _ = exec.Execute(context.Background(), rule, wa)
	if out.SkipReason != automation.SkipNotAComment {
		t.Fatalf("whatsapp: out = %+v", out)
	}
}

func TestWrongConfigType(t *testing.T) {
	exec := NewPublicReply(&fakeSender{}, NewBodyResolver(nil), nil, nil)
	rule := automation.Rule{ActionType: automation.ActionSendPublicReply, Action: automation.WebhookAction{}}
	if _, err := exec.Execute(context.Background(), rule, commentEvent()); !errors.Is(err, automation.ErrRuleEvaluation) {
		t.Fatalf("err = %v", err)
	}
}

func TestEmailRecipients(t *testing.T) {
	form := automation.InboundEvent{
		Platform:    automation.PlatformWebsiteForm,
		Kind:        automation.KindFormSubmission,
		ExternalID:  "sub-1",
		AuthorEmail: "jane@example.com",
		AuthorName:  "Jane",
		Fields:      map[string]string{"product": "Tote bag"},
	}

	tests := []struct {
		name      string
		action    automation.EmailAction
		event     automation.InboundEvent
		wantTo    string
		wantSkip  string
		wantTitle string
	}{
		{
			name:      "author",
			action:    automation.EmailAction{ReplyBody: automation.ReplyBody{Template: "About {product}"}, Subject: "Hi {author_name}"},
			event:     form,
			wantTo:    "jane@example.com",
			wantTitle: "Hi Jane",
		},
		{
			name:      "fixed",
			action:    automation.EmailAction{ReplyBody: automation.ReplyBody{Template: "New lead {author_email}"}, Subject: "Lead", To: "sales@example.com", Recipient: automation.EmailRecipientFixed},
			event:     form,
			wantTo:    "sales@example.com",
			wantTitle: "Lead",
		},
		{
			name:     "no recipient",
			action:   automation.EmailAction{ReplyBody: automation.ReplyBody{Template: "x"}, Subject: "s"},
			event:    automation.InboundEvent{Platform: automation.PlatformFacebook, Kind: automation.KindComment, ExternalID: "c"},
			wantSkip: automation.SkipNoRecipient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mailer := &fakeMailer{}
			exec := NewEmail(mailer, NewBodyResolver(nil), nil, &fakeMessageLog{})
			rule := automation.Rule{ID: uuid.New(), ActionType: automation.ActionSendEmail, Action: tt.action}

			out, err := exec.Execute(context.Background(), rule, tt.event)
			if err != nil {
				t.Fatalf("Execute: %v", err)
			}
			if tt.wantSkip != "" {
				if out.SkipReason != tt.wantSkip || len(mailer.sent) != 0 {
					t.Fatalf("out = %+v, sent = %d", out, len(mailer.sent))
				}
				return
			}
			if !out.Executed || out.ProviderRef != "email-1" {
				t.Fatalf("out = %+v", out)
			}
			if mailer.sent[0].To != tt.wantTo || mailer.sent[0].Subject != tt.wantTitle {
				t.Fatalf("message = %+v", mailer.sent[0])
			}
		})
	}
}
