package automation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// MaxActionDelay bounds the optional pre-send delay of reply actions
const MaxActionDelay = 15 * time.Minute

// ScheduleParser accepts standard 5-field expressions, an optional leading
// seconds field, descriptors such as @hourly and a CRON_TZ= prefix.
var ScheduleParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// TriggerConfig is the tagged union of trigger variants
type TriggerConfig interface {
	TriggerType() TriggerType
}

// KeywordTrigger backs both the comment and keyword trigger types
type KeywordTrigger struct {
	Type            TriggerType `json:"-"`
	Platform        Platform    `json:"platform,omitempty"`
	Keywords        []string    `json:"keywords,omitempty"`
	ExcludeKeywords []string    `json:"exclude_keywords,omitempty"`
	EventKinds      []EventKind `json:"event_kinds,omitempty"`
}

func (t KeywordTrigger) TriggerType() TriggerType { return t.Type }

// ScheduleTrigger fires from the scheduler, never from webhooks
type ScheduleTrigger struct {
	Schedule string `json:"schedule"`
	Timezone string `json:"timezone,omitempty"`

	parsed cron.Schedule
}

func (t ScheduleTrigger) TriggerType() TriggerType { return TriggerTime }

// Spec returns the expression handed to the cron parser
func (t ScheduleTrigger) Spec() string {
	if t.Timezone != "" && !strings.HasPrefix(t.Schedule, "CRON_TZ=") && !strings.HasPrefix(t.Schedule, "TZ=") {
		return "CRON_TZ=" + t.Timezone + " " + t.Schedule
	}
	return t.Schedule
}

// Parsed returns the compiled schedule
func (t ScheduleTrigger) Parsed() cron.Schedule { return t.parsed }

// ManualTrigger only fires on operator invocation
type ManualTrigger struct{}

func (ManualTrigger) TriggerType() TriggerType { return TriggerManual }

// ActionConfig is the tagged union of action variants
type ActionConfig interface {
	ActionType() ActionType
	Delay() time.Duration
}

// ReplyBody describes how a text body is produced: a {placeholder} template
// or an AI generated reply with an optional fallback template.
type ReplyBody struct {
	Template         string `json:"template,omitempty"`
	UseAI            bool   `json:"use_ai,omitempty"`
	AIPrompt         string `json:"ai_prompt,omitempty"`
	FallbackTemplate string `json:"fallback_template,omitempty"`
	DelaySeconds     int    `json:"delay_seconds,omitempty"`
}

func (b ReplyBody) Delay() time.Duration {
	return time.Duration(b.DelaySeconds) * time.Second
}

// DirectMessageAction sends a private message to the author. Recipient,
// platform and channel overrides are used for scheduled and manual runs
// where the event carries no author.
type DirectMessageAction struct {
	ReplyBody
	RecipientID string   `json:"recipient_id,omitempty"`
	Platform    Platform `json:"platform,omitempty"`
	ChannelID   string   `json:"channel_id,omitempty"`
}

func (DirectMessageAction) ActionType() ActionType { return ActionSendDM }

// PublicReplyAction answers a comment in public
type PublicReplyAction struct {
	ReplyBody
}

func (PublicReplyAction) ActionType() ActionType { return ActionSendPublicReply }

// EmailRecipientFixed forces delivery to the configured address
const EmailRecipientFixed = "fixed"

type EmailAction struct {
	ReplyBody
	To        string `json:"to,omitempty"`
	Recipient string `json:"recipient,omitempty"` // "author" (default) or "fixed"
	Subject   string `json:"subject"`
}

func (EmailAction) ActionType() ActionType { return ActionSendEmail }

type WebhookAction struct {
	URL            string            `json:"url"`
	Headers        map[string]string `json:"headers,omitempty"`
	Secret         string            `json:"secret,omitempty"`
	TimeoutSeconds int               `json:"timeout_seconds,omitempty"`
	DelaySeconds   int               `json:"delay_seconds,omitempty"`
}

func (WebhookAction) ActionType() ActionType { return ActionSendWebhook }

func (a WebhookAction) Delay() time.Duration {
	return time.Duration(a.DelaySeconds) * time.Second
}

// Timeout returns the configured request timeout, defaulting to 10s
func (a WebhookAction) Timeout() time.Duration {
	if a.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// DecodeTrigger validates raw against the schema of tt and decodes it into
// its variant. Errors wrap ErrRuleEvaluation.
func DecodeTrigger(tt TriggerType, raw []byte) (TriggerConfig, error) {
	raw = emptyObject(raw)
	if err := validateConfig(triggerSchemaName(tt), raw); err != nil {
		return nil, fmt.Errorf("%w: trigger config: %v", ErrRuleEvaluation, err)
	}

	switch tt {
	case TriggerComment, TriggerKeyword:
		var t KeywordTrigger
		if err := json.Unmarshal(raw, &t); err != nil {
			return nil, fmt.Errorf("%w: trigger config: %v", ErrRuleEvaluation, err)
		}
		t.Type = tt
		t.Keywords = cleanKeywords(t.Keywords)
		t.ExcludeKeywords = cleanKeywords(t.ExcludeKeywords)
		return t, nil

	case TriggerTime:
		var t ScheduleTrigger
		if err := json.Unmarshal(raw, &t); err != nil {
			return nil, fmt.Errorf("%w: trigger config: %v", ErrRuleEvaluation, err)
		}
		sched, err := ScheduleParser.Parse(t.Spec())
		if err != nil {
			return nil, fmt.Errorf("%w: invalid schedule %q: %v", ErrRuleEvaluation, t.Schedule, err)
		}
		t.parsed = sched
		return t, nil

	case TriggerManual:
		return ManualTrigger{}, nil

	default:
		return nil, fmt.Errorf("%w: unknown trigger type %q", ErrRuleEvaluation, tt)
	}
}

// DecodeAction validates raw against the schema of at and decodes it into
// its variant. Errors wrap ErrRuleEvaluation.
func DecodeAction(at ActionType, raw []byte) (ActionConfig, error) {
	raw = emptyObject(raw)
	if err := validateConfig(actionSchemaName(at), raw); err != nil {
		return nil, fmt.Errorf("%w: action config: %v", ErrRuleEvaluation, err)
	}

	var (
		cfg ActionConfig
		err error
	)
	switch at {
	case ActionSendDM:
		var a DirectMessageAction
		err = json.Unmarshal(raw, &a)
		cfg = a
	case ActionSendPublicReply:
		var a PublicReplyAction
		err = json.Unmarshal(raw, &a)
		cfg = a
	case ActionSendEmail:
		var a EmailAction
		err = json.Unmarshal(raw, &a)
		cfg = a
	case ActionSendWebhook:
		var a WebhookAction
		err = json.Unmarshal(raw, &a)
		cfg = a
	default:
		return nil, fmt.Errorf("%w: unknown action type %q", ErrRuleEvaluation, at)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: action config: %v", ErrRuleEvaluation, err)
	}
	return cfg, nil
}

func emptyObject(raw []byte) []byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []byte("{}")
	}
	return trimmed
}

func cleanKeywords(in []string) []string {
	out := make([]string, 0, len(in))
	for _, kw := range in {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			out = append(out, kw)
		}
	}
	return out
}
