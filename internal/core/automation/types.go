package automation

import (
	"time"

	"github.com/google/uuid"
)

// Platform identifies the source of an inbound event
type Platform string

const (
	PlatformFacebook    Platform = "facebook"
	PlatformInstagram   Platform = "instagram"
	PlatformWhatsApp    Platform = "whatsapp"
	PlatformWebsiteForm Platform = "website_form"
)

// Valid reports whether p is one of the supported platforms
func (p Platform) Valid() bool {
	switch p {
	case PlatformFacebook, PlatformInstagram, PlatformWhatsApp, PlatformWebsiteForm:
		return true
	}
	return false
}

// EventKind describes what happened on the platform
type EventKind string

const (
	KindComment        EventKind = "comment"
	KindMessage        EventKind = "message"
	KindFormSubmission EventKind = "form_submission"

	// Internal kinds used by the scheduler and operator runs. Webhooks never produce them.
	KindScheduleTick EventKind = "schedule_tick"
	KindManual       EventKind = "manual"
)

// FromWebhook reports whether the kind can come out of a platform webhook
func (k EventKind) FromWebhook() bool {
	return k == KindComment || k == KindMessage || k == KindFormSubmission
}

// InboundEvent is the platform-agnostic shape every normalizer produces
type InboundEvent struct {
	WorkspaceID uuid.UUID         `json:"workspace_id"`
	AgentID     uuid.UUID         `json:"agent_id"`
	Platform    Platform          `json:"platform"`
	Kind        EventKind         `json:"event_kind"`
	ExternalID  string            `json:"external_id"`
	AuthorID    string            `json:"author_id"`
	AuthorName  string            `json:"author_name,omitempty"`
	AuthorEmail string            `json:"author_email,omitempty"`
	AuthorPhone string            `json:"author_phone,omitempty"`
	Text        string            `json:"text"`
	ChannelID   string            `json:"channel_id,omitempty"` // page id, IG account id, phone_number_id or form key
	ParentID    string            `json:"parent_id,omitempty"`  // post or media the comment belongs to
	Fields      map[string]string `json:"fields,omitempty"`
	ReceivedAt  time.Time         `json:"received_at"`
}

// TriggerType selects the trigger variant of a rule
type TriggerType string

const (
	TriggerComment TriggerType = "comment"
	TriggerKeyword TriggerType = "keyword"
	TriggerTime    TriggerType = "time"
	TriggerManual  TriggerType = "manual"
)

// ActionType selects the action variant of a rule
type ActionType string

const (
	ActionSendDM          ActionType = "send_dm"
	ActionSendPublicReply ActionType = "send_public_reply"
	ActionSendEmail       ActionType = "send_email"
	ActionSendWebhook     ActionType = "send_webhook"
)

// Rule is an enabled automation rule as seen by the engine.
// TriggerErr and ActionErr hold config decoding failures; a rule carrying
// either never matches.
type Rule struct {
	ID          uuid.UUID
	WorkspaceID uuid.UUID
	AgentID     uuid.UUID
	Name        string
	Enabled     bool

	TriggerType TriggerType
	Trigger     TriggerConfig
	TriggerErr  error

	ActionType ActionType
	Action     ActionConfig
	ActionErr  error

	CreatedAt time.Time
}

// ExecutionResult is the outcome of evaluating one rule against one event
type ExecutionResult struct {
	RuleID          uuid.UUID  `json:"rule_id"`
	WorkspaceID     uuid.UUID  `json:"workspace_id"`
	AgentID         uuid.UUID  `json:"agent_id"`
	Platform        Platform   `json:"platform"`
	EventExternalID string     `json:"event_external_id"`
	EventKind       EventKind  `json:"event_kind"`
	ActionType      ActionType `json:"action_type"`
	Matched         bool       `json:"matched"`
	ActionExecuted  bool       `json:"action_executed"`
	ErrorKind       ErrorKind  `json:"error_kind,omitempty"`
	ErrorMessage    string     `json:"error_message,omitempty"`
	SkipReason      string     `json:"skip_reason,omitempty"`
	ProviderRef     string     `json:"provider_ref,omitempty"`
	Detail          string     `json:"detail,omitempty"`
	DurationMs      int64      `json:"duration_ms"`
	Timestamp       time.Time  `json:"timestamp"`
}

// newResult seeds a result with the identifiers shared by every outcome
func newResult(rule Rule, event InboundEvent) ExecutionResult {
	return ExecutionResult{
		RuleID:          rule.ID,
		WorkspaceID:     rule.WorkspaceID,
		AgentID:         rule.AgentID,
		Platform:        event.Platform,
		EventExternalID: event.ExternalID,
		EventKind:       event.Kind,
		ActionType:      rule.ActionType,
	}
}
