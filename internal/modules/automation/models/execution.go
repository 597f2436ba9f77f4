package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ExecutionRecord is the append-only audit row for one rule evaluation
type ExecutionRecord struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	RuleID          uuid.UUID `json:"rule_id" gorm:"type:uuid;not null;index:idx_automation_exec_rule_event,priority:1"`
	WorkspaceID     uuid.UUID `json:"workspace_id" gorm:"type:uuid;index"`
	AgentID         uuid.UUID `json:"agent_id" gorm:"type:uuid"`
	Platform        string    `json:"platform" gorm:"type:varchar(32)"`
	EventExternalID string    `json:"event_external_id" gorm:"type:varchar(255);index:idx_automation_exec_rule_event,priority:2"`
	EventKind       string    `json:"event_kind" gorm:"type:varchar(32)"`
	ActionType      string    `json:"action_type" gorm:"type:varchar(50)"`
	Matched         bool      `json:"matched" gorm:"not null;default:false"`
	ActionExecuted  bool      `json:"action_executed" gorm:"not null;default:false"`
	ErrorKind       string    `json:"error_kind,omitempty" gorm:"type:varchar(50);index"`
	ErrorMessage    string    `json:"error_message,omitempty" gorm:"type:text"`
	SkipReason      string    `json:"skip_reason,omitempty" gorm:"type:varchar(50)"`
	ProviderRef     string    `json:"provider_ref,omitempty" gorm:"type:varchar(255)"`
	Detail          string    `json:"detail,omitempty" gorm:"type:text"`
	DurationMs      int64     `json:"duration_ms"`
	ExecutedAt      time.Time `json:"executed_at" gorm:"not null;index"`
	CreatedAt       time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for ExecutionRecord
func (ExecutionRecord) TableName() string {
	return "automation_execution_results"
}

func (e *ExecutionRecord) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// OutboundMessage keeps a copy of every reply, email or DM sent by a rule
type OutboundMessage struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	RuleID          uuid.UUID `json:"rule_id" gorm:"type:uuid;not null;index"`
	WorkspaceID     uuid.UUID `json:"workspace_id" gorm:"type:uuid;index"`
	AgentID         uuid.UUID `json:"agent_id" gorm:"type:uuid"`
	Platform        string    `json:"platform" gorm:"type:varchar(32)"`
	ActionType      string    `json:"action_type" gorm:"type:varchar(50)"`
	EventExternalID string    `json:"event_external_id" gorm:"type:varchar(255);index"`
	Recipient       string    `json:"recipient" gorm:"type:varchar(255)"`
	Subject         string    `json:"subject,omitempty" gorm:"type:varchar(500)"`
	Body            string    `json:"body" gorm:"type:text"`
	BodySource      string    `json:"body_source" gorm:"type:varchar(20)"` // 'template', 'ai', 'fallback'
	ProviderRef     string    `json:"provider_ref" gorm:"type:varchar(255)"`
	Status          string    `json:"status" gorm:"type:varchar(20);not null;default:'sent'"`
	SentAt          time.Time `json:"sent_at" gorm:"not null"`
}

// TableName specifies the table name for OutboundMessage
func (OutboundMessage) TableName() string {
	return "automation_outbound_messages"
}

func (m *OutboundMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// ProcessedEvent marks a (platform, external id) pair as handled so that
// webhook redeliveries are not processed twice
type ProcessedEvent struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Platform    string    `json:"platform" gorm:"type:varchar(32);not null;uniqueIndex:idx_automation_processed_event,priority:1"`
	ExternalID  string    `json:"external_id" gorm:"type:varchar(255);not null;uniqueIndex:idx_automation_processed_event,priority:2"`
	ProcessedAt time.Time `json:"processed_at" gorm:"not null;index"`
}

// TableName specifies the table name for ProcessedEvent
func (ProcessedEvent) TableName() string {
	return "automation_processed_events"
}

func (p *ProcessedEvent) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// All lists every model for AutoMigrate
func All() []interface{} {
	return []interface{}{
		&AutomationRule{},
		&Channel{},
		&ExecutionRecord{},
		&OutboundMessage{},
		&ProcessedEvent{},
	}
}
