package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AutomationRule is a workspace-defined trigger/action pair. Rules are
// written by the dashboard; this service only reads them.
type AutomationRule struct {
	ID            uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	WorkspaceID   uuid.UUID      `json:"workspace_id" gorm:"type:uuid;not null;index:idx_automation_rules_scope,priority:1"`
	AgentID       uuid.UUID      `json:"agent_id" gorm:"type:uuid;not null;index:idx_automation_rules_scope,priority:2"`
	Name          string         `json:"name" gorm:"type:varchar(255);not null"`
	Description   string         `json:"description" gorm:"type:text"`
	Enabled       bool           `json:"enabled" gorm:"not null;index"`
	TriggerType   string         `json:"trigger_type" gorm:"type:varchar(50);not null;index"` // 'comment', 'keyword', 'time', 'manual'
	TriggerConfig datatypes.JSON `json:"trigger_config" gorm:"type:jsonb"`
	ActionType    string         `json:"action_type" gorm:"type:varchar(50);not null"` // 'send_dm', 'send_public_reply', 'send_email', 'send_webhook'
	ActionConfig  datatypes.JSON `json:"action_config" gorm:"type:jsonb"`
	CreatedAt     time.Time      `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt     time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for AutomationRule
func (AutomationRule) TableName() string {
	return "automation_rules"
}

func (r *AutomationRule) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
