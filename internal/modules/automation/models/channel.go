package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Channel links a platform account (page, IG account, WhatsApp number or
// website form) to the workspace and agent that own it
type Channel struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	WorkspaceID uuid.UUID `json:"workspace_id" gorm:"type:uuid;not null;index"`
	AgentID     uuid.UUID `json:"agent_id" gorm:"type:uuid;not null"`
	Platform    string    `json:"platform" gorm:"type:varchar(32);not null;uniqueIndex:idx_automation_channels_account,priority:1"`
	ExternalID  string    `json:"external_id" gorm:"type:varchar(255);not null;uniqueIndex:idx_automation_channels_account,priority:2"`
	DisplayName string    `json:"display_name" gorm:"type:varchar(255)"`
	AccessToken string    `json:"-" gorm:"type:text"`
	FormSecret  string    `json:"-" gorm:"type:varchar(255)"`
	Enabled     bool      `json:"enabled" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for Channel
func (Channel) TableName() string {
	return "automation_channels"
}

func (c *Channel) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
