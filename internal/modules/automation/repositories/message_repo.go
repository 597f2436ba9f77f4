package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/wisemantransports-ux/retail-assist-sub005/internal/core/actions"
	"github.com/wisemantransports-ux/retail-assist-sub005/internal/modules/automation/models"
)

type MessageRepo interface {
	SaveOutbound(ctx context.Context, msg actions.OutboundMessage) error
	CountByWorkspace(ctx context.Context, workspaceID string) (int64, error)
}

type messageRepo struct {
	db *gorm.DB
}

func NewMessageRepo(db *gorm.DB) MessageRepo {
	return &messageRepo{db: db}
}

func (r *messageRepo) SaveOutbound(ctx context.Context, msg actions.OutboundMessage) error {
	row := models.OutboundMessage{
		RuleID:          msg.RuleID,
		WorkspaceID:     msg.WorkspaceID,
		AgentID:         msg.AgentID,
		Platform:        string(msg.Platform),
		ActionType:      string(msg.ActionType),
		EventExternalID: msg.EventExternalID,
		Recipient:       msg.Recipient,
		Subject:         msg.Subject,
		Body:            msg.Body,
		BodySource:      msg.BodySource,
		ProviderRef:     msg.ProviderRef,
		Status:          "sent",
		SentAt:          msg.SentAt,
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *messageRepo) CountByWorkspace(ctx context.Context, workspaceID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.OutboundMessage{}).
		Where("workspace_id = ?", workspaceID).
		Count(&count).Error
	return count, err
}
