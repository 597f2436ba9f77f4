package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/wisemantransports-ux/retail-assist-sub005/internal/core/automation"
	"github.com/wisemantransports-ux/retail-assist-sub005/internal/core/tenant"
	"github.com/wisemantransports-ux/retail-assist-sub005/internal/modules/automation/models"
)

// ChannelRepo looks up connected channels. Channels are provisioned outside
// this service.
type ChannelRepo interface {
	tenant.ChannelStore
}

type channelRepo struct {
	db *gorm.DB
}

func NewChannelRepo(db *gorm.DB) ChannelRepo {
	return &channelRepo{db: db}
}

func (r *channelRepo) FindEnabledChannel(ctx context.Context, platform automation.Platform, externalID string) (*tenant.Channel, error) {
	var row models.Channel
	err := r.db.WithContext(ctx).
		Where("platform = ? AND external_id = ? AND enabled = ?", string(platform), externalID, true).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, tenant.ErrChannelNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find channel: %v", automation.ErrStoreUnavailable, err)
	}

	return &tenant.Channel{
		ID:          row.ID,
		WorkspaceID: row.WorkspaceID,
		AgentID:     row.AgentID,
		Platform:    automation.Platform(row.Platform),
		ExternalID:  row.ExternalID,
		AccessToken: row.AccessToken,
		FormSecret:  row.FormSecret,
	}, nil
}
