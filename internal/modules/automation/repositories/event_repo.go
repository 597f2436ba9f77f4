package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wisemantransports-ux/retail-assist-sub005/internal/core/automation"
	"github.com/wisemantransports-ux/retail-assist-sub005/internal/modules/automation/models"
)

// EventRepo is the processed-event ledger used to drop webhook redeliveries
type EventRepo interface {
	MarkProcessed(ctx context.Context, platform automation.Platform, externalID string) (bool, error)
	PurgeBefore(ctx context.Context, before time.Time) (int64, error)
}

type eventRepo struct {
	db *gorm.DB
}

func NewEventRepo(db *gorm.DB) EventRepo {
	return &eventRepo{db: db}
}

// MarkProcessed inserts the pair and reports whether it was new
func (r *eventRepo) MarkProcessed(ctx context.Context, platform automation.Platform, externalID string) (bool, error) {
	row := models.ProcessedEvent{
		Platform:    string(platform),
		ExternalID:  externalID,
		ProcessedAt: time.Now().UTC(),
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "platform"}, {Name: "external_id"}},
			DoNothing: true,
		}).
		Create(&row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// PurgeBefore removes ledger rows older than before
func (r *eventRepo) PurgeBefore(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("processed_at < ?", before).
		Delete(&models.ProcessedEvent{})
	return res.RowsAffected, res.Error
}
