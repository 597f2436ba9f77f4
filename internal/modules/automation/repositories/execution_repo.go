package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wisemantransports-ux/retail-assist-sub005/internal/core/automation"
	"github.com/wisemantransports-ux/retail-assist-sub005/internal/modules/automation/models"
)

// ExecutionRepo stores execution results. Rows are only ever inserted.
type ExecutionRepo interface {
	Record(ctx context.Context, result automation.ExecutionResult) error
	HasSuccessfulSend(ctx context.Context, ruleID uuid.UUID, externalID string) (bool, error)
	FindByRule(ctx context.Context, ruleID uuid.UUID, limit int) ([]models.ExecutionRecord, error)
}

type executionRepo struct {
	db *gorm.DB
}

func NewExecutionRepo(db *gorm.DB) ExecutionRepo {
	return &executionRepo{db: db}
}

func (r *executionRepo) Record(ctx context.Context, result automation.ExecutionResult) error {
	record := models.ExecutionRecord{
		RuleID:          result.RuleID,
		WorkspaceID:     result.WorkspaceID,
		AgentID:         result.AgentID,
		Platform:        string(result.Platform),
		EventExternalID: result.EventExternalID,
		EventKind:       string(result.EventKind),
		ActionType:      string(result.ActionType),
		Matched:         result.Matched,
		ActionExecuted:  result.ActionExecuted,
		ErrorKind:       string(result.ErrorKind),
		ErrorMessage:    result.ErrorMessage,
		SkipReason:      result.SkipReason,
		ProviderRef:     result.ProviderRef,
		Detail:          result.Detail,
		DurationMs:      result.DurationMs,
		ExecutedAt:      result.Timestamp,
	}
	return r.db.WithContext(ctx).Create(&record).Error
}

func (r *executionRepo) HasSuccessfulSend(ctx context.Context, ruleID uuid.UUID, externalID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ExecutionRecord{}).
		Where("rule_id = ? AND event_external_id = ? AND action_executed = ?", ruleID, externalID, true).
		Count(&count).Error
	return count > 0, err
}

// FindByRule returns the newest records of a rule first
func (r *executionRepo) FindByRule(ctx context.Context, ruleID uuid.UUID, limit int) ([]models.ExecutionRecord, error) {
	var records []models.ExecutionRecord
	err := r.db.WithContext(ctx).
		Where("rule_id = ?", ruleID).
		Order("executed_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}
