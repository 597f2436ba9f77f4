package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wisemantransports-ux/retail-assist-sub005/internal/core/automation"
	"github.com/wisemantransports-ux/retail-assist-sub005/internal/modules/automation/models"
)

// RuleRepo reads automation rules. Rules are provisioned outside this
// service, so the repository has no write path.
type RuleRepo interface {
	automation.RuleStore
}

type ruleRepo struct {
	db *gorm.DB
}

func NewRuleRepo(db *gorm.DB) RuleRepo {
	return &ruleRepo{db: db}
}

func (r *ruleRepo) LoadEnabledRules(ctx context.Context, workspaceID, agentID uuid.UUID) ([]automation.Rule, error) {
	var rows []models.AutomationRule
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND agent_id = ? AND enabled = ?", workspaceID, agentID, true).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: load rules: %v", automation.ErrStoreUnavailable, err)
	}
	return toRules(rows), nil
}

func (r *ruleRepo) GetRule(ctx context.Context, id uuid.UUID) (automation.Rule, error) {
	var row models.AutomationRule
	err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return automation.Rule{}, fmt.Errorf("%w: %s", automation.ErrRuleNotFound, id)
	}
	if err != nil {
		return automation.Rule{}, fmt.Errorf("%w: get rule: %v", automation.ErrStoreUnavailable, err)
	}
	return toRule(row), nil
}

func (r *ruleRepo) ListEnabledByTrigger(ctx context.Context, triggerType automation.TriggerType) ([]automation.Rule, error) {
	var rows []models.AutomationRule
	err := r.db.WithContext(ctx).
		Where("trigger_type = ? AND enabled = ?", string(triggerType), true).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list rules: %v", automation.ErrStoreUnavailable, err)
	}
	return toRules(rows), nil
}

func toRules(rows []models.AutomationRule) []automation.Rule {
	rules := make([]automation.Rule, 0, len(rows))
	for _, row := range rows {
		rules = append(rules, toRule(row))
	}
	return rules
}

// toRule decodes the stored configs. A config that fails to decode is kept
// on the rule so evaluation can report it instead of dropping the rule.
func toRule(row models.AutomationRule) automation.Rule {
	rule := automation.Rule{
		ID:          row.ID,
		WorkspaceID: row.WorkspaceID,
		AgentID:     row.AgentID,
		Name:        row.Name,
		Enabled:     row.Enabled,
		TriggerType: automation.TriggerType(row.TriggerType),
		ActionType:  automation.ActionType(row.ActionType),
		CreatedAt:   row.CreatedAt,
	}
	rule.Trigger, rule.TriggerErr = automation.DecodeTrigger(rule.TriggerType, row.TriggerConfig)
	rule.Action, rule.ActionErr = automation.DecodeAction(rule.ActionType, row.ActionConfig)
	return rule
}
