package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/wisemantransports-ux/retail-assist-sub005/internal/core/automation"
	"github.com/wisemantransports-ux/retail-assist-sub005/internal/modules/automation/models"
	"github.com/wisemantransports-ux/retail-assist-sub005/internal/modules/automation/repositories"
)

const (
	DefaultExecutionLimit = 50
	MaxExecutionLimit     = 500
)

// ManualRunner runs a single rule on demand
type ManualRunner interface {
	RunManual(ctx context.Context, ruleID uuid.UUID, event automation.InboundEvent) (automation.ExecutionResult, error)
}

// RunInput is the optional context a caller passes to a manual run
type RunInput struct {
	Text        string            `json:"text"`
	AuthorName  string            `json:"author_name"`
	AuthorEmail string            `json:"author_email"`
	Fields      map[string]string `json:"fields"`
}

// RuleService exposes rule operations to the HTTP layer
type RuleService struct {
	runner     ManualRunner
	executions repositories.ExecutionRepo
}

func NewRuleService(runner ManualRunner, executions repositories.ExecutionRepo) *RuleService {
	return &RuleService{runner: runner, executions: executions}
}

// Run fires the rule once. The engine assigns a fresh external id per call
// so repeated manual runs are never deduplicated against each other.
func (s *RuleService) Run(ctx context.Context, ruleID uuid.UUID, in RunInput) (automation.ExecutionResult, error) {
	event := automation.InboundEvent{
		Kind:        automation.KindManual,
		AuthorName:  in.AuthorName,
		AuthorEmail: in.AuthorEmail,
		Text:        in.Text,
		Fields:      in.Fields,
	}
	return s.runner.RunManual(ctx, ruleID, event)
}

// Executions lists the latest records of a rule. limit is clamped to
// [1, MaxExecutionLimit] with DefaultExecutionLimit for zero.
func (s *RuleService) Executions(ctx context.Context, ruleID uuid.UUID, limit int) ([]models.ExecutionRecord, error) {
	switch {
	case limit <= 0:
		limit = DefaultExecutionLimit
	case limit > MaxExecutionLimit:
		limit = MaxExecutionLimit
	}
	return s.executions.FindByRule(ctx, ruleID, limit)
}
