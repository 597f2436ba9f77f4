package automation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// RuleStore is the read side of automation rules
type RuleStore interface {
	// LoadEnabledRules returns enabled rules ordered by creation time ascending
	LoadEnabledRules(ctx context.Context, workspaceID, agentID uuid.UUID) ([]Rule, error)
	GetRule(ctx context.Context, id uuid.UUID) (Rule, error)
	ListEnabledByTrigger(ctx context.Context, triggerType TriggerType) ([]Rule, error)
}

// Recorder persists execution results. Records are append-only.
type Recorder interface {
	Record(ctx context.Context, result ExecutionResult) error
}

// EventLedger remembers which (platform, external id) pairs were processed.
// MarkProcessed returns false when the pair was already seen.
type EventLedger interface {
	MarkProcessed(ctx context.Context, platform Platform, externalID string) (bool, error)
}

// EngineConfig tunes the engine
type EngineConfig struct {
	RuleConcurrency int
	RecordTimeout   time.Duration
}

// Engine evaluates events against rules and dispatches matched actions
type Engine struct {
	rules       RuleStore
	matcher     *Matcher
	dispatcher  *Dispatcher
	recorder    Recorder
	ledger      EventLedger
	concurrency int
	recordWait  time.Duration
	now         func() time.Time
}

// NewEngine wires the engine. ledger may be nil to disable event dedup.
func NewEngine(rules RuleStore, dispatcher *Dispatcher, recorder Recorder, ledger EventLedger, cfg EngineConfig) *Engine {
	if cfg.RuleConcurrency <= 0 {
		cfg.RuleConcurrency = 4
	}
	if cfg.RecordTimeout <= 0 {
		cfg.RecordTimeout = 5 * time.Second
	}
	return &Engine{
		rules:       rules,
		matcher:     NewMatcher(),
		dispatcher:  dispatcher,
		recorder:    recorder,
		ledger:      ledger,
		concurrency: cfg.RuleConcurrency,
		recordWait:  cfg.RecordTimeout,
		now:         time.Now,
	}
}

// ProcessEvent runs every enabled rule of the event's workspace/agent.
// The only error returned is a store failure, which aborts this event alone
// and does not mark it processed.
func (e *Engine) ProcessEvent(ctx context.Context, event InboundEvent) ([]ExecutionResult, error) {
	logger := log.With().
		Str("platform", string(event.Platform)).
		Str("external_id", event.ExternalID).
		Str("workspace_id", event.WorkspaceID.String()).
		Logger()

	rules, err := e.rules.LoadEnabledRules(ctx, event.WorkspaceID, event.AgentID)
	if err != nil {
		if !errors.Is(err, ErrStoreUnavailable) {
			err = fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		logger.Error().Err(err).Msg("❌ Failed to load rules")
		return nil, err
	}

	// Marked only once rules loaded, so a store outage leaves the event
	// eligible for redelivery.
	if e.ledger != nil && event.Kind.FromWebhook() && event.ExternalID != "" {
		first, err := e.ledger.MarkProcessed(ctx, event.Platform, event.ExternalID)
		if err != nil {
			logger.Warn().Err(err).Msg("⚠️ Event dedup unavailable, continuing")
		} else if !first {
			logger.Info().Msg("⏭️ Event already processed, skipping")
			return nil, nil
		}
	}

	if len(rules) == 0 {
		logger.Debug().Msg("No enabled rules")
		return nil, nil
	}

	results := e.fanOut(ctx, rules, event)

	executed := 0
	for _, r := range results {
		if r.ActionExecuted {
			executed++
		}
	}
	logger.Info().Int("rules", len(rules)).Int("executed", executed).Msg("✅ Event processed")

	return results, nil
}

// RunManual evaluates a single rule for an operator invocation
func (e *Engine) RunManual(ctx context.Context, ruleID uuid.UUID, event InboundEvent) (ExecutionResult, error) {
	rule, err := e.rules.GetRule(ctx, ruleID)
	if err != nil {
		return ExecutionResult{}, err
	}
	if !rule.Enabled {
		return ExecutionResult{}, fmt.Errorf("%w: %s", ErrRuleDisabled, ruleID)
	}

	event.Kind = KindManual
	event.WorkspaceID = rule.WorkspaceID
	event.AgentID = rule.AgentID
	if event.ExternalID == "" {
		event.ExternalID = "manual:" + uuid.NewString()
	}
	if event.ReceivedAt.IsZero() {
		event.ReceivedAt = e.now().UTC()
	}

	log.Info().Str("rule_id", ruleID.String()).Msg("🖐️ Manual rule run")
	return e.evaluate(ctx, rule, event), nil
}

// RunScheduled evaluates a time-triggered rule for the tick at
func (e *Engine) RunScheduled(ctx context.Context, rule Rule, at time.Time) ExecutionResult {
	event := InboundEvent{
		WorkspaceID: rule.WorkspaceID,
		AgentID:     rule.AgentID,
		Kind:        KindScheduleTick,
		ExternalID:  fmt.Sprintf("schedule:%s:%d", rule.ID, at.Truncate(time.Minute).Unix()),
		ReceivedAt:  at,
	}
	return e.evaluate(ctx, rule, event)
}

// fanOut evaluates rules concurrently and returns results in rule order
func (e *Engine) fanOut(ctx context.Context, rules []Rule, event InboundEvent) []ExecutionResult {
	results := make([]ExecutionResult, len(rules))
	sem := make(chan struct{}, e.concurrency)

	var wg sync.WaitGroup
	for i, rule := range rules {
		wg.Add(1)
		go func(i int, rule Rule) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = e.evaluate(ctx, rule, event)
		}(i, rule)
	}
	wg.Wait()

	return results
}

// evaluate matches, dispatches and records one rule. Panics are contained
// to the rule that caused them.
func (e *Engine) evaluate(ctx context.Context, rule Rule, event InboundEvent) (result ExecutionResult) {
	defer func() {
		if r := recover(); r != nil {
			result = newResult(rule, event)
			result.ErrorKind = KindRuleEvaluationError
			result.ErrorMessage = fmt.Sprintf("panic: %v", r)
			result.Timestamp = e.now().UTC()
			log.Error().Str("rule_id", rule.ID.String()).Interface("panic", r).Msg("❌ Rule evaluation panicked")
		}
		e.record(ctx, result)
	}()

	matched, err := e.matcher.Match(rule, event)
	if err != nil {
		log.Warn().Err(err).Str("rule_id", rule.ID.String()).Msg("⚠️ Rule evaluation failed, treating as non-matching")
		result = newResult(rule, event)
		result.ErrorKind = KindRuleEvaluationError
		result.ErrorMessage = err.Error()
		result.Timestamp = e.now().UTC()
		return result
	}
	if !matched {
		result = newResult(rule, event)
		result.Timestamp = e.now().UTC()
		return result
	}

	log.Info().
		Str("rule_id", rule.ID.String()).
		Str("rule", rule.Name).
		Str("action_type", string(rule.ActionType)).
		Str("external_id", event.ExternalID).
		Msg("🎯 Rule matched")

	result = e.dispatcher.Dispatch(ctx, rule, event)

	switch {
	case result.ErrorKind != "":
		log.Error().
			Str("rule_id", rule.ID.String()).
			Str("error_kind", string(result.ErrorKind)).
			Str("error", result.ErrorMessage).
			Msg("❌ Action failed")
	case !result.ActionExecuted:
		log.Info().Str("rule_id", rule.ID.String()).Str("skip_reason", result.SkipReason).Msg("⏭️ Action skipped")
	default:
		log.Info().Str("rule_id", rule.ID.String()).Int64("duration_ms", result.DurationMs).Msg("✅ Action executed")
	}
	return result
}

// record persists a result on a context detached from request cancellation
func (e *Engine) record(ctx context.Context, result ExecutionResult) {
	if e.recorder == nil {
		return
	}
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.recordWait)
	defer cancel()

	if err := e.recorder.Record(recordCtx, result); err != nil {
		log.Error().Err(err).
			Str("rule_id", result.RuleID.String()).
			Str("external_id", result.EventExternalID).
			Msg("❌ Failed to record execution result")
	}
}
