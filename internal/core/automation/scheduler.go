package automation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// ScheduledRunner executes a time-triggered rule
type ScheduledRunner interface {
	RunScheduled(ctx context.Context, rule Rule, at time.Time) ExecutionResult
}

type scheduledJob struct {
	entryID cron.EntryID
	spec    string
	rule    Rule
}

// Scheduler registers enabled time rules with cron and keeps them in sync
// with the rule store
type Scheduler struct {
	cron   *cron.Cron
	rules  RuleStore
	runner ScheduledRunner
	resync time.Duration

	jobs    map[uuid.UUID]scheduledJob
	jobsMux sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewScheduler creates a scheduler. resync controls how often rule edits
// are picked up.
func NewScheduler(rules RuleStore, runner ScheduledRunner, resync time.Duration) *Scheduler {
	if resync <= 0 {
		resync = time.Minute
	}
	return &Scheduler{
		cron:   cron.New(cron.WithParser(ScheduleParser)),
		rules:  rules,
		runner: runner,
		resync: resync,
		jobs:   make(map[uuid.UUID]scheduledJob),
	}
}

// Start loads time rules and starts the cron loop
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("⏰ Starting rule scheduler...")
	s.ctx, s.cancel = context.WithCancel(ctx)

	if err := s.Sync(s.ctx); err != nil {
		log.Warn().Err(err).Msg("⚠️ Initial schedule sync failed, will retry")
	}

	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.resync), func() {
		if err := s.Sync(s.ctx); err != nil {
			log.Warn().Err(err).Msg("⚠️ Schedule sync failed")
		}
	}); err != nil {
		return fmt.Errorf("failed to add resync job: %w", err)
	}

	s.cron.Start()
	log.Info().Int("rules", len(s.ScheduledRules())).Msg("✅ Rule scheduler started")
	return nil
}

// Stop stops the cron loop and waits for running jobs
func (s *Scheduler) Stop() {
	log.Info().Msg("⏰ Stopping rule scheduler...")
	if s.cancel != nil {
		s.cancel()
	}
	<-s.cron.Stop().Done()
	log.Info().Msg("✅ Rule scheduler stopped")
}

// Sync reconciles cron entries with the enabled time rules in the store
func (s *Scheduler) Sync(ctx context.Context) error {
	rules, err := s.rules.ListEnabledByTrigger(ctx, TriggerTime)
	if err != nil {
		return fmt.Errorf("failed to list time rules: %w", err)
	}

	s.jobsMux.Lock()
	defer s.jobsMux.Unlock()

	seen := make(map[uuid.UUID]bool, len(rules))
	for _, rule := range rules {
		trigger, ok := rule.Trigger.(ScheduleTrigger)
		if rule.TriggerErr != nil || !ok || trigger.parsed == nil {
			log.Warn().Err(rule.TriggerErr).Str("rule_id", rule.ID.String()).Msg("⚠️ Skipping time rule with invalid schedule")
			continue
		}
		seen[rule.ID] = true

		spec := trigger.Spec()
		if job, exists := s.jobs[rule.ID]; exists {
			if job.spec == spec {
				job.rule = rule
				s.jobs[rule.ID] = job
				continue
			}
			s.cron.Remove(job.entryID)
		}

		entryID := s.cron.Schedule(trigger.parsed, s.job(rule.ID))
		s.jobs[rule.ID] = scheduledJob{entryID: entryID, spec: spec, rule: rule}
		log.Info().Str("rule_id", rule.ID.String()).Str("schedule", spec).Msg("   ✅ Scheduled rule")
	}

	for ruleID, job := range s.jobs {
		if !seen[ruleID] {
			s.cron.Remove(job.entryID)
			delete(s.jobs, ruleID)
			log.Info().Str("rule_id", ruleID.String()).Msg("   ✅ Removed scheduled rule")
		}
	}
	return nil
}

// job runs the latest synced version of the rule
func (s *Scheduler) job(ruleID uuid.UUID) cron.Job {
	return cron.FuncJob(func() {
		s.jobsMux.Lock()
		job, ok := s.jobs[ruleID]
		s.jobsMux.Unlock()
		if !ok {
			return
		}
		rule := job.rule

		ctx := s.ctx
		if ctx == nil {
			ctx = context.Background()
		}
		s.runner.RunScheduled(ctx, rule, time.Now())
	})
}

// ScheduledRules returns the ids of currently scheduled rules
func (s *Scheduler) ScheduledRules() []uuid.UUID {
	s.jobsMux.Lock()
	defer s.jobsMux.Unlock()

	ids := make([]uuid.UUID, 0, len(s.jobs))
	for id := range s.jobs {
		ids = append(ids, id)
	}
	return ids
}
