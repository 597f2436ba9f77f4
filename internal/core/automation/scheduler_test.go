package automation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

type recordingRunner struct {
	mu    sync.Mutex
	rules []Rule
}

func (r *recordingRunner) RunScheduled(ctx context.Context, rule Rule, at time.Time) ExecutionResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = append(r.rules, rule)
	return ExecutionResult{RuleID: rule.ID}
}

func timeRule(t *testing.T, schedule string) Rule {
	t.Helper()
	trigger, err := DecodeTrigger(TriggerTime, []byte(`{"schedule":"`+schedule+`"}`))
	if err != nil {
		t.Fatalf("DecodeTrigger(%q): %v", schedule, err)
	}
	return Rule{
		ID:          uuid.New(),
		Name:        "daily digest",
		Enabled:     true,
		TriggerType: TriggerTime,
		Trigger:     trigger,
		ActionType:  ActionSendWebhook,
		Action:      WebhookAction{URL: "https://example.com"},
	}
}

func TestSchedulerSync(t *testing.T) {
	daily := timeRule(t, "0 9 * * *")
	hourly := timeRule(t, "@hourly")
	broken := Rule{ID: uuid.New(), Enabled: true, TriggerType: TriggerTime, TriggerErr: errors.New("bad schedule")}

	store := &fakeRuleStore{rules: []Rule{daily, hourly, broken}}
	s := NewScheduler(store, &recordingRunner{}, time.Minute)

	if err := s.Sync(context.Background()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if got := len(s.ScheduledRules()); got != 2 {
		t.Fatalf("scheduled %d rules, want 2", got)
	}
	firstEntry := s.jobs[daily.ID].entryID

	// unchanged spec keeps the entry, changed spec replaces it, missing rule is removed
	daily.Name = "renamed"
	hourly2 := timeRule(t, "*/15 * * * *")
	hourly2.ID = hourly.ID
	store.setRules(daily, hourly2)

	if err := s.Sync(context.Background()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if s.jobs[daily.ID].entryID != firstEntry {
		t.Fatal("unchanged schedule was re-registered")
	}
	if s.jobs[daily.ID].rule.Name != "renamed" {
		t.Fatal("stored rule not refreshed")
	}
	if s.jobs[hourly.ID].spec != "*/15 * * * *" {
		t.Fatalf("spec = %q", s.jobs[hourly.ID].spec)
	}

	store.setRules(daily)
	_ = s.Sync(context.Background())
	if ids := s.ScheduledRules(); len(ids) != 1 || ids[0] != daily.ID {
		t.Fatalf("scheduled = %v", ids)
	}
	if len(s.cron.Entries()) != 1 {
		t.Fatalf("cron entries = %d", len(s.cron.Entries()))
	}
}

func TestSchedulerJobRunsLatestRule(t *testing.T) {
	rule := timeRule(t, "@daily")
	store := &fakeRuleStore{rules: []Rule{rule}}
	runner := &recordingRunner{}
	s := NewScheduler(store, runner, time.Minute)
	_ = s.Sync(context.Background())

	rule.Name = "edited"
	store.setRules(rule)
	_ = s.Sync(context.Background())

	s.job(rule.ID).Run()
	if len(runner.rules) != 1 || runner.rules[0].Name != "edited" {
		t.Fatalf("runner got %+v", runner.rules)
	}

	s.job(uuid.New()).Run()
	if len(runner.rules) != 1 {
		t.Fatal("job for unknown rule should not run")
	}
}

func TestSchedulerSyncStoreError(t *testing.T) {
	s := NewScheduler(&fakeRuleStore{err: errors.New("down")}, &recordingRunner{}, 0)
	if err := s.Sync(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestSchedulerStartStop(t *testing.T) {
	s := NewScheduler(&fakeRuleStore{rules: []Rule{timeRule(t, "@hourly")}}, &recordingRunner{}, time.Hour)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if len(s.ScheduledRules()) != 1 {
		t.Fatalf("scheduled = %d", len(s.ScheduledRules()))
	}
	// resync job plus the rule
	if len(s.cron.Entries()) != 2 {
		t.Fatalf("cron entries = %d", len(s.cron.Entries()))
	}
	s.Stop()
}
