package automation

import (
	"fmt"
	"strings"
	"time"
)

// DefaultScheduleWindow is how far back a schedule tick may look for a
// firing instant. It absorbs cron jitter without double firing minute
// schedules.
const DefaultScheduleWindow = time.Minute

// Matcher evaluates trigger predicates
type Matcher struct {
	scheduleWindow time.Duration
}

// NewMatcher creates a matcher with the default schedule window
func NewMatcher() *Matcher {
	return &Matcher{scheduleWindow: DefaultScheduleWindow}
}

// Match reports whether rule fires for event. A rule whose trigger config
// could not be decoded returns an error wrapping ErrRuleEvaluation and must be
// treated as non-matching.
func (m *Matcher) Match(rule Rule, event InboundEvent) (bool, error) {
	if rule.TriggerErr != nil {
		return false, fmt.Errorf("rule %s: %w", rule.ID, rule.TriggerErr)
	}
	if rule.Trigger == nil {
		return false, fmt.Errorf("%w: rule %s has no trigger config", ErrRuleEvaluation, rule.ID)
	}

	switch t := rule.Trigger.(type) {
	case KeywordTrigger:
		if !event.Kind.FromWebhook() {
			return false, nil
		}
		return t.matches(event), nil

	case ScheduleTrigger:
		if event.Kind != KindScheduleTick {
			return false, nil
		}
		if t.parsed == nil {
			return false, fmt.Errorf("%w: rule %s schedule not compiled", ErrRuleEvaluation, rule.ID)
		}
		return firesWithin(t.parsed, event.ReceivedAt, m.scheduleWindow), nil

	case ManualTrigger:
		return event.Kind == KindManual, nil

	default:
		return false, fmt.Errorf("%w: rule %s has unsupported trigger %T", ErrRuleEvaluation, rule.ID, rule.Trigger)
	}
}

func (t KeywordTrigger) matches(event InboundEvent) bool {
	if t.Platform != "" && t.Platform != event.Platform {
		return false
	}

	if len(t.EventKinds) > 0 {
		allowed := false
		for _, k := range t.EventKinds {
			if k == event.Kind {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
	}

	text := strings.ToLower(event.Text)
	for _, kw := range t.ExcludeKeywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" && strings.Contains(text, kw) {
			return false
		}
	}

	if len(t.Keywords) == 0 {
		return true
	}
	for _, kw := range t.Keywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" && strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// firesWithin reports whether sched has an activation in (at-window, at]
func firesWithin(sched interface{ Next(time.Time) time.Time }, at time.Time, window time.Duration) bool {
	next := sched.Next(at.Add(-window))
	return !next.IsZero() && !next.After(at)
}
