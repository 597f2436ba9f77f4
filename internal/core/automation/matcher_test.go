package automation

import (
	"errors"
	"testing"
	"time"
)

func TestMatchKeywordTrigger(t *testing.T) {
	m := NewMatcher()
	event := InboundEvent{Platform: PlatformFacebook, Kind: KindComment, Text: "Is this bag still AVAILABLE?"}

	tests := []struct {
		name    string
		trigger KeywordTrigger
		event   InboundEvent
		want    bool
	}{
		{"no keywords matches anything", KeywordTrigger{}, event, true},
		{"case-insensitive substring", KeywordTrigger{Keywords: []string{"available"}}, event, true},
		{"upper-case keyword", KeywordTrigger{Keywords: []string{"BAG"}}, event, true},
		{"any keyword", KeywordTrigger{Keywords: []string{"price", "still"}}, event, true},
		{"no keyword present", KeywordTrigger{Keywords: []string{"price"}}, event, false},
		{"platform filter matches", KeywordTrigger{Platform: PlatformFacebook}, event, true},
		{"platform filter rejects", KeywordTrigger{Platform: PlatformInstagram}, event, false},
		{"exclude keyword vetoes", KeywordTrigger{Keywords: []string{"bag"}, ExcludeKeywords: []string{"available"}}, event, false},
		{"event kind filter rejects", KeywordTrigger{EventKinds: []EventKind{KindMessage}}, event, false},
		{"event kind filter matches", KeywordTrigger{EventKinds: []EventKind{KindMessage, KindComment}}, event, true},
		{"empty text with keywords", KeywordTrigger{Keywords: []string{"bag"}}, InboundEvent{Platform: PlatformFacebook, Kind: KindComment}, false},
		{"schedule tick never matches", KeywordTrigger{}, InboundEvent{Kind: KindScheduleTick}, false},
		{"manual never matches", KeywordTrigger{}, InboundEvent{Kind: KindManual}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := Rule{TriggerType: TriggerKeyword, Trigger: tt.trigger}
			got, err := m.Match(rule, tt.event)
			if err != nil {
				t.Fatalf("Match: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Match = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchBrokenConfigIsNonMatching(t *testing.T) {
	m := NewMatcher()
	event := InboundEvent{Platform: PlatformFacebook, Kind: KindComment, Text: "hi"}

	_, decodeErr := DecodeTrigger(TriggerKeyword, []byte(`{"keywords": "not-a-list"}`))
	rule := Rule{TriggerType: TriggerKeyword, TriggerErr: decodeErr}
	got, err := m.Match(rule, event)
	if got || !errors.Is(err, ErrRuleEvaluation) {
		t.Fatalf("got %v, err %v", got, err)
	}

	got, err = m.Match(Rule{TriggerType: TriggerKeyword}, event)
	if got || !errors.Is(err, ErrRuleEvaluation) {
		t.Fatalf("nil trigger: got %v, err %v", got, err)
	}
}

func TestMatchScheduleTrigger(t *testing.T) {
	trigger, err := DecodeTrigger(TriggerTime, []byte(`{"schedule": "0 9 * * *", "timezone": "UTC"}`))
	if err != nil {
		t.Fatalf("DecodeTrigger: %v", err)
	}
	rule := Rule{TriggerType: TriggerTime, Trigger: trigger}
	m := NewMatcher()

	nineOClock := time.Date(2026, 3, 2, 9, 0, 20, 0, time.UTC)
	tests := []struct {
		name  string
		event InboundEvent
		want  bool
	}{
		{"tick shortly after firing", InboundEvent{Kind: KindScheduleTick, ReceivedAt: nineOClock}, true},
		{"tick exactly at firing", InboundEvent{Kind: KindScheduleTick, ReceivedAt: nineOClock.Truncate(time.Minute)}, true},
		{"tick two minutes late", InboundEvent{Kind: KindScheduleTick, ReceivedAt: nineOClock.Add(2 * time.Minute)}, false},
		{"tick before firing", InboundEvent{Kind: KindScheduleTick, ReceivedAt: nineOClock.Add(-time.Minute)}, false},
		{"webhook event", InboundEvent{Kind: KindComment, ReceivedAt: nineOClock}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Match(rule, tt.event)
			if err != nil {
				t.Fatalf("Match: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Match = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchManualTrigger(t *testing.T) {
	m := NewMatcher()
	rule := Rule{TriggerType: TriggerManual, Trigger: ManualTrigger{}}

	if ok, _ := m.Match(rule, InboundEvent{Kind: KindManual}); !ok {
		t.Fatal("manual event should match")
	}
	for _, kind := range []EventKind{KindComment, KindMessage, KindFormSubmission, KindScheduleTick} {
		if ok, _ := m.Match(rule, InboundEvent{Kind: kind, Text: "anything"}); ok {
			t.Fatalf("%s event matched a manual rule", kind)
		}
	}
}
