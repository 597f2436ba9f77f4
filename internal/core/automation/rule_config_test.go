package automation

import (
	"errors"
	"testing"
	"time"
)

func TestDecodeTrigger(t *testing.T) {
	trigger, err := DecodeTrigger(TriggerComment, []byte(`{"platform":"instagram","keywords":[" Price ","","DM"]}`))
	if err != nil {
		t.Fatalf("DecodeTrigger: %v", err)
	}
	kw, ok := trigger.(KeywordTrigger)
	if !ok {
		t.Fatalf("trigger = %T", trigger)
	}
	if kw.TriggerType() != TriggerComment || kw.Platform != PlatformInstagram {
		t.Fatalf("trigger = %+v", kw)
	}
	if len(kw.Keywords) != 2 || kw.Keywords[0] != "price" || kw.Keywords[1] != "dm" {
		t.Fatalf("keywords = %q", kw.Keywords)
	}

	for _, raw := range []string{"", "null", "{}"} {
		if _, err := DecodeTrigger(TriggerKeyword, []byte(raw)); err != nil {
			t.Fatalf("empty config %q: %v", raw, err)
		}
	}

	if tr, err := DecodeTrigger(TriggerManual, nil); err != nil || tr.TriggerType() != TriggerManual {
		t.Fatalf("manual: %v %v", tr, err)
	}
}

func TestDecodeTriggerErrors(t *testing.T) {
	tests := []struct {
		name string
		tt   TriggerType
		raw  string
	}{
		{"unknown platform", TriggerKeyword, `{"platform":"tiktok"}`},
		{"keywords not a list", TriggerKeyword, `{"keywords":"price"}`},
		{"not json", TriggerKeyword, `{`},
		{"missing schedule", TriggerTime, `{}`},
		{"bad schedule", TriggerTime, `{"schedule":"every day at 9"}`},
		{"bad timezone", TriggerTime, `{"schedule":"0 9 * * *","timezone":"Mars/Olympus"}`},
		{"unknown trigger type", TriggerType("geo"), `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeTrigger(tt.tt, []byte(tt.raw)); !errors.Is(err, ErrRuleEvaluation) {
				t.Fatalf("err = %v, want ErrRuleEvaluation", err)
			}
		})
	}
}

func TestDecodeScheduleTrigger(t *testing.T) {
	trigger, err := DecodeTrigger(TriggerTime, []byte(`{"schedule":"@hourly"}`))
	if err != nil {
		t.Fatalf("DecodeTrigger: %v", err)
	}
	st := trigger.(ScheduleTrigger)
	if st.Parsed() == nil {
		t.Fatal("schedule not parsed")
	}
	from := time.Date(2026, 1, 1, 10, 30, 0, 0, time.UTC)
	if next := st.Parsed().Next(from); !next.Equal(time.Date(2026, 1, 1, 11, 0, 0, 0, time.UTC)) {
		t.Fatalf("next = %v", next)
	}

	withTZ := ScheduleTrigger{Schedule: "0 9 * * *", Timezone: "Asia/Jakarta"}
	if withTZ.Spec() != "CRON_TZ=Asia/Jakarta 0 9 * * *" {
		t.Fatalf("spec = %q", withTZ.Spec())
	}
	explicit := ScheduleTrigger{Schedule: "CRON_TZ=UTC 0 9 * * *", Timezone: "Asia/Jakarta"}
	if explicit.Spec() != "CRON_TZ=UTC 0 9 * * *" {
		t.Fatalf("spec = %q", explicit.Spec())
	}
}

func TestDecodeAction(t *testing.T) {
	tests := []struct {
		name string
		at   ActionType
		raw  string
		want ActionType
	}{
		{"dm template", ActionSendDM, `{"template":"Hi {first_name}","delay_seconds":30}`, ActionSendDM},
		{"dm ai", ActionSendDM, `{"use_ai":true,"ai_prompt":"be nice"}`, ActionSendDM},
		{"public reply", ActionSendPublicReply, `{"template":"Thanks!"}`, ActionSendPublicReply},
		{"email", ActionSendEmail, `{"template":"x","subject":"Hello","to":"a@b.c","recipient":"fixed"}`, ActionSendEmail},
		{"webhook", ActionSendWebhook, `{"url":"https://hooks.example.com/x","timeout_seconds":5}`, ActionSendWebhook},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := DecodeAction(tt.at, []byte(tt.raw))
			if err != nil {
				t.Fatalf("DecodeAction: %v", err)
			}
			if cfg.ActionType() != tt.want {
				t.Fatalf("type = %s", cfg.ActionType())
			}
		})
	}

	cfg, _ := DecodeAction(ActionSendDM, []byte(`{"template":"x","delay_seconds":30}`))
	if cfg.Delay() != 30*time.Second {
		t.Fatalf("delay = %v", cfg.Delay())
	}
	hook, _ := DecodeAction(ActionSendWebhook, []byte(`{"url":"http://x"}`))
	if hook.(WebhookAction).Timeout() != 10*time.Second {
		t.Fatalf("default webhook timeout = %v", hook.(WebhookAction).Timeout())
	}
}

func TestDecodeActionErrors(t *testing.T) {
	tests := []struct {
		name string
		at   ActionType
		raw  string
	}{
		{"dm without body", ActionSendDM, `{}`},
		{"dm empty template", ActionSendDM, `{"template":""}`},
		{"dm ai false", ActionSendDM, `{"use_ai":false}`},
		{"delay too long", ActionSendDM, `{"template":"x","delay_seconds":3600}`},
		{"email without subject", ActionSendEmail, `{"template":"x"}`},
		{"email bad recipient mode", ActionSendEmail, `{"template":"x","subject":"s","recipient":"cc"}`},
		{"webhook without url", ActionSendWebhook, `{}`},
		{"webhook bad scheme", ActionSendWebhook, `{"url":"ftp://x"}`},
		{"webhook timeout too long", ActionSendWebhook, `{"url":"https://x","timeout_seconds":60}`},
		{"unknown action", ActionType("send_sms"), `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeAction(tt.at, []byte(tt.raw)); !errors.Is(err, ErrRuleEvaluation) {
				t.Fatalf("err = %v, want ErrRuleEvaluation", err)
			}
		})
	}
}
