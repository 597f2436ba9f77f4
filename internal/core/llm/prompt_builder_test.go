package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestBuildReplyPrompt(t *testing.T) {
	system, user := BuildReplyPrompt(ReplyContext{
		Platform:    "instagram",
		Channel:     "comment",
		AuthorName:  "Jane",
		Text:        "how much is this?",
		Instruction: "We sell handmade bags.",
	})

	for _, want := range []string{"instagram", "public comment", "We sell handmade bags."} {
		if !strings.Contains(system, want) {
			t.Errorf("system prompt missing %q:\n%s", want, system)
		}
	}
	if !strings.Contains(user, "Customer Jane wrote:") || !strings.HasSuffix(user, "how much is this?") {
		t.Errorf("user message = %q", user)
	}
}

type fakeProvider struct {
	reply string
	err   error
}

func (f fakeProvider) GenerateResponse(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	return f.reply, f.err
}

func (f fakeProvider) GetProviderName() string { return "fake" }

func TestServiceDelegates(t *testing.T) {
	svc := NewServiceWithProvider(fakeProvider{reply: "hello"})
	got, err := svc.GenerateResponse(context.Background(), "s", "u")
	if err != nil || got != "hello" {
		t.Fatalf("got %q, %v", got, err)
	}

	var none *Service
	if _, err := none.GenerateResponse(context.Background(), "s", "u"); err == nil {
		t.Fatal("expected error from nil service")
	}
}

func TestNewServiceWithoutKeys(t *testing.T) {
	svc, err := NewService(&ProviderConfig{Type: ProviderOpenAI})
	if err != nil || svc != nil {
		t.Fatalf("svc = %v, err = %v", svc, err)
	}
	failing := NewServiceWithProvider(fakeProvider{err: errors.New("quota")})
	if _, err := failing.GenerateResponse(context.Background(), "", ""); err == nil {
		t.Fatal("expected provider error")
	}
}

func TestNewProviderRequiresKey(t *testing.T) {
	if _, err := NewProvider(&ProviderConfig{Type: ProviderGroq}); err == nil {
		t.Fatal("expected missing key error")
	}
	p, err := NewProvider(&ProviderConfig{Type: ProviderDeepSeek, DeepSeekKey: "k"})
	if err != nil || p.GetProviderName() != "DeepSeek" {
		t.Fatalf("provider = %v, err = %v", p, err)
	}
}
