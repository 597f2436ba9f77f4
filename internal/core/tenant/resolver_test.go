package tenant

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/wisemantransports-ux/retail-assist-sub005/internal/core/automation"
)

type fakeChannelStore struct {
	channels map[string]*Channel
	calls    int
	err      error
}

func (f *fakeChannelStore) FindEnabledChannel(ctx context.Context, platform automation.Platform, externalID string) (*Channel, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.channels[string(platform)+"/"+externalID], nil
}

func TestResolverAppliesWorkspace(t *testing.T) {
	ws, agent := uuid.New(), uuid.New()
	store := &fakeChannelStore{channels: map[string]*Channel{
		"facebook/page-1": {WorkspaceID: ws, AgentID: agent, Platform: automation.PlatformFacebook, ExternalID: "page-1", AccessToken: "tok"},
	}}
	r := NewResolver(store, time.Minute)

	ev := automation.InboundEvent{Platform: automation.PlatformFacebook, ChannelID: "page-1"}
	if err := r.Apply(context.Background(), &ev); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if ev.WorkspaceID != ws || ev.AgentID != agent {
		t.Fatalf("workspace not applied: %+v", ev)
	}

	token, err := r.AccessToken(context.Background(), automation.PlatformFacebook, "page-1")
	if err != nil || token != "tok" {
		t.Fatalf("AccessToken = %q, %v", token, err)
	}
	if store.calls != 1 {
		t.Errorf("expected cached lookup, store called %d times", store.calls)
	}
}

func TestResolverUnknownChannel(t *testing.T) {
	r := NewResolver(&fakeChannelStore{}, 0)

	ev := automation.InboundEvent{Platform: automation.PlatformInstagram, ChannelID: "ig-404"}
	if err := r.Apply(context.Background(), &ev); !errors.Is(err, ErrChannelNotFound) {
		t.Fatalf("expected ErrChannelNotFound, got %v", err)
	}
	ev.ChannelID = ""
	if err := r.Apply(context.Background(), &ev); !errors.Is(err, ErrChannelNotFound) {
		t.Fatalf("expected ErrChannelNotFound for empty id, got %v", err)
	}
}
