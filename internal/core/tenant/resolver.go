package tenant

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wisemantransports-ux/retail-assist-sub005/internal/core/automation"
)

// ErrChannelNotFound is returned when no enabled channel matches
var ErrChannelNotFound = errors.New("channel not found")

// Channel is an account connected to a workspace: a Facebook page, an
// Instagram business account, a WhatsApp phone number or a website form.
type Channel struct {
	ID          uuid.UUID
	WorkspaceID uuid.UUID
	AgentID     uuid.UUID
	Platform    automation.Platform
	ExternalID  string // page id, IG account id, phone_number_id or form key
	AccessToken string
	FormSecret  string
}

// ChannelStore looks up enabled channels
type ChannelStore interface {
	FindEnabledChannel(ctx context.Context, platform automation.Platform, externalID string) (*Channel, error)
}

type channelKey struct {
	platform   automation.Platform
	externalID string
}

type cachedChannel struct {
	channel  Channel
	loadedAt time.Time
}

// Resolver maps the receiving account of an event to its workspace and agent
type Resolver struct {
	store ChannelStore
	ttl   time.Duration

	mu    sync.RWMutex
	cache map[channelKey]cachedChannel
}

// NewResolver creates a resolver with a small TTL cache; ttl <= 0 disables it
func NewResolver(store ChannelStore, ttl time.Duration) *Resolver {
	return &Resolver{
		store: store,
		ttl:   ttl,
		cache: make(map[channelKey]cachedChannel),
	}
}

// Resolve returns the channel registered for platform/externalID
func (r *Resolver) Resolve(ctx context.Context, platform automation.Platform, externalID string) (Channel, error) {
	if externalID == "" {
		return Channel{}, fmt.Errorf("%w: empty %s account id", ErrChannelNotFound, platform)
	}
	key := channelKey{platform: platform, externalID: externalID}

	if r.ttl > 0 {
		r.mu.RLock()
		cached, ok := r.cache[key]
		r.mu.RUnlock()
		if ok && time.Since(cached.loadedAt) < r.ttl {
			return cached.channel, nil
		}
	}

	ch, err := r.store.FindEnabledChannel(ctx, platform, externalID)
	if err != nil {
		return Channel{}, err
	}
	if ch == nil {
		return Channel{}, fmt.Errorf("%w: %s/%s", ErrChannelNotFound, platform, externalID)
	}

	if r.ttl > 0 {
		r.mu.Lock()
		r.cache[key] = cachedChannel{channel: *ch, loadedAt: time.Now()}
		r.mu.Unlock()
	}
	return *ch, nil
}

// Apply stamps workspace and agent of the resolved channel onto event
func (r *Resolver) Apply(ctx context.Context, event *automation.InboundEvent) error {
	ch, err := r.Resolve(ctx, event.Platform, event.ChannelID)
	if err != nil {
		return err
	}
	event.WorkspaceID = ch.WorkspaceID
	event.AgentID = ch.AgentID
	return nil
}

// AccessToken returns the send credential of a channel
func (r *Resolver) AccessToken(ctx context.Context, platform automation.Platform, channelID string) (string, error) {
	ch, err := r.Resolve(ctx, platform, channelID)
	if err != nil {
		return "", err
	}
	if ch.AccessToken == "" {
		return "", fmt.Errorf("channel %s/%s has no access token", platform, channelID)
	}
	return ch.AccessToken, nil
}
