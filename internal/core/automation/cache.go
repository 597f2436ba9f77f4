package automation

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type cacheKey struct {
	workspaceID uuid.UUID
	agentID     uuid.UUID
}

type cacheEntry struct {
	rules    []Rule
	loadedAt time.Time
}

// CachedRuleStore keeps LoadEnabledRules results for a short TTL. Other
// reads go straight to the wrapped store.
type CachedRuleStore struct {
	RuleStore

	ttl     time.Duration
	mu      sync.RWMutex
	entries map[cacheKey]cacheEntry
	now     func() time.Time
}

// NewCachedRuleStore wraps store with a TTL cache
func NewCachedRuleStore(store RuleStore, ttl time.Duration) *CachedRuleStore {
	return &CachedRuleStore{
		RuleStore: store,
		ttl:       ttl,
		entries:   make(map[cacheKey]cacheEntry),
		now:       time.Now,
	}
}

func (c *CachedRuleStore) LoadEnabledRules(ctx context.Context, workspaceID, agentID uuid.UUID) ([]Rule, error) {
	key := cacheKey{workspaceID: workspaceID, agentID: agentID}

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && c.now().Sub(entry.loadedAt) < c.ttl {
		return append([]Rule(nil), entry.rules...), nil
	}

	rules, err := c.RuleStore.LoadEnabledRules(ctx, workspaceID, agentID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{rules: rules, loadedAt: c.now()}
	c.mu.Unlock()

	return append([]Rule(nil), rules...), nil
}

// Invalidate drops cached rules of a workspace, or everything for uuid.Nil
func (c *CachedRuleStore) Invalidate(workspaceID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if workspaceID == uuid.Nil {
		c.entries = make(map[cacheKey]cacheEntry)
		log.Debug().Msg("🧹 Rule cache cleared")
		return
	}
	for key := range c.entries {
		if key.workspaceID == workspaceID {
			delete(c.entries, key)
		}
	}
	log.Debug().Str("workspace_id", workspaceID.String()).Msg("🧹 Rule cache invalidated")
}
