package automation

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type fakeRuleStore struct {
	mu        sync.Mutex
	rules     []Rule
	err       error
	loadCalls int
}

func (f *fakeRuleStore) LoadEnabledRules(ctx context.Context, workspaceID, agentID uuid.UUID) ([]Rule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loadCalls++
	if f.err != nil {
		return nil, f.err
	}
	var out []Rule
	for _, r := range f.rules {
		if r.Enabled && r.WorkspaceID == workspaceID && r.AgentID == agentID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRuleStore) GetRule(ctx context.Context, id uuid.UUID) (Rule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rules {
		if r.ID == id {
			return r, nil
		}
	}
	return Rule{}, ErrRuleNotFound
}

func (f *fakeRuleStore) ListEnabledByTrigger(ctx context.Context, tt TriggerType) ([]Rule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []Rule
	for _, r := range f.rules {
		if r.Enabled && r.TriggerType == tt {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRuleStore) setRules(rules ...Rule) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = rules
}

type memoryRecorder struct {
	mu      sync.Mutex
	results []ExecutionResult
	err     error
}

func (m *memoryRecorder) Record(ctx context.Context, result ExecutionResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, result)
	return m.err
}

func (m *memoryRecorder) all() []ExecutionResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ExecutionResult(nil), m.results...)
}

type memoryLedger struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func (m *memoryLedger) MarkProcessed(ctx context.Context, platform Platform, externalID string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seen == nil {
		m.seen = make(map[string]bool)
	}
	key := string(platform) + "|" + externalID
	if m.seen[key] {
		return false, nil
	}
	m.seen[key] = true
	return true, nil
}

func keywordRule(workspaceID, agentID uuid.UUID, created time.Time, keywords ...string) Rule {
	return Rule{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		AgentID:     agentID,
		Name:        "keyword rule",
		Enabled:     true,
		TriggerType: TriggerKeyword,
		Trigger:     KeywordTrigger{Type: TriggerKeyword, Keywords: keywords},
		ActionType:  ActionSendDM,
		Action:      DirectMessageAction{ReplyBody: ReplyBody{Template: "hi"}},
		CreatedAt:   created,
	}
}
