package repositories

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

// RuleChangeChannel is the Postgres NOTIFY channel the dashboard signals on
// after rule writes. The payload is the workspace id, or empty for "all".
const RuleChangeChannel = "automation_rules_changed"

// Invalidator drops cached rules of a workspace (uuid.Nil for all)
type Invalidator interface {
	Invalidate(workspaceID uuid.UUID)
}

// RuleListener turns rule change notifications into cache invalidations
type RuleListener struct {
	dsn   string
	cache Invalidator
}

func NewRuleListener(dsn string, cache Invalidator) *RuleListener {
	return &RuleListener{dsn: dsn, cache: cache}
}

// Run listens until ctx is done
func (l *RuleListener) Run(ctx context.Context) error {
	listener := pq.NewListener(l.dsn, time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.Warn().Err(err).Msg("⚠️ Rule listener connection event")
		}
	})
	defer listener.Close()

	if err := listener.Listen(RuleChangeChannel); err != nil {
		return err
	}
	log.Info().Str("channel", RuleChangeChannel).Msg("👂 Listening for rule changes")

	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-listener.Notify:
			l.handleNotification(n)
		case <-time.After(90 * time.Second):
			go listener.Ping()
		}
	}
}

// handleNotification invalidates the workspace named in the payload. A nil
// notification means the connection was re-established and events may have
// been missed, so everything is dropped.
func (l *RuleListener) handleNotification(n *pq.Notification) {
	if n == nil {
		l.cache.Invalidate(uuid.Nil)
		return
	}
	payload := strings.TrimSpace(n.Extra)
	if payload == "" {
		l.cache.Invalidate(uuid.Nil)
		return
	}
	workspaceID, err := uuid.Parse(payload)
	if err != nil {
		log.Warn().Str("payload", payload).Msg("⚠️ Unparseable rule change payload, clearing cache")
		l.cache.Invalidate(uuid.Nil)
		return
	}
	l.cache.Invalidate(workspaceID)
}
