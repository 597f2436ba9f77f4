// Package dispatch hands normalized events to the engine off the request path.
package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/wisemantransports-ux/retail-assist-sub005/internal/core/automation"
)

var (
	ErrQueueFull   = errors.New("dispatch queue is full")
	ErrQueueClosed = errors.New("dispatch queue is closed")
)

// Processor runs every enabled rule against an event
type Processor interface {
	ProcessEvent(ctx context.Context, event automation.InboundEvent) ([]automation.ExecutionResult, error)
}

// Queue accepts events for asynchronous processing
type Queue interface {
	Submit(ctx context.Context, event automation.InboundEvent) error
	Start(ctx context.Context) error
	Stop()
}

// Mode selects the queue implementation
type Mode string

const (
	ModeInline Mode = "inline"
	ModePool   Mode = "pool"
	ModeAsynq  Mode = "asynq"
)

// Config holds the queue settings
type Config struct {
	Mode      Mode
	Workers   int
	QueueSize int
	RedisAddr string
}

// New builds the queue selected by cfg.Mode
func New(cfg Config, processor Processor) (Queue, error) {
	switch cfg.Mode {
	case ModeInline:
		return NewInline(processor), nil
	case ModePool, "":
		return NewPool(processor, PoolConfig{Workers: cfg.Workers, QueueSize: cfg.QueueSize}), nil
	case ModeAsynq:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("REDIS_ADDR is required for asynq dispatch")
		}
		return NewAsynqQueue(cfg.RedisAddr, cfg.Workers, processor), nil
	default:
		return nil, fmt.Errorf("unknown dispatch mode: %s", cfg.Mode)
	}
}

// Inline processes events synchronously inside Submit
type Inline struct {
	processor Processor
}

func NewInline(processor Processor) *Inline {
	return &Inline{processor: processor}
}

func (q *Inline) Submit(ctx context.Context, event automation.InboundEvent) error {
	_, err := q.processor.ProcessEvent(ctx, event)
	return err
}

func (q *Inline) Start(ctx context.Context) error { return nil }

func (q *Inline) Stop() {}
