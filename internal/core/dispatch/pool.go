package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wisemantransports-ux/retail-assist-sub005/internal/core/automation"
)

// PoolConfig sizes the in-process worker pool
type PoolConfig struct {
	Workers      int
	QueueSize    int
	DrainTimeout time.Duration
}

// Pool is a bounded in-process worker pool fed by a buffered channel
type Pool struct {
	processor Processor
	config    PoolConfig
	events    chan automation.InboundEvent

	mu      sync.RWMutex
	started bool
	stopped bool
	wg      sync.WaitGroup
	cancel  context.CancelFunc
}

// NewPool creates a pool. Defaults: 8 workers, 256 queued events, 30s drain.
func NewPool(processor Processor, config PoolConfig) *Pool {
	if config.Workers <= 0 {
		config.Workers = 8
	}
	if config.QueueSize <= 0 {
		config.QueueSize = 256
	}
	if config.DrainTimeout <= 0 {
		config.DrainTimeout = 30 * time.Second
	}
	return &Pool{
		processor: processor,
		config:    config,
		events:    make(chan automation.InboundEvent, config.QueueSize),
	}
}

// Submit enqueues the event without blocking
func (p *Pool) Submit(ctx context.Context, event automation.InboundEvent) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrQueueClosed
	}

	select {
	case p.events <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

// Start launches the workers. Cancelling ctx does not interrupt events
// already taken by a worker; Stop drains them.
func (p *Pool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return ErrQueueClosed
	}
	if p.started {
		return nil
	}
	p.started = true

	workCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	p.cancel = cancel

	log.Info().Int("workers", p.config.Workers).Int("queue_size", p.config.QueueSize).Msg("🚀 Starting dispatch pool")
	for i := 0; i < p.config.Workers; i++ {
		p.wg.Add(1)
		go p.runWorker(workCtx, i+1)
	}
	return nil
}

// Stop closes the queue and waits for queued events. Workers still busy
// after the drain timeout get their context cancelled.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.events)
	started := p.started
	p.mu.Unlock()

	if !started {
		return
	}

	log.Info().Msg("🛑 Draining dispatch pool...")

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(p.config.DrainTimeout):
		log.Warn().Dur("timeout", p.config.DrainTimeout).Msg("⚠️ Drain timeout reached, cancelling in-flight events")
		p.cancel()
		<-done
	}
	p.cancel()

	log.Info().Msg("✅ Dispatch pool stopped")
}

// Pending returns the number of queued events
func (p *Pool) Pending() int {
	return len(p.events)
}

func (p *Pool) runWorker(ctx context.Context, workerID int) {
	defer p.wg.Done()

	for event := range p.events {
		p.process(ctx, workerID, event)
	}
}

func (p *Pool) process(ctx context.Context, workerID int, event automation.InboundEvent) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Int("worker", workerID).Msg("❌ Dispatch worker recovered from panic")
		}
	}()

	start := time.Now()
	results, err := p.processor.ProcessEvent(ctx, event)
	if err != nil {
		log.Error().Err(err).
			Int("worker", workerID).
			Str("platform", string(event.Platform)).
			Str("external_id", event.ExternalID).
			Msg("❌ Event processing failed")
		return
	}

	log.Debug().
		Int("worker", workerID).
		Str("external_id", event.ExternalID).
		Int("rules", len(results)).
		Dur("duration", time.Since(start)).
		Msg("✅ Event processed")
}
