package dispatch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"github.com/wisemantransports-ux/retail-assist-sub005/internal/core/automation"
)

// TypeProcessEvent is the asynq task type carrying one inbound event
const TypeProcessEvent = "automation:process_event"

// AsynqQueue persists events in Redis and processes them on an asynq
// server. Tasks are never retried.
type AsynqQueue struct {
	client    *asynq.Client
	server    *asynq.Server
	processor Processor
}

func NewAsynqQueue(redisAddr string, concurrency int, processor Processor) *AsynqQueue {
	if concurrency <= 0 {
		concurrency = 8
	}
	redisOpt := asynq.RedisClientOpt{Addr: redisAddr}

	return &AsynqQueue{
		client: asynq.NewClient(redisOpt),
		server: asynq.NewServer(redisOpt, asynq.Config{
			Concurrency: concurrency,
		}),
		processor: processor,
	}
}

func (q *AsynqQueue) Submit(ctx context.Context, event automation.InboundEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	task := asynq.NewTask(TypeProcessEvent, payload, asynq.MaxRetry(0))
	info, err := q.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to enqueue event: %w", err)
	}

	log.Debug().Str("task_id", info.ID).Str("external_id", event.ExternalID).Msg("📥 Event enqueued")
	return nil
}

// Start runs the asynq server in the background
func (q *AsynqQueue) Start(ctx context.Context) error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeProcessEvent, q.handleTask)

	if err := q.server.Start(mux); err != nil {
		return fmt.Errorf("could not start asynq server: %w", err)
	}
	log.Info().Msg("🚀 Asynq dispatch server started")
	return nil
}

func (q *AsynqQueue) Stop() {
	q.server.Shutdown()
	if err := q.client.Close(); err != nil {
		log.Warn().Err(err).Msg("⚠️ Failed to close asynq client")
	}
	log.Info().Msg("✅ Asynq dispatch server stopped")
}

func (q *AsynqQueue) handleTask(ctx context.Context, t *asynq.Task) error {
	var event automation.InboundEvent
	if err := json.Unmarshal(t.Payload(), &event); err != nil {
		return fmt.Errorf("json unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}

	results, err := q.processor.ProcessEvent(ctx, event)
	if err != nil {
		return err
	}
	log.Debug().Str("external_id", event.ExternalID).Int("rules", len(results)).Msg("✅ Event processed")
	return nil
}
