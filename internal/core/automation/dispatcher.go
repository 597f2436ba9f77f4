package automation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Skip reasons reported when an executor intentionally does nothing
const (
	SkipDuplicate           = "duplicate_suppressed"
	SkipUnsupportedPlatform = "unsupported_platform"
	SkipNotAComment         = "not_a_comment"
	SkipNoRecipient         = "no_recipient"
)

// DefaultActionTimeout bounds a single executor call
const DefaultActionTimeout = 10 * time.Second

// Outcome is what an executor reports back. Executed=false with a
// SkipReason is an intentional skip, not a failure.
type Outcome struct {
	Executed    bool
	SkipReason  string
	ProviderRef string
	Detail      string
}

// Executor performs the side effect of one action type
type Executor interface {
	Execute(ctx context.Context, rule Rule, event InboundEvent) (Outcome, error)
}

// ExecutorFunc adapts a function to Executor
type ExecutorFunc func(ctx context.Context, rule Rule, event InboundEvent) (Outcome, error)

func (f ExecutorFunc) Execute(ctx context.Context, rule Rule, event InboundEvent) (Outcome, error) {
	return f(ctx, rule, event)
}

// Dispatcher routes matched rules to the executor of their action type
type Dispatcher struct {
	mu        sync.RWMutex
	executors map[ActionType]Executor
	timeout   time.Duration
	sleep     func(ctx context.Context, d time.Duration) error
}

// NewDispatcher creates a dispatcher with the given per-call timeout
func NewDispatcher(timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultActionTimeout
	}
	return &Dispatcher{
		executors: make(map[ActionType]Executor),
		timeout:   timeout,
		sleep:     sleepContext,
	}
}

// Register binds an executor to an action type
func (d *Dispatcher) Register(actionType ActionType, executor Executor) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.executors[actionType] = executor
	log.Debug().Str("action_type", string(actionType)).Msg("✅ Registered action executor")
}

// Timeout returns the per-call timeout
func (d *Dispatcher) Timeout() time.Duration {
	return d.timeout
}

// Dispatch runs the action of a matched rule. It never returns an error:
// failures are classified into the result.
func (d *Dispatcher) Dispatch(ctx context.Context, rule Rule, event InboundEvent) ExecutionResult {
	start := time.Now()
	result := newResult(rule, event)
	result.Matched = true

	finish := func() ExecutionResult {
		result.DurationMs = time.Since(start).Milliseconds()
		result.Timestamp = time.Now().UTC()
		return result
	}

	if rule.ActionErr != nil {
		result.ErrorKind = KindRuleEvaluationError
		result.ErrorMessage = rule.ActionErr.Error()
		return finish()
	}

	d.mu.RLock()
	executor, ok := d.executors[rule.ActionType]
	d.mu.RUnlock()
	if !ok || rule.Action == nil {
		result.ErrorKind = KindRuleEvaluationError
		result.ErrorMessage = fmt.Sprintf("no executor for action type %q", rule.ActionType)
		return finish()
	}

	if delay := rule.Action.Delay(); delay > 0 {
		if delay > MaxActionDelay {
			delay = MaxActionDelay
		}
		log.Debug().Str("rule_id", rule.ID.String()).Dur("delay", delay).Msg("⏳ Delaying action")
		if err := d.sleep(ctx, delay); err != nil {
			result.ErrorKind = KindActionTimeout
			result.ErrorMessage = fmt.Sprintf("cancelled during delay: %v", err)
			return finish()
		}
	}

	outcome, err := d.call(ctx, executor, rule, event)
	switch {
	case err == nil:
		result.ActionExecuted = outcome.Executed
		result.SkipReason = outcome.SkipReason
		result.ProviderRef = outcome.ProviderRef
		result.Detail = outcome.Detail

	case errors.Is(err, ErrDuplicateSuppressed):
		result.SkipReason = SkipDuplicate

	default:
		result.ErrorKind = KindOf(err)
		if result.ErrorKind != KindActionTimeout && result.ErrorKind != KindRuleEvaluationError {
			result.ErrorKind = KindActionProviderError
		}
		result.ErrorMessage = err.Error()
		result.Detail = outcome.Detail
		result.ProviderRef = outcome.ProviderRef
	}

	return finish()
}

type callResult struct {
	outcome Outcome
	err     error
}

// timeouter is implemented by actions carrying their own request timeout
type timeouter interface {
	Timeout() time.Duration
}

// call runs the executor under the per-call timeout. An executor that
// ignores its context is abandoned once the deadline passes.
func (d *Dispatcher) call(ctx context.Context, executor Executor, rule Rule, event InboundEvent) (Outcome, error) {
	timeout := d.timeout
	if t, ok := rule.Action.(timeouter); ok && t.Timeout() > 0 {
		timeout = t.Timeout()
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan callResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- callResult{err: fmt.Errorf("%w: executor panic: %v", ErrActionProvider, r)}
			}
		}()
		outcome, err := executor.Execute(callCtx, rule, event)
		done <- callResult{outcome: outcome, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return res.outcome, fmt.Errorf("%w after %s: %v", ErrActionTimeout, timeout, res.err)
		}
		return res.outcome, res.err
	case <-callCtx.Done():
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return Outcome{}, fmt.Errorf("%w after %s", ErrActionTimeout, timeout)
		}
		return Outcome{}, fmt.Errorf("%w: %v", ErrActionTimeout, callCtx.Err())
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
