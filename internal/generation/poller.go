package generation

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/studyhub-backend/internal/platform/logger"
)

type Outcome string

const (
	OutcomeFound    Outcome = "found"
	OutcomeTimeout  Outcome = "timeout"
	OutcomeError    Outcome = "error"
	OutcomeCanceled Outcome = "canceled"
)

// Waiter blocks for d or until ctx is done.
type Waiter interface {
	Wait(ctx context.Context, d time.Duration) error
}

type timerWaiter struct{}

func (timerWaiter) Wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// RealWaiter sleeps on a single timer per tick.
var RealWaiter Waiter = timerWaiter{}

type Result[T any] struct {
	Outcome  Outcome
	Artifact *T
	Attempts int
	Err      error
}

// Poller re-reads the artifact store on a backoff schedule until Find returns
// an artifact, the schedule runs out, or ctx is canceled.
type Poller[T any] struct {
	Kind     Kind
	Schedule Schedule
	Waiter   Waiter
	// Find returns nil, nil while the artifact does not exist.
	Find func(ctx context.Context) (*T, error)
	// OnAttempt runs before each wait with the 1-based attempt number.
	OnAttempt func(attempt int)
	Log       *logger.Logger
}

func (p *Poller[T]) Run(ctx context.Context) Result[T] {
	ctx, span := otel.Tracer("studyhub/generation").Start(ctx, "generation.poll")
	span.SetAttributes(attribute.String("artifact.kind", string(p.Kind)))
	defer span.End()

	res := p.run(ctx)
	span.SetAttributes(
		attribute.String("poll.outcome", string(res.Outcome)),
		attribute.Int("poll.attempts", res.Attempts),
	)
	if res.Outcome == OutcomeError {
		span.SetStatus(codes.Error, "poll failed")
	}
	return res
}

func (p *Poller[T]) run(ctx context.Context) Result[T] {
	waiter := p.Waiter
	if waiter == nil {
		waiter = RealWaiter
	}
	log := p.Log
	if log == nil {
		log = logger.NewNop()
	}
	var lastErr error
	for attempt := 1; ; attempt++ {
		if ctx.Err() != nil {
			return Result[T]{Outcome: OutcomeCanceled, Attempts: attempt - 1, Err: ctx.Err()}
		}
		tick := p.Schedule.Tick(attempt)
		if tick.Done {
			if lastErr != nil {
				return Result[T]{Outcome: OutcomeError, Attempts: attempt - 1, Err: lastErr}
			}
			return Result[T]{Outcome: OutcomeTimeout, Attempts: attempt - 1}
		}
		if p.OnAttempt != nil {
			p.OnAttempt(attempt)
		}
		if err := waiter.Wait(ctx, tick.Delay); err != nil || ctx.Err() != nil {
			return Result[T]{Outcome: OutcomeCanceled, Attempts: attempt - 1, Err: ctx.Err()}
		}
		found, err := p.Find(ctx)
		if ctx.Err() != nil {
			return Result[T]{Outcome: OutcomeCanceled, Attempts: attempt, Err: ctx.Err()}
		}
		if errors.Is(err, ErrNotFound) {
			found, err = nil, nil
		}
		if err != nil {
			// a failed read counts as a tick without a finding
			log.Debug("poll read failed", "kind", p.Kind, "attempt", attempt, "error", err)
			lastErr = err
			continue
		}
		lastErr = nil
		if found != nil {
			return Result[T]{Outcome: OutcomeFound, Artifact: found, Attempts: attempt}
		}
	}
}
