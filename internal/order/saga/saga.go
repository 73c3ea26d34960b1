// Package saga runs a sequence of forward steps with registered
// compensating actions. When a forward step fails, the compensations
// registered so far run in the order they were registered, each at
// most once, and their failures are logged rather than retried.
package saga

import (
	"context"

	"go.uber.org/zap"
)

// Compensation undoes one completed forward step.
type Compensation struct {
	Step string
	Run  func(ctx context.Context) error
}

// Saga accumulates compensations while a multi-step flow makes forward
// progress. It is not safe for concurrent use.
type Saga struct {
	log           *zap.Logger
	compensations []Compensation
	onCompensate  func(ctx context.Context, step string)
}

type Option func(*Saga)

// WithCompensationHook registers a callback invoked once per executed
// compensation, before its Run.
func WithCompensationHook(fn func(ctx context.Context, step string)) Option {
	return func(s *Saga) {
		s.onCompensate = fn
	}
}

func New(log *zap.Logger, opts ...Option) *Saga {
	s := &Saga{log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Defer registers a compensation for a forward step that just
// completed.
func (s *Saga) Defer(step string, run func(ctx context.Context) error) {
	s.compensations = append(s.compensations, Compensation{Step: step, Run: run})
}

// Compensate runs every registered compensation in registration order
// and clears the list. Failures are logged and do not stop the
// remaining compensations.
func (s *Saga) Compensate(ctx context.Context) {
	for _, c := range s.compensations {
		if s.onCompensate != nil {
			s.onCompensate(ctx, c.Step)
		}
		if err := c.Run(ctx); err != nil {
			s.log.Error("compensation failed",
				zap.String("step", c.Step),
				zap.Error(err),
			)
			continue
		}
		s.log.Info("compensation applied", zap.String("step", c.Step))
	}
	s.compensations = nil
}

// Settle drops the registered compensations once the flow has reached
// a terminal success and nothing needs undoing.
func (s *Saga) Settle() {
	s.compensations = nil
}

// Len reports how many compensations are currently registered.
func (s *Saga) Len() int {
	return len(s.compensations)
}
