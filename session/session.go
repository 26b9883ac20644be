// Package session runs one reasoning backend instance over one fetched
// comparison table, relaying its steps to a bound event sink. Sessions
// are built by [Build], exist for exactly one query, and are never
// reused or retried.
package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	ai "github.com/tabletalk-ai/tabletalk"
	"github.com/tabletalk-ai/tabletalk/sink"
)

// Session wraps one reasoning backend instance, pre-loaded with the
// fetched table's rendered context and bound to an event sink.
type Session struct {
	reasoner ai.Reasoner
	out      sink.Sink
	data     string
	budget   time.Duration
	log      *slog.Logger
}

// Handle tracks a streaming run. Sink delivery does not wait for the
// handle to be awaited; the handle only reports completion or failure.
type Handle struct {
	done   chan struct{}
	answer string
	err    error
}

// Wait blocks until the run completes or ctx expires, and returns the
// final answer or the run's failure.
func (h *Handle) Wait(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-h.done:
		return h.answer, h.err
	}
}

// RunBlocking executes the session synchronously and returns only the
// final answer text. Intermediate thoughts are discarded regardless of
// the bound sink.
func (s *Session) RunBlocking(ctx context.Context, query string) (string, error) {
	return s.run(ctx, query, sink.NewNull())
}

// RunStreaming starts the session as a background task and returns
// immediately. Steps flow into the bound sink as the backend produces
// them; the returned handle resolves when the backend finishes or fails.
// The task always resolves, even if nobody drains the sink: the
// session's execution budget and ctx are the backstop.
func (s *Session) RunStreaming(ctx context.Context, query string) *Handle {
	h := &Handle{done: make(chan struct{})}
	go func() {
		defer close(h.done)
		h.answer, h.err = s.run(ctx, query, s.out)
	}()
	return h
}

func (s *Session) run(ctx context.Context, query string, out sink.Sink) (string, error) {
	if s.budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, s.budget, ai.ErrExecutionTimeout)
		defer cancel()
	}

	steps, err := s.reasoner.Reason(ctx, buildPrompt(s.data, query))
	if err != nil {
		failure := ai.NewReasoningError("backend rejected run", err)
		out.Fail(failure)
		return "", failure
	}

	for {
		select {
		case <-ctx.Done():
			failure := mapContextErr(ctx, ctx.Err())
			s.log.Debug("session cancelled", "error", failure)
			out.Fail(failure)
			return "", failure

		case step, ok := <-steps:
			if !ok {
				failure := ai.NewReasoningError("backend ended without an answer", nil)
				out.Fail(failure)
				return "", failure
			}

			switch {
			case step.Err != nil:
				failure := ai.NewReasoningError("backend step failed", step.Err)
				out.Fail(failure)
				return "", failure

			case step.Done:
				if err := out.Emit(ctx, ai.Answer(step.Answer)); err != nil {
					failure := mapContextErr(ctx, err)
					out.Fail(failure)
					return "", failure
				}
				return step.Answer, nil

			case step.Thought != "":
				if err := out.Emit(ctx, ai.Thought(step.Thought)); err != nil {
					failure := mapContextErr(ctx, err)
					out.Fail(failure)
					return "", failure
				}
			}
		}
	}
}

// mapContextErr translates a budget overrun into the timeout error.
// The budget deadline carries ErrExecutionTimeout as its cause, so a
// caller-supplied deadline that fires first passes through unchanged.
func mapContextErr(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) && errors.Is(context.Cause(ctx), ai.ErrExecutionTimeout) {
		return ai.ErrExecutionTimeout
	}
	return err
}
