// Package compare is the query coordinator. It owns the lifecycle of one
// comparison question: fetch the table, build a session for the requested
// variant, launch the reasoning run, and expose its output through one of
// three delivery modes — synchronous (Query), a pull-based event sequence
// (QueryStream), or out-of-band push frames (QueryPush).
package compare

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	ai "github.com/tabletalk-ai/tabletalk"
	"github.com/tabletalk-ai/tabletalk/dataset"
	"github.com/tabletalk-ai/tabletalk/session"
	"github.com/tabletalk-ai/tabletalk/sink"
)

// Config holds the service-wide reasoning configuration.
type Config struct {
	// Factory constructs one reasoning backend instance per query.
	Factory ai.ReasonerFactory

	// Model is the default model; overridable per query with WithModel.
	Model string

	// APIKey authenticates against the reasoning backend.
	APIKey string

	// StructuredBudget bounds STRUCTURED sessions; see session.Config.
	StructuredBudget time.Duration

	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// Service coordinates query execution. Queries are independent and may
// run concurrently; the service holds no per-query state of its own.
type Service struct {
	source    dataset.Source
	transport sink.Transport
	cfg       Config
	log       *slog.Logger
}

// New creates a coordinator over the given comparison source and push
// transport. The transport may be nil if QueryPush is never used.
func New(source dataset.Source, transport sink.Transport, cfg Config) *Service {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		source:    source,
		transport: transport,
		cfg:       cfg,
		log:       log,
	}
}

// Query answers a question synchronously and returns only the final
// answer text. Intermediate thoughts are discarded.
func (s *Service) Query(ctx context.Context, comparisonID, question string, opts ...Option) (string, error) {
	o := applyOptions(opts...)
	sess, log, err := s.prepare(ctx, comparisonID, o, sink.NewNull())
	if err != nil {
		return "", err
	}

	answer, err := sess.RunBlocking(ctx, question)
	if err != nil {
		log.Warn("query failed", "error", err)
		return "", err
	}
	log.Info("query answered")
	return answer, nil
}

// QueryStream answers a question with pull-based streaming. It returns
// the lazy event sequence immediately; the caller must drain it to
// receive the thoughts and the final answer, then check Pull.Err for a
// deferred failure. The background task is always joined, even if the
// caller stops draining early.
func (s *Service) QueryStream(ctx context.Context, comparisonID, question string, opts ...Option) (*sink.Pull, error) {
	o := applyOptions(opts...)
	pull := sink.NewPull()
	sess, log, err := s.prepare(ctx, comparisonID, o, pull)
	if err != nil {
		return nil, err
	}

	h := sess.RunStreaming(ctx, question)

	// Join the task so its outcome is always observed; the consumer sees
	// any failure through Pull.Err after the sequence ends.
	go func() {
		if _, err := h.Wait(context.Background()); err != nil {
			log.Warn("streaming query failed", "error", err)
			return
		}
		log.Info("streaming query answered")
	}()

	return pull, nil
}

// QueryPush answers a question with push-based streaming: thoughts are
// delivered out-of-band as frames on the given transport channel while
// the call blocks, and the final answer is returned here. A dead channel
// only suppresses thought delivery; the answer is still returned.
func (s *Service) QueryPush(ctx context.Context, comparisonID, question, channelID string, opts ...Option) (string, error) {
	if s.transport == nil {
		return "", fmt.Errorf("%w: no push transport configured", ai.ErrChannelNotFound)
	}

	o := applyOptions(opts...)
	push := sink.NewPush(s.transport, channelID, s.log)
	sess, log, err := s.prepare(ctx, comparisonID, o, push)
	if err != nil {
		return "", err
	}

	h := sess.RunStreaming(ctx, question)
	answer, err := h.Wait(ctx)
	if err != nil {
		log.Warn("push query failed", "error", err)
		return "", err
	}
	if push.Abandoned() {
		log.Info("push query answered, thought delivery was abandoned", "channel_id", channelID)
	} else {
		log.Info("push query answered", "channel_id", channelID)
	}
	return answer, nil
}

// prepare runs the synchronous front half of every query: variant
// validation, table fetch, and session construction. Validation failures
// surface before any external call; fetch failures surface before any
// backend work starts.
func (s *Service) prepare(ctx context.Context, comparisonID string, o Options, out sink.Sink) (*session.Session, *slog.Logger, error) {
	log := s.log.With(
		"query_id", uuid.NewString(),
		"comparison_id", comparisonID,
		"variant", string(o.Variant),
	)

	if !o.Variant.Valid() {
		return nil, nil, fmt.Errorf("%w: %q", ai.ErrUnsupportedVariant, o.Variant)
	}

	table, err := s.source.Fetch(ctx, comparisonID)
	if err != nil {
		log.Warn("comparison fetch failed", "error", err)
		return nil, nil, err
	}

	model := o.Model
	if model == "" {
		model = s.cfg.Model
	}

	sess, err := session.Build(session.Config{
		Factory:          s.cfg.Factory,
		Model:            model,
		APIKey:           s.cfg.APIKey,
		StructuredBudget: s.cfg.StructuredBudget,
		Logger:           log,
	}, table, o.Variant, out)
	if err != nil {
		return nil, nil, err
	}

	log.Debug("session built", "rows", table.Shape().Rows, "cols", table.Shape().Cols)
	return sess, log, nil
}
