package sink

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"

	ai "github.com/tabletalk-ai/tabletalk"
)

// Push delivers each event immediately to a transport channel as a
// {"kind", "text"} JSON frame. Transport failures never propagate to the
// producer: a dead channel marks the sink abandoned, remaining events
// are dropped (logged, not raised) and the session runs to completion so
// the final answer is still returned through the primary call path.
type Push struct {
	transport Transport
	channelID string
	log       *slog.Logger
	abandoned atomic.Bool
}

// NewPush creates a push sink bound to the given transport channel.
func NewPush(transport Transport, channelID string, log *slog.Logger) *Push {
	if log == nil {
		log = slog.Default()
	}
	return &Push{transport: transport, channelID: channelID, log: log}
}

// Abandoned reports whether thought delivery has been given up on.
func (p *Push) Abandoned() bool {
	return p.abandoned.Load()
}

// Emit transmits one event frame. Always returns nil; see type docs.
func (p *Push) Emit(_ context.Context, ev ai.Event) error {
	if p.abandoned.Load() {
		return nil
	}

	frame, err := json.Marshal(ev)
	if err != nil {
		p.log.Error("failed to encode event frame", "channel_id", p.channelID, "error", err)
		return nil
	}

	if err := p.transport.Send(p.channelID, string(frame)); err != nil {
		p.abandoned.Store(true)
		p.log.Warn("push delivery abandoned",
			"channel_id", p.channelID,
			"kind", ev.Kind,
			"error", err,
		)
	}
	return nil
}

// Fail logs the session failure. The failure reaches the caller through
// the blocking await, not the channel.
func (p *Push) Fail(err error) {
	p.log.Warn("session failed during push delivery", "channel_id", p.channelID, "error", err)
}
