// Package sink provides the delivery targets for reasoning session
// events: a pull-based consumable sequence, a push target bound to a
// transport channel, and a discard sink for synchronous queries.
//
// A sink is terminated by exactly one answer event or one failure;
// implementations ignore anything emitted after that.
package sink

import (
	"context"

	ai "github.com/tabletalk-ai/tabletalk"
)

// Sink receives the events of one reasoning session, in production
// order. Emit of the answer event, or Fail, terminates the sink.
type Sink interface {
	// Emit delivers one event. It may block until the consumer is ready
	// (pull) but never blocks indefinitely past ctx.
	Emit(ctx context.Context, ev ai.Event) error

	// Fail terminates the sink with the session's failure. No events are
	// delivered afterwards.
	Fail(err error)
}

// Transport delivers framed payloads to an identified push channel.
// Implemented by [github.com/tabletalk-ai/tabletalk/ws.Manager].
//
// Send returns ai.ErrChannelNotFound for unknown ids and
// ai.ErrChannelClosed when the peer is gone or its buffer is full; it
// never blocks the caller on a slow peer.
type Transport interface {
	Send(channelID, payload string) error
}
