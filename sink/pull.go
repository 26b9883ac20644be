package sink

import (
	"context"
	"sync"

	ai "github.com/tabletalk-ai/tabletalk"
)

// pullBuffer is the event channel capacity of a Pull sink. A producer
// that outruns its consumer by more than this blocks until the consumer
// catches up (or its context expires).
const pullBuffer = 100

// Pull is a consumable, finite, non-restartable event sequence. The
// producer emits into it; the consumer drains Events until the channel
// closes, then checks Err for a deferred failure.
type Pull struct {
	ch chan ai.Event

	mu     sync.Mutex
	err    error
	closed bool
}

// NewPull creates a pull sink.
func NewPull() *Pull {
	return &Pull{ch: make(chan ai.Event, pullBuffer)}
}

// Events returns the event sequence. It yields zero or more thoughts in
// production order, then at most one answer, and closes. A sequence that
// closes without an answer terminated on a failure, available via Err.
func (p *Pull) Events() <-chan ai.Event {
	return p.ch
}

// Err returns the session failure, if any. Valid after Events closes.
func (p *Pull) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Emit delivers one event to the consumer, blocking until the consumer
// has room or ctx expires. The answer event closes the sequence.
func (p *Pull) Emit(ctx context.Context, ev ai.Event) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	select {
	case p.ch <- ev:
	case <-ctx.Done():
		return ctx.Err()
	}

	if ev.Kind == ai.KindAnswer {
		p.terminate(nil)
	}
	return nil
}

// Fail terminates the sequence carrying the session failure.
func (p *Pull) Fail(err error) {
	p.terminate(err)
}

func (p *Pull) terminate(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	p.err = err
	close(p.ch)
}
