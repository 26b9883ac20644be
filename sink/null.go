package sink

import (
	"context"

	ai "github.com/tabletalk-ai/tabletalk"
)

// Null discards everything. Synchronous queries bind it: the caller only
// wants the final answer, which travels back through the return path.
type Null struct{}

// NewNull creates a discard sink.
func NewNull() Null { return Null{} }

// Emit discards the event.
func (Null) Emit(context.Context, ai.Event) error { return nil }

// Fail discards the failure; it reaches the caller through the return path.
func (Null) Fail(error) {}
