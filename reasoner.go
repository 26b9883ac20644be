package tabletalk

import "context"

// Step is one unit of reasoning backend output: an intermediate thought,
// or the final answer when Done is set, or an error. A backend produces
// zero or more thought steps strictly followed by exactly one done step,
// unless it fails first.
type Step struct {
	// Thought is an intermediate reasoning step description.
	Thought string

	// Answer is the final answer text. Only set when Done is true.
	Answer string

	// Done marks the terminal step of the run.
	Done bool

	// Err reports a backend failure. Terminal when set.
	Err error
}

// Reasoner is the capability contract for the external reasoning backend:
// given a fully rendered prompt, produce a sequence of steps ending in a
// final answer. The channel is closed when the run is complete or has
// failed; callers must check Step.Err.
type Reasoner interface {
	Reason(ctx context.Context, prompt string) (<-chan Step, error)
}

// ReasonerConfig carries the per-session construction parameters for a
// reasoning backend instance.
type ReasonerConfig struct {
	// Model is the backend model identifier.
	Model string

	// APIKey authenticates against the backend.
	APIKey string

	// Streaming requests incremental step delivery. When false the
	// backend may compute the full run before any step is observable.
	Streaming bool
}

// ReasonerFactory constructs one reasoning backend instance per session.
// The variant selector calls it exactly once per successful build and
// never for an unsupported variant.
type ReasonerFactory func(cfg ReasonerConfig) (Reasoner, error)
