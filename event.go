package tabletalk

import "time"

// Kind identifies the kind of event emitted during a reasoning session.
type Kind string

const (
	// KindThought is an intermediate, non-final reasoning step.
	KindThought Kind = "thought"

	// KindAnswer is the terminal result of a session.
	KindAnswer Kind = "answer"
)

// Event is one observable occurrence during a reasoning session: an
// intermediate thought or the final answer. Within one session, zero or
// more thoughts are followed by exactly one answer, or by a failure
// before any answer is produced.
type Event struct {
	// Kind identifies the event as a thought or the answer.
	Kind Kind `json:"kind"`

	// Text is the thought description or the final answer text.
	Text string `json:"text"`

	// Timestamp is when the event was produced.
	Timestamp time.Time `json:"-"`
}

// Thought creates an intermediate reasoning event.
func Thought(text string) Event {
	return Event{Kind: KindThought, Text: text, Timestamp: time.Now()}
}

// Answer creates the terminal answer event.
func Answer(text string) Event {
	return Event{Kind: KindAnswer, Text: text, Timestamp: time.Now()}
}
