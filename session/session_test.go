package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ai "github.com/tabletalk-ai/tabletalk"
	"github.com/tabletalk-ai/tabletalk/sink"
)

// mockReasoner implements ai.Reasoner for testing.
type mockReasoner struct {
	thoughts []string
	answer   string
	err      error
	stall    bool // block until ctx expires without producing a step
	noAnswer bool // close the stream without a done step
	calls    int
}

func (m *mockReasoner) Reason(ctx context.Context, prompt string) (<-chan ai.Step, error) {
	m.calls++
	ch := make(chan ai.Step)

	go func() {
		defer close(ch)
		if m.stall {
			<-ctx.Done()
			return
		}
		for _, th := range m.thoughts {
			select {
			case ch <- ai.Step{Thought: th}:
			case <-ctx.Done():
				return
			}
		}
		if m.err != nil {
			ch <- ai.Step{Err: m.err}
			return
		}
		if m.noAnswer {
			return
		}
		ch <- ai.Step{Done: true, Answer: m.answer}
	}()

	return ch, nil
}

func (m *mockReasoner) factory() ai.ReasonerFactory {
	return func(cfg ai.ReasonerConfig) (ai.Reasoner, error) {
		return m, nil
	}
}

func testTable() *ai.Table {
	return &ai.Table{
		Properties:    []string{"method", "year"},
		Contributions: []string{"Paper A", "Paper B", "Paper C"},
		Cells: [][]ai.Cell{
			{{"survey"}, {"benchmark"}, {}},
			{{"2019"}, {"2020", "2021"}, {"2021"}},
		},
	}
}

func drain(t *testing.T, p *sink.Pull) []ai.Event {
	t.Helper()
	var events []ai.Event
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-p.Events():
			if !ok {
				return events
			}
			events = append(events, ev)
		case <-timeout:
			t.Fatal("sequence did not terminate")
		}
	}
}

// --- Builder tests ---

func TestBuild_SupportedVariants(t *testing.T) {
	for _, variant := range []Variant{VariantTabular, VariantStructured} {
		t.Run(string(variant), func(t *testing.T) {
			m := &mockReasoner{}
			s, err := Build(Config{Factory: m.factory()}, testTable(), variant, sink.NewNull())

			require.NoError(t, err)
			require.NotNil(t, s)
			assert.Equal(t, 0, m.calls, "build must not contact the backend")
		})
	}
}

func TestBuild_UnsupportedVariant(t *testing.T) {
	factoryCalls := 0
	factory := func(cfg ai.ReasonerConfig) (ai.Reasoner, error) {
		factoryCalls++
		return &mockReasoner{}, nil
	}

	_, err := Build(Config{Factory: factory}, testTable(), Variant("DATAFRAME"), sink.NewNull())

	assert.ErrorIs(t, err, ai.ErrUnsupportedVariant)
	assert.Equal(t, 0, factoryCalls)
}

func TestBuild_StructuredSetsBudget(t *testing.T) {
	m := &mockReasoner{}
	s, err := Build(Config{Factory: m.factory()}, testTable(), VariantStructured, sink.NewNull())

	require.NoError(t, err)
	assert.Equal(t, DefaultStructuredBudget, s.budget)
}

func TestBuild_StructuredEmbedsDocument(t *testing.T) {
	m := &mockReasoner{}
	s, err := Build(Config{Factory: m.factory()}, testTable(), VariantStructured, sink.NewNull())

	require.NoError(t, err)
	assert.Contains(t, s.data, "Paper B")
	assert.Contains(t, s.data, "benchmark")
}

func TestParseVariant(t *testing.T) {
	v, err := ParseVariant("TABULAR")
	require.NoError(t, err)
	assert.Equal(t, VariantTabular, v)

	v, err = ParseVariant("STRUCTURED")
	require.NoError(t, err)
	assert.Equal(t, VariantStructured, v)

	_, err = ParseVariant("tabular")
	assert.ErrorIs(t, err, ai.ErrUnsupportedVariant)
}

// --- Session tests ---

func TestSession_RunBlockingDiscardsThoughts(t *testing.T) {
	m := &mockReasoner{thoughts: []string{"Thought: checking rows"}, answer: "three papers"}
	pull := sink.NewPull()
	s, err := Build(Config{Factory: m.factory()}, testTable(), VariantTabular, pull)
	require.NoError(t, err)

	answer, err := s.RunBlocking(context.Background(), "How many papers?")

	require.NoError(t, err)
	assert.Equal(t, "three papers", answer)
	// Blocking mode never exposes thoughts, even with a pull sink bound.
	assert.Empty(t, pull.Events())
}

func TestSession_RunStreamingOrder(t *testing.T) {
	m := &mockReasoner{
		thoughts: []string{"Thought: look at year", "Observation: 2019-2021"},
		answer:   "2019 to 2021",
	}
	pull := sink.NewPull()
	s, err := Build(Config{Factory: m.factory()}, testTable(), VariantTabular, pull)
	require.NoError(t, err)

	h := s.RunStreaming(context.Background(), "What years are covered?")
	events := drain(t, pull)

	require.Len(t, events, 3)
	assert.Equal(t, ai.KindThought, events[0].Kind)
	assert.Equal(t, "Thought: look at year", events[0].Text)
	assert.Equal(t, ai.KindThought, events[1].Kind)
	assert.Equal(t, ai.KindAnswer, events[2].Kind)
	assert.Equal(t, "2019 to 2021", events[2].Text)
	assert.NoError(t, pull.Err())

	answer, err := h.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2019 to 2021", answer)
}

func TestSession_FailureAfterThoughtPrefix(t *testing.T) {
	cause := errors.New("model overloaded")
	m := &mockReasoner{thoughts: []string{"Thought: starting"}, err: cause}
	pull := sink.NewPull()
	s, err := Build(Config{Factory: m.factory()}, testTable(), VariantTabular, pull)
	require.NoError(t, err)

	h := s.RunStreaming(context.Background(), "Compare methods")
	events := drain(t, pull)

	// A prefix of thoughts, then termination carrying the failure.
	require.Len(t, events, 1)
	assert.Equal(t, ai.KindThought, events[0].Kind)
	assert.ErrorIs(t, pull.Err(), cause)
	assert.True(t, ai.IsReasoningFailure(pull.Err()))

	_, err = h.Wait(context.Background())
	assert.ErrorIs(t, err, cause)
}

func TestSession_BackendEndsWithoutAnswer(t *testing.T) {
	m := &mockReasoner{noAnswer: true}
	s, err := Build(Config{Factory: m.factory()}, testTable(), VariantTabular, sink.NewNull())
	require.NoError(t, err)

	_, err = s.RunBlocking(context.Background(), "query")
	assert.True(t, ai.IsReasoningFailure(err))
}

func TestSession_StructuredBudgetTimeout(t *testing.T) {
	m := &mockReasoner{stall: true}
	pull := sink.NewPull()
	s, err := Build(Config{
		Factory:          m.factory(),
		StructuredBudget: 30 * time.Millisecond,
	}, testTable(), VariantStructured, pull)
	require.NoError(t, err)

	h := s.RunStreaming(context.Background(), "ambiguous query")

	_, err = h.Wait(context.Background())
	assert.ErrorIs(t, err, ai.ErrExecutionTimeout)

	events := drain(t, pull)
	assert.Empty(t, events)
	assert.ErrorIs(t, pull.Err(), ai.ErrExecutionTimeout)
}

func TestSession_CallerDeadlineIsNotBudgetTimeout(t *testing.T) {
	m := &mockReasoner{stall: true}
	s, err := Build(Config{
		Factory:          m.factory(),
		StructuredBudget: time.Minute,
	}, testTable(), VariantStructured, sink.NewNull())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err = s.RunBlocking(ctx, "query")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, ai.ErrExecutionTimeout)
}

func TestSession_TabularHasNoBudget(t *testing.T) {
	m := &mockReasoner{answer: "ok"}
	s, err := Build(Config{
		Factory:          m.factory(),
		StructuredBudget: time.Nanosecond,
	}, testTable(), VariantTabular, sink.NewNull())
	require.NoError(t, err)

	answer, err := s.RunBlocking(context.Background(), "query")
	require.NoError(t, err)
	assert.Equal(t, "ok", answer)
}
