package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ai "github.com/tabletalk-ai/tabletalk"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, streaming bool) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	t.Setenv("GOOGLE_GEMINI_BASE_URL", srv.URL)

	c, err := New(context.Background(), ai.ReasonerConfig{
		APIKey:    "test-key",
		Streaming: streaming,
	})
	require.NoError(t, err)
	return c
}

func collect(t *testing.T, steps <-chan ai.Step) []ai.Step {
	t.Helper()
	var out []ai.Step
	timeout := time.After(5 * time.Second)
	for {
		select {
		case step, ok := <-steps:
			if !ok {
				return out
			}
			out = append(out, step)
		case <-timeout:
			t.Fatal("step stream did not terminate")
		}
	}
}

func TestClient_ReasonStreamingBackendFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend unavailable", http.StatusInternalServerError)
	}, true)

	steps, err := c.Reason(context.Background(), "How many papers use method X?")
	require.NoError(t, err)

	collected := collect(t, steps)
	require.NotEmpty(t, collected)

	last := collected[len(collected)-1]
	assert.Error(t, last.Err)
	assert.False(t, last.Done)
}

func TestClient_ReasonBackendFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend unavailable", http.StatusInternalServerError)
	}, false)

	steps, err := c.Reason(context.Background(), "query")
	require.NoError(t, err)

	collected := collect(t, steps)
	require.Len(t, collected, 1)
	assert.Error(t, collected[0].Err)
}
