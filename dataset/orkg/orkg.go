// Package orkg implements dataset.Source against the ORKG comparison
// (simcomp) HTTP API.
package orkg

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	ai "github.com/tabletalk-ai/tabletalk"
)

// Client fetches comparison tables from an ORKG host.
type Client struct {
	host       string
	httpClient *http.Client
	retry      ai.RetryConfig
	log        *slog.Logger
}

// New creates a client for the given ORKG host, e.g. "https://orkg.org".
func New(host string, opts ...Option) *Client {
	c := &Client{
		host:       host,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		retry:      ai.DefaultRetryConfig(),
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Option configures the ORKG client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetry sets the backoff configuration for transient failures.
func WithRetry(cfg ai.RetryConfig) Option {
	return func(c *Client) { c.retry = cfg }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// comparisonPayload is the wire shape of a simcomp comparison response.
type comparisonPayload struct {
	Payload struct {
		Comparison struct {
			Contributions []labeled `json:"contributions"`
			Properties    []labeled `json:"properties"`
			// Data maps property id to one cell per contribution, in
			// contribution order; each cell is a list of values.
			Data map[string][]cellPayload `json:"data"`
		} `json:"comparison"`
	} `json:"payload"`
}

type labeled struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type cellPayload []struct {
	Label string `json:"label"`
}

// Fetch retrieves the comparison table for the given id. Transient
// failures (network errors, 429, 5xx) are retried with capped backoff;
// anything that still fails, and empty comparisons, map to
// ai.ErrDatasetUnavailable.
func (c *Client) Fetch(ctx context.Context, comparisonID string) (*ai.Table, error) {
	url := fmt.Sprintf("%s/simcomp/comparison/%s", c.host, comparisonID)

	var payload comparisonPayload
	if err := c.get(ctx, url, &payload); err != nil {
		return nil, fmt.Errorf("%w: comparison %s: %v", ai.ErrDatasetUnavailable, comparisonID, err)
	}

	table := buildTable(&payload)
	if table.Empty() {
		return nil, fmt.Errorf("%w: comparison %s is empty", ai.ErrDatasetUnavailable, comparisonID)
	}

	c.log.Debug("fetched comparison",
		"comparison_id", comparisonID,
		"rows", table.Shape().Rows,
		"cols", table.Shape().Cols,
	)
	return table, nil
}

func (c *Client) get(ctx context.Context, url string, out any) error {
	var lastErr error

	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		if attempt > 1 {
			delay := c.retry.Delay(attempt - 1)
			c.log.Debug("retrying comparison fetch", "attempt", attempt, "delay", delay)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err := c.doGet(ctx, url, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !isTransient(err) {
			return err
		}
	}

	return lastErr
}

func (c *Client) doGet(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &transientError{err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("unexpected status %d", resp.StatusCode)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return &transientError{err}
		}
		return err
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

func isTransient(err error) bool {
	_, ok := err.(*transientError)
	return ok
}

func buildTable(p *comparisonPayload) *ai.Table {
	cmp := &p.Payload.Comparison

	t := &ai.Table{
		Properties:    make([]string, len(cmp.Properties)),
		Contributions: make([]string, len(cmp.Contributions)),
		Cells:         make([][]ai.Cell, len(cmp.Properties)),
	}
	for j, c := range cmp.Contributions {
		t.Contributions[j] = c.Label
	}
	for i, prop := range cmp.Properties {
		t.Properties[i] = prop.Label
		t.Cells[i] = make([]ai.Cell, len(cmp.Contributions))
		row := cmp.Data[prop.ID]
		for j := range cmp.Contributions {
			if j >= len(row) {
				t.Cells[i][j] = ai.Cell{}
				continue
			}
			cell := make(ai.Cell, 0, len(row[j]))
			for _, v := range row[j] {
				if v.Label != "" {
					cell = append(cell, v.Label)
				}
			}
			t.Cells[i][j] = cell
		}
	}
	return t
}
