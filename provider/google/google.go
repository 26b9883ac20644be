// Package google adapts the Google GenAI SDK to the tabletalk Reasoner
// capability.
package google

import (
	"context"

	"google.golang.org/genai"

	ai "github.com/tabletalk-ai/tabletalk"
	"github.com/tabletalk-ai/tabletalk/internal/react"
)

const DefaultModel = "gemini-2.0-flash"

// Client wraps the Google GenAI SDK to implement ai.Reasoner.
type Client struct {
	client    *genai.Client
	model     string
	streaming bool
}

// New creates a Gemini-backed reasoner from the session configuration.
// Unlike the other adapters, SDK construction can fail, so use Factory
// directly when wiring a service.
func New(ctx context.Context, cfg ai.ReasonerConfig) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		client:    client,
		model:     model,
		streaming: cfg.Streaming,
	}, nil
}

// Factory adapts New to ai.ReasonerFactory.
func Factory(cfg ai.ReasonerConfig) (ai.Reasoner, error) {
	return New(context.Background(), cfg)
}

// Reason runs one generation over the prompt, emitting intermediate
// reasoning lines as thought steps and the final text as the done step.
func (c *Client) Reason(ctx context.Context, prompt string) (<-chan ai.Step, error) {
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}
	config := &genai.GenerateContentConfig{}

	ch := make(chan ai.Step)

	if !c.streaming {
		go func() {
			defer close(ch)
			resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
			if err != nil {
				send(ctx, ch, ai.Step{Err: err})
				return
			}

			content := ""
			if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
				for _, part := range resp.Candidates[0].Content.Parts {
					content += part.Text
				}
			}
			emitParsed(ctx, ch, content)
		}()
		return ch, nil
	}

	go func() {
		defer close(ch)

		scanner := react.NewScanner(func(th string) {
			send(ctx, ch, ai.Step{Thought: th})
		})

		for resp, err := range c.client.Models.GenerateContentStream(ctx, c.model, contents, config) {
			if err != nil {
				send(ctx, ch, ai.Step{Err: err})
				return
			}
			if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
				for _, part := range resp.Candidates[0].Content.Parts {
					if part.Text != "" {
						scanner.Write(part.Text)
					}
				}
			}
		}

		send(ctx, ch, ai.Step{Done: true, Answer: scanner.Finish()})
	}()

	return ch, nil
}

func send(ctx context.Context, ch chan<- ai.Step, step ai.Step) {
	select {
	case ch <- step:
	case <-ctx.Done():
	}
}

func emitParsed(ctx context.Context, ch chan<- ai.Step, content string) {
	thoughts, answer := react.Parse(content)
	for _, th := range thoughts {
		send(ctx, ch, ai.Step{Thought: th})
	}
	send(ctx, ch, ai.Step{Done: true, Answer: answer})
}

var _ ai.Reasoner = (*Client)(nil)
