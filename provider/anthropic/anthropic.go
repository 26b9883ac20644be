// Package anthropic adapts the Anthropic SDK to the tabletalk Reasoner
// capability. Native thinking blocks, when the model produces them, are
// surfaced as thought steps; the text blocks carry the answer.
package anthropic

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	ai "github.com/tabletalk-ai/tabletalk"
	"github.com/tabletalk-ai/tabletalk/internal/react"
)

const DefaultModel = "claude-sonnet-4-5"

const maxTokens = 4096

// Client wraps the Anthropic SDK to implement ai.Reasoner.
type Client struct {
	client    *anthropic.Client
	model     string
	streaming bool
}

// New creates an Anthropic-backed reasoner from the session configuration.
func New(cfg ai.ReasonerConfig) *Client {
	client := anthropic.NewClient(option.WithAPIKey(cfg.APIKey))
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		client:    &client,
		model:     model,
		streaming: cfg.Streaming,
	}
}

// Factory adapts New to ai.ReasonerFactory.
func Factory(cfg ai.ReasonerConfig) (ai.Reasoner, error) {
	return New(cfg), nil
}

// Reason runs one message over the prompt, emitting thought steps for
// thinking content and intermediate reasoning lines, and the final text
// as the done step.
func (c *Client) Reason(ctx context.Context, prompt string) (<-chan ai.Step, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	ch := make(chan ai.Step)

	if !c.streaming {
		go func() {
			defer close(ch)
			resp, err := c.client.Messages.New(ctx, params)
			if err != nil {
				send(ctx, ch, ai.Step{Err: err})
				return
			}

			content := ""
			for _, block := range resp.Content {
				switch block.Type {
				case "thinking":
					send(ctx, ch, ai.Step{Thought: block.Thinking})
				case "text":
					content += block.Text
				}
			}
			emitParsed(ctx, ch, content)
		}()
		return ch, nil
	}

	go func() {
		defer close(ch)

		stream := c.client.Messages.NewStreaming(ctx, params)
		scanner := react.NewScanner(func(th string) {
			send(ctx, ch, ai.Step{Thought: th})
		})
		thinking := ""

		for stream.Next() {
			event := stream.Current()

			if event.Type == "content_block_delta" {
				delta := event.AsContentBlockDelta()
				if textDelta := delta.Delta.AsTextDelta(); textDelta.Type == "text_delta" {
					// The answer is starting; flush accumulated thinking
					// as one thought first so ordering holds.
					if thinking != "" {
						send(ctx, ch, ai.Step{Thought: thinking})
						thinking = ""
					}
					scanner.Write(textDelta.Text)
				}
				if thinkingDelta := delta.Delta.AsThinkingDelta(); thinkingDelta.Type == "thinking_delta" {
					thinking += thinkingDelta.Thinking
				}
			}
		}

		if err := stream.Err(); err != nil {
			send(ctx, ch, ai.Step{Err: err})
			return
		}

		if thinking != "" {
			send(ctx, ch, ai.Step{Thought: thinking})
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
