// Package openai adapts the OpenAI SDK to the tabletalk Reasoner
// capability. It is the default backend: the model name decides chat vs
// completion class and, for the STRUCTURED variant, the field budget.
package openai

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	ai "github.com/tabletalk-ai/tabletalk"
	"github.com/tabletalk-ai/tabletalk/internal/react"
)

const DefaultModel = "gpt-4o"

// Client wraps the OpenAI SDK to implement ai.Reasoner.
type Client struct {
	client    *openai.Client
	model     string
	streaming bool
}

// New creates an OpenAI-backed reasoner from the session configuration.
func New(cfg ai.ReasonerConfig) *Client {
	client := openai.NewClient(option.WithAPIKey(cfg.APIKey))
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

// Reason runs one completion over the prompt, emitting intermediate
// reasoning lines as thought steps and the final answer as the done step.
func (c *Client) Reason(ctx context.Context, prompt string) (<-chan ai.Step, error) {
	params := openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
	}

	ch := make(chan ai.Step)

	if !c.streaming {
		go func() {
			defer close(ch)
			resp, err := c.client.Chat.Completions.New(ctx, params)
			if err != nil {
				send(ctx, ch, ai.Step{Err: err})
				return
			}
			if len(resp.Choices) == 0 {
				send(ctx, ch, ai.Step{Err: ai.NewReasoningError("backend returned no choices", nil)})
				return
			}
			emitParsed(ctx, ch, resp.Choices[0].Message.Content)
		}()
		return ch, nil
	}

	go func() {
		defer close(ch)

		stream := c.client.Chat.Completions.NewStreaming(ctx, params)
		scanner := react.NewScanner(func(th string) {
			send(ctx, ch, ai.Step{Thought: th})
		})

		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
				scanner.Write(chunk.Choices[0].Delta.Content)
			}
		}

		if err := stream.Err(); err != nil {
			send(ctx, ch, ai.Step{Err: err})
			return
		}

		send(ctx, ch, ai.Step{Done: true, Answer: scanner.Finish()})
	}()

	return ch, nil
}

// send delivers a step without wedging the producer if the consumer is gone.
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
