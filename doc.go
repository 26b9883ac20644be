// Package tabletalk provides question answering over tabular research
// comparisons, with the reasoning backend's intermediate thoughts streamed
// to the client while the answer is being produced.
//
// A comparison is a 2-D grid: rows are properties, columns are the papers
// (contributions) being compared. The library fetches a comparison from a
// dataset source, wraps the caller's question in a fixed instructional
// prompt, and runs a reasoning backend over it in one of two variants:
//
//   - TABULAR: the grid is serialized row-by-row into the prompt.
//   - STRUCTURED: the grid is transposed and flattened into a nested
//     document with bounded per-field length, under a hard execution budget.
//
// The root package holds the shared types: [Table], [Event], [Step], the
// [Reasoner] backend capability, and the error taxonomy. Orchestration
// lives in [github.com/tabletalk-ai/tabletalk/compare], sessions and
// variant selection in [github.com/tabletalk-ai/tabletalk/session], event
// delivery in [github.com/tabletalk-ai/tabletalk/sink], and backend
// adapters under provider/.
//
// # Basic Usage
//
// Answer a question synchronously:
//
//	source := orkg.New("https://orkg.org")
//	svc := compare.New(source, nil, compare.Config{
//	    Factory: openai.Factory,
//	    APIKey:  os.Getenv("OPENAI_API_KEY"),
//	})
//
//	answer, err := svc.Query(ctx, "R1234", "What years are covered?")
//
// Stream the reasoning as it happens:
//
//	stream, err := svc.QueryStream(ctx, "R1234", "What years are covered?")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for ev := range stream.Events() {
//	    fmt.Printf("[%s] %s\n", ev.Kind, ev.Text)
//	}
//	if err := stream.Err(); err != nil {
//	    log.Fatal(err)
//	}
package tabletalk
