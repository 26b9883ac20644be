package session

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	ai "github.com/tabletalk-ai/tabletalk"
	"github.com/tabletalk-ai/tabletalk/sink"
)

// Variant selects which reasoning configuration a session is built with.
// The set is closed: anything else fails with ai.ErrUnsupportedVariant.
type Variant string

const (
	// VariantTabular reasons over the table as rows and columns, with
	// the full grid serialized into context.
	VariantTabular Variant = "TABULAR"

	// VariantStructured reasons over the table as a transposed, flattened
	// nested document with bounded per-field length, under a hard
	// execution budget. Structured-document reasoning is the variant most
	// prone to runaway loops, hence the budget.
	VariantStructured Variant = "STRUCTURED"
)

// DefaultStructuredBudget bounds a STRUCTURED session's wall clock.
const DefaultStructuredBudget = 30 * time.Second

// Valid reports whether v is a recognized variant.
func (v Variant) Valid() bool {
	return v == VariantTabular || v == VariantStructured
}

// ParseVariant parses a wire-level variant tag.
func ParseVariant(s string) (Variant, error) {
	v := Variant(s)
	if !v.Valid() {
		return "", fmt.Errorf("%w: %q", ai.ErrUnsupportedVariant, s)
	}
	return v, nil
}

// Config carries what the variant selector needs to build a session.
type Config struct {
	// Factory constructs the reasoning backend instance.
	Factory ai.ReasonerFactory

	// Model is the backend model identifier; ai.DefaultModel when empty.
	Model string

	// APIKey authenticates against the backend.
	APIKey string

	// StructuredBudget overrides DefaultStructuredBudget when positive.
	StructuredBudget time.Duration

	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// Build constructs a session for the given table, variant, and sink.
// It has no side effects beyond in-memory construction: the factory runs
// once for a supported variant and never for an unsupported one, and no
// backend call is made.
func Build(cfg Config, table *ai.Table, variant Variant, out sink.Sink) (*Session, error) {
	model := cfg.Model
	if model == "" {
		model = ai.DefaultModel
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	var data string
	var budget time.Duration

	switch variant {
	case VariantTabular:
		data = table.Grid()

	case VariantStructured:
		doc := table.Document(ai.FieldBudget(model))
		encoded, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding structured document: %w", err)
		}
		data = string(encoded)
		budget = cfg.StructuredBudget
		if budget <= 0 {
			budget = DefaultStructuredBudget
		}

	default:
		return nil, fmt.Errorf("%w: %q", ai.ErrUnsupportedVariant, variant)
	}

	reasoner, err := cfg.Factory(ai.ReasonerConfig{
		Model:     model,
		APIKey:    cfg.APIKey,
		Streaming: true,
	})
	if err != nil {
		return nil, fmt.Errorf("constructing reasoner: %w", err)
	}

	return &Session{
		reasoner: reasoner,
		out:      out,
		data:     data,
		budget:   budget,
		log:      log,
	}, nil
}
