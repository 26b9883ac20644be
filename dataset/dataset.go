// Package dataset defines the comparison source capability.
//
// This package exists so the coordinator and session packages can depend
// on the fetch contract without importing a concrete backend. The
// [github.com/tabletalk-ai/tabletalk/dataset/orkg] package implements it
// against the ORKG comparison API.
package dataset

import (
	"context"

	ai "github.com/tabletalk-ai/tabletalk"
)

// Source fetches comparison tables by id.
//
// Implementations return [ai.ErrDatasetUnavailable] (possibly wrapped)
// when the comparison cannot be fetched or comes back empty, and must be
// safe for concurrent use: queries run independently and share one
// source.
type Source interface {
	Fetch(ctx context.Context, comparisonID string) (*ai.Table, error)
}
