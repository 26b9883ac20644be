package compare

import "github.com/tabletalk-ai/tabletalk/session"

// Options contains per-query configuration.
type Options struct {
	// Variant selects the reasoning configuration. Default is TABULAR.
	Variant session.Variant

	// Model overrides the service-wide model for this query.
	Model string
}

// Option is a functional option for configuring a query.
type Option func(*Options)

// applyOptions builds an Options with defaults applied.
func applyOptions(opts ...Option) Options {
	o := Options{Variant: session.VariantTabular}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithVariant selects the reasoning variant for this query.
func WithVariant(v session.Variant) Option {
	return func(o *Options) {
		o.Variant = v
	}
}

// WithModel overrides the backend model for this query.
func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}
