package chaiscript

import (
	"github.com/rs/zerolog"

	"github.com/clanmills/ChaiScript/cast"
)

// Option configures an Engine.
type Option func(*options)

type options struct {
	logger     zerolog.Logger
	registry   *cast.Registry
	castHooks  []func(*cast.Builder)
	noFunctors bool
	dedupe     bool
}

func collectOptions(opts ...Option) *options {
	o := &options{logger: zerolog.Nop(), dedupe: true}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// buildRegistry freezes the cast registry. Hooks run in the order they were
// supplied, after the function conversion strategy is installed.
func (o *options) buildRegistry(install func(*cast.Builder) *cast.Builder) *cast.Registry {
	if o.registry != nil {
		if len(o.castHooks) > 0 {
			o.logger.Warn().Int("hooks", len(o.castHooks)).
				Msg("cast builder hooks ignored because a registry was supplied")
		}
		return o.registry
	}
	b := cast.NewBuilder()
	if !o.noFunctors {
		install(b)
	}
	for _, hook := range o.castHooks {
		hook(b)
	}
	return b.Build()
}

// WithLogger sets the logger used for registration and dispatch events.
// By default nothing is logged.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRegistry supplies a fully built cast registry. Cast builder hooks
// and WithoutFunctors have no effect when this is used.
func WithRegistry(registry *cast.Registry) Option {
	return func(o *options) {
		o.registry = registry
	}
}

// WithCastBuilder registers a hook that adds cast strategies before the
// engine's registry is built. This option is additive.
func WithCastBuilder(hook func(*cast.Builder)) Option {
	return func(o *options) {
		o.castHooks = append(o.castHooks, hook)
	}
}

// WithoutFunctors opts out of converting boxed functions into Go funcs.
func WithoutFunctors() Option {
	return func(o *options) {
		o.noFunctors = true
	}
}

// WithDedupe controls whether Add skips functions structurally equal to one
// already registered under the same name. Enabled by default.
func WithDedupe(enabled bool) Option {
	return func(o *options) {
		o.dedupe = enabled
	}
}
