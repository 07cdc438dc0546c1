package lang

import "github.com/ardnew/clac/log"

// Option configures parsing or evaluation behavior.
type Option func(*options)

type options struct {
	logger   log.Logger
	registry *Registry
	noCache  bool
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRegistry sets the builtin registry consulted by an [Interpreter].
// The default is [DefaultRegistry].
func WithRegistry(registry *Registry) Option {
	return func(o *options) {
		o.registry = registry
	}
}

// WithCache enables or disables the process-wide token cache.
// Caching is enabled by default.
func WithCache(enable bool) Option {
	return func(o *options) {
		o.noCache = !enable
	}
}

// applyDefaults fills in option values left unset by applyOptions.
func applyDefaults(o *options) {
	if o.registry == nil {
		o.registry = DefaultRegistry()
	}
}

// applyOptions applies functional options.
func applyOptions(o *options, opts ...Option) {
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
}
