package flow

import (
	"go.opentelemetry.io/otel/trace"

	"mercator-hq/flowc/pkg/flow/compiler"
	"mercator-hq/flowc/pkg/telemetry/logging"
)

// Option configures a Compiler.
type Option func(*Compiler)

// WithVersion sets the version written to emitted graphs.
func WithVersion(version string) Option {
	return func(c *Compiler) {
		c.version = version
	}
}

// WithModulesDir sets the directory name searched for bare imports.
func WithModulesDir(dir string) Option {
	return func(c *Compiler) {
		if dir != "" {
			c.modulesDir = dir
		}
	}
}

// WithMaxFileSize limits the size of every parsed file, imports included.
func WithMaxFileSize(size int64) Option {
	return func(c *Compiler) {
		if size > 0 {
			c.maxFileSize = size
		}
	}
}

// WithRegistry replaces the agent registry.
func WithRegistry(r compiler.Registry) Option {
	return func(c *Compiler) {
		if r != nil {
			c.registry = r
		}
	}
}

// WithAgents adds names to the default agent registry.
func WithAgents(names ...string) Option {
	return func(c *Compiler) {
		agents := compiler.DefaultAgents()
		agents.Add(names...)
		c.registry = agents
	}
}

// WithValidation toggles structural validation of emitted graphs.
func WithValidation(enabled bool) Option {
	return func(c *Compiler) {
		c.validate = enabled
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(c *Compiler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithObserver sets the hooks that receive compile measurements.
func WithObserver(o Observer) Option {
	return func(c *Compiler) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithTracer sets the tracer used for compile spans.
func WithTracer(t trace.Tracer) Option {
	return func(c *Compiler) {
		if t != nil {
			c.tracer = t
		}
	}
}
