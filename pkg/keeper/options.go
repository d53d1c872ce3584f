package keeper

import (
	"context"
	"iter"

	obsprom "github.com/keeperio/promisekeeper/pkg/observability/prometheus"
)

// Config is the file-loadable keeper configuration. Load it with pkg/config
// and hand it to FromConfig.
type Config struct {
	Workers   int  `yaml:"workers" json:"workers"`
	AutoStart bool `yaml:"auto_start" json:"auto_start"`
	AutoStop  bool `yaml:"auto_stop" json:"auto_stop"`
}

// DefaultConfig returns the default keeper configuration: one worker,
// auto-start and auto-stop enabled.
func DefaultConfig() Config {
	return Config{Workers: 1, AutoStart: true, AutoStop: true}
}

// Options configures a PromiseKeeper. Use the With* functions.
type Options struct {
	Workers   int
	AutoStart bool
	AutoStop  bool
	Logger    Logger
	Metrics   *obsprom.Metrics
	Context   context.Context
	Iterator  iter.Seq[*Promise]
}

// Option mutates Options.
type Option func(*Options)

func defaultOptions() Options {
	return Options{
		Workers:   1,
		AutoStart: true,
		AutoStop:  true,
		Logger:    newDefaultLogger(),
		Metrics:   obsprom.GetMetrics(),
		Context:   context.Background(),
	}
}

// WithWorkers sets the worker count. Values below 1 make New fail.
func WithWorkers(n int) Option {
	return func(o *Options) { o.Workers = n }
}

// WithAutoStart controls whether the pool starts on first submission.
func WithAutoStart(enabled bool) Option {
	return func(o *Options) { o.AutoStart = enabled }
}

// WithAutoStop controls whether the pool stops itself once the queue drains
// and no task is in flight.
func WithAutoStop(enabled bool) Option {
	return func(o *Options) { o.AutoStop = enabled }
}

// WithLogger replaces the default stdlib logger.
func WithLogger(l Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithMetrics replaces the global metrics collection, e.g. to register on a
// private registry in tests.
func WithMetrics(m *obsprom.Metrics) Option {
	return func(o *Options) {
		if m != nil {
			o.Metrics = m
		}
	}
}

// WithContext sets the base context passed to every task.
func WithContext(ctx context.Context) Option {
	return func(o *Options) {
		if ctx != nil {
			o.Context = ctx
		}
	}
}

// WithIterator feeds pre-built Promises from a sequence. The keeper submits
// them as the sequence yields; with auto-stop enabled it shuts down once the
// sequence and queue drain.
func WithIterator(seq iter.Seq[*Promise]) Option {
	return func(o *Options) { o.Iterator = seq }
}
