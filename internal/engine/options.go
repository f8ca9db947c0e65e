package engine

import "log/slog"

// DefaultMaxEffectDepth bounds effect chains (an effect dispatching an action
// whose command carries another effect, and so on).
const DefaultMaxEffectDepth = 1000

// ErrorHandler receives effect failures and refused effects. It runs on the
// goroutine that observed the failure.
type ErrorHandler func(err error)

// PanicOnError is the default ErrorHandler: effect failures escalate to a
// process crash.
func PanicOnError(err error) {
	panic(err)
}

type options struct {
	logger   *slog.Logger
	onError  ErrorHandler
	equal    any
	journal  Journal
	metrics  Metrics
	sessions SessionGenerator
	clock    SeqClock
	maxDepth int64
	app      string
}

func defaultOptions() options {
	return options{
		logger:   slog.Default(),
		onError:  PanicOnError,
		metrics:  noopMetrics{},
		sessions: UUIDv7Generator{},
		maxDepth: DefaultMaxEffectDepth,
	}
}

// Option configures an Engine.
type Option func(*options)

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithErrorHandler replaces the default PanicOnError handler.
func WithErrorHandler(h ErrorHandler) Option {
	return func(o *options) {
		if h != nil {
			o.onError = h
		}
	}
}

// WithEqual overrides the change check run at commit time. When it reports
// true the new state is discarded and subscribers are not notified. S must
// match the engine's state type; a mismatch panics in New.
func WithEqual[S any](eq func(a, b S) bool) Option {
	return func(o *options) {
		o.equal = eq
	}
}

// WithJournal attaches a journal. Records are written asynchronously; call
// Shutdown to flush them.
func WithJournal(j Journal) Option {
	return func(o *options) {
		o.journal = j
	}
}

// WithMetrics attaches a metrics sink.
func WithMetrics(m Metrics) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithSessionGenerator sets the source of the session id.
// Default: UUIDv7Generator.
func WithSessionGenerator(g SessionGenerator) Option {
	return func(o *options) {
		if g != nil {
			o.sessions = g
		}
	}
}

// WithClock sets the logical clock. Default: a fresh Clock.
func WithClock(c SeqClock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithMaxEffectDepth sets the effect chain limit. Values below 1 are ignored.
//
// Default: DefaultMaxEffectDepth.
func WithMaxEffectDepth(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxDepth = n
		}
	}
}

// WithApp names the application in the journal's session record.
func WithApp(name string) Option {
	return func(o *options) {
		o.app = name
	}
}
