package bus

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/graphnav/internal/logging"
	"github.com/aretw0/graphnav/pkg/domain"
	"github.com/google/uuid"
)

// Handler reacts to one message.
type Handler func(ctx context.Context, msg domain.Message) error

// Token identifies a subscription.
type Token string

type subscription struct {
	token   Token
	handler Handler
}

// Bus is a synchronous publish/subscribe channel keyed by message kind.
// It is not safe for concurrent use; callers serialize access.
type Bus struct {
	subs    map[domain.Kind][]subscription
	kinds   map[Token]domain.Kind
	depth   int
	logger  *slog.Logger
	metrics *Metrics
}

// Option configures the Bus.
type Option func(*Bus)

// WithLogger configures a logger for dispatch tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) {
		b.logger = logger
	}
}

// WithMetrics records dispatch counters and latencies.
func WithMetrics(m *Metrics) Option {
	return func(b *Bus) {
		b.metrics = m
	}
}

// New creates an empty bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		subs:   make(map[domain.Kind][]subscription),
		kinds:  make(map[Token]domain.Kind),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers h for messages of kind.
func (b *Bus) Subscribe(kind domain.Kind, h Handler) Token {
	tok := Token(uuid.NewString())
	b.subs[kind] = append(b.subs[kind], subscription{token: tok, handler: h})
	b.kinds[tok] = kind
	return tok
}

// Unsubscribe removes a subscription. It reports whether the token was active.
func (b *Bus) Unsubscribe(tok Token) bool {
	kind, ok := b.kinds[tok]
	if !ok {
		return false
	}
	delete(b.kinds, tok)

	current := b.subs[kind]
	next := make([]subscription, 0, len(current))
	for _, s := range current {
		if s.token != tok {
			next = append(next, s)
		}
	}
	if len(next) == 0 {
		delete(b.subs, kind)
	} else {
		b.subs[kind] = next
	}
	return true
}

// Subscribers returns how many handlers are registered for kind.
func (b *Bus) Subscribers(kind domain.Kind) int {
	return len(b.subs[kind])
}

// Publish delivers msg to the handlers subscribed when the call starts.
func (b *Bus) Publish(ctx context.Context, msg domain.Message) error {
	kind := msg.Kind()
	// Copy so handlers may (un)subscribe while we iterate.
	targets := append([]subscription(nil), b.subs[kind]...)

	b.depth++
	defer func() { b.depth-- }()

	b.logger.Debug("publish", "kind", kind, "handlers", len(targets), "depth", b.depth)
	start := time.Now()
	b.metrics.published(kind)

	for _, s := range targets {
		if err := s.handler(ctx, msg); err != nil {
			b.metrics.failed(kind)
			b.metrics.observe(kind, time.Since(start))
			return fmt.Errorf("%s: %w", kind, err)
		}
	}

	b.metrics.observe(kind, time.Since(start))
	return nil
}

// On subscribes a handler typed to a concrete message.
func On[M domain.Message](b *Bus, h func(ctx context.Context, msg M) error) Token {
	var zero M
	return b.Subscribe(zero.Kind(), func(ctx context.Context, msg domain.Message) error {
		typed, ok := msg.(M)
		if !ok {
			return fmt.Errorf("unexpected message %T for %s", msg, zero.Kind())
		}
		return h(ctx, typed)
	})
}
