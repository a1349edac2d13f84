// Package producer owns the publishing side of the event bus: envelope
// construction, topic/schema validation, the delivery timeout guard and the
// all-or-nothing batch publish.
package producer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/neel2751/lomashwood-product-service/internal/bus"
	"github.com/neel2751/lomashwood-product-service/internal/events"
)

// Message is one entry of a batch publish.
type Message struct {
	Topic string
	Value any
	Opts  []PublishOption
}

type publishOptions struct {
	key       *string
	overrides events.Metadata
}

// PublishOption customizes a single publish.
type PublishOption func(*publishOptions)

// WithKey sets the envelope key used for partition-style routing.
func WithKey(key string) PublishOption {
	return func(o *publishOptions) { o.key = &key }
}

// WithMetadata overlays explicit metadata fields (correlation, causation,
// priority, expiry) on top of the generated defaults.
func WithMetadata(md events.Metadata) PublishOption {
	return func(o *publishOptions) { o.overrides = md }
}

// Producer publishes envelopes through the transport. It exclusively owns the
// transport reference: handlers and jobs publish only through this contract.
type Producer interface {
	// Publish builds an envelope and delivers it synchronously. It fails if
	// the topic is unknown, the payload misses required fields, or delivery
	// exceeds the configured timeout. The generated event id is returned.
	Publish(ctx context.Context, topic string, value any, opts ...PublishOption) (string, error)
	// PublishBatch fires all publishes concurrently and waits for all of
	// them. Any single failure rejects the whole batch.
	PublishBatch(ctx context.Context, msgs []Message) error
	// Subscribe registers a handler for a registered topic.
	Subscribe(topic string, h bus.Handler) (string, error)
	// Unsubscribe removes a subscription.
	Unsubscribe(topic, id string)
	// Pending reports the number of publishes currently in flight.
	Pending() int
}

type producer struct {
	source    string
	transport bus.Transport
	timeout   time.Duration
	log       *zap.Logger

	mu      sync.Mutex
	pending map[string]time.Time
}

// New creates a Producer stamping events with the given source service name.
func New(source string, transport bus.Transport, cfg Config, log *zap.Logger) Producer {
	return &producer{
		source:    source,
		transport: transport,
		timeout:   cfg.DeliveryTimeout,
		log:       log,
		pending:   make(map[string]time.Time),
	}
}

func (p *producer) Publish(ctx context.Context, topic string, value any, opts ...PublishOption) (string, error) {
	var options publishOptions
	for _, opt := range opts {
		opt(&options)
	}

	if err := events.ValidatePayload(topic, value); err != nil {
		return "", err
	}

	md := events.NewMetadataBuilder(p.source).
		WithTraceContext(ctx).
		Build()
	md = events.Enrich(md, options.overrides)

	env := events.Envelope{
		Topic:    topic,
		Key:      options.key,
		Value:    value,
		Metadata: md,
	}

	p.trackPending(md.EventID)
	// The pending entry must go away on every exit path.
	defer p.releasePending(md.EventID)

	done := make(chan error, 1)
	go func() {
		done <- p.transport.Publish(ctx, env)
	}()

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		if err != nil {
			return "", fmt.Errorf("failed to publish %s: %w", topic, err)
		}
		p.log.Debug("event published",
			zap.String("topic", topic),
			zap.String("eventId", md.EventID),
		)
		return md.EventID, nil
	case <-timer.C:
		return "", fmt.Errorf("publish of %s timed out after %s (event %s)", topic, p.timeout, md.EventID)
	case <-ctx.Done():
		return "", fmt.Errorf("publish of %s cancelled: %w", topic, ctx.Err())
	}
}

func (p *producer) PublishBatch(ctx context.Context, msgs []Message) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, msg := range msgs {
		msg := msg
		g.Go(func() error {
			_, err := p.Publish(gctx, msg.Topic, msg.Value, msg.Opts...)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("batch publish of %d events rejected: %w", len(msgs), err)
	}
	return nil
}

func (p *producer) Subscribe(topic string, h bus.Handler) (string, error) {
	if !events.IsValidTopic(topic) {
		return "", fmt.Errorf("cannot subscribe to unknown topic %q", topic)
	}
	return p.transport.Subscribe(topic, h), nil
}

func (p *producer) Unsubscribe(topic, id string) {
	p.transport.Unsubscribe(topic, id)
}

func (p *producer) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

func (p *producer) trackPending(eventID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending[eventID] = time.Now()
}

func (p *producer) releasePending(eventID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.pending, eventID)
}
