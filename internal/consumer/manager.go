// Package consumer dispatches delivered events to registered handlers with
// retry-and-backoff semantics. There is no dead-letter persistence: an event
// that exhausts its retries is logged and dropped.
package consumer

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/neel2751/lomashwood-product-service/internal/domain"
	"github.com/neel2751/lomashwood-product-service/internal/events"
	"github.com/neel2751/lomashwood-product-service/internal/producer"
)

// RetryPolicy bounds the delivery attempts for one subscription.
type RetryPolicy struct {
	MaxRetries int
	// RetryDelay is the base backoff; attempt n sleeps RetryDelay * n.
	RetryDelay time.Duration
}

// HandlerFunc applies the side effects of one event type.
type HandlerFunc func(ctx context.Context, env events.Envelope) error

type subscription struct {
	handler HandlerFunc
	retry   RetryPolicy
	busID   string
}

// Manager owns one handler per event type. Re-subscribing an event type
// replaces the prior handler.
type Manager struct {
	producer producer.Producer
	log      *zap.Logger

	mu   sync.Mutex
	subs map[string]*subscription
}

func NewManager(p producer.Producer, log *zap.Logger) *Manager {
	return &Manager{
		producer: p,
		log:      log,
		subs:     make(map[string]*subscription),
	}
}

// Subscribe registers the handler for the event type and wires it into the
// transport. A prior handler for the same type is detached first.
func (m *Manager) Subscribe(eventType string, h HandlerFunc, retry RetryPolicy) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if prior, ok := m.subs[eventType]; ok {
		m.producer.Unsubscribe(eventType, prior.busID)
	}

	busID, err := m.producer.Subscribe(eventType, func(ctx context.Context, env events.Envelope) error {
		m.ProcessEvent(ctx, eventType, env)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe %s: %w", eventType, err)
	}

	m.subs[eventType] = &subscription{handler: h, retry: retry, busID: busID}
	return nil
}

// Unsubscribe detaches the event type's handler, if any.
func (m *Manager) Unsubscribe(eventType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sub, ok := m.subs[eventType]; ok {
		m.producer.Unsubscribe(eventType, sub.busID)
		delete(m.subs, eventType)
	}
}

// Close detaches every registered handler from the transport.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for eventType, sub := range m.subs {
		m.producer.Unsubscribe(eventType, sub.busID)
		delete(m.subs, eventType)
	}
}

// ProcessEvent runs the subscribed handler with linear-backoff retries. A
// missing subscription is a logged no-op, not an error. Validation and
// terminal failures are never retried. The retry budget is re-checked before
// every attempt so an event cannot outlive its expiry mid-sequence.
func (m *Manager) ProcessEvent(ctx context.Context, eventType string, env events.Envelope) {
	m.mu.Lock()
	sub, ok := m.subs[eventType]
	m.mu.Unlock()

	if !ok {
		m.log.Debug("no subscription for event type", zap.String("eventType", eventType))
		return
	}

	log := m.log.With(
		zap.String("eventType", eventType),
		zap.String("eventId", env.Metadata.EventID),
	)

	for attempt := 1; ; attempt++ {
		err := m.invoke(ctx, sub.handler, env)
		if err == nil {
			if attempt > 1 {
				log.Info("event processed after retries", zap.Int("attempts", attempt))
			}
			return
		}

		if !domain.IsRetryable(err) {
			log.Error("event failed with non-retryable error, dropping", zap.Error(err))
			return
		}

		env.Metadata.RetryCount++
		if !events.ShouldRetry(env.Metadata, sub.retry.MaxRetries) {
			// No dead-letter store: the log line is all that remains.
			log.Error("event permanently failed, dropping",
				zap.Int("retryCount", env.Metadata.RetryCount),
				zap.Error(err),
			)
			return
		}

		log.Warn("event handler failed, will retry",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)

		sleep(ctx, sub.retry.RetryDelay*time.Duration(attempt))
		if ctx.Err() != nil {
			log.Warn("retry sequence cancelled", zap.Error(ctx.Err()))
			return
		}
	}
}

func (m *Manager) invoke(ctx context.Context, h HandlerFunc, env events.Envelope) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			// A panic indicates a bug, not a transient condition.
			err = fmt.Errorf("%w: handler panic: %v\n%s", domain.ErrTerminal, rec, debug.Stack())
		}
	}()
	return h(ctx, env)
}

// sleep waits for the duration or until the context is cancelled.
func sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
