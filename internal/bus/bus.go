// Package bus provides the in-process event transport. The interface is
// broker-shaped so a real broker client can replace the in-process fan-out
// without touching producers or consumers.
package bus

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/neel2751/lomashwood-product-service/internal/events"
)

// Handler consumes a delivered envelope. Errors are isolated by the bus:
// they are logged and never reach sibling subscribers of the same topic.
type Handler func(ctx context.Context, env events.Envelope) error

// Transport is the event delivery contract.
type Transport interface {
	// Publish delivers the envelope synchronously to every subscriber of its
	// topic. It returns once all subscribers ran or the context is done.
	Publish(ctx context.Context, env events.Envelope) error
	// Subscribe registers a handler for a topic and returns a subscription id.
	Subscribe(topic string, h Handler) string
	// Unsubscribe removes a previously registered handler. Unknown ids are a
	// no-op.
	Unsubscribe(topic, id string)
}

type inProcessBus struct {
	mu   sync.RWMutex
	subs map[string]map[string]Handler
	log  *zap.Logger
}

// NewInProcess creates the in-process transport.
func NewInProcess(log *zap.Logger) Transport {
	return &inProcessBus{
		subs: make(map[string]map[string]Handler),
		log:  log,
	}
}

func (b *inProcessBus) Subscribe(topic string, h Handler) string {
	id := uuid.New().String()

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[string]Handler)
	}
	b.subs[topic][id] = h

	return id
}

func (b *inProcessBus) Unsubscribe(topic, id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs[topic], id)
}

func (b *inProcessBus) Publish(ctx context.Context, env events.Envelope) error {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[env.Topic]))
	for _, h := range b.subs[env.Topic] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := b.deliver(ctx, h, env); err != nil {
			// One failing subscriber must not break the others.
			b.log.Error("subscriber failed",
				zap.String("topic", env.Topic),
				zap.String("eventId", env.Metadata.EventID),
				zap.Error(err),
			)
		}
	}

	return nil
}

func (b *inProcessBus) deliver(ctx context.Context, h Handler, env events.Envelope) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("subscriber panic: %v\n%s", rec, debug.Stack())
		}
	}()
	return h(ctx, env)
}
