package event

import (
	"context"
	"sync"

	"github.com/bartab/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// InMemoryEventBus delivers domain events to subscribed handlers on the
// publisher's goroutine. A failing or panicking handler is logged and
// skipped; the publish itself never fails, since the write the event
// reports has already committed.
type InMemoryEventBus struct {
	mu     sync.RWMutex
	byType map[string][]shared.EventHandler
	all    []shared.EventHandler
	logger *zap.Logger
}

// NewInMemoryEventBus creates an empty bus
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{
		byType: make(map[string][]shared.EventHandler),
		logger: logger,
	}
}

// Subscribe registers a handler. Explicit event types win over the
// handler's own EventTypes; a handler with neither receives everything.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if len(eventTypes) == 0 {
		b.all = append(b.all, handler)
		return
	}
	for _, t := range eventTypes {
		b.byType[t] = append(b.byType[t], handler)
	}
}

// Unsubscribe removes the handler from every subscription
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.all = without(b.all, handler)
	for t, handlers := range b.byType {
		if remaining := without(handlers, handler); len(remaining) > 0 {
			b.byType[t] = remaining
		} else {
			delete(b.byType, t)
		}
	}
}

// Publish delivers each event to its subscribers in registration order
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, ev := range events {
		for _, h := range b.subscribers(ev.EventType()) {
			b.deliver(ctx, h, ev)
		}
	}
	return nil
}

func (b *InMemoryEventBus) subscribers(eventType string) []shared.EventHandler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	matched := b.byType[eventType]
	out := make([]shared.EventHandler, 0, len(matched)+len(b.all))
	out = append(out, matched...)
	return append(out, b.all...)
}

func (b *InMemoryEventBus) deliver(ctx context.Context, handler shared.EventHandler, ev shared.DomainEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				zap.String("event_type", ev.EventType()),
				zap.Any("panic", r))
		}
	}()
	if err := handler.Handle(ctx, ev); err != nil {
		b.logger.Error("event handler failed",
			zap.String("event_type", ev.EventType()),
			zap.String("event_id", ev.EventID().String()),
			zap.Error(err))
	}
}

func without(handlers []shared.EventHandler, target shared.EventHandler) []shared.EventHandler {
	out := handlers[:0]
	for _, h := range handlers {
		if h != target {
			out = append(out, h)
		}
	}
	return out
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
