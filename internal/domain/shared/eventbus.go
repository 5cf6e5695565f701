package shared

import "context"

// EventPublisher is the side services see: fire events after a write has
// committed. Publishing must never fail the business operation itself.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventHandler reacts to published events. EventTypes narrows delivery;
// an empty slice subscribes the handler to everything.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	EventTypes() []string
}

// EventSubscriber registers handlers. Passing explicit event types
// overrides the handler's own EventTypes.
type EventSubscriber interface {
	Subscribe(handler EventHandler, eventTypes ...string)
}

// EventBus is both ends of the in-process pub/sub.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
