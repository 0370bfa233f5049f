// Package events provides a typed in-process publish/subscribe bus used for
// cross-component signaling (notification fallbacks, drag-and-drop results,
// image customization).
package events

import (
	"context"
	"sync"
)

// Topic names a stream of payloads of type T.
type Topic[T any] struct {
	name string
}

// NewTopic creates a topic with the given name.
func NewTopic[T any](name string) Topic[T] {
	return Topic[T]{name: name}
}

// Name returns the topic name.
func (t Topic[T]) Name() string {
	return t.name
}

type subscription struct {
	id      string
	topic   string
	handler func(context.Context, any)
}

// Bus delivers published payloads to every subscriber of the topic.
type Bus struct {
	mu            sync.RWMutex
	subscriptions map[string]*subscription
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subscriptions: make(map[string]*subscription)}
}

// Subscribe registers handler for payloads published on topic.
func Subscribe[T any](b *Bus, topic Topic[T], id string, handler func(context.Context, T)) error {
	if id == "" {
		return ErrInvalidSubscriptionID
	}
	if handler == nil {
		return ErrNilHandler
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.subscriptions[id]; exists {
		return ErrSubscriptionExists
	}

	b.subscriptions[id] = &subscription{
		id:    id,
		topic: topic.name,
		handler: func(ctx context.Context, payload any) {
			if v, ok := payload.(T); ok {
				handler(ctx, v)
			}
		},
	}
	return nil
}

// Publish delivers payload synchronously to every subscriber of topic.
// It returns the number of handlers invoked.
func Publish[T any](ctx context.Context, b *Bus, topic Topic[T], payload T) int {
	if b == nil {
		return 0
	}

	b.mu.RLock()
	var handlers []func(context.Context, any)
	for _, sub := range b.subscriptions {
		if sub.topic == topic.name {
			handlers = append(handlers, sub.handler)
		}
	}
	b.mu.RUnlock()

	// Invoke handlers outside the lock so they may publish or unsubscribe.
	for _, h := range handlers {
		h(ctx, payload)
	}
	return len(handlers)
}

// Unsubscribe removes a subscription by ID.
func (b *Bus) Unsubscribe(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.subscriptions[id]; !exists {
		return ErrSubscriptionNotFound
	}
	delete(b.subscriptions, id)
	return nil
}

// SubscriberCount returns the number of active subscribers across all topics.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscriptions)
}

// Close removes all subscriptions.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscriptions = make(map[string]*subscription)
}

// Errors for bus operations.
var (
	ErrInvalidSubscriptionID = &BusError{Message: "subscription ID is required"}
	ErrNilHandler            = &BusError{Message: "handler cannot be nil"}
	ErrSubscriptionExists    = &BusError{Message: "subscription with this ID already exists"}
	ErrSubscriptionNotFound  = &BusError{Message: "subscription not found"}
)

// BusError represents an error from bus operations.
type BusError struct {
	Message string
}

func (e *BusError) Error() string {
	return e.Message
}
