package events

import "context"

// EventPublisher publishes interaction dispatch events.
type EventPublisher interface {
	PublishDispatched(ctx context.Context, event *InteractionDispatchedEvent) error
}

// NoOpPublisher is an EventPublisher that does nothing (used when COMMS is not configured).
type NoOpPublisher struct{}

// PublishDispatched is a no-op.
func (p *NoOpPublisher) PublishDispatched(_ context.Context, _ *InteractionDispatchedEvent) error {
	return nil
}

// CallbackPublisher is an EventPublisher that calls a callback function (for testing).
type CallbackPublisher struct {
	callback func(ctx context.Context, event *InteractionDispatchedEvent) error
}

// NewCallbackPublisher creates a new CallbackPublisher.
func NewCallbackPublisher(cb func(ctx context.Context, event *InteractionDispatchedEvent) error) *CallbackPublisher {
	return &CallbackPublisher{callback: cb}
}

// PublishDispatched calls the callback.
func (p *CallbackPublisher) PublishDispatched(ctx context.Context, event *InteractionDispatchedEvent) error {
	return p.callback(ctx, event)
}
