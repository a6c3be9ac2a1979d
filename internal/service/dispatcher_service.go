package service

import (
	"context"
	"fmt"

	"commerce-sync-service/internal/core/domain"
	"commerce-sync-service/internal/core/ports"

	"github.com/rs/zerolog"
)

// HandlerError reports a business-logic failure inside a registered handler.
type HandlerError struct {
	EventID   string
	EventType string
	Err       error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler failed for event %s (%s): %v", e.EventID, e.EventType, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }

// Dispatcher routes events to handlers by event type. Unknown types are
// logged and acknowledged: new upstream event types must never break
// existing consumers. The dispatcher itself never retries — redelivery is
// the sender's responsibility.
type Dispatcher struct {
	handlers map[string]ports.EventHandler
	log      zerolog.Logger
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher(log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string]ports.EventHandler),
		log:      log,
	}
}

// Register binds a handler to an event type, replacing any previous binding.
func (d *Dispatcher) Register(eventType string, handler ports.EventHandler) {
	d.handlers[eventType] = handler
}

// Dispatch invokes the handler registered for event.EventType. Handler
// failures are wrapped as *HandlerError; unregistered types return nil.
func (d *Dispatcher) Dispatch(ctx context.Context, event *domain.Event) error {
	handler, ok := d.handlers[event.EventType]
	if !ok {
		d.log.Info().
			Str("event_id", event.ID).
			Str("event_type", event.EventType).
			Msg("dispatch: no handler for event type, acknowledging")
		return nil
	}

	if err := handler.Handle(ctx, event); err != nil {
		return &HandlerError{EventID: event.ID, EventType: event.EventType, Err: err}
	}
	return nil
}
