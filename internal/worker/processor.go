package worker

import (
	"context"
	"errors"
	"sync"

	"commerce-sync-service/internal/core/domain"
	"commerce-sync-service/internal/core/ports"
	"commerce-sync-service/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var (
	eventsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "webhook_events_processed_total",
		Help: "The total number of webhook events processed to completion",
	})
	handlerErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "webhook_handler_errors_total",
		Help: "The total number of webhook events whose handler failed",
	})
	eventsDeadLettered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "webhook_events_dead_lettered_total",
		Help: "The total number of failed webhook events routed to the dead-letter sink",
	})
)

// ErrQueueFull is returned by Enqueue when the buffer is at capacity.
// The receiving endpoint translates it into backpressure toward the
// sender rather than blocking the request.
var ErrQueueFull = errors.New("event queue full")

// Processor consumes claimed webhook events from a bounded in-memory
// queue. Each worker dispatches an event to its handler, commits the
// dedup claim on success, and on failure releases the claim so the
// sender's redelivery can be processed. Failed events additionally go
// to the dead-letter sink when one is configured.
type Processor struct {
	queue      chan *domain.Event
	dispatcher ports.EventDispatcher
	dedup      *service.Deduplicator
	deadLetter ports.DeadLetterSink // nil = dead-lettering disabled
	workers    int
	log        zerolog.Logger

	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewProcessor creates a Processor with the given buffer size and worker
// count.
func NewProcessor(
	dispatcher ports.EventDispatcher,
	dedup *service.Deduplicator,
	deadLetter ports.DeadLetterSink,
	queueSize int,
	workers int,
	log zerolog.Logger,
) *Processor {
	if queueSize <= 0 {
		queueSize = 256
	}
	if workers <= 0 {
		workers = 4
	}
	return &Processor{
		queue:      make(chan *domain.Event, queueSize),
		dispatcher: dispatcher,
		dedup:      dedup,
		deadLetter: deadLetter,
		workers:    workers,
		log:        log,
	}
}

// Enqueue hands an event to the workers without blocking. Returns
// ErrQueueFull when the buffer is at capacity.
func (p *Processor) Enqueue(event *domain.Event) error {
	select {
	case p.queue <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

// Start launches the worker goroutines. ctx bounds per-event processing;
// cancelling it does not drain the queue, Stop does.
func (p *Processor) Start(ctx context.Context) {
	p.log.Info().Int("workers", p.workers).Int("queue_size", cap(p.queue)).Msg("event processor started")
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for event := range p.queue {
				p.processOne(ctx, event)
			}
		}()
	}
}

// Stop closes the queue, lets the workers drain it, and waits for them
// to exit. Safe to call more than once.
func (p *Processor) Stop() {
	p.stopOnce.Do(func() {
		close(p.queue)
	})
	p.wg.Wait()
	p.log.Info().Msg("event processor stopped")
}

func (p *Processor) processOne(ctx context.Context, event *domain.Event) {
	if err := p.dispatcher.Dispatch(ctx, event); err != nil {
		handlerErrors.Inc()
		p.log.Error().
			Err(err).
			Str("event_id", event.ID).
			Str("event_type", event.EventType).
			Msg("event handler failed")

		if p.deadLetter != nil {
			if dlErr := p.deadLetter.Publish(ctx, event, err); dlErr != nil {
				p.log.Error().Err(dlErr).Str("event_id", event.ID).Msg("dead-letter publish failed")
			} else {
				eventsDeadLettered.Inc()
			}
		}

		// Reopen the claim; the lease would expire anyway, this just
		// lets a redelivery be processed sooner.
		if relErr := p.dedup.Release(ctx, event.ID); relErr != nil {
			p.log.Error().Err(relErr).Str("event_id", event.ID).Msg("failed to release claim")
		}
		return
	}

	if err := p.dedup.Commit(ctx, event.ID); err != nil {
		// Handler succeeded but the marker write failed: the claim stays
		// pending and a redelivery after lease expiry may reprocess.
		// Handlers are required to tolerate that.
		p.log.Error().Err(err).Str("event_id", event.ID).Msg("failed to commit processed marker")
		return
	}

	eventsProcessed.Inc()
	p.log.Debug().
		Str("event_id", event.ID).
		Str("event_type", event.EventType).
		Msg("event processed")
}
