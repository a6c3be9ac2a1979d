package handler

import (
	"encoding/json"
	"errors"

	"commerce-sync-service/internal/adapter/http/middleware"
	"commerce-sync-service/internal/core/domain"
	"commerce-sync-service/internal/core/ports"
	"commerce-sync-service/internal/service"
	"commerce-sync-service/pkg/apperror"
	"commerce-sync-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var duplicateDeliveries = promauto.NewCounter(prometheus.CounterOpts{
	Name: "webhook_duplicate_deliveries_total",
	Help: "Number of webhook deliveries acknowledged as duplicates.",
})

// WebhookHandler receives webhook event deliveries. The request path does
// receipt only: verify (middleware), parse, claim, enqueue. Business
// processing happens on the worker so the sender's delivery timeout is
// never spent inside a handler.
type WebhookHandler struct {
	dedup *service.Deduplicator
	queue ports.EventQueue
	log   zerolog.Logger
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(dedup *service.Deduplicator, queue ports.EventQueue, log zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{dedup: dedup, queue: queue, log: log}
}

// Receive handles POST /webhooks/events.
func (h *WebhookHandler) Receive(c *gin.Context) {
	raw, ok := c.Get(middleware.CtxRawBody)
	if !ok {
		// Route misconfiguration: signature middleware did not run
		response.Error(c, apperror.InternalError(errors.New("raw body missing from context")))
		return
	}

	var event domain.Event
	if err := json.Unmarshal(raw.([]byte), &event); err != nil {
		response.Error(c, apperror.ErrMalformedEvent(err))
		return
	}
	if event.ID == "" || event.EventType == "" {
		response.Error(c, apperror.Validation("event id and event_type are required"))
		return
	}

	claimed, err := h.dedup.TryClaim(c.Request.Context(), event.ID)
	if err != nil {
		response.Error(c, apperror.ErrStorageError(err))
		return
	}
	if !claimed {
		// Redelivery of a known event: acknowledge so the sender stops
		duplicateDeliveries.Inc()
		response.OK(c, gin.H{"status": "duplicate", "event_id": event.ID})
		return
	}

	if err := h.queue.Enqueue(&event); err != nil {
		// Give the claim back; the sender will redeliver on 503
		if relErr := h.dedup.Release(c.Request.Context(), event.ID); relErr != nil {
			h.log.Error().Err(relErr).Str("event_id", event.ID).Msg("failed to release claim after enqueue failure")
		}
		response.Error(c, apperror.ErrQueueFull())
		return
	}

	h.log.Info().
		Str("event_id", event.ID).
		Str("event_type", event.EventType).
		Msg("webhook event accepted")
	response.OK(c, gin.H{"status": "accepted", "event_id": event.ID})
}
