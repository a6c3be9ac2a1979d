package service

import (
	"math"

	"commerce-sync-service/internal/core/domain"

	"github.com/rs/zerolog"
)

// Reconciler computes the minimal set of remote updates for a local
// inventory against the upstream platform's view.
type Reconciler struct {
	log zerolog.Logger
}

// NewReconciler creates a reconciler.
func NewReconciler(log zerolog.Logger) *Reconciler {
	return &Reconciler{log: log}
}

// Diff compares local items against remote items keyed by remote ID and
// returns the update operations needed to bring the remote side in line.
//
// Only items with an established mapping are compared: locals without a
// RemoteID, or whose RemoteID is absent remotely, are skipped and logged.
// Ops are emitted in the order localItems were given, and no op is emitted
// for an item with no detected difference, keeping remote call volume
// minimal. Local items are never created remotely.
func (r *Reconciler) Diff(localItems []domain.LocalItem, remoteByID map[string]domain.RemoteItem) []domain.UpdateOp {
	var ops []domain.UpdateOp

	for _, local := range localItems {
		if local.RemoteID == "" {
			r.log.Debug().Str("sku", local.SKU).Msg("recon: no remote mapping, skipping")
			continue
		}
		remote, ok := remoteByID[local.RemoteID]
		if !ok {
			r.log.Warn().
				Str("sku", local.SKU).
				Str("remote_id", local.RemoteID).
				Msg("recon: mapped item missing remotely, skipping")
			continue
		}

		desiredAvailable := local.InStock && local.StockQuantity > 0
		if desiredAvailable != remote.Available {
			ops = append(ops, domain.UpdateOp{
				ItemID:    local.RemoteID,
				Kind:      domain.UpdateAvailability,
				Available: desiredAvailable,
			})
		}

		// Rounded, not truncated: 10.005 becomes 1001, not 1000.
		desiredPriceCents := int64(math.Round(local.Price * 100))
		if desiredPriceCents != remote.PriceCents {
			ops = append(ops, domain.UpdateOp{
				ItemID:     local.RemoteID,
				Kind:       domain.UpdatePrice,
				PriceCents: desiredPriceCents,
			})
		}
	}

	return ops
}
