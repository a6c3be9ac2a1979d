package service

import (
	"context"
	"time"

	"commerce-sync-service/internal/core/domain"
	"commerce-sync-service/internal/core/ports"

	"github.com/rs/zerolog"
)

// JobSummary is the operator-facing result of a sync job.
type JobSummary struct {
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// SyncService runs the outbound jobs: inventory reconciliation and sales
// reporting. Every remote call goes through the retry executor.
type SyncService struct {
	client    ports.UpstreamClient
	localRepo ports.LocalInventoryRepository
	exec      *RetryExecutor
	recon     *Reconciler
	agg       *Aggregator
	pageSize  int
	pageDelay time.Duration
	log       zerolog.Logger
}

// NewSyncService creates a SyncService.
func NewSyncService(
	client ports.UpstreamClient,
	localRepo ports.LocalInventoryRepository,
	exec *RetryExecutor,
	recon *Reconciler,
	agg *Aggregator,
	pageSize int,
	pageDelay time.Duration,
	log zerolog.Logger,
) *SyncService {
	if pageSize <= 0 {
		pageSize = 50
	}
	return &SyncService{
		client:    client,
		localRepo: localRepo,
		exec:      exec,
		recon:     recon,
		agg:       agg,
		pageSize:  pageSize,
		pageDelay: pageDelay,
		log:       log,
	}
}

// SyncInventory fetches the full remote inventory, diffs it against local
// records, and applies the resulting updates. A failed update is counted
// and logged but does not stop the job; a failed fetch aborts it.
func (s *SyncService) SyncInventory(ctx context.Context) (*JobSummary, error) {
	remoteItems, err := FetchAll(ctx, func(ctx context.Context, page int) (ports.Page[domain.RemoteItem], error) {
		return ExecuteValue(ctx, s.exec, func(ctx context.Context) (ports.Page[domain.RemoteItem], error) {
			return s.client.ListInventory(ctx, ports.InventoryListParams{Page: page, Limit: s.pageSize})
		})
	}, s.pageDelay)
	if err != nil {
		return nil, err
	}

	localItems, err := s.localRepo.ListItems(ctx)
	if err != nil {
		return nil, err
	}

	remoteByID := make(map[string]domain.RemoteItem, len(remoteItems))
	for _, item := range remoteItems {
		remoteByID[item.ID] = item
	}

	ops := s.recon.Diff(localItems, remoteByID)

	summary := &JobSummary{}
	touched := make(map[string]struct{})
	for _, op := range ops {
		touched[op.ItemID] = struct{}{}
		err := s.exec.Execute(ctx, func(ctx context.Context) error {
			return s.client.UpdateItem(ctx, op)
		})
		if err != nil {
			summary.Failed++
			s.log.Error().
				Err(err).
				Str("item_id", op.ItemID).
				Str("kind", string(op.Kind)).
				Msg("sync: item update failed")
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
			continue
		}
		summary.Updated++
	}
	summary.Skipped = len(localItems) - len(touched)

	s.log.Info().
		Int("updated", summary.Updated).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Msg("sync: inventory reconciliation finished")

	return summary, nil
}

// SalesReport fetches all purchases in [from, to] and folds them into a
// Summary. The fixed date range gives a point-in-time view of the walk.
func (s *SyncService) SalesReport(ctx context.Context, from, to time.Time) (*Summary, error) {
	purchases, err := FetchAll(ctx, func(ctx context.Context, page int) (ports.Page[domain.Purchase], error) {
		return ExecuteValue(ctx, s.exec, func(ctx context.Context) (ports.Page[domain.Purchase], error) {
			return s.client.ListPurchases(ctx, ports.PurchaseListParams{
				From:  from,
				To:    to,
				Page:  page,
				Limit: s.pageSize,
			})
		})
	}, s.pageDelay)
	if err != nil {
		return nil, err
	}

	summary := s.agg.Aggregate(purchases)

	s.log.Info().
		Int("purchases", summary.Count).
		Int64("total_cents", summary.TotalCents).
		Msg("sync: sales report finished")

	return &summary, nil
}
