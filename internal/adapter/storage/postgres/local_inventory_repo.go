package postgres

import (
	"context"
	"fmt"

	"commerce-sync-service/internal/core/domain"
)

// LocalInventoryRepo implements ports.LocalInventoryRepository.
type LocalInventoryRepo struct {
	pool Pool
}

// NewLocalInventoryRepo creates a new LocalInventoryRepo.
func NewLocalInventoryRepo(pool Pool) *LocalInventoryRepo {
	return &LocalInventoryRepo{pool: pool}
}

// ListItems returns every local inventory record, mapped or not.
// Reconciliation decides what to do with rows lacking a remote ID.
func (r *LocalInventoryRepo) ListItems(ctx context.Context) ([]domain.LocalItem, error) {
	query := `SELECT sku, remote_id, title, price, in_stock, stock_quantity
		FROM local_inventory
		ORDER BY sku`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list local inventory: %w", err)
	}
	defer rows.Close()

	var items []domain.LocalItem
	for rows.Next() {
		item := domain.LocalItem{}
		err := rows.Scan(
			&item.SKU, &item.RemoteID, &item.Title,
			&item.Price, &item.InStock, &item.StockQuantity,
		)
		if err != nil {
			return nil, fmt.Errorf("scan local inventory row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate local inventory rows: %w", err)
	}
	return items, nil
}
