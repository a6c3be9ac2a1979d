package domain

// LocalItem is an inventory record in the integrator's own system.
// RemoteID links it to the upstream item; empty means no mapping has been
// established and the item is skipped by reconciliation.
type LocalItem struct {
	SKU           string  `json:"sku"`
	RemoteID      string  `json:"remote_id"`
	Title         string  `json:"title"`
	Price         float64 `json:"price"` // major currency units, converted to cents by rounding
	InStock       bool    `json:"in_stock"`
	StockQuantity int     `json:"stock_quantity"`
}

// RemoteItem is the upstream platform's view of an inventory item.
type RemoteItem struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	PriceCents int64  `json:"price_cents"`
	Available  bool   `json:"available"`
}

// UpdateKind discriminates reconciliation update operations.
type UpdateKind string

const (
	UpdateAvailability UpdateKind = "availability"
	UpdatePrice        UpdateKind = "price"
)

// UpdateOp is a single remote write produced by reconciliation.
// Exactly one of Available/PriceCents is meaningful, per Kind.
type UpdateOp struct {
	ItemID     string     `json:"item_id"`
	Kind       UpdateKind `json:"kind"`
	Available  bool       `json:"available,omitempty"`
	PriceCents int64      `json:"price_cents,omitempty"`
}
