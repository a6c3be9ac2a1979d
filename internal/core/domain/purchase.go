package domain

import "time"

// LineType classifies a purchase line item.
type LineType string

const (
	LineTypeProduct LineType = "product"
	LineTypeTip     LineType = "tip"
	LineTypeFee     LineType = "fee"
)

// LineItem is a single line of a purchase. All monetary amounts are
// integers in the smallest currency unit; VAT rates are basis points.
type LineItem struct {
	Type             LineType `json:"type"`
	ProductTitle     string   `json:"product_title"`
	Quantity         int      `json:"quantity"`
	UnitPriceCents   int64    `json:"unit_price_cents"`
	FinalAmountCents int64    `json:"final_amount_cents"`
	VATRateBPS       int      `json:"vat_rate_bps"`
}

// Purchase is a completed transaction fetched from the upstream API or
// carried in a purchase.confirmed event payload.
type Purchase struct {
	ID         string     `json:"id"`
	LocationID string     `json:"location_id"`
	Timestamp  time.Time  `json:"timestamp"`
	Currency   string     `json:"currency"`
	LineItems  []LineItem `json:"line_items"`
}
