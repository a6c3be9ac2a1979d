package service

import (
	"testing"
	"time"

	"commerce-sync-service/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregator_EmptyInput(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{})

	summary := agg.Aggregate(nil)

	assert.Equal(t, int64(0), summary.TotalCents)
	assert.Equal(t, 0, summary.Count)
	assert.Equal(t, int64(0), summary.AverageCents, "average must be 0 when count is 0")
	assert.Empty(t, summary.Breakdown)
	assert.Empty(t, summary.Top)
}

func TestAggregator_ProductsOnly_ExcludesTips(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{})

	purchases := []domain.Purchase{
		{
			ID:        "pur_1",
			Timestamp: time.Date(2026, 8, 31, 14, 0, 0, 0, time.UTC),
			LineItems: []domain.LineItem{
				{Type: domain.LineTypeProduct, ProductTitle: "Espresso", FinalAmountCents: 14500},
				{Type: domain.LineTypeTip, FinalAmountCents: 2000},
			},
		},
	}

	summary := agg.Aggregate(purchases)

	assert.Equal(t, int64(14500), summary.TotalCents, "tips are not eligible by default")
	assert.Equal(t, 1, summary.Count)
	assert.Equal(t, int64(14500), summary.AverageCents)
}

func TestAggregator_BreakdownByHour(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{})

	purchases := []domain.Purchase{
		{
			Timestamp: time.Date(2026, 8, 31, 9, 15, 0, 0, time.UTC),
			LineItems: []domain.LineItem{{Type: domain.LineTypeProduct, ProductTitle: "Latte", FinalAmountCents: 500}},
		},
		{
			Timestamp: time.Date(2026, 8, 31, 9, 45, 0, 0, time.UTC),
			LineItems: []domain.LineItem{{Type: domain.LineTypeProduct, ProductTitle: "Latte", FinalAmountCents: 500}},
		},
		{
			Timestamp: time.Date(2026, 8, 31, 17, 5, 0, 0, time.UTC),
			LineItems: []domain.LineItem{{Type: domain.LineTypeProduct, ProductTitle: "Stout", FinalAmountCents: 700}},
		},
	}

	summary := agg.Aggregate(purchases)

	assert.Equal(t, int64(1700), summary.TotalCents)
	assert.Equal(t, 3, summary.Count)
	assert.Equal(t, map[string]int64{"9": 1000, "17": 700}, summary.Breakdown)
}

func TestAggregator_AverageRoundedToNearestCent(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{})

	// 100 + 101 = 201 over 2 purchases -> 100.5 -> rounds to 101.
	purchases := []domain.Purchase{
		{LineItems: []domain.LineItem{{Type: domain.LineTypeProduct, ProductTitle: "A", FinalAmountCents: 100}}},
		{LineItems: []domain.LineItem{{Type: domain.LineTypeProduct, ProductTitle: "B", FinalAmountCents: 101}}},
	}

	summary := agg.Aggregate(purchases)
	assert.Equal(t, int64(101), summary.AverageCents)
}

func TestAggregator_TopN_RankedByRevenue_TiesByFirstSeen(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{TopN: 2})

	purchases := []domain.Purchase{
		{LineItems: []domain.LineItem{
			{Type: domain.LineTypeProduct, ProductTitle: "Flat White", FinalAmountCents: 400},
			{Type: domain.LineTypeProduct, ProductTitle: "Croissant", FinalAmountCents: 300},
		}},
		{LineItems: []domain.LineItem{
			{Type: domain.LineTypeProduct, ProductTitle: "Muffin", FinalAmountCents: 300},
			{Type: domain.LineTypeProduct, ProductTitle: "Flat White", FinalAmountCents: 400},
		}},
	}

	summary := agg.Aggregate(purchases)

	require.Len(t, summary.Top, 2)
	assert.Equal(t, RankedEntry{Key: "Flat White", AmountCents: 800}, summary.Top[0])
	// Croissant and Muffin tie at 300; Croissant was seen first.
	assert.Equal(t, RankedEntry{Key: "Croissant", AmountCents: 300}, summary.Top[1])
}

func TestAggregator_CustomEligibilityPredicate(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{
		Eligible: func(li domain.LineItem) bool {
			return li.Type == domain.LineTypeProduct || li.Type == domain.LineTypeTip
		},
	})

	purchases := []domain.Purchase{
		{LineItems: []domain.LineItem{
			{Type: domain.LineTypeProduct, ProductTitle: "Espresso", FinalAmountCents: 14500},
			{Type: domain.LineTypeTip, FinalAmountCents: 2000},
			{Type: domain.LineTypeFee, FinalAmountCents: 150},
		}},
	}

	summary := agg.Aggregate(purchases)
	assert.Equal(t, int64(16500), summary.TotalCents)
}
