package service

import (
	"math"
	"sort"
	"strconv"

	"commerce-sync-service/internal/core/domain"
)

// RankedEntry is one row of a top-N ranking.
type RankedEntry struct {
	Key         string `json:"key"`
	AmountCents int64  `json:"amount_cents"`
}

// Summary is the result of folding a purchase sequence. All amounts are in
// the smallest currency unit.
type Summary struct {
	TotalCents   int64            `json:"total_cents"`
	Count        int              `json:"count"`
	AverageCents int64            `json:"average_cents"`
	Breakdown    map[string]int64 `json:"breakdown"`
	Top          []RankedEntry    `json:"top"`
}

// AggregatorConfig customizes eligibility, bucketing, and ranking.
// Nil fields fall back to defaults: product lines only, hour-of-day
// buckets, ranking by product title, top 10.
type AggregatorConfig struct {
	Eligible  func(domain.LineItem) bool
	BucketKey func(domain.Purchase) string
	RankKey   func(domain.LineItem) string
	TopN      int
}

// Aggregator folds purchases into summary metrics. Pure: no I/O, no shared
// state; the caller owns the result.
type Aggregator struct {
	cfg AggregatorConfig
}

// NewAggregator creates an aggregator with cfg, applying defaults for nil
// fields.
func NewAggregator(cfg AggregatorConfig) *Aggregator {
	if cfg.Eligible == nil {
		cfg.Eligible = func(li domain.LineItem) bool {
			return li.Type == domain.LineTypeProduct
		}
	}
	if cfg.BucketKey == nil {
		cfg.BucketKey = func(p domain.Purchase) string {
			return strconv.Itoa(p.Timestamp.Hour())
		}
	}
	if cfg.RankKey == nil {
		cfg.RankKey = func(li domain.LineItem) string {
			return li.ProductTitle
		}
	}
	if cfg.TopN <= 0 {
		cfg.TopN = 10
	}
	return &Aggregator{cfg: cfg}
}

// Aggregate folds purchases into a Summary. The average is total/count
// rounded to the nearest cent, and 0 when count is 0. Ranking ties are
// broken by first-encountered order.
func (a *Aggregator) Aggregate(purchases []domain.Purchase) Summary {
	summary := Summary{
		Breakdown: make(map[string]int64),
		Top:       []RankedEntry{},
	}

	rankTotals := make(map[string]int64)
	rankFirstSeen := make(map[string]int)
	seen := 0

	for _, p := range purchases {
		summary.Count++
		bucket := a.cfg.BucketKey(p)

		for _, li := range p.LineItems {
			if !a.cfg.Eligible(li) {
				continue
			}
			summary.TotalCents += li.FinalAmountCents
			summary.Breakdown[bucket] += li.FinalAmountCents

			key := a.cfg.RankKey(li)
			if _, ok := rankTotals[key]; !ok {
				rankFirstSeen[key] = seen
				seen++
			}
			rankTotals[key] += li.FinalAmountCents
		}
	}

	if summary.Count > 0 {
		summary.AverageCents = int64(math.Round(float64(summary.TotalCents) / float64(summary.Count)))
	}

	entries := make([]RankedEntry, 0, len(rankTotals))
	for key, amount := range rankTotals {
		entries = append(entries, RankedEntry{Key: key, AmountCents: amount})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].AmountCents != entries[j].AmountCents {
			return entries[i].AmountCents > entries[j].AmountCents
		}
		return rankFirstSeen[entries[i].Key] < rankFirstSeen[entries[j].Key]
	})
	if len(entries) > a.cfg.TopN {
		entries = entries[:a.cfg.TopN]
	}
	summary.Top = entries

	return summary
}
