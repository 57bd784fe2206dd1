package patterns

import (
	"math"

	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/models"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/money"
)

// HistoricalContext is the consolidated pricing history used for one
// generation request. It is built on demand and never persisted.
type HistoricalContext struct {
	patterns       map[string]models.PricingPattern
	AvgQuoteTotal  float64
	AvgItemCount   float64
	QuotesAnalyzed int
}

// BuildContext merges stored per-source patterns with the line items of
// recent accepted quotes into a single keyed view.
func BuildContext(stored []models.PricingPattern, recent []models.HistoricalQuote) *HistoricalContext {
	ctx := &HistoricalContext{
		patterns: make(map[string]models.PricingPattern, len(stored)),
	}

	for _, p := range stored {
		if p.NormalizedKey == "" {
			continue
		}
		if existing, ok := ctx.patterns[p.NormalizedKey]; ok {
			ctx.patterns[p.NormalizedKey] = Merge(existing, p)
			continue
		}
		ctx.patterns[p.NormalizedKey] = p
	}

	var totalSum float64
	var itemSum int
	for _, q := range recent {
		totalSum += q.Total
		itemSum += len(q.Items)
		for _, item := range q.Items {
			key := Normalize(item.Description)
			if key == "" || item.UnitPrice <= 0 {
				continue
			}
			var existing *models.PricingPattern
			if p, ok := ctx.patterns[key]; ok {
				existing = &p
			}
			ctx.patterns[key] = Observe(existing, Observation{
				Description: item.Description,
				ItemCode:    item.ItemCode,
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice,
			})
		}
	}

	ctx.QuotesAnalyzed = len(recent)
	if len(recent) > 0 {
		ctx.AvgQuoteTotal = totalSum / float64(len(recent))
		ctx.AvgItemCount = float64(itemSum) / float64(len(recent))
	}
	return ctx
}

// Lookup returns the pattern for a normalized key.
func (c *HistoricalContext) Lookup(key string) (models.PricingPattern, bool) {
	if c == nil || key == "" {
		return models.PricingPattern{}, false
	}
	p, ok := c.patterns[key]
	return p, ok
}

// PatternCount reports the number of distinct keys in the context.
func (c *HistoricalContext) PatternCount() int {
	if c == nil {
		return 0
	}
	return len(c.patterns)
}

// ContextSummary is the sanitized view of a historical context returned to clients.
type ContextSummary struct {
	AvgQuoteTotal   float64 `json:"avgQuoteTotal"`
	AvgItemCount    float64 `json:"avgItemCount"`
	QuotesAnalyzed  int     `json:"quotesAnalyzed"`
	PatternCount    int     `json:"patternCount"`
	PricingAdjusted bool    `json:"pricingAdjusted"`
}

// Summary rounds the context averages for display.
func (c *HistoricalContext) Summary(pricingAdjusted bool) ContextSummary {
	return ContextSummary{
		AvgQuoteTotal:   money.Round2(c.AvgQuoteTotal),
		AvgItemCount:    math.Round(c.AvgItemCount),
		QuotesAnalyzed:  c.QuotesAnalyzed,
		PatternCount:    c.PatternCount(),
		PricingAdjusted: pricingAdjusted,
	}
}
