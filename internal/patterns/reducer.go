// Package patterns aggregates historical quote line items into pricing
// patterns keyed by normalized description.
package patterns

import (
	"sort"
	"time"

	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/models"
)

// Observation is one historical line item fed into a pattern.
type Observation struct {
	ItemCode         *string
	CostPrice        *float64
	MarkupPercentage *float64
	Unit             *string
	ProductID        *string
	Description      string
	Quantity         float64
	UnitPrice        float64
}

// Observe folds one observation into an existing pattern and returns the
// updated pattern. existing may be nil for the first observation of a key.
// The running averages follow newAvg = (oldAvg*oldCount + value)/(oldCount+1).
func Observe(existing *models.PricingPattern, obs Observation) models.PricingPattern {
	if existing == nil || existing.OccurrenceCount <= 0 {
		p := models.PricingPattern{
			NormalizedKey:   Normalize(obs.Description),
			Description:     obs.Description,
			AvgUnitPrice:    obs.UnitPrice,
			AvgQuantity:     obs.Quantity,
			OccurrenceCount: 1,
			UpdatedAt:       time.Now().UTC(),
		}
		if existing != nil {
			p.ID = existing.ID
			p.OrganizationID = existing.OrganizationID
			p.Source = existing.Source
		}
		applyOverrides(&p, obs)
		return p
	}

	p := *existing
	n := float64(p.OccurrenceCount)
	p.AvgUnitPrice = (p.AvgUnitPrice*n + obs.UnitPrice) / (n + 1)
	p.AvgQuantity = (p.AvgQuantity*n + obs.Quantity) / (n + 1)
	p.OccurrenceCount++
	p.UpdatedAt = time.Now().UTC()
	if p.Description == "" {
		p.Description = obs.Description
	}
	applyOverrides(&p, obs)
	return p
}

// applyOverrides keeps the most recent non-empty catalog attributes.
func applyOverrides(p *models.PricingPattern, obs Observation) {
	if obs.ItemCode != nil && *obs.ItemCode != "" {
		p.ItemCode = obs.ItemCode
	}
	if obs.CostPrice != nil {
		p.CostPrice = obs.CostPrice
	}
	if obs.MarkupPercentage != nil {
		p.MarkupPercentage = obs.MarkupPercentage
	}
	if obs.Unit != nil && *obs.Unit != "" {
		p.Unit = obs.Unit
	}
	if obs.ProductID != nil && *obs.ProductID != "" {
		p.ProductID = obs.ProductID
	}
}

// Merge combines two aggregates of the same key, weighting each average by
// its occurrence count. Overrides from b win when present.
func Merge(a, b models.PricingPattern) models.PricingPattern {
	if a.OccurrenceCount <= 0 {
		return b
	}
	if b.OccurrenceCount <= 0 {
		return a
	}

	na, nb := float64(a.OccurrenceCount), float64(b.OccurrenceCount)
	out := a
	out.AvgUnitPrice = (a.AvgUnitPrice*na + b.AvgUnitPrice*nb) / (na + nb)
	out.AvgQuantity = (a.AvgQuantity*na + b.AvgQuantity*nb) / (na + nb)
	out.OccurrenceCount = a.OccurrenceCount + b.OccurrenceCount
	if b.UpdatedAt.After(out.UpdatedAt) {
		out.UpdatedAt = b.UpdatedAt
	}
	applyOverrides(&out, Observation{
		ItemCode:         b.ItemCode,
		CostPrice:        b.CostPrice,
		MarkupPercentage: b.MarkupPercentage,
		Unit:             b.Unit,
		ProductID:        b.ProductID,
	})
	return out
}

// Aggregator accumulates observations for a single import pass.
// It is not safe for concurrent use.
type Aggregator struct {
	patterns map[string]*models.PricingPattern
}

// NewAggregator creates an empty aggregator, optionally seeded with existing patterns.
func NewAggregator(seed ...models.PricingPattern) *Aggregator {
	a := &Aggregator{patterns: make(map[string]*models.PricingPattern, len(seed))}
	for i := range seed {
		p := seed[i]
		a.patterns[p.NormalizedKey] = &p
	}
	return a
}

// Add observes one line item. It returns the key touched, or false when the
// description normalizes to an empty key.
func (a *Aggregator) Add(obs Observation) (string, bool) {
	key := Normalize(obs.Description)
	if key == "" {
		return "", false
	}
	updated := Observe(a.patterns[key], obs)
	a.patterns[key] = &updated
	return key, true
}

// Get returns the current aggregate for key.
func (a *Aggregator) Get(key string) (models.PricingPattern, bool) {
	p, ok := a.patterns[key]
	if !ok {
		return models.PricingPattern{}, false
	}
	return *p, true
}

// Len reports the number of distinct keys.
func (a *Aggregator) Len() int {
	return len(a.patterns)
}

// Patterns returns all aggregates ordered by key.
func (a *Aggregator) Patterns() []models.PricingPattern {
	out := make([]models.PricingPattern, 0, len(a.patterns))
	for _, p := range a.patterns {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].NormalizedKey < out[j].NormalizedKey
	})
	return out
}
