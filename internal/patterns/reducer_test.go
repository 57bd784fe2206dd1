package patterns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/models"
)

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func TestObserve_RunningAverage(t *testing.T) {
	var p *models.PricingPattern
	for _, price := range []float64{10, 20, 30} {
		next := Observe(p, Observation{Description: "Ridge Capping", Quantity: 2, UnitPrice: price})
		p = &next
	}

	require.NotNil(t, p)
	assert.Equal(t, "ridge capping", p.NormalizedKey)
	assert.Equal(t, 20.0, p.AvgUnitPrice)
	assert.Equal(t, 2.0, p.AvgQuantity)
	assert.Equal(t, 3, p.OccurrenceCount)
}

func TestObserve_FirstObservation(t *testing.T) {
	p := Observe(nil, Observation{
		Description: "Valley Iron",
		Quantity:    4,
		UnitPrice:   38.5,
		ItemCode:    strPtr("VAL-01"),
		Unit:        strPtr("lm"),
	})

	assert.Equal(t, "valley iron", p.NormalizedKey)
	assert.Equal(t, "Valley Iron", p.Description)
	assert.Equal(t, 38.5, p.AvgUnitPrice)
	assert.Equal(t, 4.0, p.AvgQuantity)
	assert.Equal(t, 1, p.OccurrenceCount)
	require.NotNil(t, p.ItemCode)
	assert.Equal(t, "VAL-01", *p.ItemCode)
	require.NotNil(t, p.Unit)
	assert.Equal(t, "lm", *p.Unit)
}

func TestObserve_DoesNotMutateInput(t *testing.T) {
	existing := models.PricingPattern{NormalizedKey: "gutter", AvgUnitPrice: 10, AvgQuantity: 1, OccurrenceCount: 1}

	updated := Observe(&existing, Observation{Description: "Gutter", Quantity: 3, UnitPrice: 30})

	assert.Equal(t, 10.0, existing.AvgUnitPrice)
	assert.Equal(t, 1, existing.OccurrenceCount)
	assert.Equal(t, 20.0, updated.AvgUnitPrice)
	assert.Equal(t, 2.0, updated.AvgQuantity)
	assert.Equal(t, 2, updated.OccurrenceCount)
}

func TestObserve_KeepsIdentityAndLatestOverrides(t *testing.T) {
	existing := models.PricingPattern{
		ID:              "pat-1",
		OrganizationID:  "org-1",
		Source:          models.SourcePDFQuote,
		NormalizedKey:   "ridge capping",
		Description:     "Ridge Capping",
		AvgUnitPrice:    40,
		AvgQuantity:     10,
		OccurrenceCount: 1,
		ItemCode:        strPtr("RC-OLD"),
		CostPrice:       floatPtr(20),
	}

	updated := Observe(&existing, Observation{
		Description: "ridge capping",
		Quantity:    10,
		UnitPrice:   50,
		ItemCode:    strPtr("RC-NEW"),
	})

	assert.Equal(t, "pat-1", updated.ID)
	assert.Equal(t, "org-1", updated.OrganizationID)
	assert.Equal(t, models.SourcePDFQuote, updated.Source)
	assert.Equal(t, "Ridge Capping", updated.Description)
	assert.Equal(t, "RC-NEW", *updated.ItemCode)
	assert.Equal(t, 20.0, *updated.CostPrice)
}

func TestMerge(t *testing.T) {
	a := models.PricingPattern{NormalizedKey: "k", AvgUnitPrice: 10, AvgQuantity: 1, OccurrenceCount: 1}
	b := models.PricingPattern{NormalizedKey: "k", AvgUnitPrice: 40, AvgQuantity: 4, OccurrenceCount: 3}

	m := Merge(a, b)

	assert.Equal(t, 32.5, m.AvgUnitPrice)
	assert.Equal(t, 3.25, m.AvgQuantity)
	assert.Equal(t, 4, m.OccurrenceCount)
}

func TestMerge_EmptySide(t *testing.T) {
	a := models.PricingPattern{NormalizedKey: "k", AvgUnitPrice: 10, OccurrenceCount: 2}

	assert.Equal(t, a, Merge(a, models.PricingPattern{}))
	assert.Equal(t, a, Merge(models.PricingPattern{}, a))
}

func TestMerge_MatchesSequentialObservation(t *testing.T) {
	prices := []float64{12, 18, 25, 31, 44}

	var seq *models.PricingPattern
	for _, v := range prices {
		next := Observe(seq, Observation{Description: "k", Quantity: 1, UnitPrice: v})
		seq = &next
	}

	var left, right *models.PricingPattern
	for _, v := range prices[:2] {
		next := Observe(left, Observation{Description: "k", Quantity: 1, UnitPrice: v})
		left = &next
	}
	for _, v := range prices[2:] {
		next := Observe(right, Observation{Description: "k", Quantity: 1, UnitPrice: v})
		right = &next
	}

	merged := Merge(*left, *right)
	assert.InDelta(t, seq.AvgUnitPrice, merged.AvgUnitPrice, 1e-9)
	assert.Equal(t, seq.OccurrenceCount, merged.OccurrenceCount)
}

func TestAggregator(t *testing.T) {
	agg := NewAggregator()

	key, ok := agg.Add(Observation{Description: "Roof Sheets", Quantity: 10, UnitPrice: 10})
	require.True(t, ok)
	assert.Equal(t, "roof sheets", key)

	agg.Add(Observation{Description: "ROOF SHEETS!", Quantity: 20, UnitPrice: 20})
	agg.Add(Observation{Description: "Ridge Cap", Quantity: 5, UnitPrice: 15})

	_, ok = agg.Add(Observation{Description: "***", Quantity: 1, UnitPrice: 1})
	assert.False(t, ok)

	assert.Equal(t, 2, agg.Len())

	p, ok := agg.Get("roof sheets")
	require.True(t, ok)
	assert.Equal(t, 15.0, p.AvgUnitPrice)
	assert.Equal(t, 2, p.OccurrenceCount)

	all := agg.Patterns()
	require.Len(t, all, 2)
	assert.Equal(t, "ridge cap", all[0].NormalizedKey)
	assert.Equal(t, "roof sheets", all[1].NormalizedKey)
}

func TestAggregator_Seeded(t *testing.T) {
	agg := NewAggregator(models.PricingPattern{NormalizedKey: "gutter", AvgUnitPrice: 10, AvgQuantity: 1, OccurrenceCount: 1})

	agg.Add(Observation{Description: "Gutter", Quantity: 1, UnitPrice: 20})

	p, ok := agg.Get("gutter")
	require.True(t, ok)
	assert.Equal(t, 15.0, p.AvgUnitPrice)
	assert.Equal(t, 2, p.OccurrenceCount)
}
