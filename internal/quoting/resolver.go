package quoting

import (
	"math"
	"strconv"
	"sync"

	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/formula"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/logger"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/models"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/money"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/patterns"
)

// Settings are the tunable constants of the pricing rules.
type Settings struct {
	// BlendMinOccurrences is the sample size a pattern needs before it is
	// blended into a catalog price.
	BlendMinOccurrences int
	// CatalogWeight is the catalog share of a blended price.
	CatalogWeight float64
	// DefaultLaborRate applies when a mapping has no labor rate.
	DefaultLaborRate float64
}

// DefaultSettings returns the historical pricing constants.
func DefaultSettings() Settings {
	return Settings{
		BlendMinOccurrences: 5,
		CatalogWeight:       0.85,
		DefaultLaborRate:    75,
	}
}

// Resolver computes quantities and prices for single mappings.
type Resolver struct {
	settings Settings
	log      *logger.Logger
	formulas sync.Map // source -> *formula.Formula
}

// NewResolver creates a Resolver. Invalid settings fall back to defaults.
func NewResolver(settings Settings, log *logger.Logger) *Resolver {
	def := DefaultSettings()
	if settings.BlendMinOccurrences < 1 {
		settings.BlendMinOccurrences = def.BlendMinOccurrences
	}
	if settings.CatalogWeight < 0 || settings.CatalogWeight > 1 || math.IsNaN(settings.CatalogWeight) {
		settings.CatalogWeight = def.CatalogWeight
	}
	if settings.DefaultLaborRate <= 0 {
		settings.DefaultLaborRate = def.DefaultLaborRate
	}
	return &Resolver{settings: settings, log: log}
}

// Quantity returns the billable quantity for a mapping given its measurement
// value, including waste when the mapping applies it.
func (r *Resolver) Quantity(m models.TemplateMapping, measurement, wastePercent float64) float64 {
	var qty float64

	switch m.CalculationType {
	case models.CalculationPerCoverage:
		coverage := 1.0
		if m.CoveragePerUnit != nil && *m.CoveragePerUnit > 0 && !math.IsInf(*m.CoveragePerUnit, 0) {
			coverage = *m.CoveragePerUnit
		}
		qty = ceilUnits(measurement / coverage)
	case models.CalculationFixed:
		qty = 1
	case models.CalculationFormula:
		qty = r.formulaQuantity(m, measurement)
	default:
		qty = measurement
	}

	if m.ApplyWaste {
		qty = ApplyWaste(qty, wastePercent)
	}
	return qty
}

// ApplyWaste inflates qty by wastePercent and rounds up to a whole unit.
func ApplyWaste(qty, wastePercent float64) float64 {
	if wastePercent < 0 || math.IsNaN(wastePercent) {
		wastePercent = 0
	}
	return ceilUnits(qty * (1 + wastePercent/100))
}

// ceilUnits rounds up to a whole unit after dropping float noise, so
// 10 * 1.1 orders 11 units rather than 12.
func ceilUnits(v float64) float64 {
	return math.Ceil(money.RoundTo(v, 9))
}

// formulaQuantity evaluates the mapping formula, falling back to the raw
// measurement when the formula is missing, invalid, or yields an unusable result.
func (r *Resolver) formulaQuantity(m models.TemplateMapping, measurement float64) float64 {
	if m.CustomFormula == nil || *m.CustomFormula == "" {
		r.warnFallback(m, measurement, "mapping has no formula")
		return measurement
	}

	f, err := r.compiled(*m.CustomFormula)
	if err != nil {
		r.warnFallback(m, measurement, err.Error())
		return measurement
	}

	v, err := f.Eval(measurement)
	if err != nil {
		r.warnFallback(m, measurement, err.Error())
		return measurement
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		r.warnFallback(m, measurement, "formula result "+strconv.FormatFloat(v, 'g', -1, 64)+" is not a usable quantity")
		return measurement
	}
	return v
}

func (r *Resolver) compiled(source string) (*formula.Formula, error) {
	if f, ok := r.formulas.Load(source); ok {
		return f.(*formula.Formula), nil
	}
	f, err := formula.Compile(source)
	if err != nil {
		return nil, err
	}
	r.formulas.Store(source, f)
	return f, nil
}

func (r *Resolver) warnFallback(m models.TemplateMapping, measurement float64, reason string) {
	if r.log == nil {
		return
	}
	r.log.Warn("Formula fallback to raw measurement", map[string]interface{}{
		"mapping_id":  m.ID,
		"template_id": m.TemplateID,
		"measurement": measurement,
		"reason":      reason,
	})
}

// Price is the outcome of price resolution for one mapping.
type Price struct {
	ItemCode    *string
	CostPrice   *float64
	ProductID   *string
	Unit        *string
	Historical  *models.HistoricalPricing
	Description string
	UnitCost    float64
	Blended     bool
}

// ResolvePrice picks the unit cost for a mapping:
// an active catalog product (blended with history when the sample is large
// enough), else a historical average for the mapping description when no
// product is linked, else the mapping's static unit price.
func (r *Resolver) ResolvePrice(m models.TemplateMapping, catalog map[string]models.Item, history *patterns.HistoricalContext) Price {
	price := Price{
		Description: m.ProductDescription,
		UnitCost:    m.UnitPrice,
	}

	if m.ProductID != nil && *m.ProductID != "" {
		item, ok := catalog[*m.ProductID]
		if !ok || !item.IsActive {
			// Stale product reference, keep the mapping's own values.
			return price
		}

		price.UnitCost = item.SellPrice
		if item.Description != "" {
			price.Description = item.Description
		}
		productID := item.ID
		cost := item.CostPrice
		price.ProductID = &productID
		price.CostPrice = &cost
		if item.ItemCode != "" {
			code := item.ItemCode
			price.ItemCode = &code
		}
		if item.Unit != "" {
			unit := item.Unit
			price.Unit = &unit
		}

		key := patterns.Normalize(item.ItemCode)
		if p, ok := history.Lookup(key); ok && p.OccurrenceCount >= r.settings.BlendMinOccurrences {
			catalogPrice := price.UnitCost
			price.UnitCost = money.Blend(catalogPrice, p.AvgUnitPrice, r.settings.CatalogWeight)
			price.Blended = true
			price.Historical = snapshot(p, catalogPrice, true)
		}
		return price
	}

	key := patterns.Normalize(m.ProductDescription)
	if p, ok := history.Lookup(key); ok && p.AvgUnitPrice > 0 {
		price.UnitCost = p.AvgUnitPrice
		price.Historical = snapshot(p, 0, false)
		if p.ItemCode != nil {
			price.ItemCode = p.ItemCode
		}
		if p.CostPrice != nil {
			price.CostPrice = p.CostPrice
		}
	}
	return price
}

func snapshot(p models.PricingPattern, catalogPrice float64, blended bool) *models.HistoricalPricing {
	return &models.HistoricalPricing{
		NormalizedKey:   p.NormalizedKey,
		AvgUnitPrice:    money.Round2(p.AvgUnitPrice),
		AvgQuantity:     money.Round2(p.AvgQuantity),
		OccurrenceCount: p.OccurrenceCount,
		CatalogPrice:    catalogPrice,
		Blended:         blended,
	}
}

// LaborCost returns the labor cost of qty units, or 0 when the mapping has no
// labor minutes.
func (r *Resolver) LaborCost(m models.TemplateMapping, qty, laborMarkupPercent float64) float64 {
	if m.LaborMinutesPerUnit == nil || *m.LaborMinutesPerUnit <= 0 {
		return 0
	}
	rate := r.settings.DefaultLaborRate
	if m.LaborRate != nil && *m.LaborRate > 0 {
		rate = *m.LaborRate
	}
	if laborMarkupPercent < 0 || math.IsNaN(laborMarkupPercent) {
		laborMarkupPercent = 0
	}
	hours := *m.LaborMinutesPerUnit * qty / 60
	return hours * rate * (1 + laborMarkupPercent/100)
}
