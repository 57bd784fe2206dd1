package quoting

import (
	"math"
	"sort"

	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/logger"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/models"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/money"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/patterns"
)

// Input is everything a single generation needs, already loaded.
type Input struct {
	Template   models.QuoteTemplate
	Mappings   []models.TemplateMapping
	Extraction models.MeasurementExtraction
	Catalog    []models.Item
	// History is nil when historical pricing was not requested.
	History *patterns.HistoricalContext
}

// Summary totals a generated quote.
type Summary struct {
	ItemCount    int     `json:"itemCount"`
	Subtotal     float64 `json:"subtotal"`
	WastePercent float64 `json:"wastePercent"`
	LaborMarkup  float64 `json:"laborMarkup"`
}

// Result is the generated line items plus summary.
type Result struct {
	Items   []models.GeneratedQuoteItem
	Summary Summary
	// PricingAdjusted reports whether any line was blended with history.
	PricingAdjusted bool
}

// Generator turns a template, its mappings and an extraction into priced
// line items. It only reads its input and is safe for concurrent use.
type Generator struct {
	resolver *Resolver
	log      *logger.Logger
}

// NewGenerator creates a Generator.
func NewGenerator(settings Settings, log *logger.Logger) *Generator {
	return &Generator{
		resolver: NewResolver(settings, log),
		log:      log,
	}
}

// Generate prices every active mapping in sortOrder. Mappings whose
// measurement is missing or zero produce no line.
//
// Quantities are displayed rounded to two decimals; line totals are computed
// from the unrounded quantity and labor cost, then rounded once.
func (g *Generator) Generate(in Input) Result {
	catalog := make(map[string]models.Item, len(in.Catalog))
	for _, item := range in.Catalog {
		catalog[item.ID] = item
	}

	mappings := make([]models.TemplateMapping, len(in.Mappings))
	copy(mappings, in.Mappings)
	sort.SliceStable(mappings, func(i, j int) bool {
		return mappings[i].SortOrder < mappings[j].SortOrder
	})

	waste := sanitizePercent(in.Template.WastePercent)
	markup := sanitizePercent(in.Template.LaborMarkupPercent)

	items := make([]models.GeneratedQuoteItem, 0, len(mappings))
	totals := make([]float64, 0, len(mappings))
	adjusted := false

	for _, m := range mappings {
		if !m.IsActive {
			continue
		}

		value := MeasurementValue(in.Extraction, m.MeasurementType)
		if value == nil || *value == 0 || math.IsNaN(*value) || math.IsInf(*value, 0) || *value < 0 {
			if g.log != nil {
				g.log.Debug("Skipping mapping without measurement", map[string]interface{}{
					"mapping_id":       m.ID,
					"measurement_type": m.MeasurementType,
				})
			}
			continue
		}

		qty := g.resolver.Quantity(m, *value, waste)
		price := g.resolver.ResolvePrice(m, catalog, in.History)
		labor := g.resolver.LaborCost(m, qty, markup)
		total := money.Round2(qty*price.UnitCost + labor)

		item := models.GeneratedQuoteItem{
			Description:       price.Description,
			Qty:               money.Round2(qty),
			UnitCost:          price.UnitCost,
			Total:             total,
			ItemCode:          price.ItemCode,
			CostPrice:         price.CostPrice,
			ProductID:         price.ProductID,
			Unit:              price.Unit,
			SortOrder:         m.SortOrder,
			MeasurementType:   m.MeasurementType,
			MeasurementValue:  *value,
			HistoricalPricing: price.Historical,
		}
		if labor != 0 {
			rounded := money.Round2(labor)
			item.LaborCost = &rounded
		}
		if price.Blended {
			adjusted = true
		}

		items = append(items, item)
		totals = append(totals, total)
	}

	return Result{
		Items: items,
		Summary: Summary{
			ItemCount:    len(items),
			Subtotal:     money.Round2(money.Sum(totals...)),
			WastePercent: waste,
			LaborMarkup:  markup,
		},
		PricingAdjusted: adjusted,
	}
}

func sanitizePercent(p float64) float64 {
	if p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
		return 0
	}
	return p
}
