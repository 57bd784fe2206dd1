package pdfimport

import (
	"strings"

	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/models"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/money"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/patterns"
)

// Catalog indexes active catalog items for matching extracted lines.
type Catalog struct {
	byDescription map[string]models.Item
	byCode        map[string]models.Item
}

// NewCatalog indexes items by normalized description and item code.
// Inactive items are ignored; the first item wins on duplicate keys.
func NewCatalog(items []models.Item) *Catalog {
	c := &Catalog{
		byDescription: make(map[string]models.Item, len(items)),
		byCode:        make(map[string]models.Item, len(items)),
	}
	for _, item := range items {
		if !item.IsActive {
			continue
		}
		if key := patterns.Normalize(item.Description); key != "" {
			if _, dup := c.byDescription[key]; !dup {
				c.byDescription[key] = item
			}
		}
		if code := normalizeCode(item.ItemCode); code != "" {
			if _, dup := c.byCode[code]; !dup {
				c.byCode[code] = item
			}
		}
	}
	return c
}

// Match finds the catalog item for a line, by description first and then
// by the printed product code.
func (c *Catalog) Match(line ExtractedLineItem) (models.Item, bool) {
	if item, ok := c.byDescription[patterns.Normalize(line.Description)]; ok {
		return item, true
	}
	if line.MatchedProductCode != nil {
		if item, ok := c.byCode[normalizeCode(*line.MatchedProductCode)]; ok {
			return item, true
		}
	}
	return models.Item{}, false
}

// Observation converts a line into a pattern observation, attaching catalog
// details when the line matches. It returns false for lines without a
// description, a positive quantity and a positive unit price.
func (c *Catalog) Observation(line ExtractedLineItem) (patterns.Observation, bool) {
	unitPrice := line.UnitPrice
	if unitPrice <= 0 && line.Total != nil && line.Quantity > 0 {
		unitPrice = *line.Total / line.Quantity
	}
	if strings.TrimSpace(line.Description) == "" || line.Quantity <= 0 || unitPrice <= 0 {
		return patterns.Observation{}, false
	}

	obs := patterns.Observation{
		Description: line.Description,
		Quantity:    line.Quantity,
		UnitPrice:   unitPrice,
		Unit:        line.Unit,
	}

	item, ok := c.Match(line)
	if !ok {
		obs.ItemCode = line.MatchedProductCode
		return obs, true
	}

	code := item.ItemCode
	cost := item.CostPrice
	productID := item.ID
	obs.ItemCode = &code
	obs.CostPrice = &cost
	obs.ProductID = &productID
	obs.MarkupPercentage = money.MarkupPercent(item.SellPrice, item.CostPrice)
	if item.Unit != "" {
		unit := item.Unit
		obs.Unit = &unit
	}
	return obs, true
}

func normalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}
