package models

// GeneratedQuoteItem is one priced line produced by the quote generator.
// It is returned for review and never persisted by the engine.
type GeneratedQuoteItem struct {
	ItemCode          *string            `json:"itemCode"`
	CostPrice         *float64           `json:"costPrice"`
	ProductID         *string            `json:"productId"`
	Unit              *string            `json:"unit,omitempty"`
	LaborCost         *float64           `json:"laborCost"`
	HistoricalPricing *HistoricalPricing `json:"historicalPricing"`
	Description       string             `json:"description"`
	MeasurementType   MeasurementType    `json:"measurementType"`
	Qty               float64            `json:"qty"`
	UnitCost          float64            `json:"unitCost"`
	Total             float64            `json:"total"`
	MeasurementValue  float64            `json:"measurementValue"`
	SortOrder         int                `json:"sortOrder"`
}

// HistoricalPricing is the pattern snapshot that influenced a line's price.
type HistoricalPricing struct {
	NormalizedKey   string  `json:"normalizedKey"`
	AvgUnitPrice    float64 `json:"avgUnitPrice"`
	AvgQuantity     float64 `json:"avgQuantity"`
	OccurrenceCount int     `json:"occurrenceCount"`
	CatalogPrice    float64 `json:"catalogPrice,omitempty"`
	Blended         bool    `json:"blended"`
}
