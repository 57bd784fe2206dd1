package models

// Item is a catalog product. The pricing engine only reads items.
type Item struct {
	ID             string  `json:"id"`
	OrganizationID string  `json:"organizationId"`
	ItemCode       string  `json:"itemCode"`
	Description    string  `json:"description"`
	Unit           string  `json:"unit,omitempty"`
	SellPrice      float64 `json:"sellPrice"`
	CostPrice      float64 `json:"costPrice"`
	IsActive       bool    `json:"isActive"`
}
