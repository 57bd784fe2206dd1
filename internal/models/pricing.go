package models

import (
	"time"
)

// Pricing pattern sources.
const (
	SourceTradify  = "tradify"
	SourcePDFQuote = "pdf_quote"
	SourceQuotes   = "quotes"
)

// PricingPattern is an aggregated historical price and quantity statistic
// for one normalized item description.
type PricingPattern struct {
	UpdatedAt        time.Time `json:"updatedAt"`
	ItemCode         *string   `json:"itemCode,omitempty"`
	CostPrice        *float64  `json:"costPrice,omitempty"`
	MarkupPercentage *float64  `json:"markupPercentage,omitempty"`
	Unit             *string   `json:"unit,omitempty"`
	ProductID        *string   `json:"productId,omitempty"`
	ID               string    `json:"id"`
	OrganizationID   string    `json:"organizationId"`
	Source           string    `json:"source"`
	NormalizedKey    string    `json:"normalizedKey"`
	Description      string    `json:"description"`
	AvgUnitPrice     float64   `json:"avgUnitPrice"`
	AvgQuantity      float64   `json:"avgQuantity"`
	OccurrenceCount  int       `json:"occurrenceCount"`
}

// Import session statuses.
const (
	ImportStatusProcessing = "processing"
	ImportStatusCompleted  = "completed"
	ImportStatusFailed     = "failed"
)

// PricingImportSession summarizes one CSV or PDF import run.
type PricingImportSession struct {
	CreatedAt      time.Time  `json:"createdAt"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
	ErrorMessage   *string    `json:"errorMessage,omitempty"`
	ID             string     `json:"id"`
	OrganizationID string     `json:"organizationId"`
	Source         string     `json:"source"`
	Filename       string     `json:"filename"`
	Status         string     `json:"status"`
	TotalQuotes    int        `json:"totalQuotes"`
	AcceptedQuotes int        `json:"acceptedQuotes"`
	TotalLineItems int        `json:"totalLineItems"`
	UniquePatterns int        `json:"uniquePatterns"`
}

// HistoricalQuote is an accepted quote used as recent pricing context.
type HistoricalQuote struct {
	AcceptedAt time.Time            `json:"acceptedAt"`
	ID         string               `json:"id"`
	Total      float64              `json:"total"`
	Items      []HistoricalLineItem `json:"items"`
}

// HistoricalLineItem is one line of an accepted quote.
type HistoricalLineItem struct {
	ItemCode    *string `json:"itemCode,omitempty"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
}
