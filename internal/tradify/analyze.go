package tradify

import (
	"strconv"
	"strings"

	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/models"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/patterns"
)

// acceptedStatuses are quote statuses whose prices the customer agreed to.
var acceptedStatuses = map[string]bool{
	"accepted":  true,
	"approved":  true,
	"won":       true,
	"invoiced":  true,
	"completed": true,
}

// IsAccepted reports whether a quote status counts as accepted.
func IsAccepted(status string) bool {
	return acceptedStatuses[strings.ToLower(strings.TrimSpace(status))]
}

// Analysis is the outcome of folding a sheet into pricing patterns.
type Analysis struct {
	Patterns       []models.PricingPattern
	TotalQuotes    int
	AcceptedQuotes int
	TotalLineItems int
	UniquePatterns int
	SkippedRows    int
}

// Analyze folds every usable line of an accepted quote into patterns.
// A line is usable when it has a description and a positive quantity and
// unit price. Quantity defaults to 1 when the export has no quantity column,
// and the unit price falls back to amount / quantity.
func Analyze(s *Sheet) Analysis {
	agg := patterns.NewAggregator()
	quotes := make(map[string]bool)
	accepted := make(map[string]bool)
	var a Analysis

	for _, row := range s.Rows {
		quoteNo := s.Value(row, ColumnQuoteNo)
		if quoteNo != "" {
			quotes[quoteNo] = true
		}
		if !IsAccepted(s.Value(row, ColumnStatus)) {
			a.SkippedRows++
			continue
		}

		description := s.Value(row, ColumnDescription)
		qty := 1.0
		if s.Has(ColumnQuantity) {
			qty = ParseNumber(s.Value(row, ColumnQuantity))
		}
		unitPrice := ParseNumber(s.Value(row, ColumnUnitPrice))
		if unitPrice == 0 && qty > 0 {
			unitPrice = ParseNumber(s.Value(row, ColumnAmount)) / qty
		}

		if strings.TrimSpace(description) == "" || qty <= 0 || unitPrice <= 0 {
			a.SkippedRows++
			continue
		}

		if _, ok := agg.Add(patterns.Observation{
			Description: description,
			Quantity:    qty,
			UnitPrice:   unitPrice,
		}); !ok {
			a.SkippedRows++
			continue
		}
		if quoteNo != "" {
			accepted[quoteNo] = true
		}
		a.TotalLineItems++
	}

	a.Patterns = agg.Patterns()
	a.TotalQuotes = len(quotes)
	a.AcceptedQuotes = len(accepted)
	a.UniquePatterns = agg.Len()
	return a
}

// ParseNumber reads a money or quantity cell such as "$1,250.50".
// Unreadable values are 0.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
