package repository

import (
	"context"
	"fmt"

	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/database"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/models"
)

// QuoteHistoryRepository reads previously accepted quotes.
type QuoteHistoryRepository interface {
	// RecentAccepted returns up to limit accepted quotes, newest first,
	// each with its line items in order.
	RecentAccepted(ctx context.Context, organizationID string, limit int) ([]models.HistoricalQuote, error)
}

type quoteHistoryRepository struct {
	db *database.Database
}

// NewQuoteHistoryRepository creates a new instance of QuoteHistoryRepository.
func NewQuoteHistoryRepository(db *database.Database) QuoteHistoryRepository {
	return &quoteHistoryRepository{db: db}
}

func (r *quoteHistoryRepository) RecentAccepted(ctx context.Context, organizationID string, limit int) ([]models.HistoricalQuote, error) {
	if limit <= 0 {
		return []models.HistoricalQuote{}, nil
	}

	query := `
		WITH recent AS (
			SELECT id, total, accepted_at
			FROM quotes
			WHERE organization_id = $1 AND accepted_at IS NOT NULL
			ORDER BY accepted_at DESC
			LIMIT $2
		)
		SELECT
			q.id::text,
			q.total,
			q.accepted_at,
			li.item_code,
			li.description,
			li.quantity,
			li.unit_price
		FROM recent q
		LEFT JOIN quote_line_items li ON li.quote_id = q.id
		ORDER BY q.accepted_at DESC, q.id, li.sort_order
	`

	rows, err := r.db.Pool.Query(ctx, query, organizationID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent accepted quotes: %w", err)
	}
	defer rows.Close()

	quotes := []models.HistoricalQuote{}
	for rows.Next() {
		var q models.HistoricalQuote
		var itemCode, description *string
		var quantity, unitPrice *float64
		if err := rows.Scan(
			&q.ID,
			&q.Total,
			&q.AcceptedAt,
			&itemCode,
			&description,
			&quantity,
			&unitPrice,
		); err != nil {
			return nil, fmt.Errorf("failed to scan accepted quote row: %w", err)
		}

		if n := len(quotes); n == 0 || quotes[n-1].ID != q.ID {
			q.Items = []models.HistoricalLineItem{}
			quotes = append(quotes, q)
		}
		// LEFT JOIN yields a null line for quotes without items.
		if description == nil {
			continue
		}
		item := models.HistoricalLineItem{ItemCode: itemCode, Description: *description}
		if quantity != nil {
			item.Quantity = *quantity
		}
		if unitPrice != nil {
			item.UnitPrice = *unitPrice
		}
		last := &quotes[len(quotes)-1]
		last.Items = append(last.Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accepted quote rows: %w", err)
	}
	return quotes, nil
}
