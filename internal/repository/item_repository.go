package repository

import (
	"context"
	"fmt"

	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/database"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/models"
)

// ItemRepository reads the product catalog.
type ItemRepository interface {
	// ListByOrganization returns every catalog item, active or not.
	ListByOrganization(ctx context.Context, organizationID string) ([]models.Item, error)
}

type itemRepository struct {
	db *database.Database
}

// NewItemRepository creates a new instance of ItemRepository.
func NewItemRepository(db *database.Database) ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) ListByOrganization(ctx context.Context, organizationID string) ([]models.Item, error) {
	query := `
		SELECT
			id::text,
			organization_id,
			item_code,
			description,
			unit,
			sell_price,
			cost_price,
			is_active
		FROM items
		WHERE organization_id = $1
		ORDER BY item_code, description
	`

	rows, err := r.db.Pool.Query(ctx, query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		var item models.Item
		if err := rows.Scan(
			&item.ID,
			&item.OrganizationID,
			&item.ItemCode,
			&item.Description,
			&item.Unit,
			&item.SellPrice,
			&item.CostPrice,
			&item.IsActive,
		); err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item rows: %w", err)
	}
	return items, nil
}
