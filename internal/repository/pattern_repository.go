package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/database"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/models"
)

// PatternRepository defines data access for pricing patterns.
type PatternRepository interface {
	// ListByOrganization returns patterns for one source, or every source
	// when source is empty, ordered by occurrence count descending.
	ListByOrganization(ctx context.Context, organizationID, source string) ([]models.PricingPattern, error)

	// GetByKey returns a single pattern.
	// Returns nil, nil if no pattern is found (not an error).
	GetByKey(ctx context.Context, organizationID, source, key string) (*models.PricingPattern, error)

	// Upsert inserts or replaces patterns keyed by (organization, source, key).
	Upsert(ctx context.Context, patterns []models.PricingPattern) error

	// ReplaceSource atomically deletes every pattern of a source and inserts
	// the given ones in their place.
	ReplaceSource(ctx context.Context, organizationID, source string, patterns []models.PricingPattern) error
}

type patternRepository struct {
	db *database.Database
}

// NewPatternRepository creates a new instance of PatternRepository.
func NewPatternRepository(db *database.Database) PatternRepository {
	return &patternRepository{db: db}
}

const patternColumns = `
	id::text,
	organization_id,
	source,
	normalized_key,
	description,
	item_code,
	avg_unit_price,
	avg_quantity,
	occurrence_count,
	cost_price,
	markup_percentage,
	unit,
	product_id::text,
	updated_at
`

func scanPattern(row pgx.Row) (models.PricingPattern, error) {
	var p models.PricingPattern
	err := row.Scan(
		&p.ID,
		&p.OrganizationID,
		&p.Source,
		&p.NormalizedKey,
		&p.Description,
		&p.ItemCode,
		&p.AvgUnitPrice,
		&p.AvgQuantity,
		&p.OccurrenceCount,
		&p.CostPrice,
		&p.MarkupPercentage,
		&p.Unit,
		&p.ProductID,
		&p.UpdatedAt,
	)
	return p, err
}

func (r *patternRepository) ListByOrganization(ctx context.Context, organizationID, source string) ([]models.PricingPattern, error) {
	query := `SELECT ` + patternColumns + `
		FROM pricing_patterns
		WHERE organization_id = $1 AND ($2 = '' OR source = $2)
		ORDER BY occurrence_count DESC, normalized_key
	`

	rows, err := r.db.Pool.Query(ctx, query, organizationID, source)
	if err != nil {
		return nil, fmt.Errorf("failed to query pricing patterns: %w", err)
	}
	defer rows.Close()

	patterns := []models.PricingPattern{}
	for rows.Next() {
		p, err := scanPattern(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pricing pattern row: %w", err)
		}
		patterns = append(patterns, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pricing pattern rows: %w", err)
	}
	return patterns, nil
}

func (r *patternRepository) GetByKey(ctx context.Context, organizationID, source, key string) (*models.PricingPattern, error) {
	query := `SELECT ` + patternColumns + `
		FROM pricing_patterns
		WHERE organization_id = $1 AND source = $2 AND normalized_key = $3
	`

	p, err := scanPattern(r.db.Pool.QueryRow(ctx, query, organizationID, source, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query pricing pattern %q: %w", key, err)
	}
	return &p, nil
}

const upsertPatternQuery = `
	INSERT INTO pricing_patterns (
		id, organization_id, source, normalized_key, description, item_code,
		avg_unit_price, avg_quantity, occurrence_count, cost_price,
		markup_percentage, unit, product_id, updated_at
	) VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13::uuid, $14)
	ON CONFLICT (organization_id, source, normalized_key) DO UPDATE SET
		description       = EXCLUDED.description,
		item_code         = EXCLUDED.item_code,
		avg_unit_price    = EXCLUDED.avg_unit_price,
		avg_quantity      = EXCLUDED.avg_quantity,
		occurrence_count  = EXCLUDED.occurrence_count,
		cost_price        = EXCLUDED.cost_price,
		markup_percentage = EXCLUDED.markup_percentage,
		unit              = EXCLUDED.unit,
		product_id        = EXCLUDED.product_id,
		updated_at        = EXCLUDED.updated_at
`

// queueUpserts adds one upsert per pattern to batch.
func queueUpserts(batch *pgx.Batch, patterns []models.PricingPattern) {
	now := time.Now().UTC()
	for _, p := range patterns {
		id := p.ID
		if id == "" {
			id = uuid.NewString()
		}
		batch.Queue(upsertPatternQuery,
			id, p.OrganizationID, p.Source, p.NormalizedKey, p.Description, p.ItemCode,
			p.AvgUnitPrice, p.AvgQuantity, p.OccurrenceCount, p.CostPrice,
			p.MarkupPercentage, p.Unit, p.ProductID, now,
		)
	}
}

func (r *patternRepository) Upsert(ctx context.Context, patterns []models.PricingPattern) error {
	if len(patterns) == 0 {
		return nil
	}

	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		queueUpserts(batch, patterns)
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to upsert %d pricing patterns: %w", len(patterns), err)
		}
		return nil
	})
}

func (r *patternRepository) ReplaceSource(ctx context.Context, organizationID, source string, patterns []models.PricingPattern) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`DELETE FROM pricing_patterns WHERE organization_id = $1 AND source = $2`,
			organizationID, source,
		)
		if err != nil {
			return fmt.Errorf("failed to clear %s pricing patterns: %w", source, err)
		}

		if len(patterns) == 0 {
			return nil
		}

		batch := &pgx.Batch{}
		queueUpserts(batch, patterns)
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert %d pricing patterns: %w", len(patterns), err)
		}
		return nil
	})
}
