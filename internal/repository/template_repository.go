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

// TemplateRepository defines data access for quote templates and their mappings.
type TemplateRepository interface {
	// Create inserts a template, assigning its ID and timestamps.
	Create(ctx context.Context, t *models.QuoteTemplate) error

	// GetByID returns the organization's template.
	// Returns nil, nil if no template is found (not an error).
	GetByID(ctx context.Context, organizationID, id string) (*models.QuoteTemplate, error)

	// ListMappings returns a template's mappings ordered by sort order.
	// Returns an empty slice when the template has none.
	ListMappings(ctx context.Context, templateID string) ([]models.TemplateMapping, error)

	// CreateMapping inserts a mapping, assigning its ID and creation time.
	CreateMapping(ctx context.Context, m *models.TemplateMapping) error
}

type templateRepository struct {
	db *database.Database
}

// NewTemplateRepository creates a new instance of TemplateRepository.
func NewTemplateRepository(db *database.Database) TemplateRepository {
	return &templateRepository{db: db}
}

func (r *templateRepository) Create(ctx context.Context, t *models.QuoteTemplate) error {
	now := time.Now().UTC()
	t.ID = uuid.NewString()
	t.CreatedAt = now
	t.UpdatedAt = now

	query := `
		INSERT INTO quote_templates (
			id, organization_id, name, description, waste_percent,
			labor_markup_percent, is_active, is_default, created_at, updated_at
		) VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Pool.Exec(ctx, query,
		t.ID, t.OrganizationID, t.Name, t.Description, t.WastePercent,
		t.LaborMarkupPercent, t.IsActive, t.IsDefault, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert template %q: %w", t.Name, err)
	}
	return nil
}

func (r *templateRepository) GetByID(ctx context.Context, organizationID, id string) (*models.QuoteTemplate, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}

	query := `
		SELECT
			id::text,
			organization_id,
			name,
			description,
			waste_percent,
			labor_markup_percent,
			is_active,
			is_default,
			created_at,
			updated_at
		FROM quote_templates
		WHERE id = $1::uuid AND organization_id = $2
	`

	var t models.QuoteTemplate
	err := r.db.Pool.QueryRow(ctx, query, id, organizationID).Scan(
		&t.ID,
		&t.OrganizationID,
		&t.Name,
		&t.Description,
		&t.WastePercent,
		&t.LaborMarkupPercent,
		&t.IsActive,
		&t.IsDefault,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query template %s: %w", id, err)
	}
	return &t, nil
}

func (r *templateRepository) ListMappings(ctx context.Context, templateID string) ([]models.TemplateMapping, error) {
	if _, err := uuid.Parse(templateID); err != nil {
		return []models.TemplateMapping{}, nil
	}

	query := `
		SELECT
			id::text,
			template_id::text,
			measurement_type,
			calculation_type,
			product_id::text,
			product_description,
			unit_price,
			coverage_per_unit,
			custom_formula,
			labor_minutes_per_unit,
			labor_rate,
			apply_waste,
			sort_order,
			is_active,
			created_at
		FROM template_mappings
		WHERE template_id = $1::uuid
		ORDER BY sort_order, created_at
	`

	rows, err := r.db.Pool.Query(ctx, query, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to query mappings for template %s: %w", templateID, err)
	}
	defer rows.Close()

	mappings := []models.TemplateMapping{}
	for rows.Next() {
		var m models.TemplateMapping
		err := rows.Scan(
			&m.ID,
			&m.TemplateID,
			&m.MeasurementType,
			&m.CalculationType,
			&m.ProductID,
			&m.ProductDescription,
			&m.UnitPrice,
			&m.CoveragePerUnit,
			&m.CustomFormula,
			&m.LaborMinutesPerUnit,
			&m.LaborRate,
			&m.ApplyWaste,
			&m.SortOrder,
			&m.IsActive,
			&m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mapping row: %w", err)
		}
		mappings = append(mappings, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating mapping rows: %w", err)
	}
	return mappings, nil
}

func (r *templateRepository) CreateMapping(ctx context.Context, m *models.TemplateMapping) error {
	m.ID = uuid.NewString()
	m.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO template_mappings (
			id, template_id, measurement_type, calculation_type, product_id,
			product_description, unit_price, coverage_per_unit, custom_formula,
			labor_minutes_per_unit, labor_rate, apply_waste, sort_order, is_active, created_at
		) VALUES ($1::uuid, $2::uuid, $3, $4, $5::uuid, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.db.Pool.Exec(ctx, query,
		m.ID, m.TemplateID, string(m.MeasurementType), string(m.CalculationType), m.ProductID,
		m.ProductDescription, m.UnitPrice, m.CoveragePerUnit, m.CustomFormula,
		m.LaborMinutesPerUnit, m.LaborRate, m.ApplyWaste, m.SortOrder, m.IsActive, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert mapping for template %s: %w", m.TemplateID, err)
	}
	return nil
}
