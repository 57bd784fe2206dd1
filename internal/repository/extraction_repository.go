package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/database"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/models"
)

// ExtractionRepository reads measurement extractions.
type ExtractionRepository interface {
	// GetByID returns the organization's extraction.
	// Returns nil, nil if no extraction is found (not an error).
	GetByID(ctx context.Context, organizationID, id string) (*models.MeasurementExtraction, error)
}

type extractionRepository struct {
	db *database.Database
}

// NewExtractionRepository creates a new instance of ExtractionRepository.
func NewExtractionRepository(db *database.Database) ExtractionRepository {
	return &extractionRepository{db: db}
}

func (r *extractionRepository) GetByID(ctx context.Context, organizationID, id string) (*models.MeasurementExtraction, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}

	query := `
		SELECT
			id::text,
			organization_id,
			address,
			total_roof_area,
			pitched_roof_area,
			flat_roof_area,
			ridges,
			eaves,
			valleys,
			hips,
			rakes,
			wall_flashing,
			step_flashing,
			parapet_wall,
			created_at
		FROM measurement_extractions
		WHERE id = $1::uuid AND organization_id = $2
	`

	var e models.MeasurementExtraction
	err := r.db.Pool.QueryRow(ctx, query, id, organizationID).Scan(
		&e.ID,
		&e.OrganizationID,
		&e.Address,
		&e.TotalRoofArea,
		&e.PitchedRoofArea,
		&e.FlatRoofArea,
		&e.Ridges,
		&e.Eaves,
		&e.Valleys,
		&e.Hips,
		&e.Rakes,
		&e.WallFlashing,
		&e.StepFlashing,
		&e.ParapetWall,
		&e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query extraction %s: %w", id, err)
	}
	return &e, nil
}
