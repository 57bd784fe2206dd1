package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/database"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/models"
)

// SessionRepository stores pricing import sessions.
type SessionRepository interface {
	// Create inserts a session, assigning its ID and creation time.
	Create(ctx context.Context, s *models.PricingImportSession) error

	// Update writes the session's status, counts, error and completion time.
	Update(ctx context.Context, s *models.PricingImportSession) error

	// ListByOrganization returns the newest sessions first.
	ListByOrganization(ctx context.Context, organizationID string, limit int) ([]models.PricingImportSession, error)
}

type sessionRepository struct {
	db *database.Database
}

// NewSessionRepository creates a new instance of SessionRepository.
func NewSessionRepository(db *database.Database) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, s *models.PricingImportSession) error {
	s.ID = uuid.NewString()
	s.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO pricing_import_sessions (
			id, organization_id, source, filename, status, created_at
		) VALUES ($1::uuid, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Pool.Exec(ctx, query,
		s.ID, s.OrganizationID, s.Source, s.Filename, s.Status, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert import session: %w", err)
	}
	return nil
}

func (r *sessionRepository) Update(ctx context.Context, s *models.PricingImportSession) error {
	query := `
		UPDATE pricing_import_sessions SET
			status = $2,
			total_quotes = $3,
			accepted_quotes = $4,
			total_line_items = $5,
			unique_patterns = $6,
			error_message = $7,
			completed_at = $8
		WHERE id = $1::uuid
	`
	tag, err := r.db.Pool.Exec(ctx, query,
		s.ID, s.Status, s.TotalQuotes, s.AcceptedQuotes, s.TotalLineItems,
		s.UniquePatterns, s.ErrorMessage, s.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update import session %s: %w", s.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("import session %s does not exist", s.ID)
	}
	return nil
}

func (r *sessionRepository) ListByOrganization(ctx context.Context, organizationID string, limit int) ([]models.PricingImportSession, error) {
	query := `
		SELECT
			id::text,
			organization_id,
			source,
			filename,
			status,
			total_quotes,
			accepted_quotes,
			total_line_items,
			unique_patterns,
			error_message,
			created_at,
			completed_at
		FROM pricing_import_sessions
		WHERE organization_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, organizationID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query import sessions: %w", err)
	}
	defer rows.Close()

	sessions := []models.PricingImportSession{}
	for rows.Next() {
		var s models.PricingImportSession
		if err := rows.Scan(
			&s.ID,
			&s.OrganizationID,
			&s.Source,
			&s.Filename,
			&s.Status,
			&s.TotalQuotes,
			&s.AcceptedQuotes,
			&s.TotalLineItems,
			&s.UniquePatterns,
			&s.ErrorMessage,
			&s.CreatedAt,
			&s.CompletedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan import session row: %w", err)
		}
		sessions = append(sessions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating import session rows: %w", err)
	}
	return sessions, nil
}
