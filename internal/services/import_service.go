package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/logger"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/models"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/patterns"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/pdfimport"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/repository"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/tradify"
)

// MaxSessionHistory caps the import sessions returned by ListSessions.
const MaxSessionHistory = 50

// ExtractedData summarizes what the AI read from a PDF quote.
type ExtractedData struct {
	QuoteNumber   *string `json:"quoteNumber"`
	CustomerName  *string `json:"customerName"`
	LineItemCount int     `json:"lineItemCount"`
}

// PDFImportResult is the outcome of a PDF quote import.
type PDFImportResult struct {
	SessionID       string        `json:"sessionId"`
	PatternsCreated int           `json:"patternsCreated"`
	ExtractedData   ExtractedData `json:"extractedData"`
}

// ImportService defines pricing history import operations.
// Imports for one organization run one at a time.
type ImportService interface {
	// ImportPricingCSV replaces the organization's Tradify patterns with those
	// in a CSV export. Structural problems return ErrValidation and leave a
	// failed session behind.
	ImportPricingCSV(ctx context.Context, organizationID, content, filename string) (*models.PricingImportSession, error)

	// ImportPricingXLSX is ImportPricingCSV for a Tradify XLSX export.
	ImportPricingXLSX(ctx context.Context, organizationID string, data []byte, filename string) (*models.PricingImportSession, error)

	// ImportPricingPDF folds the line items of a quote PDF into the
	// organization's PDF patterns. Returns ErrValidation for undecodable
	// payloads, ErrParse when no text can be read, and ErrExternalService or
	// ErrAITimeout when line-item extraction fails.
	ImportPricingPDF(ctx context.Context, organizationID string, data []byte, filename string) (*PDFImportResult, error)

	// ImportPricingPDFBase64 decodes a base64 payload and imports it as a PDF.
	ImportPricingPDFBase64(ctx context.Context, organizationID, payload, filename string) (*PDFImportResult, error)

	// ListSessions returns recent import sessions, newest first.
	ListSessions(ctx context.Context, organizationID string) ([]models.PricingImportSession, error)

	// ListPatterns returns stored patterns, optionally for one source.
	ListPatterns(ctx context.Context, organizationID, source string) ([]models.PricingPattern, error)
}

// ImportRepositories groups the stores imports write to.
type ImportRepositories struct {
	Sessions repository.SessionRepository
	Patterns repository.PatternRepository
	Items    repository.ItemRepository
}

type importService struct {
	repos      ImportRepositories
	extractors []pdfimport.TextExtractor
	ai         pdfimport.LineItemExtractor
	locks      *orgLocks
	log        *logger.Logger
}

// NewImportService creates a new instance of ImportService. ai may be nil
// when no model is configured; PDF imports then fail with ErrExternalService.
func NewImportService(repos ImportRepositories, extractors []pdfimport.TextExtractor, ai pdfimport.LineItemExtractor, log *logger.Logger) ImportService {
	return &importService{
		repos:      repos,
		extractors: extractors,
		ai:         ai,
		locks:      newOrgLocks(),
		log:        log,
	}
}

func (s *importService) ImportPricingCSV(ctx context.Context, organizationID, content, filename string) (*models.PricingImportSession, error) {
	return s.importSheet(ctx, organizationID, filename, func() (*tradify.Sheet, error) {
		return tradify.Parse(content)
	})
}

func (s *importService) ImportPricingXLSX(ctx context.Context, organizationID string, data []byte, filename string) (*models.PricingImportSession, error) {
	return s.importSheet(ctx, organizationID, filename, func() (*tradify.Sheet, error) {
		return tradify.ParseXLSX(bytes.NewReader(data))
	})
}

func (s *importService) importSheet(ctx context.Context, organizationID, filename string, parse func() (*tradify.Sheet, error)) (*models.PricingImportSession, error) {
	unlock := s.locks.Lock(organizationID)
	defer unlock()

	fields := map[string]interface{}{
		"organization_id": organizationID,
		"filename":        filename,
		"source":          models.SourceTradify,
	}
	s.log.Info("Starting pricing import", fields)

	session, err := s.startSession(ctx, organizationID, models.SourceTradify, filename)
	if err != nil {
		return nil, err
	}

	sheet, err := parse()
	if err != nil {
		s.log.Warn("Pricing import rejected", map[string]interface{}{
			"session_id": session.ID,
			"reason":     err.Error(),
		})
		s.failSession(ctx, session, err.Error())
		return session, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	analysis := tradify.Analyze(sheet)
	for i := range analysis.Patterns {
		analysis.Patterns[i].OrganizationID = organizationID
		analysis.Patterns[i].Source = models.SourceTradify
	}

	if err := s.repos.Patterns.ReplaceSource(ctx, organizationID, models.SourceTradify, analysis.Patterns); err != nil {
		s.log.Error("Failed to store pricing patterns", err, fields)
		s.failSession(ctx, session, "failed to store pricing patterns")
		return session, fmt.Errorf("failed to store pricing patterns: %w", err)
	}

	session.TotalQuotes = analysis.TotalQuotes
	session.AcceptedQuotes = analysis.AcceptedQuotes
	session.TotalLineItems = analysis.TotalLineItems
	session.UniquePatterns = analysis.UniquePatterns
	if err := s.completeSession(ctx, session); err != nil {
		return session, err
	}

	s.log.Info("Pricing import completed", map[string]interface{}{
		"session_id":       session.ID,
		"total_quotes":     session.TotalQuotes,
		"accepted_quotes":  session.AcceptedQuotes,
		"total_line_items": session.TotalLineItems,
		"unique_patterns":  session.UniquePatterns,
		"skipped_rows":     analysis.SkippedRows,
	})
	return session, nil
}

func (s *importService) ImportPricingPDF(ctx context.Context, organizationID string, data []byte, filename string) (*PDFImportResult, error) {
	return s.importPDF(ctx, organizationID, filename, func() ([]byte, error) {
		if len(data) == 0 {
			return nil, fmt.Errorf("%w: empty document", pdfimport.ErrInvalidPDF)
		}
		return data, nil
	})
}

func (s *importService) ImportPricingPDFBase64(ctx context.Context, organizationID, payload, filename string) (*PDFImportResult, error) {
	return s.importPDF(ctx, organizationID, filename, func() ([]byte, error) {
		return pdfimport.DecodeBase64(payload)
	})
}

func (s *importService) importPDF(ctx context.Context, organizationID, filename string, load func() ([]byte, error)) (*PDFImportResult, error) {
	unlock := s.locks.Lock(organizationID)
	defer unlock()

	fields := map[string]interface{}{
		"organization_id": organizationID,
		"filename":        filename,
		"source":          models.SourcePDFQuote,
	}
	s.log.Info("Starting PDF pricing import", fields)

	session, err := s.startSession(ctx, organizationID, models.SourcePDFQuote, filename)
	if err != nil {
		return nil, err
	}
	result := &PDFImportResult{SessionID: session.ID}

	data, err := load()
	if err != nil {
		s.failSession(ctx, session, err.Error())
		return result, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	text, err := pdfimport.ExtractText(data, s.extractors...)
	if err != nil {
		s.log.Warn("PDF text extraction failed", map[string]interface{}{
			"session_id": session.ID,
			"reason":     err.Error(),
		})
		s.failSession(ctx, session, err.Error())
		if errors.Is(err, pdfimport.ErrInvalidPDF) {
			return result, fmt.Errorf("%w: %w", ErrValidation, err)
		}
		if errors.Is(err, ErrParse) {
			return result, err
		}
		return result, fmt.Errorf("%w: %v", ErrParse, err)
	}

	if s.ai == nil {
		s.failSession(ctx, session, "AI service not configured")
		return result, fmt.Errorf("%w: not configured", ErrExternalService)
	}

	quote, err := s.ai.ExtractLineItems(ctx, text)
	if err != nil {
		s.log.Error("AI line item extraction failed", err, fields)
		if errors.Is(err, pdfimport.ErrAITimeout) {
			s.failSession(ctx, session, "AI service timed out")
			return result, ErrAITimeout
		}
		s.failSession(ctx, session, err.Error())
		return result, fmt.Errorf("%w: %w", ErrExternalService, err)
	}

	items, err := s.repos.Items.ListByOrganization(ctx, organizationID)
	if err != nil {
		s.log.Error("Failed to load catalog", err, fields)
		s.failSession(ctx, session, "failed to load catalog")
		return result, fmt.Errorf("failed to load catalog: %w", err)
	}
	catalog := pdfimport.NewCatalog(items)

	existing, err := s.repos.Patterns.ListByOrganization(ctx, organizationID, models.SourcePDFQuote)
	if err != nil {
		s.log.Error("Failed to load existing PDF patterns", err, fields)
		s.failSession(ctx, session, "failed to load existing patterns")
		return result, fmt.Errorf("failed to load existing patterns: %w", err)
	}

	agg := patterns.NewAggregator(existing...)
	touched := make(map[string]bool)
	processed := 0
	for _, line := range quote.LineItems {
		obs, ok := catalog.Observation(line)
		if !ok {
			continue
		}
		key, ok := agg.Add(obs)
		if !ok {
			continue
		}
		touched[key] = true
		processed++
	}

	updates := make([]models.PricingPattern, 0, len(touched))
	for key := range touched {
		p, _ := agg.Get(key)
		p.OrganizationID = organizationID
		p.Source = models.SourcePDFQuote
		updates = append(updates, p)
	}
	if err := s.repos.Patterns.Upsert(ctx, updates); err != nil {
		s.log.Error("Failed to store pricing patterns", err, fields)
		s.failSession(ctx, session, "failed to store pricing patterns")
		return result, fmt.Errorf("failed to store pricing patterns: %w", err)
	}

	session.TotalQuotes = 1
	session.AcceptedQuotes = 1
	session.TotalLineItems = processed
	session.UniquePatterns = len(touched)
	if err := s.completeSession(ctx, session); err != nil {
		return result, err
	}

	result.PatternsCreated = len(touched)
	result.ExtractedData = ExtractedData{
		QuoteNumber:   quote.QuoteNumber,
		CustomerName:  quote.CustomerName,
		LineItemCount: len(quote.LineItems),
	}

	s.log.Info("PDF pricing import completed", map[string]interface{}{
		"session_id":       session.ID,
		"line_items":       len(quote.LineItems),
		"patterns_touched": len(touched),
	})
	return result, nil
}

func (s *importService) ListSessions(ctx context.Context, organizationID string) ([]models.PricingImportSession, error) {
	sessions, err := s.repos.Sessions.ListByOrganization(ctx, organizationID, MaxSessionHistory)
	if err != nil {
		s.log.Error("Failed to list import sessions", err, map[string]interface{}{
			"organization_id": organizationID,
		})
		return nil, fmt.Errorf("failed to list import sessions: %w", err)
	}
	return sessions, nil
}

func (s *importService) ListPatterns(ctx context.Context, organizationID, source string) ([]models.PricingPattern, error) {
	switch source {
	case "", models.SourceTradify, models.SourcePDFQuote, models.SourceQuotes:
	default:
		return nil, fmt.Errorf("%w: unknown source %q", ErrValidation, source)
	}

	list, err := s.repos.Patterns.ListByOrganization(ctx, organizationID, source)
	if err != nil {
		s.log.Error("Failed to list pricing patterns", err, map[string]interface{}{
			"organization_id": organizationID,
			"source":          source,
		})
		return nil, fmt.Errorf("failed to list pricing patterns: %w", err)
	}
	return list, nil
}

func (s *importService) startSession(ctx context.Context, organizationID, source, filename string) (*models.PricingImportSession, error) {
	session := &models.PricingImportSession{
		OrganizationID: organizationID,
		Source:         source,
		Filename:       filename,
		Status:         models.ImportStatusProcessing,
	}
	if err := s.repos.Sessions.Create(ctx, session); err != nil {
		s.log.Error("Failed to create import session", err, map[string]interface{}{
			"organization_id": organizationID,
			"source":          source,
		})
		return nil, fmt.Errorf("failed to create import session: %w", err)
	}
	return session, nil
}

func (s *importService) completeSession(ctx context.Context, session *models.PricingImportSession) error {
	now := time.Now().UTC()
	session.Status = models.ImportStatusCompleted
	session.CompletedAt = &now
	if err := s.repos.Sessions.Update(ctx, session); err != nil {
		s.log.Error("Failed to complete import session", err, map[string]interface{}{
			"session_id": session.ID,
		})
		return fmt.Errorf("failed to complete import session: %w", err)
	}
	return nil
}

// failSession records the failure. The caller's error wins over a failure
// to persist it, which is only logged.
func (s *importService) failSession(ctx context.Context, session *models.PricingImportSession, message string) {
	now := time.Now().UTC()
	session.Status = models.ImportStatusFailed
	session.ErrorMessage = &message
	session.CompletedAt = &now
	if err := s.repos.Sessions.Update(ctx, session); err != nil {
		s.log.Error("Failed to mark import session failed", err, map[string]interface{}{
			"session_id": session.ID,
			"message":    message,
		})
	}
}
