package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/logger"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/models"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/patterns"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/quoting"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/repository"
)

// DefaultRecentQuoteSample is how many recent accepted quotes feed the
// historical context when no sample size is configured.
const DefaultRecentQuoteSample = 20

// GenerateQuoteRequest identifies what to generate line items from.
type GenerateQuoteRequest struct {
	ExtractionID string `json:"extractionId" binding:"required"`
	TemplateID   string `json:"templateId" binding:"required"`
	// UseHistoricalContext defaults to true when omitted.
	UseHistoricalContext *bool `json:"useHistoricalContext"`
}

// TemplateRef names the template a quote was generated from.
type TemplateRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ExtractionRef names the extraction a quote was generated from.
type ExtractionRef struct {
	ID      string `json:"id"`
	Address string `json:"address"`
}

// GenerateQuoteResponse is the generated quote returned for review.
type GenerateQuoteResponse struct {
	Items             []models.GeneratedQuoteItem `json:"items"`
	Template          TemplateRef                 `json:"template"`
	Extraction        ExtractionRef               `json:"extraction"`
	HistoricalContext *patterns.ContextSummary    `json:"historicalContext"`
	Summary           quoting.Summary             `json:"summary"`
}

// QuoteService defines quote generation operations.
type QuoteService interface {
	// GenerateQuoteItems prices a template's mappings against an extraction.
	// Returns ErrValidation when an identifier is missing.
	// Returns ErrNotFound when the extraction, the template or its mappings are absent.
	GenerateQuoteItems(ctx context.Context, organizationID string, req GenerateQuoteRequest) (*GenerateQuoteResponse, error)
}

// QuoteRepositories groups the stores quote generation reads from.
type QuoteRepositories struct {
	Templates   repository.TemplateRepository
	Extractions repository.ExtractionRepository
	Items       repository.ItemRepository
	Patterns    repository.PatternRepository
	History     repository.QuoteHistoryRepository
}

type quoteService struct {
	repos        QuoteRepositories
	generator    *quoting.Generator
	recentSample int
	log          *logger.Logger
}

// NewQuoteService creates a new instance of QuoteService.
func NewQuoteService(repos QuoteRepositories, generator *quoting.Generator, recentSample int, log *logger.Logger) QuoteService {
	if recentSample < 0 {
		recentSample = DefaultRecentQuoteSample
	}
	return &quoteService{
		repos:        repos,
		generator:    generator,
		recentSample: recentSample,
		log:          log,
	}
}

// GenerateQuoteItems loads everything generation needs and runs the generator.
// Failing to load pricing history is not fatal; the quote is generated
// without it.
func (s *quoteService) GenerateQuoteItems(ctx context.Context, organizationID string, req GenerateQuoteRequest) (*GenerateQuoteResponse, error) {
	extractionID := strings.TrimSpace(req.ExtractionID)
	templateID := strings.TrimSpace(req.TemplateID)
	if extractionID == "" || templateID == "" {
		s.log.Warn("Quote generation missing identifiers", map[string]interface{}{
			"extraction_id": extractionID,
			"template_id":   templateID,
		})
		return nil, fmt.Errorf("%w: extractionId and templateId are required", ErrValidation)
	}

	fields := map[string]interface{}{
		"organization_id": organizationID,
		"extraction_id":   extractionID,
		"template_id":     templateID,
	}
	s.log.Info("Generating quote items", fields)

	extraction, err := s.repos.Extractions.GetByID(ctx, organizationID, extractionID)
	if err != nil {
		s.log.Error("Failed to load extraction", err, fields)
		return nil, fmt.Errorf("failed to load extraction: %w", err)
	}
	if extraction == nil {
		return nil, fmt.Errorf("%w: extraction %s", ErrNotFound, extractionID)
	}

	template, err := s.repos.Templates.GetByID(ctx, organizationID, templateID)
	if err != nil {
		s.log.Error("Failed to load template", err, fields)
		return nil, fmt.Errorf("failed to load template: %w", err)
	}
	if template == nil {
		return nil, fmt.Errorf("%w: template %s", ErrNotFound, templateID)
	}

	mappings, err := s.repos.Templates.ListMappings(ctx, templateID)
	if err != nil {
		s.log.Error("Failed to load template mappings", err, fields)
		return nil, fmt.Errorf("failed to load template mappings: %w", err)
	}
	if len(mappings) == 0 {
		return nil, fmt.Errorf("%w: template has no mappings", ErrNotFound)
	}

	catalog, err := s.repos.Items.ListByOrganization(ctx, organizationID)
	if err != nil {
		s.log.Error("Failed to load catalog", err, fields)
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	var history *patterns.HistoricalContext
	if req.UseHistoricalContext == nil || *req.UseHistoricalContext {
		history = s.loadHistory(ctx, organizationID)
	}

	result := s.generator.Generate(quoting.Input{
		Template:   *template,
		Mappings:   mappings,
		Extraction: *extraction,
		Catalog:    catalog,
		History:    history,
	})

	resp := &GenerateQuoteResponse{
		Items:      result.Items,
		Template:   TemplateRef{ID: template.ID, Name: template.Name},
		Extraction: ExtractionRef{ID: extraction.ID, Address: extraction.Address},
		Summary:    result.Summary,
	}
	if history != nil {
		summary := history.Summary(result.PricingAdjusted)
		resp.HistoricalContext = &summary
	}

	s.log.Info("Quote items generated", map[string]interface{}{
		"organization_id":  organizationID,
		"template_id":      templateID,
		"item_count":       result.Summary.ItemCount,
		"subtotal":         result.Summary.Subtotal,
		"pricing_adjusted": result.PricingAdjusted,
	})

	return resp, nil
}

// loadHistory builds the historical context, or returns nil when it cannot
// be loaded.
func (s *quoteService) loadHistory(ctx context.Context, organizationID string) *patterns.HistoricalContext {
	stored, err := s.repos.Patterns.ListByOrganization(ctx, organizationID, "")
	if err != nil {
		s.log.Warn("Pricing patterns unavailable, generating without history", map[string]interface{}{
			"organization_id": organizationID,
			"error":           err.Error(),
		})
		return nil
	}

	recent, err := s.repos.History.RecentAccepted(ctx, organizationID, s.recentSample)
	if err != nil {
		s.log.Warn("Recent quotes unavailable, using stored patterns only", map[string]interface{}{
			"organization_id": organizationID,
			"error":           err.Error(),
		})
		recent = nil
	}

	history := patterns.BuildContext(stored, recent)
	s.log.Debug("Historical context built", map[string]interface{}{
		"organization_id": organizationID,
		"patterns":        history.PatternCount(),
		"quotes_analyzed": history.QuotesAnalyzed,
	})
	return history
}
