package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/models"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/pdfimport"
)

// MockTemplateRepository is a mock implementation of TemplateRepository for testing
type MockTemplateRepository struct {
	mock.Mock
}

func (m *MockTemplateRepository) Create(ctx context.Context, t *models.QuoteTemplate) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTemplateRepository) GetByID(ctx context.Context, organizationID, id string) (*models.QuoteTemplate, error) {
	args := m.Called(ctx, organizationID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuoteTemplate), args.Error(1)
}

func (m *MockTemplateRepository) ListMappings(ctx context.Context, templateID string) ([]models.TemplateMapping, error) {
	args := m.Called(ctx, templateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TemplateMapping), args.Error(1)
}

func (m *MockTemplateRepository) CreateMapping(ctx context.Context, mapping *models.TemplateMapping) error {
	args := m.Called(ctx, mapping)
	return args.Error(0)
}

// MockExtractionRepository is a mock implementation of ExtractionRepository for testing
type MockExtractionRepository struct {
	mock.Mock
}

func (m *MockExtractionRepository) GetByID(ctx context.Context, organizationID, id string) (*models.MeasurementExtraction, error) {
	args := m.Called(ctx, organizationID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MeasurementExtraction), args.Error(1)
}

// MockItemRepository is a mock implementation of ItemRepository for testing
type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) ListByOrganization(ctx context.Context, organizationID string) ([]models.Item, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Item), args.Error(1)
}

// MockPatternRepository is a mock implementation of PatternRepository for testing
type MockPatternRepository struct {
	mock.Mock
}

func (m *MockPatternRepository) ListByOrganization(ctx context.Context, organizationID, source string) ([]models.PricingPattern, error) {
	args := m.Called(ctx, organizationID, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PricingPattern), args.Error(1)
}

func (m *MockPatternRepository) GetByKey(ctx context.Context, organizationID, source, key string) (*models.PricingPattern, error) {
	args := m.Called(ctx, organizationID, source, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PricingPattern), args.Error(1)
}

func (m *MockPatternRepository) Upsert(ctx context.Context, patterns []models.PricingPattern) error {
	args := m.Called(ctx, patterns)
	return args.Error(0)
}

func (m *MockPatternRepository) ReplaceSource(ctx context.Context, organizationID, source string, patterns []models.PricingPattern) error {
	args := m.Called(ctx, organizationID, source, patterns)
	return args.Error(0)
}

// MockSessionRepository is a mock implementation of SessionRepository for testing
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, s *models.PricingImportSession) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSessionRepository) Update(ctx context.Context, s *models.PricingImportSession) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSessionRepository) ListByOrganization(ctx context.Context, organizationID string, limit int) ([]models.PricingImportSession, error) {
	args := m.Called(ctx, organizationID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PricingImportSession), args.Error(1)
}

// MockQuoteHistoryRepository is a mock implementation of QuoteHistoryRepository for testing
type MockQuoteHistoryRepository struct {
	mock.Mock
}

func (m *MockQuoteHistoryRepository) RecentAccepted(ctx context.Context, organizationID string, limit int) ([]models.HistoricalQuote, error) {
	args := m.Called(ctx, organizationID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.HistoricalQuote), args.Error(1)
}

// MockLineItemExtractor is a mock implementation of LineItemExtractor for testing
type MockLineItemExtractor struct {
	mock.Mock
}

func (m *MockLineItemExtractor) ExtractLineItems(ctx context.Context, text string) (*pdfimport.ExtractedQuote, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pdfimport.ExtractedQuote), args.Error(1)
}

// stubTextExtractor returns fixed text or a fixed error.
type stubTextExtractor struct {
	text string
	err  error
}

func (s stubTextExtractor) Name() string { return "stub" }

func (s stubTextExtractor) ExtractText([]byte) (string, error) {
	return s.text, s.err
}

func ptr[T any](v T) *T {
	return &v
}
