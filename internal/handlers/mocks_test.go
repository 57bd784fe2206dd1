package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apierrors "github.com/sblmetalroofing-oss/Rprime-sub003/internal/errors"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/logger"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/middleware"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/models"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/ratelimit"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/services"
)

const testOrg = "org-1"

func init() {
	// Set Gin to test mode to suppress logs during tests
	gin.SetMode(gin.TestMode)
}

// MockQuoteService is a mock implementation of QuoteService for testing
type MockQuoteService struct {
	mock.Mock
}

func (m *MockQuoteService) GenerateQuoteItems(ctx context.Context, organizationID string, req services.GenerateQuoteRequest) (*services.GenerateQuoteResponse, error) {
	args := m.Called(ctx, organizationID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.GenerateQuoteResponse), args.Error(1)
}

// MockImportService is a mock implementation of ImportService for testing
type MockImportService struct {
	mock.Mock
}

func (m *MockImportService) ImportPricingCSV(ctx context.Context, organizationID, content, filename string) (*models.PricingImportSession, error) {
	args := m.Called(ctx, organizationID, content, filename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PricingImportSession), args.Error(1)
}

func (m *MockImportService) ImportPricingXLSX(ctx context.Context, organizationID string, data []byte, filename string) (*models.PricingImportSession, error) {
	args := m.Called(ctx, organizationID, data, filename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PricingImportSession), args.Error(1)
}

func (m *MockImportService) ImportPricingPDF(ctx context.Context, organizationID string, data []byte, filename string) (*services.PDFImportResult, error) {
	args := m.Called(ctx, organizationID, data, filename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.PDFImportResult), args.Error(1)
}

func (m *MockImportService) ImportPricingPDFBase64(ctx context.Context, organizationID, payload, filename string) (*services.PDFImportResult, error) {
	args := m.Called(ctx, organizationID, payload, filename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.PDFImportResult), args.Error(1)
}

func (m *MockImportService) ListSessions(ctx context.Context, organizationID string) ([]models.PricingImportSession, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PricingImportSession), args.Error(1)
}

func (m *MockImportService) ListPatterns(ctx context.Context, organizationID, source string) ([]models.PricingPattern, error) {
	args := m.Called(ctx, organizationID, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PricingPattern), args.Error(1)
}

// MockTemplateService is a mock implementation of TemplateService for testing
type MockTemplateService struct {
	mock.Mock
}

func (m *MockTemplateService) CreateTemplate(ctx context.Context, organizationID string, req services.CreateTemplateRequest) (*models.QuoteTemplate, error) {
	args := m.Called(ctx, organizationID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuoteTemplate), args.Error(1)
}

func (m *MockTemplateService) AddMapping(ctx context.Context, organizationID, templateID string, req services.AddMappingRequest) (*models.TemplateMapping, error) {
	args := m.Called(ctx, organizationID, templateID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TemplateMapping), args.Error(1)
}

func (m *MockTemplateService) GetTemplate(ctx context.Context, organizationID, templateID string) (*services.TemplateDetail, error) {
	args := m.Called(ctx, organizationID, templateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.TemplateDetail), args.Error(1)
}

func (m *MockTemplateService) GenerateFromPatterns(ctx context.Context, organizationID, name string) (*services.TemplateDetail, error) {
	args := m.Called(ctx, organizationID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.TemplateDetail), args.Error(1)
}

type testAPI struct {
	router    *gin.Engine
	quotes    *MockQuoteService
	imports   *MockImportService
	templates *MockTemplateService
}

// setupTestAPI builds the full router over mocked services.
func setupTestAPI(limiter *ratelimit.Limiter) testAPI {
	api := testAPI{
		router:    gin.New(),
		quotes:    new(MockQuoteService),
		imports:   new(MockImportService),
		templates: new(MockTemplateService),
	}
	log := logger.New("test")
	api.router.Use(middleware.RequestID(), middleware.Logger(log), middleware.Recovery(log))
	RegisterRoutes(api.router, Handlers{
		Health:    NewHealthHandler(&stubPinger{}, "test", true),
		Quotes:    NewQuoteHandler(api.quotes),
		Pricing:   NewPricingHandler(api.imports),
		Templates: NewTemplateHandler(api.templates),
	}, limiter)
	return api
}

func (a testAPI) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			_ = json.NewEncoder(&buf).Encode(b)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.OrganizationIDHeader, testOrg)
	req.Header.Set(middleware.RequestIDHeader, "req-test")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apierrors.ErrorDetail {
	t.Helper()
	var resp apierrors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

func assertStatus(t *testing.T, want int, w *httptest.ResponseRecorder) {
	t.Helper()
	require.Equal(t, want, w.Code, "body: %s", w.Body.String())
}

