package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apierrors "github.com/sblmetalroofing-oss/Rprime-sub003/internal/errors"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/models"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/quoting"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/services"
)

func TestQuoteHandler_Generate(t *testing.T) {
	req := services.GenerateQuoteRequest{ExtractionID: "ext-1", TemplateID: "tpl-1"}

	t.Run("returns generated items", func(t *testing.T) {
		api := setupTestAPI(nil)
		api.quotes.On("GenerateQuoteItems", mock.Anything, testOrg, req).Return(&services.GenerateQuoteResponse{
			Items: []models.GeneratedQuoteItem{
				{Description: "Colorbond Roof Sheet", Qty: 100, UnitCost: 70, Total: 7000},
			},
			Template:   services.TemplateRef{ID: "tpl-1", Name: "Standard"},
			Extraction: services.ExtractionRef{ID: "ext-1"},
			Summary:    quoting.Summary{ItemCount: 1, Subtotal: 7000},
		}, nil)

		w := api.do(http.MethodPost, "/api/v1/quotes/generate", req)

		assertStatus(t, http.StatusOK, w)
		var resp services.GenerateQuoteResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Items, 1)
		assert.Equal(t, 7000.0, resp.Summary.Subtotal)
		assert.Equal(t, "Standard", resp.Template.Name)
		assert.Nil(t, resp.HistoricalContext)
		api.quotes.AssertExpectations(t)
	})

	t.Run("missing template id fails binding", func(t *testing.T) {
		api := setupTestAPI(nil)

		w := api.do(http.MethodPost, "/api/v1/quotes/generate", map[string]string{"extractionId": "ext-1"})

		assertStatus(t, http.StatusBadRequest, w)
		body := decodeError(t, w)
		assert.Equal(t, apierrors.ErrValidation, body.Code)
		api.quotes.AssertNotCalled(t, "GenerateQuoteItems", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("malformed body", func(t *testing.T) {
		api := setupTestAPI(nil)

		w := api.do(http.MethodPost, "/api/v1/quotes/generate", "{not json")

		assertStatus(t, http.StatusBadRequest, w)
		assert.Equal(t, apierrors.ErrBadRequest, decodeError(t, w).Code)
	})

	t.Run("unknown extraction is 404", func(t *testing.T) {
		api := setupTestAPI(nil)
		api.quotes.On("GenerateQuoteItems", mock.Anything, testOrg, req).
			Return(nil, fmt.Errorf("%w: extraction ext-1", services.ErrNotFound))

		w := api.do(http.MethodPost, "/api/v1/quotes/generate", req)

		assertStatus(t, http.StatusNotFound, w)
		body := decodeError(t, w)
		assert.Equal(t, apierrors.ErrNotFound, body.Code)
		assert.Equal(t, "req-test", body.RequestID)
	})

	t.Run("unexpected failure is 500", func(t *testing.T) {
		api := setupTestAPI(nil)
		api.quotes.On("GenerateQuoteItems", mock.Anything, testOrg, req).
			Return(nil, errors.New("connection reset"))

		w := api.do(http.MethodPost, "/api/v1/quotes/generate", req)

		assertStatus(t, http.StatusInternalServerError, w)
		body := decodeError(t, w)
		assert.Equal(t, apierrors.ErrInternalServer, body.Code)
		assert.NotContains(t, body.Message, "connection reset")
	})

	t.Run("missing organization header", func(t *testing.T) {
		api := setupTestAPI(nil)
		r := httptest.NewRequest(http.MethodPost, "/api/v1/quotes/generate", nil)
		w := httptest.NewRecorder()

		api.router.ServeHTTP(w, r)

		assertStatus(t, http.StatusBadRequest, w)
		assert.Contains(t, decodeError(t, w).Message, "X-Organization-ID")
	})
}
