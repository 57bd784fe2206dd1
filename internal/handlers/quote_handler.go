package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/middleware"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/services"
)

// QuoteHandler handles quote generation requests.
type QuoteHandler struct {
	service services.QuoteService
}

// NewQuoteHandler creates a new QuoteHandler instance.
func NewQuoteHandler(service services.QuoteService) *QuoteHandler {
	return &QuoteHandler{
		service: service,
	}
}

// Generate handles POST /api/v1/quotes/generate.
// It prices a template against an extraction and returns the line items for
// review; nothing is persisted.
func (h *QuoteHandler) Generate(c *gin.Context) {
	var req services.GenerateQuoteRequest
	if !bindJSON(c, &req) {
		return
	}

	if log := middleware.GetLogger(c); log != nil {
		log.Info("Processing quote generation request", map[string]interface{}{
			"extraction_id": req.ExtractionID,
			"template_id":   req.TemplateID,
		})
	}

	resp, err := h.service.GenerateQuoteItems(c.Request.Context(), middleware.GetOrganizationID(c), req)
	if err != nil {
		respondServiceError(c, err, "Failed to generate quote items")
		return
	}

	c.JSON(http.StatusOK, resp)
}
