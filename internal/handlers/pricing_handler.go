package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	apierrors "github.com/sblmetalroofing-oss/Rprime-sub003/internal/errors"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/middleware"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/models"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/services"
)

// MaxUploadBytes caps the size of an uploaded import file.
const MaxUploadBytes = 20 << 20

// PricingHandler handles pricing history imports and listings.
type PricingHandler struct {
	service services.ImportService
}

// NewPricingHandler creates a new PricingHandler instance.
func NewPricingHandler(service services.ImportService) *PricingHandler {
	return &PricingHandler{
		service: service,
	}
}

// ImportCSVRequest is the JSON form of a Tradify export upload.
type ImportCSVRequest struct {
	CSVContent string `json:"csvContent" binding:"required"`
	Filename   string `json:"filename"`
}

// ImportPDFRequest is the JSON form of a quote PDF upload.
type ImportPDFRequest struct {
	PDFBase64 string `json:"pdfBase64" binding:"required"`
	Filename  string `json:"filename"`
}

// ImportSessionResponse wraps a completed import session.
type ImportSessionResponse struct {
	Session *models.PricingImportSession `json:"session"`
}

// SessionsResponse lists import sessions.
type SessionsResponse struct {
	Sessions []models.PricingImportSession `json:"sessions"`
	Count    int                           `json:"count"`
}

// PatternsResponse lists pricing patterns.
type PatternsResponse struct {
	Patterns []models.PricingPattern `json:"patterns"`
	Count    int                     `json:"count"`
}

// ImportCSV handles POST /api/v1/pricing/import/csv.
// Accepts JSON {csvContent, filename} or a multipart "file" upload; uploads
// ending in .xlsx are read as workbooks. A failed import reports its session
// id in the error details.
func (h *PricingHandler) ImportCSV(c *gin.Context) {
	orgID := middleware.GetOrganizationID(c)

	var (
		session *models.PricingImportSession
		err     error
	)
	if isMultipart(c) {
		data, filename, ok := readUpload(c)
		if !ok {
			return
		}
		if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
			session, err = h.service.ImportPricingXLSX(c.Request.Context(), orgID, data, filename)
		} else {
			session, err = h.service.ImportPricingCSV(c.Request.Context(), orgID, string(data), filename)
		}
	} else {
		var req ImportCSVRequest
		if !bindJSON(c, &req) {
			return
		}
		session, err = h.service.ImportPricingCSV(c.Request.Context(), orgID, req.CSVContent, defaultFilename(req.Filename, "import.csv"))
	}
	if err != nil {
		var sessionID string
		if session != nil {
			sessionID = session.ID
		}
		respondImportError(c, err, sessionID, "Failed to import pricing history")
		return
	}

	c.JSON(http.StatusOK, ImportSessionResponse{Session: session})
}

// ImportPDF handles POST /api/v1/pricing/import/pdf.
// Accepts JSON {pdfBase64, filename} or a multipart "file" upload.
func (h *PricingHandler) ImportPDF(c *gin.Context) {
	orgID := middleware.GetOrganizationID(c)

	var (
		result *services.PDFImportResult
		err    error
	)
	if isMultipart(c) {
		data, filename, ok := readUpload(c)
		if !ok {
			return
		}
		result, err = h.service.ImportPricingPDF(c.Request.Context(), orgID, data, filename)
	} else {
		var req ImportPDFRequest
		if !bindJSON(c, &req) {
			return
		}
		result, err = h.service.ImportPricingPDFBase64(c.Request.Context(), orgID, req.PDFBase64, defaultFilename(req.Filename, "quote.pdf"))
	}
	if err != nil {
		var sessionID string
		if result != nil {
			sessionID = result.SessionID
		}
		respondImportError(c, err, sessionID, "Failed to import quote PDF")
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListImports handles GET /api/v1/pricing/imports.
func (h *PricingHandler) ListImports(c *gin.Context) {
	sessions, err := h.service.ListSessions(c.Request.Context(), middleware.GetOrganizationID(c))
	if err != nil {
		respondServiceError(c, err, "Failed to list import sessions")
		return
	}
	if sessions == nil {
		sessions = []models.PricingImportSession{}
	}

	c.JSON(http.StatusOK, SessionsResponse{Sessions: sessions, Count: len(sessions)})
}

// ListPatterns handles GET /api/v1/pricing/patterns?source=.
func (h *PricingHandler) ListPatterns(c *gin.Context) {
	source := strings.TrimSpace(c.Query("source"))

	patterns, err := h.service.ListPatterns(c.Request.Context(), middleware.GetOrganizationID(c), source)
	if err != nil {
		respondServiceError(c, err, "Failed to list pricing patterns")
		return
	}
	if patterns == nil {
		patterns = []models.PricingPattern{}
	}

	c.JSON(http.StatusOK, PatternsResponse{Patterns: patterns, Count: len(patterns)})
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// readUpload reads the multipart "file" field, writing the error response on failure.
func readUpload(c *gin.Context) ([]byte, string, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		apierrors.BadRequest(c, "Multipart upload must include a file field", nil)
		return nil, "", false
	}
	if header.Size > MaxUploadBytes {
		apierrors.BadRequest(c, fmt.Sprintf("File exceeds the %d MB upload limit", MaxUploadBytes>>20), map[string]interface{}{
			"size": header.Size,
		})
		return nil, "", false
	}

	f, err := header.Open()
	if err != nil {
		apierrors.InternalServerError(c, "Failed to read upload", err)
		return nil, "", false
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxUploadBytes))
	if err != nil {
		apierrors.InternalServerError(c, "Failed to read upload", err)
		return nil, "", false
	}
	return data, header.Filename, true
}

func defaultFilename(name, fallback string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return fallback
}
