package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/middleware"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/services"
)

// TemplateHandler handles quote template requests.
type TemplateHandler struct {
	service services.TemplateService
}

// NewTemplateHandler creates a new TemplateHandler instance.
func NewTemplateHandler(service services.TemplateService) *TemplateHandler {
	return &TemplateHandler{
		service: service,
	}
}

// Create handles POST /api/v1/templates.
func (h *TemplateHandler) Create(c *gin.Context) {
	var req services.CreateTemplateRequest
	if !bindJSON(c, &req) {
		return
	}

	template, err := h.service.CreateTemplate(c.Request.Context(), middleware.GetOrganizationID(c), req)
	if err != nil {
		respondServiceError(c, err, "Failed to create template")
		return
	}

	c.JSON(http.StatusCreated, template)
}

// Get handles GET /api/v1/templates/:id.
func (h *TemplateHandler) Get(c *gin.Context) {
	detail, err := h.service.GetTemplate(c.Request.Context(), middleware.GetOrganizationID(c), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "Failed to load template")
		return
	}

	c.JSON(http.StatusOK, detail)
}

// AddMapping handles POST /api/v1/templates/:id/mappings.
func (h *TemplateHandler) AddMapping(c *gin.Context) {
	var req services.AddMappingRequest
	if !bindJSON(c, &req) {
		return
	}

	mapping, err := h.service.AddMapping(c.Request.Context(), middleware.GetOrganizationID(c), c.Param("id"), req)
	if err != nil {
		respondServiceError(c, err, "Failed to add mapping")
		return
	}

	c.JSON(http.StatusCreated, mapping)
}

// Generate handles POST /api/v1/templates/generate.
// It builds a template from the organization's pricing history.
func (h *TemplateHandler) Generate(c *gin.Context) {
	var req services.GenerateTemplateRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	detail, err := h.service.GenerateFromPatterns(c.Request.Context(), middleware.GetOrganizationID(c), req.Name)
	if err != nil {
		respondServiceError(c, err, "Failed to generate template")
		return
	}

	c.JSON(http.StatusCreated, detail)
}
