package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/formula"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/logger"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/models"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/repository"
)

// Template validation constants
const (
	MinWastePercent    = 0.0
	MaxWastePercent    = 100.0
	MaxCoveragePerUnit = 1000.0
)

// DefaultGeneratedTemplateName names templates built from pricing history
// when the caller gives no name.
const DefaultGeneratedTemplateName = "Generated from pricing history"

// CreateTemplateRequest describes a new quote template.
type CreateTemplateRequest struct {
	Name               string   `json:"name" binding:"required"`
	Description        string   `json:"description"`
	WastePercent       *float64 `json:"wastePercent"`
	LaborMarkupPercent *float64 `json:"laborMarkupPercent"`
	IsDefault          bool     `json:"isDefault"`
}

// AddMappingRequest describes a mapping appended to a template.
type AddMappingRequest struct {
	MeasurementType     string   `json:"measurementType" binding:"required"`
	CalculationType     string   `json:"calculationType" binding:"required"`
	ProductID           *string  `json:"productId"`
	ProductDescription  string   `json:"productDescription" binding:"required"`
	UnitPrice           float64  `json:"unitPrice" binding:"gte=0"`
	CoveragePerUnit     *float64 `json:"coveragePerUnit"`
	CustomFormula       *string  `json:"customFormula"`
	LaborMinutesPerUnit *float64 `json:"laborMinutesPerUnit"`
	LaborRate           *float64 `json:"laborRate"`
	ApplyWaste          *bool    `json:"applyWaste"`
	SortOrder           *int     `json:"sortOrder"`
	IsActive            *bool    `json:"isActive"`
}

// GenerateTemplateRequest names a template built from pricing history.
type GenerateTemplateRequest struct {
	Name string `json:"name"`
}

// TemplateDetail is a template together with its mappings.
type TemplateDetail struct {
	models.QuoteTemplate
	Mappings []models.TemplateMapping `json:"mappings"`
}

// TemplateService defines quote template operations.
type TemplateService interface {
	// CreateTemplate stores a new template. Returns ErrValidation for a
	// missing name or out-of-range percentages.
	CreateTemplate(ctx context.Context, organizationID string, req CreateTemplateRequest) (*models.QuoteTemplate, error)

	// AddMapping appends a mapping to an existing template.
	// Returns ErrNotFound if the template does not belong to the organization.
	// Returns ErrValidation for unknown enums, bad coverage or an invalid formula.
	AddMapping(ctx context.Context, organizationID, templateID string, req AddMappingRequest) (*models.TemplateMapping, error)

	// GetTemplate returns a template with its mappings in sort order.
	GetTemplate(ctx context.Context, organizationID, templateID string) (*TemplateDetail, error)

	// GenerateFromPatterns builds a template from the organization's most
	// frequent historical line items. Returns ErrNotFound when no pattern
	// matches any measurement type.
	GenerateFromPatterns(ctx context.Context, organizationID, name string) (*TemplateDetail, error)
}

type templateService struct {
	templates    repository.TemplateRepository
	patterns     repository.PatternRepository
	defaultWaste float64
	log          *logger.Logger
}

// NewTemplateService creates a new instance of TemplateService.
func NewTemplateService(templates repository.TemplateRepository, patterns repository.PatternRepository, defaultWaste float64, log *logger.Logger) TemplateService {
	return &templateService{
		templates:    templates,
		patterns:     patterns,
		defaultWaste: defaultWaste,
		log:          log,
	}
}

func (s *templateService) CreateTemplate(ctx context.Context, organizationID string, req CreateTemplateRequest) (*models.QuoteTemplate, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}

	waste := s.defaultWaste
	if req.WastePercent != nil {
		waste = *req.WastePercent
	}
	if waste < MinWastePercent || waste > MaxWastePercent {
		s.log.Warn("Invalid waste percent provided", map[string]interface{}{
			"waste_percent": waste,
		})
		return nil, fmt.Errorf("%w: wastePercent must be between %.0f and %.0f, got %g",
			ErrValidation, MinWastePercent, MaxWastePercent, waste)
	}

	var markup float64
	if req.LaborMarkupPercent != nil {
		markup = *req.LaborMarkupPercent
	}
	if markup < 0 {
		return nil, fmt.Errorf("%w: laborMarkupPercent must be non-negative, got %g", ErrValidation, markup)
	}

	t := &models.QuoteTemplate{
		OrganizationID:     organizationID,
		Name:               name,
		Description:        strings.TrimSpace(req.Description),
		WastePercent:       waste,
		LaborMarkupPercent: markup,
		IsActive:           true,
		IsDefault:          req.IsDefault,
	}
	if err := s.templates.Create(ctx, t); err != nil {
		s.log.Error("Failed to create template", err, map[string]interface{}{
			"organization_id": organizationID,
			"name":            name,
		})
		return nil, fmt.Errorf("failed to create template: %w", err)
	}

	s.log.Info("Template created", map[string]interface{}{
		"organization_id": organizationID,
		"template_id":     t.ID,
	})
	return t, nil
}

func (s *templateService) AddMapping(ctx context.Context, organizationID, templateID string, req AddMappingRequest) (*models.TemplateMapping, error) {
	m, err := mappingFromRequest(req)
	if err != nil {
		s.log.Warn("Invalid mapping rejected", map[string]interface{}{
			"template_id": templateID,
			"reason":      err.Error(),
		})
		return nil, err
	}

	fields := map[string]interface{}{
		"organization_id": organizationID,
		"template_id":     templateID,
	}

	template, err := s.templates.GetByID(ctx, organizationID, templateID)
	if err != nil {
		s.log.Error("Failed to load template", err, fields)
		return nil, fmt.Errorf("failed to load template: %w", err)
	}
	if template == nil {
		return nil, fmt.Errorf("%w: template %s", ErrNotFound, templateID)
	}

	if req.SortOrder == nil {
		existing, err := s.templates.ListMappings(ctx, template.ID)
		if err != nil {
			s.log.Error("Failed to load template mappings", err, fields)
			return nil, fmt.Errorf("failed to load template mappings: %w", err)
		}
		m.SortOrder = len(existing)
	}

	m.TemplateID = template.ID
	if err := s.templates.CreateMapping(ctx, m); err != nil {
		s.log.Error("Failed to create mapping", err, fields)
		return nil, fmt.Errorf("failed to create mapping: %w", err)
	}

	s.log.Info("Mapping added", map[string]interface{}{
		"template_id":      template.ID,
		"mapping_id":       m.ID,
		"measurement_type": m.MeasurementType,
		"calculation_type": m.CalculationType,
	})
	return m, nil
}

// mappingFromRequest validates a mapping request and builds the mapping.
func mappingFromRequest(req AddMappingRequest) (*models.TemplateMapping, error) {
	measurement := models.MeasurementType(strings.TrimSpace(req.MeasurementType))
	if !validMeasurementType(measurement) {
		return nil, fmt.Errorf("%w: unknown measurementType %q", ErrValidation, req.MeasurementType)
	}

	calculation := models.CalculationType(strings.TrimSpace(req.CalculationType))
	switch calculation {
	case models.CalculationPerUnit, models.CalculationFixed:
	case models.CalculationPerCoverage:
		if req.CoveragePerUnit == nil || *req.CoveragePerUnit <= 0 || *req.CoveragePerUnit > MaxCoveragePerUnit {
			return nil, fmt.Errorf("%w: coveragePerUnit must be greater than 0 and at most %.0f", ErrValidation, MaxCoveragePerUnit)
		}
	case models.CalculationFormula:
		if req.CustomFormula == nil || strings.TrimSpace(*req.CustomFormula) == "" {
			return nil, fmt.Errorf("%w: customFormula is required for formula mappings", ErrValidation)
		}
		compiled, err := formula.Compile(*req.CustomFormula)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrValidation, err)
		}
		normalized := compiled.String()
		req.CustomFormula = &normalized
	default:
		return nil, fmt.Errorf("%w: unknown calculationType %q", ErrValidation, req.CalculationType)
	}

	description := strings.TrimSpace(req.ProductDescription)
	if description == "" {
		return nil, fmt.Errorf("%w: productDescription is required", ErrValidation)
	}
	if req.UnitPrice < 0 {
		return nil, fmt.Errorf("%w: unitPrice must be non-negative", ErrValidation)
	}
	if req.LaborMinutesPerUnit != nil && *req.LaborMinutesPerUnit < 0 {
		return nil, fmt.Errorf("%w: laborMinutesPerUnit must be non-negative", ErrValidation)
	}
	if req.LaborRate != nil && *req.LaborRate < 0 {
		return nil, fmt.Errorf("%w: laborRate must be non-negative", ErrValidation)
	}

	m := &models.TemplateMapping{
		MeasurementType:     measurement,
		CalculationType:     calculation,
		ProductID:           req.ProductID,
		ProductDescription:  description,
		UnitPrice:           req.UnitPrice,
		LaborMinutesPerUnit: req.LaborMinutesPerUnit,
		LaborRate:           req.LaborRate,
		ApplyWaste:          true,
		IsActive:            true,
	}
	if calculation == models.CalculationPerCoverage {
		m.CoveragePerUnit = req.CoveragePerUnit
	}
	if calculation == models.CalculationFormula {
		m.CustomFormula = req.CustomFormula
	}
	if req.ApplyWaste != nil {
		m.ApplyWaste = *req.ApplyWaste
	}
	if req.IsActive != nil {
		m.IsActive = *req.IsActive
	}
	if req.SortOrder != nil {
		m.SortOrder = *req.SortOrder
	}
	return m, nil
}

func validMeasurementType(t models.MeasurementType) bool {
	for _, known := range models.MeasurementTypes {
		if t == known {
			return true
		}
	}
	return false
}

func (s *templateService) GetTemplate(ctx context.Context, organizationID, templateID string) (*TemplateDetail, error) {
	fields := map[string]interface{}{
		"organization_id": organizationID,
		"template_id":     templateID,
	}

	template, err := s.templates.GetByID(ctx, organizationID, templateID)
	if err != nil {
		s.log.Error("Failed to load template", err, fields)
		return nil, fmt.Errorf("failed to load template: %w", err)
	}
	if template == nil {
		return nil, fmt.Errorf("%w: template %s", ErrNotFound, templateID)
	}

	mappings, err := s.templates.ListMappings(ctx, template.ID)
	if err != nil {
		s.log.Error("Failed to load template mappings", err, fields)
		return nil, fmt.Errorf("failed to load template mappings: %w", err)
	}
	sort.SliceStable(mappings, func(i, j int) bool {
		return mappings[i].SortOrder < mappings[j].SortOrder
	})

	return &TemplateDetail{QuoteTemplate: *template, Mappings: mappings}, nil
}

// patternKeywords lists, per measurement type, the fragments of a
// normalized description that identify a matching line item.
var patternKeywords = map[models.MeasurementType][]string{
	models.MeasurementRoofArea:     {"roof sheet", "roofing sheet", "corrugated", "trimdek", "klip lok"},
	models.MeasurementPitchedArea:  {"pitched", "sarking", "insulation"},
	models.MeasurementFlatArea:     {"flat roof", "membrane", "torch on"},
	models.MeasurementRidges:       {"ridge"},
	models.MeasurementEaves:        {"eave", "gutter", "fascia"},
	models.MeasurementValleys:      {"valley"},
	models.MeasurementHips:         {"hip"},
	models.MeasurementRakes:        {"barge", "rake", "verge"},
	models.MeasurementWallFlashing: {"wall flashing", "apron flashing", "apron"},
	models.MeasurementStepFlashing: {"step flashing"},
	models.MeasurementParapetWall:  {"parapet", "capping"},
	models.MeasurementFixedJob:     {"site setup", "scaffold", "disposal", "skip bin"},
}

var areaMeasurements = map[models.MeasurementType]bool{
	models.MeasurementRoofArea:    true,
	models.MeasurementPitchedArea: true,
	models.MeasurementFlatArea:    true,
}

func (s *templateService) GenerateFromPatterns(ctx context.Context, organizationID, name string) (*TemplateDetail, error) {
	fields := map[string]interface{}{
		"organization_id": organizationID,
	}
	s.log.Info("Generating template from pricing patterns", fields)

	stored, err := s.patterns.ListByOrganization(ctx, organizationID, "")
	if err != nil {
		s.log.Error("Failed to load pricing patterns", err, fields)
		return nil, fmt.Errorf("failed to load pricing patterns: %w", err)
	}

	picks := pickPatterns(stored)
	if len(picks) == 0 {
		return nil, fmt.Errorf("%w: no pricing patterns match a measurement type", ErrNotFound)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultGeneratedTemplateName
	}
	template := &models.QuoteTemplate{
		OrganizationID: organizationID,
		Name:           name,
		Description:    fmt.Sprintf("Built from %d pricing patterns", len(picks)),
		WastePercent:   s.defaultWaste,
		IsActive:       true,
	}
	if err := s.templates.Create(ctx, template); err != nil {
		s.log.Error("Failed to create template", err, fields)
		return nil, fmt.Errorf("failed to create template: %w", err)
	}

	title := cases.Title(language.Und)
	mappings := make([]models.TemplateMapping, 0, len(picks))
	for i, pick := range picks {
		calculation := models.CalculationPerUnit
		if pick.measurement == models.MeasurementFixedJob {
			calculation = models.CalculationFixed
		}
		m := models.TemplateMapping{
			TemplateID:         template.ID,
			MeasurementType:    pick.measurement,
			CalculationType:    calculation,
			ProductID:          pick.pattern.ProductID,
			ProductDescription: title.String(pick.pattern.Description),
			UnitPrice:          pick.pattern.AvgUnitPrice,
			ApplyWaste:         areaMeasurements[pick.measurement],
			SortOrder:          i,
			IsActive:           true,
		}
		if err := s.templates.CreateMapping(ctx, &m); err != nil {
			s.log.Error("Failed to create mapping", err, map[string]interface{}{
				"template_id":      template.ID,
				"measurement_type": pick.measurement,
			})
			return nil, fmt.Errorf("failed to create mapping: %w", err)
		}
		mappings = append(mappings, m)
	}

	s.log.Info("Template generated from pricing patterns", map[string]interface{}{
		"organization_id": organizationID,
		"template_id":     template.ID,
		"mappings":        len(mappings),
	})
	return &TemplateDetail{QuoteTemplate: *template, Mappings: mappings}, nil
}

type patternPick struct {
	measurement models.MeasurementType
	pattern     models.PricingPattern
}

// pickPatterns chooses, per measurement type in display order, the most
// frequent unused pattern whose key contains one of the type's keywords.
func pickPatterns(stored []models.PricingPattern) []patternPick {
	ranked := make([]models.PricingPattern, 0, len(stored))
	for _, p := range stored {
		if p.NormalizedKey != "" && p.AvgUnitPrice > 0 {
			ranked = append(ranked, p)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].OccurrenceCount != ranked[j].OccurrenceCount {
			return ranked[i].OccurrenceCount > ranked[j].OccurrenceCount
		}
		return ranked[i].NormalizedKey < ranked[j].NormalizedKey
	})

	used := make(map[string]bool)
	var picks []patternPick
	for _, measurement := range models.MeasurementTypes {
		for _, p := range ranked {
			if used[p.NormalizedKey] || !containsAny(p.NormalizedKey, patternKeywords[measurement]) {
				continue
			}
			used[p.NormalizedKey] = true
			picks = append(picks, patternPick{measurement: measurement, pattern: p})
			break
		}
	}
	return picks
}

func containsAny(key string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(key, kw) {
			return true
		}
	}
	return false
}
