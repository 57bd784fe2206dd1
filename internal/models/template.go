package models

import (
	"time"
)

// MeasurementType names the extraction field a mapping reads.
type MeasurementType string

// Supported measurement types.
const (
	MeasurementRoofArea     MeasurementType = "roof_area"
	MeasurementPitchedArea  MeasurementType = "pitched_area"
	MeasurementFlatArea     MeasurementType = "flat_area"
	MeasurementRidges       MeasurementType = "ridges"
	MeasurementEaves        MeasurementType = "eaves"
	MeasurementValleys      MeasurementType = "valleys"
	MeasurementHips         MeasurementType = "hips"
	MeasurementRakes        MeasurementType = "rakes"
	MeasurementWallFlashing MeasurementType = "wall_flashing"
	MeasurementStepFlashing MeasurementType = "step_flashing"
	MeasurementParapetWall  MeasurementType = "parapet_wall"
	MeasurementFixedJob     MeasurementType = "fixed_job"
)

// MeasurementTypes lists every measurement type in display order.
var MeasurementTypes = []MeasurementType{
	MeasurementRoofArea,
	MeasurementPitchedArea,
	MeasurementFlatArea,
	MeasurementRidges,
	MeasurementEaves,
	MeasurementValleys,
	MeasurementHips,
	MeasurementRakes,
	MeasurementWallFlashing,
	MeasurementStepFlashing,
	MeasurementParapetWall,
	MeasurementFixedJob,
}

// CalculationType selects how a mapping turns a measurement into a quantity.
type CalculationType string

// Supported calculation strategies.
const (
	CalculationPerUnit     CalculationType = "per_unit"
	CalculationPerCoverage CalculationType = "per_coverage"
	CalculationFixed       CalculationType = "fixed"
	CalculationFormula     CalculationType = "formula"
)

// QuoteTemplate is an organization-owned pricing configuration.
type QuoteTemplate struct {
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
	ID                 string    `json:"id"`
	OrganizationID     string    `json:"organizationId"`
	Name               string    `json:"name"`
	Description        string    `json:"description,omitempty"`
	WastePercent       float64   `json:"wastePercent"`
	LaborMarkupPercent float64   `json:"laborMarkupPercent"`
	IsActive           bool      `json:"isActive"`
	IsDefault          bool      `json:"isDefault"`
}

// TemplateMapping is one rule translating a measurement into a priced line item.
type TemplateMapping struct {
	CreatedAt           time.Time       `json:"createdAt"`
	ProductID           *string         `json:"productId,omitempty"`
	CoveragePerUnit     *float64        `json:"coveragePerUnit,omitempty"`
	CustomFormula       *string         `json:"customFormula,omitempty"`
	LaborMinutesPerUnit *float64        `json:"laborMinutesPerUnit,omitempty"`
	LaborRate           *float64        `json:"laborRate,omitempty"`
	ID                  string          `json:"id"`
	TemplateID          string          `json:"templateId"`
	MeasurementType     MeasurementType `json:"measurementType"`
	CalculationType     CalculationType `json:"calculationType"`
	ProductDescription  string          `json:"productDescription"`
	UnitPrice           float64         `json:"unitPrice"`
	SortOrder           int             `json:"sortOrder"`
	ApplyWaste          bool            `json:"applyWaste"`
	IsActive            bool            `json:"isActive"`
}
