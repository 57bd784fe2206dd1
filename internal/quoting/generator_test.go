package quoting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/logger"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/models"
)

func newTestGenerator() *Generator {
	return NewGenerator(DefaultSettings(), logger.New("test"))
}

func TestGenerate_SinglePerUnitMapping(t *testing.T) {
	g := newTestGenerator()

	result := g.Generate(Input{
		Template: models.QuoteTemplate{ID: "t1", Name: "Reroof", WastePercent: 10},
		Mappings: []models.TemplateMapping{{
			ID:                 "m1",
			MeasurementType:    models.MeasurementRoofArea,
			CalculationType:    models.CalculationPerUnit,
			ProductDescription: "Colorbond roof sheeting",
			UnitPrice:          70,
			IsActive:           true,
		}},
		Extraction: models.MeasurementExtraction{TotalRoofArea: ptr(100.0)},
	})

	require.Len(t, result.Items, 1)
	item := result.Items[0]
	assert.Equal(t, 100.0, item.Qty)
	assert.Equal(t, 70.0, item.UnitCost)
	assert.Equal(t, 7000.0, item.Total)
	assert.Nil(t, item.LaborCost)
	assert.Equal(t, 100.0, item.MeasurementValue)
	assert.Equal(t, models.MeasurementRoofArea, item.MeasurementType)

	assert.Equal(t, 1, result.Summary.ItemCount)
	assert.Equal(t, 7000.0, result.Summary.Subtotal)
	assert.Equal(t, 10.0, result.Summary.WastePercent)
	assert.False(t, result.PricingAdjusted)
}

func TestGenerate_SkipsMissingAndZeroMeasurements(t *testing.T) {
	g := newTestGenerator()
	mapping := func(id string, mt models.MeasurementType, order int) models.TemplateMapping {
		return models.TemplateMapping{
			ID:              id,
			MeasurementType: mt,
			CalculationType: models.CalculationPerUnit,
			UnitPrice:       10,
			SortOrder:       order,
			IsActive:        true,
		}
	}
	mappings := []models.TemplateMapping{
		mapping("area", models.MeasurementRoofArea, 0),
		mapping("ridges", models.MeasurementRidges, 1),
		mapping("valleys", models.MeasurementValleys, 2),
		mapping("hips", models.MeasurementHips, 3),
	}
	extraction := models.MeasurementExtraction{
		TotalRoofArea: ptr(50.0),
		Ridges:        ptr(0.0),
		Hips:          ptr(8.0),
	}

	result := g.Generate(Input{Mappings: mappings, Extraction: extraction})

	require.Len(t, result.Items, 2)
	assert.Equal(t, models.MeasurementRoofArea, result.Items[0].MeasurementType)
	assert.Equal(t, models.MeasurementHips, result.Items[1].MeasurementType)
	assert.Equal(t, 580.0, result.Summary.Subtotal)
}

func TestGenerate_OrdersBySortOrderAndSkipsInactive(t *testing.T) {
	g := newTestGenerator()
	extraction := models.MeasurementExtraction{TotalRoofArea: ptr(10.0)}

	result := g.Generate(Input{
		Mappings: []models.TemplateMapping{
			{ID: "c", ProductDescription: "Third", MeasurementType: models.MeasurementFixedJob, CalculationType: models.CalculationFixed, SortOrder: 5, IsActive: true},
			{ID: "off", ProductDescription: "Disabled", MeasurementType: models.MeasurementRoofArea, CalculationType: models.CalculationPerUnit, SortOrder: 0, IsActive: false},
			{ID: "a", ProductDescription: "First", MeasurementType: models.MeasurementRoofArea, CalculationType: models.CalculationPerUnit, SortOrder: 1, IsActive: true},
			{ID: "b", ProductDescription: "Second", MeasurementType: models.MeasurementRoofArea, CalculationType: models.CalculationPerUnit, SortOrder: 1, IsActive: true},
		},
		Extraction: extraction,
	})

	require.Len(t, result.Items, 3)
	assert.Equal(t, "First", result.Items[0].Description)
	assert.Equal(t, "Second", result.Items[1].Description)
	assert.Equal(t, "Third", result.Items[2].Description)
	assert.Equal(t, 1.0, result.Items[2].Qty)
}

func TestGenerate_CoverageWasteAndLabor(t *testing.T) {
	g := newTestGenerator()

	result := g.Generate(Input{
		Template: models.QuoteTemplate{WastePercent: 10, LaborMarkupPercent: 20},
		Mappings: []models.TemplateMapping{{
			MeasurementType:     models.MeasurementRoofArea,
			CalculationType:     models.CalculationPerCoverage,
			CoveragePerUnit:     ptr(9.29),
			UnitPrice:           25,
			ApplyWaste:          true,
			LaborMinutesPerUnit: ptr(6.0),
			IsActive:            true,
		}},
		Extraction: models.MeasurementExtraction{TotalRoofArea: ptr(93.0)},
	})

	require.Len(t, result.Items, 1)
	item := result.Items[0]
	// ceil(93/9.29) = 11, then ceil(11 * 1.1) = 13
	assert.Equal(t, 13.0, item.Qty)
	// 6 min * 13 = 1.3h * 75 * 1.2 = 117
	require.NotNil(t, item.LaborCost)
	assert.Equal(t, 117.0, *item.LaborCost)
	assert.Equal(t, 442.0, item.Total)
	assert.Equal(t, 20.0, result.Summary.LaborMarkup)
}

func TestGenerate_BlendSetsPricingAdjusted(t *testing.T) {
	g := newTestGenerator()

	result := g.Generate(Input{
		Mappings: []models.TemplateMapping{{
			MeasurementType: models.MeasurementRidges,
			CalculationType: models.CalculationPerUnit,
			ProductID:       ptr("p1"),
			IsActive:        true,
		}},
		Extraction: models.MeasurementExtraction{Ridges: ptr(2.0)},
		Catalog:    []models.Item{{ID: "p1", ItemCode: "RC-100", SellPrice: 100, IsActive: true}},
		History:    historyWith("rc100", 50, 5),
	})

	require.Len(t, result.Items, 1)
	assert.Equal(t, 92.5, result.Items[0].UnitCost)
	assert.Equal(t, 185.0, result.Items[0].Total)
	require.NotNil(t, result.Items[0].HistoricalPricing)
	assert.True(t, result.Items[0].HistoricalPricing.Blended)
	assert.True(t, result.PricingAdjusted)
}

func TestGenerate_EmptyInput(t *testing.T) {
	result := newTestGenerator().Generate(Input{})

	assert.Empty(t, result.Items)
	assert.Equal(t, 0, result.Summary.ItemCount)
	assert.Equal(t, 0.0, result.Summary.Subtotal)
}
