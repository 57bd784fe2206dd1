package quoting

import (
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/models"
)

// MeasurementValue returns the extraction value a mapping of type mt reads,
// or nil when the extraction has no value for it. fixed_job always resolves
// to 1 so fixed-price jobs fire on every extraction.
func MeasurementValue(e models.MeasurementExtraction, mt models.MeasurementType) *float64 {
	switch mt {
	case models.MeasurementRoofArea:
		return e.TotalRoofArea
	case models.MeasurementPitchedArea:
		return e.PitchedRoofArea
	case models.MeasurementFlatArea:
		if e.FlatRoofArea != nil {
			return e.FlatRoofArea
		}
		return derivedFlatArea(e)
	case models.MeasurementRidges:
		return e.Ridges
	case models.MeasurementEaves:
		return e.Eaves
	case models.MeasurementValleys:
		return e.Valleys
	case models.MeasurementHips:
		return e.Hips
	case models.MeasurementRakes:
		return e.Rakes
	case models.MeasurementWallFlashing:
		return e.WallFlashing
	case models.MeasurementStepFlashing:
		return e.StepFlashing
	case models.MeasurementParapetWall:
		return e.ParapetWall
	case models.MeasurementFixedJob:
		one := 1.0
		return &one
	default:
		return nil
	}
}

// derivedFlatArea is total minus pitched area when both are known.
func derivedFlatArea(e models.MeasurementExtraction) *float64 {
	if e.TotalRoofArea == nil || e.PitchedRoofArea == nil {
		return nil
	}
	flat := *e.TotalRoofArea - *e.PitchedRoofArea
	if flat <= 0 {
		return nil
	}
	return &flat
}
