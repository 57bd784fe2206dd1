package models

import (
	"time"
)

// MeasurementExtraction is a set of roof measurements extracted from an
// uploaded measurement report. Nullable fields use pointers to distinguish a
// missing measurement from a zero one.
type MeasurementExtraction struct {
	CreatedAt       time.Time `json:"createdAt"`
	ID              string    `json:"id"`
	OrganizationID  string    `json:"organizationId"`
	Address         string    `json:"address,omitempty"`
	TotalRoofArea   *float64  `json:"totalRoofArea,omitempty"`
	PitchedRoofArea *float64  `json:"pitchedRoofArea,omitempty"`
	FlatRoofArea    *float64  `json:"flatRoofArea,omitempty"`
	Ridges          *float64  `json:"ridges,omitempty"`
	Eaves           *float64  `json:"eaves,omitempty"`
	Valleys         *float64  `json:"valleys,omitempty"`
	Hips            *float64  `json:"hips,omitempty"`
	Rakes           *float64  `json:"rakes,omitempty"`
	WallFlashing    *float64  `json:"wallFlashing,omitempty"`
	StepFlashing    *float64  `json:"stepFlashing,omitempty"`
	ParapetWall     *float64  `json:"parapetWall,omitempty"`
}
