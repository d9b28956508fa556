// Package predictor evaluates the housing price model.
package predictor

import (
	"errors"
	"fmt"
)

// Ocean proximity categories accepted by the model.
var OceanProximityValues = []string{
	"<1H OCEAN",
	"INLAND",
	"ISLAND",
	"NEAR BAY",
	"NEAR OCEAN",
}

// Features describes one property to price.
type Features struct {
	Longitude        float64 `json:"longitude"`
	Latitude         float64 `json:"latitude"`
	HousingMedianAge float64 `json:"housing_median_age"`
	TotalRooms       float64 `json:"total_rooms"`
	TotalBedrooms    float64 `json:"total_bedrooms"`
	Population       float64 `json:"population"`
	Households       float64 `json:"households"`
	MedianIncome     float64 `json:"median_income"`
	OceanProximity   string  `json:"ocean_proximity"`
}

// Validate checks value ranges and the ocean proximity category.
func (f Features) Validate() error {
	switch {
	case f.Longitude < -180 || f.Longitude > 180:
		return errors.New("longitude out of range [-180, 180]")
	case f.Latitude < -90 || f.Latitude > 90:
		return errors.New("latitude out of range [-90, 90]")
	case f.HousingMedianAge < 0 || f.HousingMedianAge > 100:
		return errors.New("housing_median_age out of range [0, 100]")
	case f.TotalRooms < 0, f.TotalBedrooms < 0, f.Population < 0, f.Households < 0, f.MedianIncome < 0:
		return errors.New("counts and income must be non-negative")
	}
	for _, v := range OceanProximityValues {
		if f.OceanProximity == v {
			return nil
		}
	}
	return fmt.Errorf("unknown ocean_proximity %q", f.OceanProximity)
}

// Predictor is the opaque pricing function the gated API fronts.
type Predictor interface {
	// Predict returns the predicted median house value for the features.
	Predict(f Features) (float64, error)
}
