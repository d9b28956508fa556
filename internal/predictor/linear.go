package predictor

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// Feature names as used in model files. Ocean proximity enters the model
// one-hot encoded under "ocean_proximity_<CATEGORY>" keys.
const (
	featLongitude        = "longitude"
	featLatitude         = "latitude"
	featHousingMedianAge = "housing_median_age"
	featTotalRooms       = "total_rooms"
	featTotalBedrooms    = "total_bedrooms"
	featPopulation       = "population"
	featHouseholds       = "households"
	featMedianIncome     = "median_income"

	oceanProximityPrefix = "ocean_proximity_"
)

// Linear is a linear regression model over the eight numeric features and
// the one-hot encoded ocean proximity.
type Linear struct {
	bias    float64
	weights map[string]float64
}

type modelFile struct {
	Bias    float64            `json:"bias"`
	Weights map[string]float64 `json:"weights"`
}

// LoadLinear reads model coefficients from a JSON file.
func LoadLinear(path string) (*Linear, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model %s: %w", path, err)
	}
	var mf modelFile
	if err := json.Unmarshal(raw, &mf); err != nil {
		return nil, fmt.Errorf("parse model %s: %w", path, err)
	}
	if len(mf.Weights) == 0 {
		return nil, fmt.Errorf("model %s has no weights", path)
	}
	return &Linear{bias: mf.Bias, weights: mf.Weights}, nil
}

// NewLinear constructs a model from in-memory coefficients (tests, tooling).
func NewLinear(bias float64, weights map[string]float64) *Linear {
	return &Linear{bias: bias, weights: weights}
}

// Predict evaluates the model. Prices are rounded to cents and never
// negative.
func (m *Linear) Predict(f Features) (float64, error) {
	if err := f.Validate(); err != nil {
		return 0, err
	}
	v := m.bias
	v += m.weights[featLongitude] * f.Longitude
	v += m.weights[featLatitude] * f.Latitude
	v += m.weights[featHousingMedianAge] * f.HousingMedianAge
	v += m.weights[featTotalRooms] * f.TotalRooms
	v += m.weights[featTotalBedrooms] * f.TotalBedrooms
	v += m.weights[featPopulation] * f.Population
	v += m.weights[featHouseholds] * f.Households
	v += m.weights[featMedianIncome] * f.MedianIncome
	v += m.weights[oceanProximityPrefix+f.OceanProximity]

	v = math.Round(v*100) / 100
	if v < 0 {
		v = 0
	}
	return v, nil
}
