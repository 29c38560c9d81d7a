package entities

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidThresholds = errors.New("invalid moisture thresholds")

// Thresholds is the soil-moisture dead band (percent). Between Min and Max,
// bounds included, the irrigation state is held.
type Thresholds struct {
	Min float64 `json:"min_th"`
	Max float64 `json:"max_th"`
}

func (t Thresholds) Validate() error {
	if math.IsNaN(t.Min) || math.IsInf(t.Min, 0) || math.IsNaN(t.Max) || math.IsInf(t.Max, 0) {
		return fmt.Errorf("%w: min=%v max=%v must be finite", ErrInvalidThresholds, t.Min, t.Max)
	}
	if t.Min >= t.Max {
		return fmt.Errorf("%w: min=%v must be lower than max=%v", ErrInvalidThresholds, t.Min, t.Max)
	}
	return nil
}
