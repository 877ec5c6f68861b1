package model

import (
	"fmt"
	"math"

	"github.com/Kirangv121/Remote-Equipment-Monitoring-and-Predictive-Maintenance-Dashboard/internal/types"
)

// MaxScore is reported when the reconstruction error overflows. It is above
// any threshold and still encodes as JSON.
const MaxScore = math.MaxFloat64

// Scorer computes reconstruction error against a Predictor.
type Scorer struct {
	model Predictor
}

// NewScorer creates a Scorer for the given model.
func NewScorer(model Predictor) *Scorer {
	return &Scorer{model: model}
}

// InputDim is the vector length Score accepts.
func (s *Scorer) InputDim() int { return s.model.InputDim() }

// Score returns the mean squared difference between v and its reconstruction.
// Inputs large enough to overflow the arithmetic score MaxScore.
func (s *Scorer) Score(v types.NormalizedVector) (float64, error) {
	dim := s.model.InputDim()
	if len(v) != dim {
		return 0, &types.ShapeError{Stage: "scorer", Expected: dim, Got: len(v)}
	}

	out, err := s.model.Predict(v)
	if err != nil {
		return 0, fmt.Errorf("%w: predict: %v", types.ErrModelUnavailable, err)
	}
	if len(out) != len(v) {
		return 0, fmt.Errorf("%w: model returned %d values for %d inputs", types.ErrModelUnavailable, len(out), len(v))
	}

	var sum float64
	for i := range v {
		d := v[i] - out[i]
		sum += d * d
	}
	mse := sum / float64(len(v))
	if math.IsNaN(mse) || math.IsInf(mse, 0) {
		return MaxScore, nil
	}
	return mse, nil
}
