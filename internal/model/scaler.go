package model

import (
	"context"
	"fmt"

	"sigs.k8s.io/yaml"

	"github.com/Kirangv121/Remote-Equipment-Monitoring-and-Predictive-Maintenance-Dashboard/internal/types"
)

// Normalizer maps a raw reading into the model's input space.
type Normalizer interface {
	Transform(reading types.SensorReading) (types.NormalizedVector, error)
}

// ScalerParams is the persisted form of a fitted MinMaxScaler.
type ScalerParams struct {
	DataMin      []float64  `json:"data_min"`
	DataMax      []float64  `json:"data_max"`
	FeatureRange [2]float64 `json:"feature_range"`
}

// MinMaxScaler applies x*scale + offset per channel. Read-only after construction.
type MinMaxScaler struct {
	scale  []float64
	offset []float64
}

// NewMinMaxScaler builds a scaler from fitted parameters. A zero feature range
// defaults to [0, 1]. Channels whose data range is zero use a scale of 1.
func NewMinMaxScaler(p ScalerParams) (*MinMaxScaler, error) {
	if len(p.DataMin) == 0 {
		return nil, fmt.Errorf("scaler has no channels")
	}
	if len(p.DataMin) != len(p.DataMax) {
		return nil, fmt.Errorf("scaler data_min has %d channels, data_max has %d", len(p.DataMin), len(p.DataMax))
	}
	if err := types.CheckFinite("data_min", p.DataMin); err != nil {
		return nil, err
	}
	if err := types.CheckFinite("data_max", p.DataMax); err != nil {
		return nil, err
	}
	lo, hi := p.FeatureRange[0], p.FeatureRange[1]
	if lo == 0 && hi == 0 {
		hi = 1
	}
	if lo >= hi {
		return nil, fmt.Errorf("invalid feature_range [%g, %g]", lo, hi)
	}

	s := &MinMaxScaler{
		scale:  make([]float64, len(p.DataMin)),
		offset: make([]float64, len(p.DataMin)),
	}
	for i := range p.DataMin {
		dataRange := p.DataMax[i] - p.DataMin[i]
		if dataRange < 0 {
			return nil, fmt.Errorf("channel %d: data_max %g below data_min %g", i, p.DataMax[i], p.DataMin[i])
		}
		if dataRange == 0 {
			dataRange = 1
		}
		s.scale[i] = (hi - lo) / dataRange
		s.offset[i] = lo - p.DataMin[i]*s.scale[i]
	}
	return s, nil
}

// LoadMinMaxScaler reads and decodes a scaler artifact.
func LoadMinMaxScaler(ctx context.Context, store ArtifactStore, uri string) (*MinMaxScaler, error) {
	data, err := readArtifact(ctx, store, uri)
	if err != nil {
		return nil, fmt.Errorf("%w: read scaler %s: %v", types.ErrModelUnavailable, uri, err)
	}
	var p ScalerParams
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: decode scaler %s: %v", types.ErrModelUnavailable, uri, err)
	}
	s, err := NewMinMaxScaler(p)
	if err != nil {
		return nil, fmt.Errorf("%w: scaler %s: %v", types.ErrModelUnavailable, uri, err)
	}
	return s, nil
}

// Dimensions returns the number of channels the scaler was fitted on.
func (s *MinMaxScaler) Dimensions() int { return len(s.scale) }

// Transform implements Normalizer. The input is not modified.
func (s *MinMaxScaler) Transform(reading types.SensorReading) (types.NormalizedVector, error) {
	if len(reading) != len(s.scale) {
		return nil, &types.ShapeError{Stage: "scaler", Expected: len(s.scale), Got: len(reading)}
	}
	if err := types.CheckFinite("scaler", reading); err != nil {
		return nil, err
	}
	out := make(types.NormalizedVector, len(reading))
	for i, v := range reading {
		out[i] = v*s.scale[i] + s.offset[i]
	}
	return out, nil
}
