package model

import (
	"context"
	"fmt"
	"math"

	"sigs.k8s.io/yaml"

	"github.com/Kirangv121/Remote-Equipment-Monitoring-and-Predictive-Maintenance-Dashboard/internal/types"
)

// Predictor reconstructs a normalized vector. Implementations must be safe
// for concurrent use.
type Predictor interface {
	Predict(in types.NormalizedVector) (types.NormalizedVector, error)
	InputDim() int
}

// AutoencoderSpec is the persisted form of a dense autoencoder.
type AutoencoderSpec struct {
	InputDim int         `json:"input_dim"`
	Layers   []LayerSpec `json:"layers"`
}

// LayerSpec is one dense layer. Kernel is indexed [input][unit].
type LayerSpec struct {
	Kernel     [][]float64 `json:"kernel"`
	Bias       []float64   `json:"bias"`
	Activation string      `json:"activation"`
}

type activation func(float64) float64

var activations = map[string]activation{
	"":       func(x float64) float64 { return x },
	"linear": func(x float64) float64 { return x },
	"relu":   func(x float64) float64 { return math.Max(0, x) },
	"sigmoid": func(x float64) float64 {
		return 1 / (1 + math.Exp(-x))
	},
	"tanh": math.Tanh,
}

type denseLayer struct {
	kernel [][]float64
	bias   []float64
	act    activation
}

// Autoencoder evaluates a stack of dense layers. Read-only after construction.
type Autoencoder struct {
	inputDim int
	layers   []denseLayer
}

// NewAutoencoder validates layer shapes and builds the model. The last layer
// must map back to InputDim.
func NewAutoencoder(spec AutoencoderSpec) (*Autoencoder, error) {
	if spec.InputDim <= 0 {
		return nil, fmt.Errorf("input_dim must be positive, got %d", spec.InputDim)
	}
	if len(spec.Layers) == 0 {
		return nil, fmt.Errorf("model has no layers")
	}

	m := &Autoencoder{inputDim: spec.InputDim}
	width := spec.InputDim
	for i, l := range spec.Layers {
		act, ok := activations[l.Activation]
		if !ok {
			return nil, fmt.Errorf("layer %d: unsupported activation %q", i, l.Activation)
		}
		if len(l.Kernel) != width {
			return nil, fmt.Errorf("layer %d: kernel has %d rows, expected %d", i, len(l.Kernel), width)
		}
		units := len(l.Bias)
		if units == 0 {
			return nil, fmt.Errorf("layer %d: bias is empty", i)
		}
		for r, row := range l.Kernel {
			if len(row) != units {
				return nil, fmt.Errorf("layer %d: kernel row %d has %d columns, expected %d", i, r, len(row), units)
			}
			if err := types.CheckFinite("kernel", row); err != nil {
				return nil, fmt.Errorf("layer %d row %d: %w", i, r, err)
			}
		}
		if err := types.CheckFinite("bias", l.Bias); err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		m.layers = append(m.layers, denseLayer{kernel: l.Kernel, bias: l.Bias, act: act})
		width = units
	}
	if width != spec.InputDim {
		return nil, fmt.Errorf("output width %d does not reconstruct input_dim %d", width, spec.InputDim)
	}
	return m, nil
}

// LoadAutoencoder reads and decodes a model artifact. Every failure wraps
// types.ErrModelUnavailable.
func LoadAutoencoder(ctx context.Context, store ArtifactStore, uri string) (*Autoencoder, error) {
	data, err := readArtifact(ctx, store, uri)
	if err != nil {
		return nil, fmt.Errorf("%w: read model %s: %v", types.ErrModelUnavailable, uri, err)
	}
	var spec AutoencoderSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("%w: decode model %s: %v", types.ErrModelUnavailable, uri, err)
	}
	m, err := NewAutoencoder(spec)
	if err != nil {
		return nil, fmt.Errorf("%w: model %s: %v", types.ErrModelUnavailable, uri, err)
	}
	return m, nil
}

// InputDim implements Predictor.
func (m *Autoencoder) InputDim() int { return m.inputDim }

// Predict implements Predictor.
func (m *Autoencoder) Predict(in types.NormalizedVector) (types.NormalizedVector, error) {
	if len(in) != m.inputDim {
		return nil, &types.ShapeError{Stage: "model", Expected: m.inputDim, Got: len(in)}
	}
	cur := []float64(in)
	for _, l := range m.layers {
		next := make([]float64, len(l.bias))
		copy(next, l.bias)
		for i, x := range cur {
			if x == 0 {
				continue
			}
			for j, w := range l.kernel[i] {
				next[j] += x * w
			}
		}
		for j := range next {
			next[j] = l.act(next[j])
		}
		cur = next
	}
	return types.NormalizedVector(cur), nil
}
