package model

import (
	"context"
	"errors"
	"io"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kirangv121/Remote-Equipment-Monitoring-and-Predictive-Maintenance-Dashboard/internal/types"
)

// identityModel reconstructs its input plus a constant shift.
type identityModel struct {
	dim   int
	shift float64
	err   error
	short bool
}

func (m *identityModel) InputDim() int { return m.dim }

func (m *identityModel) Predict(in types.NormalizedVector) (types.NormalizedVector, error) {
	if m.err != nil {
		return nil, m.err
	}
	n := len(in)
	if m.short {
		n--
	}
	out := make(types.NormalizedVector, n)
	for i := range out {
		out[i] = in[i] + m.shift
	}
	return out, nil
}

type memStore map[string]string

func (s memStore) Open(_ context.Context, uri string) (io.ReadCloser, error) {
	data, ok := s[uri]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(strings.NewReader(data)), nil
}

func loadTestdata(t *testing.T) (*MinMaxScaler, *Scorer) {
	t.Helper()
	store, err := NewArtifacts(S3Options{})
	require.NoError(t, err)
	ctx := context.Background()

	scaler, err := LoadMinMaxScaler(ctx, store, filepath.Join("testdata", "scaler.yaml"))
	require.NoError(t, err)
	ae, err := LoadAutoencoder(ctx, store, "file://"+mustAbs(t, filepath.Join("testdata", "autoencoder.yaml")))
	require.NoError(t, err)
	return scaler, NewScorer(ae)
}

func mustAbs(t *testing.T, p string) string {
	t.Helper()
	abs, err := filepath.Abs(p)
	require.NoError(t, err)
	return abs
}

func TestScorer_MeanSquaredError(t *testing.T) {
	s := NewScorer(&identityModel{dim: 4, shift: 0.5})
	got, err := s.Score(types.NormalizedVector{0, 1, 2, 3})
	require.NoError(t, err)
	assert.InDelta(t, 0.25, got, 1e-12)
}

func TestScorer_PerfectReconstruction(t *testing.T) {
	s := NewScorer(&identityModel{dim: 3})
	got, err := s.Score(types.NormalizedVector{0.1, 0.2, 0.3})
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestScorer_ShapeMismatch(t *testing.T) {
	s := NewScorer(&identityModel{dim: 7})
	_, err := s.Score(types.NormalizedVector{1, 2, 3})
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrShape))

	var se *types.ShapeError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "scorer", se.Stage)
	assert.Equal(t, 7, se.Expected)
	assert.Equal(t, 3, se.Got)
}

func TestScorer_PredictFailureIsModelUnavailable(t *testing.T) {
	s := NewScorer(&identityModel{dim: 2, err: errors.New("boom")})
	_, err := s.Score(types.NormalizedVector{1, 2})
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrModelUnavailable))
}

func TestScorer_ShortOutputIsModelUnavailable(t *testing.T) {
	s := NewScorer(&identityModel{dim: 2, short: true})
	_, err := s.Score(types.NormalizedVector{1, 2})
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrModelUnavailable))
}

func TestScorer_OverflowSaturates(t *testing.T) {
	tests := []struct {
		name  string
		model *identityModel
		v     types.NormalizedVector
	}{
		{name: "squared difference overflows", model: &identityModel{dim: 2, shift: 1e300}, v: types.NormalizedVector{-1e300, 0}},
		{name: "infinite input", model: &identityModel{dim: 1}, v: types.NormalizedVector{math.Inf(1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewScorer(tt.model).Score(tt.v)
			require.NoError(t, err)
			assert.Equal(t, MaxScore, got)
		})
	}
}

func TestShippedArtifacts_ExtremeReadingScoresMax(t *testing.T) {
	scaler, scorer := loadTestdata(t)
	v, err := scaler.Transform(types.SensorReading{1e308, 1e308, 0, 0, 0, 0, 0})
	require.NoError(t, err)

	got, err := scorer.Score(v)
	require.NoError(t, err, "a finite reading must never surface as model unavailable")
	assert.Equal(t, MaxScore, got)
	assert.False(t, math.IsInf(got, 0))
}

func TestScorer_Deterministic(t *testing.T) {
	scaler, scorer := loadTestdata(t)
	v, err := scaler.Transform(types.SensorReading{105, 950, 80, 50, 45, 300, 10})
	require.NoError(t, err)

	first, err := scorer.Score(v)
	require.NoError(t, err)
	second, err := scorer.Score(v)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestShippedArtifacts_Scenarios(t *testing.T) {
	scaler, scorer := loadTestdata(t)

	tests := []struct {
		name      string
		reading   types.SensorReading
		anomalous bool
	}{
		{name: "overheated and overloaded", reading: types.SensorReading{105, 950, 80, 50, 45, 300, 10}, anomalous: true},
		{name: "nominal", reading: types.SensorReading{50, 500, 80, 20, 10, 300, 10}, anomalous: false},
		{name: "drift below every cutoff", reading: types.SensorReading{90, 850, 80, 40, 35, 300, 10}, anomalous: true},
		{name: "near nominal", reading: types.SensorReading{60, 520, 80, 22, 12, 300, 10}, anomalous: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := scaler.Transform(tt.reading)
			require.NoError(t, err)
			score, err := scorer.Score(v)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, score, 0.0)
			assert.Equal(t, tt.anomalous, score > 0.01, "score=%g", score)
		})
	}
}

func TestMinMaxScaler_Transform(t *testing.T) {
	s, err := NewMinMaxScaler(ScalerParams{
		DataMin: []float64{0, 10, 5},
		DataMax: []float64{10, 30, 5},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, s.Dimensions())

	reading := types.SensorReading{5, 40, 7}
	got, err := s.Transform(reading)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, got[0], 1e-12)
	assert.InDelta(t, 1.5, got[1], 1e-12, "values outside the fitted range are not clipped")
	assert.InDelta(t, 2.0, got[2], 1e-12, "zero data range uses a scale of 1")
	assert.Equal(t, types.SensorReading{5, 40, 7}, reading, "input must not be modified")
}

func TestMinMaxScaler_CustomFeatureRange(t *testing.T) {
	s, err := NewMinMaxScaler(ScalerParams{
		DataMin:      []float64{0},
		DataMax:      []float64{10},
		FeatureRange: [2]float64{-1, 1},
	})
	require.NoError(t, err)
	got, err := s.Transform(types.SensorReading{10})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got[0], 1e-12)
}

func TestMinMaxScaler_ShapeMismatch(t *testing.T) {
	s, err := NewMinMaxScaler(ScalerParams{DataMin: []float64{0, 0}, DataMax: []float64{1, 1}})
	require.NoError(t, err)
	_, err = s.Transform(types.SensorReading{1, 2, 3})
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrShape))
}

func TestMinMaxScaler_NonFiniteReading(t *testing.T) {
	s, err := NewMinMaxScaler(ScalerParams{DataMin: []float64{0, 0}, DataMax: []float64{1, 1}})
	require.NoError(t, err)

	tests := []struct {
		name    string
		reading types.SensorReading
		channel int
	}{
		{name: "NaN", reading: types.SensorReading{0.5, math.NaN()}, channel: 1},
		{name: "+Inf", reading: types.SensorReading{math.Inf(1), 0.5}, channel: 0},
		{name: "-Inf", reading: types.SensorReading{0.5, math.Inf(-1)}, channel: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Transform(tt.reading)
			require.Error(t, err)
			assert.True(t, errors.Is(err, types.ErrInvalidValue))
			assert.False(t, errors.Is(err, types.ErrModelUnavailable))

			var ve *types.ValueError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, "scaler", ve.Stage)
			assert.Equal(t, tt.channel, ve.Channel)
		})
	}
}

func TestNewMinMaxScaler_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		params ScalerParams
		want   string
	}{
		{name: "empty", params: ScalerParams{}, want: "no channels"},
		{name: "length mismatch", params: ScalerParams{DataMin: []float64{0}, DataMax: []float64{1, 2}}, want: "data_max has 2"},
		{name: "inverted range", params: ScalerParams{DataMin: []float64{5}, DataMax: []float64{1}}, want: "below data_min"},
		{name: "bad feature range", params: ScalerParams{DataMin: []float64{0}, DataMax: []float64{1}, FeatureRange: [2]float64{1, 0}}, want: "invalid feature_range"},
		{name: "NaN data_min", params: ScalerParams{DataMin: []float64{math.NaN()}, DataMax: []float64{1}}, want: "data_min: channel 0 is not a finite number"},
		{name: "infinite data_max", params: ScalerParams{DataMin: []float64{0}, DataMax: []float64{math.Inf(1)}}, want: "data_max: channel 0 is not a finite number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMinMaxScaler(tt.params)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestAutoencoder_Predict(t *testing.T) {
	ae, err := NewAutoencoder(AutoencoderSpec{
		InputDim: 2,
		Layers: []LayerSpec{
			{Kernel: [][]float64{{1}, {1}}, Bias: []float64{-1}, Activation: "relu"},
			{Kernel: [][]float64{{2, 3}}, Bias: []float64{0.5, 0}, Activation: "linear"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, ae.InputDim())

	out, err := ae.Predict(types.NormalizedVector{1, 2})
	require.NoError(t, err)
	// hidden = relu(1+2-1) = 2; out = [2*2+0.5, 2*3]
	assert.InDeltaSlice(t, []float64{4.5, 6}, []float64(out), 1e-12)

	out, err = ae.Predict(types.NormalizedVector{0, 0})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.5, 0}, []float64(out), 1e-12, "relu clamps the negative pre-activation")
}

func TestAutoencoder_Activations(t *testing.T) {
	for _, act := range []string{"", "linear", "relu", "sigmoid", "tanh"} {
		t.Run("activation="+act, func(t *testing.T) {
			ae, err := NewAutoencoder(AutoencoderSpec{
				InputDim: 1,
				Layers:   []LayerSpec{{Kernel: [][]float64{{0}}, Bias: []float64{0}, Activation: act}},
			})
			require.NoError(t, err)
			out, err := ae.Predict(types.NormalizedVector{3})
			require.NoError(t, err)
			want := 0.0
			if act == "sigmoid" {
				want = 0.5
			}
			assert.InDelta(t, want, out[0], 1e-12)
		})
	}
}

func TestNewAutoencoder_Invalid(t *testing.T) {
	tests := []struct {
		name string
		spec AutoencoderSpec
		want string
	}{
		{name: "no input dim", spec: AutoencoderSpec{}, want: "input_dim must be positive"},
		{name: "no layers", spec: AutoencoderSpec{InputDim: 2}, want: "no layers"},
		{
			name: "unknown activation",
			spec: AutoencoderSpec{InputDim: 1, Layers: []LayerSpec{{Kernel: [][]float64{{1}}, Bias: []float64{0}, Activation: "softmax"}}},
			want: "unsupported activation",
		},
		{
			name: "kernel rows",
			spec: AutoencoderSpec{InputDim: 2, Layers: []LayerSpec{{Kernel: [][]float64{{1, 1}}, Bias: []float64{0, 0}}}},
			want: "kernel has 1 rows",
		},
		{
			name: "kernel columns",
			spec: AutoencoderSpec{InputDim: 1, Layers: []LayerSpec{{Kernel: [][]float64{{1, 1}}, Bias: []float64{0}}}},
			want: "has 2 columns",
		},
		{
			name: "NaN kernel",
			spec: AutoencoderSpec{InputDim: 1, Layers: []LayerSpec{{Kernel: [][]float64{{math.NaN()}}, Bias: []float64{0}}}},
			want: "kernel: channel 0 is not a finite number",
		},
		{
			name: "infinite bias",
			spec: AutoencoderSpec{InputDim: 1, Layers: []LayerSpec{{Kernel: [][]float64{{1}}, Bias: []float64{math.Inf(-1)}}}},
			want: "bias: channel 0 is not a finite number",
		},
		{
			name: "does not reconstruct",
			spec: AutoencoderSpec{InputDim: 2, Layers: []LayerSpec{{Kernel: [][]float64{{1}, {1}}, Bias: []float64{0}}}},
			want: "does not reconstruct",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAutoencoder(tt.spec)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadAutoencoder_FailuresAreModelUnavailable(t *testing.T) {
	store, err := NewArtifacts(S3Options{})
	require.NoError(t, err)
	ctx := context.Background()

	tests := []struct {
		name string
		uri  string
	}{
		{name: "missing file", uri: filepath.Join("testdata", "does-not-exist.yaml")},
		{name: "corrupt file", uri: filepath.Join("testdata", "corrupt.yaml")},
		{name: "s3 without endpoint", uri: "s3://models/autoencoder.yaml"},
		{name: "unsupported scheme", uri: "ftp://models/autoencoder.yaml"},
		{name: "empty uri", uri: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadAutoencoder(ctx, store, tt.uri)
			require.Error(t, err)
			assert.True(t, errors.Is(err, types.ErrModelUnavailable), "got %v", err)
		})
	}
}

func TestLoadFromCustomStore_JSON(t *testing.T) {
	store := memStore{
		"mem://model":  `{"input_dim":1,"layers":[{"kernel":[[1]],"bias":[0],"activation":"linear"}]}`,
		"mem://scaler": `{"data_min":[0],"data_max":[2]}`,
	}
	ctx := context.Background()

	ae, err := LoadAutoencoder(ctx, store, "mem://model")
	require.NoError(t, err)
	scaler, err := LoadMinMaxScaler(ctx, store, "mem://scaler")
	require.NoError(t, err)

	v, err := scaler.Transform(types.SensorReading{1})
	require.NoError(t, err)
	score, err := NewScorer(ae).Score(v)
	require.NoError(t, err)
	assert.Zero(t, score)

	_, err = LoadMinMaxScaler(ctx, store, "mem://missing")
	assert.True(t, errors.Is(err, types.ErrModelUnavailable))
}
