package types

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrShape is matched by every *ShapeError.
	ErrShape = errors.New("dimension mismatch")

	// ErrInvalidValue is matched by every *ValueError.
	ErrInvalidValue = errors.New("invalid channel value")

	// ErrModelUnavailable means the reconstruction model could not be loaded
	// or could not produce an output. No reading can be scored without it.
	ErrModelUnavailable = errors.New("model unavailable")
)

// ShapeError reports a vector whose length does not match what a pipeline
// stage expects. It fails a single invocation only.
type ShapeError struct {
	Stage    string // "scaler", "scorer", ...
	Expected int
	Got      int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: expected %d channels, got %d", e.Stage, e.Expected, e.Got)
}

// Is makes errors.Is(err, ErrShape) true for any *ShapeError.
func (e *ShapeError) Is(target error) bool {
	return target == ErrShape
}

// ValueError reports a channel holding NaN or an infinity. Like ShapeError it
// fails a single invocation only.
type ValueError struct {
	Stage   string
	Channel int
	Value   float64
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("%s: channel %d is not a finite number (%g)", e.Stage, e.Channel, e.Value)
}

// Is makes errors.Is(err, ErrInvalidValue) true for any *ValueError.
func (e *ValueError) Is(target error) bool {
	return target == ErrInvalidValue
}

// CheckFinite returns a *ValueError for the first NaN or infinite value in v.
func CheckFinite(stage string, v []float64) error {
	for i, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return &ValueError{Stage: stage, Channel: i, Value: x}
		}
	}
	return nil
}
