// Package model loads a previously fitted time-series model and serves index-based
// predictions from it.
//
// The index space is the model's own: position 0 is the first training observation
// and position TrainedLength() is the first step after the training window. Calendar
// dates are not known to this package.
package model

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/goccy/go-json"
)

var (
	ErrInvalidArtifact = errors.New("invalid model artifact")
	ErrUnknownKind     = errors.New("unknown model kind")
	ErrIndexRange      = errors.New("prediction index out of range")
	ErrNonFinite       = errors.New("model produced a non-finite value")
)

// Kind names a model family supported by the artifact format.
type Kind string

const (
	KindARIMA Kind = "arima"
	KindHolt  Kind = "holt"
)

// Order is the (p, d, q) order of an ARIMA model.
type Order struct {
	P int `json:"p"`
	D int `json:"d"`
	Q int `json:"q"`
}

func (o Order) String() string {
	return fmt.Sprintf("(%d,%d,%d)", o.P, o.D, o.Q)
}

// Artifact is the serialized form of a fitted model.
type Artifact struct {
	Kind Kind   `json:"kind"`
	Name string `json:"name,omitempty"`

	// ARIMA parameters. Const is the intercept of the differenced series.
	Order  Order     `json:"order"`
	Const  float64   `json:"const"`
	AR     []float64 `json:"ar,omitempty"`
	MA     []float64 `json:"ma,omitempty"`
	Sigma2 float64   `json:"sigma2,omitempty"`

	// Holt parameters. Phi of 0 means undamped.
	Alpha float64 `json:"alpha,omitempty"`
	Beta  float64 `json:"beta,omitempty"`
	Phi   float64 `json:"phi,omitempty"`

	// MaxHorizon bounds how far past the training window predictions are served (0 = unbounded).
	MaxHorizon int `json:"max_horizon,omitempty"`

	// Endog holds the observations the model was fitted on, in order.
	Endog []float64 `json:"endog"`
}

// predictor is implemented by each model family. predict receives an already
// validated inclusive range.
type predictor interface {
	firstIndex() int
	predict(start, end int) []float64
	describe() string
}

// Info summarizes a loaded model.
type Info struct {
	Name          string `json:"name"`
	Kind          Kind   `json:"kind"`
	Spec          string `json:"spec"`
	TrainedLength int    `json:"trained_length"`
	MaxHorizon    int    `json:"max_horizon"`
}

// Handle is an immutable fitted model. It is safe for concurrent use.
type Handle struct {
	name          string
	kind          Kind
	trainedLength int
	maxHorizon    int
	impl          predictor
}

// Fetcher returns the raw contents of a source location.
type Fetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// Load fetches and decodes the artifact at location.
func Load(ctx context.Context, fetcher Fetcher, location string) (*Handle, error) {
	data, err := fetcher.Fetch(ctx, location)
	if err != nil {
		return nil, err
	}
	h, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", location, err)
	}
	return h, nil
}

// Decode parses a JSON artifact.
func Decode(data []byte) (*Handle, error) {
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}
	return FromArtifact(a)
}

// FromArtifact validates an artifact and builds a Handle from it.
func FromArtifact(a Artifact) (*Handle, error) {
	if len(a.Endog) == 0 {
		return nil, fmt.Errorf("%w: endog is empty", ErrInvalidArtifact)
	}
	if !allFinite(a.Endog) {
		return nil, fmt.Errorf("%w: endog contains non-finite values", ErrInvalidArtifact)
	}
	if a.MaxHorizon < 0 {
		return nil, fmt.Errorf("%w: max_horizon must be >= 0", ErrInvalidArtifact)
	}

	kind := a.Kind
	if kind == "" {
		kind = KindARIMA
	}

	var (
		impl predictor
		err  error
	)
	switch kind {
	case KindARIMA:
		impl, err = newARIMA(a)
	case KindHolt:
		impl, err = newHolt(a)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, a.Kind)
	}
	if err != nil {
		return nil, err
	}

	name := a.Name
	if name == "" {
		name = string(kind)
	}

	return &Handle{
		name:          name,
		kind:          kind,
		trainedLength: len(a.Endog),
		maxHorizon:    a.MaxHorizon,
		impl:          impl,
	}, nil
}

// TrainedLength is the number of observations the model was fitted on.
func (h *Handle) TrainedLength() int {
	return h.trainedLength
}

// Info describes the loaded model.
func (h *Handle) Info() Info {
	return Info{
		Name:          h.name,
		Kind:          h.kind,
		Spec:          h.impl.describe(),
		TrainedLength: h.trainedLength,
		MaxHorizon:    h.maxHorizon,
	}
}

// Predict returns one value per index in the inclusive range [start, end], in
// ascending index order.
func (h *Handle) Predict(start, end int) ([]float64, error) {
	if start > end {
		return nil, fmt.Errorf("%w: start %d > end %d", ErrIndexRange, start, end)
	}
	if first := h.impl.firstIndex(); start < first {
		return nil, fmt.Errorf("%w: start %d precedes first predictable index %d", ErrIndexRange, start, first)
	}
	if h.maxHorizon > 0 && end >= h.trainedLength+h.maxHorizon {
		return nil, fmt.Errorf("%w: end %d beyond model horizon %d", ErrIndexRange, end, h.trainedLength+h.maxHorizon-1)
	}

	out := h.impl.predict(start, end)
	if !allFinite(out) {
		return nil, ErrNonFinite
	}
	return out, nil
}

func allFinite(xs []float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
