package model

import (
	"fmt"
)

// holtModel is Holt's linear trend method with optional damping.
type holtModel struct {
	alpha, beta, phi float64

	fitted []float64 // one-step fitted values, index 0 unused
	level  float64
	trend  float64
	n      int
}

func newHolt(a Artifact) (*holtModel, error) {
	phi := a.Phi
	if phi == 0 {
		phi = 1
	}
	if a.Alpha <= 0 || a.Alpha > 1 {
		return nil, fmt.Errorf("%w: alpha %v not in (0,1]", ErrInvalidArtifact, a.Alpha)
	}
	if a.Beta < 0 || a.Beta > 1 {
		return nil, fmt.Errorf("%w: beta %v not in [0,1]", ErrInvalidArtifact, a.Beta)
	}
	if phi < 0 || phi > 1 {
		return nil, fmt.Errorf("%w: phi %v not in (0,1]", ErrInvalidArtifact, phi)
	}

	y := a.Endog
	m := &holtModel{
		alpha:  a.Alpha,
		beta:   a.Beta,
		phi:    phi,
		fitted: make([]float64, len(y)),
		n:      len(y),
	}

	level := y[0]
	trend := 0.0
	if len(y) > 1 {
		trend = y[1] - y[0]
	}
	for t := 1; t < len(y); t++ {
		m.fitted[t] = level + phi*trend
		prev := level
		level = m.alpha*y[t] + (1-m.alpha)*(prev+phi*trend)
		trend = m.beta*(level-prev) + (1-m.beta)*phi*trend
	}
	m.level = level
	m.trend = trend
	return m, nil
}

func (m *holtModel) firstIndex() int {
	return 1
}

func (m *holtModel) describe() string {
	return fmt.Sprintf("holt(alpha=%g,beta=%g,phi=%g)", m.alpha, m.beta, m.phi)
}

func (m *holtModel) predict(start, end int) []float64 {
	out := make([]float64, 0, end-start+1)
	for t := start; t <= end && t < m.n; t++ {
		out = append(out, m.fitted[t])
	}

	damp := 0.0
	pow := 1.0
	for t := m.n; t <= end; t++ {
		pow *= m.phi
		damp += pow
		if t >= start {
			out = append(out, m.level+damp*m.trend)
		}
	}
	return out
}
