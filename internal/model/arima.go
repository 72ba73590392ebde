package model

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// arimaModel serves predictions for ARIMA(p,d,q) in intercept form:
//
//	w_t = c + sum_i ar_i*w_{t-1-i} + sum_j ma_j*e_{t-1-j} + e_t
//
// where w is y differenced d times. Pre-sample shocks are zero.
type arimaModel struct {
	order Order
	c     float64
	arRev []float64 // AR coefficients, highest lag first
	maRev []float64 // MA coefficients, highest lag first

	y     []float64
	w     []float64
	resid []float64
	binom []float64 // binom[k] = C(d,k) * (-1)^k
}

func newARIMA(a Artifact) (*arimaModel, error) {
	o := a.Order
	if o.P < 0 || o.D < 0 || o.Q < 0 {
		return nil, fmt.Errorf("%w: negative order %s", ErrInvalidArtifact, o)
	}
	if o.D > 2 {
		return nil, fmt.Errorf("%w: differencing order %d > 2", ErrInvalidArtifact, o.D)
	}
	if len(a.AR) != o.P {
		return nil, fmt.Errorf("%w: %d ar coefficients for p=%d", ErrInvalidArtifact, len(a.AR), o.P)
	}
	if len(a.MA) != o.Q {
		return nil, fmt.Errorf("%w: %d ma coefficients for q=%d", ErrInvalidArtifact, len(a.MA), o.Q)
	}
	if !allFinite(a.AR) || !allFinite(a.MA) || !allFinite([]float64{a.Const}) {
		return nil, fmt.Errorf("%w: non-finite coefficients", ErrInvalidArtifact)
	}
	if len(a.Endog) <= o.D {
		return nil, fmt.Errorf("%w: %d observations cannot support d=%d", ErrInvalidArtifact, len(a.Endog), o.D)
	}

	m := &arimaModel{
		order: o,
		c:     a.Const,
		arRev: reversed(a.AR),
		maRev: reversed(a.MA),
		y:     append([]float64(nil), a.Endog...),
		binom: signedBinomial(o.D),
	}
	m.w = difference(m.y, o.D)

	m.resid = make([]float64, len(m.w))
	for t := range m.w {
		m.resid[t] = m.w[t] - m.step(m.w, m.resid, t)
	}
	return m, nil
}

func (m *arimaModel) firstIndex() int {
	return m.order.D
}

func (m *arimaModel) describe() string {
	return "arima" + m.order.String()
}

// step is the one-step prediction of w[t] given w and shocks before t.
func (m *arimaModel) step(w, resid []float64, t int) float64 {
	return m.c + lagDot(m.arRev, w, t) + lagDot(m.maRev, resid, t)
}

// integrate undoes differencing for position t given the values of y before t.
func (m *arimaModel) integrate(wt float64, y []float64, t int) float64 {
	v := wt
	for k := 1; k < len(m.binom); k++ {
		v -= m.binom[k] * y[t-k]
	}
	return v
}

func (m *arimaModel) predict(start, end int) []float64 {
	n := len(m.y)
	d := m.order.D
	out := make([]float64, 0, end-start+1)

	for t := start; t <= end && t < n; t++ {
		fitted := m.w[t-d] - m.resid[t-d]
		out = append(out, m.integrate(fitted, m.y, t))
	}
	if end < n {
		return out
	}

	y := append(make([]float64, 0, end+1), m.y...)
	w := append(make([]float64, 0, end+1-d), m.w...)
	resid := append(make([]float64, 0, end+1-d), m.resid...)

	for t := n; t <= end; t++ {
		wt := m.step(w, resid, t-d)
		w = append(w, wt)
		resid = append(resid, 0)
		y = append(y, m.integrate(wt, y, t))
		if t >= start {
			out = append(out, y[t])
		}
	}
	return out
}

// lagDot returns sum_i coef_i * x[t-1-i] over the lags available before t.
// coefRev holds the coefficients highest lag first.
func lagDot(coefRev, x []float64, t int) float64 {
	k := min(len(coefRev), t)
	if k == 0 {
		return 0
	}
	return floats.Dot(coefRev[len(coefRev)-k:], x[t-k:t])
}

func difference(series []float64, d int) []float64 {
	out := append([]float64(nil), series...)
	for i := 0; i < d; i++ {
		next := make([]float64, len(out)-1)
		floats.SubTo(next, out[1:], out[:len(out)-1])
		out = next
	}
	return out
}

func signedBinomial(d int) []float64 {
	out := make([]float64, d+1)
	c := 1.0
	for k := 0; k <= d; k++ {
		if k > 0 {
			c = c * float64(d-k+1) / float64(k)
		}
		if k%2 == 0 {
			out[k] = c
		} else {
			out[k] = -c
		}
	}
	return out
}

func reversed(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[len(xs)-1-i] = x
	}
	return out
}
