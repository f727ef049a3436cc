/*
Copyright © 2018 the opcsim authors.
This file is part of opcsim.

opcsim is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

opcsim is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with opcsim.  If not, see <http://www.gnu.org/licenses/>.
*/

package opcsim

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

// FitKind specifies the functional form of a calibration curve.
type FitKind int

// Available calibration curve forms.
const (
	// SplineFit is a monotone cubic spline through the calibration points
	// in log-log space.
	SplineFit FitKind = iota

	// LinearFit is a straight line in log-log space, i.e. a power law.
	LinearFit

	// ExponentialFit is C = A·exp(K·Dp).
	ExponentialFit

	// TanhFit is a saturating curve, ln C = a + b·tanh(c·(ln Dp − x0)).
	TanhFit
)

func (k FitKind) String() string {
	switch k {
	case SplineFit:
		return "spline"
	case LinearFit:
		return "linear"
	case ExponentialFit:
		return "exponential"
	case TanhFit:
		return "tanh"
	default:
		return fmt.Sprintf("FitKind(%d)", int(k))
	}
}

// ParseFitKind returns the FitKind named by s.
func ParseFitKind(s string) (FitKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "spline", "":
		return SplineFit, nil
	case "linear", "powerlaw", "power law":
		return LinearFit, nil
	case "exponential", "exp":
		return ExponentialFit, nil
	case "tanh":
		return TanhFit, nil
	default:
		return SplineFit, fmt.Errorf("opcsim: invalid calibration fit %q; valid options are spline, linear, exponential, and tanh: %w",
			s, ErrInvalidParameter)
	}
}

// A Calibration relates particle diameter [µm] to the scattering signal
// [cm²] that an instrument records.
type Calibration interface {
	// Forward returns the signal for a particle of diameter dp.
	Forward(dp float64) float64

	// Invert returns the diameter that produces signal. It returns
	// ErrCalibration if the curve cannot be inverted at signal.
	Invert(signal float64) (float64, error)

	// Monotonic reports whether the curve increases strictly
	// over its domain.
	Monotonic() bool

	Kind() FitKind

	// Domain returns the diameter range that the curve was fit to.
	Domain() (lo, hi float64)
}

// FitCalibration fits a curve of the given kind to the signals observed
// for particles of diameters dps. dps must increase and the signals must
// be positive. A fit that does not increase monotonically over the
// domain is rejected with ErrCalibration.
func FitCalibration(kind FitKind, dps, signals []float64) (Calibration, error) {
	if err := checkCalibrationData(dps, signals); err != nil {
		return nil, err
	}
	var c Calibration
	var err error
	switch kind {
	case SplineFit:
		c, err = fitSpline(dps, signals)
	case LinearFit:
		c, err = fitPowerLaw(dps, signals)
	case ExponentialFit:
		c, err = fitExponential(dps, signals)
	case TanhFit:
		c, err = fitTanh(dps, signals)
	default:
		return nil, fmt.Errorf("opcsim: invalid calibration fit %v: %w", kind, ErrInvalidParameter)
	}
	if err != nil {
		return nil, err
	}
	if !c.Monotonic() {
		return nil, fmt.Errorf("opcsim: %v calibration curve does not increase over [%g, %g] µm: %w",
			kind, dps[0], dps[len(dps)-1], ErrCalibration)
	}
	return c, nil
}

func checkCalibrationData(dps, signals []float64) error {
	if len(dps) != len(signals) {
		return fmt.Errorf("opcsim: %d calibration diameters but %d signals: %w", len(dps), len(signals), ErrInvalidParameter)
	}
	if len(dps) < 3 {
		return fmt.Errorf("opcsim: at least 3 calibration points are needed but %d were given: %w", len(dps), ErrInvalidParameter)
	}
	if err := checkEdges(dps); err != nil {
		return err
	}
	for i, s := range signals {
		if !(s > 0) || math.IsInf(s, 0) {
			return fmt.Errorf("opcsim: calibration signal %d must be positive but is %g: %w", i, s, ErrCalibration)
		}
	}
	return nil
}

func logs(v []float64) []float64 {
	o := make([]float64, len(v))
	for i, x := range v {
		o[i] = math.Log(x)
	}
	return o
}

// PowerLaw is the calibration curve C = A·Dp^B.
type PowerLaw struct {
	A, B   float64
	lo, hi float64
}

func fitPowerLaw(dps, signals []float64) (*PowerLaw, error) {
	alpha, beta := stat.LinearRegression(logs(dps), logs(signals), nil, false)
	return &PowerLaw{A: math.Exp(alpha), B: beta, lo: dps[0], hi: dps[len(dps)-1]}, nil
}

// Forward implements Calibration.
func (p *PowerLaw) Forward(dp float64) float64 { return p.A * math.Pow(dp, p.B) }

// Invert implements Calibration.
func (p *PowerLaw) Invert(signal float64) (float64, error) {
	if !(signal > 0) || !p.Monotonic() {
		return math.NaN(), fmt.Errorf("opcsim: cannot invert power law calibration at signal %g: %w", signal, ErrCalibration)
	}
	return math.Pow(signal/p.A, 1/p.B), nil
}

// Monotonic implements Calibration.
func (p *PowerLaw) Monotonic() bool { return p.B > 0 && p.A > 0 }

// Kind implements Calibration.
func (p *PowerLaw) Kind() FitKind { return LinearFit }

// Domain implements Calibration.
func (p *PowerLaw) Domain() (lo, hi float64) { return p.lo, p.hi }

// Exponential is the calibration curve C = A·exp(K·Dp).
type Exponential struct {
	A, K   float64
	lo, hi float64
}

func fitExponential(dps, signals []float64) (*Exponential, error) {
	alpha, beta := stat.LinearRegression(dps, logs(signals), nil, false)
	return &Exponential{A: math.Exp(alpha), K: beta, lo: dps[0], hi: dps[len(dps)-1]}, nil
}

// Forward implements Calibration.
func (e *Exponential) Forward(dp float64) float64 { return e.A * math.Exp(e.K*dp) }

// Invert implements Calibration. Signals below A have no positive
// diameter and cannot be inverted.
func (e *Exponential) Invert(signal float64) (float64, error) {
	if !(signal > e.A) || !e.Monotonic() {
		return math.NaN(), fmt.Errorf("opcsim: cannot invert exponential calibration at signal %g: %w", signal, ErrCalibration)
	}
	return math.Log(signal/e.A) / e.K, nil
}

// Monotonic implements Calibration.
func (e *Exponential) Monotonic() bool { return e.K > 0 && e.A > 0 }

// Kind implements Calibration.
func (e *Exponential) Kind() FitKind { return ExponentialFit }

// Domain implements Calibration.
func (e *Exponential) Domain() (lo, hi float64) { return e.lo, e.hi }

// squashDips replaces each point that is higher than its right-hand
// neighbor in v with the mean of its two neighbors, working from left to
// right so that a replaced point is used as the left-hand neighbor of
// the next. The end points are kept.
func squashDips(v []float64) []float64 {
	o := append([]float64(nil), v...)
	for i := 1; i < len(v)-1; i++ {
		if v[i+1] < v[i] {
			o[i] = (o[i-1] + o[i+1]) / 2
		}
	}
	return o
}

// Spline is a monotone cubic (Fritsch–Butland) calibration curve through
// the calibration points in log-log space. Outside the calibrated domain
// the signal is constant.
type Spline struct {
	fit      interp.FritschButland
	x, y     []float64
	lo, hi   float64
	mono     bool
	squashed bool
}

func fitSpline(dps, signals []float64) (*Spline, error) {
	ys := squashDips(signals)
	s := &Spline{x: logs(dps), y: logs(ys), lo: dps[0], hi: dps[len(dps)-1], mono: true}
	for i := 1; i < len(ys); i++ {
		if ys[i] != signals[i] {
			s.squashed = true
		}
		if !(s.y[i] > s.y[i-1]) {
			s.mono = false
		}
	}
	if !s.mono {
		return s, nil
	}
	if err := s.fit.Fit(s.x, s.y); err != nil {
		return nil, fmt.Errorf("opcsim: fitting calibration spline: %v: %w", err, ErrCalibration)
	}
	return s, nil
}

// Forward implements Calibration.
func (s *Spline) Forward(dp float64) float64 {
	return math.Exp(s.fit.Predict(math.Log(dp)))
}

// Invert implements Calibration. Signals outside the calibrated range
// return ErrCalibration.
func (s *Spline) Invert(signal float64) (float64, error) {
	n := len(s.x)
	ly := math.Log(signal)
	if !s.mono || !(ly >= s.y[0] && ly <= s.y[n-1]) {
		return math.NaN(), fmt.Errorf("opcsim: signal %g is outside of the calibrated range [%g, %g]: %w",
			signal, math.Exp(s.y[0]), math.Exp(s.y[n-1]), ErrCalibration)
	}
	lo, hi := s.x[0], s.x[n-1]
	for i := 0; i < 200 && hi-lo > 1e-14*math.Max(1, math.Abs(hi)); i++ {
		mid := (lo + hi) / 2
		if s.fit.Predict(mid) < ly {
			lo = mid
		} else {
			hi = mid
		}
	}
	return math.Exp((lo + hi) / 2), nil
}

// Monotonic implements Calibration.
func (s *Spline) Monotonic() bool { return s.mono }

// Squashed reports whether any local peaks were removed from the
// calibration points before fitting.
func (s *Spline) Squashed() bool { return s.squashed }

// Kind implements Calibration.
func (s *Spline) Kind() FitKind { return SplineFit }

// Domain implements Calibration.
func (s *Spline) Domain() (lo, hi float64) { return s.lo, s.hi }

// Tanh is the saturating calibration curve
// ln C = A + B·tanh(Slope·(ln Dp − X0)).
type Tanh struct {
	A, B, Slope, X0 float64
	lo, hi          float64
}

func (t *Tanh) logForward(x float64) float64 {
	return t.A + t.B*math.Tanh(t.Slope*(x-t.X0))
}

// fitTanh fits a Tanh curve by least squares in log-log space using the
// Nelder-Mead method. B and Slope are fit as logarithms so that they stay
// positive.
func fitTanh(dps, signals []float64) (*Tanh, error) {
	x, y := logs(dps), logs(signals)
	_, slope := stat.LinearRegression(x, y, nil, false)
	if !(slope > 0) {
		return nil, fmt.Errorf("opcsim: calibration signal decreases with diameter (log-log slope %g): %w", slope, ErrCalibration)
	}
	ymin, ymax := floats.Min(y), floats.Max(y)
	b0 := 0.75 * (ymax - ymin)
	init := []float64{
		(ymax + ymin) / 2,
		math.Log(b0),
		math.Log(slope / b0),
		stat.Mean(x, nil),
	}
	unpack := func(p []float64) *Tanh {
		return &Tanh{A: p[0], B: math.Exp(p[1]), Slope: math.Exp(p[2]), X0: p[3], lo: dps[0], hi: dps[len(dps)-1]}
	}
	problem := optimize.Problem{
		Func: func(p []float64) float64 {
			t := unpack(p)
			var ss float64
			for i, xi := range x {
				r := t.logForward(xi) - y[i]
				ss += r * r
			}
			return ss
		},
	}
	settings := &optimize.Settings{
		MajorIterations: 20000,
		FuncEvaluations: 40000,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-14,
			Iterations: 200,
		},
	}
	result, err := optimize.Minimize(problem, init, settings, &optimize.NelderMead{})
	if err != nil {
		return nil, fmt.Errorf("opcsim: fitting tanh calibration: %v: %w", err, ErrCalibration)
	}
	t := unpack(result.X)
	if math.IsNaN(t.A) || math.IsInf(t.B, 0) || math.IsInf(t.Slope, 0) || math.IsNaN(t.X0) {
		return nil, fmt.Errorf("opcsim: tanh calibration fit diverged: %w", ErrCalibration)
	}
	return t, nil
}

// Forward implements Calibration.
func (t *Tanh) Forward(dp float64) float64 { return math.Exp(t.logForward(math.Log(dp))) }

// Invert implements Calibration. Signals at or beyond the saturation
// limits exp(A ± B) cannot be inverted.
func (t *Tanh) Invert(signal float64) (float64, error) {
	z := (math.Log(signal) - t.A) / t.B
	if !(math.Abs(z) < 1) || !t.Monotonic() {
		return math.NaN(), fmt.Errorf("opcsim: signal %g is beyond the saturation limits of the tanh calibration: %w",
			signal, ErrCalibration)
	}
	return math.Exp(t.X0 + math.Atanh(z)/t.Slope), nil
}

// Monotonic implements Calibration.
func (t *Tanh) Monotonic() bool { return t.B > 0 && t.Slope > 0 }

// Kind implements Calibration.
func (t *Tanh) Kind() FitKind { return TanhFit }

// Domain implements Calibration.
func (t *Tanh) Domain() (lo, hi float64) { return t.lo, t.hi }
