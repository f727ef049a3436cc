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
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/opcsim/science/lognormal"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
)

// measureSubBins is the number of log-spaced size classes each mode is
// split into by Measure.
const measureSubBins = 250

// OPC is an optical particle counter: it sizes individual particles by
// the light they scatter into a detector and counts them in bins.
type OPC struct {
	*instrument
	edges []float64

	calibration   Calibration
	calibrationRI complex128
	boundaries    []float64
}

// NewOPC returns a new OPC with a laser of wavelength wl [µm] and the
// given bin edges [µm]. By default the detector collects light
// scattered between 32° and 88° and every particle is counted.
func NewOPC(wl float64, edges []float64, opts ...Option) (*OPC, error) {
	if err := checkEdges(edges); err != nil {
		return nil, err
	}
	i, err := newInstrument(wl, 32, 88, 50, opts)
	if err != nil {
		return nil, err
	}
	return &OPC{instrument: i, edges: append([]float64(nil), edges...)}, nil
}

// NumBins returns the number of size bins.
func (o *OPC) NumBins() int { return len(o.edges) - 1 }

// Edges returns a copy of the bin edges [µm].
func (o *OPC) Edges() []float64 { return append([]float64(nil), o.edges...) }

// Midpoints returns the geometric mean diameter of each bin [µm].
func (o *OPC) Midpoints() []float64 {
	m := make([]float64, o.NumBins())
	for i := range m {
		m[i] = math.Sqrt(o.edges[i] * o.edges[i+1])
	}
	return m
}

// Bins returns the left edge, geometric midpoint and right edge of each bin.
func (o *OPC) Bins() [][3]float64 {
	mids := o.Midpoints()
	b := make([][3]float64, len(mids))
	for i, m := range mids {
		b[i] = [3]float64{o.edges[i], m, o.edges[i+1]}
	}
	return b
}

// DlogDp returns the width of each bin in log10(Dp).
func (o *OPC) DlogDp() []float64 {
	w := make([]float64, o.NumBins())
	for i := range w {
		w[i] = math.Log10(o.edges[i+1] / o.edges[i])
	}
	return w
}

// DDp returns the width of each bin [µm].
func (o *OPC) DDp() []float64 {
	w := make([]float64, o.NumBins())
	for i := range w {
		w[i] = o.edges[i+1] - o.edges[i]
	}
	return w
}

// Histogram returns, for each bin, the integral over log10(Dp) of the
// density of weight w times the counting efficiency times the scattering
// cross section [cm²] within the detector aperture.
func (o *OPC) Histogram(d *AerosolDistribution, w Weight, opts ...EvalOption) ([]float64, error) {
	x, f, err := o.integrand(d, w, opts)
	if err != nil {
		return nil, err
	}
	n := o.gridPoints - 1
	h := make([]float64, o.NumBins())
	for i := range h {
		h[i] = integrate.Trapezoidal(x[i*n:(i+1)*n+1], f[i*n:(i+1)*n+1])
		if !finite(h[i]) {
			return nil, fmt.Errorf("opcsim: OPC response in bin %d [%g, %g] µm: %w", i, o.edges[i], o.edges[i+1], ErrNonFinite)
		}
	}
	return h, nil
}

// integrand returns log10(Dp) on the instrument grid and the scattering
// integrand at each grid point.
func (o *OPC) integrand(d *AerosolDistribution, w Weight, opts []EvalOption) (x, f []float64, err error) {
	modes, _, err := d.evalModes(opts)
	if err != nil {
		return nil, nil, err
	}
	grid := logGrid(o.edges, o.gridPoints)
	x = make([]float64, len(grid))
	f = make([]float64, len(grid))
	for j, dp := range grid {
		x[j] = math.Log10(dp)
	}
	for _, m := range modes {
		p, ri := m.params(), o.opticalRI(m)
		for j, dp := range grid {
			pdf, err := lognormal.PDF(dp, p, w, Log10)
			if err != nil {
				return nil, nil, err
			}
			cs, err := o.cs.get(dp, ri)
			if err != nil {
				return nil, nil, err
			}
			f[j] += pdf * o.eff.Efficiency(dp) * cs
		}
	}
	return x, f, nil
}

// Evaluate returns the Histogram integrand integrated over the whole size
// range of the instrument in a single pass.
func (o *OPC) Evaluate(d *AerosolDistribution, w Weight, opts ...EvalOption) (float64, error) {
	x, f, err := o.integrand(d, w, opts)
	if err != nil {
		return math.NaN(), err
	}
	v := integrate.Trapezoidal(x, f)
	if !finite(v) {
		return math.NaN(), fmt.Errorf("opcsim: OPC response over [%g, %g] µm: %w", o.edges[0], o.edges[o.NumBins()], ErrNonFinite)
	}
	return v, nil
}

// Number returns the number-weighted Histogram.
func (o *OPC) Number(d *AerosolDistribution, opts ...EvalOption) ([]float64, error) {
	return o.Histogram(d, Number, opts...)
}

// SurfaceArea returns the surface-area-weighted Histogram.
func (o *OPC) SurfaceArea(d *AerosolDistribution, opts ...EvalOption) ([]float64, error) {
	return o.Histogram(d, Surface, opts...)
}

// Volume returns the volume-weighted Histogram.
func (o *OPC) Volume(d *AerosolDistribution, opts ...EvalOption) ([]float64, error) {
	return o.Histogram(d, Volume, opts...)
}

// Mass returns the mass-weighted Histogram.
func (o *OPC) Mass(d *AerosolDistribution, opts ...EvalOption) ([]float64, error) {
	return o.Histogram(d, Mass, opts...)
}

// Calibrate relates scattering signal to particle diameter using
// particles of refractive index m, such as polystyrene latex spheres.
// Spline curves pass through the signals at the bin edges; the other
// forms are fit to the signals on the integration grid. The fitted
// curve replaces any previous calibration.
func (o *OPC) Calibrate(m complex128, kind FitKind) error {
	if err := checkRefractiveIndex(m); err != nil {
		return err
	}
	dps := o.edges
	if kind != SplineFit || len(dps) < 3 {
		dps = logGrid(o.edges, o.gridPoints)
	}
	signals := make([]float64, len(dps))
	for i, dp := range dps {
		var err error
		if signals[i], err = o.cs.get(dp, m); err != nil {
			return err
		}
	}
	c, err := FitCalibration(kind, dps, signals)
	if err != nil {
		return err
	}
	b := make([]float64, len(o.edges))
	for i, e := range o.edges {
		b[i] = c.Forward(e)
		if i > 0 && !(b[i] > b[i-1]) {
			return fmt.Errorf("opcsim: calibrated signal does not increase between %g and %g µm: %w",
				o.edges[i-1], e, ErrCalibration)
		}
	}
	o.calibration, o.calibrationRI, o.boundaries = c, m, b
	o.log.WithFields(logrus.Fields{
		"instrument":       o.label,
		"fit":              kind.String(),
		"refractive index": m,
		"points":           len(dps),
	}).Debug("opcsim: calibrated OPC")
	return nil
}

// CalibrateMaterial calibrates the OPC with a material known to
// RefractiveIndex, for example "psl".
func (o *OPC) CalibrateMaterial(material string, kind FitKind) error {
	m, err := RefractiveIndex(material)
	if err != nil {
		return err
	}
	return o.Calibrate(m, kind)
}

// Calibration returns the calibration curve, or nil if the OPC has not
// been calibrated.
func (o *OPC) Calibration() Calibration { return o.calibration }

// CalibrationRI returns the refractive index of the calibration material.
func (o *OPC) CalibrationRI() complex128 { return o.calibrationRI }

// Boundaries returns the calibrated signal [cm²] at each bin edge.
func (o *OPC) Boundaries() []float64 { return append([]float64(nil), o.boundaries...) }

func (o *OPC) requireCalibration() error {
	if o.calibration == nil {
		return fmt.Errorf("opcsim: OPC %q has not been calibrated: %w", o.label, ErrCalibration)
	}
	return nil
}

// OpticalDiameter returns the diameter [µm] that the OPC reports for
// a particle producing signal [cm²].
func (o *OPC) OpticalDiameter(signal float64) (float64, error) {
	if err := o.requireCalibration(); err != nil {
		return math.NaN(), err
	}
	return o.calibration.Invert(signal)
}

// bin returns the index of the bin that signal falls in, or -1 if it is
// outside of the calibrated range.
func (o *OPC) bin(signal float64) int {
	i := sort.Search(len(o.boundaries), func(k int) bool { return o.boundaries[k] > signal }) - 1
	if i >= o.NumBins() {
		return -1
	}
	return i
}

// Measure returns the number of particles [particles/cm³] that the
// calibrated OPC counts in each bin. Each mode is split into fine
// size classes spanning from half the smallest bin edge to twice the
// largest. Particles in each class scatter according to their own
// (wet) refractive index, or the instrument's refractive index if one
// was set with WithRefractiveIndex, and are assigned to the bin whose
// calibrated signal boundaries bracket their cross section. Particles
// outside of the calibrated range are not counted.
func (o *OPC) Measure(d *AerosolDistribution, opts ...EvalOption) ([]float64, error) {
	if err := o.requireCalibration(); err != nil {
		return nil, err
	}
	modes, _, err := d.evalModes(opts)
	if err != nil {
		return nil, err
	}
	sub := floats.LogSpan(make([]float64, measureSubBins+1), o.edges[0]/2, 2*o.edges[o.NumBins()])
	counts := make([]float64, o.NumBins())
	for _, m := range modes {
		p, ri := m.params(), o.opticalRI(m)
		for j := 0; j < measureSubBins; j++ {
			n, err := lognormal.CDF(p, Number, sub[j], sub[j+1])
			if err != nil {
				return nil, err
			}
			if n == 0 {
				continue
			}
			dp := math.Sqrt(sub[j] * sub[j+1])
			cs, err := o.cs.get(dp, ri)
			if err != nil {
				return nil, err
			}
			if i := o.bin(cs); i >= 0 {
				counts[i] += n * o.eff.Efficiency(dp)
			}
		}
	}
	for i, c := range counts {
		if !finite(c) {
			return nil, fmt.Errorf("opcsim: OPC count in bin %d: %w", i, ErrNonFinite)
		}
	}
	return counts, nil
}

// MeasuredMoments returns the Measure counts converted to weight w by
// assuming that every particle in a bin has the bin's midpoint diameter.
// Mass conversions use the Density option.
func (o *OPC) MeasuredMoments(d *AerosolDistribution, w Weight, opts ...EvalOption) ([]float64, error) {
	c, err := newEvalConfig(opts)
	if err != nil {
		return nil, err
	}
	counts, err := o.Measure(d, opts...)
	if err != nil {
		return nil, err
	}
	for i, dp := range o.Midpoints() {
		switch w {
		case Number:
		case Surface:
			counts[i] *= math.Pi * dp * dp
		case Volume:
			counts[i] *= math.Pi / 6 * dp * dp * dp
		case Mass:
			counts[i] *= c.rho * math.Pi / 6 * dp * dp * dp
		default:
			return nil, fmt.Errorf("opcsim: invalid weight %v: %w", w, ErrInvalidParameter)
		}
	}
	return counts, nil
}

// MeasuredHistogram returns the MeasuredMoments of each bin divided by
// the bin width in base b.
func (o *OPC) MeasuredHistogram(d *AerosolDistribution, w Weight, b Base, opts ...EvalOption) ([]float64, error) {
	v, err := o.MeasuredMoments(d, w, opts...)
	if err != nil {
		return nil, err
	}
	var widths []float64
	switch b {
	case Log10:
		widths = o.DlogDp()
	case Ln:
		widths = o.DlogDp()
		floats.Scale(math.Ln10, widths)
	case Linear:
		widths = o.DDp()
	default:
		return nil, fmt.Errorf("opcsim: invalid base %v: %w", b, ErrInvalidParameter)
	}
	floats.Div(v, widths)
	return v, nil
}

// Integrate returns the measured amount of weight w carried by particles
// between dmin and dmax [µm], such as PM2.5 for dmin = 0, dmax = 2.5 and
// w = Mass. Bins that straddle dmin or dmax contribute in proportion to
// the fraction of their width in range.
func (o *OPC) Integrate(d *AerosolDistribution, dmin, dmax float64, w Weight, opts ...EvalOption) (float64, error) {
	if !(dmin >= 0) || !(dmax > dmin) {
		return math.NaN(), fmt.Errorf("opcsim: invalid integration range [%g, %g]: %w", dmin, dmax, ErrInvalidParameter)
	}
	v, err := o.MeasuredMoments(d, w, opts...)
	if err != nil {
		return math.NaN(), err
	}
	var sum float64
	for i, x := range v {
		l, r := o.edges[i], o.edges[i+1]
		if overlap := math.Min(r, dmax) - math.Max(l, dmin); overlap > 0 {
			sum += x * overlap / (r - l)
		}
	}
	return sum, nil
}

// BinMoments returns the true amount of weight w in each bin, calculated
// analytically from the distribution.
func (o *OPC) BinMoments(d *AerosolDistribution, w Weight, opts ...EvalOption) ([]float64, error) {
	v := make([]float64, o.NumBins())
	for i := range v {
		var err error
		if v[i], err = d.CDF(o.edges[i], o.edges[i+1], w, opts...); err != nil {
			return nil, err
		}
	}
	return v, nil
}
