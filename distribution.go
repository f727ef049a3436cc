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
	"math/cmplx"

	"github.com/spatialmodel/opcsim/science/lognormal"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
)

// Mode is a single lognormal aerosol mode.
type Mode struct {
	Label string

	// N is the number concentration [particles/cm³].
	N float64

	// GM is the geometric mean diameter [µm].
	GM float64

	// GSD is the geometric standard deviation.
	GSD float64

	// Kappa is the κ-Köhler hygroscopicity parameter.
	Kappa float64

	// Rho is the particle density [g/cm³]. It defaults to 1.
	Rho float64

	// RefractiveIndex is the complex refractive index of the particles.
	// It defaults to 1.5+0i.
	RefractiveIndex complex128
}

func (m Mode) params() lognormal.Params {
	return lognormal.Params{N: m.N, GM: m.GM, GSD: m.GSD, Rho: m.Rho}
}

func (m Mode) validate() error {
	if err := m.params().Validate(); err != nil {
		return fmt.Errorf("opcsim: mode %q: %w", m.Label, err)
	}
	if !(m.Kappa >= 0) || math.IsInf(m.Kappa, 0) {
		return fmt.Errorf("opcsim: mode %q: kappa must be >= 0 but is %g: %w", m.Label, m.Kappa, ErrInvalidParameter)
	}
	if !(m.Rho > 0) || math.IsInf(m.Rho, 0) {
		return fmt.Errorf("opcsim: mode %q: density must be > 0 but is %g: %w", m.Label, m.Rho, ErrInvalidParameter)
	}
	return checkRefractiveIndex(m.RefractiveIndex)
}

func checkRefractiveIndex(m complex128) error {
	if !(real(m) > 0) || !(imag(m) >= 0) || cmplx.IsInf(m) {
		return fmt.Errorf("opcsim: refractive index must have a positive real part and a non-negative imaginary part but is %v: %w", m, ErrInvalidParameter)
	}
	return nil
}

// AerosolDistribution is a multimodal lognormal aerosol size distribution.
type AerosolDistribution struct {
	Label string
	modes []Mode
}

// NewAerosolDistribution returns an empty distribution.
func NewAerosolDistribution(label string) *AerosolDistribution {
	return &AerosolDistribution{Label: label}
}

var romanLabels = []string{"I", "II", "III", "IV", "V", "VI", "VII", "VIII", "IX", "X"}

// AddMode validates m, fills in default values, and adds it to the
// distribution.
func (d *AerosolDistribution) AddMode(m Mode) error {
	if m.Rho == 0 {
		m.Rho = 1
	}
	if m.RefractiveIndex == 0 {
		m.RefractiveIndex = complex(1.5, 0)
	}
	if m.Label == "" {
		if i := len(d.modes); i < len(romanLabels) {
			m.Label = "Mode " + romanLabels[i]
		} else {
			m.Label = fmt.Sprintf("Mode %d", i+1)
		}
	}
	if err := m.validate(); err != nil {
		return err
	}
	if _, ok := d.Mode(m.Label); ok {
		return fmt.Errorf("opcsim: distribution %q already has a mode labeled %q: %w", d.Label, m.Label, ErrInvalidParameter)
	}
	d.modes = append(d.modes, m)
	return nil
}

// Modes returns a copy of the modes in the distribution.
func (d *AerosolDistribution) Modes() []Mode {
	return append([]Mode(nil), d.modes...)
}

// Mode returns the mode with the given label.
func (d *AerosolDistribution) Mode(label string) (Mode, bool) {
	for _, m := range d.modes {
		if m.Label == label {
			return m, true
		}
	}
	return Mode{}, false
}

// EvalOption modifies how a distribution is evaluated.
type EvalOption func(*evalConfig)

type evalConfig struct {
	rh   float64
	mode string
	rho  float64
}

// AtRH evaluates the distribution after hygroscopic growth at relative
// humidity rh [%].
func AtRH(rh float64) EvalOption {
	return func(c *evalConfig) { c.rh = rh }
}

// OnlyMode restricts evaluation to the mode with the given label.
func OnlyMode(label string) EvalOption {
	return func(c *evalConfig) { c.mode = label }
}

// Density sets the particle density [g/cm³] that instruments assume when
// converting measured counts to mass. The default is 1.65.
func Density(rho float64) EvalOption {
	return func(c *evalConfig) { c.rho = rho }
}

func newEvalConfig(opts []EvalOption) (*evalConfig, error) {
	c := &evalConfig{rho: 1.65}
	for _, o := range opts {
		o(c)
	}
	if err := checkRH(c.rh); err != nil {
		return nil, err
	}
	if !(c.rho > 0) {
		return nil, fmt.Errorf("opcsim: assumed density must be > 0 but is %g: %w", c.rho, ErrInvalidParameter)
	}
	return c, nil
}

// evalModes returns the modes selected by opts at ambient humidity.
func (d *AerosolDistribution) evalModes(opts []EvalOption) ([]Mode, *evalConfig, error) {
	c, err := newEvalConfig(opts)
	if err != nil {
		return nil, nil, err
	}
	var modes []Mode
	for _, m := range d.modes {
		if c.mode != "" && m.Label != c.mode {
			continue
		}
		wet, err := WetMode(m, c.rh)
		if err != nil {
			return nil, nil, err
		}
		modes = append(modes, wet)
	}
	if c.mode != "" && len(modes) == 0 {
		return nil, nil, fmt.Errorf("opcsim: distribution %q has no mode labeled %q: %w", d.Label, c.mode, ErrInvalidParameter)
	}
	return modes, c, nil
}

// PDF returns the density of weight w per unit of base b at each
// diameter in dp, summed across modes.
func (d *AerosolDistribution) PDF(dp []float64, w Weight, b Base, opts ...EvalOption) ([]float64, error) {
	modes, _, err := d.evalModes(opts)
	if err != nil {
		return nil, err
	}
	o := make([]float64, len(dp))
	for _, m := range modes {
		p := m.params()
		for i, x := range dp {
			v, err := lognormal.PDF(x, p, w, b)
			if err != nil {
				return nil, err
			}
			o[i] += v
		}
	}
	return o, nil
}

// PDFAt returns the density of weight w per unit of base b at a single
// diameter.
func (d *AerosolDistribution) PDFAt(dp float64, w Weight, b Base, opts ...EvalOption) (float64, error) {
	v, err := d.PDF([]float64{dp}, w, b, opts...)
	if err != nil {
		return math.NaN(), err
	}
	return v[0], nil
}

// CDF returns the amount of weight w carried by particles with diameters
// between dmin and dmax. dmin = 0 integrates from zero and
// dmax = math.Inf(1) to infinity.
func (d *AerosolDistribution) CDF(dmin, dmax float64, w Weight, opts ...EvalOption) (float64, error) {
	modes, _, err := d.evalModes(opts)
	if err != nil {
		return math.NaN(), err
	}
	var sum float64
	for _, m := range modes {
		v, err := lognormal.CDF(m.params(), w, dmin, dmax)
		if err != nil {
			return math.NaN(), err
		}
		sum += v
	}
	return sum, nil
}

// IntegratePDF numerically integrates the density of weight w between
// dmin and dmax with Simpson's rule over n points evenly spaced in
// log10(Dp). It is the fallback for quantities without a closed form
// and a check on CDF.
func (d *AerosolDistribution) IntegratePDF(dmin, dmax float64, w Weight, n int, opts ...EvalOption) (float64, error) {
	if !(dmin > 0) || !(dmax > dmin) || math.IsInf(dmax, 0) {
		return math.NaN(), fmt.Errorf("opcsim: invalid integration range [%g, %g]: %w", dmin, dmax, ErrInvalidParameter)
	}
	if n < 3 {
		return math.NaN(), fmt.Errorf("opcsim: at least 3 integration points are needed but %d were requested: %w", n, ErrInvalidParameter)
	}
	x := make([]float64, n)
	floats.Span(x, math.Log10(dmin), math.Log10(dmax))
	dp := make([]float64, n)
	for i, lx := range x {
		dp[i] = math.Pow(10, lx)
	}
	y, err := d.PDF(dp, w, Log10, opts...)
	if err != nil {
		return math.NaN(), err
	}
	v := integrate.Simpsons(x, y)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v, fmt.Errorf("opcsim: integral of %v between %g and %g: %w", w, dmin, dmax, ErrNonFinite)
	}
	return v, nil
}

// Total returns the total amount of weight w in the distribution.
func (d *AerosolDistribution) Total(w Weight, opts ...EvalOption) (float64, error) {
	return d.CDF(0, math.Inf(1), w, opts...)
}

// The modes are validated when added, so the dry totals cannot fail.

// TotalNumber returns the total number concentration [particles/cm³].
func (d *AerosolDistribution) TotalNumber() float64 {
	v, _ := d.Total(Number)
	return v
}

// TotalSurface returns the total surface area concentration [µm²/cm³].
func (d *AerosolDistribution) TotalSurface() float64 {
	v, _ := d.Total(Surface)
	return v
}

// TotalVolume returns the total volume concentration [µm³/cm³].
func (d *AerosolDistribution) TotalVolume() float64 {
	v, _ := d.Total(Volume)
	return v
}

// TotalMass returns the total mass concentration [µg/m³].
func (d *AerosolDistribution) TotalMass() float64 {
	v, _ := d.Total(Mass)
	return v
}
