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

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/opcsim/science/lognormal"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
)

// Nephelometer is an instrument that measures the total light scattered
// by an ensemble of particles and reports it as mass concentrations.
type Nephelometer struct {
	*instrument

	// Ratios of total scattering to PM1, PM2.5 and PM10 mass.
	pm1, pm25, pm10 float64
	calibrated      bool
}

// NephelometerResult holds a nephelometer measurement.
type NephelometerResult struct {
	// Cscat is the total scattering [cm²/cm³].
	Cscat float64

	// PM1, PM25 and PM10 are the reported mass concentrations [µg/m³].
	PM1, PM25, PM10 float64
}

// NewNephelometer returns a new nephelometer with a laser of wavelength
// wl [µm]. By default the detector collects light scattered between
// 7° and 173°.
func NewNephelometer(wl float64, opts ...Option) (*Nephelometer, error) {
	i, err := newInstrument(wl, 7, 173, 100, opts)
	if err != nil {
		return nil, err
	}
	return &Nephelometer{instrument: i}, nil
}

// Evaluate returns the total scattering [cm²/cm³] of d. Each mode is
// integrated over log10(Dp) between GM/GSD⁴ and GM·GSD⁴.
func (n *Nephelometer) Evaluate(d *AerosolDistribution, opts ...EvalOption) (float64, error) {
	modes, _, err := d.evalModes(opts)
	if err != nil {
		return math.NaN(), err
	}
	grid := make([]float64, n.gridPoints)
	x := make([]float64, n.gridPoints)
	f := make([]float64, n.gridPoints)
	var total float64
	for _, m := range modes {
		s4 := math.Pow(m.GSD, 4)
		floats.LogSpan(grid, m.GM/s4, m.GM*s4)
		p, ri := m.params(), n.opticalRI(m)
		for j, dp := range grid {
			cs, err := n.cs.get(dp, ri)
			if err != nil {
				return math.NaN(), err
			}
			x[j] = math.Log10(dp)
			f[j] = lognormal.DnDlogDp(dp, p) * n.eff.Efficiency(dp) * cs
		}
		v := integrate.Trapezoidal(x, f)
		if !finite(v) {
			return math.NaN(), fmt.Errorf("opcsim: nephelometer response to mode %q: %w", m.Label, ErrNonFinite)
		}
		total += v
	}
	return total, nil
}

// Calibrate sets the ratios of the total scattering of d to its dry PM1,
// PM2.5 and PM10 mass. AtRH applies to the scattering only, so calibrating
// with it shows how humidity biases later measurements. OnlyMode applies
// to both the scattering and the mass.
func (n *Nephelometer) Calibrate(d *AerosolDistribution, opts ...EvalOption) error {
	cs, err := n.Evaluate(d, opts...)
	if err != nil {
		return err
	}
	c, err := newEvalConfig(opts)
	if err != nil {
		return err
	}
	var massOpts []EvalOption
	if c.mode != "" {
		massOpts = append(massOpts, OnlyMode(c.mode))
	}
	var ratios [3]float64
	for i, cut := range []float64{1, 2.5, 10} {
		pm, err := d.CDF(0, cut, Mass, massOpts...)
		if err != nil {
			return err
		}
		if !(pm > 0) || !(cs > 0) {
			return fmt.Errorf("opcsim: cannot calibrate nephelometer with scattering %g and PM%g %g: %w", cs, cut, pm, ErrCalibration)
		}
		ratios[i] = cs / pm
	}
	n.pm1, n.pm25, n.pm10 = ratios[0], ratios[1], ratios[2]
	n.calibrated = true
	n.log.WithFields(logrus.Fields{
		"instrument":   n.label,
		"distribution": d.Label,
		"PM1 ratio":    n.pm1,
		"PM2.5 ratio":  n.pm25,
		"PM10 ratio":   n.pm10,
	}).Debug("opcsim: calibrated nephelometer")
	return nil
}

// Ratios returns the calibrated ratios of total scattering to PM1, PM2.5
// and PM10 mass.
func (n *Nephelometer) Ratios() (pm1, pm25, pm10 float64, ok bool) {
	return n.pm1, n.pm25, n.pm10, n.calibrated
}

// Measure returns the total scattering of d and the mass concentrations
// that the calibrated nephelometer reports for it.
func (n *Nephelometer) Measure(d *AerosolDistribution, opts ...EvalOption) (NephelometerResult, error) {
	if !n.calibrated {
		return NephelometerResult{}, fmt.Errorf("opcsim: nephelometer %q has not been calibrated: %w", n.label, ErrCalibration)
	}
	cs, err := n.Evaluate(d, opts...)
	if err != nil {
		return NephelometerResult{}, err
	}
	return NephelometerResult{
		Cscat: cs,
		PM1:   cs / n.pm1,
		PM25:  cs / n.pm25,
		PM10:  cs / n.pm10,
	}, nil
}
