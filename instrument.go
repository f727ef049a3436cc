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
	"github.com/spatialmodel/opcsim/science/mie"
)

// instrument holds the optical configuration shared by OPCs and
// nephelometers.
type instrument struct {
	label          string
	wl             float64
	theta1, theta2 float64

	// ri, if not zero, overrides the refractive index of the aerosol
	// when calculating the instrument response.
	ri complex128

	engine     *mie.Engine
	steps      int
	gridPoints int
	eff        CountingEfficiency

	log logrus.FieldLogger
	cs  *crossSections
}

// An Option configures an instrument.
type Option func(*instrument)

// WithTheta sets the range of scattering angles [degrees] that the
// instrument's detector collects.
func WithTheta(theta1, theta2 float64) Option {
	return func(i *instrument) { i.theta1, i.theta2 = theta1, theta2 }
}

// WithRefractiveIndex sets the refractive index that the instrument
// response is evaluated with, in place of the refractive index of each
// aerosol mode.
func WithRefractiveIndex(m complex128) Option {
	return func(i *instrument) { i.ri = m }
}

// WithEfficiency sets the counting efficiency curve. The default counts
// every particle.
func WithEfficiency(e CountingEfficiency) Option {
	return func(i *instrument) { i.eff = e }
}

// WithEngine sets the Mie engine used to calculate scattering.
func WithEngine(e *mie.Engine) Option {
	return func(i *instrument) { i.engine = e }
}

// WithGridPoints sets the number of integration points per bin for OPCs
// and per mode for nephelometers.
func WithGridPoints(n int) Option {
	return func(i *instrument) { i.gridPoints = n }
}

// WithAngleSteps sets the number of angles used to integrate scattering
// over the detector aperture.
func WithAngleSteps(n int) Option {
	return func(i *instrument) { i.steps = n }
}

// WithLabel sets the name of the instrument.
func WithLabel(label string) Option {
	return func(i *instrument) { i.label = label }
}

// WithLogger sets where the instrument logs its progress. The default
// is the logrus standard logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(i *instrument) { i.log = log }
}

func newInstrument(wl, theta1, theta2 float64, gridPoints int, opts []Option) (*instrument, error) {
	i := &instrument{
		wl:         wl,
		theta1:     theta1,
		theta2:     theta2,
		engine:     mie.New(),
		steps:      100,
		gridPoints: gridPoints,
		eff:        ConstantEfficiency(1),
		log:        logrus.StandardLogger(),
	}
	for _, o := range opts {
		o(i)
	}
	if !(wl > 0) || math.IsInf(wl, 0) {
		return nil, fmt.Errorf("opcsim: wavelength must be > 0 but is %g: %w", wl, ErrInvalidParameter)
	}
	if !(i.theta1 >= 0 && i.theta1 < i.theta2 && i.theta2 <= 180) {
		return nil, fmt.Errorf("opcsim: invalid scattering angle range [%g, %g]: %w", i.theta1, i.theta2, ErrInvalidParameter)
	}
	if i.ri != 0 {
		if err := checkRefractiveIndex(i.ri); err != nil {
			return nil, err
		}
	}
	if i.steps < 2 {
		return nil, fmt.Errorf("opcsim: at least 2 angle steps are needed but %d were requested: %w", i.steps, ErrInvalidParameter)
	}
	if i.gridPoints < 3 {
		return nil, fmt.Errorf("opcsim: at least 3 grid points are needed but %d were requested: %w", i.gridPoints, ErrInvalidParameter)
	}
	if i.engine == nil || i.eff == nil || i.log == nil {
		return nil, fmt.Errorf("opcsim: nil instrument option: %w", ErrInvalidParameter)
	}
	i.cs = newCrossSections(i.engine, i.wl, i.theta1, i.theta2, i.steps)
	return i, nil
}

// Label returns the name of the instrument.
func (i *instrument) Label() string { return i.label }

// Wavelength returns the laser wavelength [µm].
func (i *instrument) Wavelength() float64 { return i.wl }

// Theta returns the range of scattering angles [degrees] that the
// detector collects.
func (i *instrument) Theta() (theta1, theta2 float64) { return i.theta1, i.theta2 }

// opticalRI returns the refractive index used for mode m.
func (i *instrument) opticalRI(m Mode) complex128 {
	if i.ri != 0 {
		return i.ri
	}
	return m.RefractiveIndex
}

// CrossSection returns the scattering cross section [cm²] of a particle
// with diameter dp [µm] and refractive index m within the detector
// aperture.
func (i *instrument) CrossSection(dp float64, m complex128) (float64, error) {
	if !(dp > 0) {
		return math.NaN(), fmt.Errorf("opcsim: diameter must be > 0 but is %g: %w", dp, ErrInvalidParameter)
	}
	if err := checkRefractiveIndex(m); err != nil {
		return math.NaN(), err
	}
	return i.cs.get(dp, m)
}

// EfficiencyCurve returns the counting efficiency at each diameter
// in dps.
func (i *instrument) EfficiencyCurve(dps []float64) []float64 {
	o := make([]float64, len(dps))
	for j, dp := range dps {
		o[j] = i.eff.Efficiency(dp)
	}
	return o
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
