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

// Package opcsim simulates the response of low-cost optical particle
// sensors, optical particle counters (OPCs) and nephelometers, to
// multimodal lognormal aerosol size distributions.
//
// Unless stated otherwise, diameters and wavelengths are in micrometers,
// number concentrations in particles/cm³, scattering angles in degrees and
// relative humidity in percent.
package opcsim

import (
	"errors"

	"github.com/spatialmodel/opcsim/science/lognormal"
	"github.com/spatialmodel/opcsim/science/mie"
)

// Version gives the version number.
const Version = "0.4.0"

var (
	// ErrInvalidParameter is returned for invalid distribution or
	// instrument arguments.
	ErrInvalidParameter = lognormal.ErrInvalidParameter

	// ErrNonConvergence is returned when a Mie series does not converge
	// within the engine's order cap.
	ErrNonConvergence = mie.ErrNonConvergence

	// ErrCalibration is returned when a calibration curve cannot be fit,
	// is not monotonically increasing, or is required but missing.
	ErrCalibration = errors.New("opcsim: calibration failed")

	// ErrNonFinite is returned when a numerical integration produces
	// a NaN or infinite value.
	ErrNonFinite = errors.New("opcsim: non-finite result")
)

// Weight specifies which particle property a distribution is weighted by.
type Weight = lognormal.Weight

// Available weights.
const (
	Number  = lognormal.Number
	Surface = lognormal.Surface
	Volume  = lognormal.Volume
	Mass    = lognormal.Mass
)

// Base specifies the diameter transform a density is given per unit of.
type Base = lognormal.Base

// Available bases.
const (
	Log10  = lognormal.Log10
	Ln     = lognormal.Ln
	Linear = lognormal.Linear
)
