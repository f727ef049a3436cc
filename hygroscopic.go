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
)

// Properties of liquid water.
const (
	RhoH2O = 0.997 // g/cm³
	RIH2O  = complex(1.333, 0)
)

// KKohler returns the wet diameter of a particle with dry diameter dDry
// and hygroscopicity kappa at relative humidity rh [%], using
// κ-Köhler theory (Petters and Kreidenweis, 2007) with water activity
// equal to rh/100.
func KKohler(dDry, kappa, rh float64) float64 {
	aw := rh / 100
	return dDry * math.Cbrt(1+kappa*aw/(1-aw))
}

// DryFraction returns the volume fraction of a grown particle that is
// dry material.
func DryFraction(kappa, rh float64) float64 {
	g := KKohler(1, kappa, rh)
	return 1 / (g * g * g)
}

// RhoEff returns the volume-weighted density of a mixture.
func RhoEff(rhos, weights []float64) (float64, error) {
	w, err := normalize(len(rhos), weights)
	if err != nil {
		return math.NaN(), err
	}
	var rho float64
	for i, r := range rhos {
		rho += r * w[i]
	}
	return rho, nil
}

// RIEff returns the volume-weighted refractive index of a mixture.
// Real and imaginary parts are mixed separately.
func RIEff(indices []complex128, weights []float64) (complex128, error) {
	w, err := normalize(len(indices), weights)
	if err != nil {
		return complex(math.NaN(), 0), err
	}
	var ri complex128
	for i, m := range indices {
		ri += m * complex(w[i], 0)
	}
	return ri, nil
}

func normalize(n int, weights []float64) ([]float64, error) {
	if n != len(weights) || n == 0 {
		return nil, fmt.Errorf("opcsim: %d species but %d weights: %w", n, len(weights), ErrInvalidParameter)
	}
	var sum float64
	for _, w := range weights {
		if !(w >= 0) {
			return nil, fmt.Errorf("opcsim: mixing weights must be >= 0 but one is %g: %w", w, ErrInvalidParameter)
		}
		sum += w
	}
	if sum == 0 {
		return nil, fmt.Errorf("opcsim: mixing weights sum to zero: %w", ErrInvalidParameter)
	}
	o := make([]float64, n)
	for i, w := range weights {
		o[i] = w / sum
	}
	return o, nil
}

// WetMode returns mode m after equilibration at relative humidity rh [%].
// The geometric mean diameter grows by the κ-Köhler growth factor, the
// geometric standard deviation is unchanged, and the density and
// refractive index are mixed with water by volume.
func WetMode(m Mode, rh float64) (Mode, error) {
	if err := checkRH(rh); err != nil {
		return m, err
	}
	if rh == 0 || m.Kappa == 0 {
		return m, nil
	}
	dry := DryFraction(m.Kappa, rh)
	wet := m
	wet.GM = KKohler(m.GM, m.Kappa, rh)
	var err error
	if wet.Rho, err = RhoEff([]float64{m.Rho, RhoH2O}, []float64{dry, 1 - dry}); err != nil {
		return m, err
	}
	if wet.RefractiveIndex, err = RIEff([]complex128{m.RefractiveIndex, RIH2O}, []float64{dry, 1 - dry}); err != nil {
		return m, err
	}
	return wet, nil
}

func checkRH(rh float64) error {
	if !(rh >= 0 && rh < 100) {
		return fmt.Errorf("opcsim: relative humidity must be in [0, 100) but is %g: %w", rh, ErrInvalidParameter)
	}
	return nil
}
