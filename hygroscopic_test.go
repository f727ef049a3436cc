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
	"errors"
	"math"
	"testing"
)

func TestKKohler(t *testing.T) {
	tests := []struct {
		dDry, kappa, rh, want float64
	}{
		{dDry: 0.1, kappa: 0, rh: 95, want: 0.1},
		{dDry: 0.1, kappa: 0.5, rh: 0, want: 0.1},
		{dDry: 0.1, kappa: 0.5, rh: 80, want: 0.1 * math.Cbrt(3)},
		{dDry: 2, kappa: 1.28, rh: 50, want: 2 * math.Cbrt(2.28)},
	}
	for _, test := range tests {
		if have := KKohler(test.dDry, test.kappa, test.rh); different(have, test.want, 1e-12) {
			t.Errorf("KKohler(%g, %g, %g) = %g, want %g", test.dDry, test.kappa, test.rh, have, test.want)
		}
	}
	if f := DryFraction(0.5, 80); different(f, 1./3, 1e-12) {
		t.Errorf("dry fraction %g", f)
	}
}

func TestMixing(t *testing.T) {
	rho, err := RhoEff([]float64{1.77, RhoH2O}, []float64{1, 3})
	if err != nil {
		t.Fatal(err)
	}
	if want := (1.77 + 3*RhoH2O) / 4; different(rho, want, 1e-12) {
		t.Errorf("rho %g != %g", rho, want)
	}
	ri, err := RIEff([]complex128{complex(1.95, 0.79), RIH2O}, []float64{0.5, 0.5})
	if err != nil {
		t.Fatal(err)
	}
	if different(real(ri), (1.95+1.333)/2, 1e-12) || different(imag(ri), 0.395, 1e-12) {
		t.Errorf("ri %v", ri)
	}
	if _, err := RhoEff([]float64{1, 2}, []float64{1}); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("length mismatch: %v", err)
	}
	if _, err := RhoEff([]float64{1, 2}, []float64{0, 0}); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("zero weights: %v", err)
	}
}

func TestWetMode(t *testing.T) {
	m := Mode{Label: "sulfate", N: 100, GM: 0.2, GSD: 1.6, Kappa: 0.5, Rho: 1.77, RefractiveIndex: complex(1.521, 0)}
	wet, err := WetMode(m, 80)
	if err != nil {
		t.Fatal(err)
	}
	if different(wet.GM, 0.2*math.Cbrt(3), 1e-12) || wet.GSD != m.GSD || wet.N != m.N {
		t.Errorf("wet mode %+v", wet)
	}
	if want := (1.77 + 2*RhoH2O) / 3; different(wet.Rho, want, 1e-12) {
		t.Errorf("wet density %g != %g", wet.Rho, want)
	}
	if want := (1.521 + 2*1.333) / 3; different(real(wet.RefractiveIndex), want, 1e-12) {
		t.Errorf("wet refractive index %v", wet.RefractiveIndex)
	}

	m.Kappa = 0
	if dry, err := WetMode(m, 90); err != nil || dry != m {
		t.Errorf("kappa = 0 should not grow: %+v, %v", dry, err)
	}
}
