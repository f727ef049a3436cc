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

package lognormal

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
)

func different(a, b, tolerance float64) bool {
	if 2*math.Abs(a-b)/math.Abs(a+b) > tolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}

var urbanI = Params{N: 7100, GM: 0.0117, GSD: math.Pow(10, 0.232), Rho: 1.5}

// lnIntegral integrates f over ln(Dp) across ±10 geometric standard
// deviations of the mode.
func lnIntegral(p Params, f func(float64, Params) float64) float64 {
	const n = 4001
	s := math.Log(p.GSD)
	x := make([]float64, n)
	floats.Span(x, math.Log(p.GM)-10*s, math.Log(p.GM)+10*s)
	y := make([]float64, n)
	for i, lx := range x {
		y[i] = f(math.Exp(lx), p)
	}
	return integrate.Simpsons(x, y)
}

func TestPDFIntegratesToTotal(t *testing.T) {
	for _, p := range []Params{
		urbanI,
		{N: 1000, GM: 0.1, GSD: 2},
		{N: 3.1, GM: 0.58, GSD: math.Pow(10, 0.396)},
	} {
		n := lnIntegral(p, DnDlnDp)
		if different(n, p.N, 1e-6) {
			t.Errorf("number: %g != %g", n, p.N)
		}
		s := math.Log(p.GSD)
		wantS := math.Pi * p.N * p.GM * p.GM * math.Exp(2*s*s)
		if ss := lnIntegral(p, DsDlnDp); different(ss, wantS, 1e-6) {
			t.Errorf("surface: %g != %g", ss, wantS)
		}
		wantV := math.Pi / 6 * p.N * math.Pow(p.GM, 3) * math.Exp(4.5*s*s)
		if v := lnIntegral(p, DvDlnDp); different(v, wantV, 1e-6) {
			t.Errorf("volume: %g != %g", v, wantV)
		}
	}
}

func TestBasesConsistent(t *testing.T) {
	p := Params{N: 1000, GM: 0.1, GSD: 2, Rho: 1.65}
	for _, dp := range []float64{1e-3, 0.01, 0.1, 0.35, 1, 7.5, 40} {
		for _, w := range []Weight{Number, Surface, Volume, Mass} {
			vlog10, err := PDF(dp, p, w, Log10)
			if err != nil {
				t.Fatal(err)
			}
			vln, err := PDF(dp, p, w, Ln)
			if err != nil {
				t.Fatal(err)
			}
			vdp, err := PDF(dp, p, w, Linear)
			if err != nil {
				t.Fatal(err)
			}
			if vlog10 == 0 {
				continue
			}
			if different(vlog10, math.Ln10*vln, 1e-12) {
				t.Errorf("%v dp=%g: log10 %g != ln10·ln %g", w, dp, vlog10, math.Ln10*vln)
			}
			if different(vln, dp*vdp, 1e-12) {
				t.Errorf("%v dp=%g: ln %g != dp·dDp %g", w, dp, vln, dp*vdp)
			}
		}
	}
}

func TestCDF(t *testing.T) {
	p := urbanI
	t.Run("totals", func(t *testing.T) {
		n, err := Total(p, Number)
		if err != nil {
			t.Fatal(err)
		}
		if different(n, p.N, 1e-12) {
			t.Errorf("number %g != %g", n, p.N)
		}
		v, _ := Total(p, Volume)
		m, _ := Total(p, Mass)
		if different(m, p.Rho*v, 1e-12) {
			t.Errorf("mass %g != rho·volume %g", m, p.Rho*v)
		}
	})
	t.Run("erf forms", func(t *testing.T) {
		for _, d := range []float64{0.005, 0.0117, 0.03, 0.2} {
			n, _ := CDF(p, Number, 0, d)
			if different(n, Nt(d, p), 1e-9) {
				t.Errorf("Nt(%g): %g != %g", d, n, Nt(d, p))
			}
			s, _ := CDF(p, Surface, 0, d)
			if different(s, St(d, p), 1e-9) {
				t.Errorf("St(%g): %g != %g", d, s, St(d, p))
			}
			v, _ := CDF(p, Volume, 0, d)
			if different(v, Vt(d, p), 1e-9) {
				t.Errorf("Vt(%g): %g != %g", d, v, Vt(d, p))
			}
		}
	})
	t.Run("definite", func(t *testing.T) {
		const dmin, dmax = 0.01, 0.05
		const n = 2001
		x := make([]float64, n)
		floats.Span(x, math.Log(dmin), math.Log(dmax))
		y := make([]float64, n)
		for i, lx := range x {
			y[i] = DvDlnDp(math.Exp(lx), p)
		}
		want := integrate.Simpsons(x, y)
		have, err := CDF(p, Volume, dmin, dmax)
		if err != nil {
			t.Fatal(err)
		}
		if different(have, want, 1e-6) {
			t.Errorf("%g != %g", have, want)
		}
		whole, _ := CDF(p, Volume, 0, dmax)
		low, _ := CDF(p, Volume, 0, dmin)
		if different(have, whole-low, 1e-9) {
			t.Errorf("not additive: %g != %g", have, whole-low)
		}
	})
}

func TestInvalidParameters(t *testing.T) {
	for _, p := range []Params{
		{N: 1, GM: 0.1, GSD: 1},
		{N: 1, GM: 0.1, GSD: 0.5},
		{N: 1, GM: 0, GSD: 2},
		{N: 1, GM: -1, GSD: 2},
		{N: -1, GM: 0.1, GSD: 2},
		{N: math.NaN(), GM: 0.1, GSD: 2},
	} {
		if _, err := PDF(0.1, p, Number, Log10); !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("PDF %+v: want ErrInvalidParameter, have %v", p, err)
		}
		if _, err := CDF(p, Number, 0, 1); !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("CDF %+v: want ErrInvalidParameter, have %v", p, err)
		}
	}
	good := Params{N: 1, GM: 0.1, GSD: 2}
	if _, err := PDF(0.1, good, Mass, Log10); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("mass without density: have %v", err)
	}
	if _, err := PDF(0, good, Number, Log10); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("zero diameter: have %v", err)
	}
	if _, err := CDF(good, Number, 1, 0.5); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("reversed range: have %v", err)
	}
	// The closed forms are not validated.
	if v := DnDdp(0.2, Params{N: 1, GM: 0.1, GSD: 1}); !math.IsNaN(v) {
		t.Errorf("DnDdp with GSD=1 = %g, want NaN", v)
	}
}

func TestParse(t *testing.T) {
	for s, want := range map[string]Weight{"number": Number, "Surface": Surface, "volume": Volume, "mass": Mass} {
		w, err := ParseWeight(s)
		if err != nil {
			t.Fatal(err)
		}
		if w != want {
			t.Errorf("%s: %v != %v", s, w, want)
		}
	}
	if _, err := ParseWeight("charge"); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("have %v", err)
	}
	for s, want := range map[string]Base{"log10": Log10, "log": Ln, "none": Linear} {
		b, err := ParseBase(s)
		if err != nil {
			t.Fatal(err)
		}
		if b != want {
			t.Errorf("%s: %v != %v", s, b, want)
		}
	}
}
