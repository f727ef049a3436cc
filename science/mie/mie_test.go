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

package mie

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"testing"
)

func different(a, b, tolerance float64) bool {
	if 2*math.Abs(a-b)/math.Abs(a+b) > tolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}

func TestOrder(t *testing.T) {
	for x, want := range map[float64]int{0.001: 3, 0.1: 4, 1: 7, 10: 21, 100: 121} {
		if n := Order(x); n != want {
			t.Errorf("Order(%g) = %d, want %d", x, n, want)
		}
	}
}

// Reference values from the BHMIE sample calculation in Bohren and
// Huffman (1983) appendix A: radius 0.525 µm, wavelength 0.6328 µm,
// m = 1.55.
func TestBohrenHuffmanSample(t *testing.T) {
	e := New()
	x := SizeParameter(1.05, 0.6328)
	q, err := e.Efficiencies(x, 1.55)
	if err != nil {
		t.Fatal(err)
	}
	if different(q.Sca, 3.10543, 1e-4) {
		t.Errorf("Qsca = %g, want 3.10543", q.Sca)
	}
	if different(q.Back, 2.92534, 1e-4) {
		t.Errorf("Qback = %g, want 2.92534", q.Back)
	}
	if math.Abs(q.Ext-q.Sca) > 1e-10 {
		t.Errorf("non-absorbing sphere: Qext %g != Qsca %g", q.Ext, q.Sca)
	}
	if q.G <= 0 || q.G >= 1 {
		t.Errorf("asymmetry parameter %g out of range", q.G)
	}
}

func TestRayleighLimit(t *testing.T) {
	e := New()
	for _, m := range []complex128{1.33, 1.5, 1.59, 2} {
		for _, x := range []float64{0.005, 0.01} {
			q, err := e.ScatteringEfficiency(x, m)
			if err != nil {
				t.Fatal(err)
			}
			k := (m*m - 1) / (m*m + 2)
			want := 8. / 3 * math.Pow(x, 4) * real(k*cmplx.Conj(k))
			if different(q, want, 1e-3) {
				t.Errorf("m=%v x=%g: Qscat %g, Rayleigh %g", m, x, q, want)
			}
		}
	}
}

func TestConvergence(t *testing.T) {
	e := New()
	for _, x := range []float64{0.1, 1, 10, 100} {
		for _, k := range []float64{0, 0.01, 0.1, 1} {
			m := complex(1.5, k)
			t.Run(fmt.Sprintf("x=%g,m=%v", x, m), func(t *testing.T) {
				a, b, err := e.Coefficients(x, m)
				if err != nil {
					t.Fatal(err)
				}
				q, err := e.ScatteringEfficiency(x, m)
				if err != nil {
					t.Fatal(err)
				}
				if q < 0 || math.IsNaN(q) {
					t.Fatalf("Qscat = %g", q)
				}
				// Adding terms beyond the chosen order does not change Qscat.
				a2, b2, err := e.coefficients(x, m, len(a)+10)
				if err != nil {
					t.Fatal(err)
				}
				q1, q2 := qsca(x, a, b), qsca(x, a2, b2)
				if different(q1, q2, 1e-7) {
					t.Errorf("Qscat %g with %d terms, %g with %d terms", q1, len(a), q2, len(a2))
				}
			})
		}
	}
}

func qsca(x float64, a, b []complex128) float64 {
	var q float64
	for i := range a {
		q += float64(2*i+3) * (sqAbs(a[i]) + sqAbs(b[i]))
	}
	return 2 * q / (x * x)
}

func TestNonConvergence(t *testing.T) {
	e := &Engine{MaxOrder: 10, Tolerance: DefaultTolerance}
	if _, _, err := e.Coefficients(50, 1.5); !errors.Is(err, ErrNonConvergence) {
		t.Errorf("want ErrNonConvergence, have %v", err)
	}
	// Retrying with a higher cap succeeds.
	e.MaxOrder = DefaultMaxOrder
	if _, _, err := e.Coefficients(50, 1.5); err != nil {
		t.Error(err)
	}
	for _, x := range []float64{0, -1, math.NaN()} {
		if _, err := e.ScatteringEfficiency(x, 1.5); !errors.Is(err, ErrNonConvergence) {
			t.Errorf("x=%g: want ErrNonConvergence, have %v", x, err)
		}
	}
}

func TestAngularFunctions(t *testing.T) {
	pi, tau := AngularFunctions(30, 3)
	mu := math.Cos(math.Pi / 6)
	want := []struct{ pi, tau float64 }{
		{1, mu},
		{3 * mu, 3 * math.Cos(math.Pi/3)},
		{7.5*mu*mu - 1.5, 3*mu*(7.5*mu*mu-1.5) - 4*3*mu},
	}
	for i, w := range want {
		if math.Abs(pi[i]-w.pi) > 1e-12 {
			t.Errorf("π_%d = %g, want %g", i+1, pi[i], w.pi)
		}
		if math.Abs(tau[i]-w.tau) > 1e-12 {
			t.Errorf("τ_%d = %g, want %g", i+1, tau[i], w.tau)
		}
	}
}

func TestAngularFunctionsNegativeOrder(t *testing.T) {
	pi, tau := AngularFunctions(45, -1)
	if len(pi) != 0 || len(tau) != 0 {
		t.Errorf("π %v, τ %v", pi, tau)
	}
}

func TestAmplitudeFunctions(t *testing.T) {
	e := New()
	const x = 3.
	const m = complex(1.5, 0.01)
	s1, s2, err := e.AmplitudeFunctions(x, m, []float64{0, 180})
	if err != nil {
		t.Fatal(err)
	}
	if cmplx.Abs(s1[0]-s2[0]) > 1e-10 {
		t.Errorf("forward: S1 %v != S2 %v", s1[0], s2[0])
	}
	if cmplx.Abs(s1[1]+s2[1]) > 1e-10 {
		t.Errorf("backward: S1 %v != -S2 %v", s1[1], s2[1])
	}
	q, err := e.Efficiencies(x, m)
	if err != nil {
		t.Fatal(err)
	}
	// Optical theorem.
	if ext := 4 / (x * x) * real(s1[0]); different(ext, q.Ext, 1e-10) {
		t.Errorf("4/x²·Re S(0) = %g, Qext = %g", ext, q.Ext)
	}
	if back := 4 / (x * x) * sqAbs(s1[1]); different(back, q.Back, 1e-10) {
		t.Errorf("4/x²·|S(180)|² = %g, Qback = %g", back, q.Back)
	}
}

func TestAngularCrossSection(t *testing.T) {
	e := New()
	const dp, wl = 0.8, 0.658
	const m = complex(1.59, 0)
	full, err := e.AngularCrossSection(dp, wl, m, 0, 180, 4000)
	if err != nil {
		t.Fatal(err)
	}
	total, err := e.CrossSection(dp, wl, m)
	if err != nil {
		t.Fatal(err)
	}
	// µm² to cm².
	if different(full, total*1e-8, 1e-4) {
		t.Errorf("full-sphere angular cross-section %g != %g", full, total*1e-8)
	}
	side, err := e.AngularCrossSection(dp, wl, m, 32, 88, 100)
	if err != nil {
		t.Fatal(err)
	}
	if side <= 0 || side >= full {
		t.Errorf("32°-88° cross-section %g should be in (0, %g)", side, full)
	}
	if _, err := e.AngularCrossSection(dp, wl, m, 88, 32, 100); err == nil {
		t.Error("reversed angles should fail")
	}
}
