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

// Package mie calculates light scattering by homogeneous spheres using
// Mie theory, following the algorithm of Bohren and Huffman (1983),
// Absorption and Scattering of Light by Small Particles, appendix A.
//
// Diameters and wavelengths are in micrometers and scattering angles are
// in degrees.
package mie

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
)

// ErrNonConvergence is returned when the Mie series cannot be evaluated
// to the requested tolerance within the maximum number of terms.
var ErrNonConvergence = errors.New("mie: series did not converge")

const (
	// DefaultMaxOrder is the default cap on the number of series terms
	// and on the length of the log-derivative recurrence.
	DefaultMaxOrder = 10000

	// DefaultTolerance is the default maximum relative contribution of
	// the last series term to the scattering efficiency.
	DefaultTolerance = 1e-8

	// minOrder is the smallest number of series terms ever used.
	minOrder = 3
)

// Engine holds the convergence settings for Mie calculations.
// The zero value is not usable; use New.
type Engine struct {
	// MaxOrder is the maximum number of series terms.
	MaxOrder int

	// Tolerance is the largest allowed relative contribution of the last
	// series term to the scattering efficiency.
	Tolerance float64
}

// New returns an engine with the default settings.
func New() *Engine {
	return &Engine{MaxOrder: DefaultMaxOrder, Tolerance: DefaultTolerance}
}

// SizeParameter returns π·dp/wl.
func SizeParameter(dp, wl float64) float64 { return math.Pi * dp / wl }

// Order returns the number of series terms suggested by Wiscombe (1980)
// for size parameter x.
func Order(x float64) int {
	n := int(math.Round(x + 4*math.Cbrt(x) + 2))
	if n < minOrder {
		n = minOrder
	}
	return n
}

// Coefficients returns the Mie coefficients a_n and b_n, n = 1..N, for
// a sphere with size parameter x and complex refractive index m relative
// to the surrounding medium. N starts at Order(x) and is increased until
// the last term changes the scattering efficiency by less than
// e.Tolerance.
func (e *Engine) Coefficients(x float64, m complex128) (a, b []complex128, err error) {
	if !(x > 0) || math.IsInf(x, 0) {
		return nil, nil, fmt.Errorf("mie: size parameter must be > 0 but is %g: %w", x, ErrNonConvergence)
	}
	if !(real(m) > 0) || imag(m) < 0 || cmplx.IsInf(m) || cmplx.IsNaN(m) {
		return nil, nil, fmt.Errorf("mie: invalid refractive index %v: %w", m, ErrNonConvergence)
	}
	n := Order(x)
	for {
		if n > e.MaxOrder {
			return nil, nil, fmt.Errorf("mie: x=%g, m=%v needs more than %d terms: %w", x, m, e.MaxOrder, ErrNonConvergence)
		}
		a, b, err = e.coefficients(x, m, n)
		if err != nil {
			return nil, nil, err
		}
		if e.converged(a, b) {
			return a, b, nil
		}
		n += n/4 + minOrder
	}
}

// coefficients calculates n terms of the series. The logarithmic
// derivative D_n(mx) is found by downward recurrence and the
// Riccati-Bessel functions ψ_n(x) and χ_n(x) by upward recurrence.
func (e *Engine) coefficients(x float64, m complex128, n int) (a, b []complex128, err error) {
	mx := m * complex(x, 0)
	nmx := int(math.Round(math.Max(float64(n), cmplx.Abs(mx)) + 16))
	if nmx > e.MaxOrder {
		return nil, nil, fmt.Errorf("mie: log-derivative recurrence for x=%g, m=%v needs %d steps, more than %d: %w",
			x, m, nmx, e.MaxOrder, ErrNonConvergence)
	}
	d := make([]complex128, nmx+1)
	for k := nmx; k > 1; k-- {
		kmx := complex(float64(k), 0) / mx
		d[k-1] = kmx - 1/(d[k]+kmx)
	}

	a = make([]complex128, n)
	b = make([]complex128, n)
	psi0, psi1 := math.Cos(x), math.Sin(x)
	chi0, chi1 := -math.Sin(x), math.Cos(x)
	xi1 := complex(psi1, -chi1)
	for k := 1; k <= n; k++ {
		fk := float64(k)
		psi := (2*fk-1)/x*psi1 - psi0
		chi := (2*fk-1)/x*chi1 - chi0
		xi := complex(psi, -chi)
		nx := complex(fk/x, 0)
		da := d[k]/m + nx
		db := m*d[k] + nx
		a[k-1] = (da*complex(psi, 0) - complex(psi1, 0)) / (da*xi - xi1)
		b[k-1] = (db*complex(psi, 0) - complex(psi1, 0)) / (db*xi - xi1)
		if cmplx.IsNaN(a[k-1]) || cmplx.IsNaN(b[k-1]) || cmplx.IsInf(a[k-1]) || cmplx.IsInf(b[k-1]) {
			return nil, nil, fmt.Errorf("mie: non-finite coefficient at order %d for x=%g, m=%v: %w", k, x, m, ErrNonConvergence)
		}
		psi0, psi1 = psi1, psi
		chi0, chi1 = chi1, chi
		xi1 = complex(psi1, -chi1)
	}
	return a, b, nil
}

func (e *Engine) converged(a, b []complex128) bool {
	var sum, last float64
	for i := range a {
		last = float64(2*i+3) * (sqAbs(a[i]) + sqAbs(b[i]))
		sum += last
	}
	if sum == 0 {
		return true
	}
	return last <= e.Tolerance*sum
}

func sqAbs(c complex128) float64 { return real(c)*real(c) + imag(c)*imag(c) }

// AngularFunctions returns the angle-dependent functions π_n and τ_n,
// n = 1..n, at scattering angle theta [degrees]. A negative n is treated
// as zero.
func AngularFunctions(theta float64, n int) (pi, tau []float64) {
	if n < 0 {
		n = 0
	}
	mu := math.Cos(theta * math.Pi / 180)
	pi = make([]float64, n)
	tau = make([]float64, n)
	var pm1, pm2 float64 // π_{k-1}, π_{k-2}
	for k := 1; k <= n; k++ {
		fk := float64(k)
		pk := 1.
		if k > 1 {
			pk = (2*fk-1)/(fk-1)*mu*pm1 - fk/(fk-1)*pm2
		}
		pi[k-1] = pk
		tau[k-1] = fk*mu*pk - (fk+1)*pm1
		pm2, pm1 = pm1, pk
	}
	return pi, tau
}

// AmplitudeFunctions returns the scattering amplitudes S1 and S2 at each
// of the given scattering angles [degrees].
func (e *Engine) AmplitudeFunctions(x float64, m complex128, thetas []float64) (s1, s2 []complex128, err error) {
	a, b, err := e.Coefficients(x, m)
	if err != nil {
		return nil, nil, err
	}
	s1 = make([]complex128, len(thetas))
	s2 = make([]complex128, len(thetas))
	for i, theta := range thetas {
		s1[i], s2[i] = amplitudes(a, b, theta)
	}
	return s1, s2, nil
}

func amplitudes(a, b []complex128, theta float64) (s1, s2 complex128) {
	pi, tau := AngularFunctions(theta, len(a))
	for i := range a {
		n := float64(i + 1)
		f := complex((2*n+1)/(n*(n+1)), 0)
		p, t := complex(pi[i], 0), complex(tau[i], 0)
		s1 += f * (a[i]*p + b[i]*t)
		s2 += f * (a[i]*t + b[i]*p)
	}
	return s1, s2
}

// Efficiencies holds the efficiency factors of a sphere.
type Efficiencies struct {
	Ext, Sca, Abs, Back float64

	// G is the asymmetry parameter <cos θ>.
	G float64
}

// Efficiencies returns the extinction, scattering, absorption and
// backscattering efficiencies and the asymmetry parameter.
func (e *Engine) Efficiencies(x float64, m complex128) (Efficiencies, error) {
	a, b, err := e.Coefficients(x, m)
	if err != nil {
		return Efficiencies{}, err
	}
	var q Efficiencies
	var back complex128
	var g float64
	sign := -1.
	for i := range a {
		n := float64(i + 1)
		q.Sca += (2*n + 1) * (sqAbs(a[i]) + sqAbs(b[i]))
		q.Ext += (2*n + 1) * real(a[i]+b[i])
		back += complex((2*n+1)*sign, 0) * (a[i] - b[i])
		sign = -sign
		g += (2*n + 1) / (n * (n + 1)) * real(a[i]*cmplx.Conj(b[i]))
		if i+1 < len(a) {
			g += n * (n + 2) / (n + 1) * real(a[i]*cmplx.Conj(a[i+1])+b[i]*cmplx.Conj(b[i+1]))
		}
	}
	x2 := x * x
	q.G = 2 * g / q.Sca
	q.Sca *= 2 / x2
	q.Ext *= 2 / x2
	q.Abs = q.Ext - q.Sca
	q.Back = sqAbs(back) / x2
	return q, nil
}

// ScatteringEfficiency returns the scattering efficiency
// Qscat = (2/x²)·Σ(2n+1)(|a_n|²+|b_n|²).
func (e *Engine) ScatteringEfficiency(x float64, m complex128) (float64, error) {
	a, b, err := e.Coefficients(x, m)
	if err != nil {
		return math.NaN(), err
	}
	var q float64
	for i := range a {
		q += float64(2*i+3) * (sqAbs(a[i]) + sqAbs(b[i]))
	}
	return 2 * q / (x * x), nil
}

// CrossSection returns the total scattering cross-section [µm²] of a
// particle with diameter dp [µm] at wavelength wl [µm].
func (e *Engine) CrossSection(dp, wl float64, m complex128) (float64, error) {
	q, err := e.ScatteringEfficiency(SizeParameter(dp, wl), m)
	if err != nil {
		return math.NaN(), err
	}
	return q * math.Pi * dp * dp / 4, nil
}

// AngularCrossSection returns the scattering cross-section [cm²] of a
// particle with diameter dp [µm] at wavelength wl [µm] for light scattered
// between theta1 and theta2 [degrees], after Jaenicke and Hanusch (1993):
//
//	Csca = λ²/(4π) ∫ (|S1|² + |S2|²) sin θ dθ
//
// The integral is calculated with the trapezoidal rule over steps evenly
// spaced angles.
func (e *Engine) AngularCrossSection(dp, wl float64, m complex128, theta1, theta2 float64, steps int) (float64, error) {
	if steps < 2 {
		return math.NaN(), fmt.Errorf("mie: at least 2 angle steps are needed but %d were requested", steps)
	}
	if !(wl > 0) {
		return math.NaN(), fmt.Errorf("mie: wavelength must be > 0 but is %g", wl)
	}
	if !(theta1 >= 0 && theta1 < theta2 && theta2 <= 180) {
		return math.NaN(), fmt.Errorf("mie: invalid angle range [%g, %g]", theta1, theta2)
	}
	thetas := make([]float64, steps)
	floats.Span(thetas, theta1, theta2)
	s1, s2, err := e.AmplitudeFunctions(SizeParameter(dp, wl), m, thetas)
	if err != nil {
		return math.NaN(), err
	}
	rad := make([]float64, steps)
	f := make([]float64, steps)
	for i, theta := range thetas {
		rad[i] = theta * math.Pi / 180
		f[i] = (sqAbs(s1[i]) + sqAbs(s2[i])) * math.Sin(rad[i])
	}
	wlcm := wl * 1e-4
	return wlcm * wlcm / (4 * math.Pi) * integrate.Trapezoidal(rad, f), nil
}
