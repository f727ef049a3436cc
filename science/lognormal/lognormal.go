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

// Package lognormal provides closed-form probability density and cumulative
// functions for single lognormal aerosol modes, weighted by number, surface
// area, volume, or mass. Equations follow Seinfeld and Pandis,
// Atmospheric Chemistry and Physics, chapter 8.
//
// Diameters are in micrometers and number concentrations in particles per
// cubic centimeter, so surface area is in µm²/cm³, volume in µm³/cm³, and
// mass (volume times density in g/cm³) in µg/m³.
package lognormal

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"
)

// ErrInvalidParameter is returned when mode parameters or arguments are
// outside of their valid ranges.
var ErrInvalidParameter = errors.New("lognormal: invalid parameter")

// Params holds the parameters of a single lognormal mode.
type Params struct {
	// N is the total number concentration [particles/cm³].
	N float64

	// GM is the geometric mean diameter [µm].
	GM float64

	// GSD is the geometric standard deviation [-].
	GSD float64

	// Rho is the particle density [g/cm³]. It is only used for
	// mass weighting.
	Rho float64
}

// Validate returns an error if the parameters cannot describe a
// lognormal mode.
func (p Params) Validate() error {
	if !(p.N >= 0) || math.IsInf(p.N, 0) {
		return fmt.Errorf("lognormal: number concentration must be >= 0 but is %g: %w", p.N, ErrInvalidParameter)
	}
	if !(p.GM > 0) || math.IsInf(p.GM, 0) {
		return fmt.Errorf("lognormal: geometric mean diameter must be > 0 but is %g: %w", p.GM, ErrInvalidParameter)
	}
	if !(p.GSD > 1) || math.IsInf(p.GSD, 0) {
		return fmt.Errorf("lognormal: geometric standard deviation must be > 1 but is %g: %w", p.GSD, ErrInvalidParameter)
	}
	return nil
}

// Weight specifies which particle property a distribution is weighted by.
type Weight int

// These are the available weightings.
const (
	Number Weight = iota
	Surface
	Volume
	Mass
)

func (w Weight) String() string {
	switch w {
	case Number:
		return "number"
	case Surface:
		return "surface"
	case Volume:
		return "volume"
	case Mass:
		return "mass"
	default:
		return fmt.Sprintf("Weight(%d)", int(w))
	}
}

// ParseWeight returns the weight with the given name.
func ParseWeight(s string) (Weight, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "number", "n":
		return Number, nil
	case "surface", "s", "area":
		return Surface, nil
	case "volume", "v":
		return Volume, nil
	case "mass", "m":
		return Mass, nil
	}
	return Number, fmt.Errorf("lognormal: invalid weight %q; valid options are number, surface, volume, and mass: %w", s, ErrInvalidParameter)
}

// Base specifies the diameter transform that a density is expressed
// per unit of. The zero value is Log10.
type Base int

// These are the available bases.
const (
	// Log10 gives densities per unit log10(Dp), e.g. dN/dlogDp.
	Log10 Base = iota
	// Ln gives densities per unit ln(Dp), e.g. dN/dlnDp.
	Ln
	// Linear gives densities per unit Dp, e.g. dN/dDp.
	Linear
)

func (b Base) String() string {
	switch b {
	case Log10:
		return "log10"
	case Ln:
		return "log"
	case Linear:
		return "none"
	default:
		return fmt.Sprintf("Base(%d)", int(b))
	}
}

// ParseBase returns the base with the given name.
func ParseBase(s string) (Base, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "log10", "":
		return Log10, nil
	case "log", "ln":
		return Ln, nil
	case "none", "linear":
		return Linear, nil
	}
	return Log10, fmt.Errorf("lognormal: invalid base %q; valid options are log10, log, and none: %w", s, ErrInvalidParameter)
}

// DnDdp returns dN/dDp [particles/cm³/µm] at diameter dp.
//
// DnDdp and the other closed forms below do not validate p or dp; PDF is
// the validated entry point.
func DnDdp(dp float64, p Params) float64 {
	ls := math.Log(p.GSD)
	lr := math.Log(dp) - math.Log(p.GM)
	return p.N / (math.Sqrt(2*math.Pi) * dp * ls) * math.Exp(-lr*lr/(2*ls*ls))
}

// DnDlnDp returns dN/dlnDp at diameter dp.
func DnDlnDp(dp float64, p Params) float64 { return dp * DnDdp(dp, p) }

// DnDlogDp returns dN/dlogDp at diameter dp.
func DnDlogDp(dp float64, p Params) float64 { return math.Ln10 * dp * DnDdp(dp, p) }

// DsDdp returns dS/dDp [µm²/cm³/µm] at diameter dp.
func DsDdp(dp float64, p Params) float64 { return math.Pi * dp * dp * DnDdp(dp, p) }

// DsDlnDp returns dS/dlnDp at diameter dp.
func DsDlnDp(dp float64, p Params) float64 { return math.Pi * dp * dp * DnDlnDp(dp, p) }

// DsDlogDp returns dS/dlogDp at diameter dp.
func DsDlogDp(dp float64, p Params) float64 { return math.Pi * dp * dp * DnDlogDp(dp, p) }

// DvDdp returns dV/dDp [µm³/cm³/µm] at diameter dp.
func DvDdp(dp float64, p Params) float64 { return math.Pi / 6 * dp * dp * dp * DnDdp(dp, p) }

// DvDlnDp returns dV/dlnDp at diameter dp.
func DvDlnDp(dp float64, p Params) float64 { return math.Pi / 6 * dp * dp * dp * DnDlnDp(dp, p) }

// DvDlogDp returns dV/dlogDp at diameter dp.
func DvDlogDp(dp float64, p Params) float64 { return math.Pi / 6 * dp * dp * dp * DnDlogDp(dp, p) }

// PDF returns the density of weight w per unit of base b at diameter
// dp [µm].
func PDF(dp float64, p Params, w Weight, b Base) (float64, error) {
	if err := check(p, w); err != nil {
		return math.NaN(), err
	}
	if !(dp > 0) {
		return math.NaN(), fmt.Errorf("lognormal: diameter must be > 0 but is %g: %w", dp, ErrInvalidParameter)
	}
	var f [3]func(float64, Params) float64
	switch w {
	case Number:
		f = [3]func(float64, Params) float64{DnDlogDp, DnDlnDp, DnDdp}
	case Surface:
		f = [3]func(float64, Params) float64{DsDlogDp, DsDlnDp, DsDdp}
	case Volume, Mass:
		f = [3]func(float64, Params) float64{DvDlogDp, DvDlnDp, DvDdp}
	}
	if b < Log10 || b > Linear {
		return math.NaN(), fmt.Errorf("lognormal: invalid base %v: %w", b, ErrInvalidParameter)
	}
	v := f[b](dp, p)
	if w == Mass {
		v *= p.Rho
	}
	return v, nil
}

// Moment returns the k-th moment of the number distribution between
// dmin and dmax, i.e. the integral of Dp^k·n(Dp) dDp. dmin <= 0 integrates
// from zero and dmax = +Inf integrates to infinity. It uses the lognormal
// moment-shift identity
//
//	∫₀ᴰ Dpᵏ n(Dp) dDp = N·exp(kμ + k²σ²/2)·Φ((ln D − μ − kσ²)/σ)
//
// where μ = ln(GM) and σ = ln(GSD).
func Moment(p Params, k, dmin, dmax float64) (float64, error) {
	if err := p.Validate(); err != nil {
		return math.NaN(), err
	}
	if math.IsNaN(dmin) || math.IsNaN(dmax) || dmax < dmin {
		return math.NaN(), fmt.Errorf("lognormal: invalid integration range [%g, %g]: %w", dmin, dmax, ErrInvalidParameter)
	}
	mu := math.Log(p.GM)
	s := math.Log(p.GSD)
	shifted := distuv.LogNormal{Mu: mu + k*s*s, Sigma: s}
	var lo float64
	if dmin > 0 {
		lo = shifted.CDF(dmin)
	}
	hi := 0.
	if dmax > 0 {
		hi = shifted.CDF(dmax)
	}
	return p.N * math.Exp(k*mu+k*k*s*s/2) * (hi - lo), nil
}

// CDF returns the amount of weight w carried by particles with diameters
// between dmin and dmax, computed analytically as the difference of the
// cumulative function at the two endpoints.
func CDF(p Params, w Weight, dmin, dmax float64) (float64, error) {
	if err := check(p, w); err != nil {
		return math.NaN(), err
	}
	var k, f float64
	switch w {
	case Number:
		k, f = 0, 1
	case Surface:
		k, f = 2, math.Pi
	case Volume:
		k, f = 3, math.Pi/6
	case Mass:
		k, f = 3, p.Rho*math.Pi/6
	}
	m, err := Moment(p, k, dmin, dmax)
	return f * m, err
}

// Total returns the total amount of weight w in the mode.
func Total(p Params, w Weight) (float64, error) {
	return CDF(p, w, 0, math.Inf(1))
}

// Nt returns the number concentration of particles smaller than d.
func Nt(d float64, p Params) float64 {
	s := math.Log(p.GSD)
	return p.N / 2 * (1 + math.Erf(math.Log(d/p.GM)/(math.Sqrt2*s)))
}

// St returns the surface area concentration of particles smaller than d.
func St(d float64, p Params) float64 {
	s := math.Log(p.GSD)
	z := math.Log(d/p.GM) / (math.Sqrt2 * s)
	return math.Pi / 2 * p.N * p.GM * p.GM * math.Exp(2*s*s) * math.Erfc(math.Sqrt2*s-z)
}

// Vt returns the volume concentration of particles smaller than d.
func Vt(d float64, p Params) float64 {
	s := math.Log(p.GSD)
	z := math.Log(d/p.GM) / (math.Sqrt2 * s)
	return math.Pi / 12 * p.N * p.GM * p.GM * p.GM * math.Exp(4.5*s*s) * math.Erfc(1.5*math.Sqrt2*s-z)
}

func check(p Params, w Weight) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if w < Number || w > Mass {
		return fmt.Errorf("lognormal: invalid weight %v: %w", w, ErrInvalidParameter)
	}
	if w == Mass && !(p.Rho > 0) {
		return fmt.Errorf("lognormal: density must be > 0 for mass weighting but is %g: %w", p.Rho, ErrInvalidParameter)
	}
	return nil
}
