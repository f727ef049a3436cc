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

package metrics

import (
	"errors"
	"math"
	"testing"

	"github.com/spatialmodel/opcsim"
)

func TestScores(t *testing.T) {
	trueN := []float64{100, 50, 0, 1e-20, 10}
	measured := []float64{110, 40, 3, 1, 10}
	nv, err := NVScore(trueN, measured)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{1.1, 0.8, math.NaN(), math.NaN(), 1}
	for i := range want {
		if math.IsNaN(want[i]) != math.IsNaN(nv[i]) || (!math.IsNaN(want[i]) && math.Abs(nv[i]-want[i]) > 1e-12) {
			t.Errorf("bin %d: %g != %g", i, nv[i], want[i])
		}
	}

	same, err := VVScore(measured, measured)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range same {
		if v != 1 {
			t.Errorf("identical bin %d: %g", i, v)
		}
	}

	if _, err := NVScore([]float64{1, 2}, []float64{1}); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("mismatch: %v", err)
	}
	if _, err := VVScore(nil, []float64{1}); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("mismatch: %v", err)
	}

	s := Summarize(nv)
	if s.Bins != 5 || s.Undefined != 2 {
		t.Errorf("summary %+v", s)
	}
	if math.Abs(s.MeanRatio-29./30) > 1e-12 || math.Abs(s.MeanBias+1./30) > 1e-12 || math.Abs(s.MeanAbsDeviation-0.1) > 1e-12 {
		t.Errorf("summary %+v", s)
	}
	if s := Summarize([]float64{math.NaN()}); !math.IsNaN(s.MeanRatio) || s.Undefined != 1 {
		t.Errorf("empty summary %+v", s)
	}
}

func TestMaterialMismatch(t *testing.T) {
	edges, err := opcsim.MakeBins(0.3, 10, 10)
	if err != nil {
		t.Fatal(err)
	}
	o, err := opcsim.NewOPC(0.658, edges)
	if err != nil {
		t.Fatal(err)
	}
	if err := o.CalibrateMaterial("psl", opcsim.SplineFit); err != nil {
		t.Fatal(err)
	}
	dist := func(ri complex128) *opcsim.AerosolDistribution {
		d := opcsim.NewAerosolDistribution("test")
		if err := d.AddMode(opcsim.Mode{N: 1000, GM: 0.5, GSD: 1.5, RefractiveIndex: ri}); err != nil {
			t.Fatal(err)
		}
		return d
	}

	_, psl, err := VolumeToVolume(o, dist(complex(1.59, 0)), 0.3, 10)
	if err != nil {
		t.Fatal(err)
	}
	if psl < 0.85 || psl > 1.05 {
		t.Errorf("PSL volume ratio %g should be close to 1", psl)
	}

	bcDist := dist(complex(1.95, 0.79))
	nv, _, err := NumberToVolume(o, bcDist, 0.3, 10)
	if err != nil {
		t.Fatal(err)
	}
	_, bc, err := VolumeToVolume(o, bcDist, 0.3, 10)
	if err != nil {
		t.Fatal(err)
	}
	if bc > 0.3 {
		t.Errorf("black carbon volume ratio %g should be small", bc)
	}
	if nv[0] < 3 {
		t.Errorf("black carbon should pile up in the first bin: %v", nv)
	}

	if _, _, err := VolumeToVolume(o, dist(complex(1.59, 0)), 10, 0.3); !errors.Is(err, opcsim.ErrInvalidParameter) {
		t.Errorf("reversed range: %v", err)
	}
}

func TestNumberToVolumeScore(t *testing.T) {
	edges, err := opcsim.MakeBins(0.3, 10, 10)
	if err != nil {
		t.Fatal(err)
	}
	o, err := opcsim.NewOPC(0.658, edges)
	if err != nil {
		t.Fatal(err)
	}
	if err := o.CalibrateMaterial("psl", opcsim.SplineFit); err != nil {
		t.Fatal(err)
	}
	d := opcsim.NewAerosolDistribution("psl")
	if err := d.AddMode(opcsim.Mode{N: 1000, GM: 0.5, GSD: 1.5, RefractiveIndex: complex(1.59, 0)}); err != nil {
		t.Fatal(err)
	}

	_, nv, err := NumberToVolume(o, d, 0, 2.5)
	if err != nil {
		t.Fatal(err)
	}
	_, vv, err := VolumeToVolume(o, d, 0, 2.5)
	if err != nil {
		t.Fatal(err)
	}
	n, err := o.Integrate(d, 0, 2.5, opcsim.Number)
	if err != nil {
		t.Fatal(err)
	}
	v, err := d.CDF(0, 2.5, opcsim.Volume)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(nv-n/v) > 1e-12*n/v {
		t.Errorf("number-to-volume score %g != %g", nv, n/v)
	}
	// Roughly 900 particles counted in about 140 µm³ of PSL.
	if nv < 5 || nv > 8 {
		t.Errorf("number-to-volume score %g", nv)
	}
	if vv < 0.8 || vv > 1.1 {
		t.Errorf("volume-to-volume score %g", vv)
	}
}
