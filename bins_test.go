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

	"github.com/ctessum/unit"
)

func TestMakeBins(t *testing.T) {
	edges, err := MakeBins(0.3, 10, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(edges) != 11 || edges[0] != 0.3 || edges[10] != 10 {
		t.Fatalf("edges: %v", edges)
	}
	r := edges[1] / edges[0]
	for i := 1; i < len(edges); i++ {
		if different(edges[i]/edges[i-1], r, 1e-12) {
			t.Errorf("edge %d ratio %g != %g", i, edges[i]/edges[i-1], r)
		}
	}
	for _, bad := range [][3]float64{{0, 10, 5}, {10, 0.3, 5}, {0.3, 10, 0}, {0.3, math.Inf(1), 5}} {
		if _, err := MakeBins(bad[0], bad[1], int(bad[2])); !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("%v: %v", bad, err)
		}
	}
}

func TestLogGrid(t *testing.T) {
	edges := []float64{0.3, 0.5, 1, 2.5}
	const n = 7
	grid := logGrid(edges, n)
	if len(grid) != 3*(n-1)+1 {
		t.Fatalf("grid length %d", len(grid))
	}
	for i, e := range edges {
		if grid[i*(n-1)] != e {
			t.Errorf("edge %d: %g != %g", i, grid[i*(n-1)], e)
		}
	}
	for i := 1; i < len(grid); i++ {
		if !(grid[i] > grid[i-1]) {
			t.Errorf("grid not increasing at %d", i)
		}
	}
}

func TestUnits(t *testing.T) {
	l, err := Length(658, "nm")
	if err != nil {
		t.Fatal(err)
	}
	um, err := Micrometers(l)
	if err != nil {
		t.Fatal(err)
	}
	if different(um, 0.658, 1e-12) {
		t.Errorf("%g µm != 0.658", um)
	}
	if _, err := Length(1, "furlong"); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("bad units: %v", err)
	}
	if _, err := Micrometers(unit.New(1, unit.Kilogram)); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("bad dimensions: %v", err)
	}
	a := CrossSectionArea(1e-8)
	if err := a.Check(unit.Meter2); err != nil {
		t.Error(err)
	}
	if different(a.Value(), 1e-12, 1e-12) {
		t.Errorf("area %g m²", a.Value())
	}
}
