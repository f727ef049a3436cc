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
	"strings"
	"testing"

	"github.com/kr/pretty"
)

func TestReferenceTable(t *testing.T) {
	if len(ReferenceTable.Names()) != 7 {
		t.Errorf("names: %v", ReferenceTable.Names())
	}
	for _, name := range []string{"Remote Continental", "remote_continental", "REMOTE-continental"} {
		d, err := ReferenceTable.Distribution(name)
		if err != nil {
			t.Fatal(err)
		}
		if len(d.Modes()) != 3 {
			t.Errorf("%s: %d modes", name, len(d.Modes()))
		}
		if different(d.TotalNumber(), 6100.3, 1e-12) {
			t.Errorf("%s: number %g", name, d.TotalNumber())
		}
	}
	if _, err := ReferenceTable.Distribution("martian"); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("unknown: %v", err)
	}
}

const testTable = `
[[Distribution]]
Name = "Lab Sulfate"
  [[Distribution.Mode]]
  Label = "fine"
  N = 1000.0
  GM = 0.5
  GSD = 1.5
  Kappa = 0.53
  Rho = 1.77
  RefractiveIndex = [1.521, 0.0]

  [[Distribution.Mode]]
  Label = "coarse"
  N = 2.5
  GM = 3.0
  LogGSD = 0.25

[[Distribution]]
Name = "soot"
  [[Distribution.Mode]]
  N = 5000.0
  GM = 0.05
  GSD = 1.8
  RefractiveIndex = [1.95, 0.79]
`

func TestLoadTable(t *testing.T) {
	table, err := LoadTable(strings.NewReader(testTable))
	if err != nil {
		t.Fatal(err)
	}
	want := Table{
		"lab sulfate": {
			{Label: "fine", N: 1000, GM: 0.5, GSD: 1.5, Kappa: 0.53, Rho: 1.77, RefractiveIndex: complex(1.521, 0)},
			{Label: "coarse", N: 2.5, GM: 3, GSD: math.Pow(10, 0.25)},
		},
		"soot": {
			{N: 5000, GM: 0.05, GSD: 1.8, RefractiveIndex: complex(1.95, 0.79)},
		},
	}
	if diff := pretty.Diff(table, want); len(diff) != 0 {
		t.Errorf("table differs: %v", diff)
	}
	d, err := table.Distribution("lab_sulfate")
	if err != nil {
		t.Fatal(err)
	}
	if m, ok := d.Mode("coarse"); !ok || m.Rho != 1 {
		t.Errorf("coarse mode: %+v", m)
	}
}

func TestLoadTableErrors(t *testing.T) {
	for name, src := range map[string]string{
		"syntax":    "[[Distribution]\n",
		"no name":   "[[Distribution]]\n  [[Distribution.Mode]]\n  N = 1.0\n  GM = 1.0\n  GSD = 2.0\n",
		"bad gsd":   "[[Distribution]]\nName = \"x\"\n  [[Distribution.Mode]]\n  N = 1.0\n  GM = 1.0\n  GSD = 0.5\n",
		"duplicate": "[[Distribution]]\nName = \"x\"\n[[Distribution]]\nName = \"X\"\n",
		"ri parts":  "[[Distribution]]\nName = \"x\"\n  [[Distribution.Mode]]\n  N = 1.0\n  GM = 1.0\n  GSD = 2.0\n  RefractiveIndex = [1.5, 0.0, 1.0]\n",
	} {
		if _, err := LoadTable(strings.NewReader(src)); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestRefractiveIndex(t *testing.T) {
	m, err := RefractiveIndex("PSL")
	if err != nil {
		t.Fatal(err)
	}
	if m != complex(1.59, 0) {
		t.Errorf("psl: %v", m)
	}
	if m, _ = RefractiveIndex("ammonium_sulfate"); m != complex(1.521, 0) {
		t.Errorf("ammonium sulfate: %v", m)
	}
	if _, err := RefractiveIndex("unobtainium"); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("unknown: %v", err)
	}
}
