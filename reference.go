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
	"io"
	"math"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// A DistributionProvider returns ready-made distributions by name.
type DistributionProvider interface {
	Distribution(name string) (*AerosolDistribution, error)
}

// Table is a DistributionProvider backed by lists of modes. Names are
// matched ignoring case, and spaces, underscores and hyphens are
// interchangeable.
type Table map[string][]Mode

func tableKey(name string) string {
	r := strings.NewReplacer("_", " ", "-", " ")
	return strings.Join(strings.Fields(strings.ToLower(r.Replace(name))), " ")
}

// Distribution returns a new distribution holding the modes stored
// under name.
func (t Table) Distribution(name string) (*AerosolDistribution, error) {
	key := tableKey(name)
	for k, modes := range t {
		if tableKey(k) != key {
			continue
		}
		d := NewAerosolDistribution(key)
		for _, m := range modes {
			if err := d.AddMode(m); err != nil {
				return nil, fmt.Errorf("opcsim: distribution %q: %w", name, err)
			}
		}
		return d, nil
	}
	return nil, fmt.Errorf("opcsim: unknown distribution %q; valid options are %s: %w",
		name, strings.Join(t.Names(), ", "), ErrInvalidParameter)
}

// Names returns the sorted names in the table.
func (t Table) Names() []string {
	names := make([]string, 0, len(t))
	for k := range t {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// gsd converts log10(GSD), as tabulated by Seinfeld and Pandis, to GSD.
func gsd(log10GSD float64) float64 { return math.Pow(10, log10GSD) }

// ReferenceTable holds the model aerosol distributions from Seinfeld and
// Pandis (2006), table 8.3.
var ReferenceTable = Table{
	"urban": {
		{Label: "Mode I", N: 7100, GM: 0.0117, GSD: gsd(0.232)},
		{Label: "Mode II", N: 6320, GM: 0.0373, GSD: gsd(0.250)},
		{Label: "Mode III", N: 960, GM: 0.151, GSD: gsd(0.204)},
	},
	"marine": {
		{Label: "Mode I", N: 133, GM: 0.008, GSD: gsd(0.657)},
		{Label: "Mode II", N: 66.6, GM: 0.266, GSD: gsd(0.210)},
		{Label: "Mode III", N: 3.1, GM: 0.58, GSD: gsd(0.396)},
	},
	"rural": {
		{Label: "Mode I", N: 6650, GM: 0.015, GSD: gsd(0.225)},
		{Label: "Mode II", N: 147, GM: 0.054, GSD: gsd(0.557)},
		{Label: "Mode III", N: 1990, GM: 0.084, GSD: gsd(0.266)},
	},
	"remote continental": {
		{Label: "Mode I", N: 3200, GM: 0.02, GSD: gsd(0.161)},
		{Label: "Mode II", N: 2900, GM: 0.116, GSD: gsd(0.217)},
		{Label: "Mode III", N: 0.3, GM: 1.8, GSD: gsd(0.380)},
	},
	"free troposphere": {
		{Label: "Mode I", N: 129, GM: 0.007, GSD: gsd(0.645)},
		{Label: "Mode II", N: 59.7, GM: 0.250, GSD: gsd(0.253)},
		{Label: "Mode III", N: 63.5, GM: 0.52, GSD: gsd(0.425)},
	},
	"polar": {
		{Label: "Mode I", N: 21.7, GM: 0.138, GSD: gsd(0.245)},
		{Label: "Mode II", N: 0.186, GM: 0.75, GSD: gsd(0.300)},
		{Label: "Mode III", N: 3e-4, GM: 8.6, GSD: gsd(0.291)},
	},
	"desert": {
		{Label: "Mode I", N: 726, GM: 0.002, GSD: gsd(0.247)},
		{Label: "Mode II", N: 114, GM: 0.038, GSD: gsd(0.770)},
		{Label: "Mode III", N: 0.178, GM: 21.6, GSD: gsd(0.438)},
	},
}

// tomlTable is the file layout read by LoadTable.
type tomlTable struct {
	Distribution []struct {
		Name string
		Mode []struct {
			Label string
			N     float64
			GM    float64
			GSD   float64

			// LogGSD may be given instead of GSD.
			LogGSD float64

			Kappa float64
			Rho   float64

			// RefractiveIndex holds the real and imaginary parts.
			RefractiveIndex []float64
		}
	}
}

// LoadTable reads a table of distributions in TOML format, for example:
//
//	[[Distribution]]
//	Name = "lab sulfate"
//	  [[Distribution.Mode]]
//	  N = 1000.0
//	  GM = 0.5
//	  GSD = 1.5
//	  Kappa = 0.53
//	  Rho = 1.77
//	  RefractiveIndex = [1.521, 0.0]
//
// Numeric values must be written as floating point numbers.
func LoadTable(r io.Reader) (Table, error) {
	var tt tomlTable
	if _, err := toml.DecodeReader(r, &tt); err != nil {
		return nil, fmt.Errorf("opcsim: problem reading distribution table: %v", err)
	}
	t := make(Table)
	for _, dist := range tt.Distribution {
		if dist.Name == "" {
			return nil, fmt.Errorf("opcsim: distribution table entry is missing a name: %w", ErrInvalidParameter)
		}
		if _, ok := t[tableKey(dist.Name)]; ok {
			return nil, fmt.Errorf("opcsim: distribution %q is defined more than once: %w", dist.Name, ErrInvalidParameter)
		}
		modes := make([]Mode, len(dist.Mode))
		for i, m := range dist.Mode {
			modes[i] = Mode{Label: m.Label, N: m.N, GM: m.GM, GSD: m.GSD, Kappa: m.Kappa, Rho: m.Rho}
			if m.GSD == 0 && m.LogGSD != 0 {
				modes[i].GSD = gsd(m.LogGSD)
			}
			switch len(m.RefractiveIndex) {
			case 0:
			case 1:
				modes[i].RefractiveIndex = complex(m.RefractiveIndex[0], 0)
			case 2:
				modes[i].RefractiveIndex = complex(m.RefractiveIndex[0], m.RefractiveIndex[1])
			default:
				return nil, fmt.Errorf("opcsim: distribution %q: refractive index must have 1 or 2 parts but has %d: %w",
					dist.Name, len(m.RefractiveIndex), ErrInvalidParameter)
			}
		}
		t[tableKey(dist.Name)] = modes
		// Check that the modes are valid now rather than on first use.
		if _, err := t.Distribution(dist.Name); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// refractiveIndices holds the refractive indices of common aerosol
// materials at visible wavelengths.
var refractiveIndices = map[string]complex128{
	"psl":              complex(1.59, 0),
	"ammonium sulfate": complex(1.521, 0),
	"sodium chloride":  complex(1.5405, 0),
	"sodium nitrate":   complex(1.448, 0),
	"black carbon":     complex(1.95, 0.79),
	"sulfuric acid":    complex(1.427, 0),
	"soa":              complex(1.4, 0.002),
	"h2o":              RIH2O,
	"urban low":        complex(1.6, 0.034),
	"urban high":       complex(1.73, 0.086),
}

// RefractiveIndex returns the refractive index of a common material, for
// example "psl" (polystyrene latex) or "ammonium_sulfate".
func RefractiveIndex(material string) (complex128, error) {
	if m, ok := refractiveIndices[tableKey(material)]; ok {
		return m, nil
	}
	names := make([]string, 0, len(refractiveIndices))
	for k := range refractiveIndices {
		names = append(names, strings.Replace(k, " ", "_", -1))
	}
	sort.Strings(names)
	return 0, fmt.Errorf("opcsim: unknown material %q; valid options are %s: %w",
		material, strings.Join(names, ", "), ErrInvalidParameter)
}
