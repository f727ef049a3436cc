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
	"strings"

	"github.com/ctessum/unit"
)

var lengthScales = map[string]float64{
	"m":  1,
	"cm": 1e-2,
	"mm": 1e-3,
	"um": 1e-6,
	"µm": 1e-6,
	"μm": 1e-6, // Greek mu
	"nm": 1e-9,
}

// Length returns v in the given length units ("m", "cm", "mm", "um", "µm",
// or "nm") as a unit value in meters.
func Length(v float64, units string) (*unit.Unit, error) {
	s, ok := lengthScales[strings.TrimSpace(units)]
	if !ok {
		return nil, fmt.Errorf("opcsim: invalid length units %q; valid options are m, cm, mm, um, µm, and nm: %w",
			units, ErrInvalidParameter)
	}
	return unit.New(v*s, unit.Meter), nil
}

// Micrometers returns the value of length u in micrometers, the unit
// used for diameters and wavelengths throughout this package.
func Micrometers(u *unit.Unit) (float64, error) {
	if err := u.Check(unit.Meter); err != nil {
		return 0, fmt.Errorf("opcsim: %v: %w", err, ErrInvalidParameter)
	}
	return u.Value() * 1e6, nil
}

// CrossSectionArea returns a scattering cross-section in cm², as returned
// by the instruments in this package, as an area in m².
func CrossSectionArea(cm2 float64) *unit.Unit {
	return unit.New(cm2*1e-4, unit.Meter2)
}
