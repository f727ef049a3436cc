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

func TestCountingEfficiency(t *testing.T) {
	expr, err := NewExpressionEfficiency("1 / (1 + pow(0.3 / dp, 4))")
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		e    CountingEfficiency
		dp   float64
		want float64
	}{
		{name: "constant", e: ConstantEfficiency(0.8), dp: 3, want: 0.8},
		{name: "logistic d50", e: LogisticEfficiency{D50: 0.4, Width: 0.1}, dp: 0.4, want: 0.5},
		{name: "logistic large", e: LogisticEfficiency{D50: 0.4, Width: 0.1}, dp: 4, want: 1 / (1 + math.Exp(-math.Log(10)/0.1))},
		{name: "expression d50", e: expr, dp: 0.3, want: 0.5},
		{name: "expression", e: expr, dp: 0.6, want: 1 / (1 + 1./16)},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if have := test.e.Efficiency(test.dp); different(have, test.want, 1e-12) {
				t.Errorf("%g != %g", have, test.want)
			}
		})
	}
}

func TestParseEfficiency(t *testing.T) {
	e, err := ParseEfficiency("0.9")
	if err != nil {
		t.Fatal(err)
	}
	if c, ok := e.(ConstantEfficiency); !ok || c != 0.9 {
		t.Errorf("constant: %#v", e)
	}
	e, err = ParseEfficiency("min(1, exp(log(dp / 0.5)))")
	if err != nil {
		t.Fatal(err)
	}
	if v := e.Efficiency(0.25); different(v, 0.5, 1e-12) {
		t.Errorf("expression: %g", v)
	}
	if v := e.Efficiency(2); v != 1 {
		t.Errorf("expression: %g", v)
	}
	for _, bad := range []string{"dp +", "1 / (1 + d50 / dp)", "pow(dp)"} {
		if _, err := ParseEfficiency(bad); !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("%q: %v", bad, err)
		}
	}
}
