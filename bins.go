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
	"math"

	"gonum.org/v1/gonum/floats"
)

// MakeBins returns n+1 bin edges evenly spaced in log(Dp) between dmin
// and dmax.
func MakeBins(dmin, dmax float64, n int) ([]float64, error) {
	if !(dmin > 0) || !(dmax > dmin) || math.IsInf(dmax, 0) {
		return nil, fmt.Errorf("opcsim: invalid bin range [%g, %g]: %w", dmin, dmax, ErrInvalidParameter)
	}
	if n < 1 {
		return nil, fmt.Errorf("opcsim: the number of bins must be >= 1 but is %d: %w", n, ErrInvalidParameter)
	}
	edges := floats.LogSpan(make([]float64, n+1), dmin, dmax)
	// Remove round-off at the ends.
	edges[0], edges[n] = dmin, dmax
	return edges, nil
}

func checkEdges(edges []float64) error {
	if len(edges) < 2 {
		return fmt.Errorf("opcsim: at least 2 bin edges are needed but %d were given: %w", len(edges), ErrInvalidParameter)
	}
	for i, e := range edges {
		if !(e > 0) || math.IsInf(e, 0) {
			return fmt.Errorf("opcsim: bin edge %d must be a positive diameter but is %g: %w", i, e, ErrInvalidParameter)
		}
		if i > 0 && !(e > edges[i-1]) {
			return fmt.Errorf("opcsim: bin edges must increase monotonically but edge %d (%g) <= edge %d (%g): %w",
				i, e, i-1, edges[i-1], ErrInvalidParameter)
		}
	}
	return nil
}

// logGrid returns the points of a grid that has n points evenly spaced
// in log(Dp) within each interval between consecutive edges. Edges are
// shared between neighboring intervals, so interval i covers
// grid[i*(n-1) : (i+1)*(n-1)+1].
func logGrid(edges []float64, n int) []float64 {
	grid := make([]float64, 0, (len(edges)-1)*(n-1)+1)
	seg := make([]float64, n)
	for i := 0; i < len(edges)-1; i++ {
		floats.LogSpan(seg, edges[i], edges[i+1])
		seg[0], seg[n-1] = edges[i], edges[i+1]
		if i == 0 {
			grid = append(grid, seg...)
		} else {
			grid = append(grid, seg[1:]...)
		}
	}
	return grid
}
