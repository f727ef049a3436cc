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
	"sync"

	"github.com/golang/groupcache/lru"
	"github.com/spatialmodel/opcsim/internal/hash"
	"github.com/spatialmodel/opcsim/science/mie"
)

// crossSectionCacheSize is the number of angular scattering cross sections
// each instrument remembers.
const crossSectionCacheSize = 20000

// cscatRequest identifies a single angular cross-section calculation.
type cscatRequest struct {
	Dp, Wavelength  float64
	RealRI, ImagRI  float64
	Theta1, Theta2  float64
	Steps, MaxOrder int
	Tolerance       float64
}

// crossSections calculates and remembers the scattering cross sections
// seen by an instrument aperture. It is safe for concurrent use.
type crossSections struct {
	engine         *mie.Engine
	wl             float64
	theta1, theta2 float64
	steps          int

	mu    sync.Mutex
	cache *lru.Cache
}

func newCrossSections(engine *mie.Engine, wl, theta1, theta2 float64, steps int) *crossSections {
	return &crossSections{
		engine: engine,
		wl:     wl,
		theta1: theta1,
		theta2: theta2,
		steps:  steps,
		cache:  lru.New(crossSectionCacheSize),
	}
}

// get returns the cross section [cm²] that a particle with diameter dp
// and refractive index m scatters into the aperture.
func (c *crossSections) get(dp float64, m complex128) (float64, error) {
	key := hash.Key(cscatRequest{
		Dp:         dp,
		Wavelength: c.wl,
		RealRI:     real(m),
		ImagRI:     imag(m),
		Theta1:     c.theta1,
		Theta2:     c.theta2,
		Steps:      c.steps,
		MaxOrder:   c.engine.MaxOrder,
		Tolerance:  c.engine.Tolerance,
	})
	c.mu.Lock()
	v, ok := c.cache.Get(key)
	c.mu.Unlock()
	if ok {
		return v.(float64), nil
	}
	cs, err := c.engine.AngularCrossSection(dp, c.wl, m, c.theta1, c.theta2, c.steps)
	if err != nil {
		return math.NaN(), err
	}
	if math.IsNaN(cs) || math.IsInf(cs, 0) {
		return cs, fmt.Errorf("opcsim: scattering cross section for Dp = %g µm, m = %v: %w", dp, m, ErrNonFinite)
	}
	c.mu.Lock()
	c.cache.Add(key, cs)
	c.mu.Unlock()
	return cs, nil
}

// len returns the number of cached cross sections.
func (c *crossSections) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Len()
}
