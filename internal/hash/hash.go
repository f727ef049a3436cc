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

// Package hash creates cache keys for calculation requests.
package hash

import (
	"encoding/gob"
	"fmt"
	"hash/fnv"

	"github.com/davecgh/go-spew/spew"
)

var printer = spew.ConfigState{
	Indent:                  " ",
	SortKeys:                true,
	DisableMethods:          true,
	SpewKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// Key returns a 128-bit FNV-1a hash of request as a hexadecimal string.
// Requests are hashed from their gob encoding when they have one and from
// a deterministic spew dump otherwise, for example when they have no
// exported fields.
func Key(request interface{}) string {
	h := fnv.New128a()
	if err := gob.NewEncoder(h).Encode(request); err != nil {
		h.Reset()
		printer.Fprintf(h, "%#v", request)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
