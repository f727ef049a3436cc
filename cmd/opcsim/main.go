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

// Command opcsim simulates the response of low-cost optical particle
// sensors to aerosol size distributions.
package main

import (
	"fmt"
	"os"

	"github.com/spatialmodel/opcsim/opcsimutil"
)

func main() {
	if err := opcsimutil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
