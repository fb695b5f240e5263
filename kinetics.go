/*
Copyright © 2024 the InMAP authors.
This file is part of InMAP.

InMAP is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

InMAP is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with InMAP.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package kinetics reads CHEMKIN-format chemical kinetics mechanisms.
// It locates the ELEMENTS, SPECIES, REACTIONS and THERMO blocks of a
// mechanism, decomposes the reaction and thermo blocks into
// per-reaction and per-species records, and normalizes the declared
// units of Arrhenius parameters to cal/mol and mol-cm-s.
//
// Rate constants are evaluated from the records by package
// github.com/spatialmodel/kinetics/science/rate, thermodynamic
// properties by package github.com/spatialmodel/kinetics/science/thermo,
// and observed rate constants are fit back to Arrhenius forms by package
// github.com/spatialmodel/kinetics/science/fit.
package kinetics

import "fmt"

// Version gives the version number.
const Version = "1.0.0"

// Arrhenius holds the parameters of the modified Arrhenius expression
// k = A (T/Tref)^N exp(-Ea/RT).
type Arrhenius struct {
	// A is the pre-exponential factor.
	A float64

	// N is the temperature exponent.
	N float64

	// Ea is the activation energy, in cal/mol once normalized.
	Ea float64
}

func (a Arrhenius) String() string {
	return fmt.Sprintf("(A=%g, n=%g, Ea=%g)", a.A, a.N, a.Ea)
}

// arrheniusFromStrings casts three numeric tokens to an Arrhenius triplet.
func arrheniusFromStrings(s []string) (Arrhenius, error) {
	if len(s) != 3 {
		return Arrhenius{}, fmt.Errorf("need 3 Arrhenius parameters but have %d (%v)", len(s), s)
	}
	v, err := parseFloats(s)
	if err != nil {
		return Arrhenius{}, err
	}
	return Arrhenius{A: v[0], N: v[1], Ea: v[2]}, nil
}
