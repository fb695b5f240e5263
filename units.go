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

package kinetics

import (
	"fmt"
	"math"
	"strings"

	"github.com/ctessum/unit"
)

// EnergyUnits specify the units of activation energies in a
// REACTIONS block.
type EnergyUnits int

// These are the recognized activation energy units.
const (
	// CalPerMole is the default.
	CalPerMole EnergyUnits = iota
	KcalPerMole
	JoulesPerMole
	KjoulesPerMole
	Kelvins
)

// mole is the amount-of-substance dimension, which the unit package
// does not define.
var mole = unit.NewDimension("mole")

var (
	// JoulePerMole is the dimension of a molar energy [kg m2 s-2 mole-1].
	JoulePerMole = unit.Dimensions{
		unit.MassDim:   1,
		unit.LengthDim: 2,
		unit.TimeDim:   -2,
		mole:           -1,
	}

	joulePerMoleKelvin = unit.Dimensions{
		unit.MassDim:        1,
		unit.LengthDim:      2,
		unit.TimeDim:        -2,
		mole:                -1,
		unit.TemperatureDim: -1,
	}

	// kelvinGasConstant converts activation temperatures given in
	// KELVINS to molar energies.
	kelvinGasConstant = unit.New(1.98719*joulesPerCalorie, joulePerMoleKelvin)
)

// joulesPerUnit gives the molar energy [J/mol] of one of each activation
// energy unit. Kelvins are converted through kelvinGasConstant.
var joulesPerUnit = map[EnergyUnits]float64{
	CalPerMole:     joulesPerCalorie,
	KcalPerMole:    1.e3 * joulesPerCalorie,
	JoulesPerMole:  0.239006 * joulesPerCalorie,
	KjoulesPerMole: 239.006 * joulesPerCalorie,
}

// joulesPerCalorie is the thermochemical calorie.
const joulesPerCalorie = 4.184

// Avogadro is Avogadro's number [1/mol].
const Avogadro = 6.02214076e23

func (u EnergyUnits) String() string {
	switch u {
	case CalPerMole:
		return "CAL/MOLE"
	case KcalPerMole:
		return "KCAL/MOLE"
	case JoulesPerMole:
		return "JOULES/MOLE"
	case KjoulesPerMole:
		return "KJOULES/MOLE"
	case Kelvins:
		return "KELVINS"
	default:
		panic(fmt.Errorf("kinetics: unknown energy units %d", int(u)))
	}
}

// ParseEnergyUnits parses a CHEMKIN activation energy unit keyword.
func ParseEnergyUnits(s string) (EnergyUnits, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CAL/MOLE", "CAL/MOL", "CAL":
		return CalPerMole, nil
	case "KCAL/MOLE", "KCAL/MOL", "KCAL":
		return KcalPerMole, nil
	case "JOULES/MOLE", "JOULES/MOL", "J/MOL", "JOUL/MOL", "JOUL/MOLE":
		return JoulesPerMole, nil
	case "KJOULES/MOLE", "KJOULES/MOL", "KJ/MOL", "KJOU/MOL", "KJOU/MOLE":
		return KjoulesPerMole, nil
	case "KELVINS", "KELVIN", "K":
		return Kelvins, nil
	default:
		return CalPerMole, fmt.Errorf("kinetics: unrecognized activation energy units %q", s)
	}
}

// Energy returns the activation energy v, given in units of u, as a
// molar energy.
func (u EnergyUnits) Energy(v float64) *unit.Unit {
	if u == Kelvins {
		return unit.Mul(unit.New(v, unit.Kelvin), kelvinGasConstant)
	}
	return unit.New(v*joulesPerUnit[u], JoulePerMole)
}

// FromEnergy expresses the molar energy e in units of u. It returns an
// error if e is not a molar energy.
func (u EnergyUnits) FromEnergy(e *unit.Unit) (float64, error) {
	if err := e.Check(JoulePerMole); err != nil {
		return math.NaN(), fmt.Errorf("kinetics: activation energy: %v", err)
	}
	if u == Kelvins {
		t := unit.Div(e, kelvinGasConstant)
		if err := t.Check(unit.Kelvin); err != nil {
			return math.NaN(), fmt.Errorf("kinetics: activation temperature: %v", err)
		}
		return t.Value(), nil
	}
	return e.Value() / joulesPerUnit[u], nil
}

// ToCalories converts an activation energy in units of u to cal/mol.
func (u EnergyUnits) ToCalories(v float64) float64 {
	return mustConvert(CalPerMole.FromEnergy(u.Energy(v)))
}

// FromCalories converts an activation energy in cal/mol to units of u.
func (u EnergyUnits) FromCalories(v float64) float64 {
	return mustConvert(u.FromEnergy(CalPerMole.Energy(v)))
}

// mustConvert panics on err, which can only be caused by an EnergyUnits
// value without a conversion.
func mustConvert(v float64, err error) float64 {
	if err != nil {
		panic(err)
	}
	return v
}

// QuantityBasis specifies whether pre-exponential factors are
// given per mole or per molecule.
type QuantityBasis int

const (
	// Moles is the default.
	Moles QuantityBasis = iota
	Molecules
)

func (b QuantityBasis) String() string {
	if b == Molecules {
		return "MOLECULES"
	}
	return "MOLES"
}

// Units holds the declared units of a REACTIONS block.
type Units struct {
	Energy EnergyUnits
	Basis  QuantityBasis
}

func (u Units) String() string {
	return u.Energy.String() + " " + u.Basis.String()
}

// ParseUnits reads the unit keywords from the first line of a
// REACTIONS block. Units that are not given keep their defaults
// (cal/mole, moles). Any unrecognized words are returned so that
// the caller can report them; they are not an error.
func ParseUnits(line string) (u Units, unrecognized []string) {
	for _, w := range strings.Fields(line) {
		switch strings.ToUpper(w) {
		case "MOLES", "MOLE":
			u.Basis = Moles
			continue
		case "MOLECULES", "MOLECULE":
			u.Basis = Molecules
			continue
		}
		e, err := ParseEnergyUnits(w)
		if err != nil {
			unrecognized = append(unrecognized, w)
			continue
		}
		u.Energy = e
	}
	return u, unrecognized
}

// Normalize converts p from the units in u to cal/mol and the molar
// basis. It must be applied exactly once to each raw parameter set.
func (u Units) Normalize(p Arrhenius) Arrhenius {
	p.Ea = u.Energy.ToCalories(p.Ea)
	if u.Basis == Molecules {
		p.A *= Avogadro
	}
	return p
}

// Denormalize is the inverse of Normalize.
func (u Units) Denormalize(p Arrhenius) Arrhenius {
	p.Ea = u.Energy.FromCalories(p.Ea)
	if u.Basis == Molecules {
		p.A /= Avogadro
	}
	return p
}
