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

// Package thermo evaluates NASA 7-coefficient polynomial
// thermodynamic functions.
package thermo

import (
	"errors"
	"fmt"
	"math"

	"github.com/spatialmodel/kinetics"
)

// R is the gas constant [kcal/(mol K)].
const R = 1.987204e-3

// ErrOutOfRange is returned when a temperature is outside the range
// over which a species' polynomials are valid.
var ErrOutOfRange = errors.New("thermo: temperature out of range")

// coefficients selects the coefficient set for temperature T [K]:
// the low-temperature set on [Tlow, Tcommon] and the high-temperature
// set on (Tcommon, Thigh].
func coefficients(r *kinetics.ThermoRecord, T float64) (*[7]float64, error) {
	if math.IsNaN(T) || T < r.Tlow || T > r.Thigh {
		return nil, fmt.Errorf("%w: %s at %g K (valid %g-%g K)", ErrOutOfRange, r.Name, T, r.Tlow, r.Thigh)
	}
	if T <= r.Tcommon {
		return &r.Low, nil
	}
	return &r.High, nil
}

// HeatCapacity returns the constant-pressure heat capacity of
// species r at temperature T [K], in kcal/(mol K).
func HeatCapacity(r *kinetics.ThermoRecord, T float64) (float64, error) {
	c, err := coefficients(r, T)
	if err != nil {
		return math.NaN(), err
	}
	return R * (c[0] + T*(c[1]+T*(c[2]+T*(c[3]+T*c[4])))), nil
}

// Enthalpy returns the enthalpy of species r at temperature T [K],
// in kcal/mol.
func Enthalpy(r *kinetics.ThermoRecord, T float64) (float64, error) {
	c, err := coefficients(r, T)
	if err != nil {
		return math.NaN(), err
	}
	hrt := c[0] + T*(c[1]/2+T*(c[2]/3+T*(c[3]/4+T*c[4]/5))) + c[5]/T
	return R * T * hrt, nil
}

// Entropy returns the standard-state entropy of species r at
// temperature T [K], in kcal/(mol K).
func Entropy(r *kinetics.ThermoRecord, T float64) (float64, error) {
	c, err := coefficients(r, T)
	if err != nil {
		return math.NaN(), err
	}
	sr := c[0]*math.Log(T) + T*(c[1]+T*(c[2]/2+T*(c[3]/3+T*c[4]/4))) + c[6]
	return R * sr, nil
}

// Gibbs returns the Gibbs free energy H - TS of species r at
// temperature T [K], in kcal/mol.
func Gibbs(r *kinetics.ThermoRecord, T float64) (float64, error) {
	h, err := Enthalpy(r, T)
	if err != nil {
		return math.NaN(), err
	}
	s, err := Entropy(r, T)
	if err != nil {
		return math.NaN(), err
	}
	return h - T*s, nil
}

// Properties holds the thermodynamic functions of a species at one
// temperature. Values are missing when the temperature is outside
// the species' valid range.
type Properties struct {
	T float64

	// Cp [kcal/(mol K)], H [kcal/mol], S [kcal/(mol K)], G [kcal/mol].
	Cp, H, S, G kinetics.Value
}

// Evaluate returns all of the thermodynamic functions of r at T.
// It does not return an error for temperatures outside the valid
// range; the returned values are missing instead.
func Evaluate(r *kinetics.ThermoRecord, T float64) Properties {
	p := Properties{T: T}
	if _, err := coefficients(r, T); err != nil {
		return p
	}
	cp, _ := HeatCapacity(r, T)
	h, _ := Enthalpy(r, T)
	s, _ := Entropy(r, T)
	p.Cp, p.H, p.S = kinetics.Of(cp), kinetics.Of(h), kinetics.Of(s)
	p.G = kinetics.Of(h - T*s)
	return p
}
