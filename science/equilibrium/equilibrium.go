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

// Package equilibrium calculates equilibrium constants from species
// thermodynamic data, reverses rate constants with them, and matches
// reactions across mechanisms.
package equilibrium

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/golang/groupcache/lru"
	"github.com/spatialmodel/kinetics"
	"github.com/spatialmodel/kinetics/science/rate"
	"github.com/spatialmodel/kinetics/science/thermo"
)

// ErrMissingThermo is returned when a species has no thermo data.
var ErrMissingThermo = errors.New("equilibrium: missing thermo data")

// gibbsKey identifies a memoized Gibbs energy.
type gibbsKey struct {
	species string
	T       float64
}

// Thermo holds the thermo data of a mechanism and memoizes the
// species Gibbs energies calculated from it. It is safe for
// concurrent use.
type Thermo struct {
	species map[string]*kinetics.ThermoRecord

	mu    sync.Mutex
	gibbs *lru.Cache
}

// NewThermo returns a Thermo for the given records. If more than one
// record has the same species name, the first is used.
func NewThermo(records []*kinetics.ThermoRecord) *Thermo {
	t := &Thermo{
		species: make(map[string]*kinetics.ThermoRecord, len(records)),
		gibbs:   lru.New(10000),
	}
	for _, r := range records {
		if _, ok := t.species[r.Name]; !ok {
			t.species[r.Name] = r
		}
	}
	return t
}

// Gibbs returns the Gibbs energy [kcal/mol] of the named species at
// temperature T [K]. Temperatures outside the species' valid range
// return an error wrapping thermo.ErrOutOfRange.
func (t *Thermo) Gibbs(species string, T float64) (float64, error) {
	key := gibbsKey{species: species, T: T}
	t.mu.Lock()
	v, ok := t.gibbs.Get(key)
	t.mu.Unlock()
	if ok {
		return v.(float64), nil
	}
	r, ok := t.species[species]
	if !ok {
		return math.NaN(), fmt.Errorf("%w for species %s", ErrMissingThermo, species)
	}
	g, err := thermo.Gibbs(r, T)
	if err != nil {
		return math.NaN(), err
	}
	t.mu.Lock()
	t.gibbs.Add(key, g)
	t.mu.Unlock()
	return g, nil
}

func (t *Thermo) sumGibbs(species []string, T float64) (float64, error) {
	var g float64
	for _, s := range species {
		gs, err := t.Gibbs(s, T)
		if err != nil {
			return math.NaN(), err
		}
		g += gs
	}
	return g, nil
}

// EquilibriumConstant returns exp(-(G_products - G_reactants)/(R T))
// at temperature T [K].
func (t *Thermo) EquilibriumConstant(reactants, products []string, T float64) (float64, error) {
	gr, err := t.sumGibbs(reactants, T)
	if err != nil {
		return math.NaN(), err
	}
	gp, err := t.sumGibbs(products, T)
	if err != nil {
		return math.NaN(), err
	}
	return math.Exp(-(gp - gr) / (thermo.R * T)), nil
}

// EquilibriumConstants returns the equilibrium constants of reaction
// r at each of the given temperatures. Constants at temperatures
// outside the valid range of any species' thermo data are missing.
// Species without thermo data are an error.
func (t *Thermo) EquilibriumConstants(r *kinetics.ReactionRecord, temperatures []float64) ([]kinetics.Value, error) {
	o := make([]kinetics.Value, len(temperatures))
	for i, T := range temperatures {
		k, err := t.EquilibriumConstant(r.Reactants, r.Products, T)
		switch {
		case errors.Is(err, thermo.ErrOutOfRange):
			o[i] = kinetics.Missing()
		case err != nil:
			return nil, fmt.Errorf("equilibrium: reaction %s: %w", r.Equation(), err)
		default:
			o[i] = kinetics.Of(k)
		}
	}
	return o, nil
}

// Reverse returns a new table holding the rate constants of table
// divided by the corresponding equilibrium constants. Rate constants
// whose equilibrium constant is missing are NaN in the result.
func Reverse(table *rate.Table, keq []kinetics.Value) (*rate.Table, error) {
	if len(keq) != len(table.Temperatures) {
		return nil, fmt.Errorf("equilibrium: %d equilibrium constants for %d temperatures",
			len(keq), len(table.Temperatures))
	}
	o := table.Clone()
	for _, k := range o.K {
		for i := range k {
			kc, ok := keq[i].Float()
			if !ok || kc == 0 {
				k[i] = math.NaN()
				continue
			}
			k[i] /= kc
		}
	}
	return o, nil
}
