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

package equilibrium

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/kinetics"
	"github.com/spatialmodel/kinetics/science/rate"
)

// ErrAmbiguousMatch is returned when more than one reaction in one
// mechanism matches a reaction in another and the matches cannot be
// combined.
var ErrAmbiguousMatch = errors.New("equilibrium: ambiguous reaction match")

// Candidate is a reaction that matches another reaction.
type Candidate struct {
	Record *kinetics.ReactionRecord

	// Reversed is true if Record is written in the opposite direction
	// to the reaction it matches.
	Reversed bool
}

// Match returns every record in b whose reactant and product
// multisets equal those of a, or whose reactants equal a's products
// and products equal a's reactants. Species are compared by
// identifier using speciesA for a and speciesB for b; either may be
// nil to compare by name.
func Match(a *kinetics.ReactionRecord, b []*kinetics.ReactionRecord, speciesA, speciesB SpeciesTable) []Candidate {
	ar, ap := speciesA.identifyAll(a.Reactants), speciesA.identifyAll(a.Products)
	var o []Candidate
	for _, rb := range b {
		br, bp := speciesB.identifyAll(rb.Reactants), speciesB.identifyAll(rb.Products)
		switch {
		case kinetics.SameMultiset(ar, br) && kinetics.SameMultiset(ap, bp):
			o = append(o, Candidate{Record: rb})
		case kinetics.SameMultiset(ar, bp) && kinetics.SameMultiset(ap, br):
			o = append(o, Candidate{Record: rb, Reversed: true})
		}
	}
	return o
}

// resolve checks whether candidates can be combined into a single
// rate table: either there is one, or all are marked as duplicates
// and written in the same direction.
func resolve(candidates []Candidate) error {
	if len(candidates) <= 1 {
		return nil
	}
	for _, c := range candidates {
		if !c.Record.Duplicate || c.Reversed != candidates[0].Reversed {
			return fmt.Errorf("%w: %d reactions match, and they are not duplicates written in the same direction",
				ErrAmbiguousMatch, len(candidates))
		}
	}
	return nil
}

// Comparison pairs a reaction in mechanism A with its match in
// mechanism B.
type Comparison struct {
	// A is the reaction in mechanism A, with its rate table.
	A *rate.Reaction

	// B holds the matching reactions in mechanism B.
	B []Candidate

	// TableB is the rate table of the B reactions, summed and
	// expressed in the direction of A. It is nil if there is no
	// usable match.
	TableB *rate.Table

	// Err records why TableB could not be calculated, if it could not.
	Err error
}

// Reversed returns whether the B reactions are written in the
// opposite direction to A.
func (c *Comparison) Reversed() bool {
	return len(c.B) > 0 && c.B[0].Reversed
}

// Comparer compares the rate constants of two mechanisms.
type Comparer struct {
	// Temperatures [K] and Pressures [atm] are the conditions to
	// compare at.
	Temperatures, Pressures []float64

	// SpeciesA and SpeciesB map the species names of each mechanism to
	// identifiers. If nil, species are compared by name.
	SpeciesA, SpeciesB SpeciesTable

	Log logrus.FieldLogger
}

func (c *Comparer) log() logrus.FieldLogger {
	if c.Log == nil {
		return logrus.StandardLogger()
	}
	return c.Log
}

// Compare evaluates every reaction in a and its match in b. Rate
// constants of b reactions that match in the opposite direction are
// reversed using b's thermo data.
func (c *Comparer) Compare(a, b *kinetics.Mechanism) ([]*Comparison, error) {
	reactions, err := rate.EvaluateAll(a.Reactions, c.Temperatures, c.Pressures, c.log())
	if err != nil {
		return nil, err
	}
	thermoB := NewThermo(b.Thermo)
	o := make([]*Comparison, len(reactions))
	for i, r := range reactions {
		cmp := &Comparison{A: r, B: Match(r.Records[0], b.Reactions, c.SpeciesA, c.SpeciesB)}
		o[i] = cmp
		if len(cmp.B) == 0 {
			continue
		}
		if err := resolve(cmp.B); err != nil {
			cmp.Err = err
			c.log().WithFields(logrus.Fields{
				"reaction": r.Records[0].Equation(),
				"matches":  len(cmp.B),
			}).Warn("equilibrium: ambiguous match")
			continue
		}
		cmp.TableB, cmp.Err = c.tableB(cmp.B, thermoB)
		if cmp.Err != nil {
			c.log().WithFields(logrus.Fields{
				"reaction": r.Records[0].Equation(),
				"error":    cmp.Err,
			}).Warn("equilibrium: could not evaluate matching reaction")
		}
	}
	return o, nil
}

func (c *Comparer) tableB(candidates []Candidate, th *Thermo) (*rate.Table, error) {
	tables := make([]*rate.Table, len(candidates))
	for i, cand := range candidates {
		t, err := rate.Evaluate(cand.Record, c.Temperatures, c.Pressures)
		if err != nil {
			return nil, err
		}
		tables[i] = t
	}
	sum, err := rate.Sum(tables...)
	if err != nil {
		return nil, err
	}
	if !candidates[0].Reversed {
		return sum, nil
	}
	keq, err := th.EquilibriumConstants(candidates[0].Record, c.Temperatures)
	if err != nil {
		return nil, err
	}
	return Reverse(sum, keq)
}
