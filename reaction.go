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
	"sort"
	"strings"
)

// Kind is the pressure-dependence representation of a reaction.
type Kind int

// These are the pressure-dependence representations. At most one is
// present in a ReactionRecord.
const (
	// HighPressureOnly reactions have only the header Arrhenius parameters.
	HighPressureOnly Kind = iota
	// Lindemann falloff reactions have LOW parameters but not TROE.
	Lindemann
	// Troe falloff reactions have LOW and TROE parameters.
	Troe
	// Chebyshev reactions have a CHEB block.
	Chebyshev
	// Plog reactions have PLOG entries.
	Plog
)

func (k Kind) String() string {
	switch k {
	case HighPressureOnly:
		return "high-pressure"
	case Lindemann:
		return "Lindemann"
	case Troe:
		return "Troe"
	case Chebyshev:
		return "Chebyshev"
	case Plog:
		return "PLOG"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// TroeParams are the parameters of the Troe broadening factor.
// T2 is optional.
type TroeParams struct {
	Alpha, T3, T1, T2 float64
	HasT2             bool
}

// ChebyshevParams hold a Chebyshev rate expression. Coeffs has one row
// per temperature basis function and one column per pressure basis
// function. Pressures are in atm.
type ChebyshevParams struct {
	Tmin, Tmax float64
	Pmin, Pmax float64
	Coeffs     [][]float64
}

// PlogEntry is an Arrhenius expression at one pressure [atm].
type PlogEntry struct {
	P float64
	Arrhenius
}

// ReactionRecord holds the information parsed from one reaction
// in a REACTIONS block.
type ReactionRecord struct {
	// Reactants and Products list species names, repeated once per
	// stoichiometric count, in the order they appear.
	Reactants, Products []string

	// Reversible is false for reactions written with "=>".
	Reversible bool

	// ThirdBody is true if the reaction has an M or (+M) third body.
	ThirdBody bool

	// Collider is the species named in a "(+X)" falloff marker, if
	// it is not M.
	Collider string

	// Duplicate is true if the record has a DUPLICATE marker.
	Duplicate bool

	// Units are the units the parameters are expressed in.
	Units Units

	// High holds the high-pressure Arrhenius parameters from the
	// record header.
	High Arrhenius

	// Low holds the low-pressure limit for falloff reactions.
	Low *Arrhenius

	// Troe holds Troe broadening parameters.
	Troe *TroeParams

	// Cheb holds Chebyshev parameters.
	Cheb *ChebyshevParams

	// Plog holds tabulated Arrhenius parameters in the order they
	// appear in the record.
	Plog []PlogEntry

	// Efficiencies holds per-species third-body efficiencies.
	Efficiencies map[string]float64

	// Rev holds explicit reverse-reaction Arrhenius parameters.
	Rev *Arrhenius

	// Text is the record as it appeared in the mechanism.
	Text string

	normalized bool
}

// Kind returns the pressure-dependence representation of r.
func (r *ReactionRecord) Kind() Kind {
	switch {
	case r.Cheb != nil:
		return Chebyshev
	case len(r.Plog) > 0:
		return Plog
	case r.Low != nil && r.Troe != nil:
		return Troe
	case r.Low != nil:
		return Lindemann
	default:
		return HighPressureOnly
	}
}

// Equation returns the reaction equation, for example "CO+O(+M)<=>CO2(+M)".
func (r *ReactionRecord) Equation() string {
	arrow := "<=>"
	if !r.Reversible {
		arrow = "=>"
	}
	return r.side(r.Reactants) + arrow + r.side(r.Products)
}

func (r *ReactionRecord) side(names []string) string {
	s := strings.Join(names, "+")
	switch {
	case r.Kind() == Lindemann || r.Kind() == Troe:
		c := r.Collider
		if c == "" {
			c = "M"
		}
		s += "(+" + c + ")"
	case r.ThirdBody:
		s += "+M"
	}
	return s
}

// Key returns an identifier that is the same for every record with
// the same reactant and product multisets, in either direction.
func (r *ReactionRecord) Key() string {
	return ReactionKey(r.Reactants, r.Products)
}

// ReactionKey returns a direction- and order-independent key
// for a reaction between reactants and products.
func ReactionKey(reactants, products []string) string {
	a, b := multisetKey(reactants), multisetKey(products)
	if b < a {
		a, b = b, a
	}
	return a + "<=>" + b
}

func multisetKey(names []string) string {
	s := append([]string(nil), names...)
	sort.Strings(s)
	return strings.Join(s, "+")
}

// SameMultiset returns whether a and b hold the same names with the
// same counts, in any order.
func SameMultiset(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	return multisetKey(a) == multisetKey(b)
}

// isReactionHeader returns whether line is the first line of a
// reaction record.
func isReactionHeader(line string) bool {
	return strings.Contains(line, "=")
}

// UnitsLine returns the first line of a REACTIONS block if it holds
// unit declarations rather than a reaction.
func UnitsLine(block string) string {
	line := block
	if i := strings.IndexByte(block, '\n'); i >= 0 {
		line = block[:i]
	}
	if isReactionHeader(line) {
		return ""
	}
	return strings.TrimSpace(line)
}

// SplitReactionRecords partitions a REACTIONS block into one string
// per reaction. Each record starts with a header line containing the
// reaction arrow and includes all following lines up to the next
// header. Lines before the first header are not part of any record.
func SplitReactionRecords(block string) []string {
	var records []string
	var cur []string
	for _, line := range strings.Split(block, "\n") {
		if isReactionHeader(line) {
			if cur != nil {
				records = append(records, strings.Join(cur, "\n"))
			}
			cur = []string{line}
			continue
		}
		if cur != nil {
			cur = append(cur, line)
		}
	}
	if cur != nil {
		records = append(records, strings.Join(cur, "\n"))
	}
	return records
}

// ParseReactionRecord parses one reaction record as returned by
// SplitReactionRecords. The parameters in the returned record are in
// the units of the mechanism; use Normalize to convert them.
func ParseReactionRecord(rec string) (*ReactionRecord, error) {
	header, aux := rec, ""
	if i := strings.IndexByte(rec, '\n'); i >= 0 {
		header, aux = rec[:i], rec[i+1:]
	}
	r := &ReactionRecord{Text: rec}
	if err := r.parseHeader(header); err != nil {
		return nil, err
	}
	nodes, err := parseAux(aux)
	if err != nil {
		return nil, fmt.Errorf("auxiliary data: %v", err)
	}
	var cheb chebBuilder
	for _, n := range nodes {
		switch n := n.(type) {
		case flagNode:
			if n.keyword == "DUPLICATE" {
				r.Duplicate = true
			}
		case efficiencyNode:
			v, err := parseFloat(n.value)
			if err != nil {
				return nil, fmt.Errorf("third-body efficiency for %s: %v", n.species, err)
			}
			if r.Efficiencies == nil {
				r.Efficiencies = make(map[string]float64)
			}
			r.Efficiencies[n.species] = v
		case paramNode:
			if err := r.applyParams(n, &cheb); err != nil {
				return nil, fmt.Errorf("%s block: %v", n.keyword, err)
			}
		}
	}
	if cheb.present() {
		c, err := cheb.build()
		if err != nil {
			return nil, fmt.Errorf("CHEB block: %v", err)
		}
		r.Cheb = c
	}
	if err := r.check(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *ReactionRecord) parseHeader(line string) error {
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return fmt.Errorf("reaction header %q should have an equation and 3 Arrhenius parameters", line)
	}
	n := len(fields)
	high, err := arrheniusFromStrings(fields[n-3:])
	if err != nil {
		return fmt.Errorf("reaction header %q: %v", line, err)
	}
	r.High = high
	lhs, rhs, rev, err := splitEquation(strings.Join(fields[:n-3], ""))
	if err != nil {
		return err
	}
	r.Reversible = rev
	var tbL, tbR bool
	var cL, cR string
	r.Reactants, tbL, cL = SplitSpecies(lhs)
	r.Products, tbR, cR = SplitSpecies(rhs)
	if len(r.Reactants) == 0 || len(r.Products) == 0 {
		return fmt.Errorf("reaction header %q is missing reactants or products", line)
	}
	r.ThirdBody = tbL || tbR
	r.Collider = cL
	if r.Collider == "" {
		r.Collider = cR
	}
	return nil
}

func (r *ReactionRecord) applyParams(n paramNode, cheb *chebBuilder) error {
	switch n.keyword {
	case "LOW":
		a, err := arrheniusFromStrings(n.params)
		if err != nil {
			return err
		}
		r.Low = &a
	case "REV":
		a, err := arrheniusFromStrings(n.params)
		if err != nil {
			return err
		}
		r.Rev = &a
	case "TROE":
		if len(n.params) != 3 && len(n.params) != 4 {
			return fmt.Errorf("need 3 or 4 parameters but have %d", len(n.params))
		}
		v, err := parseFloats(n.params)
		if err != nil {
			return err
		}
		t := &TroeParams{Alpha: v[0], T3: v[1], T1: v[2]}
		if len(v) == 4 {
			t.T2, t.HasT2 = v[3], true
		}
		r.Troe = t
	case "PLOG":
		if len(n.params) != 4 {
			return fmt.Errorf("need 4 parameters but have %d", len(n.params))
		}
		v, err := parseFloats(n.params)
		if err != nil {
			return err
		}
		r.Plog = append(r.Plog, PlogEntry{P: v[0], Arrhenius: Arrhenius{A: v[1], N: v[2], Ea: v[3]}})
	case "TCHEB":
		return cheb.setRange(&cheb.t, n.params)
	case "PCHEB":
		return cheb.setRange(&cheb.p, n.params)
	case "CHEB":
		v, err := parseFloats(n.params)
		if err != nil {
			return err
		}
		cheb.values = append(cheb.values, v...)
	}
	// Other keywords are recognized so that they are not taken for
	// third-body efficiencies, but their data is not used.
	return nil
}

// check enforces that the pressure-dependence representations are
// mutually exclusive.
func (r *ReactionRecord) check() error {
	var present []string
	if r.Low != nil {
		present = append(present, "LOW")
	}
	if r.Cheb != nil {
		present = append(present, "CHEB")
	}
	if len(r.Plog) > 0 {
		present = append(present, "PLOG")
	}
	if len(present) > 1 {
		return fmt.Errorf("reaction %s has more than one pressure-dependence representation (%s)",
			r.Equation(), strings.Join(present, ", "))
	}
	if r.Troe != nil && r.Low == nil {
		return fmt.Errorf("reaction %s has TROE parameters but no LOW parameters", r.Equation())
	}
	return nil
}

// chebBuilder collects the sub-blocks of a Chebyshev expression.
type chebBuilder struct {
	t, p   []float64
	values []float64
}

func (c *chebBuilder) present() bool {
	return c.t != nil || c.p != nil || c.values != nil
}

func (c *chebBuilder) setRange(dst *[]float64, params []string) error {
	v, err := parseFloats(params)
	if err != nil {
		return err
	}
	if len(v) != 2 {
		return fmt.Errorf("need 2 parameters but have %d", len(v))
	}
	*dst = v
	return nil
}

func (c *chebBuilder) build() (*ChebyshevParams, error) {
	switch {
	case c.t == nil:
		return nil, fmt.Errorf("missing TCHEB")
	case c.p == nil:
		return nil, fmt.Errorf("missing PCHEB")
	case len(c.values) < 2:
		return nil, fmt.Errorf("missing dimensions")
	}
	nT, nP := int(c.values[0]), int(c.values[1])
	if float64(nT) != c.values[0] || float64(nP) != c.values[1] || nT < 1 || nP < 1 {
		return nil, fmt.Errorf("invalid dimensions %g x %g", c.values[0], c.values[1])
	}
	coeffs := c.values[2:]
	if len(coeffs) != nT*nP {
		return nil, fmt.Errorf("%d x %d expression needs %d coefficients but has %d",
			nT, nP, nT*nP, len(coeffs))
	}
	cp := &ChebyshevParams{Tmin: c.t[0], Tmax: c.t[1], Pmin: c.p[0], Pmax: c.p[1]}
	cp.Coeffs = make([][]float64, nT)
	for i := range cp.Coeffs {
		cp.Coeffs[i] = coeffs[i*nP : (i+1)*nP]
	}
	return cp, nil
}

// Normalize converts the Arrhenius parameters of r (high-pressure,
// low-pressure, reverse and every PLOG entry) from u to cal/mol and
// the molar basis. Chebyshev coefficients are not affected.
// It returns an error if r has already been normalized.
func (r *ReactionRecord) Normalize(u Units) error {
	if r.normalized {
		return fmt.Errorf("kinetics: reaction %s has already been normalized", r.Equation())
	}
	r.High = u.Normalize(r.High)
	if r.Low != nil {
		l := u.Normalize(*r.Low)
		r.Low = &l
	}
	if r.Rev != nil {
		rv := u.Normalize(*r.Rev)
		r.Rev = &rv
	}
	for i, p := range r.Plog {
		r.Plog[i].Arrhenius = u.Normalize(p.Arrhenius)
	}
	r.Units = u
	r.normalized = true
	return nil
}
