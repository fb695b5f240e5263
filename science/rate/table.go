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

package rate

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/kinetics"
	"gonum.org/v1/gonum/floats"
)

// PressureLabel identifies a column of a Table: either a pressure
// [atm] or the high-pressure limit, High.
type PressureLabel float64

// High labels the high-pressure-limit rate constants.
var High = PressureLabel(math.Inf(1))

func (p PressureLabel) String() string {
	if p == High {
		return "high"
	}
	return strconv.FormatFloat(float64(p), 'g', -1, 64)
}

// ParsePressureLabel parses "high" or a pressure in atm.
func ParsePressureLabel(s string) (PressureLabel, error) {
	if s == "high" {
		return High, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("rate: invalid pressure label %q", s)
	}
	return PressureLabel(v), nil
}

// Table holds rate constants by pressure label, each aligned with
// Temperatures.
type Table struct {
	// Temperatures is the temperature grid [K].
	Temperatures []float64

	// Pressures is the pressure grid [atm] that the pressure-dependent
	// columns were evaluated on. It is nil for tables that only have
	// a High column.
	Pressures []float64

	K map[PressureLabel][]float64

	// Err holds the reasons that entries of K are NaN, such as
	// pressures outside of a PLOG or Chebyshev range. It is nil if
	// every entry could be evaluated.
	Err error
}

// Labels returns the pressure labels of t in increasing order of
// pressure, with High last.
func (t *Table) Labels() []PressureLabel {
	o := make([]PressureLabel, 0, len(t.K))
	for p := range t.K {
		o = append(o, p)
	}
	sort.Slice(o, func(i, j int) bool { return o[i] < o[j] })
	return o
}

// PressureDependent returns whether t has columns other than High.
func (t *Table) PressureDependent() bool {
	for p := range t.K {
		if p != High {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of t.
func (t *Table) Clone() *Table {
	o := &Table{
		Temperatures: append([]float64(nil), t.Temperatures...),
		K:            make(map[PressureLabel][]float64, len(t.K)),
		Err:          t.Err,
	}
	if t.Pressures != nil {
		o.Pressures = append([]float64(nil), t.Pressures...)
	}
	for p, k := range t.K {
		o.K[p] = append([]float64(nil), k...)
	}
	return o
}

// Add sums the rate constants of o into t. Both tables must have been
// evaluated on the same temperature grid, and on the same pressure
// grid if both are pressure dependent. A table with only a High
// column that is added to a pressure-dependent table contributes
// to every column. Columns of a pressure-dependent table that the
// other table lacks are removed, since their sum is unknown.
func (t *Table) Add(o *Table) error {
	if !floats.Equal(t.Temperatures, o.Temperatures) {
		return fmt.Errorf("%w: temperatures %v and %v", ErrGridMismatch, t.Temperatures, o.Temperatures)
	}
	t.Err = errors.Join(t.Err, o.Err)
	tp, op := t.PressureDependent(), o.PressureDependent()
	switch {
	case tp && op:
		if !floats.Equal(t.Pressures, o.Pressures) {
			return fmt.Errorf("%w: pressures %v and %v", ErrGridMismatch, t.Pressures, o.Pressures)
		}
		for p, k := range t.K {
			ok, present := o.K[p]
			if !present {
				delete(t.K, p)
				continue
			}
			floats.Add(k, ok)
		}
	case tp && !op:
		oh := o.K[High]
		for _, k := range t.K {
			floats.Add(k, oh)
		}
	case !tp && op:
		th := t.K[High]
		k := make(map[PressureLabel][]float64, len(o.K))
		for p, ok := range o.K {
			s := append([]float64(nil), ok...)
			floats.Add(s, th)
			k[p] = s
		}
		t.K = k
		t.Pressures = append([]float64(nil), o.Pressures...)
	default:
		floats.Add(t.K[High], o.K[High])
	}
	return nil
}

// Evaluate returns the rate constants of r on the given temperature
// [K] and pressure [atm] grids. Reactions that only have high-pressure
// parameters yield only a High column. Falloff reactions yield a High
// column and a column for each pressure. PLOG and Chebyshev reactions
// yield a column for each pressure. Entries where the rate law cannot
// be evaluated, such as pressures outside of a PLOG range, are NaN and
// the reasons are recorded in the Err field of the returned table.
func Evaluate(r *kinetics.ReactionRecord, temperatures, pressures []float64) (*Table, error) {
	law, err := NewLaw(r)
	if err != nil {
		return nil, err
	}
	t := &Table{
		Temperatures: append([]float64(nil), temperatures...),
		K:            make(map[PressureLabel][]float64),
	}
	switch r.Kind() {
	case kinetics.HighPressureOnly:
		t.K[High] = evalColumn(law, temperatures, math.NaN())
		return t, nil
	case kinetics.Lindemann, kinetics.Troe:
		high := Arrhenius{Arrhenius: r.High}
		t.K[High] = evalColumn(high, temperatures, math.NaN())
	default:
		if len(pressures) == 0 {
			return nil, fmt.Errorf("rate: %s reaction %s needs at least one pressure", r.Kind(), r.Equation())
		}
	}
	if len(pressures) == 0 {
		return t, nil
	}
	t.Pressures = append([]float64(nil), pressures...)
	var errs []error
	for _, p := range pressures {
		k := make([]float64, len(temperatures))
		var colErr error
		for i, T := range temperatures {
			v, err := law.K(T, p)
			if err != nil {
				// Only the first failure in a column is kept.
				if colErr == nil {
					colErr = fmt.Errorf("rate: %s: %w", r.Equation(), err)
				}
				v = math.NaN()
			}
			k[i] = v
		}
		if colErr != nil {
			errs = append(errs, colErr)
		}
		t.K[PressureLabel(p)] = k
	}
	t.Err = errors.Join(errs...)
	return t, nil
}

func evalColumn(law Law, temperatures []float64, p float64) []float64 {
	k := make([]float64, len(temperatures))
	for i, T := range temperatures {
		k[i], _ = law.K(T, p)
	}
	return k
}

// Reaction is the rate constant table for all of the records in a
// mechanism that share a reaction key.
type Reaction struct {
	Key     string
	Records []*kinetics.ReactionRecord
	Table   *Table
}

// Duplicate returns whether the reaction is made up of more than
// one record.
func (r *Reaction) Duplicate() bool { return len(r.Records) > 1 }

// EvaluateAll evaluates every record on the given grids and sums the
// tables of records that share a reaction key. Reactions are returned
// in order of first appearance. Records that can only be partially
// evaluated are kept, with a warning written to log. If log is nil,
// the standard logger is used.
func EvaluateAll(records []*kinetics.ReactionRecord, temperatures, pressures []float64, log logrus.FieldLogger) ([]*Reaction, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	var o []*Reaction
	byKey := make(map[string]*Reaction)
	for _, rec := range records {
		t, err := Evaluate(rec, temperatures, pressures)
		if err != nil {
			return nil, err
		}
		if t.Err != nil {
			log.WithFields(logrus.Fields{
				"reaction": rec.Equation(),
				"error":    t.Err,
			}).Warn("rate: some rate constants could not be evaluated; setting them to NaN")
		}
		key := rec.Key()
		r, ok := byKey[key]
		if !ok {
			r = &Reaction{Key: key, Table: t}
			byKey[key] = r
			o = append(o, r)
		} else if err := r.Table.Add(t); err != nil {
			return nil, fmt.Errorf("rate: merging duplicate reaction %s: %w", rec.Equation(), err)
		}
		r.Records = append(r.Records, rec)
	}
	return o, nil
}

// Sum returns a new table holding the sum of tables, which must
// share their grids. The inputs are not modified.
func Sum(tables ...*Table) (*Table, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("rate: no tables to sum")
	}
	o := tables[0].Clone()
	for _, t := range tables[1:] {
		if err := o.Add(t); err != nil {
			return nil, err
		}
	}
	return o, nil
}
