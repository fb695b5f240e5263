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

package fit

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spatialmodel/kinetics"
	"github.com/spatialmodel/kinetics/science/rate"
)

// Params holds the output of an external double-Arrhenius fitting
// program: parameter values and their standard errors, each in the
// order A1, n1, Ea1, A2, n2, Ea2. Tokens the program could not
// calculate ("***") are missing.
type Params struct {
	Values, Errors [6]kinetics.Value
}

// ReadParams reads fitting program output, in which a line starting
// with "params" is followed by a row of parameter values and a row of
// standard errors.
func ReadParams(r io.Reader) (*Params, error) {
	s := bufio.NewScanner(r)
	found := false
	var rows [][]string
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if !found {
			if f := strings.Fields(line); len(f) > 0 && strings.EqualFold(f[0], "params") {
				found = true
			}
			continue
		}
		if line == "" {
			continue
		}
		rows = append(rows, strings.Fields(line))
		if len(rows) == 2 {
			break
		}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("fit: reading parameters: %v", err)
	}
	if !found {
		return nil, fmt.Errorf("fit: reading parameters: no params line")
	}
	if len(rows) != 2 {
		return nil, fmt.Errorf("fit: reading parameters: have %d rows after params line, want 2", len(rows))
	}
	p := new(Params)
	for i, dst := range []*[6]kinetics.Value{&p.Values, &p.Errors} {
		if len(rows[i]) != 6 {
			return nil, fmt.Errorf("fit: reading parameters: row %d has %d values, want 6", i+1, len(rows[i]))
		}
		v, err := kinetics.ParseValues(rows[i])
		if err != nil {
			return nil, fmt.Errorf("fit: reading parameters: row %d: %v", i+1, err)
		}
		copy(dst[:], v)
	}
	return p, nil
}

// DoubleArrhenius returns the parameter values as a rate expression.
// It returns false if any value is missing.
func (p *Params) DoubleArrhenius(tref float64) (rate.DoubleArrhenius, bool) {
	var v [6]float64
	for i, x := range p.Values {
		f, ok := x.Float()
		if !ok {
			return rate.DoubleArrhenius{}, false
		}
		v[i] = f
	}
	return rate.DoubleArrhenius{
		{Arrhenius: kinetics.Arrhenius{A: v[0], N: v[1], Ea: v[2]}, Tref: tref},
		{Arrhenius: kinetics.Arrhenius{A: v[3], N: v[4], Ea: v[5]}, Tref: tref},
	}, true
}
