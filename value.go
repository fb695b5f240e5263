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
	"strconv"
	"strings"
)

// Value is a number that may be missing. External tools mark
// undefined numbers with tokens such as "***"; those are resolved
// to a missing Value once, when the text is parsed.
type Value struct {
	v  float64
	ok bool
}

// Of returns a Value holding v. NaN values are treated as missing.
func Of(v float64) Value {
	if math.IsNaN(v) {
		return Value{}
	}
	return Value{v: v, ok: true}
}

// Missing returns a missing Value.
func Missing() Value { return Value{} }

// Float returns the number held by v and whether it is present.
func (v Value) Float() (float64, bool) { return v.v, v.ok }

// OK returns whether v holds a number.
func (v Value) OK() bool { return v.ok }

// Or returns the number held by v, or def if v is missing.
func (v Value) Or(def float64) float64 {
	if !v.ok {
		return def
	}
	return v.v
}

func (v Value) String() string {
	if !v.ok {
		return "***"
	}
	return strconv.FormatFloat(v.v, 'g', -1, 64)
}

// ParseValue converts s to a Value. Empty strings, runs of asterisks
// and "nan" are missing; anything else that is not a number is an error.
// Fortran-style "D" exponents are accepted.
func ParseValue(s string) (Value, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.Trim(s, "*") == "" || strings.EqualFold(s, "nan") {
		return Missing(), nil
	}
	f, err := parseFloat(s)
	if err != nil {
		return Missing(), err
	}
	return Of(f), nil
}

// ParseValues converts each of s to a Value.
func ParseValues(s []string) ([]Value, error) {
	o := make([]Value, len(s))
	for i, ss := range s {
		v, err := ParseValue(ss)
		if err != nil {
			return nil, err
		}
		o[i] = v
	}
	return o, nil
}

// parseFloat parses a floating point number, allowing for Fortran
// double-precision exponents (1.0D+03).
func parseFloat(s string) (float64, error) {
	s = strings.Map(func(r rune) rune {
		if r == 'd' || r == 'D' {
			return 'e'
		}
		return r
	}, strings.TrimSpace(s))
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN(), fmt.Errorf("kinetics: invalid number %q", s)
	}
	return f, nil
}

func parseFloats(s []string) ([]float64, error) {
	o := make([]float64, len(s))
	for i, ss := range s {
		f, err := parseFloat(ss)
		if err != nil {
			return nil, err
		}
		o[i] = f
	}
	return o, nil
}
