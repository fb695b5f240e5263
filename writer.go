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
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
)

// headerFormat is the fixed-width layout of a reaction header line:
// equation, A, n and Ea. Ten significant digits are kept so that written
// parameters parse back to the values they were written from.
const headerFormat = "%-48s %16.9e %16.9e %16.9e\n"

func writeHeader(w io.Writer, equation string, p Arrhenius) error {
	_, err := fmt.Fprintf(w, headerFormat, equation, p.A, p.N, p.Ea)
	return err
}

func writeParams(w io.Writer, keyword string, v ...float64) error {
	s := make([]string, len(v))
	for i, x := range v {
		s[i] = fmt.Sprintf("%.9e", x)
	}
	_, err := fmt.Fprintf(w, "    %s / %s /\n", keyword, strings.Join(s, " "))
	return err
}

// WritePlog writes a PLOG reaction record with the given header
// parameters and PLOG entries. Parameters are given in cal/mol and the
// molar basis and are written in units u. Entries that share a pressure,
// such as the two terms of a double-Arrhenius fit, are written as
// repeated PLOG lines.
func WritePlog(w io.Writer, equation string, high Arrhenius, plog []PlogEntry, duplicate bool, u Units) error {
	if err := writeHeader(w, equation, u.Denormalize(high)); err != nil {
		return fmt.Errorf("kinetics: writing PLOG record: %v", err)
	}
	if duplicate {
		if _, err := fmt.Fprintln(w, "    DUPLICATE"); err != nil {
			return fmt.Errorf("kinetics: writing PLOG record: %v", err)
		}
	}
	for _, e := range plog {
		a := u.Denormalize(e.Arrhenius)
		if err := writeParams(w, "PLOG", e.P, a.A, a.N, a.Ea); err != nil {
			return fmt.Errorf("kinetics: writing PLOG record: %v", err)
		}
	}
	return nil
}

// WriteReaction writes r in mechanism format with its parameters
// expressed in units u.
func WriteReaction(w io.Writer, r *ReactionRecord, u Units) error {
	if err := writeReaction(w, r, u); err != nil {
		return fmt.Errorf("kinetics: writing reaction %s: %v", r.Equation(), err)
	}
	return nil
}

func writeReaction(w io.Writer, r *ReactionRecord, u Units) error {
	if err := writeHeader(w, r.Equation(), u.Denormalize(r.High)); err != nil {
		return err
	}
	if r.Duplicate {
		if _, err := fmt.Fprintln(w, "    DUPLICATE"); err != nil {
			return err
		}
	}
	if r.Low != nil {
		l := u.Denormalize(*r.Low)
		if err := writeParams(w, "LOW", l.A, l.N, l.Ea); err != nil {
			return err
		}
	}
	if t := r.Troe; t != nil {
		v := []float64{t.Alpha, t.T3, t.T1}
		if t.HasT2 {
			v = append(v, t.T2)
		}
		if err := writeParams(w, "TROE", v...); err != nil {
			return err
		}
	}
	if c := r.Cheb; c != nil {
		if err := writeParams(w, "TCHEB", c.Tmin, c.Tmax); err != nil {
			return err
		}
		if err := writeParams(w, "PCHEB", c.Pmin, c.Pmax); err != nil {
			return err
		}
		dims := []float64{float64(len(c.Coeffs)), 0}
		if len(c.Coeffs) > 0 {
			dims[1] = float64(len(c.Coeffs[0]))
		}
		if _, err := fmt.Fprintf(w, "    CHEB / %d %d /\n", int(dims[0]), int(dims[1])); err != nil {
			return err
		}
		for _, row := range c.Coeffs {
			if err := writeParams(w, "CHEB", row...); err != nil {
				return err
			}
		}
	}
	for _, e := range r.Plog {
		a := u.Denormalize(e.Arrhenius)
		if err := writeParams(w, "PLOG", e.P, a.A, a.N, a.Ea); err != nil {
			return err
		}
	}
	if r.Rev != nil {
		rv := u.Denormalize(*r.Rev)
		if err := writeParams(w, "REV", rv.A, rv.N, rv.Ea); err != nil {
			return err
		}
	}
	if len(r.Efficiencies) > 0 {
		names := make([]string, 0, len(r.Efficiencies))
		for n := range r.Efficiencies {
			names = append(names, n)
		}
		sort.Strings(names)
		parts := make([]string, len(names))
		for i, n := range names {
			parts[i] = fmt.Sprintf("%s/%g/", n, r.Efficiencies[n])
		}
		if _, err := fmt.Fprintf(w, "    %s\n", strings.Join(parts, " ")); err != nil {
			return err
		}
	}
	return nil
}

// WriteMechanism writes the SPECIES and REACTIONS blocks of m, with
// reaction parameters expressed in units u.
func WriteMechanism(w io.Writer, m *Mechanism, u Units) error {
	b := bufio.NewWriter(w)
	if m.Document != nil && len(m.ElementNames()) > 0 {
		fmt.Fprintf(b, "ELEMENTS\n%s\nEND\n\n", strings.Join(m.ElementNames(), " "))
	}
	if m.Document != nil && len(m.SpeciesNames()) > 0 {
		fmt.Fprintln(b, "SPECIES")
		for _, s := range m.SpeciesNames() {
			fmt.Fprintln(b, s)
		}
		fmt.Fprint(b, "END\n\n")
	}
	fmt.Fprintf(b, "REACTIONS %s\n", u)
	for _, r := range m.Reactions {
		if err := writeReaction(b, r, u); err != nil {
			return fmt.Errorf("kinetics: writing reaction %s: %v", r.Equation(), err)
		}
	}
	fmt.Fprintln(b, "END")
	if err := b.Flush(); err != nil {
		return fmt.Errorf("kinetics: writing mechanism: %v", err)
	}
	return nil
}
