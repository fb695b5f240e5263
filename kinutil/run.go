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

package kinutil

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/kinetics"
	"github.com/spatialmodel/kinetics/science/equilibrium"
	"github.com/spatialmodel/kinetics/science/fit"
	"github.com/spatialmodel/kinetics/science/rate"
)

// logger returns log, or the standard logger if log is nil.
func logger(log logrus.FieldLogger) logrus.FieldLogger {
	if log == nil {
		return logrus.StandardLogger()
	}
	return log
}

// Parse logs a summary of m to log and writes m to w with activation
// energies in the given units.
func Parse(w io.Writer, m *kinetics.Mechanism, u kinetics.Units, log logrus.FieldLogger) error {
	kinds := make(map[string]int)
	for _, r := range m.Reactions {
		kinds[r.Kind().String()]++
	}
	fields := logrus.Fields{
		"elements":  len(m.ElementNames()),
		"species":   len(m.SpeciesNames()),
		"reactions": len(m.Reactions),
		"thermo":    len(m.Thermo),
	}
	for k, n := range kinds {
		fields[k] = n
	}
	logger(log).WithFields(fields).Info("kinetics: parsed mechanism")
	return kinetics.WriteMechanism(w, m, u)
}

// Rates evaluates the reactions in m that match key (all reactions if key
// is empty) at conditions c and writes the rate constant tables to w as
// CSV. If plotFile is not empty, the tables are also plotted there.
func Rates(w io.Writer, m *kinetics.Mechanism, c *Conditions, key, plotFile string, log logrus.FieldLogger) error {
	records, err := selected(m, key)
	if err != nil {
		return err
	}
	reactions, err := rate.EvaluateAll(records, c.Temperatures, c.Pressures, logger(log))
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"reaction", "pressure"}, formatAll(c.Temperatures)...)); err != nil {
		return fmt.Errorf("kinetics: writing rates: %v", err)
	}
	var series []Series
	for _, r := range reactions {
		eq := r.Records[0].Equation()
		for _, p := range r.Table.Labels() {
			row := append([]string{eq, p.String()}, formatAll(r.Table.K[p])...)
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("kinetics: writing rates: %v", err)
			}
		}
		series = append(series, Series{Name: eq, Table: r.Table})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("kinetics: writing rates: %v", err)
	}
	if plotFile != "" {
		return PlotTables(plotFile, series...)
	}
	return nil
}

// Synthesis holds a reaction whose rate constant table has been fit to
// Arrhenius expressions at each pressure.
type Synthesis struct {
	// Reactants and Products are the species of the fitted reaction.
	Reactants, Products []string

	// Reversible specifies whether the reaction is written as reversible.
	Reversible bool

	// ThirdBody specifies whether the reaction has an M third body.
	ThirdBody bool

	// Fits holds the fit for each pressure label of the table.
	Fits map[rate.PressureLabel]*fit.Result

	// Log receives warnings about pressures that are skipped when s
	// is written. If it is nil, the standard logger is used.
	Log logrus.FieldLogger
}

// Equation returns the reaction equation of s.
func (s *Synthesis) Equation() string {
	r := kinetics.ReactionRecord{
		Reactants:  s.Reactants,
		Products:   s.Products,
		Reversible: s.Reversible,
		ThirdBody:  s.ThirdBody,
	}
	return r.Equation()
}

// FitTable fits every pressure label of t to Arrhenius expressions.
func FitTable(t *rate.Table, f *fit.Fitter) (map[rate.PressureLabel]*fit.Result, error) {
	o := make(map[rate.PressureLabel]*fit.Result, len(t.K))
	for _, p := range t.Labels() {
		k := make([]kinetics.Value, len(t.K[p]))
		for i, v := range t.K[p] {
			k[i] = kinetics.Of(v)
		}
		res, err := f.Fit(t.Temperatures, k)
		if err != nil {
			return nil, fmt.Errorf("kinetics: fitting pressure %s: %w", p, err)
		}
		o[p] = res
	}
	return o, nil
}

// FitReaction fits the rate constant table of r.
func FitReaction(r *rate.Reaction, f *fit.Fitter) (*Synthesis, error) {
	rec := r.Records[0]
	fits, err := FitTable(r.Table, f)
	if err != nil {
		return nil, fmt.Errorf("kinetics: %s: %w", rec.Equation(), err)
	}
	return &Synthesis{
		Reactants:  rec.Reactants,
		Products:   rec.Products,
		Reversible: rec.Reversible,
		ThirdBody:  rec.ThirdBody && rec.Kind() == kinetics.HighPressureOnly,
		Fits:       fits,
	}, nil
}

// ReverseReaction divides the rate constant table of r by its
// equilibrium constants and fits the result. The returned reaction is
// the irreversible reverse of r.
func ReverseReaction(r *rate.Reaction, th *equilibrium.Thermo, f *fit.Fitter) (*Synthesis, error) {
	rec := r.Records[0]
	keq, err := th.EquilibriumConstants(rec, r.Table.Temperatures)
	if err != nil {
		return nil, fmt.Errorf("kinetics: reversing %s: %w", rec.Equation(), err)
	}
	rev, err := equilibrium.Reverse(r.Table, keq)
	if err != nil {
		return nil, fmt.Errorf("kinetics: reversing %s: %w", rec.Equation(), err)
	}
	fits, err := FitTable(rev, f)
	if err != nil {
		return nil, fmt.Errorf("kinetics: reversing %s: %w", rec.Equation(), err)
	}
	return &Synthesis{
		Reactants: rec.Products,
		Products:  rec.Reactants,
		ThirdBody: rec.ThirdBody && rec.Kind() == kinetics.HighPressureOnly,
		Fits:      fits,
	}, nil
}

// Write writes s to w in the given units. A reaction that only has a
// high-pressure fit is written as a plain reaction, or as a pair of
// DUPLICATE reactions if the fit is double-Arrhenius. Otherwise the fit
// at each pressure is written as PLOG entries, two at the same pressure
// for double-Arrhenius fits.
func (s *Synthesis) Write(w io.Writer, u kinetics.Units) error {
	eq := s.Equation()
	var pressures []rate.PressureLabel
	for p, res := range s.Fits {
		if p == rate.High {
			continue
		}
		if res.N == 0 {
			logger(s.Log).WithFields(logrus.Fields{
				"reaction": eq,
				"pressure": p.String(),
			}).Warn("kinetics: no valid rate constants to fit; skipping pressure")
			continue
		}
		pressures = append(pressures, p)
	}
	sort.Slice(pressures, func(i, j int) bool { return pressures[i] < pressures[j] })

	if len(pressures) == 0 {
		high, ok := s.Fits[rate.High]
		if !ok || high.N == 0 {
			return fmt.Errorf("kinetics: %s has no valid rate constants to fit", eq)
		}
		dup := len(high.Params) > 1
		for _, p := range high.Params {
			if err := kinetics.WritePlog(w, eq, p, nil, dup, u); err != nil {
				return err
			}
		}
		return nil
	}

	var plog []kinetics.PlogEntry
	for _, p := range pressures {
		for _, a := range s.Fits[p].Params {
			plog = append(plog, kinetics.PlogEntry{P: float64(p), Arrhenius: a})
		}
	}
	header := s.Fits[pressures[len(pressures)-1]].Params[0]
	if high, ok := s.Fits[rate.High]; ok && high.N > 0 {
		header = high.Params[0]
	}
	return kinetics.WritePlog(w, eq, header, plog, false, u)
}

// FitMechanism evaluates the reactions in m that match key at conditions
// c, fits them, and writes the results to w.
func FitMechanism(w io.Writer, m *kinetics.Mechanism, c *Conditions, key string, f *fit.Fitter, u kinetics.Units, log logrus.FieldLogger) error {
	return synthesizeMechanism(w, m, c, key, u, log, func(r *rate.Reaction) (*Synthesis, error) {
		return FitReaction(r, f)
	})
}

// ReverseMechanism evaluates the reactions in m that match key at
// conditions c, reverses them using the thermo data in m, fits them, and
// writes the results to w.
func ReverseMechanism(w io.Writer, m *kinetics.Mechanism, c *Conditions, key string, f *fit.Fitter, u kinetics.Units, log logrus.FieldLogger) error {
	th := equilibrium.NewThermo(m.Thermo)
	return synthesizeMechanism(w, m, c, key, u, log, func(r *rate.Reaction) (*Synthesis, error) {
		return ReverseReaction(r, th, f)
	})
}

func synthesizeMechanism(w io.Writer, m *kinetics.Mechanism, c *Conditions, key string, u kinetics.Units, log logrus.FieldLogger, synth func(*rate.Reaction) (*Synthesis, error)) error {
	log = logger(log)
	records, err := selected(m, key)
	if err != nil {
		return err
	}
	reactions, err := rate.EvaluateAll(records, c.Temperatures, c.Pressures, log)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "REACTIONS %s\n", u); err != nil {
		return fmt.Errorf("kinetics: writing output: %v", err)
	}
	for _, r := range reactions {
		s, err := synth(r)
		if err != nil {
			return err
		}
		s.Log = log
		for p, res := range s.Fits {
			log.WithFields(logrus.Fields{
				"reaction": s.Equation(),
				"pressure": p.String(),
				"form":     res.Form.String(),
				"points":   res.N,
				"SSE":      res.SSE.String(),
				"max APE":  res.MaxAPE.String(),
			}).Debug("kinetics: fit reaction")
		}
		if err := s.Write(w, u); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, "END"); err != nil {
		return fmt.Errorf("kinetics: writing output: %v", err)
	}
	return nil
}

// Compare evaluates the reactions in a that match key, and their matches
// in b, at conditions c and writes both to w as CSV. Each A row is
// followed by the matching B row for the same pressure, when there is
// one. If plotFile is not empty, the tables are also plotted there.
func Compare(w io.Writer, a, b *kinetics.Mechanism, speciesA, speciesB equilibrium.SpeciesTable, c *Conditions, key, plotFile string, log logrus.FieldLogger) error {
	if key != "" {
		records, err := selected(a, key)
		if err != nil {
			return err
		}
		sub := *a
		sub.Reactions = records
		a = &sub
	}
	cmp := &equilibrium.Comparer{
		Temperatures: c.Temperatures,
		Pressures:    c.Pressures,
		SpeciesA:     speciesA,
		SpeciesB:     speciesB,
		Log:          logger(log),
	}
	comparisons, err := cmp.Compare(a, b)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	header := append([]string{"reaction", "match", "reversed", "status", "mechanism", "pressure"},
		formatAll(c.Temperatures)...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("kinetics: writing comparison: %v", err)
	}
	var series []Series
	for _, cm := range comparisons {
		eq := cm.A.Records[0].Equation()
		var match string
		for i, cand := range cm.B {
			if i > 0 {
				match += " | "
			}
			match += cand.Record.Equation()
		}
		status := "ok"
		switch {
		case cm.Err != nil:
			status = cm.Err.Error()
		case len(cm.B) == 0:
			status = "no match"
		}
		reversed := strconv.FormatBool(cm.Reversed())
		series = append(series, Series{Name: eq + " (A)", Table: cm.A.Table})
		if cm.TableB != nil {
			series = append(series, Series{Name: eq + " (B)", Table: cm.TableB})
		}
		for _, p := range cm.A.Table.Labels() {
			row := append([]string{eq, match, reversed, status, "A", p.String()}, formatAll(cm.A.Table.K[p])...)
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("kinetics: writing comparison: %v", err)
			}
			if cm.TableB == nil {
				continue
			}
			kb, ok := cm.TableB.K[p]
			if !ok {
				continue
			}
			row = append([]string{eq, match, reversed, status, "B", p.String()}, formatAll(kb)...)
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("kinetics: writing comparison: %v", err)
			}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("kinetics: writing comparison: %v", err)
	}
	if plotFile != "" {
		return PlotTables(plotFile, series...)
	}
	return nil
}

func formatAll(v []float64) []string {
	o := make([]string, len(v))
	for i, f := range v {
		o[i] = strconv.FormatFloat(f, 'g', 6, 64)
	}
	return o
}
