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
	"context"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spatialmodel/kinetics"
	"github.com/spatialmodel/kinetics/science/rate"
	"github.com/spatialmodel/kinetics/science/thermo"
	"github.com/tealeg/xlsx"
)

func different(a, b, tolerance float64) bool {
	if a == b {
		return false
	}
	return 2*math.Abs(a-b)/math.Abs(a+b) > tolerance
}

// constantEnthalpy returns a thermo record with H = R*h and S = 0,
// so that G = R*h [kcal/mol] at every temperature.
func constantEnthalpy(name string, h float64) *kinetics.ThermoRecord {
	r := &kinetics.ThermoRecord{Name: name, Tlow: 200, Tcommon: 1000, Thigh: 5000}
	r.Low[5], r.High[5] = h, h
	return r
}

var temperatures = []float64{300, 500, 1000, 2000}

func reactions(t *testing.T, text string) []*kinetics.ReactionRecord {
	t.Helper()
	m, err := kinetics.ParseMechanism(strings.NewReader("REACTIONS\n" + text + "\nEND"))
	if err != nil {
		t.Fatal(err)
	}
	return m.Reactions
}

func TestGibbs(t *testing.T) {
	x := constantEnthalpy("X", 1000)
	th := NewThermo([]*kinetics.ThermoRecord{x, constantEnthalpy("X", 5)})
	for i := 0; i < 2; i++ { // The second pass reads from the cache.
		g, err := th.Gibbs("X", 500)
		if err != nil {
			t.Fatal(err)
		}
		if different(g, thermo.R*1000, 1e-12) {
			t.Errorf("have %g, want %g", g, thermo.R*1000)
		}
	}
	if _, err := th.Gibbs("Z", 500); !errors.Is(err, ErrMissingThermo) {
		t.Errorf("have %v, want ErrMissingThermo", err)
	}
	if _, err := th.Gibbs("X", 100); !errors.Is(err, thermo.ErrOutOfRange) {
		t.Errorf("have %v, want ErrOutOfRange", err)
	}
}

func TestEquilibriumConstant(t *testing.T) {
	th := NewThermo([]*kinetics.ThermoRecord{constantEnthalpy("X", 1000), constantEnthalpy("Y", 0)})
	for _, T := range temperatures {
		k, err := th.EquilibriumConstant([]string{"X"}, []string{"Y"}, T)
		if err != nil {
			t.Fatal(err)
		}
		if want := math.Exp(1000 / T); different(k, want, 1e-12) {
			t.Errorf("T=%g: have %g, want %g", T, k, want)
		}
		k, _ = th.EquilibriumConstant([]string{"X", "Y"}, []string{"Y", "X"}, T)
		if k != 1 {
			t.Errorf("T=%g: symmetric reaction has K=%g", T, k)
		}
	}
}

func TestEquilibriumConstantsOutOfRange(t *testing.T) {
	th := NewThermo([]*kinetics.ThermoRecord{constantEnthalpy("X", 1000), constantEnthalpy("Y", 0)})
	r := reactions(t, "X<=>Y 1 0 0")[0]
	keq, err := th.EquilibriumConstants(r, []float64{100, 500, 6000})
	if err != nil {
		t.Fatal(err)
	}
	if keq[0].OK() || !keq[1].OK() || keq[2].OK() {
		t.Errorf("have %v", keq)
	}
	r = reactions(t, "X<=>Z 1 0 0")[0]
	if _, err := th.EquilibriumConstants(r, temperatures); !errors.Is(err, ErrMissingThermo) {
		t.Errorf("have %v, want ErrMissingThermo", err)
	}
}

func TestReverse(t *testing.T) {
	tbl := &rate.Table{
		Temperatures: []float64{300, 400, 500},
		K:            map[rate.PressureLabel][]float64{rate.High: {10, 20, 30}, 1: {1, 2, 3}},
	}
	keq := []kinetics.Value{kinetics.Of(2), kinetics.Missing(), kinetics.Of(0.5)}
	rev, err := Reverse(tbl, keq)
	if err != nil {
		t.Fatal(err)
	}
	h := rev.K[rate.High]
	if h[0] != 5 || !math.IsNaN(h[1]) || h[2] != 60 {
		t.Errorf("high: %v", h)
	}
	if p := rev.K[1]; p[0] != 0.5 || p[2] != 6 {
		t.Errorf("1 atm: %v", p)
	}
	if tbl.K[rate.High][0] != 10 {
		t.Error("Reverse should not modify its input")
	}
	if _, err := Reverse(tbl, keq[:2]); err == nil {
		t.Error("expected an error for mismatched lengths")
	}
}

func TestMatch(t *testing.T) {
	a := reactions(t, "OH+CO<=>H+CO2 1 0 0")[0]
	b := reactions(t, `CO+OH<=>CO2+H 1 0 0
CO2+H<=>OH+CO 1 0 0
CO+OH<=>HOCO 1 0 0
OH+OH<=>H2O+O 1 0 0`)
	c := Match(a, b, nil, nil)
	if len(c) != 2 {
		t.Fatalf("have %d matches, want 2", len(c))
	}
	if c[0].Record != b[0] || c[0].Reversed {
		t.Errorf("first match: %+v", c[0])
	}
	if c[1].Record != b[1] || !c[1].Reversed {
		t.Errorf("second match: %+v", c[1])
	}
}

func TestMatchMultiset(t *testing.T) {
	a := reactions(t, "2OH<=>H2O+O 1 0 0")[0]
	b := reactions(t, "OH+H2O<=>OH+O 1 0 0\nOH+OH<=>O+H2O 1 0 0")
	c := Match(a, b, nil, nil)
	if len(c) != 1 || c[0].Record != b[1] {
		t.Errorf("have %+v", c)
	}
}

func TestMatchByIdentifier(t *testing.T) {
	a := reactions(t, "CO(1)+O(5)<=>CO2(12) 1 0 0")[0]
	b := reactions(t, "CO2<=>CO+O 1 0 0")
	speciesA := SpeciesTable{
		"CO(1)":   {Name: "CO(1)", Identifier: "[C-]#[O+]"},
		"O(5)":    {Name: "O(5)", Identifier: "[O]"},
		"CO2(12)": {Name: "CO2(12)", Identifier: "O=C=O"},
	}
	speciesB := SpeciesTable{
		"CO":  {Name: "CO", Identifier: "[C-]#[O+]"},
		"O":   {Name: "O", Identifier: "[O]"},
		"CO2": {Name: "CO2", Identifier: "O=C=O"},
	}
	if c := Match(a, b, nil, nil); len(c) != 0 {
		t.Errorf("names differ, so there should be no match: %+v", c)
	}
	c := Match(a, b, speciesA, speciesB)
	if len(c) != 1 || !c[0].Reversed {
		t.Errorf("have %+v", c)
	}
}

func TestCompare(t *testing.T) {
	a := &kinetics.Mechanism{Reactions: reactions(t, "X<=>Y 1.0E+10 0 0\nY<=>W 1 0 0\nY+Y<=>Z 1 0 0")}
	b := &kinetics.Mechanism{
		Reactions: reactions(t, `Y<=>X 2.0E+10 0 0
Z<=>2Y 1.0E+08 0 0
W<=>Y 1 0 0
   DUPLICATE
Y<=>W 1 0 0
   DUPLICATE`),
		Thermo: []*kinetics.ThermoRecord{constantEnthalpy("X", 1000), constantEnthalpy("Y", 0)},
	}
	log, hook := test.NewNullLogger()
	c := &Comparer{Temperatures: temperatures, Log: log}
	cmps, err := c.Compare(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if len(cmps) != 3 {
		t.Fatalf("have %d comparisons, want 3", len(cmps))
	}

	xy := cmps[0]
	if xy.Err != nil {
		t.Fatal(xy.Err)
	}
	if !xy.Reversed() {
		t.Error("X<=>Y should match in reverse")
	}
	for i, T := range temperatures {
		// K for Y<=>X is exp(-1000/T).
		want := 2e10 * math.Exp(1000/T)
		if have := xy.TableB.K[rate.High][i]; different(have, want, 1e-10) {
			t.Errorf("T=%g: have %g, want %g", T, have, want)
		}
	}

	yw := cmps[1]
	if !errors.Is(yw.Err, ErrAmbiguousMatch) || yw.TableB != nil {
		t.Errorf("have %v, want ErrAmbiguousMatch", yw.Err)
	}

	// Z has no thermo data.
	yz := cmps[2]
	if !errors.Is(yz.Err, ErrMissingThermo) {
		t.Errorf("have %v, want ErrMissingThermo", yz.Err)
	}
	if len(hook.Entries) != 2 {
		t.Errorf("have %d log entries, want 2", len(hook.Entries))
	}
}

func TestCompareDuplicates(t *testing.T) {
	a := &kinetics.Mechanism{Reactions: reactions(t, "X<=>Y 1 0 0")}
	b := &kinetics.Mechanism{Reactions: reactions(t, "X<=>Y 1.0E+10 0 0\nDUP\nX<=>Y 2.0E+10 0 0\nDUP")}
	cmps, err := (&Comparer{Temperatures: temperatures}).Compare(a, b)
	if err != nil {
		t.Fatal(err)
	}
	c := cmps[0]
	if c.Err != nil || c.Reversed() || len(c.B) != 2 {
		t.Fatalf("have %+v", c)
	}
	for _, k := range c.TableB.K[rate.High] {
		if k != 3e10 {
			t.Errorf("have %g, want 3e10", k)
		}
	}
}

func TestCompareNoMatch(t *testing.T) {
	a := &kinetics.Mechanism{Reactions: reactions(t, "X<=>Y 1 0 0")}
	b := &kinetics.Mechanism{Reactions: reactions(t, "X<=>W 1 0 0")}
	cmps, err := (&Comparer{Temperatures: temperatures}).Compare(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if len(cmps[0].B) != 0 || cmps[0].TableB != nil || cmps[0].Err != nil {
		t.Errorf("have %+v", cmps[0])
	}
}

func TestReadSpeciesTable(t *testing.T) {
	tbl, err := LoadSpeciesTable(context.Background(), "testdata/species.csv")
	if err != nil {
		t.Fatal(err)
	}
	if len(tbl) != 4 {
		t.Errorf("have %d species, want 4", len(tbl))
	}
	co := tbl["CO(1)"]
	if co.Identifier != "[C-]#[O+]" || co.Multiplicity.Or(-1) != 1 || co.Charge.Or(-1) != 0 {
		t.Errorf("CO(1): %+v", co)
	}
	if key := tbl.Identify("O(5)"); key != "[O]/3/0" {
		t.Errorf("have key %q", key)
	}
	if key := tbl.Identify("OH(3)"); key != "[OH]/2/***" {
		t.Errorf("have key %q", key)
	}
	if key := tbl.Identify("AR"); key != "AR" {
		t.Errorf("unknown species should keep their names: %q", key)
	}
	var nilTable SpeciesTable
	if nilTable.Identify("AR") != "AR" {
		t.Error("nil table")
	}
}

func TestReadSpeciesTableErrors(t *testing.T) {
	for _, s := range []string{
		"",
		"smiles,charge\nO=C=O,0\n",
		"name,charge\nCO2,0\n",
		"name,smiles\nCO2,\n",
		"name,smiles,charge\nCO2,O=C=O,x\n",
	} {
		if _, err := ReadSpeciesTable(strings.NewReader(s)); err == nil {
			t.Errorf("%q: expected an error", s)
		}
	}
}

func TestLoadSpeciesTableXLSX(t *testing.T) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("species")
	if err != nil {
		t.Fatal(err)
	}
	for _, row := range [][]string{
		{"NAME", "Identifier"},
		{"CH4", "C"},
		{"CH3", "[CH3]"},
	} {
		r := sheet.AddRow()
		for _, v := range row {
			r.AddCell().Value = v
		}
	}
	fileName := filepath.Join(t.TempDir(), "species.xlsx")
	if err := f.Save(fileName); err != nil {
		t.Fatal(err)
	}
	tbl, err := LoadSpeciesTable(context.Background(), fileName)
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Identify("CH3") != "[CH3]" || tbl.Identify("CH4") != "C" {
		t.Errorf("have %+v", tbl)
	}
}
