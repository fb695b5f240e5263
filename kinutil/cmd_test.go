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
	"bytes"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/kr/pretty"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spatialmodel/kinetics"
	"github.com/spatialmodel/kinetics/science/fit"
	"github.com/spatialmodel/kinetics/science/rate"
)

func different(a, b, tolerance float64) bool {
	if a == b {
		return false
	}
	return 2*math.Abs(a-b)/math.Abs(a+b) > tolerance
}

// arrhenius returns the rate constant of p at temperature T.
func arrhenius(p kinetics.Arrhenius, T float64) float64 {
	return p.A * math.Pow(T, p.N) * math.Exp(-p.Ea/(rate.R*T))
}

// setDefaults resets the configuration and directs command output to
// the returned buffer.
func setDefaults() *bytes.Buffer {
	for _, o := range options {
		Cfg.Set(o.name, o.defaultVal)
	}
	Cfg.Set("LogLevel", "error")
	Cfg.Set("Mechanism", "testdata/mech.inp")
	buf := new(bytes.Buffer)
	Root.SetOut(buf)
	return buf
}

func execute(t *testing.T, args ...string) {
	t.Helper()
	Root.SetArgs(args)
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
}

func readCSV(t *testing.T, b []byte) [][]string {
	t.Helper()
	rows, err := csv.NewReader(bytes.NewReader(b)).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return rows
}

func parse(t *testing.T, b []byte) *kinetics.Mechanism {
	t.Helper()
	m, err := kinetics.ParseMechanism(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("%v\n%s", err, b)
	}
	return m
}

func checkArrhenius(t *testing.T, have, want kinetics.Arrhenius) {
	t.Helper()
	if different(have.A, want.A, 1.e-5) || math.Abs(have.N-want.N) > 1.e-4 ||
		math.Abs(have.Ea-want.Ea) > 0.05 {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestVersion(t *testing.T) {
	buf := setDefaults()
	execute(t, "version")
	if have, want := buf.String(), "kinetics v"+kinetics.Version+"\n"; have != want {
		t.Errorf("have %q, want %q", have, want)
	}
}

func TestGetFloat64Slice(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want []float64
	}{
		{name: "slice", in: []float64{1, 2.5}, want: []float64{1, 2.5}},
		{name: "interface", in: []interface{}{int64(1), 2.5}, want: []float64{1, 2.5}},
		{name: "flag", in: "[1.000000,2.500000]", want: []float64{1, 2.5}},
		{name: "bare", in: " 1, 2.5 ", want: []float64{1, 2.5}},
		{name: "empty", in: "[]", want: nil},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			Cfg.Set("Pressures", test.in)
			have, err := GetFloat64Slice("Pressures", Cfg)
			if err != nil {
				t.Fatal(err)
			}
			if diff := pretty.Diff(have, test.want); len(diff) != 0 {
				t.Error(diff)
			}
		})
	}
	Cfg.Set("Pressures", "[1,x]")
	if _, err := GetFloat64Slice("Pressures", Cfg); err == nil {
		t.Error("expected an error")
	}
}

func TestReadConditions(t *testing.T) {
	c, err := ReadConditions("testdata/conditions.toml")
	if err != nil {
		t.Fatal(err)
	}
	want := &Conditions{
		Temperatures: []float64{300, 500, 1000, 1500},
		Pressures:    []float64{1, 10},
	}
	if diff := pretty.Diff(c, want); len(diff) != 0 {
		t.Error(diff)
	}
	if _, err := ReadConditions("testdata/bad_conditions.toml"); err == nil {
		t.Error("expected an error for a negative temperature")
	}
	if _, err := ReadConditions("testdata/missing.toml"); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestConditionsOverrideGrid(t *testing.T) {
	setDefaults()
	Cfg.Set("Conditions", "testdata/conditions.toml")
	c, err := loadConditions(Cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Temperatures) != 4 || len(c.Pressures) != 2 {
		t.Errorf("conditions: %+v", c)
	}
}

func TestParseCmd(t *testing.T) {
	buf := setDefaults()
	Cfg.Set("EaUnits", "KJOULES/MOLE")
	execute(t, "parse")
	if !strings.Contains(buf.String(), "REACTIONS KJOULES/MOLE MOLES") {
		t.Errorf("missing units line:\n%s", buf.String())
	}
	m := parse(t, buf.Bytes())
	if len(m.Reactions) != 2 {
		t.Fatalf("have %d reactions, want 2", len(m.Reactions))
	}
	checkArrhenius(t, m.Reactions[0].High, kinetics.Arrhenius{A: 1.e12, N: 0.5, Ea: 10000})
	if len(m.Reactions[1].Plog) != 2 {
		t.Errorf("have %d PLOG entries, want 2", len(m.Reactions[1].Plog))
	}
}

func TestParseCmdBadUnits(t *testing.T) {
	setDefaults()
	Cfg.Set("EaUnits", "furlongs")
	Root.SetArgs([]string{"parse"})
	if err := Root.Execute(); err == nil {
		t.Error("expected an error")
	}
}

func TestRatesCmd(t *testing.T) {
	buf := setDefaults()
	Cfg.Set("Temperatures", []float64{500, 1000})
	Cfg.Set("Pressures", []float64{1, 10})
	execute(t, "rates")
	rows := readCSV(t, buf.Bytes())
	want := [][]string{
		{"reaction", "pressure", "500", "1000"},
		{"A+B<=>C", "high"},
		{"A+C<=>B+B", "1"},
		{"A+C<=>B+B", "10"},
	}
	if len(rows) != len(want) {
		t.Fatalf("have %d rows, want %d:\n%v", len(rows), len(want), rows)
	}
	for i, w := range want {
		for j, v := range w {
			if rows[i][j] != v {
				t.Errorf("row %d column %d: have %q, want %q", i, j, rows[i][j], v)
			}
		}
	}
	k, err := strconv.ParseFloat(rows[1][3], 64)
	if err != nil {
		t.Fatal(err)
	}
	if want := arrhenius(kinetics.Arrhenius{A: 1.e12, N: 0.5, Ea: 10000}, 1000); different(k, want, 1.e-5) {
		t.Errorf("have %g, want %g", k, want)
	}
	k, err = strconv.ParseFloat(rows[3][2], 64)
	if err != nil {
		t.Fatal(err)
	}
	if want := arrhenius(kinetics.Arrhenius{A: 1.e13, N: 0.5, Ea: 20000}, 500); different(k, want, 1.e-5) {
		t.Errorf("have %g, want %g", k, want)
	}
}

func TestRatesCmdFilterAndPlot(t *testing.T) {
	buf := setDefaults()
	plotFile := filepath.Join(t.TempDir(), "rates.png")
	Cfg.Set("Temperatures", []float64{500, 1000, 1500})
	Cfg.Set("Pressures", []float64{1})
	Cfg.Set("Reaction", "C<=>B+A")
	Cfg.Set("PlotFile", plotFile)
	execute(t, "rates")
	rows := readCSV(t, buf.Bytes())
	if len(rows) != 2 || rows[1][0] != "A+B<=>C" {
		t.Errorf("rows: %v", rows)
	}
	if _, err := os.Stat(plotFile); err != nil {
		t.Error(err)
	}
}

func TestRatesCmdNoMatch(t *testing.T) {
	setDefaults()
	Cfg.Set("Reaction", "A<=>B")
	Root.SetArgs([]string{"rates"})
	if err := Root.Execute(); err == nil {
		t.Error("expected an error")
	}
}

func TestFitCmd(t *testing.T) {
	setDefaults()
	out := filepath.Join(t.TempDir(), "fit.inp")
	Cfg.Set("Temperatures", []float64{300, 500, 800, 1000, 1500, 2000})
	Cfg.Set("Pressures", []float64{1, 10})
	Cfg.Set("OutputFile", out)
	execute(t, "fit")
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	m := parse(t, b)
	if len(m.Reactions) != 2 {
		t.Fatalf("have %d reactions, want 2:\n%s", len(m.Reactions), b)
	}
	if r := m.Reactions[0]; r.Kind() != kinetics.HighPressureOnly || r.Equation() != "A+B<=>C" {
		t.Errorf("reaction 0: %s %s", r.Kind(), r.Equation())
	} else {
		checkArrhenius(t, r.High, kinetics.Arrhenius{A: 1.e12, N: 0.5, Ea: 10000})
	}
	r := m.Reactions[1]
	if r.Kind() != kinetics.Plog || len(r.Plog) != 2 {
		t.Fatalf("reaction 1: %s with %d PLOG entries:\n%s", r.Kind(), len(r.Plog), b)
	}
	if r.Plog[0].P != 1 || r.Plog[1].P != 10 {
		t.Errorf("pressures: %g, %g", r.Plog[0].P, r.Plog[1].P)
	}
	checkArrhenius(t, r.Plog[0].Arrhenius, kinetics.Arrhenius{A: 1.e12, N: 0, Ea: 15000})
	checkArrhenius(t, r.Plog[1].Arrhenius, kinetics.Arrhenius{A: 1.e13, N: 0.5, Ea: 20000})
}

func TestReverseCmd(t *testing.T) {
	buf := setDefaults()
	Cfg.Set("Temperatures", []float64{300, 500, 800, 1000, 1500, 2000})
	Cfg.Set("Reaction", "A+B<=>C")
	execute(t, "reverse")
	m := parse(t, buf.Bytes())
	if len(m.Reactions) != 1 {
		t.Fatalf("have %d reactions, want 1:\n%s", len(m.Reactions), buf.String())
	}
	r := m.Reactions[0]
	if have, want := r.Equation(), "C=>A+B"; have != want {
		t.Errorf("have %s, want %s", have, want)
	}
	// K = exp(2000/T + 1), so the reverse rate has A/e and
	// Ea + 2000 R.
	want := kinetics.Arrhenius{A: 1.e12 / math.E, N: 0.5, Ea: 10000 + 2000*rate.R}
	checkArrhenius(t, r.High, want)
}

func TestCompareCmd(t *testing.T) {
	buf := setDefaults()
	Cfg.Set("Temperatures", []float64{500, 1000})
	Cfg.Set("Pressures", []float64{1})
	Cfg.Set("MechanismB", "testdata/mechB.inp")
	Cfg.Set("SpeciesTable", "testdata/speciesA.csv")
	Cfg.Set("SpeciesTableB", "testdata/speciesB.csv")
	execute(t, "compare")
	rows := readCSV(t, buf.Bytes())
	if len(rows) != 4 {
		t.Fatalf("have %d rows, want 4:\n%v", len(rows), rows)
	}
	a, b := rows[1], rows[2]
	if a[1] != "CX<=>AX+BX" || a[2] != "true" || a[3] != "ok" || a[4] != "A" || b[4] != "B" {
		t.Errorf("rows: %v\n%v", a, b)
	}
	for j := 6; j < 8; j++ {
		ka, err := strconv.ParseFloat(a[j], 64)
		if err != nil {
			t.Fatal(err)
		}
		kb, err := strconv.ParseFloat(b[j], 64)
		if err != nil {
			t.Fatal(err)
		}
		if different(ka, kb, 2.e-5) {
			t.Errorf("column %d: have %g, want %g", j, kb, ka)
		}
	}
	if rows[3][0] != "A+C<=>B+B" || rows[3][3] != "no match" {
		t.Errorf("unmatched row: %v", rows[3])
	}
}

func TestSynthesisWriteDouble(t *testing.T) {
	s := &Synthesis{
		Reactants:  []string{"A", "B"},
		Products:   []string{"C"},
		Reversible: true,
		Fits: map[rate.PressureLabel]*fit.Result{
			rate.High: {
				Form: fit.Double,
				Params: []kinetics.Arrhenius{
					{A: 1.e10, N: 1, Ea: 1000},
					{A: 1.e13, N: 0, Ea: 20000},
				},
				N: 8,
			},
		},
	}
	var buf bytes.Buffer
	buf.WriteString("REACTIONS\n")
	if err := s.Write(&buf, kinetics.Units{}); err != nil {
		t.Fatal(err)
	}
	buf.WriteString("END\n")
	m := parse(t, buf.Bytes())
	if len(m.Reactions) != 2 {
		t.Fatalf("have %d reactions, want 2:\n%s", len(m.Reactions), buf.String())
	}
	for i, r := range m.Reactions {
		if !r.Duplicate {
			t.Errorf("reaction %d should be DUPLICATE", i)
		}
		checkArrhenius(t, r.High, s.Fits[rate.High].Params[i])
	}
}

func TestSynthesisWriteEmpty(t *testing.T) {
	s := &Synthesis{
		Reactants: []string{"A"},
		Products:  []string{"B"},
		Fits: map[rate.PressureLabel]*fit.Result{
			rate.High: {Form: fit.Single, Params: []kinetics.Arrhenius{{}}, N: 0},
		},
	}
	if err := s.Write(new(bytes.Buffer), kinetics.Units{}); err == nil {
		t.Error("expected an error")
	}
}

func TestSynthesisWriteSkippedPressure(t *testing.T) {
	logger, hook := test.NewNullLogger()
	s := &Synthesis{
		Reactants: []string{"A"},
		Products:  []string{"B"},
		Fits: map[rate.PressureLabel]*fit.Result{
			1:  {Form: fit.Single, Params: []kinetics.Arrhenius{{A: 1.e10}}, N: 8},
			10: {Form: fit.Single, Params: []kinetics.Arrhenius{{}}, N: 0},
		},
		Log: logger,
	}
	var buf bytes.Buffer
	buf.WriteString("REACTIONS\n")
	if err := s.Write(&buf, kinetics.Units{}); err != nil {
		t.Fatal(err)
	}
	buf.WriteString("END\n")
	m := parse(t, buf.Bytes())
	if len(m.Reactions) != 1 || len(m.Reactions[0].Plog) != 1 {
		t.Fatalf("want one reaction with one PLOG entry:\n%s", buf.String())
	}
	if len(hook.Entries) != 1 || hook.LastEntry().Level != logrus.WarnLevel {
		t.Fatalf("have %d log entries, want one warning", len(hook.Entries))
	}
	if p := hook.LastEntry().Data["pressure"]; p != rate.PressureLabel(10).String() {
		t.Errorf("warning for pressure %v, want 10", p)
	}
}

func TestParseLogger(t *testing.T) {
	m := parse(t, []byte("ELEMENTS\nH O\nEND\nSPECIES\nH O2 O OH\nEND\nREACTIONS\nH+O2<=>O+OH 3.547E+15 -0.406 16599\nEND\n"))
	logger, hook := test.NewNullLogger()
	var buf bytes.Buffer
	if err := Parse(&buf, m, kinetics.Units{}, logger); err != nil {
		t.Fatal(err)
	}
	if len(hook.Entries) != 1 || hook.LastEntry().Level != logrus.InfoLevel {
		t.Fatalf("have %d log entries, want one info entry", len(hook.Entries))
	}
	if n := hook.LastEntry().Data["reactions"]; n != 1 {
		t.Errorf("logged %v reactions, want 1", n)
	}
}

func TestRatesLogsOutOfRange(t *testing.T) {
	m := parse(t, []byte("REACTIONS\nA<=>B 1 0 0\n   PLOG / 0.1 1E+10 0 0 /\n   PLOG / 10 1E+12 0 0 /\nEND\n"))
	c := &Conditions{Temperatures: []float64{500, 1000}, Pressures: []float64{0.01, 1}}
	logger, hook := test.NewNullLogger()
	var buf bytes.Buffer
	if err := Rates(&buf, m, c, "", "", logger); err != nil {
		t.Fatal(err)
	}
	rows := readCSV(t, buf.Bytes())
	if len(rows) != 3 {
		t.Fatalf("have %d rows, want 3", len(rows))
	}
	if rows[1][1] != "0.01" || rows[1][2] != "NaN" {
		t.Errorf("out of range row: %v", rows[1])
	}
	if len(hook.Entries) != 1 || hook.LastEntry().Level != logrus.WarnLevel {
		t.Errorf("have %d log entries, want one warning", len(hook.Entries))
	}
}

func TestPlotTables(t *testing.T) {
	table := &rate.Table{
		Temperatures: []float64{300, 1000, 2000},
		K: map[rate.PressureLabel][]float64{
			rate.High: {1, 10, 100},
			1:         {0, 5, math.NaN()},
		},
	}
	f := filepath.Join(t.TempDir(), "plot.svg")
	if err := PlotTables(f, Series{Name: "test", Table: table}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(f); err != nil {
		t.Error(err)
	}
	empty := &rate.Table{K: map[rate.PressureLabel][]float64{}}
	if err := PlotTables(f, Series{Name: "empty", Table: empty}); err == nil {
		t.Error("expected an error")
	}
}
