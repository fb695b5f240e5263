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
	"math"
	"os"
	"strings"
	"testing"
)

func different(a, b, tolerance float64) bool {
	if a == b {
		return false
	}
	return 2*math.Abs(a-b)/math.Abs(a+b) > tolerance
}

func readTestMechanism(t *testing.T) string {
	b, err := os.ReadFile("testdata/mech.inp")
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestLocateBlock(t *testing.T) {
	text := readTestMechanism(t)
	tests := []struct {
		keys  []string
		lines int
		first string
	}{
		{keys: ElementKeys, lines: 1, first: "H O N AR"},
		{keys: SpeciesKeys, lines: 3, first: "H2 H O2 O OH"},
		{keys: ReactionKeys, lines: 18, first: "KCAL/MOLE MOLES"},
		{keys: ThermoKeys, lines: 18, first: "ALL"},
		{keys: []string{"REAC"}, lines: 0},
	}
	for _, test := range tests {
		t.Run(test.keys[0], func(t *testing.T) {
			b := LocateBlock(text, test.keys...)
			if test.lines == 0 {
				if b != "" {
					t.Errorf("have %q, want empty block", b)
				}
				return
			}
			lines := strings.Split(b, "\n")
			if len(lines) != test.lines {
				t.Errorf("have %d lines, want %d:\n%s", len(lines), test.lines, b)
			}
			if lines[0] != test.first {
				t.Errorf("first line: have %q, want %q", lines[0], test.first)
			}
		})
	}
}

func TestLocateBlockMissingEnd(t *testing.T) {
	if b := LocateBlock("SPECIES\nH2 O2\n", SpeciesKeys...); b != "" {
		t.Errorf("have %q, want empty block", b)
	}
}

func TestLocateBlockInlineEnd(t *testing.T) {
	b := LocateBlock("spec H2 O2 end\nREAC\nH+O2=HO2 1 0 0\nEND", SpeciesKeys...)
	if b != "H2 O2" {
		t.Errorf("have %q, want %q", b, "H2 O2")
	}
}

func TestNormalizeText(t *testing.T) {
	have := NormalizeText("  A ! comment\r\n\n\t B  \n! only a comment\n")
	want := "A\nB"
	if have != want {
		t.Errorf("have %q, want %q", have, want)
	}
}

func TestDocumentNames(t *testing.T) {
	d := NewDocument(readTestMechanism(t))
	species := d.SpeciesNames()
	if len(species) != 10 || species[0] != "H2" || species[9] != "AR" {
		t.Errorf("species: %v", species)
	}
	if el := d.ElementNames(); len(el) != 4 {
		t.Errorf("elements: %v", el)
	}
}
