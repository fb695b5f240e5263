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
	"reflect"
	"testing"
)

func TestSplitSpecies(t *testing.T) {
	tests := []struct {
		side      string
		names     []string
		thirdBody bool
		collider  string
	}{
		{side: "H+O2", names: []string{"H", "O2"}},
		{side: "2OH", names: []string{"OH", "OH"}},
		{side: "3CH2+H", names: []string{"CH2", "CH2", "CH2", "H"}},
		{side: "H+H+M", names: []string{"H", "H"}, thirdBody: true},
		{side: "HO2(+M)", names: []string{"HO2"}, thirdBody: true},
		{side: "H+O2 (+AR)", names: []string{"H", "O2"}, thirdBody: true, collider: "AR"},
		{side: "CO(1)+O(5)(+M)", names: []string{"CO(1)", "O(5)"}, thirdBody: true},
		{side: "NO++E", names: []string{"NO+", "E"}},
		{side: "C2H4", names: []string{"C2H4"}},
	}
	for _, test := range tests {
		t.Run(test.side, func(t *testing.T) {
			names, tb, c := SplitSpecies(test.side)
			if !reflect.DeepEqual(names, test.names) {
				t.Errorf("names: have %v, want %v", names, test.names)
			}
			if tb != test.thirdBody {
				t.Errorf("third body: have %v, want %v", tb, test.thirdBody)
			}
			if c != test.collider {
				t.Errorf("collider: have %q, want %q", c, test.collider)
			}
		})
	}
}

func TestStoichiometryRepeats(t *testing.T) {
	for n := 1; n <= 12; n++ {
		names, _, _ := SplitSpecies(itoa(n) + "CH3+O")
		count := 0
		for _, s := range names {
			if s == "CH3" {
				count++
			}
		}
		if count != n {
			t.Errorf("coefficient %d: have %d repetitions", n, count)
		}
	}
}

func itoa(n int) string {
	if n < 10 {
		return string(rune('0' + n))
	}
	return itoa(n/10) + string(rune('0'+n%10))
}

func TestParseAux(t *testing.T) {
	nodes, err := parseAux("LOW / 1.0 0 5.0 /\nTROE/0.5 100 1000/ DUP\nH2/2.0/ AR / 0.7 /")
	if err != nil {
		t.Fatal(err)
	}
	want := []auxNode{
		paramNode{keyword: "LOW", params: []string{"1.0", "0", "5.0"}},
		paramNode{keyword: "TROE", params: []string{"0.5", "100", "1000"}},
		flagNode{keyword: "DUPLICATE"},
		efficiencyNode{species: "H2", value: "2.0"},
		efficiencyNode{species: "AR", value: "0.7"},
	}
	if !reflect.DeepEqual(nodes, want) {
		t.Errorf("have %#v, want %#v", nodes, want)
	}
}

func TestParseAuxErrors(t *testing.T) {
	for _, s := range []string{
		"LOW / 1 2 3",
		"/ 1 2 3 /",
		"H2 2.0",
		"H2/2.0 3.0/",
	} {
		if _, err := parseAux(s); err == nil {
			t.Errorf("%q: expected an error", s)
		}
	}
}

func TestSplitEquation(t *testing.T) {
	tests := []struct {
		eq       string
		lhs, rhs string
		rev      bool
	}{
		{eq: "A+B<=>C", lhs: "A+B", rhs: "C", rev: true},
		{eq: "A+B=>C", lhs: "A+B", rhs: "C", rev: false},
		{eq: "A+B=C", lhs: "A+B", rhs: "C", rev: true},
	}
	for _, test := range tests {
		lhs, rhs, rev, err := splitEquation(test.eq)
		if err != nil {
			t.Fatal(err)
		}
		if lhs != test.lhs || rhs != test.rhs || rev != test.rev {
			t.Errorf("%s: have (%q, %q, %v)", test.eq, lhs, rhs, rev)
		}
	}
	if _, _, _, err := splitEquation("A+B"); err == nil {
		t.Error("expected an error for a missing arrow")
	}
}

func TestParseEquation(t *testing.T) {
	r, p, err := ParseEquation("H + O2 (+M) <=> HO2 (+M)")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(r, []string{"H", "O2"}) || !reflect.DeepEqual(p, []string{"HO2"}) {
		t.Errorf("have %v, %v", r, p)
	}
	if _, _, err := ParseEquation("H+O2"); err == nil {
		t.Error("expected an error")
	}
}
