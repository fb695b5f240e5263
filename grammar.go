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
	"strings"
	"unicode"
)

// The auxiliary lines of a reaction record are a sequence of items:
//
//	KEYWORD / param param ... /    (LOW, TROE, PLOG, CHEB, ...)
//	FLAG                           (DUPLICATE, MOME, ...)
//	SPECIES / efficiency /         (third-body efficiency)
//
// They are lexed into words and slashes and parsed into auxNodes.

type tokenKind int

const (
	tokWord tokenKind = iota
	tokSlash
)

type token struct {
	kind tokenKind
	text string
}

func (t token) String() string {
	if t.kind == tokSlash {
		return "/"
	}
	return t.text
}

// lex splits s into words separated by whitespace and slashes.
func lex(s string) []token {
	var toks []token
	start := -1
	flush := func(end int) {
		if start >= 0 {
			toks = append(toks, token{kind: tokWord, text: s[start:end]})
			start = -1
		}
	}
	for i, r := range s {
		switch {
		case r == '/':
			flush(i)
			toks = append(toks, token{kind: tokSlash})
		case unicode.IsSpace(r):
			flush(i)
		default:
			if start < 0 {
				start = i
			}
		}
	}
	flush(len(s))
	return toks
}

// auxNode is an item of the auxiliary part of a reaction record.
type auxNode interface {
	node()
}

// paramNode is a keyword followed by a slash-delimited parameter list.
type paramNode struct {
	keyword string
	params  []string
}

// flagNode is a keyword with no parameters.
type flagNode struct {
	keyword string
}

// efficiencyNode is a per-species third-body efficiency.
type efficiencyNode struct {
	species string
	value   string
}

func (paramNode) node()      {}
func (flagNode) node()       {}
func (efficiencyNode) node() {}

// paramKeywords are the keywords that take a parameter list.
var paramKeywords = map[string]bool{
	"LOW": true, "HIGH": true, "TROE": true, "SRI": true,
	"CHEB": true, "TCHEB": true, "PCHEB": true, "PLOG": true,
	"REV": true, "LT": true, "RLT": true, "FORD": true, "RORD": true,
	"UNITS": true, "TDEP": true, "EXCI": true, "JAN": true,
	"FIT1": true, "LANG": true, "USRPROG": true,
}

// flagKeywords are the keywords that stand alone.
var flagKeywords = map[string]string{
	"DUP": "DUPLICATE", "DUPLICATE": "DUPLICATE",
	"MOME": "MOME", "XSMI": "XSMI",
}

// auxParser is a recursive-descent parser over the tokens of the
// auxiliary lines of one reaction record.
type auxParser struct {
	toks []token
	pos  int
}

func (p *auxParser) eof() bool { return p.pos >= len(p.toks) }

func (p *auxParser) peek() (token, bool) {
	if p.eof() {
		return token{}, false
	}
	return p.toks[p.pos], true
}

func (p *auxParser) next() token {
	t := p.toks[p.pos]
	p.pos++
	return t
}

// parseAux parses the auxiliary text of a reaction record.
func parseAux(s string) ([]auxNode, error) {
	p := &auxParser{toks: lex(s)}
	var nodes []auxNode
	for !p.eof() {
		n, err := p.item()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func (p *auxParser) item() (auxNode, error) {
	t := p.next()
	if t.kind == tokSlash {
		return nil, fmt.Errorf("unexpected '/' at token %d", p.pos)
	}
	kw := strings.ToUpper(t.text)
	if name, ok := flagKeywords[kw]; ok {
		return flagNode{keyword: name}, nil
	}
	if nt, ok := p.peek(); !ok || nt.kind != tokSlash {
		return nil, fmt.Errorf("unexpected word %q", t.text)
	}
	params, err := p.paramList()
	if err != nil {
		return nil, fmt.Errorf("%s: %v", t.text, err)
	}
	if paramKeywords[kw] {
		return paramNode{keyword: kw, params: params}, nil
	}
	if len(params) != 1 {
		return nil, fmt.Errorf("third-body efficiency for %s should have 1 value but has %d", t.text, len(params))
	}
	return efficiencyNode{species: t.text, value: params[0]}, nil
}

// paramList consumes "/ word word ... /".
func (p *auxParser) paramList() ([]string, error) {
	p.next() // opening slash
	var params []string
	for !p.eof() {
		t := p.next()
		if t.kind == tokSlash {
			return params, nil
		}
		params = append(params, t.text)
	}
	return nil, fmt.Errorf("missing closing '/'")
}

// arrows lists the reaction arrow tokens, longest first.
var arrows = []string{"<=>", "=>", "="}

// splitEquation splits a reaction equation at its arrow.
func splitEquation(eq string) (lhs, rhs string, reversible bool, err error) {
	for _, a := range arrows {
		if i := strings.Index(eq, a); i >= 0 {
			return eq[:i], eq[i+len(a):], a != "=>", nil
		}
	}
	return "", "", false, fmt.Errorf("no reaction arrow in %q", eq)
}

// SplitSpecies splits one side of a reaction equation into species
// names. A leading integer stoichiometric coefficient is expanded into
// repeated entries. Pressure-dependent third-body markers such as
// "(+M)" or "(+AR)" and bare "M" third bodies are dropped; thirdBody
// reports whether one was present and collider gives the species
// named in a "(+X)" marker other than M.
func SplitSpecies(side string) (names []string, thirdBody bool, collider string) {
	side = strings.Join(strings.Fields(side), "")
	if strings.HasSuffix(side, ")") {
		if i := strings.LastIndex(side, "(+"); i > 0 {
			c := side[i+2 : len(side)-1]
			if c != "" && !strings.ContainsAny(c, "()") {
				thirdBody = true
				if !strings.EqualFold(c, "M") {
					collider = c
				}
				side = side[:i]
			}
		}
	}
	for _, s := range splitPlus(side) {
		if strings.EqualFold(s, "M") {
			thirdBody = true
			continue
		}
		n, name := stoichiometry(s)
		for j := 0; j < n; j++ {
			names = append(names, name)
		}
	}
	return names, thirdBody, collider
}

// splitPlus splits s on '+' characters that are not immediately
// followed by another '+' and are not the last character, so that
// ionic species such as "NO+" survive.
func splitPlus(s string) []string {
	var o []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] != '+' || i == 0 || i+1 >= len(s) || s[i+1] == '+' {
			continue
		}
		o = append(o, s[start:i])
		start = i + 1
	}
	if start < len(s) {
		o = append(o, s[start:])
	}
	return o
}

// stoichiometry separates a leading integer coefficient from a
// species name. The coefficient is only recognized when it is
// followed by a letter.
func stoichiometry(s string) (int, string) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 || i == len(s) || !unicode.IsLetter(rune(s[i])) {
		return 1, s
	}
	n := 0
	for _, c := range s[:i] {
		n = n*10 + int(c-'0')
	}
	if n == 0 {
		return 1, s
	}
	return n, s[i:]
}

// ParseEquation splits a reaction equation such as "H+O2(+M)<=>HO2(+M)"
// into its reactant and product names.
func ParseEquation(eq string) (reactants, products []string, err error) {
	lhs, rhs, _, err := splitEquation(strings.Join(strings.Fields(eq), ""))
	if err != nil {
		return nil, nil, fmt.Errorf("kinetics: %v", err)
	}
	reactants, _, _ = SplitSpecies(lhs)
	products, _, _ = SplitSpecies(rhs)
	if len(reactants) == 0 || len(products) == 0 {
		return nil, nil, fmt.Errorf("kinetics: equation %q is missing reactants or products", eq)
	}
	return reactants, products, nil
}
