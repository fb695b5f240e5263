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

// Package rate evaluates temperature- and pressure-dependent rate
// constants for the rate expressions found in CHEMKIN mechanisms.
//
// Parameters are expected in the normalized units of package kinetics:
// activation energies in cal/mol, concentrations in mol/cm3 and
// pressures in atm.
package rate

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/spatialmodel/kinetics"
)

const (
	// R is the gas constant [cal/(mol K)].
	R = 1.987204

	// Rc is the gas constant [cm3 atm/(mol K)], used to calculate
	// the third-body concentration [M] = P/(Rc T).
	Rc = 82.05736
)

// These errors are returned when a rate constant cannot be calculated.
var (
	ErrNotPressureDependent  = errors.New("rate: reaction is not pressure dependent")
	ErrPressureOutOfRange    = errors.New("rate: pressure out of range")
	ErrTemperatureOutOfRange = errors.New("rate: temperature out of range")
	ErrGridMismatch          = errors.New("rate: temperature or pressure grids do not match")
)

// Law is a rate constant expression.
type Law interface {
	// K returns the rate constant at temperature T [K] and
	// pressure P [atm].
	K(T, P float64) (float64, error)

	// PressureDependent returns whether K depends on P.
	PressureDependent() bool
}

// Arrhenius is a modified Arrhenius expression
// k = A (T/Tref)^n exp(-Ea/(R T)).
type Arrhenius struct {
	kinetics.Arrhenius

	// Tref is the reference temperature [K]. Zero is taken to mean 1 K.
	Tref float64
}

// Rate returns the rate constant at temperature T [K].
func (a Arrhenius) Rate(T float64) float64 {
	tref := a.Tref
	if tref == 0 {
		tref = 1
	}
	return a.A * math.Pow(T/tref, a.N) * math.Exp(-a.Ea/(R*T))
}

// K implements Law. P is ignored.
func (a Arrhenius) K(T, _ float64) (float64, error) { return a.Rate(T), nil }

// PressureDependent implements Law.
func (Arrhenius) PressureDependent() bool { return false }

// DoubleArrhenius is the sum of two Arrhenius expressions.
type DoubleArrhenius [2]Arrhenius

// Rate returns the rate constant at temperature T [K].
func (d DoubleArrhenius) Rate(T float64) float64 {
	return d[0].Rate(T) + d[1].Rate(T)
}

// K implements Law. P is ignored.
func (d DoubleArrhenius) K(T, _ float64) (float64, error) { return d.Rate(T), nil }

// PressureDependent implements Law.
func (DoubleArrhenius) PressureDependent() bool { return false }

// Lindemann is a falloff expression between a low-pressure and a
// high-pressure limit. The third body is taken to be the bath gas,
// with an efficiency of one.
type Lindemann struct {
	High, Low Arrhenius
}

// reducedPressure returns the high-pressure rate constant and the
// reduced pressure Pr = k0 [M] / kinf.
func (l Lindemann) reducedPressure(T, P float64) (kinf, pr float64) {
	kinf = l.High.Rate(T)
	return kinf, l.Low.Rate(T) / kinf * P / (Rc * T)
}

// K implements Law.
func (l Lindemann) K(T, P float64) (float64, error) {
	kinf, pr := l.reducedPressure(T, P)
	return kinf * pr / (1 + pr), nil
}

// PressureDependent implements Law.
func (Lindemann) PressureDependent() bool { return true }

// Troe is a Lindemann expression with the Troe broadening factor.
type Troe struct {
	Lindemann
	kinetics.TroeParams
}

// Fcent returns the center broadening factor at temperature T.
func (t Troe) Fcent(T float64) float64 {
	f := (1-t.Alpha)*math.Exp(-T/t.T3) + t.Alpha*math.Exp(-T/t.T1)
	if t.HasT2 {
		f += math.Exp(-t.T2 / T)
	}
	return f
}

// K implements Law.
func (t Troe) K(T, P float64) (float64, error) {
	kinf, pr := t.reducedPressure(T, P)
	if pr == 0 {
		return 0, nil
	}
	logFcent := math.Log10(t.Fcent(T))
	c := -0.4 - 0.67*logFcent
	n := 0.75 - 1.27*logFcent
	const d = 0.14
	x := math.Log10(pr) + c
	f1 := x / (n - d*x)
	logF := logFcent / (1 + f1*f1)
	return kinf * pr / (1 + pr) * math.Pow(10, logF), nil
}

// plogLevel holds the Arrhenius expressions given at one pressure.
type plogLevel struct {
	p     float64
	terms []Arrhenius
}

func (l plogLevel) rate(T float64) float64 {
	var k float64
	for _, a := range l.terms {
		k += a.Rate(T)
	}
	return k
}

// Plog is a set of Arrhenius expressions tabulated by pressure and
// interpolated linearly in log k and log P. Expressions given at the
// same pressure are summed.
type Plog struct {
	levels []plogLevel
}

// NewPlog returns a Plog expression for the given entries, which
// need not be sorted.
func NewPlog(entries []kinetics.PlogEntry) (*Plog, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("rate: PLOG expression has no entries")
	}
	byP := make(map[float64]int)
	p := new(Plog)
	for _, e := range entries {
		if !(e.P > 0) {
			return nil, fmt.Errorf("rate: invalid PLOG pressure %g", e.P)
		}
		i, ok := byP[e.P]
		if !ok {
			i = len(p.levels)
			byP[e.P] = i
			p.levels = append(p.levels, plogLevel{p: e.P})
		}
		p.levels[i].terms = append(p.levels[i].terms, Arrhenius{Arrhenius: e.Arrhenius})
	}
	sort.Slice(p.levels, func(i, j int) bool { return p.levels[i].p < p.levels[j].p })
	return p, nil
}

// Pressures returns the tabulated pressures in increasing order.
func (p *Plog) Pressures() []float64 {
	o := make([]float64, len(p.levels))
	for i, l := range p.levels {
		o[i] = l.p
	}
	return o
}

// K implements Law. Pressures outside of the tabulated range
// result in ErrPressureOutOfRange.
func (p *Plog) K(T, P float64) (float64, error) {
	lo, hi := p.levels[0].p, p.levels[len(p.levels)-1].p
	if P < lo || P > hi || math.IsNaN(P) {
		return math.NaN(), fmt.Errorf("%w: %g atm is outside the PLOG range %g-%g atm",
			ErrPressureOutOfRange, P, lo, hi)
	}
	// Index of the first level with pressure >= P.
	i := sort.Search(len(p.levels), func(i int) bool { return p.levels[i].p >= P })
	l2 := p.levels[i]
	if l2.p == P {
		return l2.rate(T), nil
	}
	l1 := p.levels[i-1]
	k1, k2 := l1.rate(T), l2.rate(T)
	logK := math.Log10(k1) + (math.Log10(k2)-math.Log10(k1))*
		(math.Log10(P)-math.Log10(l1.p))/(math.Log10(l2.p)-math.Log10(l1.p))
	return math.Pow(10, logK), nil
}

// PressureDependent implements Law.
func (*Plog) PressureDependent() bool { return true }

// Chebyshev is a rate expression given as a two-dimensional
// Chebyshev polynomial series in reduced inverse temperature and
// reduced log pressure.
type Chebyshev kinetics.ChebyshevParams

// K implements Law. Conditions outside of the fitted temperature or
// pressure range result in an error.
func (c *Chebyshev) K(T, P float64) (float64, error) {
	if !(T >= c.Tmin && T <= c.Tmax) {
		return math.NaN(), fmt.Errorf("%w: %g K is outside the Chebyshev range %g-%g K",
			ErrTemperatureOutOfRange, T, c.Tmin, c.Tmax)
	}
	if !(P >= c.Pmin && P <= c.Pmax) {
		return math.NaN(), fmt.Errorf("%w: %g atm is outside the Chebyshev range %g-%g atm",
			ErrPressureOutOfRange, P, c.Pmin, c.Pmax)
	}
	tr := (2/T - 1/c.Tmin - 1/c.Tmax) / (1/c.Tmax - 1/c.Tmin)
	lpMin, lpMax := math.Log10(c.Pmin), math.Log10(c.Pmax)
	pr := (2*math.Log10(P) - lpMin - lpMax) / (lpMax - lpMin)

	nP := 0
	if len(c.Coeffs) > 0 {
		nP = len(c.Coeffs[0])
	}
	tPoly := chebyshevPolynomials(tr, len(c.Coeffs))
	pPoly := chebyshevPolynomials(pr, nP)
	var logK float64
	for i, row := range c.Coeffs {
		for j, a := range row {
			logK += a * tPoly[i] * pPoly[j]
		}
	}
	return math.Pow(10, logK), nil
}

// PressureDependent implements Law.
func (*Chebyshev) PressureDependent() bool { return true }

// chebyshevPolynomials returns the first n Chebyshev polynomials of
// the first kind evaluated at x.
func chebyshevPolynomials(x float64, n int) []float64 {
	o := make([]float64, n)
	for i := range o {
		switch i {
		case 0:
			o[i] = 1
		case 1:
			o[i] = x
		default:
			o[i] = 2*x*o[i-1] - o[i-2]
		}
	}
	return o
}

// NewLaw returns the rate expression for record r, selected by which
// pressure-dependence data the record holds. r must have been
// normalized.
func NewLaw(r *kinetics.ReactionRecord) (Law, error) {
	high := Arrhenius{Arrhenius: r.High}
	switch r.Kind() {
	case kinetics.HighPressureOnly:
		return high, nil
	case kinetics.Lindemann:
		return Lindemann{High: high, Low: Arrhenius{Arrhenius: *r.Low}}, nil
	case kinetics.Troe:
		return Troe{
			Lindemann:  Lindemann{High: high, Low: Arrhenius{Arrhenius: *r.Low}},
			TroeParams: *r.Troe,
		}, nil
	case kinetics.Plog:
		return NewPlog(r.Plog)
	case kinetics.Chebyshev:
		c := Chebyshev(*r.Cheb)
		return &c, nil
	default:
		return nil, fmt.Errorf("rate: unsupported reaction kind %s", r.Kind())
	}
}

// KAt returns the rate constant of r at temperature T [K] and
// pressure P [atm]. It returns ErrNotPressureDependent if r does not
// depend on pressure.
func KAt(r *kinetics.ReactionRecord, T, P float64) (float64, error) {
	law, err := NewLaw(r)
	if err != nil {
		return math.NaN(), err
	}
	if !law.PressureDependent() {
		return math.NaN(), fmt.Errorf("%w: %s", ErrNotPressureDependent, r.Equation())
	}
	return law.K(T, P)
}
