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

// Package fit fits single- and double-Arrhenius expressions to
// rate constant data.
package fit

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/kinetics"
	"github.com/spatialmodel/kinetics/science/rate"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

// ErrNotConverged is returned when the double-Arrhenius optimization
// does not converge.
var ErrNotConverged = errors.New("fit: optimization did not converge")

// Form is the functional form of a fit.
type Form int

const (
	// Single is k = A (T/Tref)^n exp(-Ea/RT).
	Single Form = iota
	// Double is the sum of two Single expressions.
	Double
)

func (f Form) String() string {
	if f == Double {
		return "double Arrhenius"
	}
	return "single Arrhenius"
}

// Result is the outcome of fitting one set of rate constants.
type Result struct {
	Form Form

	// Params holds one expression for a Single fit and two for a
	// Double fit, in cal/mol.
	Params []kinetics.Arrhenius

	// Tref is the reference temperature [K] of Params.
	Tref float64

	// First and Last are the indices of the first and last valid data
	// points in the input. Both are -1 if there were no valid points.
	First, Last int

	// N is the number of valid data points.
	N int

	// SSE is the sum of squared differences between the natural
	// logarithms of the data and the fit. MeanAPE and MaxAPE are the
	// mean and maximum absolute percent errors. They are missing for
	// fits with fewer than three points.
	SSE, MeanAPE, MaxAPE kinetics.Value

	// Fallback is true if a double-Arrhenius fit was requested but
	// the single-Arrhenius fit was kept, because the double fit did
	// not converge or did not reduce SSE.
	Fallback bool
}

// Vector returns the fitted parameters as (A, n, Ea) triplets.
func (r *Result) Vector() []float64 {
	o := make([]float64, 0, 3*len(r.Params))
	for _, p := range r.Params {
		o = append(o, p.A, p.N, p.Ea)
	}
	return o
}

// Law returns the fitted rate expression.
func (r *Result) Law() rate.Law {
	if r.Form == Double {
		return rate.DoubleArrhenius{
			{Arrhenius: r.Params[0], Tref: r.Tref},
			{Arrhenius: r.Params[1], Tref: r.Tref},
		}
	}
	return rate.Arrhenius{Arrhenius: r.Params[0], Tref: r.Tref}
}

// Rate returns the fitted rate constant at temperature T [K].
func (r *Result) Rate(T float64) float64 {
	k, _ := r.Law().K(T, math.NaN())
	return k
}

// Fitter fits Arrhenius expressions.
type Fitter struct {
	// Tmin and Tmax bound the temperatures [K] of the data that are
	// fit. Zero values mean no bound.
	Tmin, Tmax float64

	// Tref is the reference temperature [K]. Zero means 1 K.
	Tref float64

	// Double specifies that a double-Arrhenius fit should be
	// attempted.
	Double bool

	// MaxIterations limits the iterations of the double-Arrhenius
	// optimization. Zero means 10,000.
	MaxIterations int

	Log logrus.FieldLogger
}

func (f *Fitter) tref() float64 {
	if f.Tref == 0 {
		return 1
	}
	return f.Tref
}

func (f *Fitter) log() logrus.FieldLogger {
	if f.Log == nil {
		return logrus.StandardLogger()
	}
	return f.Log
}

// Filter returns the data points with defined, positive rate
// constants and temperatures within [tmin, tmax] (zero bounds are
// ignored), along with the indices of the first and last of them.
func Filter(temperatures []float64, k []kinetics.Value, tmin, tmax float64) (ts, ks []float64, first, last int) {
	first, last = -1, -1
	for i, T := range temperatures {
		v, ok := k[i].Float()
		if !ok || !(v > 0) || math.IsInf(v, 0) {
			continue
		}
		if (tmin != 0 && T < tmin) || (tmax != 0 && T > tmax) {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
		ts = append(ts, T)
		ks = append(ks, v)
	}
	return ts, ks, first, last
}

// Fit fits the rate constants k at the given temperatures [K].
// Missing, non-positive, and out-of-range points are ignored.
func (f *Fitter) Fit(temperatures []float64, k []kinetics.Value) (*Result, error) {
	if len(temperatures) != len(k) {
		return nil, fmt.Errorf("fit: %d temperatures but %d rate constants", len(temperatures), len(k))
	}
	ts, ks, first, last := Filter(temperatures, k, f.Tmin, f.Tmax)
	single, err := SingleArrhenius(ts, ks, f.tref())
	if err != nil {
		return nil, err
	}
	res := &Result{
		Form:   Single,
		Params: []kinetics.Arrhenius{single},
		Tref:   f.tref(),
		First:  first,
		Last:   last,
		N:      len(ts),
	}
	res.SSE, res.MeanAPE, res.MaxAPE = Metrics(ts, ks, res.Law())
	if !f.Double {
		return res, nil
	}
	if len(ts) <= 3 {
		res.Fallback = true
		f.log().WithFields(logrus.Fields{"points": len(ts)}).
			Info("fit: too few points for a double-Arrhenius fit; using single fit")
		return res, nil
	}
	double, err := DoubleArrhenius(ts, ks, single, f.tref(), f.MaxIterations)
	if err != nil {
		res.Fallback = true
		f.log().WithFields(logrus.Fields{"error": err}).
			Info("fit: double-Arrhenius fit failed; using single fit")
		return res, nil
	}
	dres := &Result{
		Form:   Double,
		Params: []kinetics.Arrhenius{double[0], double[1]},
		Tref:   f.tref(),
		First:  first,
		Last:   last,
		N:      len(ts),
	}
	dres.SSE, dres.MeanAPE, dres.MaxAPE = Metrics(ts, ks, dres.Law())
	if dres.SSE.Or(math.Inf(1)) >= res.SSE.Or(math.Inf(1)) {
		res.Fallback = true
		f.log().WithFields(logrus.Fields{
			"single SSE": res.SSE.String(),
			"double SSE": dres.SSE.String(),
		}).Info("fit: double-Arrhenius fit is not better; using single fit")
		return res, nil
	}
	f.log().WithFields(logrus.Fields{
		"single SSE": res.SSE.String(),
		"double SSE": dres.SSE.String(),
	}).Debug("fit: accepted double-Arrhenius fit")
	return dres, nil
}

// SingleArrhenius fits k = A (T/tref)^n exp(-Ea/RT) to the given data,
// which must all be valid. With no points all parameters are zero;
// with one point A = k; with two or three points n is fixed at zero;
// otherwise all three parameters are fit by linear least squares on
// ln k.
func SingleArrhenius(temperatures, k []float64, tref float64) (kinetics.Arrhenius, error) {
	switch len(temperatures) {
	case 0:
		return kinetics.Arrhenius{}, nil
	case 1:
		return kinetics.Arrhenius{A: k[0]}, nil
	}
	if tref == 0 {
		tref = 1
	}
	withN := len(temperatures) > 3
	cols := 2
	if withN {
		cols = 3
	}
	a := mat.NewDense(len(temperatures), cols, nil)
	b := mat.NewVecDense(len(k), nil)
	for i, T := range temperatures {
		a.Set(i, 0, 1)
		a.Set(i, cols-1, -1/(rate.R*T))
		if withN {
			a.Set(i, 1, math.Log(T/tref))
		}
		b.SetVec(i, math.Log(k[i]))
	}
	var x mat.VecDense
	if err := x.SolveVec(a, b); err != nil {
		return kinetics.Arrhenius{}, fmt.Errorf("fit: single-Arrhenius least squares: %v", err)
	}
	p := kinetics.Arrhenius{A: math.Exp(x.AtVec(0)), Ea: x.AtVec(cols - 1)}
	if withN {
		p.N = x.AtVec(1)
	}
	return p, nil
}

// eaScale converts activation energies to the units used inside the
// optimization, so that all parameters have similar magnitudes.
const eaScale = 1000

// DoubleArrhenius fits the sum of two Arrhenius expressions to the
// given data by minimizing the sum of squared differences in log10 k.
// The optimization starts from seed with A halved and n perturbed by
// ±0.1 for the two terms. maxIterations of zero means 10,000.
func DoubleArrhenius(temperatures, k []float64, seed kinetics.Arrhenius, tref float64, maxIterations int) ([2]kinetics.Arrhenius, error) {
	var o [2]kinetics.Arrhenius
	if len(temperatures) == 0 || !(seed.A > 0) {
		return o, fmt.Errorf("fit: double-Arrhenius fit needs data and a positive seed")
	}
	if tref == 0 {
		tref = 1
	}
	if maxIterations == 0 {
		maxIterations = 10000
	}
	logK := make([]float64, len(k))
	for i, v := range k {
		logK[i] = math.Log10(v)
	}
	unpack := func(x []float64) rate.DoubleArrhenius {
		return rate.DoubleArrhenius{
			{Arrhenius: kinetics.Arrhenius{A: math.Exp(x[0]), N: x[1], Ea: x[2] * eaScale}, Tref: tref},
			{Arrhenius: kinetics.Arrhenius{A: math.Exp(x[3]), N: x[4], Ea: x[5] * eaScale}, Tref: tref},
		}
	}
	residual := make([]float64, len(k))
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			d := unpack(x)
			for i, T := range temperatures {
				residual[i] = logK[i] - math.Log10(d.Rate(T))
			}
			return floats.Dot(residual, residual)
		},
	}
	lnA := math.Log(seed.A / 2)
	x0 := []float64{
		lnA, seed.N + 0.1, seed.Ea / eaScale,
		lnA, seed.N - 0.1, seed.Ea / eaScale,
	}
	settings := &optimize.Settings{
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-9,
			Relative:   1e-9,
			Iterations: 200,
		},
		MajorIterations: maxIterations,
		FuncEvaluations: 10 * maxIterations,
	}
	result, err := optimize.Minimize(problem, x0, settings, &optimize.NelderMead{})
	if err != nil {
		return o, fmt.Errorf("fit: double-Arrhenius optimization: %v", err)
	}
	switch result.Status {
	case optimize.FunctionConvergence, optimize.MethodConverge:
	default:
		return o, fmt.Errorf("%w: %s", ErrNotConverged, result.Status)
	}
	if math.IsNaN(result.F) || math.IsInf(result.F, 0) {
		return o, fmt.Errorf("%w: objective is %g", ErrNotConverged, result.F)
	}
	d := unpack(result.X)
	return [2]kinetics.Arrhenius{d[0].Arrhenius, d[1].Arrhenius}, nil
}

// Metrics returns the sum of squared differences in ln k and the mean
// and maximum absolute percent errors of law with respect to the
// data. All are missing for two or fewer points.
func Metrics(temperatures, k []float64, law rate.Law) (sse, meanAPE, maxAPE kinetics.Value) {
	if len(temperatures) <= 2 {
		return kinetics.Missing(), kinetics.Missing(), kinetics.Missing()
	}
	lnErr := make([]float64, len(k))
	ape := make([]float64, len(k))
	for i, T := range temperatures {
		kf, err := law.K(T, math.NaN())
		if err != nil {
			return kinetics.Missing(), kinetics.Missing(), kinetics.Missing()
		}
		lnErr[i] = math.Log(k[i]) - math.Log(kf)
		ape[i] = math.Abs(k[i]-kf) / k[i] * 100
	}
	return kinetics.Of(floats.Dot(lnErr, lnErr)),
		kinetics.Of(floats.Sum(ape) / float64(len(ape))),
		kinetics.Of(floats.Max(ape))
}
