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
	"fmt"
	"math"

	"github.com/spatialmodel/kinetics/science/rate"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Series is a named rate constant table to plot.
type Series struct {
	Name  string
	Table *rate.Table
}

// PlotTables saves an Arrhenius plot (log10 k against 1000/T) of every
// pressure label of every series to fileName, in the format given by its
// extension. Rate constants that are not positive and finite are left
// out.
func PlotTables(fileName string, series ...Series) error {
	p := plot.New()
	p.Title.Text = "Rate constants"
	p.X.Label.Text = "1000/T (1/K)"
	p.Y.Label.Text = "log10 k"
	p.Legend.Top = true

	var i int
	for _, s := range series {
		for _, label := range s.Table.Labels() {
			xy := arrheniusXYs(s.Table.Temperatures, s.Table.K[label])
			if len(xy) == 0 {
				continue
			}
			l, err := plotter.NewLine(xy)
			if err != nil {
				return fmt.Errorf("kinetics: plotting %s: %v", s.Name, err)
			}
			l.LineStyle.Color = plotutil.Color(i)
			l.LineStyle.Dashes = plotutil.Dashes(i)
			p.Add(l)
			p.Legend.Add(fmt.Sprintf("%s %s", s.Name, label), l)
			i++
		}
	}
	if i == 0 {
		return fmt.Errorf("kinetics: no rate constants to plot")
	}
	if err := p.Save(6*vg.Inch, 4*vg.Inch, fileName); err != nil {
		return fmt.Errorf("kinetics: saving plot: %v", err)
	}
	return nil
}

func arrheniusXYs(temperatures, k []float64) plotter.XYs {
	var o plotter.XYs
	for i, T := range temperatures {
		if !(k[i] > 0) || math.IsInf(k[i], 0) {
			continue
		}
		o = append(o, plotter.XY{X: 1000 / T, Y: math.Log10(k[i])})
	}
	return o
}
