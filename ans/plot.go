/*
 * plot.go, part of gomdtools.
 *
 *
 * Copyright 2026 The gomdtools Authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package ans

import (
	"fmt"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	md "github.com/misa-md/gomdtools"
)

// chartExt reports whether name is an image that Chart can write.
func chartExt(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".svg", ".pdf":
		return true
	}
	return false
}

// Chart returns a bar chart with the occupancy of the cells along each axis.
// Axes with no cells are left out.
func (H *HistoAnalysis) Chart(title string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	p.X.Label.Text = "Cell"
	p.Y.Label.Text = "Atoms"
	p.Add(plotter.NewGrid())
	w := vg.Points(6)
	var bars []*plotter.BarChart
	for _, a := range H.Axes {
		if a.Data.Bins() == 0 {
			continue
		}
		b, err := plotter.NewBarChart(plotter.Values(a.Data.View()), w)
		if err != nil {
			return nil, md.WrapError(md.ErrIO, "", "HistoAnalysis.Chart", err)
		}
		b.LineStyle.Width = vg.Length(0)
		b.Color = plotutil.Color(len(bars))
		p.Legend.Add(a.Axis, b)
		bars = append(bars, b)
	}
	//center the groups of bars around each cell index.
	for i, b := range bars {
		b.Offset = vg.Length(float64(i)-float64(len(bars)-1)/2) * w
		p.Add(b)
	}
	p.Legend.Top = true
	return p, nil
}

// saveChart writes the chart of H to name, in the format its extension says.
func saveChart(H *HistoAnalysis, title, name string) error {
	p, err := H.Chart(title)
	if err != nil {
		return md.Decorate(err, "saveChart")
	}
	if err := p.Save(6*vg.Inch, 4*vg.Inch, name); err != nil {
		return md.WrapError(md.ErrIO, name, "saveChart", fmt.Errorf("saving chart: %w", err))
	}
	return nil
}
