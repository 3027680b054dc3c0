/*
 * algorithms.go, part of gomdtools.
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
	"bufio"
	"fmt"
	"io"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	md "github.com/misa-md/gomdtools"
)

var axes = [3]string{"x", "y", "z"}

// Analysis is the result of an algorithm over the snapshots of one file.
// WriteTo writes it as a text table.
type Analysis interface {
	io.WriterTo
}

// Algorithm analyses the snapshots of one file, in the box given, which is
// already normalized. lattice is the edge of a unit cell.
type Algorithm func(frames []*md.Snapshot, box *md.BoxConfig, lattice float64) (Analysis, error)

var algorithms = map[string]Algorithm{
	"histo": Histo,
	"stat":  Stat,
}

// Algorithms returns the names of the available algorithms, sorted.
func Algorithms() []string {
	ret := make([]string, 0, len(algorithms))
	for k := range algorithms {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

// LookupAlgorithm returns the algorithm named name.
func LookupAlgorithm(name string) (Algorithm, error) {
	a, ok := algorithms[name]
	if !ok {
		return nil, md.Errorf(md.ErrValidation, "", "LookupAlgorithm", "unknown algorithm %q, available: %v", name, Algorithms())
	}
	return a, nil
}

// countWriter counts the bytes written through it, for WriteTo implementations.
type countWriter struct {
	w *bufio.Writer
	n int64
}

func (C *countWriter) printf(format string, args ...any) {
	n, _ := fmt.Fprintf(C.w, format, args...)
	C.n += int64(n)
}

func (C *countWriter) flush() (int64, error) {
	return C.n, C.w.Flush()
}

// AxisHisto is the occupancy histogram of one axis.
type AxisHisto struct {
	Axis  string  `json:"axis"`
	Start float64 `json:"start"`
	Cells uint64  `json:"cells"`
	Data  *Data   `json:"data"`
}

// HistoAnalysis holds the occupancy histograms along each axis.
type HistoAnalysis struct {
	Frames  int          `json:"frames"`
	Atoms   int          `json:"atoms"` //over all frames
	Lattice float64      `json:"lattice"`
	Axes    [3]AxisHisto `json:"axes"`
}

// Histo counts, for each axis, the atoms in each unit cell of the box:
// the bins of the axis i are [start_i + k*lattice, start_i + (k+1)*lattice)
// for k < size_i. Atoms outside the box on an axis are counted as outside
// in the histogram of that axis. A zero size gives a histogram with no bins.
func Histo(frames []*md.Snapshot, box *md.BoxConfig, lattice float64) (Analysis, error) {
	H := &HistoAnalysis{Frames: len(frames), Lattice: lattice}
	var coords [3][]float64
	for _, f := range frames {
		H.Atoms += f.Len()
		for _, p := range f.Particles {
			for i, v := range p.Position() {
				coords[i] = append(coords[i], v)
			}
		}
	}
	for i := range axes {
		n := box.BoxSize[i]
		var dividers []float64
		if n > 0 {
			dividers = make([]float64, n+1)
			for k := range dividers {
				dividers[k] = box.BoxStart[i] + float64(k)*lattice
			}
		}
		H.Axes[i] = AxisHisto{Axis: axes[i], Start: box.BoxStart[i], Cells: n, Data: NewData(dividers, coords[i])}
	}
	return H, nil
}

func (H *HistoAnalysis) WriteTo(w io.Writer) (int64, error) {
	C := &countWriter{w: bufio.NewWriter(w)}
	C.printf("# histo frames=%d atoms=%d lattice=%g\n", H.Frames, H.Atoms, H.Lattice)
	for _, a := range H.Axes {
		C.printf("# axis %s start=%g cells=%d inside=%d outside=%d\n", a.Axis, a.Start, a.Cells, a.Data.Total(), a.Data.Outside())
		if a.Data.Bins() > 0 {
			C.printf("%s\n", a.Data.String())
		}
	}
	return C.flush()
}

// Moments are the mean and standard deviation of a quantity along each axis.
type Moments struct {
	Mean   [3]float64 `json:"mean"`
	StdDev [3]float64 `json:"stddev"`
}

// StatAnalysis holds simple statistics of the atoms of a file.
type StatAnalysis struct {
	Frames   int     `json:"frames"`
	Atoms    int     `json:"atoms"` //over all frames
	Inside   int     `json:"inside"`
	Position Moments `json:"position"`
	Velocity Moments `json:"velocity"`
	// Covariance of the positions.
	Covariance [3][3]float64 `json:"covariance"`
}

func inBox(p md.Particle, box *md.BoxConfig, lattice float64) bool {
	for i, v := range p.Position() {
		lo := box.BoxStart[i]
		hi := lo + float64(box.BoxSize[i])*lattice
		if v < lo || v >= hi {
			return false
		}
	}
	return true
}

// Stat computes the mean and standard deviation of positions and velocities,
// and the covariance matrix of the positions, over all the atoms of all frames.
// It also counts the atoms inside the box. Standard deviations and covariances
// need at least 2 atoms, and are zero otherwise.
func Stat(frames []*md.Snapshot, box *md.BoxConfig, lattice float64) (Analysis, error) {
	S := &StatAnalysis{Frames: len(frames)}
	for _, f := range frames {
		S.Atoms += f.Len()
	}
	pos := make([]float64, 0, 3*S.Atoms)
	var vel [3][]float64
	for _, f := range frames {
		for _, p := range f.Particles {
			pos = append(pos, p.X, p.Y, p.Z)
			for i, v := range p.Velocity() {
				vel[i] = append(vel[i], v)
			}
			if inBox(p, box, lattice) {
				S.Inside++
			}
		}
	}
	if S.Atoms == 0 {
		return S, nil
	}
	P := mat.NewDense(S.Atoms, 3, pos)
	col := make([]float64, S.Atoms)
	for i := range axes {
		mat.Col(col, i, P)
		S.Position.Mean[i], S.Position.StdDev[i] = meanStd(col)
		S.Velocity.Mean[i], S.Velocity.StdDev[i] = meanStd(vel[i])
	}
	if S.Atoms < 2 {
		return S, nil
	}
	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, P, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			S.Covariance[i][j] = cov.At(i, j)
		}
	}
	return S, nil
}

func meanStd(x []float64) (float64, float64) {
	if len(x) < 2 {
		return stat.Mean(x, nil), 0
	}
	m, s := stat.MeanStdDev(x, nil)
	if math.IsNaN(s) {
		s = 0
	}
	return m, s
}

func (S *StatAnalysis) WriteTo(w io.Writer) (int64, error) {
	C := &countWriter{w: bufio.NewWriter(w)}
	C.printf("# stat frames=%d atoms=%d inside=%d\n", S.Frames, S.Atoms, S.Inside)
	C.printf("# quantity axis mean stddev\n")
	for i, a := range axes {
		C.printf("position %s %g %g\n", a, S.Position.Mean[i], S.Position.StdDev[i])
	}
	for i, a := range axes {
		C.printf("velocity %s %g %g\n", a, S.Velocity.Mean[i], S.Velocity.StdDev[i])
	}
	C.printf("# position covariance\n")
	for _, row := range S.Covariance {
		C.printf("%g %g %g\n", row[0], row[1], row[2])
	}
	return C.flush()
}
