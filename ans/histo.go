/*
 * histo.go, part of gomdtools.
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
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Data is a histogram with fixed dividers. Bin i counts the values v
// with dividers[i] <= v < dividers[i+1]; values out of range are only
// counted in Outside.
type Data struct {
	normalized bool
	total      int //values in range
	outside    int
	dividers   []float64
	histo      []float64
}

// NewData returns a new histogram from the dividers and rawdata given.
// rawdata can be nil, in which case an empty histogram is created.
// Less than 2 dividers give a histogram with no bins.
func NewData(dividers []float64, rawdata []float64) *Data {
	D := new(Data)
	D.dividers = make([]float64, len(dividers))
	copy(D.dividers, dividers)
	nbins := len(dividers) - 1
	if nbins < 0 {
		nbins = 0
	}
	D.histo = make([]float64, nbins)
	if rawdata != nil {
		D.ReHisto(rawdata)
	}
	return D
}

// ReHisto replaces the contents of the histogram with the histogram of rawdata.
// rawdata is sorted in place.
func (D *Data) ReHisto(rawdata []float64) {
	D.normalized = false
	if len(D.histo) == 0 {
		D.total = 0
		D.outside = len(rawdata)
		return
	}
	sort.Float64s(rawdata)
	//stat.Histogram panics on values off limits, so they are removed first.
	maxi := sort.SearchFloat64s(rawdata, D.dividers[len(D.dividers)-1])
	mini := sort.SearchFloat64s(rawdata, D.dividers[0])
	in := rawdata[mini:maxi]
	D.outside = len(rawdata) - len(in)
	D.total = len(in)
	D.histo = stat.Histogram(nil, D.dividers, in, nil)
}

// AddData adds the given data point(s) to the histogram.
func (D *Data) AddData(point ...float64) {
	norma := D.normalized
	if norma {
		D.UnNormalize()
	}
	for _, v := range point {
		i := sort.SearchFloat64s(D.dividers, v)
		//SearchFloat64s gives the first divider >= v.
		if i < len(D.dividers) && D.dividers[i] == v {
			i++
		}
		bin := i - 1
		if bin < 0 || bin >= len(D.histo) {
			D.outside++
			continue
		}
		D.histo[bin]++
		D.total++
	}
	if norma {
		D.Normalize()
	}
}

// Total returns the number of values in range.
func (D *Data) Total() int { return D.total }

// Outside returns the number of values out of range.
func (D *Data) Outside() int { return D.outside }

// Bins returns the number of bins.
func (D *Data) Bins() int { return len(D.histo) }

// Normalized returns true if the histogram is normalized.
func (D *Data) Normalized() bool {
	return D.normalized
}

// Normalize divides each bin by the number of values in range.
func (D *Data) Normalize() {
	D.normaunnorma(true)
}

// UnNormalize undoes Normalize.
func (D *Data) UnNormalize() {
	D.normaunnorma(false)
}

func (D *Data) normaunnorma(normalize bool) {
	if D.total <= 0 || D.normalized == normalize {
		return
	}
	n := float64(D.total)
	if normalize {
		n = 1 / n
	}
	D.normalized = normalize
	floats.Scale(n, D.histo)
}

// View returns the bins of the histogram, not a copy.
func (D *Data) View() []float64 {
	return D.histo
}

// Dividers returns a copy of the dividers.
func (D *Data) Dividers() []float64 {
	d := make([]float64, len(D.dividers))
	copy(d, D.dividers)
	return d
}

func (D *Data) Sum() float64 {
	return floats.Sum(D.histo)
}

// String returns one line per bin: lower divider, upper divider, value.
func (D *Data) String() string {
	lines := make([]string, 0, len(D.histo))
	for i, v := range D.histo {
		lines = append(lines, fmt.Sprintf("%.4f %.4f %g", D.dividers[i], D.dividers[i+1], v))
	}
	return strings.Join(lines, "\n")
}

type dataJSON struct {
	Normalized bool      `json:"normalized"`
	Total      int       `json:"total"`
	Outside    int       `json:"outside"`
	Dividers   []float64 `json:"dividers"`
	Histo      []float64 `json:"histo"`
}

func (D *Data) MarshalJSON() ([]byte, error) {
	return json.Marshal(dataJSON{
		Normalized: D.normalized,
		Total:      D.total,
		Outside:    D.outside,
		Dividers:   D.dividers,
		Histo:      D.histo,
	})
}

func (D *Data) UnmarshalJSON(b []byte) error {
	var a dataJSON
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	if len(a.Dividers) > 0 && len(a.Histo) != len(a.Dividers)-1 {
		return fmt.Errorf("histogram with %d dividers and %d bins", len(a.Dividers), len(a.Histo))
	}
	D.normalized = a.Normalized
	D.total = a.Total
	D.outside = a.Outside
	D.dividers = a.Dividers
	D.histo = a.Histo
	return nil
}
