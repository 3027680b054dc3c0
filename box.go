/*
 * box.go, part of gomdtools.
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

package md

// BoxConfig holds the box given by the user for an analysis, as given
// (InputBoxStart, InputBoxSize, with 0 to 3 values each) and normalized
// (BoxStart, BoxSize). A BoxConfig belongs to one analysis call only.
type BoxConfig struct {
	InputBoxStart []float64
	InputBoxSize  []uint64
	BoxStart      [3]float64
	BoxSize       [3]uint64
}

// NewBoxConfig returns a normalized BoxConfig for the given start and size.
// The slices are copied.
func NewBoxConfig(start []float64, size []uint64) *BoxConfig {
	B := &BoxConfig{
		InputBoxStart: append([]float64(nil), start...),
		InputBoxSize:  append([]uint64(nil), size...),
	}
	B.Normalize()
	return B
}

// Normalize fills BoxStart and BoxSize from the input values. Axes
// without a value are set to zero. Values beyond the third are ignored.
// No check is done on the values, so a zero-size box is kept as it is.
func (B *BoxConfig) Normalize() {
	B.BoxStart, B.BoxSize = NormalizeBox(B.InputBoxStart, B.InputBoxSize)
}

// Copy returns a deep copy of the BoxConfig.
func (B *BoxConfig) Copy() *BoxConfig {
	r := *B
	r.InputBoxStart = append([]float64(nil), B.InputBoxStart...)
	r.InputBoxSize = append([]uint64(nil), B.InputBoxSize...)
	return &r
}

// NormalizeBox completes start and size to 3 values each, using zero for
// the missing trailing axes.
func NormalizeBox(start []float64, size []uint64) ([3]float64, [3]uint64) {
	var s [3]float64
	var l [3]uint64
	copy(s[:], start)
	copy(l[:], size)
	return s, l
}
