/*
 * md_test.go, part of gomdtools.
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

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParticle(Te *testing.T) {
	p, err := ParseParticle("  3.0 1 2 3\t4 5 6 ")
	require.NoError(Te, err)
	assert.Equal(Te, Particle{ID: 3, X: 1, Y: 2, Z: 3, VX: 4, VY: 5, VZ: 6}, p)
	assert.Equal(Te, [3]float64{1, 2, 3}, p.Position())
	assert.Equal(Te, [3]float64{4, 5, 6}, p.Velocity())

	legacy, err := ParseParticleLegacy("3 1 2 3 4 5 6")
	require.NoError(Te, err)
	assert.Equal(Te, 6.0, legacy.VY)
	assert.Equal(Te, 6.0, legacy.VZ)

	big, err := ParseParticle("4294967295.9 0 0 0 0 0 0")
	require.NoError(Te, err)
	assert.Equal(Te, uint32(math.MaxUint32), big.ID)

	for _, line := range []string{"", "1 2 3 4 5 6", "1 2 3 4 5 6 7 8", "1 2 3 4 5 6 seven",
		"1 nan 0 0 0 0 0", "1 0 0 0 0 -Inf 0", "-1 0 0 0 0 0 0", "4294967296 0 0 0 0 0 0", "NaN 0 0 0 0 0 0"} {
		_, err := ParseParticle(line)
		assert.True(Te, errors.Is(err, ErrParse), line)
	}
}

func TestFormatParseRoundTrip(Te *testing.T) {
	p := Particle{ID: 42, X: 1.125, Y: -2.5, Z: 1e3, VX: 0.001, VY: -0.002, VZ: 3}
	s := p.Format(4)
	assert.Equal(Te, "42 1.1250 -2.5000 1000.0000 0.0010 -0.0020 3.0000", s)
	q, err := ParseParticle(s)
	require.NoError(Te, err)
	assert.True(Te, p.NearEq(q, 1e-9))
	assert.Contains(Te, p.String(), "id: 42")
}

func TestNearEq(Te *testing.T) {
	p := Particle{X: 1, Y: 1, Z: 1, VX: 1}
	q := p
	q.Z += 0.1
	assert.True(Te, p.NearEq(p, 0))
	assert.False(Te, p.NearEq(q, 0))
	assert.False(Te, p.NearEq(q, 0.05))
	assert.True(Te, p.NearEq(q, 0.2))

	w := p
	w.Y += 4
	box := [3]float64{4, 4, 4}
	assert.True(Te, p.NearEqPBC(w, 1e-9, box))
	assert.True(Te, p.NearEqPBC(w, 0, box))
	assert.False(Te, p.NearEqPBC(w, 1e-9, [3]float64{}))
	assert.Equal(Te, p.NearEq(q, 0.05), p.NearEqPBC(q, 0.05, [3]float64{}))

	v := p
	v.VX += 4
	assert.False(Te, p.NearEqPBC(v, 1e-9, box))
	assert.True(Te, p.NearEq(p, math.Inf(1)))
}

func TestNormalizeBox(Te *testing.T) {
	s, l := NormalizeBox(nil, nil)
	assert.Equal(Te, [3]float64{0, 0, 0}, s)
	assert.Equal(Te, [3]uint64{0, 0, 0}, l)
	s, l = NormalizeBox([]float64{1.0, 2.0}, []uint64{5})
	assert.Equal(Te, [3]float64{1, 2, 0}, s)
	assert.Equal(Te, [3]uint64{5, 0, 0}, l)
	s, l = NormalizeBox([]float64{1, 2, 3, 4}, []uint64{1, 2, 3, 4, 5})
	assert.Equal(Te, [3]float64{1, 2, 3}, s)
	assert.Equal(Te, [3]uint64{1, 2, 3}, l)
}

func TestBoxConfigCopy(Te *testing.T) {
	start := []float64{1}
	B := NewBoxConfig(start, []uint64{2, 3})
	start[0] = 99
	assert.Equal(Te, [3]float64{1, 0, 0}, B.BoxStart)
	C := B.Copy()
	C.InputBoxStart[0] = 7
	C.InputBoxSize = append(C.InputBoxSize, 4)
	C.Normalize()
	assert.Equal(Te, [3]uint64{2, 3, 4}, C.BoxSize)
	assert.Equal(Te, [3]uint64{2, 3, 0}, B.BoxSize)
	assert.Equal(Te, 1.0, B.InputBoxStart[0])
}

func TestSnapshot(Te *testing.T) {
	s := &Snapshot{}
	_, ok := s.Extents()
	assert.False(Te, ok)
	s.Append(Particle{ID: 1, X: 1, Y: -1, Z: 0}, Particle{ID: 2, X: -2, Y: 3, Z: 0})
	assert.Equal(Te, 2, s.Len())
	b, ok := s.Extents()
	require.True(Te, ok)
	assert.Equal(Te, Box{Lo: [3]float64{-2, -1, 0}, Hi: [3]float64{1, 3, 0}}, b)
	assert.Equal(Te, [3]float64{3, 4, 0}, b.Size())
	assert.Equal(Te, "[-2 1) [-1 3) [0 0)", b.String())
}

func TestErrors(Te *testing.T) {
	err := Errorf(ErrFormat, "a.bin", "decode", "%d bytes", 3)
	assert.True(Te, errors.Is(err, ErrFormat))
	assert.False(Te, errors.Is(err, ErrParse))
	assert.Equal(Te, "format error: file a.bin: 3 bytes", err.Error())
	assert.True(Te, err.Critical())
	assert.Equal(Te, "a.bin", err.FileName())

	var wrapped error = WrapError(ErrIO, "x", "Open", fs.ErrNotExist)
	Decorate(wrapped, "Run")
	assert.True(Te, errors.Is(wrapped, ErrIO))
	assert.True(Te, errors.Is(wrapped, fs.ErrNotExist))
	var E *Error
	require.True(Te, errors.As(fmt.Errorf("outer: %w", wrapped), &E))
	assert.Equal(Te, "Open <- Run", E.Trail())
	assert.Equal(Te, ErrIO, E.Kind())

	v := Errorf(ErrValidation, "", "validate", "bad")
	assert.False(Te, v.Critical())
	assert.Equal(Te, "validation error: bad", v.Error())

	plain := errors.New("plain")
	assert.Equal(Te, plain, Decorate(plain, "x"))
	var _ TrajError = v
}

func TestCompression(Te *testing.T) {
	dir := Te.TempDir()
	data := strings.Repeat("1 0.5 0.5 0.5 0 0 0\n", 100)
	for _, ext := range []string{"", ".zst", ".gz", ".xz", ".lzw", ".GZ"} {
		name := filepath.Join(dir, "f.txt"+ext)
		w, err := Create(name)
		require.NoError(Te, err, ext)
		_, err = io.WriteString(w, data)
		require.NoError(Te, err)
		require.NoError(Te, w.Close())

		r, err := Open(name)
		require.NoError(Te, err, ext)
		got, err := io.ReadAll(r)
		require.NoError(Te, err, ext)
		require.NoError(Te, r.Close())
		assert.Equal(Te, data, string(got), ext)
	}
	assert.Equal(Te, "gz", Compression("a.GZ"))
	assert.Equal(Te, "", Compression("a.xyz"))

	_, err := Open(filepath.Join(dir, "missing"))
	assert.True(Te, errors.Is(err, ErrIO))
	_, err = Create(filepath.Join(dir, "no", "such", "dir"))
	assert.True(Te, errors.Is(err, ErrIO))
}
