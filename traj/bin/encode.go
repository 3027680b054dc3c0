/*
 * encode.go, part of gomdtools
 *
 * Copyright 2026 The gomdtools Authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License  as published by
 * the Free Software Foundation; either version 2.1 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General Public License
 * along with this program; if not, write to the Free Software
 * Foundation, Inc., 51 Franklin Street, Fifth Floor, Boston,
 * MA 02110-1301, USA.
 */

package bin

import (
	"bytes"
	"encoding/binary"
	"io"

	md "github.com/misa-md/gomdtools"
)

// Encode returns one block with the particles ps at timestep step, in the
// layout of the standard S. It is the inverse of Decode, except for the fields
// the standard doesn't keep.
func Encode(S Standard, step uint64, ps []md.Particle) []byte {
	var buf bytes.Buffer
	buf.Grow(S.HeaderWidth() + len(ps)*S.RecordWidth())
	//bytes.Buffer never returns errors on Write.
	_ = WriteBlock(&buf, S, step, ps)
	return buf.Bytes()
}

// WriteBlock writes to w one block with the particles ps at timestep step,
// in the layout of the standard S.
func WriteBlock(w io.Writer, S Standard, step uint64, ps []md.Particle) error {
	wrapbinerr := func(err error) error {
		return md.WrapError(md.ErrIO, "", "WriteBlock", err)
	}
	if S.header {
		if err := binary.Write(w, S.order, header{Step: step, NAtoms: uint64(len(ps))}); err != nil {
			return wrapbinerr(err)
		}
	}
	skip := make([]byte, S.skip)
	for _, p := range ps {
		switch S.id {
		case ID32:
			if err := binary.Write(w, S.order, p.ID); err != nil {
				return wrapbinerr(err)
			}
		case ID64:
			if err := binary.Write(w, S.order, uint64(p.ID)); err != nil {
				return wrapbinerr(err)
			}
		}
		if S.skip > 0 {
			if _, err := w.Write(skip); err != nil {
				return wrapbinerr(err)
			}
		}
		vals := []float64{p.X, p.Y, p.Z}
		if S.velocity {
			vals = append(vals, p.VX, p.VY, p.VZ)
		}
		var err error
		if S.floatW == 4 {
			f32 := make([]float32, len(vals))
			for i, v := range vals {
				f32[i] = float32(v)
			}
			err = binary.Write(w, S.order, f32)
		} else {
			err = binary.Write(w, S.order, vals)
		}
		if err != nil {
			return wrapbinerr(err)
		}
	}
	return nil
}
