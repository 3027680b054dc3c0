/*
 * decode.go, part of gomdtools
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
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"math"

	md "github.com/misa-md/gomdtools"
)

type header struct {
	Step   uint64
	NAtoms uint64
}

// Decode decodes one block of raw bytes, as written by one rank for one timestep,
// following the standard S. It returns the particles, in the order they appear
// in the block, and the timestep in the header (0 for standards without header).
// The error is an md.ErrFormat Error if the length of raw doesn't match the
// standard, or if the header declares more atoms than raw contains.
func Decode(S Standard, raw []byte) ([]md.Particle, uint64, error) {
	return decode(S, raw, "")
}

func decode(S Standard, raw []byte, filename string) ([]md.Particle, uint64, error) {
	width := S.RecordWidth()
	var h header
	body := raw
	if S.header {
		if len(raw) < headerWidth {
			return nil, 0, md.Errorf(md.ErrFormat, filename, "Decode", "block of %d bytes can't hold a %d bytes header", len(raw), headerWidth)
		}
		if err := binary.Read(bytes.NewReader(raw[:headerWidth]), S.order, &h); err != nil {
			return nil, 0, md.WrapError(md.ErrFormat, filename, "Decode", err)
		}
		body = raw[headerWidth:]
		avail := uint64(len(body) / width)
		if h.NAtoms > avail {
			return nil, 0, md.Errorf(md.ErrFormat, filename, "Decode", "header declares %d atoms, but only %d bytes (%d records) are available", h.NAtoms, len(body), avail)
		}
		if uint64(len(body)) != h.NAtoms*uint64(width) {
			return nil, 0, md.Errorf(md.ErrFormat, filename, "Decode", "header declares %d atoms, but the block holds %d bytes of records", h.NAtoms, len(body))
		}
	} else if len(body)%width != 0 {
		return nil, 0, md.Errorf(md.ErrFormat, filename, "Decode", "%d bytes is not a multiple of the record width (%d) of standard %s", len(body), width, S.name)
	}
	n := len(body) / width
	ret := make([]md.Particle, n)
	for i := range ret {
		p, ok := S.record(body[i*width : (i+1)*width])
		if !ok {
			return nil, 0, md.Errorf(md.ErrFormat, filename, "Decode", "record %d: id does not fit in 32 bits", i)
		}
		ret[i] = p
	}
	return ret, h.Step, nil
}

// record decodes one record. rec must be exactly RecordWidth bytes long.
// It returns false if the id is too large for a Particle.
func (S Standard) record(rec []byte) (md.Particle, bool) {
	var p md.Particle
	switch S.id {
	case ID32:
		p.ID = S.order.Uint32(rec)
	case ID64:
		id := S.order.Uint64(rec)
		if id > math.MaxUint32 {
			return p, false
		}
		p.ID = uint32(id)
	}
	off := S.idWidth() + S.skip
	var vals [6]float64
	fields := 3
	if S.velocity {
		fields = 6
	}
	for i := 0; i < fields; i++ {
		if S.floatW == 4 {
			vals[i] = float64(math.Float32frombits(S.order.Uint32(rec[off:])))
		} else {
			vals[i] = math.Float64frombits(S.order.Uint64(rec[off:]))
		}
		off += S.floatW
	}
	p.X, p.Y, p.Z = vals[0], vals[1], vals[2]
	p.VX, p.VY, p.VZ = vals[3], vals[4], vals[5]
	return p, true
}

// blockReader splits the stream of one shard file into blocks.
type blockReader struct {
	std      Standard
	r        *bufio.Reader
	filename string
	done     bool
}

func newBlockReader(std Standard, r io.Reader, filename string) *blockReader {
	return &blockReader{std: std, r: bufio.NewReader(r), filename: filename}
}

// next returns the raw bytes of the next block, or io.EOF if there are no more blocks.
// Standards without header have a single block that spans the whole stream.
func (B *blockReader) next() ([]byte, error) {
	if B.done {
		return nil, io.EOF
	}
	if !B.std.header {
		B.done = true
		raw, err := io.ReadAll(B.r)
		if err != nil {
			return nil, md.WrapError(md.ErrIO, B.filename, "next", err)
		}
		if len(raw) == 0 {
			return nil, io.EOF
		}
		return raw, nil
	}
	hb := make([]byte, headerWidth)
	n, err := io.ReadFull(B.r, hb)
	if err == io.EOF {
		B.done = true
		return nil, io.EOF
	}
	if err == io.ErrUnexpectedEOF {
		B.done = true
		return nil, md.Errorf(md.ErrFormat, B.filename, "next", "truncated block header: %d of %d bytes", n, headerWidth)
	}
	if err != nil {
		return nil, md.WrapError(md.ErrIO, B.filename, "next", err)
	}
	natoms := B.std.order.Uint64(hb[8:])
	buf := bytes.NewBuffer(hb)
	if natoms > uint64(math.MaxInt64)/uint64(B.std.RecordWidth()) {
		B.done = true
		return nil, md.Errorf(md.ErrFormat, B.filename, "next", "header declares %d atoms", natoms)
	}
	want := natoms * uint64(B.std.RecordWidth())
	got, err := io.CopyN(buf, B.r, int64(want))
	if err == io.EOF {
		B.done = true
		return nil, md.Errorf(md.ErrFormat, B.filename, "next", "header declares %d atoms, but only %d bytes of records are available", natoms, got)
	}
	if err != nil {
		return nil, md.WrapError(md.ErrIO, B.filename, "next", err)
	}
	return buf.Bytes(), nil
}
