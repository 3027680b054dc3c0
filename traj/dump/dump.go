/*
 * dump.go, part of gomdtools
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

// Package dump writes snapshots as LAMMPS-style dump files, one
// ITEM block per timestep.
package dump

import (
	"bufio"
	"fmt"
	"io"

	md "github.com/misa-md/gomdtools"
)

// Writer writes snapshots to a dump file. It fulfills md.Sink.
// A single Writer can take the timesteps of several inputs.
type Writer struct {
	w          io.WriteCloser
	filename   string
	prec       int
	box        *md.Box
	requireBox bool
	writeable  bool
	frames     int
}

// Option configures a Writer.
type Option func(*Writer)

// WithBox sets the box bounds to use for snapshots that don't carry their own.
func WithBox(b md.Box) Option {
	return func(W *Writer) {
		W.box = &b
	}
}

// RequireBox makes the Writer fail for snapshots without box bounds, instead of
// using the extents of the particles.
func RequireBox() Option {
	return func(W *Writer) {
		W.requireBox = true
	}
}

// NewWriter creates the file name and returns a Writer that will write floats
// with prec decimal digits.
func NewWriter(name string, prec int, opts ...Option) (*Writer, error) {
	w, err := md.Create(name)
	if err != nil {
		return nil, md.Decorate(err, "dump.NewWriter")
	}
	W := &Writer{w: w, filename: name, prec: prec, writeable: true}
	for _, o := range opts {
		o(W)
	}
	return W, nil
}

// bounds returns the box bounds for s: its own, the ones given to the writer, or
// the extents of its particles, in that order.
func (W *Writer) bounds(s *md.Snapshot) (md.Box, error) {
	if s.Box != nil {
		return *s.Box, nil
	}
	if W.box != nil {
		return *W.box, nil
	}
	if !W.requireBox {
		if b, ok := s.Extents(); ok {
			return b, nil
		}
	}
	return md.Box{}, md.Errorf(md.ErrMissingBoxBounds, W.filename, "dump.WriteSnapshot", "no box bounds for timestep %d", s.Step)
}

// WriteSnapshot writes the timestep, number of atoms, box bounds and atoms of s.
// It returns an md.ErrMissingBoxBounds Error, and writes nothing, if no bounds are available.
func (W *Writer) WriteSnapshot(s *md.Snapshot) error {
	if !W.writeable {
		return md.Errorf(md.ErrIO, W.filename, "dump.WriteSnapshot", "writer is closed")
	}
	b, err := W.bounds(s)
	if err != nil {
		return err
	}
	p := W.prec
	bw := bufio.NewWriter(W.w)
	fmt.Fprintf(bw, "ITEM: TIMESTEP\n%d\nITEM: NUMBER OF ATOMS\n%d\n", s.Step, s.Len())
	fmt.Fprintf(bw, "ITEM: BOX BOUNDS pp pp pp\n")
	for i := 0; i < 3; i++ {
		fmt.Fprintf(bw, "%.*f %.*f\n", p, b.Lo[i], p, b.Hi[i])
	}
	fmt.Fprintf(bw, "ITEM: ATOMS id x y z vx vy vz\n")
	for _, a := range s.Particles {
		bw.WriteString(a.Format(p))
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return md.WrapError(md.ErrIO, W.filename, "dump.WriteSnapshot", err)
	}
	W.frames++
	return nil
}

// Frames returns the number of timesteps written so far.
func (W *Writer) Frames() int {
	return W.frames
}

// Close closes the file. The writer can't be used after this.
func (W *Writer) Close() error {
	if !W.writeable {
		return nil
	}
	W.writeable = false
	if err := W.w.Close(); err != nil {
		return md.WrapError(md.ErrIO, W.filename, "dump.Close", err)
	}
	return nil
}
