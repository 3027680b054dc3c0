/*
 * text.go, part of gomdtools.
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

// Package text writes snapshots as aligned, human-readable columns.
// The files can be read back with xyz.Reader.
package text

import (
	"bufio"
	"fmt"
	"io"

	md "github.com/misa-md/gomdtools"
	"github.com/misa-md/gomdtools/traj/xyz"
)

const idWidth = 10

// Writer writes snapshots to a text file. It fulfills md.Sink.
type Writer struct {
	w         io.WriteCloser
	filename  string
	prec      int
	width     int
	writeable bool
}

// NewWriter creates the file name and returns a Writer that will write floats
// with prec decimal digits, right-aligned in columns.
func NewWriter(name string, prec int) (*Writer, error) {
	w, err := md.Create(name)
	if err != nil {
		return nil, md.Decorate(err, "text.NewWriter")
	}
	//sign, 6 integer digits and the point.
	return &Writer{w: w, filename: name, prec: prec, width: prec + 8, writeable: true}, nil
}

// WriteSnapshot writes the number of atoms, a comment line with the step and the
// column names, and one line per atom.
func (W *Writer) WriteSnapshot(s *md.Snapshot) error {
	if !W.writeable {
		return md.Errorf(md.ErrIO, W.filename, "text.WriteSnapshot", "writer is closed")
	}
	bw := bufio.NewWriter(W.w)
	fmt.Fprintf(bw, "%d\n# %s columns: id x y z vx vy vz\n", s.Len(), xyz.Comment(s))
	w, p := W.width, W.prec
	for _, a := range s.Particles {
		fmt.Fprintf(bw, "%*d %*.*f %*.*f %*.*f %*.*f %*.*f %*.*f\n", idWidth, a.ID,
			w, p, a.X, w, p, a.Y, w, p, a.Z, w, p, a.VX, w, p, a.VY, w, p, a.VZ)
	}
	if err := bw.Flush(); err != nil {
		return md.WrapError(md.ErrIO, W.filename, "text.WriteSnapshot", err)
	}
	return nil
}

// Close closes the file. The writer can't be used after this.
func (W *Writer) Close() error {
	if !W.writeable {
		return nil
	}
	W.writeable = false
	if err := W.w.Close(); err != nil {
		return md.WrapError(md.ErrIO, W.filename, "text.Close", err)
	}
	return nil
}
