/*
 * xyz.go, part of gomdtools
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

// Package xyz reads and writes xyz-like trajectories where each atom line is
// "id x y z vx vy vz". The Reader also reads the files written by package text.
package xyz

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	md "github.com/misa-md/gomdtools"
)

// Writer writes snapshots to an xyz file. It fulfills md.Sink.
type Writer struct {
	w         io.WriteCloser
	filename  string
	prec      int
	writeable bool
	frames    int
}

// NewWriter creates the file name and returns a Writer that will write floats
// with prec decimal digits.
func NewWriter(name string, prec int) (*Writer, error) {
	w, err := md.Create(name)
	if err != nil {
		return nil, md.Decorate(err, "xyz.NewWriter")
	}
	return &Writer{w: w, filename: name, prec: prec, writeable: true}, nil
}

// Comment returns the comment line to write for s.
func Comment(s *md.Snapshot) string {
	if s.Comment != "" {
		return strings.ReplaceAll(s.Comment, "\n", " ")
	}
	return fmt.Sprintf("step=%d", s.Step)
}

// WriteSnapshot writes s as a new frame: the number of atoms, a comment line, and
// a line per atom.
func (W *Writer) WriteSnapshot(s *md.Snapshot) error {
	if !W.writeable {
		return md.Errorf(md.ErrIO, W.filename, "xyz.WriteSnapshot", "writer is closed")
	}
	bw := bufio.NewWriter(W.w)
	fmt.Fprintf(bw, "%d\n%s\n", s.Len(), Comment(s))
	for _, p := range s.Particles {
		bw.WriteString(p.Format(W.prec))
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return md.WrapError(md.ErrIO, W.filename, "xyz.WriteSnapshot", err)
	}
	W.frames++
	return nil
}

// Frames returns the number of snapshots written so far.
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
		return md.WrapError(md.ErrIO, W.filename, "xyz.Close", err)
	}
	return nil
}

// maxPrealloc is the largest number of particles allocated before they are read.
const maxPrealloc = 1 << 16

// Reader reads snapshots, one frame at a time, from an xyz or text file.
// It fulfills md.Traj.
type Reader struct {
	r        *bufio.Reader
	filename string
	line     int

	//LegacyVelocity makes the reader take both vy and vz from the last field of
	//each atom line, which is how older versions of the tools read these files.
	LegacyVelocity bool
}

// NewReader returns a Reader for r. filename is only used in errors.
func NewReader(r io.Reader, filename string) *Reader {
	return &Reader{r: bufio.NewReader(r), filename: filename}
}

func (R *Reader) readLine() (string, error) {
	str, err := R.r.ReadString('\n')
	if err == io.EOF && str != "" {
		err = nil
	}
	if err != nil {
		return "", err
	}
	R.line++
	return strings.TrimRight(str, "\r\n"), nil
}

// Next reads the next frame. It returns io.EOF if there are no more frames, and an
// md.ErrParse Error if the frame is ill formed.
func (R *Reader) Next() (*md.Snapshot, error) {
	var str string
	var err error
	//blank lines between frames are tolerated.
	for {
		str, err = R.readLine()
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			return nil, md.WrapError(md.ErrIO, R.filename, "xyz.Next", err)
		}
		if strings.TrimSpace(str) != "" {
			break
		}
	}
	natoms, err := strconv.Atoi(strings.TrimSpace(str))
	if err != nil || natoms < 0 {
		return nil, md.Errorf(md.ErrParse, R.filename, "xyz.Next", "line %d: can't read the number of atoms from %q", R.line, str)
	}
	//the count is not trusted for the allocation, append grows the slice.
	s := &md.Snapshot{Particles: make([]md.Particle, 0, min(natoms, maxPrealloc))}
	comment, err := R.readLine()
	if err != nil {
		return nil, md.Errorf(md.ErrParse, R.filename, "xyz.Next", "line %d: missing comment line", R.line+1)
	}
	s.Comment = comment
	s.Step = stepFromComment(comment)
	parse := md.ParseParticle
	if R.LegacyVelocity {
		parse = md.ParseParticleLegacy
	}
	for i := 0; i < natoms; i++ {
		str, err = R.readLine()
		if err != nil {
			return nil, md.Errorf(md.ErrParse, R.filename, "xyz.Next", "%d atoms declared, but only %d found", natoms, i)
		}
		p, err := parse(str)
		if err != nil {
			return nil, md.Errorf(md.ErrParse, R.filename, "xyz.Next", "line %d: %s", R.line, err.Error())
		}
		s.Particles = append(s.Particles, p)
	}
	return s, nil
}

// stepFromComment looks for a "step=N" field in the comment, and returns N, or 0.
func stepFromComment(c string) uint64 {
	for _, f := range strings.Fields(c) {
		if v, ok := strings.CutPrefix(f, "step="); ok {
			n, err := strconv.ParseUint(v, 10, 64)
			if err == nil {
				return n
			}
		}
	}
	return 0
}

// ReadAll reads every frame left in R.
func (R *Reader) ReadAll() ([]*md.Snapshot, error) {
	var ret []*md.Snapshot
	for {
		s, err := R.Next()
		if err == io.EOF {
			return ret, nil
		}
		if err != nil {
			return ret, err
		}
		ret = append(ret, s)
	}
}
