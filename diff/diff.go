/*
 * diff.go, part of gomdtools.
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

// Package diff compares two snapshots atom by atom, within a tolerance, and
// optionally allowing for atoms that crossed a periodic face of the box.
package diff

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	md "github.com/misa-md/gomdtools"
	"github.com/misa-md/gomdtools/internal/logging"
	"github.com/misa-md/gomdtools/source"
	"github.com/misa-md/gomdtools/traj/xyz"
)

// Options controls a comparison.
type Options struct {
	// ErrorLimit is the largest absolute difference, exclusive, allowed for a
	// component. Zero means exact equality.
	ErrorLimit float64
	Periodic   bool
	// BoxSize is the size of the box on each axis. Anything but exactly 3
	// values means a box of (0,0,0).
	BoxSize []float64
	// LegacyVelocity reads the files with md.ParseParticleLegacy.
	LegacyVelocity bool
}

// Box returns the box size used for periodic comparisons.
func (O Options) Box() [3]float64 {
	var b [3]float64
	if len(O.BoxSize) == 3 {
		copy(b[:], O.BoxSize)
	}
	return b
}

func (O Options) validate() error {
	if O.ErrorLimit < 0 || math.IsNaN(O.ErrorLimit) {
		return md.Errorf(md.ErrValidation, "", "diff.Options", "invalid error limit %g", O.ErrorLimit)
	}
	return nil
}

// Report is the result of a comparison.
type Report struct {
	Atoms      int
	Mismatches []int //0-based indexes of the atoms that differ
}

// Pass returns true if no atom differs.
func (R *Report) Pass() bool {
	return len(R.Mismatches) == 0
}

// WriteTo writes one line per mismatching atom and a summary line to w.
func (R *Report) WriteTo(w io.Writer) (int64, error) {
	var n int64
	for _, i := range R.Mismatches {
		c, err := fmt.Fprintf(w, "atom %d mismatch\n", i)
		n += int64(c)
		if err != nil {
			return n, err
		}
	}
	c, err := fmt.Fprintf(w, "%d of %d atoms differ\n", len(R.Mismatches), R.Atoms)
	return n + int64(c), err
}

// Snapshots compares the atoms of a and b by position in their lists: atom i
// of a with atom i of b. Ids are not compared.
// It returns an md.ErrSizeMismatch Error if a and b don't have the same number of atoms.
func Snapshots(a, b *md.Snapshot, opts Options) (*Report, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if a.Len() != b.Len() {
		return nil, md.Errorf(md.ErrSizeMismatch, "", "diff.Snapshots", "%d atoms against %d", a.Len(), b.Len())
	}
	R := &Report{Atoms: a.Len()}
	box := opts.Box()
	for i, p := range a.Particles {
		var eq bool
		if opts.Periodic {
			eq = p.NearEqPBC(b.Particles[i], opts.ErrorLimit, box)
		} else {
			eq = p.NearEq(b.Particles[i], opts.ErrorLimit)
		}
		if !eq {
			R.Mismatches = append(R.Mismatches, i)
		}
	}
	return R, nil
}

// first reads the first snapshot of the text file name.
func first(ctx context.Context, src source.Source, name string, legacy bool) (*md.Snapshot, error) {
	r, err := source.Open(ctx, src, name)
	if err != nil {
		return nil, md.Decorate(err, "diff.first")
	}
	defer r.Close()
	xr := xyz.NewReader(r, name)
	xr.LegacyVelocity = legacy
	s, err := xr.Next()
	if err == io.EOF {
		return nil, md.Errorf(md.ErrParse, name, "diff.first", "no snapshot in file")
	}
	if err != nil {
		return nil, md.Decorate(err, "diff.first")
	}
	return s, nil
}

// Files compares the first snapshot of the text files file1 and file2, read from src.
func Files(ctx context.Context, src source.Source, file1, file2 string, opts Options) (*Report, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if src == nil {
		src = source.Local{}
	}
	start := time.Now()
	logging.FileStart(ctx, "diff", file1, file2, "error_limit", opts.ErrorLimit, "periodic", opts.Periodic)
	a, err := first(ctx, src, file1, opts.LegacyVelocity)
	if err != nil {
		logging.FileFailed(ctx, "diff", file1, err)
		return nil, err
	}
	b, err := first(ctx, src, file2, opts.LegacyVelocity)
	if err != nil {
		logging.FileFailed(ctx, "diff", file2, err)
		return nil, err
	}
	R, err := Snapshots(a, b, opts)
	if err != nil {
		logging.FileFailed(ctx, "diff", file1, err)
		return nil, md.Decorate(err, "diff.Files")
	}
	logging.FileDone(ctx, "diff", file1, file2, time.Since(start), "atoms", R.Atoms, "mismatches", len(R.Mismatches))
	return R, nil
}
