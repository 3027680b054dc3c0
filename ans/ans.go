/*
 * ans.go, part of gomdtools.
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

// Package ans runs analyses over text trajectories, inside a simulation box
// given by its start and its size in unit cells.
//
// Output names ending in .json get the analysis as JSON; names ending in
// .png, .svg or .pdf get a chart, when the algorithm has one, plus the text
// table next to it, with a .txt extension. Anything else gets the text table.
package ans

import (
	"context"
	"encoding/json"
	"math"
	"path/filepath"
	"strings"
	"time"

	md "github.com/misa-md/gomdtools"
	"github.com/misa-md/gomdtools/internal/logging"
	"github.com/misa-md/gomdtools/source"
	"github.com/misa-md/gomdtools/traj/xyz"
)

// Options controls an analysis batch.
type Options struct {
	Algorithm string
	BoxStart  []float64
	BoxSize   []uint64
	// LatticeConst is the edge of a unit cell. Zero means 1.
	LatticeConst float64
	Source       source.Source //nil means source.Local
}

func (O Options) lattice() float64 {
	if O.LatticeConst == 0 {
		return 1
	}
	return O.LatticeConst
}

// Result describes one analysed input.
type Result struct {
	Input    string
	Output   string
	Frames   int
	Analysis Analysis
}

// Outputs returns the output path for each input. With as many outputs as
// inputs they are paired in order. A single output is used as a suffix:
// <dir(output)>/<base(input)>-<base(output)>. Anything else is an
// md.ErrValidation Error.
func Outputs(inputs, outputs []string) ([]string, error) {
	if len(inputs) == 0 {
		return nil, md.Errorf(md.ErrValidation, "", "ans.Outputs", "no matching input files")
	}
	if len(outputs) == len(inputs) {
		ret := make([]string, len(outputs))
		copy(ret, outputs)
		return ret, nil
	}
	if len(outputs) != 1 {
		return nil, md.Errorf(md.ErrValidation, "", "ans.Outputs", "%d input files but %d output files", len(inputs), len(outputs))
	}
	out := outputs[0]
	ret := make([]string, 0, len(inputs))
	for _, in := range inputs {
		ret = append(ret, filepath.Join(filepath.Dir(out), filepath.Base(in)+"-"+filepath.Base(out)))
	}
	return ret, nil
}

// read returns every frame in the text file name.
func read(ctx context.Context, src source.Source, name string) ([]*md.Snapshot, error) {
	r, err := source.Open(ctx, src, name)
	if err != nil {
		return nil, md.Decorate(err, "ans.read")
	}
	defer r.Close()
	frames, err := xyz.NewReader(r, name).ReadAll()
	if err != nil {
		return nil, md.Decorate(err, "ans.read")
	}
	return frames, nil
}

// write puts a in the file name, in the form its extension says.
func write(a Analysis, input, name string) error {
	ext := strings.ToLower(filepath.Ext(name))
	if chartExt(name) {
		if h, ok := a.(*HistoAnalysis); ok {
			if err := saveChart(h, filepath.Base(input), name); err != nil {
				return err
			}
		}
		name = strings.TrimSuffix(name, filepath.Ext(name)) + ".txt"
	}
	w, err := md.Create(name)
	if err != nil {
		return md.Decorate(err, "ans.write")
	}
	if ext == ".json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(a)
	} else {
		_, err = a.WriteTo(w)
	}
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return md.WrapError(md.ErrIO, name, "ans.write", err)
	}
	return nil
}

// Run analyses each input with the algorithm in opts and writes the results
// to the outputs, named as Outputs says. Everything is validated before any file
// is opened. Each input gets a fresh copy of the box, normalized on its own.
// Run stops at the first failure, and returns the results so far.
func Run(ctx context.Context, opts Options, inputs, outputs []string) ([]Result, error) {
	alg, err := LookupAlgorithm(opts.Algorithm)
	if err != nil {
		return nil, err
	}
	if l := opts.lattice(); l <= 0 || math.IsNaN(l) || math.IsInf(l, 0) {
		return nil, md.Errorf(md.ErrValidation, "", "ans.Run", "invalid lattice constant %g", l)
	}
	outs, err := Outputs(inputs, outputs)
	if err != nil {
		return nil, err
	}
	src := opts.Source
	if src == nil {
		src = source.Local{}
	}
	if logging.GetRunID(ctx) == "" {
		ctx = logging.WithRunID(ctx, logging.NewRunID())
	}
	template := md.NewBoxConfig(opts.BoxStart, opts.BoxSize)
	var ret []Result
	for i, in := range inputs {
		start := time.Now()
		logging.FileStart(ctx, "ans", in, outs[i], "algorithm", opts.Algorithm, "source", src.String())
		box := template.Copy()
		box.Normalize()
		logging.DebugContext(ctx, "box", "input", in, "start", box.BoxStart, "size", box.BoxSize)
		frames, err := read(ctx, src, in)
		if err != nil {
			logging.FileFailed(ctx, "ans", in, err)
			return ret, err
		}
		logging.DebugContext(ctx, "frames read", "input", in, "frames", len(frames))
		a, err := alg(frames, box, opts.lattice())
		if err != nil {
			logging.FileFailed(ctx, "ans", in, err)
			return ret, md.Decorate(err, "ans.Run")
		}
		if err := write(a, in, outs[i]); err != nil {
			logging.FileFailed(ctx, "ans", in, err)
			return ret, err
		}
		ret = append(ret, Result{Input: in, Output: outs[i], Frames: len(frames), Analysis: a})
		logging.FileDone(ctx, "ans", in, outs[i], time.Since(start), "frames", len(frames))
	}
	return ret, nil
}
