/*
 * conv.go, part of gomdtools.
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

// Package conv converts binary rank dumps into text trajectories.
//
// Convert does decode, merge and encode for one input. Run is the batch driver:
// it validates everything first, maps inputs to outputs with a Naming policy
// and converts the inputs in order, sequentially.
package conv

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/zeebo/blake3"

	md "github.com/misa-md/gomdtools"
	"github.com/misa-md/gomdtools/internal/logging"
	"github.com/misa-md/gomdtools/source"
	"github.com/misa-md/gomdtools/traj/bin"
	"github.com/misa-md/gomdtools/traj/dump"
	"github.com/misa-md/gomdtools/traj/text"
	"github.com/misa-md/gomdtools/traj/xyz"
)

// SinkFactory opens a sink writing to path with prec decimal digits.
type SinkFactory func(path string, prec int) (md.Sink, error)

// DefaultSinks returns the factories for the xyz, text and dump writers.
// dumpOpts are given to every dump writer.
func DefaultSinks(dumpOpts ...dump.Option) map[Format]SinkFactory {
	return map[Format]SinkFactory{
		FormatXyz: func(path string, prec int) (md.Sink, error) {
			w, err := xyz.NewWriter(path, prec)
			if err != nil {
				return nil, err
			}
			return w, nil
		},
		FormatText: func(path string, prec int) (md.Sink, error) {
			w, err := text.NewWriter(path, prec)
			if err != nil {
				return nil, err
			}
			return w, nil
		},
		FormatDump: func(path string, prec int) (md.Sink, error) {
			w, err := dump.NewWriter(path, prec, dumpOpts...)
			if err != nil {
				return nil, err
			}
			return w, nil
		},
	}
}

// ParseBox returns the box with the bounds xlo,xhi,ylo,yhi,zlo,zhi in vals.
// No values mean no box (nil). Any other count is an md.ErrValidation Error.
func ParseBox(vals []float64) (*md.Box, error) {
	if len(vals) == 0 {
		return nil, nil
	}
	if len(vals) != 6 {
		return nil, md.Errorf(md.ErrValidation, "", "ParseBox", "%d box values given, 6 expected: xlo,xhi,ylo,yhi,zlo,zhi", len(vals))
	}
	b := &md.Box{}
	for i := 0; i < 3; i++ {
		b.Lo[i], b.Hi[i] = vals[2*i], vals[2*i+1]
	}
	return b, nil
}

// Options controls a conversion batch.
type Options struct {
	Standard   string                 //name of the binary standard, see bin.Names. Empty means bin.DefaultStandard
	Ranks      int
	Format     Format
	Precision  int                    //decimal digits of the floats written, 0 included
	Output     string
	// Box are the bounds written to dump files for timesteps that carry none.
	// Without it the extents of the particles are used, unless RequireBox is set,
	// in which case such timesteps fail with md.ErrMissingBoxBounds.
	Box        *md.Box
	RequireBox bool
	Naming     Naming
	Dry        bool
	// KeepGoing continues with the next input after a failure. Run then
	// returns all the failures joined.
	KeepGoing  bool
	Sinks      map[Format]SinkFactory //nil means DefaultSinks, with Box and RequireBox
	Source     source.Source          //nil means source.Local
}

func (O Options) sinks() map[Format]SinkFactory {
	if O.Sinks == nil {
		var opts []dump.Option
		if O.Box != nil {
			opts = append(opts, dump.WithBox(*O.Box))
		}
		if O.RequireBox {
			opts = append(opts, dump.RequireBox())
		}
		return DefaultSinks(opts...)
	}
	return O.Sinks
}

func (O Options) source() source.Source {
	if O.Source == nil {
		return source.Local{}
	}
	return O.Source
}

// validate checks the options and the inputs before anything is opened, and
// returns the binary standard selected.
func (O Options) validate(inputs []string) (bin.Standard, error) {
	fail := func(format string, args ...any) (bin.Standard, error) {
		return bin.Standard{}, md.Errorf(md.ErrValidation, "", "Options.validate", format, args...)
	}
	if O.Ranks <= 0 {
		return fail("unsupported ranks value %d", O.Ranks)
	}
	if O.Format < FormatXyz || O.Format > FormatDump {
		return fail("unsupported format %d", int(O.Format))
	}
	if _, ok := O.sinks()[O.Format]; !ok {
		return fail("no writer for format %s", O.Format)
	}
	if O.Naming < NamingAuto || O.Naming > NamingPerInput {
		return fail("unsupported naming policy %d", int(O.Naming))
	}
	if O.Precision < 0 {
		return fail("negative precision %d", O.Precision)
	}
	if len(inputs) == 0 {
		return fail("no matching input files")
	}
	if O.Output == "" {
		return fail("no output file given")
	}
	if b := O.Box; b != nil {
		for i := 0; i < 3; i++ {
			if math.IsNaN(b.Lo[i]) || math.IsNaN(b.Hi[i]) || b.Lo[i] > b.Hi[i] {
				return fail("invalid box bounds %s", b)
			}
		}
	}
	name := O.Standard
	if name == "" {
		name = bin.DefaultStandard
	}
	std, err := bin.Lookup(name)
	if err != nil {
		return bin.Standard{}, md.Decorate(err, "Options.validate")
	}
	if O.Naming.resolve(O.Format, len(inputs)) == NamingPerInput {
		seen := make(map[string]string, len(inputs))
		for _, in := range inputs {
			out := PerInputName(in, O.Output)
			if prev, ok := seen[out]; ok {
				return fail("inputs %s and %s would both be written to %s", prev, in, out)
			}
			seen[out] = in
		}
	}
	return std, nil
}

// Result describes one converted input.
type Result struct {
	Input  string
	Output string
	Shards int //number of files read
	Frames int
	Atoms  int //atoms in the last frame
}

// Output is a file produced by a batch.
type Output struct {
	Path   string
	Digest string //hex BLAKE3-256 of the bytes on disk
	// Partial is set when some input failed after the file was opened, so the
	// file lacks some of the snapshots it should hold.
	Partial bool
}

// Report describes a batch run.
type Report struct {
	RunID   string
	Naming  Naming
	Jobs    []Job
	Results []Result
	Outputs []Output
}

// shards opens the streams for input. If input itself exists it is the only
// shard; otherwise one file per rank, input.0 to input.<ranks-1>, is expected.
func shards(ctx context.Context, src source.Source, input string, ranks int) ([]bin.Shard, []io.Closer, error) {
	var closers []io.Closer
	closeAll := func() {
		for _, c := range closers {
			c.Close()
		}
	}
	ok, err := src.Exists(ctx, input)
	if err != nil {
		return nil, nil, md.Decorate(err, "shards")
	}
	names := []string{input}
	if !ok {
		names = names[:0]
		for rank := 0; rank < ranks; rank++ {
			name := fmt.Sprintf("%s.%d", input, rank)
			ok, err := src.Exists(ctx, name)
			if err != nil {
				return nil, nil, md.Decorate(err, "shards")
			}
			if !ok {
				if rank == 0 {
					return nil, nil, md.Errorf(md.ErrIO, input, "shards", "neither %s nor %s found in %s", input, name, src)
				}
				return nil, nil, md.Errorf(md.ErrRankCount, input, "shards", "rank file %s not found: %d of %d ranks present", name, rank, ranks)
			}
			names = append(names, name)
		}
	}
	ret := make([]bin.Shard, 0, len(names))
	for _, name := range names {
		r, err := source.Open(ctx, src, name)
		if err != nil {
			closeAll()
			return nil, nil, md.Decorate(err, "shards")
		}
		closers = append(closers, r)
		ret = append(ret, bin.Shard{Name: name, R: r})
	}
	return ret, closers, nil
}

// Convert decodes input, merges its ranks and writes every timestep to sink,
// in order. The first failure aborts the conversion. The sink is not closed.
func Convert(ctx context.Context, src source.Source, std bin.Standard, input string, ranks int, sink md.Sink) (Result, error) {
	res := Result{Input: input}
	sh, closers, err := shards(ctx, src, input, ranks)
	if err != nil {
		return res, md.Decorate(err, "Convert")
	}
	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()
	res.Shards = len(sh)
	merger, err := bin.NewMerger(std, ranks, sh...)
	if err != nil {
		return res, md.Decorate(err, "Convert")
	}
	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		snap, err := merger.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return res, md.Decorate(err, "Convert")
		}
		if err := sink.WriteSnapshot(snap); err != nil {
			return res, md.Decorate(err, "Convert")
		}
		res.Frames++
		res.Atoms = snap.Len()
	}
	return res, nil
}

// Digest returns the hex BLAKE3-256 digest of the file name.
func Digest(name string) (string, error) {
	f, err := os.Open(name)
	if err != nil {
		return "", md.WrapError(md.ErrIO, name, "Digest", err)
	}
	defer f.Close()
	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", md.WrapError(md.ErrIO, name, "Digest", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// batch holds the state of one Run.
type batch struct {
	opts   Options
	std    bin.Standard
	src    source.Source
	newF   SinkFactory
	report *Report
	errs   []error
}

// fail records err for input. It returns true if the batch must stop.
func (B *batch) fail(ctx context.Context, input string, err error) bool {
	logging.FileFailed(ctx, "conv", input, err)
	B.errs = append(B.errs, err)
	return !B.opts.KeepGoing
}

func (B *batch) produced(ctx context.Context, path string, partial bool) {
	d, err := Digest(path)
	if err != nil {
		logging.WarnContext(ctx, "digest failed", "output", path, "error", err.Error())
		return
	}
	if partial {
		logging.WarnContext(ctx, "output is partial", "output", path)
	}
	B.report.Outputs = append(B.report.Outputs, Output{Path: path, Digest: d, Partial: partial})
}

func (B *batch) convert(ctx context.Context, job Job, sink md.Sink) error {
	start := time.Now()
	logging.FileStart(ctx, "conv", job.Input, job.Output, "standard", B.std.Name(), "ranks", B.opts.Ranks)
	res, err := Convert(ctx, B.src, B.std, job.Input, B.opts.Ranks, sink)
	if err != nil {
		return err
	}
	res.Output = job.Output
	B.report.Results = append(B.report.Results, res)
	logging.FileDone(ctx, "conv", job.Input, job.Output, time.Since(start), "frames", res.Frames, "atoms", res.Atoms)
	return nil
}

// merged writes every job to a single sink, opened before the first input and
// closed after the last.
func (B *batch) merged(ctx context.Context, jobs []Job) {
	out := B.opts.Output
	sink, err := B.newF(out, B.opts.Precision)
	if err != nil {
		B.errs = append(B.errs, err)
		logging.ErrorContext(ctx, "can't open output", "output", out, "error", err.Error())
		return
	}
	partial := false
	for _, job := range jobs {
		if err := B.convert(ctx, job, sink); err != nil {
			partial = true
			if B.fail(ctx, job.Input, err) {
				break
			}
		}
	}
	if err := sink.Close(); err != nil {
		B.errs = append(B.errs, err)
		return
	}
	B.produced(ctx, out, partial)
}

func (B *batch) perInput(ctx context.Context, jobs []Job) {
	for _, job := range jobs {
		sink, err := B.newF(job.Output, B.opts.Precision)
		if err != nil {
			if B.fail(ctx, job.Input, err) {
				return
			}
			continue
		}
		err = B.convert(ctx, job, sink)
		if cerr := sink.Close(); err == nil && cerr != nil {
			err = cerr
		}
		if err != nil {
			if B.fail(ctx, job.Input, err) {
				return
			}
			continue
		}
		B.produced(ctx, job.Output, false)
	}
}

// Run converts inputs as opts says. All the options are validated before any
// file is opened, so an invalid batch creates no file. With opts.Dry only the
// plan is computed and logged.
// The report is returned even if some input failed.
func Run(ctx context.Context, opts Options, inputs []string) (*Report, error) {
	std, err := opts.validate(inputs)
	if err != nil {
		return nil, md.Decorate(err, "Run")
	}
	jobs, naming, err := Plan(inputs, opts)
	if err != nil {
		return nil, md.Decorate(err, "Run")
	}
	runID := logging.GetRunID(ctx)
	if runID == "" {
		runID = logging.NewRunID()
		ctx = logging.WithRunID(ctx, runID)
	}
	B := &batch{
		opts:   opts,
		std:    std,
		src:    opts.source(),
		newF:   opts.sinks()[opts.Format],
		report: &Report{RunID: runID, Naming: naming, Jobs: jobs},
	}
	logging.InfoContext(ctx, "conversion planned", "inputs", len(jobs), "format", opts.Format.String(),
		"naming", naming.String(), "source", B.src.String(), "dry", opts.Dry)
	if opts.Dry {
		for _, job := range jobs {
			logging.InfoContext(ctx, "dry run", "input", job.Input, "output", job.Output)
		}
		return B.report, nil
	}
	if naming == NamingMerged {
		B.merged(ctx, jobs)
	} else {
		B.perInput(ctx, jobs)
	}
	return B.report, errors.Join(B.errs...)
}
