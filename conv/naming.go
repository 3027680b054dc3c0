/*
 * naming.go, part of gomdtools.
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

package conv

import (
	"path/filepath"
	"strings"

	md "github.com/misa-md/gomdtools"
)

// Format is an output format.
type Format int

const (
	FormatXyz Format = iota
	FormatText
	FormatDump
)

var formatNames = []string{"xyz", "text", "dump"}

func (F Format) String() string {
	if F < 0 || int(F) >= len(formatNames) {
		return "unknown"
	}
	return formatNames[F]
}

// ParseFormat returns the Format named s.
func ParseFormat(s string) (Format, error) {
	for i, n := range formatNames {
		if strings.EqualFold(s, n) {
			return Format(i), nil
		}
	}
	return 0, md.Errorf(md.ErrValidation, "", "ParseFormat", "unsupported format %q", s)
}

// Naming is the policy that maps inputs to output paths.
type Naming int

const (
	// NamingAuto merges all inputs for Dump, writes one output per input for
	// other formats when there are several inputs, and uses the declared
	// output for a single input.
	NamingAuto Naming = iota
	// NamingMerged writes every input, in order, to the declared output.
	NamingMerged
	// NamingPerInput writes each input to <dir(output)>/<base(input)>.<base(output)>.
	NamingPerInput
)

var namingNames = []string{"auto", "merged", "per-input"}

func (N Naming) String() string {
	if N < 0 || int(N) >= len(namingNames) {
		return "unknown"
	}
	return namingNames[N]
}

// ParseNaming returns the Naming named s.
func ParseNaming(s string) (Naming, error) {
	for i, n := range namingNames {
		if strings.EqualFold(s, n) {
			return Naming(i), nil
		}
	}
	return 0, md.Errorf(md.ErrValidation, "", "ParseNaming", "unsupported naming policy %q", s)
}

// resolve returns the concrete policy for n inputs written in format f.
func (N Naming) resolve(f Format, n int) Naming {
	if N != NamingAuto {
		return N
	}
	if f == FormatDump {
		return NamingMerged
	}
	if n > 1 {
		return NamingPerInput
	}
	return NamingMerged
}

// Job is one input and the path its snapshots are written to.
type Job struct {
	Input  string
	Output string
}

// PerInputName returns the output path for input when each input gets its own output.
func PerInputName(input, output string) string {
	return filepath.Join(filepath.Dir(output), filepath.Base(input)+"."+filepath.Base(output))
}

// Plan validates opts and returns the job for each input, in input order, and the
// naming policy in effect. No file is touched.
func Plan(inputs []string, opts Options) ([]Job, Naming, error) {
	if _, err := opts.validate(inputs); err != nil {
		return nil, 0, md.Decorate(err, "Plan")
	}
	naming := opts.Naming.resolve(opts.Format, len(inputs))
	jobs := make([]Job, 0, len(inputs))
	for _, in := range inputs {
		out := opts.Output
		if naming == NamingPerInput {
			out = PerInputName(in, opts.Output)
		}
		jobs = append(jobs, Job{Input: in, Output: out})
	}
	return jobs, naming, nil
}
