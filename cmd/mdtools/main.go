/*
 * main.go, part of gomdtools.
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

// Command mdtools post-processes molecular dynamics trajectories: it converts
// binary rank dumps to text formats, compares text snapshots, and runs simple
// analyses over them.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/misa-md/gomdtools/ans"
	"github.com/misa-md/gomdtools/conv"
	"github.com/misa-md/gomdtools/diff"
	"github.com/misa-md/gomdtools/internal/logging"
	"github.com/misa-md/gomdtools/source"
)

const version = "0.4.0"

// Globals are the flags shared by every command.
type Globals struct {
	Config    kong.ConfigFlag `help:"YAML file with default values for the flags"`
	LogFormat string          `name:"log-format" enum:"text,json" default:"text" help:"Log format (text, json)"`
	LogLevel  string          `name:"log-level" enum:"debug,info,warn,error" default:"info" help:"Log level"`

	MinIO MinIOFlags `embed:"" prefix:"minio-" group:"MinIO"`
}

// MinIOFlags are the connection settings used when inputs come from MinIO or S3.
type MinIOFlags struct {
	Endpoint  string `env:"MINIO_ENDPOINT" help:"MinIO endpoint, host:port"`
	AccessKey string `env:"MINIO_ACCESS_KEY" help:"MinIO access key"`
	SecretKey string `env:"MINIO_SECRET_KEY" help:"MinIO secret key"`
	Bucket    string `env:"MINIO_BUCKET" help:"Bucket to read from. If empty, inputs are bucket/key"`
	Secure    bool   `env:"MINIO_SECURE" help:"Use TLS to talk to MinIO"`
}

func (M MinIOFlags) source(fromMinIO bool) (source.Source, error) {
	if !fromMinIO {
		return source.Local{}, nil
	}
	return source.NewMinIO(source.MinIOConfig{
		Endpoint:  M.Endpoint,
		AccessKey: M.AccessKey,
		SecretKey: M.SecretKey,
		Bucket:    M.Bucket,
		Secure:    M.Secure,
	})
}

// CLI defines the command-line interface for mdtools.
type CLI struct {
	Globals

	Conv    ConvCmd    `cmd:"" help:"Convert binary rank dumps to xyz, text or dump files"`
	Diff    DiffCmd    `cmd:"" help:"Compare the first snapshot of two text files"`
	Ans     AnsCmd     `cmd:"" help:"Analyse text snapshots inside a box"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// env holds what commands need from the process.
type env struct {
	ctx    context.Context
	stdout io.Writer
	stderr io.Writer
}

// exitError carries a non-zero exit status that is not a failure to report.
type exitError struct {
	code int
	msg  string
}

func (E *exitError) Error() string { return E.msg }

// ConvCmd converts binary dumps.
type ConvCmd struct {
	Dry            bool      `help:"Only show which files would be written"`
	Input          []string  `short:"i" required:"" help:"Input binary files, or prefixes of per-rank files (<input>.0, <input>.1 ...)"`
	Output         string    `short:"o" required:"" help:"Output file, or output suffix when each input gets its own output"`
	Format         string    `enum:"xyz,text,dump" default:"xyz" help:"Output format (xyz, text, dump)"`
	Precision      int       `default:"6" help:"Decimal digits of the floats written"`
	Standard       string    `default:"misa" help:"Binary standard of the inputs (misa, misa-be, plain, compact)"`
	Ranks          int       `default:"1" help:"Number of ranks that wrote each input"`
	KeepGoing      bool      `name:"keep-going" help:"Go on with the next input after a failure"`
	Naming         string    `enum:"auto,merged,per-input" default:"auto" help:"Output naming (auto, merged, per-input)"`
	InputFromMinIO bool      `name:"input-from-minio" help:"Read the inputs from MinIO or S3"`
	Box            []float64 `help:"Box bounds for dump files, xlo,xhi,ylo,yhi,zlo,zhi. Without it the extents of the atoms are used"`
	RequireBox     bool      `name:"require-box" help:"Fail dump timesteps that have no box bounds instead of using the extents of the atoms"`
}

func (c *ConvCmd) Run(g *Globals, e *env) error {
	format, err := conv.ParseFormat(c.Format)
	if err != nil {
		return err
	}
	naming, err := conv.ParseNaming(c.Naming)
	if err != nil {
		return err
	}
	box, err := conv.ParseBox(c.Box)
	if err != nil {
		return err
	}
	src, err := g.MinIO.source(c.InputFromMinIO)
	if err != nil {
		return err
	}
	rep, err := conv.Run(e.ctx, conv.Options{
		Standard:   c.Standard,
		Ranks:      c.Ranks,
		Format:     format,
		Precision:  c.Precision,
		Output:     c.Output,
		Naming:     naming,
		Dry:        c.Dry,
		KeepGoing:  c.KeepGoing,
		Box:        box,
		RequireBox: c.RequireBox,
		Source:     src,
	}, c.Input)
	if rep != nil {
		for _, j := range rep.Jobs {
			if c.Dry {
				fmt.Fprintf(e.stdout, "%s -> %s\n", j.Input, j.Output)
			}
		}
		for _, o := range rep.Outputs {
			if o.Partial {
				fmt.Fprintf(e.stdout, "%s  %s (partial)\n", o.Digest, o.Path)
				continue
			}
			fmt.Fprintf(e.stdout, "%s  %s\n", o.Digest, o.Path)
		}
	}
	return err
}

// DiffCmd compares two text files.
type DiffCmd struct {
	Error            float64   `default:"0" help:"Largest difference allowed per component, exclusive. 0 means exact"`
	File1            string    `name:"file-1" required:"" help:"First file"`
	File2            string    `name:"file-2" required:"" help:"Second file"`
	PeriodicChecking bool      `name:"periodic-checking" help:"Accept positions that differ by the box size"`
	SimBox           []float64 `name:"sim-box" help:"Box size x,y,z for periodic checking"`
	LegacyVelocity   bool      `name:"legacy-velocity" help:"Read vy from the vz column, as older tools did"`
}

func (c *DiffCmd) Run(e *env) error {
	R, err := diff.Files(e.ctx, source.Local{}, c.File1, c.File2, diff.Options{
		ErrorLimit:     c.Error,
		Periodic:       c.PeriodicChecking,
		BoxSize:        c.SimBox,
		LegacyVelocity: c.LegacyVelocity,
	})
	if err != nil {
		return err
	}
	if _, err := R.WriteTo(e.stdout); err != nil {
		return err
	}
	if !R.Pass() {
		return &exitError{code: 1, msg: fmt.Sprintf("%d atoms differ", len(R.Mismatches))}
	}
	return nil
}

// AnsCmd analyses text files.
type AnsCmd struct {
	Input          []string  `short:"i" required:"" help:"Input text files"`
	Output         []string  `short:"o" required:"" help:"Output files, one per input, or a single suffix"`
	Verbose        bool      `short:"v" help:"Log debug messages"`
	InputFromMinIO bool      `name:"input-from-minio" help:"Read the inputs from MinIO or S3"`
	BoxStart       []float64 `name:"box-start" help:"Start of the box x,y,z"`
	BoxSize        []uint64  `name:"box-size" help:"Size of the box in unit cells x,y,z"`
	Algorithm      string    `default:"histo" enum:"histo,stat" help:"Analysis to run (histo, stat)"`
	LatticeConst   float64   `name:"lattice-const" default:"1" help:"Edge of a unit cell"`
}

func (c *AnsCmd) Run(g *Globals, e *env) error {
	if c.Verbose {
		if err := setupLogging(e.stderr, "debug", g.LogFormat); err != nil {
			return err
		}
	}
	src, err := g.MinIO.source(c.InputFromMinIO)
	if err != nil {
		return err
	}
	res, err := ans.Run(e.ctx, ans.Options{
		Algorithm:    c.Algorithm,
		BoxStart:     c.BoxStart,
		BoxSize:      c.BoxSize,
		LatticeConst: c.LatticeConst,
		Source:       src,
	}, c.Input, c.Output)
	for _, r := range res {
		fmt.Fprintf(e.stdout, "file %s analysed, saved at %s\n", r.Input, r.Output)
	}
	return err
}

// VersionCmd prints the version.
type VersionCmd struct{}

func (c *VersionCmd) Run(e *env) error {
	fmt.Fprintf(e.stdout, "mdtools %s\n", version)
	return nil
}

func setupLogging(w io.Writer, level, format string) error {
	l, err := logging.ParseLevel(level)
	if err != nil {
		return err
	}
	f, err := logging.ParseFormat(format)
	if err != nil {
		return err
	}
	logging.InitLogger(w, l, f)
	return nil
}

// run parses args, runs the command, and returns the exit status.
func run(args []string, stdout, stderr io.Writer) int {
	var cli CLI
	code := -1
	parser, err := kong.New(&cli,
		kong.Name("mdtools"),
		kong.Description("Molecular dynamics trajectory tools"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Configuration(yamlLoader),
		kong.Writers(stdout, stderr),
		kong.Exit(func(c int) { code = c }),
	)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	kctx, err := parser.Parse(args)
	if code >= 0 {
		//help or version output already written.
		return code
	}
	if err != nil {
		parser.Errorf("%s", err)
		return 2
	}
	if err := setupLogging(stderr, cli.LogLevel, cli.LogFormat); err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	e := &env{ctx: context.Background(), stdout: stdout, stderr: stderr}
	err = kctx.Run(&cli.Globals, e)
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	if err != nil {
		fmt.Fprintf(stderr, "mdtools: %s\n", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
