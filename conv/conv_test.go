package conv

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	md "github.com/misa-md/gomdtools"
	"github.com/misa-md/gomdtools/source"
	"github.com/misa-md/gomdtools/traj/bin"
	"github.com/misa-md/gomdtools/traj/xyz"
)

// atoms returns n particles with ids first, first+1... and x equal to the id.
func atoms(first uint32, n int) []md.Particle {
	ps := make([]md.Particle, n)
	for i := range ps {
		id := first + uint32(i)
		ps[i] = md.Particle{ID: id, X: float64(id), Y: 1, Z: 2, VX: 0.5}
	}
	return ps
}

// block is one rank block of a fixture.
type block struct {
	step uint64
	ps   []md.Particle
}

// writeBin writes the blocks, in order, to name in the misa standard.
func writeBin(t *testing.T, name string, blocks ...block) {
	t.Helper()
	std, err := bin.Lookup("misa")
	require.NoError(t, err)
	f, err := os.Create(name)
	require.NoError(t, err)
	defer f.Close()
	for _, b := range blocks {
		require.NoError(t, bin.WriteBlock(f, std, b.step, b.ps))
	}
}

// recorder is a sink that keeps what it is given.
type recorder struct {
	path   string
	snaps  []*md.Snapshot
	closed bool
}

func (R *recorder) WriteSnapshot(s *md.Snapshot) error {
	R.snaps = append(R.snaps, s)
	return nil
}

func (R *recorder) Close() error {
	R.closed = true
	return nil
}

func recorders(f Format) (map[Format]SinkFactory, *[]*recorder) {
	var opened []*recorder
	return map[Format]SinkFactory{f: func(path string, prec int) (md.Sink, error) {
		r := &recorder{path: path}
		opened = append(opened, r)
		return r, nil
	}}, &opened
}

func files(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestMergedDump(Te *testing.T) {
	in, out := Te.TempDir(), Te.TempDir()
	a, b := filepath.Join(in, "a.bin"), filepath.Join(in, "b.bin")
	writeBin(Te, a, block{0, atoms(1, 2)}, block{0, atoms(3, 1)}, block{10, atoms(1, 2)}, block{10, atoms(3, 1)})
	writeBin(Te, b, block{20, atoms(100, 1)}, block{20, atoms(200, 2)})
	opts := Options{Standard: "misa", Ranks: 2, Format: FormatDump, Precision: 3, Output: filepath.Join(out, "merged.dump")}

	rep, err := Run(context.Background(), opts, []string{a, b})
	require.NoError(Te, err)
	assert.Equal(Te, []string{"merged.dump"}, files(Te, out))
	assert.Equal(Te, NamingMerged, rep.Naming)
	require.Len(Te, rep.Results, 2)
	assert.Equal(Te, 2, rep.Results[0].Frames)
	assert.Equal(Te, 1, rep.Results[1].Frames)
	require.Len(Te, rep.Outputs, 1)
	assert.Len(Te, rep.Outputs[0].Digest, 64)
	assert.NotEmpty(Te, rep.RunID)

	raw, err := os.ReadFile(opts.Output)
	require.NoError(Te, err)
	data := string(raw)
	assert.Equal(Te, 3, strings.Count(data, "ITEM: TIMESTEP"))
	i0 := strings.Index(data, "ITEM: TIMESTEP\n0\n")
	i10 := strings.Index(data, "ITEM: TIMESTEP\n10\n")
	i20 := strings.Index(data, "ITEM: TIMESTEP\n20\n")
	assert.True(Te, 0 <= i0 && i0 < i10 && i10 < i20, data)
	assert.Contains(Te, data, "1 1.000 1.000 2.000 0.500 0.000 0.000\n2 2.000 1.000 2.000 0.500 0.000 0.000\n3 3.000")

	sinks, opened := recorders(FormatDump)
	opts.Sinks = sinks
	_, err = Run(context.Background(), opts, []string{a, b})
	require.NoError(Te, err)
	require.Len(Te, *opened, 1)
	rec := (*opened)[0]
	assert.True(Te, rec.closed)
	require.Len(Te, rec.snaps, 3)
	var ids []uint32
	for _, p := range rec.snaps[2].Particles {
		ids = append(ids, p.ID)
	}
	assert.Equal(Te, []uint32{100, 200, 201}, ids)
}

func TestPerInputXyz(Te *testing.T) {
	in, out := Te.TempDir(), Te.TempDir()
	var inputs []string
	for _, n := range []string{"a.bin", "b.bin", "c.bin"} {
		p := filepath.Join(in, n)
		writeBin(Te, p, block{1, atoms(1, 3)})
		inputs = append(inputs, p)
	}
	opts := Options{Standard: "misa", Ranks: 1, Format: FormatXyz, Precision: 6, Output: filepath.Join(out, "out.xyz")}
	rep, err := Run(context.Background(), opts, inputs)
	require.NoError(Te, err)
	assert.ElementsMatch(Te, []string{"a.bin.out.xyz", "b.bin.out.xyz", "c.bin.out.xyz"}, files(Te, out))
	assert.Len(Te, rep.Outputs, 3)

	f, err := md.Open(filepath.Join(out, "b.bin.out.xyz"))
	require.NoError(Te, err)
	defer f.Close()
	s, err := xyz.NewReader(f, "b").Next()
	require.NoError(Te, err)
	assert.Equal(Te, uint64(1), s.Step)
	assert.Equal(Te, atoms(1, 3), s.Particles)
}

func TestSingleInputUsesOutput(Te *testing.T) {
	in, out := Te.TempDir(), Te.TempDir()
	a := filepath.Join(in, "a.bin")
	writeBin(Te, a, block{1, atoms(1, 1)})
	opts := Options{Standard: "misa", Ranks: 1, Format: FormatText, Output: filepath.Join(out, "single.txt.gz")}
	_, err := Run(context.Background(), opts, []string{a})
	require.NoError(Te, err)
	assert.Equal(Te, []string{"single.txt.gz"}, files(Te, out))
}

func TestValidationFirst(Te *testing.T) {
	in, out := Te.TempDir(), Te.TempDir()
	a := filepath.Join(in, "a.bin")
	writeBin(Te, a, block{1, atoms(1, 1)})
	base := Options{Standard: "misa", Ranks: 1, Format: FormatXyz, Precision: 6, Output: filepath.Join(out, "out.xyz")}
	tests := map[string]func(o *Options) []string{
		"zero ranks":       func(o *Options) []string { o.Ranks = 0; return []string{a} },
		"bad format":       func(o *Options) []string { o.Format = Format(7); return []string{a} },
		"bad standard":     func(o *Options) []string { o.Standard = "lammps"; return []string{a} },
		"bad naming":       func(o *Options) []string { o.Naming = Naming(-1); return []string{a} },
		"no inputs":        func(o *Options) []string { return nil },
		"no output":        func(o *Options) []string { o.Output = ""; return []string{a} },
		"negative prec":    func(o *Options) []string { o.Precision = -1; return []string{a} },
		"same output name": func(o *Options) []string { return []string{a, filepath.Join(out, "a.bin")} },
	}
	for name, mod := range tests {
		Te.Run(name, func(t *testing.T) {
			o := base
			inputs := mod(&o)
			_, err := Run(context.Background(), o, inputs)
			require.Error(t, err)
			assert.True(t, errors.Is(err, md.ErrValidation), err.Error())
			assert.Empty(t, files(t, out))
		})
	}
	_, err := ParseFormat("pdb")
	assert.True(Te, errors.Is(err, md.ErrValidation))
}

func TestDryRun(Te *testing.T) {
	out := Te.TempDir()
	opts := Options{Standard: "misa", Ranks: 4, Format: FormatXyz, Output: filepath.Join(out, "o.xyz"), Dry: true}
	rep, err := Run(context.Background(), opts, []string{"/nowhere/x.bin", "/nowhere/y.bin"})
	require.NoError(Te, err)
	assert.Empty(Te, files(Te, out))
	require.Len(Te, rep.Jobs, 2)
	assert.Equal(Te, filepath.Join(out, "y.bin.o.xyz"), rep.Jobs[1].Output)
	assert.Empty(Te, rep.Results)
}

func TestErrorPolicy(Te *testing.T) {
	in, out := Te.TempDir(), Te.TempDir()
	good := filepath.Join(in, "good.bin")
	writeBin(Te, good, block{1, atoms(1, 2)})
	bad := filepath.Join(in, "bad.bin")
	require.NoError(Te, os.WriteFile(bad, []byte{1, 2, 3}, 0o644))
	missing := filepath.Join(in, "missing.bin")
	inputs := []string{bad, missing, good}
	opts := Options{Standard: "misa", Ranks: 1, Format: FormatXyz, Naming: NamingPerInput, Output: filepath.Join(out, "o.xyz")}

	rep, err := Run(context.Background(), opts, inputs)
	require.Error(Te, err)
	assert.True(Te, errors.Is(err, md.ErrFormat), err.Error())
	assert.Empty(Te, rep.Results)

	opts.KeepGoing = true
	rep, err = Run(context.Background(), opts, inputs)
	require.Error(Te, err)
	assert.True(Te, errors.Is(err, md.ErrFormat))
	assert.True(Te, errors.Is(err, md.ErrIO))
	require.Len(Te, rep.Results, 1)
	assert.Equal(Te, good, rep.Results[0].Input)
	require.Len(Te, rep.Outputs, 1)
	assert.Equal(Te, filepath.Join(out, "good.bin.o.xyz"), rep.Outputs[0].Path)
}

func TestPerRankFiles(Te *testing.T) {
	in := Te.TempDir()
	run := filepath.Join(in, "run.bin")
	writeBin(Te, run+".0", block{5, atoms(1, 2)}, block{6, atoms(1, 2)})
	writeBin(Te, run+".1", block{5, atoms(3, 2)}, block{6, atoms(3, 2)})
	sinks, opened := recorders(FormatXyz)
	std, _ := bin.Lookup("misa")

	res, err := Convert(context.Background(), source.Local{}, std, run, 2, &recorder{})
	require.NoError(Te, err)
	assert.Equal(Te, 2, res.Shards)
	assert.Equal(Te, 2, res.Frames)
	assert.Equal(Te, 4, res.Atoms)

	_, err = Run(context.Background(), Options{Standard: "misa", Ranks: 3, Output: "x.xyz", Sinks: sinks}, []string{run})
	assert.True(Te, errors.Is(err, md.ErrRankCount), err)
	require.Len(Te, *opened, 1)
	assert.Empty(Te, (*opened)[0].snaps)
}

func TestDigest(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "f")
	require.NoError(Te, os.WriteFile(name, nil, 0o644))
	d, err := Digest(name)
	require.NoError(Te, err)
	//BLAKE3 of the empty input.
	assert.Equal(Te, "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262", d)
	_, err = Digest(name + "x")
	assert.True(Te, errors.Is(err, md.ErrIO))
}

func TestNaming(Te *testing.T) {
	n, err := ParseNaming("per-input")
	require.NoError(Te, err)
	assert.Equal(Te, NamingPerInput, n)
	assert.Equal(Te, "merged", NamingMerged.String())
	assert.Equal(Te, NamingMerged, NamingAuto.resolve(FormatDump, 3))
	assert.Equal(Te, NamingPerInput, NamingAuto.resolve(FormatText, 2))
	assert.Equal(Te, NamingMerged, NamingAuto.resolve(FormatText, 1))
	assert.Equal(Te, "out/a.bin.o.xyz", PerInputName("in/a.bin", "out/o.xyz"))
	assert.Equal(Te, "a.bin.o.xyz", PerInputName("/in/a.bin", "o.xyz"))
	f, err := ParseFormat("DUMP")
	require.NoError(Te, err)
	assert.Equal(Te, FormatDump, f)
}

func TestDumpBox(Te *testing.T) {
	in, out := Te.TempDir(), Te.TempDir()
	a := filepath.Join(in, "a.bin")
	writeBin(Te, a, block{1, atoms(1, 2)})
	ctx := context.Background()
	opts := Options{Standard: "misa", Ranks: 1, Format: FormatDump, Precision: 1, Output: filepath.Join(out, "r.dump"), RequireBox: true}

	rep, err := Run(ctx, opts, []string{a})
	require.Error(Te, err)
	assert.True(Te, errors.Is(err, md.ErrMissingBoxBounds), err.Error())
	raw, err := os.ReadFile(opts.Output)
	require.NoError(Te, err)
	assert.Empty(Te, string(raw))
	require.Len(Te, rep.Outputs, 1)
	assert.True(Te, rep.Outputs[0].Partial)

	opts.Box = &md.Box{Hi: [3]float64{10, 20, 30}}
	rep, err = Run(ctx, opts, []string{a})
	require.NoError(Te, err)
	assert.False(Te, rep.Outputs[0].Partial)
	raw, err = os.ReadFile(opts.Output)
	require.NoError(Te, err)
	assert.Contains(Te, string(raw), "ITEM: BOX BOUNDS pp pp pp\n0.0 10.0\n0.0 20.0\n0.0 30.0\nITEM: ATOMS")

	opts.Box = &md.Box{Lo: [3]float64{1, 0, 0}}
	opts.Output = filepath.Join(out, "bad.dump")
	_, err = Run(ctx, opts, []string{a})
	assert.True(Te, errors.Is(err, md.ErrValidation))
	assert.Equal(Te, []string{"r.dump"}, files(Te, out))
}

func TestParseBox(Te *testing.T) {
	b, err := ParseBox(nil)
	require.NoError(Te, err)
	assert.Nil(Te, b)
	b, err = ParseBox([]float64{-1, 1, -2, 2, -3, 3})
	require.NoError(Te, err)
	assert.Equal(Te, md.Box{Lo: [3]float64{-1, -2, -3}, Hi: [3]float64{1, 2, 3}}, *b)
	_, err = ParseBox([]float64{0, 1, 0, 1, 0})
	assert.True(Te, errors.Is(err, md.ErrValidation))
}

func TestDefaults(Te *testing.T) {
	in, out := Te.TempDir(), Te.TempDir()
	a := filepath.Join(in, "a.bin")
	writeBin(Te, a, block{1, atoms(4, 1)})
	opts := Options{Ranks: 1, Format: FormatXyz, Output: filepath.Join(out, "o.xyz")}
	_, err := Run(context.Background(), opts, []string{a})
	require.NoError(Te, err)
	raw, err := os.ReadFile(opts.Output)
	require.NoError(Te, err)
	//misa is read when no standard is named, and precision 0 writes no decimals.
	assert.Equal(Te, "1\nstep=1\n4 4 1 2 0 0 0\n", string(raw))
}

func TestMergedPartial(Te *testing.T) {
	in, out := Te.TempDir(), Te.TempDir()
	good := filepath.Join(in, "good.bin")
	writeBin(Te, good, block{1, atoms(1, 2)})
	bad := filepath.Join(in, "bad.bin")
	require.NoError(Te, os.WriteFile(bad, []byte{1, 2, 3}, 0o644))
	opts := Options{Standard: "misa", Ranks: 1, Format: FormatXyz, Naming: NamingMerged, Output: filepath.Join(out, "all.xyz")}

	rep, err := Run(context.Background(), opts, []string{good, bad, good})
	require.Error(Te, err)
	require.Len(Te, rep.Results, 1)
	require.Len(Te, rep.Outputs, 1)
	assert.True(Te, rep.Outputs[0].Partial)

	rep, err = Run(context.Background(), opts, []string{good, good})
	require.NoError(Te, err)
	require.Len(Te, rep.Outputs, 1)
	assert.False(Te, rep.Outputs[0].Partial)
}
