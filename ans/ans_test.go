package ans

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	md "github.com/misa-md/gomdtools"
)

const twoFrames = `3
step=0
1 0.5 0.5 0.5 1 0 0
2 1.5 0.5 2.5 -1 0 0
3 9.0 0.1 0.1 0 2 0
3
step=1
1 0.6 0.5 0.5 1 0 0
2 1.4 0.5 2.5 -1 0 0
3 1.0 0.2 0.2 0 2 0
`

func fixture(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(twoFrames), 0o644))
	return p
}

func TestData(Te *testing.T) {
	D := NewData([]float64{0, 1, 2, 3}, []float64{0, 0.5, 1, 2.999, 3, -1, 7})
	assert.Equal(Te, []float64{2, 1, 1}, D.View())
	assert.Equal(Te, 4, D.Total())
	assert.Equal(Te, 3, D.Outside())
	D.AddData(1.5, 3, 0)
	assert.Equal(Te, []float64{3, 2, 1}, D.View())
	assert.Equal(Te, 4, D.Outside())
	D.Normalize()
	assert.InDelta(Te, 1.0, D.Sum(), 1e-12)
	D.AddData(2.5)
	assert.True(Te, D.Normalized())
	D.UnNormalize()
	assert.InDeltaSlice(Te, []float64{3, 2, 2}, D.View(), 1e-12)

	j, err := json.Marshal(D)
	require.NoError(Te, err)
	D2 := new(Data)
	require.NoError(Te, json.Unmarshal(j, D2))
	assert.Equal(Te, D.View(), D2.View())
	assert.Equal(Te, D.Dividers(), D2.Dividers())
	assert.Error(Te, json.Unmarshal([]byte(`{"dividers":[0,1],"histo":[1,2]}`), D2))

	empty := NewData(nil, []float64{1, 2})
	assert.Equal(Te, 0, empty.Bins())
	assert.Equal(Te, 2, empty.Outside())
	assert.Equal(Te, "", empty.String())
}

func TestHisto(Te *testing.T) {
	frames := []*md.Snapshot{{Particles: []md.Particle{{X: 0.5, Y: 0.5}, {X: 1.5, Y: 2}, {X: 5}}}}
	box := md.NewBoxConfig([]float64{0, 0}, []uint64{2, 1})
	a, err := Histo(frames, box, 1)
	require.NoError(Te, err)
	H := a.(*HistoAnalysis)
	assert.Equal(Te, []float64{1, 1}, H.Axes[0].Data.View())
	assert.Equal(Te, 1, H.Axes[0].Data.Outside())
	assert.Equal(Te, []float64{2}, H.Axes[1].Data.View())
	assert.Equal(Te, 1, H.Axes[1].Data.Outside())
	assert.Equal(Te, 0, H.Axes[2].Data.Bins())
	assert.Equal(Te, 3, H.Axes[2].Data.Outside())
}

func TestStat(Te *testing.T) {
	frames := []*md.Snapshot{{Particles: []md.Particle{{X: 1, VX: 2}, {X: 3, VX: 4, Y: 2}}}}
	a, err := Stat(frames, md.NewBoxConfig(nil, []uint64{2, 2, 2}), 1)
	require.NoError(Te, err)
	S := a.(*StatAnalysis)
	assert.Equal(Te, 2.0, S.Position.Mean[0])
	assert.InDelta(Te, 1.4142135623730951, S.Position.StdDev[0], 1e-12)
	assert.Equal(Te, 3.0, S.Velocity.Mean[0])
	assert.Equal(Te, 1, S.Inside)
	assert.InDelta(Te, 2.0, S.Covariance[0][1], 1e-12)
	assert.Equal(Te, S.Covariance[0][1], S.Covariance[1][0])

	a, err = Stat([]*md.Snapshot{{Particles: []md.Particle{{X: 1}}}}, md.NewBoxConfig(nil, nil), 1)
	require.NoError(Te, err)
	assert.Equal(Te, 0.0, a.(*StatAnalysis).Position.StdDev[0])
	_, err = json.Marshal(a)
	assert.NoError(Te, err)

	a, err = Stat(nil, md.NewBoxConfig(nil, nil), 1)
	require.NoError(Te, err)
	assert.Equal(Te, 0, a.(*StatAnalysis).Atoms)
}

func TestOutputs(Te *testing.T) {
	outs, err := Outputs([]string{"a.xyz", "b.xyz"}, []string{"x", "y"})
	require.NoError(Te, err)
	assert.Equal(Te, []string{"x", "y"}, outs)
	outs, err = Outputs([]string{"d/a.xyz", "b.xyz"}, []string{"res/h.txt"})
	require.NoError(Te, err)
	assert.Equal(Te, []string{"res/a.xyz-h.txt", "res/b.xyz-h.txt"}, outs)
	_, err = Outputs([]string{"a", "b", "c"}, []string{"x", "y"})
	assert.True(Te, errors.Is(err, md.ErrValidation))
	_, err = Outputs(nil, []string{"x"})
	assert.True(Te, errors.Is(err, md.ErrValidation))
}

func TestRun(Te *testing.T) {
	in, out := Te.TempDir(), Te.TempDir()
	a := fixture(Te, in, "a.xyz")
	b := fixture(Te, in, "b.xyz")
	opts := Options{Algorithm: "histo", BoxStart: []float64{0}, BoxSize: []uint64{2, 1, 3}}
	res, err := Run(context.Background(), opts, []string{a, b}, []string{filepath.Join(out, "h.txt")})
	require.NoError(Te, err)
	require.Len(Te, res, 2)
	assert.Equal(Te, 2, res[1].Frames)
	raw, err := os.ReadFile(filepath.Join(out, "b.xyz-h.txt"))
	require.NoError(Te, err)
	text := string(raw)
	assert.True(Te, strings.HasPrefix(text, "# histo frames=2 atoms=6 lattice=1\n"), text)
	assert.Contains(Te, text, "# axis x start=0 cells=2 inside=5 outside=1\n0.0000 1.0000 2\n1.0000 2.0000 3\n")

	//the box of one file never leaks to the next.
	H0 := res[0].Analysis.(*HistoAnalysis)
	H1 := res[1].Analysis.(*HistoAnalysis)
	assert.Equal(Te, H0.Axes[2].Data.View(), H1.Axes[2].Data.View())
}

func TestRunFormats(Te *testing.T) {
	in, out := Te.TempDir(), Te.TempDir()
	a := fixture(Te, in, "a.xyz")
	ctx := context.Background()

	_, err := Run(ctx, Options{Algorithm: "stat", BoxSize: []uint64{10, 10, 10}}, []string{a}, []string{filepath.Join(out, "s.json")})
	require.NoError(Te, err)
	raw, err := os.ReadFile(filepath.Join(out, "s.json"))
	require.NoError(Te, err)
	var S StatAnalysis
	require.NoError(Te, json.Unmarshal(raw, &S))
	assert.Equal(Te, 6, S.Atoms)
	assert.Equal(Te, 6, S.Inside)

	_, err = Run(ctx, Options{Algorithm: "histo", BoxSize: []uint64{3, 3, 3}, LatticeConst: 0.5}, []string{a}, []string{filepath.Join(out, "h.svg")})
	require.NoError(Te, err)
	svg, err := os.ReadFile(filepath.Join(out, "h.svg"))
	require.NoError(Te, err)
	assert.Contains(Te, string(svg), "<svg")
	_, err = os.Stat(filepath.Join(out, "h.txt"))
	assert.NoError(Te, err)
}

func TestRunErrors(Te *testing.T) {
	in, out := Te.TempDir(), Te.TempDir()
	a := fixture(Te, in, "a.xyz")
	ctx := context.Background()
	_, err := Run(ctx, Options{Algorithm: "voronoi"}, []string{a}, []string{filepath.Join(out, "o")})
	assert.True(Te, errors.Is(err, md.ErrValidation))
	_, err = Run(ctx, Options{Algorithm: "stat", LatticeConst: -1}, []string{a}, []string{filepath.Join(out, "o")})
	assert.True(Te, errors.Is(err, md.ErrValidation))
	_, err = Run(ctx, Options{Algorithm: "stat"}, []string{a, a, a}, []string{"x", "y"})
	assert.True(Te, errors.Is(err, md.ErrValidation))
	entries, _ := os.ReadDir(out)
	assert.Empty(Te, entries)

	bad := filepath.Join(in, "bad.xyz")
	require.NoError(Te, os.WriteFile(bad, []byte("1\nc\n1 2 3\n"), 0o644))
	res, err := Run(ctx, Options{Algorithm: "stat"}, []string{a, bad}, []string{filepath.Join(out, "o")})
	assert.True(Te, errors.Is(err, md.ErrParse))
	assert.Len(Te, res, 1)
	assert.Equal(Te, []string{"a.xyz-o"}, names(Te, out))
}

func names(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var ret []string
	for _, e := range entries {
		ret = append(ret, e.Name())
	}
	return ret
}
