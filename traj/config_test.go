/*
 * config_test.go, part of xmol.
 *
 * Copyright 2024 The xmol authors
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

package traj

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	xmol "github.com/sizmailov/pyxmolpp2-sub001"
	"github.com/sizmailov/pyxmolpp2-sub001/chemjson"
	"github.com/sizmailov/pyxmolpp2-sub001/traj/mdcrd"
	"github.com/sizmailov/pyxmolpp2-sub001/traj/stf"
)

// writeSTF writes n frames of ref to name, atom i of frame k at (first+k, i, 0).
func writeSTF(Te *testing.T, name string, ref *xmol.Frame, first, n int) {
	Te.Helper()
	w, err := stf.NewWriter(name, ref, nil)
	require.NoError(Te, err)
	for k := 0; k < n; k++ {
		for i, a := range ref.Atoms().All() {
			a.SetR(xmol.XYZ{X: float64(first + k), Y: float64(i)})
		}
		require.NoError(Te, w.WriteFrame(ref))
	}
	require.NoError(Te, w.Close())
}

func TestParseConfig(Te *testing.T) {
	cfg, err := ParseConfig([]byte("topology: top.json\nfiles:\n  - path: a.stf\n  - path: b.dat\n    format: stf\n"))
	require.NoError(Te, err)
	assert.Equal(Te, "top.json", cfg.Topology)
	assert.Equal(Te, []FileConfig{{Path: "a.stf"}, {Path: "b.dat", Format: "stf"}}, cfg.Files)

	_, err = ParseConfig([]byte("topology: top.json\n"))
	assert.ErrorContains(Te, err, ErrNoFiles)
	_, err = ParseConfig([]byte("files:\n  - format: stf\n"))
	assert.Error(Te, err)
	_, err = ParseConfig([]byte("files: [\n"))
	assert.Error(Te, err)
}

func TestOpenFromConfig(Te *testing.T) {
	dir := Te.TempDir()
	ref := refFrame(Te, 5)
	writeSTF(Te, filepath.Join(dir, "part1.stf"), ref, 0, 3)
	writeSTF(Te, filepath.Join(dir, "part2.stz"), ref, 3, 2)
	conf := filepath.Join(dir, "traj.yaml")
	require.NoError(Te, os.WriteFile(conf, []byte("files:\n  - path: part1.stf\n  - path: part2.stz\n"), 0o644))

	cfg, err := LoadConfig(conf)
	require.NoError(Te, err)
	assert.Equal(Te, filepath.Join(dir, "part1.stf"), cfg.Files[0].Path)

	ctx := context.Background()
	T, err := Open(ctx, cfg, WithLogger(slog.New(slog.DiscardHandler)))
	require.NoError(Te, err)
	defer T.Close()
	assert.Equal(Te, 5, T.Len())
	assert.Equal(Te, 5, T.NAtoms())

	var xs []float64
	require.NoError(Te, T.Iterate(ctx, 0, T.Len(), 1, func(f *xmol.Frame) error {
		a, err := f.Atoms().At(4)
		require.NoError(Te, err)
		assert.Equal(Te, 4.0, a.R().Y)
		xs = append(xs, a.R().X)
		return nil
	}))
	assert.Equal(Te, []float64{0, 1, 2, 3, 4}, xs)
}

func TestOpenWithTopologyFile(Te *testing.T) {
	dir := Te.TempDir()
	ref := refFrame(Te, 3)
	writeSTF(Te, filepath.Join(dir, "run.stf"), ref, 10, 2)
	top, err := chemjson.MarshalTopology(ref)
	require.NoError(Te, err)
	require.NoError(Te, os.WriteFile(filepath.Join(dir, "top.json"), top, 0o644))

	cfg := &Config{Topology: filepath.Join(dir, "top.json"), Files: []FileConfig{{Path: filepath.Join(dir, "run.stf")}}}
	T, err := Open(context.Background(), cfg)
	require.NoError(Te, err)
	defer T.Close()
	f, err := T.Frame(context.Background(), 1)
	require.NoError(Te, err)
	defer f.Close()
	a, _ := f.Atoms().At(0)
	assert.Equal(Te, xmol.XYZ{X: 11}, a.R())

	//a topology with a different atom count is rejected.
	require.NoError(Te, os.WriteFile(filepath.Join(dir, "bad.json"), mustTopology(Te, refFrame(Te, 4)), 0o644))
	cfg.Topology = filepath.Join(dir, "bad.json")
	_, err = Open(context.Background(), cfg)
	var e *Error
	require.ErrorAs(Te, err, &e)
	assert.Equal(Te, filepath.Join(dir, "run.stf"), e.FileName())
}

func TestOpenMdcrd(Te *testing.T) {
	dir := Te.TempDir()
	ref := refFrame(Te, 4)
	require.NoError(Te, os.WriteFile(filepath.Join(dir, "top.json"), mustTopology(Te, ref), 0o644))
	writeSTF(Te, filepath.Join(dir, "eq.stf"), ref, 0, 2)
	w, err := mdcrd.NewWriter(filepath.Join(dir, "prod.mdcrd"), "production", 4, true)
	require.NoError(Te, err)
	ref.Cell = xmol.UnitCellFromLengths(20, 20, 20, 90, 90, 90)
	for k := 0; k < 3; k++ {
		for i, a := range ref.Atoms().All() {
			a.SetR(xmol.XYZ{X: float64(2 + k), Y: float64(i)})
		}
		require.NoError(Te, w.WriteFrame(ref))
	}
	require.NoError(Te, w.Close())

	conf := filepath.Join(dir, "traj.yaml")
	require.NoError(Te, os.WriteFile(conf, []byte(`
topology: top.json
files:
  - path: eq.stf
  - path: prod.mdcrd
    box: true
`), 0o644))
	cfg, err := LoadConfig(conf)
	require.NoError(Te, err)
	T, err := Open(context.Background(), cfg)
	require.NoError(Te, err)
	defer T.Close()
	assert.Equal(Te, 5, T.Len())
	var xs []float64
	var boxes []bool
	require.NoError(Te, T.Iterate(context.Background(), 0, T.Len(), 1, func(f *xmol.Frame) error {
		a, _ := f.Atoms().At(1)
		xs = append(xs, a.R().X)
		boxes = append(boxes, !f.Cell.Empty())
		return nil
	}))
	assert.Equal(Te, []float64{0, 1, 2, 3, 4}, xs)
	assert.Equal(Te, []bool{false, false, true, true, true}, boxes)
}

func mustTopology(Te *testing.T, f *xmol.Frame) []byte {
	Te.Helper()
	b, err := chemjson.MarshalTopology(f)
	require.NoError(Te, err)
	return b
}

func TestOpenErrors(Te *testing.T) {
	dir := Te.TempDir()
	ctx := context.Background()
	_, err := Open(ctx, &Config{})
	assert.ErrorContains(Te, err, ErrNoFiles)
	_, err = Open(ctx, &Config{Files: []FileConfig{{Path: filepath.Join(dir, "x.xyz")}}})
	assert.ErrorContains(Te, err, "unknown trajectory format")
	_, err = Open(ctx, &Config{Files: []FileConfig{{Path: filepath.Join(dir, "missing.stf")}}})
	assert.Error(Te, err)
	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(Te, err)

	//a format without topology needs a topology file.
	RegisterFormat("mem", func(fc FileConfig, natoms int, log *slog.Logger) (InputFile, error) {
		return &memFile{n: 2, natoms: 3}, nil
	}, ".mem")
	_, err = Open(ctx, &Config{Files: []FileConfig{{Path: "a.mem"}}})
	assert.ErrorContains(Te, err, ErrNoTopology)
}
