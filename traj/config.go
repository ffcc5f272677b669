/*
 * config.go, part of xmol.
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
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"gopkg.in/yaml.v3"

	xmol "github.com/sizmailov/pyxmolpp2-sub001"
	"github.com/sizmailov/pyxmolpp2-sub001/chemjson"
	"github.com/sizmailov/pyxmolpp2-sub001/traj/mdcrd"
	"github.com/sizmailov/pyxmolpp2-sub001/traj/stf"
)

// FileConfig is one input file of a trajectory.
type FileConfig struct {
	Path string `yaml:"path"`
	//Format is the name of a registered format. If empty, it is taken from the extension.
	Format string `yaml:"format,omitempty"`
	//Box tells formats that can't find out by themselves (mdcrd) that frames carry a box.
	Box bool `yaml:"box,omitempty"`
}

// Config describes a trajectory, for instance:
//
//	topology: ref.json
//	files:
//	  - path: run1.stf
//	  - path: run2.stz
//	    format: stf
//
// Topology is a chemjson topology file. It can be omitted if the first file carries a topology.
type Config struct {
	Topology string       `yaml:"topology,omitempty"`
	Files    []FileConfig `yaml:"files"`
}

// ParseConfig parses and validates a YAML trajectory description.
func ParseConfig(data []byte) (*Config, error) {
	cfg := new(Config)
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, &Error{message: "can't parse configuration: " + err.Error(), deco: []string{"ParseConfig"}, critical: true, cause: err}
	}
	if len(cfg.Files) == 0 {
		return nil, &Error{message: ErrNoFiles, deco: []string{"ParseConfig"}, critical: true}
	}
	for i, f := range cfg.Files {
		if f.Path == "" {
			return nil, &Error{message: fmt.Sprintf("file %d has no path", i), deco: []string{"ParseConfig"}, critical: true}
		}
	}
	return cfg, nil
}

// LoadConfig reads a YAML trajectory description from path.
// Relative paths in it are taken relative to the directory of path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{message: err.Error(), filename: path, deco: []string{"LoadConfig"}, critical: true, cause: err}
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, errDecorate(err, "LoadConfig")
	}
	dir := filepath.Dir(path)
	rel := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	cfg.Topology = rel(cfg.Topology)
	for i := range cfg.Files {
		cfg.Files[i].Path = rel(cfg.Files[i].Path)
	}
	return cfg, nil
}

// Opener opens a trajectory file of some format. natoms is the number of
// atoms of the reference frame, or -1 when the file is the source of the reference.
type Opener func(fc FileConfig, natoms int, log *slog.Logger) (InputFile, error)

var formats = map[string]Opener{
	"stf": func(fc FileConfig, natoms int, log *slog.Logger) (InputFile, error) {
		r, err := stf.Open(fc.Path, stf.WithLogger(log))
		if err != nil {
			return nil, err
		}
		return r, nil
	},
	"mdcrd": func(fc FileConfig, natoms int, log *slog.Logger) (InputFile, error) {
		r, err := mdcrd.Open(fc.Path, natoms, mdcrd.WithBox(fc.Box), mdcrd.WithLogger(log))
		if err != nil {
			return nil, err
		}
		return r, nil
	},
}

// extensions maps file extensions to format names.
var extensions = map[string]string{
	".stf":   "stf",
	".stz":   "stf",
	".stl":   "stf",
	".str":   "stf",
	".mdcrd": "mdcrd",
	".crd":   "mdcrd",
}

// RegisterFormat makes a format available to Open, under name and the given extensions
// (with their leading dot). It is not safe to call concurrently with Open.
func RegisterFormat(name string, open Opener, exts ...string) {
	formats[name] = open
	for _, e := range exts {
		extensions[strings.ToLower(e)] = name
	}
}

func (fc FileConfig) opener() (Opener, error) {
	name := fc.Format
	if name == "" {
		name = extensions[strings.ToLower(filepath.Ext(fc.Path))]
	}
	open, ok := formats[name]
	if !ok {
		return nil, &Error{message: "unknown trajectory format", filename: fc.Path, deco: []string{"opener"}, critical: true}
	}
	return open, nil
}

// topologyCarrier is implemented by files that store their own topology.
type topologyCarrier interface {
	Topology(opts ...xmol.FrameOption) (*xmol.Frame, error)
}

// Open opens all the files of cfg and returns the trajectory over them.
// The reference frame comes from cfg.Topology, or from the first file.
func Open(ctx context.Context, cfg *Config, opts ...Option) (T *Trajectory, err error) {
	_, span := startSpan(ctx, "Open", attribute.Int("traj.files", len(cfg.Files)))
	defer func() { endSpan(span, err) }()
	if len(cfg.Files) == 0 {
		return nil, &Error{message: ErrNoFiles, deco: []string{"Open"}, critical: true}
	}
	T = newTrajectory(opts)
	files := make([]InputFile, 0, len(cfg.Files))
	fail := func(err error) (*Trajectory, error) {
		for _, f := range files {
			f.Close()
		}
		return nil, errDecorate(err, "Open")
	}
	openFile := func(fc FileConfig, natoms int) error {
		open, err := fc.opener()
		if err != nil {
			return err
		}
		f, err := open(fc, natoms, T.log)
		if err != nil {
			return err
		}
		files = append(files, f)
		T.log.Debug("trajectory file opened", "file", fc.Path, "frames", f.NFrames(), "atoms", f.NAtoms())
		return nil
	}
	rest := cfg.Files
	switch {
	case cfg.Topology != "":
		data, err := os.ReadFile(cfg.Topology)
		if err != nil {
			return fail(&Error{message: err.Error(), filename: cfg.Topology, critical: true, cause: err})
		}
		T.ref, err = chemjson.UnmarshalTopology(data, xmol.WithLogger(T.log))
		if err != nil {
			return fail(&Error{message: err.Error(), filename: cfg.Topology, critical: true, cause: err})
		}
	default:
		if err := openFile(cfg.Files[0], -1); err != nil {
			return fail(err)
		}
		rest = cfg.Files[1:]
		c, ok := files[0].(topologyCarrier)
		if !ok {
			return fail(&Error{message: ErrNoTopology, filename: cfg.Files[0].Path, critical: true})
		}
		T.ref, err = c.Topology(xmol.WithLogger(T.log))
		if err != nil {
			return fail(err)
		}
	}
	for _, fc := range rest {
		if err := openFile(fc, T.ref.NAtoms()); err != nil {
			return fail(err)
		}
	}
	for i, f := range files {
		if err := T.Extend(f); err != nil {
			e := err.(*Error)
			e.filename = cfg.Files[i].Path
			return fail(e)
		}
	}
	span.SetAttributes(attribute.Int("traj.frames", T.n))
	return T, nil
}
