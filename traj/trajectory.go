/*
 * trajectory.go, part of xmol.
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
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"

	xmol "github.com/sizmailov/pyxmolpp2-sub001"
)

// InputFile is a source of frames, all with the same atoms in the same order.
// ReadFrame writes the coordinates of frame index into f, which has NAtoms atoms,
// without reallocating it. Advance moves the read position of sequential readers
// by shift frames. ReadFrame must work for any index regardless.
type InputFile interface {
	NFrames() int
	NAtoms() int
	ReadFrame(index int, f *xmol.Frame) error
	Advance(shift int) error
	Close() error
}

// portion is one input file and the global index of its first frame.
type portion struct {
	file  InputFile
	begin int
}

// Trajectory is a sequence of frames sharing the topology of a reference frame,
// read from consecutive input files.
type Trajectory struct {
	ref      *xmol.Frame
	portions []portion
	n        int
	log      *slog.Logger
}

// Option configures a Trajectory.
type Option func(*Trajectory)

// WithLogger sets the logger of the trajectory.
func WithLogger(l *slog.Logger) Option {
	return func(T *Trajectory) {
		if l != nil {
			T.log = l
		}
	}
}

func newTrajectory(opts []Option) *Trajectory {
	T := &Trajectory{log: slog.New(slog.DiscardHandler)}
	for _, o := range opts {
		o(T)
	}
	return T
}

// New returns an empty trajectory with the topology of ref.
// Frames are read into copies of ref, ref itself is never modified.
func New(ref *xmol.Frame, opts ...Option) *Trajectory {
	if ref == nil {
		panic("traj: nil reference frame")
	}
	T := newTrajectory(opts)
	T.ref = ref
	return T
}

// Extend appends the frames of file to the trajectory. The trajectory takes
// ownership of file, and closes it on Close.
func (T *Trajectory) Extend(file InputFile) error {
	if file.NAtoms() != T.ref.NAtoms() {
		return &Error{message: fmt.Sprintf("%s: file has %d atoms, reference %d", ErrAtomMismatch, file.NAtoms(), T.ref.NAtoms()), deco: []string{"Extend"}, critical: false}
	}
	T.portions = append(T.portions, portion{file: file, begin: T.n})
	T.n += file.NFrames()
	T.log.Debug("trajectory portion added", "frames", file.NFrames(), "total", T.n)
	return nil
}

// Len returns the number of frames.
func (T *Trajectory) Len() int { return T.n }

// NAtoms returns the number of atoms of every frame.
func (T *Trajectory) NAtoms() int { return T.ref.NAtoms() }

// Reference returns the reference frame.
func (T *Trajectory) Reference() *xmol.Frame { return T.ref }

// locate returns the portion holding frame i.
func (T *Trajectory) locate(i int) (int, error) {
	if i < 0 || i >= T.n {
		return -1, &xmol.OutOfRangeError{Index: i, Len: T.n}
	}
	//the last portion starting at or before i, never an empty one.
	return sort.Search(len(T.portions), func(k int) bool { return T.portions[k].begin > i }) - 1, nil
}

// ReadFrame reads frame i into f, which must have the topology of the reference.
func (T *Trajectory) ReadFrame(ctx context.Context, i int, f *xmol.Frame) (err error) {
	ctx, span := startSpan(ctx, "ReadFrame", attribute.Int("traj.frame", i))
	defer func() {
		recordFrames(ctx, 1, err == nil)
		endSpan(span, err)
	}()
	p, err := T.locate(i)
	if err != nil {
		return errDecorate(err, "ReadFrame")
	}
	if err := T.portions[p].file.ReadFrame(i-T.portions[p].begin, f); err != nil {
		return errDecorate(err, "ReadFrame")
	}
	f.Index = i
	return nil
}

// Frame returns a new frame, copy of the reference, with the coordinates of frame i.
// The caller must Close it.
func (T *Trajectory) Frame(ctx context.Context, i int) (*xmol.Frame, error) {
	f := T.ref.Copy()
	if err := T.ReadFrame(ctx, i, f); err != nil {
		f.Close()
		return nil, errDecorate(err, "Frame")
	}
	return f, nil
}

// Iterate calls fn with frames start, start+step, ... up to stop (excluded, clamped to Len).
// All frames are read into the same copy of the reference, so smart references and
// selections taken on it inside fn stay valid for the whole iteration. The frame
// is closed when Iterate returns, which kills them.
// Iteration stops at the first error of fn, which is returned, or when ctx is done.
func (T *Trajectory) Iterate(ctx context.Context, start, stop, step int, fn func(*xmol.Frame) error) (err error) {
	if step <= 0 {
		return &Error{message: fmt.Sprintf("step must be positive, got %d", step), deco: []string{"Iterate"}}
	}
	if start < 0 || stop < 0 {
		return errDecorate(&xmol.OutOfRangeError{Index: min(start, stop), Len: T.n}, "Iterate")
	}
	stop = min(stop, T.n)
	ctx, span := startSpan(ctx, "Iterate",
		attribute.Int("traj.start", start),
		attribute.Int("traj.stop", stop),
		attribute.Int("traj.step", step),
	)
	t0 := time.Now()
	read := 0
	defer func() {
		recordFrames(ctx, read, err == nil)
		recordIterate(ctx, time.Since(t0), err == nil)
		span.SetAttributes(attribute.Int("traj.frames_read", read))
		endSpan(span, err)
	}()
	f := T.ref.Copy()
	defer f.Close()
	cur, next := -1, 0 //current portion and the local index its reader is at
	for i := start; i < stop; i += step {
		if err := ctx.Err(); err != nil {
			return err
		}
		p, err := T.locate(i)
		if err != nil {
			return errDecorate(err, "Iterate")
		}
		file, local := T.portions[p].file, i-T.portions[p].begin
		if p == cur && local > next {
			if err := file.Advance(local - next); err != nil {
				return errDecorate(err, "Iterate")
			}
		}
		if err := file.ReadFrame(local, f); err != nil {
			return errDecorate(err, "Iterate")
		}
		cur, next = p, local+1
		f.Index = i
		read++
		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every input file. The reference frame is left alone.
func (T *Trajectory) Close() error {
	var errs []error
	for _, p := range T.portions {
		if err := p.file.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	T.portions, T.n = nil, 0
	T.log.Debug("trajectory closed")
	return errors.Join(errs...)
}
