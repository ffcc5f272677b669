/*
 * mdcrd.go, part of xmol.
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

package mdcrd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	xmol "github.com/sizmailov/pyxmolpp2-sub001"
	"github.com/sizmailov/pyxmolpp2-sub001/v3"
)

const (
	perLine    = 10 //numbers per coordinate line
	fieldWidth = 8
)

// linesPerFrame is the number of text lines taken by one frame.
func linesPerFrame(natoms int, box bool) int {
	n := (3*natoms + perLine - 1) / perLine
	if box {
		n++
	}
	return n
}

// Reader reads an Amber ASCII trajectory. The format doesn't store the number
// of atoms, or whether frames have a box line, so both are given to Open.
type Reader struct {
	filename string
	f        *os.File
	r        *bufio.Reader
	title    string
	natoms   int
	nframes  int
	box      bool
	next     int //index of the frame the next read returns
	readable bool
	scratch  []float64
	log      *slog.Logger
}

// Option configures a Reader.
type Option func(*Reader)

// WithLogger sets the logger of the reader.
func WithLogger(l *slog.Logger) Option {
	return func(R *Reader) {
		if l != nil {
			R.log = l
		}
	}
}

// WithBox tells the reader that every frame ends with a box line.
func WithBox(box bool) Option {
	return func(R *Reader) { R.box = box }
}

// Open opens the trajectory name, whose frames have natoms atoms. The file is
// scanned once to count the frames. An incomplete last frame is ignored.
func Open(name string, natoms int, opts ...Option) (*Reader, error) {
	if natoms <= 0 {
		return nil, Error{fmt.Sprintf("invalid number of atoms %d", natoms), name, []string{"Open"}, true}
	}
	R := &Reader{filename: name, natoms: natoms, log: slog.New(slog.DiscardHandler)}
	for _, o := range opts {
		o(R)
	}
	if err := R.reopen(); err != nil {
		return nil, errDecorate(err, "Open")
	}
	lines := 0
	for {
		line, err := R.r.ReadString('\n')
		if line != "" {
			lines++
		}
		if err != nil {
			break
		}
	}
	per := linesPerFrame(natoms, R.box)
	R.nframes = lines / per
	if lines%per != 0 {
		R.log.Warn("incomplete last frame in amber trajectory", "file", name, "lines", lines%per)
	}
	if err := R.reopen(); err != nil {
		return nil, errDecorate(err, "Open")
	}
	R.scratch = make([]float64, 3*natoms)
	R.log.Debug("amber trajectory opened", "file", name, "atoms", natoms, "frames", R.nframes)
	return R, nil
}

func (R *Reader) reopen() error {
	R.Close()
	var err error
	R.f, err = os.Open(R.filename)
	if err != nil {
		return Error{UnableToOpen + ": " + err.Error(), R.filename, []string{"reopen"}, true}
	}
	R.r = bufio.NewReader(R.f)
	title, err := R.r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		R.f.Close()
		return Error{"Can't read title: " + err.Error(), R.filename, []string{"reopen"}, true}
	}
	R.title = strings.TrimRight(title, "\r\n")
	R.next = 0
	R.readable = true
	return nil
}

// Title returns the first line of the file.
func (R *Reader) Title() string { return R.title }

// NAtoms returns the number of atoms per frame.
func (R *Reader) NAtoms() int { return R.natoms }

// Len returns the number of atoms per frame.
func (R *Reader) Len() int { return R.natoms }

// NFrames returns the number of complete frames in the file.
func (R *Reader) NFrames() int { return R.nframes }

// Readable returns true if the reader can be read from.
func (R *Reader) Readable() bool { return R.readable }

// parseFields reads the numbers of a line into dst. Amber writes fixed width
// fields which may touch each other, other writers separate them with spaces.
func parseFields(line string, dst []float64) error {
	line = strings.TrimRight(line, "\r\n")
	if len(line) >= fieldWidth*len(dst) {
		ok := true
		for i := range dst {
			v, err := strconv.ParseFloat(strings.TrimSpace(line[i*fieldWidth:(i+1)*fieldWidth]), 64)
			if err != nil {
				ok = false
				break
			}
			dst[i] = v
		}
		if ok {
			return nil
		}
	}
	fields := strings.Fields(line)
	if len(fields) != len(dst) {
		return fmt.Errorf("expected %d numbers, found %d in %q", len(dst), len(fields), line)
	}
	for i, s := range fields {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		dst[i] = v
	}
	return nil
}

// Next reads the next frame into c, and its box lengths into box if the file has
// them and box is not nil. A nil c skips the frame.
func (R *Reader) Next(c *v3.Matrix, box []float64) error {
	if !R.readable {
		return Error{TrajUnIni, R.filename, []string{"Next"}, true}
	}
	for k := 0; k < len(R.scratch); k += perLine {
		line, err := R.r.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			if errors.Is(err, io.EOF) && k == 0 {
				return newlastFrameError(R.filename, "Next")
			}
			return Error{ReadError + ": " + err.Error(), R.filename, []string{"Next"}, true}
		}
		if err := parseFields(line, R.scratch[k:min(k+perLine, len(R.scratch))]); err != nil {
			return Error{ReadError + ": " + err.Error(), R.filename, []string{"Next"}, true}
		}
	}
	if R.box {
		line, err := R.r.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return Error{"Can't read box: " + err.Error(), R.filename, []string{"Next"}, true}
		}
		var b [3]float64
		if err := parseFields(line, b[:]); err != nil {
			return Error{"Can't read box: " + err.Error(), R.filename, []string{"Next"}, true}
		}
		copy(box, b[:])
	}
	R.next++
	if c == nil {
		return nil
	}
	for i := 0; i < R.natoms; i++ {
		c.Set(i, 0, R.scratch[3*i])
		c.Set(i, 1, R.scratch[3*i+1])
		c.Set(i, 2, R.scratch[3*i+2])
	}
	return nil
}

func (R *Reader) seek(i int) error {
	if i < 0 || i > R.nframes {
		return Error{fmt.Sprintf("frame %d out of range [0,%d]", i, R.nframes), R.filename, []string{"seek"}, true}
	}
	if i < R.next || !R.readable {
		if err := R.reopen(); err != nil {
			return err
		}
	}
	for R.next < i {
		if err := R.Next(nil, nil); err != nil {
			return err
		}
	}
	return nil
}

// Advance moves the read position shift frames forward (or backward, if negative).
func (R *Reader) Advance(shift int) error {
	if err := R.seek(R.next + shift); err != nil {
		return errDecorate(err, "Advance")
	}
	return nil
}

// ReadFrame reads frame index into f in place. With a box, the cell of f is set
// to the orthorhombic box of the frame.
func (R *Reader) ReadFrame(index int, f *xmol.Frame) error {
	if f.NAtoms() != R.natoms {
		return Error{fmt.Sprintf("frame has %d atoms, trajectory %d", f.NAtoms(), R.natoms), R.filename, []string{"ReadFrame"}, true}
	}
	if index < 0 || index >= R.nframes {
		return Error{fmt.Sprintf("frame %d out of range [0,%d)", index, R.nframes), R.filename, []string{"ReadFrame"}, true}
	}
	if err := R.seek(index); err != nil {
		return errDecorate(err, "ReadFrame")
	}
	var box [3]float64
	if err := R.Next(f.Atoms().Values(), box[:]); err != nil {
		return errDecorate(err, "ReadFrame")
	}
	if R.box {
		f.Cell = xmol.UnitCellFromLengths(box[0], box[1], box[2], 90, 90, 90)
	}
	f.Index = index
	return nil
}

// Close closes the file.
func (R *Reader) Close() error {
	if !R.readable {
		return nil
	}
	R.readable = false
	return R.f.Close()
}

// Writer writes Amber ASCII trajectories.
type Writer struct {
	f        *os.File
	w        *bufio.Writer
	filename string
	natoms   int
	box      bool
}

// NewWriter creates name and writes the title line. Frames must have natoms atoms,
// and if box is true each one ends with a line with its box lengths.
func NewWriter(name, title string, natoms int, box bool) (*Writer, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, Error{UnableToOpen + ": " + err.Error(), name, []string{"NewWriter"}, true}
	}
	W := &Writer{f: f, w: bufio.NewWriter(f), filename: name, natoms: natoms, box: box}
	title = strings.ReplaceAll(title, "\n", " ")
	if _, err := W.w.WriteString(title + "\n"); err != nil {
		f.Close()
		return nil, Error{err.Error(), name, []string{"NewWriter"}, true}
	}
	return W, nil
}

// WriteFrame writes the coordinates of f, and the lengths of its cell vectors if
// the writer has boxes.
func (W *Writer) WriteFrame(f *xmol.Frame) error {
	if f.NAtoms() != W.natoms {
		return Error{fmt.Sprintf("frame has %d atoms, trajectory %d", f.NAtoms(), W.natoms), W.filename, []string{"WriteFrame"}, true}
	}
	c := f.Atoms().Values()
	n := 0
	for i := 0; i < W.natoms; i++ {
		for j := 0; j < 3; j++ {
			fmt.Fprintf(W.w, "%8.3f", c.At(i, j))
			if n++; n%perLine == 0 {
				W.w.WriteByte('\n')
			}
		}
	}
	if n%perLine != 0 {
		W.w.WriteByte('\n')
	}
	if W.box {
		l := f.Cell.Lengths()
		fmt.Fprintf(W.w, "%8.3f%8.3f%8.3f\n", l[0], l[1], l[2])
	}
	return nil
}

// Close flushes and closes the file.
func (W *Writer) Close() error {
	err := W.w.Flush()
	if err2 := W.f.Close(); err == nil {
		err = err2
	}
	if err != nil {
		return Error{err.Error(), W.filename, []string{"Close"}, true}
	}
	return nil
}

//Errors

func errDecorate(err error, caller string) error {
	switch e := err.(type) {
	case Error:
		e.deco = append(e.deco, caller)
		return e
	case *lastFrameError:
		e.Decorate(caller)
		return e
	}
	return Error{err.Error(), "", []string{caller}, true}
}

// Error is the error type of Amber trajectories.
type Error struct {
	message  string
	filename string //the input file that has problems, or empty string if none.
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("amber trajectory %s error: %s", err.filename, err.message)
}

// Decorate adds new information to the error.
func (E Error) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

func (err Error) FileName() string { return err.filename }

func (err Error) Format() string { return "mdcrd" }

func (err Error) Critical() bool { return err.critical }

const (
	TrajUnIni    = "Traj object uninitialized to read"
	ReadError    = "Error reading frame"
	UnableToOpen = "Unable to open file"
)

type lastFrameError struct {
	deco     []string
	fileName string
}

// NormalLastFrameTermination marks the error as a normal end of file.
func (E *lastFrameError) NormalLastFrameTermination() {}

func (E *lastFrameError) FileName() string { return E.fileName }

func (E *lastFrameError) Error() string { return "EOF" }

func (E *lastFrameError) Critical() bool { return false }

func (E *lastFrameError) Format() string { return "mdcrd" }

func (E *lastFrameError) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

func newlastFrameError(filename string, caller string) *lastFrameError {
	return &lastFrameError{fileName: filename, deco: []string{caller}}
}

// IsLastFrame is true if err marks the normal end of a trajectory.
func IsLastFrame(err error) bool {
	var l *lastFrameError
	return errors.As(err, &l)
}
