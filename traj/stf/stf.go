/*
 * stf.go, part of xmol.
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

package stf

import (
	"bufio"
	"compress/flate"
	"compress/gzip"
	"compress/lzw"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"

	xmol "github.com/sizmailov/pyxmolpp2-sub001"
	"github.com/sizmailov/pyxmolpp2-sub001/chemjson"
	"github.com/sizmailov/pyxmolpp2-sub001/v3"
)

const (
	lzwLitwidth int = 8
	defaultPrec int = 2
	//TopologyKey is the header key under which the writer stores the topology of the reference frame.
	TopologyKey = "topology"
	//PrecKey is the header key for the number of decimal places kept for coordinates.
	PrecKey = "prec"
)

//Write!

// Writer writes an STF trajectory.
type Writer struct {
	f         *os.File
	h         io.WriteCloser
	natoms    int
	filename  string
	writeable bool
	prec      int
}

// compressor returns the writer matching the last letter of the file name:
// 'l' lzw, 'z' gzip, 'r' raw deflate, anything else zstd.
func compressor(name string, level int) func(io.Writer) (io.WriteCloser, error) {
	switch strings.ToLower(name[len(name)-1:]) {
	case "l":
		return func(a io.Writer) (io.WriteCloser, error) { return lzw.NewWriter(a, lzw.MSB, lzwLitwidth), nil }
	case "z":
		if level < 0 {
			level = gzip.DefaultCompression
		}
		return func(a io.Writer) (io.WriteCloser, error) { return gzip.NewWriterLevel(a, level) }
	case "r":
		if level < 0 {
			level = flate.DefaultCompression
		}
		return func(a io.Writer) (io.WriteCloser, error) { return flate.NewWriter(a, level) }
	}
	zl := zstd.SpeedBestCompression
	if level >= 0 {
		zl = zstd.EncoderLevelFromZstd(level)
	}
	return func(a io.Writer) (io.WriteCloser, error) {
		return zstd.NewWriter(a, zstd.WithEncoderLevel(zl))
	}
}

func decompressor(name string) func(io.Reader) (io.ReadCloser, error) {
	switch strings.ToLower(name[len(name)-1:]) {
	case "l":
		return func(a io.Reader) (io.ReadCloser, error) { return lzw.NewReader(a, lzw.MSB, lzwLitwidth), nil }
	case "z":
		return func(a io.Reader) (io.ReadCloser, error) { return gzip.NewReader(a) }
	case "r":
		return func(a io.Reader) (io.ReadCloser, error) { return flate.NewReader(a), nil }
	}
	return func(a io.Reader) (io.ReadCloser, error) {
		r, err := zstd.NewReader(a)
		if err != nil {
			return nil, err
		}
		return zstdCloser{r}, nil
	}
}

// zstdCloser adapts *zstd.Decoder, whose Close returns nothing, to io.ReadCloser.
type zstdCloser struct {
	*zstd.Decoder
}

func (s zstdCloser) Close() error {
	s.Decoder.Close()
	return nil
}

// NewWriter creates the file name and writes the header. If ref is not nil its
// topology is stored in the header, and its atom count is the one every frame
// must have. Otherwise header must contain the "natoms" key.
// compressionLevel is passed to the codec, a negative value (or none) selects its default.
func NewWriter(name string, ref *xmol.Frame, header map[string]string, compressionLevel ...int) (*Writer, error) {
	level := -1
	if len(compressionLevel) > 0 {
		level = compressionLevel[0]
	}
	S := &Writer{filename: name, prec: defaultPrec}
	h := maps.Clone(header)
	if h == nil {
		h = make(map[string]string)
	}
	switch {
	case ref != nil:
		S.natoms = ref.NAtoms()
		top, err := chemjson.MarshalTopology(ref)
		if err != nil {
			return nil, Error{"Can't serialize topology: " + err.Error(), name, []string{"NewWriter"}, true}
		}
		h[TopologyKey] = string(top)
	default:
		n, err := strconv.Atoi(h["natoms"])
		if err != nil {
			return nil, Error{"No reference frame and no natoms in header", name, []string{"NewWriter"}, true}
		}
		S.natoms = n
	}
	delete(h, "natoms")
	if p, ok := h[PrecKey]; ok {
		prec, err := strconv.Atoi(p)
		if err != nil || prec < 0 {
			return nil, Error{fmt.Sprintf("Invalid precision %q", p), name, []string{"NewWriter"}, true}
		}
		S.prec = prec
	}
	h[PrecKey] = strconv.Itoa(S.prec)
	var err error
	S.f, err = os.Create(name)
	if err != nil {
		return nil, Error{UnableToOpen + ": " + err.Error(), name, []string{"NewWriter"}, true}
	}
	S.h, err = compressor(name, level)(S.f)
	if err != nil {
		S.f.Close()
		return nil, Error{"Can't start compression: " + err.Error(), name, []string{"NewWriter"}, true}
	}
	var b strings.Builder
	for _, k := range slices.Sorted(maps.Keys(h)) {
		fmt.Fprintf(&b, "%s=%s\n", k, h[k])
	}
	fmt.Fprintf(&b, "** %d\n", S.natoms)
	if _, err := io.WriteString(S.h, b.String()); err != nil {
		S.Close()
		return nil, Error{"Can't write header: " + err.Error(), name, []string{"NewWriter"}, true}
	}
	S.writeable = true
	return S, nil
}

// Len returns the number of atoms per frame.
func (S *Writer) Len() int {
	return S.natoms
}

// WriteFrame writes the coordinates and the box of f.
func (S *Writer) WriteFrame(f *xmol.Frame) error {
	var box []float64
	if !f.Cell.Empty() {
		box = f.Cell.Box()
	}
	if err := S.WNext(f.Atoms().Values(), box); err != nil {
		return errDecorate(err, "WriteFrame")
	}
	return nil
}

// WNext writes a frame with the given coordinates and, optionally, the 9 numbers of the box vectors.
func (S *Writer) WNext(coord *v3.Matrix, box ...[]float64) error {
	if !S.writeable {
		return Error{TrajUnIniWrite, S.filename, []string{"WNext"}, true}
	}
	if coord == nil {
		return Error{NilCoordinates, S.filename, []string{"WNext"}, true}
	}
	v := coord.NVecs()
	if v != S.natoms {
		return Error{fmt.Sprintf("%d coordinates given, but %d expected", v, S.natoms), S.filename, []string{"WNext"}, true}
	}
	var b strings.Builder
	var floats [3]float64
	for i := 0; i < v; i++ {
		floats[0], floats[1], floats[2] = coord.At(i, 0), coord.At(i, 1), coord.At(i, 2)
		b.WriteString(coordsEncode(floats, S.prec))
	}
	if len(box) > 0 && len(box[0]) >= 9 {
		bx := box[0]
		fmt.Fprintf(&b, "* %.4f %.4f %.4f %.4f %.4f %.4f %.4f %.4f %.4f\n", bx[0], bx[1], bx[2], bx[3], bx[4], bx[5], bx[6], bx[7], bx[8])
	} else {
		b.WriteString("*\n")
	}
	if _, err := io.WriteString(S.h, b.String()); err != nil {
		return Error{"Can't write frame: " + err.Error(), S.filename, []string{"WNext"}, true}
	}
	return nil
}

// Close flushes and closes the file.
func (S *Writer) Close() error {
	if S == nil || !S.writeable {
		return nil
	}
	S.writeable = false
	err := S.h.Close()
	if err2 := S.f.Close(); err == nil {
		err = err2
	}
	if err != nil {
		return Error{"Can't close: " + err.Error(), S.filename, []string{"Close"}, true}
	}
	return nil
}

func precMult(prec int) float64 {
	if prec == defaultPrec {
		return 100.0
	}
	return math.Pow(10.0, float64(prec))
}

func coordsEncode(f [3]float64, prec int) string {
	p := precMult(prec)
	var temp [3]int
	for i, v := range f {
		temp[i] = int(math.RoundToEven(v * p))
	}
	return fmt.Sprintf("%d %d %d\n", temp[0], temp[1], temp[2])
}

func coordsDecode(str string, temp *[3]float64, prec int) error {
	p := precMult(prec)
	s := strings.Fields(str)
	if len(s) < 3 {
		return fmt.Errorf("Ill formated coordinates line in stf: Too few fields: %s", str)
	}
	if len(s) > 3 {
		return fmt.Errorf("Ill formated coordinates line in stf: Too many fields: %s", str)
	}
	for i, v := range s {
		f, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("Can't parse coordinate %d (%s). Error: %s", i, v, err.Error())
		}
		temp[i] = float64(f) / p
	}
	return nil
}

//Read!

// Reader reads an STF trajectory. Frames can be read in any order, reading
// backwards reopens the file.
type Reader struct {
	filename string
	f        *os.File
	dec      io.ReadCloser
	h        *bufio.Reader
	natoms   int
	nframes  int
	prec     int
	header   map[string]string
	next     int //index of the frame the next read returns
	readable bool
	log      *slog.Logger
}

// Option configures a Reader.
type Option func(*Reader)

// WithLogger sets the logger for non fatal problems, such as malformed box lines.
func WithLogger(l *slog.Logger) Option {
	return func(S *Reader) {
		if l != nil {
			S.log = l
		}
	}
}

// Open opens an STF trajectory for reading. The whole file is scanned once
// to count its frames.
func Open(name string, opts ...Option) (*Reader, error) {
	S := &Reader{filename: name, natoms: -1, prec: defaultPrec, log: slog.New(slog.DiscardHandler)}
	for _, o := range opts {
		o(S)
	}
	if err := S.reopen(); err != nil {
		return nil, errDecorate(err, "Open")
	}
	for {
		err := S.Next(nil)
		if err == nil {
			S.nframes++
			continue
		}
		if _, ok := err.(*lastFrameError); ok {
			break
		}
		S.Close()
		return nil, errDecorate(err, "Open")
	}
	if err := S.reopen(); err != nil {
		return nil, errDecorate(err, "Open")
	}
	S.log.Debug("stf trajectory opened", "file", name, "atoms", S.natoms, "frames", S.nframes)
	return S, nil
}

// reopen (re)opens the file and reads the header, leaving the reader before the first frame.
func (S *Reader) reopen() error {
	S.Close()
	var err error
	S.f, err = os.Open(S.filename)
	if err != nil {
		return Error{UnableToOpen + ": " + err.Error(), S.filename, []string{"reopen"}, true}
	}
	S.dec, err = decompressor(S.filename)(bufio.NewReader(S.f))
	if err != nil {
		S.f.Close()
		return Error{"Can't read header " + err.Error(), S.filename, []string{"reopen"}, true}
	}
	S.h = bufio.NewReader(S.dec)
	fail := func(msg string) error {
		S.dec.Close()
		S.f.Close()
		return Error{msg, S.filename, []string{"reopen"}, true}
	}
	header := make(map[string]string)
	for {
		str, err := S.h.ReadString('\n')
		if err != nil {
			return fail("Can't read header " + err.Error())
		}
		str = strings.TrimSuffix(str, "\n")
		if strings.HasPrefix(str, "**") {
			nat := strings.Fields(str)
			if len(nat) < 2 {
				return fail(fmt.Sprintf("Can't read atom number from '%s'", str))
			}
			S.natoms, err = strconv.Atoi(nat[1])
			if err != nil {
				return fail(fmt.Sprintf("Can't read atom number from '%s': %s", nat[1], err.Error()))
			}
			break
		}
		kv := strings.SplitN(str, "=", 2)
		if len(kv) != 2 {
			return fail("Malformed header line: " + str)
		}
		header[kv[0]] = kv[1]
	}
	if p, ok := header[PrecKey]; ok {
		prec, err := strconv.Atoi(p)
		if err != nil {
			S.log.Warn("invalid precision in stf header, assuming the default", "file", S.filename, "prec", p)
		} else {
			S.prec = prec
		}
	}
	S.header = header
	S.next = 0
	S.readable = true
	return nil
}

// Readable returns true if the handle is readable (if it is possible to call Next on it)
func (S *Reader) Readable() bool {
	return S.readable
}

// Header returns a copy of the header key/value pairs.
func (S *Reader) Header() map[string]string {
	return maps.Clone(S.header)
}

// Topology builds a frame from the topology stored in the header.
func (S *Reader) Topology(opts ...xmol.FrameOption) (*xmol.Frame, error) {
	top, ok := S.header[TopologyKey]
	if !ok {
		return nil, Error{"No topology in header", S.filename, []string{"Topology"}, true}
	}
	f, err := chemjson.UnmarshalTopology([]byte(top), opts...)
	if err != nil {
		return nil, Error{"Can't read topology: " + err.Error(), S.filename, []string{"Topology"}, true}
	}
	if f.NAtoms() != S.natoms {
		return nil, Error{fmt.Sprintf("Topology has %d atoms, frames have %d", f.NAtoms(), S.natoms), S.filename, []string{"Topology"}, true}
	}
	return f, nil
}

// NAtoms returns the number of atoms in each frame of the trajectory.
func (S *Reader) NAtoms() int {
	return S.natoms
}

// Len returns the number of atoms in each frame of the trajectory.
func (S *Reader) Len() int {
	return S.natoms
}

// NFrames returns the number of frames in the file.
func (S *Reader) NFrames() int {
	return S.nframes
}

// Next puts in c the coordinates for the next frame of the trajectory
// and, if given and present in the file, the box vectors in box.
// If the error is a *lastFrameError, the end of the trajectory has been reached,
// not an actual error. A nil c skips the frame, still checking its format.
func (S *Reader) Next(c *v3.Matrix, box ...[]float64) error {
	var b []float64
	if len(box) > 0 {
		b = box[0]
	}
	_, err := S.next1(c, b)
	return err
}

func (S *Reader) next1(c *v3.Matrix, box []float64) (bool, error) {
	if !S.readable {
		return false, Error{TrajUnIniRead, S.filename, []string{"Next"}, true}
	}
	var temp [3]float64
	for i := 0; i < S.natoms; i++ {
		b, err := S.h.ReadString('\n')
		if err != nil {
			//EOF is only fine before the first atom
			if errors.Is(err, io.EOF) && i == 0 && b == "" {
				return false, newlastFrameError(S.filename, "Next")
			}
			return false, Error{ReadError + ": " + err.Error(), S.filename, []string{"Next"}, true}
		}
		if err := coordsDecode(strings.TrimSuffix(b, "\n"), &temp, S.prec); err != nil {
			return false, Error{err.Error(), S.filename, []string{"Next"}, true}
		}
		if c == nil {
			continue
		}
		for j, v := range temp {
			c.Set(i, j, v)
		}
	}
	s, err := S.h.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		if errors.Is(err, io.EOF) && S.natoms == 0 {
			return false, newlastFrameError(S.filename, "Next")
		}
		return false, Error{"Can't read the frame termination mark: " + err.Error(), S.filename, []string{"Next"}, true}
	}
	if s[0] != '*' {
		return false, Error{WrongFormat + ": wrong number of atoms in frame", S.filename, []string{"Next"}, true}
	}
	S.next++
	if len(box) < 9 {
		return false, nil
	}
	fields := strings.Fields(s)
	if len(fields) < 10 {
		return false, nil
	}
	var errbox error
	for j, v := range fields[1:10] {
		box[j], errbox = strconv.ParseFloat(v, 64)
		if errbox != nil {
			break
		}
	}
	if errbox != nil {
		S.log.Warn("failed to read box", "file", S.filename, "frame", S.next-1)
		clear(box[:9])
		return false, nil
	}
	return true, nil
}

// Advance moves the read position shift frames forward (or backward, if negative).
func (S *Reader) Advance(shift int) error {
	if err := S.seek(S.next + shift); err != nil {
		return errDecorate(err, "Advance")
	}
	return nil
}

func (S *Reader) seek(i int) error {
	if i < 0 || i > S.nframes {
		return Error{fmt.Sprintf("frame %d out of range [0,%d]", i, S.nframes), S.filename, []string{"seek"}, true}
	}
	if i < S.next || !S.readable {
		if err := S.reopen(); err != nil {
			return err
		}
	}
	for S.next < i {
		if err := S.Next(nil); err != nil {
			return err
		}
	}
	return nil
}

// ReadFrame reads frame index into f, which must have as many atoms as the trajectory.
// The coordinates are written in place, so smart references into f stay valid.
// The cell is set from the box of the frame, or cleared if it has none. Index is set to index.
func (S *Reader) ReadFrame(index int, f *xmol.Frame) error {
	if f.NAtoms() != S.natoms {
		return Error{fmt.Sprintf("frame has %d atoms, trajectory %d", f.NAtoms(), S.natoms), S.filename, []string{"ReadFrame"}, true}
	}
	if index < 0 || index >= S.nframes {
		return Error{fmt.Sprintf("frame %d out of range [0,%d)", index, S.nframes), S.filename, []string{"ReadFrame"}, true}
	}
	if err := S.seek(index); err != nil {
		return errDecorate(err, "ReadFrame")
	}
	box := make([]float64, 9)
	hasBox, err := S.next1(f.Atoms().Values(), box)
	if err != nil {
		return errDecorate(err, "ReadFrame")
	}
	if hasBox {
		f.Cell = xmol.UnitCellFromBox(box)
	} else {
		f.Cell = xmol.UnitCell{}
	}
	f.Index = index
	return nil
}

// Close closes the file, and marks the reader as unreadable.
func (S *Reader) Close() error {
	if !S.readable {
		return nil
	}
	S.readable = false
	S.dec.Close()
	return S.f.Close()
}

//Errors

// errDecorate decorates err with the caller's name if it is one of the
// errors of this package, otherwise it wraps it.
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

// Error is the general structure for STF trajectory errors.
type Error struct {
	message  string
	filename string //the input file that has problems, or empty string if none.
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("stf file %s error: %s", err.filename, err.message)
}

// Decorate Adds new information to the error
func (E Error) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

// FileName returns the file to which the failing trajectory was associated
func (err Error) FileName() string { return err.filename }

// Format returns the format of the file (always "stf") associated to the error
func (err Error) Format() string { return "stf" }

// Critical returns true if the error is critical, false otherwise
func (err Error) Critical() bool { return err.critical }

const (
	TrajUnIniRead  = "Traj object uninitialized to read"
	TrajUnIniWrite = "Traj object uninitialized to write"
	ReadError      = "Error reading frame"
	UnableToOpen   = "Unable to open file"
	NilCoordinates = "Given nil coordinates"
	WrongFormat    = "Wrong format in the STF file or frame"
)

// lastFrameError signals the normal end of the trajectory.
type lastFrameError struct {
	deco     []string
	fileName string
}

// NormalLastFrameTermination does nothing, it marks the error as a normal end of file.
func (E *lastFrameError) NormalLastFrameTermination() {}

func (E *lastFrameError) FileName() string { return E.fileName }

func (E *lastFrameError) Error() string { return "EOF" }

func (E *lastFrameError) Critical() bool { return false }

func (E *lastFrameError) Format() string { return "stf" }

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
