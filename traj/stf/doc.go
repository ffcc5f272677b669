/*
 * doc.go, part of xmol.
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

// Package stf implements the simple trajectory format, a compressed text trajectory format
// that is easy to read and write from any language.
//
// A file has a header of key=value lines, ended by a line "** N" where N is the number
// of atoms per frame. The header always carries "prec", the number of decimal places kept.
// When written from a frame, it also carries "topology", the chemjson topology of that frame.
//
// Each frame then has one line per atom with the three coordinates, in Angstrom, multiplied
// by 10^prec and rounded to integers. A frame ends with a line starting with "*", optionally
// followed by the 9 numbers of the three box vectors.
//
// The codec follows the last letter of the file name: "l" lzw, "z" gzip, "r" raw deflate,
// and zstd for anything else (the usual extension being ".stf").
package stf
