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

// Package chemjson implements serialization and unserialization of
// xmol frames. Its planned use is the communication of programs built on
// xmol with other, independent programs, which can be written in
// other languages, as long as they can read and write JSON.
// A frame is sent as its topology (molecules, residues and atoms) followed
// by one document per snapshot with the coordinates, index, time and box.
// The topology is rebuilt on the receiving side through the Frame growth API.
package chemjson
