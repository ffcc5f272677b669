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

// Package mdcrd reads and writes Amber ASCII trajectories ("mdcrd" or "crd" files).
//
// After a title line, each frame has the coordinates of all its atoms as numbers of
// 8 characters with 3 decimals, 10 per line, a new line starting every frame.
// Simulations with periodic boundaries add a line with the three box lengths after
// each frame. The number of atoms and the presence of a box are not recorded in the
// file, so they come from the topology and the caller.
package mdcrd
