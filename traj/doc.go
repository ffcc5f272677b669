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

// Package traj reads trajectories: sequences of frames sharing one topology, possibly
// split over several files. Frames are read in place into a copy of a reference frame,
// so references taken on that copy keep working from one frame to the next.
//
// A trajectory can be assembled by hand with New and Extend, or described in a YAML file
// and opened with LoadConfig and Open. Reads are traced and counted through OpenTelemetry.
package traj
