/*
 * doc.go, part of gomdtools.
 *
 * Copyright 2026 The gomdtools Authors
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

/*
Package md is the main package of gomdtools. It provides the particle and snapshot
structures shared by the rest of the tools, the errors they return, and the
plumbing to read and write (possibly compressed) files.

	**gomdtools capabilities**

	Decodes the per-rank binary dumps of a parallel MD run, in several binary
	layouts ("standards"), merging the ranks of each timestep (traj/bin).

	Writes snapshots as xyz, aligned text, or dump files (traj/xyz, traj/text,
	traj/dump). Any output ending in .zst, .gz, .xz or .lzw is compressed.

	Converts batches of binary files (conv).

	Compares two text snapshots atom by atom, with a tolerance, and optionally
	taking periodic boundary conditions into account (diff).

	Runs simple box-based analyses on text snapshots read from disk or from
	MinIO/S3 (ans).

The command mdtools, in cmd/mdtools, exposes all of the above.
*/
package md
