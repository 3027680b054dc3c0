/*
 * interfaces.go, part of gomdtools.
 *
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

package md

// Sink is anything that can take snapshots and put them somewhere,
// in some format. A Sink is bound to one destination and one float
// precision for its whole life.
type Sink interface {

	//WriteSnapshot serializes one snapshot. Snapshots are written in the order
	//they are given, so a Sink can hold several timesteps.
	WriteSnapshot(s *Snapshot) error

	//Close flushes and closes the destination. The Sink can not be used after this.
	Close() error
}

// Traj is a source of snapshots, read one timestep at a time.
type Traj interface {

	//Next returns the next snapshot. At the end of the trajectory
	//it returns io.EOF, which is not an actual error.
	Next() (*Snapshot, error)
}

//Errors

// Decorater is the interface for errors that all packages in this module implement. The Decorate method allows to add and retrieve info from the
// error, without changing its type or wrapping it around something else.
type Decorater interface {
	Error() string
	Decorate(string) []string //Each call returns the decoration slice resulting from the call. An empty string only returns the current value.
}

// TrajError is the interface for errors in trajectories.
type TrajError interface {
	Decorater
	Critical() bool
	FileName() string
}
