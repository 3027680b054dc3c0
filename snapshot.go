/*
 * snapshot.go, part of gomdtools.
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

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Box contains the lower and upper bounds of a simulation box.
type Box struct {
	Lo [3]float64
	Hi [3]float64
}

// Size returns the length of the box on each axis.
func (B Box) Size() [3]float64 {
	return [3]float64{B.Hi[0] - B.Lo[0], B.Hi[1] - B.Lo[1], B.Hi[2] - B.Lo[2]}
}

func (B Box) String() string {
	return fmt.Sprintf("[%g %g) [%g %g) [%g %g)", B.Lo[0], B.Hi[0], B.Lo[1], B.Hi[1], B.Lo[2], B.Hi[2])
}

// Snapshot is the ordered set of particles of one timestep.
// Box is nil if the source didn't carry box information.
type Snapshot struct {
	Step      uint64
	Comment   string
	Box       *Box
	Particles []Particle
}

// Len returns the number of particles in the snapshot.
func (S *Snapshot) Len() int {
	return len(S.Particles)
}

// Append adds the particles in ps at the end of the snapshot, keeping their order.
func (S *Snapshot) Append(ps ...Particle) {
	S.Particles = append(S.Particles, ps...)
}

// Extents returns the smallest box containing every particle in the snapshot.
// It returns false if the snapshot is empty.
func (S *Snapshot) Extents() (Box, bool) {
	var b Box
	if len(S.Particles) == 0 {
		return b, false
	}
	axis := make([]float64, len(S.Particles))
	for i := 0; i < 3; i++ {
		for j, p := range S.Particles {
			axis[j] = p.Position()[i]
		}
		b.Lo[i] = floats.Min(axis)
		b.Hi[i] = floats.Max(axis)
	}
	return b, true
}
