/*
 * particle.go, part of gomdtools.
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
	"math"
	"strconv"
	"strings"
)

// ParticleFields is the number of tokens in the text form of a particle.
const ParticleFields = 7

// Particle contains the id, the position and the velocity of one atom.
type Particle struct {
	ID         uint32
	X, Y, Z    float64
	VX, VY, VZ float64
}

// ParseParticle parses a line with exactly 7 whitespace-separated tokens:
// id x y z vx vy vz. The id is read as a float and truncated, so "3.0" is a valid id,
// but it must be within 0 and math.MaxUint32. NaN and infinite values are not accepted
// in any field, so two parses of the same line always compare equal.
func ParseParticle(line string) (Particle, error) {
	return parseParticle(line, false)
}

// ParseParticleLegacy is like ParseParticle, but reads both vy and vz from the
// 7th token, as older versions of the tools did. Only use it to compare against
// results produced that way.
func ParseParticleLegacy(line string) (Particle, error) {
	return parseParticle(line, true)
}

func parseParticle(line string, legacy bool) (Particle, error) {
	var p Particle
	fields := strings.Fields(line)
	if len(fields) != ParticleFields {
		return p, Errorf(ErrParse, "", "ParseParticle", "%d fields in line %q, %d expected", len(fields), line, ParticleFields)
	}
	var vals [ParticleFields]float64
	for i, v := range fields {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return p, Errorf(ErrParse, "", "ParseParticle", "can't parse field %d (%s) of line %q", i, v, line)
		}
		vals[i] = f
	}
	if vals[0] < 0 || vals[0] >= math.MaxUint32+1 {
		return p, Errorf(ErrParse, "", "ParseParticle", "id %s out of range in line %q", fields[0], line)
	}
	p.ID = uint32(vals[0])
	p.X, p.Y, p.Z = vals[1], vals[2], vals[3]
	p.VX, p.VY, p.VZ = vals[4], vals[5], vals[6]
	if legacy {
		p.VY = vals[6]
	}
	return p, nil
}

// Format returns the text form of the particle, with prec decimal digits for
// each float, separated by single spaces.
func (P Particle) Format(prec int) string {
	return fmt.Sprintf("%d %.*f %.*f %.*f %.*f %.*f %.*f", P.ID, prec, P.X, prec, P.Y, prec, P.Z, prec, P.VX, prec, P.VY, prec, P.VZ)
}

func (P Particle) String() string {
	return fmt.Sprintf("id: %d, position: (%g, %g, %g), v: (%g, %g, %g)", P.ID, P.X, P.Y, P.Z, P.VX, P.VY, P.VZ)
}

// Position returns the position as an array.
func (P Particle) Position() [3]float64 {
	return [3]float64{P.X, P.Y, P.Z}
}

// Velocity returns the velocity as an array.
func (P Particle) Velocity() [3]float64 {
	return [3]float64{P.VX, P.VY, P.VZ}
}

// within returns true if the absolute difference d is under limit.
// A zero limit means exact equality.
func within(d, limit float64) bool {
	return d == 0 || d < limit
}

// NearEq returns true if every position and velocity component of P and other
// differ by less than limit.
func (P Particle) NearEq(other Particle, limit float64) bool {
	return within(math.Abs(P.X-other.X), limit) &&
		within(math.Abs(P.Y-other.Y), limit) &&
		within(math.Abs(P.Z-other.Z), limit) &&
		within(math.Abs(P.VX-other.VX), limit) &&
		within(math.Abs(P.VY-other.VY), limit) &&
		within(math.Abs(P.VZ-other.VZ), limit)
}

// NearEqPBC is like NearEq, but a position component is also considered equal if
// its difference is within limit of the box size on that axis, which is what happens
// when an atom crosses a periodic face. Velocities are compared as in NearEq.
// A zero box size makes the axis test the same as the non periodic one.
func (P Particle) NearEqPBC(other Particle, limit float64, box [3]float64) bool {
	p := P.Position()
	o := other.Position()
	for i := range p {
		d := math.Abs(p[i] - o[i])
		if !within(d, limit) && !within(math.Abs(d-box[i]), limit) {
			return false
		}
	}
	return within(math.Abs(P.VX-other.VX), limit) &&
		within(math.Abs(P.VY-other.VY), limit) &&
		within(math.Abs(P.VZ-other.VZ), limit)
}
