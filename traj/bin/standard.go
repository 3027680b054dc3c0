/*
 * standard.go, part of gomdtools
 *
 * Copyright 2026 The gomdtools Authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License  as published by
 * the Free Software Foundation; either version 2.1 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General Public License
 * along with this program; if not, write to the Free Software
 * Foundation, Inc., 51 Franklin Street, Fifth Floor, Boston,
 * MA 02110-1301, USA.
 */

package bin

import (
	"encoding/binary"
	"sort"
	"strings"

	md "github.com/misa-md/gomdtools"
)

// IDKind is the kind of id field present in each record of a standard.
type IDKind int

const (
	NoID IDKind = iota
	ID32
	ID64
)

// headerWidth is the size of a block header: the timestep and the
// number of atoms, both uint64.
const headerWidth = 16

// DefaultStandard is the name of the standard used when none is given.
const DefaultStandard = "misa"

// Standard describes a binary layout for the particles of one rank. Standards are
// values, and can't be changed after they are created.
//
// A block is an optional header (timestep, atom count) followed by fixed-width
// records. A record is an optional id, skip bytes that are ignored, the position
// and, if the standard has them, the velocity.
type Standard struct {
	name     string
	order    binary.ByteOrder
	header   bool
	id       IDKind
	skip     int
	floatW   int
	velocity bool
}

// NewStandard returns a new Standard. floatWidth must be 4 or 8, and skip can't be negative.
func NewStandard(name string, order binary.ByteOrder, header bool, id IDKind, skip, floatWidth int, velocity bool) (Standard, error) {
	if floatWidth != 4 && floatWidth != 8 {
		return Standard{}, md.Errorf(md.ErrValidation, "", "NewStandard", "standard %s: float width %d not supported", name, floatWidth)
	}
	if skip < 0 {
		return Standard{}, md.Errorf(md.ErrValidation, "", "NewStandard", "standard %s: negative skip", name)
	}
	return Standard{name: name, order: order, header: header, id: id, skip: skip, floatW: floatWidth, velocity: velocity}, nil
}

func mustStandard(name string, order binary.ByteOrder, header bool, id IDKind, skip, floatWidth int) Standard {
	s, err := NewStandard(name, order, header, id, skip, floatWidth, true)
	if err != nil {
		panic(err.Error())
	}
	return s
}

var standards = map[string]Standard{
	//id, type and inter-type (2 int32), position, velocity.
	"misa":    mustStandard("misa", binary.LittleEndian, true, ID64, 8, 8),
	"misa-be": mustStandard("misa-be", binary.BigEndian, true, ID64, 8, 8),
	//A single timestep per block, no header at all.
	"plain": mustStandard("plain", binary.LittleEndian, false, ID32, 0, 8),
	//single precision, ids are given by the position of the atom.
	"compact": mustStandard("compact", binary.LittleEndian, true, NoID, 0, 4),
}

// Lookup returns the built-in standard with the given name (case insensitive).
func Lookup(name string) (Standard, error) {
	s, ok := standards[strings.ToLower(name)]
	if !ok {
		return Standard{}, md.Errorf(md.ErrValidation, "", "Lookup", "unknown binary standard %q, supported: %s", name, strings.Join(Names(), ", "))
	}
	return s, nil
}

// Names returns the names of the built-in standards, sorted.
func Names() []string {
	ret := make([]string, 0, len(standards))
	for k := range standards {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

func (S Standard) Name() string { return S.name }

func (S Standard) Order() binary.ByteOrder { return S.order }

// HasHeader returns true if each block starts with a timestep and atom count header.
func (S Standard) HasHeader() bool { return S.header }

// HasID returns true if each record carries the atom id.
func (S Standard) HasID() bool { return S.id != NoID }

// HasVelocity returns true if records carry velocities.
func (S Standard) HasVelocity() bool { return S.velocity }

func (S Standard) idWidth() int {
	switch S.id {
	case ID32:
		return 4
	case ID64:
		return 8
	}
	return 0
}

// RecordWidth returns the size in bytes of one particle record.
func (S Standard) RecordWidth() int {
	fields := 3
	if S.velocity {
		fields = 6
	}
	return S.idWidth() + S.skip + fields*S.floatW
}

// HeaderWidth returns the size of the block header in bytes, 0 if the standard has none.
func (S Standard) HeaderWidth() int {
	if S.header {
		return headerWidth
	}
	return 0
}

func (S Standard) String() string {
	return S.name
}
