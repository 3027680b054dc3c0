/*
 * merge.go, part of gomdtools
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
	"io"

	md "github.com/misa-md/gomdtools"
)

// Shard is the byte stream written by one or more ranks.
type Shard struct {
	Name string
	R    io.Reader
}

// Merger reads the blocks of all the ranks of a run and joins them into one
// snapshot per timestep. It fulfills md.Traj.
//
// With a single shard, the blocks of each timestep are expected one after the
// other, rank 0 first. With one shard per rank, block t of each shard belongs to
// timestep t.
type Merger struct {
	std      Standard
	ranks    int
	readers  []*blockReader
	frame    int
	finished bool
}

// NewMerger returns a Merger for ranks ranks, reading from shards, which must
// contain either one element, or one element per rank, in rank order.
func NewMerger(std Standard, ranks int, shards ...Shard) (*Merger, error) {
	if ranks <= 0 {
		return nil, md.Errorf(md.ErrValidation, "", "NewMerger", "unsupported ranks value %d", ranks)
	}
	if len(shards) == 0 {
		return nil, md.Errorf(md.ErrValidation, "", "NewMerger", "no shards given")
	}
	if len(shards) != 1 && len(shards) != ranks {
		name := shards[0].Name
		return nil, md.Errorf(md.ErrRankCount, name, "NewMerger", "%d shards found for %d ranks", len(shards), ranks)
	}
	M := &Merger{std: std, ranks: ranks}
	for _, s := range shards {
		M.readers = append(M.readers, newBlockReader(std, s.R, s.Name))
	}
	return M, nil
}

func (M *Merger) reader(rank int) *blockReader {
	if len(M.readers) == 1 {
		return M.readers[0]
	}
	return M.readers[rank]
}

// Ranks returns the number of ranks merged in each snapshot.
func (M *Merger) Ranks() int {
	return M.ranks
}

// Next returns the snapshot for the next timestep, or io.EOF if all the shards
// ended at the end of the previous timestep.
// It returns an md.ErrRankCount Error if a timestep has fewer blocks than ranks,
// and an md.ErrFormat Error if a block can't be decoded or the ranks don't agree
// on the timestep.
func (M *Merger) Next() (*md.Snapshot, error) {
	if M.finished {
		return nil, io.EOF
	}
	snap := new(md.Snapshot)
	for rank := 0; rank < M.ranks; rank++ {
		br := M.reader(rank)
		raw, err := br.next()
		if err == io.EOF {
			if rank == 0 {
				M.finished = true
				return nil, M.checkEnded()
			}
			M.finished = true
			return nil, md.Errorf(md.ErrRankCount, br.filename, "Merger.Next", "timestep %d: %d of %d ranks found", M.frame, rank, M.ranks)
		}
		if err != nil {
			M.finished = true
			return nil, md.Decorate(err, "Merger.Next")
		}
		ps, step, err := decode(M.std, raw, br.filename)
		if err != nil {
			M.finished = true
			return nil, md.Decorate(err, "Merger.Next")
		}
		if !M.std.header {
			step = uint64(M.frame)
		}
		if rank == 0 {
			snap.Step = step
		} else if step != snap.Step {
			M.finished = true
			return nil, md.Errorf(md.ErrFormat, br.filename, "Merger.Next", "rank %d is at timestep %d, rank 0 at %d", rank, step, snap.Step)
		}
		snap.Append(ps...)
	}
	if !M.std.HasID() {
		for i := range snap.Particles {
			snap.Particles[i].ID = uint32(i + 1)
		}
	}
	M.frame++
	return snap, nil
}

// checkEnded is called when rank 0 has no more blocks. With one shard per rank,
// every other shard must have ended too, otherwise the timestep is missing ranks.
func (M *Merger) checkEnded() error {
	if len(M.readers) == 1 {
		return io.EOF
	}
	for rank := 1; rank < len(M.readers); rank++ {
		br := M.readers[rank]
		if _, err := br.next(); err != io.EOF {
			return md.Errorf(md.ErrRankCount, M.readers[0].filename, "Merger.Next", "timestep %d: rank 0 ended but rank %d has more data", M.frame, rank)
		}
	}
	return io.EOF
}
