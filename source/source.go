/*
 * source.go, part of gomdtools.
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

// Package source provides the byte sources input files are read from.
//
// Each Source resolves a name to a stream of bytes:
//   - Local: the local filesystem, names are paths
//   - MinIO: a MinIO or S3 bucket, names are object keys
//
// A Source is chosen once for a batch, and every input of the batch is read
// from it. Compressed inputs (.zst, .gz, .xz, .lzw) are decompressed by Open.
package source

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"

	md "github.com/misa-md/gomdtools"
)

// Source opens named inputs for reading.
type Source interface {
	// OpenRaw returns the bytes stored under name, as they are.
	// If name does not exist the error matches fs.ErrNotExist.
	OpenRaw(ctx context.Context, name string) (io.ReadCloser, error)

	// Exists reports whether name can be opened.
	Exists(ctx context.Context, name string) (bool, error)

	// String names the source, for logs.
	String() string
}

// Open opens name from src, decompressing it if its extension says so.
func Open(ctx context.Context, src Source, name string) (io.ReadCloser, error) {
	r, err := src.OpenRaw(ctx, name)
	if err != nil {
		return nil, err
	}
	return md.Decompress(name, r)
}

// Local reads from the local filesystem.
type Local struct{}

func (Local) OpenRaw(_ context.Context, name string) (io.ReadCloser, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, md.WrapError(md.ErrIO, name, "Local.OpenRaw", err)
	}
	return f, nil
}

func (Local) Exists(_ context.Context, name string) (bool, error) {
	_, err := os.Stat(name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, md.WrapError(md.ErrIO, name, "Local.Exists", err)
}

func (Local) String() string {
	return "local filesystem"
}
