/*
 * compress.go, part of gomdtools
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

package md

import (
	"bufio"
	"compress/lzw"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

const (
	lzwOrder        = lzw.MSB
	lzwLitwidth int = 8
)

// Compression returns the compression implied by the extension of name:
// "zst", "gz", "xz", "lzw", or the empty string for plain files.
func Compression(name string) string {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".zst", ".gz", ".xz", ".lzw":
		return ext[1:]
	}
	return ""
}

// closers is a reader or writer with a list of things to close, in order.
type closers struct {
	io.Reader
	io.Writer
	c []func() error
}

func (C *closers) Close() error {
	var first error
	for _, f := range C.c {
		if err := f(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Decompress takes the raw reader for the file name and returns a reader that
// decompresses it, if the extension of name indicates a compressed file.
// Plain files are returned as they are. Closing the returned reader also closes r.
func Decompress(name string, r io.ReadCloser) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	switch Compression(name) {
	case "zst":
		d, err := zstd.NewReader(br)
		if err != nil {
			r.Close()
			return nil, WrapError(ErrIO, name, "Decompress", err)
		}
		return &closers{Reader: d, c: []func() error{func() error { d.Close(); return nil }, r.Close}}, nil
	case "gz":
		g, err := gzip.NewReader(br)
		if err != nil {
			r.Close()
			return nil, WrapError(ErrIO, name, "Decompress", err)
		}
		return &closers{Reader: g, c: []func() error{g.Close, r.Close}}, nil
	case "xz":
		x, err := xz.NewReader(br)
		if err != nil {
			r.Close()
			return nil, WrapError(ErrIO, name, "Decompress", err)
		}
		return &closers{Reader: x, c: []func() error{r.Close}}, nil
	case "lzw":
		l := lzw.NewReader(br, lzwOrder, lzwLitwidth)
		return &closers{Reader: l, c: []func() error{l.Close, r.Close}}, nil
	}
	return r, nil
}

// Create creates (or truncates) the file name and returns a buffered writer for it,
// which compresses the data if the extension of name indicates so.
// The returned error is an ErrIO Error if the file can't be created.
func Create(name string) (io.WriteCloser, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, WrapError(ErrIO, name, "Create", err)
	}
	bw := bufio.NewWriter(f)
	ret := &closers{c: []func() error{}}
	switch Compression(name) {
	case "zst":
		z, err := zstd.NewWriter(bw, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
		if err != nil {
			f.Close()
			return nil, WrapError(ErrIO, name, "Create", err)
		}
		ret.Writer = z
		ret.c = append(ret.c, z.Close)
	case "gz":
		g, err := gzip.NewWriterLevel(bw, gzip.BestCompression)
		if err != nil {
			f.Close()
			return nil, WrapError(ErrIO, name, "Create", err)
		}
		ret.Writer = g
		ret.c = append(ret.c, g.Close)
	case "xz":
		x, err := xz.NewWriter(bw)
		if err != nil {
			f.Close()
			return nil, WrapError(ErrIO, name, "Create", err)
		}
		ret.Writer = x
		ret.c = append(ret.c, x.Close)
	case "lzw":
		l := lzw.NewWriter(bw, lzwOrder, lzwLitwidth)
		ret.Writer = l
		ret.c = append(ret.c, l.Close)
	default:
		ret.Writer = bw
	}
	ret.c = append(ret.c, bw.Flush, f.Close)
	return ret, nil
}

// Open opens the local file name for reading, decompressing it if needed.
func Open(name string) (io.ReadCloser, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, WrapError(ErrIO, name, "Open", err)
	}
	return Decompress(name, f)
}
