// seehuhn.de/go/sfntsan - a sanitizer for untrusted OpenType/TrueType fonts
// Copyright (C) 2024 The sfntsan Authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package loca parses and re-serializes the "loca" table: glyf byte
// offsets, stored on the wire as either 16-bit half-offsets (format
// 0) or full 32-bit byte offsets (format 1), canonicalized here to
// plain byte offsets regardless of format.
package loca

import (
	"fmt"

	"seehuhn.de/go/sfntsan/sfnt/sfntio"
)

// Info holds num_glyphs+1 canonicalized byte offsets into glyf.
type Info struct {
	Offsets []uint32
}

// Parse reads and validates a "loca" table body. format is
// head.IndexToLocFormat; numGlyphs comes from maxp.
func Parse(data []byte, format int16, numGlyphs int) (*Info, error) {
	r := sfntio.NewReader(data)
	n := numGlyphs + 1
	offsets := make([]uint32, n)

	var last uint32
	for i := 0; i < n; i++ {
		var off uint32
		if format == 0 {
			v, err := r.U16()
			if err != nil {
				return nil, err
			}
			off = uint32(v) * 2
		} else {
			v, err := r.U32()
			if err != nil {
				return nil, err
			}
			off = v
		}
		if i > 0 && off < last {
			return nil, fmt.Errorf("loca: offsets not monotonic at glyph %d", i-1)
		}
		offsets[i] = off
		last = off
	}
	return &Info{Offsets: offsets}, nil
}

// Encode re-serializes offsets using the same format flag the input
// was parsed with (head.IndexToLocFormat is retained, not
// recomputed): format 0 divides each offset by 2 on output, format 1
// writes full 32-bit offsets. Every offset glyf records is 4-byte
// aligned, hence even, and a rewritten glyf table whose final offset
// exceeds the format-0 range is rejected when glyf is parsed, so a
// format-0 input never needs widening to format 1.
func Encode(offsets []uint32, format int16) []byte {
	if format == 0 {
		out := make([]byte, 2*len(offsets))
		for i, off := range offsets {
			putU16(out[2*i:], uint16(off/2))
		}
		return out
	}
	out := make([]byte, 4*len(offsets))
	for i, off := range offsets {
		putU32(out[4*i:], off)
	}
	return out
}

func putU16(b []byte, v uint16) { b[0] = byte(v >> 8); b[1] = byte(v) }
func putU32(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}
