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

// Package post parses and re-serializes the "post" table. Versions
// 1.0 and 3.0 carry no glyph names and are retained as four scalar
// fields; version 2.0 additionally carries a glyph-name index and a
// list of Pascal-string names, validated against maxp.NumGlyphs.
package post

import (
	"fmt"

	"seehuhn.de/go/sfntsan/sfnt/sfntio"
)

const numStandardMacNames = 258

// Info is the retained state of a "post" table.
type Info struct {
	Version            uint32
	ItalicAngle        uint32
	Underline          uint16
	UnderlineThickness uint16
	IsFixedPitch       uint32

	// GlyphNameIndex and Names are only populated for Version ==
	// 0x00020000: GlyphNameIndex has NumGlyphs entries, each either
	// < 258 (a standard Macintosh glyph name) or 258+k indexing Names.
	GlyphNameIndex []uint16
	Names          []string
}

// Parse reads and validates a "post" table body. numGlyphs comes from
// the already-parsed maxp table and must match the version-2 glyph
// count exactly.
func Parse(data []byte, numGlyphs int) (*Info, error) {
	r := sfntio.NewReader(data)

	info := &Info{}
	var err error
	if info.Version, err = r.U32(); err != nil {
		return nil, err
	}
	if info.ItalicAngle, err = r.U32(); err != nil {
		return nil, err
	}
	if info.Underline, err = r.U16(); err != nil {
		return nil, err
	}
	if info.UnderlineThickness, err = r.U16(); err != nil {
		return nil, err
	}
	if info.IsFixedPitch, err = r.U32(); err != nil {
		return nil, err
	}

	switch info.Version {
	case 0x00010000, 0x00030000:
		return info, nil
	case 0x00020000:
		// fall through below
	default:
		return nil, fmt.Errorf("post: unsupported version 0x%08x", info.Version)
	}

	if err := r.Skip(16); err != nil { // memory-usage hints, discarded
		return nil, err
	}
	tableNumGlyphs, err := r.U16()
	if err != nil {
		return nil, err
	}
	if int(tableNumGlyphs) != numGlyphs {
		return nil, fmt.Errorf("post: numberOfGlyphs %d does not match maxp %d", tableNumGlyphs, numGlyphs)
	}

	index := make([]uint16, numGlyphs)
	for i := range index {
		v, err := r.U16()
		if err != nil {
			return nil, err
		}
		if v >= 32768 {
			return nil, fmt.Errorf("post: glyphNameIndex[%d] = %d out of range", i, v)
		}
		index[i] = v
	}

	var names []string
	for {
		n, err := r.U8()
		if err == sfntio.ErrOutOfBounds {
			break
		}
		if err != nil {
			return nil, err
		}
		s, err := r.Bytes(int(n))
		if err != nil {
			return nil, fmt.Errorf("post: truncated Pascal string: %w", err)
		}
		names = append(names, string(s))
	}

	for i, idx := range index {
		if int(idx) < numStandardMacNames {
			continue
		}
		if int(idx)-numStandardMacNames >= len(names) {
			return nil, fmt.Errorf("post: glyphNameIndex[%d] = %d resolves past names list", i, idx)
		}
	}

	info.GlyphNameIndex = index
	info.Names = names
	return info, nil
}

// Encode re-serializes the table. The memory-usage hint fields are
// always written as zero.
func (info *Info) Encode() []byte {
	out := make([]byte, 32)
	putU32(out[0:], info.Version)
	putU32(out[4:], info.ItalicAngle)
	putU16(out[8:], info.Underline)
	putU16(out[10:], info.UnderlineThickness)
	putU32(out[12:], info.IsFixedPitch)
	// bytes 16..32: four memory-usage uint32 hints, left zero.

	if info.Version != 0x00020000 {
		return out
	}

	out = append(out, make([]byte, 2+2*len(info.GlyphNameIndex))...)
	putU16(out[32:], uint16(len(info.GlyphNameIndex)))
	pos := 34
	for _, idx := range info.GlyphNameIndex {
		putU16(out[pos:], idx)
		pos += 2
	}
	for _, s := range info.Names {
		out = append(out, byte(len(s)))
		out = append(out, s...)
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
