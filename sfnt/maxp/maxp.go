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

// Package maxp parses and re-serializes the "maxp" table, the first
// table in registry order: every other table that bounds an index by
// the glyph count depends on Info.NumGlyphs.
package maxp

import (
	"fmt"

	"seehuhn.de/go/sfntsan/sfnt/sfntio"
)

// Info is the retained state of a "maxp" table.
type Info struct {
	NumGlyphs int

	IsVersion1 bool

	// The following fields are only meaningful when IsVersion1 is true.
	MaxPoints            uint16
	MaxContours          uint16
	MaxCompositePoints   uint16
	MaxCompositeContours uint16
	MaxComponentElements uint16
	MaxComponentDepth    uint16
}

// Parse reads and validates a "maxp" table body.
func Parse(data []byte) (*Info, error) {
	r := sfntio.NewReader(data)

	version, err := r.U32()
	if err != nil {
		return nil, err
	}
	// Only the high halfword of the version is meaningful (0 or 1);
	// the low halfword is not required to be zero. This matters
	// because Encode writes a version-0 table as the literal
	// 0x00005000.
	high := version >> 16
	if high > 1 {
		return nil, fmt.Errorf("maxp: unsupported version 0x%08x", version)
	}

	numGlyphs, err := r.U16()
	if err != nil {
		return nil, err
	}

	info := &Info{
		NumGlyphs:  int(numGlyphs),
		IsVersion1: high == 1,
	}
	if !info.IsVersion1 {
		return info, nil
	}

	fields := []*uint16{
		&info.MaxPoints, &info.MaxContours,
		&info.MaxCompositePoints, &info.MaxCompositeContours,
	}
	for _, f := range fields {
		v, err := r.U16()
		if err != nil {
			return nil, err
		}
		*f = v
	}
	// maxZones, maxTwilightPoints, maxStorage, maxFunctionDefs,
	// maxInstructionDefs, maxStackElements, maxSizeOfInstructions:
	// seven uint16 hinting-interpreter limits, not retained.
	if err := r.Skip(14); err != nil {
		return nil, err
	}
	v, err := r.U16()
	if err != nil {
		return nil, err
	}
	info.MaxComponentElements = v

	v, err = r.U16()
	if err != nil {
		return nil, err
	}
	info.MaxComponentDepth = v

	return info, nil
}

// Encode re-serializes the table. For version-1 inputs, the
// hinting-interpreter limits are forced to safe values: maxZones=1
// (the only valid nonzero zone count), and every twilight/storage/
// function-def/instruction-def/stack/bytecode-size field zeroed,
// advertising "no hinting" to the consumer regardless of what the
// original font declared.
func (info *Info) Encode() []byte {
	if !info.IsVersion1 {
		out := make([]byte, 6)
		putU32(out[0:], 0x00005000)
		putU16(out[4:], uint16(info.NumGlyphs))
		return out
	}

	out := make([]byte, 32)
	putU32(out[0:], 0x00010000)
	putU16(out[4:], uint16(info.NumGlyphs))
	putU16(out[6:], info.MaxPoints)
	putU16(out[8:], info.MaxContours)
	putU16(out[10:], info.MaxCompositePoints)
	putU16(out[12:], info.MaxCompositeContours)
	putU16(out[14:], 1) // maxZones
	putU16(out[16:], 0) // maxTwilightPoints
	putU16(out[18:], 0) // maxStorage
	putU16(out[20:], 0) // maxFunctionDefs
	putU16(out[22:], 0) // maxInstructionDefs
	putU16(out[24:], 0) // maxStackElements
	putU16(out[26:], 0) // maxSizeOfInstructions
	putU16(out[28:], info.MaxComponentElements)
	putU16(out[30:], info.MaxComponentDepth)
	return out
}

func putU16(b []byte, v uint16) { b[0] = byte(v >> 8); b[1] = byte(v) }
func putU32(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}
