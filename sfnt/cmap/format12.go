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

package cmap

import (
	"fmt"

	"seehuhn.de/go/sfntsan/sfnt/sfntio"
)

// maxGroups caps allocation at roughly 8 MiB of group records.
const maxGroups = 699050

const maxGroupValue = 1 << 30

// Group is one sequential mapping group shared by formats 12 and 13.
type Group struct {
	StartCharCode uint32
	EndCharCode   uint32
	StartGlyphID  uint32
}

// parseGroups validates the group array common to formats 12 and 13.
// is13 selects the format-13 bound (StartGlyphID < numGlyphs, every
// code in the range maps to the same glyph) over the format-12 bound
// (EndCharCode+StartGlyphID <= numGlyphs, glyphs increment per code;
// deliberately stricter than the last glyph actually reachable).
func parseGroups(subtable []byte, numGlyphs int, is13 bool) ([]Group, error) {
	r := sfntio.NewReader(subtable)

	if _, err := r.U16(); err != nil { // format, already known
		return nil, err
	}
	if _, err := r.U16(); err != nil { // reserved
		return nil, err
	}
	if _, err := r.U32(); err != nil { // length, re-derived on encode
		return nil, err
	}
	if _, err := r.U32(); err != nil { // language
		return nil, err
	}
	numGroups, err := r.U32()
	if err != nil {
		return nil, err
	}
	if numGroups == 0 {
		return nil, fmt.Errorf("cmap/12|13: empty group array")
	}
	if numGroups > maxGroups {
		return nil, fmt.Errorf("cmap/12|13: numGroups %d exceeds cap %d", numGroups, maxGroups)
	}

	groups := make([]Group, numGroups)
	var lastEnd int64 = -1
	for i := range groups {
		start, err := r.U32()
		if err != nil {
			return nil, err
		}
		end, err := r.U32()
		if err != nil {
			return nil, err
		}
		glyph, err := r.U32()
		if err != nil {
			return nil, err
		}
		if start > maxGroupValue || end > maxGroupValue || glyph > maxGroupValue {
			return nil, fmt.Errorf("cmap/12|13: group %d value exceeds 2^30", i)
		}
		if end < start {
			return nil, fmt.Errorf("cmap/12|13: group %d endCharCode < startCharCode", i)
		}
		if int64(start) <= lastEnd {
			return nil, fmt.Errorf("cmap/12|13: groups not strictly ascending at %d", i)
		}
		lastEnd = int64(end)

		if is13 {
			if int(glyph) >= numGlyphs {
				return nil, fmt.Errorf("cmap/13: group %d startGlyphID %d out of range", i, glyph)
			}
		} else {
			if end+glyph > uint32(numGlyphs) {
				return nil, fmt.Errorf("cmap/12: group %d end+startGlyphID out of range", i)
			}
		}
		groups[i] = Group{StartCharCode: start, EndCharCode: end, StartGlyphID: glyph}
	}
	return groups, nil
}

// encodeGroups reconstructs a format 12 or 13 subtable from scratch
// (it is never echoed verbatim, unlike format 4).
func encodeGroups(format uint16, groups []Group) []byte {
	length := 16 + 12*len(groups)
	out := make([]byte, length)
	putU16(out[0:], format)
	putU16(out[2:], 0) // reserved
	putU32(out[4:], uint32(length))
	putU32(out[8:], 0) // language
	putU32(out[12:], uint32(len(groups)))
	pos := 16
	for _, g := range groups {
		putU32(out[pos:], g.StartCharCode)
		putU32(out[pos+4:], g.EndCharCode)
		putU32(out[pos+8:], g.StartGlyphID)
		pos += 12
	}
	return out
}
