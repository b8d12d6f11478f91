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

// Package glyf strips hinting bytecode from simple glyphs and
// rewrites the "glyf" table and its accompanying loca offsets.
// Composite glyphs are passed through verbatim, including any
// trailing instructions of their own; see the note in rewriteGlyph.
package glyf

import "fmt"

const minGlyphSize = 14

// Glyph is one rewritten glyph body, ready for 4-byte-aligned
// concatenation.
type Glyph struct {
	Body []byte
}

// Info is the rewritten "glyf" table: one entry per glyph, including
// empty entries for glyphs with a zero-length input range.
type Info struct {
	Glyphs []Glyph
}

// Parse strips hinting bytecode from every simple glyph named by
// consecutive loca offsets, and rewrites loca's offsets to match.
// data is the full glyf table body; locaOffsets has numGlyphs+1
// entries as produced by the loca package.
//
// It returns the rewritten glyph table and the new loca offsets
// (replacing the ones passed in).
func Parse(data []byte, locaOffsets []uint32) (*Info, []uint32, error) {
	numGlyphs := len(locaOffsets) - 1
	if numGlyphs < 0 {
		return nil, nil, fmt.Errorf("glyf: invalid loca length")
	}

	glyphs := make([]Glyph, numGlyphs)
	outOffsets := make([]uint32, numGlyphs+1)
	var current uint32

	for i := 0; i < numGlyphs; i++ {
		start, end := locaOffsets[i], locaOffsets[i+1]
		outOffsets[i] = current
		if end == start {
			continue
		}
		if end < start || int(end) > len(data) {
			return nil, nil, fmt.Errorf("glyf: glyph %d range [%d,%d) out of bounds", i, start, end)
		}
		body, err := rewriteGlyph(data[start:end])
		if err != nil {
			return nil, nil, fmt.Errorf("glyf: glyph %d: %w", i, err)
		}
		if len(body) < minGlyphSize {
			return nil, nil, fmt.Errorf("glyf: glyph %d shrank below %d bytes", i, minGlyphSize)
		}
		glyphs[i] = Glyph{Body: body}
		current += uint32(len(body))
		if pad := current % 4; pad != 0 {
			current += 4 - pad
		}
	}
	outOffsets[numGlyphs] = current

	return &Info{Glyphs: glyphs}, outOffsets, nil
}

// rewriteGlyph strips a simple glyph's hinting bytecode, or returns
// a composite glyph unchanged.
func rewriteGlyph(g []byte) ([]byte, error) {
	if len(g) < 10 {
		return nil, fmt.Errorf("glyph header truncated")
	}
	numContours := int16(uint16(g[0])<<8 | uint16(g[1]))
	xMin := int16(uint16(g[2])<<8 | uint16(g[3]))
	yMin := int16(uint16(g[4])<<8 | uint16(g[5]))
	xMax := int16(uint16(g[6])<<8 | uint16(g[7]))
	yMax := int16(uint16(g[8])<<8 | uint16(g[9]))
	if xMin > xMax || yMin > yMax {
		return nil, fmt.Errorf("invalid bounding box")
	}

	if numContours < 0 {
		// Composite glyph: components have already had their own
		// simple-glyph bytecode stripped; the composite's own
		// trailing WE_HAVE_INSTRUCTIONS block, if present, is passed
		// through unexamined.
		out := make([]byte, len(g))
		copy(out, g)
		return out, nil
	}

	pos := 10 + int(numContours)*2
	if pos+2 > len(g) {
		return nil, fmt.Errorf("truncated before instructionLength")
	}
	instrLen := int(uint16(g[pos])<<8 | uint16(g[pos+1]))
	bytecodeStart := pos + 2
	bytecodeEnd := bytecodeStart + instrLen
	if bytecodeEnd > len(g) {
		return nil, fmt.Errorf("instructionLength %d exceeds glyph body", instrLen)
	}

	out := make([]byte, 0, len(g)-instrLen)
	out = append(out, g[:pos]...)
	out = append(out, 0, 0) // instructionLength := 0
	out = append(out, g[bytecodeEnd:]...)
	return out, nil
}

// Encode concatenates every glyph body, 4-byte aligned, in glyph
// index order.
func (info *Info) Encode() []byte {
	var total int
	for _, g := range info.Glyphs {
		total += len(g.Body)
		if pad := total % 4; pad != 0 {
			total += 4 - pad
		}
	}
	out := make([]byte, 0, total)
	for _, g := range info.Glyphs {
		out = append(out, g.Body...)
		if pad := len(out) % 4; pad != 0 {
			out = append(out, make([]byte, 4-pad)...)
		}
	}
	return out
}
