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

// Package hmtx parses and re-serializes the "hmtx" table.
package hmtx

import (
	"fmt"

	"seehuhn.de/go/sfntsan/sfnt/sfntio"
)

// LongHorMetric is one (advance width, left side bearing) pair.
type LongHorMetric struct {
	Advance uint16
	LSB     int16
}

// Info is the retained state of an "hmtx" table: NumHMetrics entries
// of (advance, lsb), followed by NumGlyphs-NumHMetrics trailing lsb
// values for glyphs that share the last advance width.
type Info struct {
	Metrics     []LongHorMetric
	TrailingLSB []int16
}

// Parse reads and validates an "hmtx" table body against the bounds
// established by the already-parsed hhea and maxp tables.
func Parse(data []byte, numHMetrics, numGlyphs int, advWidthMax uint16, minLSB int16) (*Info, error) {
	r := sfntio.NewReader(data)

	info := &Info{
		Metrics:     make([]LongHorMetric, numHMetrics),
		TrailingLSB: make([]int16, numGlyphs-numHMetrics),
	}
	for i := 0; i < numHMetrics; i++ {
		adv, err := r.U16()
		if err != nil {
			return nil, err
		}
		lsb, err := r.S16()
		if err != nil {
			return nil, err
		}
		if adv > advWidthMax {
			return nil, fmt.Errorf("hmtx: advance %d exceeds advanceWidthMax %d", adv, advWidthMax)
		}
		if lsb < minLSB {
			return nil, fmt.Errorf("hmtx: lsb %d below minLSB %d", lsb, minLSB)
		}
		info.Metrics[i] = LongHorMetric{Advance: adv, LSB: lsb}
	}
	for i := range info.TrailingLSB {
		lsb, err := r.S16()
		if err != nil {
			return nil, err
		}
		if lsb < minLSB {
			return nil, fmt.Errorf("hmtx: trailing lsb %d below minLSB %d", lsb, minLSB)
		}
		info.TrailingLSB[i] = lsb
	}
	return info, nil
}

// Encode re-serializes the table verbatim.
func (info *Info) Encode() []byte {
	out := make([]byte, 4*len(info.Metrics)+2*len(info.TrailingLSB))
	pos := 0
	for _, m := range info.Metrics {
		putU16(out[pos:], m.Advance)
		putS16(out[pos+2:], m.LSB)
		pos += 4
	}
	for _, lsb := range info.TrailingLSB {
		putS16(out[pos:], lsb)
		pos += 2
	}
	return out
}

func putU16(b []byte, v uint16) { b[0] = byte(v >> 8); b[1] = byte(v) }
func putS16(b []byte, v int16)  { putU16(b, uint16(v)) }
