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

// Package hhea parses and re-serializes the "hhea" table.
package hhea

import (
	"fmt"

	"seehuhn.de/go/sfntsan/sfnt/sfntio"
)

// Info is the retained state of an "hhea" table.
type Info struct {
	Ascent          int16
	Descent         int16
	LineGap         int16
	AdvanceWidthMax uint16
	MinLSB          int16
	MinRSB          int16
	XMaxExtent      int16
	CaretSlopeRise  int16
	CaretSlopeRun   int16
	CaretOffset     int16
	NumHMetrics     int
}

// Parse reads and validates an "hhea" table body. numGlyphs comes
// from the already-parsed maxp table: num_hmetrics must not exceed
// it.
func Parse(data []byte, numGlyphs int) (*Info, error) {
	r := sfntio.NewReader(data)

	version, err := r.U32()
	if err != nil {
		return nil, err
	}
	if version>>16 != 1 {
		return nil, fmt.Errorf("hhea: unsupported version 0x%08x", version)
	}

	info := &Info{}
	if info.Ascent, err = r.S16(); err != nil {
		return nil, err
	}
	if info.Descent, err = r.S16(); err != nil {
		return nil, err
	}
	lineGap, err := r.S16()
	if err != nil {
		return nil, err
	}
	if lineGap < 0 {
		lineGap = 0
	}
	info.LineGap = lineGap
	if info.AdvanceWidthMax, err = r.U16(); err != nil {
		return nil, err
	}
	if info.MinLSB, err = r.S16(); err != nil {
		return nil, err
	}
	if info.MinRSB, err = r.S16(); err != nil {
		return nil, err
	}
	if info.XMaxExtent, err = r.S16(); err != nil {
		return nil, err
	}
	if info.CaretSlopeRise, err = r.S16(); err != nil {
		return nil, err
	}
	if info.CaretSlopeRun, err = r.S16(); err != nil {
		return nil, err
	}
	if info.CaretOffset, err = r.S16(); err != nil {
		return nil, err
	}
	if err = r.Skip(8); err != nil { // reserved
		return nil, err
	}
	metricDataFormat, err := r.S16()
	if err != nil {
		return nil, err
	}
	if metricDataFormat != 0 {
		return nil, fmt.Errorf("hhea: unsupported metricDataFormat %d", metricDataFormat)
	}
	numHMetrics, err := r.U16()
	if err != nil {
		return nil, err
	}
	if int(numHMetrics) > numGlyphs {
		return nil, fmt.Errorf("hhea: numberOfHMetrics %d exceeds numGlyphs %d", numHMetrics, numGlyphs)
	}
	info.NumHMetrics = int(numHMetrics)
	return info, nil
}

// Encode re-serializes the table.
func (info *Info) Encode() []byte {
	out := make([]byte, 36)
	putU32(out[0:], 0x00010000)
	putS16(out[4:], info.Ascent)
	putS16(out[6:], info.Descent)
	putS16(out[8:], info.LineGap)
	putU16(out[10:], info.AdvanceWidthMax)
	putS16(out[12:], info.MinLSB)
	putS16(out[14:], info.MinRSB)
	putS16(out[16:], info.XMaxExtent)
	putS16(out[18:], info.CaretSlopeRise)
	putS16(out[20:], info.CaretSlopeRun)
	putS16(out[22:], info.CaretOffset)
	// bytes 24..32 reserved, left zero
	putS16(out[32:], 0) // metricDataFormat
	putU16(out[34:], uint16(info.NumHMetrics))
	return out
}

func putU16(b []byte, v uint16) { b[0] = byte(v >> 8); b[1] = byte(v) }
func putS16(b []byte, v int16)  { putU16(b, uint16(v)) }
func putU32(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}
