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

// Package head parses and re-serializes the "head" table.
package head

import (
	"fmt"

	"seehuhn.de/go/sfntsan/sfnt/sfntio"
)

const magicNumber = 0x5F0F3CF5

// flagsMask keeps only bits 0-4 (baseline/linear-metrics/instruction
// hints) and bits 11-13 (the Apple "lossless"/"converted"/
// "ClearType-optimized" bits); every other bit is stripped on parse.
const flagsMask = 0x381f

// macStyleMask keeps only bits 0-5 (bold/italic/underline/outline/
// shadow/condensed/extended).
const macStyleMask = 0x3f

// Info is the retained state of a "head" table.
type Info struct {
	FontRevision     uint32
	Flags            uint16
	UnitsPerEm       uint16
	Created          [8]byte
	Modified         [8]byte
	XMin, YMin       int16
	XMax, YMax       int16
	MacStyle         uint16
	LowestRecPPEM    uint16
	IndexToLocFormat int16
}

// Parse reads and validates a "head" table body.
func Parse(data []byte) (*Info, error) {
	r := sfntio.NewReader(data)

	version, err := r.U32()
	if err != nil {
		return nil, err
	}
	if version>>16 != 1 {
		return nil, fmt.Errorf("head: unsupported version 0x%08x", version)
	}
	info := &Info{}
	if info.FontRevision, err = r.U32(); err != nil {
		return nil, err
	}
	if _, err = r.U32(); err != nil { // checkSumAdjustment, discarded
		return nil, err
	}
	magic, err := r.U32()
	if err != nil {
		return nil, err
	}
	if magic != magicNumber {
		return nil, fmt.Errorf("head: bad magic number 0x%08x", magic)
	}
	flags, err := r.U16()
	if err != nil {
		return nil, err
	}
	info.Flags = flags & flagsMask

	if info.UnitsPerEm, err = r.U16(); err != nil {
		return nil, err
	}
	if (info.UnitsPerEm-1)&info.UnitsPerEm != 0 || info.UnitsPerEm < 16 || info.UnitsPerEm > 16384 {
		return nil, fmt.Errorf("head: unitsPerEm %d not a power of two in [16,16384]", info.UnitsPerEm)
	}
	if info.Created, err = r.R64(); err != nil {
		return nil, err
	}
	if info.Modified, err = r.R64(); err != nil {
		return nil, err
	}
	if info.XMin, err = r.S16(); err != nil {
		return nil, err
	}
	if info.YMin, err = r.S16(); err != nil {
		return nil, err
	}
	if info.XMax, err = r.S16(); err != nil {
		return nil, err
	}
	if info.YMax, err = r.S16(); err != nil {
		return nil, err
	}
	macStyle, err := r.U16()
	if err != nil {
		return nil, err
	}
	info.MacStyle = macStyle & macStyleMask
	if info.LowestRecPPEM, err = r.U16(); err != nil {
		return nil, err
	}
	if _, err = r.S16(); err != nil { // fontDirectionHint, discarded
		return nil, err
	}
	locFmt, err := r.S16()
	if err != nil {
		return nil, err
	}
	if locFmt != 0 && locFmt != 1 {
		return nil, fmt.Errorf("head: bad indexToLocFormat %d", locFmt)
	}
	info.IndexToLocFormat = locFmt
	glyphDataFormat, err := r.S16()
	if err != nil {
		return nil, err
	}
	if glyphDataFormat != 0 {
		return nil, fmt.Errorf("head: unsupported glyphDataFormat %d", glyphDataFormat)
	}
	return info, nil
}

// Encode re-serializes the table. checkSumAdjustment is written as
// zero and fontDirectionHint is hardcoded to 2 regardless of the
// input.
func (info *Info) Encode() []byte {
	out := make([]byte, 54)
	putU32(out[0:], 0x00010000)
	putU32(out[4:], info.FontRevision)
	putU32(out[8:], 0) // checkSumAdjustment
	putU32(out[12:], magicNumber)
	putU16(out[16:], info.Flags)
	putU16(out[18:], info.UnitsPerEm)
	copy(out[20:28], info.Created[:])
	copy(out[28:36], info.Modified[:])
	putS16(out[36:], info.XMin)
	putS16(out[38:], info.YMin)
	putS16(out[40:], info.XMax)
	putS16(out[42:], info.YMax)
	putU16(out[44:], info.MacStyle)
	putU16(out[46:], info.LowestRecPPEM)
	putS16(out[48:], 2) // fontDirectionHint
	putS16(out[50:], info.IndexToLocFormat)
	putS16(out[52:], 0) // glyphDataFormat
	return out
}

// PatchChecksum overwrites the checkSumAdjustment field in-place in
// an already-encoded head table, for callers that want the true
// adjustment value instead of the zero Encode writes.
func PatchChecksum(headData []byte, totalChecksum uint32) {
	putU32(headData[8:12], 0xB1B0AFBA-totalChecksum)
}

func putU16(b []byte, v uint16) { b[0] = byte(v >> 8); b[1] = byte(v) }
func putS16(b []byte, v int16)  { putU16(b, uint16(v)) }
func putU32(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}
