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

// Package cmap parses and re-serializes the "cmap" table. Only three
// subtables are ever retained: the Windows BMP table (platform 3,
// encoding 1, format 4, echoed verbatim after validation) and the two
// Windows UCS-4 tables (platform 3, encoding 10, formats 12 and 13,
// reconstructed from parsed groups). Every other subtable in the input
// directory is silently dropped.
package cmap

import (
	"fmt"

	"seehuhn.de/go/sfntsan/sfnt/sfntio"
)

const maxSubtableOffset = 1 << 30

// Info is the retained state of a "cmap" table: at most one subtable
// per recognized (platform, encoding, format) combination.
type Info struct {
	// Format4 holds the verbatim bytes of the validated platform-3/
	// encoding-1/format-4 subtable, or nil if none was present.
	Format4 []byte

	// Format12 holds the parsed groups of the platform-3/encoding-10/
	// format-12 subtable, or nil if none was present.
	Format12 []Group

	// Format13 holds the parsed groups of the platform-3/encoding-10/
	// format-13 subtable, or nil if none was present.
	Format13 []Group
}

type subtableHeader struct {
	platform, encoding uint16
	offset             int
	format             uint16
	length             int
}

// Parse reads the cmap subtable directory and validates every
// subtable on the allow-list. numGlyphs comes from the already-parsed
// maxp table: every retained subtable's simulated lookups are bounds-
// checked against it.
func Parse(data []byte, numGlyphs int) (*Info, error) {
	r := sfntio.NewReader(data)

	version, err := r.U16()
	if err != nil {
		return nil, err
	}
	if version != 0 {
		return nil, fmt.Errorf("cmap: unsupported version %d", version)
	}
	numTables, err := r.U16()
	if err != nil {
		return nil, err
	}

	headers := make([]subtableHeader, numTables)
	for i := range headers {
		platform, err := r.U16()
		if err != nil {
			return nil, err
		}
		encoding, err := r.U16()
		if err != nil {
			return nil, err
		}
		offset, err := r.U32()
		if err != nil {
			return nil, err
		}
		if offset > maxSubtableOffset {
			return nil, fmt.Errorf("cmap: subtable %d offset exceeds 2^30", i)
		}
		headers[i] = subtableHeader{platform: platform, encoding: encoding, offset: int(offset)}
	}

	// Offsets must land at or after the end of the directory just
	// read, and strictly within the table; checked only now that the
	// directory's own end position is known.
	endOfHeader := r.Tell()
	for i, h := range headers {
		if h.offset < endOfHeader || h.offset >= len(data) {
			return nil, fmt.Errorf("cmap: subtable %d offset out of bounds", i)
		}
	}

	// Peek every subtable's format and length, whatever its platform:
	// format 4 declares a 16-bit length, formats 12 and 13 a 32-bit
	// one after a reserved halfword, anything else is treated as
	// zero-length and never examined again.
	for i := range headers {
		if err := r.Seek(headers[i].offset); err != nil {
			return nil, err
		}
		format, err := r.U16()
		if err != nil {
			return nil, err
		}
		headers[i].format = format
		switch format {
		case 4:
			length, err := r.U16()
			if err != nil {
				return nil, err
			}
			headers[i].length = int(length)
		case 12, 13:
			if err := r.Skip(2); err != nil { // reserved
				return nil, err
			}
			length, err := r.U32()
			if err != nil {
				return nil, err
			}
			if length > maxSubtableOffset {
				return nil, fmt.Errorf("cmap: subtable %d length exceeds 2^30", i)
			}
			headers[i].length = int(length)
		}
	}
	for i, h := range headers {
		if h.length == 0 {
			continue
		}
		if h.length > len(data)-h.offset {
			return nil, fmt.Errorf("cmap: subtable %d length exceeds table", i)
		}
	}

	info := &Info{}
	for _, h := range headers {
		if h.platform != 3 {
			continue
		}
		body := data[h.offset : h.offset+h.length]

		switch {
		case h.encoding == 1 && h.format == 4:
			sub, err := parseFormat4(body, numGlyphs)
			if err != nil {
				return nil, err
			}
			info.Format4 = sub

		case h.encoding == 10 && h.format == 12:
			groups, err := parseGroups(body, numGlyphs, false)
			if err != nil {
				return nil, err
			}
			info.Format12 = groups

		case h.encoding == 10 && h.format == 13:
			groups, err := parseGroups(body, numGlyphs, true)
			if err != nil {
				return nil, err
			}
			info.Format13 = groups
		}
	}

	return info, nil
}

// Encode re-serializes the cmap header, subtable directory, and
// bodies. Format 13 is advertised under the same (platform 3,
// encoding 10) pair as format 12, which is ambiguous in the
// directory; readers disambiguate by the format field.
func (info *Info) Encode() []byte {
	w := sfntio.NewWriter()

	n := 0
	if info.Format4 != nil {
		n++
	}
	if info.Format12 != nil {
		n++
	}
	if info.Format13 != nil {
		n++
	}

	w.Write(u16(0))
	w.Write(u16(uint16(n)))

	recordOffset := w.Tell()
	w.Pad(n * 8)

	var offset4, offset12, offset13 int
	if info.Format4 != nil {
		offset4 = w.Tell()
		w.Write(info.Format4)
	}
	if info.Format12 != nil {
		offset12 = w.Tell()
		w.Write(encodeGroups(12, info.Format12))
	}
	if info.Format13 != nil {
		offset13 = w.Tell()
		w.Write(encodeGroups(13, info.Format13))
	}
	tableEnd := w.Tell()

	saved := w.SaveChecksum()
	w.ResetChecksum()
	w.Seek(recordOffset)
	if info.Format4 != nil {
		w.Write(u16(3))
		w.Write(u16(1))
		w.Write(u32(uint32(offset4)))
	}
	if info.Format12 != nil {
		w.Write(u16(3))
		w.Write(u16(10))
		w.Write(u32(uint32(offset12)))
	}
	if info.Format13 != nil {
		w.Write(u16(3))
		w.Write(u16(10))
		w.Write(u32(uint32(offset13)))
	}
	w.Seek(tableEnd)
	w.RestoreChecksum(saved)

	return w.Bytes()
}

func u16(v uint16) []byte { return []byte{byte(v >> 8), byte(v)} }
func u32(v uint32) []byte {
	return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}

func putU16(b []byte, v uint16) { b[0] = byte(v >> 8); b[1] = byte(v) }
func putU32(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}
