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

// Package name never parses the input "name" table: it may be
// hostile, and nothing downstream of this sanitizer needs the
// original font's naming metadata. Encode synthesizes a fixed,
// generic replacement instead.
package name

import "seehuhn.de/go/sfntsan/sfnt/sfntio"

// record is one synthesized name string. nameID 7 (trademark) is
// intentionally absent from the list below, matching the reference
// implementation's record set.
type record struct {
	nameID uint16
	value  string
}

var records = []record{
	{0, "Derived font data"},
	{1, "OTC derived font"},
	{2, "Unspecified"},
	{3, "UniqueID"},
	{4, "OTC derivied font"},
	{5, "Version 0.0"},
	{6, "False"},
	{8, "OTC"},
	{9, "OTC"},
}

// Encode synthesizes a "name" table with one Windows/Unicode/
// US-English record per entry in records. Each string is written as
// one big-endian uint16 per input byte: the source strings are plain
// ASCII, so this is a naive "widening", not real UTF-16BE transcoding.
func Encode() []byte {
	w := sfntio.NewWriter()

	w.Write(u16(0))              // format
	w.Write(u16(uint16(len(records))))
	stringOffset := 6 + 12*len(records)
	w.Write(u16(uint16(stringOffset)))

	offset := 0
	for _, rec := range records {
		length := 2 * len(rec.value)
		w.Write(u16(3))      // platform: Windows
		w.Write(u16(1))      // encoding: Unicode BMP
		w.Write(u16(0x0409)) // language: US English
		w.Write(u16(rec.nameID))
		w.Write(u16(uint16(length)))
		w.Write(u16(uint16(offset)))
		offset += length
	}
	for _, rec := range records {
		for _, b := range []byte(rec.value) {
			w.Write(u16(uint16(b)))
		}
	}

	return w.Bytes()
}

func u16(v uint16) []byte { return []byte{byte(v >> 8), byte(v)} }
