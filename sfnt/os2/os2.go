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

// Package os2 treats the "OS/2" table as opaque. There are many fields
// in OS/2, nearly none of which any downstream rasterizer's attack
// surface depends on, so this module records only the table's raw
// bytes and echoes them unchanged on output.
package os2

// Info is the retained state of an "OS/2" table: its raw bytes,
// passed through without interpretation.
type Info struct {
	Data []byte
}

// Parse records the table body verbatim. There is nothing to
// validate: OS/2 is carried opaquely.
func Parse(data []byte) (*Info, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return &Info{Data: out}, nil
}

// Encode re-emits the original bytes unchanged.
func (info *Info) Encode() []byte {
	return info.Data
}
