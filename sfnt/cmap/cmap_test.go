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
	"testing"

	"github.com/google/go-cmp/cmp"
)

// buildTable assembles a full cmap table from (platform, encoding,
// body) triples, laying the bodies out after the subtable directory in
// the order given.
func buildTable(subs []struct {
	platform, encoding uint16
	body               []byte
}) []byte {
	n := len(subs)
	out := []byte{0, 0, byte(n >> 8), byte(n)}
	offset := 4 + 8*n
	for _, s := range subs {
		out = append(out,
			byte(s.platform>>8), byte(s.platform),
			byte(s.encoding>>8), byte(s.encoding),
			byte(offset>>24), byte(offset>>16), byte(offset>>8), byte(offset))
		offset += len(s.body)
	}
	for _, s := range subs {
		out = append(out, s.body...)
	}
	return out
}

func TestParseRetainsAllowListedSubtables(t *testing.T) {
	groups := []Group{{StartCharCode: 2, EndCharCode: 6, StartGlyphID: 1}}
	table := buildTable([]struct {
		platform, encoding uint16
		body               []byte
	}{
		{3, 1, validFormat4()},
		{3, 10, encodeGroups(12, groups)},
	})

	info, err := Parse(table, 10)
	if err != nil {
		t.Fatal(err)
	}
	if string(info.Format4) != string(validFormat4()) {
		t.Errorf("format-4 subtable not echoed verbatim")
	}
	if diff := cmp.Diff(groups, info.Format12); diff != "" {
		t.Errorf("format-12 groups mismatch (-want +got):\n%s", diff)
	}
	if info.Format13 != nil {
		t.Errorf("unexpected format-13 subtable")
	}
}

func TestParseIgnoresForeignPlatforms(t *testing.T) {
	// A platform-1 subtable with garbage content must be dropped
	// without being validated: only its format field is peeked.
	table := buildTable([]struct {
		platform, encoding uint16
		body               []byte
	}{
		{1, 0, []byte{0xde, 0xad, 0xbe, 0xef}},
		{3, 1, validFormat4()},
	})

	info, err := Parse(table, 10)
	if err != nil {
		t.Fatal(err)
	}
	if info.Format4 == nil || info.Format12 != nil || info.Format13 != nil {
		t.Errorf("retained subtables wrong: %+v", info)
	}
}

func TestParseRejectsSubtableOffsetOutOfBounds(t *testing.T) {
	table := buildTable([]struct {
		platform, encoding uint16
		body               []byte
	}{
		{3, 1, validFormat4()},
	})
	// point the subtable record past the end of the table
	table[8], table[9], table[10], table[11] = 0, 0, 0xff, 0xff
	if _, err := Parse(table, 10); err == nil {
		t.Fatal("expected rejection for out-of-bounds subtable offset")
	}
}

func TestParseRejectsNonzeroVersion(t *testing.T) {
	table := buildTable([]struct {
		platform, encoding uint16
		body               []byte
	}{
		{3, 1, validFormat4()},
	})
	table[1] = 1
	if _, err := Parse(table, 10); err == nil {
		t.Fatal("expected rejection for nonzero cmap version")
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	info := &Info{
		Format4:  validFormat4(),
		Format12: []Group{{StartCharCode: 2, EndCharCode: 5, StartGlyphID: 3}},
		Format13: []Group{{StartCharCode: 0x20000, EndCharCode: 0x2FFFF, StartGlyphID: 2}},
	}
	encoded := info.Encode()
	got, err := Parse(encoded, 10)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(info, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	// re-encoding the re-parsed table must be byte-identical
	if string(got.Encode()) != string(encoded) {
		t.Errorf("Encode not idempotent")
	}
}

func TestEncodeAdvertisesFormat13UnderEncoding10(t *testing.T) {
	info := &Info{
		Format13: []Group{{StartCharCode: 0, EndCharCode: 10, StartGlyphID: 1}},
	}
	out := info.Encode()
	if got := uint16(out[2])<<8 | uint16(out[3]); got != 1 {
		t.Fatalf("numTables = %d, want 1", got)
	}
	platform := uint16(out[4])<<8 | uint16(out[5])
	encoding := uint16(out[6])<<8 | uint16(out[7])
	if platform != 3 || encoding != 10 {
		t.Errorf("directory entry = (%d, %d), want (3, 10)", platform, encoding)
	}
}
