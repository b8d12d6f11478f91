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

func TestGroupsRoundTrip(t *testing.T) {
	groups := []Group{
		{StartCharCode: 0x20, EndCharCode: 0x7E, StartGlyphID: 1},
		{StartCharCode: 0x100, EndCharCode: 0x101, StartGlyphID: 96},
	}
	encoded := encodeGroups(12, groups)
	got, err := parseGroups(encoded, 1000, false)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(groups, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeGroupsHeader(t *testing.T) {
	groups := []Group{{StartCharCode: 1, EndCharCode: 2, StartGlyphID: 3}}
	out := encodeGroups(13, groups)
	if len(out) != 28 {
		t.Fatalf("length = %d, want 28", len(out))
	}
	if got := uint16(out[0])<<8 | uint16(out[1]); got != 13 {
		t.Errorf("format = %d, want 13", got)
	}
	// the embedded length field must match the actual length
	if got := uint32(out[4])<<24 | uint32(out[5])<<16 | uint32(out[6])<<8 | uint32(out[7]); got != 28 {
		t.Errorf("embedded length = %d, want 28", got)
	}
}

func TestParseGroupsRejectsOverlap(t *testing.T) {
	groups := []Group{
		{StartCharCode: 0, EndCharCode: 10, StartGlyphID: 1},
		{StartCharCode: 10, EndCharCode: 20, StartGlyphID: 1},
	}
	if _, err := parseGroups(encodeGroups(12, groups), 100, false); err == nil {
		t.Fatal("expected rejection for overlapping groups")
	}
}

func TestParseGroupsRejectsDescending(t *testing.T) {
	groups := []Group{
		{StartCharCode: 100, EndCharCode: 110, StartGlyphID: 1},
		{StartCharCode: 50, EndCharCode: 60, StartGlyphID: 1},
	}
	if _, err := parseGroups(encodeGroups(12, groups), 200, false); err == nil {
		t.Fatal("expected rejection for descending groups")
	}
}

func TestParseGroupsRejectsInvertedRange(t *testing.T) {
	groups := []Group{{StartCharCode: 10, EndCharCode: 5, StartGlyphID: 1}}
	if _, err := parseGroups(encodeGroups(12, groups), 100, false); err == nil {
		t.Fatal("expected rejection for endCharCode < startCharCode")
	}
}

func TestParseGroupsFormat12GlyphBound(t *testing.T) {
	// end + startGlyphID = 90 + 20 = 110 > 100 glyphs
	groups := []Group{{StartCharCode: 80, EndCharCode: 90, StartGlyphID: 20}}
	if _, err := parseGroups(encodeGroups(12, groups), 100, false); err == nil {
		t.Fatal("expected rejection for format-12 glyph range past numGlyphs")
	}
	// the same group is fine under the format-13 rule, where every
	// code in the range maps to the single glyph 20
	if _, err := parseGroups(encodeGroups(13, groups), 100, true); err != nil {
		t.Fatalf("format-13 bound should accept: %v", err)
	}
}

func TestParseGroupsFormat13GlyphBound(t *testing.T) {
	groups := []Group{{StartCharCode: 0, EndCharCode: 10, StartGlyphID: 100}}
	if _, err := parseGroups(encodeGroups(13, groups), 100, true); err == nil {
		t.Fatal("expected rejection for format-13 startGlyphID >= numGlyphs")
	}
}

func TestParseGroupsRejectsValueAboveCap(t *testing.T) {
	groups := []Group{{StartCharCode: 1 << 30, EndCharCode: 1<<30 + 1, StartGlyphID: 0}}
	encoded := encodeGroups(12, groups)
	// bump startCharCode past 2^30
	encoded[16] = 0x40
	encoded[19] = 0x01
	if _, err := parseGroups(encoded, 100, false); err == nil {
		t.Fatal("expected rejection for group value above 2^30")
	}
}

func TestParseGroupsRejectsEmpty(t *testing.T) {
	if _, err := parseGroups(encodeGroups(12, nil), 100, false); err == nil {
		t.Fatal("expected rejection for numGroups == 0")
	}
}

func TestParseGroupsRejectsHugeCount(t *testing.T) {
	encoded := encodeGroups(12, nil)
	// numGroups lives at offset 12; claim one more group than the cap
	n := uint32(maxGroups + 1)
	encoded[12] = byte(n >> 24)
	encoded[13] = byte(n >> 16)
	encoded[14] = byte(n >> 8)
	encoded[15] = byte(n)
	if _, err := parseGroups(encoded, 100, false); err == nil {
		t.Fatal("expected rejection for numGroups above cap")
	}
}
