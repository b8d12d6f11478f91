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

package head

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func makeValid() *Info {
	return &Info{
		FontRevision:     0x00010000,
		Flags:            0x0003,
		UnitsPerEm:       1024,
		XMin:             -200,
		YMin:             -300,
		XMax:             1200,
		YMax:             1100,
		MacStyle:         0x01,
		LowestRecPPEM:    8,
		IndexToLocFormat: 1,
	}
}

func TestRoundTrip(t *testing.T) {
	info := makeValid()
	encoded := info.Encode()
	got, err := Parse(encoded)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(info, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeHardcodesSafeFields(t *testing.T) {
	info := makeValid()
	out := info.Encode()
	// checkSumAdjustment at offset 8 must be zero.
	for i := 8; i < 12; i++ {
		if out[i] != 0 {
			t.Errorf("checkSumAdjustment byte %d = %d, want 0", i, out[i])
		}
	}
	// fontDirectionHint at offset 48 must be 2.
	got := int16(uint16(out[48])<<8 | uint16(out[49]))
	if got != 2 {
		t.Errorf("fontDirectionHint = %d, want 2", got)
	}
}

func TestParseAcceptsNonzeroVersionFraction(t *testing.T) {
	out := makeValid().Encode()
	// only the high halfword of the version must be 1
	out[2], out[3] = 0, 1 // version 0x00010001
	if _, err := Parse(out); err != nil {
		t.Fatalf("version 0x00010001 should be accepted: %v", err)
	}
}

func TestParseRejectsBadVersion(t *testing.T) {
	out := makeValid().Encode()
	out[0], out[1] = 0, 2 // version 0x00020000
	if _, err := Parse(out); err == nil {
		t.Fatal("expected rejection for version 2.0")
	}
}

func TestParseRejectsBadMagic(t *testing.T) {
	info := makeValid()
	out := info.Encode()
	// magic number lives at offset 12.
	out[12] ^= 0xff
	if _, err := Parse(out); err == nil {
		t.Fatal("expected rejection for bad magic number")
	}
}

func TestParseRejectsNonPowerOfTwoUnitsPerEm(t *testing.T) {
	info := makeValid()
	out := info.Encode()
	// unitsPerEm lives at offset 18; 1000 is in range but not a power
	// of two.
	out[18] = 0x03
	out[19] = 0xe8
	if _, err := Parse(out); err == nil {
		t.Fatal("expected rejection for non-power-of-two unitsPerEm")
	}
}

func TestParseRejectsBadIndexToLocFormat(t *testing.T) {
	info := makeValid()
	info.IndexToLocFormat = 1
	out := info.Encode()
	out[50] = 0
	out[51] = 2 // indexToLocFormat lives at offset 50 in the encoded table
	if _, err := Parse(out); err == nil {
		t.Fatal("expected rejection for indexToLocFormat == 2")
	}
}

func TestParseRejectsTruncated(t *testing.T) {
	if _, err := Parse(make([]byte, 10)); err == nil {
		t.Fatal("expected rejection for truncated input")
	}
}
