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

package hhea

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func makeValid() *Info {
	return &Info{
		Ascent:          800,
		Descent:         -200,
		LineGap:         90,
		AdvanceWidthMax: 1000,
		MinLSB:          -50,
		MinRSB:          -50,
		XMaxExtent:      900,
		CaretSlopeRise:  1,
		CaretSlopeRun:   0,
		CaretOffset:     0,
		NumHMetrics:     5,
	}
}

func TestRoundTrip(t *testing.T) {
	info := makeValid()
	got, err := Parse(info.Encode(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(info, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestParseClampsNegativeLineGap(t *testing.T) {
	info := makeValid()
	info.LineGap = -5
	encoded := info.Encode()
	got, err := Parse(encoded, 10)
	if err != nil {
		t.Fatal(err)
	}
	if got.LineGap != 0 {
		t.Errorf("LineGap = %d, want 0", got.LineGap)
	}
}

func TestParseRejectsNumHMetricsExceedingNumGlyphs(t *testing.T) {
	info := makeValid()
	info.NumHMetrics = 20
	encoded := info.Encode()
	if _, err := Parse(encoded, 10); err == nil {
		t.Fatal("expected rejection when numHMetrics exceeds numGlyphs")
	}
}

func TestParseRejectsBadVersion(t *testing.T) {
	data := make([]byte, 36)
	data[0], data[1], data[2], data[3] = 0, 0, 0, 0
	if _, err := Parse(data, 10); err == nil {
		t.Fatal("expected rejection for version != 1.0")
	}
}

func TestParseRejectsNonZeroMetricDataFormat(t *testing.T) {
	info := makeValid()
	encoded := info.Encode()
	encoded[33] = 1 // metricDataFormat lives at offset 32-33
	if _, err := Parse(encoded, 10); err == nil {
		t.Fatal("expected rejection for nonzero metricDataFormat")
	}
}
