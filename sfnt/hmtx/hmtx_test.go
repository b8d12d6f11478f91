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

package hmtx

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRoundTrip(t *testing.T) {
	info := &Info{
		Metrics: []LongHorMetric{
			{Advance: 500, LSB: 10},
			{Advance: 600, LSB: -5},
		},
		TrailingLSB: []int16{3, -2, 0},
	}
	got, err := Parse(info.Encode(), 2, 5, 1000, -10)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(info, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRejectsAdvanceAboveMax(t *testing.T) {
	data := []byte{0x03, 0xe8, 0, 0} // advance=1000, lsb=0
	if _, err := Parse(data, 1, 1, 999, 0); err == nil {
		t.Fatal("expected rejection for advance exceeding advanceWidthMax")
	}
}

func TestParseRejectsLSBBelowMin(t *testing.T) {
	data := []byte{0x00, 0x05, 0xff, 0xf6} // advance=5, lsb=-10
	if _, err := Parse(data, 1, 1, 1000, -5); err == nil {
		t.Fatal("expected rejection for lsb below minLSB")
	}
}

func TestParseRejectsTrailingLSBBelowMin(t *testing.T) {
	data := []byte{0xff, 0xfb} // trailing lsb = -5
	if _, err := Parse(data, 0, 1, 1000, 0); err == nil {
		t.Fatal("expected rejection for trailing lsb below minLSB")
	}
}
