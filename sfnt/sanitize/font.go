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

// Package sanitize holds the Font Context, the table registry, and
// the container orchestrator: the top-level entry point that parses
// an untrusted font, validates every recognized table against its
// cross-table invariants, and re-emits a narrowed-scope, structurally
// valid replacement.
package sanitize

import (
	"seehuhn.de/go/sfntsan/sfnt/cmap"
	"seehuhn.de/go/sfntsan/sfnt/glyf"
	"seehuhn.de/go/sfntsan/sfnt/head"
	"seehuhn.de/go/sfntsan/sfnt/hhea"
	"seehuhn.de/go/sfntsan/sfnt/hmtx"
	"seehuhn.de/go/sfntsan/sfnt/loca"
	"seehuhn.de/go/sfntsan/sfnt/maxp"
	"seehuhn.de/go/sfntsan/sfnt/os2"
	"seehuhn.de/go/sfntsan/sfnt/post"
)

// Font is the Font Context: one optional slot per recognized table
// tag, populated in registry order during the parse phase. A nil
// field means the input font had no such table (only possible for
// tags not on the Required list, but every recognized tag is
// required, so in practice every field of a successfully parsed Font
// is non-nil).
type Font struct {
	Maxp *maxp.Info
	Cmap *cmap.Info
	Head *head.Info
	Hhea *hhea.Info
	Hmtx *hmtx.Info
	OS2  *os2.Info
	Post *post.Info

	// Loca and Glyf are populated together: glyf.Parse both strips
	// hinting bytecode from Glyf and rewrites Loca's offsets to match
	// the shrunk glyph bodies.
	Loca *loca.Info
	Glyf *glyf.Info
}
