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

package sanitize

import (
	"fmt"

	"seehuhn.de/go/sfntsan/sfnt/cmap"
	"seehuhn.de/go/sfntsan/sfnt/glyf"
	"seehuhn.de/go/sfntsan/sfnt/head"
	"seehuhn.de/go/sfntsan/sfnt/hhea"
	"seehuhn.de/go/sfntsan/sfnt/hmtx"
	"seehuhn.de/go/sfntsan/sfnt/loca"
	"seehuhn.de/go/sfntsan/sfnt/maxp"
	"seehuhn.de/go/sfntsan/sfnt/name"
	"seehuhn.de/go/sfntsan/sfnt/os2"
	"seehuhn.de/go/sfntsan/sfnt/post"
)

// tableDescriptor is one entry in the static table registry: a tag, a
// parser that populates the Font from the table's raw bytes, a
// should-serialize predicate, and a serializer. Parse and serialize
// both run in registry order, which is also the fixed dependency
// order: maxp before cmap/hhea/hmtx/loca/post/glyf, head before loca,
// loca before glyf, hhea before hmtx.
type tableDescriptor struct {
	tag             string
	required        bool
	parse           func(f *Font, data []byte) error
	shouldSerialize func(f *Font) bool
	serialize       func(f *Font) []byte
}

// registry is the fixed, ordered table list. Its order is load-bearing:
// changing it changes both parse and serialize order.
var registry = []tableDescriptor{
	{
		tag:      "maxp",
		required: true,
		parse: func(f *Font, data []byte) error {
			info, err := maxp.Parse(data)
			if err != nil {
				return err
			}
			f.Maxp = info
			return nil
		},
		shouldSerialize: func(f *Font) bool { return f.Maxp != nil },
		serialize:       func(f *Font) []byte { return f.Maxp.Encode() },
	},
	{
		tag:      "cmap",
		required: true,
		parse: func(f *Font, data []byte) error {
			info, err := cmap.Parse(data, f.Maxp.NumGlyphs)
			if err != nil {
				return err
			}
			f.Cmap = info
			return nil
		},
		shouldSerialize: func(f *Font) bool { return f.Cmap != nil },
		serialize:       func(f *Font) []byte { return f.Cmap.Encode() },
	},
	{
		tag:      "head",
		required: true,
		parse: func(f *Font, data []byte) error {
			info, err := head.Parse(data)
			if err != nil {
				return err
			}
			f.Head = info
			return nil
		},
		shouldSerialize: func(f *Font) bool { return f.Head != nil },
		serialize:       func(f *Font) []byte { return f.Head.Encode() },
	},
	{
		tag:      "hhea",
		required: true,
		parse: func(f *Font, data []byte) error {
			info, err := hhea.Parse(data, f.Maxp.NumGlyphs)
			if err != nil {
				return err
			}
			f.Hhea = info
			return nil
		},
		shouldSerialize: func(f *Font) bool { return f.Hhea != nil },
		serialize:       func(f *Font) []byte { return f.Hhea.Encode() },
	},
	{
		tag:      "hmtx",
		required: true,
		parse: func(f *Font, data []byte) error {
			info, err := hmtx.Parse(data, f.Hhea.NumHMetrics, f.Maxp.NumGlyphs, f.Hhea.AdvanceWidthMax, f.Hhea.MinLSB)
			if err != nil {
				return err
			}
			f.Hmtx = info
			return nil
		},
		shouldSerialize: func(f *Font) bool { return f.Hmtx != nil },
		serialize:       func(f *Font) []byte { return f.Hmtx.Encode() },
	},
	{
		tag:      "name",
		required: true,
		// name is never parsed: the original table may be hostile and
		// nothing downstream needs it. Presence is still required on
		// input, but the bytes themselves are ignored.
		parse:           func(f *Font, data []byte) error { return nil },
		shouldSerialize: func(f *Font) bool { return true },
		serialize:       func(f *Font) []byte { return name.Encode() },
	},
	{
		tag:      "OS/2",
		required: true,
		parse: func(f *Font, data []byte) error {
			info, err := os2.Parse(data)
			if err != nil {
				return err
			}
			f.OS2 = info
			return nil
		},
		shouldSerialize: func(f *Font) bool { return f.OS2 != nil },
		serialize:       func(f *Font) []byte { return f.OS2.Encode() },
	},
	{
		tag:      "post",
		required: true,
		parse: func(f *Font, data []byte) error {
			info, err := post.Parse(data, f.Maxp.NumGlyphs)
			if err != nil {
				return err
			}
			f.Post = info
			return nil
		},
		shouldSerialize: func(f *Font) bool { return f.Post != nil },
		serialize:       func(f *Font) []byte { return f.Post.Encode() },
	},
	{
		tag:      "loca",
		required: true,
		parse: func(f *Font, data []byte) error {
			info, err := loca.Parse(data, f.Head.IndexToLocFormat, f.Maxp.NumGlyphs)
			if err != nil {
				return err
			}
			f.Loca = info
			return nil
		},
		shouldSerialize: func(f *Font) bool { return f.Loca != nil },
		serialize: func(f *Font) []byte {
			return loca.Encode(f.Loca.Offsets, f.Head.IndexToLocFormat)
		},
	},
	{
		tag:      "glyf",
		required: true,
		parse: func(f *Font, data []byte) error {
			info, newOffsets, err := glyf.Parse(data, f.Loca.Offsets)
			if err != nil {
				return err
			}
			// padding each glyph to 4 bytes can grow the table, so
			// check the result still fits 16-bit half-offsets
			if f.Head.IndexToLocFormat == 0 && newOffsets[len(newOffsets)-1] > 2*0xFFFF {
				return fmt.Errorf("glyf: rewritten table too large for short loca offsets")
			}
			f.Glyf = info
			f.Loca.Offsets = newOffsets
			return nil
		},
		shouldSerialize: func(f *Font) bool { return f.Glyf != nil },
		serialize:       func(f *Font) []byte { return f.Glyf.Encode() },
	},
}
