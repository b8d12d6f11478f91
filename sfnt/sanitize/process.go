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
	"golang.org/x/exp/slices"

	"seehuhn.de/go/sfntsan/sfnt/sfntio"
	"seehuhn.de/go/sfntsan/sfnt/table"
)

const maxFontSize = 1 << 30 // 1 GiB

type directoryRecord struct {
	tag            table.Tag
	offset, length uint32
}

// Process parses an untrusted font, validates and rewrites every
// recognized table, and returns the re-assembled output bytes. Any
// anomaly anywhere in the input is a single *RejectError; there is no
// partial success.
func Process(data []byte) ([]byte, error) {
	w := sfntio.NewWriter()
	if err := ProcessTo(data, w); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// ProcessTo is Process writing into a caller-supplied sink, which
// must be empty. On failure, whatever was partially written to w is
// left as-is.
func ProcessTo(data []byte, w *sfntio.Writer) error {
	if len(data) > maxFontSize {
		return reject("", "input exceeds 1 GiB")
	}

	records, err := parseDirectory(data)
	if err != nil {
		return err
	}

	byTag := make(map[string]directoryRecord, len(records))
	for _, rec := range records {
		byTag[rec.tag.String()] = rec
	}

	font := &Font{}
	for _, desc := range registry {
		rec, ok := byTag[desc.tag]
		if !ok {
			if desc.required {
				return reject("", "missing required table "+desc.tag)
			}
			continue
		}
		body := data[rec.offset : rec.offset+rec.length]
		if err := desc.parse(font, body); err != nil {
			return rejectf(desc.tag, err)
		}
	}

	serializeFont(font, w)
	return nil
}

// parseDirectory reads and validates the sfnt header and table
// directory, returning one record per directory entry. It does not
// look at table bodies.
func parseDirectory(data []byte) ([]directoryRecord, error) {
	r := sfntio.NewReader(data)

	version, err := r.U32()
	if err != nil {
		return nil, rejectf("", err)
	}
	if version != table.VersionTrueType {
		if version == table.VersionOpenTypeCFF {
			return nil, reject("", "CFF outlines are not supported")
		}
		return nil, reject("", "unsupported sfnt version")
	}

	numTablesU, err := r.U16()
	if err != nil {
		return nil, rejectf("", err)
	}
	numTables := int(numTablesU)
	if numTables < 1 || numTables >= 4096 {
		return nil, reject("", "invalid numTables")
	}

	searchRange, err := r.U16()
	if err != nil {
		return nil, rejectf("", err)
	}
	entrySelector, err := r.U16()
	if err != nil {
		return nil, rejectf("", err)
	}
	rangeShift, err := r.U16()
	if err != nil {
		return nil, rejectf("", err)
	}
	if err := checkSearchParams(numTables, searchRange, entrySelector, rangeShift); err != nil {
		return nil, err
	}

	records := make([]directoryRecord, numTables)
	for i := range records {
		tag, err := r.Tag()
		if err != nil {
			return nil, rejectf("", err)
		}
		if _, err := r.U32(); err != nil { // checksum, not validated on input
			return nil, rejectf("", err)
		}
		offset, err := r.U32()
		if err != nil {
			return nil, rejectf("", err)
		}
		length, err := r.U32()
		if err != nil {
			return nil, rejectf("", err)
		}
		records[i] = directoryRecord{tag: table.Tag(tag), offset: offset, length: length}
	}

	endOfDirectory := uint32(r.Tell())
	total := uint32(len(data))
	for i, rec := range records {
		if i > 0 && !records[i-1].tag.Less(rec.tag) {
			return nil, reject("", "table tags not strictly ascending")
		}
		if rec.offset%4 != 0 {
			return nil, reject("", "table offset not 4-byte aligned")
		}
		if rec.offset < endOfDirectory || rec.offset >= total {
			return nil, reject("", "table offset out of bounds")
		}
		if rec.length > maxFontSize {
			return nil, reject("", "table length exceeds 1 GiB")
		}
		end, ok := roundUp4(uint64(rec.offset) + uint64(rec.length))
		if !ok || end > uint64(total) {
			return nil, reject("", "table extends past end of file")
		}
	}

	return records, nil
}

func roundUp4(v uint64) (uint64, bool) {
	r := (v + 3) &^ 3
	return r, r >= v
}

// checkSearchParams validates the three redundant header fields
// against the formula every conforming sfnt writer must follow:
// search_range = 16*2^k, entry_selector = k, range_shift =
// 16*numTables - search_range, where k = floor(log2(numTables)).
// The cmap format-4 subtable (sfnt/cmap) checks the same formula with
// 2-byte segment entries in place of the 16-byte directory records.
func checkSearchParams(numTables int, searchRange, entrySelector, rangeShift uint16) error {
	k := log2Floor(numTables)
	wantSearchRange := uint16(16 * (1 << k))
	wantEntrySelector := uint16(k)
	wantRangeShift := uint16(16*numTables) - wantSearchRange
	if searchRange != wantSearchRange || entrySelector != wantEntrySelector || rangeShift != wantRangeShift {
		return reject("", "search parameters do not match numTables")
	}
	return nil
}

func log2Floor(n int) int {
	k := 0
	for (1 << (k + 1)) <= n {
		k++
	}
	return k
}

// serializeFont runs the two-pass write protocol: emit every retained
// table body first, padding to 4-byte alignment, then seek back and
// backfill the directory with the recorded (tag, checksum, offset,
// length) quadruples sorted by tag.
func serializeFont(font *Font, w *sfntio.Writer) {
	type outputTable struct {
		tag            table.Tag
		checksum       uint32
		offset, length uint32
	}

	var toWrite []tableDescriptor
	for _, desc := range registry {
		if desc.shouldSerialize(font) {
			toWrite = append(toWrite, desc)
		}
	}
	nOut := len(toWrite)

	k := log2Floor(nOut)
	searchRange := uint16(16 * (1 << k))
	entrySelector := uint16(k)
	rangeShift := uint16(16*nOut) - searchRange

	w.Write(beU32(table.VersionTrueType))
	w.Write(beU16(uint16(nOut)))
	w.Write(beU16(searchRange))
	w.Write(beU16(entrySelector))
	w.Write(beU16(rangeShift))

	directoryPos := w.Tell()
	w.Pad(16 * nOut)

	out := make([]outputTable, 0, nOut)
	for _, desc := range toWrite {
		offset := w.Tell()
		w.ResetChecksum()
		body := desc.serialize(font)
		w.Write(body)
		checksum := w.Checksum()
		length := w.Tell() - offset
		w.PadToAlign4()

		out = append(out, outputTable{
			tag:      table.MakeTag(desc.tag),
			checksum: checksum,
			offset:   uint32(offset),
			length:   uint32(length),
		})
	}
	endOfFile := w.Tell()

	slices.SortFunc(out, func(a, b outputTable) int {
		switch {
		case a.tag.Less(b.tag):
			return -1
		case b.tag.Less(a.tag):
			return 1
		default:
			return 0
		}
	})

	saved := w.SaveChecksum()
	w.ResetChecksum()
	w.Seek(directoryPos)
	for _, t := range out {
		w.Write(t.tag[:])
		w.Write(beU32(t.checksum))
		w.Write(beU32(t.offset))
		w.Write(beU32(t.length))
	}
	w.Seek(endOfFile)
	w.RestoreChecksum(saved)
}

func beU16(v uint16) []byte { return []byte{byte(v >> 8), byte(v)} }
func beU32(v uint32) []byte {
	return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}
