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

// Command sfntsan sanitizes an untrusted OpenType/TrueType font file,
// writing a narrowed-scope, structurally valid replacement that
// strips hinting bytecode and every table outside the allow-list.
package main

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/term"

	"seehuhn.de/go/sfntsan/sfnt/sanitize"
)

func main() {
	outputFile := flag.String("o", "", "output path (default: stdout)")
	verbose := flag.Bool("v", false, "print kept/dropped table decisions to stderr")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [-o out.ttf] [-v] <input.ttf>\n", os.Args[0])
		os.Exit(1)
	}
	inputFile := flag.Arg(0)

	data, err := os.ReadFile(inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sfntsan: %v\n", err)
		os.Exit(1)
	}

	out, err := sanitize.Process(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sfntsan: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		kept := make(map[string]bool)
		for _, e := range directory(out) {
			kept[e.tag] = true
			fmt.Fprintf(os.Stderr, "sfntsan: kept %s (%d bytes)\n", e.tag, e.length)
		}
		for _, e := range directory(data) {
			if !kept[e.tag] {
				fmt.Fprintf(os.Stderr, "sfntsan: dropped %s\n", e.tag)
			}
		}
		fmt.Fprintf(os.Stderr, "sfntsan: wrote %d bytes\n", len(out))
	}

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, out, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "sfntsan: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintf(os.Stderr, "sfntsan: refusing to write binary font data to a terminal; use -o\n")
		os.Exit(1)
	}
	if _, err := os.Stdout.Write(out); err != nil {
		fmt.Fprintf(os.Stderr, "sfntsan: %v\n", err)
		os.Exit(1)
	}
}

type directoryEntry struct {
	tag    string
	length uint32
}

// directory lists a font's table directory. Only called on buffers
// Process has already validated, so the reads cannot go out of bounds.
func directory(font []byte) []directoryEntry {
	n := int(font[4])<<8 | int(font[5])
	entries := make([]directoryEntry, 0, n)
	for i := 0; i < n; i++ {
		rec := 12 + 16*i
		length := uint32(font[rec+12])<<24 | uint32(font[rec+13])<<16 |
			uint32(font[rec+14])<<8 | uint32(font[rec+15])
		entries = append(entries, directoryEntry{
			tag:    string(font[rec : rec+4]),
			length: length,
		})
	}
	return entries
}
