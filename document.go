/*
Copyright © 2024 the InMAP authors.
This file is part of InMAP.

InMAP is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

InMAP is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with InMAP.  If not, see <http://www.gnu.org/licenses/>.
*/

package kinetics

import (
	"strings"
)

// commentRune introduces a comment that runs to the end of the line.
const commentRune = '!'

// Keywords that start each mechanism block. Blocks end with endKey.
var (
	ElementKeys  = []string{"ELEMENTS", "ELEM"}
	SpeciesKeys  = []string{"SPECIES", "SPEC"}
	ReactionKeys = []string{"REACTIONS", "REAC"}
	ThermoKeys   = []string{"THERMO", "THERM", "THER"}
)

const endKey = "END"

// Document holds the located blocks of a mechanism file. The blocks
// have had comments and surrounding whitespace removed. A block that
// is not present in the file is empty.
type Document struct {
	Elements  string
	Species   string
	Reactions string
	Thermo    string
}

// NewDocument locates the blocks of the mechanism text.
func NewDocument(text string) *Document {
	text = NormalizeText(text)
	return &Document{
		Elements:  locate(text, ElementKeys),
		Species:   locate(text, SpeciesKeys),
		Reactions: locate(text, ReactionKeys),
		Thermo:    locate(text, ThermoKeys),
	}
}

// SpeciesNames returns the names declared in the SPECIES block,
// in order of declaration.
func (d *Document) SpeciesNames() []string {
	return strings.Fields(d.Species)
}

// ElementNames returns the names declared in the ELEMENTS block.
func (d *Document) ElementNames() []string {
	return strings.Fields(d.Elements)
}

// NormalizeText strips comments from each line of text, trims leading
// and trailing whitespace from each line, and drops blank lines.
func NormalizeText(text string) string {
	lines := strings.Split(strings.Replace(text, "\r\n", "\n", -1), "\n")
	o := make([]string, 0, len(lines))
	for _, line := range lines {
		if i := strings.IndexRune(line, commentRune); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		o = append(o, line)
	}
	return strings.Join(o, "\n")
}

// LocateBlock returns the text between the first line that starts with
// one of keys and the next END keyword, after normalizing text with
// NormalizeText. Anything following the start keyword on its own line
// (for example the units of a REACTIONS block) is the first line
// of the block. Keys are matched case-insensitively against the whole
// first word of a line. LocateBlock returns an empty string if there
// is no matching start and end pair.
func LocateBlock(text string, keys ...string) string {
	return locate(NormalizeText(text), keys)
}

// locate is LocateBlock for text that is already normalized.
func locate(text string, keys []string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		first := firstWord(line)
		if !isKey(first, keys) {
			continue
		}
		var block []string
		rest := strings.TrimSpace(line[len(first):])
		if content, ended := cutEnd(rest); ended {
			if content != "" {
				block = append(block, content)
			}
			return strings.Join(block, "\n")
		}
		if rest != "" {
			block = append(block, rest)
		}
		for _, l := range lines[i+1:] {
			if content, ended := cutEnd(l); ended {
				if content != "" {
					block = append(block, content)
				}
				return strings.Join(block, "\n")
			}
			block = append(block, l)
		}
		return "" // no END
	}
	return ""
}

func firstWord(line string) string {
	if i := strings.IndexAny(line, " \t"); i >= 0 {
		return line[:i]
	}
	return line
}

func isKey(word string, keys []string) bool {
	for _, k := range keys {
		if strings.EqualFold(word, k) {
			return true
		}
	}
	return false
}

// cutEnd reports whether line contains the END keyword as a separate
// word, and if so returns the content preceding it.
// Lines without END are returned unmodified.
func cutEnd(line string) (string, bool) {
	fields := strings.Fields(line)
	for j, f := range fields {
		if strings.EqualFold(f, endKey) {
			return strings.Join(fields[:j], " "), true
		}
	}
	return line, false
}
