package position

import (
	"regexp"
	"sort"
	"strings"

	"github.com/xiaoxustudio/webgal-language-tools/pkg/lsp"
)

// Document maps between rune offsets and line/character positions.
// Characters are counted in runes.
type Document struct {
	text       string
	runes      []rune
	lineStarts []int
	lines      []string
}

// NewDocument indexes text
func NewDocument(text string) *Document {
	runes := []rune(text)
	lineStarts := []int{0}
	for i, r := range runes {
		if r == '\n' {
			lineStarts = append(lineStarts, i+1)
		}
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}

	return &Document{
		text:       text,
		runes:      runes,
		lineStarts: lineStarts,
		lines:      lines,
	}
}

// Text returns the full document text
func (d *Document) Text() string {
	return d.text
}

// Len returns the document length in runes
func (d *Document) Len() int {
	return len(d.runes)
}

// LineCount returns the number of lines
func (d *Document) LineCount() int {
	return len(d.lineStarts)
}

// Lines returns the lines without their terminators
func (d *Document) Lines() []string {
	return d.lines
}

// Line returns line n without its terminator, or "" when out of range
func (d *Document) Line(n int) string {
	if n < 0 || n >= len(d.lines) {
		return ""
	}
	return d.lines[n]
}

// LineStart returns the offset of the first character of line n
func (d *Document) LineStart(n int) int {
	switch {
	case n <= 0:
		return 0
	case n >= len(d.lineStarts):
		return len(d.runes)
	}
	return d.lineStarts[n]
}

// lineEnd returns the offset just before the terminator of line n
func (d *Document) lineEnd(n int) int {
	if n+1 >= len(d.lineStarts) {
		return len(d.runes)
	}
	end := d.lineStarts[n+1] - 1
	if end > d.lineStarts[n] && d.runes[end-1] == '\r' {
		end--
	}
	return end
}

// OffsetAt converts a position to an offset, clamping to the document
func (d *Document) OffsetAt(pos lsp.Position) int {
	if pos.Line < 0 {
		return 0
	}
	if pos.Line >= len(d.lineStarts) {
		return len(d.runes)
	}
	start := d.lineStarts[pos.Line]
	end := d.lineEnd(pos.Line)
	offset := start + pos.Character
	if pos.Character < 0 {
		offset = start
	}
	if offset > end {
		offset = end
	}
	return offset
}

// PositionAt converts an offset to a position, clamping to the document
func (d *Document) PositionAt(offset int) lsp.Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(d.runes) {
		offset = len(d.runes)
	}
	line := sort.Search(len(d.lineStarts), func(i int) bool {
		return d.lineStarts[i] > offset
	}) - 1
	return lsp.Position{Line: line, Character: offset - d.lineStarts[line]}
}

// RangeOf converts an offset span to a range
func (d *Document) RangeOf(start, end int) lsp.Range {
	return lsp.Range{Start: d.PositionAt(start), End: d.PositionAt(end)}
}

// Slice returns the text between two offsets
func (d *Document) Slice(start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(d.runes) {
		end = len(d.runes)
	}
	if start >= end {
		return ""
	}
	return string(d.runes[start:end])
}

// WordAt returns the word around pos
func (d *Document) WordAt(pos lsp.Position, class CharClass) (Word, bool) {
	return wordAt(d.runes, d.OffsetAt(pos), class)
}

// PatternAt returns the match of re around pos
func (d *Document) PatternAt(pos lsp.Position, re *regexp.Regexp, radius int) (Match, bool) {
	return patternAt(d.runes, d.OffsetAt(pos), re, radius)
}

// TokenRange returns the path token around pos
func (d *Document) TokenRange(pos lsp.Position) Word {
	return tokenRange(d.runes, d.OffsetAt(pos))
}
