package position

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultRadius is the forward and backward search window of PatternAt
const DefaultRadius = 512

// lookBehindSlack extends the backward boundary scan past the radius
const lookBehindSlack = 2048

// CharClass decides whether a rune belongs to a word
type CharClass func(r rune) bool

// IsWordChar is the default CharClass: letters, numbers and '_'
func IsWordChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_'
}

// IsPathChar accepts the runes of a relative resource path
func IsPathChar(r rune) bool {
	return r < utf8.RuneSelf && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' ||
		r >= '0' && r <= '9' || strings.ContainsRune("_.-/~", r))
}

// Word is a run of characters and its offset span
type Word struct {
	Text  string
	Start int
	End   int
}

// Span is a submatch and its offset span; Start is -1 when the group did not match
type Span struct {
	Text  string
	Start int
	End   int
}

// Match is a pattern match containing the requested offset
type Match struct {
	Text   string
	Start  int
	End    int
	Groups []Span
}

// WordAt expands left and right from offset while runes satisfy class.
// A nil class means IsWordChar.
func WordAt(text string, offset int, class CharClass) (Word, bool) {
	return wordAt([]rune(text), offset, class)
}

// PatternAt finds the match of re that contains offset, searching only a
// window of radius runes around it. A radius <= 0 means DefaultRadius.
func PatternAt(text string, offset int, re *regexp.Regexp, radius int) (Match, bool) {
	return patternAt([]rune(text), offset, re, radius)
}

// TokenRange returns the path token around offset, possibly empty
func TokenRange(text string, offset int) Word {
	return tokenRange([]rune(text), offset)
}

func wordAt(runes []rune, offset int, class CharClass) (Word, bool) {
	if offset < 0 || offset > len(runes) {
		return Word{}, false
	}
	if class == nil {
		class = IsWordChar
	}

	w := expand(runes, offset, class)
	if w.Start >= w.End {
		return Word{}, false
	}
	return w, true
}

func tokenRange(runes []rune, offset int) Word {
	if offset < 0 || offset > len(runes) {
		return Word{Start: offset, End: offset}
	}
	return expand(runes, offset, IsPathChar)
}

func expand(runes []rune, offset int, class CharClass) Word {
	i := offset - 1
	for i >= 0 && class(runes[i]) {
		i--
	}
	start := i + 1

	j := offset
	for j < len(runes) && class(runes[j]) {
		j++
	}

	return Word{Text: string(runes[start:j]), Start: start, End: j}
}

func isBoundary(r rune) bool {
	return unicode.IsSpace(r) || strings.ContainsRune("[(;,>", r)
}

func patternAt(runes []rune, offset int, re *regexp.Regexp, radius int) (Match, bool) {
	if re == nil || offset < 0 || offset > len(runes) {
		return Match{}, false
	}
	if radius <= 0 {
		radius = DefaultRadius
	}

	startSearch := max(0, offset-radius)
	lookBehindLimit := max(0, offset-radius-lookBehindSlack)
	for i := offset - 1; i >= lookBehindLimit; i-- {
		if isBoundary(runes[i]) {
			startSearch = i + 1
			break
		}
	}
	endSearch := min(len(runes), offset+radius)
	if startSearch > endSearch {
		return Match{}, false
	}

	window := string(runes[startSearch:endSearch])
	for _, loc := range re.FindAllStringSubmatchIndex(window, -1) {
		matchStart := startSearch + utf8.RuneCountInString(window[:loc[0]])
		matchEnd := matchStart + utf8.RuneCountInString(window[loc[0]:loc[1]])
		if offset < matchStart || offset > matchEnd {
			continue
		}

		groups := make([]Span, 0, len(loc)/2-1)
		for g := 2; g < len(loc); g += 2 {
			if loc[g] < 0 {
				groups = append(groups, Span{Start: -1, End: -1})
				continue
			}
			gStart := startSearch + utf8.RuneCountInString(window[:loc[g]])
			text := window[loc[g]:loc[g+1]]
			groups = append(groups, Span{
				Text:  text,
				Start: gStart,
				End:   gStart + utf8.RuneCountInString(text),
			})
		}

		return Match{
			Text:   window[loc[0]:loc[1]],
			Start:  matchStart,
			End:    matchEnd,
			Groups: groups,
		}, true
	}

	return Match{}, false
}
