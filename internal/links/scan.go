// Package links finds resource file references such as bg.png in script lines
package links

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/xiaoxustudio/webgal-language-tools/internal/script"
)

var candidatePattern = regexp.MustCompile(`\$?\{?(\w+)\.(\w+)\}?`)

// Candidate is a name.ext token found on a line. Start and End are rune offsets.
type Candidate struct {
	Line    int
	Start   int
	End     int
	Text    string
	Command string
}

// Scan returns the link candidates of every line in order.
// Matches starting with '$' are state references, not files.
func Scan(lines []string) []Candidate {
	var candidates []Candidate
	for lineNumber, line := range lines {
		command := strings.TrimPrefix(script.Classify(line), ";")
		for _, loc := range candidatePattern.FindAllStringIndex(line, -1) {
			text := line[loc[0]:loc[1]]
			if strings.HasPrefix(text, "$") {
				continue
			}
			start := utf8.RuneCountInString(line[:loc[0]])
			candidates = append(candidates, Candidate{
				Line:    lineNumber,
				Start:   start,
				End:     start + utf8.RuneCountInString(text),
				Text:    text,
				Command: command,
			})
		}
	}
	return candidates
}
