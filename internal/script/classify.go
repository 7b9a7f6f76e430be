package script

import "strings"

// Unclassified is returned by Classify for lines without a ':' or ';' delimiter
const Unclassified = ""

// Classify returns the command type of a script line: the text before the
// first ':' or, when there is none, before the first ';'.
func Classify(line string) string {
	if i := strings.IndexByte(line, ':'); i >= 0 {
		return line[:i]
	}
	if i := strings.IndexByte(line, ';'); i >= 0 {
		return line[:i]
	}
	return Unclassified
}

// CommandTypes classifies every line
func CommandTypes(lines []string) []string {
	types := make([]string, len(lines))
	for i, line := range lines {
		types[i] = Classify(line)
	}
	return types
}

// IsComment reports whether the line is a standalone ';' comment
func IsComment(line string) bool {
	return strings.HasPrefix(strings.TrimLeft(line, " \t"), ";")
}

// SplitLines splits text on "\n" and "\r\n"
func SplitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
