package signature

import (
	"strings"
	"unicode/utf8"
)

// Delimiter returns the line delimiter used by body: the first "\r\n" or
// "\n" found, defaulting to "\n".
func Delimiter(body string) string {
	i := strings.IndexByte(body, '\n')
	if i > 0 && body[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}

// SplitLines splits s on universal line boundaries. A trailing boundary does
// not produce an empty last line.
func SplitLines(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch r {
		case '\r':
			out = append(out, s[start:i])
			if i+1 < len(s) && s[i+1] == '\n' {
				size = 2
			}
			start = i + size
		case '\n', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
			out = append(out, s[start:i])
			start = i + size
		}
		i += size
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

// nonEmptyIndexes returns the indexes of lines with visible content.
func nonEmptyIndexes(lines []string) []int {
	out := make([]int, 0, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			out = append(out, i)
		}
	}
	return out
}
