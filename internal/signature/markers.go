package signature

import (
	"strings"
	"unicode/utf8"

	"github.com/hyperifyio/mailsig/internal/patterns"
)

// Line markers.
const (
	// MarkContent is a line that could belong to a signature.
	MarkContent = 'c'
	// MarkLong is a line too long to be a signature line.
	MarkLong = 'l'
	// MarkDash starts with dashes and has other characters as well.
	MarkDash = 'd'
)

// MarkCandidateIndexes classifies every candidate line, one marker per
// index, in the same order as candidate. Length is checked before dashes.
//
//	MarkCandidateIndexes([]string{"Some text", "", "-", "Bob"}, []int{0, 2, 3}, limits) == "ccc"
func MarkCandidateIndexes(lines []string, candidate []int, limits patterns.Limits) string {
	markers := []byte(strings.Repeat(string(rune(MarkContent)), len(candidate)))
	for i := len(candidate) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[candidate[i]])
		if utf8.RuneCountInString(line) > limits.TooLongSignatureLine {
			markers[i] = MarkLong
			continue
		}
		if strings.HasPrefix(line, "-") && strings.Trim(line, "-") != "" {
			markers[i] = MarkDash
		}
	}
	return string(markers)
}

// ProcessMarkedCandidateIndexes keeps the trailing candidate indexes that
// form a signature run according to markers.
//
//	ProcessMarkedCandidateIndexes([]int{9, 12, 14, 15, 17}, "clcdc") == []int{15, 17}
func ProcessMarkedCandidateIndexes(candidate []int, markers string) []int {
	n := min(signatureRun(markers), len(candidate))
	if n == 0 {
		return nil
	}
	return append([]int(nil), candidate[len(candidate)-n:]...)
}

type runState int

const (
	acceptingContent runState = iota
	sawDash
	rejected
)

// signatureRun reads markers from the last one backwards and returns the
// length of the signature run: content lines optionally capped by a single
// dash line. A long line ends the run; a second dash line ends it before the
// first dash. A run that starts with a dash line keeps only that line.
func signatureRun(markers string) int {
	content := 0
	state := acceptingContent
	for i := len(markers) - 1; i >= 0 && state != rejected; i-- {
		m := markers[i]
		switch state {
		case acceptingContent:
			switch m {
			case MarkContent:
				content++
			case MarkDash:
				state = sawDash
			default:
				state = rejected
			}
		case sawDash:
			if m == MarkDash {
				return content
			}
			return content + 1
		}
	}
	if state == sawDash {
		return content + 1
	}
	return content
}
