package signature

import "github.com/hyperifyio/mailsig/internal/patterns"

// Candidate is the outcome of window selection over a message's lines.
type Candidate struct {
	// Lines runs from the first line of the signature run to the end of
	// Remaining. Empty when no signature shaped run was found.
	Lines []string
	// Remaining is the message with any footer region removed.
	Remaining []string
	// Footer holds the trailing footer lines, if any.
	Footer []string
}

// SelectCandidate returns the lines that could hold a signature. They are
// among the last SignatureMaxLines non-empty lines, never include the first
// line, are no longer than TooLongSignatureLine and hold at most one line
// starting with dashes. A trailing footer is carved off first.
func SelectCandidate(lines []string, set *patterns.Set) Candidate {
	return selectCandidate(lines, set.Limits(), NewFooterDetector(set))
}

func selectCandidate(lines []string, limits patterns.Limits, footer FooterDetector) Candidate {
	nonEmpty := nonEmptyIndexes(lines)
	if len(nonEmpty) <= 1 {
		return Candidate{Remaining: lines}
	}

	// the first line never starts a signature
	candidate := nonEmpty[1:]

	var footerLines []string
	if start, found := footer.footerStart(lines, candidate); found {
		// footer lines, even a single one, never become signature content
		cut := candidate[start]
		footerLines = lines[cut:]
		lines = lines[:cut]
		candidate = candidate[:start]
	}

	if len(candidate) > limits.SignatureMaxLines {
		candidate = candidate[len(candidate)-limits.SignatureMaxLines:]
	}
	markers := MarkCandidateIndexes(lines, candidate, limits)
	candidate = ProcessMarkedCandidateIndexes(candidate, markers)

	if len(candidate) == 0 {
		return Candidate{Remaining: lines, Footer: footerLines}
	}
	return Candidate{Lines: lines[candidate[0]:], Remaining: lines, Footer: footerLines}
}
