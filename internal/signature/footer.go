package signature

import (
	"regexp"

	"github.com/hyperifyio/mailsig/internal/patterns"
	"github.com/hyperifyio/mailsig/internal/similarity"
)

// FooterDetector recognizes client generated footer lines such as
// "Sent from my iPhone", by pattern or by similarity to known exemplars.
type FooterDetector struct {
	pattern  *regexp.Regexp
	known    []string
	minRatio float64
}

// NewFooterDetector builds a detector from the footer pattern, exemplar
// lines and ratio of set.
func NewFooterDetector(set *patterns.Set) FooterDetector {
	return FooterDetector{
		pattern:  set.Footer(),
		known:    set.FooterLines(),
		minRatio: set.FooterRatio(),
	}
}

// IsFooterLine reports whether line matches the footer pattern or is more
// similar than the configured ratio to any known footer line.
func (f FooterDetector) IsFooterLine(line string) bool {
	if f.pattern != nil && f.pattern.MatchString(line) {
		return true
	}
	for _, known := range f.known {
		if similarity.Ratio(known, line) > f.minRatio {
			return true
		}
	}
	return false
}

// footerStart scans candidate bottom-up and returns the position in
// candidate where a contiguous run of footer lines begins. found is false
// when the last line is not a footer.
func (f FooterDetector) footerStart(lines []string, candidate []int) (start int, found bool) {
	start = len(candidate)
	for i := len(candidate) - 1; i >= 0; i-- {
		if !f.IsFooterLine(lines[candidate[i]]) {
			break
		}
		start = i
		found = true
	}
	return start, found
}
