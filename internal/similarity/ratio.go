// Package similarity scores how alike two short lines of text are.
package similarity

// Ratio returns a similarity score in [0, 1] between a and b, computed over
// runes as (len(a)+len(b)-d)/(len(a)+len(b)) where d is the edit distance
// with insertions and deletions costing 1 and substitutions costing 2.
// Two empty strings are identical.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	d := indelDistance(ra, rb)
	return float64(total-d) / float64(total)
}

// indelDistance is a two-row Levenshtein table with substitution cost 2.
func indelDistance(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			sub := prev[j-1]
			if a[i-1] != b[j-1] {
				sub += 2
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, sub)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
