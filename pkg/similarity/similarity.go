// Package similarity provides a normalized string-similarity ratio based on
// the longest common subsequence, used for duplicate detection in the mission
// catalog.
package similarity

import (
	"strings"
	"unicode"
)

// Ratio returns a similarity score in [0,1] between the two strings:
// 2*LCS(a,b) / (len(a)+len(b)) over normalized runes. Identical strings score
// 1; strings with no runes in common score 0. Two empty strings score 1.
func Ratio(a, b string) float64 {
	ra := normalize(a)
	rb := normalize(b)

	if len(ra) == 0 && len(rb) == 0 {
		return 1
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}

	lcs := lcsLength(ra, rb)
	return float64(2*lcs) / float64(len(ra)+len(rb))
}

// normalize lowercases, collapses whitespace runs and drops punctuation so
// cosmetic differences do not defeat duplicate detection.
func normalize(s string) []rune {
	var out []rune
	space := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsSpace(r):
			space = true
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			if space && len(out) > 0 {
				out = append(out, ' ')
			}
			space = false
			out = append(out, r)
		}
	}
	return out
}

func lcsLength(a, b []rune) int {
	// Single-row DP; b is the inner dimension.
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
			} else if prev[j] >= cur[j-1] {
				cur[j] = prev[j]
			} else {
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
