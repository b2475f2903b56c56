package match

import "strings"

// seqRatio is a character-level sequence similarity in [0,1]: twice the
// longest common subsequence length over the total length of both strings.
// Symmetric; returns 0 when either string is empty.
func seqRatio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	// LCS over bytes, two-row DP.
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}

	lcs := prev[len(b)]
	return 2 * float64(lcs) / float64(len(a)+len(b))
}

// jaccard computes word-set overlap between two cleaned names, counting only
// words longer than two characters. Contributes 0 when either side has no
// qualifying words.
func jaccard(a, b string) float64 {
	setA := qualifyingWords(a)
	setB := qualifyingWords(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	inter := 0
	for w := range setA {
		if _, ok := setB[w]; ok {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	return float64(inter) / float64(union)
}

func qualifyingWords(s string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		if len(w) > 2 {
			words[w] = struct{}{}
		}
	}
	return words
}
