// Package suggest finds the closest-matching name among a set of
// candidates, used to enrich a "macro or file not found" preprocessor
// error with "did you mean ...?" when the author likely made a typo.
package suggest

import "github.com/hbollon/go-edlib"

// Threshold is the minimum similarity (0..1, as returned by
// edlib.StringsSimilarity) a candidate must reach to be suggested.
// Below this, two names are different enough that a suggestion would
// likely be noise rather than help.
const Threshold = 0.6

// Nearest returns the candidate most similar to name by Levenshtein
// edit distance, and whether it cleared Threshold. Ties are broken by
// the order candidates are given in.
func Nearest(name string, candidates []string) (string, bool) {
	best := ""
	bestScore := 0.0
	for _, c := range candidates {
		if c == name {
			continue
		}
		score, err := edlib.StringsSimilarity(name, c, edlib.Levenshtein)
		if err != nil {
			continue
		}
		if score > bestScore {
			bestScore = score
			best = c
		}
	}
	if bestScore < Threshold {
		return "", false
	}
	return best, true
}
