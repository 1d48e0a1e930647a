package domain

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Similarity scores how alike two strings are on a [0,1] scale:
// 1 - editDistance/maxLen over lower-cased input. Case-insensitive and
// symmetric; identical strings score 1, an empty string against a
// non-empty one scores 0. Used only to rank suggestion candidates —
// callers never apply a hard acceptance threshold.
func Similarity(a, b string) float64 {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	if a == b {
		return 1
	}

	maxLen := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if maxLen == 0 {
		return 1
	}

	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(maxLen)
}
