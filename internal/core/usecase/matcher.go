package usecase

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/wealthplay/nex-mentor/internal/core/domain"
)

const DefaultMatchCutoff = 0.70

// MatchFixedQnA returns the authored pair closest to question when its score
// reaches cutoff. Ties keep the earliest pair in authored order.
func MatchFixedQnA(pairs []domain.QnaPair, question string, cutoff float64) (domain.QnaPair, float64, bool) {
	if len(pairs) == 0 {
		return domain.QnaPair{}, 0, false
	}

	userQ := strings.ToLower(question)
	bestIdx := -1
	bestScore := -1.0
	for idx, pair := range pairs {
		score := SimilarityScore(strings.ToLower(pair.Question), userQ)
		if score > bestScore {
			bestScore = score
			bestIdx = idx
		}
	}

	if bestIdx < 0 || bestScore < cutoff {
		return domain.QnaPair{}, bestScore, false
	}
	return pairs[bestIdx], bestScore, true
}

// SimilarityScore is the matching-blocks ratio 2*M/T of a and b, taken in both
// orders so the result does not depend on argument order.
func SimilarityScore(a, b string) float64 {
	if a == b {
		return 1.0
	}
	left := splitRunes(a)
	right := splitRunes(b)

	forward := difflib.NewMatcher(left, right).Ratio()
	backward := difflib.NewMatcher(right, left).Ratio()
	if backward > forward {
		return backward
	}
	return forward
}

func splitRunes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
