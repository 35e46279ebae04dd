package usecase

import (
	"testing"

	"github.com/wealthplay/nex-mentor/internal/core/domain"
)

func TestMatchFixedQnAEmptyTableNeverMatches(t *testing.T) {
	_, score, ok := MatchFixedQnA(nil, "What is a SIP?", 0)
	if ok {
		t.Fatalf("expected no match for empty table")
	}
	if score != 0 {
		t.Fatalf("expected zero score without scanning, got %f", score)
	}
}

func TestMatchFixedQnAExactQuestionIgnoresCase(t *testing.T) {
	pairs := []domain.QnaPair{
		{Question: "What is an emergency fund?", Answer: "Savings for surprises."},
		{Question: "What is a SIP?", Answer: "A systematic investment plan."},
	}

	pair, score, ok := MatchFixedQnA(pairs, "WHAT IS A SIP?", 1.0)
	if !ok {
		t.Fatalf("expected exact match to pass cutoff 1.0")
	}
	if score != 1.0 {
		t.Fatalf("expected score 1.0, got %f", score)
	}
	if pair.Answer != "A systematic investment plan." {
		t.Fatalf("unexpected pair: %+v", pair)
	}
}

func TestMatchFixedQnATieKeepsFirstAuthoredPair(t *testing.T) {
	pairs := []domain.QnaPair{
		{Question: "What is a SIP?", Answer: "first"},
		{Question: "What is a SIP?", Answer: "second"},
	}

	pair, _, ok := MatchFixedQnA(pairs, "what is a sip", DefaultMatchCutoff)
	if !ok {
		t.Fatalf("expected a match")
	}
	if pair.Answer != "first" {
		t.Fatalf("expected first pair to win the tie, got %q", pair.Answer)
	}
}

func TestMatchFixedQnATieBetweenDistinctQuestionsKeepsFirst(t *testing.T) {
	pairs := []domain.QnaPair{
		{Question: "What is a SIP?", Answer: "first"},
		{Question: "What is a SIP!", Answer: "second"},
	}
	user := "what is a sip"
	first := SimilarityScore("what is a sip?", user)
	second := SimilarityScore("what is a sip!", user)
	if first != second {
		t.Fatalf("expected equal scores, got %v and %v", first, second)
	}

	pair, score, ok := MatchFixedQnA(pairs, user, DefaultMatchCutoff)
	if !ok {
		t.Fatalf("expected a match")
	}
	if pair.Answer != "first" || score != first {
		t.Fatalf("expected first pair to win the tie, got %q (%v)", pair.Answer, score)
	}
}

func TestMatchFixedQnABelowCutoffIsNoMatch(t *testing.T) {
	pairs := []domain.QnaPair{{Question: "What is a SIP?", Answer: "A plan."}}

	_, score, ok := MatchFixedQnA(pairs, "Tell me about diversification in bond portfolios", DefaultMatchCutoff)
	if ok {
		t.Fatalf("expected no match, score=%f", score)
	}
}

func TestMatchFixedQnAPicksClosestQuestion(t *testing.T) {
	pairs := []domain.QnaPair{
		{Question: "How do I build a budget?", Answer: "budget"},
		{Question: "What is the 50/30/20 rule?", Answer: "rule"},
	}

	pair, _, ok := MatchFixedQnA(pairs, "What is 50/30/20 rule?", DefaultMatchCutoff)
	if !ok {
		t.Fatalf("expected a match")
	}
	if pair.Answer != "rule" {
		t.Fatalf("expected closest question, got %+v", pair)
	}
}

func TestSimilarityScoreIsSymmetric(t *testing.T) {
	cases := [][2]string{
		{"what is a sip?", "what's a sip"},
		{"how much should i save each month", "how much to save monthly"},
		{"abcabcabc", "cba"},
		{"", "non-empty"},
	}
	for _, tc := range cases {
		forward := SimilarityScore(tc[0], tc[1])
		backward := SimilarityScore(tc[1], tc[0])
		if forward != backward {
			t.Fatalf("score(%q,%q)=%f but reversed=%f", tc[0], tc[1], forward, backward)
		}
		if forward < 0 || forward > 1 {
			t.Fatalf("score out of range: %f", forward)
		}
	}
}
