package usecase

import (
	"strings"
	"unicode"

	"github.com/hienhayho/KLTN-v2/internal/core/domain"
)

// rerankHybridCandidates re-scores the fused head by blending the fused
// rank with direct query evidence: token overlap against the chunk text
// and a hit on the document title. The tail past topN keeps its fused
// order.
func rerankHybridCandidates(question string, fused []domain.RetrievedChunk, topN int) []domain.RetrievedChunk {
	if len(fused) == 0 {
		return fused
	}
	if topN <= 0 || topN > len(fused) {
		topN = len(fused)
	}

	head := make([]domain.RetrievedChunk, topN)
	copy(head, fused[:topN])
	queryTokens := toTokenSet(question)

	normalized := normalizeScores(head)
	for i := range head {
		overlap := tokenOverlap(queryTokens, toTokenSet(head[i].Text))
		titleBoost := docNameTokenHit(queryTokens, head[i].DocName)
		head[i].Score = 0.60*normalized[i] + 0.30*overlap + 0.10*titleBoost
	}

	sortCandidates(head)

	if topN == len(fused) {
		return head
	}

	out := make([]domain.RetrievedChunk, 0, len(fused))
	out = append(out, head...)
	out = append(out, fused[topN:]...)
	return out
}

func tokenOverlap(query, chunk map[string]struct{}) float64 {
	if len(query) == 0 || len(chunk) == 0 {
		return 0
	}
	matches := 0
	for token := range query {
		if _, ok := chunk[token]; ok {
			matches++
		}
	}
	return float64(matches) / float64(len(query))
}

func docNameTokenHit(query map[string]struct{}, docName string) float64 {
	if len(query) == 0 || docName == "" {
		return 0
	}
	docName = strings.ToLower(docName)
	for token := range query {
		if token == "" {
			continue
		}
		if strings.Contains(docName, token) {
			return 1
		}
	}
	return 0
}

func toTokenSet(s string) map[string]struct{} {
	tokens := splitWordsLower(s)
	out := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		out[token] = struct{}{}
	}
	return out
}

// splitWordsLower tokenizes on Unicode letter/digit boundaries so
// Vietnamese diacritics survive ("thủ" and "thu" stay distinct tokens).
func splitWordsLower(s string) []string {
	if s == "" {
		return nil
	}

	tokens := make([]string, 0, 16)
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		tokens = append(tokens, b.String())
	}
	return tokens
}
