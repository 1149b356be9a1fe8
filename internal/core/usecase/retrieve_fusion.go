package usecase

import (
	"fmt"
	"sort"

	"github.com/hienhayho/KLTN-v2/internal/core/domain"
)

type fusedCandidate struct {
	chunk domain.RetrievedChunk
	score float64
}

// fuseCandidatesRRF merges two ranked lists by reciprocal rank: each chunk
// scores sum(1/(k+rank+1)) over the lists it appears in. Rank-only fusion
// ignores the incomparable raw score scales entirely.
func fuseCandidatesRRF(semantic, lexical []domain.RetrievedChunk, rrfK int) []domain.RetrievedChunk {
	if rrfK <= 0 {
		rrfK = 60
	}

	acc := make(map[string]fusedCandidate, len(semantic)+len(lexical))
	addList := func(chunks []domain.RetrievedChunk) {
		for rank, chunk := range chunks {
			key := retrievalChunkKey(chunk)
			candidate := acc[key]
			candidate.chunk = preferRicherChunk(candidate.chunk, chunk)
			candidate.score += 1.0 / float64(rrfK+rank+1)
			acc[key] = candidate
		}
	}

	addList(semantic)
	addList(lexical)

	out := make([]domain.RetrievedChunk, 0, len(acc))
	for _, c := range acc {
		chunk := c.chunk
		chunk.Score = c.score
		out = append(out, chunk)
	}

	sortCandidates(out)
	return out
}

// fuseCandidatesWeighted merges two ranked lists by relative score: each
// list's raw scores are min-max normalized to [0,1], scaled by the list
// weight, and summed per chunk. A chunk present in both lists accumulates
// both contributions, which pushes agreement toward the top.
func fuseCandidatesWeighted(semantic, lexical []domain.RetrievedChunk, semanticWeight, lexicalWeight float64) []domain.RetrievedChunk {
	acc := make(map[string]fusedCandidate, len(semantic)+len(lexical))
	addList := func(chunks []domain.RetrievedChunk, weight float64) {
		normalized := normalizeScores(chunks)
		for i, chunk := range chunks {
			key := retrievalChunkKey(chunk)
			candidate := acc[key]
			candidate.chunk = preferRicherChunk(candidate.chunk, chunk)
			candidate.score += weight * normalized[i]
			acc[key] = candidate
		}
	}

	addList(semantic, semanticWeight)
	addList(lexical, lexicalWeight)

	out := make([]domain.RetrievedChunk, 0, len(acc))
	for _, c := range acc {
		chunk := c.chunk
		chunk.Score = c.score
		out = append(out, chunk)
	}

	sortCandidates(out)
	return out
}

// normalizeScores min-max normalizes one list's scores. A flat list maps
// every positive score to 1 so the weight still counts as a full vote.
func normalizeScores(chunks []domain.RetrievedChunk) []float64 {
	if len(chunks) == 0 {
		return nil
	}

	minScore := chunks[0].Score
	maxScore := chunks[0].Score
	for _, chunk := range chunks[1:] {
		if chunk.Score < minScore {
			minScore = chunk.Score
		}
		if chunk.Score > maxScore {
			maxScore = chunk.Score
		}
	}

	out := make([]float64, len(chunks))
	rangeScore := maxScore - minScore
	for i, chunk := range chunks {
		if rangeScore <= 0 {
			if chunk.Score > 0 {
				out[i] = 1
			}
			continue
		}
		out[i] = (chunk.Score - minScore) / rangeScore
	}
	return out
}

func sortCandidates(chunks []domain.RetrievedChunk) {
	sort.SliceStable(chunks, func(i, j int) bool {
		if chunks[i].Score != chunks[j].Score {
			return chunks[i].Score > chunks[j].Score
		}
		if chunks[i].DocumentID != chunks[j].DocumentID {
			return chunks[i].DocumentID < chunks[j].DocumentID
		}
		if chunks[i].ChunkIndex != chunks[j].ChunkIndex {
			return chunks[i].ChunkIndex < chunks[j].ChunkIndex
		}
		return chunks[i].DocName < chunks[j].DocName
	})
}

func trimCandidates(chunks []domain.RetrievedChunk, limit int) []domain.RetrievedChunk {
	if limit <= 0 || len(chunks) <= limit {
		return chunks
	}
	return chunks[:limit]
}

func retrievalChunkKey(chunk domain.RetrievedChunk) string {
	if chunk.DocumentID != "" && chunk.ChunkIndex >= 0 {
		return fmt.Sprintf("%s:%d", chunk.DocumentID, chunk.ChunkIndex)
	}
	return fmt.Sprintf("%s|%s|%s", chunk.DocumentID, chunk.DocName, chunk.Text)
}

// preferRicherChunk keeps the more complete of two views of the same chunk;
// the dense and sparse searches may return payloads of differing richness.
func preferRicherChunk(current, candidate domain.RetrievedChunk) domain.RetrievedChunk {
	if current.DocumentID == "" && current.DocName == "" && current.Text == "" {
		return candidate
	}
	if current.Text == "" && candidate.Text != "" {
		current.Text = candidate.Text
	}
	if current.DocName == "" && candidate.DocName != "" {
		current.DocName = candidate.DocName
	}
	if current.DocumentID == "" && candidate.DocumentID != "" {
		current.DocumentID = candidate.DocumentID
	}
	if current.ChunkIndex < 0 && candidate.ChunkIndex >= 0 {
		current.ChunkIndex = candidate.ChunkIndex
	}
	return current
}
