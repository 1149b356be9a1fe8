package domain

// RetrievalMethod selects which retriever backend serves a query.
type RetrievalMethod string

const (
	RetrievalSemantic RetrievalMethod = "semantic"
	RetrievalBM25     RetrievalMethod = "bm25"
	RetrievalHybrid   RetrievalMethod = "hybrid"
)

// RetrievedChunk is one retrieval candidate. Text already carries the
// "Tài liệu: X" source header added at indexing time.
type RetrievedChunk struct {
	DocumentID string  `json:"document_id"`
	DocName    string  `json:"doc_name"`
	ChunkIndex int     `json:"chunk_index"`
	Text       string  `json:"text"`
	Score      float64 `json:"score"`
}

// ContextTexts flattens retrieval candidates into the plain passages the
// answer generator consumes.
func ContextTexts(chunks []RetrievedChunk) []string {
	out := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		out = append(out, chunk.Text)
	}
	return out
}
