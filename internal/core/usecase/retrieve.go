package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/hienhayho/KLTN-v2/internal/core/domain"
	"github.com/hienhayho/KLTN-v2/internal/core/ports"
)

// FusionStrategy selects how hybrid candidates from the dense and lexical
// backends are merged.
type FusionStrategy string

const (
	FusionWeighted FusionStrategy = "weighted"
	FusionRRF      FusionStrategy = "rrf"
)

// RetrieveConfig tunes the hybrid fusion. Weights follow the production
// defaults: dense carries most of the signal, lexical mostly breaks ties
// on exact procedure names.
type RetrieveConfig struct {
	Fusion         FusionStrategy
	SemanticWeight float64
	BM25Weight     float64
	RRFK           int
	// CandidateMultiplier widens the per-backend fetch before fusion so the
	// fused list has enough overlap to rank; fetch = topK * multiplier.
	CandidateMultiplier int
	// Rerank re-scores the fused head with query-token overlap.
	Rerank bool
}

func (c RetrieveConfig) normalize() RetrieveConfig {
	out := c
	if out.Fusion == "" {
		out.Fusion = FusionWeighted
	}
	if out.SemanticWeight <= 0 {
		out.SemanticWeight = 0.8
	}
	if out.BM25Weight <= 0 {
		out.BM25Weight = 0.2
	}
	if out.RRFK <= 0 {
		out.RRFK = 60
	}
	if out.CandidateMultiplier <= 0 {
		out.CandidateMultiplier = 3
	}
	return out
}

// RetrieveUseCase answers "which passages are relevant to this query" for
// the workflow engine. It owns the semantic/bm25/hybrid dispatch; the
// vector store only knows how to run one search at a time.
type RetrieveUseCase struct {
	embedder ports.Embedder
	vectorDB ports.VectorStore
	cfg      RetrieveConfig
	logger   *slog.Logger
}

func NewRetrieveUseCase(
	embedder ports.Embedder,
	vectorDB ports.VectorStore,
	cfg RetrieveConfig,
	logger *slog.Logger,
) *RetrieveUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &RetrieveUseCase{
		embedder: embedder,
		vectorDB: vectorDB,
		cfg:      cfg.normalize(),
		logger:   logger,
	}
}

func (uc *RetrieveUseCase) Retrieve(
	ctx context.Context,
	query string,
	topK int,
	method domain.RetrievalMethod,
) ([]string, error) {
	if query == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "retrieve contexts", fmt.Errorf("empty query"))
	}
	if topK <= 0 {
		topK = 8
	}

	var (
		chunks []domain.RetrievedChunk
		err    error
	)
	switch method {
	case domain.RetrievalSemantic:
		chunks, err = uc.searchSemantic(ctx, query, topK)
	case domain.RetrievalBM25:
		chunks, err = uc.vectorDB.SearchLexical(ctx, query, topK)
	case domain.RetrievalHybrid, "":
		chunks, err = uc.searchHybrid(ctx, query, topK)
	default:
		return nil, domain.WrapError(domain.ErrConfig, "retrieve contexts", fmt.Errorf("unknown retrieval method %q", method))
	}
	if err != nil {
		return nil, err
	}

	chunks = trimCandidates(chunks, topK)
	uc.logger.Debug("retrieval_done",
		"method", string(method),
		"top_k", topK,
		"contexts", len(chunks),
	)
	return domain.ContextTexts(chunks), nil
}

func (uc *RetrieveUseCase) searchSemantic(ctx context.Context, query string, limit int) ([]domain.RetrievedChunk, error) {
	vector, err := uc.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	chunks, err := uc.vectorDB.Search(ctx, vector, limit)
	if err != nil {
		return nil, fmt.Errorf("semantic search: %w", err)
	}
	return chunks, nil
}

// searchHybrid runs both backends concurrently over a widened candidate
// window, then fuses the two ranked lists by weighted relative score.
func (uc *RetrieveUseCase) searchHybrid(ctx context.Context, query string, topK int) ([]domain.RetrievedChunk, error) {
	fetch := topK * uc.cfg.CandidateMultiplier

	var semantic, lexical []domain.RetrievedChunk
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		chunks, err := uc.searchSemantic(gctx, query, fetch)
		if err != nil {
			return err
		}
		semantic = chunks
		return nil
	})
	g.Go(func() error {
		chunks, err := uc.vectorDB.SearchLexical(gctx, query, fetch)
		if err != nil {
			return fmt.Errorf("lexical search: %w", err)
		}
		lexical = chunks
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var fused []domain.RetrievedChunk
	switch uc.cfg.Fusion {
	case FusionRRF:
		fused = fuseCandidatesRRF(semantic, lexical, uc.cfg.RRFK)
	default:
		fused = fuseCandidatesWeighted(semantic, lexical, uc.cfg.SemanticWeight, uc.cfg.BM25Weight)
	}
	if uc.cfg.Rerank {
		fused = rerankHybridCandidates(query, fused, topK)
	}
	return fused, nil
}
