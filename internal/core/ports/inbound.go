package ports

import (
	"context"
	"io"

	"github.com/hienhayho/KLTN-v2/internal/core/domain"
)

// ChatService is the sole entry point external callers (HTTP endpoint,
// batch evaluator) invoke to run the query-processing workflow.
type ChatService interface {
	Run(ctx context.Context, req domain.ChatRequest) (*domain.ChatResult, error)
}

// DocumentIngestor is the inbound contract for source-document upload.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error)
}

// DocumentProcessor is the inbound contract for asynchronous indexing.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}

// DocumentReader is the inbound read model for document metadata.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
}
