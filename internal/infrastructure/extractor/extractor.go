// Package extractor routes a stored document to the text extractor
// matching its MIME type.
package extractor

import (
	"context"

	"github.com/hienhayho/KLTN-v2/internal/core/domain"
	"github.com/hienhayho/KLTN-v2/internal/core/ports"
)

type Selector struct {
	byMIME   map[string]ports.TextExtractor
	fallback ports.TextExtractor
}

// NewSelector dispatches on MIME type; unknown types go to the fallback.
func NewSelector(fallback ports.TextExtractor) *Selector {
	return &Selector{
		byMIME:   make(map[string]ports.TextExtractor),
		fallback: fallback,
	}
}

func (s *Selector) Register(mimeType string, extractor ports.TextExtractor) {
	s.byMIME[mimeType] = extractor
}

func (s *Selector) Extract(ctx context.Context, doc *domain.Document) (string, error) {
	if extractor, ok := s.byMIME[doc.MimeType]; ok {
		return extractor.Extract(ctx, doc)
	}
	return s.fallback.Extract(ctx, doc)
}
