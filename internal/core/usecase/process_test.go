package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hienhayho/KLTN-v2/internal/core/domain"
)

type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) Extract(context.Context, *domain.Document) (string, error) {
	return f.text, f.err
}

type fakeChunker struct {
	chunks []string
}

func (f *fakeChunker) Split(string) []string { return f.chunks }

type indexingVectorStore struct {
	fakeVectorStore
	indexedChunks []string
	indexErr      error
}

func (f *indexingVectorStore) IndexChunks(_ context.Context, _ *domain.Document, chunks []string, _ [][]float32) error {
	if f.indexErr != nil {
		return f.indexErr
	}
	f.indexedChunks = chunks
	return nil
}

func newProcessFixture(text string, chunks []string) (*ProcessDocumentUseCase, *fakeDocumentRepo, *indexingVectorStore) {
	repo := &fakeDocumentRepo{docs: map[string]*domain.Document{
		"doc-1": {ID: "doc-1", DocName: "Cấp hộ chiếu", Status: domain.StatusUploaded},
	}}
	store := &indexingVectorStore{}
	uc := NewProcessDocumentUseCase(repo, &fakeExtractor{text: text}, &fakeChunker{chunks: chunks}, &fakeEmbedder{}, store)
	return uc, repo, store
}

func TestProcessByIDIndexesWithSourceHeader(t *testing.T) {
	uc, repo, store := newProcessFixture("full text", []string{"chunk one", "chunk two"})

	if err := uc.ProcessByID(context.Background(), "doc-1"); err != nil {
		t.Fatalf("ProcessByID: %v", err)
	}
	if len(store.indexedChunks) != 2 {
		t.Fatalf("indexed %d chunks, want 2", len(store.indexedChunks))
	}
	for _, chunk := range store.indexedChunks {
		if !strings.HasPrefix(chunk, "Tài liệu: Cấp hộ chiếu\n") {
			t.Fatalf("chunk missing source header: %q", chunk)
		}
	}
	if len(repo.status) != 2 || repo.status[0] != domain.StatusProcessing || repo.status[1] != domain.StatusReady {
		t.Fatalf("status transitions = %v", repo.status)
	}
}

func TestProcessByIDMarksFailedOnEmptyText(t *testing.T) {
	uc, repo, _ := newProcessFixture("", nil)

	err := uc.ProcessByID(context.Background(), "doc-1")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if len(repo.status) != 2 || repo.status[1] != domain.StatusFailed {
		t.Fatalf("status transitions = %v", repo.status)
	}
	if repo.errMsgs[1] == "" {
		t.Fatal("failed status must carry the error message")
	}
}

func TestProcessByIDMarksFailedOnIndexError(t *testing.T) {
	uc, repo, store := newProcessFixture("text", []string{"chunk"})
	store.indexErr = errors.New("qdrant unavailable")

	err := uc.ProcessByID(context.Background(), "doc-1")
	if err == nil || !strings.Contains(err.Error(), "index chunks") {
		t.Fatalf("expected index error, got %v", err)
	}
	if repo.status[len(repo.status)-1] != domain.StatusFailed {
		t.Fatalf("status transitions = %v", repo.status)
	}
}

func TestProcessByIDUnknownDocument(t *testing.T) {
	uc, repo, _ := newProcessFixture("text", []string{"chunk"})

	err := uc.ProcessByID(context.Background(), "missing")
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if repo.status[len(repo.status)-1] != domain.StatusFailed {
		t.Fatalf("status transitions = %v", repo.status)
	}
}
