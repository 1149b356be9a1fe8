package ports

import (
	"context"
	"io"

	"github.com/hienhayho/KLTN-v2/internal/core/domain"
)

// LanguageDetector classifies text into a language code. Implementations
// fail open: on detector error or empty input they return
// domain.LangUnknown without an error.
type LanguageDetector interface {
	DetectLanguage(ctx context.Context, text string) (domain.Language, error)
}

// Translator converts text toward a target language.
//
// Translate returns the translated text together with the detected source
// language. When the detected language equals the target the input is
// returned unchanged. When the detected language is outside the supported
// set it returns ("", detected) and the caller decides to short-circuit.
type Translator interface {
	LanguageDetector
	Translate(ctx context.Context, text string, target domain.Language) (string, domain.Language, error)
}

// QueryRewriter folds conversation history into a single self-contained
// query. Empty history is a pass-through.
type QueryRewriter interface {
	Rewrite(ctx context.Context, query string, history []string) (string, error)
}

// TopicClassifier labels a rewritten query. An unrecognized label is a
// fatal domain.ErrContract, not a retryable failure.
type TopicClassifier interface {
	ClassifyTopic(ctx context.Context, text string) (domain.Topic, error)
}

// HistoryAnswerer attempts to answer directly from conversation history
// without retrieval. ok=false signals insufficient information and the
// caller MUST fall through to retrieval.
type HistoryAnswerer interface {
	AnswerFromHistory(ctx context.Context, query string, history []domain.Message) (answer string, ok bool, err error)
}

// Retriever returns an ordered list of textual contexts for a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int, method domain.RetrievalMethod) ([]string, error)
}

// AnswerGenerator produces a natural-language answer from a query and its
// retrieved contexts.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, query string, contexts []string) (string, error)
}

// Embedder builds vectors for chunks and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorStore indexes chunks and performs dense and lexical search.
type VectorStore interface {
	IndexChunks(ctx context.Context, doc *domain.Document, chunks []string, vectors [][]float32) error
	Search(ctx context.Context, queryVector []float32, limit int) ([]domain.RetrievedChunk, error)
	SearchLexical(ctx context.Context, queryText string, limit int) ([]domain.RetrievedChunk, error)
}

// Chunker splits extracted text into indexable chunks.
type Chunker interface {
	Split(text string) []string
}

// TextExtractor extracts plain text from a stored source document.
type TextExtractor interface {
	Extract(ctx context.Context, doc *domain.Document) (string, error)
}

// ObjectStorage stores source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes document ingestion events.
type MessageQueue interface {
	PublishDocumentIngested(ctx context.Context, documentID string) error
	SubscribeDocumentIngested(ctx context.Context, handler func(context.Context, string) error) error
}

// DocumentRepository persists document metadata and state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
}

// ConversationStore persists chat history per (user, conversation).
type ConversationStore interface {
	EnsureConversation(ctx context.Context, userID, conversationID string) (*domain.Conversation, error)
	NextUserTurn(ctx context.Context, userID, conversationID string) (int, error)
	AppendMessage(ctx context.Context, message domain.ConversationMessage) error
	ListRecentMessages(ctx context.Context, userID, conversationID string, limit int) ([]domain.ConversationMessage, error)
}
