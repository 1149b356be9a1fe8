package httpadapter

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hienhayho/KLTN-v2/internal/config"
	"github.com/hienhayho/KLTN-v2/internal/core/domain"
	"github.com/hienhayho/KLTN-v2/internal/core/ports"
	"github.com/hienhayho/KLTN-v2/internal/core/usecase"
	"github.com/hienhayho/KLTN-v2/internal/observability/metrics"
)

const serviceName = "api"

// ChatRunner is the slice of the chat usecase the router needs; tests
// substitute a fake.
type ChatRunner interface {
	Chat(ctx context.Context, req usecase.ChatConversationRequest) (*domain.ChatResult, error)
}

type Router struct {
	cfg     config.Config
	chat    ChatRunner
	ingest  ports.DocumentIngestor
	docs    ports.DocumentReader
	metrics *metrics.HTTPServerMetrics
	logger  *slog.Logger
}

func NewRouter(
	cfg config.Config,
	chat ChatRunner,
	ingest ports.DocumentIngestor,
	docs ports.DocumentReader,
	m *metrics.HTTPServerMetrics,
	logger *slog.Logger,
) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		cfg:     cfg,
		chat:    chat,
		ingest:  ingest,
		docs:    docs,
		metrics: m,
		logger:  logger,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	protected := http.NewServeMux()
	protected.HandleFunc("/v1/chat/query", rt.chatQuery)
	protected.HandleFunc("/v1/documents", rt.uploadDocument)
	protected.HandleFunc("/v1/documents/", rt.getDocumentByID)
	mux.Handle("/v1/", authMiddleware(protected, rt.cfg.APIKey))

	var handler http.Handler = mux
	handler = rt.metricsMiddleware(handler)
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlight, 100*time.Millisecond)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	handler = accessLogMiddleware(rt.logger, handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"ping": "pong"})
}

type chatQueryRequest struct {
	Query          string           `json:"query"`
	History        []domain.Message `json:"history"`
	UserID         string           `json:"user_id"`
	ConversationID string           `json:"conversation_id"`
	OnlyRetrieve   bool             `json:"only_retrieve"`
}

func (rt *Router) chatQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use POST")
		return
	}

	var req chatQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid json body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "invalid_input", "query is required")
		return
	}

	start := time.Now()
	result, err := rt.chat.Chat(r.Context(), usecase.ChatConversationRequest{
		ChatRequest: domain.ChatRequest{
			Query:        req.Query,
			History:      req.History,
			OnlyRetrieve: req.OnlyRetrieve,
		},
		UserID:         req.UserID,
		ConversationID: req.ConversationID,
	})
	if rt.metrics != nil {
		contexts := 0
		if result != nil {
			contexts = len(result.Contexts)
		}
		rt.metrics.ObserveChat(serviceName, contexts, time.Since(start), err)
	}
	if err != nil {
		rt.logger.Error("chat_query_failed",
			"request_id", requestIDFromContext(r.Context()),
			"error", err,
		)
		writeError(w, mapErrorToHTTPStatus(err), errorCode(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use POST")
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "multipart field 'file' is required")
		return
	}
	defer file.Close()

	doc, err := rt.ingest.Upload(
		r.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), errorCode(err), err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, doc)
}

func (rt *Router) getDocumentByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use GET")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/documents/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_input", "document id is required")
		return
	}

	doc, err := rt.docs.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), errorCode(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) metricsMiddleware(next http.Handler) http.Handler {
	if rt.metrics == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rt.metrics.RequestStarted()
		defer rt.metrics.RequestFinished()

		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(recorder, r)
		rt.metrics.ObserveRequest(serviceName, r.Method, metricsPath(r.URL.Path), recorder.statusCode, time.Since(start))
	})
}

// metricsPath collapses per-document paths to a single label so the
// cardinality of the path dimension stays bounded.
func metricsPath(path string) string {
	if strings.HasPrefix(path, "/v1/documents/") {
		return "/v1/documents/{id}"
	}
	return path
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"error": message, "code": code})
}
