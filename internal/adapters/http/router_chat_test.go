package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hienhayho/KLTN-v2/internal/config"
	"github.com/hienhayho/KLTN-v2/internal/core/domain"
	"github.com/hienhayho/KLTN-v2/internal/core/usecase"
)

type chatFake struct {
	result  *domain.ChatResult
	err     error
	lastReq usecase.ChatConversationRequest
}

func (f *chatFake) Chat(_ context.Context, req usecase.ChatConversationRequest) (*domain.ChatResult, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type ingestFake struct {
	err error
}

func (f ingestFake) Upload(_ context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	if _, err := io.Copy(io.Discard, body); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &domain.Document{
		ID:          "doc-1",
		Filename:    filename,
		DocName:     "doc",
		MimeType:    mimeType,
		StoragePath: "documents/doc-1_file.txt",
		Status:      domain.StatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

type docsFake struct {
	err error
}

func (f docsFake) GetByID(context.Context, string) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Document{ID: "doc-1", Status: domain.StatusReady}, nil
}

func newTestRouter(chat ChatRunner, cfg config.Config) http.Handler {
	return NewRouter(cfg, chat, ingestFake{}, docsFake{}, nil, nil).Handler()
}

func postChat(t *testing.T, handler http.Handler, payload map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/query", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	return res
}

func TestChatQuerySuccess(t *testing.T) {
	chat := &chatFake{result: &domain.ChatResult{
		Answer:     "Khoảng 8 ngày làm việc.",
		FinalQuery: "Làm hộ chiếu mất bao lâu?",
		Contexts:   []string{"Tài liệu: Cấp hộ chiếu\n..."},
	}}
	handler := newTestRouter(chat, config.Config{})

	res := postChat(t, handler, map[string]any{
		"query":           "mất bao lâu?",
		"history":         []map[string]string{{"role": "user", "content": "làm hộ chiếu thế nào?"}},
		"conversation_id": "c1",
		"user_id":         "u1",
	})
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}

	var resp domain.ChatResult
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Answer == "" || resp.FinalQuery == "" || len(resp.Contexts) != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if chat.lastReq.ConversationID != "c1" || chat.lastReq.UserID != "u1" {
		t.Fatalf("conversation identity not forwarded: %+v", chat.lastReq)
	}
	if len(chat.lastReq.History) != 1 {
		t.Fatalf("history not forwarded: %+v", chat.lastReq.History)
	}
}

func TestChatQueryRequiresQuery(t *testing.T) {
	handler := newTestRouter(&chatFake{}, config.Config{})

	res := postChat(t, handler, map[string]any{"query": "   "})
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestChatQueryMapsTemporaryTo503(t *testing.T) {
	chat := &chatFake{err: domain.WrapError(domain.ErrTemporary, "generate answer", errors.New("upstream 503"))}
	handler := newTestRouter(chat, config.Config{})

	res := postChat(t, handler, map[string]any{"query": "q"})
	if res.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", res.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["code"] != "temporarily_unavailable" {
		t.Fatalf("error code = %q", resp["code"])
	}
}

func TestChatQueryMapsContractTo500WithCode(t *testing.T) {
	chat := &chatFake{err: domain.WrapError(domain.ErrContract, "classify topic", errors.New("label=weather"))}
	handler := newTestRouter(chat, config.Config{})

	res := postChat(t, handler, map[string]any{"query": "q"})
	if res.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", res.Code)
	}

	var resp map[string]string
	_ = json.NewDecoder(res.Body).Decode(&resp)
	if resp["code"] != "contract_violation" {
		t.Fatalf("error code = %q", resp["code"])
	}
}

func TestChatQueryMapsTimeoutTo504(t *testing.T) {
	chat := &chatFake{err: context.DeadlineExceeded}
	handler := newTestRouter(chat, config.Config{})

	res := postChat(t, handler, map[string]any{"query": "q"})
	if res.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504, got %d", res.Code)
	}
}

func TestHealthzAnswersPingPong(t *testing.T) {
	handler := newTestRouter(&chatFake{}, config.Config{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["ping"] != "pong" {
		t.Fatalf("unexpected healthz payload: %+v", resp)
	}
}

func TestChatQueryBearerAuth(t *testing.T) {
	handler := newTestRouter(&chatFake{result: &domain.ChatResult{Answer: "a"}}, config.Config{APIKey: "secret"})

	res := postChat(t, handler, map[string]any{"query": "q"})
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", res.Code)
	}

	body, _ := json.Marshal(map[string]any{"query": "q"})
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/query", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer secret")
	res2 := httptest.NewRecorder()
	handler.ServeHTTP(res2, req)
	if res2.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", res2.Code)
	}
}

func TestHealthzSkipsAuth(t *testing.T) {
	handler := newTestRouter(&chatFake{}, config.Config{APIKey: "secret"})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("healthz must not require auth, got %d", res.Code)
	}
}
