package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hienhayho/KLTN-v2/internal/core/domain"
)

type capturedChat struct {
	System     string
	User       string
	JSONFormat bool
	MaxTokens  int
}

func newChatServer(t *testing.T, content string, captured *capturedChat) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		var payload struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
			ResponseFormat *struct {
				Type string `json:"type"`
			} `json:"response_format"`
			MaxTokens int `json:"max_tokens"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if captured != nil {
			for _, msg := range payload.Messages {
				switch msg.Role {
				case "system":
					captured.System = msg.Content
				case "user":
					captured.User = msg.Content
				}
			}
			captured.JSONFormat = payload.ResponseFormat != nil && payload.ResponseFormat.Type == "json_object"
			captured.MaxTokens = payload.MaxTokens
		}
		response := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		}
		_ = json.NewEncoder(w).Encode(response)
	}))
}

func newTestClient(serverURL string) *Client {
	return New(Config{BaseURL: serverURL, APIKey: "test", ChatModel: "gpt-4o-mini", EmbedModel: "text-embedding-3-small"})
}

func TestTopicClassifierParsesLabel(t *testing.T) {
	var captured capturedChat
	server := newChatServer(t, `{"topic": "administration"}`, &captured)
	defer server.Close()

	classifier := NewTopicClassifier(newTestClient(server.URL))
	topic, err := classifier.ClassifyTopic(context.Background(), "Xin thông tin đăng ký kết hôn ?")
	if err != nil {
		t.Fatalf("ClassifyTopic() error = %v", err)
	}
	if topic != domain.TopicAdministration {
		t.Fatalf("topic = %q, want administration", topic)
	}
	if !captured.JSONFormat {
		t.Fatalf("expected json response format to be requested")
	}
}

func TestTopicClassifierRejectsUnknownLabel(t *testing.T) {
	server := newChatServer(t, `{"topic": "weather"}`, nil)
	defer server.Close()

	classifier := NewTopicClassifier(newTestClient(server.URL))
	_, err := classifier.ClassifyTopic(context.Background(), "some question")
	if err == nil {
		t.Fatalf("expected error for unknown label")
	}
	if !domain.IsKind(err, domain.ErrContract) {
		t.Fatalf("expected contract error, got %v", err)
	}
}

func TestHistoryAnswererNullAnswerFallsThrough(t *testing.T) {
	server := newChatServer(t, `{"answer": null}`, nil)
	defer server.Close()

	answerer := NewHistoryAnswerer(newTestClient(server.URL))
	answer, ok, err := answerer.AnswerFromHistory(context.Background(), "question", []domain.Message{
		{Role: domain.RoleUser, Content: "earlier question"},
	})
	if err != nil {
		t.Fatalf("AnswerFromHistory() error = %v", err)
	}
	if ok {
		t.Fatalf("expected ok=false for null answer")
	}
	if answer != "" {
		t.Fatalf("expected empty answer, got %q", answer)
	}
}

func TestHistoryAnswererReturnsAnswer(t *testing.T) {
	var captured capturedChat
	server := newChatServer(t, `{"answer": "Thời hạn là 15 ngày."}`, &captured)
	defer server.Close()

	answerer := NewHistoryAnswerer(newTestClient(server.URL))
	answer, ok, err := answerer.AnswerFromHistory(context.Background(), "Thời hạn bao lâu?", []domain.Message{
		{Role: domain.RoleUser, Content: "Thủ tục đăng ký kết hôn?"},
		{Role: domain.RoleAssistant, Content: "Thời hạn giải quyết là 15 ngày."},
	})
	if err != nil {
		t.Fatalf("AnswerFromHistory() error = %v", err)
	}
	if !ok {
		t.Fatalf("expected ok=true")
	}
	if answer != "Thời hạn là 15 ngày." {
		t.Fatalf("answer = %q", answer)
	}
	if !strings.Contains(captured.User, "<USER>:") || !strings.Contains(captured.User, "<ASSISTANT>:") {
		t.Fatalf("expected role-tagged history in prompt, got %q", captured.User)
	}
}

func TestHistoryAnswererSkipsCallOnEmptyHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("no request expected for empty history")
	}))
	defer server.Close()

	answerer := NewHistoryAnswerer(newTestClient(server.URL))
	_, ok, err := answerer.AnswerFromHistory(context.Background(), "question", nil)
	if err != nil {
		t.Fatalf("AnswerFromHistory() error = %v", err)
	}
	if ok {
		t.Fatalf("expected ok=false")
	}
}

func TestRewriterPassesThroughEmptyHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("no request expected for empty history")
	}))
	defer server.Close()

	rewriter := NewRewriter(newTestClient(server.URL))
	out, err := rewriter.Rewrite(context.Background(), "Thủ tục như nào?", nil)
	if err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}
	if out != "Thủ tục như nào?" {
		t.Fatalf("expected pass-through, got %q", out)
	}
}

func TestRewriterIncludesHistoryInPrompt(t *testing.T) {
	var captured capturedChat
	server := newChatServer(t, "Thủ tục đăng ký kết hôn như nào?", &captured)
	defer server.Close()

	rewriter := NewRewriter(newTestClient(server.URL))
	out, err := rewriter.Rewrite(context.Background(), "Thủ tục như nào?", []string{"Quy trình đăng ký kết hôn là gì?"})
	if err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}
	if out != "Thủ tục đăng ký kết hôn như nào?" {
		t.Fatalf("rewritten = %q", out)
	}
	if !strings.Contains(captured.User, "Quy trình đăng ký kết hôn là gì?") {
		t.Fatalf("expected history in prompt, got %q", captured.User)
	}
}

func TestGeneratorJoinsContexts(t *testing.T) {
	var captured capturedChat
	server := newChatServer(t, "answer", &captured)
	defer server.Close()

	generator := NewGenerator(newTestClient(server.URL))
	_, err := generator.GenerateAnswer(context.Background(), "question?", []string{"context one", "context two"})
	if err != nil {
		t.Fatalf("GenerateAnswer() error = %v", err)
	}
	if !strings.Contains(captured.User, "context one\n=========\ncontext two") {
		t.Fatalf("expected joined contexts, got %q", captured.User)
	}
	if !strings.Contains(captured.User, "question?") {
		t.Fatalf("expected question in prompt, got %q", captured.User)
	}
	if captured.MaxTokens != 0 {
		t.Fatalf("expected no max_tokens without a cap, got %d", captured.MaxTokens)
	}
}

func TestGeneratorSendsConfiguredTokenCap(t *testing.T) {
	var captured capturedChat
	server := newChatServer(t, "answer", &captured)
	defer server.Close()

	generator := NewGenerator(newTestClient(server.URL), 512)
	_, err := generator.GenerateAnswer(context.Background(), "question?", []string{"context"})
	if err != nil {
		t.Fatalf("GenerateAnswer() error = %v", err)
	}
	if captured.MaxTokens != 512 {
		t.Fatalf("max_tokens = %d, want 512", captured.MaxTokens)
	}
}

type fixedDetector struct {
	lang domain.Language
}

func (d fixedDetector) DetectLanguage(context.Context, string) (domain.Language, error) {
	return d.lang, nil
}

func TestTranslatorShortCircuitsSameLanguage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("no request expected when languages already match")
	}))
	defer server.Close()

	translator := NewTranslator(newTestClient(server.URL), fixedDetector{lang: domain.LangVietnamese})
	text, detected, err := translator.Translate(context.Background(), "Xin chào", domain.LangVietnamese)
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if text != "Xin chào" || detected != domain.LangVietnamese {
		t.Fatalf("got (%q, %q)", text, detected)
	}
}

func TestTranslatorWithholdsUnsupportedLanguage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("no request expected for unsupported language")
	}))
	defer server.Close()

	translator := NewTranslator(newTestClient(server.URL), fixedDetector{lang: domain.Language("fr")})
	text, detected, err := translator.Translate(context.Background(), "Bonjour", domain.LangVietnamese)
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if text != "" {
		t.Fatalf("expected withheld translation, got %q", text)
	}
	if detected != domain.Language("fr") {
		t.Fatalf("detected = %q, want fr", detected)
	}
}

func TestTranslatorRendersLanguageNames(t *testing.T) {
	var captured capturedChat
	server := newChatServer(t, "Xin chào", &captured)
	defer server.Close()

	translator := NewTranslator(newTestClient(server.URL), fixedDetector{lang: domain.LangEnglish})
	text, detected, err := translator.Translate(context.Background(), "Hello", domain.LangVietnamese)
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if text != "Xin chào" || detected != domain.LangEnglish {
		t.Fatalf("got (%q, %q)", text, detected)
	}
	if !strings.Contains(captured.System, "from English to Vietnamese") {
		t.Fatalf("expected language names in system prompt, got %q", captured.System)
	}
}

func TestEmbedderParsesVectors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{"data":[{"embedding":[0.1,0.2]},{"embedding":[0.3,0.4]}]}`)
	}))
	defer server.Close()

	embedder := NewEmbedder(newTestClient(server.URL))
	vectors, err := embedder.Embed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vectors) != 2 || len(vectors[0]) != 2 {
		t.Fatalf("unexpected vectors: %v", vectors)
	}
}

func TestChatSurfacesHTTPBodyAndTemporaryKind(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	generator := NewGenerator(newTestClient(server.URL))
	_, err := generator.GenerateAnswer(context.Background(), "q", nil)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "model overloaded") {
		t.Fatalf("expected response body in error, got %v", err)
	}
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary kind, got %v", err)
	}
}
