package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hienhayho/KLTN-v2/internal/core/domain"
	"github.com/hienhayho/KLTN-v2/internal/infrastructure/llm/prompt"
	"github.com/hienhayho/KLTN-v2/internal/infrastructure/resilience"
)

const defaultBaseURL = "https://api.openai.com/v1"

type Config struct {
	BaseURL            string
	APIKey             string
	ChatModel          string
	EmbedModel         string
	PromptMode         prompt.Mode
	RequestTimeout     time.Duration
	ResilienceExecutor *resilience.Executor
}

type Client struct {
	baseURL    string
	apiKey     string
	chatModel  string
	embedModel string
	promptMode prompt.Mode
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	mode := cfg.PromptMode
	if mode == "" {
		mode = prompt.ModePlainText
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		chatModel:  cfg.ChatModel,
		embedModel: cfg.EmbedModel,
		promptMode: mode,
		httpClient: &http.Client{Timeout: timeout},
		executor:   cfg.ResilienceExecutor,
	}
}

// resolveMode picks an explicit per-stage prompt mode over the client
// default.
func resolveMode(fallback prompt.Mode, override []prompt.Mode) prompt.Mode {
	if len(override) > 0 && override[0] != "" {
		return override[0]
	}
	return fallback
}

// Rewriter folds conversation history into a self-contained query.
type Rewriter struct {
	client *Client
	mode   prompt.Mode
}

func NewRewriter(client *Client, mode ...prompt.Mode) *Rewriter {
	return &Rewriter{client: client, mode: resolveMode(client.promptMode, mode)}
}

func (r *Rewriter) Rewrite(ctx context.Context, query string, history []string) (string, error) {
	if len(history) == 0 {
		return query, nil
	}

	system, user := prompt.Get(prompt.Rewrite, r.mode)
	user = prompt.Render(user, map[string]string{
		"query":   query,
		"history": "- " + strings.Join(history, "\n- "),
	})

	rewritten, err := r.client.chat(ctx, "rewrite", system, user, false)
	if err != nil {
		return "", err
	}
	rewritten = strings.TrimSpace(rewritten)
	if rewritten == "" {
		return query, nil
	}
	return rewritten, nil
}

// TopicClassifier labels a query as administration, greeting, bye or other.
type TopicClassifier struct {
	client *Client
	mode   prompt.Mode
}

func NewTopicClassifier(client *Client, mode ...prompt.Mode) *TopicClassifier {
	return &TopicClassifier{client: client, mode: resolveMode(client.promptMode, mode)}
}

func (c *TopicClassifier) ClassifyTopic(ctx context.Context, text string) (domain.Topic, error) {
	system, user := prompt.Get(prompt.Topic, c.mode)
	user = prompt.Render(user, map[string]string{"query": text})

	raw, err := c.client.chat(ctx, "classify_topic", system, user, true)
	if err != nil {
		return "", err
	}

	var result struct {
		Topic string `json:"topic"`
	}
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &result); err != nil {
		return "", domain.WrapError(domain.ErrContract, "classify_topic", fmt.Errorf("parse topic json: %w", err))
	}
	return domain.ParseTopic(result.Topic)
}

// HistoryAnswerer answers strictly from prior turns. ok=false means the
// model judged the history insufficient and retrieval must run.
type HistoryAnswerer struct {
	client *Client
}

func NewHistoryAnswerer(client *Client) *HistoryAnswerer {
	return &HistoryAnswerer{client: client}
}

func (h *HistoryAnswerer) AnswerFromHistory(ctx context.Context, query string, history []domain.Message) (string, bool, error) {
	if len(history) == 0 {
		return "", false, nil
	}

	var historyBuilder strings.Builder
	for _, message := range history {
		switch message.Role {
		case domain.RoleUser:
			historyBuilder.WriteString("<USER>: " + message.Content + "\n")
		case domain.RoleAssistant:
			historyBuilder.WriteString("<ASSISTANT>: " + message.Content + "\n")
		}
	}

	system, user := prompt.Get(prompt.AnswerFromHistory, h.client.promptMode)
	user = prompt.Render(user, map[string]string{
		"query":   query,
		"history": historyBuilder.String(),
	})

	raw, err := h.client.chat(ctx, "answer_from_history", system, user, true)
	if err != nil {
		return "", false, err
	}

	var result struct {
		Answer *string `json:"answer"`
	}
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &result); err != nil {
		return "", false, domain.WrapError(domain.ErrContract, "answer_from_history", fmt.Errorf("parse answer json: %w", err))
	}
	if result.Answer == nil || strings.TrimSpace(*result.Answer) == "" {
		return "", false, nil
	}
	return strings.TrimSpace(*result.Answer), true, nil
}

// Generator produces the retrieval-grounded final answer.
type Generator struct {
	client    *Client
	maxTokens int
}

// NewGenerator builds the answer generator. A positive maxTokens caps the
// completion length; zero leaves the model default.
func NewGenerator(client *Client, maxTokens ...int) *Generator {
	g := &Generator{client: client}
	if len(maxTokens) > 0 && maxTokens[0] > 0 {
		g.maxTokens = maxTokens[0]
	}
	return g
}

func (g *Generator) GenerateAnswer(ctx context.Context, query string, contexts []string) (string, error) {
	system, user := prompt.Get(prompt.Answer, g.client.promptMode)
	user = prompt.Render(user, map[string]string{
		"query":         query,
		"final_context": strings.Join(contexts, "\n=========\n"),
	})

	answer, err := g.client.chat(ctx, "generate_answer", system, user, false, g.maxTokens)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

// LanguageDetector is satisfied by the gtx client. Detection stays on the
// dedicated detector even when translation runs through the LLM.
type LanguageDetector interface {
	DetectLanguage(ctx context.Context, text string) (domain.Language, error)
}

// Translator performs LLM-backed translation with external detection.
type Translator struct {
	client   *Client
	detector LanguageDetector
}

func NewTranslator(client *Client, detector LanguageDetector) *Translator {
	return &Translator{client: client, detector: detector}
}

func (t *Translator) DetectLanguage(ctx context.Context, text string) (domain.Language, error) {
	return t.detector.DetectLanguage(ctx, text)
}

func (t *Translator) Translate(ctx context.Context, text string, target domain.Language) (string, domain.Language, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", domain.LangUnknown, nil
	}

	detected, err := t.detector.DetectLanguage(ctx, text)
	if err != nil {
		return "", domain.LangUnknown, err
	}
	if !domain.SupportedLanguage(detected) {
		return "", detected, nil
	}
	if detected == target {
		return text, detected, nil
	}

	system, user := prompt.Get(prompt.Translate, t.client.promptMode)
	vars := map[string]string{
		"src_lang": languageName(detected),
		"tgt_lang": languageName(target),
	}
	system = prompt.Render(system, vars)
	user = prompt.Render(user, map[string]string{"query": text})

	translated, err := t.client.chat(ctx, "translate", system, user, false)
	if err != nil {
		return "", detected, err
	}
	return strings.TrimSpace(translated), detected, nil
}

func languageName(lang domain.Language) string {
	switch lang {
	case domain.LangVietnamese:
		return "Vietnamese"
	case domain.LangEnglish:
		return "English"
	default:
		return string(lang)
	}
}

// Embedder builds dense vectors via the embeddings endpoint.
type Embedder struct {
	client *Client
}

func NewEmbedder(client *Client) *Embedder {
	return &Embedder{client: client}
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	request := map[string]any{
		"model": e.client.embedModel,
		"input": texts,
	}
	var response struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := e.client.postJSON(ctx, "/embeddings", request, &response, "embed"); err != nil {
		return nil, err
	}

	vectors := make([][]float32, 0, len(response.Data))
	for _, item := range response.Data {
		vectors = append(vectors, item.Embedding)
	}
	return vectors, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	return vectors[0], nil
}

func (c *Client) chat(ctx context.Context, operation, system, user string, jsonMode bool, maxTokens ...int) (string, error) {
	request := map[string]any{
		"model": c.chatModel,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
		"temperature": 0.0,
	}
	if jsonMode {
		request["response_format"] = map[string]string{"type": "json_object"}
	}
	if len(maxTokens) > 0 && maxTokens[0] > 0 {
		request["max_tokens"] = maxTokens[0]
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := c.postJSON(ctx, "/chat/completions", request, &response, operation); err != nil {
		return "", err
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("openai %s: empty choices", operation)
	}
	return response.Choices[0].Message.Content, nil
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
