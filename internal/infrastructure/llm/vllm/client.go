package vllm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hienhayho/KLTN-v2/internal/infrastructure/llm/prompt"
	"github.com/hienhayho/KLTN-v2/internal/infrastructure/resilience"
)

type Config struct {
	BaseURL            string
	Model              string
	MaxTokens          int
	PromptMode         prompt.Mode
	RequestTimeout     time.Duration
	ResilienceExecutor *resilience.Executor
}

// Client talks to a self-hosted model behind an OpenAI-compatible server.
// The model answers in a <REASON>/<ANSWER> format and only the answer part
// is returned to the caller.
type Client struct {
	baseURL    string
	model      string
	maxTokens  int
	promptMode prompt.Mode
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(cfg Config) *Client {
	mode := cfg.PromptMode
	if mode == "" {
		mode = prompt.ModePlainText
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		maxTokens:  maxTokens,
		promptMode: mode,
		httpClient: &http.Client{Timeout: timeout},
		executor:   cfg.ResilienceExecutor,
	}
}

func (c *Client) GenerateAnswer(ctx context.Context, query string, contexts []string) (string, error) {
	var contextBuilder strings.Builder
	for _, passage := range contexts {
		contextBuilder.WriteString("<DOCUMENT>" + passage + "</DOCUMENT>\n")
	}

	system, user := prompt.Get(prompt.ReasoningAnswer, c.promptMode)
	user = prompt.Render(user, map[string]string{
		"query":         query,
		"final_context": contextBuilder.String(),
	})

	raw, err := c.chat(ctx, system, user)
	if err != nil {
		return "", err
	}
	return extractAnswer(raw), nil
}

func (c *Client) chat(ctx context.Context, system, user string) (string, error) {
	request := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
		"temperature": 0.0,
		"max_tokens":  c.maxTokens,
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	call := func(ctx context.Context) error {
		return c.postJSON(ctx, "/v1/chat/completions", request, &response)
	}
	var err error
	if c.executor == nil {
		err = call(ctx)
	} else {
		err = c.executor.Execute(ctx, "vllm_generate", call, classifyVLLMError)
	}
	if err = wrapTemporaryIfNeeded("vllm_generate", err); err != nil {
		return "", err
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("vllm generate: empty choices")
	}
	return response.Choices[0].Message.Content, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("vllm generate request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &HTTPStatusError{
			Operation:  "generate",
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(respBody)),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode generate response: %w", err)
	}
	return nil
}

// extractAnswer keeps only the part after the last <ANSWER>: marker. A
// response without the marker is returned whole.
func extractAnswer(raw string) string {
	const marker = "<ANSWER>:"
	if idx := strings.LastIndex(raw, marker); idx >= 0 {
		return strings.TrimSpace(raw[idx+len(marker):])
	}
	return strings.TrimSpace(raw)
}
