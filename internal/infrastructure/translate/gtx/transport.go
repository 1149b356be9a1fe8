package gtx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hienhayho/KLTN-v2/internal/core/domain"
)

type singleResult struct {
	Text         string
	DetectedLang string
}

// singleRequest calls the translate_a/single endpoint. The response is a
// positional JSON array: element 0 holds the translated segments, element 2
// the detected source language.
func (c *Client) singleRequest(ctx context.Context, text string, target domain.Language) (singleResult, error) {
	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", "auto")
	params.Set("tl", string(target))
	params.Set("dt", "t")
	params.Set("q", text)

	endpoint := c.baseURL + "/translate_a/single?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return singleResult{}, fmt.Errorf("create translate request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return singleResult{}, fmt.Errorf("translate request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return singleResult{}, &HTTPStatusError{
			Operation:  "translate",
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return singleResult{}, fmt.Errorf("read translate response: %w", err)
	}
	return parseSingleResponse(body)
}

func parseSingleResponse(body []byte) (singleResult, error) {
	var payload []json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return singleResult{}, fmt.Errorf("decode translate response: %w", err)
	}
	if len(payload) < 3 {
		return singleResult{}, fmt.Errorf("translate response has %d elements, want at least 3", len(payload))
	}

	var segments [][]any
	if err := json.Unmarshal(payload[0], &segments); err != nil {
		return singleResult{}, fmt.Errorf("decode translate segments: %w", err)
	}

	var builder strings.Builder
	for _, segment := range segments {
		if len(segment) == 0 {
			continue
		}
		if part, ok := segment[0].(string); ok {
			builder.WriteString(part)
		}
	}

	var detected string
	if err := json.Unmarshal(payload[2], &detected); err != nil {
		return singleResult{}, fmt.Errorf("decode detected language: %w", err)
	}

	return singleResult{
		Text:         strings.TrimSpace(builder.String()),
		DetectedLang: detected,
	}, nil
}
