package gtx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"github.com/hienhayho/KLTN-v2/internal/core/domain"
	"github.com/hienhayho/KLTN-v2/internal/infrastructure/resilience"
)

const (
	defaultBaseURL         = "https://translate.googleapis.com"
	defaultDetectCacheSize = 1024
	defaultRequestTimeout  = 15 * time.Second
)

type Config struct {
	BaseURL            string
	RequestsPerSecond  float64
	DetectCacheSize    int
	RequestTimeout     time.Duration
	ResilienceExecutor *resilience.Executor
}

// Client talks to the public translate endpoint. A single request returns
// both the translation and the detected source language, so Translate never
// needs a separate detection round-trip.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	limiter     *rate.Limiter
	detectCache *lru.Cache[string, domain.Language]
	executor    *resilience.Executor
	logger      *slog.Logger
}

func New(cfg Config, logger *slog.Logger) (*Client, error) {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	cacheSize := cfg.DetectCacheSize
	if cacheSize <= 0 {
		cacheSize = defaultDetectCacheSize
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	cache, err := lru.New[string, domain.Language](cacheSize)
	if err != nil {
		return nil, err
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:     baseURL,
		httpClient:  &http.Client{Timeout: timeout},
		limiter:     limiter,
		detectCache: cache,
		executor:    cfg.ResilienceExecutor,
		logger:      logger,
	}, nil
}

// DetectLanguage fails open: on transport errors or empty input it reports
// domain.LangUnknown with a nil error, and the caller keeps going.
func (c *Client) DetectLanguage(ctx context.Context, text string) (domain.Language, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.LangUnknown, nil
	}
	if lang, ok := c.detectCache.Get(text); ok {
		return lang, nil
	}

	result, err := c.single(ctx, text, domain.WorkingLanguage)
	if err != nil {
		c.logger.Warn("language_detection_failed", "error", err)
		return domain.LangUnknown, nil
	}

	lang := normalizeLang(result.DetectedLang)
	c.detectCache.Add(text, lang)
	return lang, nil
}

// Translate converts text into the target language. When the detected
// source already equals the target the input is returned untouched. When
// the source is outside the supported set the translation is withheld and
// only the detected language is reported.
func (c *Client) Translate(ctx context.Context, text string, target domain.Language) (string, domain.Language, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", domain.LangUnknown, nil
	}

	result, err := c.single(ctx, text, target)
	if err != nil {
		return "", domain.LangUnknown, wrapTemporaryIfNeeded("translate", err)
	}

	detected := normalizeLang(result.DetectedLang)
	c.detectCache.Add(text, detected)

	if !domain.SupportedLanguage(detected) {
		return "", detected, nil
	}
	if detected == target {
		return text, detected, nil
	}
	return result.Text, detected, nil
}

func (c *Client) single(ctx context.Context, text string, target domain.Language) (singleResult, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return singleResult{}, err
		}
	}

	call := func(ctx context.Context) (singleResult, error) {
		return c.singleRequest(ctx, text, target)
	}
	if c.executor == nil {
		return call(ctx)
	}

	var result singleResult
	err := c.executor.Execute(ctx, "gtx_translate", func(ctx context.Context) error {
		var callErr error
		result, callErr = call(ctx)
		return callErr
	}, classifyTranslateError)
	return result, err
}

func normalizeLang(code string) domain.Language {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return domain.LangUnknown
	}
	// The endpoint reports regional variants like zh-CN.
	if idx := strings.IndexByte(code, '-'); idx > 0 {
		code = code[:idx]
	}
	return domain.Language(code)
}
