package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hienhayho/KLTN-v2/internal/config"
	"github.com/hienhayho/KLTN-v2/internal/core/domain"
	"github.com/hienhayho/KLTN-v2/internal/core/ports"
	"github.com/hienhayho/KLTN-v2/internal/core/usecase"
	"github.com/hienhayho/KLTN-v2/internal/core/workflow"
	"github.com/hienhayho/KLTN-v2/internal/infrastructure/chunking"
	"github.com/hienhayho/KLTN-v2/internal/infrastructure/extractor"
	"github.com/hienhayho/KLTN-v2/internal/infrastructure/extractor/pdfreader"
	"github.com/hienhayho/KLTN-v2/internal/infrastructure/extractor/plaintext"
	"github.com/hienhayho/KLTN-v2/internal/infrastructure/llm/openai"
	"github.com/hienhayho/KLTN-v2/internal/infrastructure/llm/prompt"
	"github.com/hienhayho/KLTN-v2/internal/infrastructure/llm/vllm"
	"github.com/hienhayho/KLTN-v2/internal/infrastructure/queue/nats"
	"github.com/hienhayho/KLTN-v2/internal/infrastructure/repository/postgres"
	"github.com/hienhayho/KLTN-v2/internal/infrastructure/resilience"
	"github.com/hienhayho/KLTN-v2/internal/infrastructure/storage/localfs"
	"github.com/hienhayho/KLTN-v2/internal/infrastructure/translate/gtx"
	"github.com/hienhayho/KLTN-v2/internal/infrastructure/vector/qdrant"
)

// App holds everything cmd/api and cmd/worker need, fully wired.
type App struct {
	Config config.Config
	Logger *slog.Logger

	Queue     ports.MessageQueue
	Repo      ports.DocumentRepository
	ChatUC    *usecase.ChatUseCase
	IngestUC  ports.DocumentIngestor
	ProcessUC ports.DocumentProcessor

	closeFn func()
}

type engineOptions struct {
	observer workflow.Observer
}

// Option tweaks optional app collaborators.
type Option func(*engineOptions)

func WithWorkflowObserver(observer workflow.Observer) Option {
	return func(o *engineOptions) { o.observer = observer }
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var engineOpts engineOptions
	for _, opt := range opts {
		opt(&engineOpts)
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewDocumentRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	conversations := postgres.NewConversationRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts: cfg.RetryMaxAttempts,
		RetryBackoff:     time.Duration(cfg.RetryBackoffMS) * time.Millisecond,
		BreakerEnabled:   true,
	})

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
		Logger:             logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	answerMode, err := prompt.ParseMode(cfg.AnswerPromptMode)
	if err != nil {
		return nil, fmt.Errorf("parse answer prompt mode: %w", err)
	}
	rewriteMode, err := prompt.ParseMode(cfg.RewritePromptMode)
	if err != nil {
		return nil, fmt.Errorf("parse rewrite prompt mode: %w", err)
	}
	domainMode, err := prompt.ParseMode(cfg.DomainPromptMode)
	if err != nil {
		return nil, fmt.Errorf("parse domain prompt mode: %w", err)
	}

	// Only translation retries through the executor; the other workflow
	// stages surface upstream failures directly.
	openaiClient := openai.New(openai.Config{
		BaseURL:    cfg.OpenAIBaseURL,
		APIKey:     cfg.OpenAIAPIKey,
		ChatModel:  cfg.OpenAIModel,
		EmbedModel: cfg.OpenAIEmbedModel,
		PromptMode: answerMode,
	})
	embedder := openai.NewEmbedder(openaiClient)

	translator, err := buildTranslator(cfg, executor, logger)
	if err != nil {
		return nil, err
	}

	generators := map[string]ports.AnswerGenerator{
		"openai": openai.NewGenerator(openaiClient, cfg.AnswerMaxTokens),
		"vllm": vllm.New(vllm.Config{
			BaseURL:    cfg.VLLMURL,
			Model:      cfg.VLLMModel,
			MaxTokens:  cfg.VLLMMaxTokens,
			PromptMode: answerMode,
		}),
	}

	vectorDB := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection)
	retriever := usecase.NewRetrieveUseCase(embedder, vectorDB, usecase.RetrieveConfig{
		Fusion:              usecase.FusionStrategy(cfg.RetrievalFusion),
		SemanticWeight:      cfg.SemanticWeight,
		BM25Weight:          cfg.BM25Weight,
		RRFK:                cfg.RetrievalRRFK,
		CandidateMultiplier: cfg.HybridCandidates,
		Rerank:              cfg.RerankEnabled,
	}, logger)

	engineWorkflowOpts := []workflow.Option{workflow.WithLogger(logger)}
	if engineOpts.observer != nil {
		engineWorkflowOpts = append(engineWorkflowOpts, workflow.WithObserver(engineOpts.observer))
	}
	engine := workflow.NewEngine(
		translator,
		openai.NewRewriter(openaiClient, rewriteMode),
		openai.NewTopicClassifier(openaiClient, domainMode),
		openai.NewHistoryAnswerer(openaiClient),
		retriever,
		generators,
		workflow.Config{
			Provider: cfg.LLMProvider,
			TopK:     cfg.RetrievalTopK,
			Method:   domain.RetrievalMethod(cfg.RetrievalMethod),
			Timeout:  time.Duration(cfg.WorkflowTimeoutSeconds) * time.Second,
		},
		engineWorkflowOpts...,
	)

	chatUC := usecase.NewChatUseCase(engine, conversations, cfg.HistoryLimit, logger)

	chunker := chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	texts := extractor.NewSelector(plaintext.NewExtractor(storage))
	texts.Register("application/pdf", pdfreader.NewExtractor(storage))

	ingestUC := usecase.NewIngestDocumentUseCase(repo, storage, queue)
	processUC := usecase.NewProcessDocumentUseCase(repo, texts, chunker, embedder, vectorDB)

	return &App{
		Config: cfg,
		Logger: logger,

		Queue:     queue,
		Repo:      repo,
		ChatUC:    chatUC,
		IngestUC:  ingestUC,
		ProcessUC: processUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

// buildTranslator picks the translation backend: the free single-request
// translate endpoint by default, the chat model when TRANSLATE_METHOD=llm.
// The LLM path still detects language through the free endpoint.
func buildTranslator(
	cfg config.Config,
	executor *resilience.Executor,
	logger *slog.Logger,
) (ports.Translator, error) {
	gtxClient, err := gtx.New(gtx.Config{
		BaseURL:            cfg.TranslateBaseURL,
		RequestsPerSecond:  cfg.TranslateRPS,
		ResilienceExecutor: executor,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("init translate client: %w", err)
	}

	switch cfg.TranslateMethod {
	case "", "gtx":
		return gtxClient, nil
	case "llm":
		translateMode, err := prompt.ParseMode(cfg.TranslatePromptMode)
		if err != nil {
			return nil, fmt.Errorf("parse translate prompt mode: %w", err)
		}
		translateClient := openai.New(openai.Config{
			BaseURL:            cfg.OpenAIBaseURL,
			APIKey:             cfg.OpenAIAPIKey,
			ChatModel:          cfg.OpenAIModel,
			PromptMode:         translateMode,
			ResilienceExecutor: executor,
		})
		return openai.NewTranslator(translateClient, gtxClient), nil
	default:
		return nil, domain.WrapError(domain.ErrConfig, "build translator",
			fmt.Errorf("unknown translate method %q", cfg.TranslateMethod))
	}
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
