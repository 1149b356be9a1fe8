package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hienhayho/KLTN-v2/internal/core/domain"
	"github.com/hienhayho/KLTN-v2/internal/core/ports"
)

// Config is the read-only workflow configuration, loaded once per process.
type Config struct {
	Provider string
	TopK     int
	Method   domain.RetrievalMethod
	Timeout  time.Duration
}

func (c Config) normalize() Config {
	out := c
	if out.TopK <= 0 {
		out.TopK = 8
	}
	if out.Method == "" {
		out.Method = domain.RetrievalHybrid
	}
	if out.Timeout <= 0 {
		out.Timeout = 120 * time.Second
	}
	return out
}

// Observer receives workflow telemetry. Implemented by the metrics package;
// a nil observer disables recording.
type Observer interface {
	BranchTaken(branch string)
	StageFinished(stage string, duration time.Duration, err error)
}

// Branch labels reported to the Observer.
const (
	BranchUnsupportedLanguage = "unsupported_language"
	BranchOutOfDomain         = "out_of_domain"
	BranchGreeting            = "greeting"
	BranchBye                 = "bye"
	BranchHistoryAnswer       = "history_answer"
	BranchOnlyRetrieve        = "only_retrieve"
	BranchRetrieval           = "retrieval"
)

// Engine sequences translation, rewriting, classification, retrieval and
// generation for one request at a time. All collaborators are process-wide
// read-mostly singletons injected at construction; per-request state lives
// in a runContext created inside Run.
type Engine struct {
	translator ports.Translator
	rewriter   ports.QueryRewriter
	classifier ports.TopicClassifier
	history    ports.HistoryAnswerer
	retriever  ports.Retriever
	generators map[string]ports.AnswerGenerator

	cfg      Config
	pick     domain.ResponsePicker
	observer Observer
	logger   *slog.Logger
}

// Option tweaks optional engine collaborators.
type Option func(*Engine)

func WithResponsePicker(pick domain.ResponsePicker) Option {
	return func(e *Engine) { e.pick = pick }
}

func WithObserver(observer Observer) Option {
	return func(e *Engine) { e.observer = observer }
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

func NewEngine(
	translator ports.Translator,
	rewriter ports.QueryRewriter,
	classifier ports.TopicClassifier,
	history ports.HistoryAnswerer,
	retriever ports.Retriever,
	generators map[string]ports.AnswerGenerator,
	cfg Config,
	opts ...Option,
) *Engine {
	e := &Engine{
		translator: translator,
		rewriter:   rewriter,
		classifier: classifier,
		history:    history,
		retriever:  retriever,
		generators: generators,
		cfg:        cfg.normalize(),
		pick:       domain.RandomResponse,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run drives the state machine from the raw request to the terminal event.
// The whole run is bounded by a single overall timeout; exceeding it fails
// the request, no partial result is returned.
func (e *Engine) Run(ctx context.Context, req domain.ChatRequest) (*domain.ChatResult, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "run workflow", fmt.Errorf("empty query"))
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	rc := newRunContext(query, req.OnlyRetrieve)
	e.logger.Info("workflow_start", "query", query, "history_len", len(req.History), "only_retrieve", req.OnlyRetrieve)

	var ev StageEvent = PreprocessEvent{Query: query, History: req.History}
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("workflow deadline: %w", err)
		}

		var err error
		switch event := ev.(type) {
		case PreprocessEvent:
			ev, err = e.step("preprocess", func() (StageEvent, error) {
				return e.preprocess(ctx, rc, event)
			})
		case RetrieveEvent:
			ev, err = e.step("retrieve", func() (StageEvent, error) {
				return e.retrieve(ctx, rc, event)
			})
		case AfterRetrieveEvent:
			ev, err = e.step("pre_answer", func() (StageEvent, error) {
				return e.preAnswer(ctx, rc, event)
			})
		case AnswerEvent:
			ev, err = e.step("final_answer", func() (StageEvent, error) {
				return e.finalAnswer(ctx, rc, event)
			})
		case FinalAnswerEvent:
			result := &domain.ChatResult{
				Answer:     event.Answer,
				FinalQuery: event.FinalQuery,
				Contexts:   event.Contexts,
			}
			if result.Contexts == nil {
				result.Contexts = []string{}
			}
			e.logger.Info("workflow_done", "final_query", result.FinalQuery, "contexts", len(result.Contexts))
			return result, nil
		default:
			return nil, fmt.Errorf("unexpected stage event %T", ev)
		}
		if err != nil {
			return nil, err
		}
	}
}

func (e *Engine) step(stage string, fn func() (StageEvent, error)) (StageEvent, error) {
	start := time.Now()
	ev, err := fn()
	if e.observer != nil {
		e.observer.StageFinished(stage, time.Since(start), err)
	}
	return ev, err
}

// preprocess is the central decision node: it emits exactly one of
// AnswerEvent (unsupported language, non-administration topic),
// FinalAnswerEvent (answered from history) or RetrieveEvent (normal path).
func (e *Engine) preprocess(ctx context.Context, rc *runContext, ev PreprocessEvent) (StageEvent, error) {
	translated, detected, err := e.translator.Translate(ctx, ev.Query, domain.WorkingLanguage)
	if err != nil {
		return nil, fmt.Errorf("translate query: %w", err)
	}
	e.logger.Debug("query_translated", "translated", translated, "detected_lang", string(detected))

	if !domain.SupportedLanguage(detected) {
		e.branch(BranchUnsupportedLanguage)
		rc.skipBackTranslation = true
		return AnswerEvent{Answer: e.pick(domain.NotSupportedLanguageResponses)}, nil
	}

	if len(ev.History) > 0 {
		rewritten, err := e.rewriter.Rewrite(ctx, translated, domain.UserHistory(ev.History))
		if err != nil {
			return nil, fmt.Errorf("rewrite query: %w", err)
		}
		e.logger.Debug("query_rewritten", "rewritten", rewritten)
		translated = rewritten
	}
	rc.setFinalQuery(translated)

	topic, err := e.classifier.ClassifyTopic(ctx, translated)
	if err != nil {
		return nil, fmt.Errorf("classify topic: %w", err)
	}

	switch topic {
	case domain.TopicAdministration:
		// continue below
	case domain.TopicGreeting:
		e.branch(BranchGreeting)
		return AnswerEvent{Answer: e.pick(domain.GreetingResponses)}, nil
	case domain.TopicBye:
		e.branch(BranchBye)
		return AnswerEvent{Answer: e.pick(domain.ByeResponses)}, nil
	default:
		e.branch(BranchOutOfDomain)
		return AnswerEvent{Answer: e.pick(domain.OutDomainResponses)}, nil
	}

	if len(ev.History) > 0 {
		// The history answerer sees the untouched original query; rewriting
		// would leak the assistant's own reformulation into the check.
		answer, ok, err := e.history.AnswerFromHistory(ctx, rc.query, ev.History)
		if err != nil {
			return nil, fmt.Errorf("answer from history: %w", err)
		}
		if ok {
			e.branch(BranchHistoryAnswer)
			return FinalAnswerEvent{Answer: answer, FinalQuery: rc.query}, nil
		}
	}

	return RetrieveEvent{Query: rc.finalQuery}, nil
}

func (e *Engine) retrieve(ctx context.Context, rc *runContext, ev RetrieveEvent) (StageEvent, error) {
	contexts, err := e.retriever.Retrieve(ctx, ev.Query, e.cfg.TopK, e.cfg.Method)
	if err != nil {
		return nil, fmt.Errorf("retrieve contexts: %w", err)
	}
	e.logger.Debug("contexts_retrieved", "count", len(contexts))

	if rc.onlyRetrieve {
		// Retrieval-quality evaluation path: skip generation entirely.
		e.branch(BranchOnlyRetrieve)
		return FinalAnswerEvent{Answer: "", FinalQuery: ev.Query, Contexts: contexts}, nil
	}

	e.branch(BranchRetrieval)
	return AfterRetrieveEvent{Contexts: contexts}, nil
}

func (e *Engine) preAnswer(ctx context.Context, rc *runContext, ev AfterRetrieveEvent) (StageEvent, error) {
	generator, ok := e.generators[e.cfg.Provider]
	if !ok {
		return nil, domain.WrapError(domain.ErrConfig, "select answer provider",
			fmt.Errorf("unsupported provider %q", e.cfg.Provider))
	}

	answer, err := generator.GenerateAnswer(ctx, rc.resolvedFinalQuery(), ev.Contexts)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}
	return AnswerEvent{Answer: answer, Contexts: ev.Contexts}, nil
}

func (e *Engine) finalAnswer(ctx context.Context, rc *runContext, ev AnswerEvent) (StageEvent, error) {
	answer := ev.Answer

	if !rc.skipBackTranslation {
		translated, err := e.backTranslate(ctx, rc.query, answer)
		if err != nil {
			return nil, err
		}
		answer = translated
	}

	answer = strings.TrimSpace(answer)
	// Source documents carry their filenames in the body; never surface them.
	answer = strings.ReplaceAll(answer, ".docx", "")

	return FinalAnswerEvent{
		Answer:     answer,
		FinalQuery: rc.resolvedFinalQuery(),
		Contexts:   ev.Contexts,
	}, nil
}

// backTranslate aligns the answer's language with the original query's
// language when they differ. The two detections are independent and run
// concurrently; detector failures fall back to unknown and pass the answer
// through unchanged.
func (e *Engine) backTranslate(ctx context.Context, query, answer string) (string, error) {
	var queryLang, answerLang domain.Language

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		queryLang = e.detectOrUnknown(gctx, query)
		return nil
	})
	g.Go(func() error {
		answerLang = e.detectOrUnknown(gctx, answer)
		return nil
	})
	_ = g.Wait()

	if queryLang == domain.LangUnknown || answerLang == domain.LangUnknown || queryLang == answerLang {
		return answer, nil
	}

	e.logger.Debug("back_translate", "from", string(answerLang), "to", string(queryLang))
	translated, _, err := e.translator.Translate(ctx, answer, queryLang)
	if err != nil {
		return "", fmt.Errorf("back-translate answer: %w", err)
	}
	if translated == "" {
		return answer, nil
	}
	return translated, nil
}

func (e *Engine) detectOrUnknown(ctx context.Context, text string) domain.Language {
	lang, err := e.translator.DetectLanguage(ctx, text)
	if err != nil {
		e.logger.Warn("language_detection_failed", "error", err)
		return domain.LangUnknown
	}
	return lang
}

func (e *Engine) branch(name string) {
	if e.observer != nil {
		e.observer.BranchTaken(name)
	}
	e.logger.Debug("workflow_branch", "branch", name)
}
