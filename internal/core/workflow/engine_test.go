package workflow

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hienhayho/KLTN-v2/internal/core/domain"
	"github.com/hienhayho/KLTN-v2/internal/core/ports"
)

type stubTranslator struct {
	detectByText   map[string]domain.Language
	defaultLang    domain.Language
	translateCalls int
	detectCalls    int
	translated     map[string]string
	blockUntilCtx  bool
}

func newStubTranslator() *stubTranslator {
	return &stubTranslator{
		detectByText: map[string]domain.Language{},
		defaultLang:  domain.LangVietnamese,
		translated:   map[string]string{},
	}
}

func (s *stubTranslator) lang(text string) domain.Language {
	if lang, ok := s.detectByText[text]; ok {
		return lang
	}
	return s.defaultLang
}

func (s *stubTranslator) DetectLanguage(_ context.Context, text string) (domain.Language, error) {
	s.detectCalls++
	return s.lang(text), nil
}

func (s *stubTranslator) Translate(ctx context.Context, text string, target domain.Language) (string, domain.Language, error) {
	s.translateCalls++
	if s.blockUntilCtx {
		<-ctx.Done()
		return "", "", ctx.Err()
	}
	detected := s.lang(text)
	if !domain.SupportedLanguage(detected) {
		return "", detected, nil
	}
	if detected == target {
		return text, detected, nil
	}
	if out, ok := s.translated[text]; ok {
		return out, detected, nil
	}
	return "[" + string(target) + "] " + text, detected, nil
}

type stubRewriter struct {
	out   string
	calls int
}

func (s *stubRewriter) Rewrite(_ context.Context, query string, _ []string) (string, error) {
	s.calls++
	if s.out != "" {
		return s.out, nil
	}
	return query, nil
}

type stubClassifier struct {
	topic domain.Topic
	err   error
}

func (s *stubClassifier) ClassifyTopic(context.Context, string) (domain.Topic, error) {
	return s.topic, s.err
}

type stubHistoryAnswerer struct {
	answer    string
	ok        bool
	lastQuery string
	calls     int
}

func (s *stubHistoryAnswerer) AnswerFromHistory(_ context.Context, query string, _ []domain.Message) (string, bool, error) {
	s.calls++
	s.lastQuery = query
	return s.answer, s.ok, nil
}

type stubRetriever struct {
	contexts  []string
	lastQuery string
	calls     int
}

func (s *stubRetriever) Retrieve(_ context.Context, query string, _ int, _ domain.RetrievalMethod) ([]string, error) {
	s.calls++
	s.lastQuery = query
	return s.contexts, nil
}

type stubGenerator struct {
	answer string
	calls  int
}

func (s *stubGenerator) GenerateAnswer(context.Context, string, []string) (string, error) {
	s.calls++
	return s.answer, nil
}

type testDeps struct {
	translator *stubTranslator
	rewriter   *stubRewriter
	classifier *stubClassifier
	history    *stubHistoryAnswerer
	retriever  *stubRetriever
	generator  *stubGenerator
}

func newTestDeps() *testDeps {
	return &testDeps{
		translator: newStubTranslator(),
		rewriter:   &stubRewriter{},
		classifier: &stubClassifier{topic: domain.TopicAdministration},
		history:    &stubHistoryAnswerer{},
		retriever:  &stubRetriever{contexts: []string{"Tài liệu: Kết hôn\nNội dung thủ tục"}},
		generator:  &stubGenerator{answer: "Câu trả lời"},
	}
}

func (d *testDeps) engine(cfg Config, opts ...Option) *Engine {
	return NewEngine(
		d.translator,
		d.rewriter,
		d.classifier,
		d.history,
		d.retriever,
		map[string]ports.AnswerGenerator{"openai": d.generator},
		cfg,
		opts...,
	)
}

func firstResponse(set []string) string { return set[0] }

func TestRunGreetingShortCircuit(t *testing.T) {
	deps := newTestDeps()
	deps.classifier.topic = domain.TopicGreeting
	engine := deps.engine(Config{Provider: "openai"}, WithResponsePicker(firstResponse))

	result, err := engine.Run(context.Background(), domain.ChatRequest{Query: "Xin chào"})
	require.NoError(t, err)

	assert.Contains(t, domain.GreetingResponses, result.Answer)
	assert.Empty(t, result.Contexts)
	assert.Equal(t, 0, deps.retriever.calls)
	assert.Equal(t, 0, deps.generator.calls)
}

func TestRunOutOfDomainShortCircuit(t *testing.T) {
	deps := newTestDeps()
	deps.classifier.topic = domain.TopicOther
	engine := deps.engine(Config{Provider: "openai"}, WithResponsePicker(firstResponse))

	result, err := engine.Run(context.Background(), domain.ChatRequest{Query: "Hôm nay ngày mấy?"})
	require.NoError(t, err)

	assert.Contains(t, domain.OutDomainResponses, result.Answer)
	assert.Empty(t, result.Contexts)
	assert.Equal(t, 0, deps.retriever.calls)
}

func TestRunByeShortCircuit(t *testing.T) {
	deps := newTestDeps()
	deps.classifier.topic = domain.TopicBye
	engine := deps.engine(Config{Provider: "openai"}, WithResponsePicker(firstResponse))

	result, err := engine.Run(context.Background(), domain.ChatRequest{Query: "Tạm biệt nhé"})
	require.NoError(t, err)
	assert.Contains(t, domain.ByeResponses, result.Answer)
}

func TestRunUnsupportedLanguage(t *testing.T) {
	deps := newTestDeps()
	query := "Quelle est la démarche ?"
	deps.translator.detectByText[query] = "fr"
	engine := deps.engine(Config{Provider: "openai"}, WithResponsePicker(firstResponse))

	result, err := engine.Run(context.Background(), domain.ChatRequest{Query: query})
	require.NoError(t, err)

	assert.Contains(t, domain.NotSupportedLanguageResponses, result.Answer)
	assert.Empty(t, result.Contexts)
	assert.Equal(t, 0, deps.retriever.calls)
	// Canned response surfaces verbatim: only the initial translation call.
	assert.Equal(t, 1, deps.translator.translateCalls)
}

func TestRunRewriteAndRetrievalPath(t *testing.T) {
	deps := newTestDeps()
	deps.rewriter.out = "Thủ tục đăng ký kết hôn gồm những bước nào?"
	history := []domain.Message{
		{Role: domain.RoleUser, Content: "Quy trình đăng ký kết hôn là gì?"},
		{Role: domain.RoleAssistant, Content: "Gồm các bước sau..."},
	}
	engine := deps.engine(Config{Provider: "openai"}, WithResponsePicker(firstResponse))

	result, err := engine.Run(context.Background(), domain.ChatRequest{
		Query:   "Thủ tục như nào?",
		History: history,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, deps.rewriter.calls)
	assert.Contains(t, result.FinalQuery, "đăng ký kết hôn")
	assert.Equal(t, result.FinalQuery, deps.retriever.lastQuery)
	assert.NotEmpty(t, result.Contexts)
	assert.Equal(t, "Câu trả lời", result.Answer)
}

func TestRunEmptyHistorySkipsRewriteAndHistoryAnswer(t *testing.T) {
	deps := newTestDeps()
	engine := deps.engine(Config{Provider: "openai"})

	_, err := engine.Run(context.Background(), domain.ChatRequest{Query: "Thủ tục cấp hộ chiếu?"})
	require.NoError(t, err)

	assert.Equal(t, 0, deps.rewriter.calls)
	assert.Equal(t, 0, deps.history.calls)
	assert.Equal(t, 1, deps.retriever.calls)
}

func TestRunHistoryAnswerShortcut(t *testing.T) {
	deps := newTestDeps()
	deps.history.answer = "Bạn cần mang CCCD và giấy xác nhận tình trạng hôn nhân."
	deps.history.ok = true
	deps.rewriter.out = "Giấy tờ cần thiết khi đăng ký kết hôn?"
	engine := deps.engine(Config{Provider: "openai"})

	original := "Cần giấy tờ gì?"
	result, err := engine.Run(context.Background(), domain.ChatRequest{
		Query:   original,
		History: []domain.Message{{Role: domain.RoleUser, Content: "Quy trình đăng ký kết hôn là gì?"}},
	})
	require.NoError(t, err)

	// The shortcut answers from the untouched original query and bypasses
	// retrieval and back-translation entirely.
	assert.Equal(t, original, deps.history.lastQuery)
	assert.Equal(t, original, result.FinalQuery)
	assert.Equal(t, deps.history.answer, result.Answer)
	assert.Empty(t, result.Contexts)
	assert.Equal(t, 0, deps.retriever.calls)
	assert.Equal(t, 0, deps.translator.detectCalls)
}

func TestRunOnlyRetrieve(t *testing.T) {
	deps := newTestDeps()
	engine := deps.engine(Config{Provider: "openai"})

	result, err := engine.Run(context.Background(), domain.ChatRequest{
		Query:        "Thủ tục cấp lại CCCD?",
		OnlyRetrieve: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "", result.Answer)
	assert.Equal(t, deps.retriever.contexts, result.Contexts)
	assert.Equal(t, 0, deps.generator.calls)
}

func TestRunUnknownProviderFailsFast(t *testing.T) {
	deps := newTestDeps()
	engine := deps.engine(Config{Provider: "llamacpp"})

	_, err := engine.Run(context.Background(), domain.ChatRequest{Query: "Thủ tục cấp hộ chiếu?"})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.ErrConfig))
}

func TestRunClassifierContractErrorIsFatal(t *testing.T) {
	deps := newTestDeps()
	deps.classifier.err = domain.WrapError(domain.ErrContract, "parse topic", errors.New(`unrecognized label "spam"`))
	engine := deps.engine(Config{Provider: "openai"})

	_, err := engine.Run(context.Background(), domain.ChatRequest{Query: "Thủ tục cấp hộ chiếu?"})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.ErrContract))
	assert.Equal(t, 0, deps.retriever.calls)
}

func TestRunBackTranslationWhenLanguagesDiffer(t *testing.T) {
	deps := newTestDeps()
	query := "What are the steps for marriage registration?"
	deps.translator.detectByText[query] = domain.LangEnglish
	deps.translator.translated[query] = "Các bước đăng ký kết hôn là gì?"
	deps.generator.answer = "Bạn nộp hồ sơ tại UBND cấp xã (mẫu tờ khai.docx)."
	deps.translator.translated[deps.generator.answer] = "Submit the dossier at the commune People's Committee (form.docx)."
	engine := deps.engine(Config{Provider: "openai"})

	result, err := engine.Run(context.Background(), domain.ChatRequest{Query: query})
	require.NoError(t, err)

	assert.False(t, strings.Contains(result.Answer, ".docx"))
	assert.True(t, strings.HasPrefix(result.Answer, "Submit the dossier"))
}

func TestRunBackTranslationSkippedWhenLanguagesMatch(t *testing.T) {
	deps := newTestDeps()
	engine := deps.engine(Config{Provider: "openai"})

	result, err := engine.Run(context.Background(), domain.ChatRequest{Query: "Thủ tục cấp hộ chiếu?"})
	require.NoError(t, err)

	assert.Equal(t, deps.generator.answer, result.Answer)
	// One call to normalize the query; none to back-translate the answer.
	assert.Equal(t, 1, deps.translator.translateCalls)
}

func TestRunDeterministicBranching(t *testing.T) {
	run := func() *domain.ChatResult {
		deps := newTestDeps()
		engine := deps.engine(Config{Provider: "openai"}, WithResponsePicker(firstResponse))
		result, err := engine.Run(context.Background(), domain.ChatRequest{Query: "Thủ tục cấp hộ chiếu?"})
		require.NoError(t, err)
		return result
	}

	first := run()
	second := run()
	assert.Equal(t, first.FinalQuery, second.FinalQuery)
	assert.Equal(t, first.Answer, second.Answer)
}

func TestRunEmptyQueryRejected(t *testing.T) {
	deps := newTestDeps()
	engine := deps.engine(Config{Provider: "openai"})

	_, err := engine.Run(context.Background(), domain.ChatRequest{Query: "   "})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.ErrInvalidInput))
}

func TestRunOverallTimeout(t *testing.T) {
	deps := newTestDeps()
	deps.translator.blockUntilCtx = true
	engine := deps.engine(Config{Provider: "openai", Timeout: 20 * time.Millisecond})

	_, err := engine.Run(context.Background(), domain.ChatRequest{Query: "Thủ tục cấp hộ chiếu?"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
