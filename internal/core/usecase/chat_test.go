package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/hienhayho/KLTN-v2/internal/core/domain"
)

type fakeEngine struct {
	result  *domain.ChatResult
	err     error
	lastReq domain.ChatRequest
	calls   int
}

func (f *fakeEngine) Run(_ context.Context, req domain.ChatRequest) (*domain.ChatResult, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeConversationStore struct {
	messages  []domain.ConversationMessage
	appended  []domain.ConversationMessage
	turn      int
	ensured   int
	appendErr error
}

func (f *fakeConversationStore) EnsureConversation(_ context.Context, userID, conversationID string) (*domain.Conversation, error) {
	f.ensured++
	return &domain.Conversation{UserID: userID, ConversationID: conversationID}, nil
}

func (f *fakeConversationStore) NextUserTurn(context.Context, string, string) (int, error) {
	f.turn++
	return f.turn, nil
}

func (f *fakeConversationStore) AppendMessage(_ context.Context, msg domain.ConversationMessage) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, msg)
	return nil
}

func (f *fakeConversationStore) ListRecentMessages(context.Context, string, string, int) ([]domain.ConversationMessage, error) {
	return f.messages, nil
}

func TestChatStatelessRequestSkipsStore(t *testing.T) {
	engine := &fakeEngine{result: &domain.ChatResult{Answer: "xin chào"}}
	store := &fakeConversationStore{}
	uc := NewChatUseCase(engine, store, 6, nil)

	result, err := uc.Chat(context.Background(), ChatConversationRequest{
		ChatRequest: domain.ChatRequest{Query: "hi"},
	})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if result.Answer != "xin chào" {
		t.Fatalf("answer = %q", result.Answer)
	}
	if store.ensured != 0 || len(store.appended) != 0 {
		t.Fatal("stateless request must not touch the conversation store")
	}
}

func TestChatLoadsStoredHistory(t *testing.T) {
	engine := &fakeEngine{result: &domain.ChatResult{Answer: "a", FinalQuery: "q"}}
	store := &fakeConversationStore{messages: []domain.ConversationMessage{
		{Role: domain.RoleUser, Content: "thủ tục làm hộ chiếu?"},
		{Role: domain.RoleAssistant, Content: "cần CCCD và tờ khai"},
	}}
	uc := NewChatUseCase(engine, store, 6, nil)

	_, err := uc.Chat(context.Background(), ChatConversationRequest{
		ChatRequest:    domain.ChatRequest{Query: "mất bao lâu?"},
		UserID:         "u1",
		ConversationID: "c1",
	})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if len(engine.lastReq.History) != 2 {
		t.Fatalf("engine saw %d history turns, want 2", len(engine.lastReq.History))
	}
	if engine.lastReq.History[0].Content != "thủ tục làm hộ chiếu?" {
		t.Fatalf("history not loaded from store: %+v", engine.lastReq.History)
	}
}

func TestChatPersistsResolvedTurn(t *testing.T) {
	engine := &fakeEngine{result: &domain.ChatResult{
		Answer:     "Khoảng 8 ngày làm việc.",
		FinalQuery: "Làm hộ chiếu mất bao lâu?",
	}}
	store := &fakeConversationStore{}
	uc := NewChatUseCase(engine, store, 6, nil)

	_, err := uc.Chat(context.Background(), ChatConversationRequest{
		ChatRequest:    domain.ChatRequest{Query: "mất bao lâu?"},
		UserID:         "u1",
		ConversationID: "c1",
	})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if len(store.appended) != 2 {
		t.Fatalf("appended %d messages, want 2", len(store.appended))
	}
	user, assistant := store.appended[0], store.appended[1]
	if user.Role != domain.RoleUser || user.Content != "Làm hộ chiếu mất bao lâu?" {
		t.Fatalf("user turn must store the resolved query: %+v", user)
	}
	if assistant.Role != domain.RoleAssistant || assistant.Content != "Khoảng 8 ngày làm việc." {
		t.Fatalf("assistant turn: %+v", assistant)
	}
	if user.UserTurn != assistant.UserTurn || user.UserTurn != 1 {
		t.Fatalf("turns = %d/%d, want matching 1", user.UserTurn, assistant.UserTurn)
	}
	if !assistant.CreatedAt.After(user.CreatedAt) {
		t.Fatalf("assistant row must timestamp after the user row: %v vs %v", assistant.CreatedAt, user.CreatedAt)
	}
}

func TestChatPersistFailureDoesNotSurface(t *testing.T) {
	engine := &fakeEngine{result: &domain.ChatResult{Answer: "a", FinalQuery: "q"}}
	store := &fakeConversationStore{appendErr: errors.New("pg down")}
	uc := NewChatUseCase(engine, store, 6, nil)

	result, err := uc.Chat(context.Background(), ChatConversationRequest{
		ChatRequest:    domain.ChatRequest{Query: "q"},
		UserID:         "u1",
		ConversationID: "c1",
	})
	if err != nil {
		t.Fatalf("persistence failure must not fail the chat: %v", err)
	}
	if result.Answer != "a" {
		t.Fatalf("answer = %q", result.Answer)
	}
}

func TestChatEngineErrorSkipsPersistence(t *testing.T) {
	engine := &fakeEngine{err: errors.New("generation failed")}
	store := &fakeConversationStore{}
	uc := NewChatUseCase(engine, store, 6, nil)

	_, err := uc.Chat(context.Background(), ChatConversationRequest{
		ChatRequest:    domain.ChatRequest{Query: "q"},
		UserID:         "u1",
		ConversationID: "c1",
	})
	if err == nil {
		t.Fatal("expected engine error")
	}
	if len(store.appended) != 0 {
		t.Fatal("failed run must not be persisted")
	}
}
