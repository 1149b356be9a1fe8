package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hienhayho/KLTN-v2/internal/core/domain"
	"github.com/hienhayho/KLTN-v2/internal/core/ports"
)

// ChatConversationRequest is one chat turn as the HTTP layer sees it. When
// UserID and ConversationID are both set the stored history of that
// conversation is used instead of the inline History.
type ChatConversationRequest struct {
	domain.ChatRequest
	UserID         string
	ConversationID string
}

// ChatUseCase wraps the workflow engine with conversation persistence:
// it loads stored history before the run and appends the resolved turn
// afterwards. Stateless requests pass straight through.
type ChatUseCase struct {
	engine       ports.ChatService
	store        ports.ConversationStore
	historyLimit int
	logger       *slog.Logger
}

func NewChatUseCase(
	engine ports.ChatService,
	store ports.ConversationStore,
	historyLimit int,
	logger *slog.Logger,
) *ChatUseCase {
	if historyLimit <= 0 {
		historyLimit = 6
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatUseCase{
		engine:       engine,
		store:        store,
		historyLimit: historyLimit,
		logger:       logger,
	}
}

func (uc *ChatUseCase) Chat(ctx context.Context, req ChatConversationRequest) (*domain.ChatResult, error) {
	if req.UserID == "" || req.ConversationID == "" || uc.store == nil {
		return uc.engine.Run(ctx, req.ChatRequest)
	}

	if _, err := uc.store.EnsureConversation(ctx, req.UserID, req.ConversationID); err != nil {
		return nil, fmt.Errorf("ensure conversation: %w", err)
	}

	stored, err := uc.store.ListRecentMessages(ctx, req.UserID, req.ConversationID, uc.historyLimit)
	if err != nil {
		return nil, fmt.Errorf("load conversation history: %w", err)
	}
	req.History = toHistory(stored)

	turn, err := uc.store.NextUserTurn(ctx, req.UserID, req.ConversationID)
	if err != nil {
		return nil, fmt.Errorf("advance user turn: %w", err)
	}

	result, err := uc.engine.Run(ctx, req.ChatRequest)
	if err != nil {
		return nil, err
	}

	uc.persistTurn(ctx, req, turn, result)
	return result, nil
}

// persistTurn stores the resolved final query as the user turn, not the
// raw utterance, so later rewrites start from self-contained context.
// Persistence failures are logged, not surfaced: the answer already exists.
func (uc *ChatUseCase) persistTurn(
	ctx context.Context,
	req ChatConversationRequest,
	turn int,
	result *domain.ChatResult,
) {
	now := time.Now().UTC()
	userContent := result.FinalQuery
	if userContent == "" {
		userContent = req.Query
	}

	messages := []domain.ConversationMessage{
		{
			ID:             uuid.NewString(),
			UserID:         req.UserID,
			ConversationID: req.ConversationID,
			Role:           domain.RoleUser,
			Content:        userContent,
			UserTurn:       turn,
			CreatedAt:      now,
		},
		{
			ID:             uuid.NewString(),
			UserID:         req.UserID,
			ConversationID: req.ConversationID,
			Role:           domain.RoleAssistant,
			Content:        result.Answer,
			UserTurn:       turn,
			// Strictly after the user row so timestamp ordering alone
			// keeps the pair chronological.
			CreatedAt: now.Add(time.Microsecond),
		},
	}

	for _, msg := range messages {
		if err := uc.store.AppendMessage(ctx, msg); err != nil {
			uc.logger.Error("append_message_failed",
				"conversation_id", req.ConversationID,
				"role", string(msg.Role),
				"error", err,
			)
			return
		}
	}
}

func toHistory(messages []domain.ConversationMessage) []domain.Message {
	out := make([]domain.Message, 0, len(messages))
	for _, msg := range messages {
		out = append(out, domain.Message{Role: msg.Role, Content: msg.Content})
	}
	return out
}
