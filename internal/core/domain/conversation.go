package domain

import "time"

// Conversation tracks one chat session of one user.
type Conversation struct {
	UserID          string
	ConversationID  string
	CurrentUserTurn int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ConversationMessage is one persisted turn of a conversation. Content of
// user turns stores the resolved final query rather than the raw utterance,
// so later rewrites see self-contained context.
type ConversationMessage struct {
	ID             string
	UserID         string
	ConversationID string
	Role           Role
	Content        string
	UserTurn       int
	CreatedAt      time.Time
}
